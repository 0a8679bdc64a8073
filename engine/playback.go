package engine

import (
	"sync/atomic"

	"github.com/cwbudde/algo-pedalboard/engine/track"
)

// PlayState is the backing-track transport state.
type PlayState int32

const (
	Stopped PlayState = iota
	Playing
	Paused
)

func (s PlayState) String() string {
	switch s {
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	default:
		return "stopped"
	}
}

// PlaybackInfo reports the backing-track cursor in seconds.
type PlaybackInfo struct {
	Position float64
	Duration float64
	State    PlayState
}

// player is owned by the render goroutine. The published fields are the
// only part read from other goroutines.
type player struct {
	track  *track.Track
	pos    int
	state  PlayState
	volume float64

	pubPos   atomic.Int64
	pubLen   atomic.Int64
	pubState atomic.Int32
}

func (p *player) load(t *track.Track) {
	p.track = t
	p.pos = 0
	p.state = Stopped
}

func (p *player) toggle() {
	if p.track == nil || p.track.Len() == 0 {
		return
	}
	switch p.state {
	case Playing:
		p.state = Paused
	default:
		p.state = Playing
	}
}

func (p *player) stop() {
	p.state = Stopped
	p.pos = 0
}

func (p *player) seek(ratio float64) {
	if p.track == nil {
		return
	}
	ratio = min(max(ratio, 0), 1)
	p.pos = min(int(ratio*float64(p.track.Len())), p.track.Len())
}

// mixInto adds the next len(dst) track samples at the track volume. At the
// end of the track playback stops and rewinds.
func (p *player) mixInto(dst []float64) {
	if p.state != Playing || p.track == nil {
		return
	}

	src := p.track.Samples[p.pos:]
	n := min(len(dst), len(src))
	for i := range n {
		dst[i] += p.volume * float64(src[i])
	}
	p.pos += n

	if p.pos >= p.track.Len() {
		p.stop()
	}
}

func (p *player) publish() {
	p.pubPos.Store(int64(p.pos))
	if p.track != nil {
		p.pubLen.Store(int64(p.track.Len()))
	} else {
		p.pubLen.Store(0)
	}
	p.pubState.Store(int32(p.state))
}

func (p *player) info(sampleRate float64) PlaybackInfo {
	return PlaybackInfo{
		Position: float64(p.pubPos.Load()) / sampleRate,
		Duration: float64(p.pubLen.Load()) / sampleRate,
		State:    PlayState(p.pubState.Load()),
	}
}
