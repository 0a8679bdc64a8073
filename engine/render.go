package engine

import (
	vecmath "github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-pedalboard/dsp/core"
	"github.com/cwbudde/algo-pedalboard/dsp/effectchain"
)

// renderer is the state owned by the render goroutine.
type renderer struct {
	chains  [numRoles]*effectchain.Chain
	mapping Mapping
	inputs  [numRoles]bool
	master  float64
	play    player
	sink    Sink

	bufs [numRoles][]float64
	mix  []float64
}

func (r *renderer) ensure(n int) {
	for i := range r.bufs {
		r.bufs[i] = core.EnsureLen(r.bufs[i], n)
	}
	r.mix = core.EnsureLen(r.mix, n)
}

func (r *renderer) chain(channel string) *effectchain.Chain {
	role, err := roleOf(channel)
	if err != nil {
		return nil
	}
	return r.chains[role]
}

// apply executes one command. Commands are validated before submission;
// anything that still fails is ignored.
func (r *renderer) apply(cmd Command) {
	switch c := cmd.(type) {
	case SetParam:
		if ch := r.chain(c.Channel); ch != nil {
			_ = ch.SetParam(c.Effect, c.Key, c.Value)
		}
	case ToggleEffect:
		if ch := r.chain(c.Channel); ch != nil {
			_ = ch.SetEnabled(c.Effect, c.Enabled)
		}
	case SetMasterVolume:
		r.master = c.Level
	case SetChainOrder:
		if ch := r.chain(c.Channel); ch != nil {
			_ = ch.SetOrder(c.Order)
		}
	case SetChannelMapping:
		r.mapping = c.Mapping
	case ToggleInputChannel:
		if role, err := roleOf(c.Channel); err == nil {
			r.inputs[role] = c.Enabled
		}
	case SetFullState:
		r.applyState(c)
	case SetPlaybackPosition:
		r.play.seek(c.Ratio)
	case LoadTrack:
		r.play.load(c.Track)
	case TogglePlayback:
		r.play.toggle()
	case StopPlayback:
		r.play.stop()
	case SetTrackVolume:
		r.play.volume = c.Level
	case AttachRecorder:
		r.sink = c.Sink
	case DetachRecorder:
		r.sink = nil
	}
}

func (r *renderer) applyState(s SetFullState) {
	for _, u := range s.effects {
		ch := r.chain(u.channel)
		if ch == nil {
			continue
		}
		if d, ok := ch.Descriptor(u.effect); ok {
			for _, def := range d.Params {
				_ = ch.SetParam(u.effect, def.Name, u.params.Get(def))
			}
		}
		_ = ch.SetEnabled(u.effect, u.enabled)
	}
	for role, order := range s.orders {
		if order != nil {
			_ = r.chains[role].SetOrder(order)
		}
	}
	r.master = s.master
	r.inputs = s.inputs
	r.mapping = s.mapping
}

func blockLen(in, out [][]float32) int {
	if len(out) > 0 {
		return len(out[0])
	}
	if len(in) > 0 {
		return len(in[0])
	}
	return 0
}

// Render processes one block. It is the host callback: in holds one slice
// per physical input and out one slice per physical output, all of the
// same length. Pending commands are applied first. Render does not
// allocate once the block length has been seen.
func (e *Engine) Render(in, out [][]float32) {
	r := &e.rt
	e.cmds.Drain(e.applyFn)

	n := blockLen(in, out)
	if n == 0 {
		return
	}
	r.ensure(n)

	for role := range numRoles {
		buf := r.bufs[role]
		idx := r.mapping.index(role)
		if r.inputs[role] && idx < len(in) {
			core.Widen(buf, in[idx])
		} else {
			core.Zero(buf)
		}
	}

	inst, voice := r.bufs[roleInstrument], r.bufs[roleVoice]
	if !r.chains[roleInstrument].Solo(effectchain.TunerEffect, inst) {
		r.chains[roleInstrument].Render(inst)
	}
	r.chains[roleVoice].Render(voice)

	copy(r.mix, inst)
	vecmath.AddBlockInPlace(r.mix, voice)
	r.play.mixInto(r.mix)
	vecmath.ScaleBlock(r.mix, r.mix, r.master)
	core.ClipBlock(r.mix)

	for _, ch := range out {
		core.Narrow(ch, r.mix)
	}
	if r.sink != nil {
		r.sink.Submit(out)
	}
	r.play.publish()
}
