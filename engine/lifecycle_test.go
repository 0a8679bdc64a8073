package engine

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/wav"

	"github.com/cwbudde/algo-pedalboard/engine/recorder"
)

func TestStartStop(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, WithBlockSize(256), WithOutputChannels(2))
	h := &fakeHost{}

	if err := e.Stop(); err != nil {
		t.Fatalf("Stop before Start: %v", err)
	}
	if err := e.Start(h); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if h.cfg != (StreamConfig{SampleRate: 48000, BlockSize: 256, InputChannels: 1, OutputChannels: 2}) {
		t.Fatalf("stream config = %+v", h.cfg)
	}
	if !e.Running() {
		t.Fatal("Running() = false after Start")
	}
	if err := e.Start(h); !errors.Is(err, ErrAlreadyRunning) {
		t.Fatalf("second Start = %v, want ErrAlreadyRunning", err)
	}

	if err := e.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if err := e.Stop(); err != nil {
		t.Fatalf("second Stop: %v", err)
	}
	if h.stops != 1 {
		t.Fatalf("host stopped %d times", h.stops)
	}
}

func TestStartReportsDeviceError(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t)
	cause := errors.New("no such device")

	err := e.Start(&fakeHost{startErr: cause})
	var devErr *DeviceError
	if !errors.As(err, &devErr) || !errors.Is(err, cause) {
		t.Fatalf("Start error = %v, want a DeviceError wrapping the cause", err)
	}
	if e.Running() {
		t.Fatal("engine running after a failed start")
	}
}

func TestStopAppliesPendingCommands(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t)
	h := &fakeHost{}
	_ = e.Start(h)
	_ = e.SetMasterVolume(0.25)
	_ = e.Stop()

	if e.rt.master != 0.25 {
		t.Fatalf("render master = %v after Stop", e.rt.master)
	}
}

func TestRecordingFollowsStream(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, WithBlockSize(128))
	path := filepath.Join(t.TempDir(), "take.wav")

	if _, err := e.StartRecording(path); !errors.Is(err, ErrNotRunning) {
		t.Fatalf("StartRecording while stopped = %v, want ErrNotRunning", err)
	}

	h := &fakeHost{}
	if err := e.Start(h); err != nil {
		t.Fatalf("Start: %v", err)
	}
	rec, err := e.StartRecording(path)
	if err != nil {
		t.Fatalf("StartRecording: %v", err)
	}
	if again, _ := e.StartRecording(path); again != rec {
		t.Fatal("second StartRecording replaced the take")
	}

	h.pump(10)
	if err := e.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if rec.State() != recorder.StateStopped || e.Recorder() != nil {
		t.Fatal("Stop left the recording open")
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	dec := wav.NewDecoder(f)
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		t.Fatalf("FullPCMBuffer: %v", err)
	}
	if got, want := len(buf.Data), 10*128*2; got != want {
		t.Fatalf("recorded %d samples, want %d", got, want)
	}
}

func TestStopRecordingKeepsStream(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t)
	h := &fakeHost{}
	_ = e.Start(h)

	rec, err := e.StartRecording(filepath.Join(t.TempDir(), "a.wav"))
	if err != nil {
		t.Fatalf("StartRecording: %v", err)
	}
	h.pump(2)
	if err := e.StopRecording(); err != nil {
		t.Fatalf("StopRecording: %v", err)
	}
	h.pump(2)

	if e.rt.sink != nil {
		t.Fatal("render side still feeds the recorder")
	}
	if st := rec.Status(); st.Frames != 2*512 {
		t.Fatalf("recorded %d frames, want %d", st.Frames, 2*512)
	}
	if !e.Running() {
		t.Fatal("StopRecording stopped the stream")
	}
	if err := e.StopRecording(); err != nil {
		t.Fatalf("second StopRecording: %v", err)
	}
}
