package distortion

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-pedalboard/internal/testutil"
)

type pedal interface {
	ProcessInPlace(buf []float64)
	Reset()
}

func pedals(t *testing.T, sampleRate float64) map[string]pedal {
	t.Helper()

	od, err := NewOverdrive(sampleRate)
	if err != nil {
		t.Fatalf("NewOverdrive: %v", err)
	}
	ds, err := NewDistortion(sampleRate)
	if err != nil {
		t.Fatalf("NewDistortion: %v", err)
	}
	fz, err := NewFuzz(sampleRate)
	if err != nil {
		t.Fatalf("NewFuzz: %v", err)
	}
	vt, err := NewVintage(sampleRate)
	if err != nil {
		t.Fatalf("NewVintage: %v", err)
	}
	cm, err := NewCarmilla(sampleRate)
	if err != nil {
		t.Fatalf("NewCarmilla: %v", err)
	}
	ps, err := NewPureSky(sampleRate)
	if err != nil {
		t.Fatalf("NewPureSky: %v", err)
	}

	return map[string]pedal{
		"overdrive":  od,
		"distortion": ds,
		"fuzz":       fz,
		"vintage":    vt,
		"carmilla":   cm,
		"puresky":    ps,
	}
}

func TestPedalsStayBounded(t *testing.T) {
	t.Parallel()

	for name, p := range pedals(t, 48000) {
		t.Run(name, func(t *testing.T) {
			x := testutil.DeterministicSine(220, 48000, 4, 4096)
			p.ProcessInPlace(x)
			testutil.RequireFinite(t, x)
			testutil.RequireBounded(t, x, 1)
		})
	}
}

func TestPedalsSilenceInSilenceOut(t *testing.T) {
	t.Parallel()

	for name, p := range pedals(t, 48000) {
		t.Run(name, func(t *testing.T) {
			x := make([]float64, 1024)
			p.ProcessInPlace(x)
			for i, v := range x {
				if v != 0 {
					t.Fatalf("sample %d = %v, want 0", i, v)
				}
			}
		})
	}
}

func TestPedalsBlockSplitInvariance(t *testing.T) {
	t.Parallel()

	whole := pedals(t, 48000)
	split := pedals(t, 48000)
	input := testutil.DeterministicNoise(11, 0.8, 3000)

	for name := range whole {
		t.Run(name, func(t *testing.T) {
			a := append([]float64(nil), input...)
			b := append([]float64(nil), input...)
			whole[name].ProcessInPlace(a)
			testutil.InBlocks(b, 64, split[name].ProcessInPlace)
			testutil.RequireSliceNearlyEqual(t, b, a, 1e-12)
		})
	}
}

func TestOverdriveToneBypass(t *testing.T) {
	t.Parallel()

	o, _ := NewOverdrive(48000)
	o.SetParams(OverdriveParams{Gain: 5, Tone: 10, Level: 7})
	if !o.ToneBypassed() {
		t.Fatal("tone 10 should bypass the low-pass")
	}
	o.SetParams(OverdriveParams{Gain: 5, Tone: 5, Level: 7})
	if o.ToneBypassed() {
		t.Fatal("tone 5 should engage the low-pass")
	}
}

func TestDistortionTransferCurve(t *testing.T) {
	t.Parallel()

	d, _ := NewDistortion(48000)
	d.SetParams(DistortionParams{Drive: 0, Level: 6})

	buf := []float64{0.1, -0.1, 2}
	d.ProcessInPlace(buf)

	// drive 0 -> gain 1; level 6 -> 0.1 + 0.9 = 1.0
	want := []float64{0.1, -0.1, 1}
	testutil.RequireSliceNearlyEqual(t, buf, want, 1e-12)
}

func TestFuzzDryMix(t *testing.T) {
	t.Parallel()

	f, _ := NewFuzz(48000)
	f.SetParams(FuzzParams{Gain: 50, Mix: 0})

	buf := []float64{0.01, -0.2, 0.5}
	f.ProcessInPlace(buf)
	testutil.RequireSliceNearlyEqual(t, buf, []float64{0.01, -0.2, 0.5}, 1e-12)

	f.SetParams(FuzzParams{Gain: 50, Mix: 1})
	buf = []float64{0.01, -0.2, 0.5}
	f.ProcessInPlace(buf)
	testutil.RequireSliceNearlyEqual(t, buf, []float64{0.5, -1, 1}, 1e-12)
}

func TestAsymmetricShaper(t *testing.T) {
	t.Parallel()

	shape := Asymmetric(0.8, 0.6)
	if got := shape(100); got != 0.8 {
		t.Fatalf("positive clip = %v, want 0.8", got)
	}
	if got := shape(-100); got != -0.6 {
		t.Fatalf("negative clip = %v, want -0.6", got)
	}
	if got, want := shape(0.2), math.Tanh(0.1); math.Abs(got-want) > 1e-15 {
		t.Fatalf("small signal = %v, want %v", got, want)
	}
}

func TestPipelineWithoutShaperDefaultsToSoft(t *testing.T) {
	t.Parallel()

	p := Pipeline{Drive: 2, Mix: 1, Level: 1}
	buf := []float64{0.25}
	p.Process(buf)
	if want := math.Tanh(0.5); math.Abs(buf[0]-want) > 1e-15 {
		t.Fatalf("got %v, want %v", buf[0], want)
	}
}

func TestConstructorsRejectBadSampleRate(t *testing.T) {
	t.Parallel()

	if _, err := NewOverdrive(0); err == nil {
		t.Fatal("NewOverdrive(0) should fail")
	}
	if _, err := NewCarmilla(math.NaN()); err == nil {
		t.Fatal("NewCarmilla(NaN) should fail")
	}
	if _, err := NewPureSky(-1); err == nil {
		t.Fatal("NewPureSky(-1) should fail")
	}
}
