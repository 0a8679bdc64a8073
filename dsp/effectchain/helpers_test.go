package effectchain

import "testing"

// stubRuntime counts the calls the chain makes into it.
type stubRuntime struct {
	configureErr             error
	configureCalls           int
	processCalls, resetCalls int
	lastParams               Params
}

func (s *stubRuntime) Configure(_ Context, params Params) error {
	s.configureCalls++
	s.lastParams = params.Clone()
	return s.configureErr
}

func (s *stubRuntime) Process([]float64) { s.processCalls++ }
func (s *stubRuntime) Reset()            { s.resetCalls++ }

// mathRuntime applies y = x*scale + offset, reading either from the
// parameter named key. Chaining a scaling and an offsetting instance
// makes the render order visible in the output.
type mathRuntime struct {
	key           string
	scale, offset float64
}

func (m *mathRuntime) Configure(_ Context, params Params) error {
	switch m.key {
	case "gain":
		m.scale = params.GetNum("gain", 1)
	case "value":
		m.scale, m.offset = 1, params.GetNum("value", 0)
	}
	return nil
}

func (m *mathRuntime) Process(block []float64) {
	for i, x := range block {
		block[i] = x*m.scale + m.offset
	}
}

func (m *mathRuntime) Reset() {}

func testRegistry() *Registry {
	r := NewRegistry()
	r.MustRegister("stub", func(Context) (Runtime, error) { return &stubRuntime{}, nil })
	r.MustRegister("gain", func(Context) (Runtime, error) { return &mathRuntime{key: "gain", scale: 1}, nil })
	r.MustRegister("add", func(Context) (Runtime, error) { return &mathRuntime{key: "value", scale: 1}, nil })
	return r
}

// testDescriptors is the catalog of the test chain: "gain" scales by 2,
// "add" adds 0.5 and "stub" does nothing.
func testDescriptors() []Descriptor {
	return []Descriptor{
		{Name: "gain", Params: []ParamDef{num("gain", 0, 4, 2)}},
		{Name: "add", Params: []ParamDef{num("value", -1, 1, 0.5)}},
		{Name: "stub", Params: []ParamDef{enum("mode", "a", "a", "b"), toggle("on", false)}},
	}
}

func newTestChain(t testing.TB) *Chain {
	t.Helper()

	c, err := New(Context{SampleRate: 48000}, testRegistry(), testDescriptors())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}
