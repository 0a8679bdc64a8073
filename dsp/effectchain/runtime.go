package effectchain

// Runtime is the per-slot processing and configuration contract.
type Runtime interface {
	Configure(ctx Context, params Params) error
	Process(block []float64)
	Reset()
}

// unit is the shape every effect in dsp/effects shares.
type unit[P any] interface {
	SetParams(p P)
	ProcessInPlace(buf []float64)
	Reset()
}

// typedRuntime decodes string-keyed params into an effect's typed
// parameter struct.
type typedRuntime[P any] struct {
	fx     unit[P]
	decode func(Params) P
}

func (r *typedRuntime[P]) Configure(_ Context, p Params) error {
	r.fx.SetParams(r.decode(p))
	return nil
}

func (r *typedRuntime[P]) Process(block []float64) { r.fx.ProcessInPlace(block) }

func (r *typedRuntime[P]) Reset() { r.fx.Reset() }
