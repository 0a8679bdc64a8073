package effectchain

import (
	"errors"
	"fmt"
	"slices"

	"github.com/cwbudde/algo-pedalboard/dsp/core"
)

// ErrUnknownEffect is returned when a name does not resolve to an effect.
var ErrUnknownEffect = errors.New("unknown effect")

type slot struct {
	desc    Descriptor
	runtime Runtime
	params  Params
	enabled bool
	dirty   bool
}

// Chain is the ordered effect chain of one channel. It owns one instance
// per effect, independent of the render order: an instance missing from
// the order never runs.
//
// A Chain is not safe for concurrent use. In the engine it is touched only
// by the render goroutine; every mutation arrives through the command
// queue.
type Chain struct {
	ctx   Context
	slots map[string]*slot
	order []string
}

// New creates one instance per descriptor. The descriptor order is the
// initial render order. Every instance starts disabled with default
// parameters.
func New(ctx Context, registry *Registry, descs []Descriptor) (*Chain, error) {
	if ctx.BlockSize <= 0 {
		ctx.BlockSize = core.DefaultBlockSize
	}

	c := &Chain{
		ctx:   ctx,
		slots: make(map[string]*slot, len(descs)),
		order: make([]string, 0, len(descs)),
	}

	for _, d := range descs {
		if _, dup := c.slots[d.Name]; dup {
			return nil, fmt.Errorf("effectchain: %w: %s", ErrDuplicateEffect, d.Name)
		}

		rt, err := registry.Build(d.Name, ctx)
		if err != nil {
			return nil, err
		}

		params := d.DefaultParams()
		if err := rt.Configure(ctx, params); err != nil {
			return nil, fmt.Errorf("effectchain: configure %q: %w", d.Name, err)
		}

		c.slots[d.Name] = &slot{desc: d, runtime: rt, params: params}
		c.order = append(c.order, d.Name)
	}

	return c, nil
}

// NewChannel creates the default chain of channel ("instrument" or
// "voice") from the catalog.
func NewChannel(ctx Context, registry *Registry, channel string) (*Chain, error) {
	order := DefaultOrder(channel)
	if order == nil {
		return nil, fmt.Errorf("effectchain: unknown channel %q", channel)
	}

	descs := make([]Descriptor, len(order))
	for i, name := range order {
		d, ok := Describe(name)
		if !ok {
			return nil, fmt.Errorf("effectchain: %w: %s", ErrUnknownEffect, name)
		}
		descs[i] = d
	}

	return New(ctx, registry, descs)
}

// Context returns the chain context.
func (c *Chain) Context() Context { return c.ctx }

// Has reports whether the chain owns an instance of name.
func (c *Chain) Has(name string) bool {
	_, ok := c.slots[name]
	return ok
}

// Names returns every instance name, sorted.
func (c *Chain) Names() []string {
	names := make([]string, 0, len(c.slots))
	for name := range c.slots {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Descriptor returns the descriptor of instance name.
func (c *Chain) Descriptor(name string) (Descriptor, bool) {
	s, ok := c.slots[name]
	if !ok {
		return Descriptor{}, false
	}
	return s.desc, true
}

// Runtime returns the runtime of instance name, or nil.
func (c *Chain) Runtime(name string) Runtime {
	s, ok := c.slots[name]
	if !ok {
		return nil
	}
	return s.runtime
}

// Order returns the current render order. The slice must not be modified.
func (c *Chain) Order() []string { return c.order }

// SetOrder replaces the render order as a whole. Every name must resolve
// to an instance and appear at most once; otherwise the order is left
// unchanged. The chain keeps order; callers must not modify it afterwards.
// Instances that drop out of the order are reset.
func (c *Chain) SetOrder(order []string) error {
	for i, name := range order {
		if _, ok := c.slots[name]; !ok {
			return fmt.Errorf("effectchain: %w: %s", ErrUnknownEffect, name)
		}
		if slices.Contains(order[:i], name) {
			return fmt.Errorf("effectchain: %w: %s", ErrDuplicateEffect, name)
		}
	}

	for _, name := range c.order {
		if !slices.Contains(order, name) {
			c.slots[name].runtime.Reset()
		}
	}
	c.order = order

	return nil
}

// Enabled reports whether instance name is enabled.
func (c *Chain) Enabled(name string) bool {
	s, ok := c.slots[name]
	return ok && s.enabled
}

// SetEnabled switches instance name on or off. Switching on clears the
// instance state so stale tails do not replay.
func (c *Chain) SetEnabled(name string, enabled bool) error {
	s, ok := c.slots[name]
	if !ok {
		return fmt.Errorf("effectchain: %w: %s", ErrUnknownEffect, name)
	}
	if enabled && !s.enabled {
		s.runtime.Reset()
	}
	s.enabled = enabled
	return nil
}

// Param returns the current value of key on instance name.
func (c *Chain) Param(name, key string) (Value, error) {
	s, def, err := c.lookup(name, key)
	if err != nil {
		return Value{}, err
	}
	return s.params.Get(def), nil
}

// SetParam stores a new value. The instance is reconfigured before it
// next renders.
func (c *Chain) SetParam(name, key string, v Value) error {
	s, def, err := c.lookup(name, key)
	if err != nil {
		return err
	}
	if err := s.params.Set(def, v); err != nil {
		return err
	}
	s.dirty = true
	return nil
}

// Params returns a copy of the parameters of instance name.
func (c *Chain) Params(name string) (Params, error) {
	s, ok := c.slots[name]
	if !ok {
		return Params{}, fmt.Errorf("effectchain: %w: %s", ErrUnknownEffect, name)
	}
	return s.params.Clone(), nil
}

func (c *Chain) lookup(name, key string) (*slot, ParamDef, error) {
	s, ok := c.slots[name]
	if !ok {
		return nil, ParamDef{}, fmt.Errorf("effectchain: %w: %s", ErrUnknownEffect, name)
	}
	def, ok := s.desc.Param(key)
	if !ok {
		return nil, ParamDef{}, fmt.Errorf("effectchain: %w: %s.%s", ErrUnknownParam, name, key)
	}
	return s, def, nil
}

// Render runs every enabled instance in order over block, in place.
// Disabled instances pass the block through untouched.
func (c *Chain) Render(block []float64) {
	for _, name := range c.order {
		s := c.slots[name]
		if s == nil || !s.enabled {
			continue
		}
		c.run(s, block)
	}
}

// Solo runs only instance name over block if it is enabled, and reports
// whether it ran.
func (c *Chain) Solo(name string, block []float64) bool {
	s, ok := c.slots[name]
	if !ok || !s.enabled {
		return false
	}
	c.run(s, block)
	return true
}

func (c *Chain) run(s *slot, block []float64) {
	if s.dirty {
		// Configure failures keep the previous settings.
		_ = s.runtime.Configure(c.ctx, s.params)
		s.dirty = false
	}
	s.runtime.Process(block)
}

// Reset clears the processing state of every instance.
func (c *Chain) Reset() {
	for _, s := range c.slots {
		s.runtime.Reset()
	}
}
