package clock

import "go.uber.org/atomic"

// Clock supplies simulation time to the world and render time to the render path. All values are in
// seconds.
type Clock interface {
	// Now returns the current simulation time.
	Now() float64
	// Delta returns the length of the current simulation tick.
	Delta() float64
	// RenderTime returns the time the render path should sample at. It trails Now by a fixed delay.
	RenderTime() float64
}

// Ticker is a Clock that the simulation goroutine advances once per committed tick.
type Ticker interface {
	Clock
	// Tick advances simulation time by Delta.
	Tick()
}

var _ Ticker = (*Stepper)(nil)

// Stepper is a Clock advanced explicitly by the simulation goroutine. It is safe to read from other
// goroutines.
type Stepper struct {
	now         atomic.Float64
	delta       atomic.Float64
	renderDelay float64
	maxDelta    float64
}

// NewStepper creates a clock with a fixed tick length and render delay. Variable steps passed to Advance
// are capped at four fixed ticks.
func NewStepper(tickDelta, renderDelay float64) *Stepper {
	s := &Stepper{renderDelay: renderDelay, maxDelta: tickDelta * 4}
	s.delta.Store(tickDelta)
	return s
}

// Now ...
func (s *Stepper) Now() float64 {
	return s.now.Load()
}

// Delta ...
func (s *Stepper) Delta() float64 {
	return s.delta.Load()
}

// RenderTime ...
func (s *Stepper) RenderTime() float64 {
	return s.now.Load() - s.renderDelay
}

// RenderDelay returns the fixed delay between simulation and render time.
func (s *Stepper) RenderDelay() float64 {
	return s.renderDelay
}

// Tick advances the clock by the current delta.
func (s *Stepper) Tick() {
	s.now.Add(s.delta.Load())
}

// SetDelta changes the length of the next tick for variable-rate simulation. Non-positive values are
// ignored and values above the cap are clamped.
func (s *Stepper) SetDelta(dt float64) {
	if !(dt > 0) {
		return
	}
	if s.maxDelta > 0 && dt > s.maxDelta {
		dt = s.maxDelta
	}
	s.delta.Store(dt)
}

// Advance sets the length of the tick to dt and advances the clock by it. It returns the delta actually
// used.
func (s *Stepper) Advance(dt float64) float64 {
	s.SetDelta(dt)
	d := s.delta.Load()
	s.now.Add(d)
	return d
}
