package world

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/oomph-ac/dogfight/entity"
)

// Snapshot is the set of entities the render path should draw, published once per tick.
type Snapshot struct {
	Tick uint64
	// Time is the simulation time of the last commit.
	Time float64
	// RenderTime is the time the render path should sample entities at.
	RenderTime float64
	Entities   []*entity.Entity
}

// Frame is the placement of one entity for drawing.
type Frame struct {
	ID     uint32
	Kind   entity.Kind
	Model  mgl32.Mat4
	Radius float32
}

// Frames samples every entity of the snapshot at the given render time.
func (s Snapshot) Frames(renderTime float64) []Frame {
	frames := make([]Frame, 0, len(s.Entities))
	for _, e := range s.Entities {
		frames = append(frames, Frame{
			ID:     e.ID(),
			Kind:   e.Kind(),
			Model:  e.SampleAtRenderTime(renderTime).Matrix(),
			Radius: float32(e.Range()),
		})
	}
	return frames
}

// Snapshot returns the last published snapshot. The entity slice must not be modified.
func (w *World) Snapshot() Snapshot {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.snapshot
}

func (w *World) publish(tick uint64) {
	live := make([]*entity.Entity, 0, w.entities.Len())
	for el := w.entities.Front(); el != nil; el = el.Next() {
		if !el.Value.Dead() {
			live = append(live, el.Value)
		}
	}

	w.mu.Lock()
	w.snapshot = Snapshot{
		Tick:       tick,
		Time:       w.clock.Now(),
		RenderTime: w.clock.RenderTime(),
		Entities:   live,
	}
	w.mu.Unlock()
}
