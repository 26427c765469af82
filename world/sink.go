package world

import (
	"github.com/oomph-ac/dogfight/entity"
	"github.com/sasha-s/go-deadlock"
)

// Sink collects entities to add to the world and ids to remove from it. It is safe for concurrent use and
// is drained once per tick by the simulation goroutine.
type Sink struct {
	mu      deadlock.Mutex
	spawned []*entity.Entity
	removed []uint32
}

// Push queues e to be added to the world on the next tick.
func (s *Sink) Push(e *entity.Entity) {
	if e == nil {
		return
	}
	s.mu.Lock()
	s.spawned = append(s.spawned, e)
	s.mu.Unlock()
}

// Remove queues the entity with the given id to be removed on the next tick.
func (s *Sink) Remove(id uint32) {
	s.mu.Lock()
	s.removed = append(s.removed, id)
	s.mu.Unlock()
}

// Pending returns the number of queued spawns and removals.
func (s *Sink) Pending() (spawned, removed int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.spawned), len(s.removed)
}

func (s *Sink) drain() (spawned []*entity.Entity, removed []uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	spawned, removed = s.spawned, s.removed
	s.spawned, s.removed = nil, nil
	return spawned, removed
}
