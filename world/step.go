package world

import (
	"context"
	"fmt"
	"time"

	"github.com/elliotchance/orderedmap/v2"
	"github.com/oomph-ac/dogfight/collision"
	"github.com/oomph-ac/dogfight/entity"
	"github.com/oomph-ac/dogfight/game"
)

// Report summarises one tick.
type Report struct {
	Tick       uint64
	Candidates int
	// Contacts holds every collision responded to, and every spectral contact once.
	Contacts   []collision.Contact
	Iterations int
	// Unresolved is the number of collisions left once the iteration budget ran out.
	Unresolved int
	// Rejected holds the ids of entities whose predicted state was discarded.
	Rejected []uint32
}

// Step advances the world by one tick of the clock's current delta. New entities from the sink join the
// world, every live entity is predicted, collisions are resolved and the predictions are committed.
//
// If ctx is done while collisions are being resolved, every prediction is discarded, the clock is not
// advanced and the context's error is returned: the world stays at the last committed tick.
func (w *World) Step(ctx context.Context) (Report, error) {
	start := time.Now()
	now, dt := w.clock.Now(), w.clock.Delta()
	report := Report{Tick: w.tick.Load() + 1}

	w.drain()

	tick := entity.Tick{Now: now, Delta: dt, Gravity: w.conf.Gravity}
	var shooters []*entity.Entity
	for el := w.entities.Front(); el != nil; el = el.Next() {
		e := el.Value
		if e.Dead() {
			continue
		}
		if e.Overdue(now) {
			e.Kill()
			continue
		}
		if in := e.Predict(tick); in.Fire && e.ReadyToFire(now) {
			shooters = append(shooters, e)
		}
	}

	w.index.Rebuild()
	res, err := w.resolver.Resolve(ctx, dt)
	if err != nil {
		return report, fmt.Errorf("step %d: %w", report.Tick, err)
	}
	report.Candidates = res.Candidates
	report.Contacts = res.Contacts
	report.Iterations = res.Iterations
	report.Unresolved = len(res.Unresolved)

	committed := now + dt
	for el := w.entities.Front(); el != nil; el = el.Next() {
		e := el.Value
		if e.Dead() {
			e.Discard()
			continue
		}
		if err := e.Commit(committed); err != nil {
			report.Rejected = append(report.Rejected, e.ID())
			detail := orderedmap.NewOrderedMap[string, any]()
			detail.Set("id", e.ID())
			detail.Set("kind", e.Kind())
			detail.Set("tick", report.Tick)
			detail.Set("position", game.RoundVec64(e.Predicted().Position, 3))
			w.warn("discarded invalid prediction", detail, "error", err)
		}
	}
	w.clock.Tick()

	// Weapons fire from the committed state, at the committed time.
	for _, e := range shooters {
		req, ok := e.Fire(committed)
		if !ok {
			continue
		}
		if _, err := w.Spawn(req); err != nil {
			w.log.Warn("projectile not spawned", "source", req.Source, "error", err)
		}
	}

	w.publish(report.Tick)
	w.tick.Store(report.Tick)
	w.candidates.Store(int64(report.Candidates))
	w.rejected.Add(uint64(len(report.Rejected)))
	w.unresolved.Add(uint64(report.Unresolved))
	w.lastStep.Store(time.Since(start))
	return report, nil
}

// drain registers the entities queued in the sink, applies queued removals and forgets entities that died
// since the last tick. Only the simulation goroutine mutates the registry, so it is read here without the
// lock.
func (w *World) drain() {
	spawned, removed := w.sink.drain()
	for _, id := range removed {
		if e, ok := w.entities.Get(id); ok {
			e.Kill()
		}
	}

	var dead []uint32
	for el := w.entities.Front(); el != nil; el = el.Next() {
		if el.Value.Dead() {
			dead = append(dead, el.Key)
		}
	}

	w.mu.Lock()
	for _, id := range dead {
		w.entities.Delete(id)
		w.free = append(w.free, id)
	}
	for _, e := range spawned {
		if e.Dead() {
			w.free = append(w.free, e.ID())
			continue
		}
		w.entities.Set(e.ID(), e)
	}
	w.mu.Unlock()

	for _, e := range spawned {
		if !e.Dead() {
			w.index.Insert(e)
		}
	}
	if len(spawned) > 0 || len(dead) > 0 {
		w.log.Debug("registry updated", "spawned", len(spawned), "removed", len(dead), "entities", w.entities.Len())
	}
}
