package entity

import (
	"fmt"

	"github.com/oomph-ac/dogfight/oerror"
)

// Commit promotes the predicted state to the authoritative state and records interpolation samples at now.
// If any part of the predicted state is not finite, the predicted state is discarded, the authoritative
// state is left untouched and an error wrapping oerror.ErrInvalidState is returned.
func (e *Entity) Commit(now float64) error {
	if !e.pred.Valid() {
		bad := e.pred
		e.Discard()
		return fmt.Errorf("entity %d: predicted state %+v: %w", e.id, bad, oerror.ErrInvalidState)
	}
	e.pred.Rotation = e.pred.Rotation.Normalize()

	e.mu.Lock()
	e.auth = e.pred
	e.appendSamplesLocked(now)
	e.mu.Unlock()

	e.hitsValid = false
	e.forces = dropExpired(e.forces, now)
	return nil
}

func dropExpired(forces []TransientForce, now float64) []TransientForce {
	n := 0
	for _, f := range forces {
		if f.Expires > now {
			forces[n] = f
			n++
		}
	}
	clear(forces[n:])
	return forces[:n]
}
