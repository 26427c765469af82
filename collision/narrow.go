package collision

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/oomph-ac/dogfight/entity"
	"github.com/oomph-ac/dogfight/game"
)

// Contact is a detected impact between two entities during the current tick.
type Contact struct {
	A, B *entity.Entity
	// Time is the time of impact as a fraction of the tick, in [0, 1].
	Time float64
	// Normal is the unit contact normal, pointing from B toward A.
	Normal mgl64.Vec3
	// Point is the impact point relative to B's predicted placement.
	Point mgl64.Vec3
}

// Spectral returns true if either side of the contact only reports collisions.
func (c Contact) Spectral() bool {
	return c.A.Spectral() || c.B.Spectral()
}

// Detector finds the earliest impact between two entities, if any. Implementations must only read the
// entities, as Detect may be called concurrently for different pairs.
type Detector interface {
	Detect(a, b *entity.Entity) (Contact, bool)
}

// NarrowPhase is the default Detector. It sweeps the hit points of each entity against the boundary of the
// other, relative to the other's motion over the tick.
type NarrowPhase struct{}

// Detect ...
func (NarrowPhase) Detect(a, b *entity.Entity) (Contact, bool) {
	if a.Dead() || b.Dead() || a == b {
		return Contact{}, false
	}
	if a.FiredBy(b) || b.FiredBy(a) {
		return Contact{}, false
	}

	c, ok := sweep(a, b)
	if rev, revOK := sweep(b, a); revOK && (!ok || rev.Time < c.Time) {
		c, ok = Contact{Time: rev.Time, Normal: rev.Normal.Mul(-1), Point: rev.Point}, true
	}
	if !ok {
		return Contact{}, false
	}
	c.A, c.B = a, b
	return c, true
}

// sweep tests the hit points of mover against the boundary of target. The returned normal is the outward
// normal of target's face.
func sweep(mover, target *entity.Entity) (Contact, bool) {
	tris := target.Boundary()
	if len(tris) == 0 {
		return Contact{}, false
	}
	predicted := target.Predicted().Position
	shift := predicted.Sub(target.Position())
	bb := game.SphereBox(predicted, target.Range())

	var (
		best  Contact
		found bool
	)
	for _, seg := range mover.HitSegments() {
		seg.Start = seg.Start.Add(shift)
		if !game.SegmentMayHitBox(bb, seg.Start, seg.End) {
			continue
		}
		for _, tri := range tris {
			toi, ok := tri.Intersect(seg)
			if !ok || (found && toi >= best.Time) {
				continue
			}
			best = Contact{Time: toi, Normal: tri.Normal(), Point: seg.At(toi)}
			found = true
		}
	}
	return best, found
}
