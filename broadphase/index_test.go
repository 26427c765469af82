package broadphase

import (
	"math"
	"math/rand"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

type mockBody struct {
	id     uint32
	center mgl64.Vec3
	radius float64
	static bool
	dead   bool
}

func (b *mockBody) ID() uint32 { return b.id }
func (b *mockBody) Bounds() (mgl64.Vec3, float64) { return b.center, b.radius }
func (b *mockBody) Static() bool { return b.static }
func (b *mockBody) Dead() bool { return b.dead }

func overlaps(a, b *mockBody) bool {
	for axis := range 3 {
		if a.center[axis]+a.radius < b.center[axis]-b.radius || b.center[axis]+b.radius < a.center[axis]-a.radius {
			return false
		}
	}
	return true
}

func randomBodies(r *rand.Rand, n int) []*mockBody {
	bodies := make([]*mockBody, n)
	for i := range bodies {
		bodies[i] = &mockBody{
			id:     uint32(i + 1),
			center: mgl64.Vec3{r.Float64() * 50, r.Float64() * 50, r.Float64() * 50},
			radius: 0.5 + r.Float64()*3,
		}
	}
	return bodies
}

func buildIndex(bodies []*mockBody) *Index[*mockBody] {
	idx := New[*mockBody]()
	for _, b := range bodies {
		idx.Insert(b)
	}
	idx.Rebuild()
	return idx
}

type pairKey struct{ a, b uint32 }

func TestPairsCompleteAndSymmetric(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	bodies := randomBodies(r, 200)
	idx := buildIndex(bodies)

	for step := range 5 {
		for _, b := range bodies {
			b.center = b.center.Add(mgl64.Vec3{r.Float64() - 0.5, r.Float64() - 0.5, r.Float64() - 0.5}.Mul(4))
		}
		idx.Update()
		if err := idx.Validate(); err != nil {
			t.Fatalf("step %d: %v", step, err)
		}

		seen := make(map[pairKey]bool)
		for _, p := range idx.Pairs() {
			if p.A.ID() >= p.B.ID() {
				t.Fatalf("pair (%d, %d) is not ordered by id", p.A.ID(), p.B.ID())
			}
			k := pairKey{p.A.ID(), p.B.ID()}
			if seen[k] {
				t.Fatalf("pair (%d, %d) reported twice", k.a, k.b)
			}
			seen[k] = true
			if !overlaps(p.A, p.B) {
				t.Fatalf("pair (%d, %d) does not overlap", k.a, k.b)
			}
		}
		for i, a := range bodies {
			for _, b := range bodies[i+1:] {
				if overlaps(a, b) && !seen[pairKey{a.id, b.id}] {
					t.Fatalf("step %d: missing overlapping pair (%d, %d)", step, a.id, b.id)
				}
			}
		}
		if idx.CandidateCount() != len(seen) {
			t.Fatalf("expected candidate count %d, got %d", len(seen), idx.CandidateCount())
		}
	}
}

func TestRebuildMergesAndDropsDead(t *testing.T) {
	r := rand.New(rand.NewSource(2))
	bodies := randomBodies(r, 50)
	idx := buildIndex(bodies[:30])
	if idx.Len() != 30 {
		t.Fatalf("expected 30 bodies, got %d", idx.Len())
	}

	for _, b := range bodies[30:] {
		idx.Insert(b)
	}
	if idx.Len() != 30 {
		t.Fatalf("staged bodies must not be visible before a rebuild")
	}
	for _, b := range bodies[:10] {
		b.dead = true
	}
	idx.Rebuild()
	if idx.Len() != 40 {
		t.Fatalf("expected 40 bodies after rebuild, got %d", idx.Len())
	}
	if err := idx.Validate(); err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}
	for _, b := range idx.Bodies() {
		if b.dead {
			t.Fatalf("dead body %d left in the index", b.id)
		}
	}
}

func TestStaticPairedWithEveryDynamic(t *testing.T) {
	ground := &mockBody{id: 1, static: true, radius: 1}
	a := &mockBody{id: 2, center: mgl64.Vec3{100, 0, 0}, radius: 1}
	b := &mockBody{id: 3, center: mgl64.Vec3{-100, 0, 0}, radius: 1}
	idx := buildIndex([]*mockBody{ground, a, b})

	pairs := idx.Pairs()
	if len(pairs) != 2 {
		t.Fatalf("expected 2 pairs, got %d", len(pairs))
	}
	for _, p := range pairs {
		if p.A != ground {
			t.Fatalf("expected the static body with the lowest id first, got %d", p.A.ID())
		}
	}

	ground.dead = true
	idx.Rebuild()
	if len(idx.Pairs()) != 0 {
		t.Fatalf("expected no pairs once the static body is dead")
	}
}

func TestSeparatedBodiesProduceNoPairs(t *testing.T) {
	// Overlapping on two axes only.
	a := &mockBody{id: 1, center: mgl64.Vec3{0, 0, 0}, radius: 1}
	b := &mockBody{id: 2, center: mgl64.Vec3{0.5, 0.5, 5}, radius: 1}
	idx := buildIndex([]*mockBody{a, b})
	if len(idx.Pairs()) != 0 {
		t.Fatalf("expected no pairs")
	}
	b.center = mgl64.Vec3{0.5, 0.5, 1.5}
	idx.Update()
	if len(idx.Pairs()) != 1 {
		t.Fatalf("expected one pair after moving into overlap")
	}
}

func TestNonFiniteBoundsParked(t *testing.T) {
	p := &mockBody{id: 1, center: mgl64.Vec3{0.5, 0, 0}, radius: 0.5}
	r := &mockBody{id: 2, center: mgl64.Vec3{5.5, 0, 0}, radius: 0.5}
	n := &mockBody{id: 3, center: mgl64.Vec3{7, 0, 0}, radius: 0.5}
	q := &mockBody{id: 4, center: mgl64.Vec3{8, 0, 0}, radius: 0.5}
	idx := buildIndex([]*mockBody{p, r, n, q})

	n.center, n.radius = mgl64.Vec3{math.Inf(1), 0, 0}, math.Inf(1)
	q.center = mgl64.Vec3{1, 0, 0}
	idx.Update()
	if err := idx.Validate(); err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}

	var found bool
	for _, pair := range idx.Pairs() {
		if pair.A == n || pair.B == n {
			t.Fatalf("body with non-finite bounds paired with %d", pair.A.ID()+pair.B.ID()-n.id)
		}
		if pair.A == p && pair.B == q {
			found = true
		}
	}
	if !found {
		t.Fatal("overlapping pair (1, 4) missed next to a body with non-finite bounds")
	}

	n.center, n.radius = mgl64.Vec3{7, 0, 0}, 0.5
	idx.Update()
	if err := idx.Validate(); err != nil {
		t.Fatalf("unexpected validation error once bounds are finite again: %v", err)
	}
}

func TestValidateRejectsNonFiniteInterval(t *testing.T) {
	idx := buildIndex([]*mockBody{
		{id: 1, radius: 1},
		{id: 2, center: mgl64.Vec3{3, 0, 0}, radius: 1},
	})
	idx.axes[0][1].min[0] = math.NaN()
	if idx.Validate() == nil {
		t.Fatal("expected NaN interval to fail validation")
	}
}
