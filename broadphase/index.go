package broadphase

import (
	"cmp"
	"math"
	"slices"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/oomph-ac/dogfight/assert"
	"github.com/oomph-ac/dogfight/game"
	"github.com/oomph-ac/dogfight/oerror"
)

// Body is anything that can be held by an Index.
type Body interface {
	// ID returns a small, unique, non-zero id. Ids are used to index the pair counter, so they should be dense.
	ID() uint32
	// Bounds returns the sphere enclosing everything the body may touch this tick.
	Bounds() (mgl64.Vec3, float64)
	Static() bool
	Dead() bool
}

// Pair is a candidate pair of bodies whose bounds overlap. A always has the lower id.
type Pair[B Body] struct {
	A, B B
}

type proxy[B Body] struct {
	body     B
	min, max mgl64.Vec3
	// parked proxies had non-finite bounds. They sort to the end of every axis and are never paired.
	parked bool
}

func (p *proxy[B]) refresh() {
	c, r := p.body.Bounds()
	ext := mgl64.Vec3{r, r, r}
	p.min, p.max = c.Sub(ext), c.Add(ext)
	p.parked = !game.FiniteVec3(p.min) || !game.FiniteVec3(p.max)
	if p.parked {
		inf := math.Inf(1)
		p.min, p.max = mgl64.Vec3{inf, inf, inf}, mgl64.Vec3{inf, inf, inf}
	}
}

// Index is a sweep-and-prune broad-phase over three axes. Dynamic bodies are kept in one array per axis,
// sorted by the lower bound of their interval on that axis. Static bodies are kept apart and paired with
// every dynamic body. An Index is not safe for concurrent use.
type Index[B Body] struct {
	axes    [3][]*proxy[B]
	statics []B
	staged  []B

	counters []uint8
	pairs    []Pair[B]
}

// New creates an empty index.
func New[B Body]() *Index[B] {
	return &Index[B]{}
}

// Insert stages a body. It becomes visible to Pairs after the next Rebuild.
func (idx *Index[B]) Insert(b B) {
	idx.staged = append(idx.staged, b)
}

// Len returns the number of bodies held, not counting staged ones.
func (idx *Index[B]) Len() int {
	return len(idx.axes[0]) + len(idx.statics)
}

// CandidateCount returns the number of pairs produced by the last call to Pairs.
func (idx *Index[B]) CandidateCount() int {
	return len(idx.pairs)
}

// Bodies returns every body held by the index, dynamic bodies first in x-axis order.
func (idx *Index[B]) Bodies() []B {
	out := make([]B, 0, idx.Len())
	for _, p := range idx.axes[0] {
		out = append(out, p.body)
	}
	return append(out, idx.statics...)
}

// Rebuild refreshes all bounds, re-sorts the axes, merges staged bodies in and drops dead ones.
func (idx *Index[B]) Rebuild() {
	idx.refresh()

	var fresh []*proxy[B]
	for _, b := range idx.staged {
		switch {
		case b.Dead():
		case b.Static():
			idx.statics = append(idx.statics, b)
		default:
			p := &proxy[B]{body: b}
			p.refresh()
			fresh = append(fresh, p)
		}
	}
	clear(idx.staged)
	idx.staged = idx.staged[:0]

	for axis := range idx.axes {
		slices.SortFunc(fresh, func(a, b *proxy[B]) int {
			return cmp.Compare(a.min[axis], b.min[axis])
		})
		idx.axes[axis] = merge(idx.axes[axis], fresh, axis)
	}
	idx.statics = slices.DeleteFunc(idx.statics, func(b B) bool {
		return b.Dead()
	})
	idx.check()
}

// Update refreshes the bounds of every dynamic body and restores the sort order. It is called after bodies
// moved without the set of bodies changing.
func (idx *Index[B]) Update() {
	idx.refresh()
	idx.check()
}

func (idx *Index[B]) refresh() {
	for _, p := range idx.axes[0] {
		p.refresh()
	}
	for axis := range idx.axes {
		insertionSort(idx.axes[axis], axis)
	}
}

func (idx *Index[B]) check() {
	if assert.Enabled {
		err := idx.Validate()
		assert.IsTrue(err == nil, "broadphase: %v", err)
	}
}

// Validate returns an error if any axis is out of order or holds a non-finite interval that was not parked.
func (idx *Index[B]) Validate() error {
	for axis, list := range idx.axes {
		if len(list) != len(idx.axes[0]) {
			return oerror.New("axis %d holds %d bodies, axis 0 holds %d", axis, len(list), len(idx.axes[0]))
		}
		for i, p := range list {
			if !p.parked && !(game.Finite(p.min[axis]) && game.Finite(p.max[axis])) {
				return oerror.New("axis %d: body %d has non-finite bounds [%v, %v]", axis, p.body.ID(), p.min[axis], p.max[axis])
			}
			if i > 0 && !(list[i-1].min[axis] <= p.min[axis]) {
				return oerror.New("axis %d unsorted at %d: %v > %v", axis, i, list[i-1].min[axis], p.min[axis])
			}
		}
	}
	return nil
}

// Pairs returns every pair of live bodies whose bounds overlap on all three axes, plus every pair of a
// static body with a dynamic one. The pairs are ordered by the ids of their bodies. The returned slice is
// reused by the next call.
func (idx *Index[B]) Pairs() []Pair[B] {
	idx.pairs = idx.pairs[:0]

	var maxID uint32
	for _, p := range idx.axes[0] {
		maxID = max(maxID, p.body.ID())
	}
	if size := int(maxID) * (int(maxID) + 1) / 2; len(idx.counters) < size {
		idx.counters = make([]uint8, size)
	} else {
		clear(idx.counters)
	}

	for axis, list := range idx.axes {
		for i, p := range list {
			if p.parked || p.body.Dead() {
				continue
			}
			for _, q := range list[i+1:] {
				if q.parked || q.min[axis] > p.max[axis] {
					break
				}
				if q.body.Dead() {
					continue
				}
				c := &idx.counters[counterIndex(p.body.ID(), q.body.ID())]
				if *c++; *c == 3 {
					idx.pairs = append(idx.pairs, orderedPair(p.body, q.body))
				}
			}
		}
	}

	for _, s := range idx.statics {
		if s.Dead() {
			continue
		}
		for _, p := range idx.axes[0] {
			if !p.parked && !p.body.Dead() {
				idx.pairs = append(idx.pairs, orderedPair(s, p.body))
			}
		}
	}

	slices.SortFunc(idx.pairs, func(x, y Pair[B]) int {
		if c := cmp.Compare(x.A.ID(), y.A.ID()); c != 0 {
			return c
		}
		return cmp.Compare(x.B.ID(), y.B.ID())
	})
	return idx.pairs
}

// counterIndex maps an unordered pair of distinct ids onto a triangular matrix.
func counterIndex(a, b uint32) int {
	lo, hi := int(min(a, b)), int(max(a, b))
	return hi*(hi-1)/2 + lo
}

func orderedPair[B Body](a, b B) Pair[B] {
	if a.ID() > b.ID() {
		a, b = b, a
	}
	return Pair[B]{A: a, B: b}
}

func insertionSort[B Body](list []*proxy[B], axis int) {
	for i := 1; i < len(list); i++ {
		p := list[i]
		j := i - 1
		for j >= 0 && list[j].min[axis] > p.min[axis] {
			list[j+1] = list[j]
			j--
		}
		list[j+1] = p
	}
}

// merge merges the sorted fresh proxies into the sorted list, dropping dead bodies from the list.
func merge[B Body](list, fresh []*proxy[B], axis int) []*proxy[B] {
	out := make([]*proxy[B], 0, len(list)+len(fresh))
	i, j := 0, 0
	for i < len(list) || j < len(fresh) {
		if i < len(list) && list[i].body.Dead() {
			i++
			continue
		}
		if j >= len(fresh) || (i < len(list) && list[i].min[axis] <= fresh[j].min[axis]) {
			out = append(out, list[i])
			i++
		} else {
			out = append(out, fresh[j])
			j++
		}
	}
	return out
}
