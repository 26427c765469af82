package collision

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/elliotchance/orderedmap/v2"
	"github.com/oomph-ac/dogfight/broadphase"
	"github.com/oomph-ac/dogfight/entity"
	"github.com/oomph-ac/dogfight/game"
	"github.com/oomph-ac/dogfight/utils"
	"github.com/oomph-ac/dogfight/worker"
)

// RecheckMode selects which candidate pairs are tested again after the first resolution pass.
type RecheckMode uint8

const (
	// RecheckExhaustive tests every candidate pair on every pass.
	RecheckExhaustive RecheckMode = iota
	// RecheckTouched only tests pairs holding an entity whose velocity changed in the previous pass.
	RecheckTouched
)

// String ...
func (m RecheckMode) String() string {
	if m == RecheckTouched {
		return "touched"
	}
	return "exhaustive"
}

// Config holds the parameters of a Resolver.
type Config struct {
	// MaxIterations bounds the number of passes per tick.
	MaxIterations int
	// SeparatingEnergy is added along the contact normal on every response.
	SeparatingEnergy float64
	Recheck          RecheckMode

	// ParallelThreshold is the pair count from which narrow-phase runs on Pool. Zero disables it.
	ParallelThreshold int
	Pool              *worker.Pool

	// Detector defaults to NarrowPhase.
	Detector Detector
	Log      *slog.Logger
}

// Result summarises one call to Resolve.
type Result struct {
	// Candidates is the number of broad-phase pairs on the first pass.
	Candidates int
	// Contacts holds every response applied, plus every spectral contact once.
	Contacts   []Contact
	Iterations int
	// Unresolved holds the contacts still present once the iteration budget ran out.
	Unresolved []Contact
}

type pairKey struct {
	a, b uint32
}

type slot struct {
	contact Contact
	ok      bool
}

// Resolver runs the iterative narrow-phase and response loop over the pairs of a broad-phase index. A
// Resolver is not safe for concurrent use.
type Resolver struct {
	conf  Config
	index *broadphase.Index[*entity.Entity]
	log   *slog.Logger

	slots    []slot
	selected []broadphase.Pair[*entity.Entity]
	touched  map[uint32]struct{}
	moved    []*entity.Entity
	reported map[pairKey]struct{}
}

// NewResolver creates a resolver over index.
func NewResolver(index *broadphase.Index[*entity.Entity], conf Config) *Resolver {
	if conf.MaxIterations <= 0 {
		conf.MaxIterations = game.DefaultMaxIterations
	}
	if conf.Detector == nil {
		conf.Detector = NarrowPhase{}
	}
	if conf.Log == nil {
		conf.Log = slog.Default()
	}
	return &Resolver{
		conf:     conf,
		index:    index,
		log:      conf.Log,
		touched:  make(map[uint32]struct{}),
		reported: make(map[pairKey]struct{}),
	}
}

// Config returns the configuration of the resolver.
func (r *Resolver) Config() Config {
	return r.conf
}

// Resolve detects and responds to collisions between the predicted states of the indexed entities until a
// pass finds nothing to respond to or the iteration budget runs out. dt is the tick delta used to move
// predicted positions after a response.
//
// The context is checked before every pass. If it is done, every indexed entity's predicted state is
// reset to its authoritative state and the context's error is returned.
func (r *Resolver) Resolve(ctx context.Context, dt float64) (Result, error) {
	var res Result
	clear(r.touched)
	clear(r.reported)

	for pass := range r.conf.MaxIterations {
		if err := ctx.Err(); err != nil {
			r.rollback()
			return res, err
		}
		if pass > 0 {
			r.index.Update()
		}
		pairs := r.index.Pairs()
		if pass == 0 {
			res.Candidates = len(pairs)
		} else if r.conf.Recheck == RecheckTouched {
			pairs = r.filterTouched(pairs)
		}

		contacts, err := r.detect(pairs)
		if err != nil {
			r.rollback()
			return res, err
		}
		res.Iterations = pass + 1

		clear(r.touched)
		r.moved = r.moved[:0]
		for _, c := range contacts {
			if c.Spectral() {
				key := pairKey{c.A.ID(), c.B.ID()}
				if _, ok := r.reported[key]; !ok {
					r.reported[key] = struct{}{}
					res.Contacts = append(res.Contacts, c)
				}
				continue
			}
			if Respond(c, r.conf.SeparatingEnergy) {
				r.touch(c.A)
				r.touch(c.B)
				res.Contacts = append(res.Contacts, c)
			}
		}
		r.log.Debug("resolve pass", "pass", pass, "pairs", len(pairs), "contacts", len(contacts), "touched", len(r.touched))
		if len(r.touched) == 0 {
			return res, nil
		}
		for _, e := range r.moved {
			e.Repredict(dt)
		}
	}

	r.index.Update()
	remaining, err := r.detect(r.index.Pairs())
	if err != nil {
		r.rollback()
		return res, err
	}
	for _, c := range remaining {
		if !c.Spectral() && !(c.A.Mass().Infinite() && c.B.Mass().Infinite()) {
			res.Unresolved = append(res.Unresolved, c)
		}
	}
	if len(res.Unresolved) > 0 {
		r.log.Warn("collisions left unresolved", "count", len(res.Unresolved), "detail", unresolvedDetail(res.Unresolved))
	}
	return res, nil
}

// touch records that the response changed e's predicted velocity on this pass.
func (r *Resolver) touch(e *entity.Entity) {
	if e.Mass().Infinite() {
		return
	}
	if _, ok := r.touched[e.ID()]; !ok {
		r.touched[e.ID()] = struct{}{}
		r.moved = append(r.moved, e)
	}
}

func (r *Resolver) filterTouched(pairs []broadphase.Pair[*entity.Entity]) []broadphase.Pair[*entity.Entity] {
	r.selected = r.selected[:0]
	for _, p := range pairs {
		_, a := r.touched[p.A.ID()]
		_, b := r.touched[p.B.ID()]
		if a || b {
			r.selected = append(r.selected, p)
		}
	}
	return r.selected
}

// detect runs the detector over every pair and returns the contacts ordered by time of impact, then ids.
func (r *Resolver) detect(pairs []broadphase.Pair[*entity.Entity]) ([]Contact, error) {
	if cap(r.slots) < len(pairs) {
		r.slots = make([]slot, len(pairs))
	}
	r.slots = r.slots[:len(pairs)]
	clear(r.slots)

	run := func(i int) {
		p := pairs[i]
		c, ok := r.conf.Detector.Detect(p.A, p.B)
		r.slots[i] = slot{contact: c, ok: ok}
	}
	if r.conf.Pool != nil && r.conf.ParallelThreshold > 0 && len(pairs) >= r.conf.ParallelThreshold {
		// Hit caches are filled lazily, so fill them before the detector runs concurrently.
		for _, p := range pairs {
			p.A.HitSegments()
			p.B.HitSegments()
		}
		if err := r.conf.Pool.Run(len(pairs), run); err != nil {
			return nil, fmt.Errorf("narrow-phase: %w", err)
		}
	} else {
		for i := range pairs {
			run(i)
		}
	}

	var contacts []Contact
	for _, s := range r.slots {
		if s.ok {
			contacts = append(contacts, s.contact)
		}
	}
	slices.SortStableFunc(contacts, func(x, y Contact) int {
		if c := cmp.Compare(x.Time, y.Time); c != 0 {
			return c
		}
		if c := cmp.Compare(x.A.ID(), y.A.ID()); c != 0 {
			return c
		}
		return cmp.Compare(x.B.ID(), y.B.ID())
	})
	return contacts, nil
}

func (r *Resolver) rollback() {
	for _, e := range r.index.Bodies() {
		e.Discard()
	}
}

func unresolvedDetail(contacts []Contact) string {
	detail := orderedmap.NewOrderedMap[string, any]()
	for i, c := range contacts {
		if i == 8 {
			detail.Set("more", len(contacts)-i)
			break
		}
		detail.Set(fmt.Sprintf("%d-%d", c.A.ID(), c.B.ID()), game.Round64(c.Time, 3))
	}
	return utils.OrderedMapToString(detail)
}
