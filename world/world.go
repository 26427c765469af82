package world

import (
	"encoding/binary"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/elliotchance/orderedmap/v2"
	"github.com/google/uuid"
	"github.com/oomph-ac/dogfight/broadphase"
	"github.com/oomph-ac/dogfight/clock"
	"github.com/oomph-ac/dogfight/collision"
	"github.com/oomph-ac/dogfight/entity"
	"github.com/oomph-ac/dogfight/game"
	"github.com/oomph-ac/dogfight/oerror"
	"github.com/oomph-ac/dogfight/utils"
	"github.com/oomph-ac/dogfight/worker"
	"github.com/sasha-s/go-deadlock"
	"github.com/zeebo/xxh3"
	"go.uber.org/atomic"
)

// World owns every entity of a simulation along with the broad-phase index and the collision resolver.
// Step must only be called from one goroutine. Every other exported method is safe for concurrent use.
type World struct {
	id    uuid.UUID
	conf  Config
	log   *slog.Logger
	clock clock.Ticker

	factory  entity.Factory
	sink     *Sink
	index    *broadphase.Index[*entity.Entity]
	resolver *collision.Resolver
	pool     *worker.Pool
	ownPool  bool

	// mu protects entities, the id allocator and the published snapshot.
	mu       deadlock.RWMutex
	entities *orderedmap.OrderedMap[uint32, *entity.Entity]
	free     []uint32
	nextID   uint32
	snapshot Snapshot

	tick       atomic.Uint64
	candidates atomic.Int64
	rejected   atomic.Uint64
	unresolved atomic.Uint64
	lastStep   atomic.Duration
}

// New creates an empty world.
func New(conf Config) *World {
	if conf.Log == nil {
		conf.Log = slog.Default()
	}
	if conf.Clock == nil {
		conf.Clock = clock.NewStepper(1.0/game.DefaultTickRate, game.DefaultRenderDelay)
	}
	if conf.SampleCapacity <= 0 {
		conf.SampleCapacity = game.DefaultSampleCapacity
	}

	id := uuid.New()
	w := &World{
		id:       id,
		conf:     conf,
		log:      conf.Log.With("world", id.String()),
		clock:    conf.Clock,
		sink:     &Sink{},
		index:    broadphase.New[*entity.Entity](),
		entities: orderedmap.NewOrderedMap[uint32, *entity.Entity](),
		nextID:   entity.NoID + 1,
	}
	switch {
	case conf.Workers > 0:
		w.pool, w.ownPool = worker.New(conf.Workers), true
	case conf.Workers == 0:
		w.pool = worker.Default()
	}
	w.factory = entity.Factory{
		Shapes:           conf.Shapes,
		Entities:         w,
		SampleCapacity:   conf.SampleCapacity,
		MaxExtrapolation: conf.MaxExtrapolation,
		InertLifetime:    conf.InertLifetime,
	}
	w.resolver = collision.NewResolver(w.index, collision.Config{
		MaxIterations:     conf.MaxIterations,
		SeparatingEnergy:  conf.SeparatingEnergy,
		Recheck:           conf.Recheck,
		ParallelThreshold: conf.ParallelThreshold,
		Pool:              w.pool,
		Detector:          conf.Detector,
		Log:               w.log,
	})
	w.snapshot = Snapshot{Time: w.clock.Now(), RenderTime: w.clock.RenderTime()}
	return w
}

// ID returns the unique run id of the world.
func (w *World) ID() uuid.UUID {
	return w.id
}

// Clock returns the clock the world advances.
func (w *World) Clock() clock.Clock {
	return w.clock
}

// Sink returns the sink through which entities are added to and removed from the world.
func (w *World) Sink() *Sink {
	return w.sink
}

// Close stops the worker pool if the world created its own.
func (w *World) Close() {
	if w.ownPool {
		w.pool.Close()
	}
}

// Spawn builds the entity described by req and queues it to join the world on the next tick. It returns the
// id given to the entity.
func (w *World) Spawn(req entity.Request) (uint32, error) {
	id := w.allocateID()
	e, err := w.factory.Build(id, req, w.clock.Now())
	if err != nil {
		w.releaseID(id)
		return entity.NoID, fmt.Errorf("spawn: %w", err)
	}
	w.sink.Push(e)
	return id, nil
}

// Remove queues the entity with the given id for removal on the next tick.
func (w *World) Remove(id uint32) error {
	if _, ok := w.Entity(id); !ok {
		return fmt.Errorf("remove %d: %w", id, oerror.ErrMissingReference)
	}
	w.sink.Remove(id)
	return nil
}

// Entity returns the live entity with the given id.
func (w *World) Entity(id uint32) (*entity.Entity, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	e, ok := w.entities.Get(id)
	return e, ok
}

// Len returns the number of entities registered in the world.
func (w *World) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.entities.Len()
}

// CandidateCount returns the number of broad-phase candidate pairs found on the last tick.
func (w *World) CandidateCount() int {
	return int(w.candidates.Load())
}

// StateHash returns a digest of the authoritative state of every entity, in registration order.
func (w *World) StateHash() uint64 {
	w.mu.RLock()
	defer w.mu.RUnlock()

	h := xxh3.New()
	bp := utils.GetBuffer()
	defer utils.PutBuffer(bp)
	buf := *bp
	for el := w.entities.Front(); el != nil; el = el.Next() {
		s := el.Value.State()
		buf = binary.LittleEndian.AppendUint32(buf[:0], el.Key)
		for _, f := range []float64{
			s.Position[0], s.Position[1], s.Position[2],
			s.Rotation.W, s.Rotation.V[0], s.Rotation.V[1], s.Rotation.V[2],
			s.Velocity[0], s.Velocity[1], s.Velocity[2],
			s.Angular[0], s.Angular[1], s.Angular[2],
		} {
			buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(f))
		}
		_, _ = h.Write(buf)
	}
	*bp = buf
	return h.Sum64()
}

// Metrics is a point-in-time view of the world's counters.
type Metrics struct {
	Ticks      uint64
	Entities   int
	Candidates int
	Rejected   uint64
	Unresolved uint64
	LastStep   time.Duration
}

// Metrics ...
func (w *World) Metrics() Metrics {
	return Metrics{
		Ticks:      w.tick.Load(),
		Entities:   w.Len(),
		Candidates: w.CandidateCount(),
		Rejected:   w.rejected.Load(),
		Unresolved: w.unresolved.Load(),
		LastStep:   w.lastStep.Load(),
	}
}

func (w *World) allocateID() uint32 {
	w.mu.Lock()
	defer w.mu.Unlock()
	if n := len(w.free); n > 0 {
		id := w.free[n-1]
		w.free = w.free[:n-1]
		return id
	}
	id := w.nextID
	w.nextID++
	return id
}

func (w *World) releaseID(id uint32) {
	w.mu.Lock()
	w.free = append(w.free, id)
	w.mu.Unlock()
}

// warn logs a warning with an ordered detail string.
func (w *World) warn(msg string, detail *orderedmap.OrderedMap[string, any], args ...any) {
	args = append(args, "detail", utils.OrderedMapToString(detail))
	w.log.Warn(msg, args...)
}

var _ entity.Resolver = (*World)(nil)
