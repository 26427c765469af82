package world

import (
	"log/slog"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/oomph-ac/dogfight/clock"
	"github.com/oomph-ac/dogfight/collision"
	"github.com/oomph-ac/dogfight/game"
	"github.com/oomph-ac/dogfight/geometry"
)

// Config holds the parameters of a World. The zero value of every field except Shapes is usable.
type Config struct {
	Log    *slog.Logger
	Shapes geometry.Provider
	// Clock is advanced by the world once per successful step. It defaults to a fixed-rate clock at
	// game.DefaultTickRate.
	Clock   clock.Ticker
	Gravity mgl64.Vec3

	MaxIterations    int
	SeparatingEnergy float64
	Recheck          collision.RecheckMode
	// Detector replaces the narrow-phase. Mostly useful in tests.
	Detector collision.Detector

	// Workers is the size of the narrow-phase worker pool. Zero shares the process-wide pool, a negative
	// value runs the narrow-phase on the simulation goroutine only.
	Workers           int
	ParallelThreshold int

	SampleCapacity   int
	MaxExtrapolation float64
	// InertLifetime is the lifetime given to inert entities built without one.
	InertLifetime float64
}

// DefaultConfig returns a config using the default constants and the given shapes.
func DefaultConfig(shapes geometry.Provider) Config {
	return Config{
		Shapes:            shapes,
		Gravity:           mgl64.Vec3{0, -game.StandardGravity, 0},
		MaxIterations:     game.DefaultMaxIterations,
		SeparatingEnergy:  game.DefaultSeparatingEnergy,
		ParallelThreshold: game.DefaultParallelThreshold,
		SampleCapacity:    game.DefaultSampleCapacity,
		MaxExtrapolation:  game.DefaultMaxExtrapolation,
		InertLifetime:     5,
	}
}
