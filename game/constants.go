package game

const (
	// DefaultTickRate is the number of simulation ticks per second.
	DefaultTickRate = 60
	// DefaultRenderDelay is how far, in seconds, render time trails simulation time.
	DefaultRenderDelay = 0.1

	// DefaultMaxIterations bounds the collision resolution loop per tick.
	DefaultMaxIterations = 8
	// DefaultSeparatingEnergy is the energy injected along the contact normal on every response.
	DefaultSeparatingEnergy = 0.5
	// DefaultParallelThreshold is the candidate pair count from which narrow-phase runs on the worker pool.
	DefaultParallelThreshold = 64

	// DefaultSampleCapacity is the length of each entity's interpolation buffers.
	DefaultSampleCapacity = 16
	// DefaultMaxExtrapolation bounds how far, in seconds, positions are extrapolated past the newest sample.
	DefaultMaxExtrapolation = 0.25

	// StandardGravity is the default downward acceleration.
	StandardGravity = 9.81
)
