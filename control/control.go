package control

import "github.com/oomph-ac/dogfight/game"

// Input is the numeric output of whatever drives an entity: a player, AI or a replay.
type Input struct {
	Throttle float64
	Yaw      float64
	Pitch    float64
	Roll     float64

	Fire    bool
	AltFire bool
}

// Clamped returns the input with every axis limited to [-1, 1]. Non-finite axes are zeroed.
func (in Input) Clamped() Input {
	clampAxis := func(v float64) float64 {
		if !game.Finite(v) {
			return 0
		}
		return game.ClampFloat(v, -1, 1)
	}
	in.Throttle = clampAxis(in.Throttle)
	in.Yaw = clampAxis(in.Yaw)
	in.Pitch = clampAxis(in.Pitch)
	in.Roll = clampAxis(in.Roll)
	return in
}

// Controller is polled once per prediction for the entity's current input.
type Controller interface {
	Input() Input
}

// Nop is a Controller that never produces any input.
type Nop struct{}

// Input ...
func (Nop) Input() Input {
	return Input{}
}

// Func adapts a function to the Controller interface.
type Func func() Input

// Input ...
func (f Func) Input() Input {
	return f()
}
