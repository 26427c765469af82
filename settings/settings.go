package settings

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/oomph-ac/dogfight/clock"
	"github.com/oomph-ac/dogfight/collision"
	"github.com/oomph-ac/dogfight/game"
	"github.com/oomph-ac/dogfight/geometry"
	"github.com/oomph-ac/dogfight/world"
	"github.com/pelletier/go-toml"
)

// Settings contains everything that can be configured for a simulation.
type Settings struct {
	Simulation struct {
		TickRate    int
		RenderDelay float64
		// Gravity is the downward acceleration.
		Gravity float64
	}
	Collision struct {
		MaxIterations    int
		SeparatingEnergy float64
		// Recheck is either "exhaustive" or "touched".
		Recheck           string
		Workers           int
		ParallelThreshold int
	}
	Entity struct {
		SampleCapacity   int
		MaxExtrapolation float64
		InertLifetime    float64
	}
	Debug struct {
		// LogLevel is one of "debug", "info", "warn" or "error".
		LogLevel string
		// StatsView serves runtime charts on this address when not empty.
		StatsView string
	}
}

// DefaultSettings returns the default settings.
func DefaultSettings() Settings {
	s := Settings{}
	s.Simulation.TickRate = game.DefaultTickRate
	s.Simulation.RenderDelay = game.DefaultRenderDelay
	s.Simulation.Gravity = game.StandardGravity

	s.Collision.MaxIterations = game.DefaultMaxIterations
	s.Collision.SeparatingEnergy = game.DefaultSeparatingEnergy
	s.Collision.Recheck = collision.RecheckExhaustive.String()
	s.Collision.ParallelThreshold = game.DefaultParallelThreshold

	s.Entity.SampleCapacity = game.DefaultSampleCapacity
	s.Entity.MaxExtrapolation = game.DefaultMaxExtrapolation
	s.Entity.InertLifetime = 5

	s.Debug.LogLevel = "info"
	return s
}

// SaveDefault will create and save the default settings file. If the file already exists, it will return an error.
func SaveDefault(path string) error {
	s := DefaultSettings()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if data, err := toml.Marshal(s); err != nil {
			return fmt.Errorf("failed encoding default settings: %w", err)
		} else if err := os.WriteFile(path, data, 0644); err != nil {
			return fmt.Errorf("failed creating settings file: %w", err)
		}
		return nil
	}
	return errors.New("settings file already exists")
}

// Load will load the settings from your settings file, and return an error if the file does not exist.
// Values missing from the file keep their defaults.
func Load(path string) (Settings, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Settings{}, errors.New("settings file doesn't exist")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("error reading settings: %w", err)
	}

	settings := DefaultSettings()
	if err = toml.Unmarshal(data, &settings); err != nil {
		return Settings{}, fmt.Errorf("error decoding settings: %w", err)
	}
	if err := settings.Validate(); err != nil {
		return Settings{}, err
	}
	return settings, nil
}

// Validate returns an error if any value cannot be used.
func (s Settings) Validate() error {
	if s.Simulation.TickRate <= 0 {
		return fmt.Errorf("tick rate must be positive, got %d", s.Simulation.TickRate)
	}
	if s.Simulation.RenderDelay < 0 {
		return fmt.Errorf("render delay must not be negative, got %v", s.Simulation.RenderDelay)
	}
	if s.Collision.MaxIterations <= 0 {
		return fmt.Errorf("max iterations must be positive, got %d", s.Collision.MaxIterations)
	}
	if _, err := s.RecheckMode(); err != nil {
		return err
	}
	if _, err := s.LogLevel(); err != nil {
		return err
	}
	return nil
}

// RecheckMode parses the configured collision re-check mode.
func (s Settings) RecheckMode() (collision.RecheckMode, error) {
	switch strings.ToLower(s.Collision.Recheck) {
	case "", "exhaustive":
		return collision.RecheckExhaustive, nil
	case "touched":
		return collision.RecheckTouched, nil
	}
	return 0, fmt.Errorf("unknown recheck mode %q", s.Collision.Recheck)
}

// LogLevel parses the configured log level.
func (s Settings) LogLevel() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s.Debug.LogLevel)); err != nil {
		return 0, fmt.Errorf("invalid log level: %w", err)
	}
	return l, nil
}

// WorldConfig converts the settings into a world configuration.
func (s Settings) WorldConfig(shapes geometry.Provider, log *slog.Logger) world.Config {
	recheck, _ := s.RecheckMode()
	return world.Config{
		Log:               log,
		Shapes:            shapes,
		Clock:             clock.NewStepper(1/float64(s.Simulation.TickRate), s.Simulation.RenderDelay),
		Gravity:           mgl64.Vec3{0, -s.Simulation.Gravity, 0},
		MaxIterations:     s.Collision.MaxIterations,
		SeparatingEnergy:  s.Collision.SeparatingEnergy,
		Recheck:           recheck,
		Workers:           s.Collision.Workers,
		ParallelThreshold: s.Collision.ParallelThreshold,
		SampleCapacity:    s.Entity.SampleCapacity,
		MaxExtrapolation:  s.Entity.MaxExtrapolation,
		InertLifetime:     s.Entity.InertLifetime,
	}
}
