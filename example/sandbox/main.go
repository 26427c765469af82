package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"math"
	"os"
	"os/signal"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/go-echarts/statsview"
	"github.com/go-echarts/statsview/viewer"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/oomph-ac/dogfight/control"
	"github.com/oomph-ac/dogfight/entity"
	"github.com/oomph-ac/dogfight/geometry"
	"github.com/oomph-ac/dogfight/settings"
	"github.com/oomph-ac/dogfight/world"
	"golang.org/x/sync/errgroup"
)

var (
	settingsPath = flag.String("settings", "dogfight.toml", "path of the settings file, created with defaults if missing")
	duration     = flag.Duration("duration", 30*time.Second, "how long to run the sandbox for")
	frameRate    = flag.Int("fps", 144, "render samples per second")
)

// The following program runs a small dogfight: two fighters circling each other over static ground, one of
// them firing guided missiles, while a second loop samples the world the way a renderer would.
func main() {
	flag.Parse()

	if err := settings.SaveDefault(*settingsPath); err == nil {
		slog.Info("created default settings", "path", *settingsPath)
	}
	s, err := settings.Load(*settingsPath)
	if err != nil {
		panic(err)
	}
	level, _ := s.LogLevel()
	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))

	if dsn := os.Getenv("SENTRY_DSN"); dsn != "" {
		if err := sentry.Init(sentry.ClientOptions{Dsn: dsn}); err != nil {
			log.Error("sentry disabled", "error", err)
		}
		defer sentry.Flush(2 * time.Second)
	}

	if addr := s.Debug.StatsView; addr != "" || os.Getenv("PPROF_ENABLED") != "" {
		if addr == "" {
			addr = "localhost:8080"
		}
		// set configurations before calling `statsview.New()` method
		viewer.SetConfiguration(viewer.WithTheme(viewer.ThemeWesteros), viewer.WithAddr(addr))

		mgr := statsview.New()
		go mgr.Start()
		defer mgr.Stop()
	}

	w := world.New(s.WorldConfig(shapes(), log))
	defer w.Close()
	if err := populate(w); err != nil {
		panic(err)
	}
	log.Info("sandbox started", "world", w.ID(), "duration", *duration)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, *duration)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return simulate(ctx, w, log)
	})
	g.Go(func() error {
		return render(ctx, w, log)
	})
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		log.Error("sandbox stopped", "error", err)
		return
	}
	m := w.Metrics()
	log.Info("sandbox finished", "ticks", m.Ticks, "entities", m.Entities, "rejected", m.Rejected, "unresolved", m.Unresolved)
}

func shapes() *geometry.Library {
	return geometry.NewLibrary(
		geometry.Box("fighter", 1.5, 0.4, 2),
		geometry.Cube("missile", 0.3),
		geometry.Cube("shield", 3),
		geometry.Quad("ground", 2000),
	)
}

func populate(w *world.World) error {
	if _, err := w.Spawn(entity.Request{
		Shape:    "ground",
		Behavior: entity.Behavior{Kind: entity.KindStatic},
	}); err != nil {
		return err
	}

	blue, err := w.Spawn(entity.Request{
		Shape:      "fighter",
		Behavior:   entity.DefaultThruster(),
		Mass:       8,
		Position:   mgl64.Vec3{-60, 80, 0},
		Velocity:   mgl64.Vec3{0, 0, 40},
		Controller: weave(0.7, 0.3, false),
	})
	if err != nil {
		return err
	}
	// The target has to be registered before anything can reference it.
	if _, err := w.Step(context.Background()); err != nil {
		return err
	}

	red := entity.DefaultThruster()
	red.Thruster.Weapon = &entity.Weapon{
		Cooldown:    1.5,
		MuzzleSpeed: 80,
		Offset:      mgl64.Vec3{0, 0, 3},
		Projectile: entity.ProjectileSpec{
			Shape:     "missile",
			Mass:      0.5,
			Lifetime:  6,
			Guided:    true,
			Ballistic: entity.Ballistic{Drag: 0.02, Homing: 15, AngularPreserve: 0.5},
		},
	}
	if _, err := w.Spawn(entity.Request{
		Shape:      "fighter",
		Behavior:   red,
		Mass:       8,
		Position:   mgl64.Vec3{60, 80, 0},
		Rotation:   mgl64.QuatRotate(math.Pi, mgl64.Vec3{0, 1, 0}),
		Velocity:   mgl64.Vec3{0, 0, -40},
		Controller: weave(0.9, -0.25, true),
		Target:     blue,
	}); err != nil {
		return err
	}

	_, err = w.Spawn(entity.Request{
		Shape:    "shield",
		Behavior: entity.Behavior{Kind: entity.KindShield, Shield: entity.Shield{Spin: mgl64.Vec3{0, 0.5, 0}}},
		Mass:     50,
		Position: mgl64.Vec3{0, 80, 0},
		Spectral: true,
	})
	return err
}

// weave returns a controller that holds the throttle and slowly alternates its turn direction.
func weave(throttle, yaw float64, fire bool) control.Controller {
	start := time.Now()
	return control.Func(func() control.Input {
		t := time.Since(start).Seconds()
		return control.Input{
			Throttle: throttle,
			Yaw:      yaw * math.Sin(t/3),
			Pitch:    0.1 * math.Cos(t/2),
			Fire:     fire,
		}
	})
}

func simulate(ctx context.Context, w *world.World, log *slog.Logger) error {
	ticker := time.NewTicker(time.Duration(w.Clock().Delta() * float64(time.Second)))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
		r, err := w.Step(ctx)
		if err != nil {
			return err
		}
		for _, c := range r.Contacts {
			log.Debug("contact", "tick", r.Tick, "a", c.A.ID(), "b", c.B.ID(), "spectral", c.Spectral())
		}
	}
}

func render(ctx context.Context, w *world.World, log *slog.Logger) error {
	ticker := time.NewTicker(time.Second / time.Duration(max(*frameRate, 1)))
	defer ticker.Stop()
	report := time.NewTicker(time.Second)
	defer report.Stop()

	var frames, lastTick uint64
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-report.C:
			s := w.Snapshot()
			log.Info("render", "frames", frames, "ticks", s.Tick-lastTick, "entities", len(s.Entities), "candidates", w.CandidateCount())
			frames, lastTick = 0, s.Tick
		case <-ticker.C:
			s := w.Snapshot()
			_ = s.Frames(w.Clock().RenderTime())
			frames++
		}
	}
}
