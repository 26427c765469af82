// Profiling:
// go build ./example/profile
// ./profile -mode cpu
// go tool pprof -http=":8000" -nodefraction=0.001 ./profile cpu.pprof

package main

import (
	"context"
	"flag"
	"io"
	"log/slog"
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/oomph-ac/dogfight/collision"
	"github.com/oomph-ac/dogfight/entity"
	"github.com/oomph-ac/dogfight/geometry"
	"github.com/oomph-ac/dogfight/world"
	"github.com/pkg/profile"
)

var (
	mode     = flag.String("mode", "cpu", "cpu, mem or block")
	bodies   = flag.Int("bodies", 2000, "number of bodies")
	ticks    = flag.Int("ticks", 600, "number of ticks to step")
	touched  = flag.Bool("touched", false, "only re-check pairs touched by the previous resolution pass")
	workers  = flag.Int("workers", 0, "narrow-phase workers, 0 for one per CPU, -1 for none")
	extent   = flag.Float64("extent", 200, "half size of the cube bodies are spawned in")
	maxSpeed = flag.Float64("speed", 30, "maximum initial speed of a body")
)

func main() {
	flag.Parse()

	var opt func(*profile.Profile)
	switch *mode {
	case "mem":
		opt = profile.MemProfileAllocs
	case "block":
		opt = profile.BlockProfile
	default:
		opt = profile.CPUProfile
	}

	w := setup()
	defer w.Close()

	p := profile.Start(opt, profile.ProfilePath("."), profile.NoShutdownHook)
	run(w, *ticks)
	p.Stop()
}

func setup() *world.World {
	conf := world.DefaultConfig(geometry.NewLibrary(geometry.Cube("body", 1)))
	conf.Log = slog.New(slog.NewTextHandler(io.Discard, nil))
	conf.Gravity = mgl64.Vec3{}
	conf.Workers = *workers
	if *touched {
		conf.Recheck = collision.RecheckTouched
	}
	w := world.New(conf)

	r := rand.New(rand.NewSource(1))
	random := func(scale float64) mgl64.Vec3 {
		return mgl64.Vec3{r.Float64()*2 - 1, r.Float64()*2 - 1, r.Float64()*2 - 1}.Mul(scale)
	}
	for range *bodies {
		if _, err := w.Spawn(entity.Request{
			Shape:    "body",
			Behavior: entity.Behavior{Kind: entity.KindBallistic},
			Mass:     1 + r.Float64()*4,
			Position: random(*extent),
			Velocity: random(*maxSpeed),
			Angular:  random(1),
		}); err != nil {
			panic(err)
		}
	}
	return w
}

func run(w *world.World, n int) {
	ctx := context.Background()
	for range n {
		if _, err := w.Step(ctx); err != nil {
			panic(err)
		}
	}
}
