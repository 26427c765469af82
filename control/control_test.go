package control

import (
	"math"
	"testing"
)

func TestInputClamped(t *testing.T) {
	in := Input{Throttle: 3, Yaw: -7, Pitch: math.NaN(), Roll: 0.25, Fire: true}.Clamped()
	if in.Throttle != 1 || in.Yaw != -1 || in.Pitch != 0 || in.Roll != 0.25 || !in.Fire {
		t.Fatalf("unexpected clamped input: %+v", in)
	}
}

func TestScriptHoldsLastInput(t *testing.T) {
	s := NewScript(Input{Throttle: 0.5}, Input{Throttle: 1, Fire: true})
	if s.Input().Throttle != 0.5 {
		t.Fatal("expected first scripted input")
	}
	for range 3 {
		if in := s.Input(); in.Throttle != 1 || !in.Fire {
			t.Fatalf("expected the last input to repeat, got %+v", in)
		}
	}
	if (NewScript()).Input() != (Input{}) {
		t.Fatal("empty script must yield zero input")
	}
}
