package physics

import (
	"errors"
	"reflect"
	"testing"

	"github.com/san-kum/physanim/internal/dynamo"
)

type sceneCtor func(*dynamo.Viewport, int64) dynamo.Scene

var allScenes = map[dynamo.Kind]sceneCtor{
	dynamo.KindPendulum:   func(vp *dynamo.Viewport, s int64) dynamo.Scene { return NewPendulum(vp, s) },
	dynamo.KindOrbits:     func(vp *dynamo.Viewport, s int64) dynamo.Scene { return NewOrbits(vp, s) },
	dynamo.KindCollisions: func(vp *dynamo.Viewport, s int64) dynamo.Scene { return NewCollisions(vp, s) },
	dynamo.KindFriction:   func(vp *dynamo.Viewport, s int64) dynamo.Scene { return NewFriction(vp, s) },
	dynamo.KindElectric:   func(vp *dynamo.Viewport, s int64) dynamo.Scene { return NewElectric(vp, s) },
	dynamo.KindMagnetic:   func(vp *dynamo.Viewport, s int64) dynamo.Scene { return NewMagnetic(vp, s) },
	dynamo.KindFluid:      func(vp *dynamo.Viewport, s int64) dynamo.Scene { return NewFluid(vp, s) },
	dynamo.KindBrownian:   func(vp *dynamo.Viewport, s int64) dynamo.Scene { return NewBrownian(vp, s) },
	dynamo.KindDiffusion:  func(vp *dynamo.Viewport, s int64) dynamo.Scene { return NewDiffusion(vp, s) },
	dynamo.KindGasLaws:    func(vp *dynamo.Viewport, s int64) dynamo.Scene { return NewGasLaws(vp, s) },
	dynamo.KindWaves:      func(vp *dynamo.Viewport, s int64) dynamo.Scene { return NewWaves(vp, s) },
}

func run(s dynamo.Scene, frames int, deltaMs float64) {
	for i := 0; i < frames; i++ {
		s.Update(deltaMs)
	}
}

func TestEveryKindHasScene(t *testing.T) {
	for _, k := range dynamo.Kinds() {
		ctor, ok := allScenes[k]
		if !ok {
			t.Errorf("no scene for %s", k)
			continue
		}
		if got := ctor(nil, 1).Kind(); got != k {
			t.Errorf("%s scene reports kind %s", k, got)
		}
	}
}

func TestResetIdempotent(t *testing.T) {
	for k, ctor := range allScenes {
		t.Run(k.String(), func(t *testing.T) {
			s := ctor(dynamo.NewViewport(800, 600), 42)
			run(s, 30, 16)

			s.Reset()
			snap1, stats1 := s.Snapshot(), s.Stats()
			s.Reset()
			snap2, stats2 := s.Snapshot(), s.Stats()

			if !reflect.DeepEqual(snap1, snap2) {
				t.Error("snapshots differ after consecutive resets")
			}
			if !reflect.DeepEqual(stats1, stats2) {
				t.Errorf("stats differ after consecutive resets: %v vs %v", stats1, stats2)
			}
			if snap2.Time != 0 {
				t.Errorf("expected time 0 after reset, got %f", snap2.Time)
			}
		})
	}
}

func TestSameSeedSameTrajectory(t *testing.T) {
	for k, ctor := range allScenes {
		t.Run(k.String(), func(t *testing.T) {
			a := ctor(dynamo.NewViewport(640, 480), 7)
			b := ctor(dynamo.NewViewport(640, 480), 7)
			run(a, 50, 16)
			run(b, 50, 16)
			if !reflect.DeepEqual(a.Snapshot(), b.Snapshot()) {
				t.Error("identical seeds diverged")
			}
		})
	}
}

func TestBodiesStayFinite(t *testing.T) {
	for k, ctor := range allScenes {
		t.Run(k.String(), func(t *testing.T) {
			s := ctor(dynamo.NewViewport(800, 600), 3)
			s.SetParam("speed", MaxSpeed)
			for i := 0; i < 300; i++ {
				s.Update(33)
				if snap := s.Snapshot(); !snap.IsValid() {
					t.Fatalf("non-finite body at frame %d", i)
				}
			}
		})
	}
}

func TestBoxedScenesStayInBounds(t *testing.T) {
	boxed := []dynamo.Kind{
		dynamo.KindCollisions,
		dynamo.KindBrownian,
		dynamo.KindDiffusion,
		dynamo.KindGasLaws,
		dynamo.KindElectric,
		dynamo.KindMagnetic,
		dynamo.KindFluid,
	}
	const eps = 1e-9
	for _, k := range boxed {
		t.Run(k.String(), func(t *testing.T) {
			s := allScenes[k](dynamo.NewViewport(800, 600), 11)
			for i := 0; i < 200; i++ {
				s.Update(16)
				snap := s.Snapshot()
				for j, b := range snap.Bodies {
					if b.Pos.X < -eps || b.Pos.X > snap.Width+eps || b.Pos.Y < -eps || b.Pos.Y > snap.Height+eps {
						t.Fatalf("frame %d body %d escaped: %v", i, j, b.Pos)
					}
				}
			}
		})
	}
}

func TestUnknownParam(t *testing.T) {
	for k, ctor := range allScenes {
		err := ctor(nil, 1).SetParam("no_such_param", 1)
		if !errors.Is(err, dynamo.ErrUnknownParam) {
			t.Errorf("%s: expected ErrUnknownParam, got %v", k, err)
		}
	}
}

func TestParamsRoundTrip(t *testing.T) {
	for k, ctor := range allScenes {
		s := ctor(nil, 1)
		for name, v := range s.GetParams() {
			if err := s.SetParam(name, v); err != nil {
				t.Errorf("%s: setting %s to its current value %v failed: %v", k, name, v, err)
			}
		}
	}
}

func TestSpeedClamped(t *testing.T) {
	s := NewCollisions(nil, 1)
	s.SetParam("speed", 1000)
	if got := s.GetParams()["speed"]; got != MaxSpeed {
		t.Errorf("expected speed clamped to %v, got %v", MaxSpeed, got)
	}
	s.SetParam("speed", 0)
	if got := s.GetParams()["speed"]; got != MinSpeed {
		t.Errorf("expected speed clamped to %v, got %v", MinSpeed, got)
	}
}

func TestZeroDeltaIsNoop(t *testing.T) {
	for k, ctor := range allScenes {
		s := ctor(nil, 5)
		before := s.Snapshot()
		s.Update(0)
		s.Update(-16)
		if !reflect.DeepEqual(before, s.Snapshot()) {
			t.Errorf("%s changed on a non-positive delta", k)
		}
	}
}

func TestSnapshotIsCopy(t *testing.T) {
	s := NewCollisions(nil, 1)
	snap := s.Snapshot()
	snap.Bodies[0].Pos = dynamo.V(-1000, -1000)
	if s.Snapshot().Bodies[0].Pos == snap.Bodies[0].Pos {
		t.Error("mutating a snapshot changed the scene")
	}
}

func TestViewportResizeIsLive(t *testing.T) {
	vp := dynamo.NewViewport(800, 600)
	s := NewCollisions(vp, 2)
	vp.SetSize(400, 300)
	run(s, 10, 16)
	snap := s.Snapshot()
	if snap.Width != 400 || snap.Height != 300 {
		t.Fatalf("expected 400x300 snapshot, got %vx%v", snap.Width, snap.Height)
	}
	for _, b := range snap.Bodies {
		if b.Pos.X+b.Radius > 400+1e-9 || b.Pos.Y+b.Radius > 300+1e-9 {
			t.Errorf("body outside resized viewport: %v", b.Pos)
		}
	}
}
