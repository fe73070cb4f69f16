package sim

import (
	"errors"
	"testing"

	"github.com/san-kum/physanim/internal/dynamo"
)

func TestConfigFrames(t *testing.T) {
	tests := []struct {
		cfg    Config
		frames int
	}{
		{Config{FrameMs: 100, Duration: 1}, 10},
		{Config{FrameMs: 1000.0 / 60, Duration: 10}, 600},
		{Config{FrameMs: 16, Duration: 0.1}, 6},
		{Config{FrameMs: 0, Duration: 1}, 0},
	}

	for _, tt := range tests {
		if got := tt.cfg.Frames(); got != tt.frames {
			t.Errorf("Frames(%+v) = %d, want %d", tt.cfg, got, tt.frames)
		}
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.FrameMs <= 0 {
		t.Error("DefaultConfig has invalid FrameMs")
	}
	if cfg.Duration <= 0 {
		t.Error("DefaultConfig has invalid Duration")
	}
	if cfg.Speed != 1 {
		t.Errorf("DefaultConfig speed = %f, want 1", cfg.Speed)
	}
}

func TestFrameError(t *testing.T) {
	err := FrameError{Time: 1.5, Frame: 150, Message: "test error"}
	expected := "frame 150 (t=1.5000): test error"
	if err.Error() != expected {
		t.Errorf("FrameError.Error() = %q, want %q", err.Error(), expected)
	}
	if !errors.Is(err, dynamo.ErrInvalidState) {
		t.Error("FrameError should match ErrInvalidState")
	}
}

func TestResultLast(t *testing.T) {
	r := &Result{Series: map[string][]float64{"a": {1, 2, 3}, "empty": nil}}
	if v, ok := r.Last("a"); !ok || v != 3 {
		t.Errorf("Last(a) = %v, %v", v, ok)
	}
	if _, ok := r.Last("empty"); ok {
		t.Error("Last on an empty series should report false")
	}
	if _, ok := r.Last("missing"); ok {
		t.Error("Last on a missing series should report false")
	}
}
