package scheduler

import (
	"testing"

	"github.com/pthm-cable/protosoup/buffers"
	"github.com/pthm-cable/protosoup/layout"
	"github.com/pthm-cable/protosoup/stats"
)

func TestStepAdvancesTickCount(t *testing.T) {
	fab, err := buffers.NewFabric(buffers.TierDenseLow, 8)
	if err != nil {
		t.Fatalf("NewFabric: %v", err)
	}
	s := New(fab, layout.DefaultParams(8), stats.NewReducer(), 30, nil)
	defer s.Close()

	s.Step(nil)
	s.Step(nil)

	if s.TickCount() != 2 {
		t.Fatalf("expected tick count 2, got %d", s.TickCount())
	}
}

func TestAdvanceCapsAtMaxTicksPerFrame(t *testing.T) {
	fab, err := buffers.NewFabric(buffers.TierDenseLow, 8)
	if err != nil {
		t.Fatalf("NewFabric: %v", err)
	}
	s := New(fab, layout.DefaultParams(8), nil, 60, nil)
	defer s.Close()

	// A huge dt at rate=60 would otherwise demand far more than 3 ticks.
	s.Advance(10.0, nil)

	if s.TickCount() != maxTicksPerFrame {
		t.Fatalf("expected tick count capped at %d, got %d", maxTicksPerFrame, s.TickCount())
	}
}

func TestPausePreventsAdvance(t *testing.T) {
	fab, err := buffers.NewFabric(buffers.TierDenseLow, 8)
	if err != nil {
		t.Fatalf("NewFabric: %v", err)
	}
	s := New(fab, layout.DefaultParams(8), nil, 30, nil)
	defer s.Close()

	s.Pause()
	s.Advance(1.0, nil)
	if s.TickCount() != 0 {
		t.Fatalf("expected no ticks while paused, got %d", s.TickCount())
	}

	s.Resume()
	s.Advance(1.0, nil)
	if s.TickCount() == 0 {
		t.Fatalf("expected ticks to resume after Resume")
	}
}

func TestSetRateClamps(t *testing.T) {
	fab, err := buffers.NewFabric(buffers.TierDenseLow, 8)
	if err != nil {
		t.Fatalf("NewFabric: %v", err)
	}
	s := New(fab, layout.DefaultParams(8), nil, 30, nil)
	defer s.Close()

	s.SetRate(1000)
	if s.rate != 60 {
		t.Fatalf("expected rate clamped to 60, got %v", s.rate)
	}
	s.SetRate(-5)
	if s.rate != 1 {
		t.Fatalf("expected rate clamped to 1, got %v", s.rate)
	}
}
