package main

import (
	"math"
	"testing"
	"time"
)

// seatAt places a bare player directly on the board, bypassing the join
// flow, for movement-engine tests.
func seatAt(s *Session, clock *fakeClock, id string, x, y float64) *Player {
	p := &Player{ID: id, X: x, Y: y, LastMoveAt: clock.Now()}
	s.players[id] = p
	return p
}

func TestApplyMoveAdvancesPosition(t *testing.T) {
	s, clock := newTestSession()
	p := seatAt(s, clock, "p1", 100, 100)

	clock.Advance(100 * time.Millisecond)
	s.applyMove(p, MoveMsg{DX: 1, DY: 0, Angle: 0, MouthOpen: true}, clock.Now())

	want := 100 + s.cfg.BaseSpeed*0.1
	if math.Abs(p.X-want) > 1e-9 || p.Y != 100 {
		t.Errorf("pos = (%v,%v), want (%v,100)", p.X, p.Y, want)
	}
	if !p.MouthOpen {
		t.Error("mouth flag not applied")
	}
}

func TestApplyMoveNormalizesDirection(t *testing.T) {
	s, clock := newTestSession()
	p := seatAt(s, clock, "p1", 100, 100)

	clock.Advance(100 * time.Millisecond)
	// A huge direction vector must not produce a huge step.
	s.applyMove(p, MoveMsg{DX: 1000, DY: 0}, clock.Now())

	want := 100 + s.cfg.BaseSpeed*0.1
	if math.Abs(p.X-want) > 1e-9 {
		t.Errorf("X = %v, want %v (normalized)", p.X, want)
	}
}

func TestApplyMoveClampsElapsedTime(t *testing.T) {
	s, clock := newTestSession()
	p := seatAt(s, clock, "p1", 100, 100)

	// A client silent for 5s gets at most MaxMoveDelta worth of travel.
	clock.Advance(5 * time.Second)
	s.applyMove(p, MoveMsg{DX: 1, DY: 0}, clock.Now())

	want := 100 + s.cfg.BaseSpeed*s.cfg.MaxMoveDelta.Seconds()
	if math.Abs(p.X-want) > 1e-9 {
		t.Errorf("X = %v, want %v (dt clamped)", p.X, want)
	}
}

func TestApplyMoveBurstCannotOutrunClock(t *testing.T) {
	s, clock := newTestSession()
	p := seatAt(s, clock, "p1", 100, 100)

	// 10 messages in the same instant: only the first has any dt.
	clock.Advance(100 * time.Millisecond)
	for i := 0; i < 10; i++ {
		s.applyMove(p, MoveMsg{DX: 1, DY: 0}, clock.Now())
	}

	want := 100 + s.cfg.BaseSpeed*0.1
	if math.Abs(p.X-want) > 1e-9 {
		t.Errorf("X = %v, want %v (flood capped)", p.X, want)
	}
}

func TestApplyMoveClampsToField(t *testing.T) {
	s, clock := newTestSession()
	p := seatAt(s, clock, "p1", 1, 1)

	clock.Advance(s.cfg.MaxMoveDelta)
	s.applyMove(p, MoveMsg{DX: -1, DY: -1}, clock.Now())
	if p.X != 0 || p.Y != 0 {
		t.Errorf("pos = (%v,%v), want clamped to (0,0)", p.X, p.Y)
	}

	size := 2 * s.cfg.PacmanRadius
	p.X, p.Y = s.cfg.FieldWidth-size-1, s.cfg.FieldHeight-size-1
	clock.Advance(s.cfg.MaxMoveDelta)
	s.applyMove(p, MoveMsg{DX: 1, DY: 1}, clock.Now())
	if p.X != s.cfg.FieldWidth-size || p.Y != s.cfg.FieldHeight-size {
		t.Errorf("pos = (%v,%v), want clamped to bottom-right", p.X, p.Y)
	}
}

func TestApplyMoveRejectsOverlap(t *testing.T) {
	s, clock := newTestSession()
	p := seatAt(s, clock, "p1", 100, 100)
	seatAt(s, clock, "p2", 110, 100) // just ahead, within 2R

	clock.Advance(100 * time.Millisecond)
	s.applyMove(p, MoveMsg{DX: 1, DY: 0, Angle: 90, MouthOpen: true}, clock.Now())

	if p.X != 100 || p.Y != 100 {
		t.Errorf("pos = (%v,%v), want rejected at (100,100)", p.X, p.Y)
	}
	// Facing and mouth still follow the intent.
	if p.Angle != 90 || !p.MouthOpen {
		t.Errorf("angle/mouth = %v/%v, want 90/true even on rejection", p.Angle, p.MouthOpen)
	}
}

func TestApplyMoveAllowsRetreat(t *testing.T) {
	s, clock := newTestSession()
	p := seatAt(s, clock, "p1", 100, 100)
	seatAt(s, clock, "p2", 145, 100) // outside 2R, but close

	clock.Advance(100 * time.Millisecond)
	s.applyMove(p, MoveMsg{DX: -1, DY: 0}, clock.Now())

	if p.X >= 100 {
		t.Errorf("X = %v, want movement away from the neighbor to pass", p.X)
	}
}

func TestApplyMoveRotationOnly(t *testing.T) {
	s, clock := newTestSession()
	p := seatAt(s, clock, "p1", 100, 100)

	clock.Advance(100 * time.Millisecond)
	s.applyMove(p, MoveMsg{DX: 0, DY: 0, Angle: 180}, clock.Now())

	if p.X != 100 || p.Y != 100 {
		t.Errorf("pos = (%v,%v), want unchanged on rotation", p.X, p.Y)
	}
	if p.Angle != 180 {
		t.Errorf("angle = %v, want 180", p.Angle)
	}
}

func TestApplyMoveSlowDebuffHalvesSpeed(t *testing.T) {
	s, clock := newTestSession()
	p := seatAt(s, clock, "p1", 100, 100)
	p.SlowUntil = clock.Now().Add(time.Second)

	clock.Advance(100 * time.Millisecond)
	s.applyMove(p, MoveMsg{DX: 1, DY: 0}, clock.Now())

	want := 100 + s.cfg.BaseSpeed/2*0.1
	if math.Abs(p.X-want) > 1e-9 {
		t.Errorf("X = %v, want %v (halved while slowed)", p.X, want)
	}

	// Debuff expired: full speed again (dt capped at MaxMoveDelta).
	clock.Advance(3 * time.Second)
	before := p.X
	s.applyMove(p, MoveMsg{DX: 1, DY: 0}, clock.Now())
	wantStep := s.cfg.BaseSpeed * s.cfg.MaxMoveDelta.Seconds()
	if math.Abs(p.X-before-wantStep) > 1e-9 {
		t.Errorf("step after expiry = %v, want %v", p.X-before, wantStep)
	}
}
