package main

import (
	"math"
	"time"
)

// dirEpsilon separates a real movement intent from a pure rotation.
const dirEpsilon = 1e-6

// applyMove turns a client's intent into an authoritative position
// update. The displacement is speed * dt where dt is SERVER-measured
// time since this player's last processed move, clamped to
// cfg.MaxMoveDelta: flooding move messages cannot add up to more than
// real elapsed time, and a stalled client cannot teleport on its next
// message. The facing angle and mouth flag are accepted even when the
// positional component is rejected.
func (s *Session) applyMove(p *Player, in MoveMsg, now time.Time) {
	dt := now.Sub(p.LastMoveAt)
	if dt > s.cfg.MaxMoveDelta {
		dt = s.cfg.MaxMoveDelta
	}
	if dt < 0 {
		dt = 0
	}
	// Measured from real elapsed time, not from the last accepted step.
	p.LastMoveAt = now

	p.Angle = in.Angle
	p.MouthOpen = in.MouthOpen

	norm := math.Hypot(in.DX, in.DY)
	if norm < dirEpsilon {
		return // rotation only
	}

	speed := s.cfg.BaseSpeed
	if p.SlowUntil.After(now) {
		speed /= 2
	}

	step := speed * dt.Seconds()
	size := 2 * s.cfg.PacmanRadius
	nx := Clamp(p.X+step*in.DX/norm, 0, s.cfg.FieldWidth-size)
	ny := Clamp(p.Y+step*in.DY/norm, 0, s.cfg.FieldHeight-size)

	if s.wouldCollide(p.ID, nx, ny) {
		return
	}
	p.X = nx
	p.Y = ny
}

// wouldCollide checks the candidate position against the committed
// positions of every other seated player (circle-circle, radius 2R).
// Simultaneous moves resolve strictly in dispatch order.
func (s *Session) wouldCollide(id string, x, y float64) bool {
	for _, o := range s.players {
		if o.ID == id {
			continue
		}
		if Distance(o.X, o.Y, x, y) < 2*s.cfg.PacmanRadius {
			return true
		}
	}
	return false
}
