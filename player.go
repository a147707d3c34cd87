package main

import "time"

// Player is the authoritative record for one seated avatar. Owned
// exclusively by the Session; nothing outside its lock mutates it.
type Player struct {
	ID        string
	Name      string
	Color     string
	X, Y      float64
	Angle     float64 // degrees, client-rendered facing
	Corner    int
	Score     int
	MouthOpen bool

	SlowUntil      time.Time // active negative-coin debuff until
	LastMoveAt     time.Time // wall clock of the last processed move
	ReadyToRestart bool

	connKey string // owning connection
}

func newPlayer(id, name, color string, corner int, pose startPose, now time.Time) *Player {
	return &Player{
		ID:         id,
		Name:       name,
		Color:      color,
		X:          pose.X,
		Y:          pose.Y,
		Angle:      pose.Angle,
		Corner:     corner,
		LastMoveAt: now,
	}
}

// resetForRestart puts the player back on its corner with a clean slate.
func (p *Player) resetForRestart(pose startPose, now time.Time) {
	p.X = pose.X
	p.Y = pose.Y
	p.Angle = pose.Angle
	p.Score = 0
	p.SlowUntil = time.Time{}
	p.LastMoveAt = now
	p.ReadyToRestart = false
}

// ToState converts to protocol state
func (p *Player) ToState() PlayerState {
	return PlayerState{
		ID:        p.ID,
		Name:      p.Name,
		X:         p.X,
		Y:         p.Y,
		Angle:     p.Angle,
		Color:     p.Color,
		Corner:    p.Corner,
		Score:     p.Score,
		MouthOpen: p.MouthOpen,
	}
}
