package main

// Phase represents the lifecycle of the arena
type Phase int

const (
	PhaseIdle      Phase = 0 // no players seated
	PhaseWaiting   Phase = 1 // at least one player, match not started
	PhaseOffered   Phase = 2 // two or more players, host prompted to start
	PhaseCountdown Phase = 3 // start issued, grace window before startedAt
	PhaseActive    Phase = 4
	PhasePaused    Phase = 5
	PhaseEnded     Phase = 6 // waiting for ready-to-restart consensus
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseWaiting:
		return "waiting"
	case PhaseOffered:
		return "offered"
	case PhaseCountdown:
		return "countdown"
	case PhaseActive:
		return "active"
	case PhasePaused:
		return "paused"
	case PhaseEnded:
		return "ended"
	}
	return "unknown"
}

// started reports whether a match is underway, countdown included.
func (p Phase) started() bool {
	return p == PhaseCountdown || p == PhaseActive || p == PhasePaused
}
