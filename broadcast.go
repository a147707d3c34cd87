package main

import (
	"encoding/json"
	"log"
	"sort"

	"github.com/vmihailenco/msgpack/v5"
)

// snapshotLocked assembles the authoritative world snapshot.
func (s *Session) snapshotLocked() StateMsg {
	msg := StateMsg{
		Type:       MsgState,
		Players:    s.playerStatesLocked(),
		Points:     s.field.States(),
		GamePaused: s.phase == PhasePaused,
		PausedBy:   s.pausedByName,
		PauseAccum: s.pauseAccum.Milliseconds(),
	}
	if s.phase.started() {
		d := s.duration
		ms := s.startedAt.UnixMilli()
		msg.GameDuration = &d
		msg.GameStartedAt = &ms
	}
	return msg
}

// playerStatesLocked lists seated players ordered by corner, so
// snapshots are deterministic.
func (s *Session) playerStatesLocked() []PlayerState {
	out := make([]PlayerState, 0, len(s.players))
	for _, p := range s.players {
		out = append(out, p.ToState())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Corner < out[j].Corner })
	return out
}

// broadcastStateLocked serializes the snapshot once per encoding and
// pushes it to every connection, spectators included. Connections that
// opted in to binary frames get the msgpack form.
func (s *Session) broadcastStateLocked() {
	msg := s.snapshotLocked()

	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("marshal state: %v", err)
		return
	}
	var bin []byte
	for _, c := range s.conns {
		if c.WantsBinary() {
			if bin == nil {
				bin, err = msgpack.Marshal(msg)
				if err != nil {
					log.Printf("msgpack state: %v", err)
					c.SendRaw(data)
					continue
				}
			}
			c.SendBinaryFrame(bin)
		} else {
			c.SendRaw(data)
		}
	}
}

// broadcastMsgLocked sends a typed message to every connection.
func (s *Session) broadcastMsgLocked(msg interface{}) {
	for _, c := range s.conns {
		c.SendJSON(msg)
	}
}

// observerMsgLocked builds the dedicated snapshot for a connection
// that joined after the match went live.
func (s *Session) observerMsgLocked() ObserverModeMsg {
	return ObserverModeMsg{
		Type:       MsgObserverMode,
		Duration:   s.duration,
		StartTime:  s.startedAt.UnixMilli(),
		PauseAccum: s.pauseAccum.Milliseconds(),
		Players:    s.playerStatesLocked(),
		Points:     s.field.States(),
	}
}
