package main

import (
	"sync"
	"time"
)

// Broadcaster is the session's view of one connection. *Client is the
// production implementation; tests substitute an in-memory mock.
type Broadcaster interface {
	Key() string
	SendJSON(msg interface{})
	SendRaw(data []byte)
	SendBinaryFrame(data []byte)
	WantsBinary() bool
}

// Session is the aggregate root for the single arena this process
// runs: players, coins, config, pause accounting, the phase machine
// and host derivation all live behind its mutex. Every message handler
// and the end-of-match timer callback take the lock and run to
// completion, so handlers never observe partial mutations — the lock
// is the serialization point.
type Session struct {
	mu        sync.Mutex
	cfg       *Config
	clock     Clock
	analytics *Analytics

	conns   map[string]Broadcaster // connKey -> conn, spectators included
	players map[string]*Player     // playerID -> player
	byConn  map[string]string      // connKey -> playerID
	corners cornerSlots
	field   *itemField

	phase     Phase
	hostID    string
	duration  int       // seconds, 0 until the first player picks one
	startedAt time.Time // zero until the host starts; includes countdown

	pausedByKey    string // connection key of the pause initiator
	pausedByName   string
	pauseAccum     time.Duration
	pauseStartedAt time.Time
	timerRemaining time.Duration // retained across a pause

	timer *endTimer
}

// NewSession creates the arena. analytics may be nil (tests).
func NewSession(cfg *Config, clock Clock, analytics *Analytics) *Session {
	s := &Session{
		cfg:       cfg,
		clock:     clock,
		analytics: analytics,
		conns:     make(map[string]Broadcaster),
		players:   make(map[string]*Player),
		byConn:    make(map[string]string),
		field:     newItemField(cfg),
		phase:     PhaseIdle,
	}
	s.timer = newEndTimer(clock, s.onTimerFire)
	return s
}

// AddConn registers a connection; it receives every broadcast from now on.
func (s *Session) AddConn(c Broadcaster) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conns[c.Key()] = c
	s.track(EvtConnect, c.Key(), "")
}

// RemoveConn handles a socket-level disconnect: the connection leaves
// the broadcast set and its player, if any, leaves the arena.
func (s *Session) RemoveConn(c Broadcaster) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.clock.Now()
	s.syncPhaseLocked(now)
	delete(s.conns, c.Key())
	s.track(EvtDisconnect, c.Key(), "")
	s.removePlayerLocked(c.Key(), now)
}

// HandleCanJoin answers the pre-join probe.
func (s *Session) HandleCanJoin(c Broadcaster) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.syncPhaseLocked(s.clock.Now())

	if !s.phase.started() && s.corners.count() >= numCorners {
		c.SendJSON(MaxPlayersMsg{Type: MsgMaxPlayers})
		return
	}
	// During a live match the connection may still come in as a spectator.
	c.SendJSON(CanJoinOKMsg{Type: MsgCanJoinOK, Duration: s.durationPtr()})
}

// HandleJoin seats a player on a free corner, or switches the
// connection to observer mode when the match is already live.
func (s *Session) HandleJoin(c Broadcaster, msg JoinMsg) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.clock.Now()
	s.syncPhaseLocked(now)

	if s.phase.started() {
		c.SendJSON(s.observerMsgLocked())
		return
	}
	if msg.ID == "" {
		return
	}
	if _, dup := s.players[msg.ID]; dup {
		return
	}
	for _, p := range s.players {
		if p.Name == msg.Name {
			c.SendJSON(NameTakenMsg{Type: MsgNameTaken})
			return
		}
	}

	corner, ok := s.corners.reserve(msg.ID)
	if !ok {
		c.SendJSON(MaxPlayersMsg{Type: MsgMaxPlayers})
		return
	}

	first := len(s.players) == 0
	p := newPlayer(msg.ID, msg.Name, msg.Color, corner, startPoses(s.cfg)[corner], now)
	p.connKey = c.Key()
	if s.phase == PhaseEnded {
		// Late joiner during the results screen has no modal to dismiss.
		p.ReadyToRestart = true
	}
	s.players[msg.ID] = p
	s.byConn[c.Key()] = msg.ID

	if first && msg.Duration > 0 {
		s.duration = msg.Duration
	}

	c.SendJSON(GameConfigMsg{Type: MsgGameConfig, Config: s.cfg.payload()})
	c.SendJSON(WaitingMsg{Type: MsgWaiting, IsFirstPlayer: first, Duration: s.durationPtr()})

	if s.phase != PhaseEnded {
		if len(s.players) >= 2 {
			s.phase = PhaseOffered
		} else {
			s.phase = PhaseWaiting
		}
	}
	s.recomputeHostLocked()
	if s.phase == PhaseOffered {
		if host := s.hostConnLocked(); host != nil {
			host.SendJSON(OfferStartMsg{Type: MsgOfferStart, Count: len(s.players)})
		}
	}
	s.track(EvtJoin, c.Key(), msg.Name)
	s.broadcastStateLocked()
}

// HandleMove feeds the movement engine. Ignored outside the active
// phase (before start, during countdown, while paused, after end).
func (s *Session) HandleMove(c Broadcaster, msg MoveMsg) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.clock.Now()
	s.syncPhaseLocked(now)
	if s.phase != PhaseActive {
		return
	}
	p := s.playerOfLocked(c)
	if p == nil {
		return
	}
	s.applyMove(p, msg, now)
	s.broadcastStateLocked()
}

// HandleCollectPoint resolves a coin claim. A vanished id is a no-op,
// so the first claim in dispatch order wins a double-collection race.
func (s *Session) HandleCollectPoint(c Broadcaster, msg CollectPointMsg) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.clock.Now()
	s.syncPhaseLocked(now)
	if s.phase != PhaseActive {
		return
	}
	p := s.playerOfLocked(c)
	if p == nil {
		return
	}
	t, ok := s.field.Collect(msg.PointID, p, now)
	if !ok {
		return
	}
	c.SendJSON(PointCollectedMsg{Type: MsgPointCollected, PointID: msg.PointID, PointType: string(t)})
	s.broadcastStateLocked()
}

// HandleStart begins the match: the grace countdown runs first, and
// the end timer is armed for countdown + duration in one shot.
func (s *Session) HandleStart(c Broadcaster) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.clock.Now()
	s.syncPhaseLocked(now)
	if s.phase != PhaseOffered {
		return
	}
	if pid, ok := s.byConn[c.Key()]; !ok || pid != s.hostID {
		return
	}
	if s.duration <= 0 {
		s.duration = s.cfg.DefaultDuration
	}

	s.startedAt = now.Add(s.cfg.CountdownDelay)
	s.phase = PhaseCountdown
	s.field.Generate()
	s.timer.Arm(time.Duration(s.duration)*time.Second + s.cfg.CountdownDelay)

	s.track(EvtMatchStart, c.Key(), "")
	s.broadcastMsgLocked(GameStartedMsg{
		Type:          MsgGameStarted,
		GameDuration:  s.duration,
		GameStartedAt: s.startedAt.UnixMilli(),
	})
	s.broadcastStateLocked()
}

// HandleStop is the host's manual end; it reuses the timer-expiry path.
func (s *Session) HandleStop(c Broadcaster) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.clock.Now()
	s.syncPhaseLocked(now)
	if s.phase != PhaseActive && s.phase != PhasePaused {
		return
	}
	if pid, ok := s.byConn[c.Key()]; !ok || pid != s.hostID {
		return
	}
	s.endMatchLocked(now)
}

// HandlePause freezes the match. The end timer is disarmed with its
// remainder retained; only the initiating connection may resume.
func (s *Session) HandlePause(c Broadcaster) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.clock.Now()
	s.syncPhaseLocked(now)
	if s.phase != PhaseActive {
		return
	}
	p := s.playerOfLocked(c)
	if p == nil {
		return
	}

	s.phase = PhasePaused
	s.pausedByKey = c.Key()
	s.pausedByName = p.Name
	s.pauseStartedAt = now
	s.timerRemaining = s.timer.Disarm()

	s.track(EvtPause, c.Key(), p.Name)
	s.broadcastMsgLocked(GamePausedMsg{
		Type:          MsgGamePaused,
		PausedBy:      s.pausedByName,
		GameDuration:  s.duration,
		GameStartedAt: s.startedAt.UnixMilli(),
		PauseAccum:    s.pauseAccum.Milliseconds(),
	})
	s.broadcastStateLocked()
}

// HandleUnpause resumes the match if the sender is the pause initiator.
func (s *Session) HandleUnpause(c Broadcaster) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.clock.Now()
	if s.phase != PhasePaused || c.Key() != s.pausedByKey {
		return
	}
	s.resumeLocked(now)
	s.track(EvtUnpause, c.Key(), "")
	s.broadcastStateLocked()
}

// resumeLocked folds the finished pause into the accumulator and
// rearms the end timer for exactly the retained remainder.
func (s *Session) resumeLocked(now time.Time) {
	s.pauseAccum += now.Sub(s.pauseStartedAt)
	s.pauseStartedAt = time.Time{}
	s.pausedByKey = ""
	s.pausedByName = ""
	s.phase = PhaseActive
	s.timer.Reschedule(s.timerRemaining)
	s.timerRemaining = 0

	s.broadcastMsgLocked(GameUnpausedMsg{
		Type:          MsgGameUnpaused,
		GameDuration:  s.duration,
		GameStartedAt: s.startedAt.UnixMilli(),
		PauseAccum:    s.pauseAccum.Milliseconds(),
	})
}

// HandleReady records restart consent; once every seated player has
// consented the round resets to duration selection.
func (s *Session) HandleReady(c Broadcaster) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhaseEnded {
		return
	}
	p := s.playerOfLocked(c)
	if p == nil {
		return
	}
	p.ReadyToRestart = true
	s.checkRestartConsensusLocked()
	s.broadcastStateLocked()
}

// HandleQuit is the explicit leave request; the socket may stay open.
func (s *Session) HandleQuit(c Broadcaster) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.clock.Now()
	s.syncPhaseLocked(now)
	s.removePlayerLocked(c.Key(), now)
}

// syncPhaseLocked promotes countdown to active once startedAt passes.
// The countdown has no timer of its own; it is derived lazily.
func (s *Session) syncPhaseLocked(now time.Time) {
	if s.phase == PhaseCountdown && !now.Before(s.startedAt) {
		s.phase = PhaseActive
	}
}

// onTimerFire is the end-of-match timer callback. It re-validates the
// generation under the session lock: a fire that raced with a pause or
// manual stop sees a stale generation and is dropped.
func (s *Session) onTimerFire(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.timer.StillCurrent(gen) {
		return
	}
	now := s.clock.Now()
	s.syncPhaseLocked(now)
	if !s.phase.started() {
		return
	}
	s.endMatchLocked(now)
}

// endMatchLocked is the single convergence point for timer expiry,
// host stop and last-player disconnect: announce the final standings,
// then reset all match sub-state.
func (s *Session) endMatchLocked(now time.Time) {
	s.broadcastMsgLocked(GameOverMsg{Type: MsgGameOver, Players: s.playerStatesLocked()})
	s.track(EvtMatchEnd, "", "")

	s.timer.Disarm()
	s.timerRemaining = 0
	s.field.Clear()
	s.duration = 0
	s.startedAt = time.Time{}
	s.pausedByKey = ""
	s.pausedByName = ""
	s.pauseAccum = 0
	s.pauseStartedAt = time.Time{}

	if len(s.players) == 0 {
		s.corners.reset()
		s.phase = PhaseIdle
	} else {
		poses := startPoses(s.cfg)
		for _, p := range s.players {
			p.resetForRestart(poses[p.Corner], now)
		}
		s.phase = PhaseEnded
	}
	s.broadcastStateLocked()
}

// removePlayerLocked frees the player bound to connKey, if any, and
// settles every follow-on consequence: host migration, lobby phase
// downgrade, auto-resume when the pauser left, match teardown when the
// arena empties mid-match, restart consensus re-check.
func (s *Session) removePlayerLocked(connKey string, now time.Time) {
	pid, ok := s.byConn[connKey]
	if !ok {
		return
	}
	p := s.players[pid]
	delete(s.players, pid)
	delete(s.byConn, connKey)
	s.corners.release(p.Corner)
	s.track(EvtQuit, connKey, p.Name)
	s.broadcastMsgLocked(PlayerQuitMsg{Type: MsgPlayerQuit, Name: p.Name})

	if s.phase.started() && len(s.players) == 0 {
		s.recomputeHostLocked()
		s.endMatchLocked(now)
		return
	}

	switch {
	case s.phase == PhasePaused && s.pausedByKey == connKey:
		// Nobody else may unpause; resume rather than strand the match.
		s.resumeLocked(now)
	case s.phase == PhaseEnded:
		if len(s.players) == 0 {
			s.corners.reset()
			s.phase = PhaseIdle
		} else {
			s.checkRestartConsensusLocked()
		}
	case s.phase == PhaseOffered && len(s.players) < 2:
		s.phase = PhaseWaiting
	case !s.phase.started() && len(s.players) == 0:
		s.phase = PhaseIdle
		s.duration = 0
	}

	s.recomputeHostLocked()
	s.broadcastStateLocked()
}

// checkRestartConsensusLocked resets the round once every seated
// player has signaled readiness: everyone re-joins from scratch and
// the next first joiner picks the duration.
func (s *Session) checkRestartConsensusLocked() {
	if s.phase != PhaseEnded || len(s.players) == 0 {
		return
	}
	for _, p := range s.players {
		if !p.ReadyToRestart {
			return
		}
	}
	s.players = make(map[string]*Player)
	s.byConn = make(map[string]string)
	s.corners.reset()
	s.duration = 0
	s.phase = PhaseIdle
	s.recomputeHostLocked()
	s.broadcastMsgLocked(ChooseDurationMsg{Type: MsgChooseDuration})
}

// recomputeHostLocked rederives the host from corner occupancy and
// announces a change. An empty arena has no host to name.
func (s *Session) recomputeHostLocked() {
	newHost := s.corners.host()
	if newHost == s.hostID {
		return
	}
	s.hostID = newHost
	if newHost != "" {
		s.broadcastMsgLocked(HostChangedMsg{Type: MsgHostChanged, HostID: newHost})
	}
}

func (s *Session) hostConnLocked() Broadcaster {
	p, ok := s.players[s.hostID]
	if !ok {
		return nil
	}
	return s.conns[p.connKey]
}

func (s *Session) playerOfLocked(c Broadcaster) *Player {
	pid, ok := s.byConn[c.Key()]
	if !ok {
		return nil
	}
	return s.players[pid]
}

func (s *Session) durationPtr() *int {
	if s.duration <= 0 {
		return nil
	}
	d := s.duration
	return &d
}

func (s *Session) track(evtType, connKey, data string) {
	if s.analytics != nil {
		s.analytics.Track(evtType, connKey, data)
	}
}

// Phase returns the current phase (for tests and the hub).
func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// PlayerCount returns the number of seated players.
func (s *Session) PlayerCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.players)
}

// HostID returns the current host's player id, or "".
func (s *Session) HostID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hostID
}
