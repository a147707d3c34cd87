package main

import (
	"encoding/json"
	"sort"
	"sync"
	"time"
)

// ---------- fake clock ----------

// fakeClock drives the end-of-match timer by hand so pause/resume
// accounting can be tested without real waits.
type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

type fakeTimer struct {
	clock   *fakeClock
	when    time.Time
	fn      func()
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	was := !t.stopped && !t.fired
	t.stopped = true
	return was
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) CancelableTimer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{clock: c, when: c.now.Add(d), fn: f}
	c.timers = append(c.timers, t)
	return t
}

// Advance moves the clock forward and fires due timers synchronously,
// in schedule order.
func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	var due []*fakeTimer
	for _, t := range c.timers {
		if !t.stopped && !t.fired && !t.when.After(c.now) {
			t.fired = true
			due = append(due, t)
		}
	}
	sort.Slice(due, func(i, j int) bool { return due[i].when.Before(due[j].when) })
	c.mu.Unlock()

	for _, t := range due {
		t.fn()
	}
}

// ---------- mock connection ----------

// mockConn captures everything the session sends to one connection.
type mockConn struct {
	key string

	mu     sync.Mutex
	msgs   []interface{} // SendJSON payloads
	states []StateMsg    // decoded state broadcasts
	binary bool
}

func newMockConn(key string) *mockConn {
	return &mockConn{key: key}
}

func (m *mockConn) Key() string { return m.key }

func (m *mockConn) SendJSON(msg interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.msgs = append(m.msgs, msg)
}

func (m *mockConn) SendRaw(data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var st StateMsg
	if err := json.Unmarshal(data, &st); err == nil && st.Type == MsgState {
		m.states = append(m.states, st)
	}
}

func (m *mockConn) SendBinaryFrame(data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.msgs = append(m.msgs, data)
}

func (m *mockConn) WantsBinary() bool { return m.binary }

// lastState returns the most recent state broadcast, if any.
func (m *mockConn) lastState() (StateMsg, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.states) == 0 {
		return StateMsg{}, false
	}
	return m.states[len(m.states)-1], true
}

// countType counts typed messages of a given kind.
func (m *mockConn) countType(matches func(interface{}) bool) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, msg := range m.msgs {
		if matches(msg) {
			n++
		}
	}
	return n
}

// find returns the last message satisfying matches.
func (m *mockConn) find(matches func(interface{}) bool) (interface{}, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.msgs) - 1; i >= 0; i-- {
		if matches(m.msgs[i]) {
			return m.msgs[i], true
		}
	}
	return nil, false
}

// ---------- session helpers ----------

func testConfig() *Config {
	cfg := DefaultConfig()
	cfg.DBPath = ""
	return cfg
}

// newTestSession wires a session to a fake clock with no telemetry.
func newTestSession() (*Session, *fakeClock) {
	clock := newFakeClock()
	return NewSession(testConfig(), clock, nil), clock
}

// joinPlayer registers a mock connection and seats a player on it.
func joinPlayer(s *Session, key, id, name string, duration int) *mockConn {
	c := newMockConn(key)
	s.AddConn(c)
	s.HandleJoin(c, JoinMsg{ID: id, Name: name, Color: "#FFD700", Duration: duration})
	return c
}

// startMatch joins two players, starts as host and clears the countdown.
func startMatch(s *Session, clock *fakeClock, duration int) (host, other *mockConn) {
	host = joinPlayer(s, "conn-1", "p1", "Alice", duration)
	other = joinPlayer(s, "conn-2", "p2", "Bob", 0)
	s.HandleStart(host)
	clock.Advance(s.cfg.CountdownDelay)
	return host, other
}
