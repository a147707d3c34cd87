package main

import (
	"log"
	"sync"
	"time"
)

// Event types for telemetry tracking
const (
	EvtConnect    = "connect"
	EvtDisconnect = "disconnect"
	EvtJoin       = "join"
	EvtQuit       = "quit"
	EvtMatchStart = "match_start"
	EvtMatchEnd   = "match_end"
	EvtPause      = "pause"
	EvtUnpause    = "unpause"
)

// AnalyticsEvent represents a single trackable event
type AnalyticsEvent struct {
	Type      string
	ConnKey   string
	Data      string
	Timestamp time.Time
}

const (
	analyticsBufSize    = 1024
	analyticsBatchSize  = 64
	analyticsFlushEvery = 2 * time.Second
)

// Analytics handles event tracking with batched background writes
type Analytics struct {
	db     *DB
	events chan AnalyticsEvent
	stop   chan struct{}
	wg     sync.WaitGroup
}

// NewAnalytics creates and starts the analytics background writer
func NewAnalytics(db *DB) *Analytics {
	a := &Analytics{
		db:     db,
		events: make(chan AnalyticsEvent, analyticsBufSize),
		stop:   make(chan struct{}),
	}
	a.wg.Add(1)
	go a.writer()
	return a
}

// Track enqueues an event for async persistence (non-blocking)
func (a *Analytics) Track(evtType, connKey, data string) {
	select {
	case a.events <- AnalyticsEvent{
		Type:      evtType,
		ConnKey:   connKey,
		Data:      data,
		Timestamp: time.Now().UTC(),
	}:
	default:
		// Channel full — drop event rather than blocking a handler
	}
}

// Close flushes pending events and stops the writer.
func (a *Analytics) Close() {
	close(a.stop)
	a.wg.Wait()
}

func (a *Analytics) writer() {
	defer a.wg.Done()

	ticker := time.NewTicker(analyticsFlushEvery)
	defer ticker.Stop()

	batch := make([]AnalyticsEvent, 0, analyticsBatchSize)
	flush := func() {
		if len(batch) == 0 {
			return
		}
		if err := a.db.InsertEvents(batch); err != nil {
			log.Printf("analytics flush: %v", err)
		}
		batch = batch[:0]
	}

	for {
		select {
		case e := <-a.events:
			batch = append(batch, e)
			if len(batch) >= analyticsBatchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-a.stop:
			// Drain whatever is still queued, then flush once.
			for {
				select {
				case e := <-a.events:
					batch = append(batch, e)
				default:
					flush()
					return
				}
			}
		}
	}
}
