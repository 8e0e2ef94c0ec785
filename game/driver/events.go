package driver

import (
	"time"

	"github.com/wricardo/autopilot2048/game/board"
)

// EventType labels driver events.
type EventType string

const (
	EventStarted     EventType = "started"
	EventStopped     EventType = "stopped"
	EventPaused      EventType = "paused"
	EventResumed     EventType = "resumed"
	EventMove        EventType = "move"
	EventStuck       EventType = "stuck"
	EventRecovery    EventType = "recovery"
	EventReadFailure EventType = "read_failure"
	EventGameOver    EventType = "game_over"
	EventError       EventType = "error"
)

// Event is one observation from the driver. Seq is a monotonically
// increasing delivery number; every subscriber sees events in Seq order.
type Event struct {
	Type      EventType        `json:"type"`
	RunID     string           `json:"run_id,omitempty"`
	Seq       uint64           `json:"seq"`
	Direction *board.Direction `json:"direction,omitempty"`
	Attempt   int              `json:"attempt,omitempty"`
	Score     *int             `json:"score,omitempty"`
	Message   string           `json:"message,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
}

type subscriber struct {
	id int
	fn func(Event)
}

// Subscribe registers an observer for every driver event. Handlers run
// synchronously in the emitting goroutine, in registration order, and must
// return promptly. The returned cancel removes the subscription.
func (d *Driver) Subscribe(fn func(Event)) (cancel func()) {
	d.mu.Lock()
	destroyed := d.destroyed
	d.mu.Unlock()
	if destroyed || fn == nil {
		return func() {}
	}

	d.subMu.Lock()
	defer d.subMu.Unlock()
	d.nextSub++
	id := d.nextSub
	d.subs = append(d.subs, subscriber{id: id, fn: fn})
	return func() {
		d.subMu.Lock()
		defer d.subMu.Unlock()
		for i, s := range d.subs {
			if s.id == id {
				d.subs = append(d.subs[:i], d.subs[i+1:]...)
				return
			}
		}
	}
}

// emit stamps and delivers one event to every subscriber. The emit mutex
// serializes deliveries from the loop and from control methods so observers
// see a single FIFO stream. Never call emit while holding d.mu.
func (d *Driver) emit(ev Event) {
	d.emitMu.Lock()
	defer d.emitMu.Unlock()

	d.seq++
	ev.Seq = d.seq
	ev.Timestamp = time.Now()
	if ev.RunID == "" {
		d.mu.Lock()
		ev.RunID = d.runID
		d.mu.Unlock()
	}

	d.subMu.Lock()
	fns := make([]func(Event), 0, len(d.subs))
	for _, s := range d.subs {
		fns = append(fns, s.fn)
	}
	d.subMu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}
