package runs

import (
	"errors"
	"testing"
	"time"

	"github.com/wricardo/autopilot2048/game/driver"
)

func testSource(stats driver.Stats, score int, maxTile int) Source {
	return Source{
		Stats:   func() driver.Stats { return stats },
		Score:   func() (int, bool) { return score, true },
		MaxTile: func() int { return maxTile },
	}
}

func TestRecorder_StartStop(t *testing.T) {
	store := NewManager()
	stats := driver.Stats{Moves: 42, Ticks: 50, Recoveries: 2, ReadFailures: 1}
	rec := NewRecorder(store, testSource(stats, 2048, 256), WithProfile("blitz"))

	started := time.Now()
	rec.Handle(driver.Event{Type: driver.EventStarted, RunID: "run-a", Timestamp: started})

	// Nothing is stored while the run is in flight.
	if store.Count() != 0 {
		t.Fatalf("Expected no records while running, got %d", store.Count())
	}

	// Intermediate events do not disturb the open record.
	rec.Handle(driver.Event{Type: driver.EventMove, RunID: "run-a"})
	rec.Handle(driver.Event{Type: driver.EventStuck, RunID: "run-a"})

	finished := started.Add(45 * time.Second)
	rec.Handle(driver.Event{
		Type:      driver.EventStopped,
		RunID:     "run-a",
		Message:   "game over",
		Timestamp: finished,
	})

	record, err := store.Get("run-a")
	if err != nil {
		t.Fatalf("Failed to get record: %v", err)
	}
	if record.Profile != "blitz" {
		t.Errorf("Expected profile 'blitz', got '%s'", record.Profile)
	}
	if record.EndReason != "game over" {
		t.Errorf("Expected end reason 'game over', got '%s'", record.EndReason)
	}
	if record.Moves != 42 || record.Ticks != 50 {
		t.Errorf("Expected counters from stats snapshot, got moves=%d ticks=%d", record.Moves, record.Ticks)
	}
	if record.Recoveries != 2 || record.ReadFailures != 1 {
		t.Errorf("Expected recoveries=2 read_failures=1, got %d and %d", record.Recoveries, record.ReadFailures)
	}
	if record.Score != 2048 {
		t.Errorf("Expected score 2048, got %d", record.Score)
	}
	if record.MaxTile != 256 {
		t.Errorf("Expected max tile 256, got %d", record.MaxTile)
	}
	if record.Duration() != 45*time.Second {
		t.Errorf("Expected duration 45s, got %v", record.Duration())
	}
}

func TestRecorder_StopWithoutStart(t *testing.T) {
	store := NewManager()
	rec := NewRecorder(store, Source{})

	rec.Handle(driver.Event{Type: driver.EventStopped, RunID: "orphan", Message: "stopped"})

	if store.Count() != 0 {
		t.Errorf("Expected no records for orphan stop, got %d", store.Count())
	}
}

func TestRecorder_RunIDMismatch(t *testing.T) {
	store := NewManager()
	rec := NewRecorder(store, Source{})

	rec.Handle(driver.Event{Type: driver.EventStarted, RunID: "run-a", Timestamp: time.Now()})
	rec.Handle(driver.Event{Type: driver.EventStopped, RunID: "run-b", Message: "stopped"})

	if store.Count() != 0 {
		t.Errorf("Expected mismatched stop to be dropped, got %d records", store.Count())
	}
}

func TestRecorder_SecondStartReplacesOpenRecord(t *testing.T) {
	store := NewManager()
	rec := NewRecorder(store, Source{})
	base := time.Now()

	rec.Handle(driver.Event{Type: driver.EventStarted, RunID: "first", Timestamp: base})
	rec.Handle(driver.Event{Type: driver.EventStarted, RunID: "second", Timestamp: base.Add(time.Second)})
	rec.Handle(driver.Event{Type: driver.EventStopped, RunID: "second", Message: "stopped", Timestamp: base.Add(time.Minute)})

	if _, err := store.Get("first"); !errors.Is(err, ErrRunNotFound) {
		t.Error("Expected abandoned run to be dropped")
	}
	if _, err := store.Get("second"); err != nil {
		t.Errorf("Expected second run to be recorded: %v", err)
	}
}

func TestRecorder_NilSourceFields(t *testing.T) {
	store := NewManager()
	rec := NewRecorder(store, Source{})
	now := time.Now()

	rec.Handle(driver.Event{Type: driver.EventStarted, RunID: "bare", Timestamp: now})
	rec.Handle(driver.Event{Type: driver.EventStopped, RunID: "bare", Message: "stopped", Timestamp: now.Add(time.Second)})

	record, err := store.Get("bare")
	if err != nil {
		t.Fatalf("Failed to get record: %v", err)
	}
	if record.Moves != 0 || record.Score != 0 || record.MaxTile != 0 {
		t.Errorf("Expected zero counters without a source, got %+v", record)
	}
}
