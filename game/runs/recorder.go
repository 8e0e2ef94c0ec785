package runs

import (
	"sync"

	"go.uber.org/zap"

	"github.com/wricardo/autopilot2048/game/driver"
)

// Source supplies the live readings a Recorder samples when a run ends.
// Nil functions skip that field.
type Source struct {
	// Stats returns the driver's counters for the run being finalized.
	Stats func() driver.Stats
	// Score reads the board surface's score, when it exposes one.
	Score func() (int, bool)
	// MaxTile reads the highest tile on the board surface.
	MaxTile func() int
}

// Recorder turns the driver's event stream into run history: a started event
// opens a record, the matching stopped event finalizes and stores it. Wire it
// with driver.Subscribe(recorder.Handle).
type Recorder struct {
	store   *Manager
	src     Source
	profile string
	logger  *zap.Logger

	mu   sync.Mutex
	open *Record
}

// RecorderOption configures a Recorder.
type RecorderOption func(*Recorder)

// WithProfile stamps every record with the active profile name.
func WithProfile(name string) RecorderOption {
	return func(r *Recorder) {
		r.profile = name
	}
}

// WithRecorderLogger attaches a logger. Components default to a no-op logger.
func WithRecorderLogger(logger *zap.Logger) RecorderOption {
	return func(r *Recorder) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRecorder creates a recorder that stores finished runs in store.
func NewRecorder(store *Manager, src Source, opts ...RecorderOption) *Recorder {
	r := &Recorder{
		store:  store,
		src:    src,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Handle consumes one driver event. Events other than started and stopped
// carry nothing a record needs: the stopped event's stats snapshot already
// aggregates them.
func (r *Recorder) Handle(ev driver.Event) {
	switch ev.Type {
	case driver.EventStarted:
		r.mu.Lock()
		if r.open != nil {
			r.logger.Warn("previous run never finalized, dropping", zap.String("run_id", r.open.ID))
		}
		r.open = &Record{
			ID:        ev.RunID,
			Profile:   r.profile,
			StartedAt: ev.Timestamp,
		}
		r.mu.Unlock()

	case driver.EventStopped:
		r.mu.Lock()
		rec := r.open
		r.open = nil
		r.mu.Unlock()
		if rec == nil {
			return
		}
		if ev.RunID != "" && rec.ID != ev.RunID {
			r.logger.Warn("stopped event for unknown run",
				zap.String("open_run_id", rec.ID), zap.String("run_id", ev.RunID))
			return
		}
		r.finalize(rec, ev)
	}
}

// finalize fills the record from the event and the source, then stores it.
func (r *Recorder) finalize(rec *Record, ev driver.Event) {
	rec.FinishedAt = ev.Timestamp
	rec.EndReason = ev.Message

	if r.src.Stats != nil {
		stats := r.src.Stats()
		rec.Moves = stats.Moves
		rec.Ticks = stats.Ticks
		rec.Recoveries = stats.Recoveries
		rec.ReadFailures = stats.ReadFailures
	}
	if r.src.Score != nil {
		if score, ok := r.src.Score(); ok {
			rec.Score = score
		}
	}
	if r.src.MaxTile != nil {
		rec.MaxTile = r.src.MaxTile()
	}

	if err := r.store.Add(*rec); err != nil {
		r.logger.Warn("run record not stored", zap.String("run_id", rec.ID), zap.Error(err))
		return
	}
	r.logger.Info("run recorded",
		zap.String("run_id", rec.ID),
		zap.String("reason", rec.EndReason),
		zap.Int("moves", rec.Moves),
		zap.Int("score", rec.Score))
}
