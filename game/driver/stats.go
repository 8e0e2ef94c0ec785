package driver

import "time"

// Stats is a point-in-time snapshot of the loop.
type Stats struct {
	State        State     `json:"state"`
	RunID        string    `json:"run_id,omitempty"`
	Moves        int       `json:"moves"`
	Ticks        int       `json:"ticks"`
	Stuck        int       `json:"stuck"`
	Recoveries   int       `json:"recoveries"`
	ReadFailures int       `json:"read_failures"`
	LastHash     string    `json:"last_hash,omitempty"`
	StartedAt    time.Time `json:"started_at"`
}

// GetStats returns a read-only snapshot of the loop state and counters.
func (d *Driver) GetStats() Stats {
	d.mu.Lock()
	defer d.mu.Unlock()
	return Stats{
		State:        d.state,
		RunID:        d.runID,
		Moves:        d.moveCount,
		Ticks:        d.tickCount,
		Stuck:        d.stuckCount,
		Recoveries:   d.recoveries,
		ReadFailures: d.readFailures,
		LastHash:     d.lastHash,
		StartedAt:    d.startedAt,
	}
}
