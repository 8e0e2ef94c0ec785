package runs

import "time"

// Record is the outcome of one bot run. Records are immutable once stored:
// a run is recorded only after it ends, so every field is final.
type Record struct {
	ID           string    `json:"id"`
	Profile      string    `json:"profile,omitempty"`
	StartedAt    time.Time `json:"started_at"`
	FinishedAt   time.Time `json:"finished_at"`
	EndReason    string    `json:"end_reason,omitempty"`
	Score        int       `json:"score"`
	MaxTile      int       `json:"max_tile"`
	Moves        int       `json:"moves"`
	Ticks        int       `json:"ticks"`
	Recoveries   int       `json:"recoveries"`
	ReadFailures int       `json:"read_failures"`
}

// Duration returns how long the run lasted, zero when either timestamp is
// missing.
func (r *Record) Duration() time.Duration {
	if r.StartedAt.IsZero() || r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
