package service

import (
	"github.com/wricardo/autopilot2048/game/driver"
	"github.com/wricardo/autopilot2048/game/engine"
	"github.com/wricardo/autopilot2048/game/manager"
)

// StatusResult is the whole bot picture: engine lifecycle plus loop state.
type StatusResult struct {
	Engine   manager.Snapshot `json:"engine"`
	Driver   driver.Stats     `json:"driver"`
	Priority []string         `json:"priority,omitempty"`
	Profile  string           `json:"profile,omitempty"`
}

// BoardResult is one observation of the board surface. Ranked is the move
// ordering the active engine would try for this position, best first.
type BoardResult struct {
	Cells    [][]int  `json:"cells"`
	Score    int      `json:"score"`
	MaxTile  int      `json:"max_tile"`
	GameOver bool     `json:"game_over"`
	Ranked   []string `json:"ranked,omitempty"`
}

// StatsResult wraps the loop counters with run-history context.
type StatsResult struct {
	Driver   driver.Stats `json:"driver"`
	RunsKept int          `json:"runs_kept"`
}

// ControlResult reports the loop state after a control operation.
type ControlResult struct {
	State   driver.State `json:"state"`
	RunID   string       `json:"run_id,omitempty"`
	Message string       `json:"message,omitempty"`
}

// StepResult reports one manually driven cycle.
type StepResult struct {
	Changed bool         `json:"changed"`
	Stats   driver.Stats `json:"stats"`
}

// StrategyResult reports the retained strategy and which engine serves it.
type StrategyResult struct {
	Strategy engine.Strategy `json:"strategy"`
	Mode     manager.Mode    `json:"mode"`
}

// PriorityResult reports the pinned move ordering. Pinned false means the
// planner decides.
type PriorityResult struct {
	Priority []string `json:"priority,omitempty"`
	Pinned   bool     `json:"pinned"`
}
