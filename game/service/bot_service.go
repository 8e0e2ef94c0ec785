package service

import (
	"context"
	"errors"

	"github.com/wricardo/autopilot2048/game/board"
	"github.com/wricardo/autopilot2048/game/config"
	"github.com/wricardo/autopilot2048/game/driver"
	"github.com/wricardo/autopilot2048/game/engine"
	"github.com/wricardo/autopilot2048/game/manager"
	"github.com/wricardo/autopilot2048/game/runs"
)

var (
	ErrNoSurface       = errors.New("no board surface configured")
	ErrNoReset         = errors.New("board surface does not support reset")
	ErrHistoryDisabled = errors.New("run history not enabled")
)

// BotService defines all bot-related operations. The REST and MCP layers
// are both thin wrappers over this one interface, so every control surface
// reports the same shapes.
type BotService interface {
	// Observation
	Status(ctx context.Context) (*StatusResult, error)
	Board(ctx context.Context) (*BoardResult, error)
	Stats(ctx context.Context) (*StatsResult, error)

	// Loop Control
	Start(ctx context.Context) (*ControlResult, error)
	Stop(ctx context.Context) (*ControlResult, error)
	Pause(ctx context.Context) (*ControlResult, error)
	Resume(ctx context.Context) (*ControlResult, error)
	Step(ctx context.Context) (*StepResult, error)
	Reset(ctx context.Context) (*ControlResult, error)

	// Configuration
	GetStrategy(ctx context.Context) (*StrategyResult, error)
	SetStrategy(ctx context.Context, update engine.StrategyUpdate) (*StrategyResult, error)
	SetDirectionPriority(ctx context.Context, names []string) (*PriorityResult, error)
	ClearDirectionPriority(ctx context.Context) (*PriorityResult, error)

	// History and Profiles
	ListRuns(ctx context.Context) ([]*runs.Record, error)
	GetRun(ctx context.Context, id string) (*runs.Record, error)
	DeleteRun(ctx context.Context, id string) error
	ListProfiles(ctx context.Context) ([]*config.ProfileInfo, error)
}

// EngineManager is the planning surface the service consumes.
// *manager.Manager satisfies it.
type EngineManager interface {
	Initialize(ctx context.Context) error
	GetStatus() manager.Snapshot
	GetStrategy() engine.Strategy
	SetStrategy(update engine.StrategyUpdate) engine.Strategy
	RankMoves(ctx context.Context, cells [][]int) []board.Direction
	BoardInfo(ctx context.Context, cells [][]int) *engine.BoardInfo
}

// LoopController is the execution surface the service consumes.
// *driver.Driver satisfies it.
type LoopController interface {
	Start() error
	Stop()
	Pause()
	Resume()
	Step(ctx context.Context) (bool, error)
	GetStats() driver.Stats
	SetDirectionPriority(dirs []board.Direction)
	GetDirectionPriority() []board.Direction
}

// BoardResetter is the optional reset capability of a board surface. The
// simulator supports it; a read-only bridge may not.
type BoardResetter interface {
	Reset()
}

// RunStore is the run-history surface the service consumes. *runs.Manager
// satisfies it.
type RunStore interface {
	List() []*runs.Record
	Get(id string) (*runs.Record, error)
	Delete(id string) error
}

// ProfileStore lists the loadable bot profiles. *config.Manager satisfies it.
type ProfileStore interface {
	List() ([]*config.ProfileInfo, error)
}
