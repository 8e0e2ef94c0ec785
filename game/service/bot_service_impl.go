package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/wricardo/autopilot2048/game/board"
	"github.com/wricardo/autopilot2048/game/config"
	"github.com/wricardo/autopilot2048/game/driver"
	"github.com/wricardo/autopilot2048/game/engine"
	"github.com/wricardo/autopilot2048/game/runs"
)

// botService implements the BotService interface.
type botService struct {
	engines  EngineManager
	loop     LoopController
	surface  driver.BoardAdapter
	runs     RunStore
	profiles ProfileStore
	profile  string
	logger   *zap.Logger
}

// Option configures the service.
type Option func(*botService)

// WithRuns exposes run history through the service.
func WithRuns(store RunStore) Option {
	return func(s *botService) {
		s.runs = store
	}
}

// WithProfiles exposes the profile listing through the service.
func WithProfiles(store ProfileStore) Option {
	return func(s *botService) {
		s.profiles = store
	}
}

// WithProfileName stamps status results with the active profile.
func WithProfileName(name string) Option {
	return func(s *botService) {
		s.profile = name
	}
}

// WithLogger attaches a logger. Components default to a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *botService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewBotService creates a new bot service instance over the planning
// engines, the execution loop, and the board surface the loop drives.
func NewBotService(engines EngineManager, loop LoopController, surface driver.BoardAdapter, opts ...Option) BotService {
	s := &botService{
		engines: engines,
		loop:    loop,
		surface: surface,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Status reports the engine lifecycle and the loop counters in one shot.
func (s *botService) Status(ctx context.Context) (*StatusResult, error) {
	return &StatusResult{
		Engine:   s.engines.GetStatus(),
		Driver:   s.loop.GetStats(),
		Priority: directionNames(s.loop.GetDirectionPriority()),
		Profile:  s.profile,
	}, nil
}

// Board reads the surface and enriches the grid with score, max tile, and
// the active engine's move ordering. The surface's own score wins; the
// engine's evaluation fills in when the surface does not expose one.
func (s *botService) Board(ctx context.Context) (*BoardResult, error) {
	if s.surface == nil {
		return nil, ErrNoSurface
	}
	cells, err := s.surface.ReadBoard()
	if err != nil {
		return nil, fmt.Errorf("board unreadable: %w", err)
	}

	result := &BoardResult{
		Cells:    cells,
		GameOver: s.surface.GameOver(),
		Ranked:   directionNames(s.engines.RankMoves(ctx, cells)),
	}
	if exps, err := board.ToExponents(cells); err == nil {
		result.MaxTile = board.Tile(exps.Max())
	}
	if score, ok := s.surface.Score(); ok {
		result.Score = score
	} else if info := s.engines.BoardInfo(ctx, cells); info != nil {
		result.Score = int(info.Score)
	}
	return result, nil
}

// Stats returns the loop counters.
func (s *botService) Stats(ctx context.Context) (*StatsResult, error) {
	result := &StatsResult{Driver: s.loop.GetStats()}
	if s.runs != nil {
		result.RunsKept = len(s.runs.List())
	}
	return result, nil
}

// Start warms the planner and begins a run.
func (s *botService) Start(ctx context.Context) (*ControlResult, error) {
	// Load the native engine up front so the first tick does not pay for it.
	if err := s.engines.Initialize(ctx); err != nil {
		return nil, fmt.Errorf("engine warmup interrupted: %w", err)
	}
	if err := s.loop.Start(); err != nil {
		return nil, err
	}
	return s.controlResult("run started"), nil
}

// Stop ends the current run.
func (s *botService) Stop(ctx context.Context) (*ControlResult, error) {
	s.loop.Stop()
	return s.controlResult("run stopped"), nil
}

// Reset stops any active run and starts a fresh game on the surface. An
// in-flight move may still land after the reset; the next read sees the
// fresh board either way.
func (s *botService) Reset(ctx context.Context) (*ControlResult, error) {
	if s.surface == nil {
		return nil, ErrNoSurface
	}
	resetter, ok := s.surface.(BoardResetter)
	if !ok {
		return nil, ErrNoReset
	}
	s.loop.Stop()
	resetter.Reset()
	s.logger.Info("board reset")
	return s.controlResult("board reset"), nil
}

// Pause suspends the loop without ending the run.
func (s *botService) Pause(ctx context.Context) (*ControlResult, error) {
	s.loop.Pause()
	return s.controlResult("run paused"), nil
}

// Resume continues a paused run.
func (s *botService) Resume(ctx context.Context) (*ControlResult, error) {
	s.loop.Resume()
	return s.controlResult("run resumed"), nil
}

// Step executes exactly one planning and execution cycle.
func (s *botService) Step(ctx context.Context) (*StepResult, error) {
	changed, err := s.loop.Step(ctx)
	if err != nil {
		return nil, err
	}
	return &StepResult{Changed: changed, Stats: s.loop.GetStats()}, nil
}

// GetStrategy returns the retained strategy.
func (s *botService) GetStrategy(ctx context.Context) (*StrategyResult, error) {
	return &StrategyResult{
		Strategy: s.engines.GetStrategy(),
		Mode:     s.engines.GetStatus().Mode,
	}, nil
}

// SetStrategy merges a partial update and reports the clamped result.
func (s *botService) SetStrategy(ctx context.Context, update engine.StrategyUpdate) (*StrategyResult, error) {
	merged := s.engines.SetStrategy(update)
	return &StrategyResult{
		Strategy: merged,
		Mode:     s.engines.GetStatus().Mode,
	}, nil
}

// SetDirectionPriority pins the move ordering, bypassing the planner.
func (s *botService) SetDirectionPriority(ctx context.Context, names []string) (*PriorityResult, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("at least one direction is required")
	}
	dirs := make([]board.Direction, 0, len(names))
	for _, name := range names {
		dir, err := board.ParseDirection(name)
		if err != nil {
			return nil, fmt.Errorf("invalid direction %q: valid directions are up, right, down, left", name)
		}
		dirs = append(dirs, dir)
	}
	s.loop.SetDirectionPriority(dirs)
	return s.priorityResult(), nil
}

// ClearDirectionPriority hands move ordering back to the planner.
func (s *botService) ClearDirectionPriority(ctx context.Context) (*PriorityResult, error) {
	s.loop.SetDirectionPriority(nil)
	return s.priorityResult(), nil
}

// ListRuns returns the run history, newest first.
func (s *botService) ListRuns(ctx context.Context) ([]*runs.Record, error) {
	if s.runs == nil {
		return []*runs.Record{}, nil
	}
	return s.runs.List(), nil
}

// GetRun returns one run record.
func (s *botService) GetRun(ctx context.Context, id string) (*runs.Record, error) {
	if s.runs == nil {
		return nil, ErrHistoryDisabled
	}
	return s.runs.Get(id)
}

// DeleteRun removes one run record.
func (s *botService) DeleteRun(ctx context.Context, id string) error {
	if s.runs == nil {
		return ErrHistoryDisabled
	}
	return s.runs.Delete(id)
}

// ListProfiles returns the available bot profiles.
func (s *botService) ListProfiles(ctx context.Context) ([]*config.ProfileInfo, error) {
	if s.profiles == nil {
		return []*config.ProfileInfo{}, nil
	}
	return s.profiles.List()
}

// controlResult snapshots the loop after a control call.
func (s *botService) controlResult(msg string) *ControlResult {
	stats := s.loop.GetStats()
	return &ControlResult{State: stats.State, RunID: stats.RunID, Message: msg}
}

// priorityResult snapshots the pinned ordering.
func (s *botService) priorityResult() *PriorityResult {
	pinned := s.loop.GetDirectionPriority()
	return &PriorityResult{Priority: directionNames(pinned), Pinned: pinned != nil}
}

// directionNames renders directions for JSON results. A nil input stays nil
// so "no priority" and "empty priority" serialize differently.
func directionNames(dirs []board.Direction) []string {
	if dirs == nil {
		return nil
	}
	names := make([]string, len(dirs))
	for i, d := range dirs {
		names[i] = d.String()
	}
	return names
}
