package manager

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/wricardo/autopilot2048/game/board"
	"github.com/wricardo/autopilot2048/game/engine"
)

// Mode identifies which engine variant is currently active.
type Mode string

const (
	ModeNative  Mode = "native"
	ModeBuiltin Mode = "builtin"
)

// Status is the lifecycle state of the native engine.
type Status string

const (
	// StatusIdle means a native engine is configured but not yet requested.
	StatusIdle Status = "idle"
	// StatusLoading means the single load attempt is in flight.
	StatusLoading Status = "loading"
	// StatusReady means the native engine is active.
	StatusReady Status = "ready"
	// StatusFallback means the built-in engine is active, either because no
	// native engine was configured or because it failed.
	StatusFallback Status = "fallback"
)

// DefaultLoadTimeout bounds one native load attempt unless Config overrides.
const DefaultLoadTimeout = 15 * time.Second

// NativePlanner is what a loaded native engine provides: the planning
// contract plus best-effort board evaluation.
type NativePlanner interface {
	engine.Planner
	BoardInfo(ctx context.Context, exps board.Exponents) (*engine.BoardInfo, error)
}

// LoadFunc produces the native engine. Injected so the caller picks the
// artifact mechanism and tests substitute their own.
type LoadFunc func(ctx context.Context) (NativePlanner, error)

// Config controls manager construction.
type Config struct {
	// Loader produces the native engine. Nil means none is configured and
	// the manager starts in fallback.
	Loader LoadFunc
	// Disabled skips the native engine even when a loader is present.
	Disabled bool
	// LoadTimeout bounds one load attempt. Zero means DefaultLoadTimeout.
	LoadTimeout time.Duration
}

// Manager owns both planning engines, runs the native lifecycle, and
// guarantees a complete move ordering from every RankMoves call.
type Manager struct {
	logger  *zap.Logger
	cfg     Config
	builtin *engine.HeuristicEngine

	mu       sync.Mutex
	native   NativePlanner
	status   Status
	lastErr  string
	strategy engine.Strategy
	loading  chan struct{} // non-nil while a load attempt is in flight
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger attaches a logger. Components default to a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// New constructs a manager. It starts idle when a native loader is
// configured and enabled, otherwise directly in fallback.
func New(cfg Config, opts ...Option) *Manager {
	if cfg.LoadTimeout <= 0 {
		cfg.LoadTimeout = DefaultLoadTimeout
	}
	m := &Manager{
		logger:   zap.NewNop(),
		cfg:      cfg,
		builtin:  engine.NewHeuristicEngine(),
		status:   StatusIdle,
		strategy: engine.DefaultStrategy(),
	}
	for _, opt := range opts {
		opt(m)
	}
	if cfg.Loader == nil || cfg.Disabled {
		m.status = StatusFallback
	}
	// The builtin engine accepts any clamped strategy.
	_ = m.builtin.Configure(m.strategy)
	return m
}

// Initialize loads the native engine if it has not been tried yet. Callers
// arriving while a load is in flight wait for that same attempt; at most
// one load ever runs. The outcome lands in the status, not the return
// value: Initialize only errors when ctx dies while waiting.
func (m *Manager) Initialize(ctx context.Context) error {
	for {
		m.mu.Lock()
		switch m.status {
		case StatusReady, StatusFallback:
			m.mu.Unlock()
			return nil
		case StatusLoading:
			ch := m.loading
			m.mu.Unlock()
			select {
			case <-ch:
				// Re-check: the attempt settled into ready or fallback.
			case <-ctx.Done():
				return ctx.Err()
			}
		case StatusIdle:
			ch := make(chan struct{})
			m.loading = ch
			m.status = StatusLoading
			m.mu.Unlock()
			m.runLoad(ctx, ch)
			return nil
		}
	}
}

// runLoad performs the single load attempt and publishes its outcome.
func (m *Manager) runLoad(ctx context.Context, done chan struct{}) {
	loadCtx, cancel := context.WithTimeout(ctx, m.cfg.LoadTimeout)
	defer cancel()

	native, err := m.cfg.Loader(loadCtx)
	if err == nil {
		// Hand the current strategy to the fresh engine before it serves.
		if cerr := native.Configure(m.GetStrategy()); cerr != nil {
			err = cerr
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.loading = nil
	if err != nil {
		m.status = StatusFallback
		m.lastErr = err.Error()
		m.logger.Warn("native engine unavailable, builtin engine active", zap.Error(err))
	} else {
		m.native = native
		m.status = StatusReady
		m.lastErr = ""
		m.logger.Info("native engine ready")
	}
	close(done)
}

// RankMoves returns a complete move ordering for the grid, best first. It
// never fails: while idle it lazily initializes; a native fault demotes to
// the builtin engine permanently; a builtin fault degrades to the canonical
// default ordering; malformed grids rank as the default ordering too.
func (m *Manager) RankMoves(ctx context.Context, cells [][]int) []board.Direction {
	exps, err := board.ToExponents(cells)
	if err != nil {
		m.logger.Warn("board cannot be ranked", zap.Error(err))
		return board.DefaultOrder()
	}
	return m.RankExponents(ctx, exps)
}

// RankExponents is RankMoves for an already-encoded board.
func (m *Manager) RankExponents(ctx context.Context, exps board.Exponents) []board.Direction {
	m.ensureInitialized(ctx)

	if native := m.activeNative(); native != nil {
		ranked, err := native.RankMoves(ctx, exps)
		if err == nil {
			return board.UniqueDirections(ranked)
		}
		m.demote(err)
	}

	ranked, err := m.builtin.RankMoves(ctx, exps)
	if err != nil {
		m.logger.Warn("builtin ranking failed", zap.Error(err))
		return board.DefaultOrder()
	}
	return board.UniqueDirections(ranked)
}

// BoardInfo returns the native engine's evaluation of the grid, or nil when
// the native engine is not active, the grid is malformed, or the evaluation
// faults. Best-effort enrichment only; a fault here does not demote.
func (m *Manager) BoardInfo(ctx context.Context, cells [][]int) *engine.BoardInfo {
	native := m.activeNative()
	if native == nil {
		return nil
	}
	exps, err := board.ToExponents(cells)
	if err != nil {
		return nil
	}
	info, err := native.BoardInfo(ctx, exps)
	if err != nil {
		m.logger.Debug("board info unavailable", zap.Error(err))
		return nil
	}
	return info
}

// SetStrategy merges a partial update into the retained configuration,
// re-clamps it, and pushes the result to every engine that exists. It never
// changes lifecycle status; an engine that rejects the configuration only
// records the error.
func (m *Manager) SetStrategy(update engine.StrategyUpdate) engine.Strategy {
	m.mu.Lock()
	m.strategy = m.strategy.Merge(update)
	merged := m.strategy
	native := m.native
	m.mu.Unlock()

	if err := m.builtin.Configure(merged); err != nil {
		m.logger.Warn("builtin engine rejected strategy", zap.Error(err))
	}
	if native != nil {
		if err := native.Configure(merged); err != nil {
			m.mu.Lock()
			m.lastErr = err.Error()
			m.mu.Unlock()
			m.logger.Warn("native engine rejected strategy", zap.Error(err))
		}
	}
	return merged
}

// GetStrategy returns the retained configuration.
func (m *Manager) GetStrategy() engine.Strategy {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.strategy
}

// Snapshot is a point-in-time view of the manager for observability.
type Snapshot struct {
	Mode      Mode              `json:"mode"`
	Status    Status            `json:"status"`
	LastError string            `json:"last_error,omitempty"`
	Strategy  engine.Strategy   `json:"strategy"`
	Engines   map[string]string `json:"engines"`
}

// GetStatus returns a read-only snapshot. It never fails.
func (m *Manager) GetStatus() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	mode := ModeBuiltin
	if m.status == StatusReady {
		mode = ModeNative
	}

	nativeState := "unloaded"
	switch {
	case m.status == StatusReady:
		nativeState = "ready"
	case m.status == StatusLoading:
		nativeState = "loading"
	case m.cfg.Loader == nil:
		nativeState = "absent"
	case m.cfg.Disabled:
		nativeState = "disabled"
	case m.lastErr != "":
		nativeState = "error"
	}

	return Snapshot{
		Mode:      mode,
		Status:    m.status,
		LastError: m.lastErr,
		Strategy:  m.strategy,
		Engines: map[string]string{
			"native":  nativeState,
			"builtin": "ready",
		},
	}
}

// ensureInitialized runs the lazy load when the manager is still idle or a
// load is already in flight.
func (m *Manager) ensureInitialized(ctx context.Context) {
	m.mu.Lock()
	pending := m.status == StatusIdle || m.status == StatusLoading
	m.mu.Unlock()
	if !pending {
		return
	}
	if err := m.Initialize(ctx); err != nil {
		m.logger.Warn("initialize interrupted", zap.Error(err))
	}
}

// activeNative returns the native engine only while it is the active one.
func (m *Manager) activeNative() NativePlanner {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.status == StatusReady {
		return m.native
	}
	return nil
}

// demote permanently retires the native engine after a runtime fault. All
// later calls use the builtin engine; the native engine is never retried.
func (m *Manager) demote(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.status != StatusReady {
		return
	}
	m.status = StatusFallback
	m.lastErr = err.Error()
	m.native = nil
	m.logger.Warn("native engine demoted after runtime fault", zap.Error(err))
}
