package driver

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wricardo/autopilot2048/game/board"
)

// State is the lifecycle state of the loop.
type State string

const (
	StateIdle    State = "idle"
	StateRunning State = "running"
	StatePaused  State = "paused"
)

// Defaults applied to Config fields left zero or negative.
const (
	DefaultTickDelay      = 150 * time.Millisecond
	DefaultConfirmDelay   = 120 * time.Millisecond
	DefaultErrorDelay     = 1500 * time.Millisecond
	DefaultStuckThreshold = 5
)

// errGameOver ends a run from inside a cycle.
var errGameOver = errors.New("game over")

// MovePlanner produces a complete move ordering for a grid, best first.
// *manager.Manager satisfies it.
type MovePlanner interface {
	RankMoves(ctx context.Context, cells [][]int) []board.Direction
}

// Config controls loop timing and behavior.
type Config struct {
	// TickDelay is the pause between planning cycles.
	TickDelay time.Duration
	// ConfirmDelay is how long a sent move gets to change the board before
	// the driver re-reads and compares. The board gives no completion
	// signal, so confirmation is a bounded wait, never event-driven.
	ConfirmDelay time.Duration
	// ErrorDelay replaces TickDelay after a faulted cycle so transient
	// adapter trouble self-heals instead of hot-looping.
	ErrorDelay time.Duration
	// StuckThreshold is how many consecutive no-change cycles trigger one
	// random recovery move.
	StuckThreshold int
	// MaxMoves ends the run after that many confirmed moves. Zero means
	// unlimited.
	MaxMoves int
	// PauseWhenHidden defers cycles while Visible reports false.
	PauseWhenHidden bool
	// Visible reports whether the board surface is on screen. Nil means
	// always visible.
	Visible func() bool
}

func (c Config) withDefaults() Config {
	if c.TickDelay <= 0 {
		c.TickDelay = DefaultTickDelay
	}
	if c.ConfirmDelay <= 0 {
		c.ConfirmDelay = DefaultConfirmDelay
	}
	if c.ErrorDelay <= 0 {
		c.ErrorDelay = DefaultErrorDelay
	}
	if c.StuckThreshold <= 0 {
		c.StuckThreshold = DefaultStuckThreshold
	}
	if c.MaxMoves < 0 {
		c.MaxMoves = 0
	}
	return c
}

// Driver owns the execution loop: it plans through a MovePlanner, moves
// through a BoardAdapter, and confirms every move by re-reading the board.
type Driver struct {
	logger  *zap.Logger
	planner MovePlanner
	cfg     Config

	mu        sync.Mutex
	adapter   BoardAdapter
	state     State
	destroyed bool
	runID     string
	startedAt time.Time
	priority  []board.Direction
	rng       *rand.Rand
	cancel    context.CancelFunc
	stopCh    chan struct{}
	loopDone  chan struct{}

	moveCount    int
	tickCount    int
	stuckCount   int
	recoveries   int
	readFailures int
	lastHash     string

	// tickMu serializes cycles between the loop goroutine and Step.
	tickMu sync.Mutex

	emitMu  sync.Mutex
	seq     uint64
	subMu   sync.Mutex
	subs    []subscriber
	nextSub int
}

// Option configures a Driver.
type Option func(*Driver)

// WithLogger attaches a logger. Components default to a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(d *Driver) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithRand replaces the recovery-move randomness source.
func WithRand(rng *rand.Rand) Option {
	return func(d *Driver) {
		if rng != nil {
			d.rng = rng
		}
	}
}

// New constructs a driver around a planner. Attach a board adapter before
// calling Start or Step.
func New(planner MovePlanner, cfg Config, opts ...Option) *Driver {
	d := &Driver{
		logger:  zap.NewNop(),
		planner: planner,
		cfg:     cfg.withDefaults(),
		state:   StateIdle,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Attach connects the board surface the loop drives. Attach(nil) detaches.
func (d *Driver) Attach(adapter BoardAdapter) error {
	if adapter != nil && !adapter.CanAttach() {
		return fmt.Errorf("board surface not available")
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.destroyed {
		return ErrDestroyed
	}
	d.adapter = adapter
	return nil
}

// Start begins a run. It requires an attached adapter and fails with
// ErrNoAdapter otherwise. Starting a paused driver resumes it; starting a
// running driver is a no-op.
func (d *Driver) Start() error {
	d.mu.Lock()
	if d.destroyed {
		d.mu.Unlock()
		return ErrDestroyed
	}
	if d.adapter == nil {
		d.mu.Unlock()
		return ErrNoAdapter
	}
	switch d.state {
	case StateRunning:
		d.mu.Unlock()
		return nil
	case StatePaused:
		d.state = StateRunning
		d.mu.Unlock()
		d.emit(Event{Type: EventResumed})
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	stop := make(chan struct{})
	done := make(chan struct{})
	d.state = StateRunning
	d.runID = uuid.NewString()
	d.startedAt = time.Now()
	d.moveCount = 0
	d.tickCount = 0
	d.stuckCount = 0
	d.recoveries = 0
	d.readFailures = 0
	d.lastHash = ""
	d.cancel = cancel
	d.stopCh = stop
	d.loopDone = done
	runID := d.runID
	d.mu.Unlock()

	d.logger.Info("run started", zap.String("run_id", runID))
	d.emit(Event{Type: EventStarted, Message: "run started"})
	go d.loop(ctx, cancel, stop, done)
	return nil
}

// Stop ends the run. It takes effect at the next tick boundary; an
// in-flight cycle completes first.
func (d *Driver) Stop() {
	d.mu.Lock()
	if d.destroyed || d.state == StateIdle {
		d.mu.Unlock()
		return
	}
	d.state = StateIdle
	stop := d.stopCh
	d.stopCh = nil
	d.mu.Unlock()
	if stop != nil {
		close(stop)
	}
}

// Pause suspends work at the next tick boundary. The loop stays alive and
// keeps polling for Resume.
func (d *Driver) Pause() {
	d.mu.Lock()
	if d.state != StateRunning {
		d.mu.Unlock()
		return
	}
	d.state = StatePaused
	d.mu.Unlock()
	d.emit(Event{Type: EventPaused})
}

// Resume continues a paused run. It is a no-op unless currently paused.
func (d *Driver) Resume() {
	d.mu.Lock()
	if d.state != StatePaused {
		d.mu.Unlock()
		return
	}
	d.state = StateRunning
	d.mu.Unlock()
	d.emit(Event{Type: EventResumed})
}

// Step runs exactly one planning and execution cycle, independent of the
// running loop, and reports whether any move changed the board.
func (d *Driver) Step(ctx context.Context) (bool, error) {
	d.mu.Lock()
	if d.destroyed {
		d.mu.Unlock()
		return false, ErrDestroyed
	}
	if d.adapter == nil {
		d.mu.Unlock()
		return false, ErrNoAdapter
	}
	d.mu.Unlock()

	changed, _, err := d.cycle(ctx)
	if errors.Is(err, errGameOver) {
		return false, nil
	}
	return changed, err
}

// SetDirectionPriority pins the move ordering, bypassing the planner, until
// cleared with nil. Partial or malformed lists are normalized to a full
// permutation.
func (d *Driver) SetDirectionPriority(dirs []board.Direction) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if dirs == nil {
		d.priority = nil
		return
	}
	d.priority = board.UniqueDirections(dirs)
}

// GetDirectionPriority returns the pinned ordering, or nil when the planner
// decides.
func (d *Driver) GetDirectionPriority() []board.Direction {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.priority == nil {
		return nil
	}
	out := make([]board.Direction, len(d.priority))
	copy(out, d.priority)
	return out
}

// Destroy stops the loop, waits for it to exit, and releases subscribers.
// The driver is unusable afterwards.
func (d *Driver) Destroy() {
	d.mu.Lock()
	if d.destroyed {
		d.mu.Unlock()
		return
	}
	d.destroyed = true
	d.state = StateIdle
	stop := d.stopCh
	d.stopCh = nil
	cancel := d.cancel
	d.cancel = nil
	done := d.loopDone
	d.loopDone = nil
	d.adapter = nil
	d.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if stop != nil {
		close(stop)
	}
	if done != nil {
		<-done
	}
	d.subMu.Lock()
	d.subs = nil
	d.subMu.Unlock()
}

// loop is the single goroutine that owns ticking for one run. It exits on
// Stop, Destroy, game over, or an exhausted move budget.
func (d *Driver) loop(ctx context.Context, cancel context.CancelFunc, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	defer cancel()

	timer := time.NewTimer(0)
	defer timer.Stop()
	for {
		select {
		case <-stop:
			d.emit(Event{Type: EventStopped, Message: "stopped"})
			return
		case <-timer.C:
		}

		if d.currentState() == StatePaused {
			timer.Reset(d.cfg.TickDelay)
			continue
		}
		if d.cfg.PauseWhenHidden && d.cfg.Visible != nil && !d.cfg.Visible() {
			// Hidden surface: defer without counting anything.
			timer.Reset(d.cfg.TickDelay)
			continue
		}

		changed, faulted, err := d.cycle(ctx)
		switch {
		case errors.Is(err, errGameOver):
			d.finishRun("game over")
			return
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return
		case err != nil:
			d.emit(Event{Type: EventError, Message: err.Error()})
			timer.Reset(d.cfg.ErrorDelay)
			continue
		}

		if changed && d.budgetExhausted() {
			d.finishRun("move budget reached")
			return
		}
		if faulted {
			timer.Reset(d.cfg.ErrorDelay)
		} else {
			timer.Reset(d.cfg.TickDelay)
		}
	}
}

// cycle runs one planning and execution pass: read, hash, rank, then try
// candidates in rank order until one changes the board. It reports whether a
// move changed the board and whether the pass faulted (reschedule after
// ErrorDelay). Shared by the loop and Step.
func (d *Driver) cycle(ctx context.Context) (changed bool, faulted bool, err error) {
	d.tickMu.Lock()
	defer d.tickMu.Unlock()

	d.mu.Lock()
	adapter := d.adapter
	d.tickCount++
	d.mu.Unlock()
	if adapter == nil {
		return false, false, ErrNoAdapter
	}

	if adapter.GameOver() {
		d.emit(Event{Type: EventGameOver, Message: "board reports game over"})
		return false, false, errGameOver
	}

	cells, readErr := adapter.ReadBoard()
	if readErr != nil || cells == nil {
		if readErr == nil {
			readErr = errors.New("adapter returned no board")
		}
		d.mu.Lock()
		d.readFailures++
		d.mu.Unlock()
		d.logger.Warn("board unreadable", zap.Error(readErr))
		d.emit(Event{Type: EventReadFailure, Message: readErr.Error()})
		// An unreadable surface is a failed attempt, not a fatal error: it
		// feeds the stuck counter, and recovery falls back to the canonical
		// ordering since no ranking exists for an unknown position.
		d.registerNoChange(adapter, board.DefaultOrder())
		return false, true, nil
	}

	before := board.Hash(cells)
	ranked := d.rankedFor(ctx, cells)

	for attempt, dir := range ranked {
		if sendErr := adapter.SendMove(dir); sendErr != nil {
			d.logger.Debug("move rejected", zap.Stringer("direction", dir), zap.Error(sendErr))
			continue
		}
		if waitErr := d.confirmWait(ctx); waitErr != nil {
			return false, false, waitErr
		}
		after, afterErr := adapter.ReadBoard()
		if afterErr != nil || after == nil {
			continue
		}
		hash := board.Hash(after)
		if hash == before {
			continue
		}
		d.registerMove(adapter, dir, hash, attempt)
		return true, false, nil
	}

	d.registerNoChange(adapter, ranked)
	return false, false, nil
}

// rankedFor returns the pinned priority when set, otherwise the planner's
// ranking for the grid.
func (d *Driver) rankedFor(ctx context.Context, cells [][]int) []board.Direction {
	d.mu.Lock()
	override := d.priority
	d.mu.Unlock()
	if override != nil {
		return override
	}
	return d.planner.RankMoves(ctx, cells)
}

// confirmWait gives a sent move its bounded window to change the board.
func (d *Driver) confirmWait(ctx context.Context) error {
	t := time.NewTimer(d.cfg.ConfirmDelay)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// registerMove records a confirmed board change and resets stuck tracking.
func (d *Driver) registerMove(adapter BoardAdapter, dir board.Direction, hash string, attempt int) {
	d.mu.Lock()
	d.moveCount++
	d.stuckCount = 0
	d.lastHash = hash
	d.mu.Unlock()

	ev := Event{Type: EventMove, Direction: &dir, Attempt: attempt + 1}
	if score, ok := adapter.Score(); ok {
		ev.Score = &score
	}
	d.emit(ev)
}

// registerNoChange advances the stuck counter and, at the threshold, issues
// exactly one uniformly random direction from the ranked list as a forced
// recovery move.
func (d *Driver) registerNoChange(adapter BoardAdapter, ranked []board.Direction) {
	d.mu.Lock()
	d.stuckCount++
	stuck := d.stuckCount
	var recovery *board.Direction
	if stuck >= d.cfg.StuckThreshold && len(ranked) > 0 {
		dir := ranked[d.rng.Intn(len(ranked))]
		recovery = &dir
		d.stuckCount = 0
		d.recoveries++
	}
	d.mu.Unlock()

	d.emit(Event{Type: EventStuck, Attempt: stuck, Message: "no move changed the board"})
	if recovery == nil {
		return
	}
	d.logger.Info("stuck threshold reached, forcing random move", zap.Stringer("direction", *recovery))
	if err := adapter.SendMove(*recovery); err != nil {
		d.logger.Warn("recovery move rejected", zap.Error(err))
	}
	d.emit(Event{Type: EventRecovery, Direction: recovery})
}

// finishRun transitions the loop to idle from inside the loop goroutine.
func (d *Driver) finishRun(reason string) {
	d.mu.Lock()
	d.state = StateIdle
	d.stopCh = nil
	d.mu.Unlock()
	d.logger.Info("run finished", zap.String("reason", reason))
	d.emit(Event{Type: EventStopped, Message: reason})
}

func (d *Driver) currentState() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

func (d *Driver) budgetExhausted() bool {
	if d.cfg.MaxMoves <= 0 {
		return false
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.moveCount >= d.cfg.MaxMoves
}
