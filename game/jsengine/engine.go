package jsengine

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/dop251/goja"
	"go.uber.org/zap"

	"github.com/wricardo/autopilot2048/game/board"
	"github.com/wricardo/autopilot2048/game/engine"
)

// Engine drives a move-planning module hosted in a goja VM. It satisfies
// engine.Planner and additionally produces BoardInfo evaluations. All VM
// access is serialized; the zero value is not usable, construct via Load.
type Engine struct {
	mu     sync.Mutex
	vm     *goja.Runtime
	source string
	logger *zap.Logger

	handle      *goja.Object
	strategyObj *goja.Object

	encode    goja.Callable
	decode    goja.Callable
	canMove   goja.Callable
	applyMove goja.Callable
	configure goja.Callable
	pick      goja.Callable
	evaluate  goja.Callable

	strategy engine.Strategy
}

// Name identifies the engine in status reports.
func (e *Engine) Name() string {
	return "native"
}

// Source returns the artifact path or label the engine was loaded from.
func (e *Engine) Source() string {
	return e.source
}

// Strategy returns the configuration last pushed into the module.
func (e *Engine) Strategy() engine.Strategy {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.strategy
}

// Configure pushes a clamped strategy into the module.
func (e *Engine) Configure(s engine.Strategy) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.push(s.Clamp())
}

// push writes the strategy into the module. Callers hold the mutex, except
// the loader which owns the engine exclusively during construction.
func (e *Engine) push(s engine.Strategy) error {
	_, err := e.configure(e.strategyObj,
		e.vm.ToValue(s.Kind),
		e.vm.ToValue(s.Heuristic),
		e.vm.ToValue(s.Depth),
		e.vm.ToValue(s.Probability),
	)
	if err != nil {
		return runtimeErr("configure", err)
	}
	e.strategy = s
	return nil
}

// RankMoves asks the module for its best move, then orders the remaining
// directions by evaluating the board each would produce, illegal moves last.
// Any exception out of the module wraps ErrRuntime.
func (e *Engine) RankMoves(ctx context.Context, exps board.Exponents) ([]board.Direction, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRuntime, err)
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	handle, err := e.encodeBoard(exps)
	if err != nil {
		return nil, err
	}

	bestVal, err := e.pick(e.strategyObj, handle)
	if err != nil {
		return nil, runtimeErr("pickMove", err)
	}
	best := board.Direction(bestVal.ToInteger())

	type candidate struct {
		dir   board.Direction
		legal bool
		score float64
	}
	candidates := make([]candidate, 0, 4)
	for _, d := range board.Directions() {
		legalVal, err := e.canMove(e.handle, handle, e.vm.ToValue(int(d)))
		if err != nil {
			return nil, runtimeErr("canMove", err)
		}
		c := candidate{dir: d, score: math.Inf(-1)}
		if legalVal.ToBoolean() {
			c.legal = true
			next, err := e.applyMove(e.handle, handle, e.vm.ToValue(int(d)))
			if err != nil {
				return nil, runtimeErr("applyMove", err)
			}
			scoreVal, err := e.evaluate(e.strategyObj, next)
			if err != nil {
				return nil, runtimeErr("evaluateBoard", err)
			}
			c.score = scoreVal.ToFloat()
		}
		candidates = append(candidates, c)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].legal != candidates[j].legal {
			return candidates[i].legal
		}
		return candidates[i].score > candidates[j].score
	})

	ranked := make([]board.Direction, 0, 4)
	if best.Valid() {
		ranked = append(ranked, best)
	}
	for _, c := range candidates {
		if c.dir != best || !best.Valid() {
			ranked = append(ranked, c.dir)
		}
	}
	return ranked, nil
}

// BoardInfo evaluates the position through the module: its heuristic score,
// the highest tile present, and whether any move remains.
func (e *Engine) BoardInfo(ctx context.Context, exps board.Exponents) (*engine.BoardInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRuntime, err)
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	handle, err := e.encodeBoard(exps)
	if err != nil {
		return nil, err
	}

	scoreVal, err := e.evaluate(e.strategyObj, handle)
	if err != nil {
		return nil, runtimeErr("evaluateBoard", err)
	}

	// The module is authoritative on its own encoding, so the maximum tile
	// comes from its decode, not from the input array.
	decodedVal, err := e.decode(e.handle, handle)
	if err != nil {
		return nil, runtimeErr("decode", err)
	}
	var decoded []int
	if err := e.vm.ExportTo(decodedVal, &decoded); err != nil {
		return nil, runtimeErr("decode export", err)
	}
	maxExp := 0
	for _, k := range decoded {
		if k > maxExp {
			maxExp = k
		}
	}

	gameOver := true
	for _, d := range board.Directions() {
		legalVal, err := e.canMove(e.handle, handle, e.vm.ToValue(int(d)))
		if err != nil {
			return nil, runtimeErr("canMove", err)
		}
		if legalVal.ToBoolean() {
			gameOver = false
			break
		}
	}

	return &engine.BoardInfo{
		Score:    scoreVal.ToFloat(),
		MaxTile:  board.Tile(maxExp),
		GameOver: gameOver,
	}, nil
}

// encodeBoard hands the exponent array to the module and returns its opaque
// board handle. Callers hold the mutex.
func (e *Engine) encodeBoard(exps board.Exponents) (goja.Value, error) {
	arr := make([]int, len(exps))
	copy(arr, exps[:])
	handle, err := e.encode(e.handle, e.vm.ToValue(arr))
	if err != nil {
		return nil, runtimeErr("encode", err)
	}
	return handle, nil
}

// bind resolves and validates every contract member on the factory result.
func (e *Engine) bind(handleVal goja.Value) error {
	if handleVal == nil || goja.IsUndefined(handleVal) || goja.IsNull(handleVal) {
		return fmt.Errorf("%w: %s() returned no engine", ErrLoadFailed, FactoryName)
	}
	e.handle = handleVal.ToObject(e.vm)

	var err error
	if e.encode, err = member(e.handle, "encode"); err != nil {
		return err
	}
	if e.decode, err = member(e.handle, "decode"); err != nil {
		return err
	}
	if e.canMove, err = member(e.handle, "canMove"); err != nil {
		return err
	}
	if e.applyMove, err = member(e.handle, "applyMove"); err != nil {
		return err
	}

	strategyVal := e.handle.Get("strategy")
	if strategyVal == nil || goja.IsUndefined(strategyVal) || goja.IsNull(strategyVal) {
		return fmt.Errorf("%w: engine has no strategy object", ErrLoadFailed)
	}
	e.strategyObj = strategyVal.ToObject(e.vm)
	if e.configure, err = member(e.strategyObj, "configure"); err != nil {
		return err
	}
	if e.pick, err = member(e.strategyObj, "pickMove"); err != nil {
		return err
	}
	if e.evaluate, err = member(e.strategyObj, "evaluateBoard"); err != nil {
		return err
	}
	return nil
}

// member resolves one required function off a module object.
func member(obj *goja.Object, name string) (goja.Callable, error) {
	fn, ok := goja.AssertFunction(obj.Get(name))
	if !ok {
		return nil, fmt.Errorf("%w: missing %s()", ErrLoadFailed, name)
	}
	return fn, nil
}

func runtimeErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrRuntime, op, err)
}
