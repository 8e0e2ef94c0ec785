package jsengine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/dop251/goja"
	"github.com/dop251/goja_nodejs/console"
	"github.com/dop251/goja_nodejs/require"
	"go.uber.org/zap"

	"github.com/wricardo/autopilot2048/game/engine"
)

var (
	// ErrLoadFailed marks any failure to read, compile, evaluate, or
	// validate an engine artifact.
	ErrLoadFailed = errors.New("engine artifact load failed")
	// ErrRuntime marks a fault in an already-loaded artifact.
	ErrRuntime = errors.New("engine runtime failure")
)

// FactoryName is the global function every artifact must define.
const FactoryName = "createEngine"

// DefaultLoadTimeout bounds artifact evaluation when the caller's context
// carries no deadline of its own.
const DefaultLoadTimeout = 10 * time.Second

// Option configures the loader.
type Option func(*options)

type options struct {
	logger  *zap.Logger
	timeout time.Duration
}

// WithLogger attaches a logger to the loaded engine.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithLoadTimeout overrides the default evaluation timeout.
func WithLoadTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// Load reads an artifact from disk and instantiates it.
func Load(ctx context.Context, path string, opts ...Option) (*Engine, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrLoadFailed, path, err)
	}
	return LoadSource(ctx, path, string(src), opts...)
}

// LoadSource instantiates an artifact from in-memory source. The name only
// labels compile errors and stack traces.
func LoadSource(ctx context.Context, name, source string, opts ...Option) (*Engine, error) {
	o := options{
		logger:  zap.NewNop(),
		timeout: DefaultLoadTimeout,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	vm := goja.New()
	registry := require.NewRegistry()
	registry.Enable(vm)
	console.Enable(vm)

	// Interrupt evaluation if the context expires mid-load. The watcher is
	// stopped and any pending interrupt cleared before Load returns, so
	// later engine calls are not subject to the load deadline.
	watcherDone := make(chan struct{})
	watcherExited := make(chan struct{})
	go func() {
		defer close(watcherExited)
		select {
		case <-ctx.Done():
			vm.Interrupt(ctx.Err())
		case <-watcherDone:
		}
	}()
	defer func() {
		close(watcherDone)
		<-watcherExited
		vm.ClearInterrupt()
	}()

	prg, err := goja.Compile(name, source, true)
	if err != nil {
		return nil, fmt.Errorf("%w: compile %s: %v", ErrLoadFailed, name, err)
	}
	if _, err := vm.RunProgram(prg); err != nil {
		return nil, fmt.Errorf("%w: evaluate %s: %v", ErrLoadFailed, name, err)
	}

	factory, ok := goja.AssertFunction(vm.Get(FactoryName))
	if !ok {
		return nil, fmt.Errorf("%w: %s does not define %s()", ErrLoadFailed, name, FactoryName)
	}
	handle, err := factory(goja.Undefined())
	if err != nil {
		return nil, fmt.Errorf("%w: %s(): %v", ErrLoadFailed, FactoryName, err)
	}

	eng := &Engine{
		vm:     vm,
		source: name,
		logger: o.logger,
	}
	if err := eng.bind(handle); err != nil {
		return nil, err
	}

	eng.strategy = engine.DefaultStrategy()
	if err := eng.push(eng.strategy); err != nil {
		return nil, fmt.Errorf("%w: initial configure: %v", ErrLoadFailed, err)
	}
	o.logger.Debug("engine artifact loaded", zap.String("artifact", name))
	return eng, nil
}
