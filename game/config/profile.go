package config

import (
	"fmt"
	"time"

	"github.com/wricardo/autopilot2048/game/driver"
	"github.com/wricardo/autopilot2048/game/engine"
)

// Profile binds a named bot setup: which engine artifact to load, the
// search strategy, loop timing, and simulator settings for offline play.
type Profile struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Engine      EngineConfig    `json:"engine"`
	Strategy    engine.Strategy `json:"strategy"`
	Driver      DriverConfig    `json:"driver"`
	Sim         SimConfig       `json:"sim"`
}

// EngineConfig selects the native planning engine artifact.
type EngineConfig struct {
	// Artifact is the path to the JavaScript engine module. Empty means no
	// native engine; the builtin heuristic serves alone.
	Artifact string `json:"artifact,omitempty"`
	// Disabled skips the native engine even when an artifact is set.
	Disabled bool `json:"disabled,omitempty"`
	// LoadTimeoutMS bounds one load attempt. Zero takes the manager default.
	LoadTimeoutMS int `json:"load_timeout_ms,omitempty"`
}

// DriverConfig carries loop timing in milliseconds. Zero fields take the
// driver defaults.
type DriverConfig struct {
	TickDelayMS     int  `json:"tick_delay_ms,omitempty"`
	ConfirmDelayMS  int  `json:"confirm_delay_ms,omitempty"`
	ErrorDelayMS    int  `json:"error_delay_ms,omitempty"`
	StuckThreshold  int  `json:"stuck_threshold,omitempty"`
	PauseWhenHidden bool `json:"pause_when_hidden,omitempty"`
	MaxMoves        int  `json:"max_moves,omitempty"`
}

// SimConfig configures the in-process game for play and selfplay modes.
type SimConfig struct {
	// Seed makes simulated games reproducible. Zero means time-seeded.
	Seed int64 `json:"seed,omitempty"`
	// MoveFailureRate drops that fraction of moves, in [0,1].
	MoveFailureRate float64 `json:"move_failure_rate,omitempty"`
}

// Validate checks the profile shape. Strategy values are not validated here
// because they clamp silently; shape problems (negative delays, rates out of
// range) are real mistakes and fail loading.
func (p *Profile) Validate() error {
	if p == nil {
		return fmt.Errorf("%w: profile is nil", ErrInvalidProfile)
	}
	if p.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidProfile)
	}
	if p.Engine.LoadTimeoutMS < 0 {
		return fmt.Errorf("%w: engine.load_timeout_ms must not be negative", ErrInvalidProfile)
	}
	if p.Driver.TickDelayMS < 0 || p.Driver.ConfirmDelayMS < 0 || p.Driver.ErrorDelayMS < 0 {
		return fmt.Errorf("%w: driver delays must not be negative", ErrInvalidProfile)
	}
	if p.Driver.StuckThreshold < 0 {
		return fmt.Errorf("%w: driver.stuck_threshold must not be negative", ErrInvalidProfile)
	}
	if p.Driver.MaxMoves < 0 {
		return fmt.Errorf("%w: driver.max_moves must not be negative", ErrInvalidProfile)
	}
	if p.Sim.MoveFailureRate < 0 || p.Sim.MoveFailureRate > 1 {
		return fmt.Errorf("%w: sim.move_failure_rate must be in [0,1]", ErrInvalidProfile)
	}
	return nil
}

// normalize clamps the strategy in place. Timing fields stay as written;
// the driver applies its own defaults to zeroes.
func (p *Profile) normalize() {
	p.Strategy = p.Strategy.Clamp()
}

// DriverConfig converts the millisecond fields into the driver's Config.
func (p *Profile) DriverConfig() driver.Config {
	return driver.Config{
		TickDelay:       time.Duration(p.Driver.TickDelayMS) * time.Millisecond,
		ConfirmDelay:    time.Duration(p.Driver.ConfirmDelayMS) * time.Millisecond,
		ErrorDelay:      time.Duration(p.Driver.ErrorDelayMS) * time.Millisecond,
		StuckThreshold:  p.Driver.StuckThreshold,
		PauseWhenHidden: p.Driver.PauseWhenHidden,
		MaxMoves:        p.Driver.MaxMoves,
	}
}

// LoadTimeout returns the native load timeout, zero when unset.
func (p *Profile) LoadTimeout() time.Duration {
	return time.Duration(p.Engine.LoadTimeoutMS) * time.Millisecond
}

// EngineMode names which planning engine the profile runs.
func (p *Profile) EngineMode() string {
	if p.Engine.Artifact != "" && !p.Engine.Disabled {
		return "native"
	}
	return "builtin"
}
