// Command analyze prints quick, human-readable heuristics about the bot
// profiles in the configs directory. It summarizes engine selection, strategy
// shape, and loop timing, and flags settings that make runs slow or fragile:
// missing artifacts, starved planning windows, and stuck thresholds that take
// too long to fire.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/wricardo/autopilot2048/game/driver"
)

// analysisProfile is a light struct for reading profile files used by
// analysis. It mirrors only the fields the heuristics need.
type analysisProfile struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Engine      struct {
		Artifact      string `json:"artifact"`
		Disabled      bool   `json:"disabled"`
		LoadTimeoutMS int    `json:"load_timeout_ms"`
	} `json:"engine"`
	Strategy struct {
		Kind        string  `json:"kind"`
		Heuristic   string  `json:"heuristic"`
		Depth       int     `json:"depth"`
		Probability float64 `json:"probability"`
	} `json:"strategy"`
	Driver struct {
		TickDelayMS    int `json:"tick_delay_ms"`
		ConfirmDelayMS int `json:"confirm_delay_ms"`
		ErrorDelayMS   int `json:"error_delay_ms"`
		StuckThreshold int `json:"stuck_threshold"`
		MaxMoves       int `json:"max_moves"`
	} `json:"driver"`
	Sim struct {
		Seed            int64   `json:"seed"`
		MoveFailureRate float64 `json:"move_failure_rate"`
	} `json:"sim"`
}

func main() {
	dir := "configs"
	if len(os.Args) > 1 {
		dir = os.Args[1]
	}

	paths, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil || len(paths) == 0 {
		fmt.Printf("No profiles found in %s\n", dir)
		os.Exit(1)
	}
	sort.Strings(paths)

	for _, path := range paths {
		fmt.Printf("\n=== Analyzing %s ===\n", filepath.Base(path))
		analyzeProfile(path)
	}
}

func analyzeProfile(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Printf("Error reading file: %v\n", err)
		return
	}

	var profile analysisProfile
	if err := json.Unmarshal(data, &profile); err != nil {
		fmt.Printf("Error parsing JSON: %v\n", err)
		return
	}

	fmt.Printf("Name: %s\n", profile.Name)
	if profile.Description != "" {
		fmt.Printf("Description: %s\n", profile.Description)
	}

	if profile.Engine.Disabled || profile.Engine.Artifact == "" {
		fmt.Printf("Engine: builtin heuristic\n")
	} else {
		fmt.Printf("Engine: native (%s)\n", profile.Engine.Artifact)
		checkArtifact(profile.Engine.Artifact)
	}

	fmt.Printf("Strategy: %s/%s depth=%d probability=%.4f\n",
		profile.Strategy.Kind, profile.Strategy.Heuristic,
		profile.Strategy.Depth, profile.Strategy.Probability)

	tick := effectiveDelay(profile.Driver.TickDelayMS, driver.DefaultTickDelay)
	confirm := effectiveDelay(profile.Driver.ConfirmDelayMS, driver.DefaultConfirmDelay)
	errorDelay := effectiveDelay(profile.Driver.ErrorDelayMS, driver.DefaultErrorDelay)
	threshold := profile.Driver.StuckThreshold
	if threshold <= 0 {
		threshold = driver.DefaultStuckThreshold
	}

	fmt.Printf("Cycle: tick %s + confirm %s → ceiling %.1f moves/s\n",
		tick, confirm, throughputCeiling(tick, confirm))
	fmt.Printf("Stuck recovery: %d quiet cycles → forced move after ~%s\n",
		threshold, recoveryLatency(threshold, tick, confirm).Round(time.Millisecond))
	fmt.Printf("Error backoff: %s\n", errorDelay)
	if profile.Driver.MaxMoves > 0 {
		fmt.Printf("Move budget: %d (runs stop on their own)\n", profile.Driver.MaxMoves)
	}

	warnings := timingWarnings(profile, tick, confirm, threshold)
	if len(warnings) == 0 {
		fmt.Printf("✅ Timing looks sane\n")
		return
	}
	for _, w := range warnings {
		fmt.Printf("⚠️  %s\n", w)
	}
}

// checkArtifact reports whether the native engine artifact exists and defines
// the factory the loader calls.
func checkArtifact(artifact string) {
	info, err := os.Stat(artifact)
	if err != nil {
		fmt.Printf("⚠️  CRITICAL: artifact not found, the bot will fall back to the builtin heuristic\n")
		return
	}

	data, err := os.ReadFile(artifact)
	if err != nil {
		fmt.Printf("⚠️  WARNING: artifact unreadable: %v\n", err)
		return
	}
	if !strings.Contains(string(data), "createEngine") {
		fmt.Printf("⚠️  WARNING: artifact does not define createEngine, loading will fail\n")
		return
	}

	fmt.Printf("✅ Artifact present (%d bytes, defines createEngine)\n", info.Size())
}

// effectiveDelay resolves a millisecond field the way the driver does: zero
// or negative takes the default.
func effectiveDelay(ms int, fallback time.Duration) time.Duration {
	if ms <= 0 {
		return fallback
	}
	return time.Duration(ms) * time.Millisecond
}

// throughputCeiling is the loop's best case, where every cycle confirms a
// move on the first attempt.
func throughputCeiling(tick, confirm time.Duration) float64 {
	cycle := tick + confirm
	if cycle <= 0 {
		return 0
	}
	return float64(time.Second) / float64(cycle)
}

// recoveryLatency is the worst-case wall time between the board going quiet
// and the forced random move.
func recoveryLatency(threshold int, tick, confirm time.Duration) time.Duration {
	return time.Duration(threshold) * (tick + confirm)
}

// timingWarnings collects the settings that experience says cause trouble.
func timingWarnings(p analysisProfile, tick, confirm time.Duration, threshold int) []string {
	var warnings []string

	native := !p.Engine.Disabled && p.Engine.Artifact != ""
	if native && tick < 50*time.Millisecond {
		warnings = append(warnings,
			fmt.Sprintf("tick delay %s leaves little planning room for a native engine", tick))
	}
	if confirm < 30*time.Millisecond {
		warnings = append(warnings,
			fmt.Sprintf("confirm delay %s may re-read before a slow surface settles", confirm))
	}
	if lat := recoveryLatency(threshold, tick, confirm); lat > 5*time.Second {
		warnings = append(warnings,
			fmt.Sprintf("stuck recovery takes ~%s to fire; consider a lower threshold", lat.Round(time.Second)))
	}
	if p.Strategy.Depth > 8 {
		warnings = append(warnings,
			fmt.Sprintf("depth %d exceeds the clamp ceiling of 8", p.Strategy.Depth))
	} else if p.Strategy.Depth >= 5 && tick < 200*time.Millisecond {
		warnings = append(warnings,
			fmt.Sprintf("depth %d with a %s tick window risks planning overruns", p.Strategy.Depth, tick))
	}
	if p.Strategy.Probability != 0 && (p.Strategy.Probability < 0.0001 || p.Strategy.Probability > 0.2) {
		warnings = append(warnings,
			fmt.Sprintf("probability %.5f will clamp into [0.0001, 0.2]", p.Strategy.Probability))
	}
	if p.Sim.MoveFailureRate > 0.3 {
		warnings = append(warnings,
			fmt.Sprintf("move failure rate %.0f%% makes stuck recovery dominate the run", 100*p.Sim.MoveFailureRate))
	}

	return warnings
}
