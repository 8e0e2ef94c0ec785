// Command validate provides a small CLI that strictly validates the bot
// profile JSON files in the ../configs directory. It checks:
//   - JSON structure, rejecting unknown fields to catch typos
//   - Name presence and agreement with the file name (profiles load by file name)
//   - Strategy bounds as written: depth in [1,8], probability in [0.0001,0.2],
//     so nothing gets silently clamped at load time
//   - Driver timing fields (no negative delays, thresholds, or budgets)
//   - Simulator settings (move failure rate in [0,1])
//   - Artifact presence and the createEngine factory for native profiles
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Profile mirrors the JSON schema for a bot profile.
type Profile struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Engine      EngineSection   `json:"engine"`
	Strategy    StrategySection `json:"strategy"`
	Driver      DriverSection   `json:"driver"`
	Sim         SimSection      `json:"sim"`
}

// EngineSection selects the native planning engine artifact.
type EngineSection struct {
	Artifact      string `json:"artifact"`
	Disabled      bool   `json:"disabled"`
	LoadTimeoutMS int    `json:"load_timeout_ms"`
}

// StrategySection carries the search configuration.
type StrategySection struct {
	Kind        string  `json:"kind"`
	Heuristic   string  `json:"heuristic"`
	Depth       int     `json:"depth"`
	Probability float64 `json:"probability"`
}

// DriverSection carries loop timing in milliseconds.
type DriverSection struct {
	TickDelayMS     int  `json:"tick_delay_ms"`
	ConfirmDelayMS  int  `json:"confirm_delay_ms"`
	ErrorDelayMS    int  `json:"error_delay_ms"`
	StuckThreshold  int  `json:"stuck_threshold"`
	PauseWhenHidden bool `json:"pause_when_hidden"`
	MaxMoves        int  `json:"max_moves"`
}

// SimSection configures the in-process game.
type SimSection struct {
	Seed            int64   `json:"seed"`
	MoveFailureRate float64 `json:"move_failure_rate"`
}

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Errors contains informational messages; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
}

// validateProfile loads and strictly validates a single profile JSON file.
// Unlike the server's loader, which clamps strategy values and defaults zero
// timing fields, this rejects anything that would be silently rewritten.
func validateProfile(filePath string) ValidationResult {
	result := ValidationResult{
		File:   filepath.Base(filePath),
		Valid:  true,
		Errors: []string{},
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Failed to read file: %v", err))
		return result
	}

	var profile Profile
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&profile); err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Invalid JSON: %v", err))
		return result
	}

	// Validate name
	if profile.Name == "" {
		result.Valid = false
		result.Errors = append(result.Errors, "name is required")
	} else if stem := strings.TrimSuffix(result.File, ".json"); profile.Name != stem {
		result.Valid = false
		result.Errors = append(result.Errors,
			fmt.Sprintf("name %q does not match file name %q; profiles load by file name", profile.Name, stem))
	}

	// Validate engine settings
	if profile.Engine.LoadTimeoutMS < 0 {
		result.Valid = false
		result.Errors = append(result.Errors,
			fmt.Sprintf("engine.load_timeout_ms must not be negative, got %d", profile.Engine.LoadTimeoutMS))
	}

	// Validate strategy bounds as written
	if profile.Strategy.Kind == "" {
		result.Valid = false
		result.Errors = append(result.Errors, "strategy.kind is empty and would silently default")
	}
	if profile.Strategy.Heuristic == "" {
		result.Valid = false
		result.Errors = append(result.Errors, "strategy.heuristic is empty and would silently default")
	}
	if profile.Strategy.Depth < 1 || profile.Strategy.Depth > 8 {
		result.Valid = false
		result.Errors = append(result.Errors,
			fmt.Sprintf("strategy.depth %d outside [1, 8] and would be clamped at load time", profile.Strategy.Depth))
	}
	if profile.Strategy.Probability < 0.0001 || profile.Strategy.Probability > 0.2 {
		result.Valid = false
		result.Errors = append(result.Errors,
			fmt.Sprintf("strategy.probability %.5f outside [0.0001, 0.2] and would be clamped at load time", profile.Strategy.Probability))
	}

	// Validate driver timing
	if profile.Driver.TickDelayMS < 0 {
		result.Valid = false
		result.Errors = append(result.Errors,
			fmt.Sprintf("driver.tick_delay_ms must not be negative, got %d", profile.Driver.TickDelayMS))
	}
	if profile.Driver.ConfirmDelayMS < 0 {
		result.Valid = false
		result.Errors = append(result.Errors,
			fmt.Sprintf("driver.confirm_delay_ms must not be negative, got %d", profile.Driver.ConfirmDelayMS))
	}
	if profile.Driver.ErrorDelayMS < 0 {
		result.Valid = false
		result.Errors = append(result.Errors,
			fmt.Sprintf("driver.error_delay_ms must not be negative, got %d", profile.Driver.ErrorDelayMS))
	}
	if profile.Driver.StuckThreshold < 0 {
		result.Valid = false
		result.Errors = append(result.Errors,
			fmt.Sprintf("driver.stuck_threshold must not be negative, got %d", profile.Driver.StuckThreshold))
	}
	if profile.Driver.MaxMoves < 0 {
		result.Valid = false
		result.Errors = append(result.Errors,
			fmt.Sprintf("driver.max_moves must not be negative, got %d", profile.Driver.MaxMoves))
	}

	// Validate simulator settings
	if profile.Sim.MoveFailureRate < 0 || profile.Sim.MoveFailureRate > 1 {
		result.Valid = false
		result.Errors = append(result.Errors,
			fmt.Sprintf("sim.move_failure_rate %.2f outside [0, 1]", profile.Sim.MoveFailureRate))
	}

	// Artifact validation - check the native engine can actually be loaded
	if result.Valid && profile.Engine.Artifact != "" && !profile.Engine.Disabled {
		artifactResult := validateArtifact(profile.Engine.Artifact, filePath)
		if !artifactResult.Valid {
			result.Valid = false
		}
		result.Errors = append(result.Errors, artifactResult.Errors...)
	}

	// Add informational data
	if result.Valid {
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Name: %s", profile.Name))
		switch {
		case profile.Engine.Artifact != "" && !profile.Engine.Disabled:
			result.Errors = append(result.Errors, fmt.Sprintf("✓ Engine: native (%s)", profile.Engine.Artifact))
		case profile.Engine.Artifact != "":
			result.Errors = append(result.Errors, "✓ Engine: builtin (artifact set but disabled)")
		default:
			result.Errors = append(result.Errors, "✓ Engine: builtin")
		}
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Strategy: %s/%s depth=%d probability=%.4f",
			profile.Strategy.Kind, profile.Strategy.Heuristic, profile.Strategy.Depth, profile.Strategy.Probability))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Driver: tick %s confirm %s error %s stuck %s",
			msOrDefault(profile.Driver.TickDelayMS),
			msOrDefault(profile.Driver.ConfirmDelayMS),
			msOrDefault(profile.Driver.ErrorDelayMS),
			countOrDefault(profile.Driver.StuckThreshold)))
		if profile.Sim.Seed != 0 {
			result.Errors = append(result.Errors, fmt.Sprintf("✓ Sim: seed %d", profile.Sim.Seed))
		} else {
			result.Errors = append(result.Errors, "✓ Sim: time-seeded")
		}
	}

	return result
}

// validateArtifact checks that the native engine artifact exists and defines
// the createEngine factory the loader calls. Relative artifact paths resolve
// against the profile directory's parent, matching how the server runs from
// the repository root.
func validateArtifact(artifact, profilePath string) ValidationResult {
	result := ValidationResult{
		Valid:  true,
		Errors: []string{},
	}

	path := artifact
	if !filepath.IsAbs(path) {
		root := filepath.Dir(filepath.Dir(profilePath))
		path = filepath.Join(root, artifact)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors,
			fmt.Sprintf("Artifact %s not readable: %v", artifact, err))
		return result
	}

	if !strings.Contains(string(data), "createEngine") {
		result.Valid = false
		result.Errors = append(result.Errors,
			fmt.Sprintf("Artifact %s does not define createEngine", artifact))
		return result
	}

	result.Errors = append(result.Errors,
		fmt.Sprintf("✓ Artifact: %s (%d bytes, defines createEngine)", artifact, len(data)))
	return result
}

// msOrDefault renders a millisecond field, naming the zero case.
func msOrDefault(ms int) string {
	if ms <= 0 {
		return "default"
	}
	return fmt.Sprintf("%dms", ms)
}

// countOrDefault renders a count field, naming the zero case.
func countOrDefault(n int) string {
	if n <= 0 {
		return "default"
	}
	return fmt.Sprintf("%d", n)
}

// main scans ../configs for *.json files and validates each one, printing a
// concise report and exiting with non-zero status if any are invalid.
func main() {
	configDir := "../configs"
	if len(os.Args) > 1 {
		configDir = os.Args[1]
	}

	files, err := filepath.Glob(filepath.Join(configDir, "*.json"))
	if err != nil {
		fmt.Printf("Error finding profile files: %v\n", err)
		os.Exit(1)
	}
	if len(files) == 0 {
		fmt.Printf("No profile files found in %s\n", configDir)
		os.Exit(1)
	}

	allValid := true
	for _, file := range files {
		result := validateProfile(file)

		fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Println("✅ VALID")
			for _, info := range result.Errors {
				fmt.Println("  " + info)
			}
		} else {
			fmt.Println("❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				if !strings.HasPrefix(err, "✓") {
					fmt.Println("  ❌ " + err)
				}
			}
		}
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Println("✅ All profiles are valid!")
	} else {
		fmt.Println("❌ Some profiles have errors")
		os.Exit(1)
	}
}
