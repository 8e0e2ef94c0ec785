package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestAnalysisProfileParsing(t *testing.T) {
	raw := `{
		"name": "test",
		"description": "Test profile",
		"engine": {
			"artifact": "engines/expectimax.js",
			"load_timeout_ms": 10000
		},
		"strategy": {
			"kind": "expectimax",
			"heuristic": "corner",
			"depth": 3,
			"probability": 0.0025
		},
		"driver": {
			"tick_delay_ms": 150,
			"confirm_delay_ms": 120,
			"stuck_threshold": 5
		},
		"sim": {
			"seed": 7
		}
	}`

	var profile analysisProfile
	if err := json.Unmarshal([]byte(raw), &profile); err != nil {
		t.Fatalf("Failed to parse profile: %v", err)
	}

	if profile.Name != "test" {
		t.Errorf("Expected name 'test', got '%s'", profile.Name)
	}
	if profile.Engine.Artifact != "engines/expectimax.js" {
		t.Errorf("Expected artifact path, got '%s'", profile.Engine.Artifact)
	}
	if profile.Strategy.Depth != 3 {
		t.Errorf("Expected depth 3, got %d", profile.Strategy.Depth)
	}
	if profile.Driver.TickDelayMS != 150 {
		t.Errorf("Expected tick delay 150, got %d", profile.Driver.TickDelayMS)
	}
	if profile.Sim.Seed != 7 {
		t.Errorf("Expected seed 7, got %d", profile.Sim.Seed)
	}
}

func TestEffectiveDelay(t *testing.T) {
	tests := []struct {
		ms       int
		fallback time.Duration
		expected time.Duration
	}{
		{150, time.Second, 150 * time.Millisecond},
		{0, time.Second, time.Second},
		{-5, time.Second, time.Second},
		{1, 120 * time.Millisecond, time.Millisecond},
	}

	for _, test := range tests {
		result := effectiveDelay(test.ms, test.fallback)
		if result != test.expected {
			t.Errorf("effectiveDelay(%d, %s) = %s, expected %s",
				test.ms, test.fallback, result, test.expected)
		}
	}
}

func TestThroughputCeiling(t *testing.T) {
	// 150ms tick + 100ms confirm = 4 moves per second.
	got := throughputCeiling(150*time.Millisecond, 100*time.Millisecond)
	if got != 4 {
		t.Errorf("Expected 4 moves/s, got %f", got)
	}

	if got := throughputCeiling(0, 0); got != 0 {
		t.Errorf("Expected 0 for zero cycle, got %f", got)
	}
}

func TestRecoveryLatency(t *testing.T) {
	got := recoveryLatency(5, 150*time.Millisecond, 120*time.Millisecond)
	expected := 1350 * time.Millisecond
	if got != expected {
		t.Errorf("Expected %s, got %s", expected, got)
	}
}

func TestTimingWarnings_Clean(t *testing.T) {
	var profile analysisProfile
	profile.Engine.Disabled = true
	profile.Strategy.Depth = 3

	warnings := timingWarnings(profile, 150*time.Millisecond, 120*time.Millisecond, 5)
	if len(warnings) != 0 {
		t.Errorf("Expected no warnings, got %v", warnings)
	}
}

func TestTimingWarnings_StarvedNative(t *testing.T) {
	var profile analysisProfile
	profile.Engine.Artifact = "engines/expectimax.js"
	profile.Strategy.Depth = 6

	warnings := timingWarnings(profile, 20*time.Millisecond, 10*time.Millisecond, 5)
	if len(warnings) < 3 {
		t.Errorf("Expected tick, confirm, and depth warnings, got %v", warnings)
	}
}

func TestTimingWarnings_SlowRecovery(t *testing.T) {
	var profile analysisProfile
	profile.Engine.Disabled = true

	warnings := timingWarnings(profile, 400*time.Millisecond, 300*time.Millisecond, 10)
	if len(warnings) != 1 {
		t.Fatalf("Expected one warning, got %v", warnings)
	}
}

func TestAnalyzeProfile_ValidFile(t *testing.T) {
	validProfile := `{
		"name": "test",
		"description": "Test profile",
		"engine": {"disabled": true},
		"strategy": {"kind": "expectimax", "heuristic": "corner", "depth": 2, "probability": 0.01},
		"driver": {"tick_delay_ms": 100, "confirm_delay_ms": 80, "stuck_threshold": 4},
		"sim": {}
	}`

	tmpfile, err := os.CreateTemp("", "test_profile_*.json")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	defer os.Remove(tmpfile.Name())

	if _, err := tmpfile.Write([]byte(validProfile)); err != nil {
		t.Fatalf("Failed to write profile: %v", err)
	}
	tmpfile.Close()

	// Test that analyzeProfile doesn't panic
	defer func() {
		if r := recover(); r != nil {
			t.Errorf("analyzeProfile panicked: %v", r)
		}
	}()

	analyzeProfile(tmpfile.Name())
}

func TestAnalyzeProfile_InvalidFile(t *testing.T) {
	// Test with non-existent file
	defer func() {
		if r := recover(); r != nil {
			t.Errorf("analyzeProfile panicked with invalid file: %v", r)
		}
	}()

	analyzeProfile("/non/existent/file.json")
}

func TestAnalyzeProfile_InvalidJSON(t *testing.T) {
	invalidJSON := `{"name": "test", invalid json}`

	tmpfile, err := os.CreateTemp("", "test_profile_*.json")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	defer os.Remove(tmpfile.Name())

	if _, err := tmpfile.Write([]byte(invalidJSON)); err != nil {
		t.Fatalf("Failed to write profile: %v", err)
	}
	tmpfile.Close()

	// Test that analyzeProfile doesn't panic with invalid JSON
	defer func() {
		if r := recover(); r != nil {
			t.Errorf("analyzeProfile panicked with invalid JSON: %v", r)
		}
	}()

	analyzeProfile(tmpfile.Name())
}

func TestAnalyzeProfile_MissingArtifact(t *testing.T) {
	// The artifact path points nowhere; analysis must flag it, not fail.
	dir := t.TempDir()
	profile := `{
		"name": "native",
		"engine": {"artifact": "` + filepath.Join(dir, "missing.js") + `"},
		"strategy": {"kind": "expectimax", "heuristic": "corner", "depth": 3, "probability": 0.0025},
		"driver": {"tick_delay_ms": 150, "confirm_delay_ms": 120, "stuck_threshold": 5},
		"sim": {}
	}`

	path := filepath.Join(dir, "native.json")
	if err := os.WriteFile(path, []byte(profile), 0644); err != nil {
		t.Fatalf("Failed to write profile: %v", err)
	}

	defer func() {
		if r := recover(); r != nil {
			t.Errorf("analyzeProfile panicked with missing artifact: %v", r)
		}
	}()

	analyzeProfile(path)
}

func TestCheckArtifact(t *testing.T) {
	dir := t.TempDir()

	// An artifact with the factory.
	good := filepath.Join(dir, "good.js")
	if err := os.WriteFile(good, []byte("function createEngine() { return {}; }"), 0644); err != nil {
		t.Fatalf("Failed to write artifact: %v", err)
	}

	// An artifact without it.
	bad := filepath.Join(dir, "bad.js")
	if err := os.WriteFile(bad, []byte("var x = 1;"), 0644); err != nil {
		t.Fatalf("Failed to write artifact: %v", err)
	}

	defer func() {
		if r := recover(); r != nil {
			t.Errorf("checkArtifact panicked: %v", r)
		}
	}()

	checkArtifact(good)
	checkArtifact(bad)
	checkArtifact(filepath.Join(dir, "missing.js"))
}
