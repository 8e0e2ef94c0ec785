package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeProfile writes content under the given file name in a fresh configs
// directory and returns the file path. The validator matches profile names
// against file names, so tests control both.
func writeProfile(t *testing.T, name, content string) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "configs")
	if err := os.Mkdir(dir, 0755); err != nil {
		t.Fatalf("Failed to create configs dir: %v", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write profile: %v", err)
	}
	return path
}

func TestValidateProfile_ValidProfile(t *testing.T) {
	validProfile := `{
		"name": "test",
		"description": "Test profile",
		"engine": {
			"disabled": true
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
			"error_delay_ms": 1500,
			"stuck_threshold": 5
		},
		"sim": {
			"seed": 1
		}
	}`

	path := writeProfile(t, "test.json", validProfile)

	result := validateProfile(path)
	if !result.Valid {
		t.Errorf("Expected valid profile, but got errors: %v", result.Errors)
	}

	if result.File != "test.json" {
		t.Errorf("Expected file name test.json, got %s", result.File)
	}
}

func TestValidateProfile_InvalidJSON(t *testing.T) {
	path := writeProfile(t, "test.json", `{"name": "test", invalid json}`)

	result := validateProfile(path)
	if result.Valid {
		t.Error("Expected invalid profile due to bad JSON")
	}

	found := false
	for _, err := range result.Errors {
		if contains(err, "Invalid JSON") {
			found = true
			break
		}
	}
	if !found {
		t.Error("Expected 'Invalid JSON' error")
	}
}

func TestValidateProfile_MissingFile(t *testing.T) {
	result := validateProfile("/non/existent/file.json")
	if result.Valid {
		t.Error("Expected invalid result for missing file")
	}

	found := false
	for _, err := range result.Errors {
		if contains(err, "Failed to read file") {
			found = true
			break
		}
	}
	if !found {
		t.Error("Expected 'Failed to read file' error")
	}
}

func TestValidateProfile_UnknownField(t *testing.T) {
	// A typo like "tick_delay" instead of "tick_delay_ms" must not pass.
	profile := `{
		"name": "test",
		"engine": {"disabled": true},
		"strategy": {"kind": "expectimax", "heuristic": "corner", "depth": 3, "probability": 0.0025},
		"driver": {"tick_delay": 150},
		"sim": {}
	}`

	path := writeProfile(t, "test.json", profile)

	result := validateProfile(path)
	if result.Valid {
		t.Error("Expected invalid profile due to unknown field")
	}

	found := false
	for _, err := range result.Errors {
		if contains(err, "unknown field") {
			found = true
			break
		}
	}
	if !found {
		t.Errorf("Expected 'unknown field' error, got %v", result.Errors)
	}
}

func TestValidateProfile_NameMismatch(t *testing.T) {
	profile := `{
		"name": "turbo",
		"engine": {"disabled": true},
		"strategy": {"kind": "expectimax", "heuristic": "corner", "depth": 3, "probability": 0.0025},
		"driver": {},
		"sim": {}
	}`

	path := writeProfile(t, "blitz.json", profile)

	result := validateProfile(path)
	if result.Valid {
		t.Error("Expected invalid profile due to name mismatch")
	}

	found := false
	for _, err := range result.Errors {
		if contains(err, "does not match file name") {
			found = true
			break
		}
	}
	if !found {
		t.Errorf("Expected name mismatch error, got %v", result.Errors)
	}
}

func TestValidateProfile_StrategyOutOfBounds(t *testing.T) {
	profile := `{
		"name": "test",
		"engine": {"disabled": true},
		"strategy": {"kind": "expectimax", "heuristic": "corner", "depth": 12, "probability": 0.5},
		"driver": {},
		"sim": {}
	}`

	path := writeProfile(t, "test.json", profile)

	result := validateProfile(path)
	if result.Valid {
		t.Error("Expected invalid profile due to strategy bounds")
	}

	foundDepth, foundProbability := false, false
	for _, err := range result.Errors {
		if contains(err, "outside [1, 8]") {
			foundDepth = true
		}
		if contains(err, "outside [0.0001, 0.2]") {
			foundProbability = true
		}
	}
	if !foundDepth {
		t.Errorf("Expected depth bounds error, got %v", result.Errors)
	}
	if !foundProbability {
		t.Errorf("Expected probability bounds error, got %v", result.Errors)
	}
}

func TestValidateProfile_EmptyStrategyNames(t *testing.T) {
	profile := `{
		"name": "test",
		"engine": {"disabled": true},
		"strategy": {"depth": 3, "probability": 0.0025},
		"driver": {},
		"sim": {}
	}`

	path := writeProfile(t, "test.json", profile)

	result := validateProfile(path)
	if result.Valid {
		t.Error("Expected invalid profile due to empty strategy names")
	}

	found := 0
	for _, err := range result.Errors {
		if contains(err, "would silently default") {
			found++
		}
	}
	if found != 2 {
		t.Errorf("Expected kind and heuristic errors, got %v", result.Errors)
	}
}

func TestValidateProfile_NegativeTiming(t *testing.T) {
	profile := `{
		"name": "test",
		"engine": {"disabled": true},
		"strategy": {"kind": "expectimax", "heuristic": "corner", "depth": 3, "probability": 0.0025},
		"driver": {"tick_delay_ms": -5, "stuck_threshold": -1},
		"sim": {}
	}`

	path := writeProfile(t, "test.json", profile)

	result := validateProfile(path)
	if result.Valid {
		t.Error("Expected invalid profile due to negative timing")
	}

	foundTick, foundStuck := false, false
	for _, err := range result.Errors {
		if contains(err, "tick_delay_ms must not be negative") {
			foundTick = true
		}
		if contains(err, "stuck_threshold must not be negative") {
			foundStuck = true
		}
	}
	if !foundTick || !foundStuck {
		t.Errorf("Expected negative timing errors, got %v", result.Errors)
	}
}

func TestValidateProfile_BadFailureRate(t *testing.T) {
	profile := `{
		"name": "test",
		"engine": {"disabled": true},
		"strategy": {"kind": "expectimax", "heuristic": "corner", "depth": 3, "probability": 0.0025},
		"driver": {},
		"sim": {"move_failure_rate": 1.5}
	}`

	path := writeProfile(t, "test.json", profile)

	result := validateProfile(path)
	if result.Valid {
		t.Error("Expected invalid profile due to move failure rate")
	}

	found := false
	for _, err := range result.Errors {
		if contains(err, "move_failure_rate") {
			found = true
			break
		}
	}
	if !found {
		t.Errorf("Expected move_failure_rate error, got %v", result.Errors)
	}
}

func TestValidateProfile_ArtifactChecked(t *testing.T) {
	// A native profile whose artifact is missing must fail validation.
	profile := `{
		"name": "native",
		"engine": {"artifact": "engines/missing.js"},
		"strategy": {"kind": "expectimax", "heuristic": "corner", "depth": 3, "probability": 0.0025},
		"driver": {},
		"sim": {}
	}`

	path := writeProfile(t, "native.json", profile)

	result := validateProfile(path)
	if result.Valid {
		t.Error("Expected invalid profile due to missing artifact")
	}

	found := false
	for _, err := range result.Errors {
		if contains(err, "not readable") {
			found = true
			break
		}
	}
	if !found {
		t.Errorf("Expected artifact error, got %v", result.Errors)
	}
}

func TestValidateArtifact_Valid(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "engines"), 0755); err != nil {
		t.Fatalf("Failed to create engines dir: %v", err)
	}
	if err := os.MkdirAll(filepath.Join(root, "configs"), 0755); err != nil {
		t.Fatalf("Failed to create configs dir: %v", err)
	}

	artifact := filepath.Join(root, "engines", "expectimax.js")
	if err := os.WriteFile(artifact, []byte("function createEngine() { return {}; }"), 0644); err != nil {
		t.Fatalf("Failed to write artifact: %v", err)
	}

	profilePath := filepath.Join(root, "configs", "native.json")
	result := validateArtifact("engines/expectimax.js", profilePath)
	if !result.Valid {
		t.Errorf("Expected valid artifact, got errors: %v", result.Errors)
	}
}

func TestValidateArtifact_NoFactory(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "engines"), 0755); err != nil {
		t.Fatalf("Failed to create engines dir: %v", err)
	}

	artifact := filepath.Join(root, "engines", "broken.js")
	if err := os.WriteFile(artifact, []byte("var x = 1;"), 0644); err != nil {
		t.Fatalf("Failed to write artifact: %v", err)
	}

	profilePath := filepath.Join(root, "configs", "native.json")
	result := validateArtifact("engines/broken.js", profilePath)
	if result.Valid {
		t.Error("Expected invalid artifact without createEngine")
	}

	found := false
	for _, err := range result.Errors {
		if contains(err, "does not define createEngine") {
			found = true
			break
		}
	}
	if !found {
		t.Errorf("Expected createEngine error, got %v", result.Errors)
	}
}

func TestValidateArtifact_AbsolutePath(t *testing.T) {
	dir := t.TempDir()
	artifact := filepath.Join(dir, "engine.js")
	if err := os.WriteFile(artifact, []byte("function createEngine() {}"), 0644); err != nil {
		t.Fatalf("Failed to write artifact: %v", err)
	}

	result := validateArtifact(artifact, "/anywhere/configs/p.json")
	if !result.Valid {
		t.Errorf("Expected valid absolute artifact, got errors: %v", result.Errors)
	}
}

// contains reports whether substr occurs in s.
func contains(s, substr string) bool {
	return strings.Contains(s, substr)
}
