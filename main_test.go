package main

import (
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
)

func TestConstants(t *testing.T) {
	if Version == "" {
		t.Error("Version should not be empty")
	}
	if AppName == "" {
		t.Error("AppName should not be empty")
	}

	expectedVersion := "1.0.0"
	if Version != expectedVersion {
		t.Errorf("Expected version %s, got %s", expectedVersion, Version)
	}

	expectedAppName := "2048 Autopilot"
	if AppName != expectedAppName {
		t.Errorf("Expected app name %s, got %s", expectedAppName, AppName)
	}
}

func TestFlagDefaults(t *testing.T) {
	// Test that flags have reasonable defaults
	if *port <= 0 || *port > 65535 {
		t.Errorf("Invalid default port: %d", *port)
	}

	if *host == "" {
		t.Error("Host should have a default value")
	}

	if *configDir == "" {
		t.Error("Config directory should have a default value")
	}

	if *runsDir == "" {
		t.Error("Runs directory should have a default value")
	}

	if *keepRuns <= 0 {
		t.Errorf("Invalid default keep-runs: %d", *keepRuns)
	}
}

func TestGetRunsDirDefault(t *testing.T) {
	t.Setenv("RUNS_DIR", "/tmp/run-history")
	if got := getRunsDirDefault(); got != "/tmp/run-history" {
		t.Errorf("Expected /tmp/run-history, got %s", got)
	}

	t.Setenv("RUNS_DIR", "")
	if got := getRunsDirDefault(); got != "runs" {
		t.Errorf("Expected runs, got %s", got)
	}
}

func TestInitializeServices(t *testing.T) {
	originalConfigDir := *configDir
	*configDir = "configs"
	defer func() { *configDir = originalConfigDir }()

	originalRunsDir := *runsDir
	*runsDir = t.TempDir()
	defer func() { *runsDir = originalRunsDir }()

	// Create config directory if it doesn't exist for test
	if _, err := os.Stat("configs"); os.IsNotExist(err) {
		t.Skip("Skipping test - configs directory not found")
	}

	bot, err := initializeServices(zap.NewNop())
	if err != nil {
		t.Fatalf("Failed to initialize services: %v", err)
	}
	defer bot.driver.Destroy()

	if bot.service == nil {
		t.Fatal("Expected bot service to be initialized")
	}
	if bot.profile.Name != "default" {
		t.Errorf("Expected default profile, got %s", bot.profile.Name)
	}
}

func TestInitializeServices_UnknownProfile(t *testing.T) {
	originalConfigDir := *configDir
	*configDir = "configs"
	defer func() { *configDir = originalConfigDir }()

	originalProfile := *profileName
	*profileName = "no-such-profile"
	defer func() { *profileName = originalProfile }()

	originalRunsDir := *runsDir
	*runsDir = t.TempDir()
	defer func() { *runsDir = originalRunsDir }()

	_, err := initializeServices(zap.NewNop())
	if err == nil {
		t.Error("Expected error for unknown profile")
	}
}

func TestInitializeServices_BadRunsDir(t *testing.T) {
	originalConfigDir := *configDir
	*configDir = "configs"
	defer func() { *configDir = originalConfigDir }()

	// A path under a regular file cannot be created as a directory.
	blocker := filepath.Join(t.TempDir(), "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatalf("Failed to create blocker file: %v", err)
	}

	originalRunsDir := *runsDir
	*runsDir = filepath.Join(blocker, "runs")
	defer func() { *runsDir = originalRunsDir }()

	_, err := initializeServices(zap.NewNop())
	if err == nil {
		t.Error("Expected error for unusable runs directory")
	}
}

// Note: We can't easily test main(), runHTTPServer(), or runStdioMCP()
// without significant mocking or refactoring, as they start servers and block.
// These functions would be better tested in integration tests that start actual
// servers and test their endpoints.
