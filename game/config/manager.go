package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/wricardo/autopilot2048/game/engine"
)

var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrInvalidProfile  = errors.New("invalid profile")
)

// Manager handles bot profile loading and caching.
type Manager struct {
	profileDir     string
	defaultProfile *Profile
	profiles       map[string]*Profile
	mu             sync.RWMutex
}

// NewManager creates a profile manager over a directory of JSON profiles.
// A missing directory is not an error: the manager serves the embedded
// default profile until files appear.
func NewManager(profileDir string) (*Manager, error) {
	if _, err := os.Stat(profileDir); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("profile directory unusable: %w", err)
	}

	m := &Manager{
		profileDir: profileDir,
		profiles:   make(map[string]*Profile),
	}
	m.loadDefaultProfile()
	return m, nil
}

// Load returns a profile by name, reading and caching it on first use.
func (m *Manager) Load(name string) (*Profile, error) {
	m.mu.RLock()
	if p, exists := m.profiles[name]; exists {
		m.mu.RUnlock()
		return p, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring the write lock.
	if p, exists := m.profiles[name]; exists {
		return p, nil
	}

	filename := name
	if !strings.HasSuffix(filename, ".json") {
		filename = name + ".json"
	}
	path := filepath.Join(m.profileDir, filename)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrProfileNotFound, name)
		}
		return nil, fmt.Errorf("failed to read profile file: %w", err)
	}

	var p Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidProfile, err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	p.normalize()

	m.profiles[name] = &p
	return &p, nil
}

// ProfileInfo summarizes one profile for listings.
type ProfileInfo struct {
	Filename    string `json:"filename"`
	ProfileID   string `json:"profile_id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Engine      string `json:"engine"`
	Depth       int    `json:"depth"`
}

// List returns information about every loadable profile in the directory.
// Invalid files are skipped, not fatal. A missing directory lists nothing.
func (m *Manager) List() ([]*ProfileInfo, error) {
	entries, err := os.ReadDir(m.profileDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read profile directory: %w", err)
	}

	var infos []*ProfileInfo
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		id := strings.TrimSuffix(entry.Name(), ".json")
		p, err := m.Load(id)
		if err != nil {
			continue
		}
		infos = append(infos, &ProfileInfo{
			Filename:    entry.Name(),
			ProfileID:   id,
			Name:        p.Name,
			Description: p.Description,
			Engine:      p.EngineMode(),
			Depth:       p.Strategy.Depth,
		})
	}
	return infos, nil
}

// GetDefault returns the default profile. It is never nil.
func (m *Manager) GetDefault() *Profile {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultProfile
}

// SetDefault switches the default profile by name.
func (m *Manager) SetDefault(name string) error {
	p, err := m.Load(name)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultProfile = p
	return nil
}

// Save validates and writes a profile to disk, updating the cache.
func (m *Manager) Save(name string, p *Profile) error {
	if err := p.Validate(); err != nil {
		return err
	}
	p.normalize()

	filename := name
	if !strings.HasSuffix(filename, ".json") {
		filename = name + ".json"
	}
	path := filepath.Join(m.profileDir, filename)

	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal profile: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write profile file: %w", err)
	}

	m.mu.Lock()
	m.profiles[name] = p
	m.mu.Unlock()
	return nil
}

// RefreshCache drops all cached profiles and re-resolves the default.
func (m *Manager) RefreshCache() {
	m.mu.Lock()
	m.profiles = make(map[string]*Profile)
	m.mu.Unlock()
	m.loadDefaultProfile()
}

// loadDefaultProfile resolves the default: the "default" file, else the
// first loadable profile, else the embedded minimal one.
func (m *Manager) loadDefaultProfile() {
	p, err := m.Load("default")
	if err != nil {
		infos, listErr := m.List()
		if listErr == nil && len(infos) > 0 {
			p, err = m.Load(infos[0].ProfileID)
		}
		if p == nil || err != nil {
			p = createDefaultProfile()
		}
	}
	m.mu.Lock()
	m.defaultProfile = p
	m.mu.Unlock()
}

// createDefaultProfile is the embedded fallback used when no profile files
// exist: builtin engine, stock timing.
func createDefaultProfile() *Profile {
	return &Profile{
		Name:        "default",
		Description: "Built-in heuristic with stock timing",
		Strategy:    engine.DefaultStrategy(),
	}
}
