package runs

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"
)

var (
	ErrRunNotFound      = errors.New("run not found")
	ErrRunAlreadyExists = errors.New("run already exists")
	ErrInvalidRunID     = errors.New("invalid run ID")
)

// Manager is the thread-safe run-history registry. Records live in memory;
// with a Persistence attached they also survive restarts.
type Manager struct {
	records     map[string]*Record
	persistence Persistence
	logger      *zap.Logger
	mu          sync.RWMutex
}

// Option configures a Manager.
type Option func(*Manager)

// WithPersistence stores every record through p as well as in memory.
func WithPersistence(p Persistence) Option {
	return func(m *Manager) {
		m.persistence = p
	}
}

// WithLogger attaches a logger. Components default to a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// NewManager creates a run-history manager.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		records: make(map[string]*Record),
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Add stores a finished run. The record is copied, so the caller may reuse
// its value. Persistence failures are logged, never fatal: history is an
// observability aid, not game state.
func (m *Manager) Add(rec Record) error {
	if rec.ID == "" {
		return ErrInvalidRunID
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.records[rec.ID]; exists {
		return ErrRunAlreadyExists
	}
	stored := rec
	m.records[rec.ID] = &stored

	if m.persistence != nil {
		if err := m.persistence.Save(&stored); err != nil {
			m.logger.Warn("run record not persisted", zap.String("run_id", rec.ID), zap.Error(err))
		}
	}
	return nil
}

// Get retrieves a record by run ID, reading through to persistence when it
// is not in memory.
func (m *Manager) Get(id string) (*Record, error) {
	m.mu.RLock()
	rec, exists := m.records[id]
	m.mu.RUnlock()
	if exists {
		return rec, nil
	}

	if m.persistence != nil && m.persistence.Exists(id) {
		rec, err := m.persistence.Load(id)
		if err != nil {
			return nil, fmt.Errorf("failed to load persisted run: %w", err)
		}
		m.mu.Lock()
		m.records[id] = rec
		m.mu.Unlock()
		return rec, nil
	}

	return nil, ErrRunNotFound
}

// List returns all records, newest first.
func (m *Manager) List() []*Record {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*Record, 0, len(m.records))
	for _, rec := range m.records {
		result = append(result, rec)
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].StartedAt.Equal(result[j].StartedAt) {
			return result[i].StartedAt.After(result[j].StartedAt)
		}
		return result[i].ID < result[j].ID
	})
	return result
}

// Delete removes a record from memory and persistence.
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, inMemory := m.records[id]
	delete(m.records, id)

	if m.persistence != nil && m.persistence.Exists(id) {
		if err := m.persistence.Delete(id); err != nil {
			return fmt.Errorf("failed to delete persisted run: %w", err)
		}
		return nil
	}
	if !inMemory {
		return ErrRunNotFound
	}
	return nil
}

// Prune drops the oldest records so at most keep remain, returning how many
// were removed.
func (m *Manager) Prune(keep int) int {
	if keep < 0 {
		keep = 0
	}

	newest := m.List()
	if len(newest) <= keep {
		return 0
	}

	removed := 0
	for _, rec := range newest[keep:] {
		if err := m.Delete(rec.ID); err != nil {
			m.logger.Warn("prune could not delete run", zap.String("run_id", rec.ID), zap.Error(err))
			continue
		}
		removed++
	}
	return removed
}

// Count returns the number of records in memory.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}

// LoadPersisted brings every persisted record into memory. Records that fail
// to load are skipped, not fatal.
func (m *Manager) LoadPersisted() error {
	if m.persistence == nil {
		return nil
	}

	ids, err := m.persistence.ListAll()
	if err != nil {
		return fmt.Errorf("failed to list persisted runs: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	loaded := 0
	for _, id := range ids {
		if _, exists := m.records[id]; exists {
			continue
		}
		rec, err := m.persistence.Load(id)
		if err != nil {
			m.logger.Warn("persisted run unreadable", zap.String("run_id", id), zap.Error(err))
			continue
		}
		m.records[id] = rec
		loaded++
	}

	if loaded > 0 {
		m.logger.Info("run history loaded", zap.Int("records", loaded))
	}
	return nil
}
