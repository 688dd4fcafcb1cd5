package store

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory submission store. It is the default
// store and suitable for development and single-server deployments;
// for durability use RedisStore.
//
// Each form keeps a bounded ring of recent submissions: once the
// capacity is reached, the oldest submission is dropped.
type MemoryStore struct {
	mu       sync.RWMutex
	byForm   map[string][]Submission
	capacity int
	closed   bool
}

// MemoryStoreOption configures MemoryStore behavior.
type MemoryStoreOption func(*memoryStoreConfig)

type memoryStoreConfig struct {
	capacity int
}

// WithCapacity sets how many submissions are retained per form.
// Default: 256.
func WithCapacity(n int) MemoryStoreOption {
	return func(c *memoryStoreConfig) {
		c.capacity = n
	}
}

// NewMemoryStore creates a new in-memory submission store.
func NewMemoryStore(opts ...MemoryStoreOption) *MemoryStore {
	cfg := &memoryStoreConfig{
		capacity: 256,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.capacity < 1 {
		cfg.capacity = 1
	}

	return &MemoryStore{
		byForm:   make(map[string][]Submission),
		capacity: cfg.capacity,
	}
}

// Save appends the submission to its form's ring.
func (m *MemoryStore) Save(ctx context.Context, sub Submission) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}

	ring := append(m.byForm[sub.Form], sub)
	if len(ring) > m.capacity {
		ring = ring[len(ring)-m.capacity:]
	}
	m.byForm[sub.Form] = ring
	return nil
}

// List returns the form's retained submissions, newest first.
func (m *MemoryStore) List(ctx context.Context, formName string, limit int) ([]Submission, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrClosed
	}

	ring := m.byForm[formName]
	n := len(ring)
	if limit > 0 && limit < n {
		n = limit
	}

	out := make([]Submission, 0, n)
	for i := len(ring) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, ring[i])
	}
	return out, nil
}

// Close shuts down the store. Further operations return ErrClosed.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil
	}
	m.closed = true
	m.byForm = nil
	return nil
}

// Count returns the number of retained submissions for a form.
// This is for monitoring/testing purposes.
func (m *MemoryStore) Count(formName string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.byForm[formName])
}

// Compile-time interface check
var _ Store = (*MemoryStore)(nil)
