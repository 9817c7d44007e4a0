// Package memory provides an in-process keyValueDb backend. Used for tests
// and for ephemeral ledgers that do not need durability.
package memory

import (
	"context"
	"sync"

	"github.com/meshpay/rewards/storage/keyValueDb"
)

// MemoryDB is a map-backed keyValueDb.DB, safe for concurrent use.
type MemoryDB struct {
	mu     sync.RWMutex
	data   map[string][]byte
	closed bool
}

// NewMemoryDB returns an empty in-memory database.
func NewMemoryDB() *MemoryDB {
	return &MemoryDB{
		data: make(map[string][]byte),
	}
}

func (m *MemoryDB) Read(ctx context.Context, key []byte) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, keyValueDb.ErrDBClosed
	}

	value, ok := m.data[string(key)]
	if !ok {
		return nil, keyValueDb.ErrKeyNotFound
	}

	// Copy so callers cannot mutate the stored value.
	out := make([]byte, len(value))
	copy(out, value)
	return out, nil
}

func (m *MemoryDB) Has(ctx context.Context, key []byte) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return false, keyValueDb.ErrDBClosed
	}

	_, ok := m.data[string(key)]
	return ok, nil
}

func (m *MemoryDB) Write(ctx context.Context, key []byte, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return keyValueDb.ErrDBClosed
	}

	stored := make([]byte, len(value))
	copy(stored, value)
	m.data[string(key)] = stored
	return nil
}

func (m *MemoryDB) Delete(ctx context.Context, key []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return keyValueDb.ErrDBClosed
	}

	delete(m.data, string(key))
	return nil
}

func (m *MemoryDB) Batch(ctx context.Context, ops []keyValueDb.BatchOperation) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return keyValueDb.ErrDBClosed
	}

	// Validate every op up front so a malformed batch leaves the map untouched.
	for _, op := range ops {
		if op.Type != keyValueDb.BatchPut && op.Type != keyValueDb.BatchDelete {
			return keyValueDb.ErrBatchOperationFailed
		}
	}
	for _, op := range ops {
		switch op.Type {
		case keyValueDb.BatchPut:
			stored := make([]byte, len(op.Value))
			copy(stored, op.Value)
			m.data[string(op.Key)] = stored
		case keyValueDb.BatchDelete:
			delete(m.data, string(op.Key))
		}
	}
	return nil
}

func (m *MemoryDB) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	m.data = nil
	return nil
}
