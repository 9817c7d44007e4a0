// Package pebble provides a PebbleDB-backed keyValueDb. This is the
// recommended durable backend for production ledgers.
package pebble

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/cockroachdb/pebble"

	"github.com/meshpay/rewards/storage/keyValueDb"
)

// PebbleDB implements keyValueDb.DB on top of cockroachdb/pebble.
type PebbleDB struct {
	mu     sync.RWMutex
	db     *pebble.DB
	closed bool
}

// Open opens (creating if necessary) a pebble database at path.
func Open(path string) (*PebbleDB, error) {
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("failed to open pebble db at %s: %w", path, err)
	}
	return &PebbleDB{db: db}, nil
}

func (p *PebbleDB) Read(ctx context.Context, key []byte) ([]byte, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return nil, keyValueDb.ErrDBClosed
	}

	value, closer, err := p.db.Get(key)
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, keyValueDb.ErrKeyNotFound
	}
	if err != nil {
		return nil, err
	}
	defer closer.Close()

	// The returned slice is only valid until closer.Close.
	out := make([]byte, len(value))
	copy(out, value)
	return out, nil
}

func (p *PebbleDB) Has(ctx context.Context, key []byte) (bool, error) {
	_, err := p.Read(ctx, key)
	if errors.Is(err, keyValueDb.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (p *PebbleDB) Write(ctx context.Context, key []byte, value []byte) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return keyValueDb.ErrDBClosed
	}
	return p.db.Set(key, value, pebble.Sync)
}

func (p *PebbleDB) Delete(ctx context.Context, key []byte) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return keyValueDb.ErrDBClosed
	}
	return p.db.Delete(key, pebble.Sync)
}

func (p *PebbleDB) Batch(ctx context.Context, ops []keyValueDb.BatchOperation) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return keyValueDb.ErrDBClosed
	}

	batch := p.db.NewBatch()
	defer batch.Close()

	for _, op := range ops {
		var err error
		switch op.Type {
		case keyValueDb.BatchPut:
			err = batch.Set(op.Key, op.Value, nil)
		case keyValueDb.BatchDelete:
			err = batch.Delete(op.Key, nil)
		default:
			err = keyValueDb.ErrBatchOperationFailed
		}
		if err != nil {
			return fmt.Errorf("%w: %v", keyValueDb.ErrBatchOperationFailed, err)
		}
	}

	if err := batch.Commit(pebble.Sync); err != nil {
		return fmt.Errorf("%w: %v", keyValueDb.ErrBatchOperationFailed, err)
	}
	return nil
}

func (p *PebbleDB) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true
	return p.db.Close()
}
