// Package leveldb provides a goleveldb-backed keyValueDb. Kept for
// deployments that already operate LevelDB tooling; pebble is the
// recommended durable backend otherwise.
package leveldb

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/syndtr/goleveldb/leveldb"

	"github.com/meshpay/rewards/storage/keyValueDb"
)

// LevelDB implements keyValueDb.DB on top of syndtr/goleveldb.
type LevelDB struct {
	mu     sync.RWMutex
	db     *leveldb.DB
	closed bool
}

// Open opens (creating if necessary) a leveldb database at path.
func Open(path string) (*LevelDB, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open leveldb at %s: %w", path, err)
	}
	return &LevelDB{db: db}, nil
}

func (l *LevelDB) Read(ctx context.Context, key []byte) ([]byte, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.closed {
		return nil, keyValueDb.ErrDBClosed
	}

	value, err := l.db.Get(key, nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, keyValueDb.ErrKeyNotFound
	}
	if err != nil {
		return nil, err
	}
	return value, nil
}

func (l *LevelDB) Has(ctx context.Context, key []byte) (bool, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.closed {
		return false, keyValueDb.ErrDBClosed
	}
	return l.db.Has(key, nil)
}

func (l *LevelDB) Write(ctx context.Context, key []byte, value []byte) error {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.closed {
		return keyValueDb.ErrDBClosed
	}
	return l.db.Put(key, value, nil)
}

func (l *LevelDB) Delete(ctx context.Context, key []byte) error {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.closed {
		return keyValueDb.ErrDBClosed
	}
	return l.db.Delete(key, nil)
}

func (l *LevelDB) Batch(ctx context.Context, ops []keyValueDb.BatchOperation) error {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.closed {
		return keyValueDb.ErrDBClosed
	}

	batch := new(leveldb.Batch)
	for _, op := range ops {
		switch op.Type {
		case keyValueDb.BatchPut:
			batch.Put(op.Key, op.Value)
		case keyValueDb.BatchDelete:
			batch.Delete(op.Key)
		default:
			return keyValueDb.ErrBatchOperationFailed
		}
	}

	if err := l.db.Write(batch, nil); err != nil {
		return fmt.Errorf("%w: %v", keyValueDb.ErrBatchOperationFailed, err)
	}
	return nil
}

func (l *LevelDB) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil
	}
	l.closed = true
	return l.db.Close()
}
