// Package keyValueDb defines the durable keyed-store contract the payment
// ledger persists its state through. The ledger only ever touches a small
// fixed key set, so the contract is deliberately narrow: point reads and
// writes plus atomic batches. No iteration or range queries.
package keyValueDb

import (
	"context"
)

// DB defines the basic operations any keyValueDb implementation must support
type DB interface {
	// Read returns the value stored under key, or ErrKeyNotFound.
	Read(ctx context.Context, key []byte) ([]byte, error)

	// Has reports whether key exists without reading its value.
	Has(ctx context.Context, key []byte) (bool, error)

	// Write stores value under key, replacing any previous value.
	Write(ctx context.Context, key []byte, value []byte) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key []byte) error

	// Batch applies all operations atomically: either every operation
	// takes effect or none does.
	Batch(ctx context.Context, ops []BatchOperation) error

	// Close releases the backing resources. The DB must not be used
	// after Close returns.
	Close() error
}

// BatchOperation represents a single operation in a batch
type BatchOperation struct {
	Type  BatchOpType
	Key   []byte
	Value []byte
}

type BatchOpType int

const (
	BatchPut BatchOpType = iota
	BatchDelete
)

// Put returns a BatchPut operation for key/value.
func Put(key, value []byte) BatchOperation {
	return BatchOperation{Type: BatchPut, Key: key, Value: value}
}
