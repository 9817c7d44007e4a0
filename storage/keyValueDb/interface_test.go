package keyValueDb_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/meshpay/rewards/storage/keyValueDb"
	"github.com/meshpay/rewards/storage/keyValueDb/bbolt"
	"github.com/meshpay/rewards/storage/keyValueDb/leveldb"
	"github.com/meshpay/rewards/storage/keyValueDb/memory"
	"github.com/meshpay/rewards/storage/keyValueDb/pebble"
)

// conformance runs the shared contract suite against one backend.
func conformance(t *testing.T, db keyValueDb.DB) {
	ctx := context.Background()

	t.Run("ReadMissing", func(t *testing.T) {
		if _, err := db.Read(ctx, []byte("missing")); err != keyValueDb.ErrKeyNotFound {
			t.Fatalf("expected ErrKeyNotFound, got %v", err)
		}
	})

	t.Run("WriteRead", func(t *testing.T) {
		if err := db.Write(ctx, []byte("k1"), []byte("v1")); err != nil {
			t.Fatalf("write failed: %v", err)
		}

		value, err := db.Read(ctx, []byte("k1"))
		if err != nil {
			t.Fatalf("read failed: %v", err)
		}
		if string(value) != "v1" {
			t.Errorf("expected v1, got %q", value)
		}
	})

	t.Run("Has", func(t *testing.T) {
		ok, err := db.Has(ctx, []byte("k1"))
		if err != nil {
			t.Fatalf("has failed: %v", err)
		}
		if !ok {
			t.Error("expected k1 to exist")
		}

		ok, err = db.Has(ctx, []byte("nope"))
		if err != nil {
			t.Fatalf("has failed: %v", err)
		}
		if ok {
			t.Error("expected nope to be absent")
		}
	})

	t.Run("Overwrite", func(t *testing.T) {
		if err := db.Write(ctx, []byte("k1"), []byte("v2")); err != nil {
			t.Fatalf("overwrite failed: %v", err)
		}
		value, err := db.Read(ctx, []byte("k1"))
		if err != nil {
			t.Fatalf("read failed: %v", err)
		}
		if string(value) != "v2" {
			t.Errorf("expected v2, got %q", value)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		if err := db.Delete(ctx, []byte("k1")); err != nil {
			t.Fatalf("delete failed: %v", err)
		}
		if _, err := db.Read(ctx, []byte("k1")); err != keyValueDb.ErrKeyNotFound {
			t.Fatalf("expected ErrKeyNotFound after delete, got %v", err)
		}

		// Deleting a missing key is not an error.
		if err := db.Delete(ctx, []byte("k1")); err != nil {
			t.Errorf("delete of missing key failed: %v", err)
		}
	})

	t.Run("Batch", func(t *testing.T) {
		ops := []keyValueDb.BatchOperation{
			keyValueDb.Put([]byte("a"), []byte("1")),
			keyValueDb.Put([]byte("b"), []byte("2")),
			{Type: keyValueDb.BatchDelete, Key: []byte("a")},
		}
		if err := db.Batch(ctx, ops); err != nil {
			t.Fatalf("batch failed: %v", err)
		}

		if _, err := db.Read(ctx, []byte("a")); err != keyValueDb.ErrKeyNotFound {
			t.Errorf("expected a to be deleted, got %v", err)
		}
		value, err := db.Read(ctx, []byte("b"))
		if err != nil || string(value) != "2" {
			t.Errorf("expected b=2, got %q, %v", value, err)
		}
	})

	t.Run("Closed", func(t *testing.T) {
		if err := db.Close(); err != nil {
			t.Fatalf("close failed: %v", err)
		}
		if _, err := db.Read(ctx, []byte("b")); err != keyValueDb.ErrDBClosed {
			t.Errorf("expected ErrDBClosed, got %v", err)
		}
		if err := db.Write(ctx, []byte("b"), nil); err != keyValueDb.ErrDBClosed {
			t.Errorf("expected ErrDBClosed, got %v", err)
		}
	})
}

func TestMemoryConformance(t *testing.T) {
	conformance(t, memory.NewMemoryDB())
}

func TestPebbleConformance(t *testing.T) {
	db, err := pebble.Open(filepath.Join(t.TempDir(), "pebble"))
	if err != nil {
		t.Fatalf("failed to open pebble: %v", err)
	}
	conformance(t, db)
}

func TestBBoltConformance(t *testing.T) {
	db, err := bbolt.Open(filepath.Join(t.TempDir(), "bolt.db"), "ledger")
	if err != nil {
		t.Fatalf("failed to open bbolt: %v", err)
	}
	conformance(t, db)
}

func TestLevelDBConformance(t *testing.T) {
	db, err := leveldb.Open(filepath.Join(t.TempDir(), "leveldb"))
	if err != nil {
		t.Fatalf("failed to open leveldb: %v", err)
	}
	conformance(t, db)
}
