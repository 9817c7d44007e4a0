// Package rewards assembles a fee-splitting payment ledger from
// configuration: it opens the configured storage backend and optional
// audit archive and wires them to the caller's collaborators.
//
// The ledger itself lives in core/ledger; this package is the composition
// root for hosts embedding one.
package rewards

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/meshpay/rewards/config"
	"github.com/meshpay/rewards/core/ledger"
	"github.com/meshpay/rewards/logger"
	"github.com/meshpay/rewards/storage/archive"
	"github.com/meshpay/rewards/storage/keyValueDb"
	"github.com/meshpay/rewards/storage/keyValueDb/bbolt"
	"github.com/meshpay/rewards/storage/keyValueDb/leveldb"
	"github.com/meshpay/rewards/storage/keyValueDb/memory"
	"github.com/meshpay/rewards/storage/keyValueDb/pebble"
)

// Collaborators are the host-provided capabilities the ledger depends on.
type Collaborators struct {
	Auth      ledger.Authorizer
	Transfers ledger.TransferService

	// Events is optional; nil discards events.
	Events ledger.EventSink
}

// Service is an assembled ledger plus the resources it owns.
type Service struct {
	Ledger *ledger.Ledger

	store   keyValueDb.DB
	archive *archive.Archive
	log     *slog.Logger
}

// Open builds a Service from configuration. The caller owns the returned
// Service and must Close it.
func Open(ctx context.Context, cfg *config.Config, collab Collaborators) (*Service, error) {
	if err := config.ValidateConfig(cfg); err != nil {
		return nil, err
	}

	log := logger.New(cfg.Log.Verbose)

	store, err := openStore(cfg.Database)
	if err != nil {
		return nil, err
	}

	var arc *archive.Archive
	if cfg.Archive.Enabled {
		arc, err = archive.Open(ctx, archive.Config{
			Driver:     cfg.Archive.Driver,
			Path:       cfg.Archive.Path,
			ConnString: cfg.Archive.ConnString,
		})
		if err != nil {
			store.Close()
			return nil, err
		}
	}

	opts := ledger.Options{
		Store:     store,
		Auth:      collab.Auth,
		Transfers: collab.Transfers,
		Events:    collab.Events,
		Logger:    log,
		CacheSize: cfg.Cache.Size,
	}
	if arc != nil {
		opts.Archive = arc
	}

	l, err := ledger.New(opts)
	if err != nil {
		store.Close()
		if arc != nil {
			arc.Close()
		}
		return nil, err
	}

	log.Info("ledger service opened",
		"backend", cfg.Database.Backend,
		"archive", cfg.Archive.Enabled,
	)

	return &Service{
		Ledger:  l,
		store:   store,
		archive: arc,
		log:     log,
	}, nil
}

// Close releases the storage backend and archive.
func (s *Service) Close() error {
	var errs []error
	if s.archive != nil {
		if err := s.archive.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := s.store.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func openStore(cfg config.DatabaseConfig) (keyValueDb.DB, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		return memory.NewMemoryDB(), nil
	case config.BackendPebble:
		return pebble.Open(cfg.Path)
	case config.BackendBBolt:
		return bbolt.Open(cfg.Path, "ledger")
	case config.BackendLevelDB:
		return leveldb.Open(cfg.Path)
	default:
		return nil, fmt.Errorf("%w: %q", config.ErrUnknownBackend, cfg.Backend)
	}
}
