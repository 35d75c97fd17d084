// Package bootstrap assembles the store and the core services from
// configuration for the binaries under cmd/.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"marketplace/internal/accounts"
	"marketplace/internal/adapter/memory"
	"marketplace/internal/adapter/repo"
	"marketplace/internal/catalog"
	"marketplace/internal/creations"
	"marketplace/internal/domain"
	"marketplace/internal/infra"
	"marketplace/internal/jobs"
	"marketplace/internal/ledger"
)

// Store is an opened storage backend.
type Store struct {
	domain.Store
	// Ping reports whether the backend is reachable; nil for in-memory stores.
	Ping  func(context.Context) error
	close func()
}

func (s *Store) Close() {
	if s != nil && s.close != nil {
		s.close()
	}
}

// OpenStore connects the configured store driver. With AutoMigrate set the
// postgres schema is brought up to date first.
func OpenStore(ctx context.Context, cfg *infra.Config, logger zerolog.Logger) (*Store, error) {
	switch cfg.StoreDriver {
	case infra.StoreDriverMemory:
		logger.Warn().Msg("using in-memory store, data is lost on restart")
		return &Store{Store: memory.New()}, nil
	case infra.StoreDriverPostgres:
		if cfg.AutoMigrate {
			if err := migrate(ctx, cfg, logger); err != nil {
				return nil, err
			}
		}
		pool, err := infra.NewDBPool(ctx, cfg)
		if err != nil {
			return nil, err
		}
		runner := infra.NewSQLRunner(pool, logger, cfg.StoreTimeout)
		return &Store{
			Store: repo.NewStore(pool, runner),
			Ping:  pool.Ping,
			close: pool.Close,
		}, nil
	default:
		return nil, fmt.Errorf("unsupported store driver %q", cfg.StoreDriver)
	}
}

func migrate(ctx context.Context, cfg *infra.Config, logger zerolog.Logger) error {
	db, err := infra.OpenSQL(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()
	return infra.Migrate(ctx, db, logger, infra.MigrateUp)
}

// Services is the wired core.
type Services struct {
	Store     *Store
	Catalog   *catalog.Catalog
	Accounts  *accounts.Service
	Ledger    *ledger.Ledger
	Creations *creations.Registry
	Jobs      *jobs.Manager
}

// New opens the store, loads the app catalog and wires the services.
func New(ctx context.Context, cfg *infra.Config, logger zerolog.Logger) (*Services, error) {
	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		return nil, err
	}
	store, err := OpenStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	l := ledger.New(store, logger)
	reg := creations.NewRegistry(store, logger)
	return &Services{
		Store:     store,
		Catalog:   cat,
		Accounts:  accounts.NewService(store, logger),
		Ledger:    l,
		Creations: reg,
		Jobs:      jobs.NewManager(store, cat, l, reg, logger),
	}, nil
}

func (s *Services) Close() {
	s.Store.Close()
}
