package server

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/joseph-ayodele/contracts-checker/internal/common"
	"github.com/joseph-ayodele/contracts-checker/internal/registry"
	repo "github.com/joseph-ayodele/contracts-checker/internal/repository"
)

// LoadRegistry reads the forms registry from the configured source. An empty
// driver yields an empty registry, which turns the version rules off.
func LoadRegistry(ctx context.Context, cfg common.RegistryConfig, logger *slog.Logger) (registry.Registry, error) {
	if logger == nil {
		logger = slog.Default()
	}
	switch cfg.Driver {
	case "":
		logger.Warn("no forms registry configured; version checks are disabled")
		return registry.Registry{}, nil
	case "xlsx":
		reg, err := registry.LoadWorkbook(cfg.Source, cfg.Sheet)
		if err != nil {
			return nil, common.NewAppError(common.CodeConfig, "load registry workbook", fmt.Errorf("%w: %v", common.ErrConfiguration, err))
		}
		logger.Info("forms registry loaded", "source", cfg.Source, "forms", len(reg))
		return reg, nil
	case "postgres", "sqlite":
		db, err := ConnectDB(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		defer db.Close(logger)
		return repo.NewFormsRegistryRepository(db, logger).Load(ctx)
	default:
		return nil, common.NewAppError(common.CodeConfig, "unknown registry driver "+cfg.Driver, common.ErrConfiguration)
	}
}

// ConnectDB opens the registry database described by cfg.
func ConnectDB(ctx context.Context, cfg common.RegistryConfig, logger *slog.Logger) (*repo.DB, error) {
	db, err := repo.Open(ctx, repo.Config{
		Driver:           cfg.Driver,
		DSN:              cfg.Source,
		MaxConns:         cfg.MaxConns,
		MinConns:         cfg.MinConns,
		MaxConnLifetime:  cfg.MaxConnLifetime,
		MaxConnIdleTime:  cfg.MaxConnIdleTime,
		DialTimeout:      cfg.DialTimeout,
		StatementTimeout: cfg.StatementTimeout,
	}, logger)
	if err != nil {
		return nil, common.NewAppError(common.CodeConfig, "connect registry database", fmt.Errorf("%w: %v", common.ErrConfiguration, err))
	}
	return db, nil
}
