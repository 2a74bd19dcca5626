package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/joseph-ayodele/contracts-checker/internal/common"
	"github.com/joseph-ayodele/contracts-checker/internal/registry"
)

const formsRegistryTable = "forms_registry"

// FormsRegistryRepository reads and maintains the forms registry table.
type FormsRegistryRepository interface {
	CreateTable(ctx context.Context) error
	Upsert(ctx context.Context, rows []registry.Row) error
	List(ctx context.Context) ([]registry.Row, error)
	Load(ctx context.Context) (registry.Registry, error)
}

type formsRegistryRepository struct {
	db     *DB
	logger *slog.Logger
}

func NewFormsRegistryRepository(db *DB, logger *slog.Logger) FormsRegistryRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &formsRegistryRepository{db: db, logger: logger}
}

func (r *formsRegistryRepository) builder() *entsql.DialectBuilder {
	return entsql.Dialect(r.db.Dialect)
}

// createFormsRegistry is valid for both postgres and sqlite.
const createFormsRegistry = `CREATE TABLE IF NOT EXISTS forms_registry (
	form_code        varchar(64) PRIMARY KEY,
	expected_version varchar(32) NOT NULL,
	effective_date   varchar(32)
)`

func (r *formsRegistryRepository) CreateTable(ctx context.Context) error {
	if err := r.db.Driver.Exec(ctx, createFormsRegistry, []any{}, nil); err != nil {
		return common.WrapError(err, "create forms_registry")
	}
	return nil
}

// Upsert inserts rows, replacing the version and date of existing codes.
func (r *formsRegistryRepository) Upsert(ctx context.Context, rows []registry.Row) error {
	if len(rows) == 0 {
		return nil
	}
	// reuse the registry's own validation
	if _, err := registry.FromRows(rows); err != nil {
		return common.NewAppError(common.CodeValidation, "invalid registry rows", fmt.Errorf("%w: %v", common.ErrInvalidInput, err))
	}
	d := r.builder()
	ins := d.Insert(formsRegistryTable).Columns("form_code", "expected_version", "effective_date")
	for _, row := range rows {
		var eff any
		if row.EffectiveDate != nil {
			eff = *row.EffectiveDate
		}
		ins.Values(row.FormCode, row.ExpectedVersion, eff)
	}
	query, args := ins.OnConflict(
		entsql.ConflictColumns("form_code"),
		entsql.ResolveWithNewValues(),
	).Query()
	if err := r.db.Driver.Exec(ctx, query, args, nil); err != nil {
		r.logger.Error("forms_registry.upsert_failed", "rows", len(rows), "error", err)
		return fmt.Errorf("%w: %v", common.ErrDatabase, err)
	}
	r.logger.Info("forms_registry.upsert_ok", "rows", len(rows))
	return nil
}

func (r *formsRegistryRepository) List(ctx context.Context) ([]registry.Row, error) {
	d := r.builder()
	query, args := d.Select("form_code", "expected_version", "effective_date").
		From(entsql.Table(formsRegistryTable)).
		OrderBy("form_code").
		Query()

	var rows entsql.Rows
	if err := r.db.Driver.Query(ctx, query, args, &rows); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrDatabase, err)
	}
	defer func() { _ = rows.Close() }()

	var out []registry.Row
	for rows.Next() {
		var code, version string
		var eff sql.NullString
		if err := rows.Scan(&code, &version, &eff); err != nil {
			return nil, fmt.Errorf("%w: scan: %v", common.ErrDatabase, err)
		}
		row := registry.Row{FormCode: code, ExpectedVersion: version}
		if eff.Valid {
			s := eff.String
			row.EffectiveDate = &s
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrDatabase, err)
	}
	return out, nil
}

// Load lists the table and builds a registry from it.
func (r *formsRegistryRepository) Load(ctx context.Context) (registry.Registry, error) {
	rows, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	reg, err := registry.FromRows(rows)
	if err != nil {
		return nil, common.NewAppError(common.CodeConfig, "forms_registry table is inconsistent", fmt.Errorf("%w: %v", common.ErrConfiguration, err))
	}
	r.logger.Info("forms_registry.loaded", "forms", len(reg))
	return reg, nil
}
