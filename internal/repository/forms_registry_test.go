package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/contracts-checker/internal/common"
	"github.com/joseph-ayodele/contracts-checker/internal/registry"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(context.Background(), Config{Driver: "sqlite", DSN: ":memory:"}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close(nil) })
	return db
}

func strPtr(s string) *string { return &s }

func TestFormsRegistryRoundTrip(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	require.NoError(t, db.HealthCheck(ctx, 0, nil))

	repo := NewFormsRegistryRepository(db, nil)
	require.NoError(t, repo.CreateTable(ctx))
	require.NoError(t, repo.CreateTable(ctx), "create is idempotent")

	require.NoError(t, repo.Upsert(ctx, []registry.Row{
		{FormCode: "TREC-20", ExpectedVersion: "20-17", EffectiveDate: strPtr("2022-01-03")},
		{FormCode: "TREC-9", ExpectedVersion: "9-16"},
	}))
	require.NoError(t, repo.Upsert(ctx, []registry.Row{
		{FormCode: "TREC-20", ExpectedVersion: "20-18", EffectiveDate: strPtr("2025-01-03")},
	}))

	rows, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "TREC-20", rows[0].FormCode)
	assert.Equal(t, "20-18", rows[0].ExpectedVersion)
	require.NotNil(t, rows[0].EffectiveDate)
	assert.Equal(t, "2025-01-03", *rows[0].EffectiveDate)
	assert.Nil(t, rows[1].EffectiveDate)

	reg, err := repo.Load(ctx)
	require.NoError(t, err)
	e, ok := reg.Lookup("TREC-9")
	require.True(t, ok)
	assert.Equal(t, "9-16", e.ExpectedVersion)
}

func TestFormsRegistryUpsertRejectsBadRows(t *testing.T) {
	ctx := context.Background()
	repo := NewFormsRegistryRepository(openTestDB(t), nil)
	require.NoError(t, repo.CreateTable(ctx))

	err := repo.Upsert(ctx, []registry.Row{{FormCode: "TREC-20"}})
	assert.ErrorIs(t, err, common.ErrInvalidInput)

	rows, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestFormsRegistryMissingTable(t *testing.T) {
	_, err := NewFormsRegistryRepository(openTestDB(t), nil).List(context.Background())
	assert.ErrorIs(t, err, common.ErrDatabase)
}

func TestOpenUnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), Config{Driver: "mysql"}, nil)
	assert.Error(t, err)
}
