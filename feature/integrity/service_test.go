package integrity

import (
	"context"
	"testing"

	engine "dat-catalog/core/catalog"
	"dat-catalog/core/database"
	"dat-catalog/core/items"
	"dat-catalog/core/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newCatalog(t *testing.T) *engine.Catalog {
	t.Helper()
	c := engine.New(store.NewMemory(), engine.Config{Workers: 2}, zap.NewNop(), nil)
	size := int64(2048)
	require.NoError(t, c.AddMachine(context.Background(), items.Machine{Name: "galaga"}, items.Source{}, []items.Variant{
		&items.Rom{Name: "gg1_1b.3p", Size: &size, Hashes: items.Hashes{CRC: "ab036c9f"}},
	}))
	_, err := c.EnsureKey(context.Background(), "orphan")
	require.NoError(t, err)
	return c
}

func newSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Connect(database.Config{Driver: database.DriverSQLite, Path: ":memory:"})
	require.NoError(t, err)
	_, err = store.NewSQL(db)
	require.NoError(t, err)
	return db
}

func TestService_Statistics(t *testing.T) {
	svc := NewService(newCatalog(t), nil, zap.NewNop())

	report, err := svc.CheckStatistics(context.Background())
	require.NoError(t, err)
	assert.True(t, report.Matched)
	assert.Equal(t, int64(1), report.Recomputed.TotalCount)
}

func TestService_Keys(t *testing.T) {
	ctx := context.Background()
	c := newCatalog(t)
	svc := NewService(c, nil, zap.NewNop())

	empty, err := svc.CheckEmptyKeys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"orphan"}, empty)

	require.NoError(t, svc.FixEmptyKeys(ctx))
	assert.False(t, c.ContainsKey(ctx, "orphan"))
}

func TestService_Schema(t *testing.T) {
	t.Run("Memory store", func(t *testing.T) {
		svc := NewService(newCatalog(t), nil, zap.NewNop())
		_, err := svc.CheckSchema()
		assert.Error(t, err)
	})

	t.Run("SQL store", func(t *testing.T) {
		svc := NewService(newCatalog(t), newSQLiteDB(t), zap.NewNop())
		report, err := svc.CheckSchema()
		require.NoError(t, err)
		assert.True(t, report.Matched)
	})
}
