package checks

import (
	"context"
	"errors"
	"testing"

	engine "dat-catalog/core/catalog"
	"dat-catalog/core/database"
	"dat-catalog/core/items"
	"dat-catalog/core/store"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to open mock sql db: %v", err)
	}

	dialector := mysql.New(mysql.Config{
		Conn:                      db,
		SkipInitializeWithVersion: true,
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open gorm db: %v", err)
	}

	return gormDB, mock
}

func newCatalog(t *testing.T) *engine.Catalog {
	t.Helper()
	c := engine.New(store.NewMemory(), engine.Config{Workers: 2}, zap.NewNop(), nil)
	size := int64(1)
	require.NoError(t, c.AddMachine(context.Background(), items.Machine{Name: "m"}, items.Source{}, []items.Variant{
		&items.Rom{Name: "a", Size: &size, Hashes: items.Hashes{CRC: "00000001"}},
	}))
	require.NoError(t, c.AddMachine(context.Background(), items.Machine{Name: "blank"}, items.Source{}, nil))
	return c
}

func TestCheckStatistics(t *testing.T) {
	ctx := context.Background()

	t.Run("Matched", func(t *testing.T) {
		c := newCatalog(t)
		report, err := CheckStatistics(ctx, c)
		require.NoError(t, err)
		assert.True(t, report.Matched)
		assert.Equal(t, int64(2), report.Recomputed.TotalCount)
	})

	t.Run("Diverged", func(t *testing.T) {
		c := newCatalog(t)
		c.RemoveItemStatistics(items.New(&items.Blank{}, items.Machine{Name: "blank"}, items.Source{}))

		report, err := CheckStatistics(ctx, c)
		require.NoError(t, err)
		assert.False(t, report.Matched)
		assert.Equal(t, int64(1), report.Running.TotalCount)
		assert.Equal(t, int64(2), report.Recomputed.TotalCount)
	})

	t.Run("NilCatalog", func(t *testing.T) {
		_, err := CheckStatistics(ctx, nil)
		assert.Error(t, err)
	})
}

func TestCheckEmptyKeys(t *testing.T) {
	ctx := context.Background()
	c := newCatalog(t)
	_, err := c.EnsureKey(ctx, "void")
	require.NoError(t, err)

	empty, err := CheckEmptyKeys(ctx, c)
	require.NoError(t, err)
	assert.Equal(t, []string{"blank-0", "void"}, empty)

	require.NoError(t, FixEmptyKeys(ctx, c))
	empty, err = CheckEmptyKeys(ctx, c)
	require.NoError(t, err)
	assert.Empty(t, empty)
	assert.Equal(t, []string{"m-0"}, c.SortedKeys(ctx))
}

func TestCheckStoreSchema(t *testing.T) {
	t.Run("NilDB", func(t *testing.T) {
		report, err := CheckStoreSchema(nil)
		assert.Error(t, err)
		assert.Nil(t, report)
	})

	t.Run("Migrated sqlite", func(t *testing.T) {
		db, err := database.Connect(database.Config{Driver: database.DriverSQLite, Path: ":memory:"})
		require.NoError(t, err)
		_, err = store.NewSQL(db)
		require.NoError(t, err)

		report, err := CheckStoreSchema(db)
		require.NoError(t, err)
		assert.True(t, report.Matched)
		assert.Equal(t, "sqlite", report.Driver)
		assert.Equal(t, "ok", report.Tables[store.ItemsTable].Status)
		assert.Equal(t, "ok", report.Tables[store.KeysTable].Status)
	})

	t.Run("Missing columns", func(t *testing.T) {
		db, mock := setupMockDB(t)

		keys := sqlmock.NewRows([]string{"Field", "Type", "Null", "Key", "Default", "Extra"}).
			AddRow("id", "bigint unsigned", "NO", "PRI", nil, "auto_increment").
			AddRow("name", "varchar(512)", "YES", "UNI", nil, "")
		mock.ExpectQuery("SHOW COLUMNS FROM `catalog_items`").WillReturnRows(
			sqlmock.NewRows([]string{"Field", "Type", "Null", "Key", "Default", "Extra"}).
				AddRow("id", "bigint unsigned", "NO", "PRI", nil, "auto_increment").
				AddRow("bucket", "varchar(512)", "YES", "MUL", nil, ""))
		mock.ExpectQuery("SHOW COLUMNS FROM `catalog_keys`").WillReturnRows(keys)

		report, err := CheckStoreSchema(db)
		require.NoError(t, err)
		assert.False(t, report.Matched)
		assert.Equal(t, "mysql", report.Driver)
		assert.Equal(t, []string{"position", "kind", "payload"}, report.Tables[store.ItemsTable].MissingColumns)
		assert.Equal(t, "error", report.Tables[store.ItemsTable].Status)
		assert.Equal(t, "ok", report.Tables[store.KeysTable].Status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Inspection error", func(t *testing.T) {
		db, mock := setupMockDB(t)
		mock.ExpectQuery("SHOW COLUMNS FROM `catalog_items`").WillReturnError(errors.New("access denied"))
		mock.ExpectQuery("SHOW COLUMNS FROM `catalog_keys`").WillReturnError(errors.New("access denied"))

		report, err := CheckStoreSchema(db)
		require.NoError(t, err)
		assert.False(t, report.Matched)
		assert.Len(t, report.Errors, 2)
	})
}
