package integrity

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	engine "dat-catalog/core/catalog"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupTestApp(t *testing.T, db *gorm.DB) (*fiber.App, *engine.Catalog) {
	app := fiber.New()
	c := newCatalog(t)
	handler := NewHandler(NewService(c, db, zap.NewNop()))
	handler.RegisterRoutes(app)
	return app, c
}

func decode(t *testing.T, r io.Reader) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.NewDecoder(r).Decode(&body))
	return body
}

func TestHandleStatisticsCheck(t *testing.T) {
	app, _ := setupTestApp(t, nil)

	resp, err := app.Test(httptest.NewRequest("GET", "/integrity/statistics", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	body := decode(t, resp.Body)
	assert.Equal(t, true, body["matched"])
}

func TestHandleKeysCheck(t *testing.T) {
	t.Run("Check only", func(t *testing.T) {
		app, c := setupTestApp(t, nil)

		resp, err := app.Test(httptest.NewRequest("GET", "/integrity/keys", nil))
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)

		body := decode(t, resp.Body)
		assert.Equal(t, "checked", body["status"])
		assert.Equal(t, []any{"orphan"}, body["empty"])
		assert.True(t, c.ContainsKey(t.Context(), "orphan"))
	})

	t.Run("Fix", func(t *testing.T) {
		app, c := setupTestApp(t, nil)

		resp, err := app.Test(httptest.NewRequest("GET", "/integrity/keys?fix=true", nil))
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)

		body := decode(t, resp.Body)
		assert.Equal(t, "fixed", body["status"])
		assert.False(t, c.ContainsKey(t.Context(), "orphan"))
	})
}

func TestHandleSchemaCheck(t *testing.T) {
	t.Run("No database", func(t *testing.T) {
		app, _ := setupTestApp(t, nil)

		resp, err := app.Test(httptest.NewRequest("GET", "/integrity/schema", nil))
		require.NoError(t, err)
		assert.Equal(t, 503, resp.StatusCode)
	})

	t.Run("SQLite", func(t *testing.T) {
		app, _ := setupTestApp(t, newSQLiteDB(t))

		resp, err := app.Test(httptest.NewRequest("GET", "/integrity/schema", nil))
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)

		body := decode(t, resp.Body)
		assert.Equal(t, true, body["matched"])
		assert.Equal(t, "sqlite", body["driver"])
	})
}

func TestHandleIntegrityCheck(t *testing.T) {
	app, _ := setupTestApp(t, nil)

	resp, err := app.Test(httptest.NewRequest("GET", "/integrity", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	body := decode(t, resp.Body)
	assert.Contains(t, body, "statistics")
	assert.Contains(t, body, "keys")

	schema, ok := body["schema"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "error", schema["status"])
}
