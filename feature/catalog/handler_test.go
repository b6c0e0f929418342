package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"

	engine "dat-catalog/core/catalog"
	"dat-catalog/core/catalog/mocks"
	"dat-catalog/core/items"
	"dat-catalog/core/store"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const arcadeItems = `[
	{"type":"rom","machine":{"name":"pacman"},"source":{"index":0},"data":{"name":"pacman.6e","size":4096,"hashes":{"crc":"c1e6ab10","sha1":"e87e059c5be45753f7e9f33dff851f16d6751181"}}},
	{"type":"rom","machine":{"name":"puckman"},"source":{"index":1},"data":{"name":"pm1.6e","size":4096,"hashes":{"crc":"C1E6AB10","sha1":"E87E059C5BE45753F7E9F33DFF851F16D6751181"}}},
	{"type":"sample","machine":{"name":"galaga"},"source":{"index":1},"data":{"name":"fire"}}
]`

func setupTestApp(t *testing.T) (*fiber.App, *engine.Catalog) {
	t.Helper()
	c := engine.New(store.NewMemory(), engine.Config{Workers: 2}, zap.NewNop(), nil)
	app := fiber.New()
	NewHandler(NewService(c, zap.NewNop())).RegisterRoutes(app)
	return app, c
}

func doJSON(t *testing.T, app *fiber.App, method, target, body string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func TestHandleAddItems(t *testing.T) {
	app, c := setupTestApp(t)

	status, body := doJSON(t, app, "POST", "/catalog/items", arcadeItems)
	assert.Equal(t, fiber.StatusCreated, status)
	assert.Equal(t, float64(3), body["added"])
	assert.Equal(t, int64(3), c.Statistics().TotalCount)

	t.Run("Invalid JSON", func(t *testing.T) {
		status, _ := doJSON(t, app, "POST", "/catalog/items", `[{"type":"rom"`)
		assert.Equal(t, fiber.StatusBadRequest, status)
	})

	t.Run("Unknown kind", func(t *testing.T) {
		status, _ := doJSON(t, app, "POST", "/catalog/items", `[{"type":"cartridge"}]`)
		assert.Equal(t, fiber.StatusBadRequest, status)
	})
}

func TestHandleKeysAndBucket(t *testing.T) {
	app, _ := setupTestApp(t)
	doJSON(t, app, "POST", "/catalog/items", arcadeItems)

	status, body := doJSON(t, app, "GET", "/catalog/keys", "")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, float64(3), body["count"])
	assert.Equal(t, []any{"galaga-1", "pacman-0", "puckman-1"}, body["keys"])

	status, body = doJSON(t, app, "GET", "/catalog/keys?offset=1&limit=1", "")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, float64(3), body["count"])
	assert.Equal(t, []any{"pacman-0"}, body["keys"])

	status, body = doJSON(t, app, "GET", "/catalog/keys/pacman-0", "")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Len(t, body["items"], 1)
}

func TestHandleBucketBy(t *testing.T) {
	app, c := setupTestApp(t)
	doJSON(t, app, "POST", "/catalog/items", arcadeItems)

	t.Run("Best hash by default", func(t *testing.T) {
		status, body := doJSON(t, app, "POST", "/catalog/bucket?dedupe=full&lower=true", "")
		assert.Equal(t, fiber.StatusOK, status)
		assert.Equal(t, "sha1", body["bucketed_by"])
		assert.Equal(t, "full", body["merged_by"])
		assert.Equal(t, int64(1), c.Statistics().RemovedCount)
	})

	t.Run("Writers skip flagged items", func(t *testing.T) {
		_, body := doJSON(t, app, "GET", "/catalog/keys/e87e059c5be45753f7e9f33dff851f16d6751181", "")
		assert.Len(t, body["items"], 1)

		_, body = doJSON(t, app, "GET", "/catalog/keys/e87e059c5be45753f7e9f33dff851f16d6751181?all=true", "")
		assert.Len(t, body["items"], 2)
	})

	t.Run("Invalid key", func(t *testing.T) {
		status, _ := doJSON(t, app, "POST", "/catalog/bucket?key=md4", "")
		assert.Equal(t, fiber.StatusBadRequest, status)
	})

	t.Run("Invalid dedupe", func(t *testing.T) {
		status, _ := doJSON(t, app, "POST", "/catalog/bucket?key=crc&dedupe=some", "")
		assert.Equal(t, fiber.StatusBadRequest, status)
	})

	t.Run("Machine buckets", func(t *testing.T) {
		status, body := doJSON(t, app, "POST", "/catalog/bucket?key=game&norename=1", "")
		assert.Equal(t, fiber.StatusOK, status)
		assert.Equal(t, "machine", body["bucketed_by"])
		assert.True(t, c.ContainsKey(context.Background(), "puckman"))
	})
}

func TestHandleStats(t *testing.T) {
	app, _ := setupTestApp(t)
	doJSON(t, app, "POST", "/catalog/items", arcadeItems)

	status, body := doJSON(t, app, "GET", "/catalog/stats?recalculate=true", "")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, float64(3), body["game_count"])
	assert.Equal(t, "", body["bucketed_by"])

	stats := body["statistics"].(map[string]any)
	assert.Equal(t, float64(3), stats["total_count"])
	assert.Equal(t, float64(8192), stats["total_size"])

	_, body = doJSON(t, app, "GET", "/catalog/besthash", "")
	assert.Equal(t, "sha1", body["key"])
}

func TestHandleClearAndDuplicates(t *testing.T) {
	app, c := setupTestApp(t)
	doJSON(t, app, "POST", "/catalog/items", arcadeItems)

	probe := `{"type":"rom","machine":{"name":"probe"},"data":{"name":"x","size":4096,"hashes":{"crc":"c1e6ab10"}}}`
	status, body := doJSON(t, app, "POST", "/catalog/duplicates", probe)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, float64(0), body["count"])

	// best tier is sha1, the probe only has a crc so it falls into its own bucket
	status, body = doJSON(t, app, "POST", "/catalog/bucket?key=crc&lower=true", "")
	require.Equal(t, fiber.StatusOK, status)

	status, body = doJSON(t, app, "POST", "/catalog/duplicates?sorted=true", probe)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, float64(2), body["count"])

	status, body = doJSON(t, app, "POST", "/catalog/clear?marked=true&empty=true", "")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "cleared", body["status"])
	assert.Equal(t, int64(1), c.Statistics().TotalCount)
	assert.False(t, c.ContainsKey(context.Background(), "c1e6ab10"))
}

func TestHandleStoreUnavailable(t *testing.T) {
	s := new(mocks.Store)
	s.On("Fetch", mock.Anything, "k").Return(nil, errors.New("database is locked"))
	c := engine.New(s, engine.Config{}, zap.NewNop(), nil)
	app := fiber.New()
	NewHandler(NewService(c, zap.NewNop())).RegisterRoutes(app)

	status, body := doJSON(t, app, "GET", "/catalog/keys/k?all=true", "")
	assert.Equal(t, fiber.StatusServiceUnavailable, status)
	assert.Equal(t, "Failed to read bucket", body["error"])

	status, body = doJSON(t, app, "GET", "/catalog/keys/k", "")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Empty(t, body["items"])
}

func TestBucketRequestOptions(t *testing.T) {
	opts, err := BucketRequest{Key: "SHA1", Dedupe: "game", NormalizeCase: true}.Options()
	require.NoError(t, err)
	assert.Equal(t, items.KeySHA1, opts.Key)
	assert.Equal(t, items.DedupeGame, opts.Dedupe)
	assert.True(t, opts.NormalizeCase)

	_, err = BucketRequest{Key: "crc32"}.Options()
	assert.ErrorIs(t, err, ErrInvalidRequest)
}
