package snapshot

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"dat-catalog/core/storage/mocks"

	"github.com/gofiber/fiber/v2"
	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupTestApp() (*fiber.App, *mocks.Client) {
	app := fiber.New()
	m := new(mocks.Client)
	NewHandler(NewService(newCatalog(), m, testConfig, zap.NewNop())).RegisterRoutes(app)
	return app, m
}

func TestHandleList(t *testing.T) {
	app, m := setupTestApp()
	ch := make(chan minio.ObjectInfo, 1)
	ch <- minio.ObjectInfo{Key: "snapshots/daily.json", Size: 10}
	close(ch)
	m.On("ListObjects", mock.Anything, "catalog-snapshots", mock.Anything).Return((<-chan minio.ObjectInfo)(ch))

	resp, err := app.Test(httptest.NewRequest("GET", "/snapshots", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, float64(1), body["count"])
}

func TestHandleExport(t *testing.T) {
	app, m := setupTestApp()
	m.On("BucketExists", mock.Anything, "catalog-snapshots").Return(true, nil)
	m.On("PutObject", mock.Anything, "catalog-snapshots", "snapshots/nightly.json", mock.Anything, mock.Anything, mock.Anything).
		Return(minio.UploadInfo{}, nil)

	resp, err := app.Test(httptest.NewRequest("POST", "/snapshots?name=nightly", nil))
	require.NoError(t, err)
	assert.Equal(t, 201, resp.StatusCode)

	var result ExportResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, "nightly", result.Name)
}

func TestHandleExportInvalidName(t *testing.T) {
	app, _ := setupTestApp()

	resp, err := app.Test(httptest.NewRequest("POST", "/snapshots?name=a%2Fb", nil))
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)
}

func TestHandleImport(t *testing.T) {
	t.Run("Not found", func(t *testing.T) {
		app, m := setupTestApp()
		m.On("GetObject", mock.Anything, "catalog-snapshots", "snapshots/missing.json", mock.Anything).
			Return(nil, minio.ErrorResponse{Code: "NoSuchKey"})

		resp, err := app.Test(httptest.NewRequest("POST", "/snapshots/missing/import", nil))
		require.NoError(t, err)
		assert.Equal(t, 404, resp.StatusCode)
	})

	t.Run("Restores", func(t *testing.T) {
		app, m := setupTestApp()
		doc := []byte(`{"version":1,"options":{"key":""},"buckets":[{"key":"galaga-0","items":[` +
			`{"type":"rom","machine":{"name":"galaga"},"source":{"index":0},"data":{"name":"gg1_1b.3p","hashes":{"crc":"ab036c9f"}}}]}]}`)
		m.On("GetObject", mock.Anything, "catalog-snapshots", "snapshots/galaga.json", mock.Anything).
			Return(io.NopCloser(bytes.NewReader(doc)), nil)

		resp, err := app.Test(httptest.NewRequest("POST", "/snapshots/galaga/import?replace=true", nil))
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)

		var result RestoreResult
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
		assert.Equal(t, 1, result.Items)
		assert.Equal(t, 1, result.Buckets)
	})
}

func TestHandleDelete(t *testing.T) {
	app, m := setupTestApp()
	m.On("RemoveObject", mock.Anything, "catalog-snapshots", "snapshots/old.json", mock.Anything).Return(nil)

	resp, err := app.Test(httptest.NewRequest("DELETE", "/snapshots/old", nil))
	require.NoError(t, err)
	assert.Equal(t, 204, resp.StatusCode)
}
