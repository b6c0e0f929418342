package storage_test

import (
	"context"
	"errors"
	"testing"

	"dat-catalog/core/storage"
	"dat-catalog/core/storage/mocks"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestNewClient(t *testing.T) {
	tests := []struct {
		name string
		cfg  storage.Config
	}{
		{"ValidConfig", storage.Config{Endpoint: "localhost:9000", AccessKey: "k", SecretKey: "s", Bucket: "catalog-snapshots", Region: "us-east-1"}},
		{"EndpointWithHTTP", storage.Config{Endpoint: "http://localhost:9000", AccessKey: "k", SecretKey: "s"}},
		{"EndpointWithHTTPS", storage.Config{Endpoint: "https://s3.amazonaws.com", AccessKey: "k", SecretKey: "s", UseSSL: true, Region: "us-east-1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := storage.NewClient(tt.cfg)
			assert.NoError(t, err)
			assert.NotNil(t, client)
		})
	}
}

func TestEnsureBucket(t *testing.T) {
	ctx := context.Background()

	t.Run("Exists", func(t *testing.T) {
		m := new(mocks.Client)
		m.On("BucketExists", ctx, "snapshots").Return(true, nil)

		assert.NoError(t, storage.EnsureBucket(ctx, m, "snapshots", ""))
		m.AssertNotCalled(t, "MakeBucket", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Created", func(t *testing.T) {
		m := new(mocks.Client)
		m.On("BucketExists", ctx, "snapshots").Return(false, nil)
		m.On("MakeBucket", ctx, "snapshots", minio.MakeBucketOptions{Region: "eu-west-1"}).Return(nil)

		assert.NoError(t, storage.EnsureBucket(ctx, m, "snapshots", "eu-west-1"))
		m.AssertExpectations(t)
	})

	t.Run("Unreachable", func(t *testing.T) {
		m := new(mocks.Client)
		m.On("BucketExists", ctx, "snapshots").Return(false, errors.New("dial tcp: refused"))

		err := storage.EnsureBucket(ctx, m, "snapshots", "")
		assert.ErrorContains(t, err, "failed to check bucket snapshots")
	})
}
