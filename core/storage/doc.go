// Package storage provides an abstraction layer for object storage services.
//
// It wraps the MinIO Go client behind the Client interface so catalog
// snapshots can be written to AWS S3 or a self-hosted MinIO instance, and so
// tests can substitute core/storage/mocks.
//
// # Operations
//
//   - BucketExists / MakeBucket: EnsureBucket creates the snapshot bucket on first use.
//   - PutObject / GetObject: upload and download snapshot documents.
//   - ListObjects / RemoveObject: enumerate and prune snapshots.
//
// # Usage
//
//	client, err := storage.NewClient(cfg.Storage)
//	err = storage.EnsureBucket(ctx, client, cfg.Storage.Bucket, cfg.Storage.Region)
package storage
