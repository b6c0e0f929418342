package snapshot

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"
	"time"

	engine "dat-catalog/core/catalog"
	"dat-catalog/core/storage"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// Prefix is the object prefix snapshots are stored under.
const Prefix = "snapshots/"

var (
	// ErrInvalidName reports a snapshot name that cannot be used as an object name.
	ErrInvalidName = errors.New("invalid snapshot name")
	// ErrNotFound reports a missing snapshot object.
	ErrNotFound = errors.New("snapshot not found")
	// ErrInvalidSnapshot reports a snapshot document that cannot be restored.
	ErrInvalidSnapshot = errors.New("invalid snapshot")
)

// Service stores catalog snapshots in object storage.
type Service struct {
	catalog *engine.Catalog
	client  storage.Client
	bucket  string
	region  string
	logger  *zap.Logger
}

// NewService creates a new snapshot service.
func NewService(c *engine.Catalog, client storage.Client, cfg storage.Config, logger *zap.Logger) *Service {
	return &Service{
		catalog: c,
		client:  client,
		bucket:  cfg.Bucket,
		region:  cfg.Region,
		logger:  logger,
	}
}

// Info describes a stored snapshot.
type Info struct {
	Name         string    `json:"name"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"last_modified"`
}

// ExportResult describes a written snapshot.
type ExportResult struct {
	Name    string `json:"name"`
	Object  string `json:"object"`
	Buckets int    `json:"buckets"`
	Size    int64  `json:"size"`
}

// ObjectName returns the object a snapshot name is stored under.
func ObjectName(name string) string {
	return Prefix + name + ".json"
}

// DefaultName returns a timestamped snapshot name.
func DefaultName(t time.Time) string {
	return "catalog-" + t.UTC().Format("20060102T150405Z")
}

func validateName(name string) error {
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// Export writes the catalog to a snapshot object. An empty name gets a
// timestamped default.
func (s *Service) Export(ctx context.Context, name string) (*ExportResult, error) {
	if name == "" {
		name = DefaultName(time.Now())
	}
	if err := validateName(name); err != nil {
		return nil, err
	}

	snap, err := Build(ctx, s.catalog)
	if err != nil {
		return nil, fmt.Errorf("failed to build snapshot: %w", err)
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}

	if err := storage.EnsureBucket(ctx, s.client, s.bucket, s.region); err != nil {
		return nil, err
	}

	object := ObjectName(name)
	_, err = s.client.PutObject(ctx, s.bucket, object, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload %s: %w", object, err)
	}

	s.logger.Info("Snapshot exported",
		zap.String("object", object),
		zap.Int("buckets", len(snap.Buckets)),
		zap.Int("bytes", len(data)),
	)
	return &ExportResult{Name: name, Object: object, Buckets: len(snap.Buckets), Size: int64(len(data))}, nil
}

// Import restores a snapshot into the catalog.
func (s *Service) Import(ctx context.Context, name string, replace bool) (*RestoreResult, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}

	object := ObjectName(name)
	obj, err := s.client.GetObject(ctx, s.bucket, object, minio.GetObjectOptions{})
	if err != nil {
		return nil, notFound(object, err)
	}
	defer obj.Close()

	var snap Snapshot
	if err := json.NewDecoder(obj).Decode(&snap); err != nil {
		if nf := notFound(object, err); errors.Is(nf, ErrNotFound) {
			return nil, nf
		}
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidSnapshot, object, err)
	}

	result, err := Restore(ctx, s.catalog, &snap, replace, s.logger)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Snapshot imported",
		zap.String("object", object),
		zap.Bool("replace", replace),
		zap.Int("items", result.Items),
		zap.Int("skipped", result.Skipped),
	)
	return result, nil
}

// List returns the stored snapshots ordered by name.
func (s *Service) List(ctx context.Context) ([]Info, error) {
	out := []Info{}
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{Prefix: Prefix, Recursive: true}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("failed to list snapshots: %w", obj.Err)
		}
		if path.Ext(obj.Key) != ".json" {
			continue
		}
		out = append(out, Info{
			Name:         strings.TrimSuffix(strings.TrimPrefix(obj.Key, Prefix), ".json"),
			Size:         obj.Size,
			LastModified: obj.LastModified,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Delete removes a stored snapshot.
func (s *Service) Delete(ctx context.Context, name string) error {
	if err := validateName(name); err != nil {
		return err
	}
	object := ObjectName(name)
	if err := s.client.RemoveObject(ctx, s.bucket, object, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to delete %s: %w", object, err)
	}
	s.logger.Info("Snapshot deleted", zap.String("object", object))
	return nil
}

func notFound(object string, err error) error {
	if minio.ToErrorResponse(err).Code == "NoSuchKey" {
		return fmt.Errorf("%w: %s", ErrNotFound, object)
	}
	return fmt.Errorf("failed to read %s: %w", object, err)
}
