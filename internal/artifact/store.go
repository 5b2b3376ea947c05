// Package artifact defines the interface for publishing generated artifacts
// (schema descriptions, emitted type files) to shared object storage so
// other teams consume the same regenerated types.
//
// All providers implement the Store interface. Callers depend only on this
// package, never on a specific provider package.
//
// Usage:
//
//	cfg := artifact.DefaultConfig("localhost:9000", "minioadmin", "minioadmin")
//	store, err := minio.New(ctx, cfg)
//	if err != nil { ... }
//	defer store.Close()
//
//	info, err := store.Put(ctx, "typegen", "schema.yaml", bytes.NewReader(data), "application/yaml")
package artifact

import (
	"context"
	"io"
	"time"
)

// Store is the interface all artifact storage providers implement.
type Store interface {
	// Ping verifies the storage backend is reachable.
	Ping(ctx context.Context) error

	// Close releases any held resources.
	Close() error

	// EnsureBucket creates the bucket if it does not exist yet.
	EnsureBucket(ctx context.Context, bucket string) error

	// Put uploads an artifact under key inside bucket, replacing any
	// previous version; artifacts are regenerated wholesale, never patched.
	Put(ctx context.Context, bucket, key string, r io.Reader, contentType string) (*ObjectInfo, error)

	// Stat returns metadata for the artifact at key inside bucket without
	// downloading its content.
	Stat(ctx context.Context, bucket, key string) (*ObjectInfo, error)

	// PresignGetURL returns a time-limited URL that allows anyone to
	// download the artifact at key inside bucket without credentials.
	PresignGetURL(ctx context.Context, bucket, key string, ttl time.Duration) (string, error)
}

// ObjectInfo describes a stored artifact.
type ObjectInfo struct {
	// Key is the full object path within the bucket (e.g. "schemas/public.yaml").
	Key string

	// Size is the byte size of the object. -1 if unknown.
	Size int64

	// ContentType is the MIME type (e.g. "application/yaml").
	ContentType string

	// ETag is the object's entity tag / hash, as returned by the backend.
	ETag string

	// LastModified is when the object was last written.
	LastModified time.Time
}

// Provider identifies the storage backend.
type Provider string

const (
	ProviderMinIO Provider = "minio"
)

// Config holds all settings needed to connect to an artifact store.
type Config struct {
	// Provider is the storage backend (e.g. ProviderMinIO).
	Provider Provider

	// Endpoint is the host:port of the storage server.
	// Example: "localhost:9000" for local MinIO.
	Endpoint string

	// AccessKey is the access key ID (MinIO / S3 style).
	AccessKey string

	// SecretKey is the secret access key.
	SecretKey string

	// UseSSL controls whether TLS is used for the connection.
	UseSSL bool

	// Region is used by region-aware backends. Leave empty for MinIO.
	Region string

	// Bucket is the bucket generated artifacts are published to.
	Bucket string
}

// DefaultConfig returns a sensible local-dev config for MinIO.
func DefaultConfig(endpoint, accessKey, secretKey string) *Config {
	return &Config{
		Provider:  ProviderMinIO,
		Endpoint:  endpoint,
		AccessKey: accessKey,
		SecretKey: secretKey,
		UseSSL:    false,
		Bucket:    "typeshape-artifacts",
	}
}
