// Package config loads the gateway's environment configuration and builds
// the blob store it points at.
package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/blobgate/blobgate/pkg/blobgate"
	memorystorage "github.com/blobgate/blobgate/pkg/blobgate/storage/memory"
	s3storage "github.com/blobgate/blobgate/pkg/blobgate/storage/s3"
)

// ServerConfig holds everything the server binary needs: the HTTP port, the
// bucket pair, and the storage backend selection.
type ServerConfig struct {
	Port        string `env:"PORT" env-default:"8080"`
	Environment string `env:"ENVIRONMENT" env-default:"development"`

	PrimaryBucket string `env:"BUCKET_NAME" env-default:"gateway-objects"`
	DerivedBucket string `env:"RESIZED_BUCKET_NAME" env-default:"gateway-objects-resized"`

	StorageBackend string `env:"STORAGE_BACKEND" env-default:"memory"`

	S3 S3Config

	DispatchTimeoutSeconds int `env:"DISPATCH_TIMEOUT_SECONDS" env-default:"25"`
}

// S3Config holds the S3/MinIO connection settings, read only when
// STORAGE_BACKEND=s3.
type S3Config struct {
	Region          string `env:"AWS_S3_REGION" env-default:"us-east-1"`
	AccessKeyID     string `env:"AWS_ACCESS_KEY_ID" env-default:""`
	SecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY" env-default:""`
	Endpoint        string `env:"AWS_S3_ENDPOINT" env-default:""`
	UsePathStyle    bool   `env:"AWS_S3_USE_PATH_STYLE" env-default:"false"`
	CreateBuckets   bool   `env:"AWS_S3_CREATE_BUCKETS" env-default:"false"`
}

// Load reads the configuration from the process environment.
func Load() (*ServerConfig, error) {
	var cfg ServerConfig
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for consistency.
func (c *ServerConfig) Validate() error {
	if c.PrimaryBucket == "" {
		return fmt.Errorf("primary bucket name is required")
	}
	if c.DerivedBucket == "" {
		return fmt.Errorf("derived bucket name is required")
	}
	if c.PrimaryBucket == c.DerivedBucket {
		return fmt.Errorf("primary and derived buckets must differ")
	}
	switch c.StorageBackend {
	case "memory", "s3":
	default:
		return fmt.Errorf("unsupported storage backend: %s (use 'memory' or 's3')", c.StorageBackend)
	}
	if c.DispatchTimeoutSeconds <= 0 {
		return fmt.Errorf("dispatch timeout must be positive")
	}
	return nil
}

// DispatchTimeout returns the bounded duration for downstream invocations.
func (c *ServerConfig) DispatchTimeout() time.Duration {
	return time.Duration(c.DispatchTimeoutSeconds) * time.Second
}

// BuildStore constructs the configured blob store.
func (c *ServerConfig) BuildStore() (blobgate.BlobStore, error) {
	switch c.StorageBackend {
	case "memory":
		return memorystorage.New(), nil
	case "s3":
		s3Config := s3storage.Config{
			Region:          c.S3.Region,
			AccessKeyID:     c.S3.AccessKeyID,
			SecretAccessKey: c.S3.SecretAccessKey,
			Endpoint:        c.S3.Endpoint,
			UsePathStyle:    c.S3.UsePathStyle,
		}
		if c.S3.CreateBuckets {
			s3Config.CreateBuckets = []string{c.PrimaryBucket, c.DerivedBucket}
		}
		store, err := s3storage.New(s3Config)
		if err != nil {
			return nil, fmt.Errorf("failed to create S3 store: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unsupported storage backend: %s", c.StorageBackend)
	}
}
