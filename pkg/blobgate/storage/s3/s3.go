// Package s3 implements the blobgate.BlobStore interface against S3 and
// S3-compatible services such as MinIO.
package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/blobgate/blobgate/pkg/blobgate"
)

// Config options for the S3 store
type Config struct {
	Region          string   // AWS region
	AccessKeyID     string   // AWS access key ID
	SecretAccessKey string   // AWS secret access key
	Endpoint        string   // Optional custom endpoint for S3-compatible services
	UsePathStyle    bool     // Use path-style addressing (default: false)
	CreateBuckets   []string // Buckets to create on startup if missing (MinIO/dev)
}

// Store is an S3-compatible implementation of the blobgate.BlobStore
// interface. Unlike a single-bucket backend, every call names its bucket so
// one client serves both the primary and the derived bucket.
type Store struct {
	client *s3.Client
	config Config
}

// New creates a new S3-compatible store.
func New(config Config) (*Store, error) {
	if config.Region == "" {
		config.Region = "us-east-1"
	}

	var awsCfg aws.Config
	var err error

	if config.AccessKeyID != "" && config.SecretAccessKey != "" {
		awsCfg, err = awsconfig.LoadDefaultConfig(context.Background(),
			awsconfig.WithRegion(config.Region),
			awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
				config.AccessKeyID,
				config.SecretAccessKey,
				"",
			)),
		)
	} else {
		// Default credential chain
		awsCfg, err = awsconfig.LoadDefaultConfig(context.Background(),
			awsconfig.WithRegion(config.Region),
		)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	var s3Options []func(*s3.Options)
	if config.Endpoint != "" {
		s3Options = append(s3Options, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(config.Endpoint)
			o.UsePathStyle = config.UsePathStyle
		})
	}

	store := &Store{
		client: s3.NewFromConfig(awsCfg, s3Options...),
		config: config,
	}

	for _, bucket := range config.CreateBuckets {
		if err := store.createBucketIfNotExists(context.Background(), bucket); err != nil {
			return nil, fmt.Errorf("failed to create bucket %s: %w", bucket, err)
		}
	}

	return store, nil
}

func (s *Store) createBucketIfNotExists(ctx context.Context, bucket string) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(bucket),
	})
	if err == nil {
		return nil
	}

	var notFound *types.NotFound
	var noSuchBucket *types.NoSuchBucket
	if !errors.As(err, &notFound) && !errors.As(err, &noSuchBucket) &&
		!strings.Contains(err.Error(), "NoSuchBucket") {
		return fmt.Errorf("failed to check bucket: %w", err)
	}

	createInput := &s3.CreateBucketInput{
		Bucket: aws.String(bucket),
	}
	if s.config.Region != "us-east-1" {
		createInput.CreateBucketConfiguration = &types.CreateBucketConfiguration{
			LocationConstraint: types.BucketLocationConstraint(s.config.Region),
		}
	}

	if _, err := s.client.CreateBucket(ctx, createInput); err != nil {
		if strings.Contains(err.Error(), "BucketAlreadyExists") ||
			strings.Contains(err.Error(), "BucketAlreadyOwnedByYou") {
			return nil
		}
		return fmt.Errorf("failed to create bucket: %w", err)
	}
	return nil
}

// isNotFound reports whether err is any of the S3 not-found error shapes.
// MinIO and S3 disagree on which one a head/get returns.
func isNotFound(err error) bool {
	var notFound *types.NotFound
	var noSuchKey *types.NoSuchKey
	if errors.As(err, &notFound) || errors.As(err, &noSuchKey) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		code := apiErr.ErrorCode()
		return code == "NotFound" || code == "NoSuchKey"
	}
	return false
}

// Get downloads an object's bytes.
func (s *Store) Get(ctx context.Context, bucket, key string) ([]byte, error) {
	result, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, &blobgate.StorageError{Bucket: bucket, Key: key, Op: "get", Err: blobgate.ErrObjectNotFound}
		}
		return nil, &blobgate.StorageError{Bucket: bucket, Key: key, Op: "get", Err: err}
	}
	defer result.Body.Close()

	data, err := io.ReadAll(result.Body)
	if err != nil {
		return nil, &blobgate.StorageError{Bucket: bucket, Key: key, Op: "get", Err: err}
	}
	return data, nil
}

// Head retrieves object metadata without transferring the body.
func (s *Store) Head(ctx context.Context, bucket, key string) (*blobgate.ObjectMeta, error) {
	result, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, &blobgate.StorageError{Bucket: bucket, Key: key, Op: "head", Err: blobgate.ErrObjectNotFound}
		}
		return nil, &blobgate.StorageError{Bucket: bucket, Key: key, Op: "head", Err: err}
	}

	meta := &blobgate.ObjectMeta{
		Key:         key,
		ContentType: blobgate.DefaultMimeType,
	}
	if result.ContentLength != nil {
		meta.Size = *result.ContentLength
	}
	if result.ContentType != nil {
		meta.ContentType = *result.ContentType
	}
	if result.LastModified != nil {
		meta.LastModified = *result.LastModified
	}
	return meta, nil
}

// Put stores an object. The uploader sets the content length from the byte
// count of the payload.
func (s *Store) Put(ctx context.Context, bucket, key string, data []byte, contentType string) error {
	uploader := manager.NewUploader(s.client)

	input := &s3.PutObjectInput{
		Bucket:        aws.String(bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	if _, err := uploader.Upload(ctx, input); err != nil {
		return &blobgate.StorageError{Bucket: bucket, Key: key, Op: "put", Err: err}
	}
	return nil
}

// Delete removes a single object. S3 deletes are idempotent: deleting an
// absent key succeeds.
func (s *Store) Delete(ctx context.Context, bucket, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return &blobgate.StorageError{Bucket: bucket, Key: key, Op: "delete", Err: err}
	}
	return nil
}

// DeleteBatch removes multiple objects and returns the keys the store
// confirmed deleted. The batch is not atomic; partial success is expected.
func (s *Store) DeleteBatch(ctx context.Context, bucket string, keys []string) ([]string, error) {
	identifiers := make([]types.ObjectIdentifier, 0, len(keys))
	for _, key := range keys {
		identifiers = append(identifiers, types.ObjectIdentifier{Key: aws.String(key)})
	}

	result, err := s.client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
		Bucket: aws.String(bucket),
		Delete: &types.Delete{Objects: identifiers},
	})
	if err != nil {
		return nil, &blobgate.StorageError{Bucket: bucket, Op: "delete_batch", Err: err}
	}

	deleted := make([]string, 0, len(result.Deleted))
	for _, d := range result.Deleted {
		if d.Key != nil {
			deleted = append(deleted, *d.Key)
		}
	}
	return deleted, nil
}

// List enumerates all objects in a bucket.
func (s *Store) List(ctx context.Context, bucket string) ([]blobgate.StoredObject, error) {
	var objects []blobgate.StoredObject

	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(bucket),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, &blobgate.StorageError{Bucket: bucket, Op: "list", Err: err}
		}
		for _, obj := range page.Contents {
			stored := blobgate.StoredObject{}
			if obj.Key != nil {
				stored.Key = *obj.Key
			}
			if obj.Size != nil {
				stored.Size = *obj.Size
			}
			if obj.LastModified != nil {
				stored.LastModified = *obj.LastModified
			}
			objects = append(objects, stored)
		}
	}
	return objects, nil
}
