package blobgate_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blobgate/blobgate/pkg/blobgate"
	memorystorage "github.com/blobgate/blobgate/pkg/blobgate/storage/memory"
)

const testBucket = "test-bucket"

func setupReadService(t *testing.T) (*blobgate.ReadService, *memorystorage.Store) {
	t.Helper()
	store := memorystorage.New()
	svc := blobgate.NewReadService(store, testBucket)
	return svc, store
}

func TestReadServiceListsOnFormatParam(t *testing.T) {
	svc, store := setupReadService(t)
	ctx := context.Background()
	require.NoError(t, store.Put(ctx, testBucket, "a.png", []byte("img"), "image/png"))
	require.NoError(t, store.Put(ctx, testBucket, "b.txt", []byte("text"), "text/plain"))

	resp := svc.Handle(ctx, blobgate.RequestEnvelope{
		HTTPMethod:  "GET",
		QueryParams: map[string]string{"format": "json"},
	})

	assert.Equal(t, 200, resp.StatusCode)
	assert.False(t, resp.IsBase64Encoded)
	assert.Equal(t, "application/json", resp.Headers["Content-Type"])

	var objects []blobgate.StoredObject
	require.NoError(t, json.Unmarshal([]byte(resp.Body), &objects))
	require.Len(t, objects, 2)
	assert.Equal(t, "a.png", objects[0].Key)
	assert.Equal(t, int64(3), objects[0].Size)
	assert.Equal(t, "b.txt", objects[1].Key)
}

func TestReadServiceListsOnJSONContentType(t *testing.T) {
	svc, _ := setupReadService(t)

	resp := svc.Handle(context.Background(), blobgate.RequestEnvelope{
		HTTPMethod: "GET",
		Headers:    map[string]string{"content-type": "Application/JSON; charset=utf-8"},
	})

	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, "[]", resp.Body)
}

func TestReadServiceServesDefaultKeyToBrowsers(t *testing.T) {
	svc, store := setupReadService(t)
	ctx := context.Background()
	require.NoError(t, store.Put(ctx, testBucket, "index.html", []byte("<html></html>"), "text/html"))

	tests := []struct {
		name    string
		headers map[string]string
	}{
		{name: "explicit text/html accept", headers: map[string]string{"Accept": "text/html,application/xhtml+xml"}},
		{name: "no signal at all", headers: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := svc.Handle(ctx, blobgate.RequestEnvelope{HTTPMethod: "GET", Headers: tt.headers})
			assert.Equal(t, 200, resp.StatusCode)
			assert.Equal(t, "<html></html>", resp.Body)
			assert.False(t, resp.IsBase64Encoded)
			assert.Equal(t, "text/html", resp.Headers["Content-Type"])
		})
	}
}

func TestReadServiceFetchesRequestedKey(t *testing.T) {
	svc, store := setupReadService(t)
	ctx := context.Background()
	payload := []byte{0x89, 0x50, 0x4e, 0x47}
	require.NoError(t, store.Put(ctx, testBucket, "photo.png", payload, "image/png"))

	resp := svc.Handle(ctx, blobgate.RequestEnvelope{
		HTTPMethod: "PUT",
		Body:       `{"key":"photo.png"}`,
	})

	assert.Equal(t, 200, resp.StatusCode)
	assert.True(t, resp.IsBase64Encoded)
	assert.Equal(t, "image/png", resp.Headers["Content-Type"])

	decoded, err := base64.StdEncoding.DecodeString(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, payload, decoded)
}

func TestReadServiceUnwrapsEntryPointBody(t *testing.T) {
	svc, store := setupReadService(t)
	ctx := context.Background()
	require.NoError(t, store.Put(ctx, testBucket, "notes.txt", []byte("hello"), "text/plain"))

	resp := svc.Handle(ctx, blobgate.RequestEnvelope{
		HTTPMethod: "PUT",
		Body:       `{"httpMethod":"PUT","body":"{\"key\":\"notes.txt\"}"}`,
	})

	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, "hello", resp.Body)
	assert.False(t, resp.IsBase64Encoded)
}

func TestReadServiceReturns404ForMissingObject(t *testing.T) {
	svc, _ := setupReadService(t)

	resp := svc.Handle(context.Background(), blobgate.RequestEnvelope{
		HTTPMethod: "PUT",
		Body:       `{"key":"missing.png"}`,
	})

	assert.Equal(t, 404, resp.StatusCode)
	assert.Contains(t, resp.Body, "error")
}

// oversizeStore reports a huge object from Head and fails the test if the
// service attempts a transfer anyway.
type oversizeStore struct {
	t *testing.T
	*memorystorage.Store
}

func (s *oversizeStore) Head(ctx context.Context, bucket, key string) (*blobgate.ObjectMeta, error) {
	return &blobgate.ObjectMeta{Key: key, Size: 10 * 1024 * 1024}, nil
}

func (s *oversizeStore) Get(ctx context.Context, bucket, key string) ([]byte, error) {
	s.t.Fatal("Get must not be called for an oversize object")
	return nil, errors.New("unreachable")
}

func TestReadServiceRejectsOversizeObjectBeforeTransfer(t *testing.T) {
	store := &oversizeStore{t: t, Store: memorystorage.New()}
	svc := blobgate.NewReadService(store, testBucket)

	resp := svc.Handle(context.Background(), blobgate.RequestEnvelope{
		HTTPMethod: "PUT",
		Body:       `{"key":"huge.png"}`,
	})

	assert.Equal(t, 413, resp.StatusCode)
}

// failingListStore fails enumeration to exercise the degraded list path.
type failingListStore struct {
	*memorystorage.Store
}

func (s *failingListStore) List(ctx context.Context, bucket string) ([]blobgate.StoredObject, error) {
	return nil, errors.New("store unavailable")
}

func TestReadServiceListFailureDegradesToEmptyArray(t *testing.T) {
	store := &failingListStore{Store: memorystorage.New()}
	svc := blobgate.NewReadService(store, testBucket)

	resp := svc.Handle(context.Background(), blobgate.RequestEnvelope{
		HTTPMethod:  "GET",
		QueryParams: map[string]string{"format": "json"},
	})

	assert.Equal(t, 500, resp.StatusCode)
	assert.Equal(t, "[]", resp.Body)
}

func TestReadServiceCORSHeadersPresent(t *testing.T) {
	svc, _ := setupReadService(t)

	resp := svc.Handle(context.Background(), blobgate.RequestEnvelope{
		HTTPMethod: "PUT",
		Body:       `{"key":"missing.png"}`,
	})

	assert.Equal(t, "*", resp.Headers["Access-Control-Allow-Origin"])
	assert.Equal(t, "GET, POST, PUT, DELETE, OPTIONS", resp.Headers["Access-Control-Allow-Methods"])
	assert.Equal(t, "Content-Type, Authorization", resp.Headers["Access-Control-Allow-Headers"])
}
