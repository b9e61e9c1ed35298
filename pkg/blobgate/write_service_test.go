package blobgate_test

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blobgate/blobgate/pkg/blobgate"
	memorystorage "github.com/blobgate/blobgate/pkg/blobgate/storage/memory"
)

func uploadBody(key string, content []byte) string {
	return fmt.Sprintf(`{"key":%q,"content":%q}`, key, base64.StdEncoding.EncodeToString(content))
}

func TestWriteServiceStoresObject(t *testing.T) {
	store := memorystorage.New()
	svc := blobgate.NewWriteService(store, testBucket)
	ctx := context.Background()
	payload := []byte("file contents")

	resp := svc.Handle(ctx, blobgate.RequestEnvelope{
		HTTPMethod: "POST",
		Body:       uploadBody("doc.txt", payload),
	})

	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, "Object uploaded successfully", resp.Body)
	assert.False(t, resp.IsBase64Encoded)

	stored, err := store.Get(ctx, testBucket, "doc.txt")
	require.NoError(t, err)
	assert.Equal(t, payload, stored)

	meta, err := store.Head(ctx, testBucket, "doc.txt")
	require.NoError(t, err)
	assert.Equal(t, "text/plain", meta.ContentType)
}

func TestWriteServiceOverwritesExistingObject(t *testing.T) {
	store := memorystorage.New()
	svc := blobgate.NewWriteService(store, testBucket)
	ctx := context.Background()
	require.NoError(t, store.Put(ctx, testBucket, "doc.txt", []byte("old"), "text/plain"))

	resp := svc.Handle(ctx, blobgate.RequestEnvelope{
		HTTPMethod: "POST",
		Body:       uploadBody("doc.txt", []byte("new")),
	})

	assert.Equal(t, 200, resp.StatusCode)
	stored, err := store.Get(ctx, testBucket, "doc.txt")
	require.NoError(t, err)
	assert.Equal(t, []byte("new"), stored)
}

func TestWriteServiceRequiresBothFields(t *testing.T) {
	store := memorystorage.New()
	svc := blobgate.NewWriteService(store, testBucket)

	tests := []struct {
		name    string
		body    string
		wantMsg string
	}{
		{name: "missing content", body: `{"key":"a.png"}`, wantMsg: "content"},
		{name: "missing key", body: `{"content":"aGVsbG8="}`, wantMsg: "key"},
		{name: "empty body", body: "{}", wantMsg: "content"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := svc.Handle(context.Background(), blobgate.RequestEnvelope{HTTPMethod: "POST", Body: tt.body})
			assert.Equal(t, 400, resp.StatusCode)
			assert.Contains(t, resp.Body, tt.wantMsg)
		})
	}
}

func TestWriteServiceRejectsInvalidBase64Content(t *testing.T) {
	store := memorystorage.New()
	svc := blobgate.NewWriteService(store, testBucket)

	resp := svc.Handle(context.Background(), blobgate.RequestEnvelope{
		HTTPMethod: "POST",
		Body:       `{"key":"a.png","content":"%%% not base64 %%%"}`,
	})

	assert.Equal(t, 500, resp.StatusCode)
	assert.Contains(t, resp.Body, "decode")
}

func TestWriteServiceUnwrapsEntryPointBody(t *testing.T) {
	store := memorystorage.New()
	svc := blobgate.NewWriteService(store, testBucket)
	ctx := context.Background()

	inner := uploadBody("wrapped.txt", []byte("payload"))
	wrapped := fmt.Sprintf(`{"httpMethod":"POST","body":%q}`, inner)

	resp := svc.Handle(ctx, blobgate.RequestEnvelope{HTTPMethod: "POST", Body: wrapped})

	assert.Equal(t, 200, resp.StatusCode)
	stored, err := store.Get(ctx, testBucket, "wrapped.txt")
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), stored)
}

// recordingSink records notifications and optionally fails.
type recordingSink struct {
	stored []string
	err    error
}

func (s *recordingSink) ObjectStored(_ context.Context, bucket, key string) error {
	s.stored = append(s.stored, bucket+"/"+key)
	return s.err
}

func TestWriteServiceNotifiesEventSink(t *testing.T) {
	store := memorystorage.New()
	sink := &recordingSink{}
	svc := blobgate.NewWriteService(store, testBucket, blobgate.WithEventSink(sink))

	resp := svc.Handle(context.Background(), blobgate.RequestEnvelope{
		HTTPMethod: "POST",
		Body:       uploadBody("photo.png", []byte("img")),
	})

	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, []string{testBucket + "/photo.png"}, sink.stored)
}

func TestWriteServiceSinkFailureDoesNotFailUpload(t *testing.T) {
	store := memorystorage.New()
	sink := &recordingSink{err: errors.New("sink down")}
	svc := blobgate.NewWriteService(store, testBucket, blobgate.WithEventSink(sink))

	resp := svc.Handle(context.Background(), blobgate.RequestEnvelope{
		HTTPMethod: "POST",
		Body:       uploadBody("photo.png", []byte("img")),
	})

	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, "Object uploaded successfully", resp.Body)
}

func TestUploadThenFetchRoundTrip(t *testing.T) {
	store := memorystorage.New()
	writeSvc := blobgate.NewWriteService(store, testBucket)
	readSvc := blobgate.NewReadService(store, testBucket)
	ctx := context.Background()

	tests := []struct {
		key        string
		content    []byte
		wantBase64 bool
	}{
		{key: "binary.png", content: []byte{0x00, 0x01, 0xff}, wantBase64: true},
		{key: "plain.txt", content: []byte("just text"), wantBase64: false},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			up := writeSvc.Handle(ctx, blobgate.RequestEnvelope{HTTPMethod: "POST", Body: uploadBody(tt.key, tt.content)})
			require.Equal(t, 200, up.StatusCode)

			down := readSvc.Handle(ctx, blobgate.RequestEnvelope{HTTPMethod: "PUT", Body: fmt.Sprintf(`{"key":%q}`, tt.key)})
			require.Equal(t, 200, down.StatusCode)
			assert.Equal(t, tt.wantBase64, down.IsBase64Encoded)

			got := []byte(down.Body)
			if tt.wantBase64 {
				decoded, err := base64.StdEncoding.DecodeString(down.Body)
				require.NoError(t, err)
				got = decoded
			}
			assert.Equal(t, tt.content, got)
		})
	}
}
