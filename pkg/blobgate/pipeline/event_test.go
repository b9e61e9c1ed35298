package pipeline_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blobgate/blobgate/pkg/blobgate/pipeline"
)

func TestParseS3EventSingleRecord(t *testing.T) {
	payload := []byte(`{
		"Records": [
			{"s3": {"bucket": {"name": "originals"}, "object": {"key": "photo.png"}}}
		]
	}`)

	events, err := pipeline.ParseS3Event(payload)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "originals", events[0].Bucket)
	assert.Equal(t, "photo.png", events[0].Key)
}

func TestParseS3EventDecodesURLEncodedKeys(t *testing.T) {
	payload := []byte(`{
		"Records": [
			{"s3": {"bucket": {"name": "originals"}, "object": {"key": "holiday+snaps%2Fbeach.jpg"}}}
		]
	}`)

	events, err := pipeline.ParseS3Event(payload)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "holiday snaps/beach.jpg", events[0].Key)
}

func TestParseS3EventMultipleRecords(t *testing.T) {
	payload := []byte(`{
		"Records": [
			{"s3": {"bucket": {"name": "originals"}, "object": {"key": "a.png"}}},
			{"s3": {"bucket": {"name": "originals"}, "object": {"key": "b.jpg"}}}
		]
	}`)

	events, err := pipeline.ParseS3Event(payload)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "a.png", events[0].Key)
	assert.Equal(t, "b.jpg", events[1].Key)
}

func TestParseS3EventRejectsBadInput(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{name: "invalid JSON", payload: `{"Records": [`},
		{name: "no records", payload: `{"Records": []}`},
		{name: "missing records field", payload: `{}`},
		{name: "undecodable key", payload: `{"Records": [{"s3": {"bucket": {"name": "b"}, "object": {"key": "bad%zz"}}}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := pipeline.ParseS3Event([]byte(tt.payload))
			assert.Error(t, err)
		})
	}
}
