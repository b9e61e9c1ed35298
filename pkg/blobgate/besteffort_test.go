package blobgate_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/blobgate/blobgate/pkg/blobgate"
)

func TestTryBestEffortSwallowsError(t *testing.T) {
	outcome := blobgate.TryBestEffort(nil, "delete_derived", func() error {
		return errors.New("bucket unavailable")
	})

	assert.True(t, outcome.Failed())
	assert.Equal(t, "delete_derived", outcome.Op)
	assert.EqualError(t, outcome.Err, "bucket unavailable")
}

func TestTryBestEffortSuccess(t *testing.T) {
	ran := false
	outcome := blobgate.TryBestEffort(nil, "notify", func() error {
		ran = true
		return nil
	})

	assert.True(t, ran)
	assert.False(t, outcome.Failed())
	assert.NoError(t, outcome.Err)
}
