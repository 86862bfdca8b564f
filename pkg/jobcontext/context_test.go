package jobcontext

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBeginCarriesMetadata(t *testing.T) {
	jobID := uuid.New()
	ctx, cancel := Begin(context.Background(), jobID, 3, time.Minute)
	defer cancel()

	gotID, ok := JobID(ctx)
	require.True(t, ok)
	assert.Equal(t, jobID, gotID)
	assert.Equal(t, 3, WorkerID(ctx))

	md := GetMetadata(ctx)
	assert.Equal(t, jobID, md.JobID)
	assert.Equal(t, 3, md.WorkerID)
	assert.False(t, md.StartTime.IsZero())
}

func TestRunRecoversPanic(t *testing.T) {
	err := Run(context.Background(), func(context.Context) error {
		panic("inference blew up")
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "panic recovered")
	assert.Contains(t, err.Error(), "inference blew up")
}

func TestRunPropagatesError(t *testing.T) {
	wantErr := errors.New("plain failure")
	err := Run(context.Background(), func(context.Context) error {
		return wantErr
	})
	assert.ErrorIs(t, err, wantErr)
}

func TestRunCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := Run(ctx, func(context.Context) error {
		called = true
		return nil
	})
	require.Error(t, err)
	assert.False(t, called)
}

func TestIsRetryableError(t *testing.T) {
	assert.False(t, IsRetryableError(nil))
	assert.False(t, IsRetryableError(errors.New("invalid audio format")))

	assert.True(t, IsRetryableError(errors.New("connection refused")))
	assert.True(t, IsRetryableError(errors.New("rate limit exceeded")))
	assert.True(t, IsRetryableError(errors.New("503 service unavailable")))
	assert.True(t, IsRetryableError(errors.New("i/o timeout")))
}

func TestCalculateBackoff(t *testing.T) {
	base := time.Second
	assert.Equal(t, time.Second, CalculateBackoff(0, base))
	assert.Equal(t, 2*time.Second, CalculateBackoff(1, base))
	assert.Equal(t, 4*time.Second, CalculateBackoff(2, base))
	assert.Equal(t, 60*time.Second, CalculateBackoff(10, base))
	assert.Equal(t, time.Second, CalculateBackoff(-5, base))
}
