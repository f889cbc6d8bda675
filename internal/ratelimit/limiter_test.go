package ratelimit_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"decoder/internal/ratelimit"
)

func TestLimiter_Burst(t *testing.T) {
	l := ratelimit.New(1, 2)
	assert.True(t, l.Allow())
	assert.True(t, l.Allow())
	assert.False(t, l.Allow())
}

func TestLimiter_Backoff(t *testing.T) {
	l := ratelimit.New(100, 10)
	l.Backoff(time.Hour)
	assert.False(t, l.Allow())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, l.Wait(ctx), context.DeadlineExceeded)
}

func TestLimiter_BackoffNeverShortens(t *testing.T) {
	l := ratelimit.New(100, 10)
	l.Backoff(time.Hour)
	l.Backoff(time.Millisecond)
	assert.False(t, l.Allow())
}

func TestLimiter_Wait(t *testing.T) {
	l := ratelimit.New(1000, 1)
	assert.NoError(t, l.Wait(context.Background()))
}
