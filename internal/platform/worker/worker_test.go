package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoop_RunsUntilCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	calls := 0

	err := Loop(ctx, Config{
		Name:         "test",
		PollInterval: time.Millisecond,
		Process: func(context.Context) error {
			calls++
			if calls == 3 {
				cancel()
			}

			return nil
		},
	})

	require.ErrorIs(t, err, context.Canceled)
	assert.GreaterOrEqual(t, calls, 3)
}

func TestLoop_OnErrorStopsWhenFalse(t *testing.T) {
	boom := errors.New("boom")
	calls := 0

	err := Loop(context.Background(), Config{
		Name:         "test",
		PollInterval: time.Millisecond,
		Process: func(context.Context) error {
			calls++
			return boom
		},
		OnError: func(err error) bool {
			return false
		},
	})

	require.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
}

func TestLoop_OnErrorContinuesWhenTrue(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	boom := errors.New("boom")
	calls := 0

	err := Loop(ctx, Config{
		Name:         "test",
		PollInterval: time.Millisecond,
		Process: func(context.Context) error {
			calls++
			if calls == 2 {
				cancel()
			}

			return boom
		},
		OnError: func(error) bool { return true },
	})

	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 2, calls)
}

func TestWait_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Wait(ctx, time.Minute)

	require.ErrorIs(t, err, context.Canceled)
}

func TestWait_ZeroDuration(t *testing.T) {
	require.NoError(t, Wait(context.Background(), 0))
}
