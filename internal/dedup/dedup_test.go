package dedup

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventKey(t *testing.T) {
	start := time.Date(2025, time.November, 12, 11, 0, 0, 0, time.UTC)

	got := EventKey("Pre-Placement Talk - XYZ Corp", start, "t1")
	assert.Equal(t, "preplacementtalkxyzcorp|1762945200000|t1", got)
}

func TestEventKey_TruncatesLongSubjects(t *testing.T) {
	start := time.Date(2025, time.November, 12, 11, 0, 0, 0, time.UTC)

	subject := "Re: aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"

	got := EventKey(subject, start, "t1")
	assert.Equal(t, "reaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa|1762945200000|t1", got)
}

func TestEventKey_Deterministic(t *testing.T) {
	start := time.Now()

	a := EventKey("Aptitude Test!", start, "thread-9")
	b := EventKey("aptitude test", start, "thread-9")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, EventKey("aptitude test", start, "thread-8"))
	assert.NotEqual(t, a, EventKey("aptitude test", start.Add(time.Minute), "thread-9"))
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	ok, err := s.Has(ctx, "k1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Put(ctx, "k1", time.Now()))

	ok, err = s.Has(ctx, "k1")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMemoryStore_DeleteOlderThan(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	now := time.Now()
	require.NoError(t, s.Put(ctx, "old", now.Add(-72*time.Hour)))
	require.NoError(t, s.Put(ctx, "fresh", now))

	removed, err := s.DeleteOlderThan(ctx, now.Add(-time.Hour))
	require.NoError(t, err)
	assert.EqualValues(t, 1, removed)

	ok, _ := s.Has(ctx, "old")
	assert.False(t, ok)

	ok, _ = s.Has(ctx, "fresh")
	assert.True(t, ok)
}
