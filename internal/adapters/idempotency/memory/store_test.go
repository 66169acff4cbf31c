package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestStore_BeginCompleteReplay(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	s := New()

	payload, started, err := s.Begin(ctx, "k", time.Minute)
	req.NoError(err)
	req.True(started)
	req.Nil(payload)

	payload, started, err = s.Begin(ctx, "k", time.Minute)
	req.NoError(err)
	req.False(started, "second begin while in progress")
	req.Nil(payload)

	req.NoError(s.Complete(ctx, "k", []byte("result"), time.Minute))

	payload, started, err = s.Begin(ctx, "k", time.Minute)
	req.NoError(err)
	req.False(started)
	req.Equal([]byte("result"), payload)
}

func TestStore_AbortReleasesKey(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	s := New()

	_, started, err := s.Begin(ctx, "k", time.Minute)
	req.NoError(err)
	req.True(started)

	req.NoError(s.Abort(ctx, "k"))

	_, started, err = s.Begin(ctx, "k", time.Minute)
	req.NoError(err)
	req.True(started)
}

func TestStore_ExpiredEntryCanBeReused(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s := New()
	s.now = func() time.Time { return now }

	req.NoError(s.Complete(ctx, "k", []byte("old"), time.Second))

	now = now.Add(2 * time.Second)
	payload, started, err := s.Begin(ctx, "k", time.Second)
	req.NoError(err)
	req.True(started)
	req.Nil(payload)
}
