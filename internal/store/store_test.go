package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func open(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "sub", "events.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestAddAndRecent(t *testing.T) {
	s := open(t)
	ctx := context.Background()
	base := time.UnixMilli(1_700_000_000_000)

	for i, ev := range []Event{
		{At: base, Key: 6, State: 1},
		{At: base.Add(10 * time.Millisecond), Key: 6, State: 3},
		{At: base.Add(20 * time.Millisecond), Key: 11, State: 1},
	} {
		got, err := s.Add(ctx, ev)
		require.NoError(t, err)
		assert.Equal(t, int64(i+1), got.ID)
	}

	recent, err := s.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, uint8(11), recent[0].Key)
	assert.Equal(t, uint8(3), recent[1].State)
	assert.True(t, recent[1].At.Equal(base.Add(10*time.Millisecond)))
}

func TestPressesAndPrune(t *testing.T) {
	s := open(t)
	ctx := context.Background()
	old := time.Now().Add(-48 * time.Hour)

	for _, ev := range []Event{
		{At: old, Key: 1, State: 1},
		{Key: 2, State: 1},
		{Key: 2, State: 1},
		{Key: 2, State: 3},
	} {
		_, err := s.Add(ctx, ev)
		require.NoError(t, err)
	}

	counts, err := s.Presses(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []KeyCount{{Key: 2, Presses: 2}, {Key: 1, Presses: 1}}, counts)

	n, err := s.Prune(ctx, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	recent, err := s.Recent(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, recent, 3)
}

func TestOpenEmptyPath(t *testing.T) {
	_, err := Open(context.Background(), "")
	assert.Error(t, err)
}
