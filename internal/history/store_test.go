package history

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kali-launcher/internal/logger"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "history.db"), logger.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	clock := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return s
}

func TestRecordAndFinish(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	id, err := s.Record(ctx, "item-1", "nmap", "nmap -sV", "terminal")
	require.NoError(t, err)

	entries, err := s.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.False(t, entries[0].Finished)
	assert.Equal(t, "nmap", entries[0].ItemName)

	require.NoError(t, s.Finish(ctx, id, Outcome{ExitCode: 2, Duration: 1500 * time.Millisecond}))

	entries, err = s.Recent(ctx, 10)
	require.NoError(t, err)
	assert.True(t, entries[0].Finished)
	assert.Equal(t, 2, entries[0].ExitCode)
	assert.Equal(t, 1500*time.Millisecond, entries[0].Duration)

	err = s.Finish(ctx, 999, Outcome{})
	assert.True(t, errors.Is(err, sql.ErrNoRows))
}

func TestRecentNewestFirstWithLimit(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	for _, name := range []string{"a", "b", "c"} {
		_, err := s.Record(ctx, name, name, "true", "direct")
		require.NoError(t, err)
	}

	entries, err := s.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "c", entries[0].ItemName)
	assert.Equal(t, "b", entries[1].ItemName)
}

func TestStats(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	ok, err := s.Record(ctx, "item-1", "nmap", "nmap", "terminal")
	require.NoError(t, err)
	require.NoError(t, s.Finish(ctx, ok, Outcome{}))

	bad, err := s.Record(ctx, "item-1", "nmap", "nmap", "terminal")
	require.NoError(t, err)
	require.NoError(t, s.Finish(ctx, bad, Outcome{ExitCode: -1, Err: errors.New("killed")}))

	st, err := s.Stats(ctx, "item-1")
	require.NoError(t, err)
	assert.Equal(t, 2, st.Count)
	assert.Equal(t, 1, st.Failures)
	assert.False(t, st.Last.IsZero())

	st, err = s.Stats(ctx, "unknown")
	require.NoError(t, err)
	assert.Zero(t, st.Count)
	assert.True(t, st.Last.IsZero())
}

func TestReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "history.db")

	s, err := Open(path, logger.Nop())
	require.NoError(t, err)
	_, err = s.Record(ctx, "1", "x", "true", "direct")
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(path, logger.Nop())
	require.NoError(t, err)
	defer s.Close()

	var version int
	require.NoError(t, s.db.QueryRow("PRAGMA user_version").Scan(&version))
	assert.Equal(t, currentSchemaVersion, version)

	entries, err := s.Recent(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	require.NoError(t, s.Clear(ctx))
	entries, err = s.Recent(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
