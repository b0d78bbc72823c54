package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(t *testing.T, s *PlayCounts, id int64, times int) {
	t.Helper()
	for i := 0; i < times; i++ {
		require.NoError(t, s.RecordPlay(id))
	}
}

func TestPlayCounts_MemoryOnly(t *testing.T) {
	s, err := NewPlayCounts("", 0)
	require.NoError(t, err)
	defer s.Close()

	_, ok := s.Count(1)
	assert.False(t, ok)

	record(t, s, 1, 2)
	n, ok := s.Count(1)
	assert.True(t, ok)
	assert.Equal(t, int64(2), n)
}

func TestPlayCounts_TopSongsOrder(t *testing.T) {
	s, err := NewPlayCounts("", 0)
	require.NoError(t, err)

	record(t, s, 9, 1)
	record(t, s, 5, 3)
	record(t, s, 2, 2)
	record(t, s, 4, 2)

	ids, err := s.TopSongs()
	require.NoError(t, err)
	assert.Equal(t, []int64{5, 2, 4, 9}, ids)
}

func TestPlayCounts_TopSongsLimit(t *testing.T) {
	s, err := NewPlayCounts("", 2)
	require.NoError(t, err)

	record(t, s, 1, 1)
	record(t, s, 2, 2)
	record(t, s, 3, 3)

	ids, err := s.TopSongs()
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 2}, ids)
}

func TestPlayCounts_EmptyLedger(t *testing.T) {
	s, err := NewPlayCounts("", 0)
	require.NoError(t, err)

	ids, err := s.TopSongs()
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestPlayCounts_Forget(t *testing.T) {
	s, err := NewPlayCounts("", 0)
	require.NoError(t, err)

	record(t, s, 1, 1)
	require.NoError(t, s.Forget(1))
	_, ok := s.Count(1)
	assert.False(t, ok)
}

func TestPlayCounts_Persistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "playcounts.db")

	s, err := NewPlayCounts(path, 0)
	require.NoError(t, err)
	record(t, s, 7, 3)
	record(t, s, 8, 1)
	record(t, s, 10, 1)
	require.NoError(t, s.Forget(10))
	require.NoError(t, s.Close())

	s, err = NewPlayCounts(path, 0)
	require.NoError(t, err)
	defer s.Close()

	n, ok := s.Count(7)
	assert.True(t, ok)
	assert.Equal(t, int64(3), n)
	_, ok = s.Count(10)
	assert.False(t, ok)

	ids, err := s.TopSongs()
	require.NoError(t, err)
	assert.Equal(t, []int64{7, 8}, ids)
}
