package scan

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/vinyl/internal/sqlite"
)

type fakeIndexer struct {
	mu      sync.Mutex
	batches [][]sqlite.Song
	err     error
}

func (f *fakeIndexer) IndexSongs(ctx context.Context, songs []sqlite.Song) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.batches = append(f.batches, append([]sqlite.Song(nil), songs...))
	return nil
}

func (f *fakeIndexer) paths() []string {
	var out []string
	for _, b := range f.batches {
		for _, s := range b {
			out = append(out, s.Path)
		}
	}
	sort.Strings(out)
	return out
}

// writeUntagged creates a file large enough for the tag reader to inspect
func writeUntagged(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, bytes.Repeat([]byte("x"), 256), 0644))
}

func TestIsAudio(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"song.mp3", true},
		{"SONG.FLAC", true},
		{"cover.jpg", false},
		{"notes", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, IsAudio(tt.path))
		})
	}
}

func TestReadSong_Untagged(t *testing.T) {
	path := filepath.Join(t.TempDir(), "track.mp3")
	writeUntagged(t, path)

	song, err := ReadSong(path)
	require.NoError(t, err)
	assert.Equal(t, path, song.Path)
	assert.Empty(t, song.Title)
	assert.NotZero(t, song.AddedAt)
}

func TestReadSong_Missing(t *testing.T) {
	_, err := ReadSong(filepath.Join(t.TempDir(), "missing.mp3"))
	assert.Error(t, err)
}

func TestScanner_Scan(t *testing.T) {
	root := t.TempDir()
	a := filepath.Join(root, "a", "one.mp3")
	b := filepath.Join(root, "b", "two.flac")
	c := filepath.Join(root, "three.ogg")
	writeUntagged(t, a)
	writeUntagged(t, b)
	writeUntagged(t, c)
	require.NoError(t, os.WriteFile(filepath.Join(root, "cover.jpg"), []byte("img"), 0644))

	idx := &fakeIndexer{}
	res, err := New(idx, Options{Workers: 2, BatchSize: 2}, nil).Scan(context.Background(), root)
	require.NoError(t, err)

	assert.Equal(t, 3, res.Found)
	assert.Equal(t, 3, res.Indexed)
	assert.Equal(t, 0, res.Failed)
	assert.Len(t, idx.batches, 2)

	want := []string{a, b, c}
	sort.Strings(want)
	assert.Equal(t, want, idx.paths())
}

func TestScanner_IndexError(t *testing.T) {
	root := t.TempDir()
	writeUntagged(t, filepath.Join(root, "one.mp3"))

	boom := errors.New("boom")
	_, err := New(&fakeIndexer{err: boom}, Options{}, nil).Scan(context.Background(), root)
	assert.ErrorIs(t, err, boom)
}
