// Package scan walks a music directory, reads the tags of every audio file
// and hands the songs to the catalog in batches.
package scan

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/dhowden/tag"

	"github.com/mmcdole/vinyl/internal/sqlite"
)

const defaultBatchSize = 500

// Extensions lists the file extensions treated as audio
var Extensions = map[string]bool{
	".mp3":  true,
	".m4a":  true,
	".ogg":  true,
	".oga":  true,
	".opus": true,
	".flac": true,
}

// IsAudio reports whether path has an audio extension
func IsAudio(path string) bool {
	return Extensions[strings.ToLower(filepath.Ext(path))]
}

// Indexer stores scanned songs
type Indexer interface {
	IndexSongs(ctx context.Context, songs []sqlite.Song) error
}

// Options tunes a scan
type Options struct {
	Workers   int       // tag readers, defaults to the number of CPUs
	BatchSize int       // songs per IndexSongs call
	Since     time.Time // skip files not modified after Since when set
}

// Result summarizes a scan
type Result struct {
	Found   int
	Indexed int
	Failed  int
	Elapsed time.Duration
}

// Scanner populates the catalog from the filesystem
type Scanner struct {
	indexer Indexer
	opts    Options
	logger  *slog.Logger
}

// New creates a scanner
func New(indexer Indexer, opts Options, logger *slog.Logger) *Scanner {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = defaultBatchSize
	}
	return &Scanner{indexer: indexer, opts: opts, logger: logger}
}

// Scan indexes every audio file below root
func (s *Scanner) Scan(ctx context.Context, root string) (Result, error) {
	start := time.Now()
	var res Result
	var mu sync.Mutex // protects res counters

	paths := make(chan string, 100)
	songs := make(chan sqlite.Song, 100)

	// Discovery
	walkErr := make(chan error, 1)
	go func() {
		defer close(paths)
		walkErr <- filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				s.logger.Warn("failed to read directory entry", "path", path, "error", err)
				return nil
			}
			if d.IsDir() || !IsAudio(path) {
				return nil
			}
			if !s.opts.Since.IsZero() {
				if info, err := d.Info(); err == nil && !info.ModTime().After(s.opts.Since) {
					return nil
				}
			}
			mu.Lock()
			res.Found++
			mu.Unlock()
			select {
			case paths <- path:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
	}()

	// Tag readers
	var workers sync.WaitGroup
	for i := 0; i < s.opts.Workers; i++ {
		workers.Add(1)
		go func() {
			defer workers.Done()
			for path := range paths {
				song, err := ReadSong(path)
				if err != nil {
					s.logger.Debug("failed to read tags", "path", path, "error", err)
					mu.Lock()
					res.Failed++
					mu.Unlock()
					continue
				}
				songs <- song
			}
		}()
	}
	go func() {
		workers.Wait()
		close(songs)
	}()

	// Writer
	var indexErr error
	batch := make([]sqlite.Song, 0, s.opts.BatchSize)
	flush := func() {
		if len(batch) == 0 || indexErr != nil {
			batch = batch[:0]
			return
		}
		if err := s.indexer.IndexSongs(ctx, batch); err != nil {
			indexErr = err
		} else {
			mu.Lock()
			res.Indexed += len(batch)
			mu.Unlock()
		}
		batch = batch[:0]
	}
	for song := range songs {
		batch = append(batch, song)
		if len(batch) >= s.opts.BatchSize {
			flush()
		}
	}
	flush()

	res.Elapsed = time.Since(start)
	if err := <-walkErr; err != nil {
		return res, err
	}
	if indexErr != nil {
		return res, indexErr
	}
	s.logger.Info("scan complete", "root", root, "found", res.Found, "indexed", res.Indexed,
		"failed", res.Failed, "elapsed", res.Elapsed)
	return res, nil
}

// ReadSong reads the tags of one file. Files without tags are returned
// with only their path and modification time set.
func ReadSong(path string) (sqlite.Song, error) {
	f, err := os.Open(path)
	if err != nil {
		return sqlite.Song{}, err
	}
	defer f.Close()

	song := sqlite.Song{Path: path}
	if info, err := f.Stat(); err == nil {
		song.AddedAt = info.ModTime().Unix()
	}

	m, err := tag.ReadFrom(f)
	if errors.Is(err, tag.ErrNoTagsFound) {
		return song, nil
	}
	if err != nil {
		return sqlite.Song{}, err
	}

	song.Title = m.Title()
	song.Artist = m.Artist()
	if albumArtist := m.AlbumArtist(); albumArtist != "" {
		song.Artist = albumArtist
	}
	song.Album = m.Album()
	song.Genre = m.Genre()
	song.Track, _ = m.Track()
	song.Year = m.Year()
	return song, nil
}
