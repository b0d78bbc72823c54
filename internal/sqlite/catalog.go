//go:build cgo

package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/mmcdole/vinyl/internal/collate"
	"github.com/mmcdole/vinyl/internal/domain"
)

// Catalog implements domain.CatalogAccessor over SQLite
type Catalog struct {
	db     *sql.DB
	keyer  *collate.Keyer
	logger *slog.Logger
}

// Open opens (creating if needed) the catalog database at path
func Open(path string, keyer *collate.Keyer, logger *slog.Logger) (*Catalog, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if keyer == nil {
		keyer = collate.New(collate.DefaultLanguage)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_foreign_keys=off")
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return &Catalog{db: db, keyer: keyer, logger: logger}, nil
}

func (c *Catalog) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// Execute runs spec and materializes the result. Failures are wrapped with
// domain.ErrCatalogAccess.
func (c *Catalog) Execute(ctx context.Context, spec domain.QuerySpec) (domain.Rows, error) {
	query, args, err := BuildSQL(spec)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrCatalogAccess, err)
	}

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrCatalogAccess, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrCatalogAccess, err)
	}

	var values [][]any
	for rows.Next() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		row := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range row {
			ptrs[i] = &row[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrCatalogAccess, err)
		}
		values = append(values, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrCatalogAccess, err)
	}

	return domain.NewRowSet(columns, values), nil
}

// IndexSongs inserts or updates songs, keyed by path, and refreshes the
// derived artist, album and genre tables.
func (c *Catalog) IndexSongs(ctx context.Context, songs []Song) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	ix := &indexer{tx: tx, keyer: c.keyer}
	for _, s := range songs {
		if err := ix.song(ctx, s); err != nil {
			return fmt.Errorf("failed to index %s: %w", s.Path, err)
		}
	}
	if err := refreshDerived(ctx, tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	c.logger.Debug("indexed songs", "count", len(songs))
	return nil
}

// Prune removes songs whose file no longer exists and returns how many
// were removed.
func (c *Catalog) Prune(ctx context.Context) (int, error) {
	stale, err := c.missingSongs(ctx)
	if err != nil {
		return 0, err
	}
	if len(stale) == 0 {
		return 0, nil
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	for _, id := range stale {
		for _, q := range []string{
			"DELETE FROM audio WHERE _id = ?",
			"DELETE FROM audio_genres_map WHERE audio_id = ?",
			"DELETE FROM playlist_members WHERE audio_id = ?",
		} {
			if _, err := tx.ExecContext(ctx, q, id); err != nil {
				return 0, err
			}
		}
	}
	if err := refreshDerived(ctx, tx); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}

	c.logger.Info("pruned catalog", "removed", len(stale))
	return len(stale), nil
}

// CreatePlaylist stores a playlist holding songIDs in order
func (c *Catalog) CreatePlaylist(ctx context.Context, name string, songIDs []int64) (int64, error) {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, "INSERT INTO playlists(name, date_added) VALUES(?, ?)", name, time.Now().Unix())
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	for i, songID := range songIDs {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO playlist_members(playlist_id, audio_id, play_order) VALUES(?, ?, ?)",
			id, songID, i); err != nil {
			return 0, err
		}
	}
	return id, tx.Commit()
}

// Count returns the number of indexed songs
func (c *Catalog) Count(ctx context.Context) (int, error) {
	var n int
	err := c.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM audio").Scan(&n)
	return n, err
}

type indexer struct {
	tx    *sql.Tx
	keyer *collate.Keyer
}

func (ix *indexer) song(ctx context.Context, s Song) error {
	artist := nameOrUnknown(s.Artist)
	album := nameOrUnknown(s.Album)
	title := strings.TrimSpace(s.Title)
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(s.Path), filepath.Ext(s.Path))
	}
	added := s.AddedAt
	if added == 0 {
		added = time.Now().Unix()
	}

	artistID, err := ix.getOrCreate(ctx,
		"SELECT _id FROM artists WHERE artist = ?", []any{artist},
		"INSERT INTO artists(artist, artist_key) VALUES(?, ?)", []any{artist, ix.keyer.Key(artist)})
	if err != nil {
		return err
	}
	albumID, err := ix.getOrCreate(ctx,
		"SELECT _id FROM albums WHERE album = ? AND artist_id = ?", []any{album, artistID},
		"INSERT INTO albums(album, album_key, artist, artist_key, artist_id) VALUES(?, ?, ?, ?, ?)",
		[]any{album, ix.keyer.Key(album), artist, ix.keyer.Key(artist), artistID})
	if err != nil {
		return err
	}

	_, err = ix.tx.ExecContext(ctx, `
		INSERT INTO audio(_data, title, title_key, artist, artist_key, artist_id,
			album, album_key, album_id, track, year, date_added, is_music)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 1)
		ON CONFLICT(_data) DO UPDATE SET
			title = excluded.title, title_key = excluded.title_key,
			artist = excluded.artist, artist_key = excluded.artist_key, artist_id = excluded.artist_id,
			album = excluded.album, album_key = excluded.album_key, album_id = excluded.album_id,
			track = excluded.track, year = excluded.year`,
		s.Path, title, ix.keyer.Key(title), artist, ix.keyer.Key(artist), artistID,
		album, ix.keyer.Key(album), albumID, s.Track, s.Year, added)
	if err != nil {
		return err
	}

	var songID int64
	if err := ix.tx.QueryRowContext(ctx, "SELECT _id FROM audio WHERE _data = ?", s.Path).Scan(&songID); err != nil {
		return err
	}
	if _, err := ix.tx.ExecContext(ctx, "DELETE FROM audio_genres_map WHERE audio_id = ?", songID); err != nil {
		return err
	}

	genre := strings.TrimSpace(s.Genre)
	if genre == "" {
		return nil
	}
	genreID, err := ix.getOrCreate(ctx,
		"SELECT _id FROM genres WHERE name = ?", []any{genre},
		"INSERT INTO genres(name) VALUES(?)", []any{genre})
	if err != nil {
		return err
	}
	_, err = ix.tx.ExecContext(ctx, "INSERT INTO audio_genres_map(audio_id, genre_id) VALUES(?, ?)", songID, genreID)
	return err
}

func (ix *indexer) getOrCreate(ctx context.Context, sel string, selArgs []any, ins string, insArgs []any) (int64, error) {
	var id int64
	err := ix.tx.QueryRowContext(ctx, sel, selArgs...).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return 0, err
	}
	res, err := ix.tx.ExecContext(ctx, ins, insArgs...)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// refreshDerived recomputes counts and drops artists, albums and genres
// without songs.
func refreshDerived(ctx context.Context, tx *sql.Tx) error {
	for _, q := range []string{
		`DELETE FROM albums WHERE _id NOT IN (SELECT DISTINCT album_id FROM audio)`,
		`DELETE FROM artists WHERE _id NOT IN (SELECT DISTINCT artist_id FROM audio)`,
		`DELETE FROM audio_genres_map WHERE audio_id NOT IN (SELECT _id FROM audio)`,
		`DELETE FROM genres WHERE _id NOT IN (SELECT DISTINCT genre_id FROM audio_genres_map)`,
		`UPDATE artists SET number_of_tracks = (SELECT COUNT(*) FROM audio WHERE audio.artist_id = artists._id)`,
		`UPDATE albums SET
			numsongs = (SELECT COUNT(*) FROM audio WHERE audio.album_id = albums._id),
			minyear = (SELECT MIN(year) FROM audio WHERE audio.album_id = albums._id AND year > 0)`,
	} {
		if _, err := tx.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("failed to refresh derived tables: %w", err)
		}
	}
	return nil
}

func nameOrUnknown(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return UnknownName
	}
	return s
}

// missingSongs returns the ids of songs whose file no longer exists
func (c *Catalog) missingSongs(ctx context.Context) ([]int64, error) {
	rows, err := c.db.QueryContext(ctx, "SELECT _id, _data FROM audio")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stale []int64
	for rows.Next() {
		var id int64
		var path string
		if err := rows.Scan(&id, &path); err != nil {
			return nil, err
		}
		if _, err := os.Stat(path); os.IsNotExist(err) {
			stale = append(stale, id)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return stale, nil
}
