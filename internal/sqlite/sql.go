// Package sqlite implements the catalog accessor over a SQLite database.
// The database holds the songs found by the scanner plus the artist, album
// and genre tables derived from them.
package sqlite

import (
	"fmt"
	"strings"

	"github.com/mmcdole/vinyl/internal/domain"
)

// Song is one audio file as read by the scanner
type Song struct {
	Path    string
	Title   string
	Artist  string
	Album   string
	Genre   string
	Track   int
	Year    int
	AddedAt int64 // unix seconds
}

// UnknownName replaces a missing artist or album tag
const UnknownName = "<unknown>"

const schema = `
CREATE TABLE IF NOT EXISTS artists(
	_id INTEGER PRIMARY KEY AUTOINCREMENT,
	artist TEXT NOT NULL UNIQUE,
	artist_key TEXT NOT NULL,
	number_of_tracks INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS albums(
	_id INTEGER PRIMARY KEY AUTOINCREMENT,
	album TEXT NOT NULL,
	album_key TEXT NOT NULL,
	artist TEXT NOT NULL,
	artist_key TEXT NOT NULL,
	artist_id INTEGER NOT NULL,
	minyear INTEGER,
	numsongs INTEGER NOT NULL DEFAULT 0,
	UNIQUE(album, artist_id)
);
CREATE TABLE IF NOT EXISTS audio(
	_id INTEGER PRIMARY KEY AUTOINCREMENT,
	_data TEXT NOT NULL UNIQUE,
	title TEXT NOT NULL,
	title_key TEXT NOT NULL,
	artist TEXT NOT NULL,
	artist_key TEXT NOT NULL,
	artist_id INTEGER NOT NULL,
	album TEXT NOT NULL,
	album_key TEXT NOT NULL,
	album_id INTEGER NOT NULL,
	track INTEGER NOT NULL DEFAULT 0,
	year INTEGER NOT NULL DEFAULT 0,
	date_added INTEGER NOT NULL DEFAULT 0,
	is_music INTEGER NOT NULL DEFAULT 1
);
CREATE TABLE IF NOT EXISTS genres(
	_id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL UNIQUE
);
CREATE TABLE IF NOT EXISTS audio_genres_map(
	audio_id INTEGER NOT NULL,
	genre_id INTEGER NOT NULL,
	PRIMARY KEY(audio_id, genre_id)
);
CREATE TABLE IF NOT EXISTS playlists(
	_id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	date_added INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS playlist_members(
	playlist_id INTEGER NOT NULL,
	audio_id INTEGER NOT NULL,
	play_order INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS audio_artist_id ON audio(artist_id);
CREATE INDEX IF NOT EXISTS audio_album_id ON audio(album_id);
CREATE INDEX IF NOT EXISTS audio_genres_map_genre ON audio_genres_map(genre_id);
`

// tables maps stores to the relation they are read from
var tables = map[domain.Store]string{
	domain.StoreArtists:   "artists",
	domain.StoreAlbums:    "albums",
	domain.StoreAudio:     "audio",
	domain.StorePlaylists: "playlists",
	domain.StoreGenres:    "genres",
}

const genreSongs = "SELECT audio_id FROM audio_genres_map WHERE genre_id = ?"

// genreMembers returns the relation and membership predicate of a genre
// member query. Artists and albums are selected through the songs they own;
// every other kind lists the songs themselves.
func genreMembers(kind domain.MediaKind) (string, string) {
	switch kind {
	case domain.KindArtist:
		return "artists", "_id IN (SELECT artist_id FROM audio WHERE _id IN (" + genreSongs + "))"
	case domain.KindAlbum:
		return "albums", "_id IN (SELECT album_id FROM audio WHERE _id IN (" + genreSongs + "))"
	default:
		return "audio", "_id IN (" + genreSongs + ")"
	}
}

// BuildSQL renders a query spec as a SELECT statement and its arguments.
// Genre member queries go through the genre map, with the genre id bound
// before the predicate arguments.
func BuildSQL(spec domain.QuerySpec) (string, []any, error) {
	var table, member string
	if spec.Store == domain.StoreGenreMembers {
		table, member = genreMembers(spec.Kind)
	} else {
		var ok bool
		if table, ok = tables[spec.Store]; !ok {
			return "", nil, fmt.Errorf("unknown store %q", spec.Store)
		}
	}

	projection := "*"
	if len(spec.Projection) > 0 {
		projection = strings.Join(spec.Projection, ",")
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "SELECT %s FROM %s", projection, table)

	args := make([]any, 0, len(spec.Args)+1)
	var where []string
	if member != "" {
		where = append(where, member)
		args = append(args, spec.Data)
	}
	if spec.Selection != "" {
		where = append(where, "("+spec.Selection+")")
	}
	for _, a := range spec.Args {
		args = append(args, a)
	}

	if len(where) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(where, " AND "))
	}
	if spec.SortOrder != "" {
		sb.WriteString(" ORDER BY ")
		sb.WriteString(spec.SortOrder)
	}
	return sb.String(), args, nil
}
