package domain

import (
	"fmt"
	"strings"
)

// MediaKind distinguishes catalog content types. The numeric values are
// stable because they appear in row cache keys.
type MediaKind int

const (
	KindInvalid  MediaKind = -1
	KindArtist   MediaKind = 1
	KindAlbum    MediaKind = 2
	KindSong     MediaKind = 3
	KindPlaylist MediaKind = 4
	KindGenre    MediaKind = 5
)

// Kinds returns every valid media kind in display order
func Kinds() []MediaKind {
	return []MediaKind{KindArtist, KindAlbum, KindSong, KindPlaylist, KindGenre}
}

// String returns the lowercase name of the kind
func (k MediaKind) String() string {
	switch k {
	case KindArtist:
		return "artist"
	case KindAlbum:
		return "album"
	case KindSong:
		return "song"
	case KindPlaylist:
		return "playlist"
	case KindGenre:
		return "genre"
	default:
		return "invalid"
	}
}

// Valid reports whether k is one of the catalog kinds
func (k MediaKind) Valid() bool {
	return k >= KindArtist && k <= KindGenre
}

// ParseKind converts a kind name (singular or plural, any case) to a MediaKind
func ParseKind(s string) (MediaKind, error) {
	name := strings.TrimSuffix(strings.ToLower(strings.TrimSpace(s)), "s")
	for _, k := range Kinds() {
		if k.String() == name {
			return k, nil
		}
	}
	return KindInvalid, fmt.Errorf("%w: %q", ErrInvalidMediaKind, s)
}

// Store locates a relation in the catalog
type Store string

const (
	StoreArtists      Store = "artists"
	StoreAlbums       Store = "albums"
	StoreAudio        Store = "audio"
	StorePlaylists    Store = "playlists"
	StoreGenres       Store = "genres"
	StoreGenreMembers Store = "genre_members"
)

// Catalog column names shared by the per-kind tables, the query builder and
// the SQLite catalog.
const (
	ColumnID             = "_id"
	ColumnArtist         = "artist"
	ColumnArtistKey      = "artist_key"
	ColumnArtistID       = "artist_id"
	ColumnAlbum          = "album"
	ColumnAlbumKey       = "album_key"
	ColumnAlbumID        = "album_id"
	ColumnTitle          = "title"
	ColumnTitleKey       = "title_key"
	ColumnTrack          = "track"
	ColumnYear           = "year"
	ColumnMinYear        = "minyear"
	ColumnNumSongs       = "numsongs"
	ColumnNumberOfTracks = "number_of_tracks"
	ColumnName           = "name"
	ColumnDateAdded      = "date_added"
	ColumnData           = "_data"
	ColumnIsMusic        = "is_music"
)
