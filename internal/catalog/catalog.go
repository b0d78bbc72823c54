// Package catalog holds the immutable per-kind configuration of the media
// catalog: which store a kind lives in, which columns are displayed and
// searched, and which orderings are offered.
package catalog

import (
	"fmt"

	"github.com/mmcdole/vinyl/internal/domain"
)

// Orderings used when a non-song listing is expanded into its songs
const (
	DefaultSongSort = "artist_key,album_key,track"
	AlbumSongSort   = "album_key,track"
)

// KindConfig describes one media kind. Fields lists the catalog columns of
// the kind; the last field is the primary display line and, when there is
// more than one, the first field is the secondary line. FieldKeys holds the
// collation key column for each field and is nil when the kind has none.
type KindConfig struct {
	Kind            domain.MediaKind
	Store           domain.Store
	Fields          []string
	FieldKeys       []string
	Projection      []string
	SongSort        string
	Sorts           []SortOption
	DefaultSortMode SortMode
	HasArtwork      bool
	Expandable      bool
}

// HasKeys reports whether the kind is searched through collation keys
func (c *KindConfig) HasKeys() bool { return c.FieldKeys != nil }

// SearchColumns returns the columns a search constraint is matched against
func (c *KindConfig) SearchColumns() []string {
	if c.HasKeys() {
		return c.FieldKeys
	}
	return c.Fields
}

// Catalog maps every valid media kind to its configuration
type Catalog struct {
	kinds map[domain.MediaKind]*KindConfig
}

// New builds the catalog tables
func New() *Catalog {
	c := &Catalog{kinds: make(map[domain.MediaKind]*KindConfig)}
	for _, cfg := range []*KindConfig{artistConfig(), albumConfig(), songConfig(), playlistConfig(), genreConfig()} {
		cfg.Projection = projection(cfg.Fields)
		c.kinds[cfg.Kind] = cfg
	}
	return c
}

// Kind returns the configuration for k
func (c *Catalog) Kind(k domain.MediaKind) (*KindConfig, error) {
	cfg, ok := c.kinds[k]
	if !ok {
		return nil, fmt.Errorf("%w: %d", domain.ErrInvalidMediaKind, int(k))
	}
	return cfg, nil
}

// projection selects the id, the primary line and, for multi-field kinds,
// the secondary line.
func projection(fields []string) []string {
	if len(fields) == 1 {
		return []string{domain.ColumnID, fields[0]}
	}
	return []string{domain.ColumnID, fields[len(fields)-1], fields[0]}
}

func artistConfig() *KindConfig {
	return &KindConfig{
		Kind:      domain.KindArtist,
		Store:     domain.StoreArtists,
		Fields:    []string{domain.ColumnArtist},
		FieldKeys: []string{domain.ColumnArtistKey},
		SongSort:  DefaultSongSort,
		Sorts: []SortOption{
			{"Name", Static("artist_key %[1]s")},
			{"Number of Tracks", Static("number_of_tracks %[1]s,artist_key %[1]s")},
		},
	}
}

func albumConfig() *KindConfig {
	return &KindConfig{
		Kind:      domain.KindAlbum,
		Store:     domain.StoreAlbums,
		Fields:    []string{domain.ColumnArtist, domain.ColumnAlbum},
		FieldKeys: []string{domain.ColumnArtistKey, domain.ColumnAlbumKey},
		SongSort:  AlbumSongSort,
		Sorts: []SortOption{
			{"Name", Static("album_key %[1]s")},
			{"Artist, Album", Static("artist_key %[1]s,album_key %[1]s")},
			{"Year", Static("minyear %[1]s,album_key %[1]s")},
			{"Number of Tracks", Static("numsongs %[1]s,album_key %[1]s")},
			{"Date Added", Static("_id %[1]s")},
		},
		DefaultSortMode: Ascending(1),
		HasArtwork:      true,
	}
}

func songConfig() *KindConfig {
	return &KindConfig{
		Kind:      domain.KindSong,
		Store:     domain.StoreAudio,
		Fields:    []string{domain.ColumnArtist, domain.ColumnAlbum, domain.ColumnTitle},
		FieldKeys: []string{domain.ColumnArtistKey, domain.ColumnAlbumKey, domain.ColumnTitleKey},
		Sorts: []SortOption{
			{"Name", Static("title_key %[1]s")},
			{"Artist, Album, Track", Static("artist_key %[1]s,album_key %[1]s,track %[1]s")},
			{"Artist, Album, Title", Static("artist_key %[1]s,album_key %[1]s,title_key %[1]s")},
			{"Artist, Year", Static("artist_key %[1]s,year %[1]s,track %[1]s")},
			{"Album, Track", Static("album_key %[1]s,track %[1]s")},
			{"Year", Static("year %[1]s,title_key %[1]s")},
			{"Date Added", Static("_id %[1]s")},
			{"Play Count", PlayRank},
		},
		DefaultSortMode: Ascending(1),
		HasArtwork:      true,
	}
}

func playlistConfig() *KindConfig {
	return &KindConfig{
		Kind:   domain.KindPlaylist,
		Store:  domain.StorePlaylists,
		Fields: []string{domain.ColumnName},
		Sorts: []SortOption{
			{"Name", Static("name %[1]s")},
			{"Date Added", Static("date_added %[1]s")},
		},
		Expandable: true,
	}
}

func genreConfig() *KindConfig {
	return &KindConfig{
		Kind:   domain.KindGenre,
		Store:  domain.StoreGenres,
		Fields: []string{domain.ColumnName},
		Sorts: []SortOption{
			{"Name", Static("name %[1]s")},
		},
	}
}
