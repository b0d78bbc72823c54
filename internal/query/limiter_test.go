package query_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/vinyl/internal/domain"
	"github.com/mmcdole/vinyl/internal/query"
)

func albumRows() *domain.RowSet {
	return domain.NewRowSet(
		[]string{"_id", "album", "artist"},
		[][]any{
			{int64(3), "Z", "W"},
			{int64(7), "Y", "X"},
			{int64(9), nil, "V"},
		},
	)
}

func TestBuildLimiter_Album(t *testing.T) {
	l, err := query.BuildLimiter(domain.KindAlbum, albumRows(), 7)
	require.NoError(t, err)

	assert.Equal(t, domain.KindAlbum, l.Kind)
	assert.Equal(t, []string{"Y", "X"}, l.Names)
	assert.Equal(t, "album_id=7", l.Selection)
	assert.NoError(t, l.Validate())
}

func TestBuildLimiter_NullName(t *testing.T) {
	l, err := query.BuildLimiter(domain.KindAlbum, albumRows(), 9)
	require.NoError(t, err)
	assert.Equal(t, []string{query.MissingName, "V"}, l.Names)
}

func TestBuildLimiter_Artist(t *testing.T) {
	rows := domain.NewRowSet([]string{"_id", "artist"}, [][]any{{int64(4), "Nina Simone"}})

	l, err := query.BuildLimiter(domain.KindArtist, rows, 4)
	require.NoError(t, err)
	assert.Equal(t, []string{"Nina Simone"}, l.Names)
	assert.Equal(t, "artist_id=4", l.Selection)
}

func TestBuildLimiter_Genre(t *testing.T) {
	rows := domain.NewRowSet([]string{"_id", "name"}, [][]any{{int64(1), "Rock"}, {int64(2), "Jazz"}})

	l, err := query.BuildLimiter(domain.KindGenre, rows, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"Jazz"}, l.Names)
	assert.Equal(t, int64(2), l.GenreID)
	assert.Empty(t, l.Selection)
}

func TestBuildLimiter_Errors(t *testing.T) {
	tests := []struct {
		name string
		kind domain.MediaKind
		rows domain.Rows
		id   int64
		want error
	}{
		{"song", domain.KindSong, albumRows(), 7, domain.ErrUnsupportedLimiterKind},
		{"playlist", domain.KindPlaylist, albumRows(), 7, domain.ErrUnsupportedLimiterKind},
		{"missing_row", domain.KindAlbum, albumRows(), 42, domain.ErrRowNotFound},
		{"no_rows", domain.KindAlbum, nil, 7, domain.ErrRowNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := query.BuildLimiter(tt.kind, tt.rows, tt.id)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestStack(t *testing.T) {
	s := query.NewStack(domain.KindArtist)
	assert.Nil(t, s.Current())
	assert.Equal(t, domain.KindInvalid, s.Kind())

	artist := &domain.Limiter{Kind: domain.KindArtist, Names: []string{"X"}, Selection: "artist_id=1"}
	album := &domain.Limiter{Kind: domain.KindAlbum, Names: []string{"Y", "X"}, Selection: "album_id=7"}

	require.NoError(t, s.Push(artist))
	require.NoError(t, s.Push(album))
	assert.Equal(t, 2, s.Len())
	assert.Same(t, album, s.Current())
	assert.Equal(t, domain.KindAlbum, s.Kind())
	assert.Equal(t, "X / Y", s.Path())

	assert.Same(t, album, s.Pop())
	assert.Same(t, artist, s.Current())
	assert.Same(t, artist, s.Pop())
	assert.Nil(t, s.Pop())
	assert.Equal(t, domain.KindArtist, s.Base())

	assert.ErrorIs(t, s.Push(nil), domain.ErrInvalidLimiter)
	assert.ErrorIs(t, s.Push(&domain.Limiter{Kind: domain.KindSong}), domain.ErrUnsupportedLimiterKind)
}
