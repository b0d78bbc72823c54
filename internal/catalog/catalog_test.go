package catalog_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/vinyl/internal/catalog"
	"github.com/mmcdole/vinyl/internal/domain"
)

func TestCatalog_Kind(t *testing.T) {
	c := catalog.New()

	for _, k := range domain.Kinds() {
		cfg, err := c.Kind(k)
		require.NoError(t, err, k.String())
		assert.Equal(t, k, cfg.Kind)
		assert.NotEmpty(t, cfg.Sorts)
		assert.Equal(t, domain.ColumnID, cfg.Projection[0])
	}

	_, err := c.Kind(domain.KindInvalid)
	assert.ErrorIs(t, err, domain.ErrInvalidMediaKind)
}

func TestCatalog_Projection(t *testing.T) {
	c := catalog.New()

	album, err := c.Kind(domain.KindAlbum)
	require.NoError(t, err)
	assert.Equal(t, []string{"_id", "album", "artist"}, album.Projection)

	genre, err := c.Kind(domain.KindGenre)
	require.NoError(t, err)
	assert.Equal(t, []string{"_id", "name"}, genre.Projection)
	assert.False(t, genre.HasKeys())
	assert.Equal(t, []string{"name"}, genre.SearchColumns())
}

func TestSortMode_Resolve(t *testing.T) {
	idx, dir := catalog.Ascending(3).Resolve()
	assert.Equal(t, 3, idx)
	assert.Equal(t, catalog.SortAsc, dir)

	idx, dir = catalog.Descending(3).Resolve()
	assert.Equal(t, 3, idx)
	assert.Equal(t, catalog.SortDesc, dir)

	assert.Equal(t, catalog.SortMode(-1), catalog.Descending(0))
	assert.Equal(t, catalog.Ascending(2), catalog.Descending(2).Reverse())
}

func TestKindConfig_SortTemplate(t *testing.T) {
	c := catalog.New()
	song, err := c.Kind(domain.KindSong)
	require.NoError(t, err)

	tpl, dir, err := song.SortTemplate(catalog.Ascending(0))
	require.NoError(t, err)
	assert.Equal(t, "title_key ASC", tpl.Format(dir))

	tpl, dir, err = song.SortTemplate(catalog.Descending(1))
	require.NoError(t, err)
	assert.Equal(t, "artist_key DESC,album_key DESC,track DESC", tpl.Format(dir))

	tpl, _, err = song.SortTemplate(catalog.Ascending(len(song.Sorts) - 1))
	require.NoError(t, err)
	assert.True(t, tpl.IsPlayRank())

	_, _, err = song.SortTemplate(catalog.Ascending(len(song.Sorts)))
	assert.ErrorIs(t, err, domain.ErrInvalidSortMode)

	_, _, err = song.SortTemplate(catalog.Descending(len(song.Sorts)))
	assert.ErrorIs(t, err, domain.ErrInvalidSortMode)
}

func TestStaticTemplatesHaveOneDirection(t *testing.T) {
	c := catalog.New()
	for _, k := range domain.Kinds() {
		cfg, err := c.Kind(k)
		require.NoError(t, err)
		for i, opt := range cfg.Sorts {
			if opt.Template.IsPlayRank() {
				continue
			}
			asc := opt.Template.Format(catalog.SortAsc)
			desc := opt.Template.Format(catalog.SortDesc)
			assert.NotContains(t, asc, "%", "%s sort %d", k, i)
			assert.Equal(t, strings.ReplaceAll(asc, "ASC", "DESC"), desc, "%s sort %d", k, i)
		}
	}
}

func TestKindConfig_DescribeMode(t *testing.T) {
	c := catalog.New()
	album, err := c.Kind(domain.KindAlbum)
	require.NoError(t, err)

	assert.Equal(t, "Year ↑", album.DescribeMode(catalog.Ascending(2)))
	assert.Equal(t, "Year ↓", album.DescribeMode(catalog.Descending(2)))
	assert.Equal(t, "Unknown", album.DescribeMode(catalog.Ascending(99)))
	assert.Equal(t, catalog.Ascending(1), album.DefaultSortMode)
}
