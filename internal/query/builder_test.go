package query_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/mmcdole/vinyl/internal/catalog"
	"github.com/mmcdole/vinyl/internal/collate"
	"github.com/mmcdole/vinyl/internal/domain"
	"github.com/mmcdole/vinyl/internal/query"
)

type fakeRanks struct {
	ids   []int64
	err   error
	calls int
}

func (f *fakeRanks) TopSongs() ([]int64, error) {
	f.calls++
	return f.ids, f.err
}

func newBuilder(ranks domain.PlayRankProvider) *query.Builder {
	return query.NewBuilder(catalog.New(), collate.New(language.Und), ranks, nil)
}

func TestBuild_DefaultsForEveryKind(t *testing.T) {
	b := newBuilder(&fakeRanks{})
	cat := catalog.New()

	for _, k := range domain.Kinds() {
		t.Run(k.String(), func(t *testing.T) {
			spec, err := b.Build(query.Request{Kind: k})
			require.NoError(t, err)

			cfg, err := cat.Kind(k)
			require.NoError(t, err)

			assert.Equal(t, cfg.Store, spec.Store)
			assert.Equal(t, k, spec.Kind)
			assert.Equal(t, cfg.Projection, spec.Projection)
			assert.Empty(t, spec.Args)
			assert.NotContains(t, spec.Selection, "LIKE")
			assert.Contains(t, spec.SortOrder, "ASC")
			assert.NotContains(t, spec.SortOrder, "DESC")

			if k == domain.KindSong {
				assert.Equal(t, query.BaseSelection, spec.Selection)
			} else {
				assert.Empty(t, spec.Selection)
			}
		})
	}
}

func TestBuild_DirectionOnlyDiffersInToken(t *testing.T) {
	b := newBuilder(&fakeRanks{ids: []int64{4, 1}})
	cat := catalog.New()

	for _, k := range domain.Kinds() {
		cfg, err := cat.Kind(k)
		require.NoError(t, err)

		for i := range cfg.Sorts {
			asc, err := b.Build(query.Request{Kind: k, SortMode: catalog.Ascending(i)})
			require.NoError(t, err)
			desc, err := b.Build(query.Request{Kind: k, SortMode: catalog.Descending(i)})
			require.NoError(t, err)

			assert.Equal(t, strings.ReplaceAll(asc.SortOrder, "ASC", "DESC"), desc.SortOrder, "%s sort %d", k, i)
			asc.SortOrder, desc.SortOrder = "", ""
			assert.Equal(t, asc, desc)
		}
	}
}

func TestBuild_InvalidSortMode(t *testing.T) {
	b := newBuilder(nil)

	_, err := b.Build(query.Request{Kind: domain.KindGenre, SortMode: catalog.Ascending(1)})
	assert.ErrorIs(t, err, domain.ErrInvalidSortMode)

	_, err = b.Build(query.Request{Kind: domain.KindGenre, SortMode: catalog.Descending(1)})
	assert.ErrorIs(t, err, domain.ErrInvalidSortMode)
}

func TestBuild_InvalidKind(t *testing.T) {
	b := newBuilder(nil)

	_, err := b.Build(query.Request{Kind: domain.KindInvalid})
	assert.ErrorIs(t, err, domain.ErrInvalidMediaKind)
}

func TestBuild_RawConstraint(t *testing.T) {
	b := newBuilder(nil)

	spec, err := b.Build(query.Request{Kind: domain.KindPlaylist, Constraint: "foo  bar"})
	require.NoError(t, err)

	assert.Equal(t, "name LIKE ? AND name LIKE ?", spec.Selection)
	assert.Equal(t, []string{"%foo%", "%bar%"}, spec.Args)
}

func TestBuild_KeyedConstraint(t *testing.T) {
	b := newBuilder(nil)

	spec, err := b.Build(query.Request{Kind: domain.KindSong, Constraint: "Foo Bär"})
	require.NoError(t, err)

	keys := "artist_key||album_key||title_key LIKE ?"
	assert.Equal(t, query.BaseSelection+" AND "+keys+" AND "+keys, spec.Selection)
	assert.Equal(t, []string{"%.f.o.o.%", "%.b.a.r.%"}, spec.Args)
}

func TestBuild_WhitespaceConstraint(t *testing.T) {
	b := newBuilder(nil)

	spec, err := b.Build(query.Request{Kind: domain.KindGenre, Constraint: "   "})
	require.NoError(t, err)
	assert.Empty(t, spec.Selection)
	assert.Nil(t, spec.Args)
}

func TestBuild_ForceBaseFilter(t *testing.T) {
	b := newBuilder(nil)

	spec, err := b.Build(query.Request{Kind: domain.KindAlbum, ForceBaseFilter: true})
	require.NoError(t, err)
	assert.Equal(t, query.BaseSelection, spec.Selection)
}

func TestBuild_ArtistLimiter(t *testing.T) {
	b := newBuilder(nil)
	limiter := &domain.Limiter{Kind: domain.KindArtist, Names: []string{"X"}, Selection: "artist_id=3"}

	plain, err := b.Build(query.Request{Kind: domain.KindAlbum, Constraint: "abc"})
	require.NoError(t, err)
	limited, err := b.Build(query.Request{Kind: domain.KindAlbum, Constraint: "abc", Limiter: limiter})
	require.NoError(t, err)

	assert.Equal(t, plain.Selection+" AND artist_id=3", limited.Selection)
	assert.Equal(t, plain.Args, limited.Args)
	assert.Equal(t, domain.StoreAlbums, limited.Store)

	alone, err := b.Build(query.Request{Kind: domain.KindAlbum, Limiter: limiter})
	require.NoError(t, err)
	assert.Equal(t, "artist_id=3", alone.Selection)
}

func TestBuild_GenreLimiter(t *testing.T) {
	b := newBuilder(nil)
	limiter := &domain.Limiter{Kind: domain.KindGenre, Names: []string{"Jazz"}, GenreID: 12}

	plain, err := b.Build(query.Request{Kind: domain.KindSong, Constraint: "blue"})
	require.NoError(t, err)
	limited, err := b.Build(query.Request{Kind: domain.KindSong, Constraint: "blue", Limiter: limiter})
	require.NoError(t, err)

	assert.Equal(t, plain.Selection, limited.Selection)
	assert.Equal(t, plain.Args, limited.Args)
	assert.Equal(t, domain.StoreGenreMembers, limited.Store)
	assert.Equal(t, int64(12), limited.Data)

	// the genre path is taken for any listing kind
	playlists, err := b.Build(query.Request{Kind: domain.KindPlaylist, Limiter: limiter})
	require.NoError(t, err)
	assert.Equal(t, domain.StoreGenreMembers, playlists.Store)
}

func TestBuild_InvalidLimiter(t *testing.T) {
	b := newBuilder(nil)

	tests := []struct {
		name    string
		limiter *domain.Limiter
		want    error
	}{
		{"genre_without_id", &domain.Limiter{Kind: domain.KindGenre}, domain.ErrInvalidLimiter},
		{"album_without_selection", &domain.Limiter{Kind: domain.KindAlbum, GenreID: 3}, domain.ErrInvalidLimiter},
		{"song_limiter", &domain.Limiter{Kind: domain.KindSong, Selection: "x=1"}, domain.ErrUnsupportedLimiterKind},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := b.Build(query.Request{Kind: domain.KindSong, Limiter: tt.limiter})
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestBuild_PlayRank(t *testing.T) {
	ranks := &fakeRanks{ids: []int64{5, 2, 9}}
	b := newBuilder(ranks)
	mode := catalog.Ascending(7)

	spec, err := b.Build(query.Request{Kind: domain.KindSong, SortMode: mode})
	require.NoError(t, err)
	assert.Equal(t, "CASE WHEN _id=0 THEN 0 WHEN _id=5 THEN -3 WHEN _id=2 THEN -2 WHEN _id=9 THEN -1 ELSE 0 END ASC", spec.SortOrder)

	// every build fetches a fresh rank table
	ranks.ids = []int64{9}
	spec, err = b.Build(query.Request{Kind: domain.KindSong, SortMode: mode})
	require.NoError(t, err)
	assert.Equal(t, "CASE WHEN _id=0 THEN 0 WHEN _id=9 THEN -1 ELSE 0 END ASC", spec.SortOrder)
	assert.Equal(t, 2, ranks.calls)
}

func TestBuild_PlayRankError(t *testing.T) {
	boom := errors.New("ledger closed")
	b := newBuilder(&fakeRanks{err: boom})

	_, err := b.Build(query.Request{Kind: domain.KindSong, SortMode: catalog.Ascending(7)})
	assert.ErrorIs(t, err, boom)
}

func TestBuild_StaticSortSkipsRanks(t *testing.T) {
	ranks := &fakeRanks{}
	b := newBuilder(ranks)

	_, err := b.Build(query.Request{Kind: domain.KindSong, SortMode: catalog.Ascending(0)})
	require.NoError(t, err)
	assert.Zero(t, ranks.calls)
}

func TestBuild_RoundTrip(t *testing.T) {
	b := newBuilder(nil)
	req := query.Request{
		Kind:       domain.KindAlbum,
		Constraint: "dark side",
		SortMode:   catalog.Descending(2),
		Limiter:    &domain.Limiter{Kind: domain.KindArtist, Names: []string{"Pink Floyd"}, Selection: "artist_id=1"},
	}

	first, err := b.Build(req)
	require.NoError(t, err)
	second, err := b.Build(req)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestBuild_CustomProjection(t *testing.T) {
	b := newBuilder(nil)

	spec, err := b.Build(query.Request{Kind: domain.KindArtist, Projection: []string{"_id"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"_id"}, spec.Projection)
}

func TestRankOrder_Empty(t *testing.T) {
	assert.Equal(t, "CASE WHEN _id=0 THEN 0 ELSE 0 END DESC", query.RankOrder(nil, catalog.SortDesc))
}
