package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/vinyl/internal/domain"
)

func TestParseKind(t *testing.T) {
	kind, err := parseKind("Albums")
	require.NoError(t, err)
	assert.Equal(t, domain.KindAlbum, kind)

	_, err = parseKind("albm")
	assert.ErrorIs(t, err, domain.ErrInvalidMediaKind)
	assert.Contains(t, err.Error(), `did you mean "albums"?`)
}

func TestSuggestKind(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"albm", "albums"},
		{"sng", "songs"},
		{"gnre", "genres"},
		{"albmus", "albums"},
		{"zzzzzz", ""},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, suggestKind(tt.in))
		})
	}
}

func TestParseWithin(t *testing.T) {
	kind, id, err := parseWithin("artist:12")
	require.NoError(t, err)
	assert.Equal(t, domain.KindArtist, kind)
	assert.Equal(t, int64(12), id)

	for _, bad := range []string{"artist", "artist:x", "nope:1"} {
		_, _, err := parseWithin(bad)
		assert.Error(t, err, bad)
	}
}

func TestMatchedBytes(t *testing.T) {
	m := matchedBytes("abbey road", []string{"ar", "road"})
	assert.True(t, m[0])
	for _, i := range []int{6, 7, 8, 9} {
		assert.True(t, m[i], i)
	}
	assert.False(t, m[1])
}

func TestWithinFlag(t *testing.T) {
	var w withinFlag
	require.NoError(t, w.Set("artist:1"))
	require.NoError(t, w.Set("album:2"))
	assert.Equal(t, "artist:1,album:2", w.String())
}
