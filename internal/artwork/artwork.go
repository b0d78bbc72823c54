// Package artwork loads the cover art embedded in audio files and feeds it
// to the row cache.
package artwork

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/dhowden/tag"

	"github.com/mmcdole/vinyl/internal/domain"
	"github.com/mmcdole/vinyl/internal/rowcache"
)

const defaultWorkers = 4

// Artwork is an embedded picture
type Artwork struct {
	MIMEType string
	Data     []byte
}

// Cost charges artwork by its size in bytes
func Cost(a *Artwork) int {
	if a == nil {
		return 0
	}
	return len(a.Data)
}

// ReadPicture returns the picture embedded in the file at path, nil when the
// file carries none.
func ReadPicture(path string) (*Artwork, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err == tag.ErrNoTagsFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	pic := m.Picture()
	if pic == nil || len(pic.Data) == 0 {
		return nil, nil
	}
	return &Artwork{MIMEType: pic.MIMEType, Data: pic.Data}, nil
}

// Fetcher resolves rows to audio files and loads their artwork in the
// background. It implements rowcache.ArtworkRequester.
type Fetcher struct {
	accessor domain.CatalogAccessor
	logger   *slog.Logger
	read     func(path string) (*Artwork, error)

	sem chan struct{}
	wg  sync.WaitGroup
}

// NewFetcher creates a fetcher running at most workers loads at once
func NewFetcher(accessor domain.CatalogAccessor, workers int, logger *slog.Logger) *Fetcher {
	if logger == nil {
		logger = slog.Default()
	}
	if workers <= 0 {
		workers = defaultWorkers
	}
	return &Fetcher{
		accessor: accessor,
		logger:   logger,
		read:     ReadPicture,
		sem:      make(chan struct{}, workers),
	}
}

// NeedArtwork starts loading the artwork of a row and delivers it to holder
func (f *Fetcher) NeedArtwork(kind domain.MediaKind, id int64, holder *rowcache.Holder[*Artwork]) {
	f.wg.Add(1)
	go func() {
		defer f.wg.Done()
		f.sem <- struct{}{}
		defer func() { <-f.sem }()

		art, err := f.Load(context.Background(), kind, id)
		if err != nil {
			f.logger.Debug("failed to load artwork", "kind", kind, "id", id, "error", err)
			return
		}
		if art != nil {
			holder.Deliver(id, art)
		}
	}()
}

// Wait blocks until every started load has finished
func (f *Fetcher) Wait() {
	f.wg.Wait()
}

// Load returns the artwork of a song or album row, nil when it has none
func (f *Fetcher) Load(ctx context.Context, kind domain.MediaKind, id int64) (*Artwork, error) {
	spec := domain.QuerySpec{
		Store:      domain.StoreAudio,
		Projection: []string{domain.ColumnData},
		SortOrder:  domain.ColumnTrack,
	}
	switch kind {
	case domain.KindSong:
		spec.Selection = fmt.Sprintf("%s=%d", domain.ColumnID, id)
	case domain.KindAlbum:
		spec.Selection = fmt.Sprintf("%s=%d", domain.ColumnAlbumID, id)
	default:
		return nil, nil
	}

	rows, err := f.accessor.Execute(ctx, spec)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.MoveTo(0) {
		return nil, nil
	}
	path, ok := rows.String(0)
	if !ok {
		return nil, nil
	}
	return f.read(path)
}
