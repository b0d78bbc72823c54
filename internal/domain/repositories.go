package domain

import "context"

// CatalogAccessor executes queries against the media catalog. Execute may
// block for as long as the catalog takes and must not be called from a
// goroutine that has to stay responsive.
type CatalogAccessor interface {
	Execute(ctx context.Context, spec QuerySpec) (Rows, error)
}

// PlayRankProvider supplies a snapshot of song ids, most played first.
// Callers fetch a fresh snapshot for every query build.
type PlayRankProvider interface {
	TopSongs() ([]int64, error)
}

// PlayCountStore records song plays (implemented by the bbolt ledger)
type PlayCountStore interface {
	PlayRankProvider
	RecordPlay(songID int64) error
	Count(songID int64) (int64, bool)
	Close() error
}
