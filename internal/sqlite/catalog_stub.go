//go:build !cgo

package sqlite

import (
	"context"
	"errors"
	"log/slog"

	"github.com/mmcdole/vinyl/internal/collate"
	"github.com/mmcdole/vinyl/internal/domain"
)

var errNoCGO = errors.New("SQLite catalog is not available in non-CGO builds. Please rebuild with CGO_ENABLED=1")

type Catalog struct{}

func Open(path string, keyer *collate.Keyer, logger *slog.Logger) (*Catalog, error) {
	return nil, errNoCGO
}

func (c *Catalog) Close() error { return nil }

func (c *Catalog) Execute(ctx context.Context, spec domain.QuerySpec) (domain.Rows, error) {
	return nil, errNoCGO
}

func (c *Catalog) IndexSongs(ctx context.Context, songs []Song) error { return errNoCGO }

func (c *Catalog) Prune(ctx context.Context) (int, error) { return 0, errNoCGO }

func (c *Catalog) CreatePlaylist(ctx context.Context, name string, songIDs []int64) (int64, error) {
	return 0, errNoCGO
}

func (c *Catalog) Count(ctx context.Context) (int, error) { return 0, errNoCGO }
