// Package listing holds the state of one media listing (search text, sort
// mode, limiter and the loaded rows) and runs its queries.
package listing

import (
	"context"
	"log/slog"
	"sync"

	"github.com/mmcdole/vinyl/internal/catalog"
	"github.com/mmcdole/vinyl/internal/domain"
	"github.com/mmcdole/vinyl/internal/query"
)

// Listing is the state behind one listing view. Its methods are safe for
// concurrent use; Query may run on a background goroutine while the state
// is changed from another.
type Listing struct {
	kind     domain.MediaKind
	cfg      *catalog.KindConfig
	builder  *query.Builder
	accessor domain.CatalogAccessor
	logger   *slog.Logger

	mu         sync.Mutex
	constraint string
	sortMode   catalog.SortMode
	limiter    *domain.Limiter
	rows       domain.Rows

	generation uint64             // bumped whenever an in-flight result becomes stale
	cancel     context.CancelFunc // cancels the in-flight query
}

// New creates a listing of kind. The sort mode starts at the kind's default.
func New(kind domain.MediaKind, builder *query.Builder, accessor domain.CatalogAccessor, logger *slog.Logger) (*Listing, error) {
	if logger == nil {
		logger = slog.Default()
	}
	cfg, err := builder.Catalog().Kind(kind)
	if err != nil {
		return nil, err
	}
	return &Listing{
		kind:     kind,
		cfg:      cfg,
		builder:  builder,
		accessor: accessor,
		logger:   logger,
		sortMode: cfg.DefaultSortMode,
	}, nil
}

// Kind returns the media kind listed
func (l *Listing) Kind() domain.MediaKind { return l.kind }

// Config returns the kind configuration of the listing
func (l *Listing) Config() *catalog.KindConfig { return l.cfg }

// SetConstraint sets the search text
func (l *Listing) SetConstraint(constraint string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.constraint == constraint {
		return
	}
	l.constraint = constraint
	l.invalidateLocked()
}

// Constraint returns the search text
func (l *Listing) Constraint() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.constraint
}

// SetSortMode changes the ordering. Modes outside the kind's sort table are
// rejected and leave the listing unchanged.
func (l *Listing) SetSortMode(mode catalog.SortMode) error {
	if _, _, err := l.cfg.SortTemplate(mode); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.sortMode == mode {
		return nil
	}
	l.sortMode = mode
	l.invalidateLocked()
	return nil
}

// SortMode returns the current sort mode
func (l *Listing) SortMode() catalog.SortMode {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.sortMode
}

// SetLimiter restricts the listing to the children of a parent item; nil
// removes the restriction.
func (l *Listing) SetLimiter(limiter *domain.Limiter) error {
	if limiter != nil {
		if err := limiter.Validate(); err != nil {
			return err
		}
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.limiter = limiter
	l.invalidateLocked()
	return nil
}

// Limiter returns the limiter in effect, nil when none
func (l *Listing) Limiter() *domain.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.limiter
}

// LimiterKind returns the kind of the limiter in effect, KindInvalid when
// there is none.
func (l *Listing) LimiterKind() domain.MediaKind {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.limiter == nil {
		return domain.KindInvalid
	}
	return l.limiter.Kind
}

func (l *Listing) request(projection []string, forceBaseFilter bool) query.Request {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.requestLocked(projection, forceBaseFilter)
}

func (l *Listing) requestLocked(projection []string, forceBaseFilter bool) query.Request {
	return query.Request{
		Kind:            l.kind,
		Projection:      projection,
		Limiter:         l.limiter,
		Constraint:      l.constraint,
		SortMode:        l.sortMode,
		ForceBaseFilter: forceBaseFilter,
	}
}

// BuildQuery builds the listing query from the current state. A nil
// projection selects the kind's projection.
func (l *Listing) BuildQuery(projection []string, forceBaseFilter bool) (domain.QuerySpec, error) {
	return l.builder.Build(l.request(projection, forceBaseFilter))
}

// BuildSongQuery builds a query for the songs behind the listing, e.g. to
// play everything it shows. Non-song listings read the song store in the
// kind's song order; a genre limiter keeps its membership store, which then
// yields the genre's songs.
func (l *Listing) BuildSongQuery(projection []string, mode domain.QueueMode) (domain.QuerySpec, error) {
	spec, err := l.builder.Build(l.request(projection, true))
	if err != nil {
		return domain.QuerySpec{}, err
	}
	spec.Kind = domain.KindSong
	spec.Mode = mode
	if l.kind != domain.KindSong {
		if spec.Store != domain.StoreGenreMembers {
			spec.Store = domain.StoreAudio
		}
		spec.SortOrder = l.cfg.SongSort
	}
	return spec, nil
}

// BuildLimiter creates a limiter for the loaded row with the given id, to
// be applied to a child listing.
func (l *Listing) BuildLimiter(id int64) (*domain.Limiter, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return query.BuildLimiter(l.kind, l.rows, id)
}

// Query builds and executes the current query. It blocks for as long as the
// catalog does. A newer Query or a state change supersedes a running one:
// its context is cancelled and, should rows still arrive, they are closed
// and domain.ErrStaleQuery is returned.
func (l *Listing) Query(ctx context.Context) (domain.Rows, error) {
	// snapshot and generation under one lock: a state change while building
	// marks this query stale
	l.mu.Lock()
	l.invalidateLocked()
	ctx, cancel := context.WithCancel(ctx)
	gen := l.generation
	l.cancel = cancel
	req := l.requestLocked(nil, false)
	l.mu.Unlock()
	defer cancel()

	var rows domain.Rows
	spec, err := l.builder.Build(req)
	if err == nil {
		rows, err = l.accessor.Execute(ctx, spec)
	}

	l.mu.Lock()
	stale := gen != l.generation
	if !stale {
		l.cancel = nil
	}
	l.mu.Unlock()

	if stale {
		if rows != nil {
			rows.Close()
		}
		l.logger.Debug("discarded stale query", "kind", l.kind)
		return nil, domain.ErrStaleQuery
	}
	if err != nil {
		l.logger.Error("failed to execute query", "kind", l.kind, "error", err)
		return nil, err
	}
	return rows, nil
}

// Commit makes rows the loaded row set and releases the previous one
func (l *Listing) Commit(rows domain.Rows) {
	l.mu.Lock()
	old := l.rows
	l.rows = rows
	l.mu.Unlock()

	if old != nil && old != rows {
		old.Close()
	}
}

// Refresh runs Query and commits the result
func (l *Listing) Refresh(ctx context.Context) (domain.Rows, error) {
	rows, err := l.Query(ctx)
	if err != nil {
		return nil, err
	}
	l.Commit(rows)
	return rows, nil
}

// Rows returns the loaded row set, nil before the first commit
func (l *Listing) Rows() domain.Rows {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.rows
}

// Close cancels any running query and releases the loaded rows
func (l *Listing) Close() error {
	l.mu.Lock()
	l.invalidateLocked()
	rows := l.rows
	l.rows = nil
	l.mu.Unlock()

	if rows != nil {
		return rows.Close()
	}
	return nil
}

// invalidateLocked marks the running query stale; l.mu must be held
func (l *Listing) invalidateLocked() {
	l.generation++
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
}
