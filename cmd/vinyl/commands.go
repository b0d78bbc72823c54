package main

import (
	"context"
	"flag"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mmcdole/vinyl/internal/artwork"
	"github.com/mmcdole/vinyl/internal/catalog"
	"github.com/mmcdole/vinyl/internal/domain"
	"github.com/mmcdole/vinyl/internal/listing"
	"github.com/mmcdole/vinyl/internal/query"
	"github.com/mmcdole/vinyl/internal/rowcache"
	"github.com/mmcdole/vinyl/internal/scan"
)

// withinFlag collects repeated --within kind:id arguments
type withinFlag []string

func (w *withinFlag) String() string     { return strings.Join(*w, ",") }
func (w *withinFlag) Set(s string) error { *w = append(*w, s); return nil }

// parseWithin splits "kind:id"
func parseWithin(s string) (domain.MediaKind, int64, error) {
	name, rawID, ok := strings.Cut(s, ":")
	if !ok {
		return domain.KindInvalid, 0, fmt.Errorf("invalid --within %q, want kind:id", s)
	}
	kind, err := parseKind(name)
	if err != nil {
		return domain.KindInvalid, 0, err
	}
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		return domain.KindInvalid, 0, fmt.Errorf("invalid id in --within %q: %w", s, err)
	}
	return kind, id, nil
}

// listingFlags are shared by list and playlist
type listingFlags struct {
	filter string
	sort   int
	desc   bool
	within withinFlag
}

func (f *listingFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&f.filter, "filter", "", "search text")
	fs.IntVar(&f.sort, "sort", -1, "sort mode index (see --sorts)")
	fs.BoolVar(&f.desc, "desc", false, "sort descending")
	fs.Var(&f.within, "within", "restrict to the children of kind:id (repeatable)")
}

// open creates a listing of kind configured from the flags. Each --within
// is resolved against a listing of its own kind, narrowed by the limiters
// before it.
func (a *app) open(ctx context.Context, kind domain.MediaKind, f *listingFlags) (*listing.Listing, *query.Stack, error) {
	stack := query.NewStack(kind)
	for _, w := range f.within {
		wkind, id, err := parseWithin(w)
		if err != nil {
			return nil, nil, err
		}
		lim, err := a.resolveLimiter(ctx, wkind, id, stack.Current())
		if err != nil {
			return nil, nil, err
		}
		if err := stack.Push(lim); err != nil {
			return nil, nil, err
		}
	}

	l, err := listing.New(kind, a.builder, a.accessor, a.logger)
	if err != nil {
		return nil, nil, err
	}
	l.SetConstraint(f.filter)
	if err := l.SetLimiter(stack.Current()); err != nil {
		return nil, nil, err
	}

	mode := l.SortMode()
	if f.sort >= 0 {
		mode = catalog.Ascending(f.sort)
	}
	if f.desc {
		mode = mode.Reverse()
	}
	if err := l.SetSortMode(mode); err != nil {
		return nil, nil, fmt.Errorf("%w (%s has %d sort modes)", err, kind, len(l.Config().Sorts))
	}
	return l, stack, nil
}

func (a *app) resolveLimiter(ctx context.Context, kind domain.MediaKind, id int64, parent *domain.Limiter) (*domain.Limiter, error) {
	l, err := listing.New(kind, a.builder, a.accessor, a.logger)
	if err != nil {
		return nil, err
	}
	defer l.Close()

	if err := l.SetLimiter(parent); err != nil {
		return nil, err
	}
	if _, err := l.Refresh(ctx); err != nil {
		return nil, err
	}
	return l.BuildLimiter(id)
}

func (a *app) runList(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("list needs a kind: artists, albums, songs, playlists or genres")
	}
	kind, err := parseKind(args[0])
	if err != nil {
		return err
	}

	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	var lf listingFlags
	lf.register(fs)
	songs := fs.Bool("songs", false, "list the songs behind the listing")
	art := fs.Bool("art", false, "show whether rows have embedded artwork")
	sorts := fs.Bool("sorts", false, "print the sort modes of the kind")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}

	l, stack, err := a.open(ctx, kind, &lf)
	if err != nil {
		return err
	}
	defer l.Close()

	if *sorts {
		printSorts(l.Config())
		return nil
	}

	cfg := l.Config()
	var rows domain.Rows
	if *songs {
		songCfg, err := a.builder.Catalog().Kind(domain.KindSong)
		if err != nil {
			return err
		}
		spec, err := l.BuildSongQuery(songCfg.Projection, domain.ModeNone)
		if err != nil {
			return err
		}
		if rows, err = a.accessor.Execute(ctx, spec); err != nil {
			return err
		}
		defer rows.Close()
		cfg = songCfg
	} else {
		if rows, err = l.Refresh(ctx); err != nil {
			return err
		}
	}

	var marks []string
	if *art && cfg.HasArtwork {
		marks = a.artworkMarks(cfg.Kind, rows)
	}

	r := newRenderer()
	r.header(stack.Path(), l.Config().DescribeMode(l.SortMode()), rows.Count())
	r.rows(rows, lf.filter, marks)
	return nil
}

// artworkMarks binds a holder per row and waits for the artwork loads
func (a *app) artworkMarks(kind domain.MediaKind, rows domain.Rows) []string {
	fetcher := artwork.NewFetcher(a.accessor, 0, a.logger)
	binder := rowcache.NewBinder[*artwork.Artwork](a.artwork, kind, nil, fetcher)

	holders := make([]*rowcache.Holder[*artwork.Artwork], rows.Count())
	for i := range holders {
		rows.MoveTo(i)
		holders[i] = &rowcache.Holder[*artwork.Artwork]{}
		binder.Bind(holders[i], rows.Int64(0))
	}
	fetcher.Wait()

	marks := make([]string, len(holders))
	for i, h := range holders {
		if art, ok := h.Artwork(); ok && art != nil {
			marks[i] = art.MIMEType
		}
		binder.Release(h)
	}
	return marks
}

func (a *app) runIndex(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("index", flag.ContinueOnError)
	prune := fs.Bool("prune", false, "remove songs whose file is gone")
	workers := fs.Int("workers", 0, "tag reader goroutines (default: number of CPUs)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	root := a.cfg.Catalog.MusicRoot
	if fs.NArg() > 0 {
		root = fs.Arg(0)
	}

	res, err := scan.New(a.catalog, scan.Options{Workers: *workers}, a.logger).Scan(ctx, root)
	if err != nil {
		return err
	}
	fmt.Printf("indexed %d of %d files in %s (%d unreadable)\n",
		res.Indexed, res.Found, res.Elapsed.Round(time.Millisecond), res.Failed)

	if *prune {
		removed, err := a.catalog.Prune(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("pruned %d missing files\n", removed)
	}
	return nil
}

func (a *app) runPlay(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("play needs at least one song id")
	}
	for _, raw := range args {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid song id %q: %w", raw, err)
		}
		if err := a.plays.RecordPlay(id); err != nil {
			return err
		}
		n, _ := a.plays.Count(id)
		fmt.Printf("%d: played %d times\n", id, n)
	}
	return nil
}

func (a *app) runPlaylist(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("playlist needs a name")
	}
	name := args[0]

	fs := flag.NewFlagSet("playlist", flag.ContinueOnError)
	var lf listingFlags
	lf.register(fs)
	from := fs.String("from", "songs", "kind of the listing the songs come from")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}
	kind, err := parseKind(*from)
	if err != nil {
		return err
	}

	l, _, err := a.open(ctx, kind, &lf)
	if err != nil {
		return err
	}
	defer l.Close()

	spec, err := l.BuildSongQuery([]string{domain.ColumnID}, domain.ModeEnqueue)
	if err != nil {
		return err
	}
	rows, err := a.accessor.Execute(ctx, spec)
	if err != nil {
		return err
	}
	defer rows.Close()

	ids := make([]int64, 0, rows.Count())
	for rows.Next() {
		ids = append(ids, rows.Int64(0))
	}

	id, err := a.catalog.CreatePlaylist(ctx, name, ids)
	if err != nil {
		return err
	}
	fmt.Printf("created playlist %d %q with %d songs\n", id, name, len(ids))
	return nil
}
