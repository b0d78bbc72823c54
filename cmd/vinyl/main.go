package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"golang.org/x/text/language"

	"github.com/mmcdole/vinyl/internal/adapter"
	"github.com/mmcdole/vinyl/internal/artwork"
	"github.com/mmcdole/vinyl/internal/catalog"
	"github.com/mmcdole/vinyl/internal/collate"
	"github.com/mmcdole/vinyl/internal/domain"
	"github.com/mmcdole/vinyl/internal/query"
	"github.com/mmcdole/vinyl/internal/querylog"
	"github.com/mmcdole/vinyl/internal/rowcache"
	"github.com/mmcdole/vinyl/internal/sqlite"
	"github.com/mmcdole/vinyl/internal/store"
)

// Version is set at build time via -ldflags
var Version = "dev"

const usage = `usage: vinyl <command> [flags]

commands:
  index [dir]            scan a music directory into the catalog
  list <kind>            list artists, albums, songs, playlists or genres
  play <song id>...      record plays of songs
  playlist <name>        create a playlist from a song listing
  config                 write the current configuration to disk
`

func main() {
	// Handle version flag
	var showVersion bool
	flag.BoolVar(&showVersion, "v", false, "print version")
	flag.BoolVar(&showVersion, "version", false, "print version")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	if showVersion {
		fmt.Printf("vinyl %s\n", Version)
		return
	}

	if err := run(flag.Args()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) == 0 {
		flag.Usage()
		return fmt.Errorf("no command given")
	}

	// Load configuration
	cfg, err := adapter.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Setup logger
	logger, err := adapter.SetupLogger(&cfg.Logging)
	if err != nil {
		// Fall back to null logger if file logging fails
		logger = adapter.NullLogger()
	}
	slog.SetDefault(logger)

	logger.Info("starting vinyl", "version", Version, "command", args[0])

	if args[0] == "config" {
		if err := adapter.SaveConfig(cfg); err != nil {
			return err
		}
		fmt.Printf("wrote %s/config.yaml\n", adapter.ConfigPath())
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	a, err := newApp(cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	switch args[0] {
	case "index":
		return a.runIndex(ctx, args[1:])
	case "list", "ls":
		return a.runList(ctx, args[1:])
	case "play":
		return a.runPlay(ctx, args[1:])
	case "playlist":
		return a.runPlaylist(ctx, args[1:])
	default:
		flag.Usage()
		return fmt.Errorf("unknown command %q", args[0])
	}
}

// app holds the services shared by the commands
type app struct {
	cfg      *adapter.Config
	logger   *slog.Logger
	catalog  *sqlite.Catalog
	accessor domain.CatalogAccessor
	plays    *store.PlayCounts
	builder  *query.Builder
	artwork  *rowcache.Cache[*artwork.Artwork]
}

func newApp(cfg *adapter.Config, logger *slog.Logger) (*app, error) {
	lang, err := language.Parse(cfg.Collation.Language)
	if err != nil {
		logger.Warn("invalid collation language, using default", "language", cfg.Collation.Language, "error", err)
		lang = collate.DefaultLanguage
	}
	keyer := collate.New(lang)

	cat, err := sqlite.Open(cfg.Catalog.Path, keyer, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}

	plays, err := store.NewPlayCounts(cfg.PlayCounts.Path, cfg.PlayCounts.TopLimit)
	if err != nil {
		cat.Close()
		return nil, fmt.Errorf("failed to open play counts: %w", err)
	}

	var accessor domain.CatalogAccessor = cat
	if cfg.Debug.DumpQueries {
		accessor = querylog.Wrap(cat, logger)
	}

	return &app{
		cfg:      cfg,
		logger:   logger,
		catalog:  cat,
		accessor: accessor,
		plays:    plays,
		builder:  query.NewBuilder(catalog.New(), keyer, plays, logger),
		artwork:  rowcache.New[*artwork.Artwork](cfg.Cache.Capacity, artwork.Cost),
	}, nil
}

func (a *app) Close() {
	if err := a.plays.Close(); err != nil {
		a.logger.Error("failed to close play counts", "error", err)
	}
	if err := a.catalog.Close(); err != nil {
		a.logger.Error("failed to close catalog", "error", err)
	}
	s := a.artwork.Stats()
	a.logger.Debug("artwork cache", "entries", s.Entries, "size", s.Size, "hits", s.Hits, "misses", s.Misses)
}
