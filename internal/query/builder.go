// Package query turns listing state (kind, search constraint, limiter and
// sort mode) into catalog queries.
package query

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/mmcdole/vinyl/internal/catalog"
	"github.com/mmcdole/vinyl/internal/collate"
	"github.com/mmcdole/vinyl/internal/domain"
)

// BaseSelection restricts song queries to playable audio with a file
const BaseSelection = "is_music AND length(_data)"

// Request is the listing state a query is built from
type Request struct {
	Kind            domain.MediaKind
	Projection      []string // nil selects the kind's projection
	Limiter         *domain.Limiter
	Constraint      string
	SortMode        catalog.SortMode
	ForceBaseFilter bool // add BaseSelection for non-song kinds
}

// Builder produces QuerySpecs. Builds are pure apart from the play-rank
// lookup and safe to run on any goroutine.
type Builder struct {
	catalog *catalog.Catalog
	keyer   *collate.Keyer
	ranks   domain.PlayRankProvider
	logger  *slog.Logger
}

// NewBuilder creates a query builder. ranks may be nil, in which case the
// play-rank ordering sees an empty rank table.
func NewBuilder(cat *catalog.Catalog, keyer *collate.Keyer, ranks domain.PlayRankProvider, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{catalog: cat, keyer: keyer, ranks: ranks, logger: logger}
}

// Catalog returns the kind tables the builder reads
func (b *Builder) Catalog() *catalog.Catalog { return b.catalog }

// Build produces the query for req. A failed build returns no spec.
func (b *Builder) Build(req Request) (domain.QuerySpec, error) {
	cfg, err := b.catalog.Kind(req.Kind)
	if err != nil {
		return domain.QuerySpec{}, err
	}

	order, err := b.sortOrder(cfg, req.SortMode)
	if err != nil {
		return domain.QuerySpec{}, err
	}

	var selection strings.Builder
	if req.Kind == domain.KindSong || req.ForceBaseFilter {
		selection.WriteString(BaseSelection)
	}

	args := b.appendConstraint(&selection, cfg, req.Constraint)

	projection := req.Projection
	if projection == nil {
		projection = cfg.Projection
	}

	spec := domain.QuerySpec{
		Store:      cfg.Store,
		Kind:       req.Kind,
		Projection: projection,
		Args:       args,
		SortOrder:  order,
	}

	if limiter := req.Limiter; limiter != nil {
		if err := limiter.Validate(); err != nil {
			return domain.QuerySpec{}, err
		}
		if limiter.Kind == domain.KindGenre {
			// Genre membership is a separate relation, so the limiter becomes
			// the store and join key instead of a selection fragment.
			spec.Store = domain.StoreGenreMembers
			spec.Data = limiter.GenreID
		} else {
			and(&selection, limiter.Selection)
		}
	}

	spec.Selection = selection.String()
	b.logger.Debug("built query", "kind", req.Kind, "store", spec.Store, "args", len(spec.Args))
	return spec, nil
}

// sortOrder resolves the mode into an ORDER BY expression
func (b *Builder) sortOrder(cfg *catalog.KindConfig, mode catalog.SortMode) (string, error) {
	tpl, dir, err := cfg.SortTemplate(mode)
	if err != nil {
		return "", err
	}
	if !tpl.IsPlayRank() {
		return tpl.Format(dir), nil
	}

	var ids []int64
	if b.ranks != nil {
		ids, err = b.ranks.TopSongs()
		if err != nil {
			return "", fmt.Errorf("failed to load play ranks: %w", err)
		}
	}
	return RankOrder(ids, dir), nil
}

// appendConstraint adds one LIKE clause per search token and returns the
// matching arguments in token order.
func (b *Builder) appendConstraint(selection *strings.Builder, cfg *catalog.KindConfig, constraint string) []string {
	if constraint == "" {
		return nil
	}

	var needles []string
	if cfg.HasKeys() {
		needles = b.keyer.Tokens(constraint)
	} else {
		needles = strings.Fields(constraint)
	}
	if len(needles) == 0 {
		return nil
	}

	keys := strings.Join(cfg.SearchColumns(), "||")
	args := make([]string, 0, len(needles))
	for _, needle := range needles {
		args = append(args, "%"+needle+"%")
		and(selection, keys+" LIKE ?")
	}
	return args
}

// RankOrder builds the play-rank ORDER BY expression. The first id gets
// weight -len(ids) and each following id one more, so ascending order lists
// the most played song first; unranked rows weigh 0 and follow every
// ranked row.
func RankOrder(ids []int64, dir catalog.SortDirection) string {
	var b strings.Builder
	// the leading WHEN keeps the CASE valid when ids is empty
	b.WriteString("CASE WHEN _id=0 THEN 0")
	weight := -len(ids)
	for _, id := range ids {
		fmt.Fprintf(&b, " WHEN _id=%d THEN %d", id, weight)
		weight++
	}
	b.WriteString(" ELSE 0 END ")
	b.WriteString(dir.Token())
	return b.String()
}

func and(b *strings.Builder, clause string) {
	if b.Len() != 0 {
		b.WriteString(" AND ")
	}
	b.WriteString(clause)
}
