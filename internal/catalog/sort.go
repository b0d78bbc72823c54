package catalog

import (
	"fmt"
	"strings"

	"github.com/mmcdole/vinyl/internal/domain"
)

// SortDirection represents sort direction
type SortDirection int

const (
	SortAsc SortDirection = iota
	SortDesc
)

// Token returns the SQL keyword for the direction
func (d SortDirection) Token() string {
	if d == SortDesc {
		return "DESC"
	}
	return "ASC"
}

// SortMode selects a sort option and a direction. A non-negative mode is the
// ascending index into the kind's sort options; the bitwise complement of an
// index selects the same option descending.
type SortMode int

// Ascending returns the ascending mode for index
func Ascending(index int) SortMode { return SortMode(index) }

// Descending returns the descending mode for index
func Descending(index int) SortMode { return SortMode(^index) }

// Resolve splits the mode into an option index and a direction
func (m SortMode) Resolve() (int, SortDirection) {
	if m < 0 {
		return int(^m), SortDesc
	}
	return int(m), SortAsc
}

// Reverse returns the same option in the opposite direction
func (m SortMode) Reverse() SortMode { return ^m }

// templateKind tags a SortTemplate variant
type templateKind int

const (
	templateStatic templateKind = iota
	templatePlayRank
)

// SortTemplate is either a static ORDER BY expression or the play-rank
// ordering that is synthesized per build from the play-count ledger.
// Static expressions reference the direction as %[1]s.
type SortTemplate struct {
	kind templateKind
	expr string
}

// Static returns a template for a fixed ORDER BY expression
func Static(expr string) SortTemplate {
	return SortTemplate{kind: templateStatic, expr: expr}
}

// PlayRank is the "most played" ordering
var PlayRank = SortTemplate{kind: templatePlayRank}

// IsPlayRank reports whether the template is the play-rank variant
func (t SortTemplate) IsPlayRank() bool { return t.kind == templatePlayRank }

// Expr returns the raw expression of a static template
func (t SortTemplate) Expr() string { return t.expr }

// Format substitutes the direction into a static template
func (t SortTemplate) Format(dir SortDirection) string {
	return fmt.Sprintf(t.expr, dir.Token())
}

// SortOption is one entry of a kind's sort catalog
type SortOption struct {
	Label    string
	Template SortTemplate
}

// SortLabels returns the human readable names of the kind's sort options
func (c *KindConfig) SortLabels() []string {
	labels := make([]string, len(c.Sorts))
	for i, opt := range c.Sorts {
		labels[i] = opt.Label
	}
	return labels
}

// SortTemplate looks up the template for mode and returns it with the
// resolved direction.
func (c *KindConfig) SortTemplate(mode SortMode) (SortTemplate, SortDirection, error) {
	index, dir := mode.Resolve()
	if index < 0 || index >= len(c.Sorts) {
		return SortTemplate{}, dir, fmt.Errorf("%w: %d for %s (have %d options)",
			domain.ErrInvalidSortMode, int(mode), c.Kind, len(c.Sorts))
	}
	return c.Sorts[index].Template, dir, nil
}

// DescribeMode renders a mode as "Label ↑" or "Label ↓"
func (c *KindConfig) DescribeMode(mode SortMode) string {
	index, dir := mode.Resolve()
	if index < 0 || index >= len(c.Sorts) {
		return "Unknown"
	}
	arrow := "↑"
	if dir == SortDesc {
		arrow = "↓"
	}
	return strings.TrimSpace(c.Sorts[index].Label + " " + arrow)
}
