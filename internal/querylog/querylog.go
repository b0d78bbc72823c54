// Package querylog wraps a catalog accessor with a diagnostic dump of every
// query and its results.
package querylog

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mmcdole/vinyl/internal/domain"
)

// Accessor logs each query before running it and every returned row after.
// Dumping consumes the row set, so the query is run a second time and the
// caller receives the fresh result.
type Accessor struct {
	next   domain.CatalogAccessor
	logger *slog.Logger
}

// Wrap decorates next with query logging
func Wrap(next domain.CatalogAccessor, logger *slog.Logger) *Accessor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Accessor{next: next, logger: logger}
}

func (a *Accessor) Execute(ctx context.Context, spec domain.QuerySpec) (domain.Rows, error) {
	a.logger.Debug("executing query",
		"store", spec.Store,
		"projection", spec.Projection,
		"selection", spec.Selection,
		"args", spec.Args,
		"order", spec.SortOrder,
	)

	rows, err := a.next.Execute(ctx, spec)
	if err != nil {
		a.logger.Debug("query failed", "error", err)
		return nil, err
	}

	a.dump(rows)
	rows.Close()

	return a.next.Execute(ctx, spec)
}

func (a *Accessor) dump(rows domain.Rows) {
	columns := make([]string, len(rows.Columns()))
	for i, col := range rows.Columns() {
		columns[i] = StripTable(col)
	}
	a.logger.Debug("query result", "count", rows.Count(), "columns", columns)

	for i := 0; i < rows.Count(); i++ {
		if !rows.MoveTo(i) {
			break
		}
		a.logger.Debug("row", "row", FormatRow(rows, i, columns))
	}
}

// StripTable removes a "table." qualifier from a column name
func StripTable(col string) string {
	if i := strings.LastIndexByte(col, '.'); i >= 0 {
		return col[i+1:]
	}
	return col
}

// FormatRow renders the current row as "[pos] col:value, ..."
func FormatRow(rows domain.Rows, pos int, columns []string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "[%d]", pos)
	for i, col := range columns {
		if i > 0 {
			sb.WriteByte(',')
		}
		fmt.Fprintf(&sb, " %s:%s", col, formatValue(rows.Value(i)))
	}
	return sb.String()
}

func formatValue(v any) string {
	switch v := v.(type) {
	case nil:
		return "null"
	case []byte:
		return "<blob>"
	default:
		return fmt.Sprint(v)
	}
}
