package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	lfuzzy "github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/sahilm/fuzzy"
	"golang.org/x/term"

	"github.com/mmcdole/vinyl/internal/catalog"
	"github.com/mmcdole/vinyl/internal/domain"
	"github.com/mmcdole/vinyl/internal/query"
)

// Color palette
var (
	Amber     = lipgloss.Color("#E5A00D")
	DimGray   = lipgloss.Color("#6B7280")
	LightGray = lipgloss.Color("#9CA3AF")
	White     = lipgloss.Color("#F9FAFB")
)

// Text styles
var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(White).
			Bold(true)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(LightGray)

	DimStyle = lipgloss.NewStyle().
			Foreground(DimGray)

	AccentStyle = lipgloss.NewStyle().
			Foreground(Amber)
)

const (
	artworkMark   = "▣"
	noArtworkMark = "·"
)

// parseKind parses a kind name and suggests the closest kind on a typo
func parseKind(s string) (domain.MediaKind, error) {
	kind, err := domain.ParseKind(s)
	if err == nil {
		return kind, nil
	}
	if suggestion := suggestKind(s); suggestion != "" {
		return domain.KindInvalid, fmt.Errorf("%w, did you mean %q?", err, suggestion)
	}
	return domain.KindInvalid, err
}

// suggestKind returns the kind name closest to s, "" when none is close
func suggestKind(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ""
	}
	names := make([]string, 0, len(domain.Kinds()))
	for _, k := range domain.Kinds() {
		names = append(names, k.String()+"s")
	}

	if matches := lfuzzy.RankFindFold(s, names); len(matches) > 0 {
		sort.Sort(matches)
		return matches[0].Target
	}

	best, bestDist := "", 3
	for _, name := range names {
		if d := lfuzzy.LevenshteinDistance(s, name); d < bestDist {
			best, bestDist = name, d
		}
	}
	return best
}

// renderer prints rows to stdout, styled when stdout is a terminal
type renderer struct {
	out   io.Writer
	width int
}

func newRenderer() *renderer {
	r := &renderer{out: os.Stdout}
	fd := int(os.Stdout.Fd())
	if term.IsTerminal(fd) {
		if w, _, err := term.GetSize(fd); err == nil {
			r.width = w
		}
	}
	return r
}

func (r *renderer) header(path, sortLabel string, count int) {
	parts := []string{}
	if path != "" {
		parts = append(parts, AccentStyle.Render(path))
	}
	parts = append(parts, DimStyle.Render(fmt.Sprintf("%d rows, sorted by %s", count, sortLabel)))
	fmt.Fprintln(r.out, strings.Join(parts, "  "))
}

// rows prints one line per row: id, primary line and secondary line. marks,
// when set, holds the artwork MIME type of each row.
func (r *renderer) rows(rows domain.Rows, filter string, marks []string) {
	words := strings.Fields(strings.ToLower(filter))
	idWidth := 1
	for i := 0; i < rows.Count(); i++ {
		rows.MoveTo(i)
		if w := len(fmt.Sprint(rows.Int64(0))); w > idWidth {
			idWidth = w
		}
	}

	for i := 0; i < rows.Count(); i++ {
		rows.MoveTo(i)
		line := DimStyle.Render(fmt.Sprintf("%*d", idWidth, rows.Int64(0))) + " "
		if marks != nil {
			if marks[i] != "" {
				line += AccentStyle.Render(artworkMark) + " "
			} else {
				line += DimStyle.Render(noArtworkMark) + " "
			}
		}
		line += highlight(displayColumn(rows, 1), words)
		if len(rows.Columns()) > 2 {
			line += "  " + SubtitleStyle.Render(displayColumn(rows, 2))
		}
		if r.width > 0 {
			line = lipgloss.NewStyle().MaxWidth(r.width).Render(line)
		}
		fmt.Fprintln(r.out, line)
	}
}

func displayColumn(rows domain.Rows, col int) string {
	if s, ok := rows.String(col); ok {
		return s
	}
	return query.MissingName
}

// highlight renders text with the characters matched by the search words
// accented.
func highlight(text string, words []string) string {
	lower := strings.ToLower(text)
	if len(words) == 0 || len(lower) != len(text) {
		return TitleStyle.Render(text)
	}

	matched := matchedBytes(lower, words)
	var sb strings.Builder
	for i, r := range text {
		if matched[i] {
			sb.WriteString(AccentStyle.Bold(true).Render(string(r)))
		} else {
			sb.WriteString(TitleStyle.Render(string(r)))
		}
	}
	return sb.String()
}

// matchedBytes returns the byte offsets of text matched by any word
func matchedBytes(text string, words []string) map[int]bool {
	matched := make(map[int]bool)
	for _, w := range words {
		for _, m := range fuzzy.Find(w, []string{text}) {
			for _, idx := range m.MatchedIndexes {
				matched[idx] = true
			}
		}
	}
	return matched
}

func printSorts(cfg *catalog.KindConfig) {
	for i, label := range cfg.SortLabels() {
		marker := " "
		if catalog.Ascending(i) == cfg.DefaultSortMode {
			marker = "*"
		}
		fmt.Printf("%s %d  %s\n", marker, i, label)
	}
}
