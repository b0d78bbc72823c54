package query

import (
	"fmt"
	"strings"

	"github.com/mmcdole/vinyl/internal/domain"
)

// MissingName is shown in place of a null display column
const MissingName = "???"

// BuildLimiter creates a limiter for the row with the given id from rows
// produced by a listing of kind. Rows are expected in the kind's projection
// order: id, primary line, secondary line. Only artists, albums and genres
// can anchor a limiter.
func BuildLimiter(kind domain.MediaKind, rows domain.Rows, id int64) (*domain.Limiter, error) {
	switch kind {
	case domain.KindArtist, domain.KindAlbum, domain.KindGenre:
	default:
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedLimiterKind, kind)
	}

	if !seek(rows, id) {
		return nil, fmt.Errorf("%w: %s %d", domain.ErrRowNotFound, kind, id)
	}

	switch kind {
	case domain.KindArtist:
		return &domain.Limiter{
			Kind:      kind,
			Names:     []string{displayName(rows, 1)},
			Selection: fmt.Sprintf("%s=%d", domain.ColumnArtistID, id),
		}, nil
	case domain.KindAlbum:
		return &domain.Limiter{
			Kind:      kind,
			Names:     []string{displayName(rows, 1), displayName(rows, 2)},
			Selection: fmt.Sprintf("%s=%d", domain.ColumnAlbumID, id),
		}, nil
	default:
		return &domain.Limiter{
			Kind:    kind,
			Names:   []string{displayName(rows, 1)},
			GenreID: id,
		}, nil
	}
}

// seek positions rows on the row whose id column equals id. Row sets are
// UI sized, so a linear scan is fine.
func seek(rows domain.Rows, id int64) bool {
	if rows == nil {
		return false
	}
	for i, n := 0, rows.Count(); i < n; i++ {
		if rows.MoveTo(i) && rows.Int64(0) == id {
			return true
		}
	}
	return false
}

func displayName(rows domain.Rows, col int) string {
	if s, ok := rows.String(col); ok {
		return s
	}
	return MissingName
}

// Stack records the limiters applied while drilling down from a base
// listing, e.g. artist -> album. The top of the stack is the limiter in
// effect; entries below it are kept for breadcrumbs and for going back.
type Stack struct {
	base     domain.MediaKind
	limiters []*domain.Limiter
}

// NewStack creates an empty stack over the base listing kind
func NewStack(base domain.MediaKind) *Stack {
	return &Stack{base: base}
}

// Base returns the kind the stack started from
func (s *Stack) Base() domain.MediaKind { return s.base }

// Push narrows the listing further
func (s *Stack) Push(l *domain.Limiter) error {
	if l == nil {
		return fmt.Errorf("%w: nil limiter", domain.ErrInvalidLimiter)
	}
	if err := l.Validate(); err != nil {
		return err
	}
	s.limiters = append(s.limiters, l)
	return nil
}

// Pop removes and returns the innermost limiter, nil when empty
func (s *Stack) Pop() *domain.Limiter {
	if len(s.limiters) == 0 {
		return nil
	}
	top := s.limiters[len(s.limiters)-1]
	s.limiters = s.limiters[:len(s.limiters)-1]
	return top
}

// Current returns the limiter in effect, nil when none
func (s *Stack) Current() *domain.Limiter {
	if len(s.limiters) == 0 {
		return nil
	}
	return s.limiters[len(s.limiters)-1]
}

// Kind returns the kind of the current limiter, KindInvalid when none
func (s *Stack) Kind() domain.MediaKind {
	if cur := s.Current(); cur != nil {
		return cur.Kind
	}
	return domain.KindInvalid
}

// Len returns the number of limiters applied
func (s *Stack) Len() int { return len(s.limiters) }

// Path renders the breadcrumb of limiter names, outermost first
func (s *Stack) Path() string {
	parts := make([]string, 0, len(s.limiters))
	for _, l := range s.limiters {
		if len(l.Names) > 0 {
			parts = append(parts, l.Names[0])
		}
	}
	return strings.Join(parts, " / ")
}
