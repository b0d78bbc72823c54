package domain

import "fmt"

// QueueMode tells the consumer of a song query what to do with its rows
type QueueMode int

const (
	ModeNone QueueMode = iota
	ModePlay
	ModeEnqueue
	ModePlayPosFirst
	ModeEnqueuePosFirst
)

// String returns the display name for the mode
func (m QueueMode) String() string {
	switch m {
	case ModePlay:
		return "play"
	case ModeEnqueue:
		return "enqueue"
	case ModePlayPosFirst:
		return "play-pos-first"
	case ModeEnqueuePosFirst:
		return "enqueue-pos-first"
	default:
		return "none"
	}
}

// QuerySpec is a structured catalog query, decoupled from execution.
// Selection uses '?' placeholders bound in order from Args.
type QuerySpec struct {
	Store      Store    // Relation to query
	Projection []string // Columns to return
	Selection  string   // Predicate, empty for none
	Args       []string // Placeholder values, in order
	SortOrder  string   // ORDER BY expression, empty for catalog order

	// Execution hints
	Mode QueueMode // Song query consumer mode
	Kind MediaKind // Kind of the rows returned; picks the genre member relation
	Data int64     // Auxiliary payload (genre id for StoreGenreMembers)
}

// String renders the query for diagnostics
func (q QuerySpec) String() string {
	return fmt.Sprintf("store=%s,projection=%v,selection=%s,selectionArgs=%v,sortOrder=%s",
		q.Store, q.Projection, q.Selection, q.Args, q.SortOrder)
}

// Limiter restricts a listing to the children of one parent item, such as
// the songs of an album. Artist and album limiters carry a Selection
// fragment; genre limiters carry GenreID because genre membership is a
// separate relation.
type Limiter struct {
	Kind      MediaKind
	Names     []string // Display names, most specific first
	Selection string   // "column=value" fragment (artist, album)
	GenreID   int64    // Genre row id (genre)
}

// Validate checks that the limiter payload matches its kind
func (l *Limiter) Validate() error {
	switch l.Kind {
	case KindGenre:
		if l.GenreID <= 0 {
			return fmt.Errorf("%w: genre limiter without genre id", ErrInvalidLimiter)
		}
	case KindArtist, KindAlbum:
		if l.Selection == "" {
			return fmt.Errorf("%w: %s limiter without selection", ErrInvalidLimiter, l.Kind)
		}
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedLimiterKind, l.Kind)
	}
	return nil
}
