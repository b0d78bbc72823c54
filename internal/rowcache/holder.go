package rowcache

import (
	"sync"

	"github.com/mmcdole/vinyl/internal/domain"
)

// Holder is the artwork slot of one on-screen row. The scrolling surface
// reuses holders for different rows, while the artwork fetcher delivers
// into them from other goroutines; the holder's own mutex serializes both
// without locking the whole cache.
type Holder[V any] struct {
	mu        sync.Mutex
	id        int64
	key       string
	artwork   V
	cacheable bool
}

// ID returns the row id the holder currently displays
func (h *Holder[V]) ID() int64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.id
}

// Key returns the cache key of the displayed row
func (h *Holder[V]) Key() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.key
}

// Artwork returns the displayed artwork and whether it is real artwork
// rather than the fallback.
func (h *Holder[V]) Artwork() (V, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.artwork, h.cacheable
}

// Deliver sets fetched artwork for row id. It returns false, leaving the
// holder untouched, when the holder was reused for another row meanwhile.
func (h *Holder[V]) Deliver(id int64, artwork V) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.id != id || h.key == "" {
		return false
	}
	h.artwork = artwork
	h.cacheable = true
	return true
}

// ArtworkRequester is notified when a bound row has no cached artwork. It
// fetches asynchronously and calls Holder.Deliver.
type ArtworkRequester[V any] interface {
	NeedArtwork(kind domain.MediaKind, id int64, holder *Holder[V])
}

// Binder binds listing rows of one kind to holders, consulting and
// populating the shared cache.
type Binder[V any] struct {
	cache     *Cache[V]
	kind      domain.MediaKind
	fallback  V
	requester ArtworkRequester[V]
}

// NewBinder creates a binder. requester may be nil when artwork is never
// fetched.
func NewBinder[V any](cache *Cache[V], kind domain.MediaKind, fallback V, requester ArtworkRequester[V]) *Binder[V] {
	return &Binder[V]{cache: cache, kind: kind, fallback: fallback, requester: requester}
}

// Bind points holder at row id. Artwork the holder showed for its previous
// row is written back to the cache first, provided it was real artwork.
// On a cache miss the holder shows the fallback and the requester is asked
// for the artwork. Bind reports whether the artwork came from the cache.
func (b *Binder[V]) Bind(holder *Holder[V], id int64) bool {
	key := Key(b.kind, id)

	holder.mu.Lock()
	if holder.cacheable && holder.key != "" {
		b.cache.Put(holder.key, holder.artwork)
	}
	holder.id = id
	holder.key = key
	artwork, hit := b.cache.Get(key)
	if hit {
		holder.artwork = artwork
		holder.cacheable = true
	} else {
		holder.artwork = b.fallback
		holder.cacheable = false
	}
	holder.mu.Unlock()

	if !hit && b.requester != nil {
		b.requester.NeedArtwork(b.kind, id, holder)
	}
	return hit
}

// Release writes the holder's artwork back to the cache, for holders that
// leave the screen without being reused.
func (b *Binder[V]) Release(holder *Holder[V]) {
	holder.mu.Lock()
	defer holder.mu.Unlock()
	if holder.cacheable && holder.key != "" {
		b.cache.Put(holder.key, holder.artwork)
	}
	holder.cacheable = false
	holder.key = ""
}
