// Package store persists the play-count ledger in a bbolt database. The
// ledger ranks songs for the "most played" sort.
package store

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"
)

// DefaultTopLimit is the default length of the ranking returned by TopSongs
const DefaultTopLimit = 20

var bucketPlays = []byte("plays")

// playRecord is the stored value of one song
type playRecord struct {
	Count      int64 `json:"count"`
	LastPlayed int64 `json:"last_played"`
}

// PlayCounts implements domain.PlayCountStore using BoltDB.
type PlayCounts struct {
	db       *bolt.DB
	topLimit int

	mu     sync.RWMutex // protects counts
	counts map[int64]playRecord

	now func() time.Time
}

// NewPlayCounts opens the ledger at path. An empty path keeps the ledger in
// memory only. topLimit <= 0 selects DefaultTopLimit.
func NewPlayCounts(path string, topLimit int) (*PlayCounts, error) {
	if topLimit <= 0 {
		topLimit = DefaultTopLimit
	}
	s := &PlayCounts{
		topLimit: topLimit,
		counts:   make(map[int64]playRecord),
		now:      time.Now,
	}
	if path == "" {
		// Memory-only mode (no persistence)
		return s, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	// Create the bucket and load the ledger; it is small enough to hold in memory
	err = db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(bucketPlays)
		if err != nil {
			return err
		}
		return b.ForEach(func(k, v []byte) error {
			if len(k) != 8 {
				return nil
			}
			var rec playRecord
			if json.Unmarshal(v, &rec) != nil {
				return nil // skip corrupt entries
			}
			s.counts[int64(binary.BigEndian.Uint64(k))] = rec
			return nil
		})
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	s.db = db
	return s, nil
}

func (s *PlayCounts) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func songKey(id int64) []byte {
	k := make([]byte, 8)
	binary.BigEndian.PutUint64(k, uint64(id))
	return k
}

// RecordPlay increments the play count of a song
func (s *PlayCounts) RecordPlay(songID int64) error {
	s.mu.Lock()
	rec := s.counts[songID]
	rec.Count++
	rec.LastPlayed = s.now().Unix()
	s.counts[songID] = rec
	s.mu.Unlock()

	return s.put(songID, rec)
}

// Forget removes a song from the ledger, e.g. after it was deleted from the
// catalog.
func (s *PlayCounts) Forget(songID int64) error {
	s.mu.Lock()
	delete(s.counts, songID)
	s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketPlays).Delete(songKey(songID))
	})
}

func (s *PlayCounts) put(songID int64, rec playRecord) error {
	if s.db == nil {
		return nil // Memory-only mode
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketPlays).Put(songKey(songID), data)
	})
}

// Count returns the play count of a song and whether it was ever played
func (s *PlayCounts) Count(songID int64) (int64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.counts[songID]
	return rec.Count, ok
}

// TopSongs returns song ids most played first, ties by ascending id, capped
// at the configured limit. Every call takes a fresh snapshot.
func (s *PlayCounts) TopSongs() ([]int64, error) {
	type ranked struct {
		id    int64
		count int64
	}

	s.mu.RLock()
	all := make([]ranked, 0, len(s.counts))
	for id, rec := range s.counts {
		if rec.Count > 0 {
			all = append(all, ranked{id: id, count: rec.Count})
		}
	}
	s.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		if all[i].count != all[j].count {
			return all[i].count > all[j].count
		}
		return all[i].id < all[j].id
	})
	if len(all) > s.topLimit {
		all = all[:s.topLimit]
	}

	ids := make([]int64, len(all))
	for i, r := range all {
		ids[i] = r.id
	}
	return ids, nil
}
