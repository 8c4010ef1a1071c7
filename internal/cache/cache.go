// Package cache keeps fetched months of events in a bbolt database so that
// navigating back and forth does not hit the upstream API every time.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/ulifigueroa/rocket-launches-calendar/internal/metrics"
	"github.com/ulifigueroa/rocket-launches-calendar/internal/models"
	"github.com/ulifigueroa/rocket-launches-calendar/internal/plugin"
)

const bucketEvents = "events"

// Cache stores event lists keyed by date range
type Cache struct {
	db  *bolt.DB
	ttl time.Duration
	now func() time.Time
}

type entry struct {
	FetchedAt time.Time      `json:"fetched_at"`
	Events    []models.Event `json:"events"`
}

// Open opens or creates the cache database at path. Entries older than ttl
// are treated as missing; a zero ttl keeps entries forever.
func Open(path string, ttl time.Duration) (*Cache, error) {
	db, err := bolt.Open(path, 0644, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open cache %s: %w", path, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketEvents))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize cache: %w", err)
	}

	return &Cache{db: db, ttl: ttl, now: time.Now}, nil
}

// Close closes the underlying database
func (c *Cache) Close() error {
	return c.db.Close()
}

// Key returns the cache key of a date range
func Key(start, end time.Time) string {
	return plugin.FormatDate(start) + "/" + plugin.FormatDate(end)
}

// Get returns the events stored under key. ok is false when the key is
// missing or expired.
func (c *Cache) Get(key string) (events []models.Event, ok bool, err error) {
	var e entry
	err = c.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket([]byte(bucketEvents)).Get([]byte(key))
		if v == nil {
			return nil
		}
		ok = true
		return json.Unmarshal(v, &e)
	})
	if err != nil {
		return nil, false, fmt.Errorf("failed to read cache entry %s: %w", key, err)
	}
	if !ok || (c.ttl > 0 && c.now().Sub(e.FetchedAt) > c.ttl) {
		return nil, false, nil
	}
	return e.Events, true, nil
}

// Put stores events under key
func (c *Cache) Put(key string, events []models.Event) error {
	data, err := json.Marshal(entry{FetchedAt: c.now(), Events: events})
	if err != nil {
		return err
	}
	return c.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketEvents)).Put([]byte(key), data)
	})
}

// Purge deletes every expired entry and returns how many were removed
func (c *Cache) Purge() (int, error) {
	if c.ttl <= 0 {
		return 0, nil
	}
	removed := 0
	err := c.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketEvents))
		var stale [][]byte
		err := b.ForEach(func(k, v []byte) error {
			var e entry
			if err := json.Unmarshal(v, &e); err != nil || c.now().Sub(e.FetchedAt) > c.ttl {
				stale = append(stale, append([]byte(nil), k...))
			}
			return nil
		})
		if err != nil {
			return err
		}
		for _, k := range stale {
			if err := b.Delete(k); err != nil {
				return err
			}
		}
		removed = len(stale)
		return nil
	})
	return removed, err
}

// Source wraps next so that results are read from and written to the cache
func (c *Cache) Source(next plugin.Source) *Source {
	return &Source{cache: c, next: next}
}

// Source is a plugin.Source backed by the cache
type Source struct {
	cache *Cache
	next  plugin.Source
}

// FetchEvents serves the range from the cache or fetches and stores it
func (s *Source) FetchEvents(ctx context.Context, start, end time.Time) ([]models.Event, error) {
	key := Key(start, end)

	events, ok, err := s.cache.Get(key)
	if err != nil {
		return nil, err
	}
	if ok {
		metrics.IncCacheHit()
		return events, nil
	}

	metrics.IncCacheMiss()
	return s.Refresh(ctx, start, end)
}

// Refresh fetches the range from the wrapped source and replaces the cache
// entry, ignoring any cached value
func (s *Source) Refresh(ctx context.Context, start, end time.Time) ([]models.Event, error) {
	events, err := s.next.FetchEvents(ctx, start, end)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Put(Key(start, end), events); err != nil {
		return nil, fmt.Errorf("failed to store cache entry: %w", err)
	}
	return events, nil
}
