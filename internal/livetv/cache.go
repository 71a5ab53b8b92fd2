// Package livetv caches live channel lookups for the playback controller.
package livetv

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/llehouerou/lumen/internal/media"
)

// DefaultTTL is how long a fetched channel is served from the cache.
const DefaultTTL = 5 * time.Minute

// ErrNotChannel is returned when the source resolves an id to something that
// is not a live channel.
var ErrNotChannel = errors.New("not a live channel")

// Source fetches a channel and the program currently airing on it.
type Source interface {
	GetChannel(ctx context.Context, id uuid.UUID) (*media.Item, error)
}

type entry struct {
	item    *media.Item
	fetched time.Time
}

// Cache is a TTL cache in front of a Source. It is safe for concurrent use.
type Cache struct {
	source Source
	ttl    time.Duration
	now    func() time.Time
	logger logrus.FieldLogger

	mu      sync.Mutex
	entries map[uuid.UUID]*entry
	played  map[uuid.UUID]time.Time
	reload  bool
}

// Option configures a Cache.
type Option func(*Cache)

// WithTTL overrides DefaultTTL.
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithClock sets the time source used for expiry and play dates.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// WithLogger sets the logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(c *Cache) { c.logger = l }
}

// NewCache creates a cache over source.
func NewCache(source Source, opts ...Option) *Cache {
	c := &Cache{
		source:  source,
		ttl:     DefaultTTL,
		now:     time.Now,
		entries: make(map[uuid.UUID]*entry),
		played:  make(map[uuid.UUID]time.Time),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		l := logrus.New()
		l.SetLevel(logrus.PanicLevel)
		c.logger = l
	}
	return c
}

// Channel returns the channel with its current program. A cached copy is
// served while it is fresh, the program has not ended and no reload is
// pending.
func (c *Cache) Channel(ctx context.Context, id uuid.UUID) (*media.Item, error) {
	c.mu.Lock()
	if e, ok := c.entries[id]; ok && c.fresh(e) {
		item := c.copyLocked(e.item)
		c.mu.Unlock()
		return item, nil
	}
	c.mu.Unlock()

	item, err := c.source.GetChannel(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get channel %s: %w", id, err)
	}
	if item == nil || !item.IsLive() {
		return nil, fmt.Errorf("get channel %s: %w", id, ErrNotChannel)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	stored := *item
	c.entries[id] = &entry{item: &stored, fetched: c.now()}
	c.reload = false
	c.logger.WithField("channel", id).Debug("channel cached")
	return c.copyLocked(&stored), nil
}

func (c *Cache) fresh(e *entry) bool {
	if c.reload {
		return false
	}
	now := c.now()
	if now.Sub(e.fetched) >= c.ttl {
		return false
	}
	if p := e.item.CurrentProgram; p != nil && !p.End.IsZero() && !now.Before(p.End) {
		return false
	}
	return true
}

// copyLocked returns a copy the caller may mutate, with the latest play date.
func (c *Cache) copyLocked(item *media.Item) *media.Item {
	out := *item
	if item.CurrentProgram != nil {
		p := *item.CurrentProgram
		out.CurrentProgram = &p
	}
	if at, ok := c.played[item.ID]; ok && at.After(out.LastPlayed) {
		out.LastPlayed = at
	}
	return &out
}

// ForceReload makes the next lookup of every channel hit the source.
func (c *Cache) ForceReload() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reload = true
}

// MarkPlayed records that the channel was tuned at the given time. It is kept
// across reloads so recently watched channels stay ordered.
func (c *Cache) MarkPlayed(id uuid.UUID, at time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.played[id] = at
	if e, ok := c.entries[id]; ok {
		e.item.LastPlayed = at
	}
}

// LastPlayed returns when the channel was last tuned, if ever.
func (c *Cache) LastPlayed(id uuid.UUID) (time.Time, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	at, ok := c.played[id]
	return at, ok
}

// Len returns the number of cached channels.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
