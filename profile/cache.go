package profile

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// ResolvedFunc is invoked after a background fetch replaces a pending
// entry with a resolved profile. It runs outside the cache lock.
type ResolvedFunc func(pubkey string, p *Profile)

// Cache memoizes the last-known profile per pubkey. Resolve always
// returns synchronously: the resolved profile if one is cached, else a
// pending fallback while a single background fetch runs.
//
// Entries only move toward more-resolved data. A resolved profile is
// never replaced by a fallback, and a failed fetch leaves the pending
// entry in place without retrying.
type Cache struct {
	svc     Service
	timeout time.Duration
	log     *slog.Logger

	mu         sync.Mutex
	entries    map[string]*cacheEntry
	onResolved ResolvedFunc
}

type cacheEntry struct {
	profile *Profile
	// fetchStarted is set the moment the background fetch is scheduled
	// and never cleared, so repeated Resolve calls (and failed fetches)
	// cannot issue a second fetch for the same pubkey.
	fetchStarted bool
}

// CacheOption configures a Cache.
type CacheOption func(*Cache)

// WithFetchTimeout bounds each background profile fetch.
func WithFetchTimeout(d time.Duration) CacheOption {
	return func(c *Cache) { c.timeout = d }
}

// WithLogger sets the cache logger.
func WithLogger(log *slog.Logger) CacheOption {
	return func(c *Cache) { c.log = log }
}

// NewCache creates a profile cache backed by svc.
func NewCache(svc Service, opts ...CacheOption) *Cache {
	c := &Cache{
		svc:     svc,
		timeout: 10 * time.Second,
		log:     slog.Default(),
		entries: make(map[string]*cacheEntry),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// OnResolved registers the callback fired when a fetch completes.
// The recognition controller hooks in here.
func (c *Cache) OnResolved(fn ResolvedFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onResolved = fn
}

// Resolve returns the profile for pubkey immediately. On first sight
// it creates one pending fallback (the same object is handed back on
// every call until resolution) and schedules the background fetch.
func (c *Cache) Resolve(pubkey string) *Profile {
	c.mu.Lock()
	e, ok := c.entries[pubkey]
	if ok {
		p := e.profile
		c.mu.Unlock()
		return p
	}

	fallback := &Profile{PubKey: pubkey, Pending: true}
	e = &cacheEntry{profile: fallback, fetchStarted: true}
	c.entries[pubkey] = e
	c.mu.Unlock()

	go c.fetch(pubkey)
	return fallback
}

// Peek returns the cached profile without scheduling a fetch.
func (c *Cache) Peek(pubkey string) (*Profile, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[pubkey]
	if !ok {
		return nil, false
	}
	return e.profile, true
}

// Update installs a newer resolved profile, e.g. pushed by a live
// kind-0 subscription, and fires the resolved callback. A nil or
// pending profile is ignored: entries are never downgraded.
func (c *Cache) Update(pubkey string, p *Profile) {
	if p == nil || p.Pending {
		return
	}
	resolved := Sanitize(p)
	resolved.PubKey = pubkey
	resolved.Pending = false

	c.mu.Lock()
	e, ok := c.entries[pubkey]
	if !ok {
		e = &cacheEntry{fetchStarted: true}
		c.entries[pubkey] = e
	}
	e.profile = resolved
	fn := c.onResolved
	c.mu.Unlock()

	if fn != nil {
		fn(pubkey, resolved)
	}
}

func (c *Cache) fetch(pubkey string) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	p, err := c.svc.GetUserProfile(ctx, pubkey)
	if err != nil || p == nil {
		c.log.Warn("profile fetch failed", "pubkey", shortPubkey(pubkey), "error", err)
		return
	}

	resolved := Sanitize(p)
	resolved.PubKey = pubkey
	resolved.Pending = false

	c.mu.Lock()
	e, ok := c.entries[pubkey]
	if !ok {
		// Resolve created the entry before spawning us; a missing entry
		// means nothing, but guard anyway.
		e = &cacheEntry{fetchStarted: true}
		c.entries[pubkey] = e
	}
	e.profile = resolved
	fn := c.onResolved
	c.mu.Unlock()

	if fn != nil {
		fn(pubkey, resolved)
	}
}

func shortPubkey(pk string) string {
	if len(pk) <= 12 {
		return pk
	}
	return pk[:12]
}
