// Package cache holds fetched collections keyed by logical resource name
// and keeps them consistent with mutations: reads are served
// stale-while-revalidate, invalidation drops the value outright, and a
// late fetch result never overwrites a newer entry.
package cache

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/instantlly/ads-admin/metrics"
)

// Logical resource keys.
const (
	KeyAds        = "ads"
	KeyAnalytics  = "analytics"
	KeyPendingAds = "pendingAds"
)

// FetchFunc loads the authoritative value for a key.
type FetchFunc func(ctx context.Context) (any, error)

// ErrorHandler receives background refresh failures out-of-band. Readers
// keep the last good value; the error is never thrown into an unrelated
// read.
type ErrorHandler func(key string, err error)

type entry struct {
	value      any
	fetchStart time.Time
	fetchedAt  time.Time
	gen        uint64
}

// Store is the keyed cache. Invalidation bumps a per-key generation so a
// fetch that was in flight when the invalidation happened commits nothing:
// the dirty mark always wins over a racing stale write.
type Store struct {
	mu         sync.Mutex
	entries    map[string]*entry
	gens       map[string]uint64
	refreshing map[string]bool

	staleTTL       time.Duration
	refreshTimeout time.Duration
	log            *zap.Logger
	onError        ErrorHandler
	now            func() time.Time
}

type Option func(*Store)

// WithClock injects the time source, for deterministic tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithErrorHandler routes background refresh failures to fn instead of the
// default log line.
func WithErrorHandler(fn ErrorHandler) Option {
	return func(s *Store) { s.onError = fn }
}

func NewStore(staleTTL, refreshTimeout time.Duration, log *zap.Logger, opts ...Option) *Store {
	s := &Store{
		entries:        make(map[string]*entry),
		gens:           make(map[string]uint64),
		refreshing:     make(map[string]bool),
		staleTTL:       staleTTL,
		refreshTimeout: refreshTimeout,
		log:            log,
		now:            time.Now,
	}
	s.onError = func(key string, err error) {
		s.log.Warn("background refresh failed, keeping cached value",
			zap.String("key", key), zap.Error(err))
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get serves the freshest known value for key. A fresh entry returns
// immediately; a stale entry returns immediately and triggers one
// background refresh; a missing or invalidated entry is fetched
// synchronously.
func (s *Store) Get(ctx context.Context, key string, fetch FetchFunc) (any, error) {
	s.mu.Lock()
	if e, ok := s.entries[key]; ok {
		v := e.value
		if s.now().Sub(e.fetchedAt) < s.staleTTL {
			s.mu.Unlock()
			metrics.RecordCacheRead(key, "hit")
			return v, nil
		}
		if !s.refreshing[key] {
			s.refreshing[key] = true
			go s.refresh(key, fetch)
		}
		s.mu.Unlock()
		metrics.RecordCacheRead(key, "stale_hit")
		return v, nil
	}
	gen := s.gens[key]
	s.mu.Unlock()

	metrics.RecordCacheRead(key, "miss")
	start := s.now()
	v, err := fetch(ctx)
	if err != nil {
		return nil, err
	}
	s.commit(key, gen, start, v)
	return v, nil
}

// Invalidate marks keys dirty: the cached value is dropped so the next
// read refetches, and any fetch already in flight for an old generation is
// discarded on arrival. The cache is never patched in place.
func (s *Store) Invalidate(keys ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range keys {
		s.gens[key]++
		delete(s.entries, key)
	}
}

// Poll revalidates key on a fixed interval until ctx is cancelled, so new
// data surfaces without a user-driven read. A failed tick keeps the last
// good value and retries on the next interval.
func (s *Store) Poll(ctx context.Context, key string, interval time.Duration, fetch FetchFunc) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.refresh(key, fetch)
			}
		}
	}()
}

// refresh fetches the key in the background and commits under the usual
// rules. A failure is reported out-of-band and never evicts a cached
// value.
func (s *Store) refresh(key string, fetch FetchFunc) {
	ctx, cancel := context.WithTimeout(context.Background(), s.refreshTimeout)
	defer cancel()

	s.mu.Lock()
	gen := s.gens[key]
	s.mu.Unlock()

	start := s.now()
	v, err := fetch(ctx)

	s.mu.Lock()
	delete(s.refreshing, key)
	s.mu.Unlock()

	if err != nil {
		s.onError(key, err)
		return
	}
	s.commit(key, gen, start, v)
}

// commit installs a fetched value unless the key was invalidated after the
// fetch started, or a fetch that started later already committed.
func (s *Store) commit(key string, gen uint64, start time.Time, v any) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gens[key] != gen {
		return false
	}
	if e, ok := s.entries[key]; ok && e.fetchStart.After(start) {
		return false
	}
	s.entries[key] = &entry{
		value:      v,
		fetchStart: start,
		fetchedAt:  s.now(),
		gen:        gen,
	}
	return true
}

// Peek returns the cached value without fetching, for tests and
// diagnostics.
func (s *Store) Peek(key string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok {
		return nil, false
	}
	return e.value, true
}
