package qcache

import (
	"context"
	"crypto/sha256"
	"fmt"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"

	"maintenance-qa-be/internal/pkg/logger"
)

// Entry is a cached, previously validated answer. Entries are written
// whole; a fingerprint is either absent or fully populated.
type Entry struct {
	Fingerprint string
	Result      Result
	TTL         time.Duration
	CreatedAt   time.Time

	mu         sync.Mutex
	hitCount   int64
	lastAccess time.Time
}

// Touch records a hit and returns the running count.
func (e *Entry) Touch() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.hitCount++
	e.lastAccess = time.Now()
	return e.hitCount
}

func (e *Entry) snapshot() (int64, time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.hitCount, e.lastAccess
}

// Result is what a compute pass hands back for possible caching. It is
// the full answer payload, so a cache hit can be replayed as-is.
type Result struct {
	Answer            string
	Confidence        float64
	Route             string
	ValidationOutcome string
	FallbackReason    string // empty for grounded answers
	Suggestion        string
	Cacheable         bool // fallback answers set false or rely on negative TTL
	Negative          bool // cache briefly to avoid hammering a known-bad path
}

type Config struct {
	MinTTL      time.Duration
	MaxTTL      time.Duration
	NegativeTTL time.Duration
	Capacity    int
}

// Manager maps question fingerprints to validated answers and enforces
// at-most-one in-flight computation per fingerprint. Different
// fingerprints proceed fully in parallel; the singleflight group only
// guards in-memory bookkeeping, never the compute call itself holding a
// lock.
type Manager struct {
	store         *gocache.Cache
	flight        singleflight.Group
	schemaVersion func() string
	cfg           Config
	log           logger.ILogger
}

func NewManager(schemaVersion func() string, cfg Config, log logger.ILogger) *Manager {
	if cfg.MinTTL <= 0 {
		cfg.MinTTL = 5 * time.Minute
	}
	if cfg.MaxTTL < cfg.MinTTL {
		cfg.MaxTTL = cfg.MinTTL
	}
	if cfg.NegativeTTL <= 0 {
		cfg.NegativeTTL = 30 * time.Second
	}
	if cfg.Capacity <= 0 {
		cfg.Capacity = 1000
	}
	return &Manager{
		// Sweep expired entries every few minutes; lookups also reclaim
		// lazily via go-cache expiry semantics.
		store:         gocache.New(cfg.MinTTL, 5*time.Minute),
		schemaVersion: schemaVersion,
		cfg:           cfg,
		log:           log,
	}
}

// Fingerprint hashes the normalized question together with the schema
// version, so a schema bump invalidates all prior entries implicitly.
func Fingerprint(normalizedQuestion string, schemaVersion string) string {
	sum := sha256.Sum256([]byte(normalizedQuestion + "\x00" + schemaVersion))
	return fmt.Sprintf("%x", sum)
}

// Do returns the cached answer for the question when a live entry
// exists; otherwise it arbitrates so exactly one compute runs per
// fingerprint, with concurrent callers sharing that result.
// The bool result reports whether the answer came from cache.
func (m *Manager) Do(
	ctx context.Context,
	normalizedQuestion string,
	compute func(ctx context.Context) (*Result, error),
) (*Result, bool, error) {
	fp := Fingerprint(normalizedQuestion, m.schemaVersion())

	if entry, ok := m.lookup(fp); ok {
		hits := entry.Touch()
		m.log.Debug("qcache", "cache hit", map[string]interface{}{
			"fingerprint": fp[:12],
			"hits":        hits,
		})
		cached := entry.Result
		return &cached, true, nil
	}

	// The flight result is shared, so the compute must not die with the
	// first caller's context; deadlines inside compute still apply.
	flightCtx := context.WithoutCancel(ctx)

	value, err, _ := m.flight.Do(fp, func() (interface{}, error) {
		// Re-check: a concurrent flight may have populated the entry
		// between our miss and acquiring the flight slot.
		if entry, ok := m.lookup(fp); ok {
			entry.Touch()
			cached := entry.Result
			return &cached, nil
		}

		result, err := compute(flightCtx)
		if err != nil {
			return nil, err
		}
		m.populate(fp, result)
		return result, nil
	})
	if err != nil {
		return nil, false, err
	}
	return value.(*Result), false, nil
}

// Lookup exposes a read-only probe (used by tests and health checks).
func (m *Manager) Lookup(normalizedQuestion string) (*Entry, bool) {
	return m.lookup(Fingerprint(normalizedQuestion, m.schemaVersion()))
}

func (m *Manager) lookup(fp string) (*Entry, bool) {
	raw, ok := m.store.Get(fp)
	if !ok {
		return nil, false
	}
	entry, ok := raw.(*Entry)
	return entry, ok
}

func (m *Manager) populate(fp string, result *Result) {
	var ttl time.Duration
	switch {
	case result.Negative:
		ttl = m.cfg.NegativeTTL
	case result.Cacheable:
		ttl = m.ttlFor(result.Confidence)
	default:
		return
	}

	m.evictIfFull()
	m.store.Set(fp, &Entry{
		Fingerprint: fp,
		Result:      *result,
		TTL:         ttl,
		CreatedAt:   time.Now(),
		lastAccess:  time.Now(),
	}, ttl)
}

// ttlFor maps confidence linearly onto [MinTTL, MaxTTL].
func (m *Manager) ttlFor(confidence float64) time.Duration {
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}
	span := float64(m.cfg.MaxTTL - m.cfg.MinTTL)
	return m.cfg.MinTTL + time.Duration(confidence*span)
}

// evictIfFull drops the least-recently-used entry once the capacity
// bound is reached. TTL expiry handles everything else.
func (m *Manager) evictIfFull() {
	if m.store.ItemCount() < m.cfg.Capacity {
		return
	}

	var victimKey string
	var victimAccess time.Time
	for key, item := range m.store.Items() {
		entry, ok := item.Object.(*Entry)
		if !ok {
			continue
		}
		_, access := entry.snapshot()
		if victimKey == "" || access.Before(victimAccess) {
			victimKey = key
			victimAccess = access
		}
	}
	if victimKey != "" {
		m.store.Delete(victimKey)
		m.log.Debug("qcache", "evicted LRU entry", map[string]interface{}{
			"fingerprint": victimKey[:12],
		})
	}
}

// Flush drops every entry. Used when a schema change signal arrives
// before fingerprints have rolled over naturally.
func (m *Manager) Flush() {
	m.store.Flush()
}
