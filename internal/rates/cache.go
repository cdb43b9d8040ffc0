package rates

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"fintrack/internal/core"
)

// DefaultTTL is the staleness window after which a snapshot triggers a
// refresh on the next read.
const DefaultTTL = time.Hour

// fallbackRates keeps the service usable when the provider is unreachable on
// a cold start. Approximate multipliers relative to USD.
var fallbackRates = map[string]float64{
	"USD": 1.0,
	"EUR": 0.92,
	"GBP": 0.79,
	"JPY": 149.50,
	"CAD": 1.36,
	"AUD": 1.52,
}

// Cache holds a snapshot of currency-to-USD multipliers with a staleness TTL.
// The snapshot is replaced wholesale on refresh and never mutated in place;
// USD is always present at 1.0.
type Cache struct {
	provider Provider
	ttl      time.Duration

	mu            sync.RWMutex
	snapshot      map[string]float64
	lastRefreshed time.Time

	// group collapses concurrent stale-cache hits into one provider call.
	group singleflight.Group
}

func NewCache(provider Provider, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		provider: provider,
		ttl:      ttl,
		snapshot: make(map[string]float64),
	}
}

// Rate returns the USD-relative multiplier for code, refreshing first when
// the snapshot is stale or empty. Unknown codes fall back to a neutral 1.0
// multiplier and are logged at this boundary.
func (c *Cache) Rate(ctx context.Context, code string) float64 {
	c.refreshIfStale(ctx)

	code = strings.ToUpper(strings.TrimSpace(code))

	c.mu.RLock()
	rate, ok := c.snapshot[code]
	c.mu.RUnlock()

	if !ok {
		slog.WarnContext(ctx, "Unknown currency code, falling back to 1:1 rate", "currency", code)
		return 1.0
	}
	return rate
}

// AllRates returns a defensive copy of the full snapshot, refreshing first
// when stale.
func (c *Cache) AllRates(ctx context.Context) map[string]float64 {
	c.refreshIfStale(ctx)

	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make(map[string]float64, len(c.snapshot))
	for code, rate := range c.snapshot {
		out[code] = rate
	}
	return out
}

// LastRefreshed returns the timestamp of the last successful refresh, zero
// if no refresh has succeeded yet.
func (c *Cache) LastRefreshed() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastRefreshed
}

func (c *Cache) stale() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.snapshot) == 0 || time.Since(c.lastRefreshed) > c.ttl
}

func (c *Cache) refreshIfStale(ctx context.Context) {
	if !c.stale() {
		return
	}

	// Waiters share one outbound call. Staleness is re-checked inside the
	// flight for callers queued behind a completed refresh.
	c.group.Do("refresh", func() (any, error) {
		if c.stale() {
			c.Refresh(ctx)
		}
		return nil, nil
	})
}

// Refresh fetches a full rate table and replaces the snapshot, forcing USD
// to 1.0. Provider failure is absorbed: a non-empty snapshot is retained
// unchanged, an empty one is seeded from the fixed fallback table. The
// returned error reports what was absorbed.
func (c *Cache) Refresh(ctx context.Context) error {
	fetched, err := c.provider.FetchRates(ctx)
	if err != nil {
		c.mu.Lock()
		defer c.mu.Unlock()

		if len(c.snapshot) > 0 {
			slog.WarnContext(ctx, "Rate refresh failed, serving stale snapshot",
				"error", err,
				"last_refreshed", c.lastRefreshed,
				"currencies", len(c.snapshot))
			return fmt.Errorf("%w: %v", core.ErrProviderUnavailable, err)
		}

		snapshot := make(map[string]float64, len(fallbackRates))
		for code, rate := range fallbackRates {
			snapshot[code] = rate
		}
		c.snapshot = snapshot
		slog.WarnContext(ctx, "Rate refresh failed on cold start, using fallback table",
			"error", err,
			"currencies", len(snapshot))
		return fmt.Errorf("%w: %v", core.ErrProviderUnavailable, err)
	}

	snapshot := make(map[string]float64, len(fetched)+1)
	for code, rate := range fetched {
		snapshot[strings.ToUpper(code)] = rate
	}
	snapshot["USD"] = 1.0

	c.mu.Lock()
	c.snapshot = snapshot
	c.lastRefreshed = time.Now()
	c.mu.Unlock()

	slog.InfoContext(ctx, "Exchange rates refreshed", "currencies", len(snapshot))
	return nil
}
