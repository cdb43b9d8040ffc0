package rates

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"fintrack/internal/core"
)

// fakeProvider returns a canned rate table or error and counts calls.
type fakeProvider struct {
	mu    sync.Mutex
	rates map[string]float64
	err   error
	calls int32
	delay time.Duration
}

func (p *fakeProvider) FetchRates(ctx context.Context) (map[string]float64, error) {
	atomic.AddInt32(&p.calls, 1)
	if p.delay > 0 {
		time.Sleep(p.delay)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return nil, p.err
	}
	out := make(map[string]float64, len(p.rates))
	for code, rate := range p.rates {
		out[code] = rate
	}
	return out, nil
}

func (p *fakeProvider) set(rates map[string]float64, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.rates = rates
	p.err = err
}

func TestCacheRefreshOnFirstRead(t *testing.T) {
	provider := &fakeProvider{rates: map[string]float64{"EUR": 0.92, "GBP": 0.79}}
	cache := NewCache(provider, time.Hour)

	if got := cache.Rate(context.Background(), "EUR"); got != 0.92 {
		t.Errorf("Rate(EUR) = %v, want 0.92", got)
	}
	if got := atomic.LoadInt32(&provider.calls); got != 1 {
		t.Errorf("provider called %d times, want 1", got)
	}
	if cache.LastRefreshed().IsZero() {
		t.Error("LastRefreshed is zero after a successful refresh")
	}

	// A second read within the TTL must not hit the provider again.
	cache.Rate(context.Background(), "GBP")
	if got := atomic.LoadInt32(&provider.calls); got != 1 {
		t.Errorf("provider called %d times after warm read, want 1", got)
	}
}

func TestCacheUSDAlwaysOne(t *testing.T) {
	// Even a provider that reports a skewed USD rate must not break the pivot.
	provider := &fakeProvider{rates: map[string]float64{"USD": 0.5, "EUR": 0.92}}
	cache := NewCache(provider, time.Hour)

	if got := cache.Rate(context.Background(), "USD"); got != 1.0 {
		t.Errorf("Rate(USD) = %v, want 1.0", got)
	}
}

func TestCacheUnknownCurrencyFallsOpen(t *testing.T) {
	provider := &fakeProvider{rates: map[string]float64{"EUR": 0.92}}
	cache := NewCache(provider, time.Hour)

	if got := cache.Rate(context.Background(), "XXX"); got != 1.0 {
		t.Errorf("Rate(XXX) = %v, want neutral 1.0", got)
	}
	if got := cache.Rate(context.Background(), " eur "); got != 0.92 {
		t.Errorf("Rate with whitespace and lowercase = %v, want 0.92", got)
	}
}

func TestCacheColdStartFailureUsesFallback(t *testing.T) {
	provider := &fakeProvider{err: errors.New("connection refused")}
	cache := NewCache(provider, time.Hour)

	err := cache.Refresh(context.Background())
	if !errors.Is(err, core.ErrProviderUnavailable) {
		t.Fatalf("Refresh error = %v, want ErrProviderUnavailable", err)
	}

	if got := cache.Rate(context.Background(), "EUR"); got != 0.92 {
		t.Errorf("fallback Rate(EUR) = %v, want 0.92", got)
	}
	if got := cache.Rate(context.Background(), "USD"); got != 1.0 {
		t.Errorf("fallback Rate(USD) = %v, want 1.0", got)
	}
	if !cache.LastRefreshed().IsZero() {
		t.Error("LastRefreshed set on a failed refresh")
	}
}

func TestCacheKeepsStaleSnapshotOnFailure(t *testing.T) {
	provider := &fakeProvider{rates: map[string]float64{"EUR": 0.92}}
	cache := NewCache(provider, 10*time.Millisecond)

	if err := cache.Refresh(context.Background()); err != nil {
		t.Fatalf("initial refresh: %v", err)
	}
	refreshed := cache.LastRefreshed()

	provider.set(nil, errors.New("gateway timeout"))
	time.Sleep(20 * time.Millisecond)

	if got := cache.Rate(context.Background(), "EUR"); got != 0.92 {
		t.Errorf("Rate(EUR) after failed refresh = %v, want stale 0.92", got)
	}
	if !cache.LastRefreshed().Equal(refreshed) {
		t.Error("LastRefreshed advanced on a failed refresh")
	}
}

func TestCacheAllRatesReturnsCopy(t *testing.T) {
	provider := &fakeProvider{rates: map[string]float64{"EUR": 0.92}}
	cache := NewCache(provider, time.Hour)

	all := cache.AllRates(context.Background())
	all["EUR"] = 999

	if got := cache.Rate(context.Background(), "EUR"); got != 0.92 {
		t.Errorf("Rate(EUR) = %v after mutating AllRates result, want 0.92", got)
	}
}

func TestCacheConcurrentReadsSingleFetch(t *testing.T) {
	provider := &fakeProvider{
		rates: map[string]float64{"EUR": 0.92},
		delay: 20 * time.Millisecond,
	}
	cache := NewCache(provider, time.Hour)

	var wg sync.WaitGroup
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if got := cache.Rate(context.Background(), "EUR"); got != 0.92 {
				t.Errorf("Rate(EUR) = %v, want 0.92", got)
			}
		}()
	}
	wg.Wait()

	if got := atomic.LoadInt32(&provider.calls); got != 1 {
		t.Errorf("provider called %d times under concurrent reads, want 1", got)
	}
}
