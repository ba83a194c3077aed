package qcache

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"maintenance-qa-be/internal/pkg/logger"
)

func newTestManager() *Manager {
	return NewManager(func() string { return "v1" }, Config{
		MinTTL:      5 * time.Minute,
		MaxTTL:      60 * time.Minute,
		NegativeTTL: 30 * time.Second,
		Capacity:    3,
	}, logger.NewNopLogger())
}

func grounded(answer string, confidence float64) *Result {
	return &Result{Answer: answer, Confidence: confidence, Route: "deterministic", Cacheable: true}
}

func TestDoCachesAndReplays(t *testing.T) {
	m := newTestManager()
	calls := 0

	compute := func(ctx context.Context) (*Result, error) {
		calls++
		return grounded("42 equipamentos", 0.9), nil
	}

	first, hit, err := m.Do(context.Background(), "quantos equipamentos existem", compute)
	if err != nil || hit {
		t.Fatalf("first call: hit=%v err=%v", hit, err)
	}
	second, hit, err := m.Do(context.Background(), "quantos equipamentos existem", compute)
	if err != nil || !hit {
		t.Fatalf("second call: hit=%v err=%v", hit, err)
	}
	if calls != 1 {
		t.Errorf("compute ran %d times", calls)
	}
	if second.Answer != first.Answer || second.Route != first.Route {
		t.Errorf("replayed result differs: %+v vs %+v", second, first)
	}
}

func TestDoComputeOutlivesCallerCancellation(t *testing.T) {
	m := newTestManager()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// The flight result is shared with other waiters, so the compute
	// context must not carry the initiating caller's cancellation.
	result, hit, err := m.Do(ctx, "quantos equipamentos existem", func(ctx context.Context) (*Result, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return grounded("42 equipamentos", 0.9), nil
	})
	if err != nil {
		t.Fatalf("Do returned error: %v", err)
	}
	if hit {
		t.Fatal("first call reported a cache hit")
	}
	if result.Answer != "42 equipamentos" {
		t.Errorf("answer = %q", result.Answer)
	}
}

func TestDoSingleFlight(t *testing.T) {
	m := newTestManager()
	var calls int32
	release := make(chan struct{})

	compute := func(ctx context.Context) (*Result, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return grounded("one compute", 0.8), nil
	}

	const callers = 16
	var wg sync.WaitGroup
	results := make([]*Result, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r, _, err := m.Do(context.Background(), "same question", compute)
			if err != nil {
				t.Errorf("caller %d: %v", i, err)
				return
			}
			results[i] = r
		}(i)
	}

	// Give the callers time to pile onto the flight, then release it.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("compute ran %d times, want 1", got)
	}
	for i, r := range results {
		if r == nil || r.Answer != "one compute" {
			t.Errorf("caller %d got %+v", i, r)
		}
	}
}

func TestTTLScalesWithConfidence(t *testing.T) {
	m := newTestManager()

	low := m.ttlFor(0)
	mid := m.ttlFor(0.5)
	high := m.ttlFor(1)

	if low != 5*time.Minute {
		t.Errorf("ttlFor(0) = %v", low)
	}
	if high != 60*time.Minute {
		t.Errorf("ttlFor(1) = %v", high)
	}
	if !(low < mid && mid < high) {
		t.Errorf("ttl not monotonic: %v %v %v", low, mid, high)
	}
}

func TestNegativeResultsUseShortTTL(t *testing.T) {
	m := newTestManager()

	_, _, err := m.Do(context.Background(), "pergunta sem resposta", func(ctx context.Context) (*Result, error) {
		return &Result{Answer: "cannot answer", FallbackReason: "no_pattern", Negative: true}, nil
	})
	if err != nil {
		t.Fatal(err)
	}

	entry, ok := m.Lookup("pergunta sem resposta")
	if !ok {
		t.Fatal("negative result was not cached")
	}
	if entry.TTL != 30*time.Second {
		t.Errorf("negative TTL = %v", entry.TTL)
	}
}

func TestUncacheableResultsAreNotStored(t *testing.T) {
	m := newTestManager()

	_, _, err := m.Do(context.Background(), "volatile question", func(ctx context.Context) (*Result, error) {
		return &Result{Answer: "x"}, nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := m.Lookup("volatile question"); ok {
		t.Error("uncacheable result was stored")
	}
}

func TestSchemaVersionChangesFingerprint(t *testing.T) {
	version := "v1"
	m := NewManager(func() string { return version }, Config{}, logger.NewNopLogger())
	calls := 0

	compute := func(ctx context.Context) (*Result, error) {
		calls++
		return grounded("answer", 0.9), nil
	}

	if _, hit, _ := m.Do(context.Background(), "q", compute); hit {
		t.Fatal("unexpected hit")
	}
	version = "v2"
	if _, hit, _ := m.Do(context.Background(), "q", compute); hit {
		t.Fatal("hit across schema versions")
	}
	if calls != 2 {
		t.Errorf("compute ran %d times, want 2", calls)
	}
}

func TestEvictionAtCapacity(t *testing.T) {
	m := newTestManager() // capacity 3

	questions := []string{"q1", "q2", "q3", "q4"}
	for _, q := range questions {
		q := q
		if _, _, err := m.Do(context.Background(), q, func(ctx context.Context) (*Result, error) {
			return grounded(q, 0.9), nil
		}); err != nil {
			t.Fatal(err)
		}
	}

	stored := 0
	for _, q := range questions {
		if _, ok := m.Lookup(q); ok {
			stored++
		}
	}
	if stored > 3 {
		t.Errorf("%d entries stored, capacity is 3", stored)
	}
	// The newest entry must survive the eviction pass.
	if _, ok := m.Lookup("q4"); !ok {
		t.Error("newest entry was evicted")
	}
}

func TestFingerprintStability(t *testing.T) {
	a := Fingerprint("quantos equipamentos", "v1")
	b := Fingerprint("quantos equipamentos", "v1")
	c := Fingerprint("quantos equipamentos", "v2")
	if a != b {
		t.Error("same input produced different fingerprints")
	}
	if a == c {
		t.Error("schema version not part of the fingerprint")
	}
}
