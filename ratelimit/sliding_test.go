package ratelimit

import (
	"sync"
	"testing"
	"time"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

func TestSlidingWindowScenario(t *testing.T) {
	start := time.Unix(1_700_000_000, 0)
	clock := &fakeClock{now: start}
	limiter := NewSlidingClock(clock.Now)

	// Three calls at t=0,1,2 all admitted.
	for i := 0; i < 3; i++ {
		clock.Set(start.Add(time.Duration(i) * time.Second))
		if !limiter.Allow("k", 3, time.Minute) {
			t.Fatalf("call %d should be admitted", i+1)
		}
	}

	// Fourth call at t=3 denied.
	clock.Set(start.Add(3 * time.Second))
	if limiter.Allow("k", 3, time.Minute) {
		t.Fatal("fourth call inside the window must be denied")
	}

	// At t=61 the first admission has left the window.
	clock.Set(start.Add(61 * time.Second))
	if !limiter.Allow("k", 3, time.Minute) {
		t.Fatal("call after the window elapsed must be admitted")
	}
}

func TestSlidingDeniedCallsAreNotRecorded(t *testing.T) {
	start := time.Unix(1_700_000_000, 0)
	clock := &fakeClock{now: start}
	limiter := NewSlidingClock(clock.Now)

	if !limiter.Allow("k", 1, time.Minute) {
		t.Fatal("first call should be admitted")
	}

	// A flood of denied calls must not extend the window.
	for i := 1; i <= 30; i++ {
		clock.Set(start.Add(time.Duration(i) * time.Second))
		if limiter.Allow("k", 1, time.Minute) {
			t.Fatalf("call at t=%d should be denied", i)
		}
	}

	clock.Set(start.Add(61 * time.Second))
	if !limiter.Allow("k", 1, time.Minute) {
		t.Fatal("window must clear once the sole admission ages out")
	}
}

func TestSlidingKeysAreIndependent(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	limiter := NewSlidingClock(clock.Now)

	if !limiter.AllowPolicy("login:203.0.113.9", Policy{Limit: 1, Window: time.Minute}) {
		t.Fatal("first key should be admitted")
	}
	if limiter.AllowPolicy("login:203.0.113.9", Policy{Limit: 1, Window: time.Minute}) {
		t.Fatal("first key should now be at capacity")
	}
	if !limiter.AllowPolicy("login:198.51.100.7", Policy{Limit: 1, Window: time.Minute}) {
		t.Fatal("a different key must carry its own budget")
	}
	if !limiter.AllowPolicy("register:203.0.113.9", Policy{Limit: 1, Window: time.Minute}) {
		t.Fatal("a different action must carry its own budget")
	}

	if limiter.Len() != 3 {
		t.Fatalf("expected 3 tracked keys, got %d", limiter.Len())
	}
}

func TestSlidingRejectsDegenerateArguments(t *testing.T) {
	limiter := NewSliding()

	if limiter.Allow("k", 0, time.Minute) {
		t.Fatal("zero limit must deny")
	}
	if limiter.Allow("k", -1, time.Minute) {
		t.Fatal("negative limit must deny")
	}
	if limiter.Allow("k", 1, 0) {
		t.Fatal("zero window must deny")
	}
}

func TestSlidingConcurrentAdmissions(t *testing.T) {
	const (
		workers = 64
		limit   = 10
	)

	limiter := NewSliding()

	var (
		wg      sync.WaitGroup
		admitMu sync.Mutex
		admits  int
	)

	start := make(chan struct{})
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			if limiter.Allow("fresh-key", limit, time.Minute) {
				admitMu.Lock()
				admits++
				admitMu.Unlock()
			}
		}()
	}

	close(start)
	wg.Wait()

	if admits != limit {
		t.Fatalf("admitted %d of %d concurrent calls, want exactly %d", admits, workers, limit)
	}
}

func TestSlidingAllowNAllOrNothing(t *testing.T) {
	start := time.Unix(1_700_000_000, 0)
	clock := &fakeClock{now: start}
	limiter := NewSlidingClock(clock.Now)

	if !limiter.AllowN("k", 3, 5, time.Minute) {
		t.Fatal("batch within the limit should be admitted")
	}

	// Only 2 slots left; the batch is refused and nothing is recorded.
	if limiter.AllowN("k", 3, 5, time.Minute) {
		t.Fatal("batch overflowing the limit must be denied")
	}
	if !limiter.AllowN("k", 2, 5, time.Minute) {
		t.Fatal("the refused batch must not have consumed slots")
	}

	if limiter.AllowN("k", 0, 5, time.Minute) {
		t.Fatal("n=0 must deny")
	}

	clock.Set(start.Add(61 * time.Second))
	if !limiter.AllowN("k", 5, 5, time.Minute) {
		t.Fatal("window must clear once the admissions age out")
	}
}

func BenchmarkSlidingAllow(b *testing.B) {
	limiter := NewSliding()

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		limiter.Allow("bench-key", 1000, time.Minute)
	}
}
