package trustcore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/hoqouqi/trustcore/ratelimit"
	"github.com/redis/go-redis/v9"
)

func TestEngineWithRedisLimiter(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run error: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	engine, err := New().
		WithConfig(testConfig()).
		WithRedis(client).
		Build()
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	t.Cleanup(engine.Close)

	ctx := context.Background()
	policy := ratelimit.Policy{Limit: 2, Window: time.Minute}

	for i := 0; i < 2; i++ {
		ok, err := engine.Allow(ctx, "register:198.51.100.7", policy)
		if err != nil {
			t.Fatalf("Allow error: %v", err)
		}
		if !ok {
			t.Fatalf("call %d should be admitted", i+1)
		}
	}

	ok, err := engine.Allow(ctx, "register:198.51.100.7", policy)
	if err != nil {
		t.Fatalf("Allow error: %v", err)
	}
	if ok {
		t.Fatal("third call must be denied by the shared counter")
	}

	// Backend loss surfaces as an error, never as a silent admit.
	mr.Close()
	ok, err = engine.Allow(ctx, "register:198.51.100.7", policy)
	if ok {
		t.Fatal("backend failure must not admit")
	}
	if !errors.Is(err, ratelimit.ErrBackendUnavailable) {
		t.Fatalf("expected ErrBackendUnavailable, got %v", err)
	}
}
