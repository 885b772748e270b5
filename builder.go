package trustcore

import (
	"errors"
	"time"

	"github.com/hoqouqi/trustcore/capability"
	"github.com/hoqouqi/trustcore/password"
	"github.com/hoqouqi/trustcore/ratelimit"
	"github.com/hoqouqi/trustcore/session"
	"github.com/redis/go-redis/v9"
)

// Builder defines a public type used by trustcore APIs.
//
// Builder instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Builder struct {
	config    Config
	redis     redis.UniversalClient
	auditSink AuditSink
	now       func() time.Time

	built bool
}

// New describes the new operation and its observable behavior.
//
// New does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
		now:    time.Now,
	}
}

// WithConfig replaces the builder's config wholesale.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cfg
	return b
}

// WithSecret sets only the signing secret, keeping the rest of the config.
func (b *Builder) WithSecret(secret string) *Builder {
	b.config.Secret = secret
	return b
}

// WithRedis supplies an optional Redis client. When present, rate limiting
// runs on shared fixed-window counters instead of the in-process sliding
// window, so several processes can split one budget.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithAuditSink supplies the sink receiving security events. Nil keeps the
// dispatcher but discards events.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithClock overrides the engine clock for tests. Nil restores time.Now.
func (b *Builder) WithClock(now func() time.Time) *Builder {
	if now == nil {
		now = time.Now
	}
	b.now = now
	return b
}

// Build validates the config and constructs the Engine. A missing or
// placeholder signing secret fails here — startup, not first use, is where
// that condition surfaces. Build can be called once per Builder.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	if err := validateConfig(b.config); err != nil {
		return nil, err
	}

	hasher, err := password.NewPBKDF2(b.config.Password)
	if err != nil {
		return nil, err
	}

	secret := []byte(b.config.Secret)

	sessions, err := session.NewCodec(session.Config{
		Secret:   secret,
		TTL:      b.config.Session.TTL,
		Encoding: b.config.Session.Encoding,
		Now:      b.now,
	})
	if err != nil {
		return nil, err
	}

	capabilities, err := capability.NewSigner(capability.Config{
		Secret: secret,
		TTL:    b.config.Capability.TTL,
		Now:    b.now,
	})
	if err != nil {
		return nil, err
	}

	engine := &Engine{
		config:       b.config,
		hasher:       hasher,
		sessions:     sessions,
		capabilities: capabilities,
		limiter:      ratelimit.NewSlidingClock(b.now),
		audit:        newAuditDispatcher(b.config.Audit, b.auditSink),
		metrics:      NewMetrics(b.config.Metrics),
	}
	if b.redis != nil {
		engine.redisLimiter = ratelimit.NewRedisWindow(b.redis)
	}

	b.built = true

	return engine, nil
}
