package trustcore

import (
	"context"
	"time"

	"github.com/hoqouqi/trustcore/capability"
	"github.com/hoqouqi/trustcore/csrf"
	"github.com/hoqouqi/trustcore/password"
	"github.com/hoqouqi/trustcore/ratelimit"
	"github.com/hoqouqi/trustcore/session"
)

// Engine defines a public type used by trustcore APIs.
//
// Engine instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Engine struct {
	config       Config
	hasher       *password.PBKDF2
	sessions     *session.Codec
	capabilities *capability.Signer
	limiter      *ratelimit.Sliding
	redisLimiter *ratelimit.RedisWindow
	audit        *auditDispatcher
	metrics      *Metrics
}

// Close stops the audit dispatcher after draining queued events.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

/*
====================================
CREDENTIALS
====================================
*/

// HashPassword derives a fresh credential record. The derivation is
// deliberately slow; keep it off low-latency dispatch paths and never hold
// broader request locks across it.
func (e *Engine) HashPassword(plaintext string) (string, error) {
	return e.hasher.Hash(plaintext)
}

// VerifyPassword reports whether plaintext matches record. Malformed
// records and wrong passwords are indistinguishable. A mismatch is counted
// and audited; the boolean is the only signal callers get.
func (e *Engine) VerifyPassword(ctx context.Context, plaintext, record string) bool {
	ok := e.hasher.Verify(plaintext, record)
	if !ok {
		e.metricInc(MetricPasswordMismatch)
		e.emit(ctx, newAuditEvent(EventPasswordMismatch, 0, ClientIPFromContext(ctx), false, "credential verification failed"))
	}
	return ok
}

// NeedsPasswordUpgrade reports whether record was hashed below the current
// cost and should be re-hashed on the next successful login.
func (e *Engine) NeedsPasswordUpgrade(record string) bool {
	return e.hasher.NeedsUpgrade(record)
}

/*
====================================
SESSIONS
====================================
*/

// IssueSession signs a session token for userID/role. A non-positive ttl
// selects the configured default (one week unless overridden).
func (e *Engine) IssueSession(ctx context.Context, userID int64, role Role, ttl time.Duration) (string, error) {
	token, err := e.sessions.Issue(userID, role, ttl)
	if err != nil {
		return "", err
	}

	e.metricInc(MetricSessionIssued)
	e.emit(ctx, newAuditEvent(EventSessionIssued, userID, ClientIPFromContext(ctx), true, ""))

	return token, nil
}

// VerifySession resolves token to its claims. Malformed, forged, and
// expired tokens all report (Claims{}, false); the caller treats every
// failure as "no valid session".
func (e *Engine) VerifySession(ctx context.Context, token string) (Claims, bool) {
	claims, ok := e.sessions.Verify(token)
	if !ok {
		e.metricInc(MetricSessionRejected)
		e.emit(ctx, newAuditEvent(EventSessionRejected, 0, ClientIPFromContext(ctx), false, "session token rejected"))
		return Claims{}, false
	}
	return claims, true
}

/*
====================================
CSRF
====================================
*/

// IssueCSRFToken mints a fresh anti-forgery token. The caller writes it
// into both the page payload and the [csrf.CookieName] cookie.
func (e *Engine) IssueCSRFToken() (string, error) {
	return csrf.Token()
}

// ValidateCSRF checks the double-submit pair. Rejections are counted and
// audited.
func (e *Engine) ValidateCSRF(ctx context.Context, cookieToken, submittedToken string) bool {
	if csrf.Validate(cookieToken, submittedToken) {
		return true
	}

	e.metricInc(MetricCSRFRejected)
	e.emit(ctx, newAuditEvent(EventCSRFRejected, 0, ClientIPFromContext(ctx), false, "csrf token mismatch"))

	return false
}

/*
====================================
CAPABILITY URLS
====================================
*/

// SignResourceURL mints a capability grant over resourceID for userID. A
// non-positive ttl selects the configured default (ten minutes unless
// overridden).
func (e *Engine) SignResourceURL(ctx context.Context, resourceID, userID int64, ttl time.Duration) capability.Grant {
	grant := e.capabilities.Sign(resourceID, userID, ttl)

	e.metricInc(MetricCapabilityIssued)
	e.emit(ctx, newAuditEvent(EventCapabilityIssued, userID, ClientIPFromContext(ctx), true, ""))

	return grant
}

// VerifyResourceURL checks a presented capability. presentingUserID must be
// the CURRENTLY AUTHENTICATED identity, never a value read from the URL —
// a grant captured by another logged-in user fails here by construction.
func (e *Engine) VerifyResourceURL(ctx context.Context, resourceID, presentingUserID int64, expiresAt int64, signature string) bool {
	if e.capabilities.Verify(resourceID, presentingUserID, expiresAt, signature) {
		return true
	}

	e.metricInc(MetricCapabilityRejected)
	e.emit(ctx, newAuditEvent(EventCapabilityRejected, presentingUserID, ClientIPFromContext(ctx), false, "capability rejected"))

	return false
}

/*
====================================
RATE LIMITING
====================================
*/

// Allow admits or denies one operation under key for the given policy. With
// a Redis client configured at build time the decision runs on shared
// fixed-window counters; otherwise on the in-process sliding window, where
// err is always nil. Denials are counted and audited; the caller maps them
// to a retry-later response class distinct from authentication failures.
func (e *Engine) Allow(ctx context.Context, key string, p ratelimit.Policy) (bool, error) {
	var (
		ok  bool
		err error
	)

	if e.redisLimiter != nil {
		ok, err = e.redisLimiter.AllowPolicy(ctx, key, p)
		if err != nil {
			return false, err
		}
	} else {
		ok = e.limiter.AllowPolicy(key, p)
	}

	if !ok {
		e.metricInc(MetricRateLimitHit)
		event := newAuditEvent(EventRateLimitDenied, 0, ClientIPFromContext(ctx), false, "rate limit exceeded")
		event.Metadata = map[string]string{"key": key}
		e.emit(ctx, event)
	}

	return ok, nil
}

// AllowN reserves n slots under key in one decision. Against the in-process
// window the reservation is all-or-nothing; against Redis the batch is
// counted even when denied (see [ratelimit.RedisWindow.AllowN]).
func (e *Engine) AllowN(ctx context.Context, key string, n int, p ratelimit.Policy) (bool, error) {
	var (
		ok  bool
		err error
	)

	if e.redisLimiter != nil {
		ok, err = e.redisLimiter.AllowN(ctx, key, n, p.Limit, p.Window)
		if err != nil {
			return false, err
		}
	} else {
		ok = e.limiter.AllowN(key, n, p.Limit, p.Window)
	}

	if !ok {
		e.metricInc(MetricRateLimitHit)
		event := newAuditEvent(EventRateLimitDenied, 0, ClientIPFromContext(ctx), false, "rate limit exceeded")
		event.Metadata = map[string]string{"key": key}
		e.emit(ctx, event)
	}

	return ok, nil
}

// LoginPolicy exposes the configured login budget for middleware wiring.
func (e *Engine) LoginPolicy() ratelimit.Policy { return e.config.RateLimit.Login }

// RegisterPolicy exposes the configured registration budget.
func (e *Engine) RegisterPolicy() ratelimit.Policy { return e.config.RateLimit.Register }

// AIAssistPolicy exposes the configured AI-assistance budget.
func (e *Engine) AIAssistPolicy() ratelimit.Policy { return e.config.RateLimit.AIAssist }

/*
====================================
OBSERVABILITY
====================================
*/

// MetricsSnapshot copies the engine's counters.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{Counters: map[MetricID]uint64{}}
	}
	return e.metrics.Snapshot()
}

// AuditDropped reports how many events the dispatcher discarded because its
// buffer was full.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

func (e *Engine) emit(ctx context.Context, event AuditEvent) {
	if e == nil || e.audit == nil {
		return
	}
	e.audit.Emit(ctx, event)
}
