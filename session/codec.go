package session

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Encoding defines a public type used by trustcore APIs.
//
// Encoding instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Encoding string

const (
	// EncodingCompact is an exported constant or variable used by the trust-and-access engine.
	EncodingCompact Encoding = "compact"
	// EncodingJWT is an exported constant or variable used by the trust-and-access engine.
	EncodingJWT Encoding = "jwt"
)

// DefaultTTL is the session lifetime applied when a caller passes a
// non-positive ttl to [Codec.Issue].
const DefaultTTL = 7 * 24 * time.Hour

// Config defines a public type used by trustcore APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	Secret   []byte
	TTL      time.Duration
	Encoding Encoding

	// Now overrides the clock for tests. Nil means time.Now.
	Now func() time.Time
}

// Codec issues and verifies session tokens. Safe for concurrent use; the
// secret and clock are fixed at construction.
type Codec struct {
	secret   []byte
	ttl      time.Duration
	encoding Encoding
	now      func() time.Time
}

// NewCodec describes the newcodec operation and its observable behavior.
//
// NewCodec may return an error when input validation, dependency calls, or security checks fail.
// NewCodec does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewCodec(cfg Config) (*Codec, error) {
	if len(cfg.Secret) == 0 {
		return nil, errors.New("session codec requires a signing secret")
	}
	if cfg.TTL < 0 {
		return nil, errors.New("invalid session TTL configuration")
	}
	if cfg.TTL == 0 {
		cfg.TTL = DefaultTTL
	}
	switch cfg.Encoding {
	case "":
		cfg.Encoding = EncodingCompact
	case EncodingCompact, EncodingJWT:
	default:
		return nil, errors.New("unsupported session encoding")
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &Codec{
		secret:   cfg.Secret,
		ttl:      cfg.TTL,
		encoding: cfg.Encoding,
		now:      cfg.Now,
	}, nil
}

// Issue signs a claim for userID/role expiring at now+ttl and returns the
// encoded token. A non-positive ttl selects the codec's configured TTL.
func (c *Codec) Issue(userID int64, role Role, ttl time.Duration) (string, error) {
	if userID <= 0 {
		return "", errors.New("invalid user id")
	}
	if !role.Valid() {
		return "", errors.New("invalid role")
	}
	if ttl <= 0 {
		ttl = c.ttl
	}

	expiresAt := c.now().Add(ttl).Unix()

	if c.encoding == EncodingJWT {
		return c.issueJWT(userID, role, expiresAt)
	}

	payload := fmt.Sprintf("%d:%s:%d", userID, role, expiresAt)
	signature := c.sign(payload)

	return base64.URLEncoding.EncodeToString([]byte(payload + ":" + signature)), nil
}

// Verify decodes token, checks its signature in constant time and its expiry
// against the codec clock, and returns the embedded claims. Every failure
// mode — undecodable, wrong arity, non-numeric fields, bad signature,
// expired — reports the same (Claims{}, false).
func (c *Codec) Verify(token string) (Claims, bool) {
	if token == "" {
		return Claims{}, false
	}

	if c.encoding == EncodingJWT {
		return c.verifyJWT(token)
	}

	decoded, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		return Claims{}, false
	}
	raw := string(decoded)

	// Split from the right: payload fields first, signature last.
	payload, signature, ok := cutLast(raw)
	if !ok {
		return Claims{}, false
	}
	rest, expField, ok := cutLast(payload)
	if !ok {
		return Claims{}, false
	}
	uidField, roleField, ok := cutLast(rest)
	if !ok {
		return Claims{}, false
	}

	expected := c.sign(payload)
	if subtle.ConstantTimeCompare([]byte(signature), []byte(expected)) != 1 {
		return Claims{}, false
	}

	userID, err := strconv.ParseInt(uidField, 10, 64)
	if err != nil || userID <= 0 {
		return Claims{}, false
	}

	role := Role(roleField)
	if !role.Valid() {
		return Claims{}, false
	}

	expiresAt, err := strconv.ParseInt(expField, 10, 64)
	if err != nil {
		return Claims{}, false
	}
	if expiresAt <= c.now().Unix() {
		return Claims{}, false
	}

	return Claims{UserID: userID, Role: role, ExpiresAt: expiresAt}, true
}

func (c *Codec) sign(payload string) string {
	mac := hmac.New(sha256.New, c.secret)
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}

// cutLast splits s around its final separator. Splitting from the right
// keeps parsing stable even for inputs that smuggle extra separators into
// the front fields.
func cutLast(s string) (before, after string, found bool) {
	i := strings.LastIndexByte(s, ':')
	if i < 0 {
		return "", "", false
	}
	return s[:i], s[i+1:], true
}
