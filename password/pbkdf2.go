package password

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

const (
	minIterations = 10_000
	minSaltLength = 16
	minKeyLength  = 16
	algorithmID   = "pbkdf2"

	recordFieldCount = 4
)

// Config defines a public type used by trustcore APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	Iterations int
	SaltLength int
	KeyLength  int
}

// PBKDF2 defines a public type used by trustcore APIs.
//
// PBKDF2 instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type PBKDF2 struct {
	config Config
}

type parsedRecord struct {
	iterations int
	salt       []byte
	digest     []byte
}

// NewPBKDF2 describes the newpbkdf2 operation and its observable behavior.
//
// NewPBKDF2 may return an error when input validation, dependency calls, or security checks fail.
// NewPBKDF2 does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewPBKDF2(cfg Config) (*PBKDF2, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	return &PBKDF2{config: cfg}, nil
}

// Hash derives a fresh credential record for password. Two calls with the
// same password produce different records because the salt is random.
//
// Hash fails only when the entropy source fails.
func (p *PBKDF2) Hash(password string) (string, error) {
	// Password processing uses raw string bytes exactly as provided (no Unicode normalization).
	salt := make([]byte, p.config.SaltLength)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return "", err
	}

	digest := pbkdf2.Key([]byte(password), salt, p.config.Iterations, p.config.KeyLength, sha256.New)

	return fmt.Sprintf(
		"%s$%d$%s$%s",
		algorithmID,
		p.config.Iterations,
		hex.EncodeToString(salt),
		hex.EncodeToString(digest),
	), nil
}

// Verify reports whether password matches the given credential record.
//
// The digest is recomputed with the record's own iteration count and salt, so
// records written under older parameters keep verifying. The comparison is
// constant-time. Malformed records verify false; callers cannot distinguish a
// corrupt record from a wrong password through an error path.
func (p *PBKDF2) Verify(password string, record string) bool {
	parsed, err := parseRecord(record)
	if err != nil {
		return false
	}

	computed := pbkdf2.Key([]byte(password), parsed.salt, parsed.iterations, len(parsed.digest), sha256.New)

	return subtle.ConstantTimeCompare(computed, parsed.digest) == 1
}

// NeedsUpgrade reports whether record was produced with a lower cost than the
// current configuration and should be re-hashed on the next successful login.
// Malformed records report false; they fail Verify anyway.
func (p *PBKDF2) NeedsUpgrade(record string) bool {
	parsed, err := parseRecord(record)
	if err != nil {
		return false
	}

	if parsed.iterations < p.config.Iterations {
		return true
	}
	if len(parsed.digest) != p.config.KeyLength {
		return true
	}

	return false
}

func parseRecord(record string) (*parsedRecord, error) {
	parts := strings.Split(record, "$")
	if len(parts) != recordFieldCount {
		return nil, errors.New("invalid record format")
	}

	if parts[0] != algorithmID {
		return nil, errors.New("unsupported algorithm")
	}

	iterations, err := strconv.Atoi(parts[1])
	if err != nil || iterations <= 0 {
		return nil, errors.New("invalid iteration count")
	}

	salt, err := hex.DecodeString(parts[2])
	if err != nil {
		return nil, errors.New("invalid salt encoding")
	}
	if len(salt) < minSaltLength {
		return nil, errors.New("invalid salt length")
	}

	digest, err := hex.DecodeString(parts[3])
	if err != nil {
		return nil, errors.New("invalid digest encoding")
	}
	if len(digest) == 0 {
		return nil, errors.New("invalid digest length")
	}

	return &parsedRecord{
		iterations: iterations,
		salt:       salt,
		digest:     digest,
	}, nil
}

func validateConfig(cfg Config) error {
	if cfg.Iterations < minIterations {
		return errors.New("password iterations must be >= 10000")
	}
	if cfg.SaltLength < minSaltLength {
		return errors.New("password salt length must be >= 16")
	}
	if cfg.KeyLength < minKeyLength {
		return errors.New("password key length must be >= 16")
	}

	return nil
}
