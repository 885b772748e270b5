package session

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestCodec(t *testing.T, clock *fakeClock) *Codec {
	t.Helper()

	codec, err := NewCodec(Config{
		Secret: []byte("unit-test-secret-0123456789"),
		TTL:    time.Hour,
		Now:    clock.Now,
	})
	if err != nil {
		t.Fatalf("NewCodec error: %v", err)
	}
	return codec
}

func TestIssueAndVerify(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	codec := newTestCodec(t, clock)

	token, err := codec.Issue(42, RoleLawyer, time.Hour)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	claims, ok := codec.Verify(token)
	if !ok {
		t.Fatal("expected freshly issued token to verify")
	}
	if claims.UserID != 42 {
		t.Fatalf("UserID = %d, want 42", claims.UserID)
	}
	if claims.Role != RoleLawyer {
		t.Fatalf("Role = %q, want %q", claims.Role, RoleLawyer)
	}
	if want := clock.now.Add(time.Hour).Unix(); claims.ExpiresAt != want {
		t.Fatalf("ExpiresAt = %d, want %d", claims.ExpiresAt, want)
	}
}

func TestVerifyExpired(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	codec := newTestCodec(t, clock)

	token, err := codec.Issue(7, RoleClient, time.Minute)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	clock.Advance(59 * time.Second)
	if _, ok := codec.Verify(token); !ok {
		t.Fatal("token should still verify just before expiry")
	}

	clock.Advance(2 * time.Second)
	if _, ok := codec.Verify(token); ok {
		t.Fatal("token must be invalid once the clock passes expiry")
	}
}

func TestVerifyExpiryIsStrict(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	codec := newTestCodec(t, clock)

	token, err := codec.Issue(7, RoleClient, time.Minute)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	// Exactly at expiry the token is already invalid.
	clock.Advance(time.Minute)
	if _, ok := codec.Verify(token); ok {
		t.Fatal("token must be invalid at the exact expiry instant")
	}
}

func TestIssueUsesDefaultTTL(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	codec := newTestCodec(t, clock)

	token, err := codec.Issue(9, RoleAdmin, 0)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	claims, ok := codec.Verify(token)
	if !ok {
		t.Fatal("expected token to verify")
	}
	if want := clock.now.Add(time.Hour).Unix(); claims.ExpiresAt != want {
		t.Fatalf("ExpiresAt = %d, want codec TTL expiry %d", claims.ExpiresAt, want)
	}
}

func TestVerifyRejectsTampering(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	codec := newTestCodec(t, clock)

	token, err := codec.Issue(1001, RoleClient, time.Hour)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	decoded, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		t.Fatalf("decode error: %v", err)
	}

	// Flip every character of the inner payload+signature string in turn.
	// Any single-character change must invalidate the token.
	for i := range decoded {
		mutated := append([]byte(nil), decoded...)
		if mutated[i] == 'x' {
			mutated[i] = 'y'
		} else {
			mutated[i] = 'x'
		}
		forged := base64.URLEncoding.EncodeToString(mutated)
		if claims, ok := codec.Verify(forged); ok {
			t.Fatalf("tampered token at offset %d verified as %+v", i, claims)
		}
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	codec := newTestCodec(t, clock)

	other, err := NewCodec(Config{
		Secret: []byte("a-completely-different-secret"),
		Now:    clock.Now,
	})
	if err != nil {
		t.Fatalf("NewCodec error: %v", err)
	}

	token, err := other.Issue(5, RoleClient, time.Hour)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	if _, ok := codec.Verify(token); ok {
		t.Fatal("token signed with a different secret must not verify")
	}
}

func TestVerifyMalformedTokens(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	codec := newTestCodec(t, clock)

	enc := func(s string) string { return base64.URLEncoding.EncodeToString([]byte(s)) }

	cases := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"not base64", "%%%not-base64%%%"},
		{"no delimiters", enc("justonefield")},
		{"two fields", enc("1:client")},
		{"three fields", enc("1:client:123")},
		{"non-numeric uid", enc("abc:client:9999999999:deadbeef")},
		{"zero uid", enc("0:client:9999999999:deadbeef")},
		{"unknown role", enc("1:superuser:9999999999:deadbeef")},
		{"non-numeric expiry", enc("1:client:soon:deadbeef")},
		{"bad signature", enc("1:client:9999999999:deadbeef")},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, ok := codec.Verify(tc.token); ok {
				t.Fatalf("expected invalid token to be rejected: %q", tc.token)
			}
		})
	}
}

func TestIssueRejectsBadClaims(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	codec := newTestCodec(t, clock)

	if _, err := codec.Issue(0, RoleClient, time.Hour); err == nil {
		t.Fatal("expected zero user id to be rejected")
	}
	if _, err := codec.Issue(-3, RoleClient, time.Hour); err == nil {
		t.Fatal("expected negative user id to be rejected")
	}
	if _, err := codec.Issue(1, Role("root"), time.Hour); err == nil {
		t.Fatal("expected unknown role to be rejected")
	}
}

func TestNewCodecValidation(t *testing.T) {
	if _, err := NewCodec(Config{}); err == nil {
		t.Fatal("expected missing secret to be rejected")
	}
	if _, err := NewCodec(Config{Secret: []byte("s"), TTL: -time.Hour}); err == nil {
		t.Fatal("expected negative TTL to be rejected")
	}
	if _, err := NewCodec(Config{Secret: []byte("s"), Encoding: Encoding("msgpack")}); err == nil {
		t.Fatal("expected unknown encoding to be rejected")
	}
}

func TestRoleValid(t *testing.T) {
	for _, role := range []Role{RoleClient, RoleLawyer, RoleAdmin} {
		if !role.Valid() {
			t.Fatalf("expected %q to be valid", role)
		}
	}
	for _, role := range []Role{"", "root", "Client", "lawyer "} {
		if role.Valid() {
			t.Fatalf("expected %q to be invalid", role)
		}
	}
}

func TestTokenSurvivesStringTransport(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	codec := newTestCodec(t, clock)

	token, err := codec.Issue(42, RoleClient, time.Hour)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	// Tokens ride in cookies: they must already be URL- and cookie-safe.
	if strings.ContainsAny(token, " ;,\"\\") {
		t.Fatalf("token contains cookie-unsafe characters: %q", token)
	}
}
