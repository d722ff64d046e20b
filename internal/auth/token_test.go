package auth

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// fixedClock は差し替え可能な固定時刻を返す。
type fixedClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fixedClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

func (c *fixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestCodec(t *testing.T, secret string, clock *fixedClock) *TokenCodec {
	t.Helper()
	codec, err := NewTokenCodec(secret)
	if err != nil {
		t.Fatalf("NewTokenCodec returned error: %v", err)
	}
	return codec.WithClock(clock.Now)
}

func TestNewTokenCodec_EmptySecret_ReturnsError(t *testing.T) {
	if _, err := NewTokenCodec(""); err == nil {
		t.Fatal("expected error for empty secret")
	}
}

func TestTokenCodec_IssueVerify_RoundTrip(t *testing.T) {
	clock := &fixedClock{now: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
	codec := newTestCodec(t, "test-secret", clock)

	token, err := codec.Issue("user-123", "user", SessionTTL)
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	clock.Advance(59 * time.Minute)
	claims, err := codec.Verify(token)
	if err != nil {
		t.Fatalf("Verify returned error: %v", err)
	}
	if claims.UserID != "user-123" {
		t.Errorf("UserID = %q, want %q", claims.UserID, "user-123")
	}
	if claims.Role != "user" {
		t.Errorf("Role = %q, want %q", claims.Role, "user")
	}
	if !claims.IssuedAt.Equal(time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)) {
		t.Errorf("IssuedAt = %v", claims.IssuedAt)
	}
	if !claims.ExpiresAt.Equal(time.Date(2025, 1, 1, 13, 0, 0, 0, time.UTC)) {
		t.Errorf("ExpiresAt = %v", claims.ExpiresAt)
	}
}

func TestTokenCodec_Verify_Expired(t *testing.T) {
	clock := &fixedClock{now: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
	codec := newTestCodec(t, "test-secret", clock)

	token, err := codec.Issue("user-123", "user", SessionTTL)
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	clock.Advance(SessionTTL + time.Second)
	_, err = codec.Verify(token)
	if !errors.Is(err, ErrTokenExpired) {
		t.Errorf("expected ErrTokenExpired, got %v", err)
	}
}

// 有効期限の境界: 発行時刻+TTLの直前までは有効、ちょうどで失効する。
func TestTokenCodec_Verify_ExpiryBoundary(t *testing.T) {
	tests := []struct {
		name     string
		issuedAt time.Time
		wantExp  time.Time
	}{
		{
			name:     "whole second",
			issuedAt: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC),
			wantExp:  time.Date(2025, 1, 1, 13, 0, 0, 0, time.UTC),
		},
		{
			name:     "sub-second issue time rounds expiry up",
			issuedAt: time.Date(2025, 1, 1, 12, 0, 0, 900_000_000, time.UTC),
			wantExp:  time.Date(2025, 1, 1, 13, 0, 1, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock := &fixedClock{now: tt.issuedAt}
			codec := newTestCodec(t, "test-secret", clock)

			token, err := codec.Issue("user-123", "user", SessionTTL)
			if err != nil {
				t.Fatalf("Issue returned error: %v", err)
			}

			// 発行時刻+TTLより前はどの時点でも有効
			for _, before := range []time.Duration{500 * time.Millisecond, time.Nanosecond} {
				clock.Set(tt.issuedAt.Add(SessionTTL - before))
				if _, err := codec.Verify(token); err != nil {
					t.Errorf("Verify at issued+ttl-%v: %v", before, err)
				}
			}

			clock.Set(tt.wantExp.Add(-time.Nanosecond))
			claims, err := codec.Verify(token)
			if err != nil {
				t.Fatalf("Verify just before exp: %v", err)
			}
			if !claims.ExpiresAt.Equal(tt.wantExp) {
				t.Errorf("ExpiresAt = %v, want %v", claims.ExpiresAt, tt.wantExp)
			}

			clock.Set(tt.wantExp)
			if _, err := codec.Verify(token); !errors.Is(err, ErrTokenExpired) {
				t.Errorf("Verify at exp: err = %v, want ErrTokenExpired", err)
			}
		})
	}
}

func TestTokenCodec_Verify_DifferentSecret(t *testing.T) {
	clock := &fixedClock{now: time.Now()}
	issuer := newTestCodec(t, "secret-a", clock)
	verifier := newTestCodec(t, "secret-b", clock)

	token, err := issuer.Issue("user-123", "user", SessionTTL)
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	_, err = verifier.Verify(token)
	if !errors.Is(err, ErrTokenInvalidSignature) {
		t.Errorf("expected ErrTokenInvalidSignature, got %v", err)
	}
}

func TestTokenCodec_Verify_Malformed(t *testing.T) {
	codec := newTestCodec(t, "test-secret", &fixedClock{now: time.Now()})

	inputs := []string{
		"",
		"not-a-token",
		"a.b.c",
		"eyJhbGciOiJIUzI1NiJ9.%%%.sig",
	}
	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			claims, err := codec.Verify(in)
			if !errors.Is(err, ErrTokenMalformed) {
				t.Errorf("Verify(%q) error = %v, want ErrTokenMalformed", in, err)
			}
			if claims != nil {
				t.Errorf("claims should be nil, got %+v", claims)
			}
		})
	}
}

// 改ざんされたペイロードは署名不一致として拒否されることを検証する。
func TestTokenCodec_Verify_TamperedPayload(t *testing.T) {
	clock := &fixedClock{now: time.Now()}
	codec := newTestCodec(t, "test-secret", clock)

	token, err := codec.Issue("user-123", "user", SessionTTL)
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}
	other, err := codec.Issue("user-999", "user", SessionTTL)
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	parts := strings.Split(token, ".")
	otherParts := strings.Split(other, ".")
	forged := parts[0] + "." + otherParts[1] + "." + parts[2]

	if _, err := codec.Verify(forged); !errors.Is(err, ErrTokenInvalidSignature) {
		t.Errorf("expected ErrTokenInvalidSignature, got %v", err)
	}
}

// HS256以外のアルゴリズム（none含む）は拒否されることを検証する。
func TestTokenCodec_Verify_RejectsOtherAlgorithms(t *testing.T) {
	codec := newTestCodec(t, "test-secret", &fixedClock{now: time.Now()})
	claims := sessionClaims{
		UserID: "user-123",
		Role:   "user",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("failed to sign none token: %v", err)
	}
	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("failed to sign HS512 token: %v", err)
	}

	for name, token := range map[string]string{"none": none, "HS512": hs512} {
		t.Run(name, func(t *testing.T) {
			if _, err := codec.Verify(token); err == nil {
				t.Errorf("%s token should be rejected", name)
			}
		})
	}
}

func TestTokenCodec_Verify_MissingExpiration(t *testing.T) {
	codec := newTestCodec(t, "test-secret", &fixedClock{now: time.Now()})
	claims := sessionClaims{UserID: "user-123", Role: "user"}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}

	if _, err := codec.Verify(token); !errors.Is(err, ErrTokenMalformed) {
		t.Errorf("expected ErrTokenMalformed for missing exp, got %v", err)
	}
}

func TestTokenCodec_Verify_MissingUserID(t *testing.T) {
	clock := &fixedClock{now: time.Now()}
	codec := newTestCodec(t, "test-secret", clock)

	token, err := codec.Issue("", "user", SessionTTL)
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	if _, err := codec.Verify(token); !errors.Is(err, ErrTokenMalformed) {
		t.Errorf("expected ErrTokenMalformed for missing userId, got %v", err)
	}
}

func TestFailureReason(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{ErrTokenExpired, "expired"},
		{ErrTokenInvalidSignature, "invalid_signature"},
		{ErrTokenMalformed, "malformed"},
		{errors.New("other"), "malformed"},
	}
	for _, tt := range tests {
		if got := FailureReason(tt.err); got != tt.want {
			t.Errorf("FailureReason(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}
