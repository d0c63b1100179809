package security

import (
	"encoding/base64"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasher_HashAndVerify(t *testing.T) {
	t.Parallel()

	h := NewBcryptHasher(bcrypt.MinCost)

	hash, err := h.Hash("s3cret")
	if err != nil {
		t.Fatalf("Hash returned error: %v", err)
	}
	if hash == "s3cret" {
		t.Fatal("hash must not equal plaintext")
	}
	if !h.Verify(hash, "s3cret") {
		t.Error("expected password to verify")
	}
	if h.Verify(hash, "wrong") {
		t.Error("expected wrong password to fail")
	}
}

func TestBcryptHasher_TooLong(t *testing.T) {
	t.Parallel()

	h := NewBcryptHasher(bcrypt.MinCost)
	if _, err := h.Hash(strings.Repeat("a", 73)); !errors.Is(err, ErrPasswordTooLong) {
		t.Fatalf("expected ErrPasswordTooLong, got %v", err)
	}
}

func TestNewBcryptHasher_OutOfRangeCost(t *testing.T) {
	t.Parallel()

	if h := NewBcryptHasher(100); h.Cost != bcrypt.DefaultCost {
		t.Fatalf("expected default cost, got %d", h.Cost)
	}
}

func TestGenerateToken(t *testing.T) {
	t.Parallel()

	tok, err := TokenGenerator{}.NewToken()
	if err != nil {
		t.Fatalf("NewToken returned error: %v", err)
	}
	if len(tok) != 43 {
		t.Fatalf("expected 43 chars, got %d", len(tok))
	}
	raw, err := base64.RawURLEncoding.DecodeString(tok)
	if err != nil {
		t.Fatalf("token is not base64url: %v", err)
	}
	if len(raw) != InvitationTokenSize {
		t.Fatalf("expected %d bytes of entropy, got %d", InvitationTokenSize, len(raw))
	}

	other, err := GenerateToken(InvitationTokenSize)
	if err != nil {
		t.Fatalf("GenerateToken returned error: %v", err)
	}
	if other == tok {
		t.Fatal("expected distinct tokens")
	}

	if _, err := GenerateToken(0); err == nil {
		t.Fatal("expected error for zero size")
	}
}

func TestJWTIssuer_RoundTrip(t *testing.T) {
	t.Parallel()

	issuer := NewJWTIssuer("0123456789abcdef0123456789abcdef", "test", time.Minute)

	token, expiresAt, err := issuer.Issue("user-1", "admin")
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}
	if !expiresAt.After(time.Now()) {
		t.Fatalf("expected expiry in the future, got %v", expiresAt)
	}

	claims, err := issuer.Parse(token)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if claims.Subject != "user-1" || claims.Role != "admin" {
		t.Fatalf("unexpected claims: %+v", claims)
	}

	subject, role, err := issuer.Verify(token)
	if err != nil || subject != "user-1" || role != "admin" {
		t.Fatalf("Verify returned %q %q %v", subject, role, err)
	}
}

func TestJWTIssuer_Rejects(t *testing.T) {
	t.Parallel()

	issuer := NewJWTIssuer("0123456789abcdef0123456789abcdef", "test", time.Minute)
	token, _, err := issuer.Issue("user-1", "employee")
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	other := NewJWTIssuer("ffffffffffffffffffffffffffffffff", "test", time.Minute)
	if _, err := other.Parse(token); !errors.Is(err, ErrInvalidAccessToken) {
		t.Errorf("expected signature mismatch to fail, got %v", err)
	}

	expired := NewJWTIssuer("0123456789abcdef0123456789abcdef", "test", time.Minute)
	expired.now = func() time.Time { return time.Now().Add(time.Hour) }
	if _, err := expired.Parse(token); !errors.Is(err, ErrInvalidAccessToken) {
		t.Errorf("expected expired token to fail, got %v", err)
	}

	none := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{Role: "admin", RegisteredClaims: jwt.RegisteredClaims{Subject: "x", Issuer: "test"}})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("failed to build unsigned token: %v", err)
	}
	if _, err := issuer.Parse(unsigned); !errors.Is(err, ErrInvalidAccessToken) {
		t.Errorf("expected alg=none to fail, got %v", err)
	}
}
