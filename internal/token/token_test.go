package token

import (
	"encoding/base64"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-jwt-secret-that-is-32-bytes!"

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestService_IssueAndVerify(t *testing.T) {
	s := NewService(testSecret, time.Hour)

	tok, err := s.Issue("user-1", "a@example.com")
	require.NoError(t, err)

	claims, err := s.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "a@example.com", claims.Email)
	require.NotNil(t, claims.ExpiresAt)
	require.NotNil(t, claims.IssuedAt)
	assert.Equal(t, time.Hour, claims.ExpiresAt.Sub(claims.IssuedAt.Time))
}

func TestService_PayloadShape(t *testing.T) {
	s := NewService(testSecret, time.Hour)

	tok, err := s.Issue("user-1", "a@example.com")
	require.NoError(t, err)

	parts := strings.Split(tok, ".")
	require.Len(t, parts, 3)
	raw, err := base64.RawURLEncoding.DecodeString(parts[1])
	require.NoError(t, err)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(raw, &payload))
	assert.Equal(t, "user-1", payload["id"])
	assert.Equal(t, "a@example.com", payload["email"])
	assert.Contains(t, payload, "iat")
	assert.Contains(t, payload, "exp")
}

func TestService_Verify_Expired(t *testing.T) {
	issuedAt := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	issuer := NewService(testSecret, time.Hour, WithClock(fixedClock(issuedAt)))

	tok, err := issuer.Issue("user-1", "a@example.com")
	require.NoError(t, err)

	t.Run("just before exp", func(t *testing.T) {
		v := NewService(testSecret, time.Hour, WithClock(fixedClock(issuedAt.Add(59*time.Minute))))
		_, err := v.Verify(tok)
		assert.NoError(t, err)
	})

	t.Run("exactly at exp", func(t *testing.T) {
		v := NewService(testSecret, time.Hour, WithClock(fixedClock(issuedAt.Add(time.Hour))))
		_, err := v.Verify(tok)
		assert.ErrorIs(t, err, ErrTokenExpired)
	})

	t.Run("after exp", func(t *testing.T) {
		v := NewService(testSecret, time.Hour, WithClock(fixedClock(issuedAt.Add(2*time.Hour))))
		_, err := v.Verify(tok)
		assert.ErrorIs(t, err, ErrTokenExpired)
	})
}

func TestService_IssueWithTTL_Negative(t *testing.T) {
	s := NewService(testSecret, time.Hour)

	tok, err := s.IssueWithTTL("user-1", "a@example.com", -time.Minute)
	require.NoError(t, err)

	_, err = s.Verify(tok)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestService_Verify_WrongSecret(t *testing.T) {
	tok, err := NewService("another-secret-that-is-also-32-bytes", time.Hour).Issue("user-1", "a@example.com")
	require.NoError(t, err)

	_, err = NewService(testSecret, time.Hour).Verify(tok)
	assert.ErrorIs(t, err, ErrTokenInvalidSignature)
}

func TestService_Verify_TamperedPayload(t *testing.T) {
	s := NewService(testSecret, time.Hour)
	tok, err := s.Issue("user-1", "a@example.com")
	require.NoError(t, err)

	parts := strings.Split(tok, ".")
	forged, _ := json.Marshal(map[string]any{
		"id": "user-2", "email": "b@example.com",
		"iat": time.Now().Unix(), "exp": time.Now().Add(time.Hour).Unix(),
	})
	parts[1] = base64.RawURLEncoding.EncodeToString(forged)

	_, err = s.Verify(strings.Join(parts, "."))
	assert.ErrorIs(t, err, ErrTokenInvalidSignature)
}

func TestService_Verify_RejectsOtherAlgorithms(t *testing.T) {
	claims := &Claims{
		UserID: "user-1",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}

	t.Run("none", func(t *testing.T) {
		tok, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = NewService(testSecret, time.Hour).Verify(tok)
		assert.ErrorIs(t, err, ErrTokenInvalidSignature)
	})

	t.Run("HS512", func(t *testing.T) {
		tok, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte(testSecret))
		require.NoError(t, err)

		_, err = NewService(testSecret, time.Hour).Verify(tok)
		assert.ErrorIs(t, err, ErrTokenInvalidSignature)
	})
}

func TestService_Verify_Malformed(t *testing.T) {
	s := NewService(testSecret, time.Hour)

	for _, tok := range []string{"", "abc", "a.b.c", "not.a.jwt.at.all"} {
		_, err := s.Verify(tok)
		assert.ErrorIs(t, err, ErrTokenMalformed, "token %q", tok)
	}
}

func TestService_Verify_MissingExpiration(t *testing.T) {
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{UserID: "user-1"}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = NewService(testSecret, time.Hour).Verify(tok)
	assert.Error(t, err)
}

func TestNewService_DefaultTTL(t *testing.T) {
	s := NewService(testSecret, 0)
	assert.Equal(t, DefaultTTL, s.ttl)
}
