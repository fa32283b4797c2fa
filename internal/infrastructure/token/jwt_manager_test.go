package token

import (
	"strings"
	"testing"
	"time"

	domain "userauth/backend/internal/domain/auth"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T, secret string, now *time.Time) *JWTManager {
	t.Helper()
	m, err := NewJWTManager(secret, "HS256")
	require.NoError(t, err)
	m.nowFunc = func() time.Time { return *now }
	return m
}

func TestNewJWTManager_Config(t *testing.T) {
	_, err := NewJWTManager("", "HS256")
	require.ErrorIs(t, err, ErrInvalidConfig)

	_, err = NewJWTManager("k", "RS256")
	require.ErrorIs(t, err, ErrInvalidConfig)

	_, err = NewJWTManager("k", "none")
	require.ErrorIs(t, err, ErrInvalidConfig)

	for _, alg := range []string{"HS256", "HS384", "HS512"} {
		m, err := NewJWTManager("k", alg)
		require.NoError(t, err, alg)
		assert.Equal(t, alg, m.method.Alg())
	}
}

func TestIssueAndVerify_Success(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	m := newTestManager(t, "super-secret", &now)

	tok, err := m.Issue("alice", 42, domain.RoleAdmin, time.Hour)
	require.NoError(t, err)
	assert.Len(t, strings.Split(tok, "."), 3)

	claims, err := m.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, domain.RoleAdmin, claims.Role)
	assert.True(t, claims.ExpiresAt.Equal(now.Add(time.Hour)))
}

func TestVerify_ExpiryBoundary(t *testing.T) {
	issued := time.Date(2026, 1, 2, 3, 0, 0, 0, time.UTC)
	now := issued
	m := newTestManager(t, "secret", &now)

	const validity = 60 * time.Minute
	tok, err := m.Issue("bob", 7, domain.RoleUser, validity)
	require.NoError(t, err)

	now = issued.Add(validity - time.Second)
	_, err = m.Verify(tok)
	require.NoError(t, err)

	now = issued.Add(validity + time.Second)
	_, err = m.Verify(tok)
	require.ErrorIs(t, err, domain.ErrTokenExpired)
}

func TestVerify_WrongSecret(t *testing.T) {
	now := time.Now()
	issuer := newTestManager(t, "right-secret", &now)
	verifier := newTestManager(t, "wrong-secret", &now)

	tok, err := issuer.Issue("u2", 2, domain.RoleUser, time.Hour)
	require.NoError(t, err)

	_, err = verifier.Verify(tok)
	require.ErrorIs(t, err, domain.ErrTokenMalformed)
}

func TestVerify_TamperedPayload(t *testing.T) {
	now := time.Now()
	m := newTestManager(t, "secret", &now)

	tok, err := m.Issue("carol", 3, domain.RoleUser, time.Hour)
	require.NoError(t, err)

	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID: ptr(int64(3)),
		Role:   string(domain.RoleAdmin),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "carol",
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}).SignedString([]byte("attacker"))
	require.NoError(t, err)

	parts := strings.Split(tok, ".")
	forgedParts := strings.Split(forged, ".")
	tampered := parts[0] + "." + forgedParts[1] + "." + parts[2]

	_, err = m.Verify(tampered)
	require.ErrorIs(t, err, domain.ErrTokenMalformed)
}

func TestVerify_AlgorithmMismatch(t *testing.T) {
	now := time.Now()
	m := newTestManager(t, "secret", &now)

	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS512, Claims{
		UserID: ptr(int64(1)),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "dave",
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = m.Verify(tok)
	require.ErrorIs(t, err, domain.ErrTokenMalformed)
}

func TestVerify_MissingClaims(t *testing.T) {
	now := time.Now()
	m := newTestManager(t, "secret", &now)
	exp := now.Add(time.Hour).Unix()

	noID, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "erin", "role": "user", "exp": exp,
	}).SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = m.Verify(noID)
	require.ErrorIs(t, err, domain.ErrMissingClaims)

	noSub, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id": 5, "role": "user", "exp": exp,
	}).SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = m.Verify(noSub)
	require.ErrorIs(t, err, domain.ErrMissingClaims)
}

func TestVerify_NoExpiryRejected(t *testing.T) {
	now := time.Now()
	m := newTestManager(t, "secret", &now)

	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "frank", "id": 6,
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = m.Verify(tok)
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrTokenExpired)
}

func TestVerify_Malformed(t *testing.T) {
	now := time.Now()
	m := newTestManager(t, "k", &now)

	for _, raw := range []string{"", "not.a.jwt", "abc"} {
		_, err := m.Verify(raw)
		require.ErrorIs(t, err, domain.ErrTokenMalformed, raw)
	}
}

func ptr[T any](v T) *T { return &v }
