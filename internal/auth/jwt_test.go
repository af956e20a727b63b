package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndVerify_Success(t *testing.T) {
	t.Parallel()

	svc := NewTokenService("super-secret", "vura", 7*24*time.Hour)

	tok, err := svc.Issue(42, "a@x.com", "Ana")
	require.NoError(t, err)

	claims, err := svc.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "a@x.com", claims.Email)
	assert.Equal(t, "Ana", claims.Name)
	assert.NotEmpty(t, claims.ID)
	assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), claims.ExpiresAt.Time, 5*time.Second)
	assert.Equal(t, svc.TTL(), claims.ExpiresAt.Sub(claims.IssuedAt.Time))
}

func TestVerify_Expired(t *testing.T) {
	t.Parallel()

	svc := NewTokenService("secret", "vura", time.Hour)
	tok, err := svc.Issue(1, "u@x.com", "U")
	require.NoError(t, err)

	svc.now = func() time.Time { return time.Now().Add(time.Hour + time.Minute) }

	_, err = svc.Verify(tok)
	require.ErrorIs(t, err, ErrExpiredToken)
}

func TestVerify_WrongSecret(t *testing.T) {
	t.Parallel()

	tok, err := NewTokenService("right-secret", "vura", time.Hour).Issue(2, "u@x.com", "U")
	require.NoError(t, err)

	_, err = NewTokenService("wrong-secret", "vura", time.Hour).Verify(tok)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_TamperedPayload(t *testing.T) {
	t.Parallel()

	svc := NewTokenService("secret", "vura", time.Hour)
	tok, err := svc.Issue(3, "u@x.com", "U")
	require.NoError(t, err)

	parts := strings.Split(tok, ".")
	require.Len(t, parts, 3)

	other, err := svc.Issue(999, "evil@x.com", "Evil")
	require.NoError(t, err)
	parts[1] = strings.Split(other, ".")[1]

	_, err = svc.Verify(strings.Join(parts, "."))
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_Malformed(t *testing.T) {
	t.Parallel()

	_, err := NewTokenService("k", "vura", time.Hour).Verify("not.a.jwt")
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_WrongIssuer(t *testing.T) {
	t.Parallel()

	tok, err := NewTokenService("k", "someone-else", time.Hour).Issue(4, "u@x.com", "U")
	require.NoError(t, err)

	_, err = NewTokenService("k", "vura", time.Hour).Verify(tok)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_RejectsNoneAlgorithm(t *testing.T) {
	t.Parallel()

	claims := Claims{
		UserID: 5,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "vura",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewTokenService("k", "vura", time.Hour).Verify(tok)
	require.ErrorIs(t, err, ErrInvalidToken)
}
