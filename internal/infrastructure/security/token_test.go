package security

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/plannr/event-planner/internal/core/domain"
)

func newTestTokenService(secret string) *TokenService {
	return NewTokenService(TokenConfig{Secret: secret, Issuer: "event-planner"}, zerolog.Nop())
}

func TestTokenService_IssueAndVerify(t *testing.T) {
	svc := newTestTokenService("secret")

	token, expiresAt, err := svc.Issue("user-1")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.WithinDuration(t, time.Now().Add(DefaultTokenTTL), expiresAt, time.Minute)

	userID, err := svc.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "user-1", userID)
}

func TestTokenService_IssueRejectsEmptyUser(t *testing.T) {
	_, _, err := newTestTokenService("secret").Issue("")
	require.Error(t, err)
}

func TestTokenService_ExpiredToken(t *testing.T) {
	svc := newTestTokenService("secret")
	svc.now = func() time.Time { return time.Now().Add(-31 * 24 * time.Hour) }
	token, _, err := svc.Issue("user-1")
	require.NoError(t, err)

	svc.now = time.Now
	_, err = svc.Verify(token)
	require.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestTokenService_WrongSecret(t *testing.T) {
	token, _, err := newTestTokenService("secret").Issue("user-1")
	require.NoError(t, err)

	_, err = newTestTokenService("other-secret").Verify(token)
	require.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestTokenService_WrongIssuer(t *testing.T) {
	other := NewTokenService(TokenConfig{Secret: "secret", Issuer: "someone-else"}, zerolog.Nop())
	token, _, err := other.Issue("user-1")
	require.NoError(t, err)

	_, err = newTestTokenService("secret").Verify(token)
	require.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestTokenService_RejectsOtherAlgorithms(t *testing.T) {
	claims := jwt.RegisteredClaims{
		Subject:   "user-1",
		Issuer:    "event-planner",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = newTestTokenService("secret").Verify(unsigned)
	require.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestTokenService_MissingExpiryOrSubject(t *testing.T) {
	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject: "user-1",
		Issuer:  "event-planner",
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	noSub, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Issuer:    "event-planner",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	svc := newTestTokenService("secret")
	for _, tok := range []string{noExp, noSub, "garbage", ""} {
		_, err := svc.Verify(tok)
		require.ErrorIs(t, err, domain.ErrInvalidToken)
	}
}

func TestFailureReason(t *testing.T) {
	require.Equal(t, "expired", failureReason(jwt.ErrTokenExpired))
	require.Equal(t, "malformed", failureReason(jwt.ErrTokenMalformed))
	require.Equal(t, "signature", failureReason(jwt.ErrTokenSignatureInvalid))
	require.Equal(t, "claims", failureReason(jwt.ErrTokenInvalidIssuer))
}
