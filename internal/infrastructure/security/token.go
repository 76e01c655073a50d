package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/plannr/event-planner/internal/core/domain"
	"github.com/plannr/event-planner/internal/pkg/metrics"
)

const DefaultTokenTTL = 30 * 24 * time.Hour

// TokenConfig holds the signing parameters for identity tokens.
type TokenConfig struct {
	Secret string
	Issuer string
	TTL    time.Duration
}

// TokenService issues and verifies HS256 JWTs whose subject is the user id.
// Tokens are stateless: nothing is stored server-side.
type TokenService struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
	log    zerolog.Logger
}

func NewTokenService(cfg TokenConfig, log zerolog.Logger) *TokenService {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenService{
		secret: []byte(cfg.Secret),
		issuer: cfg.Issuer,
		ttl:    ttl,
		now:    time.Now,
		log:    log,
	}
}

// Issue signs a token bound to userID and returns it with its expiry.
func (s *TokenService) Issue(userID string) (string, time.Time, error) {
	if userID == "" {
		return "", time.Time{}, errors.New("issue token: empty user id")
	}

	now := s.now()
	expiresAt := now.Add(s.ttl)
	claims := jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   userID,
		Issuer:    s.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}

	metrics.TokensIssuedTotal.Inc()
	return signed, expiresAt, nil
}

// Verify returns the user id bound to token. Any failure is reported as
// domain.ErrInvalidToken; the concrete reason is only logged.
func (s *TokenService) Verify(token string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err == nil && (!parsed.Valid || claims.Subject == "") {
		err = jwt.ErrTokenInvalidClaims
	}
	if err != nil {
		reason := failureReason(err)
		metrics.TokenVerifyFailuresTotal.WithLabelValues(reason).Inc()
		s.log.Debug().Str("reason", reason).Err(err).Msg("token rejected")
		return "", domain.ErrInvalidToken
	}

	return claims.Subject, nil
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return "expired"
	case errors.Is(err, jwt.ErrTokenMalformed):
		return "malformed"
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return "signature"
	case errors.Is(err, jwt.ErrTokenInvalidClaims), errors.Is(err, jwt.ErrTokenInvalidIssuer), errors.Is(err, jwt.ErrTokenRequiredClaimMissing):
		return "claims"
	default:
		return "other"
	}
}
