package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/bookshelf-api/internal/platform/logger"
)

// MinSecretLength is the minimum HMAC key size in bytes (256 bits).
const MinSecretLength = 32

// Token is a signed credential handed to a client.
type Token struct {
	Value     string
	ExpiresAt time.Time
}

// Claims are the verified contents of a token.
type Claims struct {
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
	ID        string
}

// TokenCodec issues and verifies signed, stateless tokens.
type TokenCodec interface {
	// Issue signs a token for subject that expires after ttl.
	Issue(ctx context.Context, subject string, ttl time.Duration) (*Token, error)

	// Verify checks signature and expiry and returns the claims.
	// Every failure wraps ErrInvalidToken.
	Verify(ctx context.Context, token string) (*Claims, error)
}

// hmacTokenCodec is an implementation of TokenCodec using HMAC-SHA256 signing.
type hmacTokenCodec struct {
	signingKey []byte
	timeFunc   func() time.Time // Injectable for testing
	clockSkew  time.Duration
}

// Ensure hmacTokenCodec implements TokenCodec interface
var _ TokenCodec = (*hmacTokenCodec)(nil)

// NewTokenCodec creates an HS256 TokenCodec. clockSkew is the leeway
// applied to time-based claims during verification.
func NewTokenCodec(secret string, clockSkew time.Duration) (TokenCodec, error) {
	if len(secret) < MinSecretLength {
		return nil, ErrSecretTooShort
	}
	if clockSkew < 0 {
		return nil, fmt.Errorf("clock skew must not be negative, got %s", clockSkew)
	}

	return &hmacTokenCodec{
		signingKey: []byte(secret),
		timeFunc:   time.Now,
		clockSkew:  clockSkew,
	}, nil
}

// Issue creates a signed token with sub, iat, exp and jti claims.
func (c *hmacTokenCodec) Issue(ctx context.Context, subject string, ttl time.Duration) (*Token, error) {
	if subject == "" {
		return nil, errors.New("token subject must not be empty")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("token ttl must be positive, got %s", ttl)
	}

	now := c.timeFunc()
	expiresAt := now.Add(ttl)

	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		ID:        uuid.New().String(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.signingKey)
	if err != nil {
		logger.FromContext(ctx).Error("failed to sign token",
			"error", err,
			"subject", subject,
			"signing_method", jwt.SigningMethodHS256.Name)
		return nil, fmt.Errorf("failed to sign token with HMAC-SHA256: %w", err)
	}

	// exp is encoded with second precision
	return &Token{Value: signed, ExpiresAt: claims.ExpiresAt.Time}, nil
}

// Verify parses tokenString, rejecting anything but a well-formed, unexpired
// HS256 token signed with this codec's secret.
func (c *hmacTokenCodec) Verify(ctx context.Context, tokenString string) (*Claims, error) {
	log := logger.FromContext(ctx)
	now := c.timeFunc()

	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithLeeway(c.clockSkew),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(func() time.Time {
			return now
		}),
	}

	var claims jwt.RegisteredClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims,
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return c.signingKey, nil
		},
		parserOpts...)
	if err != nil {
		mapped := mapParseError(err)
		log.Debug("token verification failed",
			"error", err,
			"reason", mapped.Error())
		return nil, mapped
	}

	if !token.Valid || claims.Subject == "" {
		log.Debug("token verification failed: missing subject")
		return nil, ErrMalformedToken
	}

	result := &Claims{
		Subject:   claims.Subject,
		ExpiresAt: claims.ExpiresAt.Time,
		ID:        claims.ID,
	}
	if claims.IssuedAt != nil {
		result.IssuedAt = claims.IssuedAt.Time
	}

	log.Debug("token verified",
		"subject", result.Subject,
		"token_id", result.ID,
		"expiry", result.ExpiresAt)

	return result, nil
}

// mapParseError folds jwt library errors into this package's sentinels.
func mapParseError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpiredToken
	case errors.Is(err, jwt.ErrTokenNotValidYet), errors.Is(err, jwt.ErrTokenUsedBeforeIssued):
		return ErrTokenNotYetValid
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ErrMalformedToken
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return ErrInvalidSignature
	default:
		return ErrInvalidToken
	}
}
