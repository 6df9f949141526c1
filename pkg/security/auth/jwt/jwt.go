// Package jwt provides JWT-based authentication for camos-assist.
//
// This package implements the auth.Authenticator interface using JSON Web Tokens
// signed with an HMAC key. It provides token generation, verification, refresh,
// and revocation capabilities.
//
// Usage:
//
//	jwtAuth, err := jwt.New(
//	    jwt.WithKey("your-secret-key-min-32-chars-long"),
//	    jwt.WithExpired(2 * time.Hour),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Sign a token
//	token, err := jwtAuth.Sign(ctx, "user-123")
//
//	// Verify a token
//	claims, err := jwtAuth.Verify(ctx, tokenString)
package jwt

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/kart-io/logger"

	jwtopts "github.com/camos-io/camos-assist/pkg/options/jwt"
	"github.com/camos-io/camos-assist/pkg/security/auth"
	"github.com/camos-io/camos-assist/pkg/utils/errors"
)

// JWT implements auth.Authenticator using HMAC-signed JSON Web Tokens.
type JWT struct {
	opts   *jwtopts.Options
	store  Store
	method jwt.SigningMethod
}

// Option is a functional option for JWT authenticator.
type Option func(*JWT)

// New creates a new JWT authenticator.
func New(opts ...Option) (*JWT, error) {
	j := &JWT{
		opts: jwtopts.NewOptions(),
	}

	for _, opt := range opts {
		opt(j)
	}

	// Complete and validate options
	if err := j.opts.Complete(); err != nil {
		return nil, fmt.Errorf("complete options: %w", err)
	}

	if err := j.opts.Validate(); err != nil {
		return nil, fmt.Errorf("validate options: %w", err)
	}

	j.method = jwt.GetSigningMethod(j.opts.SigningMethod)
	if j.method == nil {
		return nil, fmt.Errorf("unsupported signing method: %s", j.opts.SigningMethod)
	}

	return j, nil
}

// WithOptions sets the JWT options.
func WithOptions(opts *jwtopts.Options) Option {
	return func(j *JWT) {
		if opts != nil {
			j.opts = opts
		}
	}
}

// WithKey sets the signing key.
func WithKey(key string) Option {
	return func(j *JWT) {
		j.opts.Key = key
	}
}

// WithExpired sets the token expiration duration.
func WithExpired(d time.Duration) Option {
	return func(j *JWT) {
		j.opts.Expired = d
	}
}

// WithIssuer sets the token issuer.
func WithIssuer(issuer string) Option {
	return func(j *JWT) {
		j.opts.Issuer = issuer
	}
}

// WithStore sets the token store for revocation support.
func WithStore(store Store) Option {
	return func(j *JWT) {
		j.store = store
	}
}

// WithMaxRefresh sets the maximum refresh duration.
func WithMaxRefresh(d time.Duration) Option {
	return func(j *JWT) {
		j.opts.MaxRefresh = d
	}
}

// Type returns the authenticator type.
func (j *JWT) Type() string {
	return "jwt"
}

// IsDisabled returns true if authentication is disabled.
func (j *JWT) IsDisabled() bool {
	return j.opts.DisableAuth
}

// Sign creates a new token for the given subject.
func (j *JWT) Sign(ctx context.Context, subject string, opts ...auth.SignOption) (auth.Token, error) {
	signOpts := &auth.SignOptions{}
	for _, opt := range opts {
		opt(signOpts)
	}

	now := time.Now()
	expiresAt := now.Add(j.opts.Expired)
	if signOpts.ExpiresAt != nil {
		expiresAt = *signOpts.ExpiresAt
	}

	// Generate token ID
	tokenID := signOpts.TokenID
	if tokenID == "" {
		var err error
		tokenID, err = generateTokenID()
		if err != nil {
			return nil, err
		}
	}

	claims := &customClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    j.opts.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			NotBefore: jwt.NewNumericDate(now),
			ID:        tokenID,
		},
		Extra: signOpts.Extra,
	}

	token := jwt.NewWithClaims(j.method, claims)

	tokenString, err := token.SignedString([]byte(j.opts.Key))
	if err != nil {
		return nil, errors.ErrInternal.WithCause(err).WithMessage("failed to sign token")
	}

	return &auth.BaseToken{
		AccessToken: tokenString,
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt.Unix(),
		ExpiresIn:   int64(expiresAt.Sub(now).Seconds()),
	}, nil
}

// Verify validates the token and returns the claims.
func (j *JWT) Verify(ctx context.Context, tokenString string) (*auth.Claims, error) {
	if tokenString == "" {
		return nil, errors.ErrInvalidToken.WithMessage("token is empty")
	}

	token, err := jwt.ParseWithClaims(tokenString, &customClaims{}, func(token *jwt.Token) (interface{}, error) {
		// Validate signing method
		if token.Method.Alg() != j.method.Alg() {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(j.opts.Key), nil
	})
	if err != nil {
		return nil, mapParseError(err)
	}

	if !token.Valid {
		return nil, errors.ErrInvalidToken
	}

	claims, ok := token.Claims.(*customClaims)
	if !ok {
		return nil, errors.ErrInvalidToken.WithMessage("invalid claims type")
	}

	// Check if token is revoked
	if j.store != nil {
		revoked, err := j.store.IsRevoked(ctx, tokenString)
		if err != nil {
			return nil, errors.ErrInternal.WithCause(err).WithMessage("failed to check token revocation")
		}
		if revoked {
			return nil, errors.ErrTokenRevoked
		}
	}

	return claims.toAuthClaims(), nil
}

// Refresh creates a new token using a valid existing token.
// Security: Revokes old token and generates new token ID to prevent session fixation attacks.
func (j *JWT) Refresh(ctx context.Context, tokenString string) (auth.Token, error) {
	claims, err := j.verifyForRefresh(ctx, tokenString)
	if err != nil {
		return nil, err
	}

	// Revoke old token (non-blocking - log warnings on failure)
	j.revokeOldToken(ctx, tokenString)

	// Generate new token with new ID (do not reuse old TokenID)
	signOpts := []auth.SignOption{}
	if len(claims.Extra) > 0 {
		signOpts = append(signOpts, auth.WithExtra(claims.Extra))
	}

	return j.Sign(ctx, claims.Subject, signOpts...)
}

// revokeOldToken attempts to revoke the old token.
// Failures are logged but do not block the refresh process.
func (j *JWT) revokeOldToken(ctx context.Context, tokenString string) {
	if j.store == nil {
		return
	}

	if err := j.Revoke(ctx, tokenString); err != nil {
		logger.Warnw("failed to revoke old token during refresh",
			"error", err,
			"tokenPrefix", tokenPrefix(tokenString))
	}
}

// tokenPrefix returns the first 16 characters of a token for logging purposes.
func tokenPrefix(tokenString string) string {
	if len(tokenString) > 16 {
		return tokenString[:16] + "..."
	}
	return tokenString
}

// verifyForRefresh verifies a token for refresh, allowing expired tokens.
func (j *JWT) verifyForRefresh(ctx context.Context, tokenString string) (*auth.Claims, error) {
	if tokenString == "" {
		return nil, errors.ErrInvalidToken.WithMessage("token is empty")
	}

	// Parse token without expiration validation
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	token, err := parser.ParseWithClaims(tokenString, &customClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != j.method.Alg() {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(j.opts.Key), nil
	})
	if err != nil {
		return nil, mapParseError(err)
	}

	claims, ok := token.Claims.(*customClaims)
	if !ok {
		return nil, errors.ErrInvalidToken.WithMessage("invalid claims type")
	}

	// Enforce the MaxRefresh window even for expired tokens
	if claims.IssuedAt == nil {
		return nil, errors.ErrInvalidToken.WithMessage("missing issued at claim")
	}
	maxRefreshTime := claims.IssuedAt.Time.Add(j.opts.MaxRefresh)
	if time.Now().After(maxRefreshTime) {
		return nil, errors.ErrSessionExpired.WithMessage("token refresh period exceeded")
	}

	// Check if token is revoked
	if j.store != nil {
		revoked, err := j.store.IsRevoked(ctx, tokenString)
		if err != nil {
			return nil, errors.ErrInternal.WithCause(err).WithMessage("failed to check token revocation")
		}
		if revoked {
			return nil, errors.ErrTokenRevoked
		}
	}

	return claims.toAuthClaims(), nil
}

// Revoke invalidates the given token.
// It stores the token in the revocation list until its MaxRefresh time expires.
// This prevents race conditions where a token expires between verification and revocation.
func (j *JWT) Revoke(ctx context.Context, tokenString string) error {
	if j.store == nil {
		return errors.ErrNotImplemented.WithMessage("token revocation requires a store")
	}

	if tokenString == "" {
		return errors.ErrInvalidToken.WithMessage("token is empty")
	}

	// Parse token without validation to extract claims
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	token, err := parser.ParseWithClaims(tokenString, &customClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != j.method.Alg() {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(j.opts.Key), nil
	})
	if err != nil {
		return mapParseError(err)
	}

	claims, ok := token.Claims.(*customClaims)
	if !ok {
		return errors.ErrInvalidToken.WithMessage("invalid claims type")
	}

	if claims.IssuedAt == nil {
		return errors.ErrInvalidToken.WithMessage("missing issued at claim")
	}

	// Calculate TTL until MaxRefresh time (not ExpiresAt)
	maxRefreshTime := claims.IssuedAt.Time.Add(j.opts.MaxRefresh)
	ttl := time.Until(maxRefreshTime)

	// If beyond MaxRefresh window, token is already invalid
	if ttl <= 0 {
		return nil
	}

	return j.store.Revoke(ctx, tokenString, ttl)
}

// mapParseError maps jwt parse errors to errno values.
func mapParseError(err error) *errors.Errno {
	if err == nil {
		return nil
	}

	switch {
	case strings.Contains(err.Error(), "token is expired"):
		return errors.ErrTokenExpired
	case strings.Contains(err.Error(), "signature is invalid"):
		return errors.ErrInvalidToken.WithMessage("invalid signature")
	case strings.Contains(err.Error(), "token is malformed"):
		return errors.ErrInvalidToken.WithMessage("malformed token")
	case strings.Contains(err.Error(), "token is not valid yet"):
		return errors.ErrInvalidToken.WithMessage("token not valid yet")
	default:
		return errors.ErrInvalidToken.WithCause(err)
	}
}

// customClaims extends jwt.RegisteredClaims with extra fields.
type customClaims struct {
	jwt.RegisteredClaims
	Extra map[string]interface{} `json:"extra,omitempty"`
}

// toAuthClaims converts to the transport-independent claims type.
func (c *customClaims) toAuthClaims() *auth.Claims {
	claims := &auth.Claims{
		Subject: c.Subject,
		Issuer:  c.Issuer,
		ID:      c.ID,
		Extra:   c.Extra,
	}
	if c.ExpiresAt != nil {
		claims.ExpiresAt = c.ExpiresAt.Unix()
	}
	if c.IssuedAt != nil {
		claims.IssuedAt = c.IssuedAt.Unix()
	}
	if c.NotBefore != nil {
		claims.NotBefore = c.NotBefore.Unix()
	}
	return claims
}

// generateTokenID generates a random token ID.
func generateTokenID() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", errors.ErrInternal.WithCause(err).WithMessage("failed to generate token ID")
	}
	return hex.EncodeToString(b), nil
}
