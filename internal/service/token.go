package service

import (
	"fmt"
	"time"

	"github.com/contactdesk/contactdesk/config"
	apperrors "github.com/contactdesk/contactdesk/internal/errors"
	"github.com/golang-jwt/jwt/v5"
)

// Token scopes. Every token this service signs carries exactly one, so a
// leaked token of one kind cannot be replayed against a consumer of
// another. Refresh tokens keep the legacy "refresh_token" value for
// compatibility with already-issued tokens.
const (
	ScopeAccess  = "access"
	ScopeRefresh = "refresh_token"
	ScopeEmail   = "email_verification"
)

// TokenService signs and verifies the three token kinds: short-lived
// access tokens, long-lived refresh tokens, and email-verification tokens.
type TokenService struct {
	secret     []byte
	method     jwt.SigningMethod
	accessTTL  time.Duration
	refreshTTL time.Duration
	emailTTL   time.Duration
	leeway     time.Duration
}

// NewTokenService builds a token service from JWT configuration. The
// signing algorithm has already passed the config allow-list; anything
// else is rejected here too as a second line of defense.
func NewTokenService(cfg config.JWTConfig) (*TokenService, error) {
	var method jwt.SigningMethod
	switch cfg.SigningAlgorithm {
	case "HS256":
		method = jwt.SigningMethodHS256
	case "HS512":
		method = jwt.SigningMethodHS512
	default:
		return nil, fmt.Errorf("unsupported signing algorithm: %s", cfg.SigningAlgorithm)
	}

	return &TokenService{
		secret:     []byte(cfg.Secret),
		method:     method,
		accessTTL:  cfg.AccessTokenTTL,
		refreshTTL: cfg.RefreshTokenTTL,
		emailTTL:   cfg.EmailTokenTTL,
		leeway:     cfg.Leeway,
	}, nil
}

// AccessTTL reports the lifetime of newly issued access tokens
func (s *TokenService) AccessTTL() time.Duration {
	return s.accessTTL
}

// CreateAccessToken signs a short-lived access token for the subject email
func (s *TokenService) CreateAccessToken(email string) (string, error) {
	return s.sign(email, ScopeAccess, s.accessTTL)
}

// CreateAccessTokenWithTTL signs an access token with an explicit lifetime
func (s *TokenService) CreateAccessTokenWithTTL(email string, ttl time.Duration) (string, error) {
	return s.sign(email, ScopeAccess, ttl)
}

// CreateRefreshToken signs a long-lived refresh token for the subject email
func (s *TokenService) CreateRefreshToken(email string) (string, error) {
	return s.sign(email, ScopeRefresh, s.refreshTTL)
}

// CreateRefreshTokenWithTTL signs a refresh token with an explicit lifetime
func (s *TokenService) CreateRefreshTokenWithTTL(email string, ttl time.Duration) (string, error) {
	return s.sign(email, ScopeRefresh, ttl)
}

// CreateEmailToken signs an email-verification token for the subject email
func (s *TokenService) CreateEmailToken(email string) (string, error) {
	return s.sign(email, ScopeEmail, s.emailTTL)
}

func (s *TokenService) sign(email, scope string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   email,
		"scope": scope,
		"iat":   now.Unix(),
		"exp":   now.Add(ttl).Unix(),
	}

	token := jwt.NewWithClaims(s.method, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}

// DecodeRefreshToken verifies a refresh token and returns the subject
// email. A valid token of a different scope fails with ErrInvalidScope;
// any cryptographic or format problem fails with ErrInvalidToken.
func (s *TokenService) DecodeRefreshToken(tokenString string) (string, error) {
	claims, err := s.parse(tokenString)
	if err != nil {
		return "", apperrors.WrapError(apperrors.ErrInvalidToken, err)
	}

	if scope, _ := claims["scope"].(string); scope != ScopeRefresh {
		return "", apperrors.ErrInvalidScope
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		return "", apperrors.ErrInvalidToken
	}

	return sub, nil
}

// DecodeEmailToken verifies an email-verification token and returns the
// subject email. Any failure maps to ErrInvalidEmailToken.
func (s *TokenService) DecodeEmailToken(tokenString string) (string, error) {
	claims, err := s.parse(tokenString)
	if err != nil {
		return "", apperrors.WrapError(apperrors.ErrInvalidEmailToken, err)
	}

	if scope, _ := claims["scope"].(string); scope != ScopeEmail {
		return "", apperrors.ErrInvalidEmailToken
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		return "", apperrors.ErrInvalidEmailToken
	}

	return sub, nil
}

// ResolveIdentity verifies an access token and returns the subject email.
// Malformed, expired, wrongly-scoped, or subject-less tokens all fail
// with ErrUnauthorized; raw jwt errors never reach the caller.
func (s *TokenService) ResolveIdentity(tokenString string) (string, error) {
	claims, err := s.parse(tokenString)
	if err != nil {
		return "", apperrors.WrapError(apperrors.ErrUnauthorized, err)
	}

	if scope, _ := claims["scope"].(string); scope != ScopeAccess {
		return "", apperrors.ErrUnauthorized
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		return "", apperrors.ErrUnauthorized
	}

	return sub, nil
}

func (s *TokenService) parse(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString,
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{s.method.Alg()}),
		jwt.WithLeeway(s.leeway),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	return claims, nil
}
