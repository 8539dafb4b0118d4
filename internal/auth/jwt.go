// Package auth verifies operator credentials: bcrypt password hashes, signed
// bearer tokens, and Redis-backed attempt throttling.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// RoleAdmin is the only role allowed to publish and delete newsletters.
const RoleAdmin = "admin"

// JWTConfig holds JWT signing and expiry configuration.
type JWTConfig struct {
	SigningKey  string
	TokenExpiry time.Duration
	Issuer      string
	Audience    string
}

// Principal is the authenticated operator behind a request.
type Principal struct {
	ID       uuid.UUID
	Username string
	Email    string
	Role     string
}

// Verifier turns a bearer token into a Principal.
type Verifier interface {
	Verify(token string) (*Principal, error)
}

// AdminClaims are the claims carried by an operator token.
type AdminClaims struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// Predefined errors for JWT operations.
var (
	ErrTokenExpired   = errors.New("token has expired")
	ErrTokenInvalid   = errors.New("token is invalid")
	ErrTokenMalformed = errors.New("token is malformed")
	ErrSigningMethod  = errors.New("unexpected signing method")
)

// JWTService issues and verifies HS256 operator tokens.
type JWTService struct {
	config JWTConfig
	now    func() time.Time
}

// NewJWTService creates a JWTService. A zero TokenExpiry defaults to one hour.
func NewJWTService(config JWTConfig) *JWTService {
	if config.TokenExpiry <= 0 {
		config.TokenExpiry = time.Hour
	}
	return &JWTService{config: config, now: time.Now}
}

// Issue signs a token for p and returns it with its expiry.
func (s *JWTService) Issue(p Principal) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(s.config.TokenExpiry)
	claims := AdminClaims{
		Username: p.Username,
		Email:    p.Email,
		Role:     p.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.ID.String(),
			Issuer:    s.config.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	if s.config.Audience != "" {
		claims.Audience = jwt.ClaimStrings{s.config.Audience}
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.config.SigningKey))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// Verify parses tokenString and returns the principal it names.
func (s *JWTService) Verify(tokenString string) (*Principal, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	}
	if s.config.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.config.Issuer))
	}
	if s.config.Audience != "" {
		opts = append(opts, jwt.WithAudience(s.config.Audience))
	}

	token, err := jwt.ParseWithClaims(tokenString, &AdminClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrSigningMethod
		}
		return []byte(s.config.SigningKey), nil
	}, opts...)
	if err != nil {
		return nil, classifyJWTError(err)
	}

	claims, ok := token.Claims.(*AdminClaims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}
	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, ErrTokenInvalid
	}

	return &Principal{
		ID:       id,
		Username: claims.Username,
		Email:    claims.Email,
		Role:     claims.Role,
	}, nil
}

// classifyJWTError maps jwt library errors to domain-specific errors.
func classifyJWTError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ErrTokenMalformed
	case errors.Is(err, jwt.ErrSignatureInvalid):
		return ErrTokenInvalid
	case errors.Is(err, ErrSigningMethod), errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ErrSigningMethod
	case errors.Is(err, jwt.ErrTokenInvalidIssuer), errors.Is(err, jwt.ErrTokenInvalidAudience):
		return ErrTokenInvalid
	}
	return fmt.Errorf("validate token: %w", err)
}
