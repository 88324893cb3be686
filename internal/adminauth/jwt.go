// Package adminauth provides an optional bearer-token gate for device
// administration endpoints. On a closed factory LAN the gate ships disabled;
// installations exposed beyond the LAN enable it with a signing key.
package adminauth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AdminTokenExpiry is how long admin tokens are valid. Admin sessions are
// short; the console re-issues tokens on login.
const AdminTokenExpiry = 8 * time.Hour

// Predefined JWT errors.
var (
	ErrInvalidToken = errors.New("invalid admin token")
	ErrTokenExpired = errors.New("admin token has expired")
)

// Claims represents the claims in admin tokens.
type Claims struct {
	jwt.RegisteredClaims

	// Role distinguishes future admin tiers; currently always "admin".
	Role string `json:"role"`
}

// Service handles admin token creation and validation.
type Service struct {
	signingKey []byte
	issuer     string
	audience   string
}

// Config holds configuration for the admin auth service.
type Config struct {
	// SigningKey is the secret key used to sign tokens. An empty key
	// disables the gate entirely.
	SigningKey string

	// Issuer is the issuer claim for tokens.
	Issuer string

	// Audience is the audience claim for tokens.
	Audience string
}

// NewService creates a new admin auth service. Returns nil when no signing
// key is configured, which callers treat as "gate disabled".
func NewService(cfg Config) *Service {
	if cfg.SigningKey == "" {
		return nil
	}
	if cfg.Issuer == "" {
		cfg.Issuer = "prodtrack"
	}
	if cfg.Audience == "" {
		cfg.Audience = "prodtrack-admin"
	}
	return &Service{
		signingKey: []byte(cfg.SigningKey),
		issuer:     cfg.Issuer,
		audience:   cfg.Audience,
	}
}

// GenerateToken creates a new admin token for the given subject.
func (s *Service) GenerateToken(subject string) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(AdminTokenExpiry)

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   subject,
			Audience:  jwt.ClaimStrings{s.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			NotBefore: jwt.NewNumericDate(now),
		},
		Role: "admin",
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.signingKey)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("signing admin token: %w", err)
	}

	return tokenString, expiresAt, nil
}

// ValidateToken validates an admin token and returns the claims.
func (s *Service) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		// Validate signing method
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.signingKey, nil
	}, jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(s.issuer),
		jwt.WithAudience(s.audience),
		jwt.WithExpirationRequired(),
	)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %s", ErrInvalidToken, err.Error())
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
