// Package token issues and validates the signed bearer credentials that carry
// a caller's identity between services.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"fundflow/internal/authz"
	dErrors "fundflow/pkg/domainerrors"
)

// Claims are the JWT claims embedded in access tokens.
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// Service signs and validates HS256 access tokens.
type Service struct {
	signingKey []byte
	issuer     string
	expiry     time.Duration
}

func NewService(signingKey string, issuer string, expiry time.Duration) *Service {
	return &Service{
		signingKey: []byte(signingKey),
		issuer:     issuer,
		expiry:     expiry,
	}
}

// Expiry returns the configured token lifetime.
func (s *Service) Expiry() time.Duration { return s.expiry }

// Issue signs a token for the given principal.
func (s *Service) Issue(p authz.Principal, email string) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: p.UserID,
		Email:  email,
		Role:   string(p.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    s.issuer,
			ID:        uuid.NewString(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.signingKey)
	if err != nil {
		return "", err
	}
	return signed, nil
}

// Validate parses a token string and returns the principal it asserts.
func (s *Service) Validate(tokenString string) (authz.Principal, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return authz.Principal{}, dErrors.New(dErrors.CodeUnauthorized, "token has expired")
		}
		return authz.Principal{}, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return authz.Principal{}, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}

	role := authz.Role(claims.Role)
	if role != authz.RoleAdmin {
		role = authz.RoleUser
	}
	return authz.Principal{UserID: claims.UserID, Role: role}, nil
}

// Email extracts the email claim from a token that already validated.
func (s *Service) Email(tokenString string) (string, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (any, error) {
		return s.signingKey, nil
	})
	if err != nil {
		return "", dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok {
		return "", dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}
	return claims.Email, nil
}
