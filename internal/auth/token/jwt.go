// Package token issues and verifies the HS256 access tokens carried on
// every authenticated request.
package token

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"taskhub/internal/auth/revocation"
	"taskhub/internal/authz"
	usermodels "taskhub/internal/user/models"
	dErrors "taskhub/pkg/domain-errors"
)

// Claims are the JWT claims of an access token.
type Claims struct {
	Email          string `json:"email"`
	OrganizationID string `json:"organizationId"`
	Role           string `json:"role"`
	jwt.RegisteredClaims
}

// Service signs and verifies access tokens. Verification consults the
// revocation list so logged-out tokens die before their expiry.
type Service struct {
	signingKey []byte
	issuer     string
	lifetime   time.Duration
	revoked    revocation.List
}

func NewService(signingKey string, issuer string, lifetime time.Duration, revoked revocation.List) *Service {
	return &Service{
		signingKey: []byte(signingKey),
		issuer:     issuer,
		lifetime:   lifetime,
		revoked:    revoked,
	}
}

// Lifetime returns the configured token validity window.
func (s *Service) Lifetime() time.Duration {
	return s.lifetime
}

// Issue signs a token for the user. The subject is the user id and the jti
// is fresh per token so individual tokens can be revoked.
func (s *Service) Issue(user *usermodels.User) (string, error) {
	now := time.Now()
	newToken := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Email:          user.Email,
		OrganizationID: user.OrganizationID.String(),
		Role:           string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.lifetime)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    s.issuer,
			ID:        uuid.NewString(),
		},
	})

	signedToken, err := newToken.SignedString(s.signingKey)
	if err != nil {
		return "", err
	}
	return signedToken, nil
}

// Verify validates the signature, expiry, and revocation state of a token
// and returns the provisional identity it claims.
func (s *Service) Verify(ctx context.Context, tokenString string) (*authz.Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "token has expired")
		}
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}
	if !parsed.Valid {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}

	if s.revoked != nil {
		revoked, err := s.revoked.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "revocation check failed")
		}
		if revoked {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "token has been revoked")
		}
	}

	return &authz.Claims{
		UserID:         claims.Subject,
		Email:          claims.Email,
		OrganizationID: claims.OrganizationID,
		Role:           claims.Role,
		TokenID:        claims.ID,
	}, nil
}

// Revoke places the token's jti on the revocation list for the remainder of
// its lifetime. Already-expired tokens are ignored.
func (s *Service) Revoke(ctx context.Context, tokenString string) error {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil
		}
		return dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || claims.ID == "" {
		return dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}
	if s.revoked == nil {
		return nil
	}

	ttl := s.lifetime
	if claims.ExpiresAt != nil {
		ttl = time.Until(claims.ExpiresAt.Time)
	}
	if ttl <= 0 {
		return nil
	}
	if err := s.revoked.Revoke(ctx, claims.ID, ttl); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to revoke token")
	}
	return nil
}
