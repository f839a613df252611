package service

import (
	"context"
	"time"

	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/middleware/auth/jwt"
	jwtv5 "github.com/golang-jwt/jwt/v5"
)

// UniversityClaims identifies an operator. The subject is the university id.
type UniversityClaims struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	jwtv5.RegisteredClaims
}

// NewUniversityClaims is the claims factory for the JWT middleware.
func NewUniversityClaims() jwtv5.Claims {
	return &UniversityClaims{}
}

// SignUniversityToken issues an HS256 operator token.
func SignUniversityToken(secret, universityID, name, email string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &UniversityClaims{
		Name:  name,
		Email: email,
		RegisteredClaims: jwtv5.RegisteredClaims{
			Subject:   universityID,
			IssuedAt:  jwtv5.NewNumericDate(now),
			ExpiresAt: jwtv5.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims).SignedString([]byte(secret))
}

func universityFromContext(ctx context.Context) (*UniversityClaims, error) {
	claims, ok := jwt.FromContext(ctx)
	if !ok {
		return nil, errors.Unauthorized("UNAUTHORIZED", "missing university token")
	}
	uc, ok := claims.(*UniversityClaims)
	if !ok || uc.Subject == "" {
		return nil, errors.Unauthorized("UNAUTHORIZED", "token has no university subject")
	}
	return uc, nil
}
