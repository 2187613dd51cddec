package services

import (
	"context"
	"errors"
	"fmt"
	"job-portal/internal/domain"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the payload of the portal's access tokens.
type Claims struct {
	jwt.RegisteredClaims
	UserID string      `json:"user_id"`
	Role   domain.Role `json:"role"`
}

// JWTIdentityVerifier checks an HS256 token and confirms the user it names
// still exists.
type JWTIdentityVerifier struct {
	secret []byte
	issuer string
	users  domain.UserRepository
}

func NewJWTIdentityVerifier(secret, issuer string, users domain.UserRepository) *JWTIdentityVerifier {
	return &JWTIdentityVerifier{
		secret: []byte(secret),
		issuer: issuer,
		users:  users,
	}
}

func (v *JWTIdentityVerifier) VerifyToken(ctx context.Context, tokenString string) (*domain.User, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(_ *jwt.Token) (any, error) {
		return v.secret, nil
	}, opts...)
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidToken, err)
	}

	userID := claims.UserID
	if userID == "" {
		userID = claims.Subject
	}
	if userID == "" {
		return nil, fmt.Errorf("%w: no user id claim", domain.ErrInvalidToken)
	}

	user, err := v.users.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("lookup user %s: %w", userID, err)
	}
	return user, nil
}

// GenerateToken signs a token for userID. The portal's auth service owns
// issuing in production; this exists for service-to-service calls and tests.
func GenerateToken(secret, issuer, userID string, role domain.Role, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserID: userID,
		Role:   role,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}
