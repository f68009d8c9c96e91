// Package token signs and verifies the bearer tokens handed out at login.
//
// A token only names a session. Revocation is enforced by validating that
// session, so a well-formed token for a revoked session is still rejected
// by the desk.
package token

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	apperrors "github.com/louisbranch/emojifeedback/internal/platform/errors"
	"github.com/louisbranch/emojifeedback/internal/services/feedback/user"
)

// ErrInvalid indicates a token that is malformed, expired, or badly signed.
var ErrInvalid = apperrors.New(apperrors.CodeTokenInvalid, "invalid token")

// Claims identifies the session behind a token.
type Claims struct {
	SessionID int64
	UserID    int64
	Role      user.Role
	ExpiresAt time.Time
}

type jwtClaims struct {
	SessionID int64  `json:"sid"`
	Role      string `json:"role"`
	jwt.RegisteredClaims
}

// Issue signs claims with HS256.
func Issue(secret, issuer string, claims Claims, issuedAt, expiresAt time.Time) (string, error) {
	if secret == "" {
		return "", errors.New("token secret is required")
	}
	if !expiresAt.After(issuedAt) {
		return "", errors.New("token must expire after it is issued")
	}
	payload := jwtClaims{
		SessionID: claims.SessionID,
		Role:      claims.Role.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(claims.UserID, 10),
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(ceilSecond(expiresAt)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, payload).SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ceilSecond rounds t up to the whole second NumericDate can carry so a token
// never expires before the session it names.
func ceilSecond(t time.Time) time.Time {
	whole := t.Truncate(time.Second)
	if whole.Equal(t) {
		return t
	}
	return whole.Add(time.Second)
}

// Parse verifies tokenString against the wall clock.
func Parse(secret, tokenString string) (Claims, error) {
	return ParseAt(secret, tokenString, time.Now())
}

// ParseAt verifies tokenString as of now.
func ParseAt(secret, tokenString string, now time.Time) (Claims, error) {
	if secret == "" || tokenString == "" {
		return Claims{}, ErrInvalid
	}
	parsed, err := jwt.ParseWithClaims(tokenString, &jwtClaims{}, func(*jwt.Token) (any, error) {
		return []byte(secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(func() time.Time { return now }),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return Claims{}, apperrors.Wrap(apperrors.CodeTokenInvalid, "invalid token", err)
	}
	payload, ok := parsed.Claims.(*jwtClaims)
	if !ok || !parsed.Valid {
		return Claims{}, ErrInvalid
	}
	userID, err := strconv.ParseInt(payload.Subject, 10, 64)
	if err != nil {
		return Claims{}, apperrors.Wrap(apperrors.CodeTokenInvalid, "invalid token subject", err)
	}
	role, err := user.ParseRole(payload.Role)
	if err != nil {
		return Claims{}, apperrors.Wrap(apperrors.CodeTokenInvalid, "invalid token role", err)
	}
	claims := Claims{SessionID: payload.SessionID, UserID: userID, Role: role}
	if payload.ExpiresAt != nil {
		claims.ExpiresAt = payload.ExpiresAt.Time
	}
	return claims, nil
}
