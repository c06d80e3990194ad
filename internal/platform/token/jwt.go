package token

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/volume-club/reader-api/internal/domain"
	clockport "github.com/volume-club/reader-api/internal/ports/out/clock"
	"github.com/volume-club/reader-api/internal/ports/out/session"
)

// JWT implements session.Issuer backed by symmetric HMAC.
type JWT struct {
	secret []byte
	issuer string
	ttl    time.Duration
	clk    clockport.Clock
}

func NewJWT(secret, issuer string, ttl time.Duration, clk clockport.Clock) *JWT {
	return &JWT{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
		clk:    clk,
	}
}

// Issue mints a bearer token whose subject is the identity ID.
func (j *JWT) Issue(ctx context.Context, identityID domain.IdentityID) (string, error) {
	_ = ctx
	now := j.clk.Now()
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Issuer:    j.issuer,
		Subject:   string(identityID),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(j.ttl)),
	})

	signed, err := t.SignedString(j.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

// Verify validates the token and extracts the identity ID. Any failure is
// reported as session.ErrInvalidToken; callers get no further detail.
func (j *JWT) Verify(ctx context.Context, raw string) (domain.IdentityID, error) {
	_ = ctx
	claims := &jwt.RegisteredClaims{}
	t, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("wrong signing method %v", t.Header["alg"])
		}
		return j.secret, nil
	},
		jwt.WithIssuer(j.issuer),
		jwt.WithTimeFunc(j.clk.Now),
	)
	if err != nil || !t.Valid || claims.Subject == "" {
		return "", session.ErrInvalidToken
	}
	return domain.IdentityID(claims.Subject), nil
}
