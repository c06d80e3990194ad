package challengestore

import (
	"context"
	"time"
)

// Challenge is a short-lived verification code bound to an email address.
type Challenge struct {
	Email     string
	Code      string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Store holds at most one live challenge per email.
type Store interface {
	// Put stores ch, replacing any live challenge for the same email.
	Put(ctx context.Context, ch Challenge) error

	// Consume validates code against the live challenge for email and, on
	// success, invalidates it. Validate-and-invalidate is atomic: of two
	// concurrent calls presenting the correct code, exactly one succeeds.
	// Failures are one of ErrNoChallenge, ErrCodeMismatch or ErrExpired.
	Consume(ctx context.Context, email, code string, now time.Time) error
}
