package challengestore

import "errors"

// The distinction between these exists for logs and adapter tests only.
// Callers present them to clients as a single undifferentiated failure so a
// guesser cannot learn which check tripped. A consumed challenge is removed
// from the store, so replaying a used code surfaces as ErrNoChallenge.
var (
	// ErrNoChallenge indicates no live challenge exists for the email.
	ErrNoChallenge = errors.New("no live challenge")

	// ErrCodeMismatch indicates the presented code does not match.
	ErrCodeMismatch = errors.New("challenge code mismatch")

	// ErrExpired indicates the challenge outlived its TTL.
	ErrExpired = errors.New("challenge expired")
)
