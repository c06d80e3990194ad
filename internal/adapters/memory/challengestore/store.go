package challengestore

import (
	"context"
	"crypto/subtle"
	"sync"
	"time"

	"github.com/volume-club/reader-api/internal/ports/out/challengestore"
)

// Store is an in-memory implementation of challengestore.Store.
// It is safe for concurrent use; Consume is atomic under the store mutex.
type Store struct {
	mu   sync.Mutex
	live map[string]challengestore.Challenge
}

func NewStore() *Store {
	return &Store{live: make(map[string]challengestore.Challenge)}
}

func (s *Store) Put(ctx context.Context, ch challengestore.Challenge) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	s.live[ch.Email] = ch
	return nil
}

func (s *Store) Consume(ctx context.Context, email, code string, now time.Time) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()

	ch, ok := s.live[email]
	if !ok {
		return challengestore.ErrNoChallenge
	}
	if now.After(ch.ExpiresAt) {
		delete(s.live, email)
		return challengestore.ErrExpired
	}
	if subtle.ConstantTimeCompare([]byte(ch.Code), []byte(code)) != 1 {
		return challengestore.ErrCodeMismatch
	}

	// Single use: the challenge is gone before the lock is released, so a
	// concurrent Consume with the same code loses.
	delete(s.live, email)
	return nil
}
