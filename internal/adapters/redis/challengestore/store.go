package challengestore

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/volume-club/reader-api/internal/ports/out/challengestore"
)

const keyPrefix = "authcode"

// consumeRetries bounds the optimistic-locking loop when concurrent consumers
// race on the same key.
const consumeRetries = 4

type record struct {
	Code      string `json:"code"`
	IssuedAt  int64  `json:"iat"`
	ExpiresAt int64  `json:"exp"`
}

// Store is a Redis-backed implementation of challengestore.Store.
//
// Challenges live under one key per email with a TTL matching their expiry,
// so Redis reclaims abandoned challenges on its own. Consume runs inside a
// WATCH transaction: the delete only commits if nobody touched the key since
// the read, which keeps codes single-use across processes.
type Store struct {
	rdb *redis.Client
}

func NewStore(rdb *redis.Client) *Store {
	return &Store{rdb: rdb}
}

func (s *Store) key(email string) string {
	return keyPrefix + ":" + email
}

func (s *Store) Put(ctx context.Context, ch challengestore.Challenge) error {
	rec := record{
		Code:      ch.Code,
		IssuedAt:  ch.IssuedAt.Unix(),
		ExpiresAt: ch.ExpiresAt.Unix(),
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode challenge: %w", err)
	}

	ttl := ch.ExpiresAt.Sub(ch.IssuedAt)
	if ttl <= 0 {
		ttl = time.Second
	}
	// SET overwrites any prior challenge for the email and resets the TTL.
	if err := s.rdb.Set(ctx, s.key(ch.Email), data, ttl).Err(); err != nil {
		return fmt.Errorf("store challenge: %w", err)
	}
	return nil
}

func (s *Store) Consume(ctx context.Context, email, code string, now time.Time) error {
	key := s.key(email)

	for i := 0; i < consumeRetries; i++ {
		err := s.rdb.Watch(ctx, func(tx *redis.Tx) error {
			data, err := tx.Get(ctx, key).Bytes()
			if errors.Is(err, redis.Nil) {
				return challengestore.ErrNoChallenge
			}
			if err != nil {
				return fmt.Errorf("read challenge: %w", err)
			}

			var rec record
			if err := json.Unmarshal(data, &rec); err != nil {
				return fmt.Errorf("decode challenge: %w", err)
			}

			if now.Unix() > rec.ExpiresAt {
				_, err := tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
					pipe.Del(ctx, key)
					return nil
				})
				if err != nil {
					return err
				}
				return challengestore.ErrExpired
			}

			if subtle.ConstantTimeCompare([]byte(rec.Code), []byte(code)) != 1 {
				return challengestore.ErrCodeMismatch
			}

			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Del(ctx, key)
				return nil
			})
			return err
		}, key)

		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	// Every attempt saw the key change under us; whoever changed it consumed
	// or replaced the challenge.
	return challengestore.ErrNoChallenge
}
