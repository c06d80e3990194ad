package challengestore

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/volume-club/reader-api/internal/adapters/contracttest"
	challengeport "github.com/volume-club/reader-api/internal/ports/out/challengestore"
)

func TestContract_ChallengeStore(t *testing.T) {
	contracttest.RunChallengeStore(t, func(t *testing.T) (challengeport.Store, func()) {
		t.Helper()
		return NewStore(), nil
	})
}

func TestStore_Consume_ConcurrentSingleWinner(t *testing.T) {
	t.Parallel()

	store := NewStore()
	ctx := context.Background()

	issued := time.Unix(1700000000, 0).UTC()
	ch := challengeport.Challenge{
		Email:     "reader@example.com",
		Code:      "314159",
		IssuedAt:  issued,
		ExpiresAt: issued.Add(10 * time.Minute),
	}
	if err := store.Put(ctx, ch); err != nil {
		t.Fatalf("Put: %v", err)
	}

	const n = 32
	var wg sync.WaitGroup
	wins := make(chan struct{}, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := store.Consume(ctx, ch.Email, ch.Code, issued.Add(time.Second)); err == nil {
				wins <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(wins)

	if got := len(wins); got != 1 {
		t.Fatalf("winners=%d, want exactly 1", got)
	}
}
