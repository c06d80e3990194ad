package session

import (
	"context"
	"errors"

	"github.com/volume-club/reader-api/internal/domain"
)

// ErrInvalidToken indicates a token that is missing, malformed, expired or
// otherwise failed verification.
var ErrInvalidToken = errors.New("invalid session token")

// Issuer mints and verifies bearer tokens binding a session to an identity.
type Issuer interface {
	Issue(ctx context.Context, identityID domain.IdentityID) (string, error)

	// Verify returns the identity the token was issued for, or
	// ErrInvalidToken.
	Verify(ctx context.Context, token string) (domain.IdentityID, error)
}
