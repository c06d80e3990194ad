package authflow

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/volume-club/reader-api/internal/app/directory"
	"github.com/volume-club/reader-api/internal/app/subscriptions"
	"github.com/volume-club/reader-api/internal/domain"
	"github.com/volume-club/reader-api/internal/platform/logger"
	"github.com/volume-club/reader-api/internal/ports/out/accountrepo"
	"github.com/volume-club/reader-api/internal/ports/out/challengestore"
	clockport "github.com/volume-club/reader-api/internal/ports/out/clock"
	"github.com/volume-club/reader-api/internal/ports/out/session"
	"github.com/volume-club/reader-api/internal/ports/out/verification"
)

// DefaultCodeTTL bounds how long an issued verification code stays valid.
const DefaultCodeTTL = 10 * time.Minute

// Service orchestrates the passwordless login protocol:
// request a code, verify it, hand out a session token with the caller's
// subscription view attached.
type Service struct {
	directory *directory.Service
	ledger    *subscriptions.Ledger
	codes     challengestore.Store
	generate  verification.Generator
	sender    verification.Sender
	sessions  session.Issuer
	clk       clockport.Clock
	log       *logger.Logger

	// CodeTTL may be tuned after construction, before serving.
	CodeTTL time.Duration
}

func NewService(
	dir *directory.Service,
	ledger *subscriptions.Ledger,
	codes challengestore.Store,
	gen verification.Generator,
	sender verification.Sender,
	sessions session.Issuer,
	clk clockport.Clock,
	log *logger.Logger,
) *Service {
	return &Service{
		directory: dir,
		ledger:    ledger,
		codes:     codes,
		generate:  gen,
		sender:    sender,
		sessions:  sessions,
		clk:       clk,
		log:       log,
		CodeTTL:   DefaultCodeTTL,
	}
}

// RequestCode provisions the account when the email is unknown, then issues a
// fresh challenge, replacing any live one for the address.
//
// Provisioning happens here, at request time, so the account and its
// subscription exist even if verification never completes. The outcome is a
// bare acknowledgement either way: callers cannot learn whether the identity
// already existed.
func (s *Service) RequestCode(ctx context.Context, email string) error {
	addr := domain.NormalizeEmail(email)
	if addr == "" {
		return &Error{
			Status:  400,
			Code:    CodeValidationError,
			Message: "email is required",
			Details: map[string]any{"email": "must be non-empty"},
		}
	}

	if _, _, err := s.directory.ResolveOrCreate(ctx, addr); err != nil {
		return s.dependencyFailure("resolve identity", err)
	}

	code, err := s.generate.Generate()
	if err != nil {
		return s.dependencyFailure("generate verification code", err)
	}

	now := s.clk.Now()
	ch := challengestore.Challenge{
		Email:     addr,
		Code:      code,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.CodeTTL),
	}
	if err := s.codes.Put(ctx, ch); err != nil {
		return s.dependencyFailure("store challenge", err)
	}

	if err := s.sender.Send(ctx, addr, code); err != nil {
		// Fire-and-forget: the challenge stays valid, the caller may retry
		// requesting a code.
		s.log.Error("send verification code", "email", addr, "error", err)
	}
	return nil
}

// VerifyCode consumes the live challenge for the email and, on success, binds
// a session token to the identity with its subscription view attached.
func (s *Service) VerifyCode(ctx context.Context, email, code string) (VerifyResult, error) {
	addr := domain.NormalizeEmail(email)
	code = strings.TrimSpace(code)
	if addr == "" || code == "" {
		details := map[string]any{}
		if addr == "" {
			details["email"] = "must be non-empty"
		}
		if code == "" {
			details["code"] = "must be non-empty"
		}
		return VerifyResult{}, &Error{
			Status:  400,
			Code:    CodeValidationError,
			Message: "email and code are required",
			Details: details,
		}
	}

	if err := s.codes.Consume(ctx, addr, code, s.clk.Now()); err != nil {
		switch {
		case errors.Is(err, challengestore.ErrNoChallenge),
			errors.Is(err, challengestore.ErrCodeMismatch),
			errors.Is(err, challengestore.ErrExpired):
			// One undifferentiated outcome for every rejection, so a guesser
			// cannot learn which check tripped.
			return VerifyResult{}, &Error{
				Status:  400,
				Code:    CodeInvalidCode,
				Message: "invalid verification code",
			}
		default:
			return VerifyResult{}, s.dependencyFailure("consume challenge", err)
		}
	}

	identity, err := s.directory.FindByEmail(ctx, addr)
	if err != nil {
		if errors.Is(err, accountrepo.ErrNotFound) {
			return VerifyResult{}, &Error{
				Status:  400,
				Code:    CodeIdentityNotFound,
				Message: "no identity for this email",
			}
		}
		return VerifyResult{}, s.dependencyFailure("lookup identity", err)
	}

	tok, err := s.sessions.Issue(ctx, identity.ID)
	if err != nil {
		return VerifyResult{}, s.dependencyFailure("issue session token", err)
	}

	result := VerifyResult{Token: tok, Identity: identity}
	sub, err := s.ledger.FindByIdentity(ctx, identity.ID)
	switch {
	case err == nil:
		view := s.view(sub)
		result.Subscription = &view
	case errors.Is(err, accountrepo.ErrNotFound):
		// Subscription is optional in the response; the login still succeeds.
	default:
		return VerifyResult{}, s.dependencyFailure("lookup subscription", err)
	}
	return result, nil
}

// GetSubscription returns the identity's subscription with the derived access
// count. The caller is expected to have authenticated the identity already
// (bearer verification happens at the transport boundary).
func (s *Service) GetSubscription(ctx context.Context, identityID domain.IdentityID) (SubscriptionView, error) {
	sub, err := s.ledger.FindByIdentity(ctx, identityID)
	if err != nil {
		if errors.Is(err, accountrepo.ErrNotFound) {
			return SubscriptionView{}, &Error{
				Status:  404,
				Code:    CodeSubscriptionNotFound,
				Message: "no subscription on record",
			}
		}
		return SubscriptionView{}, s.dependencyFailure("lookup subscription", err)
	}
	return s.view(sub), nil
}

func (s *Service) view(sub domain.Subscription) SubscriptionView {
	return SubscriptionView{
		Subscription:      sub,
		AccessibleVolumes: subscriptions.AccessibleVolumes(sub, s.clk.Now()),
	}
}

// dependencyFailure logs the collaborator error and returns the generic
// client-facing failure. Internal detail never reaches the response.
func (s *Service) dependencyFailure(op string, err error) *Error {
	s.log.Error(op, "error", err)
	return &Error{
		Status:  500,
		Code:    CodeDependencyFailure,
		Message: "temporary failure, try again later",
	}
}
