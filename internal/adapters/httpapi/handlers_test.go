package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	memaccountrepo "github.com/volume-club/reader-api/internal/adapters/memory/accountrepo"
	memchallenge "github.com/volume-club/reader-api/internal/adapters/memory/challengestore"
	memclock "github.com/volume-club/reader-api/internal/adapters/memory/clock"
	"github.com/volume-club/reader-api/internal/app/authflow"
	"github.com/volume-club/reader-api/internal/app/directory"
	"github.com/volume-club/reader-api/internal/app/subscriptions"
	"github.com/volume-club/reader-api/internal/platform/logger"
	"github.com/volume-club/reader-api/internal/platform/otp"
	"github.com/volume-club/reader-api/internal/platform/token"
	"github.com/volume-club/reader-api/internal/ports/out/verification"
)

const testCode = "123456"

func newTestRouter(t *testing.T) (http.Handler, *token.JWT, *memclock.ManualClock) {
	t.Helper()

	repo := memaccountrepo.NewRepo()
	codes := memchallenge.NewStore()
	clk := memclock.NewManualClock(time.Date(2024, 1, 15, 9, 30, 0, 0, time.UTC))
	issuer := token.NewJWT("test-secret", "test", time.Hour, clk)

	flow := authflow.NewService(
		directory.NewService(repo, clk),
		subscriptions.NewLedger(repo),
		codes,
		otp.Fixed(testCode),
		verification.SenderFunc(func(context.Context, string, string) error { return nil }),
		issuer,
		clk,
		logger.NewDiscard(),
	)
	return NewRouter(NewServer(flow), issuer), issuer, clk
}

func postJSON(t *testing.T, h http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	b, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var env struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode error body %q: %v", rec.Body.String(), err)
	}
	return env.Error.Code
}

func TestHealthz(t *testing.T) {
	t.Parallel()

	h, _, _ := newTestRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("status=%d body=%q", rec.Code, rec.Body.String())
	}
}

func TestSendCode(t *testing.T) {
	t.Parallel()

	h, _, _ := newTestRouter(t)

	rec := postJSON(t, h, "/auth/send-code", map[string]string{"email": "reader@example.com"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Message string `json:"message"`
		Success bool   `json:"success"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Success || resp.Message == "" {
		t.Fatalf("resp=%+v", resp)
	}

	// Same acknowledgement for an existing account: the endpoint never
	// reveals whether the identity was already known.
	again := postJSON(t, h, "/auth/send-code", map[string]string{"email": "reader@example.com"})
	if again.Code != http.StatusOK || again.Body.String() != rec.Body.String() {
		t.Fatalf("second ack differs: %q vs %q", again.Body.String(), rec.Body.String())
	}
}

func TestSendCode_Validation(t *testing.T) {
	t.Parallel()

	h, _, _ := newTestRouter(t)

	rec := postJSON(t, h, "/auth/send-code", map[string]string{})
	if rec.Code != http.StatusBadRequest || decodeError(t, rec) != authflow.CodeValidationError {
		t.Fatalf("status=%d code=%s", rec.Code, decodeError(t, rec))
	}

	req := httptest.NewRequest(http.MethodPost, "/auth/send-code", bytes.NewReader([]byte("{not json")))
	malformed := httptest.NewRecorder()
	h.ServeHTTP(malformed, req)
	if malformed.Code != http.StatusBadRequest {
		t.Fatalf("status=%d, want 400 for malformed body", malformed.Code)
	}
}

func TestVerifyCode_FullFlow(t *testing.T) {
	t.Parallel()

	h, issuer, _ := newTestRouter(t)

	if rec := postJSON(t, h, "/auth/send-code", map[string]string{"email": "reader@example.com"}); rec.Code != http.StatusOK {
		t.Fatalf("send-code status=%d", rec.Code)
	}

	rec := postJSON(t, h, "/auth/verify-code", map[string]string{"email": "reader@example.com", "code": testCode})
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Token    string `json:"token"`
		Identity struct {
			ID       string `json:"id"`
			Email    string `json:"email"`
			Username string `json:"username"`
		} `json:"identity"`
		Subscription *struct {
			PlanType          string `json:"planType"`
			Status            string `json:"status"`
			AccessibleVolumes int    `json:"accessibleVolumes"`
		} `json:"subscription"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Token == "" || resp.Identity.Email != "reader@example.com" || resp.Identity.Username != "reader@example.com" {
		t.Fatalf("resp=%+v", resp)
	}
	if resp.Subscription == nil || resp.Subscription.AccessibleVolumes != 1 || resp.Subscription.PlanType != "annual" {
		t.Fatalf("subscription=%+v", resp.Subscription)
	}
	if _, err := issuer.Verify(context.Background(), resp.Token); err != nil {
		t.Fatalf("issued token does not verify: %v", err)
	}

	// The consumed code is dead.
	replay := postJSON(t, h, "/auth/verify-code", map[string]string{"email": "reader@example.com", "code": testCode})
	if replay.Code != http.StatusBadRequest || decodeError(t, replay) != authflow.CodeInvalidCode {
		t.Fatalf("replay status=%d code=%s", replay.Code, decodeError(t, replay))
	}
}

func TestVerifyCode_WrongCode(t *testing.T) {
	t.Parallel()

	h, _, _ := newTestRouter(t)

	if rec := postJSON(t, h, "/auth/send-code", map[string]string{"email": "reader@example.com"}); rec.Code != http.StatusOK {
		t.Fatalf("send-code status=%d", rec.Code)
	}

	rec := postJSON(t, h, "/auth/verify-code", map[string]string{"email": "reader@example.com", "code": "000000"})
	if rec.Code != http.StatusBadRequest || decodeError(t, rec) != authflow.CodeInvalidCode {
		t.Fatalf("status=%d code=%s", rec.Code, decodeError(t, rec))
	}

	// Identical outcome when no challenge was ever issued.
	ghost := postJSON(t, h, "/auth/verify-code", map[string]string{"email": "ghost@example.com", "code": "000000"})
	if ghost.Code != http.StatusBadRequest || decodeError(t, ghost) != authflow.CodeInvalidCode {
		t.Fatalf("ghost status=%d code=%s", ghost.Code, decodeError(t, ghost))
	}
}

func TestGetSubscription(t *testing.T) {
	t.Parallel()

	h, _, clk := newTestRouter(t)

	if rec := postJSON(t, h, "/auth/send-code", map[string]string{"email": "reader@example.com"}); rec.Code != http.StatusOK {
		t.Fatalf("send-code status=%d", rec.Code)
	}
	verify := postJSON(t, h, "/auth/verify-code", map[string]string{"email": "reader@example.com", "code": testCode})
	var login struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(verify.Body.Bytes(), &login); err != nil || login.Token == "" {
		t.Fatalf("login=%+v err=%v", login, err)
	}

	clk.Advance(74 * 24 * time.Hour)

	req := httptest.NewRequest(http.MethodGet, "/auth/subscription", nil)
	req.Header.Set("Authorization", "Bearer "+login.Token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
	var sub struct {
		Status            string `json:"status"`
		AccessibleVolumes int    `json:"accessibleVolumes"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &sub); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if sub.Status != "active" || sub.AccessibleVolumes != 3 {
		t.Fatalf("sub=%+v, want 3 accessible volumes", sub)
	}
}

func TestGetSubscription_Unauthorized(t *testing.T) {
	t.Parallel()

	h, _, _ := newTestRouter(t)

	cases := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"not bearer", "Basic abc"},
		{"empty token", "Bearer   "},
		{"garbage token", "Bearer not-a-jwt"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/auth/subscription", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("status=%d, want 401", rec.Code)
			}
			if got := decodeError(t, rec); got != "UNAUTHORIZED" {
				t.Fatalf("code=%s, want UNAUTHORIZED", got)
			}
		})
	}
}

func TestGetSubscription_NotFound(t *testing.T) {
	t.Parallel()

	h, issuer, _ := newTestRouter(t)

	// A valid token for an identity with no records.
	tok, err := issuer.Issue(context.Background(), "ghost-identity")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/auth/subscription", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound || decodeError(t, rec) != authflow.CodeSubscriptionNotFound {
		t.Fatalf("status=%d code=%s", rec.Code, decodeError(t, rec))
	}
}
