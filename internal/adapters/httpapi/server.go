package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/volume-club/reader-api/internal/app/authflow"
)

// Server is the HTTP adapter over the auth flow.
type Server struct {
	Flow *authflow.Service
}

func NewServer(flow *authflow.Service) *Server {
	return &Server{Flow: flow}
}

type sendCodeRequest struct {
	Email string `json:"email"`
}

type sendCodeResponse struct {
	Message string `json:"message"`
	Success bool   `json:"success"`
}

type verifyCodeRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

type identityPayload struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
}

type subscriptionPayload struct {
	ID                  string    `json:"id"`
	PlanType            string    `json:"planType"`
	StartDate           time.Time `json:"startDate"`
	EndDate             time.Time `json:"endDate"`
	CurrentVolumeNumber int       `json:"currentVolumeNumber"`
	NextVolumeDate      time.Time `json:"nextVolumeDate"`
	Status              string    `json:"status"`
	AccessibleVolumes   int       `json:"accessibleVolumes"`
}

type verifyCodeResponse struct {
	Token        string               `json:"token"`
	Identity     identityPayload      `json:"identity"`
	Subscription *subscriptionPayload `json:"subscription"`
}

func (s *Server) handleSendCode(w http.ResponseWriter, r *http.Request) {
	var req sendCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, authflow.CodeValidationError, "malformed request body", nil)
		return
	}

	if err := s.Flow.RequestCode(r.Context(), req.Email); err != nil {
		s.writeFlowError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sendCodeResponse{
		Message: "verification code sent",
		Success: true,
	})
}

func (s *Server) handleVerifyCode(w http.ResponseWriter, r *http.Request) {
	var req verifyCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, authflow.CodeValidationError, "malformed request body", nil)
		return
	}

	result, err := s.Flow.VerifyCode(r.Context(), req.Email, req.Code)
	if err != nil {
		s.writeFlowError(w, r, err)
		return
	}

	resp := verifyCodeResponse{
		Token: result.Token,
		Identity: identityPayload{
			ID:       string(result.Identity.ID),
			Email:    result.Identity.Email,
			Username: result.Identity.Username,
		},
	}
	if result.Subscription != nil {
		p := toSubscriptionPayload(*result.Subscription)
		resp.Subscription = &p
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetSubscription(w http.ResponseWriter, r *http.Request) {
	identityID, ok := IdentityFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing identity", nil)
		return
	}

	view, err := s.Flow.GetSubscription(r.Context(), identityID)
	if err != nil {
		s.writeFlowError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toSubscriptionPayload(view))
}

func (s *Server) writeFlowError(w http.ResponseWriter, r *http.Request, err error) {
	ae := (*authflow.Error)(nil)
	if errors.As(err, &ae) {
		writeError(w, r, ae.Status, ae.Code, ae.Message, ae.Details)
		return
	}
	writeError(w, r, http.StatusInternalServerError, authflow.CodeDependencyFailure, "internal error", nil)
}

func toSubscriptionPayload(v authflow.SubscriptionView) subscriptionPayload {
	return subscriptionPayload{
		ID:                  string(v.ID),
		PlanType:            v.PlanType,
		StartDate:           v.StartDate,
		EndDate:             v.EndDate,
		CurrentVolumeNumber: v.CurrentVolumeNumber,
		NextVolumeDate:      v.NextVolumeDate,
		Status:              v.Status,
		AccessibleVolumes:   v.AccessibleVolumes,
	}
}
