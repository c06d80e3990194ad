package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/volume-club/reader-api/internal/ports/out/session"
)

// NewRouter constructs the API HTTP router. Only the subscription read sits
// behind bearer auth; the two challenge endpoints are anonymous.
func NewRouter(api *Server, issuer session.Issuer) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/auth", func(r chi.Router) {
		r.Post("/send-code", api.handleSendCode)
		r.Post("/verify-code", api.handleVerifyCode)
		r.With(RequireBearer(issuer)).Get("/subscription", api.handleGetSubscription)
	})

	return r
}
