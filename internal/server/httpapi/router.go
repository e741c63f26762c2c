package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/TomHarkness/TransparentBalanceApp/internal/basiq"
	"github.com/TomHarkness/TransparentBalanceApp/internal/server/service"
)

type Router struct {
	services *service.Services
	logger   *slog.Logger
}

func NewRouter(services *service.Services, logger *slog.Logger) http.Handler {
	r := &Router{services: services, logger: logger}
	mux := chi.NewRouter()

	mux.Get("/health", r.handleHealth)
	mux.Get("/get-balance", r.handleGetBalance)
	mux.Get("/refresh-balance", r.handleRefreshBalance)
	mux.Get("/get-transactions", r.handleGetTransactions)

	mux.Post("/api/v1/onboarding", r.handleStartOnboarding)
	mux.Get("/api/v1/onboarding/callback", r.handleOnboardingCallback)
	mux.Get("/api/v1/onboarding/{id}", r.handleOnboardingSession)

	return mux
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError translates the error taxonomy into a status code and a safe
// message. Provider request and response bodies never reach the client.
func (r *Router) writeError(w http.ResponseWriter, err error) {
	var pe *basiq.ProviderError
	switch {
	case errors.Is(err, service.ErrValidation):
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
	case errors.Is(err, service.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody("configured account not found"))
	case errors.Is(err, basiq.ErrConfig):
		writeJSON(w, http.StatusInternalServerError, errorBody("service not configured"))
	case errors.Is(err, basiq.ErrAuth):
		writeJSON(w, http.StatusBadGateway, errorBody("unable to authenticate with provider"))
	case errors.As(err, &pe):
		writeJSON(w, http.StatusBadGateway, errorBody("provider request failed"))
	default:
		r.logger.Error("request failed", "err", err)
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}

func errorBody(msg string) map[string]string {
	return map[string]string{"status": "error", "error": msg}
}
