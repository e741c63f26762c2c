package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/TomHarkness/TransparentBalanceApp/internal/server/repository"
	"github.com/TomHarkness/TransparentBalanceApp/internal/shared/models"
)

func (r *Router) handleStartOnboarding(w http.ResponseWriter, req *http.Request) {
	var profile models.OnboardingProfile
	if err := json.NewDecoder(req.Body).Decode(&profile); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid json"))
		return
	}
	consent, err := r.services.Onboarding.Start(req.Context(), profile)
	if err != nil {
		r.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, consent)
}

// handleOnboardingCallback receives the provider's consent decision. The
// outcome is only honored when the signed state token matches a session
// still awaiting consent.
func (r *Router) handleOnboardingCallback(w http.ResponseWriter, req *http.Request) {
	q := req.URL.Query()
	granted := q.Get("outcome") == "granted" || q.Get("success") == "true"
	sess, err := r.services.Onboarding.Complete(req.Context(), q.Get("state"), granted, q.Get("error"))
	if err != nil {
		r.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"session_id": sess.ID,
		"outcome":    string(sess.State),
	})
}

func (r *Router) handleOnboardingSession(w http.ResponseWriter, req *http.Request) {
	id := chi.URLParam(req, "id")
	sess, err := r.services.Onboarding.Session(req.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("unknown session"))
			return
		}
		r.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}
