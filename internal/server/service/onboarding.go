package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/TomHarkness/TransparentBalanceApp/internal/basiq"
	"github.com/TomHarkness/TransparentBalanceApp/internal/server/config"
	"github.com/TomHarkness/TransparentBalanceApp/internal/server/repository"
	"github.com/TomHarkness/TransparentBalanceApp/internal/shared/models"
)

const stateTokenTTL = 24 * time.Hour

// OnboardingService runs the linear consent flow that binds the broker to
// one provider account: create remote identity, mint a scoped credential,
// hand out the consent URL, then settle on the provider's callback. Every
// transition is journaled; a failed flow restarts from scratch.
type OnboardingService struct {
	provider Provider
	repo     Repository
	cfg      config.BasiqConfig
	secret   []byte
	logger   *slog.Logger
	now      func() time.Time
}

// Start validates the profile, creates the remote identity, mints the
// scoped credential and returns the consent URL. Validation runs before any
// provider call so a doomed request never burns a remote identity.
func (o *OnboardingService) Start(ctx context.Context, profile models.OnboardingProfile) (models.ConsentResponse, error) {
	if err := validateProfile(profile); err != nil {
		return models.ConsentResponse{}, err
	}
	if len(o.secret) == 0 {
		return models.ConsentResponse{}, fmt.Errorf("callback secret: %w", basiq.ErrConfig)
	}

	sess, err := o.repo.CreateSession(ctx)
	if err != nil {
		return models.ConsentResponse{}, err
	}

	cred, err := o.provider.Token(ctx)
	if err != nil {
		return models.ConsentResponse{}, o.fail(ctx, sess, err)
	}
	remoteID, err := o.provider.CreateUser(ctx, cred.Token, profile)
	if err != nil {
		return models.ConsentResponse{}, o.fail(ctx, sess, err)
	}
	sess.State = models.StateIdentityCreated
	sess.RemoteUserID = remoteID
	if err := o.repo.SaveSession(ctx, sess); err != nil {
		return models.ConsentResponse{}, err
	}

	scoped, err := o.provider.ClientToken(ctx, remoteID)
	if err != nil {
		return models.ConsentResponse{}, o.fail(ctx, sess, err)
	}
	sess.State = models.StateCredentialMinted
	if err := o.repo.SaveSession(ctx, sess); err != nil {
		return models.ConsentResponse{}, err
	}

	state, err := o.signState(sess.ID, remoteID)
	if err != nil {
		return models.ConsentResponse{}, o.fail(ctx, sess, err)
	}
	q := url.Values{
		"token": {scoped.Token},
		"state": {state},
	}
	sess.ConsentURL = o.cfg.ConsentURL + "?" + q.Encode()
	sess.State = models.StateAwaitingConsent
	if err := o.repo.SaveSession(ctx, sess); err != nil {
		return models.ConsentResponse{}, err
	}

	o.logger.Info("onboarding awaiting consent", "session", sess.ID)
	return models.ConsentResponse{SessionID: sess.ID, ConsentURL: sess.ConsentURL}, nil
}

// Complete settles an awaiting-consent session from the provider callback.
// The signed state token must verify and match a session in the awaiting
// state; bare query parameters are never trusted on their own. Only a
// granted outcome persists the account identifier.
func (o *OnboardingService) Complete(ctx context.Context, stateToken string, granted bool, callbackErr string) (models.OnboardingSession, error) {
	sessID, remoteID, err := o.parseState(stateToken)
	if err != nil {
		return models.OnboardingSession{}, fmt.Errorf("callback state: %w", ErrValidation)
	}
	sess, err := o.repo.GetSession(ctx, sessID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return models.OnboardingSession{}, fmt.Errorf("unknown session: %w", ErrValidation)
		}
		return models.OnboardingSession{}, err
	}
	if sess.State != models.StateAwaitingConsent {
		return models.OnboardingSession{}, fmt.Errorf("session %s is %s, not awaiting consent: %w", sess.ID, sess.State, ErrValidation)
	}
	if sess.RemoteUserID != remoteID {
		return models.OnboardingSession{}, fmt.Errorf("callback identity mismatch: %w", ErrValidation)
	}

	switch {
	case callbackErr != "":
		sess.State = models.StateFailed
		sess.LastError = "provider reported: " + callbackErr
	case granted:
		if err := o.repo.SetBoundAccountID(ctx, sess.RemoteUserID); err != nil {
			return models.OnboardingSession{}, err
		}
		sess.State = models.StateGranted
	default:
		sess.State = models.StateDenied
	}
	if err := o.repo.SaveSession(ctx, sess); err != nil {
		return models.OnboardingSession{}, err
	}
	o.logger.Info("onboarding settled", "session", sess.ID, "state", string(sess.State))
	return sess, nil
}

// Session exposes the journaled record, mainly for diagnosing where an
// abandoned or failed flow stopped.
func (o *OnboardingService) Session(ctx context.Context, id string) (models.OnboardingSession, error) {
	return o.repo.GetSession(ctx, id)
}

func (o *OnboardingService) fail(ctx context.Context, sess models.OnboardingSession, cause error) error {
	sess.State = models.StateFailed
	sess.LastError = cause.Error()
	if err := o.repo.SaveSession(ctx, sess); err != nil {
		o.logger.Error("journal write failed", "session", sess.ID, "err", err)
	}
	return cause
}

func (o *OnboardingService) signState(sessionID, remoteID string) (string, error) {
	claims := jwt.MapClaims{
		"sid": sessionID,
		"sub": remoteID,
		"exp": o.now().Add(stateTokenTTL).Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(o.secret)
}

func (o *OnboardingService) parseState(token string) (sessionID, remoteID string, err error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return o.secret, nil
	})
	if err != nil || !parsed.Valid {
		return "", "", errors.New("invalid state token")
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return "", "", errors.New("invalid state claims")
	}
	sessionID, _ = claims["sid"].(string)
	remoteID, _ = claims["sub"].(string)
	if sessionID == "" || remoteID == "" {
		return "", "", errors.New("incomplete state claims")
	}
	return sessionID, remoteID, nil
}

func validateProfile(p models.OnboardingProfile) error {
	if p.Email == "" || p.Mobile == "" || p.FirstName == "" || p.LastName == "" {
		return fmt.Errorf("email, mobile, first and last name are required: %w", ErrValidation)
	}
	if p.BusinessName == "" {
		return nil
	}
	if p.BusinessIDNo == "" {
		return fmt.Errorf("business identifier required with business name: %w", ErrValidation)
	}
	if !digitsOnly(p.BusinessIDNo) {
		return fmt.Errorf("business identifier must be numeric: %w", ErrValidation)
	}
	switch p.BusinessIDType {
	case models.BusinessIDTypeABN:
		if len(p.BusinessIDNo) != 11 {
			return fmt.Errorf("ABN must be 11 digits, got %d: %w", len(p.BusinessIDNo), ErrValidation)
		}
	case models.BusinessIDTypeACN:
		if len(p.BusinessIDNo) != 9 {
			return fmt.Errorf("ACN must be 9 digits, got %d: %w", len(p.BusinessIDNo), ErrValidation)
		}
	default:
		return fmt.Errorf("business identifier type must be ABN or ACN: %w", ErrValidation)
	}
	if p.Address.AddressLine1 == "" || p.Address.Suburb == "" || p.Address.State == "" || p.Address.Postcode == "" {
		return fmt.Errorf("business address incomplete: %w", ErrValidation)
	}
	return nil
}

func digitsOnly(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
