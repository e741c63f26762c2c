package models

import "time"

// SafetyMargin is subtracted from a credential's lifetime so a token is
// never presented moments before the provider invalidates it.
const SafetyMargin = 60 * time.Second

// Credential is a provider-issued bearer token together with its absolute
// expiry. Credentials are replaced wholesale on refresh, never mutated.
type Credential struct {
	Token     string    `json:"access_token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Usable reports whether the credential may still be presented at now.
func (c Credential) Usable(now time.Time) bool {
	return c.Token != "" && now.Before(c.ExpiresAt.Add(-SafetyMargin))
}

// SafeBalance is the sanitized balance shape exposed past the provider
// boundary. It carries no account numbers or provider identifiers.
type SafeBalance struct {
	Balance     float64   `json:"balance"`
	Currency    string    `json:"currency"`
	LastUpdated time.Time `json:"last_updated"`
}

// SafeTransaction retains only display-safe fields of a provider
// transaction. Amounts stay as the provider's decimal strings.
type SafeTransaction struct {
	Amount      string `json:"amount"`
	Description string `json:"description"`
	Date        string `json:"date"`
	Direction   string `json:"direction"`
	Currency    string `json:"currency"`
}

type SafeTransactionList struct {
	Enabled      bool              `json:"enabled"`
	Transactions []SafeTransaction `json:"transactions"`
	LastUpdated  time.Time         `json:"last_updated"`
}

// BusinessIDType distinguishes the two accepted Australian business
// identifier formats.
type BusinessIDType string

const (
	BusinessIDTypeABN BusinessIDType = "ABN" // 11 digits
	BusinessIDTypeACN BusinessIDType = "ACN" // 9 digits
)

type BusinessAddress struct {
	AddressLine1 string `json:"address_line_1"`
	Suburb       string `json:"suburb"`
	State        string `json:"state"`
	Postcode     string `json:"postcode"`
	Country      string `json:"country"`
}

// OnboardingProfile is the operator-supplied data used to create the
// remote identity with the provider.
type OnboardingProfile struct {
	Email          string          `json:"email"`
	Mobile         string          `json:"mobile"`
	FirstName      string          `json:"first_name"`
	LastName       string          `json:"last_name"`
	BusinessName   string          `json:"business_name,omitempty"`
	BusinessIDNo   string          `json:"business_id_no,omitempty"`
	BusinessIDType BusinessIDType  `json:"business_id_type,omitempty"`
	Address        BusinessAddress `json:"address,omitempty"`
}

// ConsentResponse is returned when onboarding reaches the consent step.
type ConsentResponse struct {
	SessionID  string `json:"session_id"`
	ConsentURL string `json:"consent_url"`
}

// OnboardingState is one step of the linear consent flow. The flow is not
// resumable: any failure restarts from idle.
type OnboardingState string

const (
	StateIdle             OnboardingState = "idle"
	StateIdentityCreated  OnboardingState = "identity_created"
	StateCredentialMinted OnboardingState = "credential_minted"
	StateAwaitingConsent  OnboardingState = "awaiting_consent"
	StateGranted          OnboardingState = "granted"
	StateDenied           OnboardingState = "denied"
	StateFailed           OnboardingState = "failed"
)

// Terminal reports whether the session can make no further transitions.
func (s OnboardingState) Terminal() bool {
	return s == StateGranted || s == StateDenied || s == StateFailed
}

// OnboardingSession is the journaled record of one consent flow. Every
// transition is persisted so the last completed step survives a crash.
type OnboardingSession struct {
	ID           string          `json:"id"`
	State        OnboardingState `json:"state"`
	RemoteUserID string          `json:"remote_user_id,omitempty"`
	ConsentURL   string          `json:"consent_url,omitempty"`
	LastError    string          `json:"last_error,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}
