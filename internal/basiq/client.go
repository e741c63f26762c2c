package basiq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/TomHarkness/TransparentBalanceApp/internal/shared/models"
)

const defaultTokenTTL = 3600 // seconds, when the provider omits expires_in

// TokenStore persists the unscoped server credential between calls.
type TokenStore interface {
	Load() (models.Credential, bool)
	Save(models.Credential) error
}

type Config struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
	Timeout      time.Duration
}

// Client talks to the provider API. All calls are single-attempt with a
// bounded timeout; retry policy belongs to callers, not here.
type Client struct {
	cfg    Config
	store  TokenStore
	http   *http.Client
	logger *slog.Logger
	now    func() time.Time
}

func NewClient(cfg Config, store TokenStore, logger *slog.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Client{
		cfg:    cfg,
		store:  store,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger,
		now:    time.Now,
	}
}

// SetClock is used by tests to pin expiry computation.
func (c *Client) SetClock(now func() time.Time) { c.now = now }

// Token returns the stored server credential if it is still usable and
// otherwise performs exactly one client-credential exchange. Concurrent
// callers racing an expired credential may each exchange once; the provider
// issues independently valid tokens, so last-write-wins is fine.
func (c *Client) Token(ctx context.Context) (models.Credential, error) {
	if cred, ok := c.store.Load(); ok {
		return cred, nil
	}
	cred, err := c.exchange(ctx, nil)
	if err != nil {
		return models.Credential{}, err
	}
	if err := c.store.Save(cred); err != nil {
		return models.Credential{}, fmt.Errorf("persist credential: %w", err)
	}
	return cred, nil
}

// ClientToken mints a short-lived credential scoped to one remote user. It
// is used only to build consent URLs and is deliberately never persisted.
func (c *Client) ClientToken(ctx context.Context, userID string) (models.Credential, error) {
	return c.exchange(ctx, url.Values{
		"scope":  {"CLIENT_ACCESS"},
		"userId": {userID},
	})
}

func (c *Client) exchange(ctx context.Context, extra url.Values) (models.Credential, error) {
	if c.cfg.ClientID == "" || c.cfg.ClientSecret == "" {
		return models.Credential{}, fmt.Errorf("client credentials: %w", ErrConfig)
	}
	form := url.Values{
		"grant_type":    {"client_credentials"},
		"client_id":     {c.cfg.ClientID},
		"client_secret": {c.cfg.ClientSecret},
	}
	for k, v := range extra {
		form[k] = v
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/token", strings.NewReader(form.Encode()))
	if err != nil {
		return models.Credential{}, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return models.Credential{}, fmt.Errorf("%w: %v", ErrAuth, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn("auth exchange failed", "status", resp.StatusCode)
		return models.Credential{}, fmt.Errorf("%w: status %d", ErrAuth, resp.StatusCode)
	}
	var body struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return models.Credential{}, fmt.Errorf("%w: decode token response: %v", ErrAuth, err)
	}
	if body.AccessToken == "" {
		return models.Credential{}, fmt.Errorf("%w: empty access token", ErrAuth)
	}
	ttl := body.ExpiresIn
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	return models.Credential{
		Token:     body.AccessToken,
		ExpiresAt: c.now().Add(time.Duration(ttl)*time.Second - models.SafetyMargin),
	}, nil
}

// Accounts fetches and normalizes all accounts of a remote user.
func (c *Client) Accounts(ctx context.Context, token, userID string) ([]Account, error) {
	endpoint := "/users/" + url.PathEscape(userID) + "/accounts"
	var body struct {
		Data []accountWire `json:"data"`
	}
	if err := c.getJSON(ctx, token, endpoint, nil, &body); err != nil {
		return nil, err
	}
	accounts := make([]Account, 0, len(body.Data))
	for _, w := range body.Data {
		accounts = append(accounts, w.normalize())
	}
	return accounts, nil
}

// Transactions fetches the most recent transactions of a remote user,
// newest first.
func (c *Client) Transactions(ctx context.Context, token, userID string, limit int) ([]Transaction, error) {
	endpoint := "/users/" + url.PathEscape(userID) + "/transactions"
	q := url.Values{
		"limit": {strconv.Itoa(limit)},
		"sort":  {"-postDate"},
	}
	var body struct {
		Data []struct {
			Amount      string `json:"amount"`
			Description string `json:"description"`
			PostDate    string `json:"postDate"`
			Direction   string `json:"direction"`
			Currency    string `json:"currency"`
		} `json:"data"`
	}
	if err := c.getJSON(ctx, token, endpoint, q, &body); err != nil {
		return nil, err
	}
	txns := make([]Transaction, 0, len(body.Data))
	for _, t := range body.Data {
		txns = append(txns, Transaction{
			Amount:      t.Amount,
			Description: t.Description,
			PostDate:    t.PostDate,
			Direction:   t.Direction,
			Currency:    t.Currency,
		})
	}
	return txns, nil
}

// CreateUser registers a new remote identity and returns its id.
func (c *Client) CreateUser(ctx context.Context, token string, profile models.OnboardingProfile) (string, error) {
	payload := map[string]any{
		"email":     profile.Email,
		"mobile":    profile.Mobile,
		"firstName": profile.FirstName,
		"lastName":  profile.LastName,
	}
	if profile.BusinessName != "" {
		payload["businessName"] = profile.BusinessName
		payload["businessIdNo"] = profile.BusinessIDNo
		payload["businessIdNoType"] = string(profile.BusinessIDType)
		payload["businessAddress"] = map[string]string{
			"addressLine1": profile.Address.AddressLine1,
			"suburb":       profile.Address.Suburb,
			"state":        profile.Address.State,
			"postcode":     profile.Address.Postcode,
			"countryCode":  profile.Address.Country,
		}
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/users", strings.NewReader(string(b)))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", &ProviderError{Status: 0, Endpoint: "/users"}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn("identity creation failed", "status", resp.StatusCode)
		return "", &ProviderError{Status: resp.StatusCode, Endpoint: "/users"}
	}
	var body struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decode user response: %w", err)
	}
	return body.ID, nil
}

func (c *Client) getJSON(ctx context.Context, token, endpoint string, query url.Values, out any) error {
	u := c.cfg.BaseURL + endpoint
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return &ProviderError{Status: 0, Endpoint: endpoint}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn("provider call failed", "endpoint", endpoint, "status", resp.StatusCode)
		return &ProviderError{Status: resp.StatusCode, Endpoint: endpoint}
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
