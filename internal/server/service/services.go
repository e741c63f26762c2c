package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/TomHarkness/TransparentBalanceApp/internal/basiq"
	"github.com/TomHarkness/TransparentBalanceApp/internal/cache"
	"github.com/TomHarkness/TransparentBalanceApp/internal/server/config"
	"github.com/TomHarkness/TransparentBalanceApp/internal/shared/models"
)

// Provider is the slice of the basiq client the services consume.
type Provider interface {
	Token(ctx context.Context) (models.Credential, error)
	ClientToken(ctx context.Context, userID string) (models.Credential, error)
	Accounts(ctx context.Context, token, userID string) ([]basiq.Account, error)
	Transactions(ctx context.Context, token, userID string, limit int) ([]basiq.Transaction, error)
	CreateUser(ctx context.Context, token string, profile models.OnboardingProfile) (string, error)
}

// CacheStore is the freshness-gated resource cache.
type CacheStore interface {
	Get(kind cache.Kind) (cache.Record, bool)
	Put(kind cache.Kind, rec cache.Record) error
}

// Repository journals onboarding sessions and holds the bound account id.
type Repository interface {
	CreateSession(ctx context.Context) (models.OnboardingSession, error)
	SaveSession(ctx context.Context, sess models.OnboardingSession) error
	GetSession(ctx context.Context, id string) (models.OnboardingSession, error)
	SetBoundAccountID(ctx context.Context, userID string) error
	BoundAccountID(ctx context.Context) (string, error)
}

type Services struct {
	Balance      *BalanceService
	Transactions *TransactionsService
	Onboarding   *OnboardingService
}

func NewServices(provider Provider, cacheStore CacheStore, repo Repository, cfg config.Config, logger *slog.Logger) *Services {
	return &Services{
		Balance: &BalanceService{
			provider: provider,
			cache:    cacheStore,
			repo:     repo,
			cfg:      cfg.Basiq,
			logger:   logger,
			now:      time.Now,
		},
		Transactions: &TransactionsService{
			provider: provider,
			cache:    cacheStore,
			repo:     repo,
			cfg:      cfg.Basiq,
			enabled:  cfg.TransactionsEnabled,
			limit:    cfg.TransactionsLimit,
			logger:   logger,
			now:      time.Now,
		},
		Onboarding: &OnboardingService{
			provider: provider,
			repo:     repo,
			cfg:      cfg.Basiq,
			secret:   []byte(cfg.CallbackSecret),
			logger:   logger,
			now:      time.Now,
		},
	}
}

// accountID resolves the remote account identifier the fetchers address.
// An identifier bound by a granted consent flow wins over static config.
func accountID(ctx context.Context, repo Repository, cfg config.BasiqConfig) (string, error) {
	if repo != nil {
		if id, err := repo.BoundAccountID(ctx); err == nil && id != "" {
			return id, nil
		}
	}
	if cfg.UserID == "" {
		return "", fmt.Errorf("account identifier: %w", basiq.ErrConfig)
	}
	return cfg.UserID, nil
}

// BalanceService serves the sanitized balance of the configured account,
// gated by a 24 hour freshness window.
type BalanceService struct {
	provider Provider
	cache    CacheStore
	repo     Repository
	cfg      config.BasiqConfig
	logger   *slog.Logger
	now      func() time.Time
}

// Get serves the cached balance when fresh and re-fetches otherwise.
func (s *BalanceService) Get(ctx context.Context) (models.SafeBalance, error) {
	if rec, ok := s.cache.Get(cache.KindBalance); ok && cache.Fresh(rec, cache.KindBalance, s.now()) {
		var sb models.SafeBalance
		if err := json.Unmarshal(rec.Payload, &sb); err == nil {
			return sb, nil
		}
		s.logger.Warn("discarding unreadable balance cache entry")
	}
	return s.Refresh(ctx)
}

// Refresh always performs a provider fetch, bypassing the freshness check.
// On any error the previous cache entry is left untouched.
func (s *BalanceService) Refresh(ctx context.Context) (models.SafeBalance, error) {
	userID, err := accountID(ctx, s.repo, s.cfg)
	if err != nil {
		return models.SafeBalance{}, err
	}
	if s.cfg.InstitutionID == "" {
		return models.SafeBalance{}, fmt.Errorf("institution id: %w", basiq.ErrConfig)
	}
	cred, err := s.provider.Token(ctx)
	if err != nil {
		return models.SafeBalance{}, err
	}
	accounts, err := s.provider.Accounts(ctx, cred.Token, userID)
	if err != nil {
		return models.SafeBalance{}, err
	}
	for _, a := range accounts {
		if a.InstitutionID != s.cfg.InstitutionID {
			continue
		}
		sb := models.SafeBalance{
			Balance:     a.Balance,
			Currency:    currencyOr(a.Currency, "AUD"),
			LastUpdated: s.now(),
		}
		s.store(cache.KindBalance, sb, sb.LastUpdated)
		return sb, nil
	}
	return models.SafeBalance{}, fmt.Errorf("institution %s: %w", s.cfg.InstitutionID, ErrNotFound)
}

func (s *BalanceService) store(kind cache.Kind, v any, fetchedAt time.Time) {
	payload, err := json.Marshal(v)
	if err != nil {
		return
	}
	rec := cache.Record{Payload: payload, FetchedAt: fetchedAt, Status: cache.StatusSuccess}
	if err := s.cache.Put(kind, rec); err != nil {
		s.logger.Warn("cache write failed", "kind", string(kind), "err", err)
	}
}

// TransactionsService serves the sanitized transaction list, gated by a
// 1 hour freshness window and a feature flag.
type TransactionsService struct {
	provider Provider
	cache    CacheStore
	repo     Repository
	cfg      config.BasiqConfig
	enabled  bool
	limit    int
	logger   *slog.Logger
	now      func() time.Time
}

func (s *TransactionsService) Get(ctx context.Context) (models.SafeTransactionList, error) {
	if !s.enabled {
		return models.SafeTransactionList{Enabled: false}, nil
	}
	if rec, ok := s.cache.Get(cache.KindTransactions); ok && cache.Fresh(rec, cache.KindTransactions, s.now()) {
		var list models.SafeTransactionList
		if err := json.Unmarshal(rec.Payload, &list); err == nil {
			return list, nil
		}
		s.logger.Warn("discarding unreadable transactions cache entry")
	}
	return s.refresh(ctx)
}

func (s *TransactionsService) refresh(ctx context.Context) (models.SafeTransactionList, error) {
	userID, err := accountID(ctx, s.repo, s.cfg)
	if err != nil {
		return models.SafeTransactionList{}, err
	}
	cred, err := s.provider.Token(ctx)
	if err != nil {
		return models.SafeTransactionList{}, err
	}
	txns, err := s.provider.Transactions(ctx, cred.Token, userID, s.limit)
	if err != nil {
		return models.SafeTransactionList{}, err
	}
	list := models.SafeTransactionList{
		Enabled:      true,
		Transactions: make([]models.SafeTransaction, 0, len(txns)),
		LastUpdated:  s.now(),
	}
	for _, t := range txns {
		list.Transactions = append(list.Transactions, models.SafeTransaction{
			Amount:      t.Amount,
			Description: t.Description,
			Date:        t.PostDate,
			Direction:   t.Direction,
			Currency:    currencyOr(t.Currency, "AUD"),
		})
	}
	payload, err := json.Marshal(list)
	if err != nil {
		return models.SafeTransactionList{}, err
	}
	rec := cache.Record{Payload: payload, FetchedAt: list.LastUpdated, Status: cache.StatusSuccess}
	if err := s.cache.Put(cache.KindTransactions, rec); err != nil {
		s.logger.Warn("cache write failed", "kind", "transactions", "err", err)
	}
	return list, nil
}

func currencyOr(v, def string) string {
	if v != "" {
		return v
	}
	return def
}
