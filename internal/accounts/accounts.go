// Package accounts provisions the per-user account record at session start.
package accounts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"marketplace/internal/domain"
	"marketplace/internal/metrics"
)

// Identity is the already-authenticated caller.
type Identity struct {
	UserID string
	domain.ProvisionHints
}

// Session is what the UI needs at session start. A degraded session carries
// no account and a zero balance; it is served while the store is unreachable.
type Session struct {
	Account  *domain.Account
	Created  bool
	Degraded bool
}

// Balance is the displayable balance; zero for degraded sessions.
func (s Session) Balance() int64 {
	if s.Account == nil {
		return 0
	}
	return s.Account.Balance
}

// Service provisions and reads accounts.
type Service struct {
	store  domain.Store
	logger zerolog.Logger
	now    func() time.Time
}

// NewService returns a Service on store.
func NewService(store domain.Store, logger zerolog.Logger) *Service {
	return &Service{
		store:  store,
		logger: logger.With().Str("component", "accounts").Logger(),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Provision creates the account for userID if none exists and returns the
// stored record. Hints only seed a new account; an existing one is returned
// unchanged.
func (s *Service) Provision(ctx context.Context, userID string, hints domain.ProvisionHints) (*domain.Account, bool, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, false, domain.ErrInvalidIdentity
	}
	acc, created, err := s.store.Accounts().CreateIfAbsent(ctx, domain.NewAccount(userID, hints, s.now()))
	if err != nil {
		return nil, false, fmt.Errorf("provision %s: %w", userID, err)
	}
	metrics.RecordProvision(created)
	if created {
		s.logger.Info().Str("account_id", userID).Msg("account provisioned")
	}
	return acc, created, nil
}

// Get returns the account of userID.
func (s *Service) Get(ctx context.Context, userID string) (*domain.Account, error) {
	acc, err := s.store.Accounts().GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get account %s: %w", userID, err)
	}
	return acc, nil
}

// StartSession provisions the caller's account. When the store is unreachable
// it logs a warning and returns a degraded session instead of failing.
func (s *Service) StartSession(ctx context.Context, id Identity) (Session, error) {
	acc, created, err := s.Provision(ctx, id.UserID, id.ProvisionHints)
	switch {
	case err == nil:
		return Session{Account: acc, Created: created}, nil
	case errors.Is(err, domain.ErrStoreUnavailable):
		s.degrade(id.UserID, err, "account provisioning skipped")
		return Session{Degraded: true}, nil
	default:
		return Session{}, err
	}
}

// CurrentSession reads the caller's account with the same degradation rule as
// StartSession.
func (s *Service) CurrentSession(ctx context.Context, userID string) (Session, error) {
	acc, err := s.Get(ctx, userID)
	switch {
	case err == nil:
		return Session{Account: acc}, nil
	case errors.Is(err, domain.ErrStoreUnavailable):
		s.degrade(userID, err, "account lookup skipped")
		return Session{Degraded: true}, nil
	default:
		return Session{}, err
	}
}

func (s *Service) degrade(userID string, err error, msg string) {
	metrics.RecordDegradedSession()
	s.logger.Warn().Err(err).Str("account_id", userID).Msg(msg + ": store unavailable, serving degraded session")
}
