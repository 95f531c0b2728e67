package account

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Service provides account resolution and management.
type Service struct {
	repo   Repository
	logger zerolog.Logger
	now    func() time.Time
}

// ServiceConfig holds configuration for the account service.
type ServiceConfig struct {
	Repository Repository
	Logger     zerolog.Logger

	// Now overrides the clock, for tests. Defaults to time.Now.
	Now func() time.Time
}

// NewService creates a new account service.
func NewService(cfg ServiceConfig) *Service {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		repo:   cfg.Repository,
		logger: cfg.Logger,
		now:    now,
	}
}

// Resolve returns the single live account containing the client id.
// Returns ErrAccountNotFound when the client is not mapped to any account.
func (s *Service) Resolve(ctx context.Context, clientID int64) (*Account, error) {
	return s.repo.FindLiveByClientID(ctx, clientID)
}

// EnsureIndividual resolves the client's account, lazily creating a
// single-client individual account when none exists.
func (s *Service) EnsureIndividual(ctx context.Context, clientID int64) (*Account, error) {
	acct, err := s.repo.FindLiveByClientID(ctx, clientID)
	if err == nil {
		return acct, nil
	}
	if !errors.Is(err, ErrAccountNotFound) {
		return nil, err
	}

	created, err := s.Create(ctx, Draft{
		ClientIDs:       []int64{clientID},
		ClientGroupName: fmt.Sprintf("client_%d_account", clientID),
		ValidFrom:       s.now(),
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info().
		Int64("account_id", created.ID).
		Int64("client_id", clientID).
		Msg("individual account created")
	return created, nil
}

// Create allocates a new account after checking that none of its client ids
// already belongs to a different live account.
func (s *Service) Create(ctx context.Context, d Draft) (*Account, error) {
	acct, err := New(d)
	if err != nil {
		return nil, err
	}

	for _, clientID := range acct.ClientIDs {
		existing, err := s.repo.FindLiveByClientID(ctx, clientID)
		if err != nil {
			if errors.Is(err, ErrAccountNotFound) {
				continue
			}
			return nil, err
		}
		s.logger.Warn().
			Int64("client_id", clientID).
			Int64("account_id", existing.ID).
			Msg("client id already mapped to a live account")
		return nil, &ConflictError{ClientID: clientID, AccountID: existing.ID}
	}

	created, err := s.repo.Create(ctx, acct)
	if err != nil {
		return nil, err
	}
	s.logger.Info().
		Int64("account_id", created.ID).
		Str("client_ids", JoinClientIDs(created.ClientIDs)).
		Msg("account created")
	return created, nil
}

// ByClientID returns every live account containing the client id.
func (s *Service) ByClientID(ctx context.Context, clientID int64) ([]*Account, error) {
	accounts, err := s.repo.ListByClientID(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if len(accounts) == 0 {
		return nil, ErrAccountNotFound
	}
	return accounts, nil
}

// ByID returns an account by id regardless of deletion state.
func (s *Service) ByID(ctx context.Context, id int64) (*Account, error) {
	return s.repo.GetByID(ctx, id)
}

// LatestByID returns the live account with the given id.
func (s *Service) LatestByID(ctx context.Context, id int64) (*Account, error) {
	return s.repo.GetLatestLiveByID(ctx, id)
}

// Delete soft-deletes an account.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.SoftDelete(ctx, id, s.now()); err != nil {
		return err
	}
	s.logger.Info().Int64("account_id", id).Msg("account deleted")
	return nil
}
