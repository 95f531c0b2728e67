package pricing

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/courierops/pricegrid/internal/account"
)

// AccountResolver is the slice of the account service the lifecycle manager
// depends on.
type AccountResolver interface {
	Resolve(ctx context.Context, clientID int64) (*account.Account, error)
	EnsureIndividual(ctx context.Context, clientID int64) (*account.Account, error)
}

// CreateRequest is a configuration submission: scalar fields plus the raw
// grid payload typed later by the (config type, pricing type) pairing.
type CreateRequest struct {
	Config ConfigDraft
	Grids  []GridDraft
}

// UpdateRequest carries the scalar fields to overwrite on the most recent
// configuration. AccountID is the account resolved by the caller and is
// checked against the stored row as a cross-account guard.
type UpdateRequest struct {
	Config    ConfigDraft
	AccountID int64
}

// ConfigWithGrids pairs a configuration with its grid collection.
type ConfigWithGrids struct {
	Config Config
	Grids  GridSet
}

// Service is the configuration lifecycle manager. It keeps at most one
// active configuration per account by expiring the predecessor whenever a
// new configuration becomes valid.
type Service struct {
	repo     Repository
	accounts AccountResolver
	logger   zerolog.Logger
	now      func() time.Time
}

// ServiceConfig holds configuration for the lifecycle service.
type ServiceConfig struct {
	Repository Repository
	Accounts   AccountResolver
	Logger     zerolog.Logger

	// Now overrides the clock, for tests. Defaults to time.Now.
	Now func() time.Time
}

// NewService creates a new configuration lifecycle service.
func NewService(cfg ServiceConfig) *Service {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		repo:     cfg.Repository,
		accounts: cfg.Accounts,
		logger:   cfg.Logger,
		now:      now,
	}
}

// CreateIndividualConfig creates a configuration for a single client,
// resolving (or lazily creating) the client's individual account and
// expiring any predecessor.
func (s *Service) CreateIndividualConfig(ctx context.Context, req CreateRequest, clientID int64) (*ConfigWithGrids, error) {
	if len(req.Grids) == 0 {
		return nil, ErrMissingGrids
	}
	if req.Config.Group != GroupIndividual {
		return nil, &InvalidGroupError{Group: req.Config.Group, ReqType: GroupIndividual}
	}

	acct, err := s.accounts.EnsureIndividual(ctx, clientID)
	if err != nil {
		return nil, err
	}
	return s.create(ctx, req, acct.ID)
}

// CreateGroupConfig creates a configuration for an existing group account.
// Unlike the individual path, the account is never created implicitly.
func (s *Service) CreateGroupConfig(ctx context.Context, req CreateRequest, accountID int64) (*ConfigWithGrids, error) {
	if len(req.Grids) == 0 {
		return nil, ErrMissingGrids
	}
	if req.Config.Group != GroupGroup {
		return nil, &InvalidGroupError{Group: req.Config.Group, ReqType: GroupGroup}
	}
	return s.create(ctx, req, accountID)
}

// create validates the submission, then expires the predecessor and persists
// the configuration with its grids in one per-account unit of work.
func (s *Service) create(ctx context.Context, req CreateRequest, accountID int64) (*ConfigWithGrids, error) {
	cfg, err := NewConfig(req.Config)
	if err != nil {
		return nil, err
	}
	cfg.AccountID = accountID

	set, err := BuildGridSet(cfg.ConfigType, cfg.PricingType, req.Grids)
	if err != nil {
		return nil, err
	}
	set, err = set.Validated()
	if err != nil {
		return nil, err
	}

	var created *Config
	err = s.repo.Transact(ctx, accountID, func(r Repository) error {
		if err := s.expire(ctx, r, cfg); err != nil {
			return err
		}
		created, err = r.Create(ctx, cfg)
		if err != nil {
			return err
		}
		return r.InsertGrids(ctx, created.ID, set)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("config_id", created.ID).
		Int64("account_id", accountID).
		Str("config_type", string(created.ConfigType)).
		Str("pricing_type", string(created.PricingType)).
		Int("grids", set.Len()).
		Msg("configuration created")
	return &ConfigWithGrids{Config: *created, Grids: set}, nil
}

// expire closes the validity window of every live configuration the new one
// supersedes. Windows already closed before the new ValidFrom are left alone.
// When closing a window would invert it, the old ValidFrom is clamped up to
// the new boundary, leaving a zero-length window rather than failing.
func (s *Service) expire(ctx context.Context, r Repository, next *Config) error {
	existing, err := r.ListLive(ctx, next.AccountID)
	if err != nil {
		return err
	}

	for _, old := range existing {
		if old.Group != next.Group {
			return &ConfigGroupError{
				AccountID:     old.AccountID,
				ReqGroup:      next.Group,
				ExistingGroup: old.Group,
			}
		}
		if old.ValidTo != nil && old.ValidTo.Before(next.ValidFrom) {
			continue
		}

		validTo := next.ValidFrom
		old.ValidTo = &validTo
		if !old.ValidFrom.Before(*old.ValidTo) {
			old.ValidFrom = *old.ValidTo
		}
		if err := r.Update(ctx, old); err != nil {
			return err
		}
		s.logger.Info().
			Int64("config_id", old.ID).
			Int64("account_id", old.AccountID).
			Time("valid_to", *old.ValidTo).
			Msg("configuration expired")
	}
	return nil
}

// UpdateLastConfig overwrites the scalar fields of the account's most recent
// configuration, then re-checks that the grids persisted for it are still
// legal for its (possibly changed) type fields.
func (s *Service) UpdateLastConfig(ctx context.Context, req UpdateRequest) (*Config, error) {
	draft, err := NewConfig(req.Config)
	if err != nil {
		return nil, err
	}

	var updated *Config
	err = s.repo.Transact(ctx, req.AccountID, func(r Repository) error {
		stored, err := r.GetLatest(ctx, req.AccountID)
		if err != nil {
			return err
		}
		if stored.AccountID != req.AccountID {
			return &ClientIDMismatchError{StoredID: stored.AccountID, ReqID: req.AccountID}
		}
		if stored.Group != draft.Group {
			return &ConfigGroupError{
				AccountID:     stored.AccountID,
				ReqGroup:      draft.Group,
				ExistingGroup: stored.Group,
			}
		}

		if err := s.checkGridsStillLegal(ctx, r, stored.ID, draft.ConfigType, draft.PricingType); err != nil {
			return err
		}

		stored.ValidFrom = draft.ValidFrom
		stored.ValidTo = draft.ValidTo
		stored.PricingType = draft.PricingType
		stored.ConfigType = draft.ConfigType
		stored.PackageSizeOption = draft.PackageSizeOption
		stored.TransportOption = draft.TransportOption
		stored.Frequency = draft.Frequency

		if err := r.Update(ctx, stored); err != nil {
			return err
		}
		updated = stored
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("config_id", updated.ID).
		Int64("account_id", updated.AccountID).
		Msg("configuration updated")
	return updated, nil
}

// checkGridsStillLegal verifies that no grid collection of a kind made
// illegal by the new type fields remains attached to the configuration. An
// update can switch pricing or config type while the grids stay from the old
// pairing; that state must be rejected before the field changes persist.
func (s *Service) checkGridsStillLegal(ctx context.Context, r Repository, configID int64, configType ConfigType, pricingType PricingType) error {
	legalKind, err := GridKindFor(configType, pricingType)
	if err != nil {
		return err
	}
	counts, err := r.GridCounts(ctx, configID)
	if err != nil {
		return err
	}
	for kind, count := range counts {
		if kind == legalKind || count == 0 {
			continue
		}
		return &UnsupportedAfterUpdateError{
			ConfigID:    configID,
			GridKind:    kind,
			ConfigType:  configType,
			PricingType: pricingType,
		}
	}
	return nil
}

// DeleteAll soft-deletes every live configuration for the account and drops
// their grid collections.
func (s *Service) DeleteAll(ctx context.Context, accountID int64) error {
	now := s.now()
	var deleted []int64
	err := s.repo.Transact(ctx, accountID, func(r Repository) error {
		configs, err := r.ListLive(ctx, accountID)
		if err != nil {
			return err
		}
		if len(configs) == 0 {
			return &AccountNotFoundError{AccountID: accountID}
		}

		ids := make([]int64, 0, len(configs))
		for _, cfg := range configs {
			ids = append(ids, cfg.ID)
		}
		if err := r.SoftDelete(ctx, ids, now); err != nil {
			return err
		}
		for _, cfg := range configs {
			if err := s.dropGrids(ctx, r, cfg); err != nil {
				return err
			}
		}
		deleted = ids
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info().
		Int64("account_id", accountID).
		Ints64("config_ids", deleted).
		Msg("configurations deleted")
	return nil
}

// DeleteLast soft-deletes the account's most recent live configuration.
func (s *Service) DeleteLast(ctx context.Context, accountID int64) error {
	now := s.now()
	var deletedID int64
	err := s.repo.Transact(ctx, accountID, func(r Repository) error {
		latest, err := r.GetLatest(ctx, accountID)
		if err != nil {
			return err
		}
		if err := r.SoftDelete(ctx, []int64{latest.ID}, now); err != nil {
			return err
		}
		if err := s.dropGrids(ctx, r, latest); err != nil {
			return err
		}
		deletedID = latest.ID
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info().
		Int64("account_id", accountID).
		Int64("config_id", deletedID).
		Msg("configuration deleted")
	return nil
}

func (s *Service) dropGrids(ctx context.Context, r Repository, cfg *Config) error {
	kind, err := GridKindFor(cfg.ConfigType, cfg.PricingType)
	if err != nil {
		return err
	}
	return r.DeleteGrids(ctx, cfg.ID, kind)
}

// ConfigsForClient returns every live configuration, with grids, for the
// account owning the client id.
func (s *Service) ConfigsForClient(ctx context.Context, clientID int64) ([]*ConfigWithGrids, error) {
	acct, err := s.accounts.Resolve(ctx, clientID)
	if err != nil {
		return nil, err
	}
	configs, err := s.repo.ListLive(ctx, acct.ID)
	if err != nil {
		return nil, err
	}
	if len(configs) == 0 {
		return nil, &AccountNotFoundError{AccountID: acct.ID}
	}

	out := make([]*ConfigWithGrids, 0, len(configs))
	for _, cfg := range configs {
		withGrids, err := s.attachGrids(ctx, cfg)
		if err != nil {
			return nil, err
		}
		out = append(out, withGrids)
	}
	return out, nil
}

// ActiveConfigForClient returns the configuration, with grids, active for
// the client over the requested date window.
func (s *Service) ActiveConfigForClient(ctx context.Context, clientID int64, start, end time.Time) (*ConfigWithGrids, error) {
	acct, err := s.accounts.Resolve(ctx, clientID)
	if err != nil {
		return nil, err
	}
	cfg, err := s.repo.ActiveForRange(ctx, acct.ID, start, end)
	if err != nil {
		return nil, err
	}
	return s.attachGrids(ctx, cfg)
}

func (s *Service) attachGrids(ctx context.Context, cfg *Config) (*ConfigWithGrids, error) {
	kind, err := GridKindFor(cfg.ConfigType, cfg.PricingType)
	if err != nil {
		return nil, err
	}
	set, err := s.repo.GridsFor(ctx, cfg.ID, kind)
	if err != nil {
		return nil, err
	}
	return &ConfigWithGrids{Config: *cfg, Grids: set}, nil
}
