package memory

import (
	"context"
	"errors"

	"ratecraft/internal/app/uow"
	domainpricing "ratecraft/internal/domain/pricing"
)

// Factory wires in-memory repositories into a unit-of-work boundary.
type Factory struct {
	RulesRepo     domainpricing.RuleRepository
	OverridesRepo domainpricing.OverrideRepository
	ConfigsRepo   domainpricing.ConfigRepository
	SnapshotsRepo domainpricing.SnapshotRepository
	HistoryRepo   domainpricing.HistoryRepository
}

// NewFactory builds a factory over fresh empty stores.
func NewFactory() Factory {
	return Factory{
		RulesRepo:     NewRuleRepository(),
		OverridesRepo: NewOverrideRepository(),
		ConfigsRepo:   NewConfigRepository(),
		SnapshotsRepo: NewSnapshotRepository(),
		HistoryRepo:   NewHistoryRepository(),
	}
}

// ErrFactoryMisconfigured indicates missing repositories.
var ErrFactoryMisconfigured = errors.New("memory: unit of work factory misconfigured")

// Begin starts a lightweight transaction boundary. No isolation is provided
// but the abstraction matches the application ports.
func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.RulesRepo == nil || f.OverridesRepo == nil || f.ConfigsRepo == nil || f.SnapshotsRepo == nil || f.HistoryRepo == nil {
		return nil, ErrFactoryMisconfigured
	}
	return &Unit{
		rules:     f.RulesRepo,
		overrides: f.OverridesRepo,
		configs:   f.ConfigsRepo,
		snapshots: f.SnapshotsRepo,
		history:   f.HistoryRepo,
	}, nil
}

// Unit is a lightweight uow.UnitOfWork backed by in-memory stores.
type Unit struct {
	rules     domainpricing.RuleRepository
	overrides domainpricing.OverrideRepository
	configs   domainpricing.ConfigRepository
	snapshots domainpricing.SnapshotRepository
	history   domainpricing.HistoryRepository
}

func (u *Unit) Rules() domainpricing.RuleRepository {
	return u.rules
}

func (u *Unit) Overrides() domainpricing.OverrideRepository {
	return u.overrides
}

func (u *Unit) Configs() domainpricing.ConfigRepository {
	return u.configs
}

func (u *Unit) Snapshots() domainpricing.SnapshotRepository {
	return u.snapshots
}

func (u *Unit) History() domainpricing.HistoryRepository {
	return u.history
}

func (u *Unit) Commit(ctx context.Context) error {
	return nil
}

func (u *Unit) Rollback(ctx context.Context) error {
	return nil
}
