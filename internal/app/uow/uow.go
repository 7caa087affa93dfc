package uow

import (
	"context"

	domainpricing "ratecraft/internal/domain/pricing"
)

// UnitOfWork coordinates the pricing repositories inside one transaction
// boundary.
type UnitOfWork interface {
	Rules() domainpricing.RuleRepository
	Overrides() domainpricing.OverrideRepository
	Configs() domainpricing.ConfigRepository
	Snapshots() domainpricing.SnapshotRepository
	History() domainpricing.HistoryRepository

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// UoWFactory starts unit of work instances.
type UoWFactory interface {
	Begin(ctx context.Context, opts TxOptions) (UnitOfWork, error)
}

// TxOptions configure transaction boundaries.
type TxOptions struct {
	ReadOnly bool
}
