package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"ratecraft/internal/app/uow"
	domainpricing "ratecraft/internal/domain/pricing"
)

// Factory wires Mongo transactions into the generic UnitOfWork interface.
type Factory struct {
	DB *mongo.Database

	RulesRepo     domainpricing.RuleRepository
	OverridesRepo domainpricing.OverrideRepository
	ConfigsRepo   domainpricing.ConfigRepository
	SnapshotsRepo domainpricing.SnapshotRepository
	HistoryRepo   domainpricing.HistoryRepository
}

var ErrUnitOfWorkNotConfigured = errors.New("mongo: unit of work factory missing database")

// Begin starts a MongoDB session/transaction.
func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.DB == nil {
		return nil, ErrUnitOfWorkNotConfigured
	}
	session, err := f.DB.Client().StartSession()
	if err != nil {
		return nil, err
	}
	txnOpts := options.Transaction().SetReadConcern(f.DB.ReadConcern()).SetWriteConcern(f.DB.WriteConcern())
	if err := session.StartTransaction(txnOpts); err != nil {
		session.EndSession(ctx)
		return nil, err
	}
	return &Unit{
		db:        f.DB,
		session:   session,
		rules:     f.RulesRepo,
		overrides: f.OverridesRepo,
		configs:   f.ConfigsRepo,
		snapshots: f.SnapshotsRepo,
		history:   f.HistoryRepo,
	}, nil
}

type Unit struct {
	db      *mongo.Database
	session mongo.Session

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
	defer u.session.EndSession(ctx)
	if err := u.session.CommitTransaction(ctx); err != nil {
		return err
	}
	return nil
}

func (u *Unit) Rollback(ctx context.Context) error {
	defer u.session.EndSession(ctx)
	return u.session.AbortTransaction(ctx)
}

// InjectContext ensures the Mongo session is available in context for
// downstream repositories.
func (u *Unit) InjectContext(ctx context.Context) context.Context {
	return mongo.NewSessionContext(ctx, u.session)
}
