package overrides

import (
	"context"
	"time"

	"github.com/google/uuid"

	"ratecraft/internal/app/commands"
	"ratecraft/internal/app/dto"
	pricingapp "ratecraft/internal/app/handlers/pricing"
	"ratecraft/internal/app/uow"
	domainpricing "ratecraft/internal/domain/pricing"
)

const (
	createOverrideKey = "overrides.create"
	deleteOverrideKey = "overrides.delete"
)

// CreateOverrideCommand pins a manual price for one property-day and
// immediately recomputes that day so the snapshot reflects it.
type CreateOverrideCommand struct {
	PropertyID      string
	Date            time.Time
	Price           float64
	Reason          string
	CreatedBy       string
	ValidUntil      *time.Time
	IdempotencyKeyV string
}

func (c CreateOverrideCommand) Key() string { return createOverrideKey }

func (c CreateOverrideCommand) IdempotencyKey() string { return c.IdempotencyKeyV }

func (c CreateOverrideCommand) ResultPrototype() any { return &dto.Override{} }

type CreateOverrideHandler struct {
	Resolver   *pricingapp.Resolver
	UoWFactory uow.UoWFactory
	Clock      func() time.Time
}

func (h *CreateOverrideHandler) Handle(ctx context.Context, cmd CreateOverrideCommand) (*dto.Override, error) {
	now := clockNow(h.Clock)
	override := domainpricing.Override{
		ID:         uuid.NewString(),
		PropertyID: cmd.PropertyID,
		Date:       cmd.Date,
		Price:      cmd.Price,
		Reason:     cmd.Reason,
		CreatedBy:  cmd.CreatedBy,
		ValidFrom:  now,
		ValidUntil: cmd.ValidUntil,
	}
	if err := override.Validate(); err != nil {
		return nil, err
	}

	unit, ctx, finish, err := beginUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}

	if err := unit.Overrides().Save(ctx, &override); err != nil {
		return nil, finish(ctx, err)
	}

	result, err := h.Resolver.ResolveDay(ctx, unit, domainpricing.PriceRequest{
		PropertyID: cmd.PropertyID,
		Date:       cmd.Date,
	})
	if err = finish(ctx, err); err != nil {
		return nil, err
	}

	mapped := dto.NewPriceResult(result)
	return &dto.Override{
		ID:         override.ID,
		PropertyID: override.PropertyID,
		Date:       override.Day().Format("2006-01-02"),
		Price:      override.Price,
		Reason:     override.Reason,
		CreatedBy:  override.CreatedBy,
		ValidFrom:  override.ValidFrom,
		ValidUntil: override.ValidUntil,
		Result:     &mapped,
	}, nil
}

// DeleteOverrideCommand removes a pin and recomputes the affected day so
// the computed price takes over again.
type DeleteOverrideCommand struct {
	OverrideID string
}

func (c DeleteOverrideCommand) Key() string { return deleteOverrideKey }

type DeleteOverrideResult struct {
	Deleted bool             `json:"deleted"`
	Result  *dto.PriceResult `json:"result,omitempty"`
}

type DeleteOverrideHandler struct {
	Resolver   *pricingapp.Resolver
	UoWFactory uow.UoWFactory
}

func (h *DeleteOverrideHandler) Handle(ctx context.Context, cmd DeleteOverrideCommand) (*DeleteOverrideResult, error) {
	unit, ctx, finish, err := beginUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}

	override, err := unit.Overrides().ByID(ctx, cmd.OverrideID)
	if err != nil {
		return nil, finish(ctx, err)
	}
	if err := unit.Overrides().Delete(ctx, cmd.OverrideID); err != nil {
		return nil, finish(ctx, err)
	}

	result, err := h.Resolver.ResolveDay(ctx, unit, domainpricing.PriceRequest{
		PropertyID: override.PropertyID,
		Date:       override.Date,
	})
	if err = finish(ctx, err); err != nil {
		return nil, err
	}

	mapped := dto.NewPriceResult(result)
	return &DeleteOverrideResult{Deleted: true, Result: &mapped}, nil
}

var (
	_ commands.Handler[CreateOverrideCommand, *dto.Override]         = (*CreateOverrideHandler)(nil)
	_ commands.Handler[DeleteOverrideCommand, *DeleteOverrideResult] = (*DeleteOverrideHandler)(nil)
)

func clockNow(clock func() time.Time) time.Time {
	if clock != nil {
		return clock().UTC()
	}
	return time.Now().UTC()
}

func beginUnit(ctx context.Context, factory uow.UoWFactory) (uow.UnitOfWork, context.Context, func(context.Context, error) error, error) {
	if unit, ok := uow.FromContext(ctx); ok {
		passthrough := func(_ context.Context, err error) error { return err }
		return unit, ctx, passthrough, nil
	}
	if factory == nil {
		return nil, ctx, nil, uow.ErrUnitOfWorkMissing
	}
	unit, err := factory.Begin(ctx, uow.TxOptions{})
	if err != nil {
		return nil, ctx, nil, err
	}
	ctx = uow.ContextWithUnitOfWork(ctx, unit)
	finish := func(ctx context.Context, err error) error {
		if err != nil {
			_ = unit.Rollback(ctx)
			return err
		}
		return unit.Commit(ctx)
	}
	return unit, ctx, finish, nil
}
