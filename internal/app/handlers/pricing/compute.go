package pricing

import (
	"context"
	"errors"
	"time"

	"ratecraft/internal/app/commands"
	"ratecraft/internal/app/dto"
	"ratecraft/internal/app/uow"
	domainpricing "ratecraft/internal/domain/pricing"
)

const computePriceKey = "pricing.compute"

var ErrUnitOfWorkRequired = errors.New("pricing: unit of work required")

// ComputePriceCommand prices one property-day and persists the result.
type ComputePriceCommand struct {
	PropertyID       string
	Date             time.Time
	CheckIn          time.Time
	CheckOut         time.Time
	LengthOfStay     *int
	DaysUntilArrival *int
	OccupancyRate    *float64
	IdempotencyKeyV  string
}

func (c ComputePriceCommand) Key() string { return computePriceKey }

func (c ComputePriceCommand) IdempotencyKey() string { return c.IdempotencyKeyV }

func (c ComputePriceCommand) ResultPrototype() any { return &dto.PriceResult{} }

type ComputePriceHandler struct {
	Resolver   *Resolver
	UoWFactory uow.UoWFactory
}

func (h *ComputePriceHandler) Handle(ctx context.Context, cmd ComputePriceCommand) (*dto.PriceResult, error) {
	unit, ctx, finish, err := beginUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}

	req := domainpricing.PriceRequest{
		PropertyID:       cmd.PropertyID,
		Date:             cmd.Date,
		CheckIn:          cmd.CheckIn,
		CheckOut:         cmd.CheckOut,
		LengthOfStay:     cmd.LengthOfStay,
		DaysUntilArrival: cmd.DaysUntilArrival,
		OccupancyRate:    cmd.OccupancyRate,
	}
	result, err := h.Resolver.ResolveDay(ctx, unit, req)
	if err = finish(ctx, err); err != nil {
		return nil, err
	}
	out := dto.NewPriceResult(result)
	return &out, nil
}

var _ commands.Handler[ComputePriceCommand, *dto.PriceResult] = (*ComputePriceHandler)(nil)

// beginUnit reuses the transaction-middleware unit when present, else
// starts and manages one. finish commits or rolls back in the managed
// case and passes the handler error through either way.
func beginUnit(ctx context.Context, factory uow.UoWFactory) (uow.UnitOfWork, context.Context, func(context.Context, error) error, error) {
	if unit, ok := uow.FromContext(ctx); ok {
		passthrough := func(_ context.Context, err error) error { return err }
		return unit, ctx, passthrough, nil
	}
	if factory == nil {
		return nil, ctx, nil, ErrUnitOfWorkRequired
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
