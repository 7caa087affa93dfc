package pricing

import (
	"context"
	"fmt"
	"time"

	"ratecraft/internal/app/commands"
	"ratecraft/internal/app/dto"
	"ratecraft/internal/app/uow"
	domainpricing "ratecraft/internal/domain/pricing"
)

const recomputeKey = "pricing.recompute"

// RecomputeCommand re-prices a date range and reports how many days
// updated. Running it twice with unchanged inputs yields identical
// prices and no new history rows.
type RecomputeCommand struct {
	PropertyID      string
	StartDate       time.Time
	EndDate         time.Time
	IdempotencyKeyV string
}

func (c RecomputeCommand) Key() string { return recomputeKey }

func (c RecomputeCommand) IdempotencyKey() string { return c.IdempotencyKeyV }

func (c RecomputeCommand) ResultPrototype() any { return &dto.RecomputeReport{} }

type RecomputeHandler struct {
	Resolver   *Resolver
	UoWFactory uow.UoWFactory
}

func (h *RecomputeHandler) Handle(ctx context.Context, cmd RecomputeCommand) (*dto.RecomputeReport, error) {
	dr, err := calendarRange(cmd.PropertyID, cmd.StartDate, cmd.EndDate)
	if err != nil {
		return nil, err
	}

	unit, ctx, finish, err := beginUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}

	report := &dto.RecomputeReport{PropertyID: cmd.PropertyID}
	dr.Each(func(day time.Time) bool {
		_, dayErr := h.Resolver.ResolveDay(ctx, unit, domainpricing.PriceRequest{
			PropertyID: cmd.PropertyID,
			Date:       day,
		})
		if dayErr != nil {
			report.Failed++
			report.Errors = append(report.Errors, fmt.Sprintf("%s: %v", day.Format("2006-01-02"), dayErr))
		} else {
			report.Updated++
		}
		return ctx.Err() == nil
	})

	if err = finish(ctx, ctx.Err()); err != nil {
		return nil, err
	}
	return report, nil
}

var _ commands.Handler[RecomputeCommand, *dto.RecomputeReport] = (*RecomputeHandler)(nil)
