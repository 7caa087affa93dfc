package pricing

import (
	"context"
	"time"

	"ratecraft/internal/app/dto"
	"ratecraft/internal/app/handlers/support"
	"ratecraft/internal/app/queries"
	"ratecraft/internal/app/uow"
	domainpricing "ratecraft/internal/domain/pricing"
	"ratecraft/internal/domain/shared/daterange"
)

const getPriceKey = "pricing.get"

// GetPriceQuery reads the stored snapshot for one property-day without
// recomputing it.
type GetPriceQuery struct {
	PropertyID string
	Date       time.Time
}

func (q GetPriceQuery) Key() string { return getPriceKey }

type GetPriceHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *GetPriceHandler) Handle(ctx context.Context, q GetPriceQuery) (dto.PriceResult, error) {
	var zero dto.PriceResult
	verr := &domainpricing.ValidationError{}
	if q.PropertyID == "" {
		verr.Fields = append(verr.Fields, domainpricing.FieldError{Field: "propertyId", Message: "is required"})
	}
	if q.Date.IsZero() {
		verr.Fields = append(verr.Fields, domainpricing.FieldError{Field: "date", Message: "is required"})
	}
	if len(verr.Fields) > 0 {
		return zero, verr
	}

	unit, execCtx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return zero, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	snapshot, err := unit.Snapshots().Get(execCtx, q.PropertyID, daterange.Day(q.Date))
	if err != nil {
		return zero, err
	}
	return dto.NewPriceResult(snapshot), nil
}

var _ queries.Handler[GetPriceQuery, dto.PriceResult] = (*GetPriceHandler)(nil)
