package pricing

import (
	"context"
	"time"

	"ratecraft/internal/app/commands"
	"ratecraft/internal/app/dto"
	"ratecraft/internal/app/uow"
	domainpricing "ratecraft/internal/domain/pricing"
	"ratecraft/internal/domain/shared/daterange"
)

const computeCalendarKey = "pricing.compute_calendar"

// maxCalendarDays guards a single request from walking years of dates.
const maxCalendarDays = 366

// ComputeCalendarCommand prices every day of an inclusive range,
// sequentially. A failing day is reported in its entry; the remaining
// days still compute.
type ComputeCalendarCommand struct {
	PropertyID string
	StartDate  time.Time
	EndDate    time.Time
}

func (c ComputeCalendarCommand) Key() string { return computeCalendarKey }

type ComputeCalendarHandler struct {
	Resolver   *Resolver
	UoWFactory uow.UoWFactory
}

func (h *ComputeCalendarHandler) Handle(ctx context.Context, cmd ComputeCalendarCommand) (*dto.Calendar, error) {
	dr, err := calendarRange(cmd.PropertyID, cmd.StartDate, cmd.EndDate)
	if err != nil {
		return nil, err
	}

	unit, ctx, finish, err := beginUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}

	out := &dto.Calendar{
		PropertyID: cmd.PropertyID,
		StartDate:  dr.Start.Format("2006-01-02"),
		EndDate:    dr.End.Format("2006-01-02"),
		Entries:    make([]dto.CalendarEntry, 0, dr.Days()),
	}
	dr.Each(func(day time.Time) bool {
		entry := dto.CalendarEntry{Date: day.Format("2006-01-02")}
		result, dayErr := h.Resolver.ResolveDay(ctx, unit, domainpricing.PriceRequest{
			PropertyID: cmd.PropertyID,
			Date:       day,
		})
		if dayErr != nil {
			entry.Error = dayErr.Error()
		} else {
			mapped := dto.NewPriceResult(result)
			entry.Result = &mapped
		}
		out.Entries = append(out.Entries, entry)
		return ctx.Err() == nil
	})

	if err = finish(ctx, ctx.Err()); err != nil {
		return nil, err
	}
	return out, nil
}

var _ commands.Handler[ComputeCalendarCommand, *dto.Calendar] = (*ComputeCalendarHandler)(nil)

func calendarRange(propertyID string, start, end time.Time) (daterange.DateRange, error) {
	verr := &domainpricing.ValidationError{}
	if propertyID == "" {
		verr.Fields = append(verr.Fields, domainpricing.FieldError{Field: "propertyId", Message: "is required"})
	}
	if start.IsZero() {
		verr.Fields = append(verr.Fields, domainpricing.FieldError{Field: "startDate", Message: "is required"})
	}
	if end.IsZero() {
		verr.Fields = append(verr.Fields, domainpricing.FieldError{Field: "endDate", Message: "is required"})
	}
	if len(verr.Fields) > 0 {
		return daterange.DateRange{}, verr
	}
	dr, err := daterange.New(start, end)
	if err != nil {
		return daterange.DateRange{}, &domainpricing.ValidationError{Fields: []domainpricing.FieldError{
			{Field: "endDate", Message: "must not precede startDate"},
		}}
	}
	if dr.Days() > maxCalendarDays {
		return daterange.DateRange{}, &domainpricing.ValidationError{Fields: []domainpricing.FieldError{
			{Field: "endDate", Message: "range exceeds one year"},
		}}
	}
	return dr, nil
}
