package market

import (
	"context"
	"time"

	"ratecraft/internal/domain/shared/daterange"
)

// EventImpact grades how strongly a local event moves demand.
type EventImpact string

const (
	ImpactHigh   EventImpact = "HIGH"
	ImpactMedium EventImpact = "MEDIUM"
	ImpactLow    EventImpact = "LOW"
)

// Multiplier maps an impact grade to its price multiplier. Unknown grades
// are treated as neutral.
func (i EventImpact) Multiplier() float64 {
	switch i {
	case ImpactHigh:
		return 1.50
	case ImpactMedium:
		return 1.25
	case ImpactLow:
		return 1.10
	default:
		return 1.0
	}
}

// ForecastPoint is one day of a demand/occupancy forecast. PredictedValue
// is an occupancy share in [0,1].
type ForecastPoint struct {
	Date           time.Time
	PredictedValue float64
	Confidence     float64
}

// ForecastResult is a tagged outcome: when Available is false the provider
// could not answer (timeout, error) and callers fall back to neutral
// behavior instead of failing the computation.
type ForecastResult struct {
	Available bool
	Points    []ForecastPoint
}

// PointFor returns the forecast point covering the given day, if any.
func (r ForecastResult) PointFor(day time.Time) (ForecastPoint, bool) {
	d := daterange.Day(day)
	for _, p := range r.Points {
		if daterange.Day(p.Date).Equal(d) {
			return p, true
		}
	}
	return ForecastPoint{}, false
}

// LocalEvent is a demand-moving happening near a property.
type LocalEvent struct {
	Name   string
	Date   time.Time
	Impact EventImpact
}

// CompetitorPrice is an observed nightly rate from a comparable listing.
// Ingestion is fed externally; the feed may well be empty.
type CompetitorPrice struct {
	Source     string
	Price      float64
	Currency   string
	ObservedAt time.Time
}

// Provider supplies market signals to the factor calculator. Forecast
// never returns a hard error for upstream failures; it reports them as an
// unavailable result so the caller's fallback is an explicit branch.
type Provider interface {
	Forecast(ctx context.Context, propertyID string, dr daterange.DateRange) ForecastResult
	EventsNear(ctx context.Context, propertyID string, day time.Time, windowDays int) ([]LocalEvent, error)
	CompetitorPrices(ctx context.Context, propertyID string, day time.Time) ([]CompetitorPrice, error)
}
