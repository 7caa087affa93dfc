package market

import (
	"context"
	"time"

	"ratecraft/internal/domain/market"
	"ratecraft/internal/domain/shared/daterange"
)

// Service composes the market signal sources behind the domain Provider
// port. Any nil component degrades to an empty answer.
type Service struct {
	ForecastClient *ForecastClient
	Events         *EventCatalog
	Competitors    *CompetitorCache
}

var _ market.Provider = (*Service)(nil)

func (s *Service) Forecast(ctx context.Context, propertyID string, dr daterange.DateRange) market.ForecastResult {
	if s == nil || s.ForecastClient == nil {
		return market.ForecastResult{Available: false}
	}
	return s.ForecastClient.Forecast(ctx, propertyID, dr)
}

func (s *Service) EventsNear(ctx context.Context, propertyID string, day time.Time, windowDays int) ([]market.LocalEvent, error) {
	if s == nil || s.Events == nil {
		return nil, nil
	}
	return s.Events.EventsNear(ctx, propertyID, day, windowDays)
}

func (s *Service) CompetitorPrices(ctx context.Context, propertyID string, day time.Time) ([]market.CompetitorPrice, error) {
	if s == nil || s.Competitors == nil {
		return nil, nil
	}
	return s.Competitors.CompetitorPrices(ctx, propertyID, day)
}
