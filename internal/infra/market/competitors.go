package market

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"ratecraft/internal/domain/market"
	"ratecraft/internal/domain/shared/daterange"
)

// CompetitorCache holds observed competitor rates keyed by property and day.
// It is fed by the competitor feed consumer and read by the factor
// calculator; entries are replaced wholesale per observation source.
type CompetitorCache struct {
	mu     sync.RWMutex
	prices map[string][]market.CompetitorPrice
}

func NewCompetitorCache() *CompetitorCache {
	return &CompetitorCache{prices: make(map[string][]market.CompetitorPrice)}
}

func cacheKey(propertyID string, day time.Time) string {
	return propertyID + "|" + daterange.Day(day).Format("2006-01-02")
}

// Record stores an observation, replacing any earlier one from the same source.
func (c *CompetitorCache) Record(propertyID string, day time.Time, price market.CompetitorPrice) {
	key := cacheKey(propertyID, day)
	c.mu.Lock()
	defer c.mu.Unlock()

	existing := c.prices[key]
	for i, p := range existing {
		if p.Source == price.Source {
			existing[i] = price
			return
		}
	}
	c.prices[key] = append(existing, price)
}

// CompetitorPrices returns cached observations for the property and day.
func (c *CompetitorCache) CompetitorPrices(_ context.Context, propertyID string, day time.Time) ([]market.CompetitorPrice, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	cached := c.prices[cacheKey(propertyID, day)]
	out := make([]market.CompetitorPrice, len(cached))
	copy(out, cached)
	return out, nil
}

type competitorObservation struct {
	PropertyID string  `json:"propertyId"`
	Date       string  `json:"date"`
	Source     string  `json:"source"`
	Price      float64 `json:"price"`
	Currency   string  `json:"currency"`
	ObservedAt string  `json:"observedAt"`
}

// Ingest decodes a competitor feed message and records it in the cache.
func (c *CompetitorCache) Ingest(payload []byte, logger *slog.Logger) error {
	var obs competitorObservation
	if err := json.Unmarshal(payload, &obs); err != nil {
		return fmt.Errorf("competitor observation decode: %w", err)
	}
	if obs.PropertyID == "" || obs.Price <= 0 {
		return fmt.Errorf("competitor observation missing propertyId or price")
	}
	day, err := time.ParseInLocation("2006-01-02", obs.Date, time.UTC)
	if err != nil {
		return fmt.Errorf("competitor observation date: %w", err)
	}
	observedAt := time.Now().UTC()
	if obs.ObservedAt != "" {
		if parsed, err := time.Parse(time.RFC3339, obs.ObservedAt); err == nil {
			observedAt = parsed
		}
	}
	c.Record(obs.PropertyID, day, market.CompetitorPrice{
		Source:     obs.Source,
		Price:      obs.Price,
		Currency:   obs.Currency,
		ObservedAt: observedAt,
	})
	if logger != nil {
		logger.Debug("competitor price recorded",
			"property_id", obs.PropertyID, "date", obs.Date, "source", obs.Source)
	}
	return nil
}
