package pricing

import (
	"context"
	"log/slog"
	"time"

	"ratecraft/internal/domain/market"
	"ratecraft/internal/domain/shared/daterange"
)

// Factors are the six independent multiplicative signals. Neutral is 1.0
// for every field; they combine by plain multiplication.
type Factors struct {
	Seasonal    float64 `json:"seasonalFactor"`
	Weekend     float64 `json:"weekendFactor"`
	Demand      float64 `json:"demandFactor"`
	Event       float64 `json:"eventFactor"`
	LastMinute  float64 `json:"lastMinuteFactor"`
	LOSDiscount float64 `json:"losDiscountFactor"`
}

func NeutralFactors() Factors {
	return Factors{Seasonal: 1, Weekend: 1, Demand: 1, Event: 1, LastMinute: 1, LOSDiscount: 1}
}

func (f Factors) Combined() float64 {
	return f.Seasonal * f.Weekend * f.Demand * f.Event * f.LastMinute * f.LOSDiscount
}

// seasonalTable mirrors the forecasting service's seasonal occupancy map.
var seasonalTable = map[time.Month]float64{
	time.January:   0.85,
	time.February:  0.90,
	time.March:     0.95,
	time.April:     1.05,
	time.May:       1.15,
	time.June:      1.30,
	time.July:      1.35,
	time.August:    1.35,
	time.September: 1.20,
	time.October:   1.10,
	time.November:  0.95,
	time.December:  1.00,
}

func SeasonalFactor(month time.Month) float64 {
	if f, ok := seasonalTable[month]; ok {
		return f
	}
	return 1.0
}

// WeekendFactor uses Go's weekday convention (Sunday=0), the same one the
// rule engine matches daysOfWeek against.
func WeekendFactor(day time.Weekday) float64 {
	switch day {
	case time.Saturday, time.Sunday:
		return 1.20
	case time.Thursday, time.Friday:
		return 1.05
	default:
		return 1.0
	}
}

func DemandFactor(occupancy float64) float64 {
	switch {
	case occupancy >= 0.9:
		return 1.50
	case occupancy >= 0.8:
		return 1.35
	case occupancy >= 0.7:
		return 1.20
	case occupancy >= 0.6:
		return 1.10
	case occupancy >= 0.5:
		return 1.00
	case occupancy >= 0.4:
		return 0.95
	case occupancy >= 0.3:
		return 0.90
	default:
		return 0.85
	}
}

// LastMinuteFactor checks the tight thresholds first; the ranges overlap
// and the order below resolves the ambiguity.
func LastMinuteFactor(daysUntilArrival int) float64 {
	switch {
	case daysUntilArrival <= 1:
		return 0.80
	case daysUntilArrival <= 3:
		return 0.90
	case daysUntilArrival <= 7:
		return 0.95
	case daysUntilArrival >= 90:
		return 1.10
	case daysUntilArrival >= 60:
		return 1.05
	default:
		return 1.0
	}
}

func LengthOfStayFactor(nights int) float64 {
	if nights < 2 {
		return 1.0
	}
	switch {
	case nights >= 30:
		return 0.75
	case nights >= 14:
		return 0.85
	case nights >= 7:
		return 0.90
	case nights >= 3:
		return 0.95
	default:
		return 1.0
	}
}

// FactorCalculatorConfig carries the ambient knobs; passed in at
// construction so tests and tenants can vary them.
type FactorCalculatorConfig struct {
	EventsEnabled    bool
	EventWindowDays  int
	DefaultOccupancy float64
}

func DefaultFactorCalculatorConfig() FactorCalculatorConfig {
	return FactorCalculatorConfig{
		EventsEnabled:    true,
		EventWindowDays:  2,
		DefaultOccupancy: 0.5,
	}
}

// FactorCalculator derives the six factors for one request. It is
// stateless; the market provider is its only collaborator and its
// failures degrade to neutral factors instead of propagating.
type FactorCalculator struct {
	Market market.Provider
	Logger *slog.Logger
	Config FactorCalculatorConfig
}

func NewFactorCalculator(provider market.Provider, logger *slog.Logger, cfg FactorCalculatorConfig) *FactorCalculator {
	if cfg.EventWindowDays <= 0 {
		cfg.EventWindowDays = 2
	}
	if cfg.DefaultOccupancy <= 0 {
		cfg.DefaultOccupancy = 0.5
	}
	return &FactorCalculator{Market: provider, Logger: logger, Config: cfg}
}

func (c *FactorCalculator) Compute(ctx context.Context, req PriceRequest) Factors {
	day := req.Day()
	f := NeutralFactors()
	f.Seasonal = SeasonalFactor(day.Month())
	f.Weekend = WeekendFactor(day.Weekday())
	f.Demand = c.demandFactor(ctx, req, day)
	f.Event = c.eventFactor(ctx, req.PropertyID, day)
	if req.DaysUntilArrival != nil {
		f.LastMinute = LastMinuteFactor(*req.DaysUntilArrival)
	}
	if req.LengthOfStay != nil {
		f.LOSDiscount = LengthOfStayFactor(*req.LengthOfStay)
	}
	return f
}

// demandFactor source precedence: explicit request value, then provider
// forecast, then the configured default occupancy. Provider failure is
// neutral, logged, never fatal.
func (c *FactorCalculator) demandFactor(ctx context.Context, req PriceRequest, day time.Time) float64 {
	if req.OccupancyRate != nil {
		return DemandFactor(*req.OccupancyRate)
	}
	if c.Market == nil {
		return DemandFactor(c.Config.DefaultOccupancy)
	}
	res := c.Market.Forecast(ctx, req.PropertyID, daterange.Single(day))
	if !res.Available {
		c.warn("demand forecast unavailable, using neutral factor", "property_id", req.PropertyID, "date", day)
		return 1.0
	}
	occupancy := c.Config.DefaultOccupancy
	if point, ok := res.PointFor(day); ok {
		occupancy = point.PredictedValue
	}
	return DemandFactor(occupancy)
}

func (c *FactorCalculator) eventFactor(ctx context.Context, propertyID string, day time.Time) float64 {
	if !c.Config.EventsEnabled || c.Market == nil {
		return 1.0
	}
	window := c.Config.EventWindowDays
	localEvents, err := c.Market.EventsNear(ctx, propertyID, day, window)
	if err != nil {
		c.warn("event lookup failed, using neutral factor", "property_id", propertyID, "date", day, "error", err)
		return 1.0
	}
	factor := 1.0
	lo := day.AddDate(0, 0, -window)
	hi := day.AddDate(0, 0, window)
	for _, ev := range localEvents {
		d := daterange.Day(ev.Date)
		if d.Before(lo) || d.After(hi) {
			continue
		}
		if m := ev.Impact.Multiplier(); m > factor {
			factor = m
		}
	}
	return factor
}

func (c *FactorCalculator) warn(msg string, args ...any) {
	if c.Logger != nil {
		c.Logger.Warn(msg, args...)
	}
}
