package pricing

import (
	"context"
	"math"
	"testing"
	"time"

	"ratecraft/internal/domain/market"
	"ratecraft/internal/domain/shared/daterange"
)

type stubProvider struct {
	forecast market.ForecastResult
	events   []market.LocalEvent
	eventErr error
}

func (s *stubProvider) Forecast(context.Context, string, daterange.DateRange) market.ForecastResult {
	return s.forecast
}

func (s *stubProvider) EventsNear(context.Context, string, time.Time, int) ([]market.LocalEvent, error) {
	return s.events, s.eventErr
}

func (s *stubProvider) CompetitorPrices(context.Context, string, time.Time) ([]market.CompetitorPrice, error) {
	return nil, nil
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestSeasonalFactorTable(t *testing.T) {
	cases := map[time.Month]float64{
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
	for month, want := range cases {
		if got := SeasonalFactor(month); !almostEqual(got, want) {
			t.Errorf("SeasonalFactor(%s) = %v, want %v", month, got, want)
		}
	}
}

func TestWeekendFactor(t *testing.T) {
	cases := []struct {
		day  time.Weekday
		want float64
	}{
		{time.Monday, 1.0},
		{time.Tuesday, 1.0},
		{time.Wednesday, 1.0},
		{time.Thursday, 1.05},
		{time.Friday, 1.05},
		{time.Saturday, 1.20},
		{time.Sunday, 1.20},
	}
	for _, tc := range cases {
		if got := WeekendFactor(tc.day); !almostEqual(got, tc.want) {
			t.Errorf("WeekendFactor(%s) = %v, want %v", tc.day, got, tc.want)
		}
	}
}

func TestDemandFactorBuckets(t *testing.T) {
	cases := []struct {
		occupancy float64
		want      float64
	}{
		{0.95, 1.50},
		{0.90, 1.50},
		{0.85, 1.35},
		{0.75, 1.20},
		{0.65, 1.10},
		{0.55, 1.00},
		{0.45, 0.95},
		{0.35, 0.90},
		{0.10, 0.85},
		{0.0, 0.85},
	}
	for _, tc := range cases {
		if got := DemandFactor(tc.occupancy); !almostEqual(got, tc.want) {
			t.Errorf("DemandFactor(%v) = %v, want %v", tc.occupancy, got, tc.want)
		}
	}
}

func TestLastMinuteFactorTightThresholdsWin(t *testing.T) {
	cases := []struct {
		days int
		want float64
	}{
		{0, 0.80},
		{1, 0.80},
		{2, 0.90},
		{3, 0.90},
		{5, 0.95},
		{7, 0.95},
		{8, 1.0},
		{45, 1.0},
		{60, 1.05},
		{89, 1.05},
		{90, 1.10},
		{200, 1.10},
	}
	for _, tc := range cases {
		if got := LastMinuteFactor(tc.days); !almostEqual(got, tc.want) {
			t.Errorf("LastMinuteFactor(%d) = %v, want %v", tc.days, got, tc.want)
		}
	}
}

func TestLengthOfStayFactor(t *testing.T) {
	cases := []struct {
		nights int
		want   float64
	}{
		{1, 1.0},
		{2, 1.0},
		{3, 0.95},
		{6, 0.95},
		{7, 0.90},
		{13, 0.90},
		{14, 0.85},
		{29, 0.85},
		{30, 0.75},
		{90, 0.75},
	}
	for _, tc := range cases {
		if got := LengthOfStayFactor(tc.nights); !almostEqual(got, tc.want) {
			t.Errorf("LengthOfStayFactor(%d) = %v, want %v", tc.nights, got, tc.want)
		}
	}
}

func TestComputeJulySaturday(t *testing.T) {
	calc := NewFactorCalculator(nil, nil, DefaultFactorCalculatorConfig())
	// 2026-07-04 is a Saturday.
	f := calc.Compute(context.Background(), PriceRequest{PropertyID: "p1", Date: date(2026, time.July, 4)})

	if !almostEqual(f.Seasonal, 1.35) {
		t.Errorf("seasonal = %v, want 1.35", f.Seasonal)
	}
	if !almostEqual(f.Weekend, 1.20) {
		t.Errorf("weekend = %v, want 1.20", f.Weekend)
	}
	if !almostEqual(f.Demand, 1.0) {
		t.Errorf("demand = %v, want neutral 1.0 at default occupancy", f.Demand)
	}
	if !almostEqual(f.Combined(), 1.62) {
		t.Errorf("combined = %v, want 1.62", f.Combined())
	}
}

func TestComputeLongStayEarlyBooking(t *testing.T) {
	calc := NewFactorCalculator(nil, nil, DefaultFactorCalculatorConfig())
	los := 30
	lead := 100
	// 2026-12-01 is a Tuesday in a neutral month.
	f := calc.Compute(context.Background(), PriceRequest{
		PropertyID:       "p1",
		Date:             date(2026, time.December, 1),
		LengthOfStay:     &los,
		DaysUntilArrival: &lead,
	})

	if !almostEqual(f.LOSDiscount, 0.75) {
		t.Errorf("losDiscount = %v, want 0.75", f.LOSDiscount)
	}
	if !almostEqual(f.LastMinute, 1.10) {
		t.Errorf("lastMinute = %v, want 1.10", f.LastMinute)
	}
	if !almostEqual(f.Combined(), 0.75*1.10) {
		t.Errorf("combined = %v, want %v", f.Combined(), 0.75*1.10)
	}
}

func TestComputeExplicitOccupancyOverridesProvider(t *testing.T) {
	day := date(2026, time.March, 10)
	provider := &stubProvider{forecast: market.ForecastResult{
		Available: true,
		Points:    []market.ForecastPoint{{Date: day, PredictedValue: 0.2, Confidence: 0.9}},
	}}
	calc := NewFactorCalculator(provider, nil, DefaultFactorCalculatorConfig())

	occ := 0.95
	f := calc.Compute(context.Background(), PriceRequest{PropertyID: "p1", Date: day, OccupancyRate: &occ})
	if !almostEqual(f.Demand, 1.50) {
		t.Errorf("demand = %v, want 1.50 from explicit occupancy", f.Demand)
	}
}

func TestComputeForecastUnavailableFallsBackNeutral(t *testing.T) {
	provider := &stubProvider{forecast: market.ForecastResult{Available: false}}
	calc := NewFactorCalculator(provider, nil, DefaultFactorCalculatorConfig())

	f := calc.Compute(context.Background(), PriceRequest{PropertyID: "p1", Date: date(2026, time.March, 10)})
	if !almostEqual(f.Demand, 1.0) {
		t.Errorf("demand = %v, want neutral 1.0 when forecast unavailable", f.Demand)
	}
}

func TestComputeForecastDrivesDemand(t *testing.T) {
	day := date(2026, time.March, 10)
	provider := &stubProvider{forecast: market.ForecastResult{
		Available: true,
		Points:    []market.ForecastPoint{{Date: day, PredictedValue: 0.92, Confidence: 0.8}},
	}}
	calc := NewFactorCalculator(provider, nil, DefaultFactorCalculatorConfig())

	f := calc.Compute(context.Background(), PriceRequest{PropertyID: "p1", Date: day})
	if !almostEqual(f.Demand, 1.50) {
		t.Errorf("demand = %v, want 1.50 from forecast occupancy 0.92", f.Demand)
	}
}

func TestEventFactorPicksStrongestInWindow(t *testing.T) {
	day := date(2026, time.June, 20)
	provider := &stubProvider{events: []market.LocalEvent{
		{Name: "festival", Date: day.AddDate(0, 0, 1), Impact: market.ImpactMedium},
		{Name: "concert", Date: day, Impact: market.ImpactHigh},
		{Name: "far away", Date: day.AddDate(0, 0, 10), Impact: market.ImpactHigh},
	}}
	calc := NewFactorCalculator(provider, nil, DefaultFactorCalculatorConfig())

	f := calc.Compute(context.Background(), PriceRequest{PropertyID: "p1", Date: day})
	if !almostEqual(f.Event, 1.50) {
		t.Errorf("event = %v, want 1.50 from the strongest in-window event", f.Event)
	}
}

func TestEventFactorDisabled(t *testing.T) {
	provider := &stubProvider{events: []market.LocalEvent{
		{Name: "concert", Date: date(2026, time.June, 20), Impact: market.ImpactHigh},
	}}
	cfg := DefaultFactorCalculatorConfig()
	cfg.EventsEnabled = false
	calc := NewFactorCalculator(provider, nil, cfg)

	f := calc.Compute(context.Background(), PriceRequest{PropertyID: "p1", Date: date(2026, time.June, 20)})
	if !almostEqual(f.Event, 1.0) {
		t.Errorf("event = %v, want 1.0 when events disabled", f.Event)
	}
}

func TestEventFactorLookupFailureIsNeutral(t *testing.T) {
	provider := &stubProvider{eventErr: context.DeadlineExceeded}
	calc := NewFactorCalculator(provider, nil, DefaultFactorCalculatorConfig())

	f := calc.Compute(context.Background(), PriceRequest{PropertyID: "p1", Date: date(2026, time.June, 20)})
	if !almostEqual(f.Event, 1.0) {
		t.Errorf("event = %v, want 1.0 on lookup failure", f.Event)
	}
}
