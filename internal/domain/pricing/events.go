package pricing

import "time"

// PriceChanged is recorded whenever a recomputation lands on a different
// final price for a property-day.
type PriceChanged struct {
	PropertyID    string    `json:"property_id"`
	Date          time.Time `json:"date"`
	PreviousPrice float64   `json:"previous_price"`
	NewPrice      float64   `json:"new_price"`
	ChangePct     float64   `json:"change_percent"`
	Currency      string    `json:"currency"`
	At            time.Time `json:"at"`
}

func (e PriceChanged) EventName() string     { return "pricing.price_changed" }
func (e PriceChanged) AggregateID() string   { return e.PropertyID }
func (e PriceChanged) OccurredAt() time.Time { return e.At }
