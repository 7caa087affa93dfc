package pricing

import "strings"

// BasePriceConfig is the per-property pricing anchor. Read-only to the
// computation core; one per property.
type BasePriceConfig struct {
	PropertyID string
	BasePrice  float64
	MinPrice   *float64
	MaxPrice   *float64
	Currency   string
}

func (c BasePriceConfig) Validate() error {
	verr := &ValidationError{}
	if c.PropertyID == "" {
		verr.add("propertyId", "is required")
	}
	if c.BasePrice <= 0 {
		verr.add("basePrice", "must be positive")
	}
	if len(c.Currency) != 3 {
		verr.add("currency", "must be a 3-letter code")
	}
	if c.MinPrice != nil && *c.MinPrice <= 0 {
		verr.add("minPrice", "must be positive")
	}
	if c.MinPrice != nil && c.MaxPrice != nil && *c.MinPrice > *c.MaxPrice {
		verr.add("minPrice", "must not exceed maxPrice")
	}
	return verr.orNil()
}

func (c BasePriceConfig) NormalizedCurrency() string {
	return strings.ToUpper(c.Currency)
}

// BoundsConfig holds the ambient clamp factors applied when a property
// config does not carry explicit bounds.
type BoundsConfig struct {
	MinPriceFactor float64
	MaxPriceFactor float64
}

func DefaultBoundsConfig() BoundsConfig {
	return BoundsConfig{MinPriceFactor: 0.5, MaxPriceFactor: 3.0}
}

// Bounds is the effective [min,max] clamp for one property.
type Bounds struct {
	Min float64
	Max float64
}

func (b Bounds) Clamp(price float64) float64 {
	if price < b.Min {
		return b.Min
	}
	if price > b.Max {
		return b.Max
	}
	return price
}

// EffectiveBounds resolves the clamp window: explicit property bounds win,
// otherwise the global factors scale the base price.
func (c BasePriceConfig) EffectiveBounds(global BoundsConfig) Bounds {
	b := Bounds{
		Min: c.BasePrice * global.MinPriceFactor,
		Max: c.BasePrice * global.MaxPriceFactor,
	}
	if c.MinPrice != nil {
		b.Min = *c.MinPrice
	}
	if c.MaxPrice != nil {
		b.Max = *c.MaxPrice
	}
	return b
}
