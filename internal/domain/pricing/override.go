package pricing

import (
	"time"

	"ratecraft/internal/domain/shared/daterange"
)

// Override is a manually pinned price for one property-day. While active
// it fully replaces the computation: no factors, no rules, the override
// price is both the calculated and the final price.
type Override struct {
	ID         string
	PropertyID string
	Date       time.Time
	Price      float64
	Reason     string
	CreatedBy  string
	ValidFrom  time.Time
	ValidUntil *time.Time
}

// ActiveAt reports whether the override is in force at evaluation time.
func (o Override) ActiveAt(now time.Time) bool {
	if !o.ValidFrom.IsZero() && now.Before(o.ValidFrom) {
		return false
	}
	if o.ValidUntil != nil && now.After(*o.ValidUntil) {
		return false
	}
	return true
}

func (o Override) Validate() error {
	verr := &ValidationError{}
	if o.PropertyID == "" {
		verr.add("propertyId", "is required")
	}
	if o.Date.IsZero() {
		verr.add("date", "is required")
	}
	if o.Price <= 0 {
		verr.add("overridePrice", "must be positive")
	}
	if o.Reason == "" {
		verr.add("reason", "is required")
	}
	if o.CreatedBy == "" {
		verr.add("createdBy", "is required")
	}
	if o.ValidUntil != nil && !o.ValidFrom.IsZero() && o.ValidUntil.Before(o.ValidFrom) {
		verr.add("validUntil", "must not precede validFrom")
	}
	return verr.orNil()
}

// Day returns the overridden calendar day at midnight UTC.
func (o Override) Day() time.Time {
	return daterange.Day(o.Date)
}
