package pricing

import (
	"time"

	"ratecraft/internal/domain/shared/daterange"
)

// PriceRequest carries everything the resolver needs to price one
// property-day. Optional signals are pointers so "absent" and "zero" stay
// distinguishable; absent signals make the corresponding factor neutral
// and the corresponding rule conditions vacuously true.
type PriceRequest struct {
	PropertyID       string
	Date             time.Time
	CheckIn          time.Time
	CheckOut         time.Time
	LengthOfStay     *int
	DaysUntilArrival *int
	OccupancyRate    *float64
}

func (r PriceRequest) Validate() error {
	verr := &ValidationError{}
	if r.PropertyID == "" {
		verr.add("propertyId", "is required")
	}
	if r.Date.IsZero() {
		verr.add("date", "is required")
	}
	if r.LengthOfStay != nil && *r.LengthOfStay < 1 {
		verr.add("lengthOfStay", "must be at least 1")
	}
	if r.DaysUntilArrival != nil && *r.DaysUntilArrival < 0 {
		verr.add("daysUntilArrival", "must not be negative")
	}
	if r.OccupancyRate != nil && (*r.OccupancyRate < 0 || *r.OccupancyRate > 1) {
		verr.add("occupancyRate", "must be within [0,1]")
	}
	if !r.CheckIn.IsZero() && !r.CheckOut.IsZero() && !r.CheckOut.After(r.CheckIn) {
		verr.add("checkOut", "must be after checkIn")
	}
	return verr.orNil()
}

// Day returns the request date truncated to midnight UTC; all lookups key
// on this value.
func (r PriceRequest) Day() time.Time {
	return daterange.Day(r.Date)
}
