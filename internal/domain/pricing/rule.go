package pricing

import (
	"time"

	"ratecraft/internal/domain/shared/daterange"
)

type RuleType string

const (
	RuleSeasonal        RuleType = "SEASONAL"
	RuleWeekend         RuleType = "WEEKEND"
	RuleLastMinute      RuleType = "LAST_MINUTE"
	RuleLengthOfStay    RuleType = "LENGTH_OF_STAY"
	RuleOrphanDay       RuleType = "ORPHAN_DAY"
	RuleEventBased      RuleType = "EVENT_BASED"
	RuleOccupancyBased  RuleType = "OCCUPANCY_BASED"
	RuleCompetitorBased RuleType = "COMPETITOR_BASED"
	RuleCustom          RuleType = "CUSTOM"
)

func (t RuleType) Known() bool {
	switch t {
	case RuleSeasonal, RuleWeekend, RuleLastMinute, RuleLengthOfStay,
		RuleOrphanDay, RuleEventBased, RuleOccupancyBased, RuleCompetitorBased, RuleCustom:
		return true
	}
	return false
}

type AdjustmentType string

const (
	AdjustMultiplier  AdjustmentType = "MULTIPLIER"
	AdjustFixedAmount AdjustmentType = "FIXED_AMOUNT"
	AdjustPercentage  AdjustmentType = "PERCENTAGE"
)

func (t AdjustmentType) Known() bool {
	switch t {
	case AdjustMultiplier, AdjustFixedAmount, AdjustPercentage:
		return true
	}
	return false
}

// FloatRange and IntRange are inclusive bounds; a nil side is open.
type FloatRange struct {
	Min *float64 `json:"min,omitempty"`
	Max *float64 `json:"max,omitempty"`
}

func (r FloatRange) Contains(v float64) bool {
	if r.Min != nil && v < *r.Min {
		return false
	}
	if r.Max != nil && v > *r.Max {
		return false
	}
	return true
}

type IntRange struct {
	Min *int `json:"min,omitempty"`
	Max *int `json:"max,omitempty"`
}

func (r IntRange) Contains(v int) bool {
	if r.Min != nil && v < *r.Min {
		return false
	}
	if r.Max != nil && v > *r.Max {
		return false
	}
	return true
}

// DateWindow is an inclusive [Start, End] condition on the request date.
type DateWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Conditions form a conjunction: every present sub-condition must hold,
// absent sub-conditions are vacuously true. The occupancy, lead-time and
// stay-length checks only bind when the request supplied the signal.
type Conditions struct {
	DateRange          *DateWindow            `json:"dateRange,omitempty"`
	DaysOfWeek         []time.Weekday         `json:"daysOfWeek,omitempty"`
	OccupancyThreshold *FloatRange            `json:"occupancyThreshold,omitempty"`
	DaysUntilArrival   *IntRange              `json:"daysUntilArrival,omitempty"`
	LengthOfStay       *IntRange              `json:"lengthOfStay,omitempty"`
	Custom             map[string]any         `json:"customConditions,omitempty"`
}

// Rule is one conditionally-applied price adjustment. PropertyID "" makes
// the rule global. Higher priority evaluates first; ties break on
// CreatedAt then ID so the application order is stable.
type Rule struct {
	ID             string
	PropertyID     string
	Name           string
	Type           RuleType
	Priority       int
	Conditions     Conditions
	Adjustment     float64
	AdjustmentType AdjustmentType
	MinPrice       *float64
	MaxPrice       *float64
	ValidFrom      time.Time
	ValidUntil     *time.Time
	Active         bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// AppliesOn reports whether the rule is a candidate for the given day:
// active and inside its validity window. Scope and condition matching are
// the engine's business.
func (r Rule) AppliesOn(day time.Time) bool {
	if !r.Active {
		return false
	}
	d := daterange.Day(day)
	if !r.ValidFrom.IsZero() && d.Before(daterange.Day(r.ValidFrom)) {
		return false
	}
	if r.ValidUntil != nil && d.After(daterange.Day(*r.ValidUntil)) {
		return false
	}
	return true
}

// Validate enforces write-time constraints. Unknown rule or adjustment
// types are rejected here rather than silently no-opping at evaluation.
func (r Rule) Validate() error {
	verr := &ValidationError{}
	if r.Name == "" {
		verr.add("name", "is required")
	}
	if !r.Type.Known() {
		verr.add("type", "unknown rule type")
	}
	if !r.AdjustmentType.Known() {
		verr.add("adjustmentType", "unknown adjustment type")
	}
	switch r.AdjustmentType {
	case AdjustMultiplier:
		if r.Adjustment <= 0 {
			verr.add("adjustment", "multiplier must be positive")
		}
	case AdjustPercentage:
		if r.Adjustment < -100 {
			verr.add("adjustment", "percentage must be at least -100")
		}
	}
	if r.MinPrice != nil && r.MaxPrice != nil && *r.MinPrice > *r.MaxPrice {
		verr.add("minPrice", "must not exceed maxPrice")
	}
	if r.ValidUntil != nil && !r.ValidFrom.IsZero() && r.ValidUntil.Before(r.ValidFrom) {
		verr.add("validUntil", "must not precede validFrom")
	}
	if r.Conditions.OccupancyThreshold != nil {
		t := r.Conditions.OccupancyThreshold
		if t.Min != nil && (*t.Min < 0 || *t.Min > 1) {
			verr.add("conditions.occupancyThreshold.min", "must be within [0,1]")
		}
		if t.Max != nil && (*t.Max < 0 || *t.Max > 1) {
			verr.add("conditions.occupancyThreshold.max", "must be within [0,1]")
		}
	}
	return verr.orNil()
}
