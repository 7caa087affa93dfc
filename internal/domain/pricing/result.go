package pricing

import (
	"math"
	"time"
)

// AppliedRule is one audit entry: a rule whose conditions matched,
// recorded in application order whether or not it moved the price.
type AppliedRule struct {
	RuleID         string         `json:"ruleId"`
	RuleName       string         `json:"ruleName"`
	RuleType       RuleType       `json:"ruleType"`
	Adjustment     float64        `json:"adjustment"`
	AdjustmentType AdjustmentType `json:"adjustmentType"`
}

// PriceResult is the full outcome for one property-day: the pre-clamp
// calculated price, the bounded final price, and the audit trail of
// factors and rules that produced it.
type PriceResult struct {
	PropertyID      string
	Date            time.Time
	BasePrice       float64
	CalculatedPrice float64
	FinalPrice      float64
	Factors         Factors
	AppliedRules    []AppliedRule
	Currency        string
	Overridden      bool
	ComputedAt      time.Time
}

// HistoryEntry is one immutable price-change record, appended whenever a
// recomputation lands on a different final price than the stored one.
type HistoryEntry struct {
	ID            string
	PropertyID    string
	Date          time.Time
	PreviousPrice float64
	NewPrice      float64
	ChangePercent float64
	Reason        string
	RecordedAt    time.Time
}

// ChangePercent returns the signed percentage delta from prev to next,
// rounded to two decimals. A zero previous price yields zero rather than
// a division blow-up.
func ChangePercent(prev, next float64) float64 {
	if prev == 0 {
		return 0
	}
	pct := (next - prev) / prev * 100
	return math.Round(pct*100) / 100
}
