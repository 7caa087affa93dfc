package dto

import (
	"time"

	domainpricing "ratecraft/internal/domain/pricing"
)

type AppliedRule struct {
	RuleID         string  `json:"ruleId"`
	RuleName       string  `json:"ruleName"`
	RuleType       string  `json:"ruleType"`
	Adjustment     float64 `json:"adjustment"`
	AdjustmentType string  `json:"adjustmentType"`
}

type PriceResult struct {
	PropertyID      string                `json:"propertyId"`
	Date            string                `json:"date"`
	BasePrice       float64               `json:"basePrice"`
	CalculatedPrice float64               `json:"calculatedPrice"`
	FinalPrice      float64               `json:"finalPrice"`
	Factors         domainpricing.Factors `json:"factors"`
	AppliedRules    []AppliedRule         `json:"appliedRules"`
	Currency        string                `json:"currency"`
	Overridden      bool                  `json:"overridden"`
}

// NewPriceResult maps the domain result onto the wire shape.
func NewPriceResult(r *domainpricing.PriceResult) PriceResult {
	rules := make([]AppliedRule, 0, len(r.AppliedRules))
	for _, ar := range r.AppliedRules {
		rules = append(rules, AppliedRule{
			RuleID:         ar.RuleID,
			RuleName:       ar.RuleName,
			RuleType:       string(ar.RuleType),
			Adjustment:     ar.Adjustment,
			AdjustmentType: string(ar.AdjustmentType),
		})
	}
	return PriceResult{
		PropertyID:      r.PropertyID,
		Date:            r.Date.Format("2006-01-02"),
		BasePrice:       r.BasePrice,
		CalculatedPrice: r.CalculatedPrice,
		FinalPrice:      r.FinalPrice,
		Factors:         r.Factors,
		AppliedRules:    rules,
		Currency:        r.Currency,
		Overridden:      r.Overridden,
	}
}

// CalendarEntry is one day of a bulk computation; exactly one of Result
// or Error is set.
type Calendar struct {
	PropertyID string          `json:"propertyId"`
	StartDate  string          `json:"startDate"`
	EndDate    string          `json:"endDate"`
	Entries    []CalendarEntry `json:"entries"`
}

type CalendarEntry struct {
	Date   string       `json:"date"`
	Result *PriceResult `json:"result,omitempty"`
	Error  string       `json:"error,omitempty"`
}

// RecomputeReport summarizes a bulk recompute run.
type RecomputeReport struct {
	PropertyID string   `json:"propertyId"`
	Updated    int      `json:"updated"`
	Failed     int      `json:"failed"`
	Errors     []string `json:"errors,omitempty"`
}

type FeedExport struct {
	PropertyID string `json:"propertyId"`
	ObjectKey  string `json:"objectKey"`
	URL        string `json:"url"`
	Days       int    `json:"days"`
}

type Rule struct {
	ID             string                   `json:"id"`
	PropertyID     string                   `json:"propertyId,omitempty"`
	Name           string                   `json:"name"`
	Type           string                   `json:"type"`
	Priority       int                      `json:"priority"`
	Conditions     domainpricing.Conditions `json:"conditions"`
	Adjustment     float64                  `json:"adjustment"`
	AdjustmentType string                   `json:"adjustmentType"`
	MinPrice       *float64                 `json:"minPrice,omitempty"`
	MaxPrice       *float64                 `json:"maxPrice,omitempty"`
	ValidFrom      time.Time                `json:"validFrom"`
	ValidUntil     *time.Time               `json:"validUntil,omitempty"`
	Active         bool                     `json:"active"`
	CreatedAt      time.Time                `json:"createdAt"`
	UpdatedAt      time.Time                `json:"updatedAt"`
}

func NewRule(r *domainpricing.Rule) Rule {
	return Rule{
		ID:             r.ID,
		PropertyID:     r.PropertyID,
		Name:           r.Name,
		Type:           string(r.Type),
		Priority:       r.Priority,
		Conditions:     r.Conditions,
		Adjustment:     r.Adjustment,
		AdjustmentType: string(r.AdjustmentType),
		MinPrice:       r.MinPrice,
		MaxPrice:       r.MaxPrice,
		ValidFrom:      r.ValidFrom,
		ValidUntil:     r.ValidUntil,
		Active:         r.Active,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

type RuleList struct {
	Rules []Rule `json:"rules"`
	Total int    `json:"total"`
}

type Override struct {
	ID         string     `json:"id"`
	PropertyID string     `json:"propertyId"`
	Date       string     `json:"date"`
	Price      float64    `json:"overridePrice"`
	Reason     string     `json:"reason"`
	CreatedBy  string     `json:"createdBy"`
	ValidFrom  time.Time  `json:"validFrom"`
	ValidUntil *time.Time `json:"validUntil,omitempty"`
	// Result of the recomputation triggered by the override write.
	Result *PriceResult `json:"result,omitempty"`
}
