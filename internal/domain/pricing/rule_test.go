package pricing

import (
	"errors"
	"testing"
	"time"
)

func validRule() Rule {
	return Rule{
		ID:             "rule-1",
		Name:           "Weekend uplift",
		Type:           RuleWeekend,
		Adjustment:     1.2,
		AdjustmentType: AdjustMultiplier,
		Active:         true,
	}
}

func TestRuleValidateAccepts(t *testing.T) {
	if err := validRule().Validate(); err != nil {
		t.Fatalf("valid rule rejected: %v", err)
	}
}

func TestRuleValidateRejections(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Rule)
		field  string
	}{
		{"missing name", func(r *Rule) { r.Name = "" }, "name"},
		{"unknown type", func(r *Rule) { r.Type = "MOON_PHASE" }, "type"},
		{"unknown adjustment type", func(r *Rule) { r.AdjustmentType = "EXPONENT" }, "adjustmentType"},
		{"zero multiplier", func(r *Rule) { r.Adjustment = 0 }, "adjustment"},
		{"negative multiplier", func(r *Rule) { r.Adjustment = -1 }, "adjustment"},
		{"percentage below -100", func(r *Rule) {
			r.AdjustmentType = AdjustPercentage
			r.Adjustment = -120
		}, "adjustment"},
		{"min above max", func(r *Rule) {
			r.MinPrice = floatPtr(200)
			r.MaxPrice = floatPtr(100)
		}, "minPrice"},
		{"validUntil before validFrom", func(r *Rule) {
			r.ValidFrom = date(2026, time.June, 1)
			until := date(2026, time.May, 1)
			r.ValidUntil = &until
		}, "validUntil"},
		{"occupancy min out of range", func(r *Rule) {
			r.Conditions.OccupancyThreshold = &FloatRange{Min: floatPtr(1.5)}
		}, "conditions.occupancyThreshold.min"},
		{"occupancy max out of range", func(r *Rule) {
			r.Conditions.OccupancyThreshold = &FloatRange{Max: floatPtr(-0.1)}
		}, "conditions.occupancyThreshold.max"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := validRule()
			tc.mutate(&r)
			err := r.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("error type = %T, want *ValidationError", err)
			}
			found := false
			for _, f := range verr.Fields {
				if f.Field == tc.field {
					found = true
					break
				}
			}
			if !found {
				t.Errorf("fields = %v, want entry for %q", verr.Fields, tc.field)
			}
		})
	}
}

func TestPercentageAdjustmentHasNoPositivityCheck(t *testing.T) {
	r := validRule()
	r.AdjustmentType = AdjustPercentage
	r.Adjustment = -15
	if err := r.Validate(); err != nil {
		t.Fatalf("negative percentage within bounds rejected: %v", err)
	}
}

func TestAppliesOnWindow(t *testing.T) {
	r := validRule()
	r.ValidFrom = date(2026, time.June, 1)
	until := date(2026, time.June, 30)
	r.ValidUntil = &until

	if r.AppliesOn(date(2026, time.May, 31)) {
		t.Error("rule applied before validFrom")
	}
	if !r.AppliesOn(date(2026, time.June, 1)) {
		t.Error("rule did not apply on validFrom day")
	}
	if !r.AppliesOn(date(2026, time.June, 30)) {
		t.Error("rule did not apply on validUntil day")
	}
	if r.AppliesOn(date(2026, time.July, 1)) {
		t.Error("rule applied after validUntil")
	}
}
