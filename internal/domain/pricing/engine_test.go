package pricing

import (
	"context"
	"testing"
	"time"
)

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int           { return &v }

func activeRule(id string, priority int, created time.Time) Rule {
	return Rule{
		ID:             id,
		Name:           id,
		Type:           RuleCustom,
		Priority:       priority,
		Adjustment:     1.0,
		AdjustmentType: AdjustMultiplier,
		Active:         true,
		CreatedAt:      created,
	}
}

func TestRunPriorityOrderAndAdjustments(t *testing.T) {
	day := date(2026, time.March, 14)
	created := date(2026, time.January, 1)

	lastMinute := activeRule("rule-lm", 20, created)
	lastMinute.Name = "Last minute discount"
	lastMinute.Type = RuleLastMinute
	lastMinute.AdjustmentType = AdjustPercentage
	lastMinute.Adjustment = -15

	weekend := activeRule("rule-we", 10, created)
	weekend.Name = "Weekend uplift"
	weekend.Type = RuleWeekend
	weekend.AdjustmentType = AdjustMultiplier
	weekend.Adjustment = 1.2

	engine := NewEngine(nil)
	price, applied := engine.Run(context.Background(), PriceRequest{PropertyID: "p1", Date: day}, 100, []Rule{weekend, lastMinute})

	if !almostEqual(price, 102) {
		t.Errorf("price = %v, want 102", price)
	}
	if len(applied) != 2 {
		t.Fatalf("applied = %d rules, want 2", len(applied))
	}
	if applied[0].RuleID != "rule-lm" || applied[1].RuleID != "rule-we" {
		t.Errorf("application order = [%s, %s], want [rule-lm, rule-we]", applied[0].RuleID, applied[1].RuleID)
	}
}

func TestRunTieBreakIsDeterministic(t *testing.T) {
	day := date(2026, time.March, 14)

	older := activeRule("rule-b", 10, date(2026, time.January, 1))
	newer := activeRule("rule-a", 10, date(2026, time.February, 1))
	sameTimeHighID := activeRule("rule-z", 10, date(2026, time.February, 1))

	engine := NewEngine(nil)
	_, applied := engine.Run(context.Background(), PriceRequest{PropertyID: "p1", Date: day}, 100,
		[]Rule{sameTimeHighID, newer, older})

	want := []string{"rule-b", "rule-a", "rule-z"}
	if len(applied) != len(want) {
		t.Fatalf("applied = %d rules, want %d", len(applied), len(want))
	}
	for i, id := range want {
		if applied[i].RuleID != id {
			t.Errorf("applied[%d] = %s, want %s", i, applied[i].RuleID, id)
		}
	}
}

func TestRunFixedAmountAndPerRuleClamp(t *testing.T) {
	day := date(2026, time.March, 14)
	created := date(2026, time.January, 1)

	surcharge := activeRule("rule-fee", 20, created)
	surcharge.AdjustmentType = AdjustFixedAmount
	surcharge.Adjustment = 80
	surcharge.MaxPrice = floatPtr(150)

	uplift := activeRule("rule-up", 10, created)
	uplift.AdjustmentType = AdjustMultiplier
	uplift.Adjustment = 1.1

	engine := NewEngine(nil)
	price, _ := engine.Run(context.Background(), PriceRequest{PropertyID: "p1", Date: day}, 100, []Rule{uplift, surcharge})

	// 100+80 clamps to 150 before the multiplier sees it.
	if !almostEqual(price, 165) {
		t.Errorf("price = %v, want 165", price)
	}
}

func TestRunMinClamp(t *testing.T) {
	day := date(2026, time.March, 14)

	discount := activeRule("rule-disc", 10, date(2026, time.January, 1))
	discount.AdjustmentType = AdjustPercentage
	discount.Adjustment = -90
	discount.MinPrice = floatPtr(40)

	engine := NewEngine(nil)
	price, _ := engine.Run(context.Background(), PriceRequest{PropertyID: "p1", Date: day}, 100, []Rule{discount})

	if !almostEqual(price, 40) {
		t.Errorf("price = %v, want clamped 40", price)
	}
}

func TestRunUnknownAdjustmentTypeIsNoOp(t *testing.T) {
	day := date(2026, time.March, 14)

	legacy := activeRule("rule-old", 10, date(2026, time.January, 1))
	legacy.AdjustmentType = AdjustmentType("EXPONENT")
	legacy.Adjustment = 3

	engine := NewEngine(nil)
	price, applied := engine.Run(context.Background(), PriceRequest{PropertyID: "p1", Date: day}, 100, []Rule{legacy})

	if !almostEqual(price, 100) {
		t.Errorf("price = %v, want unchanged 100", price)
	}
	if len(applied) != 1 {
		t.Errorf("applied = %d rules, want the no-op rule still reported", len(applied))
	}
}

func TestRunScopeFiltering(t *testing.T) {
	day := date(2026, time.March, 14)
	created := date(2026, time.January, 1)

	global := activeRule("rule-global", 10, created)
	global.Adjustment = 1.1

	mine := activeRule("rule-mine", 10, created)
	mine.PropertyID = "p1"
	mine.Adjustment = 1.2

	other := activeRule("rule-other", 30, created)
	other.PropertyID = "p2"
	other.Adjustment = 5

	engine := NewEngine(nil)
	price, applied := engine.Run(context.Background(), PriceRequest{PropertyID: "p1", Date: day}, 100,
		[]Rule{global, mine, other})

	if !almostEqual(price, 100*1.1*1.2) {
		t.Errorf("price = %v, want %v", price, 100*1.1*1.2)
	}
	for _, a := range applied {
		if a.RuleID == "rule-other" {
			t.Error("rule scoped to another property must not apply")
		}
	}
}

func TestRunValidityAndActiveFiltering(t *testing.T) {
	day := date(2026, time.March, 14)
	created := date(2026, time.January, 1)

	inactive := activeRule("rule-off", 10, created)
	inactive.Active = false

	expired := activeRule("rule-expired", 10, created)
	until := date(2026, time.February, 1)
	expired.ValidUntil = &until

	future := activeRule("rule-future", 10, created)
	future.ValidFrom = date(2026, time.June, 1)

	engine := NewEngine(nil)
	price, applied := engine.Run(context.Background(), PriceRequest{PropertyID: "p1", Date: day}, 100,
		[]Rule{inactive, expired, future})

	if !almostEqual(price, 100) || len(applied) != 0 {
		t.Errorf("price = %v applied = %d, want untouched 100 with no rules", price, len(applied))
	}
}

func TestConditionsBindOnlyWhenSignalPresent(t *testing.T) {
	day := date(2026, time.March, 14)

	occupancy := activeRule("rule-occ", 10, date(2026, time.January, 1))
	occupancy.Adjustment = 1.3
	occupancy.Conditions = Conditions{OccupancyThreshold: &FloatRange{Min: floatPtr(0.8)}}

	engine := NewEngine(nil)

	// No occupancy signal on the request: the condition is vacuous.
	price, _ := engine.Run(context.Background(), PriceRequest{PropertyID: "p1", Date: day}, 100, []Rule{occupancy})
	if !almostEqual(price, 130) {
		t.Errorf("price without signal = %v, want 130", price)
	}

	low := 0.4
	price, _ = engine.Run(context.Background(), PriceRequest{PropertyID: "p1", Date: day, OccupancyRate: &low}, 100, []Rule{occupancy})
	if !almostEqual(price, 100) {
		t.Errorf("price with low occupancy = %v, want 100", price)
	}

	high := 0.9
	price, _ = engine.Run(context.Background(), PriceRequest{PropertyID: "p1", Date: day, OccupancyRate: &high}, 100, []Rule{occupancy})
	if !almostEqual(price, 130) {
		t.Errorf("price with high occupancy = %v, want 130", price)
	}
}

func TestDateAndWeekdayConditions(t *testing.T) {
	created := date(2026, time.January, 1)

	saturdayOnly := activeRule("rule-sat", 10, created)
	saturdayOnly.Adjustment = 1.5
	saturdayOnly.Conditions = Conditions{DaysOfWeek: []time.Weekday{time.Saturday}}

	window := activeRule("rule-window", 10, created)
	window.Adjustment = 2
	window.Conditions = Conditions{DateRange: &DateWindow{
		Start: date(2026, time.July, 1),
		End:   date(2026, time.July, 31),
	}}

	engine := NewEngine(nil)

	// 2026-03-14 is a Saturday outside the July window.
	price, _ := engine.Run(context.Background(), PriceRequest{PropertyID: "p1", Date: date(2026, time.March, 14)}, 100,
		[]Rule{saturdayOnly, window})
	if !almostEqual(price, 150) {
		t.Errorf("march saturday price = %v, want 150", price)
	}

	// 2026-07-06 is a Monday inside the window.
	price, _ = engine.Run(context.Background(), PriceRequest{PropertyID: "p1", Date: date(2026, time.July, 6)}, 100,
		[]Rule{saturdayOnly, window})
	if !almostEqual(price, 200) {
		t.Errorf("july monday price = %v, want 200", price)
	}
}

func TestCustomConditions(t *testing.T) {
	day := date(2026, time.March, 14)

	gated := activeRule("rule-vip", 10, date(2026, time.January, 1))
	gated.Adjustment = 1.4
	gated.Conditions = Conditions{Custom: map[string]any{"vipSegment": "gold"}}

	engine := NewEngine(nil)

	// Unregistered evaluator: the condition passes.
	price, _ := engine.Run(context.Background(), PriceRequest{PropertyID: "p1", Date: day}, 100, []Rule{gated})
	if !almostEqual(price, 140) {
		t.Errorf("price with unregistered evaluator = %v, want 140", price)
	}

	engine.RegisterCustomCondition("vipSegment", func(ctx context.Context, req PriceRequest, value any) bool {
		return false
	})
	price, _ = engine.Run(context.Background(), PriceRequest{PropertyID: "p1", Date: day}, 100, []Rule{gated})
	if !almostEqual(price, 100) {
		t.Errorf("price with failing evaluator = %v, want 100", price)
	}

	engine.RegisterCustomCondition("vipSegment", func(ctx context.Context, req PriceRequest, value any) bool {
		return value == "gold"
	})
	price, _ = engine.Run(context.Background(), PriceRequest{PropertyID: "p1", Date: day}, 100, []Rule{gated})
	if !almostEqual(price, 140) {
		t.Errorf("price with passing evaluator = %v, want 140", price)
	}
}
