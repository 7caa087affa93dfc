package pricing

import (
	"context"
	"log/slog"
	"sort"
)

// CustomConditionFunc evaluates one custom condition entry against the
// request. Registered per condition name on the engine.
type CustomConditionFunc func(ctx context.Context, req PriceRequest, value any) bool

// Engine applies the prioritized rule set to a running price. It holds no
// per-request state; a single Engine serves concurrent computations.
type Engine struct {
	Logger     *slog.Logger
	evaluators map[string]CustomConditionFunc
}

func NewEngine(logger *slog.Logger) *Engine {
	return &Engine{
		Logger:     logger,
		evaluators: make(map[string]CustomConditionFunc),
	}
}

// RegisterCustomCondition plugs in an evaluator for a named custom
// condition. Conditions with no registered evaluator pass, matching the
// historical permissive behavior, but each pass is logged so the gap
// stays visible.
func (e *Engine) RegisterCustomCondition(name string, fn CustomConditionFunc) {
	if name == "" || fn == nil {
		return
	}
	e.evaluators[name] = fn
}

// Run folds the applicable rules over the factored price, highest
// priority first, and reports every matched rule in application order.
// Per-rule clamps apply immediately after each adjustment so later rules
// act on the clamped value.
func (e *Engine) Run(ctx context.Context, req PriceRequest, price float64, candidates []Rule) (float64, []AppliedRule) {
	rules := e.selectApplicable(req, candidates)
	applied := make([]AppliedRule, 0, len(rules))
	for _, rule := range rules {
		if !e.conditionsMatch(ctx, req, rule) {
			continue
		}
		price = e.applyAdjustment(price, rule)
		applied = append(applied, AppliedRule{
			RuleID:         rule.ID,
			RuleName:       rule.Name,
			RuleType:       rule.Type,
			Adjustment:     rule.Adjustment,
			AdjustmentType: rule.AdjustmentType,
		})
	}
	return price, applied
}

// selectApplicable filters to rules scoped to the property (or global),
// active and valid on the request day, sorted by priority descending with
// a deterministic tie-break on CreatedAt then ID.
func (e *Engine) selectApplicable(req PriceRequest, candidates []Rule) []Rule {
	day := req.Day()
	out := make([]Rule, 0, len(candidates))
	for _, r := range candidates {
		if r.PropertyID != "" && r.PropertyID != req.PropertyID {
			continue
		}
		if !r.AppliesOn(day) {
			continue
		}
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority > out[j].Priority
		}
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (e *Engine) conditionsMatch(ctx context.Context, req PriceRequest, rule Rule) bool {
	c := rule.Conditions
	day := req.Day()

	if c.DateRange != nil {
		w := *c.DateRange
		if day.Before(w.Start) || day.After(w.End) {
			return false
		}
	}
	if len(c.DaysOfWeek) > 0 {
		matched := false
		for _, d := range c.DaysOfWeek {
			if d == day.Weekday() {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	if c.OccupancyThreshold != nil && req.OccupancyRate != nil {
		if !c.OccupancyThreshold.Contains(*req.OccupancyRate) {
			return false
		}
	}
	if c.DaysUntilArrival != nil && req.DaysUntilArrival != nil {
		if !c.DaysUntilArrival.Contains(*req.DaysUntilArrival) {
			return false
		}
	}
	if c.LengthOfStay != nil && req.LengthOfStay != nil {
		if !c.LengthOfStay.Contains(*req.LengthOfStay) {
			return false
		}
	}
	for name, value := range c.Custom {
		fn, ok := e.evaluators[name]
		if !ok {
			e.warn("custom condition has no evaluator, treating as satisfied", "rule_id", rule.ID, "condition", name)
			continue
		}
		if !fn(ctx, req, value) {
			return false
		}
	}
	return true
}

// applyAdjustment mutates the running price. Rows with an unrecognized
// adjustment type (pre-validation legacy data) warn and leave the price
// untouched; write-time validation rejects new ones.
func (e *Engine) applyAdjustment(price float64, rule Rule) float64 {
	switch rule.AdjustmentType {
	case AdjustMultiplier:
		price *= rule.Adjustment
	case AdjustFixedAmount:
		price += rule.Adjustment
	case AdjustPercentage:
		price *= 1 + rule.Adjustment/100
	default:
		e.warn("unrecognized adjustment type, leaving price unchanged", "rule_id", rule.ID, "adjustment_type", string(rule.AdjustmentType))
		return price
	}
	if rule.MinPrice != nil && price < *rule.MinPrice {
		price = *rule.MinPrice
	}
	if rule.MaxPrice != nil && price > *rule.MaxPrice {
		price = *rule.MaxPrice
	}
	return price
}

func (e *Engine) warn(msg string, args ...any) {
	if e.Logger != nil {
		e.Logger.Warn(msg, args...)
	}
}
