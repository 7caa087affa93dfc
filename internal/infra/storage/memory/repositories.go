package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	domainpricing "ratecraft/internal/domain/pricing"
	"ratecraft/internal/domain/shared/daterange"
)

// RuleRepository is an in-memory rule store. Values are copied on the way
// in and out so callers cannot mutate stored state.
type RuleRepository struct {
	mu    sync.RWMutex
	items map[string]domainpricing.Rule
}

func NewRuleRepository() *RuleRepository {
	return &RuleRepository{items: make(map[string]domainpricing.Rule)}
}

func (r *RuleRepository) ByID(_ context.Context, id string) (*domainpricing.Rule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rule, ok := r.items[id]
	if !ok {
		return nil, domainpricing.ErrRuleNotFound
	}
	return &rule, nil
}

func (r *RuleRepository) Save(_ context.Context, rule *domainpricing.Rule) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[rule.ID] = *rule
	return nil
}

func (r *RuleRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return domainpricing.ErrRuleNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *RuleRepository) CandidatesFor(_ context.Context, propertyID string) ([]domainpricing.Rule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domainpricing.Rule
	for _, rule := range r.items {
		if rule.PropertyID == propertyID || rule.PropertyID == "" {
			out = append(out, rule)
		}
	}
	sortRulesByID(out)
	return out, nil
}

func (r *RuleRepository) List(_ context.Context, propertyID string, includeGlobal bool) ([]domainpricing.Rule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domainpricing.Rule
	for _, rule := range r.items {
		if rule.PropertyID == propertyID || (includeGlobal && rule.PropertyID == "") {
			out = append(out, rule)
		}
	}
	sortRulesByID(out)
	return out, nil
}

func sortRulesByID(rules []domainpricing.Rule) {
	sort.Slice(rules, func(i, j int) bool { return rules[i].ID < rules[j].ID })
}

// OverrideRepository is an in-memory override store.
type OverrideRepository struct {
	mu    sync.RWMutex
	items map[string]domainpricing.Override
}

func NewOverrideRepository() *OverrideRepository {
	return &OverrideRepository{items: make(map[string]domainpricing.Override)}
}

func (r *OverrideRepository) ByID(_ context.Context, id string) (*domainpricing.Override, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	o, ok := r.items[id]
	if !ok {
		return nil, domainpricing.ErrOverrideNotFound
	}
	return &o, nil
}

func (r *OverrideRepository) Save(_ context.Context, o *domainpricing.Override) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[o.ID] = *o
	return nil
}

func (r *OverrideRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return domainpricing.ErrOverrideNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *OverrideRepository) ActiveFor(_ context.Context, propertyID string, day time.Time, at time.Time) (*domainpricing.Override, error) {
	d := daterange.Day(day)
	r.mu.RLock()
	defer r.mu.RUnlock()

	var best *domainpricing.Override
	for _, o := range r.items {
		o := o
		if o.PropertyID != propertyID || !o.Day().Equal(d) || !o.ActiveAt(at) {
			continue
		}
		if best == nil || o.ValidFrom.After(best.ValidFrom) {
			best = &o
		}
	}
	if best == nil {
		return nil, domainpricing.ErrOverrideNotFound
	}
	return best, nil
}

// ConfigRepository is an in-memory base price config store.
type ConfigRepository struct {
	mu    sync.RWMutex
	items map[string]domainpricing.BasePriceConfig
}

func NewConfigRepository() *ConfigRepository {
	return &ConfigRepository{items: make(map[string]domainpricing.BasePriceConfig)}
}

func (r *ConfigRepository) ByProperty(_ context.Context, propertyID string) (*domainpricing.BasePriceConfig, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cfg, ok := r.items[propertyID]
	if !ok {
		return nil, domainpricing.ErrConfigNotFound
	}
	return &cfg, nil
}

func (r *ConfigRepository) Save(_ context.Context, cfg *domainpricing.BasePriceConfig) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[cfg.PropertyID] = *cfg
	return nil
}

// SnapshotRepository keeps the latest computed price per property-day.
type SnapshotRepository struct {
	mu    sync.RWMutex
	items map[string]domainpricing.PriceResult
}

func NewSnapshotRepository() *SnapshotRepository {
	return &SnapshotRepository{items: make(map[string]domainpricing.PriceResult)}
}

func snapshotKey(propertyID string, day time.Time) string {
	return propertyID + "|" + daterange.Day(day).Format("2006-01-02")
}

func (r *SnapshotRepository) Get(_ context.Context, propertyID string, day time.Time) (*domainpricing.PriceResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res, ok := r.items[snapshotKey(propertyID, day)]
	if !ok {
		return nil, domainpricing.ErrSnapshotNotFound
	}
	res.AppliedRules = append([]domainpricing.AppliedRule(nil), res.AppliedRules...)
	return &res, nil
}

func (r *SnapshotRepository) Upsert(_ context.Context, result *domainpricing.PriceResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *result
	stored.AppliedRules = append([]domainpricing.AppliedRule(nil), result.AppliedRules...)
	r.items[snapshotKey(result.PropertyID, result.Date)] = stored
	return nil
}

// HistoryRepository is append-only.
type HistoryRepository struct {
	mu      sync.RWMutex
	entries []domainpricing.HistoryEntry
}

func NewHistoryRepository() *HistoryRepository {
	return &HistoryRepository{}
}

func (r *HistoryRepository) Append(_ context.Context, entry domainpricing.HistoryEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
	return nil
}

func (r *HistoryRepository) ListForProperty(_ context.Context, propertyID string, limit int) ([]domainpricing.HistoryEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []domainpricing.HistoryEntry
	for _, e := range r.entries {
		if e.PropertyID == propertyID {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].RecordedAt.After(out[j].RecordedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

var (
	_ domainpricing.RuleRepository     = (*RuleRepository)(nil)
	_ domainpricing.OverrideRepository = (*OverrideRepository)(nil)
	_ domainpricing.ConfigRepository   = (*ConfigRepository)(nil)
	_ domainpricing.SnapshotRepository = (*SnapshotRepository)(nil)
	_ domainpricing.HistoryRepository  = (*HistoryRepository)(nil)
)
