package pricing

import (
	"context"
	"time"
)

// RuleRepository stores pricing rules. CandidatesFor returns every rule
// scoped to the property plus the globals; the engine does the per-day
// filtering so selection stays deterministic and testable.
type RuleRepository interface {
	ByID(ctx context.Context, id string) (*Rule, error)
	Save(ctx context.Context, rule *Rule) error
	Delete(ctx context.Context, id string) error
	CandidatesFor(ctx context.Context, propertyID string) ([]Rule, error)
	List(ctx context.Context, propertyID string, includeGlobal bool) ([]Rule, error)
}

// OverrideRepository stores manual price pins. ActiveFor returns the
// single override in force for (property, day) at the given instant, or
// ErrOverrideNotFound.
type OverrideRepository interface {
	ByID(ctx context.Context, id string) (*Override, error)
	Save(ctx context.Context, o *Override) error
	Delete(ctx context.Context, id string) error
	ActiveFor(ctx context.Context, propertyID string, day time.Time, at time.Time) (*Override, error)
}

// ConfigRepository reads per-property base price configuration.
type ConfigRepository interface {
	ByProperty(ctx context.Context, propertyID string) (*BasePriceConfig, error)
	Save(ctx context.Context, cfg *BasePriceConfig) error
}

// SnapshotRepository keeps the current PriceResult per (property, day),
// upserted on every computation. Last writer wins; the computation is
// deterministic for identical inputs so the race is benign.
type SnapshotRepository interface {
	Get(ctx context.Context, propertyID string, day time.Time) (*PriceResult, error)
	Upsert(ctx context.Context, result *PriceResult) error
}

// HistoryRepository appends immutable price-change records.
type HistoryRepository interface {
	Append(ctx context.Context, entry HistoryEntry) error
	ListForProperty(ctx context.Context, propertyID string, limit int) ([]HistoryEntry, error)
}
