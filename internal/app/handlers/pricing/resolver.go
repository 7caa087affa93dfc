package pricing

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"ratecraft/internal/app/outbox"
	"ratecraft/internal/app/uow"
	domainpricing "ratecraft/internal/domain/pricing"
	"ratecraft/internal/domain/shared/events"
)

// Resolver owns the per-day pricing pipeline: override short-circuit,
// factor multiplication, rule fold, clamp, persistence, audit. The
// command handlers in this package are thin wrappers around it.
type Resolver struct {
	Factors *domainpricing.FactorCalculator
	Engine  *domainpricing.Engine
	Bounds  domainpricing.BoundsConfig
	Outbox  outbox.Outbox
	Encoder outbox.EventEncoder
	Logger  *slog.Logger
	Clock   func() time.Time
}

func (r *Resolver) now() time.Time {
	if r.Clock != nil {
		return r.Clock().UTC()
	}
	return time.Now().UTC()
}

// ResolveDay computes, persists and returns the price for one
// property-day. Persistence failures are logged and swallowed: the
// computed answer is always returned to the caller.
func (r *Resolver) ResolveDay(ctx context.Context, unit uow.UnitOfWork, req domainpricing.PriceRequest) (*domainpricing.PriceResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	cfg, err := unit.Configs().ByProperty(ctx, req.PropertyID)
	if err != nil {
		return nil, err
	}

	now := r.now()
	day := req.Day()
	result := &domainpricing.PriceResult{
		PropertyID:   req.PropertyID,
		Date:         day,
		BasePrice:    cfg.BasePrice,
		Currency:     cfg.NormalizedCurrency(),
		AppliedRules: []domainpricing.AppliedRule{},
		ComputedAt:   now,
	}

	override, err := unit.Overrides().ActiveFor(ctx, req.PropertyID, day, now)
	if err != nil && !errors.Is(err, domainpricing.ErrOverrideNotFound) {
		return nil, err
	}

	if override != nil {
		// A pinned price replaces the whole computation, bounds included.
		result.Factors = domainpricing.NeutralFactors()
		result.CalculatedPrice = override.Price
		result.FinalPrice = override.Price
		result.Overridden = true
	} else {
		factors := r.Factors.Compute(ctx, req)
		price := cfg.BasePrice * factors.Combined()

		candidates, err := unit.Rules().CandidatesFor(ctx, req.PropertyID)
		if err != nil {
			return nil, err
		}
		price, applied := r.Engine.Run(ctx, req, price, candidates)

		result.Factors = factors
		result.CalculatedPrice = price
		result.AppliedRules = applied
		result.FinalPrice = cfg.EffectiveBounds(r.Bounds).Clamp(price)
	}

	r.persist(ctx, unit, result)
	return result, nil
}

// persist upserts the snapshot and, when the final price moved against
// the previously stored value, appends a history record and queues a
// price-changed event. Best-effort durability: the price answer survives
// a storage failure.
func (r *Resolver) persist(ctx context.Context, unit uow.UnitOfWork, result *domainpricing.PriceResult) {
	prev, err := unit.Snapshots().Get(ctx, result.PropertyID, result.Date)
	if err != nil && !errors.Is(err, domainpricing.ErrSnapshotNotFound) {
		r.logError("snapshot read failed", result, err)
		prev = nil
	}

	if err := unit.Snapshots().Upsert(ctx, result); err != nil {
		r.logError("snapshot upsert failed", result, err)
		return
	}

	if prev == nil || prev.FinalPrice == result.FinalPrice {
		return
	}

	pct := domainpricing.ChangePercent(prev.FinalPrice, result.FinalPrice)
	entry := domainpricing.HistoryEntry{
		ID:            uuid.NewString(),
		PropertyID:    result.PropertyID,
		Date:          result.Date,
		PreviousPrice: prev.FinalPrice,
		NewPrice:      result.FinalPrice,
		ChangePercent: pct,
		Reason:        changeReason(result),
		RecordedAt:    result.ComputedAt,
	}
	if err := unit.History().Append(ctx, entry); err != nil {
		r.logError("history append failed", result, err)
	}

	ev := domainpricing.PriceChanged{
		PropertyID:    result.PropertyID,
		Date:          result.Date,
		PreviousPrice: prev.FinalPrice,
		NewPrice:      result.FinalPrice,
		ChangePct:     pct,
		Currency:      result.Currency,
		At:            result.ComputedAt,
	}
	if err := outbox.RecordDomainEvents(ctx, r.Outbox, r.Encoder, []events.DomainEvent{ev}); err != nil {
		r.logError("price-changed event enqueue failed", result, err)
	}
}

func changeReason(result *domainpricing.PriceResult) string {
	if result.Overridden {
		return "override"
	}
	return "recomputation"
}

func (r *Resolver) logError(msg string, result *domainpricing.PriceResult, err error) {
	if r.Logger != nil {
		r.Logger.Error(msg, "property_id", result.PropertyID, "date", result.Date, "error", err)
	}
}
