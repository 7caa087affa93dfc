package pricing

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	domainpricing "ratecraft/internal/domain/pricing"
)

func TestGetPriceReturnsStoredSnapshot(t *testing.T) {
	f := newFixture(t)
	f.storeConfig(t, domainpricing.BasePriceConfig{PropertyID: "p1", BasePrice: 100, Currency: "EUR"})

	day := time.Date(2026, time.July, 4, 0, 0, 0, 0, time.UTC)
	computed, err := f.resolver.ResolveDay(context.Background(), f.unit(t), domainpricing.PriceRequest{PropertyID: "p1", Date: day})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	h := &GetPriceHandler{UoWFactory: f.factory}
	got, err := h.Handle(context.Background(), GetPriceQuery{PropertyID: "p1", Date: day})
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if got.FinalPrice != computed.FinalPrice {
		t.Errorf("finalPrice = %v, want stored %v", got.FinalPrice, computed.FinalPrice)
	}
	if got.Date != "2026-07-04" {
		t.Errorf("date = %q, want 2026-07-04", got.Date)
	}
}

func TestGetPriceMissingSnapshot(t *testing.T) {
	f := newFixture(t)
	h := &GetPriceHandler{UoWFactory: f.factory}
	_, err := h.Handle(context.Background(), GetPriceQuery{
		PropertyID: "p1",
		Date:       time.Date(2026, time.July, 4, 0, 0, 0, 0, time.UTC),
	})
	if !errors.Is(err, domainpricing.ErrSnapshotNotFound) {
		t.Fatalf("err = %v, want snapshot not found", err)
	}
}

func TestGetPriceValidatesInput(t *testing.T) {
	h := &GetPriceHandler{}
	_, err := h.Handle(context.Background(), GetPriceQuery{})
	if !errors.Is(err, domainpricing.ErrValidation) {
		t.Fatalf("err = %v, want validation error", err)
	}
}

func TestComputePriceHandlerMapsCommand(t *testing.T) {
	f := newFixture(t)
	f.storeConfig(t, domainpricing.BasePriceConfig{PropertyID: "p1", BasePrice: 200, Currency: "EUR"})

	los := 30
	lead := 100
	h := &ComputePriceHandler{Resolver: f.resolver, UoWFactory: f.factory}
	out, err := h.Handle(context.Background(), ComputePriceCommand{
		PropertyID:       "p1",
		Date:             time.Date(2026, time.December, 1, 0, 0, 0, 0, time.UTC),
		LengthOfStay:     &los,
		DaysUntilArrival: &lead,
	})
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	// 200 x 0.75 (30 nights) x 1.10 (100 days lead) on a neutral day.
	if math.Abs(out.FinalPrice-165) > 1e-9 {
		t.Errorf("finalPrice = %v, want 165", out.FinalPrice)
	}
	if out.Factors.LOSDiscount != 0.75 || out.Factors.LastMinute != 1.10 {
		t.Errorf("factors = %+v, want losDiscount 0.75 and lastMinute 1.10", out.Factors)
	}
}
