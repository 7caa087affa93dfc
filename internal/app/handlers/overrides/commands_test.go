package overrides

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	pricingapp "ratecraft/internal/app/handlers/pricing"
	domainpricing "ratecraft/internal/domain/pricing"
	"ratecraft/internal/infra/storage/memory"
)

var testNow = time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

func newTestStack(t *testing.T) (memory.Factory, *pricingapp.Resolver) {
	t.Helper()
	factory := memory.NewFactory()
	resolver := &pricingapp.Resolver{
		Factors: domainpricing.NewFactorCalculator(nil, nil, domainpricing.DefaultFactorCalculatorConfig()),
		Engine:  domainpricing.NewEngine(nil),
		Bounds:  domainpricing.DefaultBoundsConfig(),
		Clock:   fixedClock,
	}
	cfg := domainpricing.BasePriceConfig{PropertyID: "p1", BasePrice: 100, Currency: "EUR"}
	if err := factory.ConfigsRepo.Save(context.Background(), &cfg); err != nil {
		t.Fatalf("save config: %v", err)
	}
	return factory, resolver
}

func TestCreateOverridePinsPrice(t *testing.T) {
	factory, resolver := newTestStack(t)
	h := &CreateOverrideHandler{Resolver: resolver, UoWFactory: factory, Clock: fixedClock}

	day := time.Date(2026, time.July, 4, 0, 0, 0, 0, time.UTC)
	out, err := h.Handle(context.Background(), CreateOverrideCommand{
		PropertyID: "p1",
		Date:       day,
		Price:      500,
		Reason:     "VIP booking",
		CreatedBy:  "ops",
	})
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if out.ID == "" {
		t.Error("override ID not assigned")
	}
	if out.Result == nil {
		t.Fatal("embedded recomputation result missing")
	}
	if !out.Result.Overridden || out.Result.FinalPrice != 500 {
		t.Errorf("result = %+v, want overridden final 500", out.Result)
	}

	snapshot, err := factory.SnapshotsRepo.Get(context.Background(), "p1", day)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if snapshot.FinalPrice != 500 || !snapshot.Overridden {
		t.Errorf("snapshot = %v overridden=%v, want pinned 500", snapshot.FinalPrice, snapshot.Overridden)
	}
}

func TestCreateOverrideRejectsInvalid(t *testing.T) {
	factory, resolver := newTestStack(t)
	h := &CreateOverrideHandler{Resolver: resolver, UoWFactory: factory, Clock: fixedClock}

	_, err := h.Handle(context.Background(), CreateOverrideCommand{
		PropertyID: "p1",
		Date:       time.Date(2026, time.July, 4, 0, 0, 0, 0, time.UTC),
		Price:      -5,
		Reason:     "typo",
		CreatedBy:  "ops",
	})
	if !errors.Is(err, domainpricing.ErrValidation) {
		t.Fatalf("err = %v, want validation error", err)
	}
}

func TestDeleteOverrideRestoresComputedPrice(t *testing.T) {
	factory, resolver := newTestStack(t)
	create := &CreateOverrideHandler{Resolver: resolver, UoWFactory: factory, Clock: fixedClock}

	// Saturday in July computes to 162 without the pin.
	day := time.Date(2026, time.July, 4, 0, 0, 0, 0, time.UTC)
	created, err := create.Handle(context.Background(), CreateOverrideCommand{
		PropertyID: "p1",
		Date:       day,
		Price:      500,
		Reason:     "VIP booking",
		CreatedBy:  "ops",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	del := &DeleteOverrideHandler{Resolver: resolver, UoWFactory: factory}
	out, err := del.Handle(context.Background(), DeleteOverrideCommand{OverrideID: created.ID})
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if !out.Deleted || out.Result == nil {
		t.Fatalf("out = %+v, want deleted with recomputation result", out)
	}
	if out.Result.Overridden {
		t.Error("result still overridden after delete")
	}
	if math.Abs(out.Result.FinalPrice-162) > 1e-9 {
		t.Errorf("finalPrice = %v, want recomputed 162", out.Result.FinalPrice)
	}

	snapshot, err := factory.SnapshotsRepo.Get(context.Background(), "p1", day)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if snapshot.Overridden {
		t.Error("snapshot still flagged overridden")
	}
}

func TestDeleteOverrideNotFound(t *testing.T) {
	factory, resolver := newTestStack(t)
	h := &DeleteOverrideHandler{Resolver: resolver, UoWFactory: factory}
	_, err := h.Handle(context.Background(), DeleteOverrideCommand{OverrideID: "missing"})
	if !errors.Is(err, domainpricing.ErrOverrideNotFound) {
		t.Fatalf("err = %v, want override not found", err)
	}
}
