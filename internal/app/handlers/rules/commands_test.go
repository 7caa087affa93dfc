package rules

import (
	"context"
	"errors"
	"testing"
	"time"

	domainpricing "ratecraft/internal/domain/pricing"
	"ratecraft/internal/infra/storage/memory"
)

var testNow = time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

func validPayload() RulePayload {
	return RulePayload{
		PropertyID:     "p1",
		Name:           "Weekend uplift",
		Type:           domainpricing.RuleWeekend,
		Priority:       10,
		Adjustment:     1.2,
		AdjustmentType: domainpricing.AdjustMultiplier,
		Active:         true,
	}
}

func TestCreateRule(t *testing.T) {
	factory := memory.NewFactory()
	h := &CreateRuleHandler{UoWFactory: factory, Clock: fixedClock}

	out, err := h.Handle(context.Background(), CreateRuleCommand{Payload: validPayload()})
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if out.ID == "" {
		t.Error("rule ID not assigned")
	}
	if !out.CreatedAt.Equal(testNow) || !out.UpdatedAt.Equal(testNow) {
		t.Errorf("timestamps = %v/%v, want %v", out.CreatedAt, out.UpdatedAt, testNow)
	}
	if !out.ValidFrom.Equal(testNow) {
		t.Errorf("validFrom = %v, want defaulted to now", out.ValidFrom)
	}

	stored, err := factory.RulesRepo.ByID(context.Background(), out.ID)
	if err != nil {
		t.Fatalf("rule not persisted: %v", err)
	}
	if stored.Name != "Weekend uplift" || stored.PropertyID != "p1" {
		t.Errorf("stored rule = %+v", stored)
	}
}

func TestCreateRuleRejectsInvalidPayload(t *testing.T) {
	factory := memory.NewFactory()
	h := &CreateRuleHandler{UoWFactory: factory, Clock: fixedClock}

	p := validPayload()
	p.AdjustmentType = "EXPONENT"
	_, err := h.Handle(context.Background(), CreateRuleCommand{Payload: p})
	if !errors.Is(err, domainpricing.ErrValidation) {
		t.Fatalf("err = %v, want validation error", err)
	}

	rules, err := factory.RulesRepo.List(context.Background(), "p1", true)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rules) != 0 {
		t.Errorf("rules persisted = %d, want none after rejection", len(rules))
	}
}

func TestUpdateRulePreservesCreatedAt(t *testing.T) {
	factory := memory.NewFactory()
	create := &CreateRuleHandler{UoWFactory: factory, Clock: fixedClock}
	created, err := create.Handle(context.Background(), CreateRuleCommand{Payload: validPayload()})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	later := testNow.Add(time.Hour)
	update := &UpdateRuleHandler{UoWFactory: factory, Clock: func() time.Time { return later }}
	p := validPayload()
	p.Name = "Weekend uplift v2"
	p.Adjustment = 1.3
	out, err := update.Handle(context.Background(), UpdateRuleCommand{RuleID: created.ID, Payload: p})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if out.Name != "Weekend uplift v2" || out.Adjustment != 1.3 {
		t.Errorf("updated rule = %+v", out)
	}
	if !out.CreatedAt.Equal(testNow) {
		t.Errorf("createdAt = %v, want original %v", out.CreatedAt, testNow)
	}
	if !out.UpdatedAt.Equal(later) {
		t.Errorf("updatedAt = %v, want %v", out.UpdatedAt, later)
	}
}

func TestUpdateRuleNotFound(t *testing.T) {
	h := &UpdateRuleHandler{UoWFactory: memory.NewFactory(), Clock: fixedClock}
	_, err := h.Handle(context.Background(), UpdateRuleCommand{RuleID: "missing", Payload: validPayload()})
	if !errors.Is(err, domainpricing.ErrRuleNotFound) {
		t.Fatalf("err = %v, want rule not found", err)
	}
}

func TestDeleteRule(t *testing.T) {
	factory := memory.NewFactory()
	create := &CreateRuleHandler{UoWFactory: factory, Clock: fixedClock}
	created, err := create.Handle(context.Background(), CreateRuleCommand{Payload: validPayload()})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	del := &DeleteRuleHandler{UoWFactory: factory}
	out, err := del.Handle(context.Background(), DeleteRuleCommand{RuleID: created.ID})
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if !out.Deleted {
		t.Error("deleted = false")
	}
	if _, err := factory.RulesRepo.ByID(context.Background(), created.ID); !errors.Is(err, domainpricing.ErrRuleNotFound) {
		t.Errorf("rule still present after delete: %v", err)
	}

	if _, err := del.Handle(context.Background(), DeleteRuleCommand{RuleID: created.ID}); !errors.Is(err, domainpricing.ErrRuleNotFound) {
		t.Errorf("second delete err = %v, want rule not found", err)
	}
}

func TestListRulesScoping(t *testing.T) {
	factory := memory.NewFactory()
	create := &CreateRuleHandler{UoWFactory: factory, Clock: fixedClock}

	scoped := validPayload()
	global := validPayload()
	global.PropertyID = ""
	global.Name = "Global seasonal"
	other := validPayload()
	other.PropertyID = "p2"
	other.Name = "Other property"

	for _, p := range []RulePayload{scoped, global, other} {
		if _, err := create.Handle(context.Background(), CreateRuleCommand{Payload: p}); err != nil {
			t.Fatalf("create %q: %v", p.Name, err)
		}
	}

	list := &ListRulesHandler{UoWFactory: factory}
	out, err := list.Handle(context.Background(), ListRulesQuery{PropertyID: "p1", IncludeGlobal: true})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if out.Total != 2 {
		t.Errorf("total with globals = %d, want 2", out.Total)
	}

	out, err = list.Handle(context.Background(), ListRulesQuery{PropertyID: "p1", IncludeGlobal: false})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if out.Total != 1 {
		t.Errorf("total without globals = %d, want 1", out.Total)
	}
	if out.Rules[0].PropertyID != "p1" {
		t.Errorf("rule scope = %q, want p1", out.Rules[0].PropertyID)
	}
}
