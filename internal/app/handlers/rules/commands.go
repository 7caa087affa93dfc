package rules

import (
	"context"
	"time"

	"github.com/google/uuid"

	"ratecraft/internal/app/commands"
	"ratecraft/internal/app/dto"
	"ratecraft/internal/app/uow"
	domainpricing "ratecraft/internal/domain/pricing"
)

const (
	createRuleKey = "rules.create"
	updateRuleKey = "rules.update"
	deleteRuleKey = "rules.delete"
)

// RulePayload is the writable surface of a pricing rule. PropertyID ""
// creates a global rule.
type RulePayload struct {
	PropertyID     string
	Name           string
	Type           domainpricing.RuleType
	Priority       int
	Conditions     domainpricing.Conditions
	Adjustment     float64
	AdjustmentType domainpricing.AdjustmentType
	MinPrice       *float64
	MaxPrice       *float64
	ValidFrom      time.Time
	ValidUntil     *time.Time
	Active         bool
}

type CreateRuleCommand struct {
	Payload RulePayload
}

func (c CreateRuleCommand) Key() string { return createRuleKey }

type CreateRuleHandler struct {
	UoWFactory uow.UoWFactory
	Clock      func() time.Time
}

func (h *CreateRuleHandler) Handle(ctx context.Context, cmd CreateRuleCommand) (*dto.Rule, error) {
	now := clockNow(h.Clock)
	rule := ruleFromPayload(cmd.Payload)
	rule.ID = uuid.NewString()
	rule.CreatedAt = now
	rule.UpdatedAt = now
	if rule.ValidFrom.IsZero() {
		rule.ValidFrom = now
	}
	if err := rule.Validate(); err != nil {
		return nil, err
	}

	unit, ctx, finish, err := beginUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	err = unit.Rules().Save(ctx, &rule)
	if err = finish(ctx, err); err != nil {
		return nil, err
	}
	out := dto.NewRule(&rule)
	return &out, nil
}

type UpdateRuleCommand struct {
	RuleID  string
	Payload RulePayload
}

func (c UpdateRuleCommand) Key() string { return updateRuleKey }

type UpdateRuleHandler struct {
	UoWFactory uow.UoWFactory
	Clock      func() time.Time
}

func (h *UpdateRuleHandler) Handle(ctx context.Context, cmd UpdateRuleCommand) (*dto.Rule, error) {
	unit, ctx, finish, err := beginUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}

	existing, err := unit.Rules().ByID(ctx, cmd.RuleID)
	if err != nil {
		return nil, finish(ctx, err)
	}

	updated := ruleFromPayload(cmd.Payload)
	updated.ID = existing.ID
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = clockNow(h.Clock)
	if updated.ValidFrom.IsZero() {
		updated.ValidFrom = existing.ValidFrom
	}
	if err := updated.Validate(); err != nil {
		return nil, finish(ctx, err)
	}

	err = unit.Rules().Save(ctx, &updated)
	if err = finish(ctx, err); err != nil {
		return nil, err
	}
	out := dto.NewRule(&updated)
	return &out, nil
}

type DeleteRuleCommand struct {
	RuleID string
}

func (c DeleteRuleCommand) Key() string { return deleteRuleKey }

type DeleteRuleResult struct {
	Deleted bool `json:"deleted"`
}

type DeleteRuleHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *DeleteRuleHandler) Handle(ctx context.Context, cmd DeleteRuleCommand) (*DeleteRuleResult, error) {
	unit, ctx, finish, err := beginUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	err = unit.Rules().Delete(ctx, cmd.RuleID)
	if err = finish(ctx, err); err != nil {
		return nil, err
	}
	return &DeleteRuleResult{Deleted: true}, nil
}

var (
	_ commands.Handler[CreateRuleCommand, *dto.Rule]         = (*CreateRuleHandler)(nil)
	_ commands.Handler[UpdateRuleCommand, *dto.Rule]         = (*UpdateRuleHandler)(nil)
	_ commands.Handler[DeleteRuleCommand, *DeleteRuleResult] = (*DeleteRuleHandler)(nil)
)

func ruleFromPayload(p RulePayload) domainpricing.Rule {
	return domainpricing.Rule{
		PropertyID:     p.PropertyID,
		Name:           p.Name,
		Type:           p.Type,
		Priority:       p.Priority,
		Conditions:     p.Conditions,
		Adjustment:     p.Adjustment,
		AdjustmentType: p.AdjustmentType,
		MinPrice:       p.MinPrice,
		MaxPrice:       p.MaxPrice,
		ValidFrom:      p.ValidFrom,
		ValidUntil:     p.ValidUntil,
		Active:         p.Active,
	}
}

func clockNow(clock func() time.Time) time.Time {
	if clock != nil {
		return clock().UTC()
	}
	return time.Now().UTC()
}

func beginUnit(ctx context.Context, factory uow.UoWFactory) (uow.UnitOfWork, context.Context, func(context.Context, error) error, error) {
	if unit, ok := uow.FromContext(ctx); ok {
		passthrough := func(_ context.Context, err error) error { return err }
		return unit, ctx, passthrough, nil
	}
	if factory == nil {
		return nil, ctx, nil, uow.ErrUnitOfWorkMissing
	}
	unit, err := factory.Begin(ctx, uow.TxOptions{})
	if err != nil {
		return nil, ctx, nil, err
	}
	ctx = uow.ContextWithUnitOfWork(ctx, unit)
	finish := func(ctx context.Context, err error) error {
		if err != nil {
			_ = unit.Rollback(ctx)
			return err
		}
		return unit.Commit(ctx)
	}
	return unit, ctx, finish, nil
}
