package rules

import (
	"context"

	"ratecraft/internal/app/dto"
	"ratecraft/internal/app/handlers/support"
	"ratecraft/internal/app/queries"
	"ratecraft/internal/app/uow"
)

const listRulesKey = "rules.list"

// ListRulesQuery lists rules for one property (optionally including the
// globals) or, with an empty PropertyID, the global rules alone.
type ListRulesQuery struct {
	PropertyID    string
	IncludeGlobal bool
}

func (q ListRulesQuery) Key() string { return listRulesKey }

type ListRulesHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *ListRulesHandler) Handle(ctx context.Context, q ListRulesQuery) (dto.RuleList, error) {
	var zero dto.RuleList
	unit, execCtx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return zero, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	rules, err := unit.Rules().List(execCtx, q.PropertyID, q.IncludeGlobal)
	if err != nil {
		return zero, err
	}
	out := dto.RuleList{Rules: make([]dto.Rule, 0, len(rules)), Total: len(rules)}
	for i := range rules {
		out.Rules = append(out.Rules, dto.NewRule(&rules[i]))
	}
	return out, nil
}

var _ queries.Handler[ListRulesQuery, dto.RuleList] = (*ListRulesHandler)(nil)
