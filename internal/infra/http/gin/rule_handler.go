package ginserver

import (
	"net/http"
	"time"

	gin "github.com/gin-gonic/gin"

	"ratecraft/internal/app/commands"
	"ratecraft/internal/app/dto"
	rulesapp "ratecraft/internal/app/handlers/rules"
	"ratecraft/internal/app/queries"
	domainpricing "ratecraft/internal/domain/pricing"
)

type RuleHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
}

type ruleRequest struct {
	PropertyID     string                   `json:"propertyId"`
	Name           string                   `json:"name"`
	Type           string                   `json:"type"`
	Priority       int                      `json:"priority"`
	Conditions     domainpricing.Conditions `json:"conditions"`
	Adjustment     float64                  `json:"adjustment"`
	AdjustmentType string                   `json:"adjustmentType"`
	MinPrice       *float64                 `json:"minPrice"`
	MaxPrice       *float64                 `json:"maxPrice"`
	ValidFrom      string                   `json:"validFrom"`
	ValidUntil     string                   `json:"validUntil"`
	Active         *bool                    `json:"active"`
}

func (h RuleHandler) List(c *gin.Context) {
	q := rulesapp.ListRulesQuery{
		PropertyID:    c.Query("propertyId"),
		IncludeGlobal: c.Query("includeGlobal") != "false",
	}
	result, err := queries.Ask[rulesapp.ListRulesQuery, dto.RuleList](c.Request.Context(), h.Queries, q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h RuleHandler) Create(c *gin.Context) {
	payload, ok := h.bindPayload(c)
	if !ok {
		return
	}
	cmd := rulesapp.CreateRuleCommand{Payload: payload}
	result, err := commands.Dispatch[rulesapp.CreateRuleCommand, *dto.Rule](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h RuleHandler) Update(c *gin.Context) {
	payload, ok := h.bindPayload(c)
	if !ok {
		return
	}
	cmd := rulesapp.UpdateRuleCommand{RuleID: c.Param("id"), Payload: payload}
	result, err := commands.Dispatch[rulesapp.UpdateRuleCommand, *dto.Rule](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h RuleHandler) Delete(c *gin.Context) {
	cmd := rulesapp.DeleteRuleCommand{RuleID: c.Param("id")}
	result, err := commands.Dispatch[rulesapp.DeleteRuleCommand, *rulesapp.DeleteRuleResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h RuleHandler) bindPayload(c *gin.Context) (rulesapp.RulePayload, bool) {
	var req ruleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return rulesapp.RulePayload{}, false
	}
	validFrom, ok := parseDate(c, "validFrom", req.ValidFrom, false)
	if !ok {
		return rulesapp.RulePayload{}, false
	}
	var validUntil *time.Time
	if req.ValidUntil != "" {
		t, ok := parseDate(c, "validUntil", req.ValidUntil, false)
		if !ok {
			return rulesapp.RulePayload{}, false
		}
		validUntil = &t
	}
	active := true
	if req.Active != nil {
		active = *req.Active
	}
	return rulesapp.RulePayload{
		PropertyID:     req.PropertyID,
		Name:           req.Name,
		Type:           domainpricing.RuleType(req.Type),
		Priority:       req.Priority,
		Conditions:     req.Conditions,
		Adjustment:     req.Adjustment,
		AdjustmentType: domainpricing.AdjustmentType(req.AdjustmentType),
		MinPrice:       req.MinPrice,
		MaxPrice:       req.MaxPrice,
		ValidFrom:      validFrom,
		ValidUntil:     validUntil,
		Active:         active,
	}, true
}

var _ RulesHTTP = RuleHandler{}
