package ginserver

import (
	"net/http"
	"time"

	gin "github.com/gin-gonic/gin"

	"ratecraft/internal/app/commands"
	"ratecraft/internal/app/dto"
	overridesapp "ratecraft/internal/app/handlers/overrides"
)

type OverrideHandler struct {
	Commands commands.Bus
}

type createOverrideRequest struct {
	Date       string  `json:"date"`
	Price      float64 `json:"overridePrice"`
	Reason     string  `json:"reason"`
	CreatedBy  string  `json:"createdBy"`
	ValidUntil string  `json:"validUntil"`
}

func (h OverrideHandler) Create(c *gin.Context) {
	var req createOverrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	date, ok := parseDate(c, "date", req.Date, true)
	if !ok {
		return
	}
	var validUntil *time.Time
	if req.ValidUntil != "" {
		t, ok := parseDate(c, "validUntil", req.ValidUntil, false)
		if !ok {
			return
		}
		validUntil = &t
	}
	cmd := overridesapp.CreateOverrideCommand{
		PropertyID:      c.Param("id"),
		Date:            date,
		Price:           req.Price,
		Reason:          req.Reason,
		CreatedBy:       req.CreatedBy,
		ValidUntil:      validUntil,
		IdempotencyKeyV: c.GetHeader("Idempotency-Key"),
	}
	result, err := commands.Dispatch[overridesapp.CreateOverrideCommand, *dto.Override](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h OverrideHandler) Delete(c *gin.Context) {
	cmd := overridesapp.DeleteOverrideCommand{OverrideID: c.Param("overrideId")}
	result, err := commands.Dispatch[overridesapp.DeleteOverrideCommand, *overridesapp.DeleteOverrideResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ OverridesHTTP = OverrideHandler{}
