package ginserver

import (
	"net/http"
	"time"

	gin "github.com/gin-gonic/gin"

	"ratecraft/internal/app/commands"
	"ratecraft/internal/app/dto"
	pricingapp "ratecraft/internal/app/handlers/pricing"
	"ratecraft/internal/app/queries"
	domainpricing "ratecraft/internal/domain/pricing"
)

const dateLayout = "2006-01-02"

type PricingHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
}

type computePriceRequest struct {
	Date             string   `json:"date"`
	CheckIn          string   `json:"checkIn"`
	CheckOut         string   `json:"checkOut"`
	LengthOfStay     *int     `json:"lengthOfStay"`
	DaysUntilArrival *int     `json:"daysUntilArrival"`
	OccupancyRate    *float64 `json:"occupancyRate"`
}

func (h PricingHandler) Compute(c *gin.Context) {
	var req computePriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	date, ok := parseDate(c, "date", req.Date, true)
	if !ok {
		return
	}
	checkIn, ok := parseDate(c, "checkIn", req.CheckIn, false)
	if !ok {
		return
	}
	checkOut, ok := parseDate(c, "checkOut", req.CheckOut, false)
	if !ok {
		return
	}

	cmd := pricingapp.ComputePriceCommand{
		PropertyID:       c.Param("id"),
		Date:             date,
		CheckIn:          checkIn,
		CheckOut:         checkOut,
		LengthOfStay:     req.LengthOfStay,
		DaysUntilArrival: req.DaysUntilArrival,
		OccupancyRate:    req.OccupancyRate,
		IdempotencyKeyV:  c.GetHeader("Idempotency-Key"),
	}
	result, err := commands.Dispatch[pricingapp.ComputePriceCommand, *dto.PriceResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h PricingHandler) Get(c *gin.Context) {
	date, ok := parseDate(c, "date", c.Query("date"), true)
	if !ok {
		return
	}
	q := pricingapp.GetPriceQuery{PropertyID: c.Param("id"), Date: date}
	result, err := queries.Ask[pricingapp.GetPriceQuery, dto.PriceResult](c.Request.Context(), h.Queries, q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h PricingHandler) Calendar(c *gin.Context) {
	start, ok := parseDate(c, "start", c.Query("start"), true)
	if !ok {
		return
	}
	end, ok := parseDate(c, "end", c.Query("end"), true)
	if !ok {
		return
	}
	cmd := pricingapp.ComputeCalendarCommand{
		PropertyID: c.Param("id"),
		StartDate:  start,
		EndDate:    end,
	}
	result, err := commands.Dispatch[pricingapp.ComputeCalendarCommand, *dto.Calendar](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type dateRangeRequest struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

func (h PricingHandler) Recompute(c *gin.Context) {
	var req dateRangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	start, ok := parseDate(c, "startDate", req.StartDate, true)
	if !ok {
		return
	}
	end, ok := parseDate(c, "endDate", req.EndDate, true)
	if !ok {
		return
	}
	cmd := pricingapp.RecomputeCommand{
		PropertyID:      c.Param("id"),
		StartDate:       start,
		EndDate:         end,
		IdempotencyKeyV: c.GetHeader("Idempotency-Key"),
	}
	result, err := commands.Dispatch[pricingapp.RecomputeCommand, *dto.RecomputeReport](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h PricingHandler) ExportFeed(c *gin.Context) {
	var req dateRangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	start, ok := parseDate(c, "startDate", req.StartDate, true)
	if !ok {
		return
	}
	end, ok := parseDate(c, "endDate", req.EndDate, true)
	if !ok {
		return
	}
	cmd := pricingapp.ExportFeedCommand{
		PropertyID: c.Param("id"),
		StartDate:  start,
		EndDate:    end,
	}
	result, err := commands.Dispatch[pricingapp.ExportFeedCommand, *dto.FeedExport](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

// parseDate answers the request itself on malformed input so callers can
// just bail on !ok.
func parseDate(c *gin.Context, field, value string, required bool) (time.Time, bool) {
	if value == "" {
		if required {
			respondError(c, &domainpricing.ValidationError{Fields: []domainpricing.FieldError{
				{Field: field, Message: "is required"},
			}})
			return time.Time{}, false
		}
		return time.Time{}, true
	}
	t, err := time.ParseInLocation(dateLayout, value, time.UTC)
	if err != nil {
		respondError(c, &domainpricing.ValidationError{Fields: []domainpricing.FieldError{
			{Field: field, Message: "must be formatted YYYY-MM-DD"},
		}})
		return time.Time{}, false
	}
	return t, true
}

var _ PricingHTTP = PricingHandler{}
