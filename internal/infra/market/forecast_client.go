package market

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"ratecraft/internal/domain/market"
	"ratecraft/internal/domain/shared/daterange"
)

// ForecastClient queries an external demand forecasting service over HTTP.
// Forecast failures are reported as an unavailable result rather than an
// error so pricing can fall back to neutral demand.
type ForecastClient struct {
	Client    *http.Client
	Endpoint  string
	ModelType string
	Logger    *slog.Logger
}

type forecastRequest struct {
	PropertyID string `json:"propertyId"`
	StartDate  string `json:"startDate"`
	EndDate    string `json:"endDate"`
	ModelType  string `json:"modelType,omitempty"`
}

type forecastResponse struct {
	Forecast []forecastPoint `json:"forecast"`
}

type forecastPoint struct {
	Date           string  `json:"date"`
	PredictedValue float64 `json:"predictedValue"`
	Confidence     float64 `json:"confidence"`
}

// Forecast requests occupancy predictions for the given property and range.
func (c *ForecastClient) Forecast(ctx context.Context, propertyID string, dr daterange.DateRange) market.ForecastResult {
	unavailable := market.ForecastResult{Available: false}

	if c == nil || c.Client == nil || c.Endpoint == "" {
		return unavailable
	}

	payload := forecastRequest{
		PropertyID: propertyID,
		StartDate:  dr.Start.Format("2006-01-02"),
		EndDate:    dr.End.Format("2006-01-02"),
		ModelType:  c.ModelType,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		c.logWarn("forecast request encode failed", propertyID, err)
		return unavailable
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, bytes.NewReader(body))
	if err != nil {
		c.logWarn("forecast request build failed", propertyID, err)
		return unavailable
	}
	request.Header.Set("Content-Type", "application/json")

	resp, err := c.Client.Do(request)
	if err != nil {
		c.logWarn("forecast request failed", propertyID, err)
		return unavailable
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.logWarn("forecast returned error", propertyID,
			fmt.Errorf("status %d: %s", resp.StatusCode, string(snippet)))
		return unavailable
	}

	var decoded forecastResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		c.logWarn("forecast decode failed", propertyID, err)
		return unavailable
	}

	points := make([]market.ForecastPoint, 0, len(decoded.Forecast))
	for _, p := range decoded.Forecast {
		day, err := time.ParseInLocation("2006-01-02", p.Date, time.UTC)
		if err != nil {
			c.logWarn("forecast point has invalid date", propertyID, err)
			continue
		}
		points = append(points, market.ForecastPoint{
			Date:           day,
			PredictedValue: p.PredictedValue,
			Confidence:     p.Confidence,
		})
	}
	if len(points) == 0 {
		return unavailable
	}
	return market.ForecastResult{Available: true, Points: points}
}

func (c *ForecastClient) logWarn(msg, propertyID string, err error) {
	if c == nil || c.Logger == nil {
		return
	}
	c.Logger.Warn(msg, "property_id", propertyID, "error", err)
}
