package pricing

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"ratecraft/internal/app/commands"
	"ratecraft/internal/app/dto"
)

const exportFeedKey = "pricing.export_feed"

// FeedStore puts a serialized price feed into object storage and returns
// its public URL.
type FeedStore interface {
	Put(ctx context.Context, key string, payload []byte, contentType string) (string, error)
}

// ExportFeedCommand computes a calendar and publishes it as a JSON feed
// object for downstream consumers.
type ExportFeedCommand struct {
	PropertyID string
	StartDate  time.Time
	EndDate    time.Time
}

func (c ExportFeedCommand) Key() string { return exportFeedKey }

type ExportFeedHandler struct {
	Calendar *ComputeCalendarHandler
	Store    FeedStore
	Clock    func() time.Time
}

func (h *ExportFeedHandler) Handle(ctx context.Context, cmd ExportFeedCommand) (*dto.FeedExport, error) {
	if h.Store == nil {
		return nil, fmt.Errorf("pricing: feed store not configured")
	}
	calendar, err := h.Calendar.Handle(ctx, ComputeCalendarCommand{
		PropertyID: cmd.PropertyID,
		StartDate:  cmd.StartDate,
		EndDate:    cmd.EndDate,
	})
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(calendar)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if h.Clock != nil {
		now = h.Clock().UTC()
	}
	key := fmt.Sprintf("feeds/%s/%s.json", cmd.PropertyID, now.Format("20060102T150405Z"))
	url, err := h.Store.Put(ctx, key, payload, "application/json")
	if err != nil {
		return nil, err
	}

	return &dto.FeedExport{
		PropertyID: cmd.PropertyID,
		ObjectKey:  key,
		URL:        url,
		Days:       len(calendar.Entries),
	}, nil
}

var _ commands.Handler[ExportFeedCommand, *dto.FeedExport] = (*ExportFeedHandler)(nil)
