package market

import (
	"context"
	"log/slog"

	"github.com/IBM/sarama"
)

// CompetitorFeedHandler ingests competitor price observations from the
// competitor topic into the cache. Bad messages are logged and skipped so
// the claim keeps advancing.
type CompetitorFeedHandler struct {
	Cache  *CompetitorCache
	Logger *slog.Logger
}

func (h *CompetitorFeedHandler) Handle(_ context.Context, msg *sarama.ConsumerMessage) error {
	if h == nil || h.Cache == nil || msg == nil {
		return nil
	}
	if err := h.Cache.Ingest(msg.Value, h.Logger); err != nil {
		if h.Logger != nil {
			h.Logger.Warn("competitor feed message skipped",
				"topic", msg.Topic, "partition", msg.Partition, "offset", msg.Offset, "error", err)
		}
	}
	return nil
}
