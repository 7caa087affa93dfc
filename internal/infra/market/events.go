package market

import (
	"context"
	"sync"
	"time"

	"ratecraft/internal/domain/market"
	"ratecraft/internal/domain/shared/daterange"
)

// EventCatalog is an in-memory registry of local events affecting demand.
// Events registered without a property ID apply to every property.
type EventCatalog struct {
	mu     sync.RWMutex
	events []catalogEntry
}

type catalogEntry struct {
	propertyID string
	event      market.LocalEvent
}

func NewEventCatalog() *EventCatalog {
	return &EventCatalog{}
}

// Add registers an event. An empty propertyID makes the event global.
func (c *EventCatalog) Add(propertyID string, event market.LocalEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	event.Date = daterange.Day(event.Date)
	c.events = append(c.events, catalogEntry{propertyID: propertyID, event: event})
}

// EventsNear returns events within windowDays of the given day.
func (c *EventCatalog) EventsNear(_ context.Context, propertyID string, day time.Time, windowDays int) ([]market.LocalEvent, error) {
	day = daterange.Day(day)
	c.mu.RLock()
	defer c.mu.RUnlock()

	var out []market.LocalEvent
	for _, entry := range c.events {
		if entry.propertyID != "" && entry.propertyID != propertyID {
			continue
		}
		diff := int(entry.event.Date.Sub(day) / (24 * time.Hour))
		if diff < 0 {
			diff = -diff
		}
		if diff <= windowDays {
			out = append(out, entry.event)
		}
	}
	return out, nil
}
