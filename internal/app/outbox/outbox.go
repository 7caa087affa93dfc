package outbox

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"ratecraft/internal/domain/shared/events"
)

// EventRecord is the stored form of a domain event, written in the same
// transaction as the state change that produced it.
type EventRecord struct {
	ID         string
	Name       string
	Payload    []byte
	OccurredAt time.Time
	Aggregate  string
	Headers    map[string]string
}

// Outbox buffers event records until the command pipeline flushes them.
type Outbox interface {
	Add(ctx context.Context, record EventRecord) error
	Flush(ctx context.Context) error
}

// EventEncoder turns a domain event into its stored record.
type EventEncoder interface {
	Encode(ev events.DomainEvent) (EventRecord, error)
}

// JSONEventEncoder serializes event payloads as JSON. The zero value
// assigns random IDs; tests inject IDGenerator for determinism.
type JSONEventEncoder struct {
	IDGenerator func() string
}

func (e JSONEventEncoder) Encode(ev events.DomainEvent) (EventRecord, error) {
	payload, err := json.Marshal(ev)
	if err != nil {
		return EventRecord{}, err
	}
	rec := EventRecord{
		Name:       ev.EventName(),
		Payload:    payload,
		OccurredAt: ev.OccurredAt(),
		Aggregate:  ev.AggregateID(),
		Headers:    map[string]string{},
	}
	if e.IDGenerator != nil {
		rec.ID = e.IDGenerator()
	} else {
		rec.ID = uuid.NewString()
	}
	return rec, nil
}

// RecordDomainEvents encodes and queues every event. A nil outbox is a
// valid configuration for read-only deployments; events are dropped.
func RecordDomainEvents(ctx context.Context, box Outbox, encoder EventEncoder, evs []events.DomainEvent) error {
	if box == nil || len(evs) == 0 {
		return nil
	}
	if encoder == nil {
		encoder = JSONEventEncoder{}
	}
	for _, ev := range evs {
		rec, err := encoder.Encode(ev)
		if err != nil {
			return err
		}
		if err := box.Add(ctx, rec); err != nil {
			return err
		}
	}
	return nil
}
