package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainpricing "ratecraft/internal/domain/pricing"
	"ratecraft/internal/domain/shared/daterange"
)

// HistoryRepository is append-only; rows are never updated or deleted.
type HistoryRepository struct {
	col *mongo.Collection
}

func NewHistoryRepository(db *mongo.Database) *HistoryRepository {
	return &HistoryRepository{col: db.Collection("price_history")}
}

func (r *HistoryRepository) Append(ctx context.Context, entry domainpricing.HistoryEntry) error {
	doc := historyDocument{
		ID:            entry.ID,
		PropertyID:    entry.PropertyID,
		Date:          daterange.Day(entry.Date).UnixMilli(),
		PreviousPrice: entry.PreviousPrice,
		NewPrice:      entry.NewPrice,
		ChangePercent: entry.ChangePercent,
		Reason:        entry.Reason,
		RecordedAt:    entry.RecordedAt.UnixMilli(),
	}
	_, err := r.col.InsertOne(ctx, doc)
	return err
}

func (r *HistoryRepository) ListForProperty(ctx context.Context, propertyID string, limit int) ([]domainpricing.HistoryEntry, error) {
	opts := options.Find().SetSort(bson.D{{Key: "recorded_at", Value: -1}})
	if limit > 0 {
		opts = opts.SetLimit(int64(limit))
	}
	cursor, err := r.col.Find(ctx, bson.M{"property_id": propertyID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var entries []domainpricing.HistoryEntry
	for cursor.Next(ctx) {
		var doc historyDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		entries = append(entries, domainpricing.HistoryEntry{
			ID:            doc.ID,
			PropertyID:    doc.PropertyID,
			Date:          timestampToTime(doc.Date),
			PreviousPrice: doc.PreviousPrice,
			NewPrice:      doc.NewPrice,
			ChangePercent: doc.ChangePercent,
			Reason:        doc.Reason,
			RecordedAt:    timestampToTime(doc.RecordedAt),
		})
	}
	return entries, cursor.Err()
}

type historyDocument struct {
	ID            string  `bson:"_id"`
	PropertyID    string  `bson:"property_id"`
	Date          int64   `bson:"date"`
	PreviousPrice float64 `bson:"previous_price"`
	NewPrice      float64 `bson:"new_price"`
	ChangePercent float64 `bson:"change_percent"`
	Reason        string  `bson:"reason"`
	RecordedAt    int64   `bson:"recorded_at"`
}

var _ domainpricing.HistoryRepository = (*HistoryRepository)(nil)
