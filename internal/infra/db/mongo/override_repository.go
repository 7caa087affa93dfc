package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainpricing "ratecraft/internal/domain/pricing"
	"ratecraft/internal/domain/shared/daterange"
)

type OverrideRepository struct {
	col *mongo.Collection
}

func NewOverrideRepository(db *mongo.Database) *OverrideRepository {
	return &OverrideRepository{col: db.Collection("price_overrides")}
}

func (r *OverrideRepository) ByID(ctx context.Context, id string) (*domainpricing.Override, error) {
	var doc overrideDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainpricing.ErrOverrideNotFound
		}
		return nil, err
	}
	o := doc.toDomain()
	return &o, nil
}

func (r *OverrideRepository) Save(ctx context.Context, o *domainpricing.Override) error {
	doc := newOverrideDocument(o)
	opts := options.Update().SetUpsert(true)
	_, err := r.col.UpdateOne(ctx, bson.M{"_id": doc.ID}, bson.M{"$set": doc}, opts)
	return err
}

func (r *OverrideRepository) Delete(ctx context.Context, id string) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domainpricing.ErrOverrideNotFound
	}
	return nil
}

// ActiveFor picks the newest override in force for the property-day. The
// validity check happens in memory since valid_until may be absent.
func (r *OverrideRepository) ActiveFor(ctx context.Context, propertyID string, day time.Time, at time.Time) (*domainpricing.Override, error) {
	filter := bson.M{"property_id": propertyID, "date": daterange.Day(day).UnixMilli()}
	opts := options.Find().SetSort(bson.D{{Key: "valid_from", Value: -1}})
	cursor, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var doc overrideDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		o := doc.toDomain()
		if o.ActiveAt(at) {
			return &o, nil
		}
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return nil, domainpricing.ErrOverrideNotFound
}

type overrideDocument struct {
	ID         string  `bson:"_id"`
	PropertyID string  `bson:"property_id"`
	Date       int64   `bson:"date"`
	Price      float64 `bson:"price"`
	Reason     string  `bson:"reason"`
	CreatedBy  string  `bson:"created_by"`
	ValidFrom  int64   `bson:"valid_from"`
	ValidUntil *int64  `bson:"valid_until,omitempty"`
}

func newOverrideDocument(o *domainpricing.Override) overrideDocument {
	doc := overrideDocument{
		ID:         o.ID,
		PropertyID: o.PropertyID,
		Date:       o.Day().UnixMilli(),
		Price:      o.Price,
		Reason:     o.Reason,
		CreatedBy:  o.CreatedBy,
		ValidFrom:  o.ValidFrom.UnixMilli(),
	}
	if o.ValidUntil != nil {
		ms := o.ValidUntil.UnixMilli()
		doc.ValidUntil = &ms
	}
	return doc
}

func (d overrideDocument) toDomain() domainpricing.Override {
	o := domainpricing.Override{
		ID:         d.ID,
		PropertyID: d.PropertyID,
		Date:       timestampToTime(d.Date),
		Price:      d.Price,
		Reason:     d.Reason,
		CreatedBy:  d.CreatedBy,
		ValidFrom:  timestampToTime(d.ValidFrom),
	}
	if d.ValidUntil != nil {
		t := timestampToTime(*d.ValidUntil)
		o.ValidUntil = &t
	}
	return o
}

var _ domainpricing.OverrideRepository = (*OverrideRepository)(nil)
