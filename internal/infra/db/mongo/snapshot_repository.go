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

// SnapshotRepository keeps the latest computed price per property-day,
// keyed by a composite "propertyID|date" document id so upserts stay a
// single replace.
type SnapshotRepository struct {
	col *mongo.Collection
}

func NewSnapshotRepository(db *mongo.Database) *SnapshotRepository {
	return &SnapshotRepository{col: db.Collection("price_snapshots")}
}

func snapshotID(propertyID string, day time.Time) string {
	return propertyID + "|" + daterange.Day(day).Format("2006-01-02")
}

func (r *SnapshotRepository) Get(ctx context.Context, propertyID string, day time.Time) (*domainpricing.PriceResult, error) {
	var doc snapshotDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": snapshotID(propertyID, day)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainpricing.ErrSnapshotNotFound
		}
		return nil, err
	}
	res := doc.toDomain()
	return &res, nil
}

func (r *SnapshotRepository) Upsert(ctx context.Context, result *domainpricing.PriceResult) error {
	doc := newSnapshotDocument(result)
	opts := options.Update().SetUpsert(true)
	_, err := r.col.UpdateOne(ctx, bson.M{"_id": doc.ID}, bson.M{"$set": doc}, opts)
	return err
}

type snapshotDocument struct {
	ID              string                `bson:"_id"`
	PropertyID      string                `bson:"property_id"`
	Date            int64                 `bson:"date"`
	BasePrice       float64               `bson:"base_price"`
	CalculatedPrice float64               `bson:"calculated_price"`
	FinalPrice      float64               `bson:"final_price"`
	Factors         factorsDocument       `bson:"factors"`
	AppliedRules    []appliedRuleDocument `bson:"applied_rules,omitempty"`
	Currency        string                `bson:"currency"`
	Overridden      bool                  `bson:"overridden"`
	ComputedAt      int64                 `bson:"computed_at"`
}

type factorsDocument struct {
	Seasonal    float64 `bson:"seasonal"`
	Weekend     float64 `bson:"weekend"`
	Demand      float64 `bson:"demand"`
	Event       float64 `bson:"event"`
	LastMinute  float64 `bson:"last_minute"`
	LOSDiscount float64 `bson:"los_discount"`
}

type appliedRuleDocument struct {
	RuleID         string  `bson:"rule_id"`
	RuleName       string  `bson:"rule_name"`
	RuleType       string  `bson:"rule_type"`
	Adjustment     float64 `bson:"adjustment"`
	AdjustmentType string  `bson:"adjustment_type"`
}

func newSnapshotDocument(res *domainpricing.PriceResult) snapshotDocument {
	doc := snapshotDocument{
		ID:              snapshotID(res.PropertyID, res.Date),
		PropertyID:      res.PropertyID,
		Date:            daterange.Day(res.Date).UnixMilli(),
		BasePrice:       res.BasePrice,
		CalculatedPrice: res.CalculatedPrice,
		FinalPrice:      res.FinalPrice,
		Factors: factorsDocument{
			Seasonal:    res.Factors.Seasonal,
			Weekend:     res.Factors.Weekend,
			Demand:      res.Factors.Demand,
			Event:       res.Factors.Event,
			LastMinute:  res.Factors.LastMinute,
			LOSDiscount: res.Factors.LOSDiscount,
		},
		Currency:   res.Currency,
		Overridden: res.Overridden,
		ComputedAt: res.ComputedAt.UnixMilli(),
	}
	for _, ar := range res.AppliedRules {
		doc.AppliedRules = append(doc.AppliedRules, appliedRuleDocument{
			RuleID:         ar.RuleID,
			RuleName:       ar.RuleName,
			RuleType:       string(ar.RuleType),
			Adjustment:     ar.Adjustment,
			AdjustmentType: string(ar.AdjustmentType),
		})
	}
	return doc
}

func (d snapshotDocument) toDomain() domainpricing.PriceResult {
	res := domainpricing.PriceResult{
		PropertyID:      d.PropertyID,
		Date:            timestampToTime(d.Date),
		BasePrice:       d.BasePrice,
		CalculatedPrice: d.CalculatedPrice,
		FinalPrice:      d.FinalPrice,
		Factors: domainpricing.Factors{
			Seasonal:    d.Factors.Seasonal,
			Weekend:     d.Factors.Weekend,
			Demand:      d.Factors.Demand,
			Event:       d.Factors.Event,
			LastMinute:  d.Factors.LastMinute,
			LOSDiscount: d.Factors.LOSDiscount,
		},
		Currency:   d.Currency,
		Overridden: d.Overridden,
		ComputedAt: timestampToTime(d.ComputedAt),
	}
	for _, ar := range d.AppliedRules {
		res.AppliedRules = append(res.AppliedRules, domainpricing.AppliedRule{
			RuleID:         ar.RuleID,
			RuleName:       ar.RuleName,
			RuleType:       domainpricing.RuleType(ar.RuleType),
			Adjustment:     ar.Adjustment,
			AdjustmentType: domainpricing.AdjustmentType(ar.AdjustmentType),
		})
	}
	return res
}

var _ domainpricing.SnapshotRepository = (*SnapshotRepository)(nil)
