package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainpricing "ratecraft/internal/domain/pricing"
)

type RuleRepository struct {
	col *mongo.Collection
}

func NewRuleRepository(db *mongo.Database) *RuleRepository {
	return &RuleRepository{col: db.Collection("pricing_rules")}
}

func (r *RuleRepository) ByID(ctx context.Context, id string) (*domainpricing.Rule, error) {
	var doc ruleDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainpricing.ErrRuleNotFound
		}
		return nil, err
	}
	rule := doc.toDomain()
	return &rule, nil
}

func (r *RuleRepository) Save(ctx context.Context, rule *domainpricing.Rule) error {
	doc := newRuleDocument(rule)
	opts := options.Update().SetUpsert(true)
	_, err := r.col.UpdateOne(ctx, bson.M{"_id": doc.ID}, bson.M{"$set": doc}, opts)
	return err
}

func (r *RuleRepository) Delete(ctx context.Context, id string) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domainpricing.ErrRuleNotFound
	}
	return nil
}

func (r *RuleRepository) CandidatesFor(ctx context.Context, propertyID string) ([]domainpricing.Rule, error) {
	filter := bson.M{"property_id": bson.M{"$in": []string{propertyID, ""}}}
	return r.find(ctx, filter)
}

func (r *RuleRepository) List(ctx context.Context, propertyID string, includeGlobal bool) ([]domainpricing.Rule, error) {
	scopes := []string{propertyID}
	if includeGlobal && propertyID != "" {
		scopes = append(scopes, "")
	}
	return r.find(ctx, bson.M{"property_id": bson.M{"$in": scopes}})
}

func (r *RuleRepository) find(ctx context.Context, filter bson.M) ([]domainpricing.Rule, error) {
	cursor, err := r.col.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rules []domainpricing.Rule
	for cursor.Next(ctx) {
		var doc ruleDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		rules = append(rules, doc.toDomain())
	}
	return rules, cursor.Err()
}

type ruleDocument struct {
	ID             string                 `bson:"_id"`
	PropertyID     string                 `bson:"property_id"`
	Name           string                 `bson:"name"`
	Type           string                 `bson:"type"`
	Priority       int                    `bson:"priority"`
	Conditions     ruleConditionsDocument `bson:"conditions"`
	Adjustment     float64                `bson:"adjustment"`
	AdjustmentType string                 `bson:"adjustment_type"`
	MinPrice       *float64               `bson:"min_price,omitempty"`
	MaxPrice       *float64               `bson:"max_price,omitempty"`
	ValidFrom      int64                  `bson:"valid_from"`
	ValidUntil     *int64                 `bson:"valid_until,omitempty"`
	Active         bool                   `bson:"active"`
	CreatedAt      int64                  `bson:"created_at"`
	UpdatedAt      int64                  `bson:"updated_at"`
}

type ruleConditionsDocument struct {
	RangeStart         *int64                    `bson:"range_start,omitempty"`
	RangeEnd           *int64                    `bson:"range_end,omitempty"`
	DaysOfWeek         []int                     `bson:"days_of_week,omitempty"`
	OccupancyThreshold *domainpricing.FloatRange `bson:"occupancy_threshold,omitempty"`
	DaysUntilArrival   *domainpricing.IntRange   `bson:"days_until_arrival,omitempty"`
	LengthOfStay       *domainpricing.IntRange   `bson:"length_of_stay,omitempty"`
	Custom             map[string]any            `bson:"custom,omitempty"`
}

func newRuleDocument(rule *domainpricing.Rule) ruleDocument {
	doc := ruleDocument{
		ID:             rule.ID,
		PropertyID:     rule.PropertyID,
		Name:           rule.Name,
		Type:           string(rule.Type),
		Priority:       rule.Priority,
		Adjustment:     rule.Adjustment,
		AdjustmentType: string(rule.AdjustmentType),
		MinPrice:       rule.MinPrice,
		MaxPrice:       rule.MaxPrice,
		ValidFrom:      rule.ValidFrom.UnixMilli(),
		Active:         rule.Active,
		CreatedAt:      rule.CreatedAt.UnixMilli(),
		UpdatedAt:      rule.UpdatedAt.UnixMilli(),
	}
	if rule.ValidUntil != nil {
		ms := rule.ValidUntil.UnixMilli()
		doc.ValidUntil = &ms
	}
	cond := rule.Conditions
	if cond.DateRange != nil {
		start := cond.DateRange.Start.UnixMilli()
		end := cond.DateRange.End.UnixMilli()
		doc.Conditions.RangeStart = &start
		doc.Conditions.RangeEnd = &end
	}
	for _, d := range cond.DaysOfWeek {
		doc.Conditions.DaysOfWeek = append(doc.Conditions.DaysOfWeek, int(d))
	}
	doc.Conditions.OccupancyThreshold = cond.OccupancyThreshold
	doc.Conditions.DaysUntilArrival = cond.DaysUntilArrival
	doc.Conditions.LengthOfStay = cond.LengthOfStay
	doc.Conditions.Custom = cond.Custom
	return doc
}

func (d ruleDocument) toDomain() domainpricing.Rule {
	rule := domainpricing.Rule{
		ID:             d.ID,
		PropertyID:     d.PropertyID,
		Name:           d.Name,
		Type:           domainpricing.RuleType(d.Type),
		Priority:       d.Priority,
		Adjustment:     d.Adjustment,
		AdjustmentType: domainpricing.AdjustmentType(d.AdjustmentType),
		MinPrice:       d.MinPrice,
		MaxPrice:       d.MaxPrice,
		ValidFrom:      timestampToTime(d.ValidFrom),
		Active:         d.Active,
		CreatedAt:      timestampToTime(d.CreatedAt),
		UpdatedAt:      timestampToTime(d.UpdatedAt),
	}
	if d.ValidUntil != nil {
		t := timestampToTime(*d.ValidUntil)
		rule.ValidUntil = &t
	}
	if d.Conditions.RangeStart != nil && d.Conditions.RangeEnd != nil {
		rule.Conditions.DateRange = &domainpricing.DateWindow{
			Start: timestampToTime(*d.Conditions.RangeStart),
			End:   timestampToTime(*d.Conditions.RangeEnd),
		}
	}
	for _, wd := range d.Conditions.DaysOfWeek {
		rule.Conditions.DaysOfWeek = append(rule.Conditions.DaysOfWeek, time.Weekday(wd))
	}
	rule.Conditions.OccupancyThreshold = d.Conditions.OccupancyThreshold
	rule.Conditions.DaysUntilArrival = d.Conditions.DaysUntilArrival
	rule.Conditions.LengthOfStay = d.Conditions.LengthOfStay
	rule.Conditions.Custom = d.Conditions.Custom
	return rule
}

func timestampToTime(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

var _ domainpricing.RuleRepository = (*RuleRepository)(nil)
