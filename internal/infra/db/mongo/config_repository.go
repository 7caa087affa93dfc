package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainpricing "ratecraft/internal/domain/pricing"
)

type ConfigRepository struct {
	col *mongo.Collection
}

func NewConfigRepository(db *mongo.Database) *ConfigRepository {
	return &ConfigRepository{col: db.Collection("base_price_configs")}
}

func (r *ConfigRepository) ByProperty(ctx context.Context, propertyID string) (*domainpricing.BasePriceConfig, error) {
	var doc configDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": propertyID}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainpricing.ErrConfigNotFound
		}
		return nil, err
	}
	cfg := doc.toDomain()
	return &cfg, nil
}

func (r *ConfigRepository) Save(ctx context.Context, cfg *domainpricing.BasePriceConfig) error {
	doc := configDocument{
		ID:        cfg.PropertyID,
		BasePrice: cfg.BasePrice,
		MinPrice:  cfg.MinPrice,
		MaxPrice:  cfg.MaxPrice,
		Currency:  cfg.NormalizedCurrency(),
	}
	opts := options.Update().SetUpsert(true)
	_, err := r.col.UpdateOne(ctx, bson.M{"_id": doc.ID}, bson.M{"$set": doc}, opts)
	return err
}

type configDocument struct {
	ID        string   `bson:"_id"`
	BasePrice float64  `bson:"base_price"`
	MinPrice  *float64 `bson:"min_price,omitempty"`
	MaxPrice  *float64 `bson:"max_price,omitempty"`
	Currency  string   `bson:"currency"`
}

func (d configDocument) toDomain() domainpricing.BasePriceConfig {
	return domainpricing.BasePriceConfig{
		PropertyID: d.ID,
		BasePrice:  d.BasePrice,
		MinPrice:   d.MinPrice,
		MaxPrice:   d.MaxPrice,
		Currency:   d.Currency,
	}
}

var _ domainpricing.ConfigRepository = (*ConfigRepository)(nil)
