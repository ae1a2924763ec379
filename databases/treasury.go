package databases

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ridehq/club-manager-api/models"
)

const treasuryName = "treasury"

// TreasuryDatabase contains the methods to use with the treasury database
type TreasuryDatabase interface {
	FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.TreasuryEntry, error)
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.TreasuryEntry, error)
	InsertOne(ctx context.Context, entry models.TreasuryEntry, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error)
	DeleteOne(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) (int64, error)
}

type treasuryDatabase struct {
	db DatabaseHelper
}

// NewTreasuryDatabase initializes a new instance of treasury database with the provided db connection
func NewTreasuryDatabase(db DatabaseHelper) TreasuryDatabase {
	return &treasuryDatabase{
		db: db,
	}
}

func (t *treasuryDatabase) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.TreasuryEntry, error) {
	entry := &models.TreasuryEntry{}
	err := t.db.Collection(treasuryName).FindOne(ctx, filter, opts...).Decode(&entry)
	if err != nil {
		return nil, err
	}
	return entry, nil
}

func (t *treasuryDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.TreasuryEntry, error) {
	var entries []models.TreasuryEntry
	cur, err := t.db.Collection(treasuryName).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	err = cur.Decode(&entries)
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (t *treasuryDatabase) InsertOne(ctx context.Context, entry models.TreasuryEntry, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error) {
	return t.db.Collection(treasuryName).InsertOne(ctx, entry, opts...)
}

func (t *treasuryDatabase) DeleteOne(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) (int64, error) {
	return t.db.Collection(treasuryName).DeleteOne(ctx, filter, opts...)
}
