package databases

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ridehq/club-manager-api/models"
)

const clubName = "clubs"

// ClubDatabase contains the methods to use with the club database
type ClubDatabase interface {
	FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.Club, error)
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Club, error)
	CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error)
	InsertOne(ctx context.Context, club models.Club, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error)
	UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (int64, error)
	DeleteOne(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) (int64, error)
}

type clubDatabase struct {
	db DatabaseHelper
}

// NewClubDatabase initializes a new instance of club database with the provided db connection
func NewClubDatabase(db DatabaseHelper) ClubDatabase {
	return &clubDatabase{
		db: db,
	}
}

func (c *clubDatabase) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.Club, error) {
	club := &models.Club{}
	err := c.db.Collection(clubName).FindOne(ctx, filter, opts...).Decode(&club)
	if err != nil {
		return nil, err
	}
	return club, nil
}

func (c *clubDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Club, error) {
	var clubs []models.Club
	cur, err := c.db.Collection(clubName).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	err = cur.Decode(&clubs)
	if err != nil {
		return nil, err
	}
	return clubs, nil
}

func (c *clubDatabase) CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error) {
	return c.db.Collection(clubName).CountDocuments(ctx, filter, opts...)
}

func (c *clubDatabase) InsertOne(ctx context.Context, club models.Club, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error) {
	return c.db.Collection(clubName).InsertOne(ctx, club, opts...)
}

func (c *clubDatabase) UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (int64, error) {
	return c.db.Collection(clubName).UpdateOne(ctx, filter, update, opts...)
}

func (c *clubDatabase) DeleteOne(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) (int64, error) {
	return c.db.Collection(clubName).DeleteOne(ctx, filter, opts...)
}
