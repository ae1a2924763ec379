package databases

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ridehq/club-manager-api/models"
)

const subscriptionName = "subscriptions"

// SubscriptionDatabase contains the methods to use with the subscriptions database
type SubscriptionDatabase interface {
	FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.Subscription, error)
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Subscription, error)
	UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (int64, error)
}

type subscriptionDatabase struct {
	db DatabaseHelper
}

// NewSubscriptionDatabase initializes a new instance of subscription database with the provided db connection
func NewSubscriptionDatabase(db DatabaseHelper) SubscriptionDatabase {
	return &subscriptionDatabase{
		db: db,
	}
}

func (s *subscriptionDatabase) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.Subscription, error) {
	sub := &models.Subscription{}
	err := s.db.Collection(subscriptionName).FindOne(ctx, filter, opts...).Decode(&sub)
	if err != nil {
		return nil, err
	}
	return sub, nil
}

func (s *subscriptionDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Subscription, error) {
	var subs []models.Subscription
	cur, err := s.db.Collection(subscriptionName).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	err = cur.Decode(&subs)
	if err != nil {
		return nil, err
	}
	return subs, nil
}

func (s *subscriptionDatabase) UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (int64, error) {
	return s.db.Collection(subscriptionName).UpdateOne(ctx, filter, update, opts...)
}
