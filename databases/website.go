package databases

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ridehq/club-manager-api/models"
)

const websiteName = "clubWebsites"

// WebsiteDatabase contains the methods to use with the clubWebsites database
type WebsiteDatabase interface {
	FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.WebsiteContent, error)
	InsertOne(ctx context.Context, content models.WebsiteContent, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error)
	UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (int64, error)
	DeleteOne(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) (int64, error)
}

type websiteDatabase struct {
	db DatabaseHelper
}

// NewWebsiteDatabase initializes a new instance of clubWebsites database with the provided db connection
func NewWebsiteDatabase(db DatabaseHelper) WebsiteDatabase {
	return &websiteDatabase{
		db: db,
	}
}

func (w *websiteDatabase) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.WebsiteContent, error) {
	content := &models.WebsiteContent{}
	err := w.db.Collection(websiteName).FindOne(ctx, filter, opts...).Decode(&content)
	if err != nil {
		return nil, err
	}
	return content, nil
}

func (w *websiteDatabase) InsertOne(ctx context.Context, content models.WebsiteContent, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error) {
	return w.db.Collection(websiteName).InsertOne(ctx, content, opts...)
}

func (w *websiteDatabase) UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (int64, error) {
	return w.db.Collection(websiteName).UpdateOne(ctx, filter, update, opts...)
}

func (w *websiteDatabase) DeleteOne(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) (int64, error) {
	return w.db.Collection(websiteName).DeleteOne(ctx, filter, opts...)
}
