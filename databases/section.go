package databases

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ridehq/club-manager-api/models"
)

const sectionName = "sections"

// SectionDatabase contains the methods to use with the website sections database
type SectionDatabase interface {
	FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.Section, error)
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Section, error)
	CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error)
	InsertOne(ctx context.Context, section models.Section, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error)
	UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (int64, error)
	DeleteOne(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) (int64, error)
}

type sectionDatabase struct {
	db DatabaseHelper
}

// NewSectionDatabase initializes a new instance of section database with the provided db connection
func NewSectionDatabase(db DatabaseHelper) SectionDatabase {
	return &sectionDatabase{
		db: db,
	}
}

func (s *sectionDatabase) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.Section, error) {
	section := &models.Section{}
	err := s.db.Collection(sectionName).FindOne(ctx, filter, opts...).Decode(&section)
	if err != nil {
		return nil, err
	}
	return section, nil
}

func (s *sectionDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Section, error) {
	var sections []models.Section
	cur, err := s.db.Collection(sectionName).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	err = cur.Decode(&sections)
	if err != nil {
		return nil, err
	}
	return sections, nil
}

func (s *sectionDatabase) CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error) {
	return s.db.Collection(sectionName).CountDocuments(ctx, filter, opts...)
}

func (s *sectionDatabase) InsertOne(ctx context.Context, section models.Section, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error) {
	return s.db.Collection(sectionName).InsertOne(ctx, section, opts...)
}

func (s *sectionDatabase) UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (int64, error) {
	return s.db.Collection(sectionName).UpdateOne(ctx, filter, update, opts...)
}

func (s *sectionDatabase) DeleteOne(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) (int64, error) {
	return s.db.Collection(sectionName).DeleteOne(ctx, filter, opts...)
}
