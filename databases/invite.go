package databases

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ridehq/club-manager-api/models"
)

const inviteName = "invites"

// InviteDatabase contains the methods to use with the invite database
type InviteDatabase interface {
	FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.Invite, error)
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Invite, error)
	CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error)
	InsertOne(ctx context.Context, invite models.Invite, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error)
	UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (int64, error)
	DeleteOne(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) (int64, error)
	DeleteMany(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) (int64, error)
}

type inviteDatabase struct {
	db DatabaseHelper
}

// NewInviteDatabase initializes a new instance of invite database with the provided db connection
func NewInviteDatabase(db DatabaseHelper) InviteDatabase {
	return &inviteDatabase{
		db: db,
	}
}

func (i *inviteDatabase) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.Invite, error) {
	invite := &models.Invite{}
	err := i.db.Collection(inviteName).FindOne(ctx, filter, opts...).Decode(&invite)
	if err != nil {
		return nil, err
	}
	return invite, nil
}

func (i *inviteDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Invite, error) {
	var invites []models.Invite
	cur, err := i.db.Collection(inviteName).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	err = cur.Decode(&invites)
	if err != nil {
		return nil, err
	}
	return invites, nil
}

func (i *inviteDatabase) CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error) {
	return i.db.Collection(inviteName).CountDocuments(ctx, filter, opts...)
}

func (i *inviteDatabase) InsertOne(ctx context.Context, invite models.Invite, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error) {
	return i.db.Collection(inviteName).InsertOne(ctx, invite, opts...)
}

func (i *inviteDatabase) UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (int64, error) {
	return i.db.Collection(inviteName).UpdateOne(ctx, filter, update, opts...)
}

func (i *inviteDatabase) DeleteOne(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) (int64, error) {
	return i.db.Collection(inviteName).DeleteOne(ctx, filter, opts...)
}

func (i *inviteDatabase) DeleteMany(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) (int64, error) {
	return i.db.Collection(inviteName).DeleteMany(ctx, filter, opts...)
}
