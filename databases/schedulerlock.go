package databases

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
)

const schedulerLockName = "schedulerLocks"

// SchedulerLockDatabase provides a mongo-backed lock so cron jobs run on a
// single instance at a time.
type SchedulerLockDatabase interface {
	TryAcquireLock(ctx context.Context, jobName, instanceID string, ttl time.Duration) (bool, error)
	ReleaseLock(ctx context.Context, jobName, instanceID string) error
}

type schedulerLockDatabase struct {
	db DatabaseHelper
}

// NewSchedulerLockDatabase initializes a new instance of scheduler lock database with the provided db connection
func NewSchedulerLockDatabase(db DatabaseHelper) SchedulerLockDatabase {
	return &schedulerLockDatabase{
		db: db,
	}
}

func (s *schedulerLockDatabase) TryAcquireLock(ctx context.Context, jobName, instanceID string, ttl time.Duration) (bool, error) {
	now := time.Now()
	expiry := now.Add(ttl)

	// fresh lock document
	_, err := s.db.Collection(schedulerLockName).InsertOne(ctx, bson.M{
		"_id":       jobName,
		"owner":     instanceID,
		"expiresAt": expiry,
	})
	if err == nil {
		return true, nil
	}

	// the lock exists; take it over only if it has expired
	matched, err := s.db.Collection(schedulerLockName).UpdateOne(ctx,
		bson.M{"_id": jobName, "expiresAt": bson.M{"$lt": now}},
		bson.M{"$set": bson.M{"owner": instanceID, "expiresAt": expiry}},
	)
	if err != nil {
		return false, err
	}
	return matched > 0, nil
}

func (s *schedulerLockDatabase) ReleaseLock(ctx context.Context, jobName, instanceID string) error {
	_, err := s.db.Collection(schedulerLockName).DeleteOne(ctx, bson.M{"_id": jobName, "owner": instanceID})
	return err
}
