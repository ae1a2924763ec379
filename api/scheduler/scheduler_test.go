package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/ridehq/club-manager-api/databases/mocks"
	"github.com/ridehq/club-manager-api/models"
)

func newTestScheduler() (*Scheduler, *mocks.InviteDatabase, *mocks.SubscriptionDatabase, *mocks.UserDatabase, *mocks.SchedulerLockDatabase) {
	mockInviteDB := &mocks.InviteDatabase{}
	mockSubDB := &mocks.SubscriptionDatabase{}
	mockClubDB := &mocks.ClubDatabase{}
	mockUserDB := &mocks.UserDatabase{}
	mockLockDB := &mocks.SchedulerLockDatabase{}

	s := NewScheduler(mockInviteDB, mockSubDB, mockClubDB, mockUserDB, mockLockDB)
	return s, mockInviteDB, mockSubDB, mockUserDB, mockLockDB
}

func TestPurgeExpiredInvites_SkipsWithoutLock(t *testing.T) {
	s, mockInviteDB, _, _, mockLockDB := newTestScheduler()
	mockLockDB.On("TryAcquireLock", mock.Anything, "invite_purge_job", s.instanceID, 10*time.Minute).Return(false, nil)

	s.purgeExpiredInvites()

	mockInviteDB.AssertNotCalled(t, "DeleteMany", mock.Anything, mock.Anything)
}

func TestPurgeExpiredInvites_DeletesBehindLock(t *testing.T) {
	s, mockInviteDB, _, _, mockLockDB := newTestScheduler()
	mockLockDB.On("TryAcquireLock", mock.Anything, "invite_purge_job", s.instanceID, 10*time.Minute).Return(true, nil)
	mockLockDB.On("ReleaseLock", mock.Anything, "invite_purge_job", s.instanceID).Return(nil)
	mockInviteDB.On("DeleteMany", mock.Anything, mock.MatchedBy(func(filter bson.M) bool {
		_, hasExpiry := filter["expiresAt"]
		return hasExpiry
	})).Return(int64(4), nil)

	s.purgeExpiredInvites()

	mockInviteDB.AssertExpectations(t)
	mockLockDB.AssertExpectations(t)
}

func TestSendRenewalReminders_SkipsWithoutLock(t *testing.T) {
	s, _, mockSubDB, _, mockLockDB := newTestScheduler()
	mockLockDB.On("TryAcquireLock", mock.Anything, "renewal_reminder_job", s.instanceID, 10*time.Minute).Return(false, nil)

	s.sendRenewalReminders()

	mockSubDB.AssertNotCalled(t, "Find", mock.Anything, mock.Anything)
}

func TestRemindClub_NoAdminsSendsNothing(t *testing.T) {
	s, _, mockSubDB, mockUserDB, _ := newTestScheduler()
	mockUserDB.On("Find", mock.Anything, mock.Anything).Return([]models.User{}, nil)

	sub := models.Subscription{
		ClubID:           "not-a-hex-id",
		Status:           models.SubscriptionActive,
		CurrentPeriodEnd: time.Now().Add(48 * time.Hour),
	}
	delivered := s.remindClub(context.Background(), sub, time.Now())

	assert.False(t, delivered)
	mockSubDB.AssertNotCalled(t, "UpdateOne", mock.Anything, mock.Anything, mock.Anything)
}
