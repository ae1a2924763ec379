package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSubscriptionProject_Active(t *testing.T) {
	now := time.Now()
	sub := Subscription{Status: SubscriptionActive, Plan: "club-pro", CurrentPeriodEnd: now.Add(30 * 24 * time.Hour)}

	status := sub.Project(now)

	assert.Equal(t, SubscriptionActive, status.Status)
	assert.Equal(t, "club-pro", status.Plan)
	assert.Equal(t, 30, status.DaysUntilExpiry)
	assert.False(t, status.ExpiringSoon)
}

func TestSubscriptionProject_ExpiringSoon(t *testing.T) {
	now := time.Now()
	sub := Subscription{Status: SubscriptionActive, CurrentPeriodEnd: now.Add(3 * 24 * time.Hour)}

	status := sub.Project(now)

	assert.Equal(t, SubscriptionActive, status.Status)
	assert.Equal(t, 3, status.DaysUntilExpiry)
	assert.True(t, status.ExpiringSoon)
}

func TestSubscriptionProject_StoredActiveReadsExpired(t *testing.T) {
	now := time.Now()
	sub := Subscription{Status: SubscriptionActive, CurrentPeriodEnd: now.Add(-48 * time.Hour)}

	status := sub.Project(now)

	assert.Equal(t, SubscriptionExpired, status.Status)
	assert.Equal(t, 0, status.DaysUntilExpiry)
	assert.False(t, status.ExpiringSoon)
}

func TestSubscriptionProject_CancelledNeverExpiringSoon(t *testing.T) {
	now := time.Now()
	sub := Subscription{Status: SubscriptionCancelled, CurrentPeriodEnd: now.Add(2 * 24 * time.Hour)}

	status := sub.Project(now)

	assert.Equal(t, SubscriptionCancelled, status.Status)
	assert.False(t, status.ExpiringSoon)
}

func TestClassifyStripeStatus(t *testing.T) {
	assert.Equal(t, SubscriptionActive, ClassifyStripeStatus("active"))
	assert.Equal(t, SubscriptionActive, ClassifyStripeStatus("trialing"))
	assert.Equal(t, SubscriptionCancelled, ClassifyStripeStatus("canceled"))
	assert.Equal(t, SubscriptionExpired, ClassifyStripeStatus("past_due"))
	assert.Equal(t, SubscriptionExpired, ClassifyStripeStatus("unpaid"))
	assert.Equal(t, SubscriptionIncomplete, ClassifyStripeStatus("incomplete"))
	assert.Equal(t, SubscriptionIncomplete, ClassifyStripeStatus("something_new"))
}
