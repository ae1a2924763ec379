package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Subscription display statuses.
const (
	SubscriptionActive     = "active"
	SubscriptionExpired    = "expired"
	SubscriptionCancelled  = "cancelled"
	SubscriptionIncomplete = "incomplete"
)

// ExpiringSoonDays is the window for flagging a subscription as expiring soon.
const ExpiringSoonDays = 7

// Subscription holds the structure for the subscriptions collection in mongo,
// one document per club, written when a checkout session is verified.
type Subscription struct {
	ID                   primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	ClubID               string             `json:"clubId" bson:"clubId"`
	StripeCustomerID     string             `json:"-" bson:"stripeCustomerId"`
	StripeSubscriptionID string             `json:"-" bson:"stripeSubscriptionId"`
	Plan                 string             `json:"plan" bson:"plan"`
	Status               string             `json:"status" bson:"status"`
	CurrentPeriodEnd     time.Time          `json:"currentPeriodEnd" bson:"currentPeriodEnd"`
	ReminderSentAt       *time.Time         `json:"-" bson:"reminderSentAt,omitempty"`
	CreatedAt            time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt            time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// SubscriptionStatus is the read-only projection served to the dashboard
type SubscriptionStatus struct {
	Status           string    `json:"status"`
	Plan             string    `json:"plan,omitempty"`
	CurrentPeriodEnd time.Time `json:"currentPeriodEnd"`
	DaysUntilExpiry  int       `json:"daysUntilExpiry"`
	ExpiringSoon     bool      `json:"expiringSoon"`
}

// Project derives the display status at the given time. A stored active
// subscription whose period end has passed reads as expired.
func (s Subscription) Project(now time.Time) SubscriptionStatus {
	status := s.Status
	days := int(s.CurrentPeriodEnd.Sub(now).Hours() / 24)
	if status == SubscriptionActive && !s.CurrentPeriodEnd.IsZero() && now.After(s.CurrentPeriodEnd) {
		status = SubscriptionExpired
	}
	if days < 0 {
		days = 0
	}
	return SubscriptionStatus{
		Status:           status,
		Plan:             s.Plan,
		CurrentPeriodEnd: s.CurrentPeriodEnd,
		DaysUntilExpiry:  days,
		ExpiringSoon:     status == SubscriptionActive && days <= ExpiringSoonDays,
	}
}

// ClassifyStripeStatus maps a stripe subscription status onto the display
// enum used by the dashboard
func ClassifyStripeStatus(stripeStatus string) string {
	switch stripeStatus {
	case "active", "trialing":
		return SubscriptionActive
	case "canceled":
		return SubscriptionCancelled
	case "past_due", "unpaid":
		return SubscriptionExpired
	default:
		return SubscriptionIncomplete
	}
}
