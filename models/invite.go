package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Invite types.
const (
	InviteTypeSingle    = "single"
	InviteTypeMulti     = "multi"
	InviteTypeUnlimited = "unlimited"
)

// Invite statuses. Revoked is the only persisted terminal status; expired and
// used-up are derived at read time from ExpiresAt and Used.
const (
	InviteStatusActive  = "active"
	InviteStatusRevoked = "revoked"
	InviteStatusExpired = "expired"
	InviteStatusUsedUp  = "used-up"
)

// Invite represents the structure of an invite code document in mongo
type Invite struct {
	ID        primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Code      string             `json:"code" bson:"code" index:"unique"`
	ClubID    string             `json:"clubId" bson:"clubId"`
	Type      string             `json:"type" bson:"type"`
	MaxUses   int                `json:"maxUses" bson:"maxUses"`
	Used      int                `json:"used" bson:"used"`
	Role      string             `json:"role" bson:"role"`
	Tags      []string           `json:"tags,omitempty" bson:"tags,omitempty"`
	ExpiresAt *time.Time         `json:"expiresAt,omitempty" bson:"expiresAt,omitempty"`
	Status    string             `json:"status" bson:"status"`
	CreatedBy string             `json:"createdBy" bson:"createdBy"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
}

// ValidInviteType reports whether t is one of the invite types
func ValidInviteType(t string) bool {
	switch t {
	case InviteTypeSingle, InviteTypeMulti, InviteTypeUnlimited:
		return true
	}
	return false
}

// EffectiveStatus derives the status of the invite at the given time. The
// persisted revoked status always wins, then expiry, then exhaustion. Codes of
// type unlimited never consult MaxUses.
func (i Invite) EffectiveStatus(now time.Time) string {
	if i.Status == InviteStatusRevoked {
		return InviteStatusRevoked
	}
	if i.ExpiresAt != nil && now.After(*i.ExpiresAt) {
		return InviteStatusExpired
	}
	if i.Type != InviteTypeUnlimited && i.Used >= i.MaxUses {
		return InviteStatusUsedUp
	}
	return InviteStatusActive
}

// Redeemable reports whether the invite can still be consumed at the given time
func (i Invite) Redeemable(now time.Time) bool {
	return i.EffectiveStatus(now) == InviteStatusActive
}
