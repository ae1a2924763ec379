package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Member roles within a club.
const (
	RoleAdmin     = "admin"
	RoleTreasurer = "treasurer"
	RoleRider     = "rider"
	RoleCoach     = "coach"
	RoleParent    = "parent"
)

// Member statuses.
const (
	MemberStatusActive   = "active"
	MemberStatusInactive = "inactive"
	MemberStatusPending  = "pending"
	MemberStatusBanned   = "banned"
)

// User holds the structure for the users collection in mongo. A user with a
// non-empty ClubID is a member of that club.
type User struct {
	ID        primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	FirstName string             `json:"firstName" bson:"firstName"`
	LastName  string             `json:"lastName" bson:"lastName"`
	Email     string             `json:"email" bson:"email"`
	Password  string             `json:"-" bson:"password"`
	Role      string             `json:"role" bson:"role"`
	Status    string             `json:"status" bson:"status"`
	AgeGroup  string             `json:"ageGroup,omitempty" bson:"ageGroup,omitempty"`
	ClubID    string             `json:"clubId" bson:"clubId"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// ValidRole reports whether role is one of the member roles
func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleTreasurer, RoleRider, RoleCoach, RoleParent:
		return true
	}
	return false
}

// ValidMemberStatus reports whether status is one of the member statuses
func ValidMemberStatus(status string) bool {
	switch status {
	case MemberStatusActive, MemberStatusInactive, MemberStatusPending, MemberStatusBanned:
		return true
	}
	return false
}
