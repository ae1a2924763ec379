package models

import (
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var slugStrip = regexp.MustCompile(`[^a-z0-9]+`)

// Club holds the structure for the clubs collection in mongo. Members is the
// denormalized membership id list; the users collection remains the source of
// truth via the clubId field.
type Club struct {
	ID               primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Name             string             `json:"name" bson:"name"`
	FormattedName    string             `json:"formattedName" bson:"formattedName"`
	LogoURL          string             `json:"logoUrl,omitempty" bson:"logoUrl,omitempty"`
	CreatedBy        string             `json:"createdBy" bson:"createdBy"`
	Members          []string           `json:"members" bson:"members"`
	StripeCustomerID string             `json:"-" bson:"stripeCustomerId,omitempty"`
	CreatedAt        time.Time          `json:"createdAt" bson:"createdAt"`
}

// Slugify converts a club name to its unique formattedName, e.g.
// "Maple Hill Riders" -> "maple-hill-riders"
func Slugify(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = slugStrip.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
