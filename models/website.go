package models

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Move directions for section and card reordering.
const (
	MoveUp   = "up"
	MoveDown = "down"
)

// ErrMoveOutOfRange is returned when an item is already at the edge it is
// being moved towards.
var ErrMoveOutOfRange = errors.New("item cannot move further in that direction")

// ErrItemNotFound is returned when the id being moved is not in the list.
var ErrItemNotFound = errors.New("item not found")

// WebsiteContent is the single clubWebsites document per club. Sections live
// in their own collection, scoped by clubId.
type WebsiteContent struct {
	ClubID         string         `json:"clubId" bson:"_id"`
	Headline       string         `json:"headline" bson:"headline"`
	Subtext        string         `json:"subtext" bson:"subtext"`
	BannerImageURL string         `json:"bannerImageUrl" bson:"bannerImageUrl"`
	LogoURL        string         `json:"logoUrl" bson:"logoUrl"`
	Gallery        []GalleryImage `json:"gallery" bson:"gallery"`
	Events         []WebsiteEvent `json:"events" bson:"events"`
	UpdatedAt      time.Time      `json:"updatedAt" bson:"updatedAt"`
}

// GalleryImage is one image in the website gallery
type GalleryImage struct {
	ID      string `json:"id" bson:"id"`
	URL     string `json:"url" bson:"url"`
	Caption string `json:"caption" bson:"caption"`
	Order   int    `json:"order" bson:"order"`
}

// WebsiteEvent is one event card on the public website
type WebsiteEvent struct {
	ID          string    `json:"id" bson:"id"`
	Title       string    `json:"title" bson:"title"`
	Description string    `json:"description" bson:"description"`
	Date        time.Time `json:"date" bson:"date"`
	ImageURL    string    `json:"imageUrl" bson:"imageUrl"`
	Order       int       `json:"order" bson:"order"`
}

// Section is an ordered content block of the club website, holding an ordered
// list of cards. Version increments on every write and guards reorders
// against concurrent edits.
type Section struct {
	ID        primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	ClubID    string             `json:"clubId" bson:"clubId"`
	Title     string             `json:"title" bson:"title"`
	Order     int                `json:"order" bson:"order"`
	Version   int64              `json:"version" bson:"version"`
	Cards     []Card             `json:"cards" bson:"cards"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
}

// Card is one entry inside a section
type Card struct {
	ID       string `json:"id" bson:"id"`
	Title    string `json:"title" bson:"title"`
	Body     string `json:"body" bson:"body"`
	ImageURL string `json:"imageUrl" bson:"imageUrl"`
	Order    int    `json:"order" bson:"order"`
}

// NormalizeCardOrder rewrites card orders to a strict 1..n sequence,
// preserving the current relative order
func NormalizeCardOrder(cards []Card) []Card {
	for i := range cards {
		cards[i].Order = i + 1
	}
	return cards
}

// MoveCard swaps the card with the adjacent one in the given direction and
// renumbers the list 1..n with no gaps
func MoveCard(cards []Card, cardID, direction string) ([]Card, error) {
	idx := -1
	for i, c := range cards {
		if c.ID == cardID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, ErrItemNotFound
	}
	switch direction {
	case MoveUp:
		if idx == 0 {
			return nil, ErrMoveOutOfRange
		}
		cards[idx-1], cards[idx] = cards[idx], cards[idx-1]
	case MoveDown:
		if idx == len(cards)-1 {
			return nil, ErrMoveOutOfRange
		}
		cards[idx], cards[idx+1] = cards[idx+1], cards[idx]
	default:
		return nil, errors.New("direction must be up or down")
	}
	return NormalizeCardOrder(cards), nil
}

// MoveSection swaps the section with its neighbour in the given direction and
// renumbers all sections 1..n. The input must already be sorted by Order.
func MoveSection(sections []Section, sectionID, direction string) ([]Section, error) {
	idx := -1
	for i, s := range sections {
		if s.ID.Hex() == sectionID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, ErrItemNotFound
	}
	switch direction {
	case MoveUp:
		if idx == 0 {
			return nil, ErrMoveOutOfRange
		}
		sections[idx-1], sections[idx] = sections[idx], sections[idx-1]
	case MoveDown:
		if idx == len(sections)-1 {
			return nil, ErrMoveOutOfRange
		}
		sections[idx], sections[idx+1] = sections[idx+1], sections[idx]
	default:
		return nil, errors.New("direction must be up or down")
	}
	for i := range sections {
		sections[i].Order = i + 1
	}
	return sections, nil
}
