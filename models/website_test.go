package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func cardList(ids ...string) []Card {
	cards := make([]Card, len(ids))
	for i, id := range ids {
		cards[i] = Card{ID: id, Order: i + 1}
	}
	return cards
}

func cardIDs(cards []Card) []string {
	ids := make([]string, len(cards))
	for i, c := range cards {
		ids[i] = c.ID
	}
	return ids
}

func TestMoveCard_Up(t *testing.T) {
	cards, err := MoveCard(cardList("a", "b", "c"), "b", MoveUp)

	assert.NoError(t, err)
	assert.Equal(t, []string{"b", "a", "c"}, cardIDs(cards))
	for i, c := range cards {
		assert.Equal(t, i+1, c.Order)
	}
}

func TestMoveCard_Down(t *testing.T) {
	cards, err := MoveCard(cardList("a", "b", "c"), "b", MoveDown)

	assert.NoError(t, err)
	assert.Equal(t, []string{"a", "c", "b"}, cardIDs(cards))
}

func TestMoveCard_TopEdge(t *testing.T) {
	_, err := MoveCard(cardList("a", "b"), "a", MoveUp)
	assert.ErrorIs(t, err, ErrMoveOutOfRange)
}

func TestMoveCard_BottomEdge(t *testing.T) {
	_, err := MoveCard(cardList("a", "b"), "b", MoveDown)
	assert.ErrorIs(t, err, ErrMoveOutOfRange)
}

func TestMoveCard_UnknownID(t *testing.T) {
	_, err := MoveCard(cardList("a", "b"), "zz", MoveUp)
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestMoveCard_BadDirection(t *testing.T) {
	_, err := MoveCard(cardList("a", "b"), "a", "sideways")
	assert.Error(t, err)
}

func TestNormalizeCardOrder_ClosesGaps(t *testing.T) {
	cards := []Card{
		{ID: "a", Order: 2},
		{ID: "b", Order: 7},
		{ID: "c", Order: 9},
	}

	out := NormalizeCardOrder(cards)

	assert.Equal(t, []string{"a", "b", "c"}, cardIDs(out))
	for i, c := range out {
		assert.Equal(t, i+1, c.Order)
	}
}

func TestMoveSection_SwapAndRenumber(t *testing.T) {
	first := primitive.NewObjectID()
	second := primitive.NewObjectID()
	third := primitive.NewObjectID()
	sections := []Section{
		{ID: first, Order: 1},
		{ID: second, Order: 2},
		{ID: third, Order: 3},
	}

	out, err := MoveSection(sections, third.Hex(), MoveUp)

	assert.NoError(t, err)
	assert.Equal(t, third, out[1].ID)
	assert.Equal(t, second, out[2].ID)
	for i, s := range out {
		assert.Equal(t, i+1, s.Order)
	}
}

func TestMoveSection_Edges(t *testing.T) {
	a := primitive.NewObjectID()
	b := primitive.NewObjectID()
	sections := []Section{{ID: a, Order: 1}, {ID: b, Order: 2}}

	_, err := MoveSection(sections, a.Hex(), MoveUp)
	assert.ErrorIs(t, err, ErrMoveOutOfRange)

	_, err = MoveSection(sections, b.Hex(), MoveDown)
	assert.ErrorIs(t, err, ErrMoveOutOfRange)
}
