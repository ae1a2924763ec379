package handlers

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ridehq/club-manager-api/models"
)

func roster() []models.User {
	return []models.User{
		{FirstName: "zoe", LastName: "Adams", Email: "zoe@example.com", CreatedAt: time.Now().Add(-time.Hour)},
		{FirstName: "Ben", LastName: "Carver", Email: "ben@example.com", CreatedAt: time.Now().Add(-2 * time.Hour)},
		{FirstName: "ana", LastName: "Brooks", Email: "ana@example.com", CreatedAt: time.Now()},
	}
}

func TestFilterAndSortMembers_DefaultSortIsCaseInsensitive(t *testing.T) {
	req := httptest.NewRequest("GET", "/members/query", nil)
	q := parseMemberQuery(req)

	page, total := filterAndSortMembers(roster(), q)

	assert.Equal(t, 3, total)
	// "ana" < "Ben" < "zoe" when compared case-insensitively
	assert.Equal(t, "ana", page[0].FirstName)
	assert.Equal(t, "Ben", page[1].FirstName)
	assert.Equal(t, "zoe", page[2].FirstName)
}

func TestFilterAndSortMembers_SearchMatchesNameAndEmail(t *testing.T) {
	req := httptest.NewRequest("GET", "/members/query?search=carver", nil)
	q := parseMemberQuery(req)

	page, total := filterAndSortMembers(roster(), q)

	assert.Equal(t, 1, total)
	assert.Equal(t, "Ben", page[0].FirstName)

	req = httptest.NewRequest("GET", "/members/query?search=ZOE@", nil)
	page, total = filterAndSortMembers(roster(), parseMemberQuery(req))

	assert.Equal(t, 1, total)
	assert.Equal(t, "zoe", page[0].FirstName)
}

func TestFilterAndSortMembers_DescendingByLastName(t *testing.T) {
	req := httptest.NewRequest("GET", "/members/query?sort_field=lastName&sort_dir=desc", nil)
	q := parseMemberQuery(req)

	page, _ := filterAndSortMembers(roster(), q)

	assert.Equal(t, "Carver", page[0].LastName)
	assert.Equal(t, "Brooks", page[1].LastName)
	assert.Equal(t, "Adams", page[2].LastName)
}

func TestFilterAndSortMembers_CreatedAtOrdersFractionalSeconds(t *testing.T) {
	base := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	members := []models.User{
		{FirstName: "late", CreatedAt: base.Add(500 * time.Millisecond)},
		{FirstName: "early", CreatedAt: base},
		{FirstName: "latest", CreatedAt: base.Add(time.Second)},
	}

	req := httptest.NewRequest("GET", "/members/query?sort_field=createdAt", nil)
	page, _ := filterAndSortMembers(members, parseMemberQuery(req))

	// a whole-second timestamp sorts before one half a second later, which a
	// lexicographic compare of formatted timestamps gets backwards
	assert.Equal(t, "early", page[0].FirstName)
	assert.Equal(t, "late", page[1].FirstName)
	assert.Equal(t, "latest", page[2].FirstName)

	req = httptest.NewRequest("GET", "/members/query?sort_field=createdAt&sort_dir=desc", nil)
	page, _ = filterAndSortMembers(members, parseMemberQuery(req))

	assert.Equal(t, "latest", page[0].FirstName)
	assert.Equal(t, "early", page[2].FirstName)
}

func TestFilterAndSortMembers_Pagination(t *testing.T) {
	req := httptest.NewRequest("GET", "/members/query?limit=2", nil)
	page, total := filterAndSortMembers(roster(), parseMemberQuery(req))

	assert.Equal(t, 3, total)
	assert.Len(t, page, 2)

	req = httptest.NewRequest("GET", "/members/query?limit=2&page=1", nil)
	page, total = filterAndSortMembers(roster(), parseMemberQuery(req))

	assert.Equal(t, 3, total)
	assert.Len(t, page, 1)

	// a page past the end is empty, not an error
	req = httptest.NewRequest("GET", "/members/query?limit=2&page=9", nil)
	page, total = filterAndSortMembers(roster(), parseMemberQuery(req))

	assert.Equal(t, 3, total)
	assert.Len(t, page, 0)
}

func TestParseMemberQuery_Defaults(t *testing.T) {
	req := httptest.NewRequest("GET", "/members/query", nil)
	q := parseMemberQuery(req)

	assert.Equal(t, "firstName", q.sortField)
	assert.Equal(t, "asc", q.sortDir)
	assert.Equal(t, 25, q.limit)
	assert.Equal(t, 0, q.page)
}
