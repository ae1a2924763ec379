package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	assert.Equal(t, "maple-hill-riders", Slugify("Maple Hill Riders"))
	assert.Equal(t, "ridge-valley-mtb-2024", Slugify("  Ridge Valley MTB 2024  "))
	assert.Equal(t, "bmx-crew", Slugify("BMX!! Crew"))
	assert.Equal(t, "", Slugify("***"))
}

func TestValidRole(t *testing.T) {
	for _, role := range []string{RoleAdmin, RoleTreasurer, RoleRider, RoleCoach, RoleParent} {
		assert.True(t, ValidRole(role), role)
	}
	assert.False(t, ValidRole("owner"))
	assert.False(t, ValidRole(""))
}

func TestValidMemberStatus(t *testing.T) {
	for _, status := range []string{MemberStatusActive, MemberStatusInactive, MemberStatusPending, MemberStatusBanned} {
		assert.True(t, ValidMemberStatus(status), status)
	}
	assert.False(t, ValidMemberStatus("suspended"))
}
