package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestInviteEffectiveStatus_ActiveSingleUse(t *testing.T) {
	now := time.Now()
	inv := Invite{Type: InviteTypeSingle, MaxUses: 1, Used: 0, Status: InviteStatusActive}

	assert.Equal(t, InviteStatusActive, inv.EffectiveStatus(now))
	assert.True(t, inv.Redeemable(now))
}

func TestInviteEffectiveStatus_UsedUp(t *testing.T) {
	now := time.Now()
	inv := Invite{Type: InviteTypeSingle, MaxUses: 1, Used: 1, Status: InviteStatusActive}

	assert.Equal(t, InviteStatusUsedUp, inv.EffectiveStatus(now))
	assert.False(t, inv.Redeemable(now))
}

func TestInviteEffectiveStatus_Expired(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Hour)
	inv := Invite{Type: InviteTypeMulti, MaxUses: 10, Used: 2, ExpiresAt: &past, Status: InviteStatusActive}

	assert.Equal(t, InviteStatusExpired, inv.EffectiveStatus(now))
}

func TestInviteEffectiveStatus_RevokedWinsOverEverything(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Hour)

	// revoked beats expired and used-up at the same time
	inv := Invite{Type: InviteTypeSingle, MaxUses: 1, Used: 1, ExpiresAt: &past, Status: InviteStatusRevoked}

	assert.Equal(t, InviteStatusRevoked, inv.EffectiveStatus(now))
}

func TestInviteEffectiveStatus_UnlimitedIgnoresMaxUses(t *testing.T) {
	now := time.Now()
	inv := Invite{Type: InviteTypeUnlimited, MaxUses: 0, Used: 5000, Status: InviteStatusActive}

	assert.Equal(t, InviteStatusActive, inv.EffectiveStatus(now))
	assert.True(t, inv.Redeemable(now))
}

func TestInviteEffectiveStatus_UnlimitedStillExpires(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Minute)
	inv := Invite{Type: InviteTypeUnlimited, Used: 5000, ExpiresAt: &past, Status: InviteStatusActive}

	assert.Equal(t, InviteStatusExpired, inv.EffectiveStatus(now))
}

func TestInviteEffectiveStatus_ExpiryBoundary(t *testing.T) {
	now := time.Now()
	inv := Invite{Type: InviteTypeSingle, MaxUses: 1, ExpiresAt: &now, Status: InviteStatusActive}

	// exactly at the expiry instant the code is still usable
	assert.Equal(t, InviteStatusActive, inv.EffectiveStatus(now))
	assert.Equal(t, InviteStatusExpired, inv.EffectiveStatus(now.Add(time.Nanosecond)))
}

func TestValidInviteType(t *testing.T) {
	assert.True(t, ValidInviteType(InviteTypeSingle))
	assert.True(t, ValidInviteType(InviteTypeMulti))
	assert.True(t, ValidInviteType(InviteTypeUnlimited))
	assert.False(t, ValidInviteType("forever"))
	assert.False(t, ValidInviteType(""))
}
