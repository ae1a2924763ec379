package templates

import (
	"fmt"
	"time"
)

// RenderInviteEmail builds the HTML body for an invite-code email. The code
// and join link are rendered inside the generic branded shell.
func RenderInviteEmail(clubName, code, role, joinURL string, expiresAt *time.Time) string {
	body := fmt.Sprintf(
		"You have been invited to join %s as a %s.\n\nYour invite code:\n\n%s\n\nJoin here: %s",
		clubName, role, code, joinURL,
	)
	if expiresAt != nil {
		body += fmt.Sprintf("\n\nThis code expires on %s.", expiresAt.Format("January 2, 2006"))
	}
	return RenderGenericEmail(fmt.Sprintf("Join %s", clubName), body)
}

// RenderRenewalReminderEmail builds the HTML body for the subscription
// renewal reminder sent when a club's plan is close to its period end.
func RenderRenewalReminderEmail(clubName string, daysLeft int, periodEnd time.Time) string {
	body := fmt.Sprintf(
		"The subscription for %s expires in %d day(s), on %s.\n\nRenew from the club dashboard to keep your website and member tools online.",
		clubName, daysLeft, periodEnd.Format("January 2, 2006"),
	)
	return RenderGenericEmail("Your subscription is expiring soon", body)
}
