package scheduler

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/ridehq/club-manager-api/databases"
	"github.com/ridehq/club-manager-api/models"
	templates "github.com/ridehq/club-manager-api/templates/html"
)

// invitePurgeAge is how long an invite stays visible in the dashboard after
// it expired before the purge job removes it
const invitePurgeAge = 30 * 24 * time.Hour

// Scheduler handles periodic background jobs: purging long-expired invite
// codes and reminding club admins about subscriptions close to their period
// end. Jobs run behind a distributed lock so multiple pods don't double-send.
type Scheduler struct {
	cron       *cron.Cron
	IDB        databases.InviteDatabase
	SubDB      databases.SubscriptionDatabase
	CDB        databases.ClubDatabase
	UDB        databases.UserDatabase
	LockDB     databases.SchedulerLockDatabase
	instanceID string
}

// NewScheduler creates a new scheduler instance
func NewScheduler(
	iDB databases.InviteDatabase,
	subDB databases.SubscriptionDatabase,
	cDB databases.ClubDatabase,
	uDB databases.UserDatabase,
	lockDB databases.SchedulerLockDatabase,
) *Scheduler {
	// Generate a unique instance ID for this pod
	instanceID := os.Getenv("DYNO") // Heroku sets this to "web.1", "web.2", etc.
	if instanceID == "" {
		instanceID = fmt.Sprintf("instance-%d", time.Now().UnixNano())
	}

	return &Scheduler{
		cron:       cron.New(cron.WithLocation(time.UTC)),
		IDB:        iDB,
		SubDB:      subDB,
		CDB:        cDB,
		UDB:        uDB,
		LockDB:     lockDB,
		instanceID: instanceID,
	}
}

// Start begins the scheduler with all registered jobs
func (s *Scheduler) Start() {
	// Purge long-expired invite codes daily at 3 AM UTC
	_, err := s.cron.AddFunc("0 3 * * *", s.purgeExpiredInvites)
	if err != nil {
		zap.S().Errorw("failed to register invite purge job", "error", err)
	}

	// Send renewal reminders daily at 9 AM UTC so they land during the day
	_, err = s.cron.AddFunc("0 9 * * *", s.sendRenewalReminders)
	if err != nil {
		zap.S().Errorw("failed to register renewal reminder job", "error", err)
	}

	s.cron.Start()
	zap.S().Info("Club scheduler started")
}

// Stop gracefully stops the scheduler
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	zap.S().Info("Club scheduler stopped")
}

// purgeExpiredInvites deletes invites whose expiry passed more than
// invitePurgeAge ago. Recently expired invites are kept so admins can see
// what happened to a code a member asks about.
func (s *Scheduler) purgeExpiredInvites() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	acquired, err := s.LockDB.TryAcquireLock(ctx, "invite_purge_job", s.instanceID, 10*time.Minute)
	if err != nil {
		zap.S().Errorw("failed to acquire lock for invite purge job", "error", err)
		return
	}
	if !acquired {
		zap.S().Debug("Invite purge job already running on another instance, skipping")
		return
	}
	defer s.LockDB.ReleaseLock(ctx, "invite_purge_job", s.instanceID)

	cutoff := time.Now().Add(-invitePurgeAge)
	zap.S().Infow("Running invite purge job", "instance", s.instanceID, "cutoff", cutoff)

	deleted, err := s.IDB.DeleteMany(ctx, bson.M{
		"expiresAt": bson.M{"$ne": nil, "$lt": primitive.NewDateTimeFromTime(cutoff)},
	})
	if err != nil {
		zap.S().Errorw("failed to purge expired invites", "error", err)
		return
	}

	zap.S().Infow("Invite purge complete", "deleted", deleted)
}

// sendRenewalReminders emails the admins of every club whose subscription
// ends within the expiring-soon window and has not been reminded for this
// billing period yet
func (s *Scheduler) sendRenewalReminders() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	acquired, err := s.LockDB.TryAcquireLock(ctx, "renewal_reminder_job", s.instanceID, 10*time.Minute)
	if err != nil {
		zap.S().Errorw("failed to acquire lock for renewal reminder job", "error", err)
		return
	}
	if !acquired {
		zap.S().Debug("Renewal reminder job already running on another instance, skipping")
		return
	}
	defer s.LockDB.ReleaseLock(ctx, "renewal_reminder_job", s.instanceID)

	now := time.Now()
	windowEnd := now.Add(models.ExpiringSoonDays * 24 * time.Hour)

	zap.S().Infow("Running renewal reminder job", "instance", s.instanceID)

	subs, err := s.SubDB.Find(ctx, bson.M{
		"status": models.SubscriptionActive,
		"currentPeriodEnd": bson.M{
			"$gt": primitive.NewDateTimeFromTime(now),
			"$lt": primitive.NewDateTimeFromTime(windowEnd),
		},
		"$or": []bson.M{
			{"reminderSentAt": nil},
			{"reminderSentAt": bson.M{"$lt": primitive.NewDateTimeFromTime(now.Add(-models.ExpiringSoonDays * 24 * time.Hour))}},
		},
	})
	if err != nil {
		zap.S().Errorw("failed to find expiring subscriptions", "error", err)
		return
	}

	sent := 0
	for _, sub := range subs {
		if s.remindClub(ctx, sub, now) {
			sent++
		}
	}

	zap.S().Infow("Renewal reminder job complete", "expiring", len(subs), "remindersSent", sent)
}

// remindClub sends the reminder to every admin of the club and marks the
// subscription as notified
func (s *Scheduler) remindClub(ctx context.Context, sub models.Subscription, now time.Time) bool {
	clubName := "your club"
	if oid, err := primitive.ObjectIDFromHex(sub.ClubID); err == nil {
		if club, err := s.CDB.FindOne(ctx, bson.M{"_id": oid}); err == nil {
			clubName = club.Name
		}
	}

	admins, err := s.UDB.Find(ctx, bson.M{"clubId": sub.ClubID, "role": models.RoleAdmin})
	if err != nil || len(admins) == 0 {
		zap.S().Warnw("no admins to remind for club", "clubId", sub.ClubID, "error", err)
		return false
	}

	daysLeft := int(sub.CurrentPeriodEnd.Sub(now).Hours() / 24)
	subject := fmt.Sprintf("Your %s subscription expires in %d day(s)", clubName, daysLeft)
	htmlContent := templates.RenderRenewalReminderEmail(clubName, daysLeft, sub.CurrentPeriodEnd)
	plainText := fmt.Sprintf("The subscription for %s expires on %s. Renew from the club dashboard.", clubName, sub.CurrentPeriodEnd.Format("January 2, 2006"))

	delivered := false
	for _, admin := range admins {
		if admin.Email == "" {
			continue
		}
		if err := s.sendEmail(admin.Email, admin.FirstName, subject, htmlContent, plainText); err != nil {
			zap.S().Errorw("failed to send renewal reminder", "email", admin.Email, "error", err)
			continue
		}
		delivered = true
	}

	if delivered {
		if _, err := s.SubDB.UpdateOne(ctx, bson.M{"clubId": sub.ClubID}, bson.M{
			"$set": bson.M{"reminderSentAt": primitive.NewDateTimeFromTime(now)},
		}); err != nil {
			zap.S().Warnw("failed to mark subscription as reminded", "clubId", sub.ClubID, "error", err)
		}
	}
	return delivered
}

func (s *Scheduler) sendEmail(toEmail, toName, subject, htmlContent, plainText string) error {
	from := mail.NewEmail("RideHQ Club Manager", "no-reply@ridehq.app")
	to := mail.NewEmail(toName, toEmail)
	message := mail.NewSingleEmail(from, subject, to, plainText, htmlContent)
	client := sendgrid.NewSendClient(os.Getenv("SENDGRID_API_KEY"))
	response, err := client.Send(message)
	if err != nil {
		return err
	}
	if response.StatusCode >= 400 {
		zap.S().Errorw("sendgrid returned error status", "status", response.StatusCode, "body", response.Body)
	}
	return nil
}
