package handlers

import (
	"crypto/rand"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/ridehq/club-manager-api/api"
	"github.com/ridehq/club-manager-api/config"
	"github.com/ridehq/club-manager-api/databases"
	"github.com/ridehq/club-manager-api/models"
	templates "github.com/ridehq/club-manager-api/templates/html"
)

const inviteCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// codeGenAttempts bounds the collision-regenerate loop on create
const codeGenAttempts = 5

// Invite exported for testing purposes
type Invite struct {
	DB  databases.InviteDatabase
	CDB databases.ClubDatabase
}

type createInviteRequest struct {
	Type      string     `json:"type"`
	MaxUses   int        `json:"maxUses"`
	Role      string     `json:"role"`
	Tags      []string   `json:"tags"`
	ExpiresAt *time.Time `json:"expiresAt"`
	Email     string     `json:"email"`
}

// GenerateInviteCode builds a code of the form CLUB-{ROLE}-{4 uppercase
// alphanumerics}
func GenerateInviteCode(role string) (string, error) {
	suffix := make([]byte, 4)
	for i := range suffix {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(inviteCodeAlphabet))))
		if err != nil {
			return "", err
		}
		suffix[i] = inviteCodeAlphabet[n.Int64()]
	}
	return fmt.Sprintf("CLUB-%s-%s", strings.ToUpper(role), string(suffix)), nil
}

// redeemableFilter matches an invite document only while it is still active:
// not revoked, not past its expiry, and not exhausted unless unlimited. Used
// as the filter of the consuming increment so redemption stays atomic.
func redeemableFilter(code string, now time.Time) bson.M {
	return bson.M{
		"code":   code,
		"status": bson.M{"$ne": models.InviteStatusRevoked},
		"$and": []bson.M{
			{"$or": []bson.M{
				{"expiresAt": bson.M{"$exists": false}},
				{"expiresAt": nil},
				{"expiresAt": bson.M{"$gt": now}},
			}},
			{"$or": []bson.M{
				{"type": models.InviteTypeUnlimited},
				{"$expr": bson.M{"$lt": bson.A{"$used", "$maxUses"}}},
			}},
		},
	}
}

// CreateInviteHandler creates an invite code for a club. Role is required;
// generated codes are checked against existing ones and regenerated on
// collision rather than silently overwriting.
func (i Invite) CreateInviteHandler(w http.ResponseWriter, r *http.Request) {
	clubID := mux.Vars(r)["club_id"]

	var req createInviteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	if req.Role == "" {
		config.ErrorStatus("invite role is required", http.StatusBadRequest, w, nil)
		return
	}
	if !models.ValidRole(req.Role) {
		config.ErrorStatus("unknown invite role", http.StatusBadRequest, w, nil)
		return
	}
	if req.Type == "" {
		req.Type = models.InviteTypeSingle
	}
	if !models.ValidInviteType(req.Type) {
		config.ErrorStatus("unknown invite type", http.StatusBadRequest, w, nil)
		return
	}

	maxUses := req.MaxUses
	switch req.Type {
	case models.InviteTypeSingle:
		maxUses = 1
	case models.InviteTypeMulti:
		if maxUses < 1 {
			config.ErrorStatus("maxUses must be at least 1 for multi invites", http.StatusBadRequest, w, nil)
			return
		}
	case models.InviteTypeUnlimited:
		maxUses = 0
	}

	var invite models.Invite
	for attempt := 0; ; attempt++ {
		if attempt == codeGenAttempts {
			config.ErrorStatus("failed to generate a unique invite code", http.StatusConflict, w, nil)
			return
		}
		code, err := GenerateInviteCode(req.Role)
		if err != nil {
			config.ErrorStatus("failed to generate invite code", http.StatusInternalServerError, w, err)
			return
		}
		count, err := i.DB.CountDocuments(r.Context(), bson.M{"code": code})
		if err != nil {
			config.ErrorStatus("failed to check invite code uniqueness", http.StatusInternalServerError, w, err)
			return
		}
		if count > 0 {
			zap.S().Warnw("invite code collision, regenerating", "code", code)
			continue
		}

		invite = models.Invite{
			Code:      code,
			ClubID:    clubID,
			Type:      req.Type,
			MaxUses:   maxUses,
			Used:      0,
			Role:      req.Role,
			Tags:      req.Tags,
			ExpiresAt: req.ExpiresAt,
			Status:    models.InviteStatusActive,
			CreatedBy: api.CallerID(r),
			CreatedAt: time.Now(),
		}

		if _, err := i.DB.InsertOne(r.Context(), invite); err != nil {
			// the unique index on code catches the writer that lost a race
			// past the count check; treat it like any other collision
			if mongo.IsDuplicateKeyError(err) {
				zap.S().Warnw("invite code collision on insert, regenerating", "code", code)
				continue
			}
			config.ErrorStatus("failed to create invite", http.StatusInternalServerError, w, err)
			return
		}
		break
	}

	if req.Email != "" {
		go i.sendInviteEmail(clubID, req.Email, invite)
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(invite)
}

// ListInvitesHandler returns all invites for a club with the status of each
// row computed at read time
func (i Invite) ListInvitesHandler(w http.ResponseWriter, r *http.Request) {
	clubID := mux.Vars(r)["club_id"]

	dbResp, err := i.DB.Find(r.Context(), bson.M{"clubId": clubID})
	if err != nil {
		config.ErrorStatus("failed to get invites", http.StatusNotFound, w, err)
		return
	}
	if len(dbResp) == 0 {
		dbResp = []models.Invite{}
	}

	now := time.Now()
	for idx := range dbResp {
		dbResp[idx].Status = dbResp[idx].EffectiveStatus(now)
	}

	b, err := json.Marshal(dbResp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// InviteByCodeHandler returns an invite code by its code for the public join
// flow. Codes that are no longer active respond with 410 Gone.
func (i Invite) InviteByCodeHandler(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]
	if code == "" {
		config.ErrorStatus("invite code is required", http.StatusBadRequest, w, nil)
		return
	}

	invite, err := i.DB.FindOne(r.Context(), bson.M{"code": code})
	if err != nil {
		config.ErrorStatus("failed to find invite code", http.StatusNotFound, w, err)
		return
	}

	invite.Status = invite.EffectiveStatus(time.Now())
	if invite.Status != models.InviteStatusActive {
		w.WriteHeader(http.StatusGone)
		json.NewEncoder(w).Encode(map[string]string{"status": invite.Status})
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(invite)
}

// RedeemInviteHandler consumes one use of an invite code. The increment is
// filtered on the code still being active, so concurrent redemptions can
// never push a code past its limit.
func (i Invite) RedeemInviteHandler(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	matched, err := i.DB.UpdateOne(r.Context(), redeemableFilter(code, time.Now()), bson.M{"$inc": bson.M{"used": 1}})
	if err != nil {
		config.ErrorStatus("failed to redeem invite code", http.StatusInternalServerError, w, err)
		return
	}
	if matched == 0 {
		config.ErrorStatus("invite code is no longer active", http.StatusGone, w, nil)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "redeemed"})
}

// RevokeInviteHandler marks an invite as revoked. Revocation is idempotent
// and permanent; a revoked code is never resurrected.
func (i Invite) RevokeInviteHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	clubID := vars["club_id"]
	code := vars["code"]

	matched, err := i.DB.UpdateOne(r.Context(),
		bson.M{"clubId": clubID, "code": code},
		bson.M{"$set": bson.M{"status": models.InviteStatusRevoked}},
	)
	if err != nil {
		config.ErrorStatus("failed to revoke invite", http.StatusInternalServerError, w, err)
		return
	}
	if matched == 0 {
		config.ErrorStatus("invite not found", http.StatusNotFound, w, nil)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": models.InviteStatusRevoked})
}

// DeleteInviteHandler hard-deletes an invite code. Members who joined through
// the code are unaffected.
func (i Invite) DeleteInviteHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	clubID := vars["club_id"]
	code := vars["code"]

	deleted, err := i.DB.DeleteOne(r.Context(), bson.M{"clubId": clubID, "code": code})
	if err != nil {
		config.ErrorStatus("failed to delete invite", http.StatusInternalServerError, w, err)
		return
	}
	if deleted == 0 {
		config.ErrorStatus("invite not found", http.StatusNotFound, w, nil)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "deleted"})
}

func (i Invite) sendInviteEmail(clubID, email string, invite models.Invite) {
	ctx, cancel := api.WithQueryTimeout(nil)
	defer cancel()

	clubName := "your club"
	if oid, err := primitive.ObjectIDFromHex(clubID); err == nil {
		if club, err := i.CDB.FindOne(ctx, bson.M{"_id": oid}); err == nil {
			clubName = club.Name
		}
	}

	joinURL := fmt.Sprintf("%s/join?code=%s", os.Getenv("BASE_URL"), invite.Code)
	from := mail.NewEmail("RideHQ Club Manager", "no-reply@ridehq.app")
	to := mail.NewEmail("", email)
	subject := fmt.Sprintf("You're invited to join %s", clubName)
	htmlContent := templates.RenderInviteEmail(clubName, invite.Code, invite.Role, joinURL, invite.ExpiresAt)
	plainText := fmt.Sprintf("Use invite code %s to join %s: %s", invite.Code, clubName, joinURL)

	message := mail.NewSingleEmail(from, subject, to, plainText, htmlContent)
	client := sendgrid.NewSendClient(os.Getenv("SENDGRID_API_KEY"))
	response, err := client.Send(message)
	if err != nil {
		zap.S().Errorw("failed to send invite email", "email", email, "error", err)
		return
	}
	if response.StatusCode >= 400 {
		zap.S().Errorw("sendgrid returned error status", "status", response.StatusCode, "body", response.Body)
	}
}
