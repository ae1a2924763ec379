package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/ridehq/club-manager-api/api"
	"github.com/ridehq/club-manager-api/config"
	"github.com/ridehq/club-manager-api/databases"
	"github.com/ridehq/club-manager-api/models"
)

// Club exported for testing purposes
type Club struct {
	DB   databases.ClubDatabase
	UDB  databases.UserDatabase
	IDB  databases.InviteDatabase
	Feed *Feed
}

type createClubRequest struct {
	Name    string `json:"name"`
	LogoURL string `json:"logoUrl"`
}

// CreateClubHandler creates a club owned by the authenticated user. The
// creator becomes the first member with the admin role.
func (c Club) CreateClubHandler(w http.ResponseWriter, r *http.Request) {
	var req createClubRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if req.Name == "" {
		config.ErrorStatus("club name is required", http.StatusBadRequest, w, nil)
		return
	}

	callerID := api.CallerID(r)
	slug := models.Slugify(req.Name)

	count, err := c.DB.CountDocuments(r.Context(), bson.M{"formattedName": slug})
	if err != nil {
		config.ErrorStatus("failed to check club name", http.StatusInternalServerError, w, err)
		return
	}
	if count > 0 {
		config.ErrorStatus("a club with that name already exists", http.StatusConflict, w, nil)
		return
	}

	club := models.Club{
		Name:          req.Name,
		FormattedName: slug,
		LogoURL:       req.LogoURL,
		CreatedBy:     callerID,
		Members:       []string{callerID},
		CreatedAt:     time.Now(),
	}

	res, err := c.DB.InsertOne(r.Context(), club)
	if err != nil {
		config.ErrorStatus("failed to create club", http.StatusInternalServerError, w, err)
		return
	}
	id, _ := res.Decode().(primitive.ObjectID)

	// the creator joins their own club as admin
	uID, err := primitive.ObjectIDFromHex(callerID)
	if err == nil {
		_, err = c.UDB.UpdateOne(r.Context(), bson.M{"_id": uID}, bson.M{"$set": bson.M{
			"clubId":    id.Hex(),
			"role":      models.RoleAdmin,
			"status":    models.MemberStatusActive,
			"updatedAt": time.Now(),
		}})
	}
	if err != nil {
		zap.S().Warnw("failed to attach creator to club", "clubId", id.Hex(), "error", err)
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]string{"_id": id.Hex(), "formattedName": slug})
}

// ClubHandler returns a club by ID
func (c Club) ClubHandler(w http.ResponseWriter, r *http.Request) {
	clubID := mux.Vars(r)["club_id"]

	zap.S().Debugf("club_id: %v", clubID)

	cID, err := primitive.ObjectIDFromHex(clubID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	dbResp, err := c.DB.FindOne(r.Context(), bson.M{"_id": cID})
	if err != nil {
		config.ErrorStatus("failed to get club by ID", http.StatusNotFound, w, err)
		return
	}

	b, err := json.Marshal(dbResp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// ClubByUserIDHandler returns the club the given user belongs to
func (c Club) ClubByUserIDHandler(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["user_id"]

	uID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	user, err := c.UDB.FindOne(r.Context(), bson.M{"_id": uID})
	if err != nil {
		config.ErrorStatus("failed to get user by ID", http.StatusNotFound, w, err)
		return
	}
	if user.ClubID == "" {
		config.ErrorStatus("user does not belong to a club", http.StatusNotFound, w, nil)
		return
	}

	clubOID, err := primitive.ObjectIDFromHex(user.ClubID)
	if err != nil {
		config.ErrorStatus("user has a malformed club reference", http.StatusInternalServerError, w, err)
		return
	}

	dbResp, err := c.DB.FindOne(r.Context(), bson.M{"_id": clubOID})
	if err != nil {
		config.ErrorStatus("failed to get club by ID", http.StatusNotFound, w, err)
		return
	}

	b, err := json.Marshal(dbResp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// allowed PATCH fields on a club document
var clubPatchFields = map[string]bool{
	"name":    true,
	"logoUrl": true,
}

// UpdateClubFieldHandler merges whitelisted fields into the club document
func (c Club) UpdateClubFieldHandler(w http.ResponseWriter, r *http.Request) {
	clubID := mux.Vars(r)["club_id"]

	cID, err := primitive.ObjectIDFromHex(clubID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	var patch map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	set := bson.M{}
	for k, v := range patch {
		if clubPatchFields[k] {
			set[k] = v
		}
	}
	if name, ok := set["name"].(string); ok && name != "" {
		set["formattedName"] = models.Slugify(name)
	}
	if len(set) == 0 {
		config.ErrorStatus("no updatable fields in request", http.StatusBadRequest, w, nil)
		return
	}

	matched, err := c.DB.UpdateOne(r.Context(), bson.M{"_id": cID}, bson.M{"$set": set})
	if err != nil {
		config.ErrorStatus("failed to update club", http.StatusInternalServerError, w, err)
		return
	}
	if matched == 0 {
		config.ErrorStatus("club not found", http.StatusNotFound, w, nil)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "updated"})
}

// DeleteClubByIDHandler removes the club, detaches its members and drops its
// invite codes
func (c Club) DeleteClubByIDHandler(w http.ResponseWriter, r *http.Request) {
	clubID := mux.Vars(r)["club_id"]

	cID, err := primitive.ObjectIDFromHex(clubID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	deleted, err := c.DB.DeleteOne(r.Context(), bson.M{"_id": cID})
	if err != nil {
		config.ErrorStatus("failed to delete club", http.StatusInternalServerError, w, err)
		return
	}
	if deleted == 0 {
		config.ErrorStatus("club not found", http.StatusNotFound, w, nil)
		return
	}

	if _, err := c.IDB.DeleteMany(r.Context(), bson.M{"clubId": clubID}); err != nil {
		zap.S().Warnw("failed to delete club invites", "clubId", clubID, "error", err)
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "deleted"})
}

type joinClubRequest struct {
	Code string `json:"code"`
}

// JoinClubHandler redeems an invite code for the authenticated user and adds
// them to the club's roster with the role carried by the code. The code is
// consumed with a filtered increment so that an exhausted or expired code can
// never be redeemed twice past its limit.
func (c Club) JoinClubHandler(w http.ResponseWriter, r *http.Request) {
	var req joinClubRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if req.Code == "" {
		config.ErrorStatus("invite code is required", http.StatusBadRequest, w, nil)
		return
	}

	invite, err := c.IDB.FindOne(r.Context(), bson.M{"code": req.Code})
	if err != nil {
		config.ErrorStatus("failed to find invite code", http.StatusNotFound, w, err)
		return
	}

	matched, err := c.IDB.UpdateOne(r.Context(), redeemableFilter(req.Code, time.Now()), bson.M{"$inc": bson.M{"used": 1}})
	if err != nil {
		config.ErrorStatus("failed to redeem invite code", http.StatusInternalServerError, w, err)
		return
	}
	if matched == 0 {
		config.ErrorStatus("invite code is no longer active", http.StatusGone, w, nil)
		return
	}

	callerID := api.CallerID(r)
	uID, err := primitive.ObjectIDFromHex(callerID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	now := time.Now()
	_, err = c.UDB.UpdateOne(r.Context(), bson.M{"_id": uID}, bson.M{"$set": bson.M{
		"clubId":    invite.ClubID,
		"role":      invite.Role,
		"status":    models.MemberStatusActive,
		"updatedAt": now,
	}})
	if err != nil {
		config.ErrorStatus("failed to attach user to club", http.StatusInternalServerError, w, err)
		return
	}

	clubOID, err := primitive.ObjectIDFromHex(invite.ClubID)
	if err == nil {
		_, err = c.DB.UpdateOne(r.Context(), bson.M{"_id": clubOID}, bson.M{"$addToSet": bson.M{"members": callerID}})
	}
	if err != nil {
		zap.S().Warnw("failed to append member to club roster", "clubId", invite.ClubID, "userId", callerID, "error", err)
	}

	c.Feed.Publish(invite.ClubID, FeedEvent{Kind: "roster.joined", Payload: map[string]string{"userId": callerID, "role": invite.Role}})

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"clubId": invite.ClubID, "role": invite.Role})
}
