package handlers

import (
	"encoding/json"
	"net/http"
	"sort"
	"strconv"
	"strings"
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

// Member exported for testing purposes
type Member struct {
	DB   databases.UserDatabase
	CDB  databases.ClubDatabase
	Feed *Feed
}

// MembersHandler returns the full roster of a club. The roster is resolved
// with a single indexed query on clubId; the club's denormalized members
// array is cross-checked against the result and orphaned ids are logged.
func (m Member) MembersHandler(w http.ResponseWriter, r *http.Request) {
	clubID := mux.Vars(r)["club_id"]

	dbResp, err := m.DB.Find(r.Context(), bson.M{"clubId": clubID})
	if err != nil {
		config.ErrorStatus("failed to get members", http.StatusNotFound, w, err)
		return
	}
	if len(dbResp) == 0 {
		dbResp = []models.User{}
	}

	m.auditMembersArray(r, clubID, dbResp)

	b, err := json.Marshal(dbResp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// auditMembersArray flags ids in the club's members array that did not
// resolve to a user document. Not fatal; the users collection is the source
// of truth.
func (m Member) auditMembersArray(r *http.Request, clubID string, resolved []models.User) {
	cID, err := primitive.ObjectIDFromHex(clubID)
	if err != nil {
		return
	}
	club, err := m.CDB.FindOne(r.Context(), bson.M{"_id": cID})
	if err != nil {
		return
	}
	seen := make(map[string]bool, len(resolved))
	for _, u := range resolved {
		seen[u.ID.Hex()] = true
	}
	for _, id := range club.Members {
		if !seen[id] {
			zap.S().Warnw("orphaned member reference in club document",
				"clubId", clubID,
				"userId", id,
			)
		}
	}
}

type memberQuery struct {
	search    string
	role      string
	status    string
	sortField string
	sortDir   string
	page      int
	limit     int
}

func parseMemberQuery(r *http.Request) memberQuery {
	q := memberQuery{
		search:    r.URL.Query().Get("search"),
		role:      r.URL.Query().Get("role"),
		status:    r.URL.Query().Get("status"),
		sortField: r.URL.Query().Get("sort_field"),
		sortDir:   r.URL.Query().Get("sort_dir"),
	}
	q.page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	q.limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	if q.limit <= 0 {
		q.limit = 25
	}
	if q.page < 0 {
		q.page = 0
	}
	if q.sortField == "" {
		q.sortField = "firstName"
	}
	if q.sortDir == "" {
		q.sortDir = "asc"
	}
	return q
}

// memberLess orders two members on the requested field. Timestamps compare as
// time.Time values, not formatted strings, so fractional seconds order
// correctly against whole ones.
func memberLess(a, b models.User, field string) bool {
	switch field {
	case "lastName":
		return strings.ToLower(a.LastName) < strings.ToLower(b.LastName)
	case "email":
		return strings.ToLower(a.Email) < strings.ToLower(b.Email)
	case "createdAt":
		return a.CreatedAt.Before(b.CreatedAt)
	default:
		return strings.ToLower(a.FirstName) < strings.ToLower(b.FirstName)
	}
}

// filterAndSortMembers applies the in-memory search, case-insensitive sort
// and pagination over a resolved roster
func filterAndSortMembers(members []models.User, q memberQuery) ([]models.User, int) {
	filtered := members[:0:0]
	search := strings.ToLower(q.search)
	for _, u := range members {
		if search != "" {
			haystack := strings.ToLower(u.FirstName + " " + u.LastName + " " + u.Email)
			if !strings.Contains(haystack, search) {
				continue
			}
		}
		filtered = append(filtered, u)
	}

	sort.SliceStable(filtered, func(a, b int) bool {
		if q.sortDir == "desc" {
			return memberLess(filtered[b], filtered[a], q.sortField)
		}
		return memberLess(filtered[a], filtered[b], q.sortField)
	})

	total := len(filtered)
	start := q.page * q.limit
	if start > total {
		start = total
	}
	end := start + q.limit
	if end > total {
		end = total
	}
	return filtered[start:end], total
}

// MembersWithQueryHandler returns a paginated, searched and sorted roster.
// Role and status filters run in the store; search, sort and paging run on
// the resolved result set, which is fine at club scale.
func (m Member) MembersWithQueryHandler(w http.ResponseWriter, r *http.Request) {
	clubID := mux.Vars(r)["club_id"]
	q := parseMemberQuery(r)

	filter := bson.M{"clubId": clubID}
	if q.role != "" {
		filter["role"] = q.role
	}
	if q.status != "" {
		filter["status"] = q.status
	}

	dbResp, err := m.DB.Find(r.Context(), filter)
	if err != nil {
		config.ErrorStatus("failed to get members", http.StatusNotFound, w, err)
		return
	}

	pageItems, total := filterAndSortMembers(dbResp, q)
	if len(pageItems) == 0 {
		pageItems = []models.User{}
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"members": pageItems,
		"total":   total,
		"page":    q.page,
		"limit":   q.limit,
	})
}

type addMemberRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	Status    string `json:"status"`
	AgeGroup  string `json:"ageGroup"`
}

// AddMemberHandler creates a member record in the club. The user document is
// created first, then the id is appended to the club's members array.
func (m Member) AddMemberHandler(w http.ResponseWriter, r *http.Request) {
	clubID := mux.Vars(r)["club_id"]

	var req addMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if req.FirstName == "" || req.Email == "" {
		config.ErrorStatus("firstName and email are required", http.StatusBadRequest, w, nil)
		return
	}
	if req.Role == "" || !models.ValidRole(req.Role) {
		config.ErrorStatus("a valid member role is required", http.StatusBadRequest, w, nil)
		return
	}
	if req.Status == "" {
		req.Status = models.MemberStatusPending
	}
	if !models.ValidMemberStatus(req.Status) {
		config.ErrorStatus("unknown member status", http.StatusBadRequest, w, nil)
		return
	}

	now := time.Now()
	user := models.User{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     strings.ToLower(strings.TrimSpace(req.Email)),
		Role:      req.Role,
		Status:    req.Status,
		AgeGroup:  req.AgeGroup,
		ClubID:    clubID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	res, err := m.DB.InsertOne(r.Context(), user)
	if err != nil {
		config.ErrorStatus("failed to create member", http.StatusInternalServerError, w, err)
		return
	}
	id, _ := res.Decode().(primitive.ObjectID)

	cID, err := primitive.ObjectIDFromHex(clubID)
	if err == nil {
		_, err = m.CDB.UpdateOne(r.Context(), bson.M{"_id": cID}, bson.M{"$addToSet": bson.M{"members": id.Hex()}})
	}
	if err != nil {
		zap.S().Warnw("failed to append member to club roster", "clubId", clubID, "userId", id.Hex(), "error", err)
	}

	m.Feed.Publish(clubID, FeedEvent{Kind: "roster.added", Payload: map[string]string{"userId": id.Hex()}})

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]string{"_id": id.Hex()})
}

// fields a member merge-update may touch
var memberPatchFields = map[string]bool{
	"firstName": true,
	"lastName":  true,
	"email":     true,
	"role":      true,
	"status":    true,
	"ageGroup":  true,
}

// UpdateMemberHandler merge-updates a member document. A member can never
// change their own role; the check runs here, not only in the client.
func (m Member) UpdateMemberHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	clubID := vars["club_id"]
	memberID := vars["member_id"]

	uID, err := primitive.ObjectIDFromHex(memberID)
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
		if memberPatchFields[k] {
			set[k] = v
		}
	}
	if len(set) == 0 {
		config.ErrorStatus("no updatable fields in request", http.StatusBadRequest, w, nil)
		return
	}

	if role, ok := set["role"].(string); ok {
		if !models.ValidRole(role) {
			config.ErrorStatus("unknown member role", http.StatusBadRequest, w, nil)
			return
		}
		if api.CallerID(r) == memberID {
			current, err := m.DB.FindOne(r.Context(), bson.M{"_id": uID, "clubId": clubID})
			if err != nil {
				config.ErrorStatus("failed to get member by ID", http.StatusNotFound, w, err)
				return
			}
			if current.Role != role {
				config.ErrorStatus("members cannot change their own role", http.StatusForbidden, w, nil)
				return
			}
		}
	}
	if status, ok := set["status"].(string); ok && !models.ValidMemberStatus(status) {
		config.ErrorStatus("unknown member status", http.StatusBadRequest, w, nil)
		return
	}
	set["updatedAt"] = time.Now()

	matched, err := m.DB.UpdateOne(r.Context(), bson.M{"_id": uID, "clubId": clubID}, bson.M{"$set": set})
	if err != nil {
		config.ErrorStatus("failed to update member", http.StatusInternalServerError, w, err)
		return
	}
	if matched == 0 {
		config.ErrorStatus("member not found", http.StatusNotFound, w, nil)
		return
	}

	m.Feed.Publish(clubID, FeedEvent{Kind: "roster.updated", Payload: map[string]string{"userId": memberID}})

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "updated"})
}

// DeleteMemberHandler removes a member from the club. Two writes are
// involved: pulling the id from the club's members array and clearing the
// user's clubId. If the second write fails the first is compensated by
// re-adding the id, so a half-removed member is never left behind silently.
func (m Member) DeleteMemberHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	clubID := vars["club_id"]
	memberID := vars["member_id"]

	uID, err := primitive.ObjectIDFromHex(memberID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}
	cID, err := primitive.ObjectIDFromHex(clubID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	matched, err := m.CDB.UpdateOne(r.Context(), bson.M{"_id": cID}, bson.M{"$pull": bson.M{"members": memberID}})
	if err != nil {
		config.ErrorStatus("failed to remove member from club roster", http.StatusInternalServerError, w, err)
		return
	}
	if matched == 0 {
		config.ErrorStatus("club not found", http.StatusNotFound, w, nil)
		return
	}

	_, err = m.DB.UpdateOne(r.Context(), bson.M{"_id": uID}, bson.M{"$set": bson.M{"clubId": "", "updatedAt": time.Now()}})
	if err != nil {
		// compensate: put the id back so the roster and the user agree
		if _, cerr := m.CDB.UpdateOne(r.Context(), bson.M{"_id": cID}, bson.M{"$addToSet": bson.M{"members": memberID}}); cerr != nil {
			zap.S().Errorw("member delete left inconsistent state: id pulled from roster but clubId not cleared",
				"clubId", clubID,
				"userId", memberID,
				"error", cerr,
			)
		}
		config.ErrorStatus("failed to detach member", http.StatusInternalServerError, w, err)
		return
	}

	m.Feed.Publish(clubID, FeedEvent{Kind: "roster.removed", Payload: map[string]string{"userId": memberID}})

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "deleted"})
}
