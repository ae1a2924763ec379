package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ridehq/club-manager-api/config"
	"github.com/ridehq/club-manager-api/databases"
	"github.com/ridehq/club-manager-api/models"
)

// Treasury exported for testing purposes
type Treasury struct {
	DB   databases.TreasuryDatabase
	Feed *Feed
}

type addEntryRequest struct {
	Type        string    `json:"type"`
	Amount      float64   `json:"amount"`
	Date        time.Time `json:"date"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	MemberID    string    `json:"memberId"`
	MemberName  string    `json:"memberName"`
}

// AddEntryHandler appends an entry to the club ledger. Amounts are stored
// positive for both entry types.
func (t Treasury) AddEntryHandler(w http.ResponseWriter, r *http.Request) {
	clubID := mux.Vars(r)["club_id"]

	var req addEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if req.Type != models.TreasuryTypeIncome && req.Type != models.TreasuryTypeExpense {
		config.ErrorStatus("type must be income or expense", http.StatusBadRequest, w, nil)
		return
	}
	if req.Amount < 0 {
		config.ErrorStatus("amount must not be negative", http.StatusBadRequest, w, nil)
		return
	}
	if req.Date.IsZero() {
		req.Date = time.Now()
	}

	entry := models.TreasuryEntry{
		ID:          uuid.New().String(),
		ClubID:      clubID,
		Type:        req.Type,
		Amount:      req.Amount,
		Date:        req.Date,
		Description: req.Description,
		Category:    req.Category,
		MemberID:    req.MemberID,
		MemberName:  req.MemberName,
		CreatedAt:   time.Now(),
	}

	if _, err := t.DB.InsertOne(r.Context(), entry); err != nil {
		config.ErrorStatus("failed to add treasury entry", http.StatusInternalServerError, w, err)
		return
	}

	t.Feed.Publish(clubID, FeedEvent{Kind: "treasury.added", Payload: map[string]string{"entryId": entry.ID}})

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(entry)
}

// entriesFilter translates the query string filters into store predicates
func entriesFilter(clubID string, r *http.Request) bson.M {
	filter := bson.M{"clubId": clubID}
	q := r.URL.Query()
	if v := q.Get("type"); v != "" {
		filter["type"] = v
	}
	if v := q.Get("category"); v != "" {
		filter["category"] = v
	}
	if v := q.Get("member_id"); v != "" {
		filter["memberId"] = v
	}
	dateRange := bson.M{}
	if v := q.Get("from"); v != "" {
		if from, err := time.Parse(time.RFC3339, v); err == nil {
			dateRange["$gte"] = from
		}
	}
	if v := q.Get("to"); v != "" {
		if to, err := time.Parse(time.RFC3339, v); err == nil {
			dateRange["$lte"] = to
		}
	}
	if len(dateRange) > 0 {
		filter["date"] = dateRange
	}
	return filter
}

// EntriesHandler returns ledger entries with compound filtering, always
// ordered by date descending
func (t Treasury) EntriesHandler(w http.ResponseWriter, r *http.Request) {
	clubID := mux.Vars(r)["club_id"]

	sortOpts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}})
	dbResp, err := t.DB.Find(r.Context(), entriesFilter(clubID, r), sortOpts)
	if err != nil {
		config.ErrorStatus("failed to get treasury entries", http.StatusNotFound, w, err)
		return
	}
	if len(dbResp) == 0 {
		dbResp = []models.TreasuryEntry{}
	}

	b, err := json.Marshal(dbResp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// SummaryHandler returns the ledger totals and balance
func (t Treasury) SummaryHandler(w http.ResponseWriter, r *http.Request) {
	clubID := mux.Vars(r)["club_id"]

	dbResp, err := t.DB.Find(r.Context(), entriesFilter(clubID, r))
	if err != nil {
		config.ErrorStatus("failed to get treasury entries", http.StatusNotFound, w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(models.SummarizeTreasury(dbResp))
}

// ExportCSVHandler streams the ledger as a CSV download. Expense amounts are
// negated in the export only; stored entries stay positive.
func (t Treasury) ExportCSVHandler(w http.ResponseWriter, r *http.Request) {
	clubID := mux.Vars(r)["club_id"]

	sortOpts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}})
	dbResp, err := t.DB.Find(r.Context(), entriesFilter(clubID, r), sortOpts)
	if err != nil {
		config.ErrorStatus("failed to get treasury entries", http.StatusNotFound, w, err)
		return
	}

	csvBody, err := models.TreasuryCSV(dbResp)
	if err != nil {
		config.ErrorStatus("failed to build csv export", http.StatusInternalServerError, w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="treasury-%s.csv"`, clubID))
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(csvBody))
}

// DeleteEntryHandler removes a single ledger entry; edits are not modeled,
// only add and delete
func (t Treasury) DeleteEntryHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	clubID := vars["club_id"]
	entryID := vars["entry_id"]

	deleted, err := t.DB.DeleteOne(r.Context(), bson.M{"_id": entryID, "clubId": clubID})
	if err != nil {
		config.ErrorStatus("failed to delete treasury entry", http.StatusInternalServerError, w, err)
		return
	}
	if deleted == 0 {
		config.ErrorStatus("treasury entry not found", http.StatusNotFound, w, nil)
		return
	}

	t.Feed.Publish(clubID, FeedEvent{Kind: "treasury.deleted", Payload: map[string]string{"entryId": entryID}})

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "deleted"})
}
