package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/ridehq/club-manager-api/config"
	"github.com/ridehq/club-manager-api/databases"
	"github.com/ridehq/club-manager-api/models"
)

// Website exported for testing purposes
type Website struct {
	DB   databases.WebsiteDatabase
	SDB  databases.SectionDatabase
	Feed *Feed
}

// fields the content merge-update may touch
var contentPatchFields = map[string]bool{
	"headline":       true,
	"subtext":        true,
	"bannerImageUrl": true,
	"logoUrl":        true,
}

// getContent loads the club's website document, returning an empty one when
// the club has not published anything yet
func (ws Website) getContent(r *http.Request, clubID string) (*models.WebsiteContent, error) {
	content, err := ws.DB.FindOne(r.Context(), bson.M{"_id": clubID})
	if errors.Is(err, mongo.ErrNoDocuments) {
		return &models.WebsiteContent{
			ClubID:  clubID,
			Gallery: []models.GalleryImage{},
			Events:  []models.WebsiteEvent{},
		}, nil
	}
	if err != nil {
		return nil, err
	}
	if content.Gallery == nil {
		content.Gallery = []models.GalleryImage{}
	}
	if content.Events == nil {
		content.Events = []models.WebsiteEvent{}
	}
	return content, nil
}

// ContentHandler returns the website content document for a club. Clubs with
// no content yet get an empty document rather than a 404, so the public page
// can always render.
func (ws Website) ContentHandler(w http.ResponseWriter, r *http.Request) {
	clubID := mux.Vars(r)["club_id"]

	content, err := ws.getContent(r, clubID)
	if err != nil {
		config.ErrorStatus("failed to get website content", http.StatusInternalServerError, w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(content)
}

// UpdateContentHandler merges whitelisted fields into the website document,
// creating it on first write
func (ws Website) UpdateContentHandler(w http.ResponseWriter, r *http.Request) {
	clubID := mux.Vars(r)["club_id"]

	var patch map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	set := bson.M{}
	for k, v := range patch {
		if contentPatchFields[k] {
			set[k] = v
		}
	}
	if len(set) == 0 {
		config.ErrorStatus("no updatable fields in request", http.StatusBadRequest, w, nil)
		return
	}
	set["updatedAt"] = time.Now()

	_, err := ws.DB.UpdateOne(r.Context(), bson.M{"_id": clubID}, bson.M{"$set": set}, options.Update().SetUpsert(true))
	if err != nil {
		config.ErrorStatus("failed to update website content", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "updated"})
}

// persistContent writes back the full gallery and events arrays after an
// in-memory edit
func (ws Website) persistContent(r *http.Request, content *models.WebsiteContent) error {
	content.UpdatedAt = time.Now()
	_, err := ws.DB.UpdateOne(r.Context(), bson.M{"_id": content.ClubID}, bson.M{"$set": bson.M{
		"gallery":   content.Gallery,
		"events":    content.Events,
		"updatedAt": content.UpdatedAt,
	}}, options.Update().SetUpsert(true))
	return err
}

type galleryImageRequest struct {
	URL     string `json:"url"`
	Caption string `json:"caption"`
}

// AddGalleryImageHandler appends an image to the website gallery
func (ws Website) AddGalleryImageHandler(w http.ResponseWriter, r *http.Request) {
	clubID := mux.Vars(r)["club_id"]

	var req galleryImageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if req.URL == "" {
		config.ErrorStatus("image url is required", http.StatusBadRequest, w, nil)
		return
	}

	content, err := ws.getContent(r, clubID)
	if err != nil {
		config.ErrorStatus("failed to get website content", http.StatusInternalServerError, w, err)
		return
	}

	image := models.GalleryImage{
		ID:      uuid.New().String(),
		URL:     req.URL,
		Caption: req.Caption,
		Order:   len(content.Gallery) + 1,
	}
	content.Gallery = append(content.Gallery, image)

	if err := ws.persistContent(r, content); err != nil {
		config.ErrorStatus("failed to save gallery", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(image)
}

// DeleteGalleryImageHandler removes an image and renumbers the remaining
// gallery 1..n
func (ws Website) DeleteGalleryImageHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	clubID := vars["club_id"]
	imageID := vars["image_id"]

	content, err := ws.getContent(r, clubID)
	if err != nil {
		config.ErrorStatus("failed to get website content", http.StatusInternalServerError, w, err)
		return
	}

	kept := content.Gallery[:0:0]
	for _, img := range content.Gallery {
		if img.ID != imageID {
			kept = append(kept, img)
		}
	}
	if len(kept) == len(content.Gallery) {
		config.ErrorStatus("gallery image not found", http.StatusNotFound, w, nil)
		return
	}
	for i := range kept {
		kept[i].Order = i + 1
	}
	content.Gallery = kept

	if err := ws.persistContent(r, content); err != nil {
		config.ErrorStatus("failed to save gallery", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "deleted"})
}

type eventRequest struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`
	ImageURL    string    `json:"imageUrl"`
}

// AddEventHandler appends an event to the website
func (ws Website) AddEventHandler(w http.ResponseWriter, r *http.Request) {
	clubID := mux.Vars(r)["club_id"]

	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if req.Title == "" {
		config.ErrorStatus("event title is required", http.StatusBadRequest, w, nil)
		return
	}

	content, err := ws.getContent(r, clubID)
	if err != nil {
		config.ErrorStatus("failed to get website content", http.StatusInternalServerError, w, err)
		return
	}

	event := models.WebsiteEvent{
		ID:          uuid.New().String(),
		Title:       req.Title,
		Description: req.Description,
		Date:        req.Date,
		ImageURL:    req.ImageURL,
		Order:       len(content.Events) + 1,
	}
	content.Events = append(content.Events, event)

	if err := ws.persistContent(r, content); err != nil {
		config.ErrorStatus("failed to save events", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(event)
}

// UpdateEventHandler edits an event in place
func (ws Website) UpdateEventHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	clubID := vars["club_id"]
	eventID := vars["event_id"]

	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	content, err := ws.getContent(r, clubID)
	if err != nil {
		config.ErrorStatus("failed to get website content", http.StatusInternalServerError, w, err)
		return
	}

	found := false
	for i := range content.Events {
		if content.Events[i].ID == eventID {
			if req.Title != "" {
				content.Events[i].Title = req.Title
			}
			content.Events[i].Description = req.Description
			if !req.Date.IsZero() {
				content.Events[i].Date = req.Date
			}
			if req.ImageURL != "" {
				content.Events[i].ImageURL = req.ImageURL
			}
			found = true
			break
		}
	}
	if !found {
		config.ErrorStatus("event not found", http.StatusNotFound, w, nil)
		return
	}

	if err := ws.persistContent(r, content); err != nil {
		config.ErrorStatus("failed to save events", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "updated"})
}

// DeleteEventHandler removes an event and renumbers the rest
func (ws Website) DeleteEventHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	clubID := vars["club_id"]
	eventID := vars["event_id"]

	content, err := ws.getContent(r, clubID)
	if err != nil {
		config.ErrorStatus("failed to get website content", http.StatusInternalServerError, w, err)
		return
	}

	kept := content.Events[:0:0]
	for _, ev := range content.Events {
		if ev.ID != eventID {
			kept = append(kept, ev)
		}
	}
	if len(kept) == len(content.Events) {
		config.ErrorStatus("event not found", http.StatusNotFound, w, nil)
		return
	}
	for i := range kept {
		kept[i].Order = i + 1
	}
	content.Events = kept

	if err := ws.persistContent(r, content); err != nil {
		config.ErrorStatus("failed to save events", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "deleted"})
}

// SectionsHandler returns the club's sections ordered for display
func (ws Website) SectionsHandler(w http.ResponseWriter, r *http.Request) {
	clubID := mux.Vars(r)["club_id"]

	sortOpts := options.Find().SetSort(bson.D{{Key: "order", Value: 1}})
	dbResp, err := ws.SDB.Find(r.Context(), bson.M{"clubId": clubID}, sortOpts)
	if err != nil {
		config.ErrorStatus("failed to get sections", http.StatusNotFound, w, err)
		return
	}
	if len(dbResp) == 0 {
		dbResp = []models.Section{}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(dbResp)
}

type createSectionRequest struct {
	Title string `json:"title"`
}

// CreateSectionHandler appends a new section at the end of the order
func (ws Website) CreateSectionHandler(w http.ResponseWriter, r *http.Request) {
	clubID := mux.Vars(r)["club_id"]

	var req createSectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if req.Title == "" {
		config.ErrorStatus("section title is required", http.StatusBadRequest, w, nil)
		return
	}

	count, err := ws.SDB.CountDocuments(r.Context(), bson.M{"clubId": clubID})
	if err != nil {
		config.ErrorStatus("failed to count sections", http.StatusInternalServerError, w, err)
		return
	}

	section := models.Section{
		ClubID:    clubID,
		Title:     req.Title,
		Order:     int(count) + 1,
		Version:   1,
		Cards:     []models.Card{},
		CreatedAt: time.Now(),
	}

	res, err := ws.SDB.InsertOne(r.Context(), section)
	if err != nil {
		config.ErrorStatus("failed to create section", http.StatusInternalServerError, w, err)
		return
	}
	id, _ := res.Decode().(primitive.ObjectID)
	section.ID = id

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(section)
}

// DeleteSectionHandler removes a section and renumbers the remaining ones to
// keep the order sequence gapless
func (ws Website) DeleteSectionHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	clubID := vars["club_id"]
	sectionID := vars["section_id"]

	sID, err := primitive.ObjectIDFromHex(sectionID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	deleted, err := ws.SDB.DeleteOne(r.Context(), bson.M{"_id": sID, "clubId": clubID})
	if err != nil {
		config.ErrorStatus("failed to delete section", http.StatusInternalServerError, w, err)
		return
	}
	if deleted == 0 {
		config.ErrorStatus("section not found", http.StatusNotFound, w, nil)
		return
	}

	// close the gap left by the deleted section
	sortOpts := options.Find().SetSort(bson.D{{Key: "order", Value: 1}})
	remaining, err := ws.SDB.Find(r.Context(), bson.M{"clubId": clubID}, sortOpts)
	if err == nil {
		for i, s := range remaining {
			if s.Order != i+1 {
				if _, err := ws.SDB.UpdateOne(r.Context(), bson.M{"_id": s.ID}, bson.M{"$set": bson.M{"order": i + 1}, "$inc": bson.M{"version": 1}}); err != nil {
					zap.S().Warnw("failed to close section order gap", "clubId", clubID, "sectionId", s.ID.Hex(), "error", err)
				}
			}
		}
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "deleted"})
}

type moveRequest struct {
	Direction string `json:"direction"`
	Version   int64  `json:"version"`
}

// MoveSectionHandler swaps a section with its neighbour. The request carries
// the version the editor last saw; a concurrent edit bumps the version and
// the stale move is rejected with 409 instead of silently winning.
func (ws Website) MoveSectionHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	clubID := vars["club_id"]
	sectionID := vars["section_id"]

	var req moveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	sortOpts := options.Find().SetSort(bson.D{{Key: "order", Value: 1}})
	sections, err := ws.SDB.Find(r.Context(), bson.M{"clubId": clubID}, sortOpts)
	if err != nil {
		config.ErrorStatus("failed to get sections", http.StatusNotFound, w, err)
		return
	}

	reordered, err := models.MoveSection(sections, sectionID, req.Direction)
	if errors.Is(err, models.ErrItemNotFound) {
		config.ErrorStatus("section not found", http.StatusNotFound, w, err)
		return
	}
	if errors.Is(err, models.ErrMoveOutOfRange) {
		config.ErrorStatus("section is already at the edge", http.StatusBadRequest, w, err)
		return
	}
	if err != nil {
		config.ErrorStatus("failed to move section", http.StatusBadRequest, w, err)
		return
	}

	// the moved section carries the conflict guard, so it is written first; a
	// stale move must be rejected before any neighbour is renumbered
	sID, _ := primitive.ObjectIDFromHex(sectionID)
	for _, s := range reordered {
		if s.ID != sID {
			continue
		}
		matched, err := ws.SDB.UpdateOne(r.Context(), bson.M{"_id": s.ID, "version": req.Version}, bson.M{"$set": bson.M{"order": s.Order}, "$inc": bson.M{"version": 1}})
		if err != nil {
			config.ErrorStatus("failed to persist section order", http.StatusInternalServerError, w, err)
			return
		}
		if matched == 0 {
			config.ErrorStatus("section was modified by another editor", http.StatusConflict, w, nil)
			return
		}
	}
	for _, s := range reordered {
		if s.ID == sID {
			continue
		}
		if _, err := ws.SDB.UpdateOne(r.Context(), bson.M{"_id": s.ID}, bson.M{"$set": bson.M{"order": s.Order}, "$inc": bson.M{"version": 1}}); err != nil {
			config.ErrorStatus("failed to persist section order", http.StatusInternalServerError, w, err)
			return
		}
	}

	ws.Feed.Publish(clubID, FeedEvent{Kind: "website.sections.reordered", Payload: map[string]string{"sectionId": sectionID}})

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "moved"})
}

type cardRequest struct {
	Title    string `json:"title"`
	Body     string `json:"body"`
	ImageURL string `json:"imageUrl"`
}

func (ws Website) findSection(r *http.Request, clubID, sectionID string) (*models.Section, error) {
	sID, err := primitive.ObjectIDFromHex(sectionID)
	if err != nil {
		return nil, err
	}
	return ws.SDB.FindOne(r.Context(), bson.M{"_id": sID, "clubId": clubID})
}

// AddCardHandler appends a card at the end of a section
func (ws Website) AddCardHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	clubID := vars["club_id"]
	sectionID := vars["section_id"]

	var req cardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if req.Title == "" {
		config.ErrorStatus("card title is required", http.StatusBadRequest, w, nil)
		return
	}

	section, err := ws.findSection(r, clubID, sectionID)
	if err != nil {
		config.ErrorStatus("failed to get section", http.StatusNotFound, w, err)
		return
	}

	card := models.Card{
		ID:       uuid.New().String(),
		Title:    req.Title,
		Body:     req.Body,
		ImageURL: req.ImageURL,
		Order:    len(section.Cards) + 1,
	}
	cards := append(section.Cards, card)

	_, err = ws.SDB.UpdateOne(r.Context(), bson.M{"_id": section.ID}, bson.M{"$set": bson.M{"cards": cards}, "$inc": bson.M{"version": 1}})
	if err != nil {
		config.ErrorStatus("failed to save cards", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(card)
}

// UpdateCardHandler edits a card in place
func (ws Website) UpdateCardHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	clubID := vars["club_id"]
	sectionID := vars["section_id"]
	cardID := vars["card_id"]

	var req cardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	section, err := ws.findSection(r, clubID, sectionID)
	if err != nil {
		config.ErrorStatus("failed to get section", http.StatusNotFound, w, err)
		return
	}

	found := false
	for i := range section.Cards {
		if section.Cards[i].ID == cardID {
			if req.Title != "" {
				section.Cards[i].Title = req.Title
			}
			section.Cards[i].Body = req.Body
			if req.ImageURL != "" {
				section.Cards[i].ImageURL = req.ImageURL
			}
			found = true
			break
		}
	}
	if !found {
		config.ErrorStatus("card not found", http.StatusNotFound, w, nil)
		return
	}

	_, err = ws.SDB.UpdateOne(r.Context(), bson.M{"_id": section.ID}, bson.M{"$set": bson.M{"cards": section.Cards}, "$inc": bson.M{"version": 1}})
	if err != nil {
		config.ErrorStatus("failed to save cards", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "updated"})
}

// DeleteCardHandler removes a card and renumbers the remaining cards 1..n
func (ws Website) DeleteCardHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	clubID := vars["club_id"]
	sectionID := vars["section_id"]
	cardID := vars["card_id"]

	section, err := ws.findSection(r, clubID, sectionID)
	if err != nil {
		config.ErrorStatus("failed to get section", http.StatusNotFound, w, err)
		return
	}

	kept := section.Cards[:0:0]
	for _, c := range section.Cards {
		if c.ID != cardID {
			kept = append(kept, c)
		}
	}
	if len(kept) == len(section.Cards) {
		config.ErrorStatus("card not found", http.StatusNotFound, w, nil)
		return
	}
	kept = models.NormalizeCardOrder(kept)

	_, err = ws.SDB.UpdateOne(r.Context(), bson.M{"_id": section.ID}, bson.M{"$set": bson.M{"cards": kept}, "$inc": bson.M{"version": 1}})
	if err != nil {
		config.ErrorStatus("failed to save cards", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "deleted"})
}

// MoveCardHandler swaps a card with its neighbour inside a section, guarded
// by the section version the editor last saw
func (ws Website) MoveCardHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	clubID := vars["club_id"]
	sectionID := vars["section_id"]
	cardID := vars["card_id"]

	var req moveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	section, err := ws.findSection(r, clubID, sectionID)
	if err != nil {
		config.ErrorStatus("failed to get section", http.StatusNotFound, w, err)
		return
	}

	cards, err := models.MoveCard(section.Cards, cardID, req.Direction)
	if errors.Is(err, models.ErrItemNotFound) {
		config.ErrorStatus("card not found", http.StatusNotFound, w, err)
		return
	}
	if errors.Is(err, models.ErrMoveOutOfRange) {
		config.ErrorStatus("card is already at the edge", http.StatusBadRequest, w, err)
		return
	}
	if err != nil {
		config.ErrorStatus("failed to move card", http.StatusBadRequest, w, err)
		return
	}

	matched, err := ws.SDB.UpdateOne(r.Context(),
		bson.M{"_id": section.ID, "version": req.Version},
		bson.M{"$set": bson.M{"cards": cards}, "$inc": bson.M{"version": 1}},
	)
	if err != nil {
		config.ErrorStatus("failed to persist card order", http.StatusInternalServerError, w, err)
		return
	}
	if matched == 0 {
		config.ErrorStatus("section was modified by another editor", http.StatusConflict, w, nil)
		return
	}

	ws.Feed.Publish(clubID, FeedEvent{Kind: "website.cards.reordered", Payload: map[string]string{"sectionId": sectionID, "cardId": cardID}})

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "moved"})
}
