package handlers

import (
	"encoding/json"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson"
	"golang.org/x/crypto/bcrypt"

	"github.com/ridehq/club-manager-api/config"
	"github.com/ridehq/club-manager-api/databases"
	"github.com/ridehq/club-manager-api/models"
)

// Owner is the platform operator console. There is a single operator account
// configured through the environment, not a user collection.
type Owner struct {
	CDB   databases.ClubDatabase
	SubDB databases.SubscriptionDatabase
}

type ownerLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// OwnerLoginHandler checks the operator credentials and returns a JWT scoped
// to the owner console
func (o Owner) OwnerLoginHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var req ownerLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	email := strings.TrimSpace(strings.ToLower(req.Email))
	if email == "" || req.Password == "" {
		config.ErrorStatus("email and password required", http.StatusBadRequest, w, nil)
		return
	}

	ownerEmail := strings.ToLower(os.Getenv("OWNER_EMAIL"))
	ownerHash := os.Getenv("OWNER_PASSWORD_HASH")
	if email != ownerEmail || ownerHash == "" {
		config.ErrorStatus("invalid credentials", http.StatusUnauthorized, w, nil)
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(ownerHash), []byte(req.Password)); err != nil {
		config.ErrorStatus("invalid credentials", http.StatusUnauthorized, w, nil)
		return
	}

	jwtSecret := []byte(os.Getenv("JWT_SECRET"))
	if len(jwtSecret) == 0 {
		config.ErrorStatus("server misconfigured", http.StatusInternalServerError, w, nil)
		return
	}

	claims := jwt.MapClaims{
		"sub":   "owner",
		"email": email,
		"scope": "owner",
		"typ":   "access",
		"iat":   time.Now().Unix(),
		"exp":   time.Now().Add(24 * time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(jwtSecret)
	if err != nil {
		config.ErrorStatus("token generation failed", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"token": signed})
}

// clubOverview is one row in the operator console
type clubOverview struct {
	ID           string                    `json:"_id"`
	Name         string                    `json:"name"`
	MemberCount  int                       `json:"memberCount"`
	CreatedAt    time.Time                 `json:"createdAt"`
	Subscription models.SubscriptionStatus `json:"subscription"`
}

// ClubsOverviewHandler lists every club with its roster size and projected
// subscription status
func (o Owner) ClubsOverviewHandler(w http.ResponseWriter, r *http.Request) {
	clubs, err := o.CDB.Find(r.Context(), bson.M{})
	if err != nil {
		config.ErrorStatus("failed to get clubs", http.StatusInternalServerError, w, err)
		return
	}

	now := time.Now()
	overview := make([]clubOverview, 0, len(clubs))
	for _, club := range clubs {
		row := clubOverview{
			ID:          club.ID.Hex(),
			Name:        club.Name,
			MemberCount: len(club.Members),
			CreatedAt:   club.CreatedAt,
			Subscription: models.SubscriptionStatus{Status: models.SubscriptionIncomplete},
		}
		if sub, err := o.SubDB.FindOne(r.Context(), bson.M{"clubId": club.ID.Hex()}); err == nil {
			row.Subscription = sub.Project(now)
		}
		overview = append(overview, row)
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{"clubs": overview, "total": len(overview)})
}
