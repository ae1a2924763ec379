package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"

	"github.com/ridehq/club-manager-api/api/handlers"
	"github.com/ridehq/club-manager-api/databases/mocks"
	"github.com/ridehq/club-manager-api/models"
)

func setOwnerEnv(t *testing.T, password string) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	assert.NoError(t, err)
	t.Setenv("OWNER_EMAIL", "ops@ridehq.app")
	t.Setenv("OWNER_PASSWORD_HASH", string(hash))
	t.Setenv("JWT_SECRET", "test-secret")
}

func TestOwnerLoginHandler_Success(t *testing.T) {
	setOwnerEnv(t, "hunter2")

	body := `{"email":"Ops@RideHQ.app","password":"hunter2"}`
	req := httptest.NewRequest("POST", "/api/v1/owner/login", strings.NewReader(body))

	o := handlers.Owner{}
	rr := httptest.NewRecorder()
	http.HandlerFunc(o.OwnerLoginHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp map[string]string
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))

	token, err := jwt.Parse(resp["token"], func(tk *jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	assert.NoError(t, err)

	claims := token.Claims.(jwt.MapClaims)
	assert.Equal(t, "owner", claims["sub"])
	assert.Equal(t, "owner", claims["scope"])
	assert.Equal(t, "ops@ridehq.app", claims["email"])
}

func TestOwnerLoginHandler_WrongPassword(t *testing.T) {
	setOwnerEnv(t, "hunter2")

	req := httptest.NewRequest("POST", "/api/v1/owner/login", strings.NewReader(`{"email":"ops@ridehq.app","password":"hunter3"}`))

	o := handlers.Owner{}
	rr := httptest.NewRecorder()
	http.HandlerFunc(o.OwnerLoginHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestOwnerLoginHandler_UnknownEmail(t *testing.T) {
	setOwnerEnv(t, "hunter2")

	req := httptest.NewRequest("POST", "/api/v1/owner/login", strings.NewReader(`{"email":"someone@else.com","password":"hunter2"}`))

	o := handlers.Owner{}
	rr := httptest.NewRecorder()
	http.HandlerFunc(o.OwnerLoginHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestClubsOverviewHandler(t *testing.T) {
	clubWithSub := models.Club{
		ID:        primitive.NewObjectID(),
		Name:      "Maple Hill Riders",
		Members:   []string{"m1", "m2", "m3"},
		CreatedAt: time.Now().Add(-30 * 24 * time.Hour),
	}
	clubWithoutSub := models.Club{
		ID:        primitive.NewObjectID(),
		Name:      "Ridge Valley MTB",
		CreatedAt: time.Now(),
	}

	mockClubDB := &mocks.ClubDatabase{}
	mockClubDB.On("Find", mock.Anything, mock.Anything).Return([]models.Club{clubWithSub, clubWithoutSub}, nil)

	mockSubDB := &mocks.SubscriptionDatabase{}
	mockSubDB.On("FindOne", mock.Anything, mock.MatchedBy(func(filter interface{}) bool {
		return filter.(primitive.M)["clubId"] == clubWithSub.ID.Hex()
	})).Return(&models.Subscription{
		ClubID:           clubWithSub.ID.Hex(),
		Status:           models.SubscriptionActive,
		CurrentPeriodEnd: time.Now().Add(60 * 24 * time.Hour),
	}, nil)
	mockSubDB.On("FindOne", mock.Anything, mock.Anything).Return(nil, mongo.ErrNoDocuments)

	req := httptest.NewRequest("GET", "/api/v1/owner/clubs", nil)

	o := handlers.Owner{CDB: mockClubDB, SubDB: mockSubDB}
	rr := httptest.NewRecorder()
	http.HandlerFunc(o.ClubsOverviewHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		Clubs []struct {
			Name         string                    `json:"name"`
			MemberCount  int                       `json:"memberCount"`
			Subscription models.SubscriptionStatus `json:"subscription"`
		} `json:"clubs"`
		Total int `json:"total"`
	}
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Total)
	assert.Equal(t, 3, resp.Clubs[0].MemberCount)
	assert.Equal(t, models.SubscriptionActive, resp.Clubs[0].Subscription.Status)
	assert.Equal(t, models.SubscriptionIncomplete, resp.Clubs[1].Subscription.Status)
}
