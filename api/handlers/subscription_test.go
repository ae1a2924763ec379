package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/ridehq/club-manager-api/api/handlers"
	"github.com/ridehq/club-manager-api/databases/mocks"
	"github.com/ridehq/club-manager-api/models"
)

func TestStatusHandler_IncompleteWhenNoSubscription(t *testing.T) {
	mockSubDB := &mocks.SubscriptionDatabase{}
	mockSubDB.On("FindOne", mock.Anything, mock.Anything).Return(nil, mongo.ErrNoDocuments)

	req := httptest.NewRequest("GET", "/api/v1/club/club1/subscription", nil)
	req = mux.SetURLVars(req, map[string]string{"club_id": "club1"})

	s := handlers.Subscription{DB: mockSubDB}
	rr := httptest.NewRecorder()
	http.HandlerFunc(s.StatusHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var status models.SubscriptionStatus
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &status))
	assert.Equal(t, models.SubscriptionIncomplete, status.Status)
}

func TestStatusHandler_ProjectsExpiringSoon(t *testing.T) {
	periodEnd := time.Now().Add(3*24*time.Hour + time.Minute)
	mockSubDB := &mocks.SubscriptionDatabase{}
	mockSubDB.On("FindOne", mock.Anything, mock.Anything).Return(&models.Subscription{
		ClubID:           "club1",
		Status:           models.SubscriptionActive,
		Plan:             "club-yearly",
		CurrentPeriodEnd: periodEnd,
	}, nil)

	req := httptest.NewRequest("GET", "/api/v1/club/club1/subscription", nil)
	req = mux.SetURLVars(req, map[string]string{"club_id": "club1"})

	s := handlers.Subscription{DB: mockSubDB}
	rr := httptest.NewRecorder()
	http.HandlerFunc(s.StatusHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var status models.SubscriptionStatus
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &status))
	assert.Equal(t, models.SubscriptionActive, status.Status)
	assert.True(t, status.ExpiringSoon)
	assert.Equal(t, 3, status.DaysUntilExpiry)
}

func TestStatusHandler_ActivePastPeriodEndReadsExpired(t *testing.T) {
	periodEnd := time.Now().Add(-time.Hour)
	mockSubDB := &mocks.SubscriptionDatabase{}
	mockSubDB.On("FindOne", mock.Anything, mock.Anything).Return(&models.Subscription{
		ClubID:           "club1",
		Status:           models.SubscriptionActive,
		CurrentPeriodEnd: periodEnd,
	}, nil)

	req := httptest.NewRequest("GET", "/api/v1/club/club1/subscription", nil)
	req = mux.SetURLVars(req, map[string]string{"club_id": "club1"})

	s := handlers.Subscription{DB: mockSubDB}
	rr := httptest.NewRecorder()
	http.HandlerFunc(s.StatusHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var status models.SubscriptionStatus
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &status))
	assert.Equal(t, models.SubscriptionExpired, status.Status)
	assert.Equal(t, 0, status.DaysUntilExpiry)
}

func TestCreateCheckoutSessionHandler_RequiresPriceID(t *testing.T) {
	req := httptest.NewRequest("POST", "/api/v1/club/club1/subscription/checkout-sessions", strings.NewReader(`{}`))
	req = mux.SetURLVars(req, map[string]string{"club_id": "club1"})

	s := handlers.Subscription{DB: &mocks.SubscriptionDatabase{}}
	rr := httptest.NewRecorder()
	http.HandlerFunc(s.CreateCheckoutSessionHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestVerifyCheckoutSessionHandler_RequiresSessionID(t *testing.T) {
	req := httptest.NewRequest("POST", "/api/v1/club/club1/subscription/checkout-sessions/verify", strings.NewReader(`{}`))
	req = mux.SetURLVars(req, map[string]string{"club_id": "club1"})

	s := handlers.Subscription{DB: &mocks.SubscriptionDatabase{}}
	rr := httptest.NewRecorder()
	http.HandlerFunc(s.VerifyCheckoutSessionHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestCustomerPortalHandler_NotFoundWithoutCustomer(t *testing.T) {
	mockSubDB := &mocks.SubscriptionDatabase{}
	mockSubDB.On("FindOne", mock.Anything, mock.Anything).Return(&models.Subscription{
		ClubID: "club1",
		Status: models.SubscriptionIncomplete,
	}, nil)

	req := httptest.NewRequest("POST", "/api/v1/club/club1/subscription/customer-portal", nil)
	req = mux.SetURLVars(req, map[string]string{"club_id": "club1"})

	s := handlers.Subscription{DB: mockSubDB}
	rr := httptest.NewRecorder()
	http.HandlerFunc(s.CustomerPortalHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}
