package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"github.com/ridehq/club-manager-api/api/handlers"
	"github.com/ridehq/club-manager-api/databases/mocks"
	"github.com/ridehq/club-manager-api/models"
)

func TestUserCreateHandler_Success(t *testing.T) {
	userID := primitive.NewObjectID()

	mockInsertResult := &mocks.InsertOneResultHelper{}
	mockInsertResult.On("Decode").Return(userID)

	mockUserDB := &mocks.UserDatabase{}
	mockUserDB.On("CountDocuments", mock.Anything, bson.M{"email": "sam@example.com"}).Return(int64(0), nil)
	mockUserDB.On("InsertOne", mock.Anything, mock.MatchedBy(func(user models.User) bool {
		// the password is stored hashed, never verbatim
		return user.Email == "sam@example.com" &&
			user.Status == models.MemberStatusPending &&
			bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("hunter2")) == nil
	})).Return(mockInsertResult, nil)

	body := `{"firstName":"Sam","lastName":"Hill","email":" Sam@Example.com ","password":"hunter2"}`
	req := httptest.NewRequest("POST", "/api/v1/users", strings.NewReader(body))

	u := handlers.User{DB: mockUserDB}
	rr := httptest.NewRecorder()
	http.HandlerFunc(u.UserCreateHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)

	var resp map[string]string
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, userID.Hex(), resp["_id"])
	mockUserDB.AssertExpectations(t)
}

func TestUserCreateHandler_DuplicateEmail(t *testing.T) {
	mockUserDB := &mocks.UserDatabase{}
	mockUserDB.On("CountDocuments", mock.Anything, mock.Anything).Return(int64(1), nil)

	body := `{"firstName":"Sam","email":"sam@example.com","password":"hunter2"}`
	req := httptest.NewRequest("POST", "/api/v1/users", strings.NewReader(body))

	u := handlers.User{DB: mockUserDB}
	rr := httptest.NewRecorder()
	http.HandlerFunc(u.UserCreateHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestUserCreateHandler_MissingFields(t *testing.T) {
	req := httptest.NewRequest("POST", "/api/v1/users", strings.NewReader(`{"email":"sam@example.com"}`))

	u := handlers.User{DB: &mocks.UserDatabase{}}
	rr := httptest.NewRecorder()
	http.HandlerFunc(u.UserCreateHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestUserCheckEmailHandler(t *testing.T) {
	mockUserDB := &mocks.UserDatabase{}
	mockUserDB.On("CountDocuments", mock.Anything, bson.M{"email": "sam@example.com"}).Return(int64(1), nil)

	req := httptest.NewRequest("POST", "/api/v1/users/exists", strings.NewReader(`{"email":" Sam@Example.com "}`))

	u := handlers.User{DB: mockUserDB}
	rr := httptest.NewRecorder()
	http.HandlerFunc(u.UserCheckEmailHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"exists":true`)
}

func TestUserHandler_BadID(t *testing.T) {
	req := httptest.NewRequest("GET", "/api/v1/user/not-a-hex-id", nil)
	req = mux.SetURLVars(req, map[string]string{"user_id": "not-a-hex-id"})

	u := handlers.User{DB: &mocks.UserDatabase{}}
	rr := httptest.NewRecorder()
	http.HandlerFunc(u.UserHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
