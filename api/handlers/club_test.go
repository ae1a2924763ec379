package handlers_test

import (
	"context"
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

	"github.com/ridehq/club-manager-api/api"
	"github.com/ridehq/club-manager-api/api/handlers"
	"github.com/ridehq/club-manager-api/databases/mocks"
	"github.com/ridehq/club-manager-api/models"
)

func TestCreateClubHandler_Success(t *testing.T) {
	callerID := primitive.NewObjectID()
	clubID := primitive.NewObjectID()

	mockInsertResult := &mocks.InsertOneResultHelper{}
	mockInsertResult.On("Decode").Return(clubID)

	mockClubDB := &mocks.ClubDatabase{}
	mockClubDB.On("CountDocuments", mock.Anything, bson.M{"formattedName": "maple-hill-riders"}).Return(int64(0), nil)
	mockClubDB.On("InsertOne", mock.Anything, mock.MatchedBy(func(club models.Club) bool {
		return club.FormattedName == "maple-hill-riders" &&
			club.CreatedBy == callerID.Hex() &&
			len(club.Members) == 1 && club.Members[0] == callerID.Hex()
	})).Return(mockInsertResult, nil)

	mockUserDB := &mocks.UserDatabase{}
	mockUserDB.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).Return(int64(1), nil)

	req := httptest.NewRequest("POST", "/api/v1/clubs", strings.NewReader(`{"name":"Maple Hill Riders"}`))
	req = req.WithContext(context.WithValue(req.Context(), api.CallerIDKey, callerID.Hex()))

	c := handlers.Club{DB: mockClubDB, UDB: mockUserDB}
	rr := httptest.NewRecorder()
	http.HandlerFunc(c.CreateClubHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)

	var resp map[string]string
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, clubID.Hex(), resp["_id"])
	assert.Equal(t, "maple-hill-riders", resp["formattedName"])
	mockUserDB.AssertExpectations(t)
}

func TestCreateClubHandler_DuplicateName(t *testing.T) {
	mockClubDB := &mocks.ClubDatabase{}
	mockClubDB.On("CountDocuments", mock.Anything, mock.Anything).Return(int64(1), nil)

	req := httptest.NewRequest("POST", "/api/v1/clubs", strings.NewReader(`{"name":"Maple Hill Riders"}`))

	c := handlers.Club{DB: mockClubDB}
	rr := httptest.NewRecorder()
	http.HandlerFunc(c.CreateClubHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestJoinClubHandler_Success(t *testing.T) {
	callerID := primitive.NewObjectID()
	clubID := primitive.NewObjectID()

	mockInviteDB := &mocks.InviteDatabase{}
	mockInviteDB.On("FindOne", mock.Anything, bson.M{"code": "CLUB-COACH-XY99"}).Return(&models.Invite{
		Code:   "CLUB-COACH-XY99",
		ClubID: clubID.Hex(),
		Role:   models.RoleCoach,
		Status: models.InviteStatusActive,
	}, nil)
	mockInviteDB.On("UpdateOne", mock.Anything, mock.Anything, bson.M{"$inc": bson.M{"used": 1}}).Return(int64(1), nil)

	mockUserDB := &mocks.UserDatabase{}
	mockUserDB.On("UpdateOne", mock.Anything, mock.Anything, mock.MatchedBy(func(update bson.M) bool {
		set := update["$set"].(bson.M)
		return set["clubId"] == clubID.Hex() && set["role"] == models.RoleCoach
	})).Return(int64(1), nil)

	mockClubDB := &mocks.ClubDatabase{}
	mockClubDB.On("UpdateOne", mock.Anything, mock.Anything, bson.M{"$addToSet": bson.M{"members": callerID.Hex()}}).Return(int64(1), nil)

	req := httptest.NewRequest("POST", "/api/v1/clubs/join", strings.NewReader(`{"code":"CLUB-COACH-XY99"}`))
	req = req.WithContext(context.WithValue(req.Context(), api.CallerIDKey, callerID.Hex()))

	c := handlers.Club{DB: mockClubDB, UDB: mockUserDB, IDB: mockInviteDB}
	rr := httptest.NewRecorder()
	http.HandlerFunc(c.JoinClubHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp map[string]string
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, clubID.Hex(), resp["clubId"])
	assert.Equal(t, models.RoleCoach, resp["role"])
	mockClubDB.AssertExpectations(t)
}

func TestJoinClubHandler_GoneWhenCodeExhausted(t *testing.T) {
	clubID := primitive.NewObjectID()

	mockInviteDB := &mocks.InviteDatabase{}
	mockInviteDB.On("FindOne", mock.Anything, mock.Anything).Return(&models.Invite{
		Code:   "CLUB-RIDER-AB12",
		ClubID: clubID.Hex(),
		Role:   models.RoleRider,
		Status: models.InviteStatusActive,
	}, nil)
	// the filtered increment matched nothing: the code was consumed elsewhere
	mockInviteDB.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).Return(int64(0), nil)

	req := httptest.NewRequest("POST", "/api/v1/clubs/join", strings.NewReader(`{"code":"CLUB-RIDER-AB12"}`))
	req = req.WithContext(context.WithValue(req.Context(), api.CallerIDKey, primitive.NewObjectID().Hex()))

	c := handlers.Club{IDB: mockInviteDB}
	rr := httptest.NewRecorder()
	http.HandlerFunc(c.JoinClubHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusGone, rr.Code)
}

func TestUpdateClubFieldHandler_ReslugsOnRename(t *testing.T) {
	clubID := primitive.NewObjectID()

	mockClubDB := &mocks.ClubDatabase{}
	mockClubDB.On("UpdateOne", mock.Anything, mock.Anything, mock.MatchedBy(func(update bson.M) bool {
		set := update["$set"].(bson.M)
		return set["name"] == "Ridge Valley MTB" && set["formattedName"] == "ridge-valley-mtb"
	})).Return(int64(1), nil)

	req := httptest.NewRequest("PATCH", "/api/v1/club/"+clubID.Hex(), strings.NewReader(`{"name":"Ridge Valley MTB","createdBy":"hijacked"}`))
	req = mux.SetURLVars(req, map[string]string{"club_id": clubID.Hex()})

	c := handlers.Club{DB: mockClubDB}
	rr := httptest.NewRecorder()
	http.HandlerFunc(c.UpdateClubFieldHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	mockClubDB.AssertExpectations(t)
}

func TestDeleteClubByIDHandler_DropsInvites(t *testing.T) {
	clubID := primitive.NewObjectID()

	mockClubDB := &mocks.ClubDatabase{}
	mockClubDB.On("DeleteOne", mock.Anything, bson.M{"_id": clubID}).Return(int64(1), nil)

	mockInviteDB := &mocks.InviteDatabase{}
	mockInviteDB.On("DeleteMany", mock.Anything, bson.M{"clubId": clubID.Hex()}).Return(int64(3), nil)

	req := httptest.NewRequest("DELETE", "/api/v1/club/"+clubID.Hex(), nil)
	req = mux.SetURLVars(req, map[string]string{"club_id": clubID.Hex()})

	c := handlers.Club{DB: mockClubDB, IDB: mockInviteDB}
	rr := httptest.NewRecorder()
	http.HandlerFunc(c.DeleteClubByIDHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	mockInviteDB.AssertExpectations(t)
}
