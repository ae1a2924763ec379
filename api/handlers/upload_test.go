package handlers_test

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"

	"github.com/ridehq/club-manager-api/api/handlers"
)

func pngUploadRequest(t *testing.T, kind string, width, height int) *http.Request {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	assert.NoError(t, writer.WriteField("kind", kind))
	part, err := writer.CreateFormFile("file", "image.png")
	assert.NoError(t, err)
	assert.NoError(t, png.Encode(part, image.NewRGBA(image.Rect(0, 0, width, height))))
	assert.NoError(t, writer.Close())

	req := httptest.NewRequest("POST", "/api/v1/club/club1/website/upload", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return mux.SetURLVars(req, map[string]string{"club_id": "club1"})
}

func TestUploadImageHandler_RejectsWrongLogoDimensions(t *testing.T) {
	req := pngUploadRequest(t, "logo", 10, 10)

	u := handlers.Upload{}
	rr := httptest.NewRecorder()
	http.HandlerFunc(u.UploadImageHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "400x400")
}

func TestUploadImageHandler_RejectsWrongBannerDimensions(t *testing.T) {
	req := pngUploadRequest(t, "banner", 1920, 1080)

	u := handlers.Upload{}
	rr := httptest.NewRecorder()
	http.HandlerFunc(u.UploadImageHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "1920x480")
}

func TestUploadImageHandler_MissingFile(t *testing.T) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	assert.NoError(t, writer.WriteField("kind", "gallery"))
	assert.NoError(t, writer.Close())

	req := httptest.NewRequest("POST", "/api/v1/club/club1/website/upload", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req = mux.SetURLVars(req, map[string]string{"club_id": "club1"})

	u := handlers.Upload{}
	rr := httptest.NewRecorder()
	http.HandlerFunc(u.UploadImageHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestGenerateSignature(t *testing.T) {
	t.Setenv("CLOUDINARY_API_SECRET", "shhh")
	t.Setenv("CLOUDINARY_UPLOAD_PRESET", "club-website")

	req := httptest.NewRequest("POST", "/api/v1/generate-signature", nil)

	u := handlers.Upload{}
	rr := httptest.NewRecorder()
	http.HandlerFunc(u.GenerateSignature).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp map[string]string
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp["timestamp"])

	h := hmac.New(sha1.New, []byte("shhh"))
	h.Write([]byte("timestamp=" + resp["timestamp"] + "&upload_preset=club-website"))
	assert.Equal(t, hex.EncodeToString(h.Sum(nil)), resp["signature"])
}
