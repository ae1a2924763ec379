package handlers

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/gorilla/mux"

	"github.com/ridehq/club-manager-api/config"
)

// maxUploadBytes caps website image uploads at 8MB
const maxUploadBytes = 8 << 20

// exact pixel dimensions enforced per image kind. Cropping happens in the
// dashboard before upload; the server re-checks so a crafted request cannot
// skip it.
var uploadDimensions = map[string][2]int{
	"logo":   {400, 400},
	"banner": {1920, 480},
}

// Upload exported for testing purposes
type Upload struct{}

// UploadImageHandler accepts a multipart image, validates its dimensions for
// the requested kind and pushes it to cloudinary under the club's folder
func (u Upload) UploadImageHandler(w http.ResponseWriter, r *http.Request) {
	clubID := mux.Vars(r)["club_id"]

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		config.ErrorStatus("failed to parse multipart form", http.StatusBadRequest, w, err)
		return
	}

	kind := r.FormValue("kind")
	if kind == "" {
		kind = "gallery"
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		config.ErrorStatus("file field is required", http.StatusBadRequest, w, err)
		return
	}
	defer file.Close()

	if want, ok := uploadDimensions[kind]; ok {
		cfg, _, err := image.DecodeConfig(file)
		if err != nil {
			config.ErrorStatus("failed to decode image", http.StatusBadRequest, w, err)
			return
		}
		if cfg.Width != want[0] || cfg.Height != want[1] {
			config.ErrorStatus(
				fmt.Sprintf("%s images must be exactly %dx%d, got %dx%d", kind, want[0], want[1], cfg.Width, cfg.Height),
				http.StatusBadRequest, w, nil)
			return
		}
		if _, err := file.Seek(0, 0); err != nil {
			config.ErrorStatus("failed to rewind upload", http.StatusInternalServerError, w, err)
			return
		}
	}

	cld, err := cloudinary.NewFromParams(
		os.Getenv("CLOUDINARY_CLOUD_NAME"),
		os.Getenv("CLOUDINARY_API_KEY"),
		os.Getenv("CLOUDINARY_API_SECRET"),
	)
	if err != nil {
		config.ErrorStatus("failed to init cloudinary", http.StatusInternalServerError, w, err)
		return
	}

	res, err := cld.Upload.Upload(r.Context(), file, uploader.UploadParams{
		Folder: fmt.Sprintf("clubs/%s/website/%s", clubID, kind),
	})
	if err != nil {
		config.ErrorStatus("failed to upload image", http.StatusBadGateway, w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]string{
		"url":      res.SecureURL,
		"publicId": res.PublicID,
		"kind":     kind,
	})
}

// GenerateSignature generates a signature for direct-to-cloudinary uploads
// from the dashboard
func (u Upload) GenerateSignature(w http.ResponseWriter, r *http.Request) {
	timestamp := strconv.FormatInt(time.Now().Unix(), 10)
	uploadPreset := os.Getenv("CLOUDINARY_UPLOAD_PRESET")
	apiSecret := os.Getenv("CLOUDINARY_API_SECRET")

	h := hmac.New(sha1.New, []byte(apiSecret))
	h.Write([]byte("timestamp=" + timestamp + "&upload_preset=" + uploadPreset))
	signature := hex.EncodeToString(h.Sum(nil))

	response := map[string]string{
		"timestamp": timestamp,
		"signature": signature,
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}
