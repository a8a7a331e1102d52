package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"
	"time"

	"meetup-backend/internal/ids"
	"meetup-backend/internal/models"
	"meetup-backend/internal/storage"

	"gorm.io/gorm"
)

const maxImageBytes = 5 << 20

type ImageService struct {
	db       *gorm.DB
	gen      ids.Generator
	now      func() time.Time
	uploader storage.Uploader
}

func NewImageService(db *gorm.DB, gen ids.Generator, now func() time.Time, uploader storage.Uploader) *ImageService {
	return &ImageService{db: db, gen: gen, now: now, uploader: uploader}
}

// decodeImage accepts raw base64 or a data URL.
func decodeImage(data string) ([]byte, string, error) {
	if i := strings.Index(data, ";base64,"); strings.HasPrefix(data, "data:") && i >= 0 {
		data = data[i+len(";base64,"):]
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(data))
	if err != nil {
		return nil, "", fmt.Errorf("%w: image is not valid base64", models.ErrInvalid)
	}
	if len(raw) == 0 {
		return nil, "", fmt.Errorf("%w: empty image", models.ErrInvalid)
	}
	if len(raw) > maxImageBytes {
		return nil, "", fmt.Errorf("%w: image larger than %d bytes", models.ErrInvalid, maxImageBytes)
	}
	ct := http.DetectContentType(raw)
	if !strings.HasPrefix(ct, "image/") {
		return nil, "", fmt.Errorf("%w: unsupported content type %s", models.ErrInvalid, ct)
	}
	return raw, ct, nil
}

// Upload stores a base64 encoded image and adds it to the user's gallery.
func (s *ImageService) Upload(ctx context.Context, userID int64, data string) (*models.UserProfileImage, error) {
	raw, ct, err := decodeImage(data)
	if err != nil {
		return nil, err
	}
	db := s.db.WithContext(ctx)
	if err := checkUsers(db, []int64{userID}); err != nil {
		return nil, err
	}
	key := storage.ProfileImageKey(userID)
	if err := s.uploader.Put(ctx, key, ct, raw); err != nil {
		return nil, err
	}
	img := models.UserProfileImage{UserID: userID, ImagePath: key, CreatedAt: s.now().UTC()}
	if err := insertWithID(db, s.gen, "profile_image", &img, func(id int64) { img.ID = id }); err != nil {
		return nil, err
	}
	return &img, nil
}

// List returns the user's gallery, newest first.
func (s *ImageService) List(ctx context.Context, userID int64) ([]models.UserProfileImage, error) {
	var imgs []models.UserProfileImage
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at desc").Order("id desc").Find(&imgs).Error
	return imgs, err
}
