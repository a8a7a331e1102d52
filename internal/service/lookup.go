package service

import (
	"meetup-backend/internal/models"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// senderImage returns the image shown next to a user's messages: the
// profile image if set, otherwise the newest gallery image. Lookup failures
// yield nil; a missing picture never fails a read.
func senderImage(tx *gorm.DB, userID int64) *string {
	var profile models.UserProfile
	res := tx.Select("user_id", "profile_image").Where("user_id = ?", userID).Limit(1).Find(&profile)
	if res.Error != nil {
		log.Warn().Err(res.Error).Int64("user_id", userID).Msg("sender image profile lookup")
		return nil
	}
	if res.RowsAffected > 0 && profile.ProfileImage != "" {
		return &profile.ProfileImage
	}
	var img models.UserProfileImage
	res = tx.Where("user_id = ?", userID).Order("created_at desc").Order("id desc").Limit(1).Find(&img)
	if res.Error != nil {
		log.Warn().Err(res.Error).Int64("user_id", userID).Msg("sender image gallery lookup")
		return nil
	}
	if res.RowsAffected == 0 {
		return nil
	}
	return &img.ImagePath
}

func exists(tx *gorm.DB, model any, query string, args ...any) (bool, error) {
	var n int64
	err := tx.Model(model).Where(query, args...).Count(&n).Error
	return n > 0, err
}
