package service

import (
	"context"
	"errors"
	"fmt"

	"meetup-backend/internal/models"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type FavoriteService struct {
	db *gorm.DB
}

func NewFavoriteService(db *gorm.DB) *FavoriteService {
	return &FavoriteService{db: db}
}

// Add marks the event as a favorite of the user. Adding twice returns the existing row.
func (s *FavoriteService) Add(ctx context.Context, userID, eventID int64) (*models.Favorite, error) {
	fav := models.Favorite{UserID: userID, EventID: eventID}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := getEvent(tx, eventID); err != nil {
			return err
		}
		if err := checkUsers(tx, []int64{userID}); err != nil {
			return err
		}
		res := tx.Where("user_id = ? AND event_id = ?", userID, eventID).Limit(1).Find(&fav)
		if res.Error != nil || res.RowsAffected > 0 {
			return res.Error
		}
		if err := tx.Create(&fav).Error; err != nil {
			return err
		}
		created("favorite")
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &fav, nil
}

func (s *FavoriteService) Remove(ctx context.Context, userID, eventID int64) error {
	res := s.db.WithContext(ctx).Where("user_id = ? AND event_id = ?", userID, eventID).Delete(&models.Favorite{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("favorite: %w", models.ErrNotFound)
	}
	return nil
}

// List serializes the user's favorites with the user's profile and each
// event embedded. Favorites whose profile or event is missing are skipped.
func (s *FavoriteService) List(ctx context.Context, userID int64) ([]models.View, error) {
	db := s.db.WithContext(ctx)
	var favs []models.Favorite
	if err := db.Where("user_id = ?", userID).Order("id").Find(&favs).Error; err != nil {
		return nil, err
	}
	out := make([]models.View, 0, len(favs))
	if len(favs) == 0 {
		return out, nil
	}

	var profile *models.UserProfile
	var p models.UserProfile
	res := db.Where("user_id = ?", userID).Limit(1).Find(&p)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected > 0 {
		profile = &p
	}

	eventIDs := make([]int64, 0, len(favs))
	for _, f := range favs {
		eventIDs = append(eventIDs, f.EventID)
	}
	var events []models.Event
	if err := db.Where("id IN ?", eventIDs).Find(&events).Error; err != nil {
		return nil, err
	}
	byID := make(map[int64]*models.Event, len(events))
	for i := range events {
		byID[events[i].ID] = &events[i]
	}

	for i := range favs {
		v, err := favs[i].Serialize(profile, byID[favs[i].EventID])
		if errors.Is(err, models.ErrNotFound) {
			log.Warn().Uint("favorite_id", favs[i].ID).Int64("user_id", userID).Int64("event_id", favs[i].EventID).Msg("favorite without profile or event")
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
