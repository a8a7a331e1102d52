package service

import (
	"fmt"

	"meetup-backend/internal/metrics"
	"meetup-backend/internal/models"

	"gorm.io/gorm"
)

// Deletion always removes children before parents, in this order:
//
//	chat:  messages, roster rows, chat
//	event: its chats (as above), members, favorites, event
//	user:  owned events (as above), private chats the user created (as above),
//	       messages sent or received, roster rows, memberships, favorites,
//	       profile images, profile, user
//
// The ON DELETE CASCADE foreign keys cover the same ground; the explicit
// order keeps the result identical on stores that do not enforce them.
// All helpers expect to run inside a transaction.

func deletePrivateChats(tx *gorm.DB, chatIDs []int64) error {
	if len(chatIDs) == 0 {
		return nil
	}
	if err := tx.Where("private_chat_id IN ?", chatIDs).Delete(&models.Message{}).Error; err != nil {
		return fmt.Errorf("delete private chat messages: %w", err)
	}
	if err := tx.Where("chat_id IN ?", chatIDs).Delete(&models.UsersPrivateChat{}).Error; err != nil {
		return fmt.Errorf("delete private chat roster: %w", err)
	}
	if err := tx.Where("id IN ?", chatIDs).Delete(&models.PrivateChat{}).Error; err != nil {
		return fmt.Errorf("delete private chats: %w", err)
	}
	return nil
}

func deleteGroupChats(tx *gorm.DB, chatIDs []int64) error {
	if len(chatIDs) == 0 {
		return nil
	}
	if err := tx.Where("group_chat_id IN ?", chatIDs).Delete(&models.Message{}).Error; err != nil {
		return fmt.Errorf("delete group chat messages: %w", err)
	}
	if err := tx.Where("chat_id IN ?", chatIDs).Delete(&models.UsersGroupChat{}).Error; err != nil {
		return fmt.Errorf("delete group chat roster: %w", err)
	}
	if err := tx.Where("id IN ?", chatIDs).Delete(&models.GroupChat{}).Error; err != nil {
		return fmt.Errorf("delete group chats: %w", err)
	}
	return nil
}

func deleteEvents(tx *gorm.DB, eventIDs []int64) error {
	if len(eventIDs) == 0 {
		return nil
	}
	var privateIDs, groupIDs []int64
	if err := tx.Model(&models.PrivateChat{}).Where("event_id IN ?", eventIDs).Pluck("id", &privateIDs).Error; err != nil {
		return err
	}
	if err := tx.Model(&models.GroupChat{}).Where("event_id IN ?", eventIDs).Pluck("id", &groupIDs).Error; err != nil {
		return err
	}
	if err := deletePrivateChats(tx, privateIDs); err != nil {
		return err
	}
	if err := deleteGroupChats(tx, groupIDs); err != nil {
		return err
	}
	if err := tx.Where("event_id IN ?", eventIDs).Delete(&models.EventMember{}).Error; err != nil {
		return fmt.Errorf("delete event members: %w", err)
	}
	if err := tx.Where("event_id IN ?", eventIDs).Delete(&models.Favorite{}).Error; err != nil {
		return fmt.Errorf("delete event favorites: %w", err)
	}
	if err := tx.Where("id IN ?", eventIDs).Delete(&models.Event{}).Error; err != nil {
		return fmt.Errorf("delete events: %w", err)
	}
	return nil
}

func deleteUser(tx *gorm.DB, userID int64) error {
	var eventIDs []int64
	if err := tx.Model(&models.Event{}).Where("owner_id = ?", userID).Pluck("id", &eventIDs).Error; err != nil {
		return err
	}
	if err := deleteEvents(tx, eventIDs); err != nil {
		return err
	}
	var chatIDs []int64
	if err := tx.Model(&models.PrivateChat{}).Where("user_id = ?", userID).Pluck("id", &chatIDs).Error; err != nil {
		return err
	}
	if err := deletePrivateChats(tx, chatIDs); err != nil {
		return err
	}

	steps := []struct {
		what  string
		model any
		where []any
	}{
		{"messages", &models.Message{}, []any{"sender_id = ? OR receiver_id = ?", userID, userID}},
		{"private chat roster", &models.UsersPrivateChat{}, []any{"user_id = ?", userID}},
		{"group chat roster", &models.UsersGroupChat{}, []any{"user_id = ?", userID}},
		{"memberships", &models.EventMember{}, []any{"user_id = ?", userID}},
		{"favorites", &models.Favorite{}, []any{"user_id = ?", userID}},
		{"profile images", &models.UserProfileImage{}, []any{"user_id = ?", userID}},
		{"profile", &models.UserProfile{}, []any{"user_id = ?", userID}},
	}
	for _, s := range steps {
		if err := tx.Where(s.where[0], s.where[1:]...).Delete(s.model).Error; err != nil {
			return fmt.Errorf("delete user %s: %w", s.what, err)
		}
	}

	res := tx.Where("id = ?", userID).Delete(&models.User{})
	if res.Error != nil {
		return fmt.Errorf("delete user: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("user %d: %w", userID, models.ErrNotFound)
	}
	metrics.CascadeDeletes.WithLabelValues("user").Inc()
	return nil
}
