package service

import (
	"context"
	"fmt"
	"time"

	"meetup-backend/internal/ids"
	"meetup-backend/internal/metrics"
	"meetup-backend/internal/models"

	"gorm.io/gorm"
)

type ChatService struct {
	db  *gorm.DB
	gen ids.Generator
	now func() time.Time
}

func NewChatService(db *gorm.DB, gen ids.Generator, now func() time.Time) *ChatService {
	return &ChatService{db: db, gen: gen, now: now}
}

// dedupe returns in without repeats, keeping first occurrences in order.
func dedupe(in []int64) []int64 {
	seen := make(map[int64]struct{}, len(in))
	out := make([]int64, 0, len(in))
	for _, id := range in {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func checkUsers(tx *gorm.DB, userIDs []int64) error {
	var n int64
	if err := tx.Model(&models.User{}).Where("id IN ?", userIDs).Count(&n).Error; err != nil {
		return err
	}
	if int(n) != len(userIDs) {
		return fmt.Errorf("user: %w", models.ErrNotFound)
	}
	return nil
}

// activeMember reports whether userID owns the event or was accepted into it.
func activeMember(tx *gorm.DB, eventID, userID int64) (bool, error) {
	return exists(tx, &models.EventMember{}, "event_id = ? AND user_id = ? AND member_status IN ?",
		eventID, userID, []string{string(models.MemberOwner), string(models.MemberAccepted)})
}

// checkChatRoster validates a new chat roster. roster[0] is the creator and
// is refused with ErrForbidden; other users who are not active members make
// the request invalid.
func checkChatRoster(tx *gorm.DB, eventID int64, roster []int64) error {
	if _, err := getEvent(tx, eventID); err != nil {
		return err
	}
	if err := checkUsers(tx, roster); err != nil {
		return err
	}
	for i, uid := range roster {
		ok, err := activeMember(tx, eventID, uid)
		if err != nil {
			return err
		}
		if ok {
			continue
		}
		if i == 0 {
			return fmt.Errorf("%w: only accepted members can open chats in this event", ErrForbidden)
		}
		return fmt.Errorf("%w: user %d is not an accepted member of the event", models.ErrInvalid, uid)
	}
	return nil
}

// CreatePrivateChat opens a chat in the event with the creator and
// participants on its roster. All of them must be the owner or accepted
// members of the event.
func (s *ChatService) CreatePrivateChat(ctx context.Context, eventID, creatorID int64, participants ...int64) (*models.PrivateChat, error) {
	roster := dedupe(append([]int64{creatorID}, participants...))
	chat := models.PrivateChat{EventID: eventID, UserID: creatorID, CreatedAt: s.now().UTC()}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkChatRoster(tx, eventID, roster); err != nil {
			return err
		}
		if err := insertWithID(tx, s.gen, "private_chat", &chat, func(id int64) { chat.ID = id }); err != nil {
			return err
		}
		rows := make([]models.UsersPrivateChat, 0, len(roster))
		for _, uid := range roster {
			rows = append(rows, models.UsersPrivateChat{UserID: uid, ChatID: chat.ID})
		}
		return tx.Create(&rows).Error
	})
	if err != nil {
		return nil, err
	}
	return &chat, nil
}

// CreateGroupChat opens the shared chat of an event. creatorID joins the
// roster. Membership rules are those of CreatePrivateChat.
func (s *ChatService) CreateGroupChat(ctx context.Context, eventID, creatorID int64, participants ...int64) (*models.GroupChat, error) {
	roster := dedupe(append([]int64{creatorID}, participants...))
	chat := models.GroupChat{EventID: eventID, CreatedAt: s.now().UTC()}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkChatRoster(tx, eventID, roster); err != nil {
			return err
		}
		if err := insertWithID(tx, s.gen, "group_chat", &chat, func(id int64) { chat.ID = id }); err != nil {
			return err
		}
		rows := make([]models.UsersGroupChat, 0, len(roster))
		for _, uid := range roster {
			rows = append(rows, models.UsersGroupChat{UserID: uid, ChatID: chat.ID})
		}
		return tx.Create(&rows).Error
	})
	if err != nil {
		return nil, err
	}
	return &chat, nil
}

// chatRef resolves the tables behind a chat kind.
type chatRef struct {
	chat     any
	roster   any
	fk       string
	notFound string
}

func refFor(kind models.GroupType) (chatRef, error) {
	switch kind {
	case models.GroupPrivate:
		return chatRef{chat: &models.PrivateChat{}, roster: &models.UsersPrivateChat{}, fk: "private_chat_id", notFound: "private chat"}, nil
	case models.GroupGroup:
		return chatRef{chat: &models.GroupChat{}, roster: &models.UsersGroupChat{}, fk: "group_chat_id", notFound: "group chat"}, nil
	default:
		return chatRef{}, fmt.Errorf("%w: chat kind %q", models.ErrInvalid, kind)
	}
}

func (r chatRef) check(tx *gorm.DB, chatID int64) error {
	ok, err := exists(tx, r.chat, "id = ?", chatID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%s %d: %w", r.notFound, chatID, models.ErrNotFound)
	}
	return nil
}

// eventOf returns the event the chat belongs to.
func (r chatRef) eventOf(tx *gorm.DB, chatID int64) (int64, error) {
	var eventIDs []int64
	if err := tx.Model(r.chat).Where("id = ?", chatID).Limit(1).Pluck("event_id", &eventIDs).Error; err != nil {
		return 0, err
	}
	if len(eventIDs) == 0 {
		return 0, fmt.Errorf("%s %d: %w", r.notFound, chatID, models.ErrNotFound)
	}
	return eventIDs[0], nil
}

func (r chatRef) inRoster(tx *gorm.DB, chatID, userID int64) (bool, error) {
	return exists(tx, r.roster, "chat_id = ? AND user_id = ?", chatID, userID)
}

// authorizeAdd checks that actorID may put userID on the chat roster. On a
// private chat the actor must already be on the roster; on a group chat the
// actor must be an active member of the event. The added user must be an
// active member either way.
func authorizeAdd(tx *gorm.DB, kind models.GroupType, chatID, actorID, userID int64) error {
	ref, err := refFor(kind)
	if err != nil {
		return err
	}
	eventID, err := ref.eventOf(tx, chatID)
	if err != nil {
		return err
	}
	var allowed bool
	if kind == models.GroupPrivate {
		allowed, err = ref.inRoster(tx, chatID, actorID)
	} else {
		allowed, err = activeMember(tx, eventID, actorID)
	}
	if err != nil {
		return err
	}
	if !allowed {
		return fmt.Errorf("%w: cannot add users to this chat", ErrForbidden)
	}
	if err := checkUsers(tx, []int64{userID}); err != nil {
		return err
	}
	ok, err := activeMember(tx, eventID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: user %d is not an accepted member of the event", models.ErrInvalid, userID)
	}
	return nil
}

// AddPrivateMember lets actorID put userID on the chat roster. Adding twice is a no-op.
func (s *ChatService) AddPrivateMember(ctx context.Context, chatID, actorID, userID int64) (*models.UsersPrivateChat, error) {
	row := models.UsersPrivateChat{ChatID: chatID, UserID: userID}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := authorizeAdd(tx, models.GroupPrivate, chatID, actorID, userID); err != nil {
			return err
		}
		return tx.Where("chat_id = ? AND user_id = ?", chatID, userID).FirstOrCreate(&row).Error
	})
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (s *ChatService) AddGroupMember(ctx context.Context, chatID, actorID, userID int64) (*models.UsersGroupChat, error) {
	row := models.UsersGroupChat{ChatID: chatID, UserID: userID}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := authorizeAdd(tx, models.GroupGroup, chatID, actorID, userID); err != nil {
			return err
		}
		return tx.Where("chat_id = ? AND user_id = ?", chatID, userID).FirstOrCreate(&row).Error
	})
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// SendMessage stores msg. The group type must match the chat reference, the
// chat must exist and the sender (and receiver, if any) must be on its
// roster. SentAt defaults to now.
func (s *ChatService) SendMessage(ctx context.Context, msg *models.Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}
	ref, err := refFor(msg.GroupType)
	if err != nil {
		return err
	}
	if msg.SentAt.IsZero() {
		msg.SentAt = s.now().UTC()
	}
	msg.DeliveredAt, msg.ReadAt = nil, nil
	chatID := msg.ChatID()
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ref.check(tx, chatID); err != nil {
			return err
		}
		ok, err := ref.inRoster(tx, chatID, msg.SenderID)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: sender is not in the chat", ErrForbidden)
		}
		if msg.ReceiverID != nil {
			ok, err := ref.inRoster(tx, chatID, *msg.ReceiverID)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("%w: receiver is not in the chat", models.ErrInvalid)
			}
		}
		if err := tx.Create(msg).Error; err != nil {
			return err
		}
		created("message")
		return nil
	})
}

// readableMessage loads a message that userID may see.
func readableMessage(tx *gorm.DB, messageID uint, userID int64) (*models.Message, error) {
	var msg models.Message
	if err := tx.First(&msg, "id = ?", messageID).Error; err != nil {
		return nil, notFound(err, "message")
	}
	ref, err := refFor(msg.GroupType)
	if err != nil {
		return nil, err
	}
	ok, err := ref.inRoster(tx, msg.ChatID(), userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrForbidden
	}
	return &msg, nil
}

// MarkDelivered records when the message first reached userID's client.
func (s *ChatService) MarkDelivered(ctx context.Context, messageID uint, userID int64) (*models.Message, error) {
	var msg *models.Message
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if msg, err = readableMessage(tx, messageID, userID); err != nil {
			return err
		}
		if msg.DeliveredAt != nil {
			return nil
		}
		now := s.now().UTC()
		msg.DeliveredAt = &now
		return tx.Model(msg).Update("delivered_at", now).Error
	})
	if err != nil {
		return nil, err
	}
	return msg, nil
}

// MarkRead records when the message was read. A read message counts as delivered.
func (s *ChatService) MarkRead(ctx context.Context, messageID uint, userID int64) (*models.Message, error) {
	var msg *models.Message
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if msg, err = readableMessage(tx, messageID, userID); err != nil {
			return err
		}
		if msg.ReadAt != nil {
			return nil
		}
		now := s.now().UTC()
		updates := map[string]any{"read_at": now}
		msg.ReadAt = &now
		if msg.DeliveredAt == nil {
			updates["delivered_at"] = now
			msg.DeliveredAt = &now
		}
		return tx.Model(msg).Updates(updates).Error
	})
	if err != nil {
		return nil, err
	}
	return msg, nil
}

// Messages returns the chat history in send order, serialized with sender
// images. Only roster members may read it.
func (s *ChatService) Messages(ctx context.Context, kind models.GroupType, chatID, userID int64) ([]models.View, error) {
	ref, err := refFor(kind)
	if err != nil {
		return nil, err
	}
	db := s.db.WithContext(ctx)
	if err := ref.check(db, chatID); err != nil {
		return nil, err
	}
	ok, err := ref.inRoster(db, chatID, userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrForbidden
	}
	var msgs []models.Message
	if err := db.Where(ref.fk+" = ?", chatID).Order("sent_at asc").Order("id asc").Find(&msgs).Error; err != nil {
		return nil, err
	}
	images := make(map[int64]*string)
	out := make([]models.View, 0, len(msgs))
	for i := range msgs {
		img, ok := images[msgs[i].SenderID]
		if !ok {
			img = senderImage(db, msgs[i].SenderID)
			images[msgs[i].SenderID] = img
		}
		out = append(out, msgs[i].Serialize(img))
	}
	return out, nil
}

// DeletePrivateChat removes the chat with its roster and messages. Only its creator may do so.
func (s *ChatService) DeletePrivateChat(ctx context.Context, chatID, userID int64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var chat models.PrivateChat
		if err := tx.First(&chat, "id = ?", chatID).Error; err != nil {
			return notFound(err, "private chat")
		}
		if chat.UserID != userID {
			return ErrForbidden
		}
		if err := deletePrivateChats(tx, []int64{chatID}); err != nil {
			return err
		}
		metrics.CascadeDeletes.WithLabelValues("private_chat").Inc()
		return nil
	})
}

// DeleteGroupChat removes the chat with its roster and messages. Only the event owner may do so.
func (s *ChatService) DeleteGroupChat(ctx context.Context, chatID, userID int64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var chat models.GroupChat
		if err := tx.First(&chat, "id = ?", chatID).Error; err != nil {
			return notFound(err, "group chat")
		}
		if _, err := ownedEvent(tx, chat.EventID, userID); err != nil {
			return err
		}
		if err := deleteGroupChats(tx, []int64{chatID}); err != nil {
			return err
		}
		metrics.CascadeDeletes.WithLabelValues("group_chat").Inc()
		return nil
	})
}
