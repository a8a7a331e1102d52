package models

import (
	"time"

	"gorm.io/gorm"
)

// User is a registered account. Rows that reference a user are owned by it
// and are removed together with it.
type User struct {
	ID       int64  `json:"id" gorm:"primaryKey;autoIncrement:false"`
	Email    string `json:"email" gorm:"type:varchar(120);uniqueIndex;not null"`
	Password string `json:"-" gorm:"type:varchar(80);not null"`
	IsActive bool   `json:"is_active" gorm:"not null"`

	Profile             *UserProfile       `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Events              []Event            `json:"-" gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE"`
	Memberships         []EventMember      `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	PrivateChatRosters  []UsersPrivateChat `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	GroupChatRosters    []UsersGroupChat   `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	CreatedPrivateChats []PrivateChat      `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	SentMessages        []Message          `json:"-" gorm:"foreignKey:SenderID;constraint:OnDelete:CASCADE"`
	ReceivedMessages    []Message          `json:"-" gorm:"foreignKey:ReceiverID;constraint:OnDelete:CASCADE"`
	ProfileImages       []UserProfileImage `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Favorites           []Favorite         `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// UserProfile shares its primary key with the user it describes.
type UserProfile struct {
	UserID       int64     `json:"user_id" gorm:"primaryKey;autoIncrement:false"`
	Name         string    `json:"name" gorm:"type:varchar(120);not null"`
	LastName     string    `json:"last_name" gorm:"type:varchar(120);not null"`
	Birthdate    time.Time `json:"birthdate" gorm:"type:date;not null"`
	Location     string    `json:"location" gorm:"type:varchar(250);not null"`
	Description  string    `json:"description" gorm:"type:varchar(500);not null"`
	ProfileImage string    `json:"profile_image" gorm:"type:varchar(250);not null"`
	CoverImage   *string   `json:"cover_image" gorm:"type:varchar(250)"`
}

type EventType struct {
	ID     uint    `json:"id" gorm:"primaryKey"`
	Name   string  `json:"name" gorm:"type:varchar(120);not null"`
	Image  string  `json:"image" gorm:"type:varchar(250);not null"`
	Events []Event `json:"-" gorm:"foreignKey:EventTypeID"`
}

// Event is something users can join, chat about and favorite.
//
// Status is whatever was last stored; it is never synced with the schedule
// automatically. Use ActualStatus for the live value.
type Event struct {
	ID              int64       `json:"id" gorm:"primaryKey;autoIncrement:false"`
	OwnerID         int64       `json:"owner" gorm:"not null;index"`
	Name            string      `json:"name" gorm:"type:varchar(120);not null"`
	Location        string      `json:"location" gorm:"type:varchar(250);not null"`
	LocationName    *string     `json:"location_name" gorm:"type:varchar(250)"`
	Latitude        *float64    `json:"latitude"`
	Longitude       *float64    `json:"longitude"`
	StartAt         time.Time   `json:"date" gorm:"column:start_datetime;not null"`
	EndAt           *time.Time  `json:"end_date" gorm:"column:end_datetime"`
	Status          EventStatus `json:"status" gorm:"type:varchar(16);not null;check:chk_events_status,status IN ('Planned','Completed','Canceled','In Progress')"`
	Description     *string     `json:"description" gorm:"type:varchar(250)"`
	BudgetPerPerson *float64    `json:"budget_per_person"`
	EventTypeID     uint        `json:"event_type_id" gorm:"not null;index"`

	Members      []EventMember `json:"-" gorm:"foreignKey:EventID;constraint:OnDelete:CASCADE"`
	PrivateChats []PrivateChat `json:"-" gorm:"foreignKey:EventID;constraint:OnDelete:CASCADE"`
	GroupChats   []GroupChat   `json:"-" gorm:"foreignKey:EventID;constraint:OnDelete:CASCADE"`
	Favorites    []Favorite    `json:"-" gorm:"foreignKey:EventID;constraint:OnDelete:CASCADE"`
}

func (e *Event) BeforeCreate(tx *gorm.DB) error {
	if e.Status == "" {
		e.Status = StatusPlanned
	}
	return nil
}

// EventMember links a user to an event. A user appears at most once per event.
type EventMember struct {
	ID      uint         `json:"id" gorm:"primaryKey"`
	EventID int64        `json:"event_id" gorm:"not null;uniqueIndex:idx_event_user"`
	UserID  int64        `json:"user_id" gorm:"not null;uniqueIndex:idx_event_user;index"`
	Status  MemberStatus `json:"status" gorm:"column:member_status;type:varchar(16);not null;check:chk_event_members_status,member_status IN ('Applied','Owner','Accepted','Rejected')"`
}

// PrivateChat is a chat inside an event, started by one user.
type PrivateChat struct {
	ID        int64              `json:"id" gorm:"primaryKey;autoIncrement:false"`
	EventID   int64              `json:"event_id" gorm:"not null;index"`
	UserID    int64              `json:"user_id" gorm:"not null;index"`
	CreatedAt time.Time          `json:"createdAt" gorm:"not null"`
	Roster    []UsersPrivateChat `json:"-" gorm:"foreignKey:ChatID;constraint:OnDelete:CASCADE"`
	Messages  []Message          `json:"-" gorm:"foreignKey:PrivateChatID;constraint:OnDelete:CASCADE"`
}

type UsersPrivateChat struct {
	ID     uint  `json:"id" gorm:"primaryKey"`
	UserID int64 `json:"user_id" gorm:"not null;uniqueIndex:idx_private_chat_user"`
	ChatID int64 `json:"chat_id" gorm:"not null;uniqueIndex:idx_private_chat_user;index"`
}

// GroupChat is the shared chat of an event.
type GroupChat struct {
	ID        int64            `json:"id" gorm:"primaryKey;autoIncrement:false"`
	EventID   int64            `json:"event_id" gorm:"not null;index"`
	CreatedAt time.Time        `json:"createdAt" gorm:"not null"`
	Roster    []UsersGroupChat `json:"-" gorm:"foreignKey:ChatID;constraint:OnDelete:CASCADE"`
	Messages  []Message        `json:"-" gorm:"foreignKey:GroupChatID;constraint:OnDelete:CASCADE"`
}

type UsersGroupChat struct {
	ID     uint  `json:"id" gorm:"primaryKey"`
	UserID int64 `json:"user_id" gorm:"not null;uniqueIndex:idx_group_chat_user"`
	ChatID int64 `json:"chat_id" gorm:"not null;uniqueIndex:idx_group_chat_user;index"`
}

// Message belongs to exactly one chat. GroupType names which one.
type Message struct {
	ID            uint       `json:"id" gorm:"primaryKey"`
	PrivateChatID *int64     `json:"private_chat_id" gorm:"index;check:chk_messages_chat_ref,(group_type = 'Private' AND private_chat_id IS NOT NULL AND group_chat_id IS NULL) OR (group_type = 'Group' AND group_chat_id IS NOT NULL AND private_chat_id IS NULL)"`
	GroupChatID   *int64     `json:"group_chat_id" gorm:"index"`
	SenderID      int64      `json:"sender_id" gorm:"not null;index"`
	ReceiverID    *int64     `json:"receiver_id" gorm:"index"`
	Text          string     `json:"message" gorm:"column:message;type:varchar(250);not null"`
	GroupType     GroupType  `json:"group_type" gorm:"type:varchar(8);not null;check:chk_messages_group_type,group_type IN ('Private','Group')"`
	SentAt        time.Time  `json:"sentAt" gorm:"not null"`
	DeliveredAt   *time.Time `json:"deliveredAt"`
	ReadAt        *time.Time `json:"readAt"`
}

func (m *Message) BeforeSave(tx *gorm.DB) error {
	return m.Validate()
}

// UserProfileImage is one entry in a user's image gallery.
type UserProfileImage struct {
	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement:false"`
	UserID    int64     `json:"user_id" gorm:"not null;index"`
	ImagePath string    `json:"image_path" gorm:"type:varchar(250);not null"`
	CreatedAt time.Time `json:"-" gorm:"not null"`
}

type Favorite struct {
	ID      uint  `json:"id" gorm:"primaryKey"`
	UserID  int64 `json:"user_id" gorm:"not null;uniqueIndex:idx_favorite_user_event"`
	EventID int64 `json:"event_id" gorm:"not null;uniqueIndex:idx_favorite_user_event;index"`
}

// All lists every table, parents first.
func All() []any {
	return []any{
		&User{}, &UserProfile{}, &EventType{}, &Event{}, &EventMember{},
		&PrivateChat{}, &UsersPrivateChat{}, &GroupChat{}, &UsersGroupChat{},
		&Message{}, &UserProfileImage{}, &Favorite{},
	}
}
