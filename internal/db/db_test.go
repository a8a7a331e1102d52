package db

import (
	"testing"
	"time"

	"meetup-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestOpenMemory_MigratesAndSeeds(t *testing.T) {
	gdb, err := OpenMemory()
	require.NoError(t, err)
	defer Close(gdb)

	for _, m := range models.All() {
		assert.True(t, gdb.Migrator().HasTable(m), "%T", m)
	}

	var types []models.EventType
	require.NoError(t, gdb.Order("id").Find(&types).Error)
	require.Len(t, types, len(DefaultEventTypes))
	assert.Equal(t, DefaultEventTypes[0].Name, types[0].Name)

	// seeding again is a no-op
	require.NoError(t, Migrate(gdb))
	var n int64
	require.NoError(t, gdb.Model(&models.EventType{}).Count(&n).Error)
	assert.EqualValues(t, len(DefaultEventTypes), n)
}

func TestOpenMemory_Isolated(t *testing.T) {
	a, err := OpenMemory()
	require.NoError(t, err)
	defer Close(a)
	b, err := OpenMemory()
	require.NoError(t, err)
	defer Close(b)

	require.NoError(t, a.Create(&models.User{ID: 1234567890, Email: "a@example.com", Password: "x"}).Error)

	var n int64
	require.NoError(t, b.Model(&models.User{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestForeignKeysEnforced(t *testing.T) {
	gdb, err := OpenMemory()
	require.NoError(t, err)
	defer Close(gdb)

	err = gdb.Create(&models.Favorite{UserID: 1, EventID: 2}).Error
	assert.Error(t, err)
}

func TestMessageChatReferenceEnforced(t *testing.T) {
	gdb, err := OpenMemory()
	require.NoError(t, err)
	defer Close(gdb)

	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, gdb.Create(&models.User{ID: 1234567890, Email: "a@example.com", Password: "x", IsActive: true}).Error)
	require.NoError(t, gdb.Create(&models.Event{ID: 2234567890, OwnerID: 1234567890, Name: "Picnic", Location: "Retiro", StartAt: now, EventTypeID: 1}).Error)
	private := models.PrivateChat{ID: 3234567890, EventID: 2234567890, UserID: 1234567890, CreatedAt: now}
	require.NoError(t, gdb.Create(&private).Error)
	group := models.GroupChat{ID: 4234567890, EventID: 2234567890, CreatedAt: now}
	require.NoError(t, gdb.Create(&group).Error)

	// hooks skipped so only the table constraint stands in the way
	raw := gdb.Session(&gorm.Session{SkipHooks: true})
	tests := []struct {
		name string
		msg  models.Message
	}{
		{"private type on group chat", models.Message{GroupChatID: &group.ID, GroupType: models.GroupPrivate}},
		{"group type on private chat", models.Message{PrivateChatID: &private.ID, GroupType: models.GroupGroup}},
		{"both chats", models.Message{PrivateChatID: &private.ID, GroupChatID: &group.ID, GroupType: models.GroupPrivate}},
		{"no chat", models.Message{GroupType: models.GroupGroup}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.msg
			msg.SenderID, msg.Text, msg.SentAt = 1234567890, "hi", now
			assert.Error(t, raw.Create(&msg).Error)
		})
	}

	msg := models.Message{PrivateChatID: &private.ID, GroupType: models.GroupPrivate, SenderID: 1234567890, Text: "hi", SentAt: now}
	require.NoError(t, gdb.Create(&msg).Error)
	assert.Error(t, gdb.Model(&msg).Update("group_type", models.GroupGroup).Error)
	assert.Error(t, raw.Model(&models.Message{}).Where("id = ?", msg.ID).Update("group_chat_id", group.ID).Error)

	var stored models.Message
	require.NoError(t, gdb.First(&stored, msg.ID).Error)
	assert.Equal(t, models.GroupPrivate, stored.GroupType)
	assert.Nil(t, stored.GroupChatID)
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open("mysql", "dsn")
	assert.Error(t, err)
}
