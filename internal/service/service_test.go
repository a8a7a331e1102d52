package service

import (
	"context"
	"testing"
	"time"

	"meetup-backend/internal/auth"
	"meetup-backend/internal/db"
	"meetup-backend/internal/ids"
	"meetup-backend/internal/models"
	"meetup-backend/internal/storage"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type testClock struct{ t time.Time }

func (c *testClock) Now() time.Time { return c.t }

func (c *testClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

type testEnv struct {
	ctx     context.Context
	db      *gorm.DB
	clock   *testClock
	used    *auth.MemoryUsedTokens
	uploads *storage.MemoryUploader

	users  *UserService
	events *EventService
	chats  *ChatService
	favs   *FavoriteService
	images *ImageService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gdb, err := db.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close(gdb) })

	clock := &testClock{t: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
	gen := ids.NewRandom()
	used := auth.NewMemoryUsedTokens(clock.Now)
	uploads := storage.NewMemoryUploader()
	tokens := auth.ResetTokens{Secret: "secret", Salt: "salt", MaxAge: auth.DefaultResetMaxAge}

	return &testEnv{
		ctx:     context.Background(),
		db:      gdb,
		clock:   clock,
		used:    used,
		uploads: uploads,
		users:   NewUserService(gdb, gen, clock.Now, tokens, used),
		events:  NewEventService(gdb, gen, clock.Now),
		chats:   NewChatService(gdb, gen, clock.Now),
		favs:    NewFavoriteService(gdb),
		images:  NewImageService(gdb, gen, clock.Now, uploads),
	}
}

func (e *testEnv) user(t *testing.T, email string) *models.User {
	t.Helper()
	u, err := e.users.Register(e.ctx, email, "password")
	require.NoError(t, err)
	return u
}

func (e *testEnv) profile(t *testing.T, userID int64, image string) *models.UserProfile {
	t.Helper()
	p := &models.UserProfile{
		UserID:       userID,
		Name:         "Ana",
		LastName:     "Lopez",
		Birthdate:    time.Date(1990, 2, 3, 0, 0, 0, 0, time.UTC),
		Location:     "Madrid",
		Description:  "hi",
		ProfileImage: image,
	}
	require.NoError(t, e.users.UpsertProfile(e.ctx, p))
	return p
}

func (e *testEnv) event(t *testing.T, ownerID int64) *models.Event {
	t.Helper()
	end := e.clock.Now().Add(27 * time.Hour)
	ev, err := e.events.Create(e.ctx, ownerID, EventInput{
		Name:        "Picnic",
		Location:    "Retiro",
		StartAt:     e.clock.Now().Add(24 * time.Hour),
		EndAt:       &end,
		EventTypeID: 1,
	})
	require.NoError(t, err)
	return ev
}

// member joins userID to the event and has the owner accept them.
func (e *testEnv) member(t *testing.T, eventID, ownerID, userID int64) *models.EventMember {
	t.Helper()
	m, err := e.events.Join(e.ctx, eventID, userID)
	require.NoError(t, err)
	m, err = e.events.SetMemberStatus(e.ctx, eventID, ownerID, m.ID, models.MemberAccepted)
	require.NoError(t, err)
	return m
}

func count(t *testing.T, gdb *gorm.DB, model any, query string, args ...any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, gdb.Model(model).Where(query, args...).Count(&n).Error)
	return n
}
