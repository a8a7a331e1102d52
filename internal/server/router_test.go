package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"meetup-backend/internal/auth"
	"meetup-backend/internal/config"
	"meetup-backend/internal/db"
	"meetup-backend/internal/ids"
	"meetup-backend/internal/service"
	"meetup-backend/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gdb, err := db.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close(gdb) })

	cfg := config.Config{Port: "0", Env: "dev", JWTSecret: "secret", PasswordSalt: "salt", AccessTokenTTLMinutes: 15}
	gen := ids.NewRandom()
	tokens := auth.ResetTokens{Secret: cfg.JWTSecret, Salt: cfg.PasswordSalt, MaxAge: auth.DefaultResetMaxAge}
	svc := Services{
		Users:     service.NewUserService(gdb, gen, time.Now, tokens, auth.NewMemoryUsedTokens(time.Now)),
		Events:    service.NewEventService(gdb, gen, time.Now),
		Chats:     service.NewChatService(gdb, gen, time.Now),
		Favorites: service.NewFavoriteService(gdb),
		Images:    service.NewImageService(gdb, gen, time.Now, storage.NewMemoryUploader()),
	}
	return SetupRouter(cfg, NewHandler(cfg, svc))
}

func do(t *testing.T, r *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

type session struct {
	id    int64
	token string
}

func signup(t *testing.T, r *gin.Engine, email string) session {
	t.Helper()
	creds := gin.H{"email": email, "password": "password"}
	w := do(t, r, http.MethodPost, "/signup", "", creds)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	w = do(t, r, http.MethodPost, "/login", "", creds)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode[struct {
		Token string `json:"token"`
		User  struct {
			ID int64 `json:"id"`
		} `json:"user"`
	}](t, w)
	return session{id: resp.User.ID, token: resp.Token}
}

func createEvent(t *testing.T, r *gin.Engine, s session) int64 {
	t.Helper()
	start := time.Now().Add(24 * time.Hour).UTC().Format(time.RFC3339)
	w := do(t, r, http.MethodPost, "/api/events", s.token, gin.H{
		"name": "Picnic", "location": "Retiro", "date": start, "event_type_id": 1,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[struct {
		ID int64 `json:"id"`
	}](t, w).ID
}

// accept joins guest to the event and has the owner accept them.
func accept(t *testing.T, r *gin.Engine, owner, guest session, eventID int64) {
	t.Helper()
	eventPath := fmt.Sprintf("/api/events/%d", eventID)
	w := do(t, r, http.MethodPost, eventPath+"/join", guest.token, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	memberID := decode[struct {
		ID uint `json:"id"`
	}](t, w).ID
	w = do(t, r, http.MethodPut, fmt.Sprintf("%s/members/%d", eventPath, memberID), owner.token, gin.H{"status": "Accepted"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestHealthzAndMetrics(t *testing.T) {
	r := newTestRouter(t)

	w := do(t, r, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = do(t, r, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "http_requests_total")
}

func TestSignupAndLogin(t *testing.T) {
	r := newTestRouter(t)
	s := signup(t, r, "ana@example.com")
	assert.True(t, s.id >= ids.Min && s.id <= ids.Max)

	tests := []struct {
		name string
		path string
		body any
		want int
	}{
		{"duplicate email", "/signup", gin.H{"email": "ANA@example.com", "password": "password"}, http.StatusConflict},
		{"short password", "/signup", gin.H{"email": "bob@example.com", "password": "123"}, http.StatusBadRequest},
		{"missing fields", "/signup", gin.H{"email": "bob@example.com"}, http.StatusBadRequest},
		{"wrong password", "/login", gin.H{"email": "ana@example.com", "password": "nope"}, http.StatusUnauthorized},
		{"unknown email", "/login", gin.H{"email": "who@example.com", "password": "password"}, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, r, http.MethodPost, tt.path, "", tt.body)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
			assert.NotContains(t, w.Body.String(), "password\":")
		})
	}

	w := do(t, r, http.MethodGet, "/api/users/me", s.token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "password")
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	r := newTestRouter(t)
	for _, path := range []string{"/api/users/me", "/api/events/mine", "/api/favorites"} {
		w := do(t, r, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
		w = do(t, r, http.MethodGet, path, "garbage", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}
	w := do(t, r, http.MethodGet, "/api/event-types", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestEventLifecycle(t *testing.T) {
	r := newTestRouter(t)
	owner := signup(t, r, "owner@example.com")
	guest := signup(t, r, "guest@example.com")
	eventID := createEvent(t, r, owner)
	eventPath := fmt.Sprintf("/api/events/%d", eventID)

	w := do(t, r, http.MethodGet, eventPath, guest.token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	ev := decode[map[string]any](t, w)
	assert.Equal(t, "Planned", ev["status"])
	assert.Nil(t, ev["end_date"])
	assert.Regexp(t, `^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2} GMT[+-]\d{4}$`, ev["date"])

	w = do(t, r, http.MethodPost, eventPath+"/join", guest.token, nil)
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	w = do(t, r, http.MethodPost, eventPath+"/join", guest.token, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(t, r, http.MethodGet, eventPath+"/members", guest.token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	members := decode[[]struct {
		ID     uint   `json:"id"`
		Status string `json:"status"`
	}](t, w)
	require.Len(t, members, 2)
	assert.Equal(t, "Owner", members[0].Status)
	assert.Equal(t, "Applied", members[1].Status)

	memberPath := fmt.Sprintf("%s/members/%d", eventPath, members[1].ID)
	w = do(t, r, http.MethodPut, memberPath, guest.token, gin.H{"status": "Accepted"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = do(t, r, http.MethodPut, memberPath, owner.token, gin.H{"status": "Owner"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = do(t, r, http.MethodPut, memberPath, owner.token, gin.H{"status": "Accepted"})
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = do(t, r, http.MethodPut, eventPath, owner.token, gin.H{"name": "BBQ"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "BBQ", decode[map[string]any](t, w)["name"])

	w = do(t, r, http.MethodPut, eventPath+"/status", owner.token, gin.H{"status": "Postponed"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = do(t, r, http.MethodPut, eventPath+"/status", owner.token, gin.H{"status": "Canceled"})
	assert.Equal(t, http.StatusOK, w.Code)
	w = do(t, r, http.MethodGet, eventPath+"/status", owner.token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	status := decode[map[string]any](t, w)
	assert.Equal(t, "Canceled", status["status"])
	assert.Equal(t, "Planned", status["actual_status"])

	w = do(t, r, http.MethodDelete, eventPath, guest.token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = do(t, r, http.MethodDelete, eventPath, owner.token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = do(t, r, http.MethodGet, eventPath, owner.token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, r, http.MethodGet, "/api/events/abc", owner.token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateEventClearsWithNull(t *testing.T) {
	r := newTestRouter(t)
	s := signup(t, r, "owner@example.com")
	start := time.Now().Add(24 * time.Hour).UTC()
	w := do(t, r, http.MethodPost, "/api/events", s.token, gin.H{
		"name": "Picnic", "location": "Retiro", "date": start.Format(time.RFC3339),
		"end_date": start.Add(3 * time.Hour).Format(time.RFC3339), "description": "bring food",
		"location_name": "Rose garden", "event_type_id": 1,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	eventPath := fmt.Sprintf("/api/events/%d", decode[struct {
		ID int64 `json:"id"`
	}](t, w).ID)

	// absent fields stay, explicit nulls clear
	w = do(t, r, http.MethodPut, eventPath, s.token, gin.H{"end_date": nil})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	ev := decode[map[string]any](t, w)
	assert.Nil(t, ev["end_date"])
	assert.Equal(t, "bring food", ev["description"])

	w = do(t, r, http.MethodPut, eventPath, s.token, gin.H{"description": nil, "location_name": nil, "name": "BBQ"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = do(t, r, http.MethodGet, eventPath, s.token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	ev = decode[map[string]any](t, w)
	assert.Nil(t, ev["description"])
	assert.Nil(t, ev["location_name"])
	assert.Equal(t, "BBQ", ev["name"])
	assert.Equal(t, "Retiro", ev["location"])

	w = do(t, r, http.MethodPut, eventPath, s.token, gin.H{"name": nil})
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "BBQ", decode[map[string]any](t, w)["name"])
}

func TestCreateEventValidation(t *testing.T) {
	r := newTestRouter(t)
	s := signup(t, r, "owner@example.com")
	tests := []struct {
		name string
		body gin.H
		want int
	}{
		{"bad date", gin.H{"name": "x", "location": "y", "date": "tomorrow", "event_type_id": 1}, http.StatusBadRequest},
		{"missing name", gin.H{"location": "y", "date": "2030-01-01", "event_type_id": 1}, http.StatusBadRequest},
		{"unknown type", gin.H{"name": "x", "location": "y", "date": "2030-01-01", "event_type_id": 999}, http.StatusNotFound},
		{"date only", gin.H{"name": "x", "location": "y", "date": "2030-01-01", "event_type_id": 1}, http.StatusCreated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, r, http.MethodPost, "/api/events", s.token, tt.body)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
		})
	}
}

func TestChatFlow(t *testing.T) {
	r := newTestRouter(t)
	owner := signup(t, r, "owner@example.com")
	guest := signup(t, r, "guest@example.com")
	stranger := signup(t, r, "stranger@example.com")
	eventID := createEvent(t, r, owner)
	groupChats := fmt.Sprintf("/api/events/%d/group-chats", eventID)

	w := do(t, r, http.MethodPost, groupChats, owner.token, gin.H{"participants": []int64{guest.id}})
	assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
	w = do(t, r, http.MethodPost, groupChats, stranger.token, gin.H{"participants": []int64{owner.id}})
	assert.Equal(t, http.StatusForbidden, w.Code, w.Body.String())

	accept(t, r, owner, guest, eventID)
	w = do(t, r, http.MethodPost, groupChats, owner.token, gin.H{"participants": []int64{guest.id}})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	chatID := decode[struct {
		ID int64 `json:"id"`
	}](t, w).ID
	msgs := fmt.Sprintf("/api/chats/group/%d/messages", chatID)

	w = do(t, r, http.MethodPost, msgs, guest.token, gin.H{"message": "hello"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	sent := decode[map[string]any](t, w)
	assert.Equal(t, "Group", sent["group_type"])
	assert.Contains(t, sent, "sender_img")
	assert.Nil(t, sent["sender_img"])
	msgID := uint(sent["id"].(float64))

	w = do(t, r, http.MethodPost, msgs, guest.token, gin.H{"message": strings.Repeat("a", 251)})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	w = do(t, r, http.MethodPost, msgs, stranger.token, gin.H{"message": "hi"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = do(t, r, http.MethodPost, fmt.Sprintf("/api/chats/broadcast/%d/messages", chatID), guest.token, gin.H{"message": "hi"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = do(t, r, http.MethodPost, fmt.Sprintf("/api/chats/private/%d/messages", chatID), guest.token, gin.H{"message": "hi"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, r, http.MethodPut, fmt.Sprintf("/api/messages/%d/read", msgID), owner.token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	read := decode[map[string]any](t, w)
	assert.NotNil(t, read["readAt"])
	assert.Equal(t, read["readAt"], read["deliveredAt"])

	w = do(t, r, http.MethodGet, msgs, owner.token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]map[string]any](t, w), 1)

	users := fmt.Sprintf("/api/chats/group/%d/users", chatID)
	w = do(t, r, http.MethodPost, users, stranger.token, gin.H{"user_id": stranger.id})
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = do(t, r, http.MethodPost, users, owner.token, gin.H{"user_id": stranger.id})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	accept(t, r, owner, stranger, eventID)
	w = do(t, r, http.MethodPost, users, owner.token, gin.H{"user_id": stranger.id})
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = do(t, r, http.MethodGet, msgs, stranger.token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(t, r, http.MethodDelete, fmt.Sprintf("/api/chats/group/%d", chatID), guest.token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = do(t, r, http.MethodDelete, fmt.Sprintf("/api/chats/group/%d", chatID), owner.token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = do(t, r, http.MethodGet, msgs, owner.token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestFavoritesAndProfile(t *testing.T) {
	r := newTestRouter(t)
	owner := signup(t, r, "owner@example.com")
	fan := signup(t, r, "fan@example.com")
	eventID := createEvent(t, r, owner)

	w := do(t, r, http.MethodPut, "/api/users/me/profile", fan.token, gin.H{
		"name": "Ana", "last_name": "Lopez", "birthdate": "1990-02-03",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = do(t, r, http.MethodGet, fmt.Sprintf("/api/users/%d/profile", fan.id), owner.token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "1990-02-03", decode[map[string]any](t, w)["birthdate"])

	favPath := fmt.Sprintf("/api/events/%d/favorite", eventID)
	for range 2 {
		w = do(t, r, http.MethodPost, favPath, fan.token, nil)
		assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}
	w = do(t, r, http.MethodGet, "/api/favorites", fan.token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	favs := decode[[]map[string]any](t, w)
	require.Len(t, favs, 1)
	assert.Equal(t, "Ana", favs[0]["user_info"].(map[string]any)["name"])
	assert.Equal(t, "Picnic", favs[0]["event_info"].(map[string]any)["name"])

	w = do(t, r, http.MethodDelete, favPath, fan.token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = do(t, r, http.MethodDelete, favPath, fan.token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestImageUpload(t *testing.T) {
	r := newTestRouter(t)
	s := signup(t, r, "ana@example.com")
	png := "iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAQAAAC1HAwCAAAAC0lEQVR42mNkYAAAAAYAAjCB0C8AAAAASUVORK5CYII="

	w := do(t, r, http.MethodPost, "/api/users/me/images", s.token, gin.H{"image": png})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	path := decode[map[string]any](t, w)["image_path"].(string)
	assert.True(t, strings.HasPrefix(path, fmt.Sprintf("profile-images/%d/", s.id)))

	w = do(t, r, http.MethodPost, "/api/users/me/images", s.token, gin.H{"image": "bm90IGFuIGltYWdl"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodGet, "/api/users/me/images", s.token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]map[string]any](t, w), 1)
}

func TestPasswordRecovery(t *testing.T) {
	r := newTestRouter(t)
	signup(t, r, "ana@example.com")

	w := do(t, r, http.MethodPost, "/api/recover-password", "", gin.H{"email": "nobody@example.com"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, decode[map[string]any](t, w), "reset_url")

	w = do(t, r, http.MethodPost, "/api/recover-password", "", gin.H{"email": "ana@example.com", "frontend_url": "https://app.example.com/"})
	require.Equal(t, http.StatusOK, w.Code)
	link, ok := decode[map[string]any](t, w)["reset_url"].(string)
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(link, "https://app.example.com/reset-password?token="))
	u, err := url.Parse(link)
	require.NoError(t, err)
	token := u.Query().Get("token")
	require.NotEmpty(t, token)

	reset := gin.H{"token": token, "password": "new-password"}
	w = do(t, r, http.MethodPost, "/api/reset-password", "", reset)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = do(t, r, http.MethodPost, "/api/reset-password", "", reset)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(t, r, http.MethodPost, "/login", "", gin.H{"email": "ana@example.com", "password": "new-password"})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestClientAuthRoutes(t *testing.T) {
	r := newTestRouter(t)
	creds := gin.H{"email": "ana@example.com", "password": "password"}
	w := do(t, r, http.MethodPost, "/api/signup", "", creds)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	w = do(t, r, http.MethodPost, "/api/login", "", creds)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	token := decode[struct {
		Token string `json:"token"`
	}](t, w).Token

	w = do(t, r, http.MethodGet, "/api/valid-token", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"is_logged":true}`, w.Body.String())
	w = do(t, r, http.MethodGet, "/api/valid-token", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w = do(t, r, http.MethodGet, "/api/valid-token", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(t, r, http.MethodPost, "/api/recover-password", "", gin.H{"email": "ana@example.com"})
	require.Equal(t, http.StatusOK, w.Code)
	link, ok := decode[map[string]any](t, w)["reset_url"].(string)
	require.True(t, ok)
	u, err := url.Parse(link)
	require.NoError(t, err)
	reset := u.Query().Get("token")

	tests := []struct {
		name  string
		token string
		body  any
		want  int
	}{
		{"missing header", "", gin.H{"password": "new-password"}, http.StatusUnauthorized},
		{"forged token", "not-a-reset-token", gin.H{"password": "new-password"}, http.StatusUnauthorized},
		{"access token is not a reset token", token, gin.H{"password": "new-password"}, http.StatusUnauthorized},
		{"missing password", reset, gin.H{}, http.StatusBadRequest},
		{"ok", reset, gin.H{"password": "new-password"}, http.StatusOK},
		{"reused", reset, gin.H{"password": "other-password"}, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, r, http.MethodPut, "/api/reset-password", tt.token, tt.body)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
		})
	}
	w = do(t, r, http.MethodPost, "/api/login", "", gin.H{"email": "ana@example.com", "password": "new-password"})
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(t, r, http.MethodDelete, "/api/users/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = do(t, r, http.MethodGet, "/api/valid-token", token, nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	resp := decode[map[string]any](t, w)
	assert.Equal(t, false, resp["is_logged"])
	assert.NotEmpty(t, resp["msg"])
}

func TestDeleteMe(t *testing.T) {
	r := newTestRouter(t)
	s := signup(t, r, "ana@example.com")
	createEvent(t, r, s)

	w := do(t, r, http.MethodDelete, "/api/users/me", s.token, nil)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = do(t, r, http.MethodGet, "/api/users/me", s.token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = do(t, r, http.MethodPost, "/login", "", gin.H{"email": "ana@example.com", "password": "password"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
