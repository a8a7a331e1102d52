package server

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"meetup-backend/internal/auth"
	"meetup-backend/internal/config"
	"meetup-backend/internal/ids"
	"meetup-backend/internal/models"
	"meetup-backend/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// Services groups what the handlers depend on.
type Services struct {
	Users     *service.UserService
	Events    *service.EventService
	Chats     *service.ChatService
	Favorites *service.FavoriteService
	Images    *service.ImageService
}

type Handler struct {
	cfg    config.Config
	users  *service.UserService
	events *service.EventService
	chats  *service.ChatService
	favs   *service.FavoriteService
	images *service.ImageService
}

func NewHandler(cfg config.Config, svc Services) *Handler {
	return &Handler{
		cfg:    cfg,
		users:  svc.Users,
		events: svc.Events,
		chats:  svc.Chats,
		favs:   svc.Favorites,
		images: svc.Images,
	}
}

func jsonError(c *gin.Context, code int, msg string) {
	c.JSON(code, gin.H{"error": msg})
}

// getUserID returns the caller set by auth.Middleware, answering 401 when
// there is none.
func getUserID(c *gin.Context) (int64, bool) {
	id, ok := auth.GetUserID(c)
	if !ok {
		jsonError(c, http.StatusUnauthorized, "unauthorized")
	}
	return id, ok
}

func paramInt64(c *gin.Context, name string) (int64, bool) {
	v, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || v <= 0 {
		jsonError(c, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return v, true
}

func paramUint(c *gin.Context, name string) (uint, bool) {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || v == 0 {
		jsonError(c, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return uint(v), true
}

// parseTime accepts RFC3339, the wire timestamp layout or a bare date.
func parseTime(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, models.TimestampLayout, models.DateLayout} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, errors.New("invalid date format (use RFC3339 or YYYY-MM-DD)")
}

// writeError maps service errors to HTTP responses. Anything unexpected is
// logged and answered with 500.
func writeError(c *gin.Context, err error, op string) {
	switch {
	case errors.Is(err, models.ErrNotFound):
		jsonError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrEmailTaken), errors.Is(err, service.ErrDuplicateMember):
		jsonError(c, http.StatusConflict, err.Error())
	case errors.Is(err, models.ErrIntegrity):
		jsonError(c, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, models.ErrInvalid):
		jsonError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, service.ErrInvalidToken):
		jsonError(c, http.StatusUnauthorized, err.Error())
	case errors.Is(err, service.ErrForbidden), errors.Is(err, service.ErrInactiveUser):
		jsonError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, ids.ErrExhausted):
		log.Error().Err(err).Str("op", op).Msg("identifier space exhausted")
		jsonError(c, http.StatusServiceUnavailable, "try again later")
	default:
		log.Error().Err(err).Str("op", op).Str("path", c.FullPath()).Msg("request failed")
		jsonError(c, http.StatusInternalServerError, "internal error")
	}
}
