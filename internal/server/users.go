package server

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"meetup-backend/internal/auth"
	"meetup-backend/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type credentialsRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) Signup(c *gin.Context) {
	var body credentialsRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		jsonError(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}
	if len(body.Password) < 6 || len(body.Password) > 128 {
		jsonError(c, http.StatusBadRequest, "password must be 6 to 128 characters")
		return
	}
	user, err := h.users.Register(c.Request.Context(), body.Email, body.Password)
	if err != nil {
		writeError(c, err, "signup")
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message": "Signup successful",
		"user":    user.Serialize(),
	})
}

func (h *Handler) Login(c *gin.Context) {
	var body credentialsRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		jsonError(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}
	user, err := h.users.Authenticate(c.Request.Context(), body.Email, body.Password)
	if err != nil {
		writeError(c, err, "login")
		return
	}
	token, err := auth.GenerateAccessToken(user.ID, h.cfg.JWTSecret, h.cfg.AccessTokenTTLMinutes)
	if err != nil {
		log.Error().Err(err).Int64("user_id", user.ID).Msg("generate access token")
		jsonError(c, http.StatusInternalServerError, "Failed to generate token")
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "user": user.Serialize()})
}

// RecoverPassword answers the same way whether or not the email is known.
// The reset link, rooted at frontend_url when given, is logged; dev
// environments also get it in the response.
func (h *Handler) RecoverPassword(c *gin.Context) {
	var body struct {
		Email       string `json:"email" binding:"required"`
		FrontendURL string `json:"frontend_url"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		jsonError(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}
	resp := gin.H{"message": "If the email is registered, a reset link has been sent"}
	ctx := c.Request.Context()
	user, err := h.users.FindByEmail(ctx, body.Email)
	if err != nil {
		if !errors.Is(err, models.ErrNotFound) {
			log.Error().Err(err).Msg("recover password lookup")
		}
		c.JSON(http.StatusOK, resp)
		return
	}
	token, err := h.users.GenerateResetToken(ctx, user.ID)
	if err != nil {
		log.Error().Err(err).Int64("user_id", user.ID).Msg("generate reset token")
		c.JSON(http.StatusOK, resp)
		return
	}
	link := strings.TrimRight(body.FrontendURL, "/") + "/reset-password?token=" + url.QueryEscape(token)
	log.Info().Int64("user_id", user.ID).Str("reset_url", link).Msg("password reset requested")
	if h.cfg.Env == "dev" {
		resp["reset_url"] = link
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) ResetPassword(c *gin.Context) {
	var body struct {
		Token    string `json:"token" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		jsonError(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}
	h.resetPassword(c, body.Token, body.Password)
}

// ResetPasswordBearer is the form used by the web client: the reset token
// travels as a bearer credential and the body carries only the password.
func (h *Handler) ResetPasswordBearer(c *gin.Context) {
	token, msg, ok := auth.BearerToken(c)
	if !ok {
		jsonError(c, http.StatusUnauthorized, msg)
		return
	}
	var body struct {
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		jsonError(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}
	h.resetPassword(c, token, body.Password)
}

func (h *Handler) resetPassword(c *gin.Context, token, password string) {
	if _, err := h.users.ResetPassword(c.Request.Context(), token, password); err != nil {
		writeError(c, err, "reset password")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "password updated"})
}

// ValidToken reports whether the bearer token still belongs to an active user.
func (h *Handler) ValidToken(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	user, err := h.users.Get(c.Request.Context(), userID)
	if err != nil || !user.IsActive {
		if err != nil && !errors.Is(err, models.ErrNotFound) {
			writeError(c, err, "valid token")
			return
		}
		c.JSON(http.StatusUnauthorized, gin.H{"is_logged": false, "msg": "User not found or inactive"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"is_logged": true})
}

func (h *Handler) Me(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	user, err := h.users.Get(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err, "get user")
		return
	}
	c.JSON(http.StatusOK, user.Serialize())
}

func (h *Handler) DeleteMe(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	if err := h.users.Delete(c.Request.Context(), userID); err != nil {
		writeError(c, err, "delete user")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "user deleted"})
}

type profileRequest struct {
	Name         string  `json:"name" binding:"required"`
	LastName     string  `json:"last_name" binding:"required"`
	Birthdate    string  `json:"birthdate" binding:"required"`
	Location     string  `json:"location"`
	Description  string  `json:"description"`
	ProfileImage string  `json:"profile_image"`
	CoverImage   *string `json:"cover_image"`
}

func (h *Handler) PutProfile(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	var body profileRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		jsonError(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}
	birthdate, err := time.Parse(models.DateLayout, body.Birthdate)
	if err != nil {
		jsonError(c, http.StatusBadRequest, "birthdate must be YYYY-MM-DD")
		return
	}
	profile := models.UserProfile{
		UserID:       userID,
		Name:         strings.TrimSpace(body.Name),
		LastName:     strings.TrimSpace(body.LastName),
		Birthdate:    birthdate,
		Location:     body.Location,
		Description:  body.Description,
		ProfileImage: body.ProfileImage,
		CoverImage:   body.CoverImage,
	}
	if err := h.users.UpsertProfile(c.Request.Context(), &profile); err != nil {
		writeError(c, err, "upsert profile")
		return
	}
	c.JSON(http.StatusOK, profile.Serialize())
}

func (h *Handler) GetProfile(c *gin.Context) {
	userID, ok := paramInt64(c, "id")
	if !ok {
		return
	}
	profile, err := h.users.GetProfile(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err, "get profile")
		return
	}
	c.JSON(http.StatusOK, profile.Serialize())
}

func (h *Handler) UploadImage(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	var body struct {
		Image string `json:"image" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		jsonError(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}
	img, err := h.images.Upload(c.Request.Context(), userID, body.Image)
	if err != nil {
		writeError(c, err, "upload image")
		return
	}
	c.JSON(http.StatusCreated, img.Serialize())
}

func (h *Handler) ListImages(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	imgs, err := h.images.List(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err, "list images")
		return
	}
	out := make([]models.View, 0, len(imgs))
	for i := range imgs {
		out = append(out, imgs[i].Serialize())
	}
	c.JSON(http.StatusOK, out)
}
