package server

import (
	"net/http"

	"meetup-backend/internal/models"

	"github.com/gin-gonic/gin"
)

// chatKind maps the :kind path segment to a group type.
func chatKind(c *gin.Context) (models.GroupType, bool) {
	switch c.Param("kind") {
	case "private":
		return models.GroupPrivate, true
	case "group":
		return models.GroupGroup, true
	}
	jsonError(c, http.StatusBadRequest, "chat kind must be private or group")
	return "", false
}

type chatRequest struct {
	Participants []int64 `json:"participants"`
}

func (h *Handler) CreatePrivateChat(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	eventID, ok := paramInt64(c, "id")
	if !ok {
		return
	}
	var body chatRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		jsonError(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}
	chat, err := h.chats.CreatePrivateChat(c.Request.Context(), eventID, userID, body.Participants...)
	if err != nil {
		writeError(c, err, "create private chat")
		return
	}
	c.JSON(http.StatusCreated, chat.Serialize())
}

func (h *Handler) CreateGroupChat(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	eventID, ok := paramInt64(c, "id")
	if !ok {
		return
	}
	var body chatRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		jsonError(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}
	chat, err := h.chats.CreateGroupChat(c.Request.Context(), eventID, userID, body.Participants...)
	if err != nil {
		writeError(c, err, "create group chat")
		return
	}
	c.JSON(http.StatusCreated, chat.Serialize())
}

func (h *Handler) AddChatUser(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	kind, ok := chatKind(c)
	if !ok {
		return
	}
	chatID, ok := paramInt64(c, "chat_id")
	if !ok {
		return
	}
	var body struct {
		UserID int64 `json:"user_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		jsonError(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}
	ctx := c.Request.Context()
	var view models.View
	if kind == models.GroupPrivate {
		row, err := h.chats.AddPrivateMember(ctx, chatID, userID, body.UserID)
		if err != nil {
			writeError(c, err, "add chat user")
			return
		}
		view = row.Serialize()
	} else {
		row, err := h.chats.AddGroupMember(ctx, chatID, userID, body.UserID)
		if err != nil {
			writeError(c, err, "add chat user")
			return
		}
		view = row.Serialize()
	}
	c.JSON(http.StatusOK, view)
}

func (h *Handler) SendMessage(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	kind, ok := chatKind(c)
	if !ok {
		return
	}
	chatID, ok := paramInt64(c, "chat_id")
	if !ok {
		return
	}
	var body struct {
		Message    string `json:"message" binding:"required"`
		ReceiverID *int64 `json:"receiver_id"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		jsonError(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}
	msg := models.Message{SenderID: userID, ReceiverID: body.ReceiverID, Text: body.Message, GroupType: kind}
	if kind == models.GroupPrivate {
		msg.PrivateChatID = &chatID
	} else {
		msg.GroupChatID = &chatID
	}
	ctx := c.Request.Context()
	if err := h.chats.SendMessage(ctx, &msg); err != nil {
		writeError(c, err, "send message")
		return
	}
	c.JSON(http.StatusCreated, msg.Serialize(h.users.SenderImage(ctx, userID)))
}

func (h *Handler) ListMessages(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	kind, ok := chatKind(c)
	if !ok {
		return
	}
	chatID, ok := paramInt64(c, "chat_id")
	if !ok {
		return
	}
	msgs, err := h.chats.Messages(c.Request.Context(), kind, chatID, userID)
	if err != nil {
		writeError(c, err, "list messages")
		return
	}
	c.JSON(http.StatusOK, msgs)
}

func (h *Handler) DeleteChat(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	kind, ok := chatKind(c)
	if !ok {
		return
	}
	chatID, ok := paramInt64(c, "chat_id")
	if !ok {
		return
	}
	var err error
	if kind == models.GroupPrivate {
		err = h.chats.DeletePrivateChat(c.Request.Context(), chatID, userID)
	} else {
		err = h.chats.DeleteGroupChat(c.Request.Context(), chatID, userID)
	}
	if err != nil {
		writeError(c, err, "delete chat")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "chat deleted"})
}

func (h *Handler) MarkDelivered(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	msgID, ok := paramUint(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	msg, err := h.chats.MarkDelivered(ctx, msgID, userID)
	if err != nil {
		writeError(c, err, "mark delivered")
		return
	}
	c.JSON(http.StatusOK, msg.Serialize(h.users.SenderImage(ctx, msg.SenderID)))
}

func (h *Handler) MarkRead(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	msgID, ok := paramUint(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	msg, err := h.chats.MarkRead(ctx, msgID, userID)
	if err != nil {
		writeError(c, err, "mark read")
		return
	}
	c.JSON(http.StatusOK, msg.Serialize(h.users.SenderImage(ctx, msg.SenderID)))
}
