package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"meetup-backend/internal/models"
	"meetup-backend/internal/service"

	"github.com/gin-gonic/gin"
)

func (h *Handler) ListEventTypes(c *gin.Context) {
	types, err := h.events.ListTypes(c.Request.Context())
	if err != nil {
		writeError(c, err, "list event types")
		return
	}
	out := make([]models.View, 0, len(types))
	for i := range types {
		out = append(out, types[i].Serialize())
	}
	c.JSON(http.StatusOK, out)
}

type eventRequest struct {
	Name            *string  `json:"name"`
	Location        *string  `json:"location"`
	LocationName    *string  `json:"location_name"`
	Latitude        *float64 `json:"latitude"`
	Longitude       *float64 `json:"longitude"`
	Date            *string  `json:"date"`
	EndDate         *string  `json:"end_date"`
	Description     *string  `json:"description"`
	BudgetPerPerson *float64 `json:"budget_per_person"`
	EventTypeID     *uint    `json:"event_type_id"`
}

func optionalTime(s *string) (*time.Time, error) {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil, nil
	}
	t, err := parseTime(*s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// patch converts the request body, parsing the dates.
func (r eventRequest) patch() (service.EventPatch, error) {
	start, err := optionalTime(r.Date)
	if err != nil {
		return service.EventPatch{}, err
	}
	end, err := optionalTime(r.EndDate)
	if err != nil {
		return service.EventPatch{}, err
	}
	return service.EventPatch{
		Name:            r.Name,
		Location:        r.Location,
		LocationName:    r.LocationName,
		Latitude:        r.Latitude,
		Longitude:       r.Longitude,
		StartAt:         start,
		EndAt:           end,
		Description:     r.Description,
		BudgetPerPerson: r.BudgetPerPerson,
		EventTypeID:     r.EventTypeID,
	}, nil
}

// explicitNulls returns the clearable fields that raw sets to JSON null.
// Absent fields are left alone.
func explicitNulls(raw []byte) ([]service.EventField, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	var out []service.EventField
	for _, f := range service.ClearableEventFields {
		if v, ok := fields[string(f)]; ok && bytes.Equal(bytes.TrimSpace(v), []byte("null")) {
			out = append(out, f)
		}
	}
	return out, nil
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

func (h *Handler) CreateEvent(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	var body eventRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		jsonError(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}
	p, err := body.patch()
	if err != nil {
		jsonError(c, http.StatusBadRequest, err.Error())
		return
	}
	in := service.EventInput{
		Name:            deref(p.Name),
		Location:        deref(p.Location),
		LocationName:    p.LocationName,
		Latitude:        p.Latitude,
		Longitude:       p.Longitude,
		StartAt:         deref(p.StartAt),
		EndAt:           p.EndAt,
		Description:     p.Description,
		BudgetPerPerson: p.BudgetPerPerson,
		EventTypeID:     deref(p.EventTypeID),
	}
	ev, err := h.events.Create(c.Request.Context(), userID, in)
	if err != nil {
		writeError(c, err, "create event")
		return
	}
	c.JSON(http.StatusCreated, ev.Serialize())
}

func (h *Handler) MyEvents(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	events, err := h.events.ListByOwner(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err, "list events")
		return
	}
	out := make([]models.View, 0, len(events))
	for i := range events {
		out = append(out, events[i].Serialize())
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) GetEvent(c *gin.Context) {
	eventID, ok := paramInt64(c, "id")
	if !ok {
		return
	}
	ev, err := h.events.Get(c.Request.Context(), eventID)
	if err != nil {
		writeError(c, err, "get event")
		return
	}
	c.JSON(http.StatusOK, ev.Serialize())
}

func (h *Handler) UpdateEvent(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	eventID, ok := paramInt64(c, "id")
	if !ok {
		return
	}
	var body eventRequest
	if err := c.ShouldBindBodyWithJSON(&body); err != nil {
		jsonError(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}
	p, err := body.patch()
	if err != nil {
		jsonError(c, http.StatusBadRequest, err.Error())
		return
	}
	if raw, ok := c.Get(gin.BodyBytesKey); ok {
		if p.Clear, err = explicitNulls(raw.([]byte)); err != nil {
			jsonError(c, http.StatusBadRequest, "invalid request: "+err.Error())
			return
		}
	}
	ev, err := h.events.Update(c.Request.Context(), eventID, userID, p)
	if err != nil {
		writeError(c, err, "update event")
		return
	}
	c.JSON(http.StatusOK, ev.Serialize())
}

func (h *Handler) DeleteEvent(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	eventID, ok := paramInt64(c, "id")
	if !ok {
		return
	}
	if err := h.events.Delete(c.Request.Context(), eventID, userID); err != nil {
		writeError(c, err, "delete event")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "event deleted"})
}

// EventStatus reports the stored status next to the one derived from the schedule.
func (h *Handler) EventStatus(c *gin.Context) {
	eventID, ok := paramInt64(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	ev, err := h.events.Get(ctx, eventID)
	if err != nil {
		writeError(c, err, "event status")
		return
	}
	actual, err := h.events.ActualStatus(ctx, eventID)
	if err != nil {
		writeError(c, err, "event status")
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": ev.ID, "status": ev.Status, "actual_status": actual})
}

func (h *Handler) SetEventStatus(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	eventID, ok := paramInt64(c, "id")
	if !ok {
		return
	}
	var body struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		jsonError(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}
	status, err := models.ParseEventStatus(body.Status)
	if err != nil {
		writeError(c, err, "set event status")
		return
	}
	if err := h.events.SetStatus(c.Request.Context(), eventID, userID, status); err != nil {
		writeError(c, err, "set event status")
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": eventID, "status": status})
}

func (h *Handler) JoinEvent(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	eventID, ok := paramInt64(c, "id")
	if !ok {
		return
	}
	m, err := h.events.Join(c.Request.Context(), eventID, userID)
	if err != nil {
		writeError(c, err, "join event")
		return
	}
	c.JSON(http.StatusCreated, m.Serialize())
}

func (h *Handler) EventMembers(c *gin.Context) {
	eventID, ok := paramInt64(c, "id")
	if !ok {
		return
	}
	members, err := h.events.Members(c.Request.Context(), eventID)
	if err != nil {
		writeError(c, err, "list members")
		return
	}
	out := make([]models.View, 0, len(members))
	for i := range members {
		out = append(out, members[i].Serialize())
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) SetMemberStatus(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	eventID, ok := paramInt64(c, "id")
	if !ok {
		return
	}
	memberID, ok := paramUint(c, "member_id")
	if !ok {
		return
	}
	var body struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		jsonError(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}
	status, err := models.ParseMemberStatus(body.Status)
	if err != nil {
		writeError(c, err, "set member status")
		return
	}
	m, err := h.events.SetMemberStatus(c.Request.Context(), eventID, userID, memberID, status)
	if err != nil {
		writeError(c, err, "set member status")
		return
	}
	c.JSON(http.StatusOK, m.Serialize())
}

func (h *Handler) AddFavorite(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	eventID, ok := paramInt64(c, "id")
	if !ok {
		return
	}
	fav, err := h.favs.Add(c.Request.Context(), userID, eventID)
	if err != nil {
		writeError(c, err, "add favorite")
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": fav.ID, "user_id": fav.UserID, "event_id": fav.EventID})
}

func (h *Handler) RemoveFavorite(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	eventID, ok := paramInt64(c, "id")
	if !ok {
		return
	}
	if err := h.favs.Remove(c.Request.Context(), userID, eventID); err != nil {
		writeError(c, err, "remove favorite")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "favorite removed"})
}

func (h *Handler) ListFavorites(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	favs, err := h.favs.List(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err, "list favorites")
		return
	}
	c.JSON(http.StatusOK, favs)
}
