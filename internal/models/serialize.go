package models

import "time"

// Wire formats shared with the existing web client.
const (
	TimestampLayout = "2006-01-02 15:04:05 GMT-0700"
	DateLayout      = "2006-01-02"
)

// View is the flat, transport-ready form of an entity.
type View map[string]any

func formatTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format(TimestampLayout)
}

func optional[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}

func (u *User) Serialize() View {
	return View{
		"id":    u.ID,
		"email": u.Email,
	}
}

func (p *UserProfile) Serialize() View {
	return View{
		"user_id":       p.UserID,
		"name":          p.Name,
		"last_name":     p.LastName,
		"birthdate":     p.Birthdate.Format(DateLayout),
		"location":      p.Location,
		"description":   p.Description,
		"profile_image": p.ProfileImage,
		"cover_image":   optional(p.CoverImage),
	}
}

func (t *EventType) Serialize() View {
	return View{
		"id":    t.ID,
		"name":  t.Name,
		"image": t.Image,
	}
}

func (e *Event) Serialize() View {
	return View{
		"id":                e.ID,
		"owner":             e.OwnerID,
		"name":              e.Name,
		"location":          e.Location,
		"location_name":     optional(e.LocationName),
		"latitude":          optional(e.Latitude),
		"longitude":         optional(e.Longitude),
		"date":              formatTime(&e.StartAt),
		"end_date":          formatTime(e.EndAt),
		"status":            string(e.Status),
		"description":       optional(e.Description),
		"budget_per_person": optional(e.BudgetPerPerson),
		"event_type_id":     e.EventTypeID,
	}
}

func (m *EventMember) Serialize() View {
	return View{
		"id":       m.ID,
		"event_id": m.EventID,
		"user_id":  m.UserID,
		"status":   string(m.Status),
	}
}

func (c *PrivateChat) Serialize() View {
	return View{
		"id":        c.ID,
		"event_id":  c.EventID,
		"user_id":   c.UserID,
		"createdAt": formatTime(&c.CreatedAt),
	}
}

func (r *UsersPrivateChat) Serialize() View {
	return View{"id": r.ID, "user_id": r.UserID, "chat_id": r.ChatID}
}

func (c *GroupChat) Serialize() View {
	return View{
		"id":        c.ID,
		"event_id":  c.EventID,
		"createdAt": formatTime(&c.CreatedAt),
	}
}

func (r *UsersGroupChat) Serialize() View {
	return View{"id": r.ID, "user_id": r.UserID, "chat_id": r.ChatID}
}

// Serialize renders the message. senderImg is resolved by the caller and
// may be nil when the sender has no image.
func (m *Message) Serialize(senderImg *string) View {
	return View{
		"id":              m.ID,
		"private_chat_id": optional(m.PrivateChatID),
		"group_chat_id":   optional(m.GroupChatID),
		"sender_id":       m.SenderID,
		"receiver_id":     optional(m.ReceiverID),
		"sender_img":      optional(senderImg),
		"message":         m.Text,
		"group_type":      string(m.GroupType),
		"sentAt":          formatTime(&m.SentAt),
		"deliveredAt":     formatTime(m.DeliveredAt),
		"readAt":          formatTime(m.ReadAt),
	}
}

func (i *UserProfileImage) Serialize() View {
	return View{
		"id":         i.ID,
		"user_id":    i.UserID,
		"image_path": i.ImagePath,
	}
}

// Serialize embeds the favoriting user's profile and the event. Both are
// required; a missing one yields ErrNotFound.
func (f *Favorite) Serialize(profile *UserProfile, event *Event) (View, error) {
	if profile == nil || event == nil {
		return nil, ErrNotFound
	}
	return View{
		"id":         f.ID,
		"user_id":    f.UserID,
		"event_id":   f.EventID,
		"user_info":  profile.Serialize(),
		"event_info": event.Serialize(),
	}, nil
}
