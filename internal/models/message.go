package models

import "unicode/utf8"

const MaxMessageLength = 250

// Validate checks that exactly one chat reference is set and that it is the
// one GroupType names, and that the text fits the column.
func (m *Message) Validate() error {
	switch m.GroupType {
	case GroupPrivate:
		if m.PrivateChatID == nil || m.GroupChatID != nil {
			return ErrGroupTypeMismatch
		}
	case GroupGroup:
		if m.GroupChatID == nil || m.PrivateChatID != nil {
			return ErrGroupTypeMismatch
		}
	default:
		return ErrGroupTypeMismatch
	}
	n := utf8.RuneCountInString(m.Text)
	if n == 0 {
		return ErrEmptyMessage
	}
	if n > MaxMessageLength {
		return ErrMessageTooLong
	}
	return nil
}

// ChatID returns the id of whichever chat the message belongs to.
func (m *Message) ChatID() int64 {
	if m.PrivateChatID != nil {
		return *m.PrivateChatID
	}
	if m.GroupChatID != nil {
		return *m.GroupChatID
	}
	return 0
}
