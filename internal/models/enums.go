package models

import (
	"database/sql/driver"
	"fmt"
)

// EventStatus is the stored lifecycle state of an event.
type EventStatus string

const (
	StatusPlanned    EventStatus = "Planned"
	StatusCompleted  EventStatus = "Completed"
	StatusCanceled   EventStatus = "Canceled"
	StatusInProgress EventStatus = "In Progress"
)

func (s EventStatus) Valid() bool {
	switch s {
	case StatusPlanned, StatusCompleted, StatusCanceled, StatusInProgress:
		return true
	}
	return false
}

func (s *EventStatus) Scan(src any) error {
	v, err := scanEnum(src)
	if err != nil {
		return err
	}
	if !EventStatus(v).Valid() {
		return fmt.Errorf("%w: event status %q", ErrInvalid, v)
	}
	*s = EventStatus(v)
	return nil
}

func (s EventStatus) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("%w: event status %q", ErrInvalid, string(s))
	}
	return string(s), nil
}

// ParseEventStatus converts user input into an EventStatus.
func ParseEventStatus(v string) (EventStatus, error) {
	s := EventStatus(v)
	if !s.Valid() {
		return "", fmt.Errorf("%w: event status %q", ErrInvalid, v)
	}
	return s, nil
}

// MemberStatus is the state of a user's membership in an event.
type MemberStatus string

const (
	MemberApplied  MemberStatus = "Applied"
	MemberOwner    MemberStatus = "Owner"
	MemberAccepted MemberStatus = "Accepted"
	MemberRejected MemberStatus = "Rejected"
)

func (s MemberStatus) Valid() bool {
	switch s {
	case MemberApplied, MemberOwner, MemberAccepted, MemberRejected:
		return true
	}
	return false
}

func (s *MemberStatus) Scan(src any) error {
	v, err := scanEnum(src)
	if err != nil {
		return err
	}
	if !MemberStatus(v).Valid() {
		return fmt.Errorf("%w: member status %q", ErrInvalid, v)
	}
	*s = MemberStatus(v)
	return nil
}

func (s MemberStatus) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("%w: member status %q", ErrInvalid, string(s))
	}
	return string(s), nil
}

func ParseMemberStatus(v string) (MemberStatus, error) {
	s := MemberStatus(v)
	if !s.Valid() {
		return "", fmt.Errorf("%w: member status %q", ErrInvalid, v)
	}
	return s, nil
}

// GroupType says which kind of chat a message belongs to.
type GroupType string

const (
	GroupPrivate GroupType = "Private"
	GroupGroup   GroupType = "Group"
)

func (g GroupType) Valid() bool {
	return g == GroupPrivate || g == GroupGroup
}

func (g *GroupType) Scan(src any) error {
	v, err := scanEnum(src)
	if err != nil {
		return err
	}
	if !GroupType(v).Valid() {
		return fmt.Errorf("%w: group type %q", ErrInvalid, v)
	}
	*g = GroupType(v)
	return nil
}

func (g GroupType) Value() (driver.Value, error) {
	if !g.Valid() {
		return nil, fmt.Errorf("%w: group type %q", ErrInvalid, string(g))
	}
	return string(g), nil
}

func scanEnum(src any) (string, error) {
	switch v := src.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	default:
		return "", fmt.Errorf("%w: cannot scan %T into enum", ErrInvalid, src)
	}
}
