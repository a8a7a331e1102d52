package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"meetup-backend/internal/ids"
	"meetup-backend/internal/metrics"
	"meetup-backend/internal/models"

	"gorm.io/gorm"
)

type EventService struct {
	db  *gorm.DB
	gen ids.Generator
	now func() time.Time
}

func NewEventService(db *gorm.DB, gen ids.Generator, now func() time.Time) *EventService {
	return &EventService{db: db, gen: gen, now: now}
}

// EventInput holds the fields a user sets when creating an event.
type EventInput struct {
	Name            string
	Location        string
	LocationName    *string
	Latitude        *float64
	Longitude       *float64
	StartAt         time.Time
	EndAt           *time.Time
	Description     *string
	BudgetPerPerson *float64
	EventTypeID     uint
}

// EventField names an optional event column that a patch can clear.
type EventField string

const (
	FieldLocationName    EventField = "location_name"
	FieldLatitude        EventField = "latitude"
	FieldLongitude       EventField = "longitude"
	FieldEndDate         EventField = "end_date"
	FieldDescription     EventField = "description"
	FieldBudgetPerPerson EventField = "budget_per_person"
)

// ClearableEventFields lists every field EventPatch.Clear accepts.
var ClearableEventFields = []EventField{
	FieldLocationName, FieldLatitude, FieldLongitude, FieldEndDate, FieldDescription, FieldBudgetPerPerson,
}

// EventPatch changes only the fields that are non-nil, then unsets the
// fields named in Clear.
type EventPatch struct {
	Clear []EventField

	Name            *string
	Location        *string
	LocationName    *string
	Latitude        *float64
	Longitude       *float64
	StartAt         *time.Time
	EndAt           *time.Time
	Description     *string
	BudgetPerPerson *float64
	EventTypeID     *uint
}

func validateEvent(ev *models.Event) error {
	if strings.TrimSpace(ev.Name) == "" {
		return fmt.Errorf("%w: event name is required", models.ErrInvalid)
	}
	if strings.TrimSpace(ev.Location) == "" {
		return fmt.Errorf("%w: event location is required", models.ErrInvalid)
	}
	if ev.StartAt.IsZero() {
		return fmt.Errorf("%w: event start is required", models.ErrInvalid)
	}
	if ev.EndAt != nil && ev.EndAt.Before(ev.StartAt) {
		return fmt.Errorf("%w: event ends before it starts", models.ErrInvalid)
	}
	if ev.EventTypeID == 0 {
		return fmt.Errorf("%w: event type is required", models.ErrInvalid)
	}
	return nil
}

func checkEventType(tx *gorm.DB, id uint) error {
	ok, err := exists(tx, &models.EventType{}, "id = ?", id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("event type %d: %w", id, models.ErrNotFound)
	}
	return nil
}

func (s *EventService) ListTypes(ctx context.Context) ([]models.EventType, error) {
	var types []models.EventType
	err := s.db.WithContext(ctx).Order("id").Find(&types).Error
	return types, err
}

// Create stores a new Planned event and makes its owner the first member.
func (s *EventService) Create(ctx context.Context, ownerID int64, in EventInput) (*models.Event, error) {
	ev := models.Event{
		OwnerID:         ownerID,
		Name:            strings.TrimSpace(in.Name),
		Location:        strings.TrimSpace(in.Location),
		LocationName:    in.LocationName,
		Latitude:        in.Latitude,
		Longitude:       in.Longitude,
		StartAt:         in.StartAt,
		EndAt:           in.EndAt,
		Status:          models.StatusPlanned,
		Description:     in.Description,
		BudgetPerPerson: in.BudgetPerPerson,
		EventTypeID:     in.EventTypeID,
	}
	if err := validateEvent(&ev); err != nil {
		return nil, err
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ok, err := exists(tx, &models.User{}, "id = ?", ownerID)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("user %d: %w", ownerID, models.ErrNotFound)
		}
		if err := checkEventType(tx, ev.EventTypeID); err != nil {
			return err
		}
		if err := insertWithID(tx, s.gen, "event", &ev, func(id int64) { ev.ID = id }); err != nil {
			return err
		}
		owner := models.EventMember{EventID: ev.ID, UserID: ownerID, Status: models.MemberOwner}
		if err := tx.Create(&owner).Error; err != nil {
			return err
		}
		created("event_member")
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &ev, nil
}

func (s *EventService) Get(ctx context.Context, id int64) (*models.Event, error) {
	return getEvent(s.db.WithContext(ctx), id)
}

func getEvent(tx *gorm.DB, id int64) (*models.Event, error) {
	var ev models.Event
	if err := tx.First(&ev, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "event")
	}
	return &ev, nil
}

func ownedEvent(tx *gorm.DB, eventID, userID int64) (*models.Event, error) {
	ev, err := getEvent(tx, eventID)
	if err != nil {
		return nil, err
	}
	if ev.OwnerID != userID {
		return nil, ErrForbidden
	}
	return ev, nil
}

// Update applies patch to an event owned by userID.
func (s *EventService) Update(ctx context.Context, eventID, userID int64, patch EventPatch) (*models.Event, error) {
	var ev *models.Event
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		ev, err = ownedEvent(tx, eventID, userID)
		if err != nil {
			return err
		}
		if patch.Name != nil {
			ev.Name = strings.TrimSpace(*patch.Name)
		}
		if patch.Location != nil {
			ev.Location = strings.TrimSpace(*patch.Location)
		}
		if patch.LocationName != nil {
			ev.LocationName = patch.LocationName
		}
		if patch.Latitude != nil {
			ev.Latitude = patch.Latitude
		}
		if patch.Longitude != nil {
			ev.Longitude = patch.Longitude
		}
		if patch.StartAt != nil {
			ev.StartAt = *patch.StartAt
		}
		if patch.EndAt != nil {
			ev.EndAt = patch.EndAt
		}
		if patch.Description != nil {
			ev.Description = patch.Description
		}
		if patch.BudgetPerPerson != nil {
			ev.BudgetPerPerson = patch.BudgetPerPerson
		}
		if patch.EventTypeID != nil {
			ev.EventTypeID = *patch.EventTypeID
			if err := checkEventType(tx, ev.EventTypeID); err != nil {
				return err
			}
		}
		for _, f := range patch.Clear {
			if err := clearField(ev, f); err != nil {
				return err
			}
		}
		if err := validateEvent(ev); err != nil {
			return err
		}
		return tx.Save(ev).Error
	})
	if err != nil {
		return nil, err
	}
	return ev, nil
}

func clearField(ev *models.Event, f EventField) error {
	switch f {
	case FieldLocationName:
		ev.LocationName = nil
	case FieldLatitude:
		ev.Latitude = nil
	case FieldLongitude:
		ev.Longitude = nil
	case FieldEndDate:
		ev.EndAt = nil
	case FieldDescription:
		ev.Description = nil
	case FieldBudgetPerPerson:
		ev.BudgetPerPerson = nil
	default:
		return fmt.Errorf("%w: %q cannot be cleared", models.ErrInvalid, f)
	}
	return nil
}

// SetStatus stores status as given. It is not checked against the schedule.
func (s *EventService) SetStatus(ctx context.Context, eventID, userID int64, status models.EventStatus) error {
	if !status.Valid() {
		return fmt.Errorf("%w: event status %q", models.ErrInvalid, status)
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ev, err := ownedEvent(tx, eventID, userID)
		if err != nil {
			return err
		}
		return tx.Model(ev).Update("status", status).Error
	})
}

// ActualStatus derives the live status without storing it.
func (s *EventService) ActualStatus(ctx context.Context, eventID int64) (models.EventStatus, error) {
	ev, err := s.Get(ctx, eventID)
	if err != nil {
		return "", err
	}
	return ev.ActualStatus(s.now()), nil
}

// SyncStatus stores the derived status when it differs from the stored one.
func (s *EventService) SyncStatus(ctx context.Context, eventID int64) (models.EventStatus, error) {
	var status models.EventStatus
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ev, err := getEvent(tx, eventID)
		if err != nil {
			return err
		}
		status = ev.ActualStatus(s.now())
		if status == ev.Status {
			return nil
		}
		return tx.Model(ev).Update("status", status).Error
	})
	return status, err
}

func (s *EventService) ListByOwner(ctx context.Context, ownerID int64) ([]models.Event, error) {
	var events []models.Event
	err := s.db.WithContext(ctx).Where("owner_id = ?", ownerID).Order("start_datetime asc").Find(&events).Error
	return events, err
}

// Delete removes an event owned by userID together with its chats, members and favorites.
func (s *EventService) Delete(ctx context.Context, eventID, userID int64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := ownedEvent(tx, eventID, userID); err != nil {
			return err
		}
		if err := deleteEvents(tx, []int64{eventID}); err != nil {
			return err
		}
		metrics.CascadeDeletes.WithLabelValues("event").Inc()
		return nil
	})
}

// Join applies userID to the event.
func (s *EventService) Join(ctx context.Context, eventID, userID int64) (*models.EventMember, error) {
	member := models.EventMember{EventID: eventID, UserID: userID, Status: models.MemberApplied}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := getEvent(tx, eventID); err != nil {
			return err
		}
		ok, err := exists(tx, &models.User{}, "id = ?", userID)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("user %d: %w", userID, models.ErrNotFound)
		}
		dup, err := exists(tx, &models.EventMember{}, "event_id = ? AND user_id = ?", eventID, userID)
		if err != nil {
			return err
		}
		if dup {
			return ErrDuplicateMember
		}
		if err := tx.Create(&member).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrDuplicateMember
			}
			return err
		}
		created("event_member")
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &member, nil
}

// SetMemberStatus lets the event owner accept or reject a member. The Owner
// status is reserved for the member row created with the event.
func (s *EventService) SetMemberStatus(ctx context.Context, eventID, ownerID int64, memberID uint, status models.MemberStatus) (*models.EventMember, error) {
	if !status.Valid() || status == models.MemberOwner {
		return nil, fmt.Errorf("%w: member status %q", models.ErrInvalid, status)
	}
	var member models.EventMember
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := ownedEvent(tx, eventID, ownerID); err != nil {
			return err
		}
		if err := tx.First(&member, "id = ? AND event_id = ?", memberID, eventID).Error; err != nil {
			return notFound(err, "member")
		}
		if member.Status == models.MemberOwner {
			return fmt.Errorf("%w: cannot change the owner's membership", models.ErrInvalid)
		}
		if err := tx.Model(&member).Update("member_status", status).Error; err != nil {
			return err
		}
		member.Status = status
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &member, nil
}

func (s *EventService) Members(ctx context.Context, eventID int64) ([]models.EventMember, error) {
	db := s.db.WithContext(ctx)
	if _, err := getEvent(db, eventID); err != nil {
		return nil, err
	}
	var members []models.EventMember
	err := db.Where("event_id = ?", eventID).Order("id").Find(&members).Error
	return members, err
}
