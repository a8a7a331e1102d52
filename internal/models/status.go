package models

import "time"

// DeriveStatus computes the live status of an event from its schedule.
// The branches are checked in order; an event that has started and has no
// end falls through to Canceled.
func DeriveStatus(start time.Time, end *time.Time, now time.Time) EventStatus {
	switch {
	case now.Before(start):
		return StatusPlanned
	case end != nil && now.Before(*end):
		return StatusInProgress
	case end != nil:
		return StatusCompleted
	default:
		return StatusCanceled
	}
}

// ActualStatus derives the status from the schedule. It does not touch Status.
func (e *Event) ActualStatus(now time.Time) EventStatus {
	return DeriveStatus(e.StartAt, e.EndAt, now)
}
