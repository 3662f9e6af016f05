package calendar

import (
	"time"

	"github.com/google/uuid"

	"github.com/tidewater/service-booking/internal/domain"
	"github.com/tidewater/service-booking/internal/domain/timewindow"
)

// DayStatus is the administrative state of a rental day.
type DayStatus string

const (
	DayOpen          DayStatus = "OPEN"
	DayPartialClosed DayStatus = "PARTIAL_CLOSED"
	DayClosed        DayStatus = "CLOSED"
)

// IsValid returns true if the status is a recognized day status.
func (s DayStatus) IsValid() bool {
	switch s {
	case DayOpen, DayPartialClosed, DayClosed:
		return true
	}
	return false
}

// ClosureReason explains why a day or slot is not bookable.
type ClosureReason string

const (
	ReasonTide        ClosureReason = "TIDE"
	ReasonWeather     ClosureReason = "WEATHER"
	ReasonMaintenance ClosureReason = "MAINTENANCE"
	ReasonHoliday     ClosureReason = "HOLIDAY"
	ReasonOther       ClosureReason = "OTHER"
)

// IsValid returns true if the reason is a recognized closure reason.
func (r ClosureReason) IsValid() bool {
	switch r {
	case ReasonTide, ReasonWeather, ReasonMaintenance, ReasonHoliday, ReasonOther:
		return true
	}
	return false
}

// ClosedSlot is a contiguous closed interval within a PARTIAL_CLOSED day.
type ClosedSlot struct {
	Window timewindow.Window `json:"window"`
	Reason ClosureReason     `json:"reason"`
}

// Entry is the calendar record for a single rental day. Entries are owned by
// calendar administration; the engine only reads them.
type Entry struct {
	Date        time.Time
	Status      DayStatus
	Reason      *ClosureReason
	ClosedSlots []ClosedSlot
	Notes       string
	UpdatedBy   uuid.UUID
	UpdatedAt   time.Time
}

// Validate checks the entry's structural invariants: a PARTIAL_CLOSED day
// must carry at least one closed slot and every slot must be a non-empty
// interval. Closed slots on an OPEN or CLOSED day carry no meaning and are
// accepted as-is.
func (e *Entry) Validate() error {
	if !e.Status.IsValid() {
		return domain.Newf(domain.CodeValidation, "invalid day status %q", e.Status)
	}
	if e.Reason != nil && !e.Reason.IsValid() {
		return domain.Newf(domain.CodeValidation, "invalid closure reason %q", *e.Reason)
	}
	if e.Status == DayPartialClosed {
		if len(e.ClosedSlots) == 0 {
			return domain.NewValidationError("PARTIAL_CLOSED day must have at least one closed slot")
		}
		for _, slot := range e.ClosedSlots {
			if !slot.Window.Start.Before(slot.Window.End) {
				return domain.Newf(domain.CodeValidation, "closed slot %s is empty or inverted", slot.Window)
			}
		}
	}
	return nil
}
