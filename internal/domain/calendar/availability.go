package calendar

import "github.com/tidewater/service-booking/internal/domain/timewindow"

// Availability is the outcome of checking a requested window against the
// day's calendar entry.
type Availability struct {
	Bookable  bool           `json:"bookable"`
	DayStatus DayStatus      `json:"day_status"`
	BlockedBy *ClosureReason `json:"blocked_by,omitempty"`
}

// Check decides whether the requested window is bookable on the day described
// by entry. A nil entry means no calendar record exists and the day defaults
// to open. The function is pure; callers validate the window beforehand via
// timewindow.New.
func Check(requested timewindow.Window, entry *Entry) Availability {
	if entry == nil {
		return Availability{Bookable: true, DayStatus: DayOpen}
	}

	switch entry.Status {
	case DayClosed:
		return Availability{Bookable: false, DayStatus: DayClosed, BlockedBy: entry.Reason}
	case DayPartialClosed:
		for _, slot := range entry.ClosedSlots {
			if requested.Overlaps(slot.Window) {
				reason := slot.Reason
				return Availability{Bookable: false, DayStatus: DayPartialClosed, BlockedBy: &reason}
			}
		}
		return Availability{Bookable: true, DayStatus: DayPartialClosed}
	default:
		// Closed slots are only meaningful under PARTIAL_CLOSED.
		return Availability{Bookable: true, DayStatus: DayOpen}
	}
}
