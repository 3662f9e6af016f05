// Package timewindow provides value objects for local time-of-day intervals
// expressed as "HH:MM" strings.
package timewindow

import (
	"fmt"

	"github.com/tidewater/service-booking/internal/domain"
)

// TimeOfDay is a validated "HH:MM" 24-hour local time. The zero value is
// invalid; construct via Parse.
type TimeOfDay string

// Parse validates s as a 24-hour "HH:MM" time of day.
func Parse(s string) (TimeOfDay, error) {
	if len(s) != 5 || s[2] != ':' {
		return "", domain.Newf(domain.CodeValidation, "invalid time of day %q, want HH:MM", s)
	}
	h := digits2(s[0], s[1])
	m := digits2(s[3], s[4])
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return "", domain.Newf(domain.CodeValidation, "invalid time of day %q, want HH:MM", s)
	}
	return TimeOfDay(s), nil
}

func digits2(a, b byte) int {
	if a < '0' || a > '9' || b < '0' || b > '9' {
		return -1
	}
	return int(a-'0')*10 + int(b-'0')
}

// Before reports whether t is strictly earlier than other. Valid "HH:MM"
// strings order correctly under byte comparison.
func (t TimeOfDay) Before(other TimeOfDay) bool { return t < other }

// String returns the "HH:MM" representation.
func (t TimeOfDay) String() string { return string(t) }

// Window is a half-open [Start, End) interval within a single day.
type Window struct {
	Start TimeOfDay
	End   TimeOfDay
}

// New builds a Window from raw "HH:MM" strings, rejecting malformed times and
// empty or inverted intervals.
func New(start, end string) (Window, error) {
	s, err := Parse(start)
	if err != nil {
		return Window{}, err
	}
	e, err := Parse(end)
	if err != nil {
		return Window{}, err
	}
	w := Window{Start: s, End: e}
	if !w.Start.Before(w.End) {
		return Window{}, domain.Newf(domain.CodeInvalidInterval,
			"requested interval %s-%s is empty or inverted", start, end)
	}
	return w, nil
}

// Overlaps reports whether two half-open windows intersect.
func (w Window) Overlaps(other Window) bool {
	return w.Start.Before(other.End) && other.Start.Before(w.End)
}

// String returns "HH:MM-HH:MM".
func (w Window) String() string {
	return fmt.Sprintf("%s-%s", w.Start, w.End)
}
