package pricing

import (
	"time"

	"github.com/google/uuid"

	"github.com/tidewater/service-booking/internal/domain/timewindow"
)

// RuleType classifies a price-adjustment rule.
type RuleType string

const (
	TypePeakHours    RuleType = "PEAK_HOURS"
	TypeOffPeakHours RuleType = "OFF_PEAK_HOURS"
	TypeWeekend      RuleType = "WEEKEND"
	TypeSeasonal     RuleType = "SEASONAL"
	TypeHoliday      RuleType = "HOLIDAY"
	TypeSpecial      RuleType = "SPECIAL"
)

// IsValid returns true if the rule type is recognized.
func (t RuleType) IsValid() bool {
	switch t {
	case TypePeakHours, TypeOffPeakHours, TypeWeekend, TypeSeasonal, TypeHoliday, TypeSpecial:
		return true
	}
	return false
}

// Conditions restricts when a rule applies. An absent field is a wildcard;
// a rule matches only when every present field is satisfied.
type Conditions struct {
	Window        *timewindow.Window `json:"window,omitempty"`
	DaysOfWeek    []time.Weekday     `json:"days_of_week,omitempty"`
	StartDate     *time.Time         `json:"start_date,omitempty"`
	EndDate       *time.Time         `json:"end_date,omitempty"`
	SpecificDates []time.Time        `json:"specific_dates,omitempty"`
}

// Specificity counts the present condition fields. More specific rules win
// priority ties.
func (c Conditions) Specificity() int {
	n := 0
	if c.Window != nil {
		n++
	}
	if len(c.DaysOfWeek) > 0 {
		n++
	}
	if c.StartDate != nil {
		n++
	}
	if c.EndDate != nil {
		n++
	}
	if len(c.SpecificDates) > 0 {
		n++
	}
	return n
}

// Rule is a priority-ranked price adjustment. Rules are not consumed: unlike
// coupons they carry no usage counter.
type Rule struct {
	ID                uuid.UUID
	Name              string
	Type              RuleType
	AdjustmentPercent float64
	Priority          int
	Conditions        Conditions
	IsActive          bool
	UpdatedAt         time.Time
}

// Matches reports whether the rule applies to the given date and requested
// time window. Inactive rules never match.
func (r *Rule) Matches(date time.Time, requested timewindow.Window) bool {
	if !r.IsActive {
		return false
	}
	c := r.Conditions
	if len(c.DaysOfWeek) > 0 && !containsWeekday(c.DaysOfWeek, date.Weekday()) {
		return false
	}
	if c.StartDate != nil && dayOf(date).Before(dayOf(*c.StartDate)) {
		return false
	}
	if c.EndDate != nil && dayOf(date).After(dayOf(*c.EndDate)) {
		return false
	}
	if len(c.SpecificDates) > 0 && !containsDate(c.SpecificDates, date) {
		return false
	}
	if c.Window != nil && !requested.Overlaps(*c.Window) {
		return false
	}
	return true
}

func containsWeekday(days []time.Weekday, d time.Weekday) bool {
	for _, wd := range days {
		if wd == d {
			return true
		}
	}
	return false
}

func containsDate(dates []time.Time, d time.Time) bool {
	for _, t := range dates {
		if sameDay(t, d) {
			return true
		}
	}
	return false
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func dayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
