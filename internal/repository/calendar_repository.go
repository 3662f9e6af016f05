package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tidewater/service-booking/internal/domain/calendar"
	"github.com/tidewater/service-booking/internal/domain/timewindow"
)

// CalendarEntryModel is the GORM model for the calendar_entries table.
type CalendarEntryModel struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Date        time.Time       `gorm:"type:date;uniqueIndex;not null"`
	Status      string          `gorm:"not null;size:20"`
	Reason      *string         `gorm:"size:20"`
	ClosedSlots json.RawMessage `gorm:"type:jsonb"`
	Notes       string          `gorm:"size:1000"`
	UpdatedBy   uuid.UUID       `gorm:"type:uuid"`
	CreatedAt   time.Time       `gorm:"not null"`
	UpdatedAt   time.Time       `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (CalendarEntryModel) TableName() string {
	return "calendar_entries"
}

// closedSlotJSON is the persisted shape of a closed slot.
type closedSlotJSON struct {
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Reason    string `json:"reason"`
}

// GormCalendarRepository is the GORM-based implementation of
// calendar.Repository.
type GormCalendarRepository struct {
	db *gorm.DB
}

// NewGormCalendarRepository creates a new GormCalendarRepository.
func NewGormCalendarRepository(db *gorm.DB) *GormCalendarRepository {
	return &GormCalendarRepository{db: db}
}

// FindByDate retrieves the calendar entry for the given day, or nil when the
// day has no entry.
func (r *GormCalendarRepository) FindByDate(ctx context.Context, date time.Time) (*calendar.Entry, error) {
	var model CalendarEntryModel
	day := date.Format("2006-01-02")
	if err := r.db.WithContext(ctx).Where("date = ?", day).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find calendar entry for %s: %w", day, err)
	}
	return toDomainEntry(&model)
}

func toDomainEntry(m *CalendarEntryModel) (*calendar.Entry, error) {
	var reason *calendar.ClosureReason
	if m.Reason != nil {
		r := calendar.ClosureReason(*m.Reason)
		reason = &r
	}

	var slots []calendar.ClosedSlot
	if len(m.ClosedSlots) > 0 {
		var raw []closedSlotJSON
		if err := json.Unmarshal(m.ClosedSlots, &raw); err != nil {
			return nil, fmt.Errorf("failed to unmarshal closed slots: %w", err)
		}
		slots = make([]calendar.ClosedSlot, 0, len(raw))
		for _, s := range raw {
			window, err := timewindow.New(s.StartTime, s.EndTime)
			if err != nil {
				return nil, fmt.Errorf("invalid closed slot %s-%s: %w", s.StartTime, s.EndTime, err)
			}
			slots = append(slots, calendar.ClosedSlot{
				Window: window,
				Reason: calendar.ClosureReason(s.Reason),
			})
		}
	}

	entry := &calendar.Entry{
		Date:        m.Date,
		Status:      calendar.DayStatus(m.Status),
		Reason:      reason,
		ClosedSlots: slots,
		Notes:       m.Notes,
		UpdatedBy:   m.UpdatedBy,
		UpdatedAt:   m.UpdatedAt,
	}
	if err := entry.Validate(); err != nil {
		return nil, fmt.Errorf("calendar entry %s is invalid: %w", m.ID, err)
	}
	return entry, nil
}
