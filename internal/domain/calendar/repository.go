package calendar

import (
	"context"
	"time"
)

// Repository provides read-only calendar snapshots to the engine.
type Repository interface {
	// FindByDate retrieves the calendar entry for the given day, or nil if
	// no entry exists (the day defaults to open).
	FindByDate(ctx context.Context, date time.Time) (*Entry, error)
}
