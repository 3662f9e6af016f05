package pricing

import "context"

// Repository provides read-only pricing rule snapshots to the engine.
type Repository interface {
	// ListActive retrieves every active, non-deleted rule.
	ListActive(ctx context.Context) ([]Rule, error)
}
