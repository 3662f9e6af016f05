package coupon

import "context"

// Repository provides read-only coupon snapshots to the engine. Soft-deleted
// records are filtered out before they reach the engine.
type Repository interface {
	// FindByCode retrieves the coupon for the normalized code, or nil if no
	// such coupon exists.
	FindByCode(ctx context.Context, code string) (*Coupon, error)
}

// UsageStore is the mutation capability for coupon consumption. Both
// operations act on shared state and must be atomic: two confirmations racing
// for the last usage unit must not both succeed.
type UsageStore interface {
	// ClaimUsage performs a compare-and-increment on the coupon's usage
	// count. It fails with domain.CodeCouponExhausted when no capacity
	// remains and domain.CodeCouponNotFound when the code is unknown.
	ClaimUsage(ctx context.Context, code string) error

	// ReleaseUsage undoes a prior successful claim. Used to compensate when
	// a confirmation fails after the claim, keeping confirm all-or-nothing.
	ReleaseUsage(ctx context.Context, code string) error
}
