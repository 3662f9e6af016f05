package coupon

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tidewater/service-booking/internal/domain/booking"
)

// DiscountType determines how a coupon's value is interpreted.
type DiscountType string

const (
	// DiscountPercentage treats DiscountValue as a percentage of the order.
	DiscountPercentage DiscountType = "PERCENTAGE"
	// DiscountFixed treats DiscountValue as a fixed amount in cents.
	DiscountFixed DiscountType = "FIXED"
)

// IsValid returns true if the discount type is recognized.
func (t DiscountType) IsValid() bool {
	return t == DiscountPercentage || t == DiscountFixed
}

// Applicability restricts a coupon to a boat category.
type Applicability string

const (
	AppliesToAll       Applicability = "ALL"
	AppliesToSpeedBoat Applicability = "SPEED_BOAT"
	AppliesToPartyBoat Applicability = "PARTY_BOAT"
)

// Covers reports whether the applicability admits the given boat category.
func (a Applicability) Covers(category booking.BoatCategory) bool {
	switch a {
	case AppliesToAll:
		return true
	case AppliesToSpeedBoat:
		return category == booking.CategorySpeedBoat
	case AppliesToPartyBoat:
		return category == booking.CategoryPartyBoat
	}
	return false
}

// Coupon is a consumable discount record. UsageCount advances exactly once
// per confirmed booking that used the code, never on a quote.
type Coupon struct {
	ID               uuid.UUID
	Code             string
	DiscountType     DiscountType
	DiscountValue    float64
	MinOrderCents    int64
	MaxDiscountCents int64 // 0 = uncapped
	ValidFrom        time.Time
	ValidTo          time.Time
	UsageLimit       int64 // 0 = unlimited
	UsageCount       int64
	AppliesTo        Applicability
	IsActive         bool
	IsDeleted        bool
	UpdatedAt        time.Time
}

// Exhausted reports whether the coupon has no usage capacity left.
func (c *Coupon) Exhausted() bool {
	return c.UsageLimit > 0 && c.UsageCount >= c.UsageLimit
}

// NormalizeCode canonicalizes a coupon code for lookup and comparison.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
