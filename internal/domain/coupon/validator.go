package coupon

import (
	"math"
	"time"

	"github.com/tidewater/service-booking/internal/domain"
	"github.com/tidewater/service-booking/internal/domain/booking"
)

// Validate checks a coupon snapshot against a proposed order. A nil coupon
// means the code did not resolve to any record. The check is read-only:
// claiming a usage unit is the confirmation flow's job, via UsageStore.
func Validate(c *Coupon, orderCents int64, category booking.BoatCategory, now time.Time) error {
	if c == nil {
		return domain.New(domain.CodeCouponNotFound, "coupon not found")
	}
	if !c.IsActive || c.IsDeleted {
		return domain.Newf(domain.CodeCouponInactive, "coupon %s is not active", c.Code)
	}
	if now.Before(c.ValidFrom) || now.After(c.ValidTo) {
		return domain.Newf(domain.CodeCouponExpired, "coupon %s is not valid at this time", c.Code)
	}
	if c.Exhausted() {
		return domain.Newf(domain.CodeCouponExhausted, "coupon %s has reached its usage limit", c.Code)
	}
	if !c.AppliesTo.Covers(category) {
		return domain.Newf(domain.CodeCouponNotApplicable, "coupon %s does not apply to %s", c.Code, category)
	}
	if orderCents < c.MinOrderCents {
		return domain.Newf(domain.CodeMinOrderNotMet,
			"order amount %d is below the coupon minimum %d", orderCents, c.MinOrderCents)
	}
	return nil
}

// Discount computes the discount in cents for a validated coupon. The result
// never exceeds MaxDiscountCents (when nonzero) nor the order amount itself,
// so the final price can never go negative.
func Discount(c *Coupon, orderCents int64) int64 {
	var discount int64
	switch c.DiscountType {
	case DiscountPercentage:
		discount = int64(math.RoundToEven(float64(orderCents) * c.DiscountValue / 100))
	case DiscountFixed:
		discount = int64(c.DiscountValue)
	}
	if c.MaxDiscountCents > 0 && discount > c.MaxDiscountCents {
		discount = c.MaxDiscountCents
	}
	if discount > orderCents {
		discount = orderCents
	}
	if discount < 0 {
		discount = 0
	}
	return discount
}
