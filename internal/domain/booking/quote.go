package booking

import (
	"time"

	"github.com/google/uuid"

	"github.com/tidewater/service-booking/internal/domain"
	"github.com/tidewater/service-booking/internal/domain/calendar"
	"github.com/tidewater/service-booking/internal/domain/pricing"
	"github.com/tidewater/service-booking/internal/domain/timewindow"
)

// QuoteRequest carries everything needed to price one rental window.
type QuoteRequest struct {
	Category      BoatCategory
	Date          time.Time
	Window        timewindow.Window
	BaseRateCents int64
	CouponCode    string
}

// Validate checks the request's own fields; calendar and rule state are
// checked downstream.
func (r QuoteRequest) Validate() error {
	if !r.Category.IsValid() {
		return domain.Newf(domain.CodeValidation, "invalid boat category: %s", r.Category)
	}
	if r.Date.IsZero() {
		return domain.NewValidationError("date is required")
	}
	if r.BaseRateCents <= 0 {
		return domain.NewValidationError("base rate must be positive")
	}
	return nil
}

// Quote is a computed, non-binding price and availability result. It is not
// persisted by the engine.
type Quote struct {
	ID            uuid.UUID             `json:"id"`
	Category      BoatCategory          `json:"category"`
	Date          time.Time             `json:"date"`
	Window        timewindow.Window     `json:"window"`
	Availability  calendar.Availability `json:"availability"`
	BaseRateCents int64                 `json:"base_rate_cents"`
	MatchedRule   *pricing.Rule         `json:"matched_rule,omitempty"`
	AdjustedCents int64                 `json:"adjusted_price_cents"`
	CouponCode    string                `json:"coupon_code,omitempty"`
	DiscountCents int64                 `json:"discount_cents"`
	FinalCents    int64                 `json:"final_price_cents"`
	QuotedAt      time.Time             `json:"quoted_at"`
}

// Reference identifies a confirmed booking: the raw sequence value plus the
// sequence name it was drawn from. Callers format the display number.
type Reference struct {
	Sequence string `json:"sequence"`
	Value    int64  `json:"value"`
}
