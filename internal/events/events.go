package events

import (
	"time"

	"github.com/google/uuid"
)

// TopicBookingEvents is the topic carrying booking lifecycle events.
const TopicBookingEvents = "booking.events"

// Event types published by this service.
const (
	BookingConfirmed = "booking.confirmed"
)

// BookingConfirmedEvent is published once a quote has been confirmed and a
// reference number issued. Downstream consumers own persistence and customer
// notification.
type BookingConfirmedEvent struct {
	QuoteID         uuid.UUID `json:"quote_id"`
	ReferenceSeq    string    `json:"reference_sequence"`
	ReferenceValue  int64     `json:"reference_value"`
	BoatCategory    string    `json:"boat_category"`
	Date            string    `json:"date"`
	StartTime       string    `json:"start_time"`
	EndTime         string    `json:"end_time"`
	FinalPriceCents int64     `json:"final_price_cents"`
	CouponCode      string    `json:"coupon_code,omitempty"`
	OccurredAt      time.Time `json:"occurred_at"`
}
