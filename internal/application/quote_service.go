package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tidewater/service-booking/internal/domain"
	bookingDomain "github.com/tidewater/service-booking/internal/domain/booking"
	"github.com/tidewater/service-booking/internal/domain/calendar"
	"github.com/tidewater/service-booking/internal/domain/coupon"
	"github.com/tidewater/service-booking/internal/domain/pricing"
	"github.com/tidewater/service-booking/internal/domain/timewindow"
	"github.com/tidewater/service-booking/internal/events"
)

// QuoteRequest holds the data needed to quote or confirm one rental window.
type QuoteRequest struct {
	BoatCategory  string `json:"boat_category" binding:"required"`
	Date          string `json:"date" binding:"required"`
	StartTime     string `json:"start_time" binding:"required"`
	EndTime       string `json:"end_time" binding:"required"`
	BaseRateCents int64  `json:"base_rate_cents" binding:"required"`
	CouponCode    string `json:"coupon_code"`
}

// ConfirmationDTO is the response representation of a confirmed booking.
type ConfirmationDTO struct {
	Reference       bookingDomain.Reference `json:"reference"`
	FinalPriceCents int64                   `json:"final_price_cents"`
	Quote           *bookingDomain.Quote    `json:"quote"`
}

// EventPublisher publishes domain events after state changes.
type EventPublisher interface {
	PublishEvent(ctx context.Context, topic string, event events.CloudEvent) error
}

// QuoteService orchestrates availability, pricing and coupon resolution into
// quotes, and confirmation into booking references. All decision logic lives
// in the domain packages; this service wires snapshots and the two atomic
// mutation capabilities together.
type QuoteService struct {
	calendars calendar.Repository
	rules     pricing.Repository
	coupons   coupon.Repository
	usage     coupon.UsageStore
	sequences bookingDomain.SequenceStore
	producer  EventPublisher
	logger    *zap.Logger
}

// NewQuoteService creates a new QuoteService.
func NewQuoteService(
	calendars calendar.Repository,
	rules pricing.Repository,
	coupons coupon.Repository,
	usage coupon.UsageStore,
	sequences bookingDomain.SequenceStore,
	producer EventPublisher,
	logger *zap.Logger,
) *QuoteService {
	return &QuoteService{
		calendars: calendars,
		rules:     rules,
		coupons:   coupons,
		usage:     usage,
		sequences: sequences,
		producer:  producer,
		logger:    logger,
	}
}

// CheckAvailability decides whether the requested window is bookable.
func (s *QuoteService) CheckAvailability(ctx context.Context, date, startTime, endTime string) (*calendar.Availability, error) {
	day, window, err := parseDayWindow(date, startTime, endTime)
	if err != nil {
		return nil, err
	}

	entry, err := s.calendars.FindByDate(ctx, day)
	if err != nil {
		return nil, domain.Wrap(domain.CodeCalendarUnavailable, "failed to load calendar entry", err)
	}

	avail := calendar.Check(window, entry)
	return &avail, nil
}

// ComputeQuote resolves availability, the winning pricing rule, and an
// optional coupon into a single quote. A blocked window short-circuits: no
// pricing is computed or reported for a slot that cannot be booked.
func (s *QuoteService) ComputeQuote(ctx context.Context, req QuoteRequest) (*bookingDomain.Quote, error) {
	parsed, err := s.parseRequest(req)
	if err != nil {
		return nil, err
	}
	return s.buildQuote(ctx, parsed, time.Now().UTC())
}

// ConfirmBooking re-validates the request against current state, atomically
// claims a coupon usage unit if a coupon is in play, draws the next booking
// sequence value, and publishes a confirmation event. The operation is
// all-or-nothing: a failure after the usage claim releases the claimed unit,
// and no sequence value is drawn before every validation has passed.
func (s *QuoteService) ConfirmBooking(ctx context.Context, req QuoteRequest) (*ConfirmationDTO, error) {
	parsed, err := s.parseRequest(req)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	quote, err := s.buildQuote(ctx, parsed, now)
	if err != nil {
		return nil, err
	}
	if !quote.Availability.Bookable {
		return nil, domain.New(domain.CodeConfirmationStale, "requested window is no longer open")
	}

	claimed := false
	if parsed.CouponCode != "" {
		if err := s.usage.ClaimUsage(ctx, parsed.CouponCode); err != nil {
			return nil, err
		}
		claimed = true
	}

	seq, err := s.sequences.Next(ctx, bookingDomain.BookingSequence)
	if err != nil {
		if claimed {
			if relErr := s.usage.ReleaseUsage(ctx, parsed.CouponCode); relErr != nil {
				s.logger.Error("failed to release coupon usage after sequence failure",
					zap.String("coupon_code", parsed.CouponCode),
					zap.Error(relErr),
				)
			}
		}
		return nil, err
	}

	ref := bookingDomain.Reference{Sequence: bookingDomain.BookingSequence, Value: seq}
	s.publishBookingConfirmed(ctx, quote, ref)

	return &ConfirmationDTO{
		Reference:       ref,
		FinalPriceCents: quote.FinalCents,
		Quote:           quote,
	}, nil
}

// buildQuote is the shared quoting path for ComputeQuote and ConfirmBooking.
// It performs no mutation.
func (s *QuoteService) buildQuote(ctx context.Context, req bookingDomain.QuoteRequest, now time.Time) (*bookingDomain.Quote, error) {
	entry, err := s.calendars.FindByDate(ctx, req.Date)
	if err != nil {
		return nil, domain.Wrap(domain.CodeCalendarUnavailable, "failed to load calendar entry", err)
	}

	quote := &bookingDomain.Quote{
		ID:            uuid.New(),
		Category:      req.Category,
		Date:          req.Date,
		Window:        req.Window,
		BaseRateCents: req.BaseRateCents,
		QuotedAt:      now,
	}

	quote.Availability = calendar.Check(req.Window, entry)
	if !quote.Availability.Bookable {
		return quote, nil
	}

	activeRules, err := s.rules.ListActive(ctx)
	if err != nil {
		return nil, domain.Wrap(domain.CodeUnavailable, "failed to load pricing rules", err)
	}

	resolved := pricing.Resolve(req.Date, req.Window, req.BaseRateCents, activeRules)
	quote.MatchedRule = resolved.Rule
	quote.AdjustedCents = resolved.AdjustedCents
	quote.FinalCents = resolved.AdjustedCents

	if req.CouponCode != "" {
		c, err := s.coupons.FindByCode(ctx, req.CouponCode)
		if err != nil {
			return nil, domain.Wrap(domain.CodeUnavailable, "failed to load coupon", err)
		}
		if err := coupon.Validate(c, quote.AdjustedCents, req.Category, now); err != nil {
			return nil, err
		}
		quote.CouponCode = c.Code
		quote.DiscountCents = coupon.Discount(c, quote.AdjustedCents)
		quote.FinalCents = quote.AdjustedCents - quote.DiscountCents
	}

	return quote, nil
}

func (s *QuoteService) parseRequest(req QuoteRequest) (bookingDomain.QuoteRequest, error) {
	category, err := bookingDomain.ParseBoatCategory(req.BoatCategory)
	if err != nil {
		return bookingDomain.QuoteRequest{}, err
	}

	day, window, err := parseDayWindow(req.Date, req.StartTime, req.EndTime)
	if err != nil {
		return bookingDomain.QuoteRequest{}, err
	}

	parsed := bookingDomain.QuoteRequest{
		Category:      category,
		Date:          day,
		Window:        window,
		BaseRateCents: req.BaseRateCents,
		CouponCode:    coupon.NormalizeCode(req.CouponCode),
	}
	if err := parsed.Validate(); err != nil {
		return bookingDomain.QuoteRequest{}, err
	}
	return parsed, nil
}

func parseDayWindow(date, startTime, endTime string) (time.Time, timewindow.Window, error) {
	day, err := time.Parse("2006-01-02", date)
	if err != nil {
		return time.Time{}, timewindow.Window{}, domain.Newf(domain.CodeValidation,
			"invalid date %q, want YYYY-MM-DD", date)
	}
	window, err := timewindow.New(startTime, endTime)
	if err != nil {
		return time.Time{}, timewindow.Window{}, err
	}
	return day, window, nil
}

func (s *QuoteService) publishBookingConfirmed(ctx context.Context, quote *bookingDomain.Quote, ref bookingDomain.Reference) {
	evt := events.BookingConfirmedEvent{
		QuoteID:         quote.ID,
		ReferenceSeq:    ref.Sequence,
		ReferenceValue:  ref.Value,
		BoatCategory:    quote.Category.String(),
		Date:            quote.Date.Format("2006-01-02"),
		StartTime:       quote.Window.Start.String(),
		EndTime:         quote.Window.End.String(),
		FinalPriceCents: quote.FinalCents,
		CouponCode:      quote.CouponCode,
		OccurredAt:      time.Now().UTC(),
	}

	cloudEvent, err := events.NewCloudEvent("service-booking", events.BookingConfirmed, evt)
	if err != nil {
		s.logger.Error("failed to create cloud event",
			zap.String("event_type", events.BookingConfirmed),
			zap.Error(err),
		)
		return
	}

	if err := s.producer.PublishEvent(ctx, events.TopicBookingEvents, cloudEvent); err != nil {
		s.logger.Error("failed to publish event",
			zap.String("topic", events.TopicBookingEvents),
			zap.String("event_type", events.BookingConfirmed),
			zap.Error(err),
		)
	}
}
