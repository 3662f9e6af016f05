package application_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tidewater/service-booking/internal/application"
	"github.com/tidewater/service-booking/internal/domain"
	"github.com/tidewater/service-booking/internal/domain/calendar"
	"github.com/tidewater/service-booking/internal/domain/coupon"
	"github.com/tidewater/service-booking/internal/domain/pricing"
	"github.com/tidewater/service-booking/internal/events"
)

// --- Fakes ---

type fakeCalendarRepo struct {
	entry *calendar.Entry
	err   error
}

func (f *fakeCalendarRepo) FindByDate(_ context.Context, _ time.Time) (*calendar.Entry, error) {
	return f.entry, f.err
}

type fakeRuleRepo struct {
	rules []pricing.Rule
	calls atomic.Int64
}

func (f *fakeRuleRepo) ListActive(_ context.Context) ([]pricing.Rule, error) {
	f.calls.Add(1)
	return f.rules, nil
}

type fakeCouponRepo struct {
	coupons map[string]*coupon.Coupon
}

func (f *fakeCouponRepo) FindByCode(_ context.Context, code string) (*coupon.Coupon, error) {
	return f.coupons[code], nil
}

type fakeUsageStore struct {
	mu       sync.Mutex
	limits   map[string]int64
	counts   map[string]int64
	releases int
	claimErr error
}

func newFakeUsageStore() *fakeUsageStore {
	return &fakeUsageStore{limits: map[string]int64{}, counts: map[string]int64{}}
}

func (f *fakeUsageStore) ClaimUsage(_ context.Context, code string) error {
	if f.claimErr != nil {
		return f.claimErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	limit := f.limits[code]
	if limit > 0 && f.counts[code] >= limit {
		return domain.Newf(domain.CodeCouponExhausted, "coupon %s has reached its usage limit", code)
	}
	f.counts[code]++
	return nil
}

func (f *fakeUsageStore) ReleaseUsage(_ context.Context, code string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counts[code]--
	f.releases++
	return nil
}

type fakeSequenceStore struct {
	mu       sync.Mutex
	counters map[string]int64
	err      error
}

func newFakeSequenceStore() *fakeSequenceStore {
	return &fakeSequenceStore{counters: map[string]int64{}}
}

func (f *fakeSequenceStore) Next(_ context.Context, name string) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counters[name]++
	return f.counters[name], nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []events.CloudEvent
}

func (f *fakePublisher) PublishEvent(_ context.Context, _ string, event events.CloudEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	return nil
}

func (f *fakePublisher) published() []events.CloudEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]events.CloudEvent(nil), f.events...)
}

// --- Fixtures ---

type stack struct {
	service   *application.QuoteService
	calendars *fakeCalendarRepo
	rules     *fakeRuleRepo
	coupons   *fakeCouponRepo
	usage     *fakeUsageStore
	sequences *fakeSequenceStore
	publisher *fakePublisher
}

func newStack() *stack {
	s := &stack{
		calendars: &fakeCalendarRepo{},
		rules:     &fakeRuleRepo{},
		coupons:   &fakeCouponRepo{coupons: map[string]*coupon.Coupon{}},
		usage:     newFakeUsageStore(),
		sequences: newFakeSequenceStore(),
		publisher: &fakePublisher{},
	}
	s.service = application.NewQuoteService(
		s.calendars, s.rules, s.coupons, s.usage, s.sequences, s.publisher, zap.NewNop(),
	)
	return s
}

// saturdayRequest targets 2026-01-03, a Saturday.
func saturdayRequest(couponCode string) application.QuoteRequest {
	return application.QuoteRequest{
		BoatCategory:  "speed_boat",
		Date:          "2026-01-03",
		StartTime:     "10:00",
		EndTime:       "12:00",
		BaseRateCents: 1000,
		CouponCode:    couponCode,
	}
}

func weekendRule() pricing.Rule {
	return pricing.Rule{
		ID:                uuid.New(),
		Name:              "weekend markup",
		Type:              pricing.TypeWeekend,
		AdjustmentPercent: 20,
		Priority:          5,
		Conditions: pricing.Conditions{
			DaysOfWeek: []time.Weekday{time.Sunday, time.Saturday},
		},
		IsActive: true,
	}
}

func summerCoupon() *coupon.Coupon {
	return &coupon.Coupon{
		ID:               uuid.New(),
		Code:             "SUMMER10",
		DiscountType:     coupon.DiscountPercentage,
		DiscountValue:    10,
		MaxDiscountCents: 100,
		ValidFrom:        time.Now().UTC().AddDate(-1, 0, 0),
		ValidTo:          time.Now().UTC().AddDate(1, 0, 0),
		AppliesTo:        coupon.AppliesToAll,
		IsActive:         true,
	}
}

// --- Quoting ---

func TestComputeQuote_RuleAndCappedCoupon(t *testing.T) {
	s := newStack()
	s.rules.rules = []pricing.Rule{weekendRule()}
	s.coupons.coupons["SUMMER10"] = summerCoupon()

	quote, err := s.service.ComputeQuote(context.Background(), saturdayRequest("summer10"))
	require.NoError(t, err)

	assert.True(t, quote.Availability.Bookable)
	require.NotNil(t, quote.MatchedRule)
	assert.Equal(t, "weekend markup", quote.MatchedRule.Name)
	assert.Equal(t, int64(1200), quote.AdjustedCents)
	assert.Equal(t, "SUMMER10", quote.CouponCode)
	// 10% of 1200 is 120, capped at 100.
	assert.Equal(t, int64(100), quote.DiscountCents)
	assert.Equal(t, int64(1100), quote.FinalCents)
}

func TestComputeQuote_NoCouponNoRule(t *testing.T) {
	s := newStack()

	quote, err := s.service.ComputeQuote(context.Background(), saturdayRequest(""))
	require.NoError(t, err)

	assert.Nil(t, quote.MatchedRule)
	assert.Equal(t, int64(1000), quote.AdjustedCents)
	assert.Equal(t, int64(0), quote.DiscountCents)
	assert.Equal(t, int64(1000), quote.FinalCents)
}

func TestComputeQuote_BlockedWindowShortCircuitsPricing(t *testing.T) {
	s := newStack()
	s.rules.rules = []pricing.Rule{weekendRule()}
	reason := calendar.ReasonWeather
	s.calendars.entry = &calendar.Entry{Status: calendar.DayClosed, Reason: &reason}

	quote, err := s.service.ComputeQuote(context.Background(), saturdayRequest("SUMMER10"))
	require.NoError(t, err)

	assert.False(t, quote.Availability.Bookable)
	require.NotNil(t, quote.Availability.BlockedBy)
	assert.Equal(t, calendar.ReasonWeather, *quote.Availability.BlockedBy)
	// No pricing is computed or reported for a blocked slot.
	assert.Nil(t, quote.MatchedRule)
	assert.Equal(t, int64(0), quote.AdjustedCents)
	assert.Equal(t, int64(0), quote.FinalCents)
	assert.Equal(t, int64(0), s.rules.calls.Load())
}

func TestComputeQuote_InputValidation(t *testing.T) {
	s := newStack()

	tests := []struct {
		name   string
		mutate func(*application.QuoteRequest)
		want   domain.ErrorCode
	}{
		{"inverted interval", func(r *application.QuoteRequest) { r.StartTime, r.EndTime = "12:00", "10:00" }, domain.CodeInvalidInterval},
		{"zero length interval", func(r *application.QuoteRequest) { r.EndTime = r.StartTime }, domain.CodeInvalidInterval},
		{"malformed time", func(r *application.QuoteRequest) { r.StartTime = "9am" }, domain.CodeValidation},
		{"malformed date", func(r *application.QuoteRequest) { r.Date = "03/01/2026" }, domain.CodeValidation},
		{"unknown category", func(r *application.QuoteRequest) { r.BoatCategory = "submarine" }, domain.CodeValidation},
		{"non-positive base rate", func(r *application.QuoteRequest) { r.BaseRateCents = 0 }, domain.CodeValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := saturdayRequest("")
			tt.mutate(&req)
			_, err := s.service.ComputeQuote(context.Background(), req)
			assert.True(t, domain.IsCode(err, tt.want), "got %v", err)
		})
	}
}

func TestComputeQuote_CalendarFetchFailure(t *testing.T) {
	s := newStack()
	s.calendars.err = assert.AnError

	_, err := s.service.ComputeQuote(context.Background(), saturdayRequest(""))
	assert.True(t, domain.IsCode(err, domain.CodeCalendarUnavailable), "got %v", err)
}

func TestComputeQuote_ExhaustedCouponFails(t *testing.T) {
	s := newStack()
	c := summerCoupon()
	c.UsageLimit = 1
	c.UsageCount = 1
	s.coupons.coupons["SUMMER10"] = c

	_, err := s.service.ComputeQuote(context.Background(), saturdayRequest("SUMMER10"))
	assert.True(t, domain.IsCode(err, domain.CodeCouponExhausted), "got %v", err)
}

func TestCheckAvailability_DefaultOpen(t *testing.T) {
	s := newStack()

	avail, err := s.service.CheckAvailability(context.Background(), "2026-01-03", "10:00", "12:00")
	require.NoError(t, err)
	assert.True(t, avail.Bookable)
}

// --- Confirmation ---

func TestConfirmBooking_IssuesSequentialReferences(t *testing.T) {
	s := newStack()

	first, err := s.service.ConfirmBooking(context.Background(), saturdayRequest(""))
	require.NoError(t, err)
	second, err := s.service.ConfirmBooking(context.Background(), saturdayRequest(""))
	require.NoError(t, err)

	assert.Equal(t, int64(1), first.Reference.Value)
	assert.Equal(t, int64(2), second.Reference.Value)
	assert.Equal(t, "bookingId", first.Reference.Sequence)

	published := s.publisher.published()
	require.Len(t, published, 2)
	assert.Equal(t, events.BookingConfirmed, published[0].Type)
}

func TestConfirmBooking_ClaimsCouponUsage(t *testing.T) {
	s := newStack()
	s.coupons.coupons["SUMMER10"] = summerCoupon()
	s.usage.limits["SUMMER10"] = 5

	result, err := s.service.ConfirmBooking(context.Background(), saturdayRequest("SUMMER10"))
	require.NoError(t, err)

	assert.Equal(t, int64(900), result.FinalPriceCents)
	assert.Equal(t, int64(1), s.usage.counts["SUMMER10"])
}

func TestConfirmBooking_BlockedWindowIsStale(t *testing.T) {
	s := newStack()
	s.calendars.entry = &calendar.Entry{Status: calendar.DayClosed}

	_, err := s.service.ConfirmBooking(context.Background(), saturdayRequest(""))
	assert.True(t, domain.IsCode(err, domain.CodeConfirmationStale), "got %v", err)

	// No partial effect: nothing drawn, nothing published.
	assert.Empty(t, s.sequences.counters)
	assert.Empty(t, s.publisher.published())
}

func TestConfirmBooking_ExhaustedCouponLeavesNoPartialEffect(t *testing.T) {
	s := newStack()
	c := summerCoupon()
	c.UsageLimit = 1
	c.UsageCount = 1
	s.coupons.coupons["SUMMER10"] = c

	// An earlier quote for the same coupon may well have succeeded; the
	// confirm-time snapshot decides.
	_, err := s.service.ConfirmBooking(context.Background(), saturdayRequest("SUMMER10"))
	assert.True(t, domain.IsCode(err, domain.CodeCouponExhausted), "got %v", err)

	assert.Empty(t, s.sequences.counters)
	assert.Equal(t, int64(0), s.usage.counts["SUMMER10"])
	assert.Empty(t, s.publisher.published())
}

func TestConfirmBooking_SequenceFailureReleasesClaimedUsage(t *testing.T) {
	s := newStack()
	s.coupons.coupons["SUMMER10"] = summerCoupon()
	s.usage.limits["SUMMER10"] = 5
	s.sequences.err = domain.New(domain.CodeSequenceUnavailable, "sequence store unreachable")

	_, err := s.service.ConfirmBooking(context.Background(), saturdayRequest("SUMMER10"))
	assert.True(t, domain.IsCode(err, domain.CodeSequenceUnavailable), "got %v", err)

	assert.Equal(t, int64(0), s.usage.counts["SUMMER10"])
	assert.Equal(t, 1, s.usage.releases)
	assert.Empty(t, s.publisher.published())
}

func TestConfirmBooking_ConcurrentReferencesAreContiguous(t *testing.T) {
	s := newStack()
	const n = 50

	type outcome struct {
		value int64
		err   error
	}
	outcomes := make(chan outcome, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := s.service.ConfirmBooking(context.Background(), saturdayRequest(""))
			if err != nil {
				outcomes <- outcome{err: err}
				return
			}
			outcomes <- outcome{value: result.Reference.Value}
		}()
	}
	wg.Wait()
	close(outcomes)

	seen := make(map[int64]bool, n)
	for o := range outcomes {
		require.NoError(t, o.err)
		assert.False(t, seen[o.value], "duplicate reference %d", o.value)
		seen[o.value] = true
	}
	// A contiguous run starting at 1: no gaps, no duplicates.
	for i := int64(1); i <= n; i++ {
		assert.True(t, seen[i], "missing reference %d", i)
	}
}

func TestConfirmBooking_LastCouponUnitAdmitsExactlyOne(t *testing.T) {
	s := newStack()
	c := summerCoupon()
	c.UsageLimit = 1
	s.coupons.coupons["SUMMER10"] = c
	s.usage.limits["SUMMER10"] = 1

	const racers = 2
	errs := make(chan error, racers)
	var wg sync.WaitGroup
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.service.ConfirmBooking(context.Background(), saturdayRequest("SUMMER10"))
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var successes, exhausted int
	for err := range errs {
		if err == nil {
			successes++
		} else if domain.IsCode(err, domain.CodeCouponExhausted) {
			exhausted++
		} else {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	assert.Equal(t, 1, successes)
	assert.Equal(t, 1, exhausted)
	// The loser consumed no sequence value.
	assert.Equal(t, int64(1), s.sequences.counters["bookingId"])
	assert.Equal(t, int64(1), s.usage.counts["SUMMER10"])
}
