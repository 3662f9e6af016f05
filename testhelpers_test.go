//go:build integration

package main_test

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/tidewater/service-booking/internal/application"
	"github.com/tidewater/service-booking/internal/events"
	"github.com/tidewater/service-booking/internal/repository"
)

// testInfra holds shared test infrastructure.
type testInfra struct {
	DB      *gorm.DB
	Redis   *redis.Client
	Cleanup func()
}

// quoteStack holds the wired-up quoting service with a recording publisher in
// place of the Kafka producer.
type quoteStack struct {
	Service   *application.QuoteService
	Coupons   *repository.GormCouponRepository
	Publisher *recordingPublisher
}

// recordingPublisher captures published events for assertions.
type recordingPublisher struct {
	mu     sync.Mutex
	events []events.CloudEvent
}

func (p *recordingPublisher) PublishEvent(_ context.Context, _ string, event events.CloudEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) published() []events.CloudEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]events.CloudEvent(nil), p.events...)
}

// setupContainers starts PostgreSQL and Redis testcontainers and returns
// connected clients.
func setupContainers(t *testing.T) *testInfra {
	t.Helper()
	ctx := context.Background()

	pgReq := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "test_booking",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	pgContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: pgReq,
		Started:          true,
	})
	require.NoError(t, err, "failed to start PostgreSQL container")

	pgHost, err := pgContainer.Host(ctx)
	require.NoError(t, err)
	pgPort, err := pgContainer.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dsn := fmt.Sprintf("host=%s port=%s user=test password=test dbname=test_booking sslmode=disable", pgHost, pgPort.Port())

	// Poll until GORM can actually connect and ping.
	var db *gorm.DB
	require.Eventually(t, func() bool {
		var err error
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
		if err != nil {
			return false
		}
		sqlDB, err := db.DB()
		if err != nil {
			return false
		}
		return sqlDB.Ping() == nil
	}, 30*time.Second, 1*time.Second, "PostgreSQL not ready for connections")

	require.NoError(t, db.AutoMigrate(
		&repository.CalendarEntryModel{},
		&repository.PricingRuleModel{},
		&repository.CouponModel{},
	))

	redisReq := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor: wait.ForLog("Ready to accept connections").
			WithStartupTimeout(30 * time.Second),
	}
	redisContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: redisReq,
		Started:          true,
	})
	require.NoError(t, err, "failed to start Redis container")

	redisHost, err := redisContainer.Host(ctx)
	require.NoError(t, err)
	redisPort, err := redisContainer.MappedPort(ctx, "6379")
	require.NoError(t, err)

	redisClient := redis.NewClient(&redis.Options{
		Addr: fmt.Sprintf("%s:%s", redisHost, redisPort.Port()),
	})
	require.NoError(t, redisClient.Ping(ctx).Err())

	cleanup := func() {
		_ = redisClient.Close()
		if err := redisContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate Redis container: %v", err)
		}
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate PostgreSQL container: %v", err)
		}
	}

	return &testInfra{DB: db, Redis: redisClient, Cleanup: cleanup}
}

// setupQuoteStack wires up the full quoting service stack.
func setupQuoteStack(t *testing.T, infra *testInfra) *quoteStack {
	t.Helper()
	logger, _ := zap.NewDevelopment()

	calendarRepo := repository.NewGormCalendarRepository(infra.DB)
	ruleRepo := repository.NewGormPricingRuleRepository(infra.DB)
	couponRepo := repository.NewGormCouponRepository(infra.DB)
	sequenceStore := repository.NewRedisSequenceStore(infra.Redis)
	publisher := &recordingPublisher{}

	service := application.NewQuoteService(
		calendarRepo, ruleRepo, couponRepo, couponRepo, sequenceStore, publisher, logger,
	)
	return &quoteStack{Service: service, Coupons: couponRepo, Publisher: publisher}
}

// seedWeekendRule inserts an active +20% weekend rule.
func seedWeekendRule(t *testing.T, db *gorm.DB) {
	t.Helper()
	conditions, err := json.Marshal(map[string]interface{}{
		"days_of_week": []int{0, 6},
	})
	require.NoError(t, err)

	now := time.Now().UTC()
	model := repository.PricingRuleModel{
		ID:                uuid.New(),
		Name:              "weekend markup",
		Type:              "WEEKEND",
		AdjustmentPercent: 20,
		Priority:          5,
		Conditions:        conditions,
		IsActive:          true,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	require.NoError(t, db.Create(&model).Error, "failed to seed pricing rule")
}

// seedCoupon inserts an active percentage coupon.
func seedCoupon(t *testing.T, db *gorm.DB, code string, usageLimit int64) {
	t.Helper()
	now := time.Now().UTC()
	model := repository.CouponModel{
		ID:               uuid.New(),
		Code:             code,
		DiscountType:     "PERCENTAGE",
		DiscountValue:    10,
		MaxDiscountCents: 100,
		ValidFrom:        now.AddDate(-1, 0, 0),
		ValidTo:          now.AddDate(1, 0, 0),
		UsageLimit:       usageLimit,
		AppliesTo:        "ALL",
		IsActive:         true,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	require.NoError(t, db.Create(&model).Error, "failed to seed coupon")
}

// seedPartialClosedDay inserts a PARTIAL_CLOSED entry with one closed slot.
func seedPartialClosedDay(t *testing.T, db *gorm.DB, date time.Time, start, end string) {
	t.Helper()
	slots, err := json.Marshal([]map[string]string{
		{"start_time": start, "end_time": end, "reason": "TIDE"},
	})
	require.NoError(t, err)

	now := time.Now().UTC()
	model := repository.CalendarEntryModel{
		ID:          uuid.New(),
		Date:        date,
		Status:      "PARTIAL_CLOSED",
		ClosedSlots: slots,
		UpdatedBy:   uuid.New(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	require.NoError(t, db.Create(&model).Error, "failed to seed calendar entry")
}

func couponUsageCount(t *testing.T, db *gorm.DB, code string) int64 {
	t.Helper()
	var model repository.CouponModel
	require.NoError(t, db.Where("code = ?", code).First(&model).Error)
	return model.UsageCount
}
