package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tidewater/service-booking/internal/domain/pricing"
	"github.com/tidewater/service-booking/internal/domain/timewindow"
)

// PricingRuleModel is the GORM model for the pricing_rules table.
type PricingRuleModel struct {
	ID                uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Name              string          `gorm:"not null;size:100"`
	Type              string          `gorm:"not null;size:20;index"`
	AdjustmentPercent float64         `gorm:"not null"`
	Priority          int             `gorm:"not null;default:0"`
	Conditions        json.RawMessage `gorm:"type:jsonb"`
	IsActive          bool            `gorm:"not null;default:true;index"`
	IsDeleted         bool            `gorm:"not null;default:false"`
	CreatedAt         time.Time       `gorm:"not null"`
	UpdatedAt         time.Time       `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (PricingRuleModel) TableName() string {
	return "pricing_rules"
}

// ruleConditionsJSON is the persisted shape of rule conditions. Absent
// fields stay absent so the wildcard semantics survive the round trip.
type ruleConditionsJSON struct {
	StartTime     *string  `json:"start_time,omitempty"`
	EndTime       *string  `json:"end_time,omitempty"`
	DaysOfWeek    []int    `json:"days_of_week,omitempty"`
	StartDate     *string  `json:"start_date,omitempty"`
	EndDate       *string  `json:"end_date,omitempty"`
	SpecificDates []string `json:"specific_dates,omitempty"`
}

// GormPricingRuleRepository is the GORM-based implementation of
// pricing.Repository.
type GormPricingRuleRepository struct {
	db *gorm.DB
}

// NewGormPricingRuleRepository creates a new GormPricingRuleRepository.
func NewGormPricingRuleRepository(db *gorm.DB) *GormPricingRuleRepository {
	return &GormPricingRuleRepository{db: db}
}

// ListActive retrieves every active, non-deleted pricing rule.
func (r *GormPricingRuleRepository) ListActive(ctx context.Context) ([]pricing.Rule, error) {
	var models []PricingRuleModel
	if err := r.db.WithContext(ctx).
		Where("is_active = ? AND is_deleted = ?", true, false).
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list active pricing rules: %w", err)
	}

	rules := make([]pricing.Rule, 0, len(models))
	for _, m := range models {
		rule, err := toDomainRule(&m)
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

func toDomainRule(m *PricingRuleModel) (pricing.Rule, error) {
	var conditions pricing.Conditions
	if len(m.Conditions) > 0 {
		var raw ruleConditionsJSON
		if err := json.Unmarshal(m.Conditions, &raw); err != nil {
			return pricing.Rule{}, fmt.Errorf("failed to unmarshal conditions for rule %s: %w", m.ID, err)
		}

		if raw.StartTime != nil && raw.EndTime != nil {
			window, err := timewindow.New(*raw.StartTime, *raw.EndTime)
			if err != nil {
				return pricing.Rule{}, fmt.Errorf("invalid time window on rule %s: %w", m.ID, err)
			}
			conditions.Window = &window
		}

		if len(raw.DaysOfWeek) > 0 {
			days := make([]time.Weekday, 0, len(raw.DaysOfWeek))
			for _, d := range raw.DaysOfWeek {
				if d < 0 || d > 6 {
					return pricing.Rule{}, fmt.Errorf("invalid weekday %d on rule %s", d, m.ID)
				}
				days = append(days, time.Weekday(d))
			}
			conditions.DaysOfWeek = days
		}

		if raw.StartDate != nil {
			t, err := parseDay(*raw.StartDate)
			if err != nil {
				return pricing.Rule{}, fmt.Errorf("invalid start date on rule %s: %w", m.ID, err)
			}
			conditions.StartDate = &t
		}
		if raw.EndDate != nil {
			t, err := parseDay(*raw.EndDate)
			if err != nil {
				return pricing.Rule{}, fmt.Errorf("invalid end date on rule %s: %w", m.ID, err)
			}
			conditions.EndDate = &t
		}

		if len(raw.SpecificDates) > 0 {
			dates := make([]time.Time, 0, len(raw.SpecificDates))
			for _, s := range raw.SpecificDates {
				t, err := parseDay(s)
				if err != nil {
					return pricing.Rule{}, fmt.Errorf("invalid specific date on rule %s: %w", m.ID, err)
				}
				dates = append(dates, t)
			}
			conditions.SpecificDates = dates
		}
	}

	return pricing.Rule{
		ID:                m.ID,
		Name:              m.Name,
		Type:              pricing.RuleType(m.Type),
		AdjustmentPercent: m.AdjustmentPercent,
		Priority:          m.Priority,
		Conditions:        conditions,
		IsActive:          m.IsActive,
		UpdatedAt:         m.UpdatedAt,
	}, nil
}

func parseDay(s string) (time.Time, error) {
	return time.Parse("2006-01-02", s)
}
