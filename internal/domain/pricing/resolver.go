package pricing

import (
	"math"
	"time"

	"github.com/tidewater/service-booking/internal/domain/timewindow"
)

// ResolvedPrice is the outcome of rule resolution for one quote.
type ResolvedPrice struct {
	BaseRateCents int64
	AdjustedCents int64
	Rule          *Rule
}

// Resolve selects the winning adjustment rule for the given date and window
// and computes the adjusted unit price in cents. When no active rule matches,
// the base rate carries through unchanged and Rule is nil.
//
// Winner policy, applied in order: highest Priority, then most condition
// fields (specificity), then most recent UpdatedAt, then lowest rule ID.
// The last step only disambiguates byte-identical policies so repeated calls
// always pick the same rule regardless of input order.
func Resolve(date time.Time, requested timewindow.Window, baseRateCents int64, rules []Rule) ResolvedPrice {
	var winner *Rule
	for i := range rules {
		r := &rules[i]
		if !r.Matches(date, requested) {
			continue
		}
		if winner == nil || beats(r, winner) {
			winner = r
		}
	}

	if winner == nil {
		return ResolvedPrice{BaseRateCents: baseRateCents, AdjustedCents: baseRateCents}
	}

	won := *winner
	return ResolvedPrice{
		BaseRateCents: baseRateCents,
		AdjustedCents: adjust(baseRateCents, won.AdjustmentPercent),
		Rule:          &won,
	}
}

func beats(a, b *Rule) bool {
	if a.Priority != b.Priority {
		return a.Priority > b.Priority
	}
	as, bs := a.Conditions.Specificity(), b.Conditions.Specificity()
	if as != bs {
		return as > bs
	}
	if !a.UpdatedAt.Equal(b.UpdatedAt) {
		return a.UpdatedAt.After(b.UpdatedAt)
	}
	return a.ID.String() < b.ID.String()
}

// adjust applies a signed percentage to a cent amount, rounding half to even
// and flooring at zero.
func adjust(baseCents int64, percent float64) int64 {
	adjusted := math.RoundToEven(float64(baseCents) * (1 + percent/100))
	if adjusted < 0 {
		return 0
	}
	return int64(adjusted)
}
