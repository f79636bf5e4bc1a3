// Package pricing computes booking quotes in integer minor currency units
// (cents).  Rates are prorated linearly by minute; any portion of the booking
// that falls inside a configured peak window is billed at the peak multiplier.
// Every rounding step rounds up to the next cent so the operator is never
// undercharged by truncation.
package pricing

import (
	"github.com/deskhive/workspace-reservation/internal/schedule"
)

// Calculator derives quotes for a requested interval.  Peak windows and the
// multiplier are deployment configuration shared by all workspaces; per
// workspace inputs (hourly rate, base price) arrive with each call.
type Calculator struct {
	peakWindows   []schedule.Interval
	multiplierPct int64 // peak multiplier in percent, e.g. 150 for 1.5x
}

// NewCalculator builds a Calculator.  A multiplier of 100 or less disables
// peak billing.
func NewCalculator(peakWindows []schedule.Interval, multiplierPct int64) *Calculator {
	if multiplierPct < 100 {
		multiplierPct = 100
	}
	return &Calculator{peakWindows: schedule.Merge(peakWindows), multiplierPct: multiplierPct}
}

// Rate is the pricing input attached to a workspace.
type Rate struct {
	HourlyCents int64 // per-hour rate in cents; 0 means flat base price billing
	BaseCents   int64 // flat add-on price used when HourlyCents is 0
}

// Quote prices the given interval.  The interval must already be validated;
// an invalid interval yields schedule.ErrInvalidInterval.  A zero hourly rate
// bills the flat base price regardless of duration (meeting rooms sold as
// event add-ons).
func (c *Calculator) Quote(rate Rate, iv schedule.Interval) (int64, error) {
	if err := iv.Validate(); err != nil {
		return 0, err
	}
	if rate.HourlyCents == 0 {
		return rate.BaseCents, nil
	}
	peakMinutes := 0
	for _, w := range c.peakWindows {
		if overlap, ok := iv.Intersect(w); ok {
			peakMinutes += overlap.Minutes()
		}
	}
	baseMinutes := iv.Minutes() - peakMinutes
	total := ceilDiv(int64(baseMinutes)*rate.HourlyCents, 60)
	total += ceilDiv(int64(peakMinutes)*rate.HourlyCents*c.multiplierPct, 60*100)
	return total, nil
}

// ceilDiv divides non-negative integers rounding up.
func ceilDiv(num, den int64) int64 {
	if num == 0 {
		return 0
	}
	return (num + den - 1) / den
}
