// Package seasonal derives a within-year adjustment profile from the
// deviation between observed values and the fitted trend.
package seasonal

import (
	"time"

	"github.com/voluntra/forecaster/timedataset"
	"github.com/voluntra/forecaster/trend"
)

const (
	// MinProfileMonths is the least history that yields a profile at all.
	// Below it the adjuster degrades to a neutral no-op rather than failing.
	MinProfileMonths = 12
	// MinSlotSamples is the fewest residuals a calendar month needs before
	// its slot adjusts anything. A single residual is indistinguishable
	// from noise and would just replay the previous year.
	MinSlotSamples = 2
)

// Profile maps each calendar month to an additive adjustment applied on top
// of the trend value. A neutral profile adjusts nothing.
type Profile struct {
	Additive [12]float64 `json:"additive"`
	Neutral  bool        `json:"neutral"`
}

func NewNeutralProfile() *Profile {
	return &Profile{Neutral: true}
}

// NewProfile averages the trend residuals by calendar month. Months with
// fewer than MinSlotSamples residuals keep a zero adjustment, so every month
// the projector can request is defined.
func NewProfile(s *timedataset.MonthlySeries, m *trend.Model) *Profile {
	if s.Len() < MinProfileMonths {
		return NewNeutralProfile()
	}

	var sums, counts [12]float64
	for i, month := range s.T {
		idx := int(month.Month()) - 1
		sums[idx] += s.Y[i] - m.Eval(float64(i))
		counts[idx]++
	}

	p := &Profile{}
	for i := range sums {
		if counts[i] >= MinSlotSamples {
			p.Additive[i] = sums[i] / counts[i]
		}
	}
	return p
}

// Factor returns the additive adjustment for a calendar month.
func (p *Profile) Factor(m time.Month) float64 {
	if p == nil || p.Neutral {
		return 0.0
	}
	return p.Additive[int(m)-1]
}

// Adjust applies the month's adjustment to a trend value.
func (p *Profile) Adjust(m time.Month, v float64) float64 {
	return v + p.Factor(m)
}
