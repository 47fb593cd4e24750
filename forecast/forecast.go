// Package forecast walks a fitted trend and seasonal profile forward,
// emitting point estimates with confidence bounds that widen as the
// projection moves away from observed history.
package forecast

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/voluntra/forecaster/seasonal"
	"github.com/voluntra/forecaster/timedataset"
	"github.com/voluntra/forecaster/trend"
)

var (
	ErrInvalidHorizon = errors.New("forecast horizon out of range")
	ErrNoTrendModel   = errors.New("no trend model to project")
	ErrUnsetStart     = errors.New("unset projection start period")
)

const (
	// MaxHorizonMonths caps how far ahead a projection may reach.
	MaxHorizonMonths = 24

	// DefaultBandZscore scales the residual spread into a roughly 95%
	// confidence band.
	DefaultBandZscore = 1.96
)

// Point is a single projected period.
type Point struct {
	T     time.Time `json:"date"`
	Value float64   `json:"forecast"`
	Lower float64   `json:"lower"`
	Upper float64   `json:"upper"`
}

// Range bounds projected values to the series' valid scale. Nil endpoints
// are unbounded.
type Range struct {
	Min *float64
	Max *float64
}

// NonNegative clamps at zero, the floor for any count-valued series.
func NonNegative() Range {
	zero := 0.0
	return Range{Min: &zero}
}

// Scale clamps to a closed interval such as a 0-100 score scale.
func Scale(min, max float64) Range {
	return Range{Min: &min, Max: &max}
}

func (r Range) clamp(v float64) float64 {
	if r.Min != nil && v < *r.Min {
		return *r.Min
	}
	if r.Max != nil && v > *r.Max {
		return *r.Max
	}
	return v
}

type Options struct {
	BandZscore float64
	Clamp      Range
}

func NewDefaultOptions() *Options {
	return &Options{
		BandZscore: DefaultBandZscore,
	}
}

// ValidateHorizon rejects horizons outside (0, MaxHorizonMonths] before any
// fitting work begins.
func ValidateHorizon(horizon int) error {
	if horizon <= 0 || horizon > MaxHorizonMonths {
		return fmt.Errorf("horizon of %d months must be within 1 to %d, %w", horizon, MaxHorizonMonths, ErrInvalidHorizon)
	}
	return nil
}

// Project emits horizon chronologically ordered points starting at start,
// the first period after the fitted history. Each point is the trend value
// at that period's index plus the seasonal adjustment for its calendar
// month, banded by the fit's residual spread growing with the square root of
// the forecast distance.
func Project(m *trend.Model, p *seasonal.Profile, start time.Time, horizon int, opt *Options) ([]Point, error) {
	if m == nil {
		return nil, ErrNoTrendModel
	}
	if start.IsZero() {
		return nil, ErrUnsetStart
	}
	if err := ValidateHorizon(horizon); err != nil {
		return nil, err
	}
	if opt == nil {
		opt = NewDefaultOptions()
	}

	points := make([]Point, 0, horizon)
	for k := 1; k <= horizon; k++ {
		month := timedataset.AddMonths(start, k-1)
		v := p.Adjust(month.Month(), m.Eval(float64(m.Obs-1+k)))
		points = append(points, bandedPoint(month, v, bandWidth(opt.BandZscore, m.ResidualStd, k), opt.Clamp))
	}
	return points, nil
}

// Flat emits a constant projection at the last observed value, the fallback
// when history is too short to fit a trend. The band still widens with
// distance using the spread of the observed values.
func Flat(last float64, spread float64, start time.Time, horizon int, opt *Options) ([]Point, error) {
	if start.IsZero() {
		return nil, ErrUnsetStart
	}
	if err := ValidateHorizon(horizon); err != nil {
		return nil, err
	}
	if opt == nil {
		opt = NewDefaultOptions()
	}

	points := make([]Point, 0, horizon)
	for k := 1; k <= horizon; k++ {
		month := timedataset.AddMonths(start, k-1)
		points = append(points, bandedPoint(month, last, bandWidth(opt.BandZscore, spread, k), opt.Clamp))
	}
	return points, nil
}

func bandWidth(zscore, spread float64, dist int) float64 {
	return zscore * spread * math.Sqrt(float64(dist))
}

func bandedPoint(t time.Time, v, width float64, clamp Range) Point {
	return Point{
		T:     t,
		Value: clamp.clamp(v),
		Lower: clamp.clamp(v - width),
		Upper: clamp.clamp(v + width),
	}
}
