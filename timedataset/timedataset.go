// Package timedataset holds the monthly time series entity shared by the
// aggregation, fitting, and projection stages.
package timedataset

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrNoData        = errors.New("no series data")
	ErrLenMismatch   = errors.New("time feature has a different length than observations")
	ErrNotMonthStart = errors.New("time feature is not aligned to a month start")
	ErrNonContiguous = errors.New("time feature is not a contiguous monthly grid")
)

// MonthlySeries is a regular calendar-month grid of observations. T holds
// month starts in UTC, strictly increasing with no gaps. Populated counts the
// buckets that held at least one source record; gap-filled buckets do not
// count toward it.
type MonthlySeries struct {
	T         []time.Time `json:"time"`
	Y         []float64   `json:"values"`
	Populated int         `json:"populated"`
}

// NewMonthlySeries validates and copies the input grid. Populated defaults to
// the series length; aggregation overrides it when gap filling.
func NewMonthlySeries(t []time.Time, y []float64) (*MonthlySeries, error) {
	if len(y) == 0 {
		return nil, ErrNoData
	}
	if len(t) != len(y) {
		return nil, fmt.Errorf(
			"time feature has length of %d, but values has a length of %d, %w",
			len(t), len(y), ErrLenMismatch,
		)
	}

	for i, curr := range t {
		if !curr.Equal(MonthStart(curr)) {
			return nil, fmt.Errorf("index %d is not a month start, %w", i, ErrNotMonthStart)
		}
		if i > 0 && !curr.Equal(AddMonths(t[i-1], 1)) {
			return nil, fmt.Errorf("gap or reversal at index %d, %w", i, ErrNonContiguous)
		}
	}

	tSeries := make([]time.Time, len(t))
	ySeries := make([]float64, len(y))
	copy(tSeries, t)
	copy(ySeries, y)
	return &MonthlySeries{
		T:         tSeries,
		Y:         ySeries,
		Populated: len(y),
	}, nil
}

func (s *MonthlySeries) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Y)
}

func (s *MonthlySeries) Copy() *MonthlySeries {
	tSeries := make([]time.Time, len(s.T))
	ySeries := make([]float64, len(s.Y))
	copy(tSeries, s.T)
	copy(ySeries, s.Y)
	return &MonthlySeries{
		T:         tSeries,
		Y:         ySeries,
		Populated: s.Populated,
	}
}

// Last returns the final bucket of the series.
func (s *MonthlySeries) Last() (time.Time, float64) {
	if s.Len() == 0 {
		return time.Time{}, 0.0
	}
	return s.T[len(s.T)-1], s.Y[len(s.Y)-1]
}

// NextPeriod returns the first month after the last historical bucket, the
// starting point for any projection.
func (s *MonthlySeries) NextPeriod() time.Time {
	last, _ := s.Last()
	if last.IsZero() {
		return time.Time{}
	}
	return AddMonths(last, 1)
}

// MonthStart truncates a time to the start of its calendar month in UTC.
func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// AddMonths shifts a month start by n calendar months.
func AddMonths(t time.Time, n int) time.Time {
	return time.Date(t.Year(), t.Month()+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
}

// MonthsBetween returns the number of whole calendar months from a to b,
// negative when b precedes a. Both inputs are expected to be month starts.
func MonthsBetween(a, b time.Time) int {
	return (b.Year()-a.Year())*12 + int(b.Month()) - int(a.Month())
}
