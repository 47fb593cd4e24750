// Package aggregate buckets raw record points into regular monthly series,
// one per grouping value, for the downstream trend fit.
package aggregate

import (
	"math"
	"sort"
	"time"

	"github.com/voluntra/forecaster/timedataset"
)

// DefaultLookbackMonths bounds how much history feeds a fit. Zero disables
// the window.
const DefaultLookbackMonths = 36

// Mode selects how records landing in the same bucket combine.
type Mode int

const (
	ModeCount Mode = iota
	ModeSum
	ModeMean
)

// Fill selects how buckets with no matching records are populated.
type Fill int

const (
	// FillZero writes zero into empty buckets, appropriate for count and sum
	// series where absence of records means nothing happened.
	FillZero Fill = iota
	// FillCarry repeats the most recent observed value, appropriate for mean
	// series where zero would be a fabricated observation.
	FillCarry
)

// Point is one record projected down to the fields aggregation needs: when it
// happened, the value it contributes, and the grouping value it belongs to.
type Point struct {
	At    time.Time
	Value float64
	Group string
}

type Options struct {
	Mode           Mode
	Fill           Fill
	LookbackMonths int
	// PerWorkday divides each bucket by its business-day count, turning
	// totals into per-workday rates.
	PerWorkday bool
}

func NewDefaultOptions() *Options {
	return &Options{
		Mode:           ModeCount,
		Fill:           FillZero,
		LookbackMonths: DefaultLookbackMonths,
	}
}

// Summary reports what aggregation did with its input for observability.
type Summary struct {
	Total    int      `json:"total_records"`
	Skipped  int      `json:"skipped_records"`
	Excluded int      `json:"excluded_records"`
	Groups   []string `json:"groups"`
}

type bucket struct {
	sum   float64
	count int
}

// Monthly groups points into calendar-month buckets per distinct group value.
// Malformed points (zero timestamp, NaN or infinite value) are skipped and
// counted, never fatal. The lookback window is anchored at the newest valid
// point so identical inputs always produce identical series. Each returned
// series is a contiguous grid from its group's first to last populated month.
func Monthly(points []Point, opt *Options) (map[string]*timedataset.MonthlySeries, Summary) {
	if opt == nil {
		opt = NewDefaultOptions()
	}

	sum := Summary{Total: len(points)}

	valid := make([]Point, 0, len(points))
	var anchor time.Time
	for _, p := range points {
		if p.At.IsZero() || math.IsNaN(p.Value) || math.IsInf(p.Value, 0) {
			sum.Skipped++
			continue
		}
		valid = append(valid, p)
		if p.At.After(anchor) {
			anchor = p.At
		}
	}
	if len(valid) == 0 {
		return map[string]*timedataset.MonthlySeries{}, sum
	}

	var cutoff time.Time
	if opt.LookbackMonths > 0 {
		cutoff = timedataset.AddMonths(timedataset.MonthStart(anchor), -(opt.LookbackMonths - 1))
	}

	groups := make(map[string]map[time.Time]*bucket)
	for _, p := range valid {
		month := timedataset.MonthStart(p.At)
		if !cutoff.IsZero() && month.Before(cutoff) {
			sum.Excluded++
			continue
		}
		buckets, exists := groups[p.Group]
		if !exists {
			buckets = make(map[time.Time]*bucket)
			groups[p.Group] = buckets
		}
		b, exists := buckets[month]
		if !exists {
			b = &bucket{}
			buckets[month] = b
		}
		b.sum += p.Value
		b.count++
	}

	out := make(map[string]*timedataset.MonthlySeries, len(groups))
	for group, buckets := range groups {
		out[group] = gridSeries(buckets, opt)
		sum.Groups = append(sum.Groups, group)
	}
	sort.Strings(sum.Groups)
	return out, sum
}

func gridSeries(buckets map[time.Time]*bucket, opt *Options) *timedataset.MonthlySeries {
	first, last := monthSpan(buckets)
	n := timedataset.MonthsBetween(first, last) + 1

	t := make([]time.Time, 0, n)
	y := make([]float64, 0, n)
	var populated int
	var carry float64
	for i := 0; i < n; i++ {
		month := timedataset.AddMonths(first, i)
		t = append(t, month)

		b, exists := buckets[month]
		if !exists {
			y = append(y, carry)
			continue
		}
		populated++
		var val float64
		switch opt.Mode {
		case ModeSum:
			val = b.sum
		case ModeMean:
			val = b.sum / float64(b.count)
		default:
			val = float64(b.count)
		}
		if opt.PerWorkday {
			val /= float64(Workdays(month))
		}
		y = append(y, val)
		if opt.Fill == FillCarry {
			carry = val
		} else {
			carry = 0.0
		}
	}

	return &timedataset.MonthlySeries{T: t, Y: y, Populated: populated}
}

func monthSpan(buckets map[time.Time]*bucket) (time.Time, time.Time) {
	var first, last time.Time
	for month := range buckets {
		if first.IsZero() || month.Before(first) {
			first = month
		}
		if month.After(last) {
			last = month
		}
	}
	return first, last
}
