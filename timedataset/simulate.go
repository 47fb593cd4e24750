package timedataset

import (
	"math"
	"math/rand/v2"
	"time"

	"gonum.org/v1/gonum/floats"
)

// GenerateMonths produces n contiguous month starts ending at the month
// containing end.
func GenerateMonths(n int, end time.Time) []time.Time {
	last := MonthStart(end)
	t := make([]time.Time, 0, n)
	for i := n - 1; i >= 0; i-- {
		t = append(t, AddMonths(last, -i))
	}
	return t
}

type Series []float64

func (s Series) Add(src Series) Series {
	floats.Add(s, src)
	return s
}

func GenerateConstY(n int, val float64) Series {
	y := make([]float64, n)
	floats.AddConst(val, y)
	return Series(y)
}

// GenerateLinearY produces base + slope*i over n months.
func GenerateLinearY(n int, base, slope float64) Series {
	y := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		y = append(y, base+slope*float64(i))
	}
	return Series(y)
}

// GenerateSeasonalY produces a within-year sinusoid peaking mid-year with the
// given amplitude.
func GenerateSeasonalY(t []time.Time, amp float64) Series {
	y := make([]float64, 0, len(t))
	for _, ts := range t {
		phase := 2.0 * math.Pi * float64(int(ts.Month())-1) / 12.0
		y = append(y, amp*math.Sin(phase))
	}
	return Series(y)
}

// GenerateNoise produces seeded gaussian noise so simulated series are
// reproducible across runs.
func GenerateNoise(n int, scale float64, seed uint64) Series {
	r := rand.New(rand.NewPCG(seed, seed>>1))
	y := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		y = append(y, r.NormFloat64()*scale)
	}
	return Series(y)
}
