// Package stats provides residual statistics shared by the fitting stages.
package stats

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// DetectOutliers flags indexes whose values fall outside the inner percentile
// range widened by the Tukey factor.
func DetectOutliers(y []float64, lowerPerc, upperPerc, tukeyFactor float64) []int {
	if len(y) == 0 {
		return nil
	}
	lowerPerc = math.Max(lowerPerc, 0.0)
	upperPerc = math.Min(upperPerc, 1.0)
	tukeyFactor = math.Max(tukeyFactor, 0.0)

	yCopy := make([]float64, len(y))
	copy(yCopy, y)
	sort.Float64s(yCopy)

	lowerIdx := int(math.Floor(float64(len(yCopy)-1) * lowerPerc))
	upperIdx := int(math.Ceil(float64(len(yCopy)-1) * upperPerc))

	lower := yCopy[lowerIdx]
	upper := yCopy[upperIdx]
	innerRange := upper - lower
	lower -= innerRange * tukeyFactor
	upper += innerRange * tukeyFactor

	var outlierIdx []int
	for i := 0; i < len(y); i++ {
		if y[i] > upper || y[i] < lower {
			outlierIdx = append(outlierIdx, i)
		}
	}
	return outlierIdx
}

// ResidualStdDev returns the sample standard deviation of a residual series,
// zero when there are not enough samples to estimate spread.
func ResidualStdDev(residuals []float64) float64 {
	if len(residuals) < 2 {
		return 0.0
	}
	return stat.StdDev(residuals, nil)
}

// MeanAbsError returns the mean absolute value of a residual series.
func MeanAbsError(residuals []float64) float64 {
	if len(residuals) == 0 {
		return 0.0
	}
	var sum float64
	for _, r := range residuals {
		sum += math.Abs(r)
	}
	return sum / float64(len(residuals))
}
