// Package trend fits a low-degree polynomial to a monthly series, producing
// the continuous trend curve the projector extrapolates.
package trend

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/voluntra/forecaster/models"
	"github.com/voluntra/forecaster/stats"
	"github.com/voluntra/forecaster/timedataset"
)

var ErrInsufficientData = errors.New("insufficient historical buckets for trend fit")

const (
	// DefaultMinObs is the fewest populated buckets a fit will accept.
	DefaultMinObs = 3
	// MaxPolyDegree caps the polynomial degree regardless of history length.
	MaxPolyDegree = 3
	// DefaultMaxDegree is quadratic: a cubic fit on barely a year of history
	// tends to bend against the observed slope once extrapolated.
	DefaultMaxDegree = 2
)

type Options struct {
	MinObs    int
	MaxDegree int

	// RemoveOutliers drops buckets whose fit residuals sit outside the
	// percentile fence below and refits once without them.
	RemoveOutliers     bool
	OutlierLowerPerc   float64
	OutlierUpperPerc   float64
	OutlierTukeyFactor float64
}

func NewDefaultOptions() *Options {
	return &Options{
		MinObs:             DefaultMinObs,
		MaxDegree:          DefaultMaxDegree,
		OutlierLowerPerc:   0.1,
		OutlierUpperPerc:   0.9,
		OutlierTukeyFactor: 1.0,
	}
}

// Model is a fitted polynomial trend over bucket indexes 0..Obs-1. Immutable
// once returned; Eval extrapolates beyond the fit domain.
type Model struct {
	Intercept float64   `json:"intercept"`
	Coef      []float64 `json:"coefficients"`
	Degree    int       `json:"degree"`
	Obs       int       `json:"observations"`

	ResidualStd float64 `json:"residual_stddev"`
	R2          float64 `json:"r2_score"`
	MAE         float64 `json:"mae"`
}

// Fit regresses the series values on their bucket index with a polynomial
// basis. The degree shrinks with history length to avoid chasing noise on
// short series. Returns ErrInsufficientData when fewer than MinObs buckets
// are populated; callers fall back to a flat projection.
func Fit(s *timedataset.MonthlySeries, opt *Options) (*Model, error) {
	if opt == nil {
		opt = NewDefaultOptions()
	}
	minObs := opt.MinObs
	if minObs < DefaultMinObs {
		minObs = DefaultMinObs
	}
	if s.Len() == 0 || s.Populated < minObs {
		return nil, fmt.Errorf("%d populated buckets with a minimum of %d, %w", s.Populated, minObs, ErrInsufficientData)
	}

	degree := degreeFor(s.Populated, opt.MaxDegree)

	idx := make([]float64, s.Len())
	for i := range idx {
		idx[i] = float64(i)
	}
	y := append([]float64(nil), s.Y...)

	model, err := fitPoly(idx, y, degree)
	if err != nil {
		return nil, err
	}

	if opt.RemoveOutliers {
		residuals := residualsOf(model, idx, y)
		drop := stats.DetectOutliers(residuals, opt.OutlierLowerPerc, opt.OutlierUpperPerc, opt.OutlierTukeyFactor)
		if len(drop) > 0 && len(idx)-len(drop) >= minObs {
			idx, y = dropIndexes(idx, y, drop)
			if model, err = fitPoly(idx, y, degree); err != nil {
				return nil, err
			}
		}
	}

	residuals := residualsOf(model, idx, y)
	m := &Model{
		Intercept:   model.Intercept(),
		Coef:        model.Coef(),
		Degree:      degree,
		Obs:         s.Len(),
		ResidualStd: stats.ResidualStdDev(residuals),
		MAE:         stats.MeanAbsError(residuals),
	}
	r2, err := model.Score(designMatrix(idx, degree), mat.NewDense(len(y), 1, y))
	if err != nil {
		return nil, err
	}
	m.R2 = r2
	return m, nil
}

// Eval returns the trend value at a fractional bucket index.
func (m *Model) Eval(idx float64) float64 {
	v := 0.0
	for i := len(m.Coef) - 1; i >= 0; i-- {
		v = (v + m.Coef[i]) * idx
	}
	return v + m.Intercept
}

// degreeFor scales the polynomial degree down as the populated history
// shrinks: linear below 6 buckets, quadratic below 12, cubic beyond.
func degreeFor(populated, maxDegree int) int {
	degree := 1
	switch {
	case populated >= 12:
		degree = 3
	case populated >= 6:
		degree = 2
	}
	if maxDegree > 0 && degree > maxDegree {
		degree = maxDegree
	}
	return degree
}

func fitPoly(idx, y []float64, degree int) (*models.OLSRegression, error) {
	model := models.NewOLSRegression(nil)
	if err := model.Fit(designMatrix(idx, degree), mat.NewDense(len(y), 1, y)); err != nil {
		return nil, fmt.Errorf("unable to fit polynomial of degree %d, %w", degree, err)
	}
	return model, nil
}

// designMatrix builds the polynomial basis [x, x^2, ..., x^degree]; the
// intercept column is the regression's concern.
func designMatrix(idx []float64, degree int) *mat.Dense {
	x := mat.NewDense(len(idx), degree, nil)
	for i, v := range idx {
		p := 1.0
		for j := 0; j < degree; j++ {
			p *= v
			x.Set(i, j, p)
		}
	}
	return x
}

func residualsOf(model *models.OLSRegression, idx, y []float64) []float64 {
	coef := model.Coef()
	residuals := make([]float64, len(y))
	for i := range y {
		pred := model.Intercept()
		p := 1.0
		for _, c := range coef {
			p *= idx[i]
			pred += c * p
		}
		residuals[i] = y[i] - pred
	}
	return residuals
}

func dropIndexes(idx, y []float64, drop []int) ([]float64, []float64) {
	dropSet := make(map[int]struct{}, len(drop))
	for _, d := range drop {
		dropSet[d] = struct{}{}
	}
	outIdx := make([]float64, 0, len(idx)-len(drop))
	outY := make([]float64, 0, len(y)-len(drop))
	for i := range idx {
		if _, exists := dropSet[i]; exists {
			continue
		}
		outIdx = append(outIdx, idx[i])
		outY = append(outY, y[i])
	}
	return outIdx, outY
}
