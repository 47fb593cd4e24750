package models

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

type OLSOptions struct {
	FitIntercept bool
}

func NewDefaultOLSOptions() *OLSOptions {
	return &OLSOptions{
		FitIntercept: true,
	}
}

// OLSRegression computes ordinary least squares through QR factorization of
// the design matrix.
type OLSRegression struct {
	opt       *OLSOptions
	coef      []float64
	intercept float64
	trained   bool
}

func NewOLSRegression(opt *OLSOptions) *OLSRegression {
	if opt == nil {
		opt = NewDefaultOLSOptions()
	}
	return &OLSRegression{
		opt: opt,
	}
}

func (o *OLSRegression) Fit(x, y mat.Matrix) error {
	if o.opt == nil {
		return ErrNoOptions
	}
	if x == nil {
		return ErrNoTrainingMatrix
	}
	if y == nil {
		return ErrNoTargetMatrix
	}
	m, _ := x.Dims()
	ym, yn := y.Dims()
	if ym != m || yn != 1 {
		return fmt.Errorf("training data has %d rows and target is %dx%d, %w", m, ym, yn, ErrTargetLenMismatch)
	}

	if o.opt.FitIntercept {
		x = withIntercept(x)
	}

	var qr mat.QR
	qr.Factorize(x)

	var beta mat.Dense
	if err := qr.SolveTo(&beta, false, y); err != nil {
		return fmt.Errorf("unable to solve least squares system, %w", err)
	}

	_, n := x.Dims()
	c := make([]float64, n)
	for i := range c {
		c[i] = beta.At(i, 0)
	}

	if o.opt.FitIntercept {
		o.intercept = c[0]
		o.coef = c[1:]
	} else {
		o.intercept = 0.0
		o.coef = c
	}
	o.trained = true

	return nil
}

func (o *OLSRegression) Predict(x mat.Matrix) ([]float64, error) {
	if o.opt == nil {
		return nil, ErrNoOptions
	}
	if x == nil {
		return nil, ErrNoDesignMatrix
	}
	if !o.trained {
		return nil, ErrUntrainedModel
	}

	m, n := x.Dims()
	if n != len(o.coef) {
		return nil, fmt.Errorf("got %d features in design matrix, but expected %d, %w", n, len(o.coef), ErrFeatureLenMismatch)
	}

	coefVec := mat.NewVecDense(len(o.coef), o.Coef())
	res := mat.NewVecDense(m, nil)
	res.MulVec(x, coefVec)

	out := res.RawVector().Data
	floats.AddConst(o.intercept, out)
	return out, nil
}

// Score returns the coefficient of determination of the fit against the
// provided observations.
func (o *OLSRegression) Score(x, y mat.Matrix) (float64, error) {
	if x == nil {
		return 0.0, ErrNoDesignMatrix
	}
	if y == nil {
		return 0.0, ErrNoTargetMatrix
	}

	m, _ := x.Dims()
	ym, _ := y.Dims()
	if m != ym {
		return 0.0, fmt.Errorf("design matrix has %d rows and target has %d rows, %w", m, ym, ErrTargetLenMismatch)
	}

	predicted, err := o.Predict(x)
	if err != nil {
		return 0.0, err
	}

	observed := mat.Col(nil, 0, y)
	return stat.RSquaredFrom(predicted, observed, nil), nil
}

func (o *OLSRegression) Intercept() float64 {
	return o.intercept
}

func (o *OLSRegression) Coef() []float64 {
	c := make([]float64, len(o.coef))
	copy(c, o.coef)
	return c
}

func withIntercept(x mat.Matrix) *mat.Dense {
	m, n := x.Dims()
	out := mat.NewDense(m, n+1, nil)
	for i := 0; i < m; i++ {
		out.Set(i, 0, 1.0)
		for j := 0; j < n; j++ {
			out.Set(i, j+1, x.At(i, j))
		}
	}
	return out
}
