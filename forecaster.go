// Package forecaster composes monthly aggregation, trend fitting, seasonal
// adjustment, and projection into the three forecast operations the
// analytics dashboard consumes: operations volume, member performance, and
// resource requirements.
package forecaster

import (
	"fmt"

	"github.com/voluntra/forecaster/aggregate"
	"github.com/voluntra/forecaster/forecast"
	"github.com/voluntra/forecaster/records"
	"github.com/voluntra/forecaster/seasonal"
	"github.com/voluntra/forecaster/stats"
	"github.com/voluntra/forecaster/timedataset"
	"github.com/voluntra/forecaster/trend"
)

// Kind names a forecast family.
type Kind string

const (
	KindOperations  Kind = "operations"
	KindPerformance Kind = "performance"
	KindResources   Kind = "resources"
)

// GroupBy selects the categorical dimension each forecast is independently
// computed per distinct value of.
type GroupBy string

const (
	GroupByNone  GroupBy = ""
	GroupByState GroupBy = "state"
	GroupByType  GroupBy = "type"
)

// ResourceMetric selects which resource column a resource forecast covers.
type ResourceMetric string

const (
	ResourceVolunteers ResourceMetric = "volunteers"
	ResourceBudget     ResourceMetric = "budget"
	ResourceEquipment  ResourceMetric = "equipment"
	ResourceVehicles   ResourceMetric = "vehicles"
)

// ResourceMetrics lists every resource column in a stable order.
var ResourceMetrics = []ResourceMetric{
	ResourceVolunteers,
	ResourceBudget,
	ResourceEquipment,
	ResourceVehicles,
}

// PerformanceMetric selects which assignment column a performance forecast
// covers.
type PerformanceMetric string

const (
	PerformanceScore      PerformanceMetric = "score"
	PerformanceAttendance PerformanceMetric = "attendance"
)

// DefaultTrendThreshold is the relative change beyond which a forecast is
// labeled increasing or decreasing instead of stable.
const DefaultTrendThreshold = 0.05

type Options struct {
	GroupBy GroupBy

	// LookbackMonths bounds the history feeding each fit. Zero takes the
	// default; negative disables the window.
	LookbackMonths int

	TrendThreshold float64
	BandZscore     float64

	MinObs         int
	MaxDegree      int
	RemoveOutliers bool

	// PerWorkday forecasts operations per business day instead of raw
	// monthly totals.
	PerWorkday bool
}

func NewDefaultOptions() *Options {
	return &Options{
		LookbackMonths: aggregate.DefaultLookbackMonths,
		TrendThreshold: DefaultTrendThreshold,
		BandZscore:     forecast.DefaultBandZscore,
		MinObs:         trend.DefaultMinObs,
		MaxDegree:      trend.DefaultMaxDegree,
	}
}

func (o *Options) normalized() *Options {
	out := *o
	if out.LookbackMonths == 0 {
		out.LookbackMonths = aggregate.DefaultLookbackMonths
	} else if out.LookbackMonths < 0 {
		out.LookbackMonths = 0
	}
	if out.TrendThreshold == 0 {
		out.TrendThreshold = DefaultTrendThreshold
	}
	if out.BandZscore == 0 {
		out.BandZscore = forecast.DefaultBandZscore
	}
	if out.MinObs == 0 {
		out.MinObs = trend.DefaultMinObs
	}
	if out.MaxDegree == 0 {
		out.MaxDegree = trend.DefaultMaxDegree
	}
	return &out
}

// ForecastOperations projects monthly operation volume over the horizon,
// overall and per grouping value.
func ForecastOperations(ops []records.Operation, horizon int, opt *Options) (*Result, error) {
	if err := forecast.ValidateHorizon(horizon); err != nil {
		return nil, err
	}
	if opt == nil {
		opt = NewDefaultOptions()
	}
	opt = opt.normalized()

	aggOpt := &aggregate.Options{
		Mode:           aggregate.ModeCount,
		Fill:           aggregate.FillZero,
		LookbackMonths: opt.LookbackMonths,
		PerWorkday:     opt.PerWorkday,
	}
	return buildResult(
		KindOperations, "",
		operationPoints(ops, GroupByNone, ResourceVolunteers),
		operationPoints(ops, opt.GroupBy, ResourceVolunteers),
		aggOpt, forecast.NonNegative(), horizon, opt,
	)
}

// ForecastPerformance projects the monthly mean of the selected assignment
// metric. Assignments that were never scored are excluded from the score
// series.
func ForecastPerformance(asgs []records.Assignment, metric PerformanceMetric, horizon int, opt *Options) (*Result, error) {
	if err := forecast.ValidateHorizon(horizon); err != nil {
		return nil, err
	}
	if opt == nil {
		opt = NewDefaultOptions()
	}
	opt = opt.normalized()

	clamp := forecast.Scale(0.0, 100.0)
	if metric == PerformanceAttendance {
		clamp = forecast.Scale(0.0, 1.0)
	}

	aggOpt := &aggregate.Options{
		Mode:           aggregate.ModeMean,
		Fill:           aggregate.FillCarry,
		LookbackMonths: opt.LookbackMonths,
	}
	res, err := buildResult(
		KindPerformance, string(metric),
		assignmentPoints(asgs, metric, GroupByNone),
		assignmentPoints(asgs, metric, opt.GroupBy),
		aggOpt, clamp, horizon, opt,
	)
	if err != nil {
		return nil, err
	}
	return res, nil
}

// ForecastResources projects the monthly total of one resource column.
func ForecastResources(ops []records.Operation, metric ResourceMetric, horizon int, opt *Options) (*Result, error) {
	if err := forecast.ValidateHorizon(horizon); err != nil {
		return nil, err
	}
	if opt == nil {
		opt = NewDefaultOptions()
	}
	opt = opt.normalized()

	aggOpt := &aggregate.Options{
		Mode:           aggregate.ModeSum,
		Fill:           aggregate.FillZero,
		LookbackMonths: opt.LookbackMonths,
	}
	return buildResult(
		KindResources, string(metric),
		operationPoints(ops, GroupByNone, metric),
		operationPoints(ops, opt.GroupBy, metric),
		aggOpt, forecast.NonNegative(), horizon, opt,
	)
}

// ForecastAllResources runs a resource forecast per metric column.
func ForecastAllResources(ops []records.Operation, horizon int, opt *Options) (map[ResourceMetric]*Result, error) {
	out := make(map[ResourceMetric]*Result, len(ResourceMetrics))
	for _, metric := range ResourceMetrics {
		res, err := ForecastResources(ops, metric, horizon, opt)
		if err != nil {
			return nil, fmt.Errorf("unable to forecast %s requirements, %w", metric, err)
		}
		out[metric] = res
	}
	return out, nil
}

// buildResult runs the per-series pipeline once ungrouped for the aggregate
// result and once per distinct grouping value. Every requested group comes
// back with a result; short series degrade to a flat fallback rather than
// being dropped.
func buildResult(kind Kind, metric string, overallPoints, groupedPoints []aggregate.Point, aggOpt *aggregate.Options, clamp forecast.Range, horizon int, opt *Options) (*Result, error) {
	res := &Result{
		Kind:    kind,
		Metric:  metric,
		Horizon: horizon,
	}

	overall, sum := aggregate.Monthly(overallPoints, aggOpt)
	res.SkippedRecords = sum.Skipped

	gf, err := runSeries(overall[""], "", clamp, horizon, opt)
	if err != nil {
		return nil, err
	}
	res.Overall = gf

	if opt.GroupBy == GroupByNone {
		return res, nil
	}

	grouped, groupSum := aggregate.Monthly(groupedPoints, aggOpt)
	for _, group := range groupSum.Groups {
		gf, err := runSeries(grouped[group], group, clamp, horizon, opt)
		if err != nil {
			return nil, err
		}
		res.Groups = append(res.Groups, gf)
	}
	return res, nil
}

// runSeries fits and projects one series. Insufficient history is captured
// in the group's status with a flat fallback projection, never surfaced as
// an error.
func runSeries(s *timedataset.MonthlySeries, group string, clamp forecast.Range, horizon int, opt *Options) (GroupForecast, error) {
	gf := GroupForecast{
		Group:  group,
		Status: StatusOK,
	}

	projOpt := &forecast.Options{
		BandZscore: opt.BandZscore,
		Clamp:      clamp,
	}

	if s.Len() == 0 {
		// nothing was ever recorded; there is no last period to anchor a
		// fallback projection to
		gf.Status = StatusInsufficientData
		gf.Direction = DirectionStable
		return gf, nil
	}
	gf.History = s

	trendOpt := trend.NewDefaultOptions()
	trendOpt.MinObs = opt.MinObs
	trendOpt.MaxDegree = opt.MaxDegree
	trendOpt.RemoveOutliers = opt.RemoveOutliers

	m, err := trend.Fit(s, trendOpt)
	if err != nil {
		gf.Status = StatusInsufficientData
		_, last := s.Last()
		points, ferr := forecast.Flat(last, stats.ResidualStdDev(s.Y), s.NextPeriod(), horizon, projOpt)
		if ferr != nil {
			return GroupForecast{}, fmt.Errorf("unable to build fallback projection for group %q, %w", group, ferr)
		}
		gf.Points = points
	} else {
		profile := seasonal.NewProfile(s, m)
		points, perr := forecast.Project(m, profile, s.NextPeriod(), horizon, projOpt)
		if perr != nil {
			return GroupForecast{}, fmt.Errorf("unable to project group %q, %w", group, perr)
		}
		gf.Points = points
		gf.R2 = m.R2
		gf.MAE = m.MAE
	}

	gf.Direction, gf.Change = classifyTrend(gf.Points, opt.TrendThreshold)
	return gf, nil
}

func operationPoints(ops []records.Operation, groupBy GroupBy, metric ResourceMetric) []aggregate.Point {
	points := make([]aggregate.Point, 0, len(ops))
	for _, op := range ops {
		var val float64
		switch metric {
		case ResourceBudget:
			val = op.Budget
		case ResourceEquipment:
			val = float64(op.Equipment)
		case ResourceVehicles:
			val = float64(op.Vehicles)
		default:
			val = float64(op.Volunteers)
		}
		points = append(points, aggregate.Point{
			At:    op.StartDate,
			Value: val,
			Group: groupValue(groupBy, op.State, op.Type),
		})
	}
	return points
}

func assignmentPoints(asgs []records.Assignment, metric PerformanceMetric, groupBy GroupBy) []aggregate.Point {
	points := make([]aggregate.Point, 0, len(asgs))
	for _, a := range asgs {
		val := a.Score
		if metric == PerformanceAttendance {
			val = a.Attendance
		} else if a.Score <= 0 {
			// unscored assignment; it carries no performance signal
			continue
		}
		points = append(points, aggregate.Point{
			At:    a.Date,
			Value: val,
			Group: groupValue(groupBy, a.State, a.Type),
		})
	}
	return points
}

func groupValue(groupBy GroupBy, state, typ string) string {
	switch groupBy {
	case GroupByState:
		return state
	case GroupByType:
		return typ
	default:
		return ""
	}
}
