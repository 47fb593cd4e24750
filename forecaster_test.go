package forecaster

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/voluntra/forecaster/forecast"
	"github.com/voluntra/forecaster/records"
	"github.com/voluntra/forecaster/timedataset"
)

var testEnd = time.Date(2024, 12, 15, 0, 0, 0, 0, time.UTC)

// opsWithCounts builds an operation history whose monthly volumes match
// counts exactly, ending at the month of end.
func opsWithCounts(counts []int, end time.Time, state string) []records.Operation {
	months := timedataset.GenerateMonths(len(counts), end)
	var ops []records.Operation
	var id int
	for i, n := range counts {
		for j := 0; j < n; j++ {
			id++
			ops = append(ops, records.Operation{
				ID:         fmt.Sprintf("OPS%06d", id),
				Type:       "Disaster Relief",
				State:      state,
				StartDate:  months[i].Add(time.Duration(j%28) * 24 * time.Hour),
				Outcome:    "Completed",
				Volunteers: 10,
				Budget:     2000.0,
				Equipment:  5,
				Vehicles:   2,
			})
		}
	}
	return ops
}

func TestForecastOperationsIncreasingTrend(t *testing.T) {
	counts := []int{100, 105, 98, 110, 120, 115, 130, 125, 140, 138, 150, 145}
	ops := opsWithCounts(counts, testEnd, "California")

	res, err := ForecastOperations(ops, 3, nil)
	require.Nil(t, err)

	overall := res.Overall
	assert.Equal(t, StatusOK, overall.Status)
	require.Len(t, overall.Points, 3)
	assert.Empty(t, res.Groups)
	assert.Zero(t, res.SkippedRecords)

	assert.Equal(t, DirectionIncreasing, overall.Direction)
	assert.Positive(t, overall.Change)

	// projection continues past the last historical month
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), overall.Points[0].T)

	// every projected month clears the historical maximum
	for i, pt := range overall.Points {
		assert.Greater(t, pt.Value, 150.0, "point %d", i)
	}
	assert.Greater(t, overall.Points[1].Value, overall.Points[0].Value)
	assert.Greater(t, overall.Points[2].Value, overall.Points[1].Value)

	// confidence band strictly wider at month 3 than month 1
	width1 := overall.Points[0].Upper - overall.Points[0].Lower
	width3 := overall.Points[2].Upper - overall.Points[2].Lower
	assert.Greater(t, width3, width1)

	assert.Positive(t, overall.R2)
}

func TestForecastOperationsInsufficientData(t *testing.T) {
	ops := opsWithCounts([]int{10, 14}, testEnd, "Texas")

	res, err := ForecastOperations(ops, 6, nil)
	require.Nil(t, err)

	overall := res.Overall
	assert.Equal(t, StatusInsufficientData, overall.Status)
	require.Len(t, overall.Points, 6)

	// flat projection at the last observed volume
	for _, pt := range overall.Points {
		assert.Equal(t, 14.0, pt.Value)
	}
	assert.Equal(t, DirectionStable, overall.Direction)

	// uncertainty still grows with distance
	for i := 1; i < len(overall.Points); i++ {
		prev := overall.Points[i-1].Upper - overall.Points[i-1].Lower
		curr := overall.Points[i].Upper - overall.Points[i].Lower
		assert.Greater(t, curr, prev)
	}
}

func TestForecastOperationsEmptyDataset(t *testing.T) {
	res, err := ForecastOperations(nil, 6, nil)
	require.Nil(t, err)

	assert.Equal(t, StatusInsufficientData, res.Overall.Status)
	assert.Empty(t, res.Overall.Points)
	assert.Equal(t, DirectionStable, res.Overall.Direction)
}

func TestForecastOperationsInvalidHorizon(t *testing.T) {
	ops := opsWithCounts([]int{5, 6, 7}, testEnd, "Florida")

	for _, horizon := range []int{0, -1, forecast.MaxHorizonMonths + 1} {
		_, err := ForecastOperations(ops, horizon, nil)
		assert.ErrorIs(t, err, forecast.ErrInvalidHorizon, "horizon %d", horizon)
	}

	// empty dataset with an invalid horizon is still a horizon error
	_, err := ForecastOperations(nil, 0, nil)
	assert.ErrorIs(t, err, forecast.ErrInvalidHorizon)
}

func TestForecastOperationsGrouped(t *testing.T) {
	var ops []records.Operation
	ops = append(ops, opsWithCounts([]int{20, 22, 24, 26, 28, 30, 32, 34, 36, 38, 40, 42}, testEnd, "California")...)
	ops = append(ops, opsWithCounts([]int{15, 14, 16, 15, 17, 16}, testEnd, "Texas")...)
	ops = append(ops, opsWithCounts([]int{3, 4}, testEnd, "Washington")...)

	opt := NewDefaultOptions()
	opt.GroupBy = GroupByState
	res, err := ForecastOperations(ops, 4, opt)
	require.Nil(t, err)

	// one result per distinct state plus the aggregate, short histories
	// included
	require.Len(t, res.Groups, 3)
	assert.Equal(t, "California", res.Groups[0].Group)
	assert.Equal(t, "Texas", res.Groups[1].Group)
	assert.Equal(t, "Washington", res.Groups[2].Group)

	assert.Equal(t, StatusOK, res.Overall.Status)
	assert.Equal(t, StatusOK, res.Groups[0].Status)
	assert.Equal(t, DirectionIncreasing, res.Groups[0].Direction)

	wash := res.Groups[2]
	assert.Equal(t, StatusInsufficientData, wash.Status)
	require.Len(t, wash.Points, 4)
	for _, pt := range wash.Points {
		assert.Equal(t, 4.0, pt.Value)
	}

	for _, gf := range append(res.Groups, res.Overall) {
		for _, pt := range gf.Points {
			assert.GreaterOrEqual(t, pt.Lower, 0.0)
			assert.GreaterOrEqual(t, pt.Value, 0.0)
		}
	}
}

func TestForecastOperationsSkipsMalformed(t *testing.T) {
	ops := opsWithCounts([]int{8, 9, 10, 11}, testEnd, "Nevada")
	ops = append(ops, records.Operation{ID: "OPS999999", State: "Nevada"}) // no timestamp

	res, err := ForecastOperations(ops, 3, nil)
	require.Nil(t, err)
	assert.Equal(t, 1, res.SkippedRecords)
	assert.Equal(t, StatusOK, res.Overall.Status)
}

func TestForecastOperationsIdempotent(t *testing.T) {
	ops := records.SimulateOperations(18, testEnd, 99)

	opt := NewDefaultOptions()
	opt.GroupBy = GroupByState
	a, err := ForecastOperations(ops, 6, opt)
	require.Nil(t, err)
	b, err := ForecastOperations(ops, 6, opt)
	require.Nil(t, err)

	assert.Equal(t, a, b)
}

func TestForecastPerformanceScore(t *testing.T) {
	months := timedataset.GenerateMonths(8, testEnd)
	var asgs []records.Assignment
	for i, month := range months {
		for j := 0; j < 5; j++ {
			asgs = append(asgs, records.Assignment{
				MemberID:   fmt.Sprintf("MBR%08d", j+1),
				Type:       "Community Patrol",
				State:      "California",
				Date:       month.Add(time.Duration(j) * 24 * time.Hour),
				Score:      80.0 + 2.0*float64(i),
				Attendance: 0.9,
			})
		}
	}

	res, err := ForecastPerformance(asgs, PerformanceScore, 6, nil)
	require.Nil(t, err)

	overall := res.Overall
	assert.Equal(t, StatusOK, overall.Status)
	require.Len(t, overall.Points, 6)

	// scores stay on their 0-100 scale even though the trend keeps rising
	for _, pt := range overall.Points {
		assert.LessOrEqual(t, pt.Value, 100.0)
		assert.LessOrEqual(t, pt.Upper, 100.0)
		assert.GreaterOrEqual(t, pt.Lower, 0.0)
	}
	assert.Equal(t, 100.0, overall.Points[5].Value)
}

func TestForecastPerformanceIgnoresUnscored(t *testing.T) {
	months := timedataset.GenerateMonths(6, testEnd)
	var scored, withUnscored []records.Assignment
	for i, month := range months {
		a := records.Assignment{
			MemberID:   "MBR00000001",
			Date:       month.Add(12 * time.Hour),
			Score:      70.0 + float64(i),
			Attendance: 0.8,
		}
		scored = append(scored, a)
		withUnscored = append(withUnscored, a, records.Assignment{
			MemberID:   "MBR00000002",
			Date:       month.Add(36 * time.Hour),
			Attendance: 0.5,
		})
	}

	a, err := ForecastPerformance(scored, PerformanceScore, 3, nil)
	require.Nil(t, err)
	b, err := ForecastPerformance(withUnscored, PerformanceScore, 3, nil)
	require.Nil(t, err)
	assert.Equal(t, a.Overall.Points, b.Overall.Points)

	// the unscored assignments still count toward attendance
	att, err := ForecastPerformance(withUnscored, PerformanceAttendance, 3, nil)
	require.Nil(t, err)
	for _, pt := range att.Overall.Points {
		assert.GreaterOrEqual(t, pt.Value, 0.0)
		assert.LessOrEqual(t, pt.Value, 1.0)
	}
}

func TestForecastResources(t *testing.T) {
	ops := records.SimulateOperations(15, testEnd, 7)

	res, err := ForecastResources(ops, ResourceVolunteers, 6, nil)
	require.Nil(t, err)
	assert.Equal(t, KindResources, res.Kind)
	assert.Equal(t, string(ResourceVolunteers), res.Metric)
	assert.Equal(t, StatusOK, res.Overall.Status)
	for _, pt := range res.Overall.Points {
		assert.GreaterOrEqual(t, pt.Value, 0.0)
		assert.GreaterOrEqual(t, pt.Lower, 0.0)
	}

	all, err := ForecastAllResources(ops, 6, nil)
	require.Nil(t, err)
	require.Len(t, all, len(ResourceMetrics))
	for _, metric := range ResourceMetrics {
		require.Contains(t, all, metric)
		assert.Equal(t, string(metric), all[metric].Metric)
		require.Len(t, all[metric].Overall.Points, 6)
	}

	_, err = ForecastAllResources(ops, 0, nil)
	assert.ErrorIs(t, err, forecast.ErrInvalidHorizon)
}

func TestForecastOperationsLookback(t *testing.T) {
	// ancient burst of activity followed by a recent quiet period
	var ops []records.Operation
	ops = append(ops, opsWithCounts([]int{500, 500, 500}, testEnd.AddDate(-10, 0, 0), "California")...)
	ops = append(ops, opsWithCounts([]int{10, 11, 12, 13, 14, 15}, testEnd, "California")...)

	res, err := ForecastOperations(ops, 3, nil)
	require.Nil(t, err)

	// the default lookback drops the decade-old records entirely
	assert.Equal(t, StatusOK, res.Overall.Status)
	require.NotNil(t, res.Overall.History)
	assert.Equal(t, 6, res.Overall.History.Len())
	for _, pt := range res.Overall.Points {
		assert.Less(t, pt.Value, 100.0)
	}
}

func TestForecastOperationsPerWorkday(t *testing.T) {
	ops := opsWithCounts([]int{40, 44, 42, 46, 48, 44}, testEnd, "California")

	opt := NewDefaultOptions()
	opt.PerWorkday = true
	res, err := ForecastOperations(ops, 3, opt)
	require.Nil(t, err)

	assert.Equal(t, StatusOK, res.Overall.Status)
	// ~20 workdays a month turns volumes in the 40s into low single digits
	for _, pt := range res.Overall.Points {
		assert.Greater(t, pt.Value, 0.0)
		assert.Less(t, pt.Value, 10.0)
	}
}
