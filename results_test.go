package forecaster

import (
	"bytes"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/voluntra/forecaster/forecast"
	"github.com/voluntra/forecaster/records"
)

func forecastPoints(values ...float64) []forecast.Point {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	points := make([]forecast.Point, 0, len(values))
	for i, v := range values {
		points = append(points, forecast.Point{
			T:     start.AddDate(0, i, 0),
			Value: v,
			Lower: v - 1,
			Upper: v + 1,
		})
	}
	return points
}

func TestClassifyTrend(t *testing.T) {
	testData := map[string]struct {
		points    []forecast.Point
		direction Direction
	}{
		"no points":     {direction: DirectionStable},
		"increasing":    {points: forecastPoints(100, 105, 112), direction: DirectionIncreasing},
		"decreasing":    {points: forecastPoints(100, 95, 88), direction: DirectionDecreasing},
		"flat":          {points: forecastPoints(100, 101, 102), direction: DirectionStable},
		"zero to zero":  {points: forecastPoints(0, 0, 0), direction: DirectionStable},
		"off the floor": {points: forecastPoints(0, 2, 5), direction: DirectionIncreasing},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			direction, change := classifyTrend(td.points, DefaultTrendThreshold)
			assert.Equal(t, td.direction, direction)
			switch td.direction {
			case DirectionIncreasing:
				assert.Positive(t, change)
			case DirectionDecreasing:
				assert.Negative(t, change)
			}
		})
	}
}

func TestResultWriteJSON(t *testing.T) {
	ops := opsWithCounts([]int{10, 12, 14, 16, 18, 20}, testEnd, "California")
	res, err := ForecastOperations(ops, 3, nil)
	require.Nil(t, err)

	var buf bytes.Buffer
	require.Nil(t, res.WriteJSON(&buf))

	var decoded Result
	require.Nil(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, KindOperations, decoded.Kind)
	assert.Equal(t, res.Horizon, decoded.Horizon)
	require.Len(t, decoded.Overall.Points, 3)
	assert.InDelta(t, res.Overall.Points[0].Value, decoded.Overall.Points[0].Value, 1e-9)
}

func TestResultTablePrint(t *testing.T) {
	var ops []records.Operation
	ops = append(ops, opsWithCounts([]int{10, 12, 14, 16}, testEnd, "California")...)
	ops = append(ops, opsWithCounts([]int{5, 6}, testEnd, "Texas")...)

	opt := NewDefaultOptions()
	opt.GroupBy = GroupByState
	res, err := ForecastOperations(ops, 3, opt)
	require.Nil(t, err)

	var buf bytes.Buffer
	require.Nil(t, res.TablePrint(&buf))

	out := buf.String()
	assert.Contains(t, out, "operations forecast")
	assert.Contains(t, out, "overall")
	assert.Contains(t, out, "California")
	assert.Contains(t, out, "Texas")
	assert.Contains(t, out, string(StatusInsufficientData))
}
