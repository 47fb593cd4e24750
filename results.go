package forecaster

import (
	"fmt"
	"io"
	"math"
	"text/tabwriter"

	"github.com/goccy/go-json"

	"github.com/voluntra/forecaster/forecast"
	"github.com/voluntra/forecaster/timedataset"
)

// Status flags whether a group's projection came from a fitted model or the
// flat insufficient-data fallback.
type Status string

const (
	StatusOK               Status = "ok"
	StatusInsufficientData Status = "insufficient_data"
)

// Direction summarizes where a forecast is heading over its horizon.
type Direction string

const (
	DirectionIncreasing Direction = "increasing"
	DirectionDecreasing Direction = "decreasing"
	DirectionStable     Direction = "stable"
)

// GroupForecast is the projection for one grouping value, or for the whole
// dataset when Group is empty.
type GroupForecast struct {
	Group     string           `json:"group,omitempty"`
	Status    Status           `json:"status"`
	Points    []forecast.Point `json:"points,omitempty"`
	Direction Direction        `json:"direction"`
	Change    float64          `json:"relative_change"`

	// fit quality over the historical window; zero for fallback projections
	R2  float64 `json:"r2_score"`
	MAE float64 `json:"mae"`

	History *timedataset.MonthlySeries `json:"history,omitempty"`
}

// Result is the full output of one forecast operation: the ungrouped
// aggregate projection plus one projection per grouping value.
type Result struct {
	Kind           Kind            `json:"kind"`
	Metric         string          `json:"metric,omitempty"`
	Horizon        int             `json:"horizon_months"`
	Overall        GroupForecast   `json:"overall"`
	Groups         []GroupForecast `json:"groups,omitempty"`
	SkippedRecords int             `json:"skipped_records"`
}

// classifyTrend compares the first and last projected values. The threshold
// is a relative change; movements inside it are called stable.
func classifyTrend(points []forecast.Point, threshold float64) (Direction, float64) {
	if len(points) == 0 {
		return DirectionStable, 0.0
	}

	first := points[0].Value
	last := points[len(points)-1].Value
	delta := last - first

	var change float64
	switch {
	case math.Abs(first) > 1e-9:
		change = delta / math.Abs(first)
	case math.Abs(delta) > 1e-9:
		// from zero any movement is a full swing
		change = math.Copysign(1.0, delta)
	}

	switch {
	case change > threshold:
		return DirectionIncreasing, change
	case change < -threshold:
		return DirectionDecreasing, change
	default:
		return DirectionStable, change
	}
}

// WriteJSON encodes the result for the presentation layer.
func (r *Result) WriteJSON(w io.Writer) error {
	return json.NewEncoder(w).Encode(r)
}

// TablePrint writes a per-group summary of the result.
func (r *Result) TablePrint(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	if _, err := fmt.Fprintf(tw, "%s forecast\thorizon: %d months\tskipped records: %d\n", r.Kind, r.Horizon, r.SkippedRecords); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(tw, "group\tstatus\tdirection\tchange\tfirst\tlast"); err != nil {
		return err
	}
	if err := printGroupRow(tw, "overall", r.Overall); err != nil {
		return err
	}
	for _, gf := range r.Groups {
		if err := printGroupRow(tw, gf.Group, gf); err != nil {
			return err
		}
	}
	return tw.Flush()
}

func printGroupRow(w io.Writer, name string, gf GroupForecast) error {
	first, last := math.NaN(), math.NaN()
	if len(gf.Points) > 0 {
		first = gf.Points[0].Value
		last = gf.Points[len(gf.Points)-1].Value
	}
	_, err := fmt.Fprintf(w, "%s\t%s\t%s\t%+.1f%%\t%.1f\t%.1f\n",
		name, gf.Status, gf.Direction, gf.Change*100.0, first, last)
	return err
}
