package forecaster

import (
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

const plotDateFormat = "2006-01"

// LineForecast generates an echarts line chart of one group's history
// followed by its projection with the confidence band.
func LineForecast(title string, gf GroupForecast) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(
			opts.Title{
				Title: title,
			},
		),
	)

	histLen := gf.History.Len()
	x := make([]string, 0, histLen+len(gf.Points))
	actual := make([]opts.LineData, 0, histLen)
	pad := make([]opts.LineData, histLen)

	if gf.History != nil {
		for i, t := range gf.History.T {
			x = append(x, t.Format(plotDateFormat))
			actual = append(actual, opts.LineData{Value: gf.History.Y[i]})
		}
	}

	forecastData := append([]opts.LineData{}, pad...)
	upperData := append([]opts.LineData{}, pad...)
	lowerData := append([]opts.LineData{}, pad...)
	for _, pt := range gf.Points {
		x = append(x, pt.T.Format(plotDateFormat))
		forecastData = append(forecastData, opts.LineData{Value: pt.Value})
		upperData = append(upperData, opts.LineData{Value: pt.Upper})
		lowerData = append(lowerData, opts.LineData{Value: pt.Lower})
	}

	line.SetXAxis(x).
		AddSeries("Actual", actual).
		AddSeries("Forecast", forecastData).
		AddSeries("Upper", upperData).
		AddSeries("Lower", lowerData)
	return line
}

// BarGroupTotals generates a bar chart of the summed projection per group,
// the breakdown view the dashboard shows next to the main forecast.
func BarGroupTotals(title string, groups []GroupForecast) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(
			opts.Title{
				Title: title,
			},
		),
	)

	x := make([]string, 0, len(groups))
	data := make([]opts.BarData, 0, len(groups))
	for _, gf := range groups {
		var total float64
		for _, pt := range gf.Points {
			total += pt.Value
		}
		x = append(x, gf.Group)
		data = append(data, opts.BarData{Value: total})
	}

	bar.SetXAxis(x).AddSeries("Projected", data)
	return bar
}

// PlotHTML renders the result as an html page with the aggregate forecast
// chart and, when grouped, the per-group breakdown.
func (r *Result) PlotHTML(w io.Writer) error {
	page := components.NewPage()
	page.AddCharts(LineForecast(string(r.Kind)+" forecast", r.Overall))
	if len(r.Groups) > 0 {
		page.AddCharts(BarGroupTotals("projected by group", r.Groups))
	}
	return page.Render(w)
}
