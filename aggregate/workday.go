package aggregate

import (
	"time"

	"github.com/rickar/cal/v2"
	"github.com/rickar/cal/v2/us"
	"github.com/voluntra/forecaster/timedataset"
)

var busCal = newBusinessCalendar()

func newBusinessCalendar() *cal.BusinessCalendar {
	c := cal.NewBusinessCalendar()
	c.AddHoliday(us.Holidays...)
	return c
}

// Workdays returns the number of business days in the calendar month
// containing t, excluding weekends and observed US holidays.
func Workdays(t time.Time) int {
	start := timedataset.MonthStart(t)
	end := timedataset.AddMonths(start, 1)

	var n int
	for d := start; d.Before(end); d = d.AddDate(0, 0, 1) {
		if busCal.IsWorkday(d) {
			n++
		}
	}
	return n
}
