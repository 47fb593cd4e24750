package records

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/voluntra/forecaster/timedataset"
)

var (
	simStates = []string{"California", "Texas", "Florida", "Washington", "New York"}
	simTypes  = []string{"Disaster Relief", "Community Patrol", "Event Support", "Training Exercise", "Search and Rescue"}
)

// SimulateOperations generates a deterministic operation history spanning the
// given number of months ending at end. Volume trends upward with a mild
// within-year seasonal swing so fitted forecasts have structure to find.
func SimulateOperations(months int, end time.Time, seed uint64) []Operation {
	r := rand.New(rand.NewPCG(seed, seed>>1))
	last := timedataset.MonthStart(end)

	var ops []Operation
	var id int
	for i := 0; i < months; i++ {
		month := timedataset.AddMonths(last, i-months+1)
		base := 20.0 + 0.8*float64(i)
		seasonal := 5.0 * seasonalWeight(month.Month())
		n := int(base + seasonal + r.Float64()*4.0)
		for j := 0; j < n; j++ {
			id++
			ops = append(ops, Operation{
				ID:         fmt.Sprintf("OPS%06d", id),
				Type:       simTypes[r.IntN(len(simTypes))],
				State:      simStates[r.IntN(len(simStates))],
				StartDate:  month.Add(time.Duration(r.IntN(28*24)) * time.Hour),
				Outcome:    "Completed",
				Volunteers: 10 + r.IntN(40),
				Budget:     1000.0 + r.Float64()*49000.0,
				Equipment:  5 + r.IntN(45),
				Vehicles:   1 + r.IntN(9),
			})
		}
	}
	return ops
}

// SimulateAssignments generates a deterministic assignment history with a
// slowly improving score trend. Roughly one in ten assignments is left
// unscored (score 0).
func SimulateAssignments(months int, end time.Time, seed uint64) []Assignment {
	r := rand.New(rand.NewPCG(seed, seed>>1))
	last := timedataset.MonthStart(end)

	var asgs []Assignment
	for i := 0; i < months; i++ {
		month := timedataset.AddMonths(last, i-months+1)
		for j := 0; j < 30; j++ {
			score := 60.0 + 0.5*float64(i) + r.NormFloat64()*8.0
			if score < 0 {
				score = 0
			}
			if score > 100 {
				score = 100
			}
			if r.IntN(10) == 0 {
				score = 0
			}
			asgs = append(asgs, Assignment{
				MemberID:   fmt.Sprintf("MBR%08d", r.IntN(500)+1),
				Type:       simTypes[r.IntN(len(simTypes))],
				State:      simStates[r.IntN(len(simStates))],
				Date:       month.Add(time.Duration(r.IntN(28*24)) * time.Hour),
				Score:      score,
				Attendance: 0.7 + r.Float64()*0.3,
				Duration:   2.0 + r.Float64()*10.0,
			})
		}
	}
	return asgs
}

func seasonalWeight(m time.Month) float64 {
	// crude mid-year bump mirroring the organization's activity pattern
	switch m {
	case time.June, time.July, time.August:
		return 1.0
	case time.December, time.January, time.February:
		return -1.0
	default:
		return 0.0
	}
}
