package forecaster

import (
	"fmt"
	"os"
	"time"

	"github.com/voluntra/forecaster/records"
)

func ExampleForecastOperations() {
	end := time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)
	ops := records.SimulateOperations(24, end, 42)

	res, err := ForecastOperations(ops, 6, nil)
	if err != nil {
		fmt.Println(err)
		return
	}

	fmt.Println(res.Overall.Status, res.Overall.Direction, len(res.Overall.Points))
	// Output: ok increasing 6
}

func ExampleResult_TablePrint() {
	end := time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)
	ops := records.SimulateOperations(18, end, 7)

	opt := NewDefaultOptions()
	opt.GroupBy = GroupByType
	res, err := ForecastOperations(ops, 3, opt)
	if err != nil {
		fmt.Println(err)
		return
	}

	if err := res.TablePrint(os.Stdout); err != nil {
		fmt.Println(err)
	}
}
