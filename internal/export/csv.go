package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"diet-planner/internal/planner"
)

// Header is the column row of an exported meal plan.
var Header = []string{"Meal", "Food", "Quantity (g)", "Cost (₹)"}

// WriteCSV writes a successful report as one row per meal item, followed by
// the daily totals.
func WriteCSV(w io.Writer, report planner.Report) error {
	if report.Status != planner.StatusSuccess {
		return fmt.Errorf("cannot export failed plan: %s", report.Message)
	}

	cw := csv.NewWriter(w)
	rows := [][]string{{"Meal Plan Export"}, Header}
	for _, slot := range planner.Slots {
		for _, f := range report.MealPlan[slot] {
			rows = append(rows, []string{string(slot), f.Name, formatFloat(f.Quantity, 1), formatFloat(f.Cost, 2)})
		}
	}

	rows = append(rows, []string{})
	rows = append(rows, []string{"Total", "", "", formatFloat(report.TotalCost, 2)})
	if s := report.NutritionSummary; s != nil {
		rows = append(rows,
			[]string{"Calories", formatFloat(s.Calories, 1)},
			[]string{"Protein (g)", formatFloat(s.Protein, 1)},
			[]string{"Fat (g)", formatFloat(s.Fat, 1)},
			[]string{"Carbs (g)", formatFloat(s.Carbs, 1)},
			[]string{"Fiber (g)", formatFloat(s.Fiber, 1)},
			[]string{"Iron (mg)", formatFloat(s.Iron, 1)},
		)
	}

	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}
	return nil
}

func formatFloat(v float64, places int) string {
	return strconv.FormatFloat(v, 'f', places, 64)
}
