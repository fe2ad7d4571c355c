package planner

// MealSlot names a meal of the day.
type MealSlot string

const (
	Breakfast MealSlot = "Breakfast"
	Lunch     MealSlot = "Lunch"
	Snack     MealSlot = "Snack"
	Dinner    MealSlot = "Dinner"
)

// Slots lists the meal slots in the order they are filled.
var Slots = []MealSlot{Breakfast, Lunch, Snack, Dinner}

// MealPlan maps each slot to the foods served at it, with per-slot quantities.
type MealPlan map[MealSlot][]SelectedFood

// Allocate spreads the selected foods over the four meal slots.
//
// Each slot takes up to max(1, n/4) foods: first those on its affinity list,
// then the next foods in selection order. The fill cursor is shared by all
// slots, so a food skipped for one slot is not offered to the next. Every
// placement carries a quarter of the food's daily quantity and cost, whatever
// the number of slots it lands in. Slots left empty get the first selected food.
func Allocate(selected []SelectedFood, affinity map[MealSlot][]string) MealPlan {
	plan := make(MealPlan, len(Slots))
	for _, slot := range Slots {
		plan[slot] = []SelectedFood{}
	}
	if len(selected) == 0 {
		return plan
	}

	perMeal := max(1, len(selected)/len(Slots))
	cursor := 0

	for _, slot := range Slots {
		typical := make(map[string]struct{}, len(affinity[slot]))
		for _, name := range affinity[slot] {
			typical[name] = struct{}{}
		}

		placed := make(map[string]struct{}, perMeal)
		for _, food := range selected {
			if len(plan[slot]) >= perMeal {
				break
			}
			if _, ok := typical[food.Name]; ok {
				plan[slot] = append(plan[slot], quarter(food))
				placed[food.Name] = struct{}{}
			}
		}

		for len(plan[slot]) < perMeal && cursor < len(selected) {
			food := selected[cursor]
			if _, dup := placed[food.Name]; !dup {
				plan[slot] = append(plan[slot], quarter(food))
				placed[food.Name] = struct{}{}
			}
			cursor++
		}
	}

	for _, slot := range Slots {
		if len(plan[slot]) == 0 {
			plan[slot] = append(plan[slot], quarter(selected[0]))
		}
	}
	return plan
}

// quarter returns a copy of f with quantity and cost split across four meals.
// Calories and protein keep their daily values.
func quarter(f SelectedFood) SelectedFood {
	f.Quantity = round(f.Quantity/4, 1)
	f.Cost = round(f.Cost/4, 2)
	return f
}
