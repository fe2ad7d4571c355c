package planner

import (
	"testing"
)

func names(foods []SelectedFood) []string {
	out := make([]string, len(foods))
	for i, f := range foods {
		out[i] = f.Name
	}
	return out
}

func food(name string) SelectedFood {
	return SelectedFood{Name: name, Quantity: 100, Cost: 10, Calories: 400, Protein: 20}
}

func TestAllocate(t *testing.T) {
	affinity := testRules(t).Affinity

	tests := []struct {
		name     string
		selected []SelectedFood
		want     map[MealSlot][]string
	}{
		{
			name:     "AffinityFirst",
			selected: []SelectedFood{food("Soya Chunks"), food("Rice"), food("Dal"), food("Peanut"), food("Milk")},
			want: map[MealSlot][]string{
				Breakfast: {"Milk"},
				Lunch:     {"Rice"},
				Snack:     {"Peanut"},
				Dinner:    {"Rice"},
			},
		},
		{
			name:     "FillInSelectionOrder",
			selected: []SelectedFood{food("A"), food("B"), food("C"), food("D"), food("E"), food("F"), food("G"), food("H")},
			want: map[MealSlot][]string{
				Breakfast: {"A", "B"},
				Lunch:     {"C", "D"},
				Snack:     {"E", "F"},
				Dinner:    {"G", "H"},
			},
		},
		{
			// The fill cursor is shared across slots, so X and Y are never reached.
			name:     "SharedCursor",
			selected: []SelectedFood{food("Rice"), food("Dal"), food("X"), food("Y")},
			want: map[MealSlot][]string{
				Breakfast: {"Rice"},
				Lunch:     {"Rice"},
				Snack:     {"Dal"},
				Dinner:    {"Rice"},
			},
		},
		{
			name:     "EmptySlotsSeededWithFirstFood",
			selected: []SelectedFood{food("X")},
			want: map[MealSlot][]string{
				Breakfast: {"X"},
				Lunch:     {"X"},
				Snack:     {"X"},
				Dinner:    {"X"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := Allocate(tt.selected, affinity)
			if len(plan) != len(Slots) {
				t.Fatalf("Expected %d slots, got %d", len(Slots), len(plan))
			}
			for _, slot := range Slots {
				got := names(plan[slot])
				want := tt.want[slot]
				if len(got) != len(want) {
					t.Errorf("%s: expected %v, got %v", slot, want, got)
					continue
				}
				for i := range got {
					if got[i] != want[i] {
						t.Errorf("%s: expected %v, got %v", slot, want, got)
						break
					}
				}
			}
		})
	}
}

func TestAllocate_QuartersQuantityAndCost(t *testing.T) {
	selected := []SelectedFood{{Name: "Rice", Quantity: 250.5, Cost: 12.53, Calories: 325.7, Protein: 6.8}}

	plan := Allocate(selected, testRules(t).Affinity)

	got := plan[Lunch][0]
	if got.Quantity != 62.6 {
		t.Errorf("Expected quantity 62.6, got %v", got.Quantity)
	}
	if got.Cost != 3.13 {
		t.Errorf("Expected cost 3.13, got %v", got.Cost)
	}
	if got.Calories != 325.7 || got.Protein != 6.8 {
		t.Errorf("Expected daily calories and protein to be kept, got %+v", got)
	}
	if selected[0].Quantity != 250.5 {
		t.Error("Allocate modified its input")
	}
}

func TestAllocate_Empty(t *testing.T) {
	plan := Allocate(nil, nil)
	if len(plan) != 4 {
		t.Fatalf("Expected 4 slots, got %d", len(plan))
	}
	for _, slot := range Slots {
		if len(plan[slot]) != 0 {
			t.Errorf("Expected %s to be empty", slot)
		}
	}
}
