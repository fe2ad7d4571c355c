package planner

import "diet-planner/internal/config"

// Rules are the lookup tables the planner consults.
type Rules struct {
	Denylists         map[Preference][]string
	Affinity          map[MealSlot][]string
	AlternativesCount int
}

// RulesFromTables converts configuration tables into planner rules.
func RulesFromTables(t config.Tables) Rules {
	r := Rules{
		Denylists:         make(map[Preference][]string, len(t.Denylists)),
		Affinity:          make(map[MealSlot][]string, len(t.MealAffinity)),
		AlternativesCount: t.AlternativesCount,
	}
	for pref, names := range t.Denylists {
		r.Denylists[Preference(pref)] = append([]string(nil), names...)
	}
	for slot, names := range t.MealAffinity {
		r.Affinity[MealSlot(slot)] = append([]string(nil), names...)
	}
	return r
}
