package app

import (
	"fmt"
	"strings"

	"diet-planner/internal/config"
	"diet-planner/internal/nutrition"
	"diet-planner/internal/planner"
)

// PlanRequest is the raw planning request accepted by every front end.
type PlanRequest struct {
	Age               int      `json:"age"`
	Sex               string   `json:"sex"`
	Weight            float64  `json:"weight"`
	Height            float64  `json:"height"`
	ActivityLevel     string   `json:"activity_level"`
	Budget            float64  `json:"budget"`
	DietaryPreference string   `json:"dietary_preference"`
	PantryItems       []string `json:"pantry_items,omitempty"`
}

// Derive validates the request and converts it into planner input, computing
// the calorie and protein targets from the profile.
func (r PlanRequest) Derive(tables config.Tables) (planner.Request, error) {
	sex, err := nutrition.ParseSex(r.Sex)
	if err != nil {
		return planner.Request{}, err
	}
	profile := nutrition.Profile{
		Age:           r.Age,
		Sex:           sex,
		WeightKG:      r.Weight,
		HeightCM:      r.Height,
		ActivityLevel: strings.TrimSpace(r.ActivityLevel),
	}

	target, err := nutrition.Targets(profile, nutrition.Multipliers{
		Levels:   tables.ActivityMultipliers,
		Fallback: tables.DefaultActivityMultiplier,
	})
	if err != nil {
		return planner.Request{}, err
	}
	if err := nutrition.ValidateBudget(r.Budget); err != nil {
		return planner.Request{}, err
	}

	pref, err := planner.ParsePreference(r.DietaryPreference)
	if err != nil {
		return planner.Request{}, fmt.Errorf("%w: %v", nutrition.ErrInvalidInput, err)
	}

	return planner.Request{
		Target:     target,
		Budget:     r.Budget,
		Preference: pref,
		Pantry:     cleanPantry(r.PantryItems),
	}, nil
}

// cleanPantry trims names and drops blanks and duplicates, keeping order.
func cleanPantry(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, it := range items {
		it = strings.TrimSpace(it)
		if it == "" {
			continue
		}
		if _, dup := seen[it]; dup {
			continue
		}
		seen[it] = struct{}{}
		out = append(out, it)
	}
	return out
}

// SplitPantry parses a comma separated pantry list.
func SplitPantry(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return cleanPantry(strings.Split(s, ","))
}
