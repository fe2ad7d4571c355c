package planner

import (
	"fmt"
	"strings"

	"diet-planner/internal/catalog"
)

// Preference is a dietary preference.
type Preference string

const (
	Vegetarian    Preference = "vegetarian"
	NonVegetarian Preference = "non_vegetarian"
	Eggetarian    Preference = "eggetarian"
)

// ParsePreference normalises user input, accepting the short forms veg and non_veg.
func ParsePreference(s string) (Preference, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "vegetarian", "veg":
		return Vegetarian, nil
	case "non_vegetarian", "non_veg", "non-veg", "nonveg":
		return NonVegetarian, nil
	case "eggetarian", "egg":
		return Eggetarian, nil
	}
	return "", fmt.Errorf("unknown dietary preference %q", s)
}

// Filter returns the foods allowed under pref, in input order. Preferences
// without a denylist (non_vegetarian, or anything unrecognised) keep every food.
func Filter(foods []catalog.FoodItem, pref Preference, denylists map[Preference][]string) ([]catalog.FoodItem, error) {
	deny := make(map[string]struct{}, len(denylists[pref]))
	for _, name := range denylists[pref] {
		deny[name] = struct{}{}
	}

	out := make([]catalog.FoodItem, 0, len(foods))
	for _, f := range foods {
		if _, excluded := deny[f.Name]; excluded {
			continue
		}
		out = append(out, f)
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyCatalogAfterFilter, pref)
	}
	return out, nil
}
