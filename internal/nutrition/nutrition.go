package nutrition

import (
	"errors"
	"fmt"
	"strings"
)

// MinBudget is the smallest daily budget accepted.
const MinBudget = 10.0

// ErrInvalidInput marks a request that failed validation.
var ErrInvalidInput = errors.New("invalid input")

// Sex selects the Mifflin-St Jeor constant.
type Sex string

const (
	Male   Sex = "male"
	Female Sex = "female"
)

// Profile holds the biometrics a daily target is derived from.
type Profile struct {
	Age           int     `json:"age"`
	Sex           Sex     `json:"sex"`
	WeightKG      float64 `json:"weight"`
	HeightCM      float64 `json:"height"`
	ActivityLevel string  `json:"activity_level"`
}

// Target is a daily calorie and protein goal.
type Target struct {
	Calories int `json:"calories"`
	Protein  int `json:"protein"`
}

// Multipliers maps an activity level to its TDEE factor. Fallback applies to
// unknown levels.
type Multipliers struct {
	Levels   map[string]float64
	Fallback float64
}

// ParseSex normalises a sex string.
func ParseSex(s string) (Sex, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "male", "m":
		return Male, nil
	case "female", "f":
		return Female, nil
	}
	return "", fmt.Errorf("%w: sex must be male or female, got %q", ErrInvalidInput, s)
}

// Validate checks the profile against plausible human ranges.
func (p Profile) Validate() error {
	if p.Age < 1 || p.Age > 120 {
		return fmt.Errorf("%w: please enter a valid age between 1 and 120", ErrInvalidInput)
	}
	if p.WeightKG < 10 || p.WeightKG > 300 {
		return fmt.Errorf("%w: please enter a valid weight between 10 and 300 kg", ErrInvalidInput)
	}
	if p.HeightCM < 50 || p.HeightCM > 250 {
		return fmt.Errorf("%w: please enter a valid height between 50 and 250 cm", ErrInvalidInput)
	}
	if p.Sex != Male && p.Sex != Female {
		return fmt.Errorf("%w: sex must be male or female", ErrInvalidInput)
	}
	if strings.TrimSpace(p.ActivityLevel) == "" {
		return fmt.Errorf("%w: activity level is required", ErrInvalidInput)
	}
	return nil
}

// ValidateBudget checks the daily budget.
func ValidateBudget(budget float64) error {
	if budget < MinBudget {
		return fmt.Errorf("%w: budget must be at least %.0f per day", ErrInvalidInput, MinBudget)
	}
	return nil
}

// BMR computes the basal metabolic rate with the Mifflin-St Jeor equation.
func BMR(p Profile) float64 {
	bmr := 10*p.WeightKG + 6.25*p.HeightCM - 5*float64(p.Age)
	if p.Sex == Male {
		return bmr + 5
	}
	return bmr - 161
}

// Targets derives the daily calorie target (BMR × activity factor) and the
// protein target (1 g per kg of body weight). Both are truncated.
func Targets(p Profile, m Multipliers) (Target, error) {
	if err := p.Validate(); err != nil {
		return Target{}, err
	}

	factor, ok := m.Levels[p.ActivityLevel]
	if !ok {
		factor = m.Fallback
	}

	return Target{
		Calories: int(BMR(p) * factor),
		Protein:  int(p.WeightKG * 1.0),
	}, nil
}
