package nutrition

import (
	"errors"
	"testing"
)

var testMultipliers = Multipliers{
	Levels: map[string]float64{
		"sedentary":         1.2,
		"moderately_active": 1.55,
	},
	Fallback: 1.55,
}

func TestTargets(t *testing.T) {
	tests := []struct {
		name     string
		profile  Profile
		calories int
		protein  int
	}{
		{
			name:     "MaleSedentary",
			profile:  Profile{Age: 30, Sex: Male, WeightKG: 70, HeightCM: 175, ActivityLevel: "sedentary"},
			calories: 1978, // 1648.75 * 1.2
			protein:  70,
		},
		{
			name:     "FemaleModerate",
			profile:  Profile{Age: 25, Sex: Female, WeightKG: 60, HeightCM: 165, ActivityLevel: "moderately_active"},
			calories: 2085, // 1345.25 * 1.55
			protein:  60,
		},
		{
			name:     "UnknownLevelUsesFallback",
			profile:  Profile{Age: 25, Sex: Female, WeightKG: 60.9, HeightCM: 165, ActivityLevel: "couch"},
			calories: 2099,
			protein:  60,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Targets(tt.profile, testMultipliers)
			if err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			if got.Calories != tt.calories {
				t.Errorf("Expected %d calories, got %d", tt.calories, got.Calories)
			}
			if got.Protein != tt.protein {
				t.Errorf("Expected %d protein, got %d", tt.protein, got.Protein)
			}
		})
	}
}

func TestBMR(t *testing.T) {
	p := Profile{Age: 30, Sex: Male, WeightKG: 70, HeightCM: 175}
	if got := BMR(p); got != 1648.75 {
		t.Errorf("Expected male BMR 1648.75, got %v", got)
	}
	p.Sex = Female
	if got := BMR(p); got != 1482.75 {
		t.Errorf("Expected female BMR 1482.75, got %v", got)
	}
}

func TestValidate(t *testing.T) {
	valid := Profile{Age: 30, Sex: Male, WeightKG: 70, HeightCM: 175, ActivityLevel: "sedentary"}

	tests := []struct {
		name   string
		mutate func(p *Profile)
	}{
		{"AgeTooLow", func(p *Profile) { p.Age = 0 }},
		{"AgeTooHigh", func(p *Profile) { p.Age = 121 }},
		{"WeightTooLow", func(p *Profile) { p.WeightKG = 9 }},
		{"HeightTooHigh", func(p *Profile) { p.HeightCM = 251 }},
		{"UnknownSex", func(p *Profile) { p.Sex = "x" }},
		{"MissingActivity", func(p *Profile) { p.ActivityLevel = "" }},
	}

	if err := valid.Validate(); err != nil {
		t.Fatalf("Expected valid profile, got %v", err)
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := valid
			tt.mutate(&p)
			err := p.Validate()
			if !errors.Is(err, ErrInvalidInput) {
				t.Errorf("Expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestValidateBudget(t *testing.T) {
	if err := ValidateBudget(9.99); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for low budget, got %v", err)
	}
	if err := ValidateBudget(10); err != nil {
		t.Errorf("Expected budget 10 to be valid, got %v", err)
	}
}

func TestParseSex(t *testing.T) {
	if s, err := ParseSex(" Male "); err != nil || s != Male {
		t.Errorf("Expected Male, got %q (%v)", s, err)
	}
	if s, err := ParseSex("f"); err != nil || s != Female {
		t.Errorf("Expected Female, got %q (%v)", s, err)
	}
	if _, err := ParseSex("other"); err == nil {
		t.Error("Expected error for unknown sex, got nil")
	}
}
