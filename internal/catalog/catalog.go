package catalog

import (
	"fmt"
	"math"
	"strings"
)

// FoodItem holds the nutrient and cost values of a food, all per 100g.
type FoodItem struct {
	Name     string  `json:"name"`
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Fat      float64 `json:"fat"`
	Carbs    float64 `json:"carbs"`
	Fiber    float64 `json:"fiber"`
	Iron     float64 `json:"iron"`
	Cost     float64 `json:"cost"`
}

// Validate checks that the item has a name and no negative or non-finite values.
func (f FoodItem) Validate() error {
	if strings.TrimSpace(f.Name) == "" {
		return fmt.Errorf("food name is empty")
	}
	fields := []struct {
		name  string
		value float64
	}{
		{"calories", f.Calories},
		{"protein", f.Protein},
		{"fat", f.Fat},
		{"carbs", f.Carbs},
		{"fiber", f.Fiber},
		{"iron", f.Iron},
		{"cost", f.Cost},
	}
	for _, fld := range fields {
		if math.IsNaN(fld.value) || math.IsInf(fld.value, 0) || fld.value < 0 {
			return fmt.Errorf("food %q has invalid %s value %v", f.Name, fld.name, fld.value)
		}
	}
	return nil
}

// Catalog is an immutable, ordered table of foods keyed by name.
// It is safe for concurrent use once constructed.
type Catalog struct {
	items []FoodItem
	index map[string]int
}

// New builds a Catalog, rejecting invalid items and duplicate names.
func New(items []FoodItem) (*Catalog, error) {
	c := &Catalog{
		items: make([]FoodItem, 0, len(items)),
		index: make(map[string]int, len(items)),
	}
	for _, it := range items {
		it.Name = strings.TrimSpace(it.Name)
		if err := it.Validate(); err != nil {
			return nil, err
		}
		if _, dup := c.index[it.Name]; dup {
			return nil, fmt.Errorf("duplicate food %q", it.Name)
		}
		c.index[it.Name] = len(c.items)
		c.items = append(c.items, it)
	}
	return c, nil
}

// Items returns a copy of the foods in catalog order.
func (c *Catalog) Items() []FoodItem {
	out := make([]FoodItem, len(c.items))
	copy(out, c.items)
	return out
}

// Get looks up a food by name.
func (c *Catalog) Get(name string) (FoodItem, bool) {
	i, ok := c.index[name]
	if !ok {
		return FoodItem{}, false
	}
	return c.items[i], true
}

// Names returns the food names in catalog order.
func (c *Catalog) Names() []string {
	names := make([]string, len(c.items))
	for i, it := range c.items {
		names[i] = it.Name
	}
	return names
}

// Len returns the number of foods.
func (c *Catalog) Len() int {
	return len(c.items)
}
