// Package foodtable is the food-composition reference table used to turn
// weighed portions into energy and protein.
package foodtable

import (
	"fmt"

	"github.com/astrobsm/criticalcare/internal/formula"
	"github.com/astrobsm/criticalcare/internal/platform/clinical"
	"github.com/astrobsm/criticalcare/internal/platform/result"
)

// TableName is reported in lookup misses.
const TableName = "food_composition"

// Food is the composition of one food per 100 g.
type Food struct {
	Name           string  `yaml:"name" json:"name"`
	Category       string  `yaml:"category" json:"category"`
	KcalPer100g    float64 `yaml:"kcal_per_100g" json:"kcal_per_100g"`
	ProteinPer100g float64 `yaml:"protein_per_100g" json:"protein_per_100g"`
	ServingG       float64 `yaml:"serving_g" json:"serving_g"`
}

// Table is a read-only food table keyed by normalised name.
type Table struct {
	version string
	foods   []Food
	byKey   map[string]int
}

// New validates foods and builds the table.
func New(version string, foods []Food) (*Table, error) {
	t := &Table{version: version, byKey: make(map[string]int, len(foods))}
	for _, f := range foods {
		k := Key(f.Name)
		if k == "" {
			return nil, fmt.Errorf("%s: food without name", TableName)
		}
		if _, dup := t.byKey[k]; dup {
			return nil, fmt.Errorf("%s: duplicate food %q", TableName, f.Name)
		}
		if f.KcalPer100g < 0 || f.ProteinPer100g < 0 || f.ServingG < 0 {
			return nil, fmt.Errorf("%s: %s: negative composition value", TableName, f.Name)
		}
		if f.ProteinPer100g > 100 {
			return nil, fmt.Errorf("%s: %s: protein above 100 g per 100 g", TableName, f.Name)
		}
		t.byKey[k] = len(t.foods)
		t.foods = append(t.foods, f)
	}
	return t, nil
}

// Key is the lookup form of a food name, the same form used for every other
// name in a record.
func Key(name string) string { return clinical.Normalize(name) }

func (t *Table) Version() string { return t.version }

func (t *Table) Len() int { return len(t.foods) }

// Foods returns the foods in table order.
func (t *Table) Foods() []Food {
	out := make([]Food, len(t.foods))
	copy(out, t.foods)
	return out
}

// Lookup finds a food by name, case-insensitively.
func (t *Table) Lookup(name string) (Food, error) {
	i, ok := t.byKey[Key(name)]
	if !ok {
		return Food{}, &result.LookupMiss{Table: TableName, Key: name}
	}
	return t.foods[i], nil
}

// Portion returns the energy (kcal, integer) and protein (0.1 g) of grams of
// the named food.
func (t *Table) Portion(name string, grams float64) (result.FoodPortion, error) {
	f, err := t.Lookup(name)
	if err != nil {
		return result.FoodPortion{}, err
	}
	if grams < 0 {
		return result.FoodPortion{}, result.Invalid("foods."+Key(name), "grams must not be negative")
	}
	return result.FoodPortion{
		Food:     f.Name,
		Grams:    grams,
		Kcal:     formula.RoundHalfUp(f.KcalPer100g*grams/100, 0),
		ProteinG: formula.RoundHalfUp(f.ProteinPer100g*grams/100, 1),
	}, nil
}
