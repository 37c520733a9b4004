package nutrition

import (
	"github.com/astrobsm/criticalcare/internal/platform/clinical"
	"github.com/astrobsm/criticalcare/internal/platform/input"
)

// Activity levels and their energy factor.
var activityFactor = map[string]float64{
	"bedbound":   1.2,
	"ambulatory": 1.3,
	"active":     1.4,
}

// Wound severity stress factor and protein requirement (g/kg/day).
var (
	stressFactor = map[string]float64{"none": 1.0, "minor": 1.1, "moderate": 1.3, "severe": 1.5}
	proteinPerKg = map[string]float64{"none": 1.0, "minor": 1.25, "moderate": 1.5, "severe": 2.0}
)

// Food is a planned food and its weight in grams.
type Food struct {
	Name  string
	Grams float64
}

type Input struct {
	WeightKg          float64
	HeightCm          float64
	Age               float64
	Sex               clinical.Sex
	WeightLossPercent float64
	AcuteDisease      bool
	Activity          string
	WoundSeverity     string
	Foods             []Food
	Comorbidities     clinical.Set
}

func Parse(rec input.Record) (Input, error) {
	r := input.NewReader(rec)
	in := Input{
		WeightKg:          r.Required("weight", 0.5, 350),
		HeightCm:          r.Required("height", 50, 250),
		Age:               r.Coerced("age", 0, 120),
		Sex:               clinical.Sex(r.RequiredEnum("sex", string(clinical.Male), string(clinical.Female))),
		WeightLossPercent: r.Coerced("weight_loss_percent", 0, 100),
		AcuteDisease:      r.Bool("acute_disease"),
		Activity:          r.Enum("activity", "ambulatory", "bedbound", "ambulatory", "active"),
		WoundSeverity:     r.Enum("wound_severity", "none", "none", "minor", "moderate", "severe"),
		Comorbidities:     r.Set("comorbidities"),
	}
	for _, a := range r.Amounts("foods", 5000) {
		in.Foods = append(in.Foods, Food{Name: a.Name, Grams: a.Value})
	}
	if err := r.Err(); err != nil {
		return Input{}, err
	}
	return in, nil
}
