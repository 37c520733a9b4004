package sodium

import (
	"github.com/astrobsm/criticalcare/internal/platform/clinical"
	"github.com/astrobsm/criticalcare/internal/platform/input"
)

// DefaultTarget is the target sodium when none is given, mmol/L.
const DefaultTarget = 140

type Input struct {
	Sodium        float64
	Sex           clinical.Sex
	WeightKg      float64
	Age           float64
	TargetSodium  float64
	Potassium     float64
	Chronic       bool
	Symptomatic   bool
	Comorbidities clinical.Set
}

func Parse(rec input.Record) (Input, error) {
	r := input.NewReader(rec)
	in := Input{
		Sodium:        r.Required("sodium", 100, 200),
		Sex:           clinical.Sex(r.RequiredEnum("sex", string(clinical.Male), string(clinical.Female))),
		WeightKg:      r.Required("weight", 0.5, 350),
		Age:           r.Coerced("age", 0, 120),
		TargetSodium:  r.Coerced("target_sodium", 0, 200),
		Potassium:     r.Coerced("potassium", 0, 10),
		Chronic:       true,
		Symptomatic:   r.Bool("symptomatic"),
		Comorbidities: r.Set("comorbidities"),
	}
	// duration unknown is treated as chronic, the safer correction limit
	if r.Has("chronic") {
		in.Chronic = r.Bool("chronic")
	}
	if err := r.Err(); err != nil {
		return Input{}, err
	}
	return in, nil
}

// Target returns the target sodium, defaulting to 140 mmol/L.
func (in Input) Target() float64 {
	if in.TargetSodium <= 0 {
		return DefaultTarget
	}
	return in.TargetSodium
}

// MaxCorrection is the largest safe change in 24 h, mmol/L.
func (in Input) MaxCorrection() float64 {
	if in.Chronic {
		return 8
	}
	return 10
}
