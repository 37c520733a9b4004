package vte

import (
	"github.com/astrobsm/criticalcare/internal/platform/clinical"
	"github.com/astrobsm/criticalcare/internal/platform/input"
)

// Input is the Caprini assessment vector. Factors are ids of the Caprini
// table; age, BMI and chemotherapy are turned into factors on evaluation.
type Input struct {
	Age           float64
	BMI           float64
	WeightKg      float64
	HeightCm      float64
	Factors       clinical.Set
	Chemotherapy  bool
	BleedingRisk  bool
	GFR           float64
	Comorbidities clinical.Set
}

func Parse(rec input.Record) (Input, error) {
	r := input.NewReader(rec)
	in := Input{
		Age:           r.Coerced("age", 0, 120),
		BMI:           r.Coerced("bmi", 0, 100),
		WeightKg:      r.Coerced("weight", 0, 350),
		HeightCm:      r.Coerced("height", 0, 250),
		Factors:       r.Set("factors"),
		Chemotherapy:  r.Bool("chemotherapy"),
		BleedingRisk:  r.Bool("bleeding_risk"),
		GFR:           r.Coerced("gfr", 0, 200),
		Comorbidities: r.Set("comorbidities"),
	}
	if err := r.Err(); err != nil {
		return Input{}, err
	}
	return in, nil
}
