package burns

import (
	"github.com/astrobsm/criticalcare/internal/formula"
	"github.com/astrobsm/criticalcare/internal/platform/clinical"
	"github.com/astrobsm/criticalcare/internal/platform/input"
)

// Input is the burn assessment vector.
type Input struct {
	WeightKg       float64
	HeightCm       float64
	Age            float64
	TBSA           float64
	Regions        []formula.Region
	HoursSinceBurn float64
	FluidGivenML   float64
	Inhalation     bool
	Electrical     bool
	Comorbidities  clinical.Set
}

// Parse reads an Input from a raw record. Regions, when given, replace tbsa.
func Parse(rec input.Record) (Input, error) {
	r := input.NewReader(rec)
	in := Input{
		WeightKg:       r.Required("weight", 0.5, 350),
		HeightCm:       r.Coerced("height", 0, 250),
		Age:            r.Coerced("age", 0, 120),
		TBSA:           r.Coerced("tbsa", 0, 100),
		HoursSinceBurn: r.Coerced("hours_since_burn", 0, 24),
		FluidGivenML:   r.Coerced("fluid_given_ml", 0, 50000),
		Inhalation:     r.Bool("inhalation_injury"),
		Electrical:     r.Bool("electrical"),
		Comorbidities:  r.Set("comorbidities"),
	}
	for _, a := range r.Amounts("regions", 100) {
		in.Regions = append(in.Regions, formula.Region{Name: a.Name, Percent: a.Value})
	}
	if err := r.Err(); err != nil {
		return Input{}, err
	}
	return in, nil
}

// Paediatric reports a patient under 18 with a recorded age.
func (in Input) Paediatric() bool { return in.Age > 0 && in.Age < 18 }

// child uses the paediatric rule-of-nines chart.
func (in Input) child() bool { return in.Age > 0 && in.Age < 10 }
