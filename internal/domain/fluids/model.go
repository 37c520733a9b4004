package fluids

import (
	"github.com/astrobsm/criticalcare/internal/platform/clinical"
	"github.com/astrobsm/criticalcare/internal/platform/input"
)

// Dehydration severities.
const (
	None     = "none"
	Mild     = "mild"
	Moderate = "moderate"
	Severe   = "severe"
)

type Input struct {
	WeightKg      float64
	Age           float64
	Dehydration   string
	Comorbidities clinical.Set
}

func Parse(rec input.Record) (Input, error) {
	r := input.NewReader(rec)
	in := Input{
		WeightKg:      r.Required("weight", 0.5, 350),
		Age:           r.Coerced("age", 0, 120),
		Dehydration:   r.Enum("dehydration", None, None, Mild, Moderate, Severe),
		Comorbidities: r.Set("comorbidities"),
	}
	if err := r.Err(); err != nil {
		return Input{}, err
	}
	return in, nil
}

func (in Input) Paediatric() bool { return in.Age > 0 && in.Age < 18 }
