package braden

import (
	"github.com/astrobsm/criticalcare/internal/platform/clinical"
	"github.com/astrobsm/criticalcare/internal/platform/input"
)

// Subscale fields in scoring order.
const (
	SensoryPerception = "sensory_perception"
	Moisture          = "moisture"
	Activity          = "activity"
	Mobility          = "mobility"
	Nutrition         = "nutrition"
	FrictionShear     = "friction_shear"
)

type subscale struct {
	field  string
	levels []string
	value  func(Input) int
}

// subscales lists each item with its level names from 1 upward.
var subscales = []subscale{
	{SensoryPerception, []string{"completely limited", "very limited", "slightly limited", "no impairment"}, func(in Input) int { return in.SensoryPerception }},
	{Moisture, []string{"constantly moist", "very moist", "occasionally moist", "rarely moist"}, func(in Input) int { return in.Moisture }},
	{Activity, []string{"bedfast", "chairfast", "walks occasionally", "walks frequently"}, func(in Input) int { return in.Activity }},
	{Mobility, []string{"completely immobile", "very limited", "slightly limited", "no limitation"}, func(in Input) int { return in.Mobility }},
	{Nutrition, []string{"very poor", "probably inadequate", "adequate", "excellent"}, func(in Input) int { return in.Nutrition }},
	{FrictionShear, []string{"problem", "potential problem", "no apparent problem"}, func(in Input) int { return in.FrictionShear }},
}

type Input struct {
	SensoryPerception int
	Moisture          int
	Activity          int
	Mobility          int
	Nutrition         int
	FrictionShear     int
	Comorbidities     clinical.Set
}

func Parse(rec input.Record) (Input, error) {
	r := input.NewReader(rec)
	in := Input{
		SensoryPerception: r.Int(SensoryPerception, 1, 4),
		Moisture:          r.Int(Moisture, 1, 4),
		Activity:          r.Int(Activity, 1, 4),
		Mobility:          r.Int(Mobility, 1, 4),
		Nutrition:         r.Int(Nutrition, 1, 4),
		FrictionShear:     r.Int(FrictionShear, 1, 3),
		Comorbidities:     r.Set("comorbidities"),
	}
	if err := r.Err(); err != nil {
		return Input{}, err
	}
	return in, nil
}
