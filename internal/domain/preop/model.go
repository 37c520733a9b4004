package preop

import (
	"github.com/astrobsm/criticalcare/internal/platform/clinical"
	"github.com/astrobsm/criticalcare/internal/platform/input"
)

// Surgical urgency.
const (
	Elective  = "elective"
	Urgent    = "urgent"
	Emergency = "emergency"
)

// Input holds the pre-operative work-up. Zero means not measured.
type Input struct {
	Haemoglobin   float64
	Glucose       float64
	Potassium     float64
	Sodium        float64
	Creatinine    float64
	Albumin       float64
	SystolicBP    float64
	DiastolicBP   float64
	Age           float64
	WeightKg      float64
	Sex           clinical.Sex
	Urgency       string
	Anticoagulant bool
	Comorbidities clinical.Set
}

func Parse(rec input.Record) (Input, error) {
	r := input.NewReader(rec)
	in := Input{
		Haemoglobin:   r.Coerced("haemoglobin", 0, 25),
		Glucose:       r.Coerced("glucose", 0, 60),
		Potassium:     r.Coerced("potassium", 0, 10),
		Sodium:        r.Coerced("sodium", 0, 200),
		Creatinine:    r.Coerced("creatinine", 0, 2500),
		Albumin:       r.Coerced("albumin", 0, 70),
		SystolicBP:    r.Coerced("systolic_bp", 0, 300),
		DiastolicBP:   r.Coerced("diastolic_bp", 0, 200),
		Age:           r.Coerced("age", 0, 120),
		WeightKg:      r.Coerced("weight", 0, 350),
		Sex:           clinical.Sex(r.Enum("sex", "", string(clinical.Male), string(clinical.Female))),
		Urgency:       r.Enum("urgency", Elective, Elective, Urgent, Emergency),
		Anticoagulant: r.Bool("anticoagulant"),
		Comorbidities: r.Set("comorbidities"),
	}
	if err := r.Err(); err != nil {
		return Input{}, err
	}
	return in, nil
}
