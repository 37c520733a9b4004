package sepsis

import (
	"github.com/astrobsm/criticalcare/internal/platform/clinical"
	"github.com/astrobsm/criticalcare/internal/platform/input"
	"github.com/astrobsm/criticalcare/internal/platform/result"
)

// Input is the sepsis screening vector. Zero means not measured.
type Input struct {
	RespiratoryRate float64
	SystolicBP      float64
	DiastolicBP     float64
	HeartRate       float64
	Temperature     float64
	WBC             float64
	GCS             int
	AVPU            clinical.AVPU
	Lactate         float64
	Glucose         float64
	SpO2            float64
	WeightKg        float64
	UrineOutput     float64
	Comorbidities   clinical.Set
}

var avpuLevels = []string{
	string(clinical.Alert), string(clinical.Voice), string(clinical.Pain), string(clinical.Unresponsive),
}

func Parse(rec input.Record) (Input, error) {
	r := input.NewReader(rec)
	in := Input{
		RespiratoryRate: r.Coerced("respiratory_rate", 0, 80),
		SystolicBP:      r.Coerced("systolic_bp", 0, 300),
		DiastolicBP:     r.Coerced("diastolic_bp", 0, 200),
		HeartRate:       r.Coerced("heart_rate", 0, 300),
		Temperature:     r.Coerced("temperature", 0, 45),
		WBC:             r.Coerced("wbc", 0, 200),
		GCS:             r.CoercedInt("gcs", 0, 15),
		AVPU:            clinical.AVPU(r.Enum("avpu", string(clinical.Alert), avpuLevels...)),
		Lactate:         r.Coerced("lactate", 0, 30),
		Glucose:         r.Coerced("glucose", 0, 60),
		SpO2:            r.Coerced("spo2", 0, 100),
		WeightKg:        r.Coerced("weight", 0, 350),
		UrineOutput:     r.Coerced("urine_output", 0, 20),
		Comorbidities:   r.Set("comorbidities"),
	}
	if err := r.Err(); err != nil {
		return Input{}, err
	}
	if in.GCS > 0 && in.GCS < 3 {
		return Input{}, result.Invalid("gcs", "must be between 3 and 15, or 0 when not assessed")
	}
	return in, nil
}

// Altered reports altered mentation for qSOFA.
func (in Input) Altered() bool {
	return in.AVPU != clinical.Alert || (in.GCS > 0 && in.GCS < 15)
}
