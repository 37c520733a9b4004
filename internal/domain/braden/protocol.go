package braden

import (
	"fmt"

	"github.com/astrobsm/criticalcare/internal/platform/clinical"
	"github.com/astrobsm/criticalcare/internal/platform/compose"
)

func risk(code string) func(assessment) bool {
	return func(a assessment) bool { return a.Risk.Code == code }
}

func low(field string, atMost int) func(assessment) bool {
	return func(a assessment) bool {
		for _, s := range subscales {
			if s.field == field {
				return s.value(a.Input) <= atMost
			}
		}
		return false
	}
}

func levelLine(field, format string) func(assessment) []string {
	return func(a assessment) []string {
		return []string{fmt.Sprintf(format, a.Level(field))}
	}
}

var protocol = compose.Plan[assessment]{
	{
		ID:    "skin",
		Title: "Pressure injury prevention",
		Cascade: []compose.Rule[assessment]{
			compose.When("very_high", risk("very_high"),
				"Very high risk: dynamic active support surface; reposition every 2 hours",
				"Tissue viability referral; inspect skin every shift"),
			compose.When("high", risk("high"),
				"High risk: pressure-redistributing mattress; reposition every 2-3 hours",
				"Inspect skin every shift"),
			compose.When("moderate", risk("moderate"),
				"Moderate risk: reposition every 3 hours with 30 degree lateral tilt; foam mattress"),
			compose.When("mild", risk("mild"),
				"Mild risk: regular repositioning schedule; maximise mobility"),
			compose.Default[assessment]("no_risk", "No risk: reassess if condition changes"),
		},
		Boilerplate: []string{"Reassess Braden score daily and on any change in condition"},
		Warnings: []compose.Rule[assessment]{
			{Name: "sensory", When: low(SensoryPerception, 2),
				Lines: levelLine(SensoryPerception, "Sensory perception %s: offload heels and check bony prominences each turn")},
			{Name: "mobility", When: low(Mobility, 2),
				Lines: levelLine(Mobility, "Mobility %s: turning schedule with documented position changes")},
			{Name: "activity", When: low(Activity, 2),
				Lines: levelLine(Activity, "Activity %s: pressure-redistributing cushion and limit sitting to 1 hour")},
		},
	},
	{
		ID:    "nutrition",
		Title: "Nutrition",
		Cascade: []compose.Rule[assessment]{
			{Name: "poor", When: low(Nutrition, 2),
				Lines: levelLine(Nutrition, "Nutrition %s: dietitian referral; screen with MUST and offer supplements")},
		},
	},
	{
		ID:    "warnings",
		Title: "Warnings",
		Warnings: []compose.Rule[assessment]{
			{Name: "moisture", When: low(Moisture, 2),
				Lines: levelLine(Moisture, "Skin %s: barrier cream, absorbent pads and continence management")},
			{Name: "friction", When: low(FrictionShear, 1),
				Lines: levelLine(FrictionShear, "Friction and shear %s: lift with sheets, keep head of bed at or below 30 degrees")},
			compose.When("diabetes", func(a assessment) bool { return a.Comorbidities.Has(clinical.Diabetes) },
				"Diabetes: inspect feet and heels daily for neuropathic injury"),
			compose.When("heart_failure", func(a assessment) bool { return a.Comorbidities.Has(clinical.HeartFailure) },
				"Heart failure: oedematous skin breaks down easily; elevate limbs and avoid tight dressings"),
		},
	},
}
