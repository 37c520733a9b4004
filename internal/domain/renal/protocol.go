package renal

import (
	"fmt"

	"github.com/astrobsm/criticalcare/internal/platform/clinical"
	"github.com/astrobsm/criticalcare/internal/platform/compose"
	"github.com/astrobsm/criticalcare/internal/platform/dosing"
)

func inBand(code string) func(assessment) bool {
	return func(a assessment) bool { return a.Band.Code == code }
}

// contraindications lists every contraindicated drug; these lines are never
// suppressed by any other rule.
func contraindications(a assessment) []string {
	var out []string
	for _, d := range a.Doses {
		if d.Contraindicated {
			out = append(out, fmt.Sprintf("%s: %s", d.Drug, d.Dose))
		}
	}
	return out
}

func adjustments(a assessment) []string {
	var out []string
	for _, d := range a.Doses {
		if d.RequiresAdjustment && !d.Contraindicated {
			out = append(out, fmt.Sprintf("%s: adjust to %s (usual %s)", d.Drug, d.Dose, d.Baseline))
		}
	}
	return out
}

var protocol = compose.Plan[assessment]{
	{
		ID:    "renal",
		Title: "Renal function",
		Cascade: []compose.Rule[assessment]{
			compose.When("dialysis", inBand(dosing.Dialysis),
				"Kidney failure or dialysis: dose after dialysis on dialysis days",
				"Avoid nephrotoxins; nephrology review"),
			compose.When("severe", inBand(dosing.Severe),
				"Severe impairment: reduce doses of renally cleared drugs and monitor levels",
				"Refer to nephrology; plan for renal replacement therapy"),
			compose.When("moderate", inBand(dosing.Moderate),
				"Moderate impairment: review every renally cleared drug",
				"Monitor creatinine and potassium at least weekly"),
			compose.When("mild", inBand(dosing.Mild),
				"Mild impairment: most drugs at usual dose; avoid nephrotoxin combinations"),
			compose.Default[assessment]("normal", "Normal renal function: usual doses"),
		},
		Boilerplate: []string{"Recalculate doses when renal function changes"},
	},
	{
		ID:    "warnings",
		Title: "Warnings",
		Warnings: []compose.Rule[assessment]{
			{Name: "contraindicated", When: assessment.anyContraindicated, Lines: contraindications},
			{Name: "adjustments", Lines: adjustments},
			compose.When("diabetes_metformin", func(a assessment) bool {
				d, ok := a.dosing("metformin")
				return ok && d.RequiresAdjustment && a.Comorbidities.Has(clinical.Diabetes)
			}, "Diabetes: metformin limited or stopped; review alternative glucose-lowering therapy"),
			compose.When("heart_failure", func(a assessment) bool {
				return a.Comorbidities.Has(clinical.HeartFailure) && a.Band.Code != dosing.Normal
			}, "Heart failure with renal impairment: monitor potassium with spironolactone and digoxin levels"),
		},
	},
}
