package nutrition

import (
	"fmt"

	"github.com/astrobsm/criticalcare/internal/platform/clinical"
	"github.com/astrobsm/criticalcare/internal/platform/compose"
)

func risk(code string) func(assessment) bool {
	return func(a assessment) bool { return a.Risk.Code == code }
}

func wound(severity string) func(assessment) bool {
	return func(a assessment) bool { return a.WoundSeverity == severity }
}

func targetLines(a assessment) []string {
	return []string{fmt.Sprintf("Targets: energy %.0f kcal/day, protein %.0f g/day, fluid %.0f mL/day",
		a.Energy, a.Protein, a.Fluid)}
}

func planLines(a assessment) []string {
	return []string{fmt.Sprintf("Food plan provides %.0f kcal (%.0f%% of target) and %.1f g protein (%.0f%% of target)",
		a.PlanKcal, a.KcalCover, a.PlanProtein, a.ProteinCover)}
}

var protocol = compose.Plan[assessment]{
	{
		ID:    "nutrition",
		Title: "Nutrition",
		Cascade: []compose.Rule[assessment]{
			compose.When("high", risk("high"),
				"High risk of malnutrition: refer to a dietitian",
				"Start oral nutritional supplements between meals; record food intake daily"),
			compose.When("medium", risk("medium"),
				"Medium risk: document dietary intake for 3 days and repeat screening",
				"Improve intake with food fortification and snacks"),
			compose.Default[assessment]("low", "Low risk: routine care; repeat screening weekly in hospital"),
		},
		Warnings: []compose.Rule[assessment]{
			{Name: "targets", Lines: targetLines},
			{Name: "shortfall", When: func(a assessment) bool {
				return len(a.Portions) > 0 && (a.KcalCover < 75 || a.ProteinCover < 75)
			}, Lines: compose.Static[assessment]("Planned intake covers less than 75% of target: add supplements or fortify meals")},
			{Name: "plan", When: func(a assessment) bool { return len(a.Portions) > 0 }, Lines: planLines},
		},
	},
	{
		ID:    "wound",
		Title: "Wound healing",
		Cascade: []compose.Rule[assessment]{
			compose.When("severe", wound("severe"),
				"Severe wound: protein 2.0 g/kg/day; consider arginine-enriched supplement",
				"Supplement zinc and vitamin C if deficient"),
			compose.When("moderate", wound("moderate"),
				"Moderate wound: protein 1.5 g/kg/day; multivitamin with minerals"),
			compose.When("minor", wound("minor"),
				"Minor wound: protein 1.25 g/kg/day from a normal diet"),
		},
	},
	{
		ID:    "warnings",
		Title: "Warnings",
		Warnings: []compose.Rule[assessment]{
			compose.When("refeeding", assessment.refeedingRisk,
				"Refeeding syndrome risk: start at 10 kcal/kg/day and build up over 4-7 days",
				"Give thiamine before feeding; monitor phosphate, potassium and magnesium daily"),
			compose.When("diabetes", func(a assessment) bool { return a.Comorbidities.Has(clinical.Diabetes) },
				"Diabetes: spread carbohydrate across meals and monitor capillary glucose"),
			compose.When("ckd", func(a assessment) bool { return a.Comorbidities.Has(clinical.CKD) },
				"CKD: review protein target with the renal dietitian if not on dialysis"),
			compose.When("heart_failure", func(a assessment) bool { return a.Comorbidities.Has(clinical.HeartFailure) },
				"Heart failure: fluid target may need restriction to 1.5 L/day"),
		},
	},
}
