package fluids

import (
	"fmt"

	"github.com/astrobsm/criticalcare/internal/platform/clinical"
	"github.com/astrobsm/criticalcare/internal/platform/compose"
)

func dehydration(level string) func(assessment) bool {
	return func(a assessment) bool { return a.Dehydration == level }
}

var protocol = compose.Plan[assessment]{
	{
		ID:    "circulation",
		Title: "Circulation",
		Cascade: []compose.Rule[assessment]{
			{
				Name: "bolus",
				When: func(a assessment) bool { return a.Bolus > 0 },
				Lines: func(a assessment) []string {
					return []string{
						fmt.Sprintf("Severe dehydration: give %.0f mL 0.9%% sodium chloride as a bolus and reassess", a.Bolus),
						"Repeat once if still shocked, then seek senior review",
					}
				},
			},
			compose.When("moderate", dehydration(Moderate),
				"Moderate dehydration: assess perfusion hourly"),
		},
	},
	{
		ID:    "fluids",
		Title: "Fluid plan",
		Cascade: []compose.Rule[assessment]{
			{
				Name: "deficit",
				When: func(a assessment) bool { return a.Deficit > 0 },
				Lines: func(a assessment) []string {
					return []string{
						fmt.Sprintf("Replace %.0f mL deficit plus %.0f mL maintenance over 24 h", a.Deficit, a.Maintenance),
						fmt.Sprintf("First 8 h: %.0f mL (%.0f mL/h); next 16 h: %.0f mL (%.0f mL/h)",
							a.First8h, a.First8h/8, a.Next16h, a.Next16h/16),
					}
				},
			},
			{
				Name: "maintenance",
				Lines: func(a assessment) []string {
					return []string{fmt.Sprintf("Maintenance only: %.0f mL over 24 h (%.0f mL/h)", a.Maintenance, a.Maintenance/24)}
				},
			},
		},
		Boilerplate: []string{
			"Check electrolytes and glucose before and during IV fluids",
			"Switch to oral fluids as soon as tolerated",
		},
		Warnings: []compose.Rule[assessment]{
			compose.When("paediatric", func(a assessment) bool { return a.Paediatric() },
				"Child: use isotonic maintenance fluid with 5% dextrose"),
			compose.When("mild", dehydration(Mild),
				"Mild dehydration: oral rehydration solution is preferred"),
		},
	},
	{
		ID:    "warnings",
		Title: "Warnings",
		Warnings: []compose.Rule[assessment]{
			compose.When("heart_failure", func(a assessment) bool { return a.Comorbidities.Has(clinical.HeartFailure) },
				"Heart failure: restrict to 1-1.5 L/day unless dehydrated; daily weights"),
			compose.When("ckd", func(a assessment) bool { return a.Comorbidities.Has(clinical.CKD) },
				"CKD: avoid potassium-containing fluids until potassium is known"),
			compose.When("diabetes", func(a assessment) bool { return a.Comorbidities.Has(clinical.Diabetes) },
				"Diabetes: monitor glucose; avoid dextrose-only fluids"),
		},
	},
}
