package sodium

import (
	"fmt"

	"github.com/astrobsm/criticalcare/internal/platform/clinical"
	"github.com/astrobsm/criticalcare/internal/platform/compose"
)

func sodiumBand(code string) func(assessment) bool {
	return func(a assessment) bool { return a.SodiumBand.Code == code }
}

func potassiumBand(code string) func(assessment) bool {
	return func(a assessment) bool { return a.Potassium > 0 && a.PotassiumBand.Code == code }
}

func limitLine(a assessment) []string {
	return []string{
		fmt.Sprintf("Do not change sodium by more than %.0f mmol/L in 24 h", a.MaxCorrection()),
		"Recheck sodium every 4-6 hours during correction",
	}
}

var protocol = compose.Plan[assessment]{
	{
		ID:    "electrolytes",
		Title: "Sodium",
		Cascade: []compose.Rule[assessment]{
			compose.When("symptomatic_hypo", func(a assessment) bool { return a.Hypo && a.Symptomatic },
				"Symptomatic hyponatraemia: 150 mL 3% sodium chloride over 20 minutes, repeat up to 3 times until symptoms improve",
				"Aim for a rise of 4-6 mmol/L in the first hours; critical care review"),
			compose.When("severe_hypo", sodiumBand("severe_hyponatraemia"),
				"Severe hyponatraemia: assess volume status, serum and urine osmolality and urine sodium",
				"Treat in a monitored bed"),
			compose.When("moderate_hypo", sodiumBand("moderate_hyponatraemia"),
				"Moderate hyponatraemia: identify the cause; stop thiazides and other causative drugs"),
			compose.When("mild_hypo", sodiumBand("mild_hyponatraemia"),
				"Mild hyponatraemia: review fluids and medication; recheck in 24 h"),
			compose.When("severe_hyper", sodiumBand("severe_hypernatraemia"),
				"Severe hypernatraemia: replace free water slowly in a monitored bed"),
			compose.When("moderate_hyper", sodiumBand("moderate_hypernatraemia"),
				"Moderate hypernatraemia: replace free water orally or with 5% dextrose"),
			compose.When("mild_hyper", sodiumBand("mild_hypernatraemia"),
				"Mild hypernatraemia: encourage oral water; review insensible losses"),
			compose.Default[assessment]("normal", "Sodium within normal range"),
		},
		Warnings: []compose.Rule[assessment]{
			{Name: "limit", When: func(a assessment) bool { return a.Hypo || a.Hyper }, Lines: limitLine},
		},
	},
	{
		ID:    "potassium",
		Title: "Potassium",
		Cascade: []compose.Rule[assessment]{
			compose.When("severe_hypo", potassiumBand("severe_hypokalaemia"),
				"Severe hypokalaemia: IV potassium chloride with cardiac monitoring, at most 20 mmol/h via central line",
				"Check and replace magnesium"),
			compose.When("hypo", potassiumBand("hypokalaemia"),
				"Hypokalaemia: oral potassium 40-80 mmol/day or IV 10 mmol/h by peripheral line"),
			compose.When("severe_hyper", potassiumBand("severe_hyperkalaemia"),
				"Severe hyperkalaemia: 12-lead ECG; 30 mL 10% calcium gluconate IV over 10 minutes",
				"10 units soluble insulin in 25 g glucose IV; salbutamol 10-20 mg nebulised",
				"Urgent renal referral if refractory"),
			compose.When("hyper", potassiumBand("hyperkalaemia"),
				"Hyperkalaemia: stop potassium supplements and potassium-sparing drugs; repeat with ECG"),
			compose.When("normal", potassiumBand("normal"), "Potassium within normal range"),
		},
	},
	{
		ID:    "fluids",
		Title: "Replacement",
		Cascade: []compose.Rule[assessment]{
			{
				Name: "free_water",
				When: func(a assessment) bool { return a.Hyper },
				Lines: func(a assessment) []string {
					return []string{
						fmt.Sprintf("Free water deficit %.0f mL at target %.0f mmol/L", a.FreeWater, a.Target()),
						fmt.Sprintf("Each litre of %s changes sodium by %.1f mmol/L; about %.0f mL reaches the 24 h limit",
							a.Infusate.Label, a.ChangePerLitre, a.CorrectionVolume),
					}
				},
			},
			{
				Name: "sodium",
				When: func(a assessment) bool { return a.Hypo },
				Lines: func(a assessment) []string {
					return []string{
						fmt.Sprintf("Sodium deficit %.0f mmol at target %.0f mmol/L", a.SodiumDeficit, a.Target()),
						fmt.Sprintf("Each litre of %s changes sodium by %.1f mmol/L; about %.0f mL reaches the 24 h limit",
							a.Infusate.Label, a.ChangePerLitre, a.CorrectionVolume),
					}
				},
			},
		},
	},
	{
		ID:    "warnings",
		Title: "Warnings",
		Warnings: []compose.Rule[assessment]{
			compose.When("demyelination", func(a assessment) bool { return a.Chronic && a.Input.Sodium < 120 },
				"Chronic severe hyponatraemia: high risk of osmotic demyelination if overcorrected; consider desmopressin clamp"),
			compose.When("heart_failure", func(a assessment) bool { return a.Comorbidities.Has(clinical.HeartFailure) },
				"Heart failure: hyponatraemia is usually dilutional; fluid restrict rather than give saline"),
			compose.When("liver_disease", func(a assessment) bool { return a.Comorbidities.Has(clinical.LiverDisease) },
				"Liver disease: correct no faster than 8 mmol/L in 24 h"),
			compose.When("ckd", func(a assessment) bool { return a.Comorbidities.Has(clinical.CKD) && a.Potassium > 5.5 },
				"CKD with hyperkalaemia: low-potassium diet and review ACE inhibitors"),
		},
	},
}
