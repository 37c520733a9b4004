package sepsis

import (
	"fmt"

	"github.com/astrobsm/criticalcare/internal/platform/clinical"
	"github.com/astrobsm/criticalcare/internal/platform/compose"
)

var protocol = compose.Plan[assessment]{
	{
		ID:    "triage",
		Title: "Triage",
		Cascade: []compose.Rule[assessment]{
			compose.When("septic_shock", func(a assessment) bool { return a.Shock },
				"SEPTIC SHOCK: immediate senior review and critical care referral",
				"Start the sepsis bundle now; do not wait for results"),
			compose.When("sepsis", func(a assessment) bool { return a.Sepsis },
				"SEPSIS LIKELY: complete the sepsis bundle within 1 hour",
				"Escalate to the medical registrar"),
			compose.When("sirs_one", func(a assessment) bool { return a.SIRS == 1 || a.QSOFA == 1 },
				"Sepsis screen borderline: repeat observations within 1 hour"),
			compose.Default[assessment]("low", "Sepsis screen negative: routine observations"),
		},
	},
	{
		ID:    "airway",
		Title: "Airway and breathing",
		Cascade: []compose.Rule[assessment]{
			compose.When("unprotected", func(a assessment) bool {
				return (a.GCS > 0 && a.GCS <= 8) || a.AVPU == clinical.Unresponsive
			}, "GCS 8 or below: airway at risk, call anaesthetics for airway protection"),
			compose.When("hypoxic", func(a assessment) bool { return a.SpO2 > 0 && a.SpO2 < 90 },
				"Hypoxaemia: high-flow oxygen 15 L/min via non-rebreather mask",
				"Arterial blood gas and chest X-ray"),
			compose.Default[assessment]("maintained", "Oxygen to target SpO₂ 94-98% (88-92% if at risk of hypercapnia)"),
		},
		Warnings: []compose.Rule[assessment]{
			compose.When("copd", func(a assessment) bool { return a.has(clinical.COPD) },
				"COPD: titrate oxygen to SpO₂ 88-92% and recheck blood gas"),
		},
	},
	{
		ID:    "circulation",
		Title: "Circulation",
		Cascade: []compose.Rule[assessment]{
			compose.When("shock", func(a assessment) bool { return a.Shock && a.HasMAP && a.MAP < 65 },
				"MAP below 65 mmHg despite fluids: start noradrenaline via central or large-bore access",
				"Arterial line for continuous pressure monitoring"),
			{
				Name: "bolus",
				When: func(a assessment) bool { return a.Bolus },
				Lines: func(a assessment) []string {
					if a.BolusML > 0 {
						return []string{fmt.Sprintf("Give 30 mL/kg crystalloid (%.0f mL) within 3 hours; reassess after each 500 mL", a.BolusML)}
					}
					return []string{"Give 30 mL/kg crystalloid within 3 hours; record weight to calculate the volume"}
				},
			},
			compose.Default[assessment]("stable", "Haemodynamically stable: maintenance fluids and reassess hourly"),
		},
		Warnings: []compose.Rule[assessment]{
			compose.When("heart_failure", func(a assessment) bool { return a.Bolus && a.has(clinical.HeartFailure) },
				"Heart failure: give fluid in 250 mL aliquots and reassess for overload after each"),
		},
	},
	{
		ID:    "sepsis",
		Title: "Sepsis bundle",
		Cascade: []compose.Rule[assessment]{
			compose.When("bundle", func(a assessment) bool { return a.Sepsis },
				"Blood cultures before antibiotics",
				"Broad-spectrum IV antibiotics within 1 hour",
				"Measure lactate; repeat within 2 hours if above 2 mmol/L",
				"Identify and control the source of infection"),
		},
		Warnings: []compose.Rule[assessment]{
			compose.When("immunosuppressed", func(a assessment) bool { return a.has(clinical.Immunosupp) },
				"Immunosuppressed: treat as neutropenic sepsis until proven otherwise"),
			compose.When("ckd", func(a assessment) bool { return a.Sepsis && a.has(clinical.CKD) },
				"CKD: adjust antibiotic doses to renal function"),
		},
	},
	{
		ID:    "glycaemic",
		Title: "Glycaemic control",
		Cascade: []compose.Rule[assessment]{
			compose.When("hyperglycaemia", func(a assessment) bool { return a.Glucose > 10 },
				"Glucose above 10 mmol/L: start variable-rate insulin infusion, target 6-10 mmol/L"),
			compose.When("hypoglycaemia", func(a assessment) bool { return a.Glucose > 0 && a.Glucose < 4 },
				"Hypoglycaemia: 100 mL 20% glucose IV and recheck in 15 minutes"),
			compose.Default[assessment]("monitor", "Monitor capillary glucose 4-hourly"),
		},
		Warnings: []compose.Rule[assessment]{
			compose.When("diabetes", func(a assessment) bool { return a.has(clinical.Diabetes) },
				"Diabetes: hourly glucose while on insulin; withhold metformin"),
		},
	},
	{
		ID:    "renal",
		Title: "Renal",
		Cascade: []compose.Rule[assessment]{
			compose.When("oliguria", func(a assessment) bool { return a.UrineOutput > 0 && a.UrineOutput < 0.5 },
				"Oliguria below 0.5 mL/kg/h: review fluid status and check creatinine and potassium"),
			compose.Default[assessment]("monitor", "Catheterise if shocked; record hourly urine output"),
		},
	},
	{
		ID:    "endpoints",
		Title: "Resuscitation endpoints",
		Cascade: []compose.Rule[assessment]{
			{
				Name: "urine",
				When: func(a assessment) bool { return a.WeightKg > 0 },
				Lines: func(a assessment) []string {
					return []string{fmt.Sprintf("Urine output at least 0.5 mL/kg/h (%.0f mL/h)", a.UrineMLh)}
				},
			},
			compose.Default[assessment]("urine", "Urine output at least 0.5 mL/kg/h"),
		},
		Boilerplate: []string{
			"MAP 65 mmHg or above",
			"Lactate falling towards normal",
			"Capillary refill under 3 seconds and improving mental state",
		},
	},
	{
		ID:    "warnings",
		Title: "Warnings",
		Warnings: []compose.Rule[assessment]{
			compose.When("pregnancy", func(a assessment) bool { return a.has(clinical.Pregnancy) },
				"Pregnancy: involve obstetrics; physiology masks deterioration"),
			compose.When("anticoagulated", func(a assessment) bool { return a.has(clinical.Anticoagulant) },
				"Anticoagulated: check clotting before central access"),
			compose.When("liver_disease", func(a assessment) bool { return a.has(clinical.LiverDisease) },
				"Liver disease: lactate clearance is slower; interpret trends with caution"),
		},
	},
}
