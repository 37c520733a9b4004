package preop

import (
	"fmt"

	"github.com/astrobsm/criticalcare/internal/platform/clinical"
	"github.com/astrobsm/criticalcare/internal/platform/compose"
)

func readiness(l int) func(assessment) bool {
	return func(a assessment) bool { return a.Level == l }
}

func findingLines(a assessment) []string {
	lines := make([]string, 0, len(a.Findings))
	for _, f := range a.Findings {
		tag := "optimise"
		if f.Level == Defer {
			tag = "critical"
		}
		lines = append(lines, fmt.Sprintf("%s (%s)", f.Text, tag))
	}
	return lines
}

func has(id string) func(assessment) bool {
	return func(a assessment) bool { return a.Comorbidities.Has(id) }
}

var protocol = compose.Plan[assessment]{
	{
		ID:    "preoperative",
		Title: "Readiness",
		Cascade: []compose.Rule[assessment]{
			compose.When("emergency", assessment.emergency,
				"Emergency surgery: proceed with concurrent resuscitation; correct abnormal values in theatre"),
			compose.When("urgent_defer", func(a assessment) bool { return a.Urgency == Urgent && a.Level == Defer },
				"Urgent surgery with critical values: correct before induction and discuss timing with the anaesthetist"),
			compose.When("defer", readiness(Defer),
				"Defer elective surgery until critical values are corrected"),
			compose.When("optimise", readiness(Optimise),
				"Optimise before surgery; proceed once values are corrected or the risk is accepted"),
			compose.Default[assessment]("ready", "Ready for surgery: no abnormal results in the work-up"),
		},
		Warnings: []compose.Rule[assessment]{
			{Name: "findings", When: func(a assessment) bool { return len(a.Findings) > 0 }, Lines: findingLines},
		},
	},
	{
		ID:    "glycaemic",
		Title: "Glycaemic control",
		Cascade: []compose.Rule[assessment]{
			compose.When("hypoglycaemia", func(a assessment) bool { return a.Glucose > 0 && a.Glucose < 4 },
				"Hypoglycaemia: 15-20 g fast-acting glucose or 100 mL 20% dextrose IV; recheck in 15 minutes"),
			compose.When("severe_hyperglycaemia", func(a assessment) bool { return a.Glucose > 15 },
				"Glucose above 15 mmol/L: check ketones; variable-rate intravenous insulin infusion"),
			compose.When("hyperglycaemia", func(a assessment) bool { return a.Glucose > 10 },
				"Glucose above 10 mmol/L: review hypoglycaemic therapy; target 6-10 mmol/L peri-operatively"),
			compose.When("diabetes", has(clinical.Diabetes),
				"Diabetes: first on the list; capillary glucose hourly during surgery, target 6-10 mmol/L"),
		},
	},
	{
		ID:    "renal",
		Title: "Renal",
		Cascade: []compose.Rule[assessment]{
			compose.When("severe", func(a assessment) bool { return a.HasEGFR && a.EGFR < 30 },
				"eGFR below 30: avoid nephrotoxins and contrast; adjust renally cleared drugs; renal review"),
			compose.When("moderate", func(a assessment) bool { return a.HasEGFR && a.EGFR < 60 },
				"eGFR 30-59: avoid NSAIDs; maintain perfusion pressure and hydration"),
		},
	},
	{
		ID:    "postoperative",
		Title: "Post-operative care",
		Boilerplate: []string{
			"Early mobilisation; VTE prophylaxis according to risk assessment",
			"Resume oral intake as soon as tolerated",
		},
		Warnings: []compose.Rule[assessment]{
			compose.When("albumin", func(a assessment) bool { return a.Albumin > 0 && a.Albumin < 30 },
				"Low albumin: higher risk of wound breakdown and anastomotic leak; dietitian review"),
			compose.When("anticoagulant", func(a assessment) bool { return a.Anticoagulant },
				"Restart anticoagulation once haemostasis is secure"),
		},
	},
	{
		ID:    "endpoints",
		Title: "Targets",
		Boilerplate: []string{
			"MAP at least 65 mmHg",
			"Urine output at least 0.5 mL/kg/h",
			"Haemoglobin above 7 g/dL (above 8 g/dL with cardiac disease)",
		},
		Warnings: []compose.Rule[assessment]{
			{Name: "map", When: func(a assessment) bool { return a.HasMAP }, Lines: func(a assessment) []string {
				return []string{fmt.Sprintf("Current MAP %.0f mmHg", a.MAP)}
			}},
		},
	},
	{
		ID:    "warnings",
		Title: "Warnings",
		Warnings: []compose.Rule[assessment]{
			compose.When("anticoagulant", func(a assessment) bool { return a.Anticoagulant },
				"Anticoagulated: plan bridging or reversal; check coagulation before neuraxial anaesthesia"),
			compose.When("heart_failure", has(clinical.HeartFailure),
				"Heart failure: echocardiogram and cardiology review if symptoms have changed"),
			compose.When("copd", has(clinical.COPD),
				"COPD: optimise bronchodilators; consider regional anaesthesia"),
			compose.When("pregnancy", has(clinical.Pregnancy),
				"Pregnancy: obstetric review; left lateral tilt after 20 weeks"),
			compose.When("ckd", has(clinical.CKD),
				"CKD: check potassium on the morning of surgery"),
		},
	},
}
