package vte

import (
	"github.com/astrobsm/criticalcare/internal/platform/clinical"
	"github.com/astrobsm/criticalcare/internal/platform/compose"
)

func tier(code string) func(assessment) bool {
	return func(a assessment) bool { return a.Tier.Code == code }
}

var protocol = compose.Plan[assessment]{
	{
		ID:    "prophylaxis",
		Title: "VTE prophylaxis",
		Cascade: []compose.Rule[assessment]{
			compose.When("highest", tier("highest"),
				"Pharmacological prophylaxis: enoxaparin 40 mg SC once daily",
				"Add mechanical prophylaxis with intermittent pneumatic compression",
				"Consider extended prophylaxis for 4 weeks after major abdominal or pelvic cancer surgery"),
			compose.When("high", tier("high"),
				"Pharmacological prophylaxis: enoxaparin 40 mg SC once daily",
				"Add mechanical prophylaxis with intermittent pneumatic compression"),
			compose.When("moderate", tier("moderate"),
				"Pharmacological prophylaxis (enoxaparin 40 mg SC once daily) or intermittent pneumatic compression"),
			compose.When("low", tier("low"),
				"Mechanical prophylaxis with intermittent pneumatic compression"),
			compose.Default[assessment]("very_low", "Early and frequent ambulation"),
		},
		Boilerplate: []string{
			"Start within 14 hours of admission or 6-12 hours after surgery",
			"Reassess VTE and bleeding risk within 24 hours and whenever the clinical picture changes",
		},
	},
	{
		ID:    "warnings",
		Title: "Warnings",
		Warnings: []compose.Rule[assessment]{
			compose.When("bleeding", func(a assessment) bool { return a.BleedingRisk },
				"High bleeding risk: pharmacological prophylaxis contraindicated; use mechanical prophylaxis only"),
			compose.When("renal", func(a assessment) bool { return a.GFR > 0 && a.GFR < 30 },
				"GFR below 30: reduce enoxaparin to 20 mg SC once daily or use unfractionated heparin 5000 units SC every 12 h"),
			compose.When("hit", func(a assessment) bool { return a.Factors.Has(FactorHIT) },
				"History of heparin-induced thrombocytopenia: avoid all heparins; use fondaparinux or mechanical prophylaxis"),
			compose.When("anticoagulated", func(a assessment) bool { return a.Comorbidities.Has(clinical.Anticoagulant) },
				"Already therapeutically anticoagulated: no additional prophylaxis"),
			compose.When("pregnancy", func(a assessment) bool { return a.Comorbidities.Has(clinical.Pregnancy) },
				"Pregnancy: use weight-based enoxaparin dosing"),
		},
	},
}
