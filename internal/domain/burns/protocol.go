package burns

import (
	"fmt"

	"github.com/astrobsm/criticalcare/internal/platform/clinical"
	"github.com/astrobsm/criticalcare/internal/platform/compose"
)

func severity(code string) func(assessment) bool {
	return func(a assessment) bool { return a.Severity.Code == code }
}

var protocol = compose.Plan[assessment]{
	{
		ID:    "triage",
		Title: "Triage",
		Cascade: []compose.Rule[assessment]{
			compose.When("critical", severity("critical"),
				"CRITICAL BURN: activate trauma/burn team and resuscitate in a critical care area",
				"Two large-bore IV cannulae, urinary catheter and hourly observations",
				"Discuss with the regional burn centre immediately"),
			compose.When("major", severity("major"),
				"MAJOR BURN: formal fluid resuscitation and burn centre referral",
				"Large-bore IV access and urinary catheter"),
			compose.When("moderate", severity("moderate"),
				"MODERATE BURN: admit for observation and wound care",
				"IV access; formal resuscitation if paediatric or fluid losses exceed intake"),
			compose.Default[assessment]("minor",
				"MINOR BURN: outpatient or short-stay management",
				"Cool the burn, simple analgesia and dressing review in 48 hours"),
		},
		Boilerplate: []string{
			"Remove jewellery and clothing; cool the burn with running water for 20 minutes",
			"Keep the patient warm; cover with cling film",
			"Tetanus prophylaxis as indicated",
		},
	},
	{
		ID:    "airway",
		Title: "Airway",
		Cascade: []compose.Rule[assessment]{
			compose.When("inhalation", func(a assessment) bool { return a.Inhalation },
				"Suspected inhalation injury: early senior anaesthetic review for intubation",
				"100% oxygen via non-rebreather mask; check carboxyhaemoglobin",
				"Do not cut the endotracheal tube; facial swelling will progress"),
			compose.When("head", func(a assessment) bool { return a.HeadBurn },
				"Head and neck burn: reassess the airway hourly for oedema",
				"Nurse head-up at 30 degrees"),
			compose.Default[assessment]("patent", "Airway patent; supplemental oxygen if SpO₂ below 94%"),
		},
	},
	{
		ID:    "fluids",
		Title: "Fluid resuscitation",
		Cascade: []compose.Rule[assessment]{
			{
				Name: "formal",
				When: func(a assessment) bool { return a.Formal },
				Lines: func(a assessment) []string {
					return []string{
						fmt.Sprintf("Parkland: %.0f mL Hartmann's solution over 24 h from time of burn", a.Parkland.TotalML),
						fmt.Sprintf("First 8 h: %.0f mL (%.0f mL/h); next 16 h: %.0f mL (%.0f mL/h)",
							a.Parkland.First8hML, a.Parkland.First8hRate, a.Parkland.Next16hML, a.Parkland.Next16hRate),
						fmt.Sprintf("%.0f h since burn: run %.0f mL/h to deliver the remaining %.0f mL of the %s window",
							a.HoursSinceBurn, a.Schedule.Rate, a.Schedule.RemainingML, windowLabel(a.Schedule.Window)),
					}
				},
			},
			compose.Default[assessment]("oral",
				"Formal resuscitation not required; encourage oral fluids",
				"IV maintenance only if oral intake is inadequate"),
		},
		Warnings: []compose.Rule[assessment]{
			compose.When("paediatric", func(a assessment) bool { return a.Paediatric() },
				"Child: add maintenance fluid with dextrose to the Parkland volume; check glucose 4-hourly"),
		},
	},
	{
		ID:    "endpoints",
		Title: "Resuscitation endpoints",
		Cascade: []compose.Rule[assessment]{
			{
				Name: "urine",
				Lines: func(a assessment) []string {
					return []string{fmt.Sprintf("Target urine output %.1f mL/kg/h (%.0f mL/h)", a.UrineRate, a.UrineML)}
				},
			},
		},
		Boilerplate: []string{
			"Titrate fluids hourly to urine output; avoid fluid creep",
			"Monitor heart rate, blood pressure, lactate and core temperature",
		},
	},
	{
		ID:    "warnings",
		Title: "Warnings",
		Warnings: []compose.Rule[assessment]{
			compose.When("heart_failure", func(a assessment) bool { return a.has(clinical.HeartFailure) },
				"Heart failure: titrate resuscitation carefully; consider invasive monitoring"),
			compose.When("ckd", func(a assessment) bool { return a.has(clinical.CKD) },
				"CKD: urine output is an unreliable endpoint; monitor creatinine and potassium"),
			compose.When("diabetes", func(a assessment) bool { return a.has(clinical.Diabetes) },
				"Diabetes: hourly capillary glucose; expect stress hyperglycaemia"),
			compose.When("electrical", func(a assessment) bool { return a.Electrical },
				"Electrical injury: 12-lead ECG and cardiac monitoring; check CK and urine for myoglobin",
				"Surface burn underestimates deep tissue injury; watch for compartment syndrome"),
		},
	},
}

func windowLabel(w string) string {
	if w == "first_8h" {
		return "first 8 h"
	}
	return "remaining 24 h"
}
