// Package burns assesses a burn: severity, Parkland resuscitation with a
// schedule adjusted to the time since injury, evaporative loss, urine output
// target and the triage, airway and fluid protocol.
package burns

import (
	"github.com/astrobsm/criticalcare/internal/formula"
	"github.com/astrobsm/criticalcare/internal/platform/band"
	"github.com/astrobsm/criticalcare/internal/platform/input"
	"github.com/astrobsm/criticalcare/internal/platform/result"
)

const (
	ID    = "burns"
	Title = "Burns resuscitation"
)

// Severity classifies %TBSA.
var Severity = band.MustNew("burn_severity", 0, 100,
	band.Band{Lower: 0, Code: "minor", Label: "Minor burn", Tier: band.Low},
	band.Band{Lower: 10, Code: "moderate", Label: "Moderate burn", Tier: band.Moderate},
	band.Band{Lower: 20, Code: "major", Label: "Major burn", Tier: band.High},
	band.Band{Lower: 40, Code: "critical", Label: "Critical burn", Tier: band.Critical},
)

// assessment is everything the protocol rules read.
type assessment struct {
	Input
	TBSA      float64
	Severity  band.Band
	Parkland  formula.Parkland
	Schedule  formula.Schedule
	Formal    bool
	Referral  bool
	HeadBurn  bool
	UrineRate float64
	UrineML   float64
}

type Calculator struct{}

func New() *Calculator { return &Calculator{} }

func (c *Calculator) ID() string    { return ID }
func (c *Calculator) Title() string { return Title }

// Calculate parses rec and evaluates it.
func (c *Calculator) Calculate(rec input.Record) (*result.Result, error) {
	in, err := Parse(rec)
	if err != nil {
		return nil, err
	}
	return c.Evaluate(in)
}

// Evaluate assesses a parsed input.
func (c *Calculator) Evaluate(in Input) (*result.Result, error) {
	a, err := assess(in)
	if err != nil {
		return nil, result.Validation(err)
	}

	res := result.New(ID)
	res.Bands = append(res.Bands, a.Severity.Result(Severity.Name(), a.TBSA))
	res.AddQuantity(formula.Quantity("tbsa", "Total body surface area burned", a.TBSA, "%", tbsaFormula(in), 1))
	res.AddQuantity(a.Parkland.Quantities()...)
	res.AddQuantity(
		formula.Quantity("parkland_remaining_window", "Volume still due in current window", a.Schedule.RemainingML, "mL", formula.FParklandCatchUp, 0),
		formula.Quantity("parkland_adjusted_rate", "Adjusted infusion rate", a.Schedule.Rate, "mL/h", formula.FParklandCatchUp, 0),
	)

	if in.HeightCm > 0 {
		bsa, err := formula.DuBois(in.WeightKg, in.HeightCm)
		if err != nil {
			return nil, result.Validation(err)
		}
		hourly, daily, err := formula.EvaporativeLoss(a.TBSA, bsa)
		if err != nil {
			return nil, result.Validation(err)
		}
		res.AddQuantity(
			formula.Quantity("bsa", "Body surface area", bsa, "m²", formula.FDuBois, 2),
			formula.Quantity("evaporative_loss_hourly", "Evaporative loss", hourly, "mL/h", formula.FEvaporative, 0),
			formula.Quantity("evaporative_loss_daily", "Evaporative loss (24 h)", daily, "mL", formula.FEvaporative, 0),
		)
	}
	if in.Paediatric() {
		ml, err := formula.HollidaySegar(in.WeightKg)
		if err != nil {
			return nil, result.Validation(err)
		}
		res.AddQuantity(
			formula.Quantity("maintenance_daily", "Maintenance fluid (added to Parkland)", ml, "mL/day", formula.FHollidaySegar, 0),
			formula.Quantity("maintenance_hourly", "Maintenance rate", ml/24, "mL/h", formula.FHollidaySegar, 0),
		)
	}
	res.AddQuantity(formula.Quantity("urine_output_target", "Urine output target", a.UrineML, "mL/h", formula.FWeightBased, 0))

	res.AddFlag("formal_resuscitation", a.Formal)
	res.AddFlag("paediatric", in.Paediatric())
	res.AddFlag("burn_centre_referral", a.Referral)
	res.Sections = protocol.Compose(a)
	return res, nil
}

func assess(in Input) (assessment, error) {
	a := assessment{Input: in, TBSA: in.TBSA}
	if len(in.Regions) > 0 {
		t, err := formula.TBSA(in.Regions, in.child())
		if err != nil {
			return a, err
		}
		a.TBSA = t
		for _, r := range in.Regions {
			if r.Name == formula.RegionHead && r.Percent > 0 {
				a.HeadBurn = true
			}
		}
	}
	sev, err := Severity.Classify(a.TBSA)
	if err != nil {
		return a, err
	}
	a.Severity = sev

	if a.Parkland, err = formula.ParklandFluid(in.WeightKg, a.TBSA); err != nil {
		return a, err
	}
	if a.Schedule, err = a.Parkland.Schedule(in.HoursSinceBurn, in.FluidGivenML); err != nil {
		return a, err
	}

	threshold := 20.0
	if in.Paediatric() {
		threshold = 10
	}
	a.Formal = a.TBSA >= threshold
	a.Referral = a.Formal || in.Inhalation || in.Electrical || a.HeadBurn || hasPerineum(in.Regions)

	a.UrineRate = 0.5
	if in.Paediatric() || in.Electrical {
		a.UrineRate = 1.0
	}
	a.UrineML = a.UrineRate * in.WeightKg
	return a, nil
}

func hasPerineum(regions []formula.Region) bool {
	for _, r := range regions {
		if r.Name == formula.RegionPerineum && r.Percent > 0 {
			return true
		}
	}
	return false
}

func tbsaFormula(in Input) string {
	if len(in.Regions) > 0 {
		return formula.FRuleOfNines
	}
	return "reported"
}

func (a assessment) has(c string) bool { return a.Comorbidities.Has(c) }
