// Package nutrition screens malnutrition risk with MUST and sets energy,
// protein and fluid targets, costing a planned food list against them.
package nutrition

import (
	"github.com/astrobsm/criticalcare/internal/formula"
	"github.com/astrobsm/criticalcare/internal/platform/band"
	"github.com/astrobsm/criticalcare/internal/platform/foodtable"
	"github.com/astrobsm/criticalcare/internal/platform/input"
	"github.com/astrobsm/criticalcare/internal/platform/result"
	"github.com/astrobsm/criticalcare/internal/platform/score"
)

const (
	ID    = "nutrition"
	Title = "Nutrition screening and targets"
)

// MUST is the Malnutrition Universal Screening Tool.
var MUST = score.Rubric[assessment]{
	Name: "must",
	Max:  6,
	Rules: []score.Rule[assessment]{
		{ID: "bmi_18_5_to_20", Points: 1, Group: "bmi", When: func(a assessment) bool { return a.BMI >= 18.5 && a.BMI <= 20 }},
		{ID: "bmi_below_18_5", Points: 2, Group: "bmi", When: func(a assessment) bool { return a.BMI < 18.5 }},
		{ID: "weight_loss_5_to_10", Points: 1, Group: "weight_loss", When: func(a assessment) bool {
			return a.WeightLossPercent >= 5 && a.WeightLossPercent <= 10
		}},
		{ID: "weight_loss_above_10", Points: 2, Group: "weight_loss", When: func(a assessment) bool { return a.WeightLossPercent > 10 }},
		{ID: "acute_disease", Points: 2, When: func(a assessment) bool { return a.AcuteDisease }},
	},
}

// Risk bands the MUST score.
var Risk = band.MustNew("must_risk", 0, 6,
	band.Band{Lower: 0, Code: "low", Label: "Low risk", Tier: band.Low},
	band.Band{Lower: 1, Code: "medium", Label: "Medium risk", Tier: band.Moderate},
	band.Band{Lower: 2, Code: "high", Label: "High risk", Tier: band.High},
)

type assessment struct {
	Input
	BMI          float64
	BMR          float64
	Energy       float64
	Protein      float64
	Fluid        float64
	Risk         band.Band
	Portions     []result.FoodPortion
	PlanKcal     float64
	PlanProtein  float64
	KcalCover    float64
	ProteinCover float64
}

type Calculator struct {
	foods *foodtable.Table
}

func New(foods *foodtable.Table) *Calculator { return &Calculator{foods: foods} }

func (c *Calculator) ID() string    { return ID }
func (c *Calculator) Title() string { return Title }

func (c *Calculator) Calculate(rec input.Record) (*result.Result, error) {
	in, err := Parse(rec)
	if err != nil {
		return nil, err
	}
	return c.Evaluate(in)
}

func (c *Calculator) Evaluate(in Input) (*result.Result, error) {
	a := assessment{Input: in}
	var err error
	if a.BMI, err = formula.BMI(in.WeightKg, in.HeightCm); err != nil {
		return nil, result.Validation(err)
	}
	if a.BMR, err = formula.HarrisBenedict(in.WeightKg, in.HeightCm, in.Age, in.Sex); err != nil {
		return nil, result.Validation(err)
	}
	if a.BMR <= 0 {
		return nil, result.Invalid("age", "gives a non-positive basal metabolic rate")
	}
	activity, ok := activityFactor[in.Activity]
	if !ok {
		return nil, result.Invalid("activity", "must be one of bedbound, ambulatory, active")
	}
	stress, ok := stressFactor[in.WoundSeverity]
	if !ok {
		return nil, result.Invalid("wound_severity", "must be one of none, minor, moderate, severe")
	}
	a.Energy = formula.RoundHalfUp(a.BMR*activity*stress, 0)
	a.Protein = formula.RoundHalfUp(proteinPerKg[in.WoundSeverity]*in.WeightKg, 0)
	a.Fluid = 30 * in.WeightKg

	for _, f := range in.Foods {
		p, err := c.foods.Portion(f.Name, f.Grams)
		if err != nil {
			return nil, err
		}
		a.Portions = append(a.Portions, p)
		a.PlanKcal += p.Kcal
		a.PlanProtein += p.ProteinG
	}
	if len(a.Portions) > 0 {
		a.KcalCover = a.PlanKcal / a.Energy * 100
		a.ProteinCover = a.PlanProtein / a.Protein * 100
	}

	sc := MUST.Evaluate(a)
	if a.Risk, err = Risk.Classify(float64(sc.Raw)); err != nil {
		return nil, err
	}

	res := result.New(ID)
	res.Scores = append(res.Scores, sc)
	res.Bands = append(res.Bands, a.Risk.Result(Risk.Name(), float64(sc.Raw)))
	res.AddQuantity(
		formula.Quantity("bmi", "Body mass index", a.BMI, "kg/m²", formula.FBMI, 1),
		formula.Quantity("bmr", "Basal metabolic rate", a.BMR, "kcal/day", formula.FHarrisBenedict, 0),
		formula.Quantity("energy_target", "Energy target", a.Energy, "kcal/day", formula.FEnergyTarget, 0),
		formula.Quantity("protein_target", "Protein target", a.Protein, "g/day", formula.FWeightBased, 0),
		formula.Quantity("fluid_target", "Fluid target", a.Fluid, "mL/day", formula.FWeightBased, 0),
	)
	if len(a.Portions) > 0 {
		res.Portions = a.Portions
		res.AddQuantity(
			formula.Quantity("plan_kcal", "Planned energy", a.PlanKcal, "kcal", "food_composition", 0),
			formula.Quantity("plan_protein", "Planned protein", a.PlanProtein, "g", "food_composition", 1),
			formula.Quantity("plan_kcal_coverage", "Energy target covered", a.KcalCover, "%", "food_composition", 0),
			formula.Quantity("plan_protein_coverage", "Protein target covered", a.ProteinCover, "%", "food_composition", 0),
		)
	}
	res.AddFlag("refeeding_risk", a.refeedingRisk())
	res.Sections = protocol.Compose(a)
	return res, nil
}

// refeedingRisk follows the NICE criteria on BMI and weight loss.
func (a assessment) refeedingRisk() bool {
	return a.BMI < 16 || a.WeightLossPercent > 15
}
