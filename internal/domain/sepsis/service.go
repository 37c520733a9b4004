// Package sepsis screens for sepsis with qSOFA and SIRS, derives the shock and
// fluid-bolus flags, and composes the resuscitation bundle.
package sepsis

import (
	"github.com/astrobsm/criticalcare/internal/formula"
	"github.com/astrobsm/criticalcare/internal/platform/band"
	"github.com/astrobsm/criticalcare/internal/platform/input"
	"github.com/astrobsm/criticalcare/internal/platform/result"
	"github.com/astrobsm/criticalcare/internal/platform/score"
)

const (
	ID    = "sepsis"
	Title = "Sepsis screening and bundle"
)

// QSOFA is the quick SOFA bedside score.
var QSOFA = score.Rubric[Input]{
	Name: "qsofa",
	Max:  3,
	Rules: []score.Rule[Input]{
		score.Criterion("respiratory_rate_22_plus", func(in Input) bool { return in.RespiratoryRate >= 22 }),
		score.Criterion("systolic_bp_100_or_less", func(in Input) bool { return in.SystolicBP > 0 && in.SystolicBP <= 100 }),
		score.Criterion("altered_mentation", Input.Altered),
	},
}

// SIRS is the systemic inflammatory response score.
var SIRS = score.Rubric[Input]{
	Name: "sirs",
	Max:  4,
	Rules: []score.Rule[Input]{
		score.Criterion("temperature_abnormal", func(in Input) bool {
			return in.Temperature > 0 && (in.Temperature < 36 || in.Temperature > 38)
		}),
		score.Criterion("heart_rate_above_90", func(in Input) bool { return in.HeartRate > 90 }),
		score.Criterion("respiratory_rate_above_20", func(in Input) bool { return in.RespiratoryRate > 20 }),
		score.Criterion("wbc_abnormal", func(in Input) bool {
			return in.WBC > 0 && (in.WBC < 4 || in.WBC > 12)
		}),
	},
}

// Risk bands the qSOFA score.
var Risk = band.MustNew("qsofa_risk", 0, 3,
	band.Band{Lower: 0, Code: "low", Label: "qSOFA low risk", Tier: band.Low},
	band.Band{Lower: 2, Code: "high", Label: "qSOFA high risk of poor outcome", Tier: band.High},
)

type assessment struct {
	Input
	QSOFA    int
	SIRS     int
	MAP      float64
	HasMAP   bool
	Sepsis   bool
	Shock    bool
	Bolus    bool
	BolusML  float64
	UrineMLh float64
}

type Calculator struct{}

func New() *Calculator { return &Calculator{} }

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
	q := QSOFA.Evaluate(in)
	s := SIRS.Evaluate(in)
	a := assessment{Input: in, QSOFA: q.Raw, SIRS: s.Raw}
	a.MAP, a.HasMAP = formula.MAP(in.SystolicBP, in.DiastolicBP)
	a.Sepsis = a.QSOFA >= 2 || a.SIRS >= 2
	lowMAP := a.HasMAP && a.MAP < 65
	a.Shock = a.Sepsis && (lowMAP || in.Lactate > 2)
	a.Bolus = lowMAP || in.Lactate >= 4
	if a.Bolus && in.WeightKg > 0 {
		a.BolusML = 30 * in.WeightKg
	}
	a.UrineMLh = 0.5 * in.WeightKg

	risk, err := Risk.Result(float64(a.QSOFA))
	if err != nil {
		return nil, err
	}

	res := result.New(ID)
	res.Scores = append(res.Scores, q, s)
	res.Bands = append(res.Bands, risk)
	if a.HasMAP {
		res.AddQuantity(formula.Quantity("map", "Mean arterial pressure", a.MAP, "mmHg", formula.FMAP, 0))
	}
	if a.BolusML > 0 {
		res.AddQuantity(formula.Quantity("fluid_bolus", "Crystalloid bolus (30 mL/kg)", a.BolusML, "mL", formula.FWeightBased, 0))
	}
	if in.WeightKg > 0 {
		res.AddQuantity(formula.Quantity("urine_output_target", "Urine output target (0.5 mL/kg/h)", a.UrineMLh, "mL/h", formula.FWeightBased, 0))
	}
	res.AddFlag("sepsis", a.Sepsis)
	res.AddFlag("septic_shock", a.Shock)
	res.AddFlag("fluid_bolus_indicated", a.Bolus)
	res.Sections = protocol.Compose(a)
	return res, nil
}

func (a assessment) has(c string) bool { return a.Comorbidities.Has(c) }
