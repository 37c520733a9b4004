// Package preop judges pre-operative readiness from routine bloods and blood
// pressure, and composes the peri-operative plan.
package preop

import (
	"fmt"

	"github.com/astrobsm/criticalcare/internal/formula"
	"github.com/astrobsm/criticalcare/internal/platform/band"
	"github.com/astrobsm/criticalcare/internal/platform/input"
	"github.com/astrobsm/criticalcare/internal/platform/result"
)

const (
	ID    = "preop"
	Title = "Pre-operative readiness"
)

// Readiness levels.
const (
	Ready    = 0
	Optimise = 1
	Defer    = 2
)

// Readiness bands the worst finding.
var Readiness = band.MustNew("readiness", Ready, Defer,
	band.Band{Lower: Ready, Code: "ready", Label: "Ready for surgery", Tier: band.Normal},
	band.Band{Lower: Optimise, Code: "optimise", Label: "Optimise before surgery", Tier: band.Moderate},
	band.Band{Lower: Defer, Code: "defer", Label: "Defer surgery", Tier: band.High},
)

// check grades one measured value. An unset threshold never fires.
type check struct {
	id       string
	label    string
	unit     string
	value    func(assessment) float64
	critical func(float64) bool
	abnormal func(float64) bool
}

func below(x float64) func(float64) bool { return func(v float64) bool { return v < x } }
func above(x float64) func(float64) bool { return func(v float64) bool { return v > x } }
func atLeast(x float64) func(float64) bool { return func(v float64) bool { return v >= x } }

func outside(lo, hi float64) func(float64) bool {
	return func(v float64) bool { return v < lo || v > hi }
}

var checks = []check{
	{"haemoglobin", "Haemoglobin", "g/dL", func(a assessment) float64 { return a.Haemoglobin }, below(8), below(10)},
	{"glucose", "Glucose", "mmol/L", func(a assessment) float64 { return a.Glucose }, outside(4, 15), above(10)},
	{"potassium", "Potassium", "mmol/L", func(a assessment) float64 { return a.Potassium }, outside(3.0, 6.0), outside(3.5, 5.5)},
	{"sodium", "Sodium", "mmol/L", func(a assessment) float64 { return a.Sodium }, outside(125, 155), outside(130, 150)},
	{"systolic_bp", "Systolic BP", "mmHg", func(a assessment) float64 { return a.SystolicBP }, atLeast(180), nil},
	{"diastolic_bp", "Diastolic BP", "mmHg", func(a assessment) float64 { return a.DiastolicBP }, atLeast(110), nil},
	{"albumin", "Albumin", "g/L", func(a assessment) float64 { return a.Albumin }, nil, below(30)},
	{"egfr", "eGFR", "mL/min/1.73m²", func(a assessment) float64 { return a.EGFR }, nil, below(30)},
}

// Finding is an abnormal pre-operative value.
type Finding struct {
	ID    string
	Level int
	Text  string
}

type assessment struct {
	Input
	EGFR      float64
	HasEGFR   bool
	CrCl      float64
	MAP       float64
	HasMAP    bool
	Findings  []Finding
	Level     int
	Readiness band.Band
}

func (a assessment) emergency() bool { return a.Urgency == Emergency }

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
	a, err := assess(in)
	if err != nil {
		return nil, result.Validation(err)
	}

	res := result.New(ID)
	res.Bands = append(res.Bands, a.Readiness.Result(Readiness.Name(), float64(a.Level)))
	if a.HasEGFR {
		res.AddQuantity(formula.Quantity("egfr", "eGFR", a.EGFR, "mL/min/1.73m²", formula.FCKDEPI, 0))
	}
	if a.CrCl > 0 {
		res.AddQuantity(formula.Quantity("creatinine_clearance", "Creatinine clearance", a.CrCl, "mL/min", formula.FCockcroftGault, 0))
	}
	if a.HasMAP {
		res.AddQuantity(formula.Quantity("map", "Mean arterial pressure", a.MAP, "mmHg", formula.FMAP, 0))
	}
	res.AddFlag("emergency", a.emergency())
	res.AddFlag("ready", a.Level == Ready)
	res.AddFlag("anticoagulated", in.Anticoagulant)
	res.Sections = protocol.Compose(a)
	return res, nil
}

func assess(in Input) (assessment, error) {
	a := assessment{Input: in}
	a.MAP, a.HasMAP = formula.MAP(in.SystolicBP, in.DiastolicBP)

	if in.Creatinine > 0 && in.Age > 0 && in.Sex != "" {
		egfr, err := formula.CKDEPI2021(in.Creatinine, in.Age, in.Sex)
		if err != nil {
			return a, err
		}
		a.EGFR, a.HasEGFR = egfr, true
		if in.WeightKg > 0 {
			if a.CrCl, err = formula.CockcroftGault(in.Age, in.WeightKg, in.Creatinine, in.Sex); err != nil {
				return a, err
			}
		}
	}

	for _, c := range checks {
		v := c.value(a)
		if v <= 0 {
			continue
		}
		var level int
		switch {
		case c.critical != nil && c.critical(v):
			level = Defer
		case c.abnormal != nil && c.abnormal(v):
			level = Optimise
		default:
			continue
		}
		a.Findings = append(a.Findings, Finding{
			ID:    c.id,
			Level: level,
			Text:  fmt.Sprintf("%s %g %s", c.label, v, c.unit),
		})
		if level > a.Level {
			a.Level = level
		}
	}

	var err error
	if a.Readiness, err = Readiness.Classify(float64(a.Level)); err != nil {
		return a, err
	}
	return a, nil
}
