// Package vte scores venous thromboembolism risk with the Caprini rubric and
// recommends prophylaxis.
package vte

import (
	"fmt"
	"math"

	"github.com/astrobsm/criticalcare/internal/formula"
	"github.com/astrobsm/criticalcare/internal/platform/band"
	"github.com/astrobsm/criticalcare/internal/platform/input"
	"github.com/astrobsm/criticalcare/internal/platform/result"
	"github.com/astrobsm/criticalcare/internal/refdata"
)

const (
	ID    = "vte"
	Title = "Caprini VTE risk"
)

// Factors derived from the input rather than ticked.
const (
	FactorAge41to60    = "age_41_60"
	FactorAge61to74    = "age_61_74"
	FactorAge75Plus    = "age_75_plus"
	FactorBMI25        = "bmi_25_plus"
	FactorMalignancy   = "malignancy"
	FactorMalignancyCx = "malignancy_with_chemotherapy"
	FactorHIT          = "heparin_induced_thrombocytopenia"
)

var derived = []string{
	FactorAge41to60, FactorAge61to74, FactorAge75Plus, FactorBMI25, FactorMalignancy, FactorMalignancyCx,
}

// Tiers bands the Caprini total.
var Tiers = band.MustNew("caprini_risk", 0, math.Inf(1),
	band.Band{Lower: 0, Code: "very_low", Label: "Very Low Risk", Tier: band.Normal},
	band.Band{Lower: 1, Code: "low", Label: "Low Risk", Tier: band.Low},
	band.Band{Lower: 3, Code: "moderate", Label: "Moderate Risk", Tier: band.Moderate},
	band.Band{Lower: 5, Code: "high", Label: "High Risk", Tier: band.High},
	band.Band{Lower: 9, Code: "highest", Label: "Highest Risk", Tier: band.Critical},
)

type assessment struct {
	Input
	Score int
	Tier  band.Band
}

type Calculator struct {
	table *refdata.Caprini
}

// New binds the calculator to a Caprini table, which must define every
// derived factor.
func New(table *refdata.Caprini) (*Calculator, error) {
	for _, id := range derived {
		if !table.Known(id) {
			return nil, fmt.Errorf("vte: caprini table %s lacks factor %s", table.Version, id)
		}
	}
	return &Calculator{table: table}, nil
}

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
	for _, f := range in.Factors.Sorted() {
		if !c.table.Known(f) {
			return nil, result.Invalid("factors", "unknown risk factor %q", f)
		}
	}

	res := result.New(ID)
	bmi := in.BMI
	if bmi == 0 && in.WeightKg > 0 && in.HeightCm > 0 {
		v, err := formula.BMI(in.WeightKg, in.HeightCm)
		if err != nil {
			return nil, result.Validation(err)
		}
		bmi = v
		res.AddQuantity(formula.Quantity("bmi", "Body mass index", bmi, "kg/m²", formula.FBMI, 1))
	}

	factors := in.Factors.With(derive(in, bmi)...)
	sc := c.table.Rubric.Evaluate(factors)
	tier, err := Tiers.Classify(float64(sc.Raw))
	if err != nil {
		return nil, err
	}

	res.Scores = append(res.Scores, sc)
	res.Bands = append(res.Bands, tier.Result(Tiers.Name(), float64(sc.Raw)))
	res.AddFlag("pharmacological_prophylaxis", sc.Raw >= 3 && !in.BleedingRisk && !factors.Has(FactorHIT))

	a := assessment{Input: in, Score: sc.Raw, Tier: tier}
	a.Factors = factors
	res.Sections = protocol.Compose(a)
	return res, nil
}

func derive(in Input, bmi float64) []string {
	var out []string
	switch {
	case in.Age >= 75:
		out = append(out, FactorAge75Plus)
	case in.Age >= 61:
		out = append(out, FactorAge61to74)
	case in.Age >= 41:
		out = append(out, FactorAge41to60)
	}
	if bmi >= 25 {
		out = append(out, FactorBMI25)
	}
	if in.Chemotherapy && in.Factors.Has(FactorMalignancy) {
		out = append(out, FactorMalignancyCx)
	}
	return out
}
