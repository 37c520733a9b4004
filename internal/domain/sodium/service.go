// Package sodium calculates water and sodium deficits, the expected effect of
// replacement fluids and the safe correction rate, and interprets potassium.
package sodium

import (
	"math"

	"github.com/astrobsm/criticalcare/internal/formula"
	"github.com/astrobsm/criticalcare/internal/platform/band"
	"github.com/astrobsm/criticalcare/internal/platform/input"
	"github.com/astrobsm/criticalcare/internal/platform/result"
)

const (
	ID    = "sodium"
	Title = "Sodium and potassium"
)

var Sodium = band.MustNew("sodium", 100, 200,
	band.Band{Lower: 100, Code: "severe_hyponatraemia", Label: "Severe hyponatraemia", Tier: band.Critical},
	band.Band{Lower: 120, Code: "moderate_hyponatraemia", Label: "Moderate hyponatraemia", Tier: band.High},
	band.Band{Lower: 130, Code: "mild_hyponatraemia", Label: "Mild hyponatraemia", Tier: band.Low},
	band.Band{Lower: 135, Code: "normal", Label: "Normal sodium", Tier: band.Normal},
	band.Band{Lower: 146, Code: "mild_hypernatraemia", Label: "Mild hypernatraemia", Tier: band.Low},
	band.Band{Lower: 150, Code: "moderate_hypernatraemia", Label: "Moderate hypernatraemia", Tier: band.High},
	band.Band{Lower: 160, Code: "severe_hypernatraemia", Label: "Severe hypernatraemia", Tier: band.Critical},
)

var Potassium = band.MustNew("potassium", 0, 10,
	band.Band{Lower: 0, Code: "severe_hypokalaemia", Label: "Severe hypokalaemia", Tier: band.Critical},
	band.Band{Lower: 2.5, Code: "hypokalaemia", Label: "Hypokalaemia", Tier: band.Moderate},
	band.Band{Lower: 3.5, Code: "normal", Label: "Normal potassium", Tier: band.Normal},
	band.Band{Lower: 5.5, Code: "hyperkalaemia", Label: "Hyperkalaemia", Tier: band.High},
	band.Band{Lower: 6.5, Code: "severe_hyperkalaemia", Label: "Severe hyperkalaemia", Tier: band.Critical},
)

type assessment struct {
	Input
	TBW              float64
	FreeWater        float64
	SodiumDeficit    float64
	SodiumBand       band.Band
	PotassiumBand    band.Band
	Hypo, Hyper      bool
	Infusate         formula.Infusate
	ChangePerLitre   float64
	CorrectionVolume float64
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
	a, err := assess(in)
	if err != nil {
		return nil, result.Validation(err)
	}

	res := result.New(ID)
	res.Bands = append(res.Bands, a.SodiumBand.Result(Sodium.Name(), in.Sodium))
	if in.Potassium > 0 {
		res.Bands = append(res.Bands, a.PotassiumBand.Result(Potassium.Name(), in.Potassium))
	}
	res.AddQuantity(formula.Quantity("tbw", "Total body water", a.TBW, "L", formula.FTotalBodyWater, 1))
	if a.Hyper {
		res.AddQuantity(formula.Quantity("free_water_deficit", "Free water deficit", a.FreeWater, "mL", formula.FFreeWater, 0))
	}
	if a.Hypo {
		res.AddQuantity(formula.Quantity("sodium_deficit", "Sodium deficit", a.SodiumDeficit, "mmol", formula.FSodiumDeficit, 0))
	}
	for _, inf := range formula.Infusates {
		d, err := formula.SodiumChangePerLitre(a.TBW, in.Sodium, inf.Sodium, inf.K)
		if err != nil {
			return nil, result.Validation(err)
		}
		res.AddQuantity(formula.SignedQuantity("sodium_change_"+inf.ID, "Change per litre of "+inf.Label, d, "mmol/L", formula.FAdrogueMadias, 1))
	}
	res.AddQuantity(formula.Quantity("max_correction_24h", "Maximum correction in 24 h", in.MaxCorrection(), "mmol/L", "correction_limit", 0))
	if a.CorrectionVolume > 0 {
		res.AddQuantity(formula.Quantity("correction_volume_24h", "Volume of "+a.Infusate.Label+" for the 24 h limit", a.CorrectionVolume, "mL", formula.FAdrogueMadias, 0))
	}
	res.AddFlag("chronic", in.Chronic)
	res.AddFlag("symptomatic", in.Symptomatic)
	res.Sections = protocol.Compose(a)
	return res, nil
}

func assess(in Input) (assessment, error) {
	a := assessment{Input: in}
	var err error
	if a.SodiumBand, err = Sodium.Classify(in.Sodium); err != nil {
		return a, err
	}
	// the band decides which side of normal, so result and protocol agree
	if a.SodiumBand.Code != "normal" {
		normal, _ := Sodium.Lookup("normal")
		a.Hypo = in.Sodium < normal.Lower
		a.Hyper = !a.Hypo
	}
	if a.TBW, err = formula.TotalBodyWater(in.WeightKg, in.Sex, in.Age); err != nil {
		return a, err
	}
	if a.Hyper {
		if a.FreeWater, err = formula.FreeWaterDeficit(a.TBW, in.Sodium, in.Target()); err != nil {
			return a, err
		}
	}
	if a.Hypo {
		if a.SodiumDeficit, err = formula.SodiumDeficit(a.TBW, in.Sodium, in.Target()); err != nil {
			return a, err
		}
	}
	if in.Potassium > 0 {
		if a.PotassiumBand, err = Potassium.Classify(in.Potassium); err != nil {
			return a, err
		}
	}

	// volume to move sodium by the 24 h limit, or to target if nearer
	if a.Hypo || a.Hyper {
		a.Infusate = infusate("saline_3")
		if a.Hyper {
			a.Infusate = infusate("dextrose_5")
		}
		if a.ChangePerLitre, err = formula.SodiumChangePerLitre(a.TBW, in.Sodium, a.Infusate.Sodium, a.Infusate.K); err != nil {
			return a, err
		}
		want := math.Min(in.MaxCorrection(), math.Abs(in.Target()-in.Sodium))
		if a.ChangePerLitre != 0 && want > 0 {
			a.CorrectionVolume = want / math.Abs(a.ChangePerLitre) * 1000
		}
	}
	return a, nil
}

func infusate(id string) formula.Infusate {
	for _, f := range formula.Infusates {
		if f.ID == id {
			return f
		}
	}
	return formula.Infusate{}
}
