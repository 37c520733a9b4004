// Package renal stages kidney function and doses drugs from the renal dose
// table for the patient's band.
package renal

import (
	"github.com/astrobsm/criticalcare/internal/platform/band"
	"github.com/astrobsm/criticalcare/internal/platform/clinical"
	"github.com/astrobsm/criticalcare/internal/platform/dosing"
	"github.com/astrobsm/criticalcare/internal/platform/input"
	"github.com/astrobsm/criticalcare/internal/platform/result"
)

const (
	ID    = "renal"
	Title = "Renal dose adjustment"
)

// Stage is the KDIGO GFR category.
var Stage = band.MustNew("ckd_stage", 0, 200,
	band.Band{Lower: 0, Code: "G5", Label: "G5 kidney failure", Tier: band.Critical},
	band.Band{Lower: 15, Code: "G4", Label: "G4 severely decreased", Tier: band.High},
	band.Band{Lower: 30, Code: "G3b", Label: "G3b moderately to severely decreased", Tier: band.Moderate},
	band.Band{Lower: 45, Code: "G3a", Label: "G3a mildly to moderately decreased", Tier: band.Moderate},
	band.Band{Lower: 60, Code: "G2", Label: "G2 mildly decreased", Tier: band.Low},
	band.Band{Lower: 90, Code: "G1", Label: "G1 normal or high", Tier: band.Normal},
)

type assessment struct {
	Input
	Band  band.Band
	Stage band.Band
	Doses []result.DoseRecommendation
}

type Calculator struct {
	table *dosing.Table
}

func New(table *dosing.Table) *Calculator { return &Calculator{table: table} }

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
	db, err := dosing.BandFor(in.GFR, in.Dialysis)
	if err != nil {
		return nil, err
	}
	stage, err := Stage.Classify(in.GFR)
	if err != nil {
		return nil, err
	}

	names, err := c.selected(in.Drugs)
	if err != nil {
		return nil, err
	}
	a := assessment{Input: in, Band: db, Stage: stage}
	for _, name := range names {
		d, err := c.table.Lookup(name, db.Code)
		if err != nil {
			return nil, err
		}
		a.Doses = append(a.Doses, d)
	}

	res := result.New(ID)
	res.Bands = append(res.Bands, db.Result(dosing.GFR.Name(), in.GFR), stage.Result(Stage.Name(), in.GFR))
	res.Doses = a.Doses
	res.AddFlag("dialysis", in.Dialysis)
	res.AddFlag("any_contraindicated", a.anyContraindicated())
	res.Sections = protocol.Compose(a)
	return res, nil
}

// selected returns the requested drugs in table order. A requested drug that
// is not in the table is a lookup miss.
func (c *Calculator) selected(drugs clinical.Set) ([]string, error) {
	all := c.table.Drugs()
	if len(drugs) == 0 {
		return all, nil
	}
	for _, id := range drugs.Sorted() {
		if _, err := c.table.Rule(id); err != nil {
			return nil, err
		}
	}
	var out []string
	for _, name := range all {
		if drugs.Has(name) {
			out = append(out, name)
		}
	}
	return out, nil
}

func (a assessment) anyContraindicated() bool {
	for _, d := range a.Doses {
		if d.Contraindicated {
			return true
		}
	}
	return false
}

func (a assessment) dosing(drug string) (result.DoseRecommendation, bool) {
	for _, d := range a.Doses {
		if clinical.Normalize(d.Drug) == clinical.Normalize(drug) {
			return d, true
		}
	}
	return result.DoseRecommendation{}, false
}
