package renal

import (
	"github.com/astrobsm/criticalcare/internal/platform/clinical"
	"github.com/astrobsm/criticalcare/internal/platform/input"
)

// Input selects the renal band and the drugs to dose. An empty Drugs set
// doses the whole table.
type Input struct {
	GFR           float64
	Dialysis      bool
	Drugs         clinical.Set
	Comorbidities clinical.Set
}

func Parse(rec input.Record) (Input, error) {
	r := input.NewReader(rec)
	in := Input{
		GFR:           r.Required("gfr", 0, 200),
		Dialysis:      r.Bool("dialysis"),
		Drugs:         r.Set("drugs"),
		Comorbidities: r.Set("comorbidities"),
	}
	if err := r.Err(); err != nil {
		return Input{}, err
	}
	return in, nil
}
