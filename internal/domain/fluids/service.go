// Package fluids plans maintenance and deficit replacement over 24 hours.
package fluids

import (
	"github.com/astrobsm/criticalcare/internal/formula"
	"github.com/astrobsm/criticalcare/internal/platform/clinical"
	"github.com/astrobsm/criticalcare/internal/platform/input"
	"github.com/astrobsm/criticalcare/internal/platform/result"
)

const (
	ID    = "fluids"
	Title = "Maintenance and deficit fluids"
)

type assessment struct {
	Input
	Maintenance float64
	Deficit     float64
	Total       float64
	First8h     float64
	Next16h     float64
	Bolus       float64
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
	maint, maintFormula, err := formula.Maintenance(in.WeightKg, in.Paediatric())
	if err != nil {
		return nil, result.Validation(err)
	}
	deficit, err := formula.DehydrationDeficit(in.WeightKg, in.Dehydration)
	if err != nil {
		return nil, result.Validation(err)
	}

	a := assessment{Input: in, Maintenance: maint, Deficit: deficit}
	a.Total = maint + deficit
	a.First8h = maint/3 + deficit/2
	a.Next16h = 2*maint/3 + deficit/2
	if in.Dehydration == Severe {
		switch {
		case in.Paediatric():
			a.Bolus = 20 * in.WeightKg
		case in.Comorbidities.Has(clinical.HeartFailure):
			a.Bolus = 250
		default:
			a.Bolus = 500
		}
	}

	res := result.New(ID)
	res.AddQuantity(
		formula.Quantity("maintenance_daily", "Maintenance (24 h)", a.Maintenance, "mL", maintFormula, 0),
		formula.Quantity("maintenance_hourly", "Maintenance rate", a.Maintenance/24, "mL/h", maintFormula, 0),
		formula.Quantity("deficit", "Dehydration deficit", a.Deficit, "mL", formula.FDehydration, 0),
		formula.Quantity("total_24h", "Total over 24 h", a.Total, "mL", formula.FDehydration, 0),
		formula.Quantity("first_8h", "First 8 h", a.First8h, "mL", formula.FDehydration, 0),
		formula.Quantity("first_8h_rate", "Rate, first 8 h", a.First8h/8, "mL/h", formula.FDehydration, 0),
		formula.Quantity("next_16h", "Next 16 h", a.Next16h, "mL", formula.FDehydration, 0),
		formula.Quantity("next_16h_rate", "Rate, next 16 h", a.Next16h/16, "mL/h", formula.FDehydration, 0),
	)
	if a.Bolus > 0 {
		res.AddQuantity(formula.Quantity("bolus", "Initial bolus", a.Bolus, "mL", formula.FWeightBased, 0))
	}
	res.AddFlag("paediatric", in.Paediatric())
	res.AddFlag("bolus_indicated", a.Bolus > 0)
	res.Sections = protocol.Compose(a)
	return res, nil
}
