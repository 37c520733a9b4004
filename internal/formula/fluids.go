package formula

import (
	"github.com/astrobsm/criticalcare/internal/platform/clinical"
	"github.com/astrobsm/criticalcare/internal/platform/result"
)

// Parkland is the 24 hour burn resuscitation volume split into the first 8
// and next 16 hours, both windows measured from the time of burn.
type Parkland struct {
	TotalML     float64
	First8hML   float64
	Next16hML   float64
	First8hRate float64
	Next16hRate float64
}

// ParklandFluid computes 4 mL × kg × %TBSA.
func ParklandFluid(weightKg, tbsaPct float64) (Parkland, error) {
	if err := positive(FParkland, "weight", weightKg); err != nil {
		return Parkland{}, err
	}
	if tbsaPct < 0 || tbsaPct > 100 {
		return Parkland{}, result.Guard(FParkland, "tbsa", "must be between 0 and 100")
	}
	total := RoundHalfUp(4*weightKg*tbsaPct, 0)
	// the second period takes the remainder so the halves add up to total
	first := RoundHalfUp(total/2, 0)
	next := total - first
	return Parkland{
		TotalML:     total,
		First8hML:   first,
		Next16hML:   next,
		First8hRate: RoundHalfUp(first/8, 0),
		Next16hRate: RoundHalfUp(next/16, 0),
	}, nil
}

// Quantities renders p for the result record.
func (p Parkland) Quantities() []result.DerivedQuantity {
	return []result.DerivedQuantity{
		Quantity("parkland_total_24h", "Parkland total (24 h)", p.TotalML, "mL", FParkland, 0),
		Quantity("parkland_first_8h", "First 8 h from time of burn", p.First8hML, "mL", FParkland, 0),
		Quantity("parkland_first_8h_rate", "Rate, first 8 h", p.First8hRate, "mL/h", FParkland, 0),
		Quantity("parkland_next_16h", "Next 16 h", p.Next16hML, "mL", FParkland, 0),
		Quantity("parkland_next_16h_rate", "Rate, next 16 h", p.Next16hRate, "mL/h", FParkland, 0),
	}
}

// Schedule is what remains of the current Parkland window.
type Schedule struct {
	Window         string
	RemainingHours float64
	RemainingML    float64
	Rate           float64
}

// Schedule adjusts the infusion to the hours already elapsed since the burn
// and the volume already given. Within the first window only the first-8h
// volume still due is spread over the hours left in that window; afterwards
// everything outstanding runs over the rest of the 24 hours.
func (p Parkland) Schedule(hoursSinceBurn, givenML float64) (Schedule, error) {
	if hoursSinceBurn < 0 {
		return Schedule{}, result.Guard(FParklandCatchUp, "hours_since_burn", "must not be negative")
	}
	if hoursSinceBurn >= 24 {
		return Schedule{}, result.Guard(FParklandCatchUp, "hours_since_burn", "is beyond the 24 hour resuscitation window")
	}
	if givenML < 0 {
		return Schedule{}, result.Guard(FParklandCatchUp, "fluid_given_ml", "must not be negative")
	}
	if hoursSinceBurn < 8 {
		left := 8 - hoursSinceBurn
		due := clamp(p.First8hML - givenML)
		return Schedule{
			Window:         "first_8h",
			RemainingHours: left,
			RemainingML:    due,
			Rate:           RoundHalfUp(due/left, 0),
		}, nil
	}
	left := 24 - hoursSinceBurn
	due := clamp(p.TotalML - givenML)
	return Schedule{
		Window:         "next_16h",
		RemainingHours: left,
		RemainingML:    due,
		Rate:           RoundHalfUp(due/left, 0),
	}, nil
}

// EvaporativeLoss returns hourly (25 + %TBSA) × BSA and the daily total, mL.
func EvaporativeLoss(tbsaPct, bsa float64) (hourly, daily float64, err error) {
	if err := positive(FEvaporative, "bsa", bsa); err != nil {
		return 0, 0, err
	}
	if tbsaPct < 0 {
		return 0, 0, result.Guard(FEvaporative, "tbsa", "must not be negative")
	}
	h := (25 + tbsaPct) * bsa
	return RoundHalfUp(h, 0), RoundHalfUp(h*24, 0), nil
}

// HollidaySegar returns paediatric maintenance in mL/day:
// 100 mL/kg for the first 10 kg, 50 for the next 10, 20 for the remainder.
func HollidaySegar(weightKg float64) (float64, error) {
	if err := positive(FHollidaySegar, "weight", weightKg); err != nil {
		return 0, err
	}
	var ml float64
	switch {
	case weightKg <= 10:
		ml = weightKg * 100
	case weightKg <= 20:
		ml = 1000 + (weightKg-10)*50
	default:
		ml = 1500 + (weightKg-20)*20
	}
	return RoundHalfUp(ml, 0), nil
}

// Maintenance returns daily maintenance fluid: Holliday-Segar for children,
// 30 mL/kg/day for adults. The formula id used is returned alongside.
func Maintenance(weightKg float64, paediatric bool) (float64, string, error) {
	if paediatric {
		ml, err := HollidaySegar(weightKg)
		return ml, FHollidaySegar, err
	}
	if err := positive(FAdultMaint, "weight", weightKg); err != nil {
		return 0, FAdultMaint, err
	}
	return RoundHalfUp(30*weightKg, 0), FAdultMaint, nil
}

var dehydrationFraction = map[string]float64{
	"none":     0,
	"mild":     0.03,
	"moderate": 0.06,
	"severe":   0.09,
}

// DehydrationFraction returns the body-weight fraction lost for a severity.
func DehydrationFraction(severity string) (float64, bool) {
	f, ok := dehydrationFraction[severity]
	return f, ok
}

// DehydrationDeficit returns kg × fraction × 1000 mL.
func DehydrationDeficit(weightKg float64, severity string) (float64, error) {
	if err := positive(FDehydration, "weight", weightKg); err != nil {
		return 0, err
	}
	f, ok := DehydrationFraction(severity)
	if !ok {
		return 0, result.Guard(FDehydration, "dehydration", "is not a known severity")
	}
	return RoundHalfUp(weightKg*f*1000, 0), nil
}

// TBWFraction returns the total-body-water fraction of body weight.
func TBWFraction(sex clinical.Sex, age float64) float64 {
	switch {
	case age > 0 && age < 18:
		return 0.6
	case sex == clinical.Female && age >= 65:
		return 0.45
	case sex == clinical.Female:
		return 0.5
	case age >= 65:
		return 0.5
	default:
		return 0.6
	}
}

// TotalBodyWater returns TBW in litres.
func TotalBodyWater(weightKg float64, sex clinical.Sex, age float64) (float64, error) {
	if err := positive(FTotalBodyWater, "weight", weightKg); err != nil {
		return 0, err
	}
	return RoundHalfUp(TBWFraction(sex, age)*weightKg, 1), nil
}

// FreeWaterDeficit returns TBW × (Na/target − 1) in mL.
func FreeWaterDeficit(tbwL, sodium, target float64) (float64, error) {
	if err := positive(FFreeWater, "total_body_water", tbwL); err != nil {
		return 0, err
	}
	if err := positive(FFreeWater, "target_sodium", target); err != nil {
		return 0, err
	}
	return RoundHalfUp(clamp(tbwL*(sodium/target-1)*1000), 0), nil
}

// SodiumDeficit returns TBW × (target − Na) in mmol.
func SodiumDeficit(tbwL, sodium, target float64) (float64, error) {
	if err := positive(FSodiumDeficit, "total_body_water", tbwL); err != nil {
		return 0, err
	}
	return RoundHalfUp(clamp(tbwL*(target-sodium)), 0), nil
}

// SodiumChangePerLitre is the Adrogué–Madias estimate of the serum sodium
// change after one litre of infusate, mmol/L. It is signed: a negative value
// means the infusate lowers serum sodium.
func SodiumChangePerLitre(tbwL, sodium, infusateNa, infusateK float64) (float64, error) {
	if err := positive(FAdrogueMadias, "total_body_water", tbwL); err != nil {
		return 0, err
	}
	return RoundHalfUp((infusateNa+infusateK-sodium)/(tbwL+1), 1), nil
}

// Infusate is a replacement fluid used by the Adrogué–Madias estimate.
type Infusate struct {
	ID     string
	Label  string
	Sodium float64
	K      float64
}

// Infusates in display order.
var Infusates = []Infusate{
	{ID: "saline_0_9", Label: "0.9% sodium chloride", Sodium: 154},
	{ID: "saline_3", Label: "3% sodium chloride", Sodium: 513},
	{ID: "ringers_lactate", Label: "Ringer's lactate", Sodium: 130, K: 4},
	{ID: "saline_0_45", Label: "0.45% sodium chloride", Sodium: 77},
	{ID: "dextrose_5", Label: "5% dextrose", Sodium: 0},
}
