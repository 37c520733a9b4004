// Package formula implements the physiologic formulas shared by the
// calculators. Every function is pure; results are clamped to zero or above
// and an impossible operand (zero height, negative duration) is reported as a
// result.ArithmeticGuardError instead of producing NaN or Infinity.
package formula

import (
	"math"

	"github.com/astrobsm/criticalcare/internal/platform/clinical"
	"github.com/astrobsm/criticalcare/internal/platform/result"
)

// Formula identifiers recorded as provenance on derived quantities.
const (
	FParkland        = "parkland"
	FDuBois          = "bsa_dubois"
	FEvaporative     = "evaporative_loss"
	FHollidaySegar   = "holliday_segar"
	FAdultMaint      = "adult_maintenance_30ml_kg"
	FDehydration     = "dehydration_deficit"
	FTotalBodyWater  = "total_body_water"
	FFreeWater       = "free_water_deficit"
	FSodiumDeficit   = "sodium_deficit"
	FAdrogueMadias   = "adrogue_madias"
	FBMI             = "bmi"
	FHarrisBenedict  = "harris_benedict"
	FMAP             = "mean_arterial_pressure"
	FCKDEPI          = "ckd_epi_2021"
	FCockcroftGault  = "cockcroft_gault"
	FRuleOfNines     = "rule_of_nines"
	FWeightBased     = "weight_based"
	FEnergyTarget    = "energy_target"
	FParklandCatchUp = "parkland_schedule"
)

// RoundHalfUp rounds x to places decimals, halves away from zero.
func RoundHalfUp(x float64, places int) float64 {
	p := math.Pow(10, float64(places))
	if x < 0 {
		return -math.Floor(-x*p+0.5) / p
	}
	return math.Floor(x*p+0.5) / p
}

func clamp(x float64) float64 {
	if x < 0 || math.IsNaN(x) {
		return 0
	}
	return x
}

// Quantity builds a derived quantity rounded to precision decimals.
func Quantity(id, label string, value float64, unit, formula string, precision int) result.DerivedQuantity {
	return result.DerivedQuantity{
		ID:        id,
		Label:     label,
		Value:     RoundHalfUp(clamp(value), precision),
		Unit:      unit,
		Formula:   formula,
		Precision: precision,
	}
}

func positive(formula, operand string, v float64) error {
	if v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return result.Guard(formula, operand, "must be greater than zero")
	}
	return nil
}

// DuBois returns body surface area in m² to 0.01 precision.
func DuBois(weightKg, heightCm float64) (float64, error) {
	if err := positive(FDuBois, "weight", weightKg); err != nil {
		return 0, err
	}
	if err := positive(FDuBois, "height", heightCm); err != nil {
		return 0, err
	}
	return RoundHalfUp(0.007184*math.Pow(weightKg, 0.425)*math.Pow(heightCm, 0.725), 2), nil
}

// BMI returns kg/m² to 0.1 precision.
func BMI(weightKg, heightCm float64) (float64, error) {
	if err := positive(FBMI, "weight", weightKg); err != nil {
		return 0, err
	}
	if err := positive(FBMI, "height", heightCm); err != nil {
		return 0, err
	}
	m := heightCm / 100
	return RoundHalfUp(weightKg/(m*m), 1), nil
}

// MAP returns DBP + (SBP − DBP)/3 rounded to the nearest integer. ok is false
// unless both pressures are present (non-zero).
func MAP(sbp, dbp float64) (float64, bool) {
	if sbp <= 0 || dbp <= 0 {
		return 0, false
	}
	return RoundHalfUp(dbp+(sbp-dbp)/3, 0), true
}

// HarrisBenedict returns the basal metabolic rate in kcal/day.
func HarrisBenedict(weightKg, heightCm, age float64, sex clinical.Sex) (float64, error) {
	if err := positive(FHarrisBenedict, "weight", weightKg); err != nil {
		return 0, err
	}
	if err := positive(FHarrisBenedict, "height", heightCm); err != nil {
		return 0, err
	}
	var bmr float64
	switch sex {
	case clinical.Male:
		bmr = 66.47 + 13.75*weightKg + 5.003*heightCm - 6.755*age
	case clinical.Female:
		bmr = 655.1 + 9.563*weightKg + 1.850*heightCm - 4.676*age
	default:
		return 0, result.Guard(FHarrisBenedict, "sex", "must be male or female")
	}
	return RoundHalfUp(clamp(bmr), 0), nil
}

// SignedQuantity is Quantity without the clamp, for changes that may be negative.
func SignedQuantity(id, label string, value float64, unit, formula string, precision int) result.DerivedQuantity {
	return result.DerivedQuantity{
		ID:        id,
		Label:     label,
		Value:     RoundHalfUp(value, precision),
		Unit:      unit,
		Formula:   formula,
		Precision: precision,
	}
}
