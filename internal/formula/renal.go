package formula

import (
	"math"

	"github.com/astrobsm/criticalcare/internal/platform/clinical"
	"github.com/astrobsm/criticalcare/internal/platform/result"
)

const umolPerMgdL = 88.4

// CKDEPI2021 estimates GFR (mL/min/1.73 m²) from serum creatinine in µmol/L
// with the race-free 2021 CKD-EPI equation.
func CKDEPI2021(creatinineUmol, age float64, sex clinical.Sex) (float64, error) {
	if err := positive(FCKDEPI, "creatinine", creatinineUmol); err != nil {
		return 0, err
	}
	if err := positive(FCKDEPI, "age", age); err != nil {
		return 0, err
	}
	var kappa, alpha, factor float64
	switch sex {
	case clinical.Female:
		kappa, alpha, factor = 0.7, -0.241, 1.012
	case clinical.Male:
		kappa, alpha, factor = 0.9, -0.302, 1.0
	default:
		return 0, result.Guard(FCKDEPI, "sex", "must be male or female")
	}
	ratio := creatinineUmol / umolPerMgdL / kappa
	egfr := 142 * math.Pow(math.Min(ratio, 1), alpha) * math.Pow(math.Max(ratio, 1), -1.200) *
		math.Pow(0.9938, age) * factor
	return RoundHalfUp(egfr, 0), nil
}

// CockcroftGault estimates creatinine clearance in mL/min.
func CockcroftGault(age, weightKg, creatinineUmol float64, sex clinical.Sex) (float64, error) {
	if err := positive(FCockcroftGault, "creatinine", creatinineUmol); err != nil {
		return 0, err
	}
	if err := positive(FCockcroftGault, "weight", weightKg); err != nil {
		return 0, err
	}
	var k float64
	switch sex {
	case clinical.Male:
		k = 1.23
	case clinical.Female:
		k = 1.04
	default:
		return 0, result.Guard(FCockcroftGault, "sex", "must be male or female")
	}
	return RoundHalfUp(clamp((140-age)*weightKg*k/creatinineUmol), 0), nil
}
