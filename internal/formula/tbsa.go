package formula

import (
	"sort"

	"github.com/astrobsm/criticalcare/internal/platform/result"
)

// Burn regions of the rule of nines.
const (
	RegionHead           = "head"
	RegionAnteriorTrunk  = "anterior_trunk"
	RegionPosteriorTrunk = "posterior_trunk"
	RegionLeftArm        = "left_arm"
	RegionRightArm       = "right_arm"
	RegionLeftLeg        = "left_leg"
	RegionRightLeg       = "right_leg"
	RegionPerineum       = "perineum"
)

var adultRegions = map[string]float64{
	RegionHead: 9, RegionAnteriorTrunk: 18, RegionPosteriorTrunk: 18,
	RegionLeftArm: 9, RegionRightArm: 9, RegionLeftLeg: 18, RegionRightLeg: 18,
	RegionPerineum: 1,
}

// children under 10 carry more of their surface on the head
var childRegions = map[string]float64{
	RegionHead: 18, RegionAnteriorTrunk: 18, RegionPosteriorTrunk: 18,
	RegionLeftArm: 9, RegionRightArm: 9, RegionLeftLeg: 13.5, RegionRightLeg: 13.5,
	RegionPerineum: 1,
}

// Region is the burned percentage of one body region.
type Region struct {
	Name    string
	Percent float64
}

// RegionMax returns the share of total body surface of a region.
func RegionMax(name string, child bool) (float64, bool) {
	table := adultRegions
	if child {
		table = childRegions
	}
	v, ok := table[name]
	return v, ok
}

// RegionNames lists the known regions in a stable order.
func RegionNames() []string {
	names := make([]string, 0, len(adultRegions))
	for n := range adultRegions {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// TBSA sums the burned region percentages. A region above its share of the
// body surface, an unknown region or a total above 100 is rejected.
func TBSA(regions []Region, child bool) (float64, error) {
	var total float64
	for _, r := range regions {
		max, ok := RegionMax(r.Name, child)
		if !ok {
			return 0, result.Invalid("regions."+r.Name, "is not a known body region")
		}
		if r.Percent < 0 || r.Percent > max {
			return 0, result.Invalid("regions."+r.Name, "must be between 0 and %v", max)
		}
		total += r.Percent
	}
	if total > 100 {
		return 0, result.Invalid("regions", "total %v%% exceeds 100%%", total)
	}
	return RoundHalfUp(total, 1), nil
}
