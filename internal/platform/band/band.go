// Package band maps a numeric value onto one of an ordered, contiguous and
// exhaustive set of intervals. Bands are lower-bound inclusive; the last band
// runs up to and including the classifier maximum.
package band

import (
	"fmt"
	"math"
	"strconv"

	"github.com/astrobsm/criticalcare/internal/platform/result"
)

// Tier is the urgency attached to a band.
type Tier int

const (
	Normal Tier = iota
	Low
	Moderate
	High
	Critical
)

var tierNames = [...]string{"normal", "low", "moderate", "high", "critical"}

func (t Tier) String() string {
	if t < Normal || t > Critical {
		return "tier(" + strconv.Itoa(int(t)) + ")"
	}
	return tierNames[t]
}

func (t Tier) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

func (t *Tier) UnmarshalText(b []byte) error {
	for i, n := range tierNames {
		if n == string(b) {
			*t = Tier(i)
			return nil
		}
	}
	return fmt.Errorf("unknown tier %q", b)
}

// Band is one interval starting at Lower.
type Band struct {
	Lower float64
	Code  string
	Label string
	Tier  Tier
}

// Classifier holds the bands of one parameter over [Min, Max].
type Classifier struct {
	name  string
	min   float64
	max   float64
	bands []Band
}

// New validates and builds a classifier. Bands must be given in ascending
// order of Lower, the first starting at min.
func New(name string, min, max float64, bands ...Band) (*Classifier, error) {
	if len(bands) == 0 {
		return nil, fmt.Errorf("%s: no bands", name)
	}
	if bands[0].Lower != min {
		return nil, fmt.Errorf("%s: first band starts at %v, domain starts at %v", name, bands[0].Lower, min)
	}
	for i := 1; i < len(bands); i++ {
		if bands[i].Lower <= bands[i-1].Lower {
			return nil, fmt.Errorf("%s: band %q does not start above %q", name, bands[i].Code, bands[i-1].Code)
		}
	}
	if last := bands[len(bands)-1]; max <= last.Lower {
		return nil, fmt.Errorf("%s: domain max %v not above last band %q", name, max, last.Code)
	}
	cp := make([]Band, len(bands))
	copy(cp, bands)
	return &Classifier{name: name, min: min, max: max, bands: cp}, nil
}

// MustNew is New for package-level tables; it panics on a malformed table.
func MustNew(name string, min, max float64, bands ...Band) *Classifier {
	c, err := New(name, min, max, bands...)
	if err != nil {
		panic(err)
	}
	return c
}

func (c *Classifier) Name() string { return c.name }

// Domain returns the classified interval.
func (c *Classifier) Domain() (float64, float64) { return c.min, c.max }

// Bands returns a copy of the bands in ascending order.
func (c *Classifier) Bands() []Band {
	out := make([]Band, len(c.bands))
	copy(out, c.bands)
	return out
}

// Classify returns the band containing v, checking from the highest lower
// bound downward.
func (c *Classifier) Classify(v float64) (Band, error) {
	if math.IsNaN(v) || v < c.min || v > c.max {
		return Band{}, result.Invalid(c.name, "%v is outside %v to %v", v, c.min, fmtMax(c.max))
	}
	for i := len(c.bands) - 1; i >= 0; i-- {
		if v >= c.bands[i].Lower {
			return c.bands[i], nil
		}
	}
	// unreachable: v >= min == bands[0].Lower
	return c.bands[0], nil
}

// Lookup returns the band with the given code.
func (c *Classifier) Lookup(code string) (Band, bool) {
	for _, b := range c.bands {
		if b.Code == code {
			return b, true
		}
	}
	return Band{}, false
}

// Result classifies v and renders it for the result record.
func (c *Classifier) Result(v float64) (result.BandResult, error) {
	b, err := c.Classify(v)
	if err != nil {
		return result.BandResult{}, err
	}
	return b.Result(c.name, v), nil
}

// Result renders b for the result record.
func (b Band) Result(parameter string, v float64) result.BandResult {
	return result.BandResult{
		Parameter: parameter,
		Value:     v,
		Code:      b.Code,
		Label:     b.Label,
		Tier:      b.Tier.String(),
	}
}

func fmtMax(f float64) string {
	if math.IsInf(f, 1) {
		return "infinity"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
