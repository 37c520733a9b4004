// Package dosing holds organ-function dose tables: for each drug, the dose
// text to use in every renal band, with the adjustment and contraindication
// flags computed once when the table is compiled.
package dosing

import (
	"fmt"
	"sort"
	"strings"

	"github.com/astrobsm/criticalcare/internal/platform/band"
	"github.com/astrobsm/criticalcare/internal/platform/clinical"
	"github.com/astrobsm/criticalcare/internal/platform/result"
)

// Table name reported in lookup misses.
const TableName = "renal_dosing"

// Dosing bands from best to worst organ function.
const (
	Normal   = "normal"
	Mild     = "mild"
	Moderate = "moderate"
	Severe   = "severe"
	Dialysis = "dialysis"
)

// Bands lists the dosing bands from best to worst.
var Bands = []string{Normal, Mild, Moderate, Severe, Dialysis}

// GFR maps eGFR (mL/min/1.73 m²) onto the dosing bands.
var GFR = band.MustNew("gfr", 0, 200,
	band.Band{Lower: 0, Code: Dialysis, Label: "Kidney failure (<15)", Tier: band.Critical},
	band.Band{Lower: 15, Code: Severe, Label: "Severe impairment (15-29)", Tier: band.High},
	band.Band{Lower: 30, Code: Moderate, Label: "Moderate impairment (30-59)", Tier: band.Moderate},
	band.Band{Lower: 60, Code: Mild, Label: "Mild impairment (60-89)", Tier: band.Low},
	band.Band{Lower: 90, Code: Normal, Label: "Normal renal function (>=90)", Tier: band.Normal},
)

// BandFor returns the dosing band for a GFR. Patients on dialysis are dosed in
// the dialysis band whatever their residual GFR.
func BandFor(gfr float64, dialysis bool) (band.Band, error) {
	if dialysis {
		b, _ := GFR.Lookup(Dialysis)
		if _, err := GFR.Classify(gfr); err != nil {
			return band.Band{}, err
		}
		return b, nil
	}
	return GFR.Classify(gfr)
}

// contraindicatedMarker is the literal the dose text carries in a
// contraindicated band.
const contraindicatedMarker = "CONTRAINDICATED"

// Rule is the authored form of one drug.
type Rule struct {
	Name            string            `yaml:"name" json:"name"`
	Indication      string            `yaml:"indication" json:"indication"`
	Doses           map[string]string `yaml:"doses" json:"doses"`
	Intensity       map[string]int    `yaml:"intensity" json:"intensity"`
	Contraindicated []string          `yaml:"contraindicated,omitempty" json:"contraindicated,omitempty"`
	Exempt          bool              `yaml:"exempt,omitempty" json:"exempt,omitempty"`
	Notes           string            `yaml:"notes,omitempty" json:"notes,omitempty"`
}

// entry is a compiled rule.
type entry struct {
	Rule
	adjust map[string]bool
	contra map[string]bool
}

// Table is a compiled, read-only dose table.
type Table struct {
	version string
	order   []string
	entries map[string]entry
}

// Compile validates rules and precomputes their flags. It rejects a table in
// which a dose would become more intense as organ function worsens (unless
// the rule is exempt), or in which the contraindicated bands disagree with
// the dose text.
func Compile(version string, rules []Rule) (*Table, error) {
	t := &Table{version: version, entries: make(map[string]entry, len(rules))}
	for _, r := range rules {
		key := normalize(r.Name)
		if key == "" {
			return nil, fmt.Errorf("%s: rule without name", TableName)
		}
		if _, dup := t.entries[key]; dup {
			return nil, fmt.Errorf("%s: duplicate drug %q", TableName, r.Name)
		}
		e, err := compile(r)
		if err != nil {
			return nil, err
		}
		t.entries[key] = e
		t.order = append(t.order, key)
	}
	return t, nil
}

func compile(r Rule) (entry, error) {
	e := entry{Rule: r, adjust: map[string]bool{}, contra: map[string]bool{}}
	for _, b := range r.Contraindicated {
		if !isBand(b) {
			return e, fmt.Errorf("%s: %s: unknown contraindicated band %q", TableName, r.Name, b)
		}
		e.contra[b] = true
	}
	for _, b := range Bands {
		text, ok := r.Doses[b]
		if !ok || strings.TrimSpace(text) == "" {
			return e, fmt.Errorf("%s: %s: no dose for band %s", TableName, r.Name, b)
		}
		if _, ok := r.Intensity[b]; !ok {
			return e, fmt.Errorf("%s: %s: no intensity for band %s", TableName, r.Name, b)
		}
		if strings.Contains(text, contraindicatedMarker) != e.contra[b] {
			return e, fmt.Errorf("%s: %s: band %s contraindication flag disagrees with dose text", TableName, r.Name, b)
		}
		if e.contra[b] && r.Intensity[b] != 0 {
			return e, fmt.Errorf("%s: %s: contraindicated band %s must have intensity 0", TableName, r.Name, b)
		}
		e.adjust[b] = text != r.Doses[Normal]
	}
	for b := range r.Doses {
		if !isBand(b) {
			return e, fmt.Errorf("%s: %s: unknown band %q", TableName, r.Name, b)
		}
	}
	if !r.Exempt {
		for i := 1; i < len(Bands); i++ {
			prev, cur := Bands[i-1], Bands[i]
			if r.Intensity[cur] > r.Intensity[prev] {
				return e, fmt.Errorf("%s: %s: intensity rises from %s (%d) to %s (%d)",
					TableName, r.Name, prev, r.Intensity[prev], cur, r.Intensity[cur])
			}
		}
	}
	for _, b := range Bands {
		if v := r.Intensity[b]; v < 0 || v > 100 {
			return e, fmt.Errorf("%s: %s: intensity %d for %s outside 0..100", TableName, r.Name, v, b)
		}
	}
	return e, nil
}

// Version is the reference data version the table was compiled from.
func (t *Table) Version() string { return t.version }

// Len returns the number of drugs.
func (t *Table) Len() int { return len(t.order) }

// Drugs returns the drug names in table order.
func (t *Table) Drugs() []string {
	out := make([]string, len(t.order))
	for i, k := range t.order {
		out[i] = t.entries[k].Name
	}
	return out
}

// Rule returns the authored rule of a drug.
func (t *Table) Rule(name string) (Rule, error) {
	e, ok := t.entries[normalize(name)]
	if !ok {
		return Rule{}, &result.LookupMiss{Table: TableName, Key: name}
	}
	return e.Rule, nil
}

// Lookup returns the recommendation for a drug in a band. Names match
// case-insensitively, with spaces and dashes equivalent to underscores.
func (t *Table) Lookup(name, code string) (result.DoseRecommendation, error) {
	e, ok := t.entries[normalize(name)]
	if !ok {
		return result.DoseRecommendation{}, &result.LookupMiss{Table: TableName, Key: name}
	}
	if !isBand(code) {
		return result.DoseRecommendation{}, result.Invalid("band", "must be one of %s", strings.Join(Bands, ", "))
	}
	return result.DoseRecommendation{
		Drug:               e.Name,
		Indication:         e.Indication,
		Band:               code,
		Dose:               e.Doses[code],
		Baseline:           e.Doses[Normal],
		RequiresAdjustment: e.adjust[code],
		Contraindicated:    e.contra[code],
		Notes:              e.Notes,
	}, nil
}

// Intensity returns the authored intensity of a drug in a band.
func (t *Table) Intensity(name, code string) (int, bool) {
	e, ok := t.entries[normalize(name)]
	if !ok {
		return 0, false
	}
	v, ok := e.Intensity[code]
	return v, ok
}

// Review lists drugs whose dose text is identical in adjacent bands other
// than normal and mild, for clinical review. The text is kept as authored.
func (t *Table) Review() []string {
	var out []string
	for _, k := range t.order {
		e := t.entries[k]
		for i := 2; i < len(Bands); i++ {
			if e.Doses[Bands[i]] == e.Doses[Bands[i-1]] && !e.contra[Bands[i]] {
				out = append(out, fmt.Sprintf("%s: %s and %s share dose text", e.Name, Bands[i-1], Bands[i]))
			}
		}
	}
	sort.Strings(out)
	return out
}

func isBand(b string) bool {
	for _, x := range Bands {
		if x == b {
			return true
		}
	}
	return false
}

func normalize(s string) string { return clinical.Normalize(s) }
