package result

import "strings"

// Result is the record produced by one calculator invocation. Field order is
// part of the output contract: renderers and exporters walk it as declared.
type Result struct {
	Calculator string               `json:"calculator"`
	Scores     []ScoreResult        `json:"scores,omitempty"`
	Bands      []BandResult         `json:"bands,omitempty"`
	Quantities []DerivedQuantity    `json:"quantities,omitempty"`
	Flags      []Flag               `json:"flags,omitempty"`
	Doses      []DoseRecommendation `json:"doses,omitempty"`
	Portions   []FoodPortion        `json:"portions,omitempty"`
	Sections   []Section            `json:"sections"`
}

// New returns an empty result for the named calculator.
func New(calculator string) *Result {
	return &Result{Calculator: calculator, Sections: []Section{}}
}

// TierTotal is one weight tier of a score breakdown.
type TierTotal struct {
	Points   int `json:"points"`
	Count    int `json:"count"`
	Subtotal int `json:"subtotal"`
}

// ScoreResult is the outcome of a weighted-rule rubric.
type ScoreResult struct {
	Name      string      `json:"name"`
	Raw       int         `json:"raw"`
	Max       int         `json:"max,omitempty"`
	Matched   []string    `json:"matched"`
	Breakdown []TierTotal `json:"breakdown_by_weight_tier"`
}

// BandResult is a classified parameter.
type BandResult struct {
	Parameter string  `json:"parameter"`
	Value     float64 `json:"value"`
	Code      string  `json:"code"`
	Label     string  `json:"label"`
	Tier      string  `json:"tier"`
}

// DerivedQuantity is a computed value with its provenance and rounding.
type DerivedQuantity struct {
	ID        string  `json:"id"`
	Label     string  `json:"label"`
	Value     float64 `json:"value"`
	Unit      string  `json:"unit"`
	Formula   string  `json:"formula"`
	Precision int     `json:"precision"`
}

// Flag is a named boolean conclusion.
type Flag struct {
	ID    string `json:"id"`
	Value bool   `json:"value"`
}

// DoseRecommendation is one row of an organ-function dose table.
type DoseRecommendation struct {
	Drug               string `json:"drug"`
	Indication         string `json:"indication"`
	Band               string `json:"band"`
	Dose               string `json:"dose"`
	Baseline           string `json:"baseline"`
	RequiresAdjustment bool   `json:"requires_adjustment"`
	Contraindicated    bool   `json:"contraindicated"`
	Notes              string `json:"notes,omitempty"`
}

// FoodPortion is the energy and protein content of a weighed food.
type FoodPortion struct {
	Food     string  `json:"food"`
	Grams    float64 `json:"grams"`
	Kcal     float64 `json:"kcal"`
	ProteinG float64 `json:"protein_g"`
}

// Section is one ordered block of recommendation text.
type Section struct {
	ID    string   `json:"id"`
	Title string   `json:"title"`
	Lines []string `json:"lines"`
}

// Score returns the named score, if present.
func (r *Result) Score(name string) (ScoreResult, bool) {
	for _, s := range r.Scores {
		if s.Name == name {
			return s, true
		}
	}
	return ScoreResult{}, false
}

// Band returns the band for the named parameter, if present.
func (r *Result) Band(parameter string) (BandResult, bool) {
	for _, b := range r.Bands {
		if b.Parameter == parameter {
			return b, true
		}
	}
	return BandResult{}, false
}

// Quantity returns the derived quantity with the given id, if present.
func (r *Result) Quantity(id string) (DerivedQuantity, bool) {
	for _, q := range r.Quantities {
		if q.ID == id {
			return q, true
		}
	}
	return DerivedQuantity{}, false
}

// Flag reports the value of a flag; absent flags are false.
func (r *Result) Flag(id string) bool {
	for _, f := range r.Flags {
		if f.ID == id {
			return f.Value
		}
	}
	return false
}

// Section returns the section with the given id, if present.
func (r *Result) Section(id string) (Section, bool) {
	for _, s := range r.Sections {
		if s.ID == id {
			return s, true
		}
	}
	return Section{}, false
}

// AddFlag appends a flag.
func (r *Result) AddFlag(id string, v bool) {
	r.Flags = append(r.Flags, Flag{ID: id, Value: v})
}

// AddQuantity appends derived quantities.
func (r *Result) AddQuantity(q ...DerivedQuantity) {
	r.Quantities = append(r.Quantities, q...)
}

// Contains reports whether any line of the section contains substr.
func (s Section) Contains(substr string) bool {
	for _, l := range s.Lines {
		if strings.Contains(l, substr) {
			return true
		}
	}
	return false
}
