// Package braden scores pressure injury risk on the Braden scale and composes
// the skin care plan.
package braden

import (
	"fmt"

	"github.com/astrobsm/criticalcare/internal/platform/band"
	"github.com/astrobsm/criticalcare/internal/platform/input"
	"github.com/astrobsm/criticalcare/internal/platform/result"
	"github.com/astrobsm/criticalcare/internal/platform/score"
)

const (
	ID    = "braden"
	Title = "Braden pressure injury risk"
)

// Scale is the Braden rubric: each subscale is an exclusive group whose
// matching level scores its own number.
var Scale = buildScale()

func buildScale() score.Rubric[Input] {
	rub := score.Rubric[Input]{Name: "braden"}
	for _, s := range subscales {
		for level := 1; level <= len(s.levels); level++ {
			rub.Rules = append(rub.Rules, score.Rule[Input]{
				ID:     fmt.Sprintf("%s_%d", s.field, level),
				Points: level,
				Group:  s.field,
				When:   func(in Input) bool { return s.value(in) == level },
			})
		}
		rub.Max += len(s.levels)
	}
	return rub
}

// Risk bands the total score. Lower scores carry higher risk.
var Risk = band.MustNew("braden_risk", 6, 23,
	band.Band{Lower: 6, Code: "very_high", Label: "Very High Risk", Tier: band.Critical},
	band.Band{Lower: 10, Code: "high", Label: "High Risk", Tier: band.High},
	band.Band{Lower: 13, Code: "moderate", Label: "Moderate Risk", Tier: band.Moderate},
	band.Band{Lower: 15, Code: "mild", Label: "Mild Risk", Tier: band.Low},
	band.Band{Lower: 19, Code: "no_risk", Label: "No Risk", Tier: band.Normal},
)

type assessment struct {
	Input
	Score int
	Risk  band.Band
}

// Level returns the name of the level recorded for a subscale.
func (in Input) Level(field string) string {
	for _, s := range subscales {
		if s.field == field {
			v := s.value(in)
			if v < 1 || v > len(s.levels) {
				return ""
			}
			return s.levels[v-1]
		}
	}
	return ""
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
	sc := Scale.Evaluate(in)
	if len(sc.Matched) != len(subscales) {
		return nil, result.Invalid("braden", "every subscale needs a score")
	}
	risk, err := Risk.Classify(float64(sc.Raw))
	if err != nil {
		return nil, err
	}
	a := assessment{Input: in, Score: sc.Raw, Risk: risk}

	res := result.New(ID)
	res.Scores = append(res.Scores, sc)
	res.Bands = append(res.Bands, risk.Result(Risk.Name(), float64(sc.Raw)))
	res.AddFlag("at_risk", sc.Raw <= 18)
	res.Sections = protocol.Compose(a)
	return res, nil
}
