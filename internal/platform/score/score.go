// Package score aggregates weighted rules into a numeric score.
//
// A Rubric is an ordered list of rules evaluated against one input. Rules
// sharing a Group are mutually exclusive (the highest-point match counts), and
// a rule may supersede others so that a compound factor replaces, rather than
// adds to, the simpler factors it contains.
package score

import (
	"fmt"
	"sort"

	"github.com/astrobsm/criticalcare/internal/platform/clinical"
	"github.com/astrobsm/criticalcare/internal/platform/result"
)

// Rule contributes Points when When matches.
type Rule[T any] struct {
	ID         string
	Points     int
	Group      string
	Supersedes []string
	When       func(T) bool
}

// Rubric is a named, ordered rule list.
type Rubric[T any] struct {
	Name  string
	Max   int
	Rules []Rule[T]
}

// Evaluate scores in.
func (r Rubric[T]) Evaluate(in T) result.ScoreResult {
	matched := make([]Rule[T], 0, len(r.Rules))
	for _, rule := range r.Rules {
		if rule.When != nil && rule.When(in) {
			matched = append(matched, rule)
		}
	}

	superseded := map[string]bool{}
	for _, m := range matched {
		for _, id := range m.Supersedes {
			superseded[id] = true
		}
	}

	// best match per exclusive group
	best := map[string]int{}
	for i, m := range matched {
		if m.Group == "" || superseded[m.ID] {
			continue
		}
		j, ok := best[m.Group]
		if !ok || m.Points > matched[j].Points {
			best[m.Group] = i
		}
	}

	res := result.ScoreResult{Name: r.Name, Max: r.Max, Matched: []string{}}
	tiers := map[int]*result.TierTotal{}
	for i, m := range matched {
		if superseded[m.ID] {
			continue
		}
		if m.Group != "" && best[m.Group] != i {
			continue
		}
		res.Raw += m.Points
		res.Matched = append(res.Matched, m.ID)
		t, ok := tiers[m.Points]
		if !ok {
			t = &result.TierTotal{Points: m.Points}
			tiers[m.Points] = t
		}
		t.Count++
		t.Subtotal += m.Points
	}

	res.Breakdown = make([]result.TierTotal, 0, len(tiers))
	for _, t := range tiers {
		res.Breakdown = append(res.Breakdown, *t)
	}
	sort.Slice(res.Breakdown, func(i, j int) bool {
		return res.Breakdown[i].Points < res.Breakdown[j].Points
	})
	return res
}

// Criterion is a one-point rule, the building block of bedside screening
// scores such as qSOFA and SIRS.
func Criterion[T any](id string, when func(T) bool) Rule[T] {
	return Rule[T]{ID: id, Points: 1, When: when}
}

// Weight is the data form of a rule whose predicate is set membership.
type Weight struct {
	ID         string   `yaml:"id" json:"id"`
	Label      string   `yaml:"label" json:"label"`
	Points     int      `yaml:"points" json:"points"`
	Group      string   `yaml:"group,omitempty" json:"group,omitempty"`
	Supersedes []string `yaml:"supersedes,omitempty" json:"supersedes,omitempty"`
}

// FromWeights builds a membership rubric. allowed lists the legal point values;
// an empty list accepts any positive value. A superseding weight must score at
// least the sum of the weights it replaces so the score stays monotonic.
func FromWeights(name string, weights []Weight, allowed ...int) (Rubric[clinical.Set], error) {
	rub := Rubric[clinical.Set]{Name: name}
	byID := make(map[string]Weight, len(weights))
	for _, w := range weights {
		if w.ID == "" {
			return rub, fmt.Errorf("%s: weight without id", name)
		}
		id := clinical.Normalize(w.ID)
		if _, dup := byID[id]; dup {
			return rub, fmt.Errorf("%s: duplicate weight %q", name, id)
		}
		if w.Points <= 0 || (len(allowed) > 0 && !contains(allowed, w.Points)) {
			return rub, fmt.Errorf("%s: weight %q has invalid points %d", name, id, w.Points)
		}
		byID[id] = w
	}
	for _, w := range weights {
		replaced := 0
		for _, s := range w.Supersedes {
			target, ok := byID[clinical.Normalize(s)]
			if !ok {
				return rub, fmt.Errorf("%s: %q supersedes unknown weight %q", name, w.ID, s)
			}
			replaced += target.Points
		}
		if replaced > w.Points {
			return rub, fmt.Errorf("%s: %q (%d) supersedes weights worth %d", name, w.ID, w.Points, replaced)
		}
	}

	for _, w := range weights {
		id := clinical.Normalize(w.ID)
		sup := make([]string, len(w.Supersedes))
		for i, s := range w.Supersedes {
			sup[i] = clinical.Normalize(s)
		}
		rub.Rules = append(rub.Rules, Rule[clinical.Set]{
			ID:         id,
			Points:     w.Points,
			Group:      w.Group,
			Supersedes: sup,
			When:       func(s clinical.Set) bool { return s.Has(id) },
		})
	}
	rub.Max = maxScore(rub.Rules)
	return rub, nil
}

// maxScore is the score with every non-superseded rule matched.
func maxScore[T any](rules []Rule[T]) int {
	superseded := map[string]bool{}
	for _, r := range rules {
		for _, id := range r.Supersedes {
			superseded[id] = true
		}
	}
	groups := map[string]int{}
	total := 0
	for _, r := range rules {
		if superseded[r.ID] {
			continue
		}
		if r.Group != "" {
			if r.Points > groups[r.Group] {
				groups[r.Group] = r.Points
			}
			continue
		}
		total += r.Points
	}
	for _, p := range groups {
		total += p
	}
	return total
}

func contains(xs []int, v int) bool {
	for _, x := range xs {
		if x == v {
			return true
		}
	}
	return false
}
