// Package compose builds ordered recommendation sections from cascades of
// (predicate, text) rules. Within a topic the cascade is evaluated top to
// bottom and the first match wins; boilerplate and every matching warning are
// then appended in declaration order.
package compose

import "github.com/astrobsm/criticalcare/internal/platform/result"

// Rule pairs a predicate with the lines it contributes. A nil When always
// matches and is used as the default entry at the bottom of a cascade.
type Rule[T any] struct {
	Name  string
	When  func(T) bool
	Lines func(T) []string
}

func (r Rule[T]) matches(in T) bool { return r.When == nil || r.When(in) }

// Topic is one output section.
type Topic[T any] struct {
	ID          string
	Title       string
	Cascade     []Rule[T]
	Boilerplate []string
	Warnings    []Rule[T]
}

// Select returns the name of the cascade rule that wins for in, or "".
func (t Topic[T]) Select(in T) string {
	for _, r := range t.Cascade {
		if r.matches(in) {
			return r.Name
		}
	}
	return ""
}

// Compose renders the section for in.
func (t Topic[T]) Compose(in T) result.Section {
	sec := result.Section{ID: t.ID, Title: t.Title, Lines: []string{}}
	for _, r := range t.Cascade {
		if r.matches(in) {
			sec.Lines = append(sec.Lines, render(r, in)...)
			break
		}
	}
	sec.Lines = append(sec.Lines, t.Boilerplate...)
	for _, w := range t.Warnings {
		if w.matches(in) {
			sec.Lines = append(sec.Lines, render(w, in)...)
		}
	}
	return sec
}

func render[T any](r Rule[T], in T) []string {
	if r.Lines == nil {
		return nil
	}
	return r.Lines(in)
}

// Plan is the ordered list of topics of one calculator.
type Plan[T any] []Topic[T]

// Compose renders every topic in order, omitting empty sections.
func (p Plan[T]) Compose(in T) []result.Section {
	out := make([]result.Section, 0, len(p))
	for _, t := range p {
		sec := t.Compose(in)
		if len(sec.Lines) == 0 {
			continue
		}
		out = append(out, sec)
	}
	return out
}

// Static returns a Lines function with fixed text.
func Static[T any](lines ...string) func(T) []string {
	return func(T) []string { return lines }
}

// When builds a rule.
func When[T any](name string, when func(T) bool, lines ...string) Rule[T] {
	return Rule[T]{Name: name, When: when, Lines: Static[T](lines...)}
}

// Default builds the catch-all rule at the end of a cascade.
func Default[T any](name string, lines ...string) Rule[T] {
	return Rule[T]{Name: name, Lines: Static[T](lines...)}
}
