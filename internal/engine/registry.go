// Package engine dispatches raw input records to the calculators and exposes
// them over HTTP. The calculators themselves are pure; everything with a
// clock, a logger or a database lives here or further out.
package engine

import (
	"fmt"

	"github.com/astrobsm/criticalcare/internal/domain/braden"
	"github.com/astrobsm/criticalcare/internal/domain/burns"
	"github.com/astrobsm/criticalcare/internal/domain/fluids"
	"github.com/astrobsm/criticalcare/internal/domain/nutrition"
	"github.com/astrobsm/criticalcare/internal/domain/preop"
	"github.com/astrobsm/criticalcare/internal/domain/renal"
	"github.com/astrobsm/criticalcare/internal/domain/sepsis"
	"github.com/astrobsm/criticalcare/internal/domain/sodium"
	"github.com/astrobsm/criticalcare/internal/domain/vte"
	"github.com/astrobsm/criticalcare/internal/platform/input"
	"github.com/astrobsm/criticalcare/internal/platform/result"
	"github.com/astrobsm/criticalcare/internal/refdata"
)

// Calculator turns one raw record into a result.
type Calculator interface {
	ID() string
	Title() string
	Calculate(rec input.Record) (*result.Result, error)
}

// Info describes a registered calculator.
type Info struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// Registry holds calculators in registration order.
type Registry struct {
	order []string
	byID  map[string]Calculator
}

// NewRegistry builds every calculator against the given reference tables.
func NewRegistry(tables *refdata.Tables) (*Registry, error) {
	if tables == nil {
		return nil, fmt.Errorf("engine: reference tables are required")
	}
	caprini, err := vte.New(tables.Caprini)
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}
	r := &Registry{byID: map[string]Calculator{}}
	err = r.Register(
		burns.New(),
		sepsis.New(),
		caprini,
		renal.New(tables.Dosing),
		fluids.New(),
		sodium.New(),
		nutrition.New(tables.Foods),
		braden.New(),
		preop.New(),
	)
	if err != nil {
		return nil, err
	}
	return r, nil
}

// Register adds calculators. Ids must be unique.
func (r *Registry) Register(calcs ...Calculator) error {
	if r.byID == nil {
		r.byID = map[string]Calculator{}
	}
	for _, c := range calcs {
		if _, dup := r.byID[c.ID()]; dup {
			return fmt.Errorf("engine: duplicate calculator %q", c.ID())
		}
		r.byID[c.ID()] = c
		r.order = append(r.order, c.ID())
	}
	return nil
}

// Get returns the calculator with the given id.
func (r *Registry) Get(id string) (Calculator, bool) {
	c, ok := r.byID[id]
	return c, ok
}

// List describes the calculators in registration order.
func (r *Registry) List() []Info {
	out := make([]Info, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, Info{ID: id, Title: r.byID[id].Title()})
	}
	return out
}
