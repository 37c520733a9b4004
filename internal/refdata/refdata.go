// Package refdata loads the versioned reference tables (Caprini weights, renal
// dose table, food composition). Defaults are embedded in the binary; a
// directory holding files of the same names overrides them, so tables can be
// updated without rebuilding.
package refdata

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/astrobsm/criticalcare/internal/platform/clinical"
	"github.com/astrobsm/criticalcare/internal/platform/dosing"
	"github.com/astrobsm/criticalcare/internal/platform/foodtable"
	"github.com/astrobsm/criticalcare/internal/platform/score"
)

// File names looked up in the data directory.
const (
	CapriniFile = "caprini.yaml"
	DosingFile  = "renal_dosing.yaml"
	FoodsFile   = "foods.yaml"
)

// Legal Caprini point values.
var capriniPoints = []int{1, 2, 3, 5}

//go:embed data/*.yaml
var embedded embed.FS

// Caprini is the compiled VTE risk-factor table.
type Caprini struct {
	Version string
	Weights []score.Weight
	Rubric  score.Rubric[clinical.Set]
	known   map[string]bool
}

// Known reports whether id is a factor of the table.
func (c *Caprini) Known(id string) bool { return c.known[clinical.Normalize(id)] }

// Tables is the full reference data set.
type Tables struct {
	Caprini *Caprini
	Dosing  *dosing.Table
	Foods   *foodtable.Table
}

// Versions returns the version of every table, keyed by file name.
func (t *Tables) Versions() map[string]string {
	return map[string]string{
		CapriniFile: t.Caprini.Version,
		DosingFile:  t.Dosing.Version(),
		FoodsFile:   t.Foods.Version(),
	}
}

// Load reads the tables from dir, or the embedded defaults when dir is empty.
func Load(dir string) (*Tables, error) {
	if dir == "" {
		return Default()
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("reference data dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("reference data dir: %s is not a directory", dir)
	}
	return LoadFS(os.DirFS(dir))
}

// Default returns the embedded tables.
func Default() (*Tables, error) {
	sub, err := fs.Sub(embedded, "data")
	if err != nil {
		return nil, err
	}
	return LoadFS(sub)
}

// LoadFS reads and compiles the three tables from fsys.
func LoadFS(fsys fs.FS) (*Tables, error) {
	caprini, err := loadCaprini(fsys)
	if err != nil {
		return nil, err
	}
	dose, err := loadDosing(fsys)
	if err != nil {
		return nil, err
	}
	foods, err := loadFoods(fsys)
	if err != nil {
		return nil, err
	}
	return &Tables{Caprini: caprini, Dosing: dose, Foods: foods}, nil
}

type capriniFile struct {
	Version string         `yaml:"version"`
	Factors []score.Weight `yaml:"factors"`
}

type dosingFile struct {
	Version string        `yaml:"version"`
	Drugs   []dosing.Rule `yaml:"drugs"`
}

type foodsFile struct {
	Version string           `yaml:"version"`
	Foods   []foodtable.Food `yaml:"foods"`
}

func loadCaprini(fsys fs.FS) (*Caprini, error) {
	var f capriniFile
	if err := decode(fsys, CapriniFile, &f); err != nil {
		return nil, err
	}
	if f.Version == "" {
		return nil, fmt.Errorf("%s: version is required", CapriniFile)
	}
	rub, err := score.FromWeights("caprini", f.Factors, capriniPoints...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", CapriniFile, err)
	}
	c := &Caprini{Version: f.Version, Weights: f.Factors, Rubric: rub, known: map[string]bool{}}
	for _, w := range f.Factors {
		c.known[clinical.Normalize(w.ID)] = true
	}
	return c, nil
}

func loadDosing(fsys fs.FS) (*dosing.Table, error) {
	var f dosingFile
	if err := decode(fsys, DosingFile, &f); err != nil {
		return nil, err
	}
	if f.Version == "" {
		return nil, fmt.Errorf("%s: version is required", DosingFile)
	}
	t, err := dosing.Compile(f.Version, f.Drugs)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", DosingFile, err)
	}
	return t, nil
}

func loadFoods(fsys fs.FS) (*foodtable.Table, error) {
	var f foodsFile
	if err := decode(fsys, FoodsFile, &f); err != nil {
		return nil, err
	}
	if f.Version == "" {
		return nil, fmt.Errorf("%s: version is required", FoodsFile)
	}
	t, err := foodtable.New(f.Version, f.Foods)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", FoodsFile, err)
	}
	return t, nil
}

func decode(fsys fs.FS, name string, v interface{}) error {
	b, err := fs.ReadFile(fsys, name)
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("parse %s: %w", name, err)
	}
	return nil
}
