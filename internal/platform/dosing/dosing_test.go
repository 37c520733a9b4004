package dosing

import (
	"errors"
	"strings"
	"testing"

	"github.com/astrobsm/criticalcare/internal/platform/result"
)

func metformin() Rule {
	return Rule{
		Name:       "Metformin",
		Indication: "Type 2 diabetes",
		Doses: map[string]string{
			Normal:   "500-1000 mg twice daily",
			Mild:     "500-1000 mg twice daily",
			Moderate: "Max 1000 mg/day; review if GFR falls below 45",
			Severe:   "CONTRAINDICATED",
			Dialysis: "CONTRAINDICATED",
		},
		Intensity:       map[string]int{Normal: 100, Mild: 100, Moderate: 50, Severe: 0, Dialysis: 0},
		Contraindicated: []string{Severe, Dialysis},
	}
}

func gentamicin() Rule {
	return Rule{
		Name:       "Gentamicin",
		Indication: "Gram-negative sepsis",
		Doses: map[string]string{
			Normal:   "5-7 mg/kg once daily",
			Mild:     "5 mg/kg every 24-36 h by levels",
			Moderate: "5 mg/kg every 36-48 h by levels",
			Severe:   "5 mg/kg every 48 h by levels",
			Dialysis: "Loading 2 mg/kg then redose after each dialysis by levels",
		},
		Intensity: map[string]int{Normal: 100, Mild: 70, Moderate: 50, Severe: 35, Dialysis: 40},
		Exempt:    true,
	}
}

func TestCompile_Lookup(t *testing.T) {
	tbl, err := Compile("test", []Rule{metformin(), gentamicin()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tbl.Len() != 2 || tbl.Drugs()[0] != "Metformin" {
		t.Fatalf("unexpected drugs %v", tbl.Drugs())
	}

	tests := []struct {
		band        string
		adjust      bool
		contra      bool
		doseContain string
	}{
		{Normal, false, false, "500-1000"},
		{Mild, false, false, "500-1000"},
		{Moderate, true, false, "Max 1000"},
		{Severe, true, true, "CONTRAINDICATED"},
		{Dialysis, true, true, "CONTRAINDICATED"},
	}
	for _, tt := range tests {
		t.Run(tt.band, func(t *testing.T) {
			got, err := tbl.Lookup("  METFORMIN ", tt.band)
			if err != nil {
				t.Fatal(err)
			}
			if got.RequiresAdjustment != tt.adjust || got.Contraindicated != tt.contra {
				t.Errorf("flags = adjust %v contra %v", got.RequiresAdjustment, got.Contraindicated)
			}
			if !strings.Contains(got.Dose, tt.doseContain) {
				t.Errorf("dose %q does not contain %q", got.Dose, tt.doseContain)
			}
			if got.Baseline != "500-1000 mg twice daily" {
				t.Errorf("baseline = %q", got.Baseline)
			}
		})
	}
}

func TestLookup_Miss(t *testing.T) {
	tbl, _ := Compile("test", []Rule{metformin()})
	_, err := tbl.Lookup("unobtainium", Normal)
	var miss *result.LookupMiss
	if !errors.As(err, &miss) || miss.Table != TableName || miss.Key != "unobtainium" {
		t.Fatalf("expected LookupMiss, got %v", err)
	}
	if _, err := tbl.Lookup("metformin", "terrible"); !result.IsValidation(err) {
		t.Errorf("expected validation error for unknown band, got %v", err)
	}
}

func TestCompile_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Rule)
		want   string
	}{
		{"missing band text", func(r *Rule) { delete(r.Doses, Mild) }, "no dose"},
		{"missing intensity", func(r *Rule) { delete(r.Intensity, Mild) }, "no intensity"},
		{"flag without marker", func(r *Rule) { r.Contraindicated = []string{Moderate, Severe, Dialysis} }, "disagrees"},
		{"marker without flag", func(r *Rule) { r.Contraindicated = []string{Dialysis} }, "disagrees"},
		{"contraindicated with intensity", func(r *Rule) { r.Intensity[Dialysis] = 10; r.Intensity[Severe] = 10 }, "intensity 0"},
		{"rising intensity", func(r *Rule) { r.Intensity[Moderate] = 120 }, "rises"},
		{"unknown band", func(r *Rule) { r.Doses["terminal"] = "x" }, "unknown band"},
		{"unknown contraindicated band", func(r *Rule) { r.Contraindicated = append(r.Contraindicated, "x") }, "unknown contraindicated"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := metformin()
			tt.mutate(&r)
			_, err := Compile("test", []Rule{r})
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %v, want containing %q", err, tt.want)
			}
		})
	}
	if _, err := Compile("test", []Rule{metformin(), metformin()}); err == nil {
		t.Error("expected duplicate drug rejection")
	}
}

func TestCompile_ExemptMayRise(t *testing.T) {
	if _, err := Compile("test", []Rule{gentamicin()}); err != nil {
		t.Fatalf("exempt rule rejected: %v", err)
	}
	r := gentamicin()
	r.Exempt = false
	if _, err := Compile("test", []Rule{r}); err == nil {
		t.Fatal("non-exempt load-then-redose rule should be rejected")
	}
}

// Worsening band never yields a more intense dose for a non-exempt drug.
func TestTable_IntensityMonotonic(t *testing.T) {
	tbl, _ := Compile("test", []Rule{metformin(), gentamicin()})
	for _, name := range tbl.Drugs() {
		rule, _ := tbl.Rule(name)
		if rule.Exempt {
			continue
		}
		prev := 101
		for _, b := range Bands {
			v, ok := tbl.Intensity(name, b)
			if !ok {
				t.Fatalf("%s: no intensity for %s", name, b)
			}
			if v > prev {
				t.Errorf("%s: intensity rises at %s", name, b)
			}
			prev = v
		}
	}
}

func TestBandFor(t *testing.T) {
	tests := []struct {
		gfr      float64
		dialysis bool
		want     string
	}{
		{0, false, Dialysis},
		{14.9, false, Dialysis},
		{15, false, Severe},
		{29.9, false, Severe},
		{30, false, Moderate},
		{45, false, Moderate},
		{59.9, false, Moderate},
		{60, false, Mild},
		{90, false, Normal},
		{200, false, Normal},
		{75, true, Dialysis},
	}
	for _, tt := range tests {
		b, err := BandFor(tt.gfr, tt.dialysis)
		if err != nil {
			t.Fatalf("BandFor(%v) error: %v", tt.gfr, err)
		}
		if b.Code != tt.want {
			t.Errorf("BandFor(%v, %v) = %s, want %s", tt.gfr, tt.dialysis, b.Code, tt.want)
		}
	}
	if _, err := BandFor(-1, false); !result.IsValidation(err) {
		t.Errorf("expected validation error for negative GFR, got %v", err)
	}
	if _, err := BandFor(250, true); !result.IsValidation(err) {
		t.Errorf("expected validation error for GFR above domain, got %v", err)
	}
}

func TestReview(t *testing.T) {
	r := gentamicin()
	r.Doses[Severe] = r.Doses[Moderate]
	tbl, err := Compile("test", []Rule{r, metformin()})
	if err != nil {
		t.Fatal(err)
	}
	got := tbl.Review()
	if len(got) != 1 || !strings.Contains(got[0], "Gentamicin: moderate and severe") {
		t.Errorf("Review() = %v", got)
	}
	d, _ := tbl.Lookup("gentamicin", Severe)
	if d.Dose != r.Doses[Moderate] {
		t.Error("identical dose text must be kept verbatim")
	}
}

func TestLookup_NormalisedName(t *testing.T) {
	r := metformin()
	r.Name = "Piperacillin-tazobactam"
	tbl, _ := Compile("test", []Rule{r})
	for _, name := range []string{"piperacillin_tazobactam", "PIPERACILLIN TAZOBACTAM", "piperacillin-tazobactam"} {
		if _, err := tbl.Lookup(name, Normal); err != nil {
			t.Errorf("Lookup(%q): %v", name, err)
		}
	}
}
