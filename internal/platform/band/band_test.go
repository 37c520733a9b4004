package band

import (
	"math"
	"testing"

	"github.com/astrobsm/criticalcare/internal/platform/result"
)

func gfrBands() *Classifier {
	return MustNew("gfr", 0, 200,
		Band{Lower: 0, Code: "dialysis", Label: "Kidney failure", Tier: Critical},
		Band{Lower: 15, Code: "severe", Label: "Severe", Tier: High},
		Band{Lower: 30, Code: "moderate", Label: "Moderate", Tier: Moderate},
		Band{Lower: 60, Code: "mild", Label: "Mild", Tier: Low},
		Band{Lower: 90, Code: "normal", Label: "Normal", Tier: Normal},
	)
}

func TestClassify_Boundaries(t *testing.T) {
	c := gfrBands()
	tests := []struct {
		v    float64
		want string
	}{
		{0, "dialysis"}, {14.99, "dialysis"}, {15, "severe"}, {29.9, "severe"},
		{30, "moderate"}, {45, "moderate"}, {59.999, "moderate"}, {60, "mild"},
		{89, "mild"}, {90, "normal"}, {200, "normal"},
	}
	for _, tt := range tests {
		b, err := c.Classify(tt.v)
		if err != nil {
			t.Fatalf("Classify(%v): %v", tt.v, err)
		}
		if b.Code != tt.want {
			t.Errorf("Classify(%v) = %s, want %s", tt.v, b.Code, tt.want)
		}
	}
}

func TestClassify_OutOfDomain(t *testing.T) {
	c := gfrBands()
	for _, v := range []float64{-0.1, 200.1, math.NaN()} {
		if _, err := c.Classify(v); !result.IsValidation(err) {
			t.Errorf("Classify(%v): expected validation error, got %v", v, err)
		}
	}
}

func TestClassify_ExhaustiveNoOverlap(t *testing.T) {
	c := gfrBands()
	bands := c.Bands()
	for v := 0.0; v <= 200; v += 0.25 {
		b, err := c.Classify(v)
		if err != nil {
			t.Fatalf("gap at %v: %v", v, err)
		}
		hits := 0
		for i, cand := range bands {
			upper := math.Inf(1)
			if i+1 < len(bands) {
				upper = bands[i+1].Lower
			}
			if v >= cand.Lower && v < upper {
				hits++
				if cand.Code != b.Code {
					t.Fatalf("%v classified %s but lies in %s", v, b.Code, cand.Code)
				}
			}
		}
		if hits != 1 {
			t.Fatalf("%v lies in %d bands", v, hits)
		}
	}
}

func TestNew_Rejects(t *testing.T) {
	if _, err := New("x", 0, 10); err == nil {
		t.Error("expected error for no bands")
	}
	if _, err := New("x", 0, 10, Band{Lower: 1, Code: "a"}); err == nil {
		t.Error("expected error for gap at domain start")
	}
	if _, err := New("x", 0, 10, Band{Lower: 0, Code: "a"}, Band{Lower: 0, Code: "b"}); err == nil {
		t.Error("expected error for overlapping bands")
	}
	if _, err := New("x", 0, 5, Band{Lower: 0, Code: "a"}, Band{Lower: 5, Code: "b"}); err == nil {
		t.Error("expected error for empty last band")
	}
}

func TestUnboundedMax(t *testing.T) {
	c := MustNew("caprini", 0, math.Inf(1),
		Band{Lower: 0, Code: "very_low"},
		Band{Lower: 9, Code: "highest"},
	)
	b, err := c.Classify(40)
	if err != nil || b.Code != "highest" {
		t.Errorf("got %v %v", b, err)
	}
}

func TestTierText(t *testing.T) {
	var tier Tier
	if err := tier.UnmarshalText([]byte("high")); err != nil || tier != High {
		t.Errorf("got %v %v", tier, err)
	}
	if err := tier.UnmarshalText([]byte("bogus")); err == nil {
		t.Error("expected error")
	}
	b, _ := Critical.MarshalText()
	if string(b) != "critical" {
		t.Errorf("got %s", b)
	}
}

func TestResult(t *testing.T) {
	r, err := gfrBands().Result(45)
	if err != nil {
		t.Fatal(err)
	}
	if r.Parameter != "gfr" || r.Code != "moderate" || r.Tier != "moderate" || r.Value != 45 {
		t.Errorf("unexpected %+v", r)
	}
}
