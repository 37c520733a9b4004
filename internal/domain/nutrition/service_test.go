package nutrition

import (
	"testing"

	"github.com/astrobsm/criticalcare/internal/platform/clinical"
	"github.com/astrobsm/criticalcare/internal/platform/input"
	"github.com/astrobsm/criticalcare/internal/platform/result"
	"github.com/astrobsm/criticalcare/internal/refdata"
)

func newCalculator(t *testing.T) *Calculator {
	t.Helper()
	tables, err := refdata.Default()
	if err != nil {
		t.Fatalf("load tables: %v", err)
	}
	return New(tables.Foods)
}

func TestEvaluate_WellAdult(t *testing.T) {
	res, err := newCalculator(t).Evaluate(Input{
		WeightKg: 70, HeightCm: 175, Age: 40, Sex: clinical.Male,
		Activity: "ambulatory", WoundSeverity: "none",
	})
	if err != nil {
		t.Fatal(err)
	}
	checks := map[string]float64{
		"bmi":            22.9,
		"bmr":            1634,
		"energy_target":  2124,
		"protein_target": 70,
		"fluid_target":   2100,
	}
	for id, want := range checks {
		if q, ok := res.Quantity(id); !ok || q.Value != want {
			t.Errorf("%s = %+v, want %v", id, q, want)
		}
	}
	sc, _ := res.Score("must")
	if sc.Raw != 0 {
		t.Errorf("MUST = %d, want 0", sc.Raw)
	}
	if b, _ := res.Band("must_risk"); b.Code != "low" {
		t.Errorf("band = %s", b.Code)
	}
	if _, ok := res.Section("wound"); ok {
		t.Error("no wound section without a wound")
	}
}

func TestEvaluate_HighRiskSevereWound(t *testing.T) {
	res, err := newCalculator(t).Evaluate(Input{
		WeightKg: 45, HeightCm: 165, Age: 60, Sex: clinical.Female,
		WeightLossPercent: 12, AcuteDisease: true,
		Activity: "bedbound", WoundSeverity: "severe",
	})
	if err != nil {
		t.Fatal(err)
	}
	sc, _ := res.Score("must")
	if sc.Raw != 6 || len(sc.Matched) != 3 {
		t.Errorf("MUST = %+v, want 6 from three items", sc)
	}
	if b, _ := res.Band("must_risk"); b.Code != "high" {
		t.Errorf("band = %s", b.Code)
	}
	if q, _ := res.Quantity("energy_target"); q.Value != 1998 {
		t.Errorf("energy = %v, want 1998", q.Value)
	}
	if q, _ := res.Quantity("protein_target"); q.Value != 90 {
		t.Errorf("protein = %v, want 90", q.Value)
	}
	nut, _ := res.Section("nutrition")
	if !nut.Contains("refer to a dietitian") || !nut.Contains("energy 1998 kcal/day") {
		t.Errorf("nutrition = %v", nut.Lines)
	}
	if w, _ := res.Section("wound"); !w.Contains("2.0 g/kg/day") {
		t.Errorf("wound = %v", w.Lines)
	}
	if res.Flag("refeeding_risk") {
		t.Error("BMI 16.5 with 12% loss is below the refeeding criteria")
	}
}

func TestMUST_Bands(t *testing.T) {
	tests := []struct {
		name  string
		bmi   float64
		loss  float64
		acute bool
		raw   int
		code  string
	}{
		{"healthy", 22, 0, false, 0, "low"},
		{"bmi 20 edge", 20, 0, false, 1, "medium"},
		{"bmi 18.5 edge", 18.5, 0, false, 1, "medium"},
		{"underweight", 18.4, 0, false, 2, "high"},
		{"loss 5", 22, 5, false, 1, "medium"},
		{"loss 10", 22, 10, false, 1, "medium"},
		{"loss above 10", 22, 10.5, false, 2, "high"},
		{"acute only", 22, 0, true, 2, "high"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := assessment{Input: Input{WeightLossPercent: tt.loss, AcuteDisease: tt.acute}, BMI: tt.bmi}
			sc := MUST.Evaluate(a)
			if sc.Raw != tt.raw {
				t.Errorf("raw = %d, want %d", sc.Raw, tt.raw)
			}
			b, err := Risk.Classify(float64(sc.Raw))
			if err != nil || b.Code != tt.code {
				t.Errorf("band = %s (%v), want %s", b.Code, err, tt.code)
			}
		})
	}
}

func TestEvaluate_FoodPlan(t *testing.T) {
	res, err := newCalculator(t).Evaluate(Input{
		WeightKg: 70, HeightCm: 175, Age: 40, Sex: clinical.Male,
		Activity: "ambulatory", WoundSeverity: "none",
		Foods: []Food{
			{Name: "boiled_egg", Grams: 100},
			{Name: "oral_nutritional_supplement", Grams: 400},
			{Name: "white_rice", Grams: 300},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Portions) != 3 || res.Portions[0].Food != "Boiled egg" || res.Portions[0].Kcal != 155 {
		t.Fatalf("portions = %+v", res.Portions)
	}
	checks := map[string]float64{
		"plan_kcal":             1145,
		"plan_protein":          44.7,
		"plan_kcal_coverage":    54,
		"plan_protein_coverage": 64,
	}
	for id, want := range checks {
		if q, ok := res.Quantity(id); !ok || q.Value != want {
			t.Errorf("%s = %+v, want %v", id, q, want)
		}
	}
	nut, _ := res.Section("nutrition")
	if !nut.Contains("less than 75%") || !nut.Contains("1145 kcal (54% of target)") {
		t.Errorf("nutrition = %v", nut.Lines)
	}
}

func TestCalculate_UnknownFood(t *testing.T) {
	_, err := newCalculator(t).Calculate(input.Record{
		"weight": 70, "height": 175, "sex": "male",
		"foods": map[string]interface{}{"ambrosia": 100},
	})
	if !result.IsLookupMiss(err) {
		t.Fatalf("expected lookup miss, got %v", err)
	}
}

func TestCalculate_Defaults(t *testing.T) {
	res, err := newCalculator(t).Calculate(input.Record{
		"weight": 60, "height": 160, "age": 30, "sex": "female",
		"activity": "active", "wound_severity": "moderate",
	})
	if err != nil {
		t.Fatal(err)
	}
	if q, _ := res.Quantity("energy_target"); q.Value != 2521 {
		t.Errorf("energy = %v, want 2521", q.Value)
	}
	if q, _ := res.Quantity("protein_target"); q.Value != 90 {
		t.Errorf("protein = %v, want 90", q.Value)
	}
	in, _ := Parse(input.Record{"weight": 60, "height": 160, "sex": "female"})
	if in.Activity != "ambulatory" || in.WoundSeverity != "none" {
		t.Errorf("defaults = %s / %s", in.Activity, in.WoundSeverity)
	}
}

func TestCalculate_Rejects(t *testing.T) {
	tests := []struct {
		rec   input.Record
		field string
	}{
		{input.Record{"height": 175, "sex": "male"}, "weight"},
		{input.Record{"weight": 70, "sex": "male"}, "height"},
		{input.Record{"weight": 70, "height": 20, "sex": "male"}, "height"},
		{input.Record{"weight": 70, "height": 175}, "sex"},
		{input.Record{"weight": 70, "height": 175, "sex": "male", "activity": "sprinting"}, "activity"},
		{input.Record{"weight": 70, "height": 175, "sex": "male", "foods": map[string]interface{}{"eba": -5}}, "foods.eba"},
	}
	for _, tt := range tests {
		_, err := newCalculator(t).Calculate(tt.rec)
		v, ok := err.(*result.ValidationError)
		if !ok || v.Field != tt.field {
			t.Errorf("%v: error %v, want field %s", tt.rec, err, tt.field)
		}
	}
}

func TestEvaluate_Refeeding(t *testing.T) {
	res, err := newCalculator(t).Evaluate(Input{
		WeightKg: 50, HeightCm: 170, Age: 35, Sex: clinical.Female,
		WeightLossPercent: 20, Activity: "bedbound", WoundSeverity: "none",
	})
	if err != nil {
		t.Fatal(err)
	}
	if !res.Flag("refeeding_risk") {
		t.Error("20% weight loss is a refeeding risk")
	}
	if w, _ := res.Section("warnings"); !w.Contains("thiamine") {
		t.Errorf("warnings = %v", w.Lines)
	}
}
