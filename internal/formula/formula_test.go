package formula

import (
	"errors"
	"math"
	"testing"

	"github.com/astrobsm/criticalcare/internal/platform/clinical"
	"github.com/astrobsm/criticalcare/internal/platform/result"
)

func isGuard(err error) bool {
	var g *result.ArithmeticGuardError
	return errors.As(err, &g)
}

func TestRoundHalfUp(t *testing.T) {
	tests := []struct {
		x      float64
		places int
		want   float64
	}{
		{262.5, 0, 263}, {262.49, 0, 262}, {1.845, 2, 1.85}, {-2.5, 0, -3}, {0, 1, 0},
	}
	for _, tt := range tests {
		if got := RoundHalfUp(tt.x, tt.places); got != tt.want {
			t.Errorf("RoundHalfUp(%v, %d) = %v, want %v", tt.x, tt.places, got, tt.want)
		}
	}
}

func TestParklandFluid_Reference(t *testing.T) {
	p, err := ParklandFluid(70, 30)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.TotalML != 8400 || p.First8hML != 4200 || p.Next16hML != 4200 {
		t.Errorf("volumes = %+v", p)
	}
	if p.First8hRate != 525 {
		t.Errorf("first 8h rate = %v, want 525", p.First8hRate)
	}
	if p.Next16hRate != 263 {
		t.Errorf("next 16h rate = %v, want 263", p.Next16hRate)
	}
	q := p.Quantities()
	if len(q) != 5 || q[0].ID != "parkland_total_24h" || q[0].Value != 8400 || q[0].Unit != "mL" {
		t.Errorf("unexpected quantities %+v", q)
	}
}

func TestParklandFluid_HalvesSumToTotal(t *testing.T) {
	tests := []struct {
		weight, tbsa        float64
		total, first, next float64
	}{
		{70, 30, 8400, 4200, 4200},
		{70.25, 1, 281, 141, 140},
		{10.125, 7, 284, 142, 142},
		{3.3, 15, 198, 99, 99},
		{5.05, 9, 182, 91, 91},
	}
	for _, tt := range tests {
		p, err := ParklandFluid(tt.weight, tt.tbsa)
		if err != nil {
			t.Fatalf("%v kg %v%%: %v", tt.weight, tt.tbsa, err)
		}
		if p.TotalML != tt.total || p.First8hML != tt.first || p.Next16hML != tt.next {
			t.Errorf("%v kg %v%%: got %v = %v + %v, want %v = %v + %v",
				tt.weight, tt.tbsa, p.TotalML, p.First8hML, p.Next16hML, tt.total, tt.first, tt.next)
		}
		if p.First8hML+p.Next16hML != p.TotalML {
			t.Errorf("%v kg %v%%: halves do not sum to total", tt.weight, tt.tbsa)
		}
	}
}

func TestParklandFluid_MonotonicInTBSA(t *testing.T) {
	prev := -1.0
	for tbsa := 1.0; tbsa <= 100; tbsa++ {
		p, err := ParklandFluid(70, tbsa)
		if err != nil {
			t.Fatal(err)
		}
		if p.TotalML <= prev {
			t.Fatalf("total not increasing at %v%%: %v <= %v", tbsa, p.TotalML, prev)
		}
		prev = p.TotalML
	}
}

func TestParklandFluid_Guards(t *testing.T) {
	if _, err := ParklandFluid(0, 30); !isGuard(err) {
		t.Errorf("expected guard for zero weight, got %v", err)
	}
	if _, err := ParklandFluid(70, 101); !isGuard(err) {
		t.Errorf("expected guard for tbsa > 100, got %v", err)
	}
	if err := result.Validation(func() error { _, err := ParklandFluid(0, 1); return err }()); !result.IsValidation(err) {
		t.Errorf("guard should convert to validation error, got %v", err)
	}
}

func TestParklandSchedule(t *testing.T) {
	p, _ := ParklandFluid(70, 30)
	tests := []struct {
		name          string
		hours, given  float64
		window        string
		remainingML   float64
		rate          float64
	}{
		{"at burn", 0, 0, "first_8h", 4200, 525},
		{"late arrival", 2, 0, "first_8h", 4200, 700},
		{"late with prehospital fluid", 2, 1200, "first_8h", 3000, 500},
		{"overgiven", 4, 5000, "first_8h", 0, 0},
		{"second window", 12, 5000, "next_16h", 3400, 283},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := p.Schedule(tt.hours, tt.given)
			if err != nil {
				t.Fatal(err)
			}
			if s.Window != tt.window || s.RemainingML != tt.remainingML || s.Rate != tt.rate {
				t.Errorf("got %+v", s)
			}
		})
	}
	if _, err := p.Schedule(24, 0); !isGuard(err) {
		t.Error("expected guard at 24 h")
	}
	if _, err := p.Schedule(-1, 0); !isGuard(err) {
		t.Error("expected guard for negative hours")
	}
}

func TestDuBois(t *testing.T) {
	bsa, err := DuBois(70, 175)
	if err != nil || bsa != 1.85 {
		t.Errorf("DuBois(70,175) = %v, %v; want 1.85", bsa, err)
	}
	if _, err := DuBois(70, 0); !isGuard(err) {
		t.Errorf("expected guard for zero height, got %v", err)
	}
}

func TestEvaporativeLoss(t *testing.T) {
	h, d, err := EvaporativeLoss(30, 1.85)
	if err != nil {
		t.Fatal(err)
	}
	// (25 + 30) × 1.85 = 101.75
	if h != 102 || d != 2442 {
		t.Errorf("got hourly %v daily %v", h, d)
	}
	if _, _, err := EvaporativeLoss(30, 0); !isGuard(err) {
		t.Error("expected guard for zero BSA")
	}
}

func TestHollidaySegar(t *testing.T) {
	for _, tt := range []struct{ kg, want float64 }{{8, 800}, {10, 1000}, {15, 1250}, {20, 1500}, {25, 1600}} {
		got, err := HollidaySegar(tt.kg)
		if err != nil || got != tt.want {
			t.Errorf("HollidaySegar(%v) = %v, %v; want %v", tt.kg, got, err, tt.want)
		}
	}
	ml, id, err := Maintenance(70, false)
	if err != nil || ml != 2100 || id != FAdultMaint {
		t.Errorf("adult maintenance = %v %s %v", ml, id, err)
	}
}

func TestDehydrationDeficit(t *testing.T) {
	for _, tt := range []struct {
		sev  string
		want float64
	}{{"none", 0}, {"mild", 600}, {"moderate", 1200}, {"severe", 1800}} {
		got, err := DehydrationDeficit(20, tt.sev)
		if err != nil || got != tt.want {
			t.Errorf("DehydrationDeficit(20, %s) = %v, %v; want %v", tt.sev, got, err, tt.want)
		}
	}
	if _, err := DehydrationDeficit(20, "extreme"); !isGuard(err) {
		t.Error("expected guard for unknown severity")
	}
}

func TestTBWFraction(t *testing.T) {
	tests := []struct {
		sex  clinical.Sex
		age  float64
		want float64
	}{
		{clinical.Male, 10, 0.6}, {clinical.Female, 10, 0.6},
		{clinical.Male, 40, 0.6}, {clinical.Female, 40, 0.5},
		{clinical.Male, 70, 0.5}, {clinical.Female, 70, 0.45},
	}
	for _, tt := range tests {
		if got := TBWFraction(tt.sex, tt.age); got != tt.want {
			t.Errorf("TBWFraction(%s, %v) = %v, want %v", tt.sex, tt.age, got, tt.want)
		}
	}
}

func TestSodiumFormulas(t *testing.T) {
	tbw, _ := TotalBodyWater(70, clinical.Male, 40) // 42 L
	if tbw != 42 {
		t.Fatalf("tbw = %v", tbw)
	}
	fwd, err := FreeWaterDeficit(tbw, 154, 140)
	if err != nil || fwd != 4200 {
		t.Errorf("free water deficit = %v, %v; want 4200", fwd, err)
	}
	if fwd, _ := FreeWaterDeficit(tbw, 130, 140); fwd != 0 {
		t.Errorf("free water deficit for hyponatraemia should clamp to 0, got %v", fwd)
	}
	nad, err := SodiumDeficit(tbw, 120, 130)
	if err != nil || nad != 420 {
		t.Errorf("sodium deficit = %v, %v; want 420", nad, err)
	}
	delta, err := SodiumChangePerLitre(tbw, 120, 513, 0)
	if err != nil || delta != 9.1 {
		t.Errorf("3%% saline change = %v, %v; want 9.1", delta, err)
	}
	delta, _ = SodiumChangePerLitre(tbw, 160, 0, 0)
	if delta >= 0 {
		t.Errorf("dextrose should lower sodium, got %v", delta)
	}
	if _, err := FreeWaterDeficit(tbw, 150, 0); !isGuard(err) {
		t.Error("expected guard for zero target")
	}
}

func TestMAP(t *testing.T) {
	if m, ok := MAP(90, 60); !ok || m != 70 {
		t.Errorf("MAP(90,60) = %v, %v", m, ok)
	}
	if m, ok := MAP(120, 80); !ok || m != 93 {
		t.Errorf("MAP(120,80) = %v, %v", m, ok)
	}
	if _, ok := MAP(0, 60); ok {
		t.Error("MAP without SBP must not be computed")
	}
}

func TestBMIAndHarrisBenedict(t *testing.T) {
	if bmi, _ := BMI(70, 175); bmi != 22.9 {
		t.Errorf("BMI = %v", bmi)
	}
	bmr, err := HarrisBenedict(70, 175, 40, clinical.Male)
	// 66.47 + 962.5 + 875.525 - 270.2 = 1634.295
	if err != nil || bmr != 1634 {
		t.Errorf("BMR = %v, %v", bmr, err)
	}
	if _, err := HarrisBenedict(70, 175, 40, clinical.SexUnknown); !isGuard(err) {
		t.Error("expected guard for unknown sex")
	}
}

func TestRenalEstimates(t *testing.T) {
	if egfr, err := CKDEPI2021(88.4, 50, clinical.Male); err != nil || egfr != 92 {
		t.Errorf("CKD-EPI male = %v, %v; want 92", egfr, err)
	}
	if egfr, err := CKDEPI2021(70, 60, clinical.Female); err != nil || egfr != 85 {
		t.Errorf("CKD-EPI female = %v, %v; want 85", egfr, err)
	}
	if crcl, err := CockcroftGault(60, 70, 100, clinical.Male); err != nil || crcl != 69 {
		t.Errorf("Cockcroft-Gault = %v, %v; want 69", crcl, err)
	}
	if _, err := CKDEPI2021(0, 50, clinical.Male); !isGuard(err) {
		t.Error("expected guard for zero creatinine")
	}
}

func TestTBSA(t *testing.T) {
	got, err := TBSA([]Region{{RegionHead, 9}, {RegionAnteriorTrunk, 18}, {RegionRightArm, 4.5}}, false)
	if err != nil || got != 31.5 {
		t.Errorf("TBSA = %v, %v", got, err)
	}
	if _, err := TBSA([]Region{{RegionHead, 12}}, false); !result.IsValidation(err) {
		t.Error("expected adult head > 9% rejection")
	}
	if got, err := TBSA([]Region{{RegionHead, 12}}, true); err != nil || got != 12 {
		t.Errorf("child head 12%% should be accepted: %v %v", got, err)
	}
	if _, err := TBSA([]Region{{"tail", 1}}, false); !result.IsValidation(err) {
		t.Error("expected unknown region rejection")
	}
	var all []Region
	for _, n := range RegionNames() {
		m, _ := RegionMax(n, false)
		all = append(all, Region{n, m})
	}
	if got, err := TBSA(all, false); err != nil || got != 100 {
		t.Errorf("full-body TBSA = %v, %v", got, err)
	}
}

func TestQuantityClamps(t *testing.T) {
	q := Quantity("x", "x", -5, "mL", FWeightBased, 0)
	if q.Value != 0 {
		t.Errorf("expected clamp to 0, got %v", q.Value)
	}
	if q := Quantity("x", "x", math.NaN(), "mL", FWeightBased, 0); q.Value != 0 {
		t.Errorf("NaN should clamp to 0, got %v", q.Value)
	}
	if q := SignedQuantity("x", "x", -2.25, "mmol/L", FAdrogueMadias, 1); q.Value != -2.3 {
		t.Errorf("signed quantity = %v", q.Value)
	}
}
