package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/astrobsm/criticalcare/internal/platform/input"
	"github.com/astrobsm/criticalcare/internal/platform/result"
	"github.com/astrobsm/criticalcare/internal/refdata"
)

func newTestService(t *testing.T) (*Service, *refdata.Tables) {
	t.Helper()
	tables, err := refdata.Default()
	if err != nil {
		t.Fatalf("refdata.Default: %v", err)
	}
	reg, err := NewRegistry(tables)
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	return NewService(reg, zerolog.Nop()), tables
}

type recorderStub struct {
	calls []*Outcome
	err   error
}

func (r *recorderStub) Record(_ context.Context, _ input.Record, out *Outcome) error {
	r.calls = append(r.calls, out)
	return r.err
}

type fixedCalc struct{ id string }

func (f fixedCalc) ID() string    { return f.id }
func (f fixedCalc) Title() string { return "Fixed" }
func (f fixedCalc) Calculate(input.Record) (*result.Result, error) {
	return result.New(f.id), nil
}

func TestRegistry_ListsEveryCalculator(t *testing.T) {
	svc, _ := newTestService(t)
	want := []string{"burns", "sepsis", "vte", "renal", "fluids", "sodium", "nutrition", "braden", "preop"}
	got := svc.Registry().List()
	if len(got) != len(want) {
		t.Fatalf("expected %d calculators, got %d", len(want), len(got))
	}
	for i, info := range got {
		if info.ID != want[i] {
			t.Errorf("calculator %d = %s, want %s", i, info.ID, want[i])
		}
		if info.Title == "" {
			t.Errorf("%s has no title", info.ID)
		}
	}
}

func TestRegistry_RejectsDuplicate(t *testing.T) {
	reg := &Registry{}
	if err := reg.Register(fixedCalc{"a"}); err != nil {
		t.Fatal(err)
	}
	if err := reg.Register(fixedCalc{"a"}); err == nil {
		t.Error("expected duplicate id error")
	}
	if _, err := NewRegistry(nil); err == nil {
		t.Error("expected error without tables")
	}
}

func TestService_Run(t *testing.T) {
	svc, _ := newTestService(t)
	rec := &recorderStub{}
	svc.SetRecorder(rec)

	out, err := svc.Run(context.Background(), "burns", input.Record{"weight": 70, "tbsa": 30})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Calculator != "burns" || out.Result == nil {
		t.Fatalf("unexpected outcome %+v", out)
	}
	q, ok := out.Result.Quantity("parkland_total_24h")
	if !ok || q.Value != 8400 {
		t.Errorf("parkland_total_24h = %+v", q)
	}
	if out.ComputedAt.IsZero() || out.ComputedAt.Location() != time.UTC {
		t.Errorf("computed_at = %v", out.ComputedAt)
	}
	if len(rec.calls) != 1 || rec.calls[0].ID != out.ID {
		t.Errorf("recorder calls = %d", len(rec.calls))
	}
}

func TestService_RecorderFailureDoesNotFailRun(t *testing.T) {
	svc, _ := newTestService(t)
	svc.SetRecorder(&recorderStub{err: errors.New("db down")})
	if _, err := svc.Run(context.Background(), "renal", input.Record{"gfr": 45}); err != nil {
		t.Fatalf("recording failure leaked into run: %v", err)
	}
}

func TestService_RunErrors(t *testing.T) {
	svc, _ := newTestService(t)
	rec := &recorderStub{}
	svc.SetRecorder(rec)

	tests := []struct {
		name string
		id   string
		rec  input.Record
		kind string
	}{
		{"unknown calculator", "apache", input.Record{}, "unknown_calculator"},
		{"missing weight", "burns", input.Record{"tbsa": 20}, "validation"},
		{"unknown drug", "renal", input.Record{"gfr": 45, "drugs": "unobtainium"}, "lookup_miss"},
		{"unknown food", "nutrition", input.Record{"weight": 70, "height": 175, "sex": "male", "foods": map[string]interface{}{"ambrosia": 100}}, "lookup_miss"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := svc.Run(context.Background(), tt.id, tt.rec)
			if err == nil {
				t.Fatal("expected error")
			}
			if out != nil {
				t.Error("no partial outcome may accompany an error")
			}
			if got := Kind(err); got != tt.kind {
				t.Errorf("Kind = %s, want %s (%v)", got, tt.kind, err)
			}
		})
	}
	if len(rec.calls) != 0 {
		t.Errorf("failed runs must not be recorded, got %d", len(rec.calls))
	}
}

// Identical input yields byte-identical result JSON for every calculator.
func TestService_Idempotent(t *testing.T) {
	svc, _ := newTestService(t)
	records := map[string]input.Record{
		"burns":     {"weight": 70, "tbsa": 30, "hours_since_burn": 2, "inhalation_injury": true},
		"sepsis":    {"respiratory_rate": 26, "systolic_bp": 90, "diastolic_bp": 60, "avpu": "voice", "lactate": 4.2, "weight": 70},
		"vte":       {"factors": "major_surgery, malignancy"},
		"renal":     {"gfr": 45, "comorbidities": "diabetes"},
		"fluids":    {"weight": 25},
		"sodium":    {"sodium": 118, "weight": 60, "age": 50, "sex": "female"},
		"nutrition": {"weight": 70, "height": 175, "age": 40, "sex": "male", "foods": map[string]interface{}{"boiled_egg": 100}},
		"braden":    {"sensory_perception": 2, "moisture": 2, "activity": 1, "mobility": 2, "nutrition": 2, "friction_shear": 1},
		"preop":     {"haemoglobin": 9, "glucose": 14, "creatinine": 110, "age": 60, "sex": "male"},
	}
	for id, rec := range records {
		t.Run(id, func(t *testing.T) {
			first, err := svc.Run(context.Background(), id, rec)
			if err != nil {
				t.Fatalf("run: %v", err)
			}
			second, err := svc.Run(context.Background(), id, rec)
			if err != nil {
				t.Fatalf("second run: %v", err)
			}
			a, _ := json.Marshal(first.Result)
			b, _ := json.Marshal(second.Result)
			if !bytes.Equal(a, b) {
				t.Errorf("results differ:\n%s\n%s", a, b)
			}
			if first.ID == second.ID {
				t.Error("each run must get its own id")
			}
		})
	}
}
