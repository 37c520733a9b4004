package cdshooks

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/astrobsm/criticalcare/internal/platform/result"
)

func newTestHandler() (*Handler, *echo.Echo) {
	h := NewHandler()
	h.RegisterService(Service{
		Hook:        "patient-view",
		Title:       "Sepsis screen",
		Description: "qSOFA and SIRS on chart open",
		ID:          "sepsis",
	}, func(ctx context.Context, req Request) (*Response, error) {
		if _, ok := req.Context["inputs"]; !ok {
			return nil, result.Invalid("inputs", "is required")
		}
		return &Response{Cards: []Card{{Summary: "ok", Indicator: Info, Source: Source{Label: "test"}}}}, nil
	})
	h.RegisterService(Service{Hook: "patient-view", ID: "renal", Description: "Renal dosing"},
		func(ctx context.Context, req Request) (*Response, error) {
			return nil, &result.LookupMiss{Table: "renal_dosing", Key: "x"}
		})
	h.RegisterService(Service{Hook: "order-select", ID: "broken", Description: "Always fails"},
		func(ctx context.Context, req Request) (*Response, error) {
			return nil, errors.New("boom")
		})

	e := echo.New()
	h.RegisterRoutes(e.Group(""))
	return h, e
}

func serve(e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestDiscovery(t *testing.T) {
	_, e := newTestHandler()
	rec := serve(e, http.MethodGet, "/cds-services", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body struct {
		Services []Service `json:"services"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if len(body.Services) != 3 || body.Services[0].ID != "sepsis" || body.Services[2].ID != "broken" {
		t.Errorf("unexpected services %+v", body.Services)
	}
}

func TestHandleHook(t *testing.T) {
	_, e := newTestHandler()
	tests := []struct {
		name   string
		id     string
		body   string
		status int
	}{
		{"ok", "sepsis", `{"hook":"patient-view","hookInstance":"abc","context":{"inputs":{}}}`, http.StatusOK},
		{"validation", "sepsis", `{"hook":"patient-view","hookInstance":"abc","context":{}}`, http.StatusUnprocessableEntity},
		{"lookup miss", "renal", `{"hook":"patient-view","hookInstance":"abc"}`, http.StatusNotFound},
		{"handler error", "broken", `{"hook":"order-select","hookInstance":"abc"}`, http.StatusInternalServerError},
		{"unknown service", "apache", `{}`, http.StatusNotFound},
		{"hook mismatch", "sepsis", `{"hook":"order-sign","hookInstance":"abc"}`, http.StatusBadRequest},
		{"missing instance", "sepsis", `{"hook":"patient-view"}`, http.StatusBadRequest},
		{"bad json", "sepsis", `{`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(e, http.MethodPost, "/cds-services/"+tt.id, tt.body)
			if rec.Code != tt.status {
				t.Errorf("expected %d, got %d: %s", tt.status, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestHandleFeedback(t *testing.T) {
	h, e := newTestHandler()
	rec := serve(e, http.MethodPost, "/cds-services/sepsis/feedback", `{"card":"c1","outcome":"accepted"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("no-op feedback: expected 200, got %d", rec.Code)
	}

	var got Feedback
	h.SetFeedbackHandler(func(_ context.Context, id string, fb Feedback) error {
		got = fb
		return nil
	})
	serve(e, http.MethodPost, "/cds-services/sepsis/feedback", `{"card":"c2","outcome":"overridden"}`)
	if got.Card != "c2" || got.Outcome != "overridden" {
		t.Errorf("feedback = %+v", got)
	}

	if rec := serve(e, http.MethodPost, "/cds-services/nope/feedback", `{}`); rec.Code != http.StatusNotFound {
		t.Errorf("unknown service feedback: expected 404, got %d", rec.Code)
	}
}

func TestIndicator(t *testing.T) {
	tests := map[string]string{
		"normal":   Info,
		"low":      Info,
		"moderate": Warning,
		"high":     Warning,
		"critical": Critical,
		"":         Info,
	}
	for tier, want := range tests {
		if got := Indicator(tier); got != want {
			t.Errorf("Indicator(%q) = %s, want %s", tier, got, want)
		}
	}
}

func TestCards(t *testing.T) {
	res := result.New("renal")
	res.Bands = []result.BandResult{{Parameter: "gfr", Code: "severe", Label: "Severe impairment (15-29)", Tier: "high"}}
	res.Doses = []result.DoseRecommendation{{Drug: "Metformin", Band: "severe", Contraindicated: true}}
	res.Sections = []result.Section{
		{ID: "renal", Title: "Renal dosing", Lines: []string{"Reduce enoxaparin to once daily"}},
		{ID: "warnings", Title: "Warnings", Lines: []string{"Avoid nephrotoxins"}},
	}

	cards := Cards("Renal dose adjustment", res, Source{Label: "ccc"})
	if len(cards) != 2 {
		t.Fatalf("expected 2 cards, got %d", len(cards))
	}
	first := cards[0]
	if first.Indicator != Warning || !strings.Contains(first.Summary, "Severe impairment") {
		t.Errorf("summary card = %+v", first)
	}
	if !strings.Contains(first.Detail, "Reduce enoxaparin") || strings.Contains(first.Detail, "Avoid nephrotoxins") {
		t.Errorf("summary detail = %q", first.Detail)
	}
	warn := cards[1]
	if warn.Indicator != Critical {
		t.Errorf("contraindication must raise warnings card to critical, got %s", warn.Indicator)
	}
	if !strings.Contains(warn.Detail, "Metformin is contraindicated") || !strings.Contains(warn.Detail, "Avoid nephrotoxins") {
		t.Errorf("warnings detail = %q", warn.Detail)
	}
	if first.UUID == "" || first.UUID == warn.UUID {
		t.Error("cards need distinct uuids")
	}
}

func TestCards_NoWarnings(t *testing.T) {
	res := result.New("fluids")
	res.Sections = []result.Section{{ID: "fluids", Title: "Fluids", Lines: []string{"100 mL/h"}}}
	cards := Cards(strings.Repeat("x", 200), res, Source{Label: "ccc"})
	if len(cards) != 1 || cards[0].Indicator != Info {
		t.Fatalf("unexpected cards %+v", cards)
	}
	if n := len([]rune(cards[0].Summary)); n != maxSummary {
		t.Errorf("summary length = %d, want %d", n, maxSummary)
	}
}
