package engine

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/astrobsm/criticalcare/internal/platform/cdshooks"
)

func TestRegisterCDSServices(t *testing.T) {
	svc, _ := newTestService(t)
	h := cdshooks.NewHandler()
	svc.RegisterCDSServices(h)

	e := echo.New()
	h.RegisterRoutes(e.Group(""))

	req := httptest.NewRequest(http.MethodGet, "/cds-services", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	var disc struct {
		Services []cdshooks.Service `json:"services"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &disc); err != nil {
		t.Fatal(err)
	}
	if len(disc.Services) != 9 {
		t.Fatalf("expected 9 services, got %d", len(disc.Services))
	}

	body := `{"hook":"patient-view","hookInstance":"d1e2","context":{"inputs":{"gfr":20,"drugs":["metformin"]}}}`
	req = httptest.NewRequest(http.MethodPost, "/cds-services/renal", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp cdshooks.Response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Cards) != 2 || resp.Cards[1].Indicator != cdshooks.Critical {
		t.Errorf("expected critical warnings card for contraindicated metformin, got %+v", resp.Cards)
	}

	req = httptest.NewRequest(http.MethodPost, "/cds-services/renal",
		strings.NewReader(`{"hook":"patient-view","hookInstance":"d1e2","context":{}}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("missing inputs: expected 422, got %d", rec.Code)
	}
}
