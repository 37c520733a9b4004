package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/astrobsm/criticalcare/internal/platform/auth"
	"github.com/astrobsm/criticalcare/internal/platform/dosing"
	"github.com/astrobsm/criticalcare/internal/platform/input"
	"github.com/astrobsm/criticalcare/internal/platform/result"
	"github.com/astrobsm/criticalcare/internal/refdata"
)

type Handler struct {
	svc    *Service
	tables *refdata.Tables
}

func NewHandler(svc *Service, tables *refdata.Tables) *Handler {
	return &Handler{svc: svc, tables: tables}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	read := api.Group("", auth.RequireRole(auth.RoleClinician, auth.RoleViewer))
	read.GET("/calculators", h.ListCalculators)
	read.GET("/renal/drugs", h.ListDrugs)
	read.GET("/renal/drugs/:name", h.GetDrug)
	read.GET("/foods", h.ListFoods)
	read.GET("/foods/:name", h.GetFood)

	run := api.Group("", auth.RequireRole(auth.RoleClinician))
	run.POST("/calculators/:id", h.Calculate)
}

func (h *Handler) ListCalculators(c echo.Context) error {
	return c.JSON(http.StatusOK, h.svc.Registry().List())
}

func (h *Handler) Calculate(c echo.Context) error {
	rec, err := DecodeRecord(c.Request().Body)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	out, err := h.svc.Run(c.Request().Context(), c.Param("id"), rec)
	if err != nil {
		return ErrorResponse(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

type drugSummary struct {
	Name       string `json:"name"`
	Indication string `json:"indication"`
}

func (h *Handler) ListDrugs(c echo.Context) error {
	tbl := h.tables.Dosing
	drugs := make([]drugSummary, 0, tbl.Len())
	for _, name := range tbl.Drugs() {
		rule, _ := tbl.Rule(name)
		drugs = append(drugs, drugSummary{Name: rule.Name, Indication: rule.Indication})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"version": tbl.Version(),
		"drugs":   drugs,
	})
}

// GetDrug returns the authored rule of a drug, or the recommendation for one
// band when gfr is given.
func (h *Handler) GetDrug(c echo.Context) error {
	tbl := h.tables.Dosing
	name := c.Param("name")

	raw := c.QueryParam("gfr")
	if raw == "" {
		rule, err := tbl.Rule(name)
		if err != nil {
			return ErrorResponse(c, err)
		}
		return c.JSON(http.StatusOK, rule)
	}

	gfr, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return ErrorResponse(c, result.Invalid("gfr", "must be a number"))
	}
	dialysis := false
	if v := c.QueryParam("dialysis"); v != "" {
		if dialysis, err = strconv.ParseBool(v); err != nil {
			return ErrorResponse(c, result.Invalid("dialysis", "must be true or false"))
		}
	}
	b, err := dosing.BandFor(gfr, dialysis)
	if err != nil {
		return ErrorResponse(c, err)
	}
	dose, err := tbl.Lookup(name, b.Code)
	if err != nil {
		return ErrorResponse(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"band": b.Result("gfr", gfr),
		"dose": dose,
	})
}

func (h *Handler) ListFoods(c echo.Context) error {
	tbl := h.tables.Foods
	return c.JSON(http.StatusOK, map[string]interface{}{
		"version": tbl.Version(),
		"foods":   tbl.Foods(),
	})
}

// GetFood returns the composition of a food, or a portion when grams is given.
func (h *Handler) GetFood(c echo.Context) error {
	tbl := h.tables.Foods
	name := c.Param("name")

	raw := c.QueryParam("grams")
	if raw == "" {
		food, err := tbl.Lookup(name)
		if err != nil {
			return ErrorResponse(c, err)
		}
		return c.JSON(http.StatusOK, food)
	}
	grams, err := strconv.ParseFloat(raw, 64)
	if err != nil || grams < 0 {
		return ErrorResponse(c, result.Invalid("grams", "must be a non-negative number"))
	}
	portion, err := tbl.Portion(name, grams)
	if err != nil {
		return ErrorResponse(c, err)
	}
	return c.JSON(http.StatusOK, portion)
}

// DecodeRecord reads a JSON object. An empty body is an empty record.
func DecodeRecord(r io.Reader) (input.Record, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	rec := input.Record{}
	if err := dec.Decode(&rec); err != nil {
		if errors.Is(err, io.EOF) {
			return input.Record{}, nil
		}
		return nil, fmt.Errorf("request body must be a JSON object: %w", err)
	}
	return rec, nil
}

// ErrorBody classifies a run error into a status and a JSON body.
func ErrorBody(err error) (int, map[string]string) {
	err = result.Validation(err)

	var verr *result.ValidationError
	if errors.As(err, &verr) {
		return http.StatusUnprocessableEntity, map[string]string{
			"error":   "validation",
			"field":   verr.Field,
			"message": verr.Reason,
		}
	}
	var miss *result.LookupMiss
	if errors.As(err, &miss) {
		return http.StatusNotFound, map[string]string{
			"error": "lookup_miss",
			"table": miss.Table,
			"key":   miss.Key,
		}
	}
	status := http.StatusInternalServerError
	if errors.Is(err, ErrUnknownCalculator) {
		status = http.StatusNotFound
	}
	return status, map[string]string{"error": Kind(err), "message": err.Error()}
}

// ErrorResponse maps a run error onto its HTTP response. Typed input errors
// are answered directly; the rest go through echo's error handler.
func ErrorResponse(c echo.Context, err error) error {
	status, body := ErrorBody(err)
	switch body["error"] {
	case "validation", "lookup_miss":
		return c.JSON(status, body)
	}
	return echo.NewHTTPError(status, body["message"])
}
