// Package cdshooks serves calculators as HL7 CDS Hooks 2.0 services: a
// discovery endpoint and one invoke endpoint per service that answers with
// cards.
package cdshooks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/astrobsm/criticalcare/internal/platform/result"
)

// Service describes a single CDS service returned in discovery.
type Service struct {
	Hook        string            `json:"hook"`
	Title       string            `json:"title,omitempty"`
	Description string            `json:"description"`
	ID          string            `json:"id"`
	Prefetch    map[string]string `json:"prefetch,omitempty"`
}

// Request is the payload POSTed to invoke a hook.
type Request struct {
	Hook         string                 `json:"hook"`
	HookInstance string                 `json:"hookInstance"`
	FHIRServer   string                 `json:"fhirServer,omitempty"`
	Context      map[string]interface{} `json:"context"`
	Prefetch     map[string]interface{} `json:"prefetch,omitempty"`
}

// Card is a single card in the hook response.
type Card struct {
	UUID      string `json:"uuid,omitempty"`
	Summary   string `json:"summary"`
	Detail    string `json:"detail,omitempty"`
	Indicator string `json:"indicator"`
	Source    Source `json:"source"`
}

// Source identifies the source of a card.
type Source struct {
	Label string `json:"label"`
	URL   string `json:"url,omitempty"`
}

// Response is returned from hook invocation.
type Response struct {
	Cards []Card `json:"cards"`
}

// Feedback records what the user did with a card.
type Feedback struct {
	Card             string `json:"card"`
	Outcome          string `json:"outcome"`
	OutcomeTimestamp string `json:"outcomeTimestamp,omitempty"`
}

// ServiceHandler processes a hook request and returns cards.
type ServiceHandler func(ctx context.Context, req Request) (*Response, error)

// FeedbackHandler processes feedback for a service.
type FeedbackHandler func(ctx context.Context, serviceID string, fb Feedback) error

type Handler struct {
	services map[string]Service
	handlers map[string]ServiceHandler
	feedback FeedbackHandler
	order    []string
}

func NewHandler() *Handler {
	return &Handler{
		services: make(map[string]Service),
		handlers: make(map[string]ServiceHandler),
	}
}

// RegisterService registers a service and its handler. Re-registering an id
// replaces it in place.
func (h *Handler) RegisterService(svc Service, handler ServiceHandler) {
	if _, exists := h.services[svc.ID]; !exists {
		h.order = append(h.order, svc.ID)
	}
	h.services[svc.ID] = svc
	h.handlers[svc.ID] = handler
}

// SetFeedbackHandler receives feedback for every service.
func (h *Handler) SetFeedbackHandler(fn FeedbackHandler) { h.feedback = fn }

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/cds-services", h.Discovery)
	g.POST("/cds-services/:id", h.HandleHook)
	g.POST("/cds-services/:id/feedback", h.HandleFeedback)
}

func (h *Handler) Discovery(c echo.Context) error {
	services := make([]Service, 0, len(h.order))
	for _, id := range h.order {
		services = append(services, h.services[id])
	}
	return c.JSON(http.StatusOK, map[string][]Service{"services": services})
}

func (h *Handler) HandleHook(c echo.Context) error {
	serviceID := c.Param("id")

	svc, ok := h.services[serviceID]
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, fmt.Sprintf("unknown CDS service %q", serviceID))
	}

	var req Request
	if err := json.NewDecoder(c.Request().Body).Decode(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
	}
	if req.Hook != svc.Hook {
		return echo.NewHTTPError(http.StatusBadRequest,
			fmt.Sprintf("hook mismatch: request hook %q does not match service hook %q", req.Hook, svc.Hook))
	}
	if req.HookInstance == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "hookInstance is required")
	}

	resp, err := h.handlers[serviceID](c.Request().Context(), req)
	if err != nil {
		return hookError(c, err)
	}
	if resp.Cards == nil {
		resp.Cards = []Card{}
	}
	return c.JSON(http.StatusOK, resp)
}

func hookError(c echo.Context, err error) error {
	var verr *result.ValidationError
	if errors.As(err, &verr) {
		return c.JSON(http.StatusUnprocessableEntity, map[string]string{
			"error":   "validation",
			"field":   verr.Field,
			"message": verr.Reason,
		})
	}
	var miss *result.LookupMiss
	if errors.As(err, &miss) {
		return c.JSON(http.StatusNotFound, map[string]string{
			"error": "lookup_miss",
			"table": miss.Table,
			"key":   miss.Key,
		})
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}

func (h *Handler) HandleFeedback(c echo.Context) error {
	serviceID := c.Param("id")
	if _, ok := h.services[serviceID]; !ok {
		return echo.NewHTTPError(http.StatusNotFound, fmt.Sprintf("unknown CDS service %q", serviceID))
	}

	var fb Feedback
	if err := json.NewDecoder(c.Request().Body).Decode(&fb); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("invalid feedback body: %v", err))
	}
	if h.feedback != nil {
		if err := h.feedback(c.Request().Context(), serviceID, fb); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
