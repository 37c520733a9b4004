package history

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/astrobsm/criticalcare/internal/platform/auth"
	"github.com/astrobsm/criticalcare/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	read := api.Group("", auth.RequireRole(auth.RoleClinician, auth.RoleViewer))
	read.GET("/history", h.ListCalculations)
	read.GET("/history/:id", h.GetCalculation)
}

// ListCalculations lists history newest first. Non-admins only see their own
// calculations.
func (h *Handler) ListCalculations(c echo.Context) error {
	ctx := c.Request().Context()
	pg := pagination.FromContext(c)
	f := Filter{Calculator: c.QueryParam("calculator")}
	if !auth.HasRole(auth.RolesFromContext(ctx), auth.RoleAdmin) {
		f.UserID = auth.UserIDFromContext(ctx)
	} else {
		f.UserID = c.QueryParam("user")
	}

	items, total, err := h.svc.List(ctx, f, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if items == nil {
		items = []*Calculation{}
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg).WithLinks(c.Request().URL.Path))
}

func (h *Handler) GetCalculation(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	ctx := c.Request().Context()
	calc, err := h.svc.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "calculation not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if !auth.HasRole(auth.RolesFromContext(ctx), auth.RoleAdmin) && calc.UserID != auth.UserIDFromContext(ctx) {
		return echo.NewHTTPError(http.StatusNotFound, "calculation not found")
	}
	return c.JSON(http.StatusOK, calc)
}
