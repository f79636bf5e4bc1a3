package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/deskhive/workspace-reservation/internal/model"
	"github.com/deskhive/workspace-reservation/internal/repository"
)

// AdminHandler serves the catalog management endpoints.  Routes using it
// must be wrapped in RequireRole(ADMIN) by the router.
type AdminHandler struct {
	Workspaces    *repository.WorkspaceRepo
	Organizations *repository.OrganizationRepo
}

// NewAdminHandler constructs an AdminHandler.
func NewAdminHandler(ws *repository.WorkspaceRepo, orgs *repository.OrganizationRepo) *AdminHandler {
	if ws == nil || orgs == nil {
		panic("nil repository passed to NewAdminHandler")
	}
	return &AdminHandler{Workspaces: ws, Organizations: orgs}
}

// CreateWorkspace handles POST /v1/admin/workspaces.  The owning
// organization must exist and be active; it cannot be changed afterwards.
func (h *AdminHandler) CreateWorkspace(c echo.Context) error {
	var body struct {
		OrganizationID   uint64 `json:"organization_id"`
		Name             string `json:"name"`
		Type             string `json:"type"`
		Capacity         uint32 `json:"capacity"`
		HourlyRateCents  int64  `json:"hourly_rate_cents"`
		BasePriceCents   int64  `json:"base_price_cents"`
		AvailabilityHint string `json:"availability_hint"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	switch {
	case body.OrganizationID == 0:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "organization_id is required"})
	case body.Name == "":
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	case !model.ValidWorkspaceType(body.Type):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid workspace type"})
	case body.Capacity == 0:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "capacity must be positive"})
	case body.HourlyRateCents < 0 || body.BasePriceCents < 0:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "prices must not be negative"})
	}
	hint := body.AvailabilityHint
	if hint == "" {
		hint = model.HintMedium
	}
	if !model.ValidAvailabilityHint(hint) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid availability hint"})
	}

	ctx := c.Request().Context()
	org, err := h.Organizations.Get(ctx, body.OrganizationID)
	if err != nil {
		return domainError(c, err)
	}
	if !org.IsActive {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "organization is inactive"})
	}

	ws := &model.Workspace{
		OrganizationID:   body.OrganizationID,
		Name:             body.Name,
		Type:             body.Type,
		Capacity:         body.Capacity,
		HourlyRateCents:  body.HourlyRateCents,
		BasePriceCents:   body.BasePriceCents,
		Enabled:          true,
		AvailabilityHint: hint,
	}
	if err := h.Workspaces.Insert(ctx, ws); err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusCreated, workspaceJSON(ws))
}

// UpdateWorkspace handles PATCH /v1/admin/workspaces/:id.  Absent fields are
// left untouched.  The owning organization is immutable; a request that
// tries to move the workspace is rejected outright.
func (h *AdminHandler) UpdateWorkspace(c echo.Context) error {
	wsID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid workspace id"})
	}
	var body struct {
		OrganizationID   *uint64 `json:"organization_id"`
		Name             *string `json:"name"`
		Type             *string `json:"type"`
		Capacity         *uint32 `json:"capacity"`
		HourlyRateCents  *int64  `json:"hourly_rate_cents"`
		BasePriceCents   *int64  `json:"base_price_cents"`
		Enabled          *bool   `json:"enabled"`
		AvailabilityHint *string `json:"availability_hint"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.OrganizationID != nil {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "organization_id is immutable"})
	}

	ctx := c.Request().Context()
	ws, err := h.Workspaces.Get(ctx, wsID)
	if err != nil {
		return domainError(c, err)
	}
	if body.Name != nil {
		if *body.Name == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "name must not be empty"})
		}
		ws.Name = *body.Name
	}
	if body.Type != nil {
		if !model.ValidWorkspaceType(*body.Type) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid workspace type"})
		}
		ws.Type = *body.Type
	}
	if body.Capacity != nil {
		if *body.Capacity == 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "capacity must be positive"})
		}
		ws.Capacity = *body.Capacity
	}
	if body.HourlyRateCents != nil {
		if *body.HourlyRateCents < 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "prices must not be negative"})
		}
		ws.HourlyRateCents = *body.HourlyRateCents
	}
	if body.BasePriceCents != nil {
		if *body.BasePriceCents < 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "prices must not be negative"})
		}
		ws.BasePriceCents = *body.BasePriceCents
	}
	if body.Enabled != nil {
		ws.Enabled = *body.Enabled
	}
	if body.AvailabilityHint != nil {
		if !model.ValidAvailabilityHint(*body.AvailabilityHint) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid availability hint"})
		}
		ws.AvailabilityHint = *body.AvailabilityHint
	}
	if err := h.Workspaces.Update(ctx, ws); err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusOK, workspaceJSON(ws))
}

// DisableWorkspace handles POST /v1/admin/workspaces/:id/disable.  Existing
// bookings are untouched; the workspace simply stops accepting new ones and
// drops out of member listings.
func (h *AdminHandler) DisableWorkspace(c echo.Context) error {
	wsID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid workspace id"})
	}
	ctx := c.Request().Context()
	ws, err := h.Workspaces.Get(ctx, wsID)
	if err != nil {
		return domainError(c, err)
	}
	if !ws.Enabled {
		return c.JSON(http.StatusOK, workspaceJSON(ws)) // idempotent
	}
	ws.Enabled = false
	if err := h.Workspaces.Update(ctx, ws); err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusOK, workspaceJSON(ws))
}
