package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/deskhive/workspace-reservation/internal/cache"
	"github.com/deskhive/workspace-reservation/internal/middleware"
	"github.com/deskhive/workspace-reservation/internal/model"
	"github.com/deskhive/workspace-reservation/internal/reservation"
	"github.com/deskhive/workspace-reservation/internal/schedule"
)

// BookingHandler serves the member-facing catalog, availability and booking
// endpoints.  Free-slot responses are served from the Redis cache when
// possible; the engine invalidates the cached view on every transition so a
// hit is never stale.
type BookingHandler struct {
	Manager    *reservation.Manager
	Workspaces reservation.WorkspaceStore
	Bookings   reservation.BookingStore
	Slots      *cache.SlotCache // may be nil
}

// NewBookingHandler constructs a BookingHandler.  Slots may be nil when
// Redis is unavailable.
func NewBookingHandler(m *reservation.Manager, ws reservation.WorkspaceStore, bs reservation.BookingStore, slots *cache.SlotCache) *BookingHandler {
	if m == nil || ws == nil || bs == nil {
		panic("nil dependency passed to NewBookingHandler")
	}
	return &BookingHandler{Manager: m, Workspaces: ws, Bookings: bs, Slots: slots}
}

// scopedWorkspace fetches a workspace and enforces organization scope: a
// non-admin caller only ever sees workspaces of their own organization.
func (h *BookingHandler) scopedWorkspace(c echo.Context, id middleware.Identity, wsID uint64) (*model.Workspace, error) {
	ws, err := h.Workspaces.Get(c.Request().Context(), wsID)
	if err != nil {
		return nil, err
	}
	if !id.IsAdmin() && id.OrgID != ws.OrganizationID {
		return nil, reservation.ErrForbidden
	}
	return ws, nil
}

func workspaceJSON(w *model.Workspace) echo.Map {
	return echo.Map{
		"id":                w.ID,
		"organization_id":   w.OrganizationID,
		"name":              w.Name,
		"type":              w.Type,
		"capacity":          w.Capacity,
		"hourly_rate_cents": w.HourlyRateCents,
		"base_price_cents":  w.BasePriceCents,
		"enabled":           w.Enabled,
		"availability_hint": w.AvailabilityHint,
	}
}

// ListWorkspaces handles GET /v1/workspaces.  Members see the enabled
// workspaces of their own organization; admins may list any organization via
// ?org_id= and include disabled entries via ?include_disabled=true.
func (h *BookingHandler) ListWorkspaces(c echo.Context) error {
	id, _, ok := currentActor(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	orgID := id.OrgID
	includeDisabled := false
	if id.IsAdmin() {
		if s := c.QueryParam("org_id"); s != "" {
			n, err := strconv.ParseUint(s, 10, 64)
			if err != nil || n == 0 {
				return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid org_id"})
			}
			orgID = n
		}
		includeDisabled = c.QueryParam("include_disabled") == "true"
	}
	typeFilter := c.QueryParam("type")
	if typeFilter != "" && !model.ValidWorkspaceType(typeFilter) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid workspace type"})
	}
	list, err := h.Workspaces.List(c.Request().Context(), orgID, includeDisabled)
	if err != nil {
		return domainError(c, err)
	}
	out := make([]echo.Map, 0, len(list))
	for i := range list {
		if typeFilter != "" && list[i].Type != typeFilter {
			continue
		}
		out = append(out, workspaceJSON(&list[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"workspaces": out})
}

// GetWorkspace handles GET /v1/workspaces/:id.  Disabled workspaces are
// hidden from non-admin callers.
func (h *BookingHandler) GetWorkspace(c echo.Context) error {
	id, _, ok := currentActor(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	wsID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid workspace id"})
	}
	ws, err := h.scopedWorkspace(c, id, wsID)
	if err != nil {
		return domainError(c, err)
	}
	if !ws.Enabled && !id.IsAdmin() {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not_found"})
	}
	return c.JSON(http.StatusOK, workspaceJSON(ws))
}

// FreeSlots handles GET /v1/workspaces/:id/free-slots?date=YYYY-MM-DD.  The
// response lists the maximal free intervals inside the operating window.
func (h *BookingHandler) FreeSlots(c echo.Context) error {
	id, _, ok := currentActor(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	wsID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid workspace id"})
	}
	date, err := schedule.ParseDate(c.QueryParam("date"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid date", "message": err.Error()})
	}
	if _, err := h.scopedWorkspace(c, id, wsID); err != nil {
		return domainError(c, err)
	}
	ctx := c.Request().Context()
	if h.Slots != nil {
		if slots, ok := h.Slots.Get(ctx, wsID, date); ok {
			return c.JSON(http.StatusOK, echo.Map{"workspace_id": wsID, "date": date, "free": slotJSON(slots)})
		}
	}
	slots, err := h.Manager.Availability().FreeSlots(ctx, wsID, date)
	if err != nil {
		return domainError(c, err)
	}
	if h.Slots != nil {
		h.Slots.Set(ctx, wsID, date, slots)
	}
	return c.JSON(http.StatusOK, echo.Map{"workspace_id": wsID, "date": date, "free": slotJSON(slots)})
}

// QuoteBooking handles GET /v1/workspaces/:id/quote?start=HH:MM&end=HH:MM.
// It prices the interval without committing anything.
func (h *BookingHandler) QuoteBooking(c echo.Context) error {
	id, _, ok := currentActor(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	wsID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid workspace id"})
	}
	iv, err := schedule.ParseInterval(c.QueryParam("start"), c.QueryParam("end"))
	if err != nil {
		return domainError(c, err)
	}
	if _, err := h.scopedWorkspace(c, id, wsID); err != nil {
		return domainError(c, err)
	}
	price, err := h.Manager.Quote(c.Request().Context(), wsID, iv)
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"workspace_id": wsID,
		"start":        schedule.FormatClock(iv.Start),
		"end":          schedule.FormatClock(iv.End),
		"price_cents":  price,
	})
}

// CreateBooking handles POST /v1/bookings.  The caller becomes the occupant;
// the booking is priced and confirmed atomically or rejected with a typed
// error.
func (h *BookingHandler) CreateBooking(c echo.Context) error {
	_, actor, ok := currentActor(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body struct {
		WorkspaceID  uint64  `json:"workspace_id"`
		Date         string  `json:"date"`
		Start        string  `json:"start"`
		End          string  `json:"end"`
		Participants uint32  `json:"participants"`
		Notes        *string `json:"notes"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.WorkspaceID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "workspace_id is required"})
	}
	iv, err := schedule.ParseInterval(body.Start, body.End)
	if err != nil {
		return domainError(c, err)
	}
	b, err := h.Manager.Create(c.Request().Context(), reservation.CreateRequest{
		WorkspaceID:  body.WorkspaceID,
		Occupant:     actor,
		Date:         body.Date,
		Interval:     iv,
		Participants: body.Participants,
		Notes:        body.Notes,
	})
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusCreated, toBookingJSON(b))
}

// CancelBooking handles DELETE /v1/bookings/:id.  Cancelling an already
// cancelled booking succeeds so retried calls stay safe.
func (h *BookingHandler) CancelBooking(c echo.Context) error {
	_, actor, ok := currentActor(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	bookingID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	if err := h.Manager.Cancel(c.Request().Context(), bookingID, actor); err != nil {
		return domainError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// MyBookings handles GET /v1/my-bookings, newest first.
func (h *BookingHandler) MyBookings(c echo.Context) error {
	id, _, ok := currentActor(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	list, err := h.Bookings.ListByOccupant(c.Request().Context(), id.UserID)
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"bookings": toBookingList(list)})
}
