package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/deskhive/workspace-reservation/internal/checkin"
	"github.com/deskhive/workspace-reservation/internal/repository"
	"github.com/deskhive/workspace-reservation/internal/schedule"
)

// CheckInHandler serves the front-desk endpoints: arrival against a booking,
// walk-in occupancy, checkout and booking lookup by occupant email.
type CheckInHandler struct {
	Tracker  *checkin.Tracker
	Bookings *repository.BookingRepo
}

// NewCheckInHandler constructs a CheckInHandler.
func NewCheckInHandler(t *checkin.Tracker, bs *repository.BookingRepo) *CheckInHandler {
	if t == nil || bs == nil {
		panic("nil dependency passed to NewCheckInHandler")
	}
	return &CheckInHandler{Tracker: t, Bookings: bs}
}

// CheckIn handles POST /v1/checkins.  The occupant defaults to the caller;
// hub managers may check in another occupant at the desk.
func (h *CheckInHandler) CheckIn(c echo.Context) error {
	id, _, ok := currentActor(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body struct {
		BookingID  uint64 `json:"booking_id"`
		OccupantID uint64 `json:"occupant_id"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.BookingID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "booking_id is required"})
	}
	occupant := id.UserID
	if body.OccupantID != 0 && body.OccupantID != id.UserID {
		if !id.CanActForOthers() {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		}
		occupant = body.OccupantID
	}
	ci, err := h.Tracker.CheckIn(c.Request().Context(), body.BookingID, occupant)
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusCreated, checkinJSON(ci))
}

// WalkIn handles POST /v1/checkins/walk-in for occupancy without a booking.
// The workspace must be enabled, below capacity, and free of a confirmed
// booking covering the current minute.
func (h *CheckInHandler) WalkIn(c echo.Context) error {
	id, _, ok := currentActor(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body struct {
		WorkspaceID uint64 `json:"workspace_id"`
		OccupantID  uint64 `json:"occupant_id"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.WorkspaceID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "workspace_id is required"})
	}
	occupant := id.UserID
	if body.OccupantID != 0 && body.OccupantID != id.UserID {
		if !id.CanActForOthers() {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		}
		occupant = body.OccupantID
	}
	ci, err := h.Tracker.WalkIn(c.Request().Context(), body.WorkspaceID, occupant)
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusCreated, checkinJSON(ci))
}

// CheckOut handles POST /v1/checkins/:id/checkout.
func (h *CheckInHandler) CheckOut(c echo.Context) error {
	id, _, ok := currentActor(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ciID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid checkin id"})
	}
	ctx := c.Request().Context()
	existing, err := h.Tracker.Get(ctx, ciID)
	if err != nil {
		return domainError(c, err)
	}
	if existing.OccupantID != id.UserID && !id.CanActForOthers() {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	ci, err := h.Tracker.CheckOut(ctx, ciID)
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusOK, checkinJSON(ci))
}

// SearchBookings handles GET /v1/bookings/search?email=&date= for the
// check-in desk.  Restricted to hub managers and admins by the router.
func (h *CheckInHandler) SearchBookings(c echo.Context) error {
	email := c.QueryParam("email")
	if email == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email is required"})
	}
	date := c.QueryParam("date")
	if date != "" {
		normalized, err := schedule.ParseDate(date)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid date", "message": err.Error()})
		}
		date = normalized
	}
	list, err := h.Bookings.SearchByEmail(c.Request().Context(), email, date)
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"bookings": toBookingList(list)})
}
