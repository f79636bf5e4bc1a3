// Package handler contains the HTTP handlers.  Handlers bind and validate
// the wire format, delegate to the reservation engine or the check-in
// tracker, and translate the typed domain errors into HTTP responses.  All
// business rules live below this layer.
package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/deskhive/workspace-reservation/internal/checkin"
	"github.com/deskhive/workspace-reservation/internal/lockmap"
	"github.com/deskhive/workspace-reservation/internal/middleware"
	"github.com/deskhive/workspace-reservation/internal/model"
	"github.com/deskhive/workspace-reservation/internal/reservation"
	"github.com/deskhive/workspace-reservation/internal/schedule"
)

// currentActor converts the authenticated identity into an engine actor.
func currentActor(c echo.Context) (middleware.Identity, reservation.Actor, bool) {
	id, ok := middleware.CurrentIdentity(c)
	if !ok {
		return middleware.Identity{}, reservation.Actor{}, false
	}
	return id, reservation.Actor{ID: id.UserID, Email: id.Email, OrgID: id.OrgID, Admin: id.IsAdmin()}, true
}

func pathID(c echo.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, errors.New("invalid id")
	}
	return id, nil
}

// domainError maps the typed rejections from the engine and the tracker to
// HTTP responses.  Structured errors carry their detail into the body so
// clients can pick a corrective action without a second round trip.
func domainError(c echo.Context, err error) error {
	var conflict *reservation.ConflictError
	if errors.As(err, &conflict) {
		return c.JSON(http.StatusConflict, echo.Map{
			"error":        "slot_conflict",
			"workspace_id": conflict.WorkspaceID,
			"date":         conflict.Date,
			"requested":    conflict.Requested.String(),
			"blocking":     conflict.Blocking.String(),
		})
	}
	var capacity *reservation.CapacityError
	if errors.As(err, &capacity) {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{
			"error":        "capacity_exceeded",
			"workspace_id": capacity.WorkspaceID,
			"capacity":     capacity.Capacity,
			"requested":    capacity.Requested,
		})
	}
	var quota *reservation.QuotaError
	if errors.As(err, &quota) {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{
			"error":           "quota_exceeded",
			"organization_id": quota.OrganizationID,
			"date":            quota.Date,
			"booking_cap":     quota.Cap,
		})
	}

	switch {
	case errors.Is(err, schedule.ErrInvalidInterval):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid_interval", "message": err.Error()})
	case errors.Is(err, reservation.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not_found"})
	case errors.Is(err, reservation.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	case errors.Is(err, reservation.ErrResourceUnavailable):
		return c.JSON(http.StatusConflict, echo.Map{"error": "resource_unavailable"})
	case errors.Is(err, reservation.ErrTooLateToCancel):
		return c.JSON(http.StatusConflict, echo.Map{"error": "too_late_to_cancel"})
	case errors.Is(err, reservation.ErrVersionMismatch):
		return c.JSON(http.StatusConflict, echo.Map{"error": "concurrent_update", "message": "retry the request"})
	case errors.Is(err, lockmap.ErrBusy):
		c.Response().Header().Set("Retry-After", "1")
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "busy", "message": "slot is contended, retry"})
	case errors.Is(err, checkin.ErrNoActiveBooking):
		return c.JSON(http.StatusConflict, echo.Map{"error": "no_active_booking"})
	case errors.Is(err, checkin.ErrAlreadyCheckedIn):
		return c.JSON(http.StatusConflict, echo.Map{"error": "already_checked_in"})
	case errors.Is(err, checkin.ErrNotActive):
		return c.JSON(http.StatusConflict, echo.Map{"error": "checkin_not_active"})
	}
	c.Logger().Errorf("unhandled error: %v", err)
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal"})
}

// bookingJSON is the wire representation of a booking.
type bookingJSON struct {
	ID           uint64  `json:"id"`
	Reference    string  `json:"reference"`
	WorkspaceID  uint64  `json:"workspace_id"`
	Date         string  `json:"date"`
	Start        string  `json:"start"`
	End          string  `json:"end"`
	Participants uint32  `json:"participants"`
	Status       string  `json:"status"`
	NoShow       bool    `json:"no_show"`
	PriceCents   int64   `json:"price_cents"`
	Notes        *string `json:"notes,omitempty"`
	CreatedAt    string  `json:"created_at"`
}

func toBookingJSON(b *model.Booking) bookingJSON {
	return bookingJSON{
		ID:           b.ID,
		Reference:    b.Reference,
		WorkspaceID:  b.WorkspaceID,
		Date:         b.Date,
		Start:        schedule.FormatClock(b.StartMinute),
		End:          schedule.FormatClock(b.EndMinute),
		Participants: b.Participants,
		Status:       b.Status,
		NoShow:       b.NoShow,
		PriceCents:   b.PriceCents,
		Notes:        b.Notes,
		CreatedAt:    b.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
}

func toBookingList(bs []model.Booking) []bookingJSON {
	out := make([]bookingJSON, len(bs))
	for i := range bs {
		out[i] = toBookingJSON(&bs[i])
	}
	return out
}

// slotJSON renders free intervals as clock ranges.
func slotJSON(ivs []schedule.Interval) []echo.Map {
	out := make([]echo.Map, len(ivs))
	for i, iv := range ivs {
		out[i] = echo.Map{"start": schedule.FormatClock(iv.Start), "end": schedule.FormatClock(iv.End)}
	}
	return out
}

// checkinJSON is the wire representation of a check-in.
func checkinJSON(ci *model.CheckIn) echo.Map {
	m := echo.Map{
		"id":           ci.ID,
		"workspace_id": ci.WorkspaceID,
		"occupant_id":  ci.OccupantID,
		"walk_in":      ci.WalkIn,
		"status":       ci.Status,
		"checkin_time": ci.CheckInTime.UTC().Format("2006-01-02T15:04:05Z"),
	}
	if ci.BookingID != nil {
		m["booking_id"] = *ci.BookingID
	}
	if ci.CheckOutTime != nil {
		m["checkout_time"] = ci.CheckOutTime.UTC().Format("2006-01-02T15:04:05Z")
	}
	return m
}
