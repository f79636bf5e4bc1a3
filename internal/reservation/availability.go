package reservation

import (
	"context"

	"github.com/deskhive/workspace-reservation/internal/model"
	"github.com/deskhive/workspace-reservation/internal/schedule"
)

// Availability answers free/busy questions for a workspace and date.  True
// availability is always computed from the booking ledger; the advisory
// availability_hint on the workspace never participates.  Reads go straight
// to the store: only the FreeSlots HTTP layer sits behind the invalidated
// cache, and IsFree never does because it gates the exclusivity invariant.
type Availability struct {
	workspaces WorkspaceStore
	bookings   BookingStore
	window     schedule.Interval // operating window, e.g. 06:00-22:00
}

// NewAvailability builds an Availability index over the given stores.
func NewAvailability(workspaces WorkspaceStore, bookings BookingStore, window schedule.Interval) *Availability {
	return &Availability{workspaces: workspaces, bookings: bookings, window: window}
}

// Window returns the configured operating window.
func (a *Availability) Window() schedule.Interval { return a.window }

// IsFree reports whether the interval is free on the workspace for the date.
// When it is not, the blocking booking is returned so callers can surface
// the conflicting interval.  Unknown or disabled workspaces yield
// ErrResourceUnavailable.
func (a *Availability) IsFree(ctx context.Context, workspaceID uint64, date string, iv schedule.Interval) (bool, *model.Booking, error) {
	if err := iv.Validate(); err != nil {
		return false, nil, err
	}
	ws, err := a.workspaces.Get(ctx, workspaceID)
	if err != nil {
		if err == ErrNotFound {
			return false, nil, ErrResourceUnavailable
		}
		return false, nil, err
	}
	if !ws.Enabled {
		return false, nil, ErrResourceUnavailable
	}
	existing, err := a.bookings.ListForWorkspaceDate(ctx, workspaceID, date)
	if err != nil {
		return false, nil, err
	}
	for i := range existing {
		b := &existing[i]
		if !b.Blocks() {
			continue
		}
		if iv.Overlaps(b.Interval()) {
			return false, b, nil
		}
	}
	return true, nil, nil
}

// FreeSlots returns the ordered, non-overlapping free sub-intervals of the
// operating window for the workspace and date.  A fully booked day returns
// an empty slice; a workspace that cannot take bookings at all returns
// ErrResourceUnavailable instead.
func (a *Availability) FreeSlots(ctx context.Context, workspaceID uint64, date string) ([]schedule.Interval, error) {
	ws, err := a.workspaces.Get(ctx, workspaceID)
	if err != nil {
		if err == ErrNotFound {
			return nil, ErrResourceUnavailable
		}
		return nil, err
	}
	if !ws.Enabled {
		return nil, ErrResourceUnavailable
	}
	existing, err := a.bookings.ListForWorkspaceDate(ctx, workspaceID, date)
	if err != nil {
		return nil, err
	}
	busy := make([]schedule.Interval, 0, len(existing))
	for i := range existing {
		if existing[i].Blocks() {
			busy = append(busy, existing[i].Interval())
		}
	}
	return schedule.Complement(a.window, busy), nil
}
