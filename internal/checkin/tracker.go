// Package checkin tracks physical occupancy against confirmed bookings.  A
// regular check-in must match exactly one confirmed booking covering the
// current instant for the occupant; walk-ins are a distinct, flagged path
// that skips the booking match but still honours workspace capacity and the
// availability index at the moment of entry.
package checkin

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/deskhive/workspace-reservation/internal/model"
	"github.com/deskhive/workspace-reservation/internal/queue"
	"github.com/deskhive/workspace-reservation/internal/reservation"
	"github.com/deskhive/workspace-reservation/internal/schedule"
)

// ErrNoActiveBooking is returned when no confirmed booking matches the
// occupant and covers the check-in instant.
var ErrNoActiveBooking = errors.New("no active booking")

// ErrAlreadyCheckedIn is returned when an active check-in already exists for
// the booking, or for the occupant on that workspace.
var ErrAlreadyCheckedIn = errors.New("already checked in")

// ErrNotActive is returned by CheckOut when the check-in is already closed.
var ErrNotActive = errors.New("check-in not active")

// Tracker drives the check-in/check-out lifecycle.
type Tracker struct {
	bookings   reservation.BookingStore
	checkins   reservation.CheckInStore
	workspaces reservation.WorkspaceStore
	avail      *reservation.Availability
	events     reservation.EventSink
	now        reservation.Clock
}

// NewTracker wires a Tracker.  events may be nil in tests; now defaults to
// time.Now when nil.
func NewTracker(
	bookings reservation.BookingStore,
	checkins reservation.CheckInStore,
	workspaces reservation.WorkspaceStore,
	avail *reservation.Availability,
	events reservation.EventSink,
	now reservation.Clock,
) *Tracker {
	if now == nil {
		now = time.Now
	}
	return &Tracker{
		bookings:   bookings,
		checkins:   checkins,
		workspaces: workspaces,
		avail:      avail,
		events:     events,
		now:        now,
	}
}

// Get loads one check-in, for ownership checks before checkout.
func (t *Tracker) Get(ctx context.Context, checkInID uint64) (*model.CheckIn, error) {
	return t.checkins.Get(ctx, checkInID)
}

// CheckIn records arrival against a confirmed booking.  The booking must be
// confirmed, belong to the occupant and cover the current instant; anything
// else is ErrNoActiveBooking.  A second active check-in for the booking, or
// for the occupant on the same workspace, is ErrAlreadyCheckedIn.
func (t *Tracker) CheckIn(ctx context.Context, bookingID, occupantID uint64) (*model.CheckIn, error) {
	b, err := t.bookings.Get(ctx, bookingID)
	if err != nil {
		if errors.Is(err, reservation.ErrNotFound) {
			return nil, ErrNoActiveBooking
		}
		return nil, err
	}
	at := t.now().UTC()
	if b.Status != model.BookingConfirmed || b.OccupantID != occupantID {
		return nil, ErrNoActiveBooking
	}
	if at.Before(b.StartAt()) || !at.Before(b.EndAt()) {
		return nil, ErrNoActiveBooking
	}
	if _, err := t.checkins.ActiveForBooking(ctx, b.ID); err == nil {
		return nil, ErrAlreadyCheckedIn
	} else if !errors.Is(err, reservation.ErrNotFound) {
		return nil, err
	}
	if _, err := t.checkins.ActiveForOccupantWorkspace(ctx, occupantID, b.WorkspaceID); err == nil {
		return nil, ErrAlreadyCheckedIn
	} else if !errors.Is(err, reservation.ErrNotFound) {
		return nil, err
	}
	ci := &model.CheckIn{
		BookingID:   &b.ID,
		WorkspaceID: b.WorkspaceID,
		OccupantID:  occupantID,
		CheckInTime: at,
		Status:      model.CheckInActive,
	}
	if err := t.checkins.Insert(ctx, ci); err != nil {
		return nil, err
	}
	t.emit(ctx, ci, "", model.CheckInActive)
	return ci, nil
}

// WalkIn records arrival without a prior booking.  The workspace must be
// enabled, have an active head count below its capacity, and the current
// minute must not fall inside anyone else's confirmed booking.
func (t *Tracker) WalkIn(ctx context.Context, workspaceID, occupantID uint64) (*model.CheckIn, error) {
	ws, err := t.workspaces.Get(ctx, workspaceID)
	if err != nil {
		if errors.Is(err, reservation.ErrNotFound) {
			return nil, reservation.ErrResourceUnavailable
		}
		return nil, err
	}
	if !ws.Enabled {
		return nil, reservation.ErrResourceUnavailable
	}
	at := t.now().UTC()
	active, err := t.checkins.CountActiveForWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	if active >= int(ws.Capacity) {
		return nil, &reservation.CapacityError{WorkspaceID: ws.ID, Capacity: ws.Capacity, Requested: uint32(active + 1)}
	}
	if _, err := t.checkins.ActiveForOccupantWorkspace(ctx, occupantID, workspaceID); err == nil {
		return nil, ErrAlreadyCheckedIn
	} else if !errors.Is(err, reservation.ErrNotFound) {
		return nil, err
	}
	// The walk-in occupies the current minute; someone's confirmed booking
	// covering it wins.
	date := at.Format(time.DateOnly)
	minute := at.Hour()*60 + at.Minute()
	if minute < schedule.MinutesPerDay {
		free, blocking, err := t.avail.IsFree(ctx, workspaceID, date, schedule.Interval{Start: minute, End: minute + 1})
		if err != nil {
			return nil, err
		}
		if !free {
			return nil, &reservation.ConflictError{
				WorkspaceID: workspaceID,
				Date:        date,
				Requested:   schedule.Interval{Start: minute, End: minute + 1},
				Blocking:    blocking.Interval(),
			}
		}
	}
	ci := &model.CheckIn{
		WorkspaceID: workspaceID,
		OccupantID:  occupantID,
		WalkIn:      true,
		CheckInTime: at,
		Status:      model.CheckInActive,
	}
	if err := t.checkins.Insert(ctx, ci); err != nil {
		return nil, err
	}
	t.emit(ctx, ci, "", model.CheckInActive)
	return ci, nil
}

// CheckOut closes an active check-in.  Closing a completed one is
// ErrNotActive.
func (t *Tracker) CheckOut(ctx context.Context, checkInID uint64) (*model.CheckIn, error) {
	ci, err := t.checkins.Get(ctx, checkInID)
	if err != nil {
		return nil, err
	}
	if ci.Status != model.CheckInActive {
		return nil, ErrNotActive
	}
	at := t.now().UTC()
	ci.CheckOutTime = &at
	ci.Status = model.CheckInCompleted
	if err := t.checkins.Update(ctx, ci); err != nil {
		return nil, err
	}
	t.emit(ctx, ci, model.CheckInActive, model.CheckInCompleted)
	return ci, nil
}

func (t *Tracker) emit(ctx context.Context, ci *model.CheckIn, prev, next string) {
	if t.events == nil {
		return
	}
	ev := queue.StateChangedEvent{
		EventID:       uuid.NewString(),
		EntityType:    queue.EntityCheckIn,
		EntityID:      fmt.Sprintf("%d", ci.ID),
		WorkspaceID:   ci.WorkspaceID,
		PreviousState: prev,
		NewState:      next,
		Actor:         fmt.Sprintf("user:%d", ci.OccupantID),
		Timestamp:     t.now().UTC().Format(time.RFC3339),
	}
	if err := t.events.Publish(ctx, ev); err != nil {
		log.Printf("checkin: publish %s event for checkin %d failed: %v", next, ci.ID, err)
	}
}
