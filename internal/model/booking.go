package model

import (
	"time"

	"github.com/deskhive/workspace-reservation/internal/schedule"
)

// Booking records a committed reservation of a workspace for a half-open
// time interval on a single date.  The organization ID is denormalized from
// the workspace at creation time and must always match it.  Corresponds to a
// row in the `bookings` table.
//
// Fields:
//  ID             – primary key identifier.
//  Reference      – external UUID returned to clients and carried in events.
//  WorkspaceID    – workspace being reserved.
//  OrganizationID – owning organization, copied from the workspace.
//  OccupantID     – user who made the booking.
//  OccupantEmail  – denormalized email for the hub-manager lookup.
//  Date           – civil date (YYYY-MM-DD) the booking falls on.
//  StartMinute    – inclusive start, minutes since midnight.
//  EndMinute      – exclusive end, minutes since midnight.
//  Participants   – headcount; never exceeds the workspace capacity.
//  Status         – CONFIRMED, CANCELLED or COMPLETED.
//  NoShow         – set when the booking completed without any check-in.
//  PriceCents     – quoted price at creation time, minor currency units.
//  Notes          – optional free-form note.
//  Version        – optimistic locking counter for UpdateIfUnchanged.
//  CreatedAt      – creation timestamp.
//  UpdatedAt      – last update timestamp.
type Booking struct {
	ID             uint64    // bookings.id
	Reference      string    // bookings.reference (UUID)
	WorkspaceID    uint64    // bookings.workspace_id
	OrganizationID uint64    // bookings.organization_id
	OccupantID     uint64    // bookings.occupant_id
	OccupantEmail  string    // bookings.occupant_email
	Date           string    // bookings.booking_date (YYYY-MM-DD)
	StartMinute    int       // bookings.start_minute
	EndMinute      int       // bookings.end_minute
	Participants   uint32    // bookings.participants
	Status         string    // bookings.status
	NoShow         bool      // bookings.no_show
	PriceCents     int64     // bookings.price_cents
	Notes          *string   // bookings.notes (nullable)
	Version        uint32    // bookings.version
	CreatedAt      time.Time // bookings.created_at
	UpdatedAt      time.Time // bookings.updated_at
}

// Booking states stored in bookings.status.  CONFIRMED is the initial state;
// CANCELLED and COMPLETED are terminal.
const (
	BookingConfirmed = "CONFIRMED"
	BookingCancelled = "CANCELLED"
	BookingCompleted = "COMPLETED"
)

// Interval returns the booking's [start, end) interval.
func (b *Booking) Interval() schedule.Interval {
	return schedule.Interval{Start: b.StartMinute, End: b.EndMinute}
}

// StartAt returns the absolute UTC start instant of the booking.
func (b *Booking) StartAt() time.Time {
	d, _ := time.Parse(time.DateOnly, b.Date)
	return d.Add(time.Duration(b.StartMinute) * time.Minute)
}

// EndAt returns the absolute UTC end instant of the booking.
func (b *Booking) EndAt() time.Time {
	d, _ := time.Parse(time.DateOnly, b.Date)
	return d.Add(time.Duration(b.EndMinute) * time.Minute)
}

// Blocks reports whether the booking occupies its interval: cancelled
// bookings release the slot immediately.
func (b *Booking) Blocks() bool { return b.Status != BookingCancelled }
