package model

import "time"

// CheckIn binds a physical presence event to a workspace and, for regular
// check-ins, to a confirmed booking.  Walk-ins carry a nil BookingID and the
// WalkIn flag instead.  Corresponds to a row in the `checkins` table.
//
// Fields:
//  ID            – primary key identifier.
//  BookingID     – confirmed booking being honoured (nil for walk-ins).
//  WorkspaceID   – workspace physically entered.
//  OccupantID    – person checking in.
//  WalkIn        – true when no prior booking backs this check-in.
//  CheckInTime   – arrival timestamp (UTC).
//  CheckOutTime  – departure timestamp; nil while active.
//  Status        – ACTIVE or COMPLETED.
//  CreatedAt     – creation timestamp.
type CheckIn struct {
	ID           uint64     // checkins.id
	BookingID    *uint64    // checkins.booking_id (nullable)
	WorkspaceID  uint64     // checkins.workspace_id
	OccupantID   uint64     // checkins.occupant_id
	WalkIn       bool       // checkins.walk_in
	CheckInTime  time.Time  // checkins.checkin_time
	CheckOutTime *time.Time // checkins.checkout_time (nullable)
	Status       string     // checkins.status
	CreatedAt    time.Time  // checkins.created_at
}

// Check-in states stored in checkins.status.
const (
	CheckInActive    = "ACTIVE"
	CheckInCompleted = "COMPLETED"
)
