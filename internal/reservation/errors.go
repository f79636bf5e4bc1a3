// Package reservation implements the workspace reservation engine: the
// availability index, the booking state machine and the store contracts the
// persistence layer fulfils.  All rejections are typed so handlers can map
// them to HTTP responses and clients can pick a corrective action without a
// second round trip.
package reservation

import (
	"errors"
	"fmt"

	"github.com/deskhive/workspace-reservation/internal/schedule"
)

// ErrNotFound is returned when a workspace, organization or booking does not
// exist.  Handlers translate it into a 404 response.
var ErrNotFound = errors.New("not found")

// ErrForbidden is returned when the caller's organization scope or identity
// does not match the entity they are operating on.  Handlers translate it
// into a 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrResourceUnavailable is returned by availability queries for workspaces
// that are unknown or disabled, so callers can distinguish "nothing free"
// from "not bookable at all".
var ErrResourceUnavailable = errors.New("resource unavailable")

// ErrSlotConflict is the sentinel wrapped by ConflictError.  Use errors.Is
// against this value and errors.As against *ConflictError for the detail.
var ErrSlotConflict = errors.New("slot conflict")

// ErrCapacityExceeded is the sentinel wrapped by CapacityError.
var ErrCapacityExceeded = errors.New("capacity exceeded")

// ErrQuotaExceeded is the sentinel wrapped by QuotaError.
var ErrQuotaExceeded = errors.New("booking quota exceeded")

// ErrTooLateToCancel is returned when a non-admin cancels a booking at or
// after its start time, or attempts to cancel a completed booking.
var ErrTooLateToCancel = errors.New("too late to cancel")

// ErrVersionMismatch is returned by UpdateIfUnchanged when the row was
// modified since it was read.  The engine surfaces it as contention rather
// than a business rejection.
var ErrVersionMismatch = errors.New("version mismatch")

// ConflictError reports an attempted booking whose interval overlaps an
// existing non-cancelled booking on the same workspace and date.  Blocking
// carries the conflicting interval so the UI can suggest a different time.
type ConflictError struct {
	WorkspaceID uint64
	Date        string
	Requested   schedule.Interval
	Blocking    schedule.Interval
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("slot conflict on workspace %d (%s): requested %s overlaps booking %s",
		e.WorkspaceID, e.Date, e.Requested, e.Blocking)
}

// Unwrap lets errors.Is(err, ErrSlotConflict) match.
func (e *ConflictError) Unwrap() error { return ErrSlotConflict }

// CapacityError reports a participant count above the workspace capacity.
type CapacityError struct {
	WorkspaceID uint64
	Capacity    uint32
	Requested   uint32
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("workspace %d holds %d, %d requested", e.WorkspaceID, e.Capacity, e.Requested)
}

// Unwrap lets errors.Is(err, ErrCapacityExceeded) match.
func (e *CapacityError) Unwrap() error { return ErrCapacityExceeded }

// QuotaError reports that a private organization has used up its daily
// booking cap.
type QuotaError struct {
	OrganizationID uint64
	Date           string
	Cap            uint32
}

func (e *QuotaError) Error() string {
	return fmt.Sprintf("organization %d reached its booking cap of %d for %s", e.OrganizationID, e.Cap, e.Date)
}

// Unwrap lets errors.Is(err, ErrQuotaExceeded) match.
func (e *QuotaError) Unwrap() error { return ErrQuotaExceeded }
