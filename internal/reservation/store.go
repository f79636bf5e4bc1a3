package reservation

import (
	"context"
	"time"

	"github.com/deskhive/workspace-reservation/internal/model"
	"github.com/deskhive/workspace-reservation/internal/queue"
)

// OrganizationStore reads tenant records.  Mutation of organizations is
// owned by the platform-operator tooling and happens outside this service.
type OrganizationStore interface {
	Get(ctx context.Context, id uint64) (*model.Organization, error)
}

// WorkspaceStore persists workspaces.  Implementations must return
// ErrNotFound for unknown IDs and must never change OrganizationID on
// Update: the owning organization is immutable after creation.
type WorkspaceStore interface {
	Get(ctx context.Context, id uint64) (*model.Workspace, error)
	List(ctx context.Context, organizationID uint64, includeDisabled bool) ([]model.Workspace, error)
	Insert(ctx context.Context, ws *model.Workspace) error
	Update(ctx context.Context, ws *model.Workspace) error
}

// BookingStore persists bookings.  UpdateIfUnchanged performs an optimistic
// write: it applies the changes only when the stored version still equals
// expectedVersion, returning ErrVersionMismatch otherwise and bumping the
// version on success.  Combined with the per-(workspace, date) lock this
// makes the check-then-insert sequence in Manager.Create safe.
type BookingStore interface {
	Get(ctx context.Context, id uint64) (*model.Booking, error)
	Insert(ctx context.Context, b *model.Booking) error
	UpdateIfUnchanged(ctx context.Context, b *model.Booking, expectedVersion uint32) error
	// ListForWorkspaceDate returns every booking (any status) for the
	// workspace on the given date, ordered by start minute.
	ListForWorkspaceDate(ctx context.Context, workspaceID uint64, date string) ([]model.Booking, error)
	// CountForOrganizationDate counts non-cancelled bookings across the
	// organization on the given date, for quota enforcement.
	CountForOrganizationDate(ctx context.Context, organizationID uint64, date string) (int, error)
	ListByOccupant(ctx context.Context, occupantID uint64) ([]model.Booking, error)
	// SearchByEmail resolves bookings by occupant email for the hub-manager
	// check-in desk.  Date may be empty to search all dates.
	SearchByEmail(ctx context.Context, email, date string) ([]model.Booking, error)
	// ListDue returns confirmed bookings whose end instant is at or before
	// cutoff, oldest first, at most limit rows.
	ListDue(ctx context.Context, cutoff time.Time, limit int) ([]model.Booking, error)
}

// CheckInStore persists check-ins.  ActiveForBooking and
// ActiveForOccupantWorkspace return ErrNotFound when no active check-in
// matches.
type CheckInStore interface {
	Get(ctx context.Context, id uint64) (*model.CheckIn, error)
	Insert(ctx context.Context, ci *model.CheckIn) error
	Update(ctx context.Context, ci *model.CheckIn) error
	ActiveForBooking(ctx context.Context, bookingID uint64) (*model.CheckIn, error)
	ActiveForOccupantWorkspace(ctx context.Context, occupantID, workspaceID uint64) (*model.CheckIn, error)
	// AnyForBooking reports whether the booking ever had a check-in,
	// regardless of status.  Used for the no-show annotation.
	AnyForBooking(ctx context.Context, bookingID uint64) (bool, error)
	CountActiveForWorkspace(ctx context.Context, workspaceID uint64) (int, error)
}

// EventSink receives one event per state transition.  Publish failures are
// logged by implementations and never abort the transition itself.
type EventSink interface {
	Publish(ctx context.Context, ev queue.StateChangedEvent) error
}

// SlotCache is the invalidation hook for the cached free/busy view.  The
// engine invalidates the (workspace, date) key on every booking transition;
// any staleness beyond that window would break the exclusivity invariant.
type SlotCache interface {
	Invalidate(ctx context.Context, workspaceID uint64, date string)
}

// Clock abstracts time.Now for tests.
type Clock func() time.Time
