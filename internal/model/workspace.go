package model

import "time"

// Workspace is a bookable physical asset (desk, room, office or event space)
// scoped to exactly one organization.  Workspaces are soft-disabled rather
// than deleted: a disabled workspace is excluded from availability queries
// and new bookings but existing bookings stay valid.  Corresponds to a row
// in the `workspaces` table.
//
// Fields:
//  ID               – primary key identifier.
//  OrganizationID   – owning organization; immutable after creation.
//  Name             – display name, unique per organization.
//  Type             – HOT_DESK, MEETING_ROOM, PRIVATE_OFFICE or EVENT_SPACE.
//  Capacity         – maximum number of participants (positive).
//  HourlyRateCents  – per-hour price in minor currency units (0 = flat rate).
//  BasePriceCents   – flat add-on price used when HourlyRateCents is 0.
//  Enabled          – whether the workspace accepts new bookings.
//  AvailabilityHint – advisory HIGH/MEDIUM/LOW label set by admins; never
//                     consulted by the availability computation, which is
//                     derived from the booking ledger alone.
//  CreatedAt        – creation timestamp.
//  UpdatedAt        – last update timestamp.
type Workspace struct {
	ID               uint64    // workspaces.id
	OrganizationID   uint64    // workspaces.organization_id
	Name             string    // workspaces.name
	Type             string    // workspaces.type
	Capacity         uint32    // workspaces.capacity
	HourlyRateCents  int64     // workspaces.hourly_rate_cents
	BasePriceCents   int64     // workspaces.base_price_cents
	Enabled          bool      // workspaces.enabled
	AvailabilityHint string    // workspaces.availability_hint (HIGH, MEDIUM, LOW)
	CreatedAt        time.Time // workspaces.created_at
	UpdatedAt        time.Time // workspaces.updated_at
}

// Workspace types stored in workspaces.type.
const (
	WorkspaceHotDesk       = "HOT_DESK"
	WorkspaceMeetingRoom   = "MEETING_ROOM"
	WorkspacePrivateOffice = "PRIVATE_OFFICE"
	WorkspaceEventSpace    = "EVENT_SPACE"
)

// Advisory availability hints stored in workspaces.availability_hint.
const (
	HintHigh   = "HIGH"
	HintMedium = "MEDIUM"
	HintLow    = "LOW"
)

// ValidWorkspaceType reports whether t is one of the known workspace types.
func ValidWorkspaceType(t string) bool {
	switch t {
	case WorkspaceHotDesk, WorkspaceMeetingRoom, WorkspacePrivateOffice, WorkspaceEventSpace:
		return true
	}
	return false
}

// ValidAvailabilityHint reports whether h is a known advisory hint.
func ValidAvailabilityHint(h string) bool {
	switch h {
	case HintHigh, HintMedium, HintLow:
		return true
	}
	return false
}
