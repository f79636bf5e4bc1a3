package model

import "time"

// Organization represents a tenant that owns a set of workspaces and their
// booking policy.  Organizations are created by platform operators and are
// deactivated rather than deleted so historical bookings stay resolvable.
// This struct corresponds to a row in the `organizations` table.
//
// Fields:
//  ID                – primary key identifier.
//  Name              – display name of the tenant.
//  Currency          – ISO currency code for all prices (e.g. "EUR").
//  Type              – PUBLIC or PRIVATE; only private organizations enforce caps.
//  Visible           – whether the organization is listed to non-members.
//  ServiceFeePct     – optional service fee percentage (0-100).
//  BookingCap        – optional max non-cancelled bookings per day (private only).
//  MemberCap         – optional member ceiling (not enforced by this service).
//  IsActive          – soft-delete flag.
//  CreatedAt         – creation timestamp.
//  UpdatedAt         – last update timestamp.
type Organization struct {
	ID            uint64    // organizations.id
	Name          string    // organizations.name
	Currency      string    // organizations.currency
	Type          string    // organizations.type (PUBLIC, PRIVATE)
	Visible       bool      // organizations.visible
	ServiceFeePct *uint8    // organizations.service_fee_pct (nullable)
	BookingCap    *uint32   // organizations.booking_cap (nullable)
	MemberCap     *uint32   // organizations.member_cap (nullable)
	IsActive      bool      // organizations.is_active
	CreatedAt     time.Time // organizations.created_at
	UpdatedAt     time.Time // organizations.updated_at
}

// Organization types stored in organizations.type.
const (
	OrgTypePublic  = "PUBLIC"
	OrgTypePrivate = "PRIVATE"
)

// EnforcesBookingCap reports whether bookings for this organization are
// subject to a daily cap.  Public organizations never enforce caps even when
// one is present in the row.
func (o *Organization) EnforcesBookingCap() bool {
	return o.Type == OrgTypePrivate && o.BookingCap != nil && *o.BookingCap > 0
}
