package repository

import (
	"context"
	"database/sql"

	"github.com/deskhive/workspace-reservation/internal/model"
)

// OrganizationRepo provides read access to the organizations table.
// Organization mutation is owned by platform-operator tooling outside this
// service, so only lookups are exposed here.
type OrganizationRepo struct {
	db *sql.DB
}

// NewOrganizationRepo returns an OrganizationRepo bound to the given database.
func NewOrganizationRepo(db *sql.DB) *OrganizationRepo { return &OrganizationRepo{db: db} }

// Get loads one organization by ID.  Unknown IDs yield
// reservation.ErrNotFound.
func (r *OrganizationRepo) Get(ctx context.Context, id uint64) (*model.Organization, error) {
	const q = `SELECT id, name, currency, type, visible, service_fee_pct, booking_cap, member_cap,
	                  is_active, created_at, updated_at
	           FROM organizations WHERE id = ?`
	var o model.Organization
	var feePct sql.NullInt16
	var bookingCap, memberCap sql.NullInt32
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&o.ID, &o.Name, &o.Currency, &o.Type, &o.Visible,
		&feePct, &bookingCap, &memberCap,
		&o.IsActive, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, mapNoRows(err)
	}
	if feePct.Valid {
		v := uint8(feePct.Int16)
		o.ServiceFeePct = &v
	}
	if bookingCap.Valid {
		v := uint32(bookingCap.Int32)
		o.BookingCap = &v
	}
	if memberCap.Valid {
		v := uint32(memberCap.Int32)
		o.MemberCap = &v
	}
	return &o, nil
}
