package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/deskhive/workspace-reservation/internal/model"
	"github.com/deskhive/workspace-reservation/internal/reservation"
)

// BookingRepo persists bookings.  The table carries a version column for
// optimistic concurrency: UpdateIfUnchanged only applies when the stored
// version still matches, which together with the engine's per-(workspace,
// date) lock keeps the overlap check-then-insert sequence safe.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

const bookingColumns = `id, reference, workspace_id, organization_id, occupant_id, occupant_email,
	booking_date, start_minute, end_minute, participants, status, no_show, price_cents, notes,
	version, created_at, updated_at`

func scanBooking(row interface{ Scan(dest ...any) error }, b *model.Booking) error {
	var notes sql.NullString
	var date time.Time
	err := row.Scan(
		&b.ID, &b.Reference, &b.WorkspaceID, &b.OrganizationID, &b.OccupantID, &b.OccupantEmail,
		&date, &b.StartMinute, &b.EndMinute, &b.Participants, &b.Status, &b.NoShow, &b.PriceCents,
		&notes, &b.Version, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return err
	}
	b.Date = date.Format(time.DateOnly)
	if notes.Valid {
		n := notes.String
		b.Notes = &n
	}
	return nil
}

// Get loads one booking by ID.  Unknown IDs yield reservation.ErrNotFound.
func (r *BookingRepo) Get(ctx context.Context, id uint64) (*model.Booking, error) {
	const q = `SELECT ` + bookingColumns + ` FROM bookings WHERE id = ?`
	var b model.Booking
	if err := scanBooking(r.db.QueryRowContext(ctx, q, id), &b); err != nil {
		return nil, mapNoRows(err)
	}
	return &b, nil
}

// Insert creates a booking row and populates the generated ID, version and
// timestamps on the passed record.
func (r *BookingRepo) Insert(ctx context.Context, b *model.Booking) error {
	const q = `INSERT INTO bookings
	           (reference, workspace_id, organization_id, occupant_id, occupant_email,
	            booking_date, start_minute, end_minute, participants, status, no_show, price_cents, notes, version)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0)`
	res, err := r.db.ExecContext(ctx, q,
		b.Reference, b.WorkspaceID, b.OrganizationID, b.OccupantID, b.OccupantEmail,
		b.Date, b.StartMinute, b.EndMinute, b.Participants, b.Status, b.NoShow, b.PriceCents, b.Notes,
	)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	b.Version = 0
	const sel = `SELECT created_at, updated_at FROM bookings WHERE id = ?`
	return r.db.QueryRowContext(ctx, sel, b.ID).Scan(&b.CreatedAt, &b.UpdatedAt)
}

// UpdateIfUnchanged applies status, no_show and notes only when the stored
// version still equals expectedVersion, bumping the version on success.  A
// concurrent modification yields reservation.ErrVersionMismatch; a missing
// row yields reservation.ErrNotFound.
func (r *BookingRepo) UpdateIfUnchanged(ctx context.Context, b *model.Booking, expectedVersion uint32) error {
	const q = `UPDATE bookings
	           SET status = ?, no_show = ?, notes = ?, version = version + 1
	           WHERE id = ? AND version = ?`
	res, err := r.db.ExecContext(ctx, q, b.Status, b.NoShow, b.Notes, b.ID, expectedVersion)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		var exists bool
		if err := r.db.QueryRowContext(ctx, `SELECT TRUE FROM bookings WHERE id = ?`, b.ID).Scan(&exists); err != nil {
			return mapNoRows(err)
		}
		return reservation.ErrVersionMismatch
	}
	b.Version = expectedVersion + 1
	return nil
}

// ListForWorkspaceDate returns every booking (any status) on the workspace
// for the given date, ordered by start minute.
func (r *BookingRepo) ListForWorkspaceDate(ctx context.Context, workspaceID uint64, date string) ([]model.Booking, error) {
	const q = `SELECT ` + bookingColumns + `
	           FROM bookings WHERE workspace_id = ? AND booking_date = ?
	           ORDER BY start_minute`
	return r.list(ctx, q, workspaceID, date)
}

// CountForOrganizationDate counts non-cancelled bookings across the
// organization on the given date, for daily quota enforcement.
func (r *BookingRepo) CountForOrganizationDate(ctx context.Context, organizationID uint64, date string) (int, error) {
	const q = `SELECT COUNT(*) FROM bookings
	           WHERE organization_id = ? AND booking_date = ? AND status <> 'CANCELLED'`
	var n int
	if err := r.db.QueryRowContext(ctx, q, organizationID, date).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// ListByOccupant returns the occupant's bookings, newest first.
func (r *BookingRepo) ListByOccupant(ctx context.Context, occupantID uint64) ([]model.Booking, error) {
	const q = `SELECT ` + bookingColumns + `
	           FROM bookings WHERE occupant_id = ?
	           ORDER BY booking_date DESC, start_minute DESC`
	return r.list(ctx, q, occupantID)
}

// SearchByEmail resolves bookings by occupant email for the hub-manager
// check-in desk.  Date may be empty to search all dates.
func (r *BookingRepo) SearchByEmail(ctx context.Context, email, date string) ([]model.Booking, error) {
	if date != "" {
		const q = `SELECT ` + bookingColumns + `
		           FROM bookings WHERE occupant_email = ? AND booking_date = ?
		           ORDER BY start_minute`
		return r.list(ctx, q, email, date)
	}
	const q = `SELECT ` + bookingColumns + `
	           FROM bookings WHERE occupant_email = ?
	           ORDER BY booking_date DESC, start_minute DESC`
	return r.list(ctx, q, email)
}

// ListDue returns confirmed bookings whose end instant is at or before
// cutoff, oldest first.  The end instant is the booking date plus the end
// minute; both comparisons happen in UTC.
func (r *BookingRepo) ListDue(ctx context.Context, cutoff time.Time, limit int) ([]model.Booking, error) {
	const q = `SELECT ` + bookingColumns + `
	           FROM bookings
	           WHERE status = 'CONFIRMED'
	             AND TIMESTAMPADD(MINUTE, end_minute, CAST(booking_date AS DATETIME)) <= ?
	           ORDER BY booking_date, end_minute
	           LIMIT ?`
	return r.list(ctx, q, cutoff.UTC().Format("2006-01-02 15:04:05"), limit)
}

func (r *BookingRepo) list(ctx context.Context, q string, args ...any) ([]model.Booking, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Booking, 0)
	for rows.Next() {
		var b model.Booking
		if err := scanBooking(rows, &b); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
