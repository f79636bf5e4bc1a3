package repository

import (
	"context"
	"database/sql"

	"github.com/deskhive/workspace-reservation/internal/model"
)

// CheckInRepo persists check-ins.  Booking-backed check-ins reference their
// booking; walk-ins carry a NULL booking_id and the walk_in flag.
type CheckInRepo struct {
	db *sql.DB
}

// NewCheckInRepo returns a CheckInRepo bound to the given database.
func NewCheckInRepo(db *sql.DB) *CheckInRepo { return &CheckInRepo{db: db} }

const checkinColumns = `id, booking_id, workspace_id, occupant_id, walk_in,
	checkin_time, checkout_time, status, created_at`

func scanCheckIn(row interface{ Scan(dest ...any) error }, ci *model.CheckIn) error {
	var bookingID sql.NullInt64
	var checkout sql.NullTime
	err := row.Scan(
		&ci.ID, &bookingID, &ci.WorkspaceID, &ci.OccupantID, &ci.WalkIn,
		&ci.CheckInTime, &checkout, &ci.Status, &ci.CreatedAt,
	)
	if err != nil {
		return err
	}
	if bookingID.Valid {
		v := uint64(bookingID.Int64)
		ci.BookingID = &v
	}
	if checkout.Valid {
		t := checkout.Time
		ci.CheckOutTime = &t
	}
	return nil
}

// Get loads one check-in by ID.  Unknown IDs yield reservation.ErrNotFound.
func (r *CheckInRepo) Get(ctx context.Context, id uint64) (*model.CheckIn, error) {
	const q = `SELECT ` + checkinColumns + ` FROM checkins WHERE id = ?`
	var ci model.CheckIn
	if err := scanCheckIn(r.db.QueryRowContext(ctx, q, id), &ci); err != nil {
		return nil, mapNoRows(err)
	}
	return &ci, nil
}

// Insert creates a check-in row and populates the generated ID.
func (r *CheckInRepo) Insert(ctx context.Context, ci *model.CheckIn) error {
	const q = `INSERT INTO checkins
	           (booking_id, workspace_id, occupant_id, walk_in, checkin_time, checkout_time, status)
	           VALUES (?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q,
		ci.BookingID, ci.WorkspaceID, ci.OccupantID, ci.WalkIn,
		ci.CheckInTime.UTC(), ci.CheckOutTime, ci.Status,
	)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	ci.ID = uint64(id)
	const sel = `SELECT created_at FROM checkins WHERE id = ?`
	return r.db.QueryRowContext(ctx, sel, ci.ID).Scan(&ci.CreatedAt)
}

// Update persists the checkout time and status.
func (r *CheckInRepo) Update(ctx context.Context, ci *model.CheckIn) error {
	const q = `UPDATE checkins SET checkout_time = ?, status = ? WHERE id = ?`
	_, err := r.db.ExecContext(ctx, q, ci.CheckOutTime, ci.Status, ci.ID)
	return err
}

// ActiveForBooking returns the active check-in for a booking, or
// reservation.ErrNotFound when none exists.
func (r *CheckInRepo) ActiveForBooking(ctx context.Context, bookingID uint64) (*model.CheckIn, error) {
	const q = `SELECT ` + checkinColumns + `
	           FROM checkins WHERE booking_id = ? AND status = 'ACTIVE'`
	var ci model.CheckIn
	if err := scanCheckIn(r.db.QueryRowContext(ctx, q, bookingID), &ci); err != nil {
		return nil, mapNoRows(err)
	}
	return &ci, nil
}

// ActiveForOccupantWorkspace returns the occupant's active check-in on a
// workspace, or reservation.ErrNotFound when none exists.
func (r *CheckInRepo) ActiveForOccupantWorkspace(ctx context.Context, occupantID, workspaceID uint64) (*model.CheckIn, error) {
	const q = `SELECT ` + checkinColumns + `
	           FROM checkins WHERE occupant_id = ? AND workspace_id = ? AND status = 'ACTIVE'`
	var ci model.CheckIn
	if err := scanCheckIn(r.db.QueryRowContext(ctx, q, occupantID, workspaceID), &ci); err != nil {
		return nil, mapNoRows(err)
	}
	return &ci, nil
}

// AnyForBooking reports whether the booking ever had a check-in, regardless
// of status.  Used for the no-show annotation on completion.
func (r *CheckInRepo) AnyForBooking(ctx context.Context, bookingID uint64) (bool, error) {
	const q = `SELECT COUNT(*) FROM checkins WHERE booking_id = ?`
	var n int
	if err := r.db.QueryRowContext(ctx, q, bookingID).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

// CountActiveForWorkspace counts active check-ins on a workspace, used to
// enforce capacity for walk-ins.
func (r *CheckInRepo) CountActiveForWorkspace(ctx context.Context, workspaceID uint64) (int, error) {
	const q = `SELECT COUNT(*) FROM checkins WHERE workspace_id = ? AND status = 'ACTIVE'`
	var n int
	if err := r.db.QueryRowContext(ctx, q, workspaceID).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
