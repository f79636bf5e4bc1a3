package repository

import (
	"context"
	"database/sql"

	"github.com/deskhive/workspace-reservation/internal/model"
)

// WorkspaceRepo provides CRUD operations for workspaces.  Workspaces are
// soft-disabled via the enabled flag rather than deleted so historical
// bookings stay valid, and the owning organization is never updated after
// creation.
type WorkspaceRepo struct {
	db *sql.DB
}

// NewWorkspaceRepo returns a WorkspaceRepo bound to the given database.
func NewWorkspaceRepo(db *sql.DB) *WorkspaceRepo { return &WorkspaceRepo{db: db} }

const workspaceColumns = `id, organization_id, name, type, capacity, hourly_rate_cents,
	base_price_cents, enabled, availability_hint, created_at, updated_at`

func scanWorkspace(row interface{ Scan(dest ...any) error }, w *model.Workspace) error {
	return row.Scan(
		&w.ID, &w.OrganizationID, &w.Name, &w.Type, &w.Capacity, &w.HourlyRateCents,
		&w.BasePriceCents, &w.Enabled, &w.AvailabilityHint, &w.CreatedAt, &w.UpdatedAt,
	)
}

// Get loads one workspace by ID.  Unknown IDs yield reservation.ErrNotFound.
func (r *WorkspaceRepo) Get(ctx context.Context, id uint64) (*model.Workspace, error) {
	const q = `SELECT ` + workspaceColumns + ` FROM workspaces WHERE id = ?`
	var w model.Workspace
	if err := scanWorkspace(r.db.QueryRowContext(ctx, q, id), &w); err != nil {
		return nil, mapNoRows(err)
	}
	return &w, nil
}

// List returns the workspaces of an organization ordered by ID.  Disabled
// workspaces are excluded unless includeDisabled is set (admin view).
func (r *WorkspaceRepo) List(ctx context.Context, organizationID uint64, includeDisabled bool) ([]model.Workspace, error) {
	q := `SELECT ` + workspaceColumns + ` FROM workspaces WHERE organization_id = ?`
	if !includeDisabled {
		q += ` AND enabled = TRUE`
	}
	q += ` ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q, organizationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Workspace, 0)
	for rows.Next() {
		var w model.Workspace
		if err := scanWorkspace(rows, &w); err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

// Insert creates a workspace and populates the generated ID and timestamps.
func (r *WorkspaceRepo) Insert(ctx context.Context, ws *model.Workspace) error {
	const q = `INSERT INTO workspaces
	           (organization_id, name, type, capacity, hourly_rate_cents, base_price_cents, enabled, availability_hint)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q,
		ws.OrganizationID, ws.Name, ws.Type, ws.Capacity,
		ws.HourlyRateCents, ws.BasePriceCents, ws.Enabled, ws.AvailabilityHint,
	)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	ws.ID = uint64(id)
	const sel = `SELECT created_at, updated_at FROM workspaces WHERE id = ?`
	return r.db.QueryRowContext(ctx, sel, ws.ID).Scan(&ws.CreatedAt, &ws.UpdatedAt)
}

// Update persists mutable workspace fields.  organization_id is deliberately
// absent from the statement: the owning organization is immutable.
func (r *WorkspaceRepo) Update(ctx context.Context, ws *model.Workspace) error {
	const q = `UPDATE workspaces
	           SET name = ?, type = ?, capacity = ?, hourly_rate_cents = ?,
	               base_price_cents = ?, enabled = ?, availability_hint = ?
	           WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q,
		ws.Name, ws.Type, ws.Capacity, ws.HourlyRateCents,
		ws.BasePriceCents, ws.Enabled, ws.AvailabilityHint, ws.ID,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// Either the row is missing or nothing changed; distinguish them.
		var exists bool
		if err := r.db.QueryRowContext(ctx, `SELECT TRUE FROM workspaces WHERE id = ?`, ws.ID).Scan(&exists); err != nil {
			return mapNoRows(err)
		}
	}
	return nil
}
