// Package repository implements the reservation store contracts on MySQL.
// Each repository wraps a *sql.DB, issues plain SQL and maps sql.ErrNoRows
// to the engine's ErrNotFound sentinel so higher layers never see driver
// errors.  All timestamps are stored and compared in UTC.
package repository

import (
	"database/sql"
	"errors"

	"github.com/deskhive/workspace-reservation/internal/reservation"
)

// mapNoRows converts the driver's no-rows sentinel to the engine's NotFound.
func mapNoRows(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return reservation.ErrNotFound
	}
	return err
}
