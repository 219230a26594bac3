package orders

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound means the identifier resolved to no live row. Distinct
	// from a transport failure so callers can report it per-action.
	ErrNotFound = errors.New("orders: order not found")

	// ErrNoIDColumn means the store predates the identifier scheme and
	// the backfill migration has not run yet.
	ErrNoIDColumn = errors.New("orders: id column missing, run migration first")
)

// SchemaError aborts a load: a data row's width does not match the header,
// or the header itself is unreadable. Truncating or padding instead would
// shift the identifier column and corrupt writes.
type SchemaError struct {
	Row    int
	Want   int
	Got    int
	Reason string
}

func (e *SchemaError) Error() string {
	if e.Reason != "" {
		return "orders: schema: " + e.Reason
	}
	return fmt.Sprintf("orders: schema: row %d has %d cells, header has %d", e.Row, e.Got, e.Want)
}

// MigrationError reports a failed identifier backfill. RestoreErr is set
// when the attempt to put the original table back also failed, which means
// the store needs manual attention.
type MigrationError struct {
	Err        error
	RestoreErr error
}

func (e *MigrationError) Error() string {
	if e.RestoreErr != nil {
		return fmt.Sprintf("orders: migration failed (%v) and restore failed (%v)", e.Err, e.RestoreErr)
	}
	return fmt.Sprintf("orders: migration failed, original table restored: %v", e.Err)
}

func (e *MigrationError) Unwrap() error {
	return e.Err
}
