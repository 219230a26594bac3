package orders

import (
	"context"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"agregados/pkg/rowstore"
)

// Resolver maps an order id to the row's current 1-based position in the
// store. Positions shift on every insert/delete, so a result is only valid
// for the one synchronous operation that asked for it; nothing is cached.
type Resolver struct {
	store rowstore.Store
}

func NewResolver(store rowstore.Store) *Resolver {
	return &Resolver{store: store}
}

// Locate re-reads the table and scans for id. Returns ErrNotFound when the
// id is absent, or when the id column itself is missing (migration not run).
func (r *Resolver) Locate(ctx context.Context, id string) (int, error) {
	table, err := r.store.ReadAll(ctx)
	if err != nil {
		return 0, err
	}
	return locateInTable(table, id)
}

// locateInTable scans a snapshot known to be current. Row 1 is the header,
// so the first data row resolves to 2.
func locateInTable(table [][]string, id string) (int, error) {
	if len(table) == 0 {
		return 0, ErrNotFound
	}
	col := columnIndex(table[0], ColID)
	if col < 0 {
		return 0, ErrNotFound
	}
	id = normalizeID(id)
	for i, row := range table[1:] {
		if col < len(row) && normalizeID(row[col]) == id {
			return i + 2, nil
		}
	}
	return 0, ErrNotFound
}

// Migrate backfills the id column on a store that predates it: every
// existing row gets a fresh uuid and the table is rewritten with the id
// column prepended. The rewritten table is staged fully in memory before
// the old one is cleared; if a write then fails, the original rows are put
// back. Idempotent when the column already exists.
func (r *Resolver) Migrate(ctx context.Context) (int, error) {
	table, err := r.store.ReadAll(ctx)
	if err != nil {
		return 0, err
	}
	if len(table) == 0 {
		if err := r.store.AppendRow(ctx, CanonicalHeader); err != nil {
			return 0, &MigrationError{Err: err}
		}
		log.Info("Initialized empty store with canonical header")
		return 0, nil
	}
	if columnIndex(table[0], ColID) >= 0 {
		return 0, nil
	}

	staged := make([][]string, 0, len(table))
	staged = append(staged, prepend(ColID, table[0]))
	for _, row := range table[1:] {
		staged = append(staged, prepend(uuid.NewString(), row))
	}

	if err := r.rewrite(ctx, staged); err != nil {
		log.WithError(err).Error("Migration write failed, restoring original table")
		if restoreErr := r.rewrite(ctx, table); restoreErr != nil {
			return 0, &MigrationError{Err: err, RestoreErr: restoreErr}
		}
		return 0, &MigrationError{Err: err}
	}
	log.Infof("Backfilled ids for %d rows", len(staged)-1)
	return len(staged) - 1, nil
}

func (r *Resolver) rewrite(ctx context.Context, rows [][]string) error {
	if err := r.store.Clear(ctx); err != nil {
		return err
	}
	for _, row := range rows {
		if err := r.store.AppendRow(ctx, row); err != nil {
			return err
		}
	}
	return nil
}

func prepend(cell string, row []string) []string {
	out := make([]string, 0, len(row)+1)
	out = append(out, cell)
	return append(out, row...)
}
