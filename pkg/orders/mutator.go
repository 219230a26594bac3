package orders

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"agregados/pkg/rowstore"
)

// Fields carries the user-entered values for a new order. Amounts stay raw
// strings here; they are written to the store as entered and coerced on the
// next load, same as values typed straight into the spreadsheet.
type Fields struct {
	MaterialType string `json:"tipo_de_material"`
	TruckType    string `json:"tipo_de_caminhao"`
	Customer     string `json:"cliente"`
	Condominium  string `json:"condominio"`
	Lot          string `json:"lote"`
	Hauler       string `json:"cacambeiro"`
	MaterialCost string `json:"custo_do_material"`
	FreightCost  string `json:"custo_do_frete"`
	SalePrice    string `json:"preco_de_venda"`
}

// Mutator applies one-row-at-a-time changes to the store. Every operation
// is a fresh read-resolve-write cycle; row numbers are never reused across
// calls and the in-memory view is never patched optimistically.
type Mutator struct {
	store rowstore.Store
}

func NewMutator(store rowstore.Store) *Mutator {
	return &Mutator{store: store}
}

// Create appends one row in the live header's column order and returns the
// generated id. An empty store gets the canonical header first. Flags start
// as "não".
func (m *Mutator) Create(ctx context.Context, f Fields) (string, error) {
	table, err := m.store.ReadAll(ctx)
	if err != nil {
		return "", err
	}
	if len(table) == 0 {
		if err := m.store.AppendRow(ctx, CanonicalHeader); err != nil {
			return "", err
		}
		table = [][]string{CanonicalHeader}
	}
	header := table[0]
	if columnIndex(header, ColID) < 0 {
		return "", ErrNoIDColumn
	}

	id := uuid.NewString()
	values := make([]string, len(header))
	for i, cell := range header {
		switch normalizeCell(cell) {
		case ColID:
			values[i] = id
		case ColMaterialType:
			values[i] = f.MaterialType
		case ColTruckType:
			values[i] = f.TruckType
		case ColCustomer:
			values[i] = f.Customer
		case ColCondominium:
			values[i] = f.Condominium
		case ColLot:
			values[i] = f.Lot
		case ColHauler:
			values[i] = f.Hauler
		case ColMaterialCost:
			values[i] = f.MaterialCost
		case ColFreightCost:
			values[i] = f.FreightCost
		case ColSalePrice:
			values[i] = f.SalePrice
		case ColDelivered, ColMaterialPaid, ColFreightPaid, ColCustomerPaid:
			values[i] = string(No)
		}
	}
	if err := m.store.AppendRow(ctx, values); err != nil {
		return "", err
	}
	log.WithField("id", id).Info("Order created")
	return id, nil
}

// SetFlag writes exactly one cell. The row number comes from the same
// snapshot the flag column is looked up in, immediately before the write.
func (m *Mutator) SetFlag(ctx context.Context, id, flagName string, value FlagValue) error {
	flagName = normalizeCell(flagName)
	if !IsFlagColumn(flagName) {
		return fmt.Errorf("orders: %q is not a flag column", flagName)
	}
	if value != Yes && value != No {
		return fmt.Errorf("orders: flag value must be %q or %q, got %q", Yes, No, value)
	}
	table, err := m.store.ReadAll(ctx)
	if err != nil {
		return err
	}
	row, err := locateInTable(table, id)
	if err != nil {
		return err
	}
	col := columnIndex(table[0], flagName)
	if col < 0 {
		return fmt.Errorf("orders: flag column %q missing from store, run migration", flagName)
	}
	if err := m.store.UpdateCell(ctx, row, col+1, string(value)); err != nil {
		return err
	}
	log.WithFields(log.Fields{"id": id, "flag": flagName, "value": value}).Info("Flag updated")
	return nil
}

// Delete removes the order's row. The confirmation gate lives above this
// component; once called, deletion is unconditional.
func (m *Mutator) Delete(ctx context.Context, id string) error {
	row, err := NewResolver(m.store).Locate(ctx, id)
	if err != nil {
		return err
	}
	if err := m.store.DeleteRow(ctx, row); err != nil {
		return err
	}
	log.WithField("id", id).Info("Order deleted")
	return nil
}

// ResetAll clears every data row, keeping only a header. Irreversible; the
// caller is responsible for any confirmation.
func (m *Mutator) ResetAll(ctx context.Context) error {
	table, err := m.store.ReadAll(ctx)
	if err != nil {
		return err
	}
	header := CanonicalHeader
	if len(table) > 0 {
		header = table[0]
	}
	if err := m.store.Clear(ctx); err != nil {
		return err
	}
	if err := m.store.AppendRow(ctx, header); err != nil {
		return err
	}
	log.Warn("All orders cleared")
	return nil
}
