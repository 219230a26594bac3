package orders

import (
	"github.com/shopspring/decimal"
)

// Load converts a raw table (header row first) into typed orders.
//
// Header names are normalized once; flag columns absent from the source
// schema are synthesized as "não" for every row; numeric cells that fail to
// parse come out as Valid=false, never zero. Any data row whose width
// differs from the header aborts the whole load with a SchemaError.
func Load(table [][]string) ([]Order, error) {
	if len(table) == 0 {
		return nil, &SchemaError{Reason: "empty table, no header row"}
	}
	header := table[0]
	if len(header) == 0 {
		return nil, &SchemaError{Reason: "empty header row"}
	}
	want := len(header)

	out := make([]Order, 0, len(table)-1)
	for i, row := range table[1:] {
		if len(row) != want {
			return nil, &SchemaError{Row: i + 2, Want: want, Got: len(row)}
		}
		get := func(name string) string {
			if idx := columnIndex(header, name); idx >= 0 {
				return row[idx]
			}
			return ""
		}
		out = append(out, Order{
			ID:           normalizeID(get(ColID)),
			MaterialType: get(ColMaterialType),
			TruckType:    get(ColTruckType),
			Customer:     get(ColCustomer),
			Condominium:  get(ColCondominium),
			Lot:          get(ColLot),
			Hauler:       get(ColHauler),
			MaterialCost: parseAmount(get(ColMaterialCost)),
			FreightCost:  parseAmount(get(ColFreightCost)),
			SalePrice:    parseAmount(get(ColSalePrice)),
			Delivered:    loadFlag(header, row, ColDelivered),
			MaterialPaid: loadFlag(header, row, ColMaterialPaid),
			FreightPaid:  loadFlag(header, row, ColFreightPaid),
			CustomerPaid: loadFlag(header, row, ColCustomerPaid),
		})
	}
	return out, nil
}

func loadFlag(header, row []string, name string) FlagValue {
	idx := columnIndex(header, name)
	if idx < 0 {
		// Column predates this flag; every existing row defaults to "não".
		return No
	}
	// Fold case/whitespace variants onto the sim/não domain; anything else
	// is kept byte-for-byte and reads as false.
	if folded := FlagValue(normalizeCell(row[idx])); folded == Yes || folded == No {
		return folded
	}
	return FlagValue(row[idx])
}

func parseAmount(s string) decimal.NullDecimal {
	s = normalizeCell(s)
	if s == "" {
		return decimal.NullDecimal{}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: d, Valid: true}
}

func normalizeID(s string) string {
	return normalizeCell(s)
}
