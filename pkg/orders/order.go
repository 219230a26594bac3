package orders

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Normalized column names. Header cells are lower-cased and trimmed before
// comparison, so these constants are the canonical spellings.
const (
	ColID           = "id_pedido"
	ColMaterialType = "tipo de material"
	ColTruckType    = "tipo de caminhão"
	ColCustomer     = "cliente"
	ColCondominium  = "condominio"
	ColLot          = "lote"
	ColHauler       = "caçambeiro"
	ColMaterialCost = "custo do material"
	ColFreightCost  = "custo do frete"
	ColSalePrice    = "preço de venda"
	ColDelivered    = "entregue"
	ColMaterialPaid = "pagamento material"
	ColFreightPaid  = "pagamento frete"
	ColCustomerPaid = "cliente pagou"
)

// CanonicalHeader is written to brand-new sheets. Existing sheets keep
// whatever column order they have; lookups always go through the header.
var CanonicalHeader = []string{
	ColID,
	ColMaterialType,
	ColTruckType,
	ColCustomer,
	ColCondominium,
	ColLot,
	ColHauler,
	ColMaterialCost,
	ColFreightCost,
	ColSalePrice,
	ColDelivered,
	ColMaterialPaid,
	ColFreightPaid,
	ColCustomerPaid,
}

// FlagValue holds a yes/no cell literal. Only the exact value "sim" counts
// as affirmative; anything else is preserved as-is and reads as false.
type FlagValue string

const (
	Yes FlagValue = "sim"
	No  FlagValue = "não"
)

func (f FlagValue) Bool() bool {
	return f == Yes
}

var flagColumns = []string{ColDelivered, ColMaterialPaid, ColFreightPaid, ColCustomerPaid}

// IsFlagColumn reports whether name (normalized) is one of the four
// yes/no order flags.
func IsFlagColumn(name string) bool {
	name = normalizeCell(name)
	for _, f := range flagColumns {
		if name == f {
			return true
		}
	}
	return false
}

// Order is one delivery transaction, typed once at load time. The amounts
// use NullDecimal so an unparsable cell stays "unknown" instead of a
// silent zero.
type Order struct {
	ID           string              `json:"id_pedido"`
	MaterialType string              `json:"tipo_de_material"`
	TruckType    string              `json:"tipo_de_caminhao"`
	Customer     string              `json:"cliente"`
	Condominium  string              `json:"condominio"`
	Lot          string              `json:"lote"`
	Hauler       string              `json:"cacambeiro"`
	MaterialCost decimal.NullDecimal `json:"custo_do_material"`
	FreightCost  decimal.NullDecimal `json:"custo_do_frete"`
	SalePrice    decimal.NullDecimal `json:"preco_de_venda"`
	Delivered    FlagValue           `json:"entregue"`
	MaterialPaid FlagValue           `json:"pagamento_material"`
	FreightPaid  FlagValue           `json:"pagamento_frete"`
	CustomerPaid FlagValue           `json:"cliente_pagou"`
}

// Profit is sale price minus both costs. Valid only when all three amounts
// parsed, so aggregates can exclude orders with unknown costs.
func (o Order) Profit() decimal.NullDecimal {
	if !o.MaterialCost.Valid || !o.FreightCost.Valid || !o.SalePrice.Valid {
		return decimal.NullDecimal{}
	}
	p := o.SalePrice.Decimal.Sub(o.MaterialCost.Decimal.Add(o.FreightCost.Decimal))
	return decimal.NullDecimal{Decimal: p, Valid: true}
}

func normalizeCell(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// columnIndex finds the 0-based position of a normalized column name in a
// raw header row, or -1.
func columnIndex(header []string, name string) int {
	for i, cell := range header {
		if normalizeCell(cell) == name {
			return i
		}
	}
	return -1
}
