package orders

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Summary holds the dashboard's headline numbers. Profit sums only orders
// whose three amounts all parsed; orders with unknown costs still count in
// TotalOrders so a bad cell never shrinks the order count.
type Summary struct {
	TotalOrders  int             `json:"total_entregas"`
	Delivered    int             `json:"entregues"`
	MaterialPaid int             `json:"materiais_pagos"`
	FreightPaid  int             `json:"fretes_pagos"`
	CustomerPaid int             `json:"clientes_pagos"`
	Profit       decimal.Decimal `json:"lucro"`
	ProfitOrders int             `json:"pedidos_no_lucro"`
}

func Summarize(list []Order) Summary {
	s := Summary{TotalOrders: len(list), Profit: decimal.Zero}
	for _, o := range list {
		if o.Delivered.Bool() {
			s.Delivered++
		}
		if o.MaterialPaid.Bool() {
			s.MaterialPaid++
		}
		if o.FreightPaid.Bool() {
			s.FreightPaid++
		}
		if o.CustomerPaid.Bool() {
			s.CustomerPaid++
		}
		if p := o.Profit(); p.Valid {
			s.Profit = s.Profit.Add(p.Decimal)
			s.ProfitOrders++
		}
	}
	return s
}

// Reports are the breakdowns behind the dashboard charts.
type Reports struct {
	CountByMaterial      map[string]int             `json:"volume_por_material"`
	DeliveriesByHauler   map[string]int             `json:"entregas_por_cacambeiro"`
	ProfitByPaidCustomer map[string]decimal.Decimal `json:"lucro_por_cliente"`
	UnpaidCustomers      []string                   `json:"clientes_em_aberto"`
}

// BuildReports aggregates per-dimension views. Profit per customer only
// counts orders with both material and freight paid, matching how the
// dashboard charts settled business.
func BuildReports(list []Order) Reports {
	r := Reports{
		CountByMaterial:      make(map[string]int),
		DeliveriesByHauler:   make(map[string]int),
		ProfitByPaidCustomer: make(map[string]decimal.Decimal),
	}
	unpaid := make(map[string]bool)
	for _, o := range list {
		if o.MaterialType != "" {
			r.CountByMaterial[o.MaterialType]++
		}
		if o.Hauler != "" {
			r.DeliveriesByHauler[o.Hauler]++
		}
		if o.Customer == "" {
			continue
		}
		if o.MaterialPaid.Bool() && o.FreightPaid.Bool() {
			if p := o.Profit(); p.Valid {
				cur, ok := r.ProfitByPaidCustomer[o.Customer]
				if !ok {
					cur = decimal.Zero
				}
				r.ProfitByPaidCustomer[o.Customer] = cur.Add(p.Decimal)
			}
		}
		if !o.CustomerPaid.Bool() {
			unpaid[o.Customer] = true
		}
	}
	for c := range unpaid {
		r.UnpaidCustomers = append(r.UnpaidCustomers, c)
	}
	sort.Strings(r.UnpaidCustomers)
	return r
}
