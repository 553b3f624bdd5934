package inventory

import (
	"sort"

	"github.com/jhoicas/stockledger-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// SalesAggregate resultado del cálculo de valor vendido.
type SalesAggregate struct {
	Total             decimal.Decimal
	UnitsByProduct    map[string]int
	MissingProductIDs []string // productos con ventas pero sin precio en el catálogo
}

// UnitsSoldByProduct agrupa los asientos Sale por producto sumando |delta|.
// Asientos de otro tipo se ignoran.
func UnitsSoldByProduct(logs []*entity.StockLog) map[string]int {
	units := make(map[string]int)
	for _, l := range logs {
		if l == nil || l.ChangeType != entity.ChangeTypeSale {
			continue
		}
		q := l.QuantityChange
		if q < 0 {
			q = -q
		}
		units[l.ProductID] += q
	}
	return units
}

// SalesValue multiplica unidades vendidas por el precio vigente de cada producto.
// Los productos sin precio quedan fuera del total y se listan en MissingProductIDs (ordenados).
func SalesValue(units map[string]int, prices map[string]decimal.Decimal) SalesAggregate {
	out := SalesAggregate{Total: decimal.Zero, UnitsByProduct: units}
	for productID, qty := range units {
		price, ok := prices[productID]
		if !ok {
			out.MissingProductIDs = append(out.MissingProductIDs, productID)
			continue
		}
		out.Total = out.Total.Add(price.Mul(decimal.NewFromInt(int64(qty))))
	}
	sort.Strings(out.MissingProductIDs)
	return out
}
