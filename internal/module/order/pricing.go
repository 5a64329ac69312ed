package order

import "github.com/datalake/server/internal/shared/money"

// Pricing constants.
const (
	TaxRate      = 0.10
	ShippingCost = 10.00
)

// Totals is the price breakdown of an order.
type Totals struct {
	Subtotal     float64
	Tax          float64
	ShippingCost float64
	TotalAmount  float64
}

// BuildItems converts request items to line items, pricing each line as
// quantity times unit price.
func BuildItems(in []ItemRequest) []OrderItem {
	items := make([]OrderItem, len(in))
	for i, it := range in {
		items[i] = OrderItem{
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			UnitPrice:   money.Round(it.UnitPrice),
			TotalPrice:  money.Round(float64(it.Quantity) * it.UnitPrice),
		}
	}
	return items
}

// CalculateTotals prices a set of line items: 10% tax on the subtotal plus
// flat shipping.
func CalculateTotals(items []OrderItem) Totals {
	var subtotal float64
	for _, it := range items {
		subtotal += it.TotalPrice
	}
	subtotal = money.Round(subtotal)
	tax := money.Round(subtotal * TaxRate)

	return Totals{
		Subtotal:     subtotal,
		Tax:          tax,
		ShippingCost: ShippingCost,
		TotalAmount:  money.Sum(subtotal, tax, ShippingCost),
	}
}

// applyTotals writes the totals onto the order.
func (o *Order) applyTotals(t Totals) {
	o.Subtotal = t.Subtotal
	o.Tax = t.Tax
	o.ShippingCost = t.ShippingCost
	o.TotalAmount = t.TotalAmount
}
