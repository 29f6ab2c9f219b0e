package sales

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/fulfillment-ledger/internal/domain/entity"
	"github.com/jhoicas/fulfillment-ledger/internal/domain/inventory"
)

// LineSubtotal max(0, round2(qty*price) - discount).
func LineSubtotal(qty, unitPrice, discount decimal.Decimal) decimal.Decimal {
	gross := inventory.RoundMoney(qty.Mul(unitPrice))
	sub := gross.Sub(inventory.RoundMoney(discount))
	if sub.IsNegative() {
		return decimal.Zero
	}
	return inventory.RoundMoney(sub)
}

// NormalizeLine redondea la línea y recalcula su subtotal.
func NormalizeLine(l *entity.OrderLine) {
	l.Quantity = inventory.RoundQty(l.Quantity)
	l.UnitPrice = inventory.RoundMoney(l.UnitPrice)
	l.Discount = inventory.RoundMoney(l.Discount)
	l.Subtotal = LineSubtotal(l.Quantity, l.UnitPrice, l.Discount)
}

// ApplyTotals deriva Subtotal (bruto), Discount (descuento efectivo) y Total del pedido.
// Total = Subtotal - Discount + Surcharge.
func ApplyTotals(o *entity.Order, lines []*entity.OrderLine) {
	gross := decimal.Zero
	net := decimal.Zero
	for _, l := range lines {
		gross = gross.Add(inventory.RoundMoney(l.Quantity.Mul(l.UnitPrice)))
		net = net.Add(l.Subtotal)
	}
	o.Surcharge = inventory.RoundMoney(o.Surcharge)
	o.Subtotal = inventory.RoundMoney(gross)
	o.Discount = inventory.RoundMoney(gross.Sub(net))
	o.Total = o.Subtotal.Sub(o.Discount).Add(o.Surcharge)
}
