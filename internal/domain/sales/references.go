package sales

import (
	"fmt"

	"github.com/jhoicas/fulfillment-ledger/internal/domain/entity"
)

// OrderCode código visible: VEN-000042 para pedidos, ORC-000042 para cotizaciones.
func OrderCode(t entity.DocumentType, id int64) string {
	prefix := "VEN"
	if t == entity.DocumentQuote {
		prefix = "ORC"
	}
	return fmt.Sprintf("%s-%06d", prefix, id)
}

// ReceivableReference clave de idempotencia de la cuenta por cobrar de la cuota n.
func ReceivableReference(orderID int64, n int) string {
	return fmt.Sprintf("ORDER-%d-P%02d", orderID, n)
}

// DocumentNumber número del boleto de la cuota n.
func DocumentNumber(orderID int64, n int) string {
	return fmt.Sprintf("VD%08d-%02d", orderID, n)
}
