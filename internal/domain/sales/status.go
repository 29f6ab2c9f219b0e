// Package sales reglas puras del ciclo de vida de pedidos: transiciones,
// totales, cuotas y referencias.
package sales

import "github.com/jhoicas/fulfillment-ledger/internal/domain/entity"

// Un pedido en DRAFT puede facturarse directo; la confirmación no es obligatoria.
var transitions = map[entity.OrderStatus][]entity.OrderStatus{
	entity.OrderDraft:     {entity.OrderConfirmed, entity.OrderBilled, entity.OrderCancelled},
	entity.OrderConfirmed: {entity.OrderBilled, entity.OrderCancelled},
	entity.OrderBilled:    {entity.OrderCompleted, entity.OrderCancelled},
	entity.OrderCompleted: {},
	entity.OrderCancelled: {},
}

// CanTransition indica si from -> to es una transición válida.
func CanTransition(from, to entity.OrderStatus) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// IsTerminal COMPLETED y CANCELLED no admiten más transiciones.
func IsTerminal(s entity.OrderStatus) bool {
	return s == entity.OrderCompleted || s == entity.OrderCancelled
}

// Editable las líneas solo se modifican antes de facturar.
func Editable(s entity.OrderStatus) bool {
	return s == entity.OrderDraft || s == entity.OrderConfirmed
}
