package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// MovementKind tipo de movimiento del ledger.
type MovementKind string

const (
	MovementEntry  MovementKind = "ENTRY"  // entrada
	MovementExit   MovementKind = "EXIT"   // salida
	MovementAdjust MovementKind = "ADJUST" // ajuste (positivo o negativo)
)

// Sentido del movimiento sobre el saldo.
const (
	DirectionIn  = 1
	DirectionOut = -1
)

// Tipos de origen de un movimiento.
const (
	OriginOrder       = "ORDER"
	OriginPurchase    = "PURCHASE"
	OriginCount       = "COUNT"
	OriginManual      = "MANUAL"
	OriginOperational = "OPERATIONAL"
)

// StockMovement registro inmutable del ledger. Quantity siempre es positiva; Direction da el signo.
type StockMovement struct {
	ID           int64
	ProductID    int64
	Kind         MovementKind
	Direction    int
	Quantity     decimal.Decimal
	Date         time.Time
	OriginType   string
	OriginID     *int64
	OriginLineID *int64
	LotID        *int64
	Location     string
	Note         string
	CreatedBy    string
	CreatedAt    time.Time
}

// SignedQuantity cantidad con signo para reconstruir el saldo.
func (m *StockMovement) SignedQuantity() decimal.Decimal {
	if m.Direction == DirectionOut {
		return m.Quantity.Neg()
	}
	return m.Quantity
}
