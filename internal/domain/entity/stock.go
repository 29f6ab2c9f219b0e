package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockBalance saldo consolidado de un producto (caché materializada del ledger).
// Quantity nunca es negativo; AverageCost es el costo promedio ponderado.
type StockBalance struct {
	ProductID   int64
	Quantity    decimal.Decimal
	MinimumQty  decimal.Decimal
	IdealQty    decimal.Decimal
	MaximumQty  decimal.Decimal
	AverageCost decimal.Decimal
	UpdatedAt   time.Time
}

// NewStockBalance saldo vacío para un producto sin movimientos.
func NewStockBalance(productID int64) *StockBalance {
	return &StockBalance{
		ProductID:   productID,
		Quantity:    decimal.Zero,
		MinimumQty:  decimal.Zero,
		IdealQty:    decimal.Zero,
		MaximumQty:  decimal.Zero,
		AverageCost: decimal.Zero,
	}
}

// LocationBalance saldo de un producto en una ubicación (tienda).
type LocationBalance struct {
	ProductID int64
	Location  string
	Quantity  decimal.Decimal
	UpdatedAt time.Time
}

// Ubicaciones por defecto.
const (
	LocationStore1 = "LOJA_1"
	LocationStore2 = "LOJA_2"
)
