package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// AlertStatus estado de una alerta de stock bajo.
type AlertStatus string

const (
	AlertOpen     AlertStatus = "OPEN"
	AlertResolved AlertStatus = "RESOLVED"
)

// StockAlert alerta de stock bajo. Como máximo una OPEN por producto.
type StockAlert struct {
	ID              int64
	ProductID       int64
	Status          AlertStatus
	BalanceSnapshot decimal.Decimal
	MinimumSnapshot decimal.Decimal
	OpenedAt        time.Time
	ResolvedAt      *time.Time
	UpdatedAt       time.Time
}
