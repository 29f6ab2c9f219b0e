package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Lot lote de entrada. RemainingQty baja con cada consumo FIFO y nunca supera InitialQty.
type Lot struct {
	ID           int64
	ProductID    int64
	EntryDate    time.Time
	InitialQty   decimal.Decimal
	RemainingQty decimal.Decimal
	OriginType   string
	OriginID     *int64
	CreatedAt    time.Time
}

// DaysInStock días calendario entre la fecha de entrada y today (nunca negativo).
func (l *Lot) DaysInStock(today time.Time) int {
	from := dateOnly(l.EntryDate)
	to := dateOnly(today)
	if to.Before(from) {
		return 0
	}
	return int(to.Sub(from).Hours() / 24)
}

// Available indica si el lote aún tiene cantidad por consumir.
func (l *Lot) Available() bool {
	return l.RemainingQty.IsPositive()
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
