package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transfer traslado entre ubicaciones. Inmutable una vez creado.
type Transfer struct {
	ID           int64
	BatchRef     string
	ProductID    int64
	FromLocation string
	ToLocation   string
	Quantity     decimal.Decimal
	Date         time.Time
	Note         string
	UserID       string
	CreatedAt    time.Time
}
