package entity

import "time"

// Customer cliente del catálogo (solo lectura para ventas).
type Customer struct {
	ID        int64
	Name      string
	TaxID     string
	Active    bool
	CreatedAt time.Time
}
