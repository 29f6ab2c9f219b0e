package entity

import "time"

// Product ítem del catálogo. El motor de inventario solo lo consulta.
type Product struct {
	ID        int64
	SKU       string
	Name      string
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
