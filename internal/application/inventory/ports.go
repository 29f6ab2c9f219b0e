package inventory

import (
	"context"
	"strings"

	"github.com/jhoicas/fulfillment-ledger/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Si fn devuelve error se hace Rollback de todo lo escrito.
type TxRunner interface {
	Run(ctx context.Context, fn func(repos repository.Repositories) error) error
}

// Locations ubicaciones físicas válidas. Vacío acepta cualquier nombre no vacío.
type Locations []string

// ParseLocations lee una lista separada por comas (INVENTORY_LOCATIONS).
func ParseLocations(csv string) Locations {
	var out Locations
	for _, p := range strings.Split(csv, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, strings.ToUpper(p))
		}
	}
	return out
}

// Contains indica si loc es una ubicación válida.
func (l Locations) Contains(loc string) bool {
	if loc == "" {
		return false
	}
	if len(l) == 0 {
		return true
	}
	for _, x := range l {
		if x == loc {
			return true
		}
	}
	return false
}
