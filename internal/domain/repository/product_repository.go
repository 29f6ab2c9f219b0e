package repository

import (
	"context"

	"github.com/jhoicas/fulfillment-ledger/internal/domain/entity"
)

// ProductRepository consulta del catálogo de productos (solo lectura para el motor).
type ProductRepository interface {
	// GetByID devuelve nil, nil si el producto no existe.
	GetByID(ctx context.Context, id int64) (*entity.Product, error)
	ListActive(ctx context.Context) ([]*entity.Product, error)
}
