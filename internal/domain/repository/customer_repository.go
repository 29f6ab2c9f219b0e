package repository

import (
	"context"

	"github.com/jhoicas/fulfillment-ledger/internal/domain/entity"
)

// CustomerRepository consulta del catálogo de clientes.
type CustomerRepository interface {
	GetByID(ctx context.Context, id int64) (*entity.Customer, error)
}
