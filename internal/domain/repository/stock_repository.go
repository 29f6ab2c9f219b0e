package repository

import (
	"context"

	"github.com/jhoicas/fulfillment-ledger/internal/domain/entity"
)

// StockBalanceRepository puerto del saldo consolidado por producto.
// GetForUpdate bloquea la fila (SELECT FOR UPDATE) y la crea en cero si no existe;
// es el candado por producto de todas las operaciones del ledger.
type StockBalanceRepository interface {
	Get(ctx context.Context, productID int64) (*entity.StockBalance, error)
	GetForUpdate(ctx context.Context, productID int64) (*entity.StockBalance, error)
	Upsert(ctx context.Context, balance *entity.StockBalance) error
	ListProductIDs(ctx context.Context) ([]int64, error)
}

// LocationBalanceRepository puerto del saldo por ubicación.
type LocationBalanceRepository interface {
	GetForUpdate(ctx context.Context, productID int64, location string) (*entity.LocationBalance, error)
	Upsert(ctx context.Context, balance *entity.LocationBalance) error
	ListByProduct(ctx context.Context, productID int64) ([]*entity.LocationBalance, error)
}
