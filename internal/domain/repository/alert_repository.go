package repository

import (
	"context"

	"github.com/jhoicas/fulfillment-ledger/internal/domain/entity"
)

// StockAlertRepository puerto de alertas de stock bajo.
type StockAlertRepository interface {
	// GetOpen devuelve nil, nil si el producto no tiene alerta abierta.
	GetOpen(ctx context.Context, productID int64) (*entity.StockAlert, error)
	Create(ctx context.Context, a *entity.StockAlert) error
	Update(ctx context.Context, a *entity.StockAlert) error
	ListOpen(ctx context.Context) ([]*entity.StockAlert, error)
}
