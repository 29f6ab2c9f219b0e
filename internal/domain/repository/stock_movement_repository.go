package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/fulfillment-ledger/internal/domain/entity"
)

// MovementFilter filtros para listar el ledger de un producto.
type MovementFilter struct {
	ProductID int64
	From      *time.Time
	To        *time.Time
	Limit     int
	Offset    int
}

// StockMovementRepository puerto del ledger append-only.
type StockMovementRepository interface {
	Create(ctx context.Context, m *entity.StockMovement) error
	List(ctx context.Context, f MovementFilter) ([]*entity.StockMovement, error)
	// SumSigned reconstruye el saldo sumando entradas y restando salidas.
	SumSigned(ctx context.Context, productID int64) (decimal.Decimal, error)
	ExistsByOrigin(ctx context.Context, originType string, originID, originLineID int64, kind entity.MovementKind) (bool, error)
	// SumQuantity total movido de un tipo desde since (fecha del movimiento).
	SumQuantity(ctx context.Context, productID int64, kind entity.MovementKind, since time.Time) (decimal.Decimal, error)
}
