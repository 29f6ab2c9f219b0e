package repository

import (
	"context"

	"github.com/jhoicas/fulfillment-ledger/internal/domain/entity"
)

// OrderRepository puerto de pedidos y sus líneas.
type OrderRepository interface {
	Create(ctx context.Context, o *entity.Order) error
	GetByID(ctx context.Context, id int64) (*entity.Order, error)
	// GetForUpdate bloquea el pedido; nil, nil si no existe.
	GetForUpdate(ctx context.Context, id int64) (*entity.Order, error)
	Update(ctx context.Context, o *entity.Order) error

	CreateLine(ctx context.Context, l *entity.OrderLine) error
	DeleteLines(ctx context.Context, orderID int64) error
	ListLines(ctx context.Context, orderID int64) ([]*entity.OrderLine, error)
	ListLinesForUpdate(ctx context.Context, orderID int64) ([]*entity.OrderLine, error)
}

// OrderEventRepository historial append-only del pedido.
type OrderEventRepository interface {
	Append(ctx context.Context, e *entity.OrderEvent) error
	ListByOrder(ctx context.Context, orderID int64) ([]*entity.OrderEvent, error)
}

// OrderStockMovementRepository vínculos pedido-línea-movimiento (clave de idempotencia).
type OrderStockMovementRepository interface {
	Exists(ctx context.Context, orderID, lineID int64, kind entity.LinkKind) (bool, error)
	// Create devuelve domain.ErrDuplicate si ya existe el vínculo (pedido, línea, tipo).
	Create(ctx context.Context, l *entity.OrderStockMovement) error
	ListByOrder(ctx context.Context, orderID int64, kind entity.LinkKind) ([]*entity.OrderStockMovement, error)
}
