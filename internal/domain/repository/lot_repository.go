package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/fulfillment-ledger/internal/domain/entity"
)

// LotRepository puerto de lotes de entrada.
type LotRepository interface {
	Create(ctx context.Context, lot *entity.Lot) error
	// ListAvailableForUpdate lotes con remanente > 0 en orden FIFO (entry_date, id), bloqueados.
	ListAvailableForUpdate(ctx context.Context, productID int64) ([]*entity.Lot, error)
	UpdateRemaining(ctx context.Context, lotID int64, remaining decimal.Decimal) error
	ListAvailable(ctx context.Context, productID int64) ([]*entity.Lot, error)
	SumRemaining(ctx context.Context, productID int64) (decimal.Decimal, error)
	// ListEnteredSince lotes (agotados o no) con entry_date >= since, en orden FIFO.
	ListEnteredSince(ctx context.Context, productID int64, since time.Time) ([]*entity.Lot, error)
}
