package repository

import (
	"context"

	"github.com/jhoicas/fulfillment-ledger/internal/domain/entity"
)

// TransferRepository puerto de traslados entre ubicaciones.
type TransferRepository interface {
	Create(ctx context.Context, t *entity.Transfer) error
	ListByBatch(ctx context.Context, batchRef string) ([]*entity.Transfer, error)
}
