package repository

import (
	"context"

	"github.com/jhoicas/fulfillment-ledger/internal/domain/entity"
)

// OperationalExitRepository puerto de salidas operativas (uso interno, pérdidas, cambios).
type OperationalExitRepository interface {
	Create(ctx context.Context, e *entity.OperationalExit) error
	ListByBatch(ctx context.Context, batchRef string) ([]*entity.OperationalExit, error)
}
