package sales

import (
	"context"

	"github.com/jhoicas/fulfillment-ledger/internal/application/inventory"
	"github.com/jhoicas/fulfillment-ledger/internal/domain/repository"
)

// TxRunner ejecuta fn en una transacción con todos los repositorios atados a ella.
type TxRunner interface {
	Run(ctx context.Context, fn func(repos repository.Repositories) error) error
}

// StockRecorder integración pedidos-inventario. Las operaciones corren en la
// transacción del caller; si devuelven error (ej. ErrInsufficientStock) el caller hace rollback.
type StockRecorder interface {
	RecordExitInTx(ctx context.Context, repos repository.Repositories, in inventory.ExitInput) (*inventory.MovementResult, error)
	RecordEntryInTx(ctx context.Context, repos repository.Repositories, in inventory.EntryInput) (*inventory.MovementResult, error)
}

var _ StockRecorder = (*inventory.StockLedger)(nil)
