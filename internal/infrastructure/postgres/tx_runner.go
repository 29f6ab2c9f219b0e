package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/fulfillment-ledger/internal/application/inventory"
	"github.com/jhoicas/fulfillment-ledger/internal/application/sales"
	"github.com/jhoicas/fulfillment-ledger/internal/domain/repository"
)

var (
	_ inventory.TxRunner      = (*TxRunner)(nil)
	_ sales.TxRunner          = (*TxRunner)(nil)
	_ repository.Repositories = (*Repos)(nil)
)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
func (r *TxRunner) Run(ctx context.Context, fn func(repos repository.Repositories) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(NewRepositories(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Repos agrupa los adaptadores sobre un mismo Querier (pool o tx).
type Repos struct {
	q Querier
}

// NewRepositories construye el conjunto de repositorios. Pasar pool o tx (Querier).
func NewRepositories(q Querier) *Repos {
	return &Repos{q: q}
}

func (r *Repos) Products() repository.ProductRepository   { return NewProductRepository(r.q) }
func (r *Repos) Customers() repository.CustomerRepository { return NewCustomerRepository(r.q) }
func (r *Repos) Balances() repository.StockBalanceRepository {
	return NewStockBalanceRepository(r.q)
}
func (r *Repos) LocationBalances() repository.LocationBalanceRepository {
	return NewLocationBalanceRepository(r.q)
}
func (r *Repos) Lots() repository.LotRepository { return NewLotRepository(r.q) }
func (r *Repos) Movements() repository.StockMovementRepository {
	return NewStockMovementRepository(r.q)
}
func (r *Repos) Alerts() repository.StockAlertRepository  { return NewStockAlertRepository(r.q) }
func (r *Repos) Transfers() repository.TransferRepository { return NewTransferRepository(r.q) }
func (r *Repos) OperationalExits() repository.OperationalExitRepository {
	return NewOperationalExitRepository(r.q)
}
func (r *Repos) Orders() repository.OrderRepository { return NewOrderRepository(r.q) }
func (r *Repos) OrderEvents() repository.OrderEventRepository {
	return NewOrderEventRepository(r.q)
}
func (r *Repos) OrderMovements() repository.OrderStockMovementRepository {
	return NewOrderStockMovementRepository(r.q)
}
func (r *Repos) Receivables() repository.ReceivableRepository {
	return NewReceivableRepository(r.q)
}
func (r *Repos) Documents() repository.BillingDocumentRepository {
	return NewBillingDocumentRepository(r.q)
}
