package sales

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/fulfillment-ledger/internal/domain/entity"
	"github.com/jhoicas/fulfillment-ledger/internal/domain/repository"
	"github.com/jhoicas/fulfillment-ledger/internal/domain/sales"
)

// ReceivableGenerator crea una cuenta por cobrar por cuota, idempotente por (pedido, cuota)
// y por referencia.
type ReceivableGenerator struct {
	Now func() time.Time
}

// NewReceivableGenerator construye el generador.
func NewReceivableGenerator() *ReceivableGenerator {
	return &ReceivableGenerator{Now: time.Now}
}

// Schedule cuotas del pedido (montos y vencimientos).
func (g *ReceivableGenerator) Schedule(o *entity.Order) ([]sales.Installment, error) {
	return sales.Schedule(o)
}

// EnsureInTx busca la cuenta de la cuota y la crea si falta. created indica si se insertó.
func (g *ReceivableGenerator) EnsureInTx(ctx context.Context, repos repository.Repositories, o *entity.Order, inst sales.Installment) (rec *entity.Receivable, created bool, err error) {
	link, err := repos.Receivables().GetInstallment(ctx, o.ID, inst.Number)
	if err != nil {
		return nil, false, err
	}
	if link != nil {
		return nil, false, nil
	}

	ref := sales.ReceivableReference(o.ID, inst.Number)
	rec, err = repos.Receivables().GetByReference(ctx, ref)
	if err != nil {
		return nil, false, err
	}
	if rec == nil {
		now := g.Now()
		rec = &entity.Receivable{
			Reference:   ref,
			Description: fmt.Sprintf("Pedido %s - cuota %d/%d", o.Code, inst.Number, o.InstallmentCount),
			CustomerID:  o.CustomerID,
			DueDate:     inst.DueDate,
			Amount:      inst.Amount,
			Status:      entity.ReceivableOpen,
			OriginType:  entity.OriginOrder,
			OriginID:    o.ID,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := repos.Receivables().Create(ctx, rec); err != nil {
			return nil, false, err
		}
		created = true
	}
	err = repos.Receivables().LinkInstallment(ctx, &entity.OrderInstallment{
		OrderID:      o.ID,
		Number:       inst.Number,
		ReceivableID: rec.ID,
		Amount:       inst.Amount,
		DueDate:      inst.DueDate,
	})
	if err != nil {
		return nil, false, err
	}
	return rec, created, nil
}
