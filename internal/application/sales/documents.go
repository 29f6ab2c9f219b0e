package sales

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/fulfillment-ledger/internal/domain/entity"
	"github.com/jhoicas/fulfillment-ledger/internal/domain/repository"
	"github.com/jhoicas/fulfillment-ledger/internal/domain/sales"
)

// DocumentGenerator emite un boleto por cuota para las formas de pago que lo requieren.
type DocumentGenerator struct {
	Now func() time.Time
}

// NewDocumentGenerator construye el generador.
func NewDocumentGenerator() *DocumentGenerator {
	return &DocumentGenerator{Now: time.Now}
}

// IssueInTx busca el boleto de la cuota y lo crea si falta. created indica si se insertó.
func (g *DocumentGenerator) IssueInTx(ctx context.Context, repos repository.Repositories, o *entity.Order, inst sales.Installment) (doc *entity.BillingDocument, created bool, err error) {
	link, err := repos.Documents().GetLink(ctx, o.ID, inst.Number)
	if err != nil {
		return nil, false, err
	}
	if link != nil {
		return nil, false, nil
	}

	number := sales.DocumentNumber(o.ID, inst.Number)
	doc, err = repos.Documents().GetByNumber(ctx, number)
	if err != nil {
		return nil, false, err
	}
	if doc == nil {
		now := g.Now()
		doc = &entity.BillingDocument{
			Number:        number,
			CustomerID:    o.CustomerID,
			SalespersonID: o.SalespersonID,
			Description:   fmt.Sprintf("Pedido %s - boleto %d/%d", o.Code, inst.Number, o.InstallmentCount),
			Amount:        inst.Amount,
			DueDate:       inst.DueDate,
			Status:        entity.DocumentOpen,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := repos.Documents().Create(ctx, doc); err != nil {
			return nil, false, err
		}
		created = true
	}
	if err := repos.Documents().Link(ctx, &entity.OrderDocument{OrderID: o.ID, Number: inst.Number, DocumentID: doc.ID}); err != nil {
		return nil, false, err
	}
	return doc, created, nil
}
