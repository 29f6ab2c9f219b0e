package repository

import (
	"context"

	"github.com/jhoicas/fulfillment-ledger/internal/domain/entity"
)

// ReceivableRepository puerto de cuentas por cobrar y su vínculo con cuotas de pedido.
type ReceivableRepository interface {
	GetByReference(ctx context.Context, reference string) (*entity.Receivable, error)
	Create(ctx context.Context, r *entity.Receivable) error
	UpdateStatus(ctx context.Context, id int64, status entity.ReceivableStatus) error
	// ListByOrderForUpdate cuentas ligadas a las cuotas del pedido, bloqueadas.
	ListByOrderForUpdate(ctx context.Context, orderID int64) ([]*entity.Receivable, error)

	GetInstallment(ctx context.Context, orderID int64, number int) (*entity.OrderInstallment, error)
	LinkInstallment(ctx context.Context, inst *entity.OrderInstallment) error
}

// BillingDocumentRepository puerto de boletos y su vínculo con cuotas de pedido.
type BillingDocumentRepository interface {
	GetByNumber(ctx context.Context, number string) (*entity.BillingDocument, error)
	Create(ctx context.Context, doc *entity.BillingDocument) error
	UpdateStatus(ctx context.Context, id int64, status entity.DocumentStatus) error
	ListByOrderForUpdate(ctx context.Context, orderID int64) ([]*entity.BillingDocument, error)

	GetLink(ctx context.Context, orderID int64, number int) (*entity.OrderDocument, error)
	Link(ctx context.Context, link *entity.OrderDocument) error
}
