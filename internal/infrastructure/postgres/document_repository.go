package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/fulfillment-ledger/internal/domain"
	"github.com/jhoicas/fulfillment-ledger/internal/domain/entity"
	"github.com/jhoicas/fulfillment-ledger/internal/domain/repository"
)

var _ repository.BillingDocumentRepository = (*BillingDocumentRepo)(nil)

// BillingDocumentRepo boletos y su vínculo con cuotas (usable con pool o tx).
type BillingDocumentRepo struct {
	q Querier
}

// NewBillingDocumentRepository construye el adaptador. Pasar pool o tx (Querier).
func NewBillingDocumentRepository(q Querier) *BillingDocumentRepo {
	return &BillingDocumentRepo{q: q}
}

const documentColumns = `d.id, d.number, d.customer_id, d.salesperson_id, d.description, d.amount, d.due_date, d.status,
	d.created_at, d.updated_at`

func scanDocument(row rowScanner) (*entity.BillingDocument, error) {
	var d entity.BillingDocument
	var status string
	err := row.Scan(&d.ID, &d.Number, &d.CustomerID, &d.SalespersonID, &d.Description, &d.Amount, &d.DueDate, &status,
		&d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, err
	}
	d.Status = entity.DocumentStatus(status)
	return &d, nil
}

// GetByNumber boleto por número; nil, nil si no existe.
func (r *BillingDocumentRepo) GetByNumber(ctx context.Context, number string) (*entity.BillingDocument, error) {
	d, err := scanDocument(r.q.QueryRow(ctx, `SELECT `+documentColumns+` FROM billing_documents d WHERE d.number = $1`, number))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get document: %w", err)
	}
	return d, nil
}

// Create inserta el boleto; ErrDuplicate si el número ya existe.
func (r *BillingDocumentRepo) Create(ctx context.Context, d *entity.BillingDocument) error {
	err := r.q.QueryRow(ctx, `
		INSERT INTO billing_documents (number, customer_id, salesperson_id, description, amount, due_date, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`,
		d.Number, d.CustomerID, d.SalespersonID, d.Description, d.Amount, d.DueDate, string(d.Status), d.CreatedAt, d.UpdatedAt,
	).Scan(&d.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("boleto %s: %w", d.Number, domain.ErrDuplicate)
		}
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

// UpdateStatus cambia el estado del boleto.
func (r *BillingDocumentRepo) UpdateStatus(ctx context.Context, id int64, status entity.DocumentStatus) error {
	tag, err := r.q.Exec(ctx, `UPDATE billing_documents SET status = $2, updated_at = now() WHERE id = $1`, id, string(status))
	if err != nil {
		return fmt.Errorf("update document: %w", err)
	}
	return expectOne(tag, domain.ErrNotFound)
}

// ListByOrderForUpdate boletos del pedido en orden de cuota, bloqueados.
func (r *BillingDocumentRepo) ListByOrderForUpdate(ctx context.Context, orderID int64) ([]*entity.BillingDocument, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+documentColumns+`
		FROM billing_documents d
		JOIN order_documents od ON od.document_id = d.id
		WHERE od.order_id = $1
		ORDER BY od.number
		FOR UPDATE OF d`, orderID)
	if err != nil {
		return nil, fmt.Errorf("list documents for update: %w", err)
	}
	return collect(rows, scanDocument)
}

// GetLink vínculo de la cuota n; nil, nil si no existe.
func (r *BillingDocumentRepo) GetLink(ctx context.Context, orderID int64, number int) (*entity.OrderDocument, error) {
	var l entity.OrderDocument
	err := r.q.QueryRow(ctx, `
		SELECT order_id, number, document_id FROM order_documents
		WHERE order_id = $1 AND number = $2`, orderID, number,
	).Scan(&l.OrderID, &l.Number, &l.DocumentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get document link: %w", err)
	}
	return &l, nil
}

// Link liga la cuota con su boleto; ErrDuplicate si ya existía.
func (r *BillingDocumentRepo) Link(ctx context.Context, l *entity.OrderDocument) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO order_documents (order_id, number, document_id) VALUES ($1, $2, $3)`,
		l.OrderID, l.Number, l.DocumentID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("boleto de cuota %d del pedido %d: %w", l.Number, l.OrderID, domain.ErrDuplicate)
		}
		return fmt.Errorf("insert document link: %w", err)
	}
	return nil
}
