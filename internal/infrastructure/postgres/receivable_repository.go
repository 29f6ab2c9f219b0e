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

var _ repository.ReceivableRepository = (*ReceivableRepo)(nil)

// ReceivableRepo cuentas por cobrar y cuotas de pedido (usable con pool o tx).
type ReceivableRepo struct {
	q Querier
}

// NewReceivableRepository construye el adaptador. Pasar pool o tx (Querier).
func NewReceivableRepository(q Querier) *ReceivableRepo {
	return &ReceivableRepo{q: q}
}

const receivableColumns = `r.id, r.reference, r.description, r.customer_id, r.due_date, r.amount, r.status,
	r.origin_type, r.origin_id, r.created_at, r.updated_at`

func scanReceivable(row rowScanner) (*entity.Receivable, error) {
	var rec entity.Receivable
	var status string
	err := row.Scan(&rec.ID, &rec.Reference, &rec.Description, &rec.CustomerID, &rec.DueDate, &rec.Amount, &status,
		&rec.OriginType, &rec.OriginID, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return nil, err
	}
	rec.Status = entity.ReceivableStatus(status)
	return &rec, nil
}

// GetByReference cuenta por referencia única; nil, nil si no existe.
func (r *ReceivableRepo) GetByReference(ctx context.Context, reference string) (*entity.Receivable, error) {
	rec, err := scanReceivable(r.q.QueryRow(ctx, `SELECT `+receivableColumns+` FROM receivables r WHERE r.reference = $1`, reference))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get receivable: %w", err)
	}
	return rec, nil
}

// Create inserta la cuenta; ErrDuplicate si la referencia ya existe.
func (r *ReceivableRepo) Create(ctx context.Context, rec *entity.Receivable) error {
	err := r.q.QueryRow(ctx, `
		INSERT INTO receivables (reference, description, customer_id, due_date, amount, status, origin_type, origin_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`,
		rec.Reference, rec.Description, rec.CustomerID, rec.DueDate, rec.Amount, string(rec.Status),
		rec.OriginType, rec.OriginID, rec.CreatedAt, rec.UpdatedAt,
	).Scan(&rec.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("cuenta %s: %w", rec.Reference, domain.ErrDuplicate)
		}
		return fmt.Errorf("insert receivable: %w", err)
	}
	return nil
}

// UpdateStatus cambia el estado de la cuenta.
func (r *ReceivableRepo) UpdateStatus(ctx context.Context, id int64, status entity.ReceivableStatus) error {
	tag, err := r.q.Exec(ctx, `UPDATE receivables SET status = $2, updated_at = now() WHERE id = $1`, id, string(status))
	if err != nil {
		return fmt.Errorf("update receivable: %w", err)
	}
	return expectOne(tag, domain.ErrNotFound)
}

// ListByOrderForUpdate cuentas de las cuotas del pedido, en orden de cuota, bloqueadas.
func (r *ReceivableRepo) ListByOrderForUpdate(ctx context.Context, orderID int64) ([]*entity.Receivable, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+receivableColumns+`
		FROM receivables r
		JOIN order_installments i ON i.receivable_id = r.id
		WHERE i.order_id = $1
		ORDER BY i.number
		FOR UPDATE OF r`, orderID)
	if err != nil {
		return nil, fmt.Errorf("list receivables for update: %w", err)
	}
	return collect(rows, scanReceivable)
}

// GetInstallment cuota n del pedido; nil, nil si no existe.
func (r *ReceivableRepo) GetInstallment(ctx context.Context, orderID int64, number int) (*entity.OrderInstallment, error) {
	var inst entity.OrderInstallment
	err := r.q.QueryRow(ctx, `
		SELECT order_id, number, receivable_id, amount, due_date
		FROM order_installments WHERE order_id = $1 AND number = $2`, orderID, number,
	).Scan(&inst.OrderID, &inst.Number, &inst.ReceivableID, &inst.Amount, &inst.DueDate)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get installment: %w", err)
	}
	return &inst, nil
}

// LinkInstallment liga la cuota con su cuenta; ErrDuplicate si la cuota o la cuenta ya están ligadas.
func (r *ReceivableRepo) LinkInstallment(ctx context.Context, inst *entity.OrderInstallment) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO order_installments (order_id, number, receivable_id, amount, due_date)
		VALUES ($1, $2, $3, $4, $5)`,
		inst.OrderID, inst.Number, inst.ReceivableID, inst.Amount, inst.DueDate)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("cuota %d del pedido %d: %w", inst.Number, inst.OrderID, domain.ErrDuplicate)
		}
		return fmt.Errorf("insert installment: %w", err)
	}
	return nil
}
