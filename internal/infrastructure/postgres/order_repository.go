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

var (
	_ repository.OrderRepository              = (*OrderRepo)(nil)
	_ repository.OrderEventRepository         = (*OrderEventRepo)(nil)
	_ repository.OrderStockMovementRepository = (*OrderStockMovementRepo)(nil)
)

// OrderRepo pedidos y líneas sobre PostgreSQL (usable con pool o tx).
type OrderRepo struct {
	q Querier
}

// NewOrderRepository construye el adaptador. Pasar pool o tx (Querier).
func NewOrderRepository(q Querier) *OrderRepo {
	return &OrderRepo{q: q}
}

const orderColumns = `id, code, customer_id, salesperson_id, location, order_date, status, document_type, payment_method,
	installment_count, installment_interval_days, first_due_date, subtotal, discount, surcharge, total, notes,
	billed_at, billed_by, cancelled_at, cancelled_by, created_by, created_at, updated_at`

func scanOrder(row rowScanner) (*entity.Order, error) {
	var o entity.Order
	var status, docType, method string
	err := row.Scan(&o.ID, &o.Code, &o.CustomerID, &o.SalespersonID, &o.Location, &o.OrderDate, &status, &docType, &method,
		&o.InstallmentCount, &o.InstallmentIntervalDays, &o.FirstDueDate, &o.Subtotal, &o.Discount, &o.Surcharge, &o.Total, &o.Notes,
		&o.BilledAt, &o.BilledBy, &o.CancelledAt, &o.CancelledBy, &o.CreatedBy, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	o.Status = entity.OrderStatus(status)
	o.DocumentType = entity.DocumentType(docType)
	o.PaymentMethod = entity.PaymentMethod(method)
	return &o, nil
}

// Create inserta el pedido y asigna ID. El código se fija después con Update (depende del ID).
func (r *OrderRepo) Create(ctx context.Context, o *entity.Order) error {
	query := `
		INSERT INTO orders (code, customer_id, salesperson_id, location, order_date, status, document_type, payment_method,
			installment_count, installment_interval_days, first_due_date, subtotal, discount, surcharge, total, notes,
			created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
		RETURNING id`
	err := r.q.QueryRow(ctx, query,
		o.Code, o.CustomerID, o.SalespersonID, o.Location, o.OrderDate, string(o.Status), string(o.DocumentType),
		string(o.PaymentMethod), o.InstallmentCount, o.InstallmentIntervalDays, o.FirstDueDate,
		o.Subtotal, o.Discount, o.Surcharge, o.Total, o.Notes, o.CreatedBy, o.CreatedAt, o.UpdatedAt,
	).Scan(&o.ID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("cliente %d: %w", o.CustomerID, domain.ErrNotFound)
		}
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

// GetByID obtiene un pedido; nil, nil si no existe.
func (r *OrderRepo) GetByID(ctx context.Context, id int64) (*entity.Order, error) {
	return r.get(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
}

// GetForUpdate obtiene y bloquea el pedido.
func (r *OrderRepo) GetForUpdate(ctx context.Context, id int64) (*entity.Order, error) {
	return r.get(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1 FOR UPDATE`, id)
}

func (r *OrderRepo) get(ctx context.Context, query string, id int64) (*entity.Order, error) {
	o, err := scanOrder(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	return o, nil
}

// Update guarda cabecera, estado y totales.
func (r *OrderRepo) Update(ctx context.Context, o *entity.Order) error {
	query := `
		UPDATE orders SET code = $2, customer_id = $3, salesperson_id = $4, location = $5, order_date = $6, status = $7,
			document_type = $8, payment_method = $9, installment_count = $10, installment_interval_days = $11,
			first_due_date = $12, subtotal = $13, discount = $14, surcharge = $15, total = $16, notes = $17,
			billed_at = $18, billed_by = $19, cancelled_at = $20, cancelled_by = $21, updated_at = $22
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		o.ID, o.Code, o.CustomerID, o.SalespersonID, o.Location, o.OrderDate, string(o.Status),
		string(o.DocumentType), string(o.PaymentMethod), o.InstallmentCount, o.InstallmentIntervalDays,
		o.FirstDueDate, o.Subtotal, o.Discount, o.Surcharge, o.Total, o.Notes,
		o.BilledAt, o.BilledBy, o.CancelledAt, o.CancelledBy, o.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update order: %w", err)
	}
	return expectOne(tag, domain.ErrNotFound)
}

const lineColumns = `id, order_id, product_id, quantity, unit_price, discount, subtotal`

func scanLine(row rowScanner) (*entity.OrderLine, error) {
	var l entity.OrderLine
	if err := row.Scan(&l.ID, &l.OrderID, &l.ProductID, &l.Quantity, &l.UnitPrice, &l.Discount, &l.Subtotal); err != nil {
		return nil, err
	}
	return &l, nil
}

// CreateLine inserta una línea y asigna ID.
func (r *OrderRepo) CreateLine(ctx context.Context, l *entity.OrderLine) error {
	err := r.q.QueryRow(ctx, `
		INSERT INTO order_lines (order_id, product_id, quantity, unit_price, discount, subtotal)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		l.OrderID, l.ProductID, l.Quantity, l.UnitPrice, l.Discount, l.Subtotal,
	).Scan(&l.ID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("producto %d: %w", l.ProductID, domain.ErrNotFound)
		}
		return fmt.Errorf("insert order line: %w", err)
	}
	return nil
}

// DeleteLines elimina todas las líneas del pedido.
func (r *OrderRepo) DeleteLines(ctx context.Context, orderID int64) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM order_lines WHERE order_id = $1`, orderID); err != nil {
		return fmt.Errorf("delete order lines: %w", err)
	}
	return nil
}

// ListLines líneas del pedido por ID.
func (r *OrderRepo) ListLines(ctx context.Context, orderID int64) ([]*entity.OrderLine, error) {
	rows, err := r.q.Query(ctx, `SELECT `+lineColumns+` FROM order_lines WHERE order_id = $1 ORDER BY id`, orderID)
	if err != nil {
		return nil, fmt.Errorf("list order lines: %w", err)
	}
	return collect(rows, scanLine)
}

// ListLinesForUpdate líneas del pedido bloqueadas.
func (r *OrderRepo) ListLinesForUpdate(ctx context.Context, orderID int64) ([]*entity.OrderLine, error) {
	rows, err := r.q.Query(ctx, `SELECT `+lineColumns+` FROM order_lines WHERE order_id = $1 ORDER BY id FOR UPDATE`, orderID)
	if err != nil {
		return nil, fmt.Errorf("list order lines for update: %w", err)
	}
	return collect(rows, scanLine)
}

// OrderEventRepo historial del pedido (usable con pool o tx).
type OrderEventRepo struct {
	q Querier
}

// NewOrderEventRepository construye el adaptador. Pasar pool o tx (Querier).
func NewOrderEventRepository(q Querier) *OrderEventRepo {
	return &OrderEventRepo{q: q}
}

// Append agrega un evento al historial.
func (r *OrderEventRepo) Append(ctx context.Context, e *entity.OrderEvent) error {
	err := r.q.QueryRow(ctx, `
		INSERT INTO order_events (order_id, event_type, actor, detail, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		e.OrderID, string(e.Type), e.Actor, e.Detail, e.CreatedAt,
	).Scan(&e.ID)
	if err != nil {
		return fmt.Errorf("insert order event: %w", err)
	}
	return nil
}

// ListByOrder eventos en orden de inserción.
func (r *OrderEventRepo) ListByOrder(ctx context.Context, orderID int64) ([]*entity.OrderEvent, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, order_id, event_type, actor, detail, created_at
		FROM order_events WHERE order_id = $1 ORDER BY id`, orderID)
	if err != nil {
		return nil, fmt.Errorf("list order events: %w", err)
	}
	return collect(rows, func(row rowScanner) (*entity.OrderEvent, error) {
		var e entity.OrderEvent
		var t string
		if err := row.Scan(&e.ID, &e.OrderID, &t, &e.Actor, &e.Detail, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.Type = entity.EventType(t)
		return &e, nil
	})
}

// OrderStockMovementRepo vínculos pedido-línea-movimiento (usable con pool o tx).
type OrderStockMovementRepo struct {
	q Querier
}

// NewOrderStockMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewOrderStockMovementRepository(q Querier) *OrderStockMovementRepo {
	return &OrderStockMovementRepo{q: q}
}

// Exists indica si la línea ya tiene vínculo del tipo dado.
func (r *OrderStockMovementRepo) Exists(ctx context.Context, orderID, lineID int64, kind entity.LinkKind) (bool, error) {
	var ok bool
	err := r.q.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM order_stock_movements WHERE order_id = $1 AND order_line_id = $2 AND kind = $3)`,
		orderID, lineID, string(kind)).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("exists order movement: %w", err)
	}
	return ok, nil
}

// Create registra el vínculo; ErrDuplicate si (pedido, línea, tipo) ya existe.
func (r *OrderStockMovementRepo) Create(ctx context.Context, l *entity.OrderStockMovement) error {
	err := r.q.QueryRow(ctx, `
		INSERT INTO order_stock_movements (order_id, order_line_id, product_id, movement_id, kind, quantity, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`,
		l.OrderID, l.OrderLineID, l.ProductID, l.MovementID, string(l.Kind), l.Quantity, l.CreatedAt,
	).Scan(&l.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("vínculo %s línea %d: %w", l.Kind, l.OrderLineID, domain.ErrDuplicate)
		}
		return fmt.Errorf("insert order movement: %w", err)
	}
	return nil
}

// ListByOrder vínculos del tipo dado ordenados por línea.
func (r *OrderStockMovementRepo) ListByOrder(ctx context.Context, orderID int64, kind entity.LinkKind) ([]*entity.OrderStockMovement, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, order_id, order_line_id, product_id, movement_id, kind, quantity, created_at
		FROM order_stock_movements WHERE order_id = $1 AND kind = $2
		ORDER BY order_line_id`, orderID, string(kind))
	if err != nil {
		return nil, fmt.Errorf("list order movements: %w", err)
	}
	return collect(rows, func(row rowScanner) (*entity.OrderStockMovement, error) {
		var l entity.OrderStockMovement
		var k string
		if err := row.Scan(&l.ID, &l.OrderID, &l.OrderLineID, &l.ProductID, &l.MovementID, &k, &l.Quantity, &l.CreatedAt); err != nil {
			return nil, err
		}
		l.Kind = entity.LinkKind(k)
		return &l, nil
	})
}
