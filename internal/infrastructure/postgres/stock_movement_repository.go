package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/fulfillment-ledger/internal/domain"
	"github.com/jhoicas/fulfillment-ledger/internal/domain/entity"
	"github.com/jhoicas/fulfillment-ledger/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

// StockMovementRepo ledger append-only sobre PostgreSQL (usable con pool o tx).
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

const movementColumns = `id, product_id, kind, direction, quantity, movement_date, origin_type, origin_id,
	origin_line_id, lot_id, location, note, created_by, created_at`

func scanMovement(row rowScanner) (*entity.StockMovement, error) {
	var m entity.StockMovement
	var kind string
	var direction int16
	err := row.Scan(&m.ID, &m.ProductID, &kind, &direction, &m.Quantity, &m.Date, &m.OriginType, &m.OriginID,
		&m.OriginLineID, &m.LotID, &m.Location, &m.Note, &m.CreatedBy, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	m.Kind = entity.MovementKind(kind)
	m.Direction = int(direction)
	return &m, nil
}

// Create inserta el movimiento y asigna ID.
func (r *StockMovementRepo) Create(ctx context.Context, m *entity.StockMovement) error {
	query := `
		INSERT INTO stock_movements (product_id, kind, direction, quantity, movement_date, origin_type, origin_id,
			origin_line_id, lot_id, location, note, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id`
	err := r.q.QueryRow(ctx, query,
		m.ProductID, string(m.Kind), int16(m.Direction), m.Quantity, m.Date, m.OriginType, m.OriginID,
		m.OriginLineID, m.LotID, m.Location, m.Note, m.CreatedBy, m.CreatedAt,
	).Scan(&m.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("insert movement: origen %s ya registrado: %w", m.OriginType, domain.ErrDuplicate)
		}
		if isForeignKeyViolation(err) {
			return fmt.Errorf("insert movement: %w", domain.ErrNotFound)
		}
		return fmt.Errorf("insert movement: %w", err)
	}
	return nil
}

// List movimientos del más reciente al más antiguo.
func (r *StockMovementRepo) List(ctx context.Context, f repository.MovementFilter) ([]*entity.StockMovement, error) {
	var (
		where []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if f.ProductID != 0 {
		add("product_id = $%d", f.ProductID)
	}
	if f.From != nil {
		add("movement_date >= $%d", *f.From)
	}
	if f.To != nil {
		add("movement_date <= $%d", *f.To)
	}

	query := `SELECT ` + movementColumns + ` FROM stock_movements`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY movement_date DESC, id DESC`
	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if f.Offset > 0 {
		args = append(args, f.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	return collect(rows, scanMovement)
}

// SumSigned entradas menos salidas del producto.
func (r *StockMovementRepo) SumSigned(ctx context.Context, productID int64) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := r.q.QueryRow(ctx, `
		SELECT COALESCE(SUM(quantity * direction), 0)
		FROM stock_movements WHERE product_id = $1`, productID).Scan(&sum)
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum movements: %w", err)
	}
	return sum, nil
}

// ExistsByOrigin originLineID 0 busca movimientos sin línea de origen.
func (r *StockMovementRepo) ExistsByOrigin(ctx context.Context, originType string, originID, originLineID int64, kind entity.MovementKind) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM stock_movements
			WHERE origin_type = $1 AND origin_id = $2 AND kind = $3
			  AND ((origin_line_id IS NULL AND $4::bigint = 0) OR origin_line_id = $4)
		)`
	var ok bool
	if err := r.q.QueryRow(ctx, query, originType, originID, string(kind), originLineID).Scan(&ok); err != nil {
		return false, fmt.Errorf("exists movement: %w", err)
	}
	return ok, nil
}

// SumQuantity cantidad total de movimientos kind con movement_date >= since.
func (r *StockMovementRepo) SumQuantity(ctx context.Context, productID int64, kind entity.MovementKind, since time.Time) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := r.q.QueryRow(ctx, `
		SELECT COALESCE(SUM(quantity), 0)
		FROM stock_movements
		WHERE product_id = $1 AND kind = $2 AND movement_date >= $3`, productID, string(kind), since).Scan(&sum)
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum movements by kind: %w", err)
	}
	return sum, nil
}
