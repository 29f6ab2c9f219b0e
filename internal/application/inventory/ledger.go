package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/fulfillment-ledger/internal/domain"
	"github.com/jhoicas/fulfillment-ledger/internal/domain/entity"
	"github.com/jhoicas/fulfillment-ledger/internal/domain/inventory"
	"github.com/jhoicas/fulfillment-ledger/internal/domain/repository"
)

// StockLedger registra entradas, salidas y ajustes. Cada operación bloquea el saldo
// del producto (SELECT FOR UPDATE), actualiza lotes, ledger y saldo, y reevalúa alertas
// en la misma transacción.
type StockLedger struct {
	tx        TxRunner
	lots      *LotTracker
	alerts    *AlertEngine
	locations Locations
	log       zerolog.Logger
	Now       func() time.Time
}

// NewStockLedger construye el ledger.
func NewStockLedger(tx TxRunner, lots *LotTracker, alerts *AlertEngine, locations Locations, log zerolog.Logger) *StockLedger {
	return &StockLedger{tx: tx, lots: lots, alerts: alerts, locations: locations, log: log, Now: time.Now}
}

// Origin documento que originó el movimiento (pedido, compra, conteo).
type Origin struct {
	Type   string
	ID     int64
	LineID int64
}

// EntryInput entrada de mercadería. UnitCost nil no altera el costo promedio.
type EntryInput struct {
	ProductID int64
	Quantity  decimal.Decimal
	Date      time.Time
	UnitCost  *decimal.Decimal
	Location  string
	Origin    *Origin
	Note      string
	UserID    string
}

// ExitInput salida de mercadería.
type ExitInput struct {
	ProductID int64
	Quantity  decimal.Decimal
	Date      time.Time
	Location  string
	Origin    *Origin
	Note      string
	UserID    string
}

// AdjustInput ajuste con signo (Delta distinto de cero).
type AdjustInput struct {
	ProductID int64
	Delta     decimal.Decimal
	Date      time.Time
	Location  string
	Origin    *Origin
	Note      string
	UserID    string
}

// MovementResult movimiento creado, saldo resultante y lotes afectados.
type MovementResult struct {
	Movement *entity.StockMovement
	Balance  *entity.StockBalance
	Lot      *entity.Lot
	Consumed []inventory.LotAllocation
}

type movementSpec struct {
	kind      entity.MovementKind
	productID int64
	qty       decimal.Decimal
	date      time.Time
	unitCost  *decimal.Decimal
	location  string
	origin    *Origin
	note      string
	userID    string
}

// RecordEntry registra una entrada en su propia transacción.
func (l *StockLedger) RecordEntry(ctx context.Context, in EntryInput) (*MovementResult, error) {
	var res *MovementResult
	err := l.tx.Run(ctx, func(repos repository.Repositories) error {
		var err error
		res, err = l.RecordEntryInTx(ctx, repos, in)
		return err
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// RecordEntryInTx entrada dentro de la transacción del caller: crea lote, movimiento ENTRY,
// recalcula costo promedio (si hay costo unitario) y suma al saldo.
func (l *StockLedger) RecordEntryInTx(ctx context.Context, repos repository.Repositories, in EntryInput) (*MovementResult, error) {
	qty := inventory.RoundQty(in.Quantity)
	if !qty.IsPositive() {
		return nil, fmt.Errorf("%w: la cantidad de entrada debe ser positiva", domain.ErrInvalidInput)
	}
	if in.UnitCost != nil && in.UnitCost.IsNegative() {
		return nil, fmt.Errorf("%w: costo unitario negativo", domain.ErrInvalidInput)
	}
	return l.inbound(ctx, repos, movementSpec{
		kind: entity.MovementEntry, productID: in.ProductID, qty: qty, date: in.Date,
		unitCost: in.UnitCost, location: in.Location, origin: in.Origin, note: in.Note, userID: in.UserID,
	})
}

// RecordExit registra una salida en su propia transacción.
func (l *StockLedger) RecordExit(ctx context.Context, in ExitInput) (*MovementResult, error) {
	var res *MovementResult
	err := l.tx.Run(ctx, func(repos repository.Repositories) error {
		var err error
		res, err = l.RecordExitInTx(ctx, repos, in)
		return err
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// RecordExitInTx salida dentro de la transacción del caller: consume lotes FIFO,
// crea movimiento EXIT y resta del saldo. Todo o nada.
func (l *StockLedger) RecordExitInTx(ctx context.Context, repos repository.Repositories, in ExitInput) (*MovementResult, error) {
	qty := inventory.RoundQty(in.Quantity)
	if !qty.IsPositive() {
		return nil, fmt.Errorf("%w: la cantidad de salida debe ser positiva", domain.ErrInvalidInput)
	}
	return l.outbound(ctx, repos, movementSpec{
		kind: entity.MovementExit, productID: in.ProductID, qty: qty, date: in.Date,
		location: in.Location, origin: in.Origin, note: in.Note, userID: in.UserID,
	})
}

// RecordAdjust registra un ajuste en su propia transacción.
func (l *StockLedger) RecordAdjust(ctx context.Context, in AdjustInput) (*MovementResult, error) {
	var res *MovementResult
	err := l.tx.Run(ctx, func(repos repository.Repositories) error {
		var err error
		res, err = l.RecordAdjustInTx(ctx, repos, in)
		return err
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// RecordAdjustInTx ajuste positivo (lote nuevo, sin tocar costo) o negativo (consumo FIFO).
// Ambos quedan como un único movimiento ADJUST.
func (l *StockLedger) RecordAdjustInTx(ctx context.Context, repos repository.Repositories, in AdjustInput) (*MovementResult, error) {
	delta := inventory.RoundQty(in.Delta)
	if delta.IsZero() {
		return nil, fmt.Errorf("%w: el ajuste no puede ser cero", domain.ErrInvalidInput)
	}
	spec := movementSpec{
		kind: entity.MovementAdjust, productID: in.ProductID, qty: delta.Abs(), date: in.Date,
		location: in.Location, origin: in.Origin, note: in.Note, userID: in.UserID,
	}
	if delta.IsPositive() {
		return l.inbound(ctx, repos, spec)
	}
	return l.outbound(ctx, repos, spec)
}

func (l *StockLedger) inbound(ctx context.Context, repos repository.Repositories, s movementSpec) (*MovementResult, error) {
	if err := l.prepare(ctx, repos, &s); err != nil {
		return nil, err
	}
	bal, err := repos.Balances().GetForUpdate(ctx, s.productID)
	if err != nil {
		return nil, err
	}
	lot, err := l.lots.Open(ctx, repos, s.productID, s.qty, s.date, s.origin)
	if err != nil {
		return nil, err
	}
	mov := l.newMovement(s, entity.DirectionIn)
	mov.LotID = &lot.ID
	if err := repos.Movements().Create(ctx, mov); err != nil {
		return nil, err
	}

	if s.unitCost != nil {
		bal.AverageCost = inventory.WeightedAverageCost(bal.Quantity, bal.AverageCost, s.qty, *s.unitCost)
	}
	bal.Quantity = inventory.RoundQty(bal.Quantity.Add(s.qty))
	bal.UpdatedAt = mov.CreatedAt
	if err := repos.Balances().Upsert(ctx, bal); err != nil {
		return nil, err
	}
	if s.location != "" {
		if err := l.moveLocation(ctx, repos, s.productID, s.location, s.qty); err != nil {
			return nil, err
		}
	}
	if _, err := l.alerts.EvaluateInTx(ctx, repos, s.productID); err != nil {
		return nil, err
	}

	l.log.Debug().Int64("product_id", s.productID).Str("kind", string(s.kind)).
		Stringer("qty", s.qty).Stringer("saldo", bal.Quantity).Msg("movimiento de entrada registrado")
	return &MovementResult{Movement: mov, Balance: bal, Lot: lot}, nil
}

func (l *StockLedger) outbound(ctx context.Context, repos repository.Repositories, s movementSpec) (*MovementResult, error) {
	if err := l.prepare(ctx, repos, &s); err != nil {
		return nil, err
	}
	bal, err := repos.Balances().GetForUpdate(ctx, s.productID)
	if err != nil {
		return nil, err
	}
	if bal.Quantity.LessThan(s.qty) {
		return nil, fmt.Errorf("%w: producto %d saldo %s, solicitado %s", domain.ErrInsufficientStock,
			s.productID, bal.Quantity.StringFixed(inventory.QuantityPlaces), s.qty.StringFixed(inventory.QuantityPlaces))
	}
	consumed, err := l.lots.Consume(ctx, repos, s.productID, s.qty)
	if err != nil {
		return nil, err
	}
	mov := l.newMovement(s, entity.DirectionOut)
	if len(consumed) == 1 {
		lotID := consumed[0].LotID
		mov.LotID = &lotID
	}
	if err := repos.Movements().Create(ctx, mov); err != nil {
		return nil, err
	}

	bal.Quantity = inventory.RoundQty(bal.Quantity.Sub(s.qty))
	bal.UpdatedAt = mov.CreatedAt
	if err := repos.Balances().Upsert(ctx, bal); err != nil {
		return nil, err
	}
	if s.location != "" {
		if err := l.moveLocation(ctx, repos, s.productID, s.location, s.qty.Neg()); err != nil {
			return nil, err
		}
	}
	if _, err := l.alerts.EvaluateInTx(ctx, repos, s.productID); err != nil {
		return nil, err
	}

	l.log.Debug().Int64("product_id", s.productID).Str("kind", string(s.kind)).
		Stringer("qty", s.qty).Stringer("saldo", bal.Quantity).Msg("movimiento de salida registrado")
	return &MovementResult{Movement: mov, Balance: bal, Consumed: consumed}, nil
}

// prepare valida producto y ubicación y completa la fecha.
func (l *StockLedger) prepare(ctx context.Context, repos repository.Repositories, s *movementSpec) error {
	if s.location != "" && !l.locations.Contains(s.location) {
		return fmt.Errorf("%w: ubicación %q desconocida", domain.ErrInvalidInput, s.location)
	}
	p, err := repos.Products().GetByID(ctx, s.productID)
	if err != nil {
		return err
	}
	if p == nil {
		return fmt.Errorf("%w: producto %d", domain.ErrNotFound, s.productID)
	}
	if s.date.IsZero() {
		s.date = l.Now()
	}
	return nil
}

func (l *StockLedger) newMovement(s movementSpec, direction int) *entity.StockMovement {
	mov := &entity.StockMovement{
		ProductID: s.productID,
		Kind:      s.kind,
		Direction: direction,
		Quantity:  s.qty,
		Date:      s.date,
		Location:  s.location,
		Note:      s.note,
		CreatedBy: s.userID,
		CreatedAt: l.Now(),
	}
	if s.origin != nil {
		mov.OriginType = s.origin.Type
		id, line := s.origin.ID, s.origin.LineID
		if id != 0 {
			mov.OriginID = &id
		}
		if line != 0 {
			mov.OriginLineID = &line
		}
	}
	return mov
}

// moveLocation aplica delta al saldo de la ubicación; no puede quedar negativo.
func (l *StockLedger) moveLocation(ctx context.Context, repos repository.Repositories, productID int64, location string, delta decimal.Decimal) error {
	lb, err := repos.LocationBalances().GetForUpdate(ctx, productID, location)
	if err != nil {
		return err
	}
	next := inventory.RoundQty(lb.Quantity.Add(delta))
	if next.IsNegative() {
		return fmt.Errorf("%w: producto %d en %s saldo %s", domain.ErrInsufficientStock,
			productID, location, lb.Quantity.StringFixed(inventory.QuantityPlaces))
	}
	lb.Quantity = next
	lb.UpdatedAt = l.Now()
	return repos.LocationBalances().Upsert(ctx, lb)
}
