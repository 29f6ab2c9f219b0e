package sales

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/fulfillment-ledger/internal/application/inventory"
	"github.com/jhoicas/fulfillment-ledger/internal/domain"
	"github.com/jhoicas/fulfillment-ledger/internal/domain/entity"
	"github.com/jhoicas/fulfillment-ledger/internal/domain/repository"
	"github.com/jhoicas/fulfillment-ledger/internal/domain/sales"
)

// OrderLifecycle orquesta confirmación, facturación, finalización y cancelación de pedidos.
// Cada operación es una transacción que bloquea primero el pedido, luego sus líneas y
// luego los productos en orden ascendente.
type OrderLifecycle struct {
	tx          TxRunner
	stock       StockRecorder
	receivables *ReceivableGenerator
	documents   *DocumentGenerator
	log         zerolog.Logger
	Now         func() time.Time

	// DefaultLocation ubicación de los pedidos creados sin una (INVENTORY_DEFAULT_LOCATION).
	DefaultLocation string
}

// NewOrderLifecycle construye el servicio.
func NewOrderLifecycle(tx TxRunner, stock StockRecorder, receivables *ReceivableGenerator, documents *DocumentGenerator, log zerolog.Logger) *OrderLifecycle {
	return &OrderLifecycle{
		tx:          tx,
		stock:       stock,
		receivables: receivables,
		documents:   documents,
		log:         log,
		Now:         time.Now,
	}
}

// LineInput línea de pedido a crear.
type LineInput struct {
	ProductID int64
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
	Discount  decimal.Decimal
}

// CreateOrderInput datos de un pedido o cotización nuevo.
type CreateOrderInput struct {
	CustomerID              int64
	SalespersonID           string
	Location                string
	OrderDate               time.Time
	DocumentType            entity.DocumentType
	PaymentMethod           entity.PaymentMethod
	InstallmentCount        int
	InstallmentIntervalDays int
	FirstDueDate            *time.Time
	Surcharge               decimal.Decimal
	Notes                   string
	Lines                   []LineInput
	Actor                   string
}

// OrderDetail pedido con líneas e historial.
type OrderDetail struct {
	Order  *entity.Order
	Lines  []*entity.OrderLine
	Events []*entity.OrderEvent
}

// BillingResult resultado de Bill. AlreadyProcessed indica que el pedido ya estaba facturado.
type BillingResult struct {
	Order              *entity.Order
	MovementsCreated   int
	ReceivablesCreated int
	DocumentsCreated   int
	AlreadyProcessed   bool
}

// CancellationResult resultado de Cancel. AlreadyCancelled indica que no hubo cambios.
type CancellationResult struct {
	Order                *entity.Order
	Reversals            int
	ReceivablesCancelled int
	DocumentsCancelled   int
	AlreadyCancelled     bool
}

// Create registra un pedido (o cotización) en DRAFT con sus líneas y totales derivados.
func (s *OrderLifecycle) Create(ctx context.Context, in CreateOrderInput) (*OrderDetail, error) {
	if len(in.Lines) == 0 {
		return nil, fmt.Errorf("%w: el pedido no tiene líneas", domain.ErrInvalidInput)
	}
	if in.Surcharge.IsNegative() {
		return nil, fmt.Errorf("%w: recargo negativo", domain.ErrInvalidInput)
	}
	docType := in.DocumentType
	if docType == "" {
		docType = entity.DocumentOrder
	}
	if docType != entity.DocumentOrder && docType != entity.DocumentQuote {
		return nil, fmt.Errorf("%w: tipo de documento %q", domain.ErrInvalidInput, docType)
	}
	now := s.Now()
	orderDate := in.OrderDate
	if orderDate.IsZero() {
		orderDate = now
	}
	location := in.Location
	if location == "" {
		location = s.DefaultLocation
	}
	o := &entity.Order{
		CustomerID:              in.CustomerID,
		SalespersonID:           in.SalespersonID,
		Location:                location,
		OrderDate:               orderDate,
		Status:                  entity.OrderDraft,
		DocumentType:            docType,
		PaymentMethod:           in.PaymentMethod,
		InstallmentCount:        in.InstallmentCount,
		InstallmentIntervalDays: in.InstallmentIntervalDays,
		FirstDueDate:            in.FirstDueDate,
		Surcharge:               in.Surcharge,
		Notes:                   in.Notes,
		CreatedBy:               in.Actor,
		CreatedAt:               now,
		UpdatedAt:               now,
	}
	if o.PaymentMethod == "" {
		o.PaymentMethod = entity.PaymentCash
	}
	if err := sales.NormalizePaymentTerms(o); err != nil {
		return nil, err
	}
	lines, err := buildLines(in.Lines)
	if err != nil {
		return nil, err
	}
	sales.ApplyTotals(o, lines)

	detail := &OrderDetail{Order: o, Lines: lines}
	err = s.tx.Run(ctx, func(repos repository.Repositories) error {
		c, err := repos.Customers().GetByID(ctx, in.CustomerID)
		if err != nil {
			return err
		}
		if c == nil {
			return fmt.Errorf("%w: cliente %d", domain.ErrNotFound, in.CustomerID)
		}
		if err := requireProducts(ctx, repos, lines); err != nil {
			return err
		}
		if err := repos.Orders().Create(ctx, o); err != nil {
			return err
		}
		o.Code = sales.OrderCode(o.DocumentType, o.ID)
		if err := repos.Orders().Update(ctx, o); err != nil {
			return err
		}
		for _, l := range lines {
			l.OrderID = o.ID
			if err := repos.Orders().CreateLine(ctx, l); err != nil {
				return err
			}
		}
		ev, err := s.appendEvent(ctx, repos, o.ID, entity.EventCreated, in.Actor, "Pedido creado")
		if err != nil {
			return err
		}
		detail.Events = []*entity.OrderEvent{ev}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().Int64("order_id", o.ID).Str("code", o.Code).Stringer("total", o.Total).Msg("pedido creado")
	return detail, nil
}

// ReplaceLines reemplaza las líneas de un pedido aún no facturado y recalcula totales.
func (s *OrderLifecycle) ReplaceLines(ctx context.Context, orderID int64, in []LineInput, actor string) (*OrderDetail, error) {
	if len(in) == 0 {
		return nil, fmt.Errorf("%w: el pedido no tiene líneas", domain.ErrInvalidInput)
	}
	lines, err := buildLines(in)
	if err != nil {
		return nil, err
	}
	var o *entity.Order
	err = s.tx.Run(ctx, func(repos repository.Repositories) error {
		var err error
		if o, err = lockOrder(ctx, repos, orderID); err != nil {
			return err
		}
		if !sales.Editable(o.Status) {
			return fmt.Errorf("%w: el pedido %s está %s", domain.ErrInvalidState, o.Code, o.Status)
		}
		if err := requireProducts(ctx, repos, lines); err != nil {
			return err
		}
		if err := repos.Orders().DeleteLines(ctx, o.ID); err != nil {
			return err
		}
		for _, l := range lines {
			l.OrderID = o.ID
			if err := repos.Orders().CreateLine(ctx, l); err != nil {
				return err
			}
		}
		sales.ApplyTotals(o, lines)
		o.UpdatedAt = s.Now()
		if err := repos.Orders().Update(ctx, o); err != nil {
			return err
		}
		_, err = s.appendEvent(ctx, repos, o.ID, entity.EventNote, actor, "Líneas actualizadas")
		return err
	})
	if err != nil {
		return nil, err
	}
	return &OrderDetail{Order: o, Lines: lines}, nil
}

// Get pedido con líneas e historial.
func (s *OrderLifecycle) Get(ctx context.Context, orderID int64) (*OrderDetail, error) {
	detail := &OrderDetail{}
	err := s.tx.Run(ctx, func(repos repository.Repositories) error {
		o, err := repos.Orders().GetByID(ctx, orderID)
		if err != nil {
			return err
		}
		if o == nil {
			return fmt.Errorf("%w: pedido %d", domain.ErrNotFound, orderID)
		}
		detail.Order = o
		if detail.Lines, err = repos.Orders().ListLines(ctx, orderID); err != nil {
			return err
		}
		detail.Events, err = repos.OrderEvents().ListByOrder(ctx, orderID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return detail, nil
}

// AddNote agrega una nota al historial del pedido.
func (s *OrderLifecycle) AddNote(ctx context.Context, orderID int64, actor, note string) (*entity.OrderEvent, error) {
	note = strings.TrimSpace(note)
	if note == "" {
		return nil, fmt.Errorf("%w: nota vacía", domain.ErrInvalidInput)
	}
	var ev *entity.OrderEvent
	err := s.tx.Run(ctx, func(repos repository.Repositories) error {
		o, err := repos.Orders().GetByID(ctx, orderID)
		if err != nil {
			return err
		}
		if o == nil {
			return fmt.Errorf("%w: pedido %d", domain.ErrNotFound, orderID)
		}
		ev, err = s.appendEvent(ctx, repos, orderID, entity.EventNote, actor, note)
		return err
	})
	return ev, err
}

// Confirm DRAFT -> CONFIRMED. En cualquier otro estado no hace nada.
func (s *OrderLifecycle) Confirm(ctx context.Context, orderID int64, actor string) (*entity.Order, error) {
	var o *entity.Order
	err := s.tx.Run(ctx, func(repos repository.Repositories) error {
		var err error
		if o, err = lockOrder(ctx, repos, orderID); err != nil {
			return err
		}
		if o.Status != entity.OrderDraft {
			return nil
		}
		o.Status = entity.OrderConfirmed
		o.UpdatedAt = s.Now()
		if err := repos.Orders().Update(ctx, o); err != nil {
			return err
		}
		_, err = s.appendEvent(ctx, repos, o.ID, entity.EventConfirmed, actor, "Pedido confirmado")
		return err
	})
	if err != nil {
		return nil, err
	}
	return o, nil
}

// ConvertToOrder convierte una cotización en pedido; si estaba en DRAFT queda CONFIRMED.
// Sobre un pedido ya firme no hace nada.
func (s *OrderLifecycle) ConvertToOrder(ctx context.Context, orderID int64, actor string) (*entity.Order, error) {
	var o *entity.Order
	err := s.tx.Run(ctx, func(repos repository.Repositories) error {
		var err error
		if o, err = lockOrder(ctx, repos, orderID); err != nil {
			return err
		}
		if o.Status == entity.OrderCancelled {
			return fmt.Errorf("%w: la cotización %s está cancelada", domain.ErrInvalidState, o.Code)
		}
		if o.DocumentType == entity.DocumentOrder {
			return nil
		}
		o.DocumentType = entity.DocumentOrder
		o.Code = sales.OrderCode(o.DocumentType, o.ID)
		if o.Status == entity.OrderDraft {
			o.Status = entity.OrderConfirmed
		}
		o.UpdatedAt = s.Now()
		if err := repos.Orders().Update(ctx, o); err != nil {
			return err
		}
		_, err = s.appendEvent(ctx, repos, o.ID, entity.EventConfirmed, actor, "Cotización convertida en pedido")
		return err
	})
	if err != nil {
		return nil, err
	}
	return o, nil
}

// Bill factura el pedido: una salida de stock por línea, cuentas por cobrar por cuota y
// boletos si la forma de pago los requiere. Cada paso se salta si ya estaba hecho, así que
// reintentar es seguro. Un pedido ya facturado devuelve AlreadyProcessed.
func (s *OrderLifecycle) Bill(ctx context.Context, orderID int64, actor string) (*BillingResult, error) {
	res := &BillingResult{}
	err := s.tx.Run(ctx, func(repos repository.Repositories) error {
		*res = BillingResult{}
		o, err := lockOrder(ctx, repos, orderID)
		if err != nil {
			return err
		}
		res.Order = o
		switch {
		case o.Status == entity.OrderCancelled:
			return fmt.Errorf("%w: el pedido %s está cancelado", domain.ErrInvalidState, o.Code)
		case o.DocumentType == entity.DocumentQuote:
			return fmt.Errorf("%w: %s es una cotización, conviértala antes de facturar", domain.ErrInvalidState, o.Code)
		case o.Status == entity.OrderBilled || o.Status == entity.OrderCompleted:
			res.AlreadyProcessed = true
			return nil
		}

		lines, err := repos.Orders().ListLinesForUpdate(ctx, o.ID)
		if err != nil {
			return err
		}
		if len(lines) == 0 {
			return fmt.Errorf("%w: el pedido %s no tiene líneas", domain.ErrInvalidState, o.Code)
		}
		sortLines(lines)

		now := s.Now()
		for _, l := range lines {
			done, err := repos.OrderMovements().Exists(ctx, o.ID, l.ID, entity.LinkExit)
			if err != nil {
				return err
			}
			if done {
				continue
			}
			mr, err := s.stock.RecordExitInTx(ctx, repos, inventory.ExitInput{
				ProductID: l.ProductID,
				Quantity:  l.Quantity,
				Date:      o.OrderDate,
				Location:  o.Location,
				Origin:    &inventory.Origin{Type: entity.OriginOrder, ID: o.ID, LineID: l.ID},
				Note:      "Salida por facturación del pedido " + o.Code,
				UserID:    actor,
			})
			if err != nil {
				return err
			}
			err = repos.OrderMovements().Create(ctx, &entity.OrderStockMovement{
				OrderID:     o.ID,
				OrderLineID: l.ID,
				ProductID:   l.ProductID,
				MovementID:  mr.Movement.ID,
				Kind:        entity.LinkExit,
				Quantity:    mr.Movement.Quantity,
				CreatedAt:   now,
			})
			if err != nil {
				return err
			}
			res.MovementsCreated++
		}

		if o.RequiresInstallments() {
			schedule, err := s.receivables.Schedule(o)
			if err != nil {
				return err
			}
			for _, inst := range schedule {
				_, created, err := s.receivables.EnsureInTx(ctx, repos, o, inst)
				if err != nil {
					return err
				}
				if created {
					res.ReceivablesCreated++
				}
				if !o.PaymentMethod.RequiresDocument() {
					continue
				}
				_, created, err = s.documents.IssueInTx(ctx, repos, o, inst)
				if err != nil {
					return err
				}
				if created {
					res.DocumentsCreated++
				}
			}
		}

		o.Status = entity.OrderBilled
		o.BilledAt = &now
		o.BilledBy = actor
		o.UpdatedAt = now
		if err := repos.Orders().Update(ctx, o); err != nil {
			return err
		}
		_, err = s.appendEvent(ctx, repos, o.ID, entity.EventBilled, actor,
			fmt.Sprintf("Pedido facturado: %d salidas, %d cuotas", res.MovementsCreated, res.ReceivablesCreated))
		return err
	})
	if err != nil {
		return nil, err
	}
	if res.AlreadyProcessed {
		s.log.Debug().Int64("order_id", orderID).Msg("pedido ya facturado")
	} else {
		s.log.Info().Int64("order_id", orderID).Str("code", res.Order.Code).
			Int("salidas", res.MovementsCreated).Int("cuotas", res.ReceivablesCreated).
			Int("boletos", res.DocumentsCreated).Msg("pedido facturado")
	}
	return res, nil
}

// Complete BILLED -> COMPLETED. Sobre un pedido ya finalizado no hace nada.
func (s *OrderLifecycle) Complete(ctx context.Context, orderID int64, actor string) (*entity.Order, error) {
	var o *entity.Order
	err := s.tx.Run(ctx, func(repos repository.Repositories) error {
		var err error
		if o, err = lockOrder(ctx, repos, orderID); err != nil {
			return err
		}
		if o.Status == entity.OrderCompleted {
			return nil
		}
		if !sales.CanTransition(o.Status, entity.OrderCompleted) {
			return fmt.Errorf("%w: solo se finaliza un pedido facturado (%s está %s)", domain.ErrInvalidState, o.Code, o.Status)
		}
		o.Status = entity.OrderCompleted
		o.UpdatedAt = s.Now()
		if err := repos.Orders().Update(ctx, o); err != nil {
			return err
		}
		_, err = s.appendEvent(ctx, repos, o.ID, entity.EventCompleted, actor, "Pedido finalizado")
		return err
	})
	if err != nil {
		return nil, err
	}
	return o, nil
}

// Cancel anula el pedido: revierte cada salida sin reversión, cancela cuentas abiertas y
// boletos no pagados. Si hay algo ya cobrado o pagado devuelve ErrSettledConflict sin cambios.
func (s *OrderLifecycle) Cancel(ctx context.Context, orderID int64, actor, reason string) (*CancellationResult, error) {
	res := &CancellationResult{}
	err := s.tx.Run(ctx, func(repos repository.Repositories) error {
		*res = CancellationResult{}
		o, err := lockOrder(ctx, repos, orderID)
		if err != nil {
			return err
		}
		res.Order = o
		if o.Status == entity.OrderCancelled {
			res.AlreadyCancelled = true
			return nil
		}
		if !sales.CanTransition(o.Status, entity.OrderCancelled) {
			return fmt.Errorf("%w: el pedido %s está %s", domain.ErrInvalidState, o.Code, o.Status)
		}

		docs, err := repos.Documents().ListByOrderForUpdate(ctx, o.ID)
		if err != nil {
			return err
		}
		for _, d := range docs {
			if d.Settled() {
				return fmt.Errorf("%w: boleto %s pagado", domain.ErrSettledConflict, d.Number)
			}
		}
		recs, err := repos.Receivables().ListByOrderForUpdate(ctx, o.ID)
		if err != nil {
			return err
		}
		for _, r := range recs {
			if r.Settled() {
				return fmt.Errorf("%w: cuenta %s recibida", domain.ErrSettledConflict, r.Reference)
			}
		}

		now := s.Now()
		exits, err := repos.OrderMovements().ListByOrder(ctx, o.ID, entity.LinkExit)
		if err != nil {
			return err
		}
		sort.SliceStable(exits, func(i, j int) bool {
			if exits[i].ProductID != exits[j].ProductID {
				return exits[i].ProductID < exits[j].ProductID
			}
			return exits[i].OrderLineID < exits[j].OrderLineID
		})
		for _, x := range exits {
			reversed, err := repos.OrderMovements().Exists(ctx, o.ID, x.OrderLineID, entity.LinkReversal)
			if err != nil {
				return err
			}
			if reversed {
				continue
			}
			mr, err := s.stock.RecordEntryInTx(ctx, repos, inventory.EntryInput{
				ProductID: x.ProductID,
				Quantity:  x.Quantity,
				Date:      now,
				Location:  o.Location,
				Origin:    &inventory.Origin{Type: entity.OriginOrder, ID: o.ID, LineID: x.OrderLineID},
				Note:      "Reversión por cancelación del pedido " + o.Code,
				UserID:    actor,
			})
			if err != nil {
				return err
			}
			err = repos.OrderMovements().Create(ctx, &entity.OrderStockMovement{
				OrderID:     o.ID,
				OrderLineID: x.OrderLineID,
				ProductID:   x.ProductID,
				MovementID:  mr.Movement.ID,
				Kind:        entity.LinkReversal,
				Quantity:    x.Quantity,
				CreatedAt:   now,
			})
			if err != nil {
				return err
			}
			res.Reversals++
		}

		for _, r := range recs {
			if r.Status != entity.ReceivableOpen {
				continue
			}
			if err := repos.Receivables().UpdateStatus(ctx, r.ID, entity.ReceivableCancelled); err != nil {
				return err
			}
			res.ReceivablesCancelled++
		}
		for _, d := range docs {
			if d.Status == entity.DocumentCancelled {
				continue
			}
			if err := repos.Documents().UpdateStatus(ctx, d.ID, entity.DocumentCancelled); err != nil {
				return err
			}
			res.DocumentsCancelled++
		}

		o.Status = entity.OrderCancelled
		o.CancelledAt = &now
		o.CancelledBy = actor
		o.UpdatedAt = now
		if err := repos.Orders().Update(ctx, o); err != nil {
			return err
		}
		detail := strings.TrimSpace(reason)
		if detail == "" {
			detail = "Pedido cancelado"
		}
		_, err = s.appendEvent(ctx, repos, o.ID, entity.EventCancelled, actor, detail)
		return err
	})
	if err != nil {
		return nil, err
	}
	if !res.AlreadyCancelled {
		s.log.Info().Int64("order_id", orderID).Str("code", res.Order.Code).
			Int("reversiones", res.Reversals).Int("cuentas", res.ReceivablesCancelled).
			Int("boletos", res.DocumentsCancelled).Msg("pedido cancelado")
	}
	return res, nil
}

func (s *OrderLifecycle) appendEvent(ctx context.Context, repos repository.Repositories, orderID int64, t entity.EventType, actor, detail string) (*entity.OrderEvent, error) {
	ev := &entity.OrderEvent{OrderID: orderID, Type: t, Actor: actor, Detail: detail, CreatedAt: s.Now()}
	if err := repos.OrderEvents().Append(ctx, ev); err != nil {
		return nil, err
	}
	return ev, nil
}

func lockOrder(ctx context.Context, repos repository.Repositories, orderID int64) (*entity.Order, error) {
	o, err := repos.Orders().GetForUpdate(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, fmt.Errorf("%w: pedido %d", domain.ErrNotFound, orderID)
	}
	return o, nil
}

func buildLines(in []LineInput) ([]*entity.OrderLine, error) {
	lines := make([]*entity.OrderLine, 0, len(in))
	for i, li := range in {
		if li.ProductID <= 0 {
			return nil, fmt.Errorf("%w: línea %d sin producto", domain.ErrInvalidInput, i+1)
		}
		if !li.Quantity.IsPositive() || li.UnitPrice.IsNegative() || li.Discount.IsNegative() {
			return nil, fmt.Errorf("%w: línea %d con cantidad, precio o descuento inválido", domain.ErrInvalidInput, i+1)
		}
		l := &entity.OrderLine{ProductID: li.ProductID, Quantity: li.Quantity, UnitPrice: li.UnitPrice, Discount: li.Discount}
		sales.NormalizeLine(l)
		if !l.Quantity.IsPositive() {
			return nil, fmt.Errorf("%w: línea %d con cantidad menor a 0.001", domain.ErrInvalidInput, i+1)
		}
		lines = append(lines, l)
	}
	return lines, nil
}

func requireProducts(ctx context.Context, repos repository.Repositories, lines []*entity.OrderLine) error {
	for _, l := range lines {
		p, err := repos.Products().GetByID(ctx, l.ProductID)
		if err != nil {
			return err
		}
		if p == nil {
			return fmt.Errorf("%w: producto %d", domain.ErrNotFound, l.ProductID)
		}
	}
	return nil
}

// sortLines orden de bloqueo de productos: id de producto ascendente y luego id de línea.
func sortLines(lines []*entity.OrderLine) {
	sort.SliceStable(lines, func(i, j int) bool {
		if lines[i].ProductID != lines[j].ProductID {
			return lines[i].ProductID < lines[j].ProductID
		}
		return lines[i].ID < lines[j].ID
	})
}
