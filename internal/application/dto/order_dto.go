package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/fulfillment-ledger/internal/domain/entity"
)

// OrderLineRequest línea de pedido.
type OrderLineRequest struct {
	ProductID int64           `json:"product_id" validate:"required,gt=0"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Discount  decimal.Decimal `json:"discount"`
}

// CreateOrderRequest body para POST /api/orders.
type CreateOrderRequest struct {
	CustomerID              int64              `json:"customer_id" validate:"required,gt=0"`
	SalespersonID           string             `json:"salesperson_id,omitempty" validate:"max=64"`
	Location                string             `json:"location,omitempty" validate:"max=40"`
	OrderDate               *time.Time         `json:"order_date,omitempty"`
	DocumentType            string             `json:"document_type,omitempty" validate:"omitempty,oneof=ORDER QUOTE"`
	PaymentMethod           string             `json:"payment_method,omitempty" validate:"omitempty,oneof=PIX CREDIT_CARD DEBIT_CARD CASH STORE_CREDIT INSTALLMENT_SLIP"`
	InstallmentCount        int                `json:"installment_count,omitempty" validate:"min=0,max=36"`
	InstallmentIntervalDays int                `json:"installment_interval_days,omitempty" validate:"min=0,max=120"`
	FirstDueDate            *time.Time         `json:"first_due_date,omitempty"`
	Surcharge               decimal.Decimal    `json:"surcharge"`
	Notes                   string             `json:"notes,omitempty" validate:"max=1000"`
	Lines                   []OrderLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// ReplaceLinesRequest body para PUT /api/orders/:id/lines.
type ReplaceLinesRequest struct {
	Lines []OrderLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// CancelOrderRequest body opcional para POST /api/orders/:id/cancel.
type CancelOrderRequest struct {
	Reason string `json:"reason,omitempty" validate:"max=500"`
}

// NoteRequest body para POST /api/orders/:id/notes.
type NoteRequest struct {
	Note string `json:"note" validate:"required,max=1000"`
}

// OrderResponse cabecera del pedido.
type OrderResponse struct {
	ID                      int64           `json:"id"`
	Code                    string          `json:"code"`
	CustomerID              int64           `json:"customer_id"`
	SalespersonID           string          `json:"salesperson_id,omitempty"`
	Location                string          `json:"location,omitempty"`
	OrderDate               time.Time       `json:"order_date"`
	Status                  string          `json:"status"`
	DocumentType            string          `json:"document_type"`
	PaymentMethod           string          `json:"payment_method"`
	InstallmentCount        int             `json:"installment_count"`
	InstallmentIntervalDays int             `json:"installment_interval_days"`
	FirstDueDate            *time.Time      `json:"first_due_date,omitempty"`
	Subtotal                decimal.Decimal `json:"subtotal"`
	Discount                decimal.Decimal `json:"discount"`
	Surcharge               decimal.Decimal `json:"surcharge"`
	Total                   decimal.Decimal `json:"total"`
	Notes                   string          `json:"notes,omitempty"`
	BilledAt                *time.Time      `json:"billed_at,omitempty"`
	CancelledAt             *time.Time      `json:"cancelled_at,omitempty"`
}

// OrderLineResponse línea con subtotal derivado.
type OrderLineResponse struct {
	ID        int64           `json:"id"`
	ProductID int64           `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Discount  decimal.Decimal `json:"discount"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// OrderEventResponse entrada del historial.
type OrderEventResponse struct {
	Type      string    `json:"type"`
	Actor     string    `json:"actor,omitempty"`
	Detail    string    `json:"detail,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// OrderDetailResponse pedido con líneas e historial.
type OrderDetailResponse struct {
	Order  OrderResponse        `json:"order"`
	Lines  []OrderLineResponse  `json:"lines"`
	Events []OrderEventResponse `json:"events,omitempty"`
}

// BillingResponse resultado de facturar.
type BillingResponse struct {
	Order              OrderResponse `json:"order"`
	MovementsCreated   int           `json:"movements_created"`
	ReceivablesCreated int           `json:"receivables_created"`
	DocumentsCreated   int           `json:"documents_created"`
	AlreadyProcessed   bool          `json:"already_processed"`
}

// CancellationResponse resultado de cancelar.
type CancellationResponse struct {
	Order                OrderResponse `json:"order"`
	Reversals            int           `json:"reversals"`
	ReceivablesCancelled int           `json:"receivables_cancelled"`
	DocumentsCancelled   int           `json:"documents_cancelled"`
	AlreadyCancelled     bool          `json:"already_cancelled"`
}

// FromOrder mapea la cabecera del pedido.
func FromOrder(o *entity.Order) OrderResponse {
	return OrderResponse{
		ID:                      o.ID,
		Code:                    o.Code,
		CustomerID:              o.CustomerID,
		SalespersonID:           o.SalespersonID,
		Location:                o.Location,
		OrderDate:               o.OrderDate,
		Status:                  string(o.Status),
		DocumentType:            string(o.DocumentType),
		PaymentMethod:           string(o.PaymentMethod),
		InstallmentCount:        o.InstallmentCount,
		InstallmentIntervalDays: o.InstallmentIntervalDays,
		FirstDueDate:            o.FirstDueDate,
		Subtotal:                o.Subtotal,
		Discount:                o.Discount,
		Surcharge:               o.Surcharge,
		Total:                   o.Total,
		Notes:                   o.Notes,
		BilledAt:                o.BilledAt,
		CancelledAt:             o.CancelledAt,
	}
}

// FromOrderDetail mapea pedido, líneas e historial.
func FromOrderDetail(o *entity.Order, lines []*entity.OrderLine, events []*entity.OrderEvent) OrderDetailResponse {
	out := OrderDetailResponse{Order: FromOrder(o), Lines: make([]OrderLineResponse, 0, len(lines))}
	for _, l := range lines {
		out.Lines = append(out.Lines, OrderLineResponse{
			ID:        l.ID,
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			Discount:  l.Discount,
			Subtotal:  l.Subtotal,
		})
	}
	for _, e := range events {
		out.Events = append(out.Events, OrderEventResponse{
			Type:      string(e.Type),
			Actor:     e.Actor,
			Detail:    e.Detail,
			CreatedAt: e.CreatedAt,
		})
	}
	return out
}
