package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus estado del ciclo de vida de un pedido.
type OrderStatus string

const (
	OrderDraft     OrderStatus = "DRAFT"
	OrderConfirmed OrderStatus = "CONFIRMED"
	OrderBilled    OrderStatus = "BILLED"
	OrderCompleted OrderStatus = "COMPLETED"
	OrderCancelled OrderStatus = "CANCELLED"
)

// DocumentType diferencia pedido firme de cotización.
type DocumentType string

const (
	DocumentOrder DocumentType = "ORDER"
	DocumentQuote DocumentType = "QUOTE"
)

// PaymentMethod forma de pago del pedido.
type PaymentMethod string

const (
	PaymentPix             PaymentMethod = "PIX"
	PaymentCreditCard      PaymentMethod = "CREDIT_CARD"
	PaymentDebitCard       PaymentMethod = "DEBIT_CARD"
	PaymentCash            PaymentMethod = "CASH"
	PaymentStoreCredit     PaymentMethod = "STORE_CREDIT"
	PaymentInstallmentSlip PaymentMethod = "INSTALLMENT_SLIP"
)

// IsValid indica si la forma de pago es conocida.
func (p PaymentMethod) IsValid() bool {
	switch p {
	case PaymentPix, PaymentCreditCard, PaymentDebitCard, PaymentCash, PaymentStoreCredit, PaymentInstallmentSlip:
		return true
	}
	return false
}

// Deferred pago a plazo: genera cuentas por cobrar.
func (p PaymentMethod) Deferred() bool {
	return p == PaymentStoreCredit || p == PaymentInstallmentSlip
}

// RequiresDocument además de la cuenta por cobrar se emite un boleto por cuota.
func (p PaymentMethod) RequiresDocument() bool {
	return p == PaymentInstallmentSlip
}

// Order pedido o cotización. Los totales se derivan de las líneas.
type Order struct {
	ID                      int64
	Code                    string
	CustomerID              int64
	SalespersonID           string
	Location                string
	OrderDate               time.Time
	Status                  OrderStatus
	DocumentType            DocumentType
	PaymentMethod           PaymentMethod
	InstallmentCount        int
	InstallmentIntervalDays int
	FirstDueDate            *time.Time
	Subtotal                decimal.Decimal
	Discount                decimal.Decimal
	Surcharge               decimal.Decimal
	Total                   decimal.Decimal
	Notes                   string
	BilledAt                *time.Time
	BilledBy                string
	CancelledAt             *time.Time
	CancelledBy             string
	CreatedBy               string
	CreatedAt               time.Time
	UpdatedAt               time.Time
}

// RequiresInstallments el cobro se agenda en cuotas.
func (o *Order) RequiresInstallments() bool {
	return o.PaymentMethod.Deferred() || o.InstallmentCount > 1
}

// OrderLine línea de pedido. Subtotal = max(0, Quantity*UnitPrice - Discount).
type OrderLine struct {
	ID        int64
	OrderID   int64
	ProductID int64
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
	Discount  decimal.Decimal
	Subtotal  decimal.Decimal
}

// EventType tipo de evento de historial del pedido.
type EventType string

const (
	EventCreated   EventType = "CREATED"
	EventConfirmed EventType = "CONFIRMED"
	EventBilled    EventType = "BILLED"
	EventCompleted EventType = "COMPLETED"
	EventCancelled EventType = "CANCELLED"
	EventNote      EventType = "NOTE"
)

// OrderEvent entrada append-only del historial.
type OrderEvent struct {
	ID        int64
	OrderID   int64
	Type      EventType
	Actor     string
	Detail    string
	CreatedAt time.Time
}

// LinkKind etiqueta del vínculo pedido-movimiento.
type LinkKind string

const (
	LinkExit     LinkKind = "SAIDA"
	LinkReversal LinkKind = "REVERSAO"
)

// OrderStockMovement vincula una línea con el movimiento que generó. Único por (pedido, línea, tipo).
type OrderStockMovement struct {
	ID          int64
	OrderID     int64
	OrderLineID int64
	ProductID   int64
	MovementID  int64
	Kind        LinkKind
	Quantity    decimal.Decimal
	CreatedAt   time.Time
}
