package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReceivableStatus estado de una cuenta por cobrar.
type ReceivableStatus string

const (
	ReceivableOpen      ReceivableStatus = "OPEN"
	ReceivableReceived  ReceivableStatus = "RECEIVED"
	ReceivableCancelled ReceivableStatus = "CANCELLED"
)

// Receivable cuenta por cobrar. Reference es única.
type Receivable struct {
	ID          int64
	Reference   string
	Description string
	CustomerID  int64
	DueDate     time.Time
	Amount      decimal.Decimal
	Status      ReceivableStatus
	OriginType  string
	OriginID    int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Settled la cuota ya fue cobrada.
func (r *Receivable) Settled() bool { return r.Status == ReceivableReceived }

// OrderInstallment cuota de un pedido, ligada 1:1 a su cuenta por cobrar.
type OrderInstallment struct {
	OrderID      int64
	Number       int
	ReceivableID int64
	Amount       decimal.Decimal
	DueDate      time.Time
}

// DocumentStatus estado de un boleto.
type DocumentStatus string

const (
	DocumentOpen      DocumentStatus = "OPEN"
	DocumentPending   DocumentStatus = "PENDING"
	DocumentOverdue   DocumentStatus = "OVERDUE"
	DocumentPaid      DocumentStatus = "PAID"
	DocumentCancelled DocumentStatus = "CANCELLED"
)

// BillingDocument boleto de cobro por cuota. Number es único.
type BillingDocument struct {
	ID            int64
	Number        string
	CustomerID    int64
	SalespersonID string
	Description   string
	Amount        decimal.Decimal
	DueDate       time.Time
	Status        DocumentStatus
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Settled el boleto ya fue pagado.
func (d *BillingDocument) Settled() bool { return d.Status == DocumentPaid }

// OrderDocument vínculo pedido-cuota-boleto.
type OrderDocument struct {
	OrderID    int64
	Number     int
	DocumentID int64
}
