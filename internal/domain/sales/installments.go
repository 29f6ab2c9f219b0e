package sales

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/fulfillment-ledger/internal/domain"
	"github.com/jhoicas/fulfillment-ledger/internal/domain/entity"
	"github.com/jhoicas/fulfillment-ledger/internal/domain/inventory"
)

// Límites de condiciones de pago.
const (
	MaxInstallments     = 36
	MaxIntervalDays     = 120
	DefaultIntervalDays = 30
)

// Installment cuota programada (Number empieza en 1).
type Installment struct {
	Number  int
	Amount  decimal.Decimal
	DueDate time.Time
}

// SplitAmount reparte total en n cuotas de round(total/n, 2); la última absorbe la diferencia.
// El redondeo es bancario (mitad al par).
func SplitAmount(total decimal.Decimal, n int) ([]decimal.Decimal, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: número de cuotas debe ser >= 1", domain.ErrInvalidInput)
	}
	total = inventory.RoundMoney(total)
	if n == 1 {
		return []decimal.Decimal{total}, nil
	}
	base := total.Div(decimal.NewFromInt(int64(n))).RoundBank(inventory.MoneyPlaces)
	out := make([]decimal.Decimal, n)
	for i := 0; i < n-1; i++ {
		out[i] = base
	}
	out[n-1] = total.Sub(base.Mul(decimal.NewFromInt(int64(n - 1))))
	return out, nil
}

// DueDates vencimientos first + i*interval días, i = 0..n-1.
func DueDates(first time.Time, n, intervalDays int) []time.Time {
	if intervalDays <= 0 {
		intervalDays = DefaultIntervalDays
	}
	out := make([]time.Time, n)
	for i := 0; i < n; i++ {
		out[i] = first.AddDate(0, 0, i*intervalDays)
	}
	return out
}

// Schedule cuotas del pedido según sus condiciones de pago.
func Schedule(o *entity.Order) ([]Installment, error) {
	n := o.InstallmentCount
	if n < 1 {
		n = 1
	}
	amounts, err := SplitAmount(o.Total, n)
	if err != nil {
		return nil, err
	}
	first := o.OrderDate
	if o.FirstDueDate != nil {
		first = *o.FirstDueDate
	}
	dates := DueDates(first, n, o.InstallmentIntervalDays)
	out := make([]Installment, n)
	for i := range amounts {
		out[i] = Installment{Number: i + 1, Amount: amounts[i], DueDate: dates[i]}
	}
	return out, nil
}

// NormalizePaymentTerms valida y ajusta las condiciones de pago.
// CASH fuerza una cuota; con una sola cuota el intervalo vuelve al valor por defecto.
func NormalizePaymentTerms(o *entity.Order) error {
	if !o.PaymentMethod.IsValid() {
		return fmt.Errorf("%w: forma de pago %q desconocida", domain.ErrInvalidInput, o.PaymentMethod)
	}
	if o.PaymentMethod == entity.PaymentCash {
		o.InstallmentCount = 1
	}
	if o.InstallmentCount == 0 {
		o.InstallmentCount = 1
	}
	if o.InstallmentCount < 1 || o.InstallmentCount > MaxInstallments {
		return fmt.Errorf("%w: número de cuotas fuera de rango (1-%d)", domain.ErrInvalidInput, MaxInstallments)
	}
	if o.InstallmentCount == 1 || o.InstallmentIntervalDays == 0 {
		o.InstallmentIntervalDays = DefaultIntervalDays
	}
	if o.InstallmentIntervalDays < 1 || o.InstallmentIntervalDays > MaxIntervalDays {
		return fmt.Errorf("%w: intervalo entre cuotas fuera de rango (1-%d)", domain.ErrInvalidInput, MaxIntervalDays)
	}
	return nil
}
