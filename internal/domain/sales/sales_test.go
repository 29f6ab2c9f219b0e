package sales_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/fulfillment-ledger/internal/domain"
	"github.com/jhoicas/fulfillment-ledger/internal/domain/entity"
	"github.com/jhoicas/fulfillment-ledger/internal/domain/sales"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// ──────────────────────────────────────────────────────────────────────────────
// Cuotas
// ──────────────────────────────────────────────────────────────────────────────

func TestSplitAmount_UltimaCuotaAbsorbeDiferencia(t *testing.T) {
	tests := []struct {
		total string
		n     int
		want  []string
	}{
		{"100.00", 3, []string{"33.33", "33.33", "33.34"}},
		{"195.00", 3, []string{"65.00", "65.00", "65.00"}},
		{"10.00", 1, []string{"10.00"}},
		{"0.05", 3, []string{"0.02", "0.02", "0.01"}},
	}
	for _, tt := range tests {
		t.Run(tt.total, func(t *testing.T) {
			parts, err := sales.SplitAmount(d(tt.total), tt.n)
			require.NoError(t, err)
			require.Len(t, parts, tt.n)
			for i, want := range tt.want {
				assert.Equal(t, want, parts[i].StringFixed(2), "cuota %d", i+1)
			}
		})
	}
}

func TestSplitAmount_SumaSiempreIgualAlTotal(t *testing.T) {
	totals := []string{"0.01", "0.05", "10.00", "205.00", "999.99", "1234.57", "100000.03"}
	for _, tot := range totals {
		for n := 1; n <= sales.MaxInstallments; n++ {
			parts, err := sales.SplitAmount(d(tot), n)
			require.NoError(t, err)
			sum := decimal.Zero
			for _, p := range parts {
				sum = sum.Add(p)
			}
			assert.True(t, sum.Equal(d(tot)), "total %s en %d cuotas suma %s", tot, n, sum)
		}
	}
}

func TestSplitAmount_RedondeoBancario(t *testing.T) {
	// 0.25 / 2 = 0.125 -> 0.12 (mitad al par)
	parts, err := sales.SplitAmount(d("0.25"), 2)
	require.NoError(t, err)
	assert.Equal(t, "0.12", parts[0].StringFixed(2))
	assert.Equal(t, "0.13", parts[1].StringFixed(2))
}

func TestSplitAmount_CeroCuotas(t *testing.T) {
	_, err := sales.SplitAmount(d("10"), 0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestDueDates(t *testing.T) {
	first := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
	dates := sales.DueDates(first, 3, 30)
	require.Len(t, dates, 3)
	assert.Equal(t, first, dates[0])
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), dates[1])
	assert.Equal(t, time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC), dates[2])
}

func TestSchedule_UsaPrimerVencimientoOFechaDelPedido(t *testing.T) {
	orderDate := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	o := &entity.Order{ID: 7, OrderDate: orderDate, Total: d("205.00"), InstallmentCount: 2, InstallmentIntervalDays: 15}

	inst, err := sales.Schedule(o)
	require.NoError(t, err)
	require.Len(t, inst, 2)
	assert.Equal(t, 1, inst[0].Number)
	assert.Equal(t, orderDate, inst[0].DueDate)
	assert.Equal(t, orderDate.AddDate(0, 0, 15), inst[1].DueDate)
	assert.Equal(t, "102.50", inst[1].Amount.StringFixed(2))

	first := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	o.FirstDueDate = &first
	inst, err = sales.Schedule(o)
	require.NoError(t, err)
	assert.Equal(t, first, inst[0].DueDate)
}

func TestNormalizePaymentTerms(t *testing.T) {
	cash := &entity.Order{PaymentMethod: entity.PaymentCash, InstallmentCount: 4, InstallmentIntervalDays: 10}
	require.NoError(t, sales.NormalizePaymentTerms(cash))
	assert.Equal(t, 1, cash.InstallmentCount)
	assert.Equal(t, sales.DefaultIntervalDays, cash.InstallmentIntervalDays)

	tooMany := &entity.Order{PaymentMethod: entity.PaymentStoreCredit, InstallmentCount: 37}
	assert.ErrorIs(t, sales.NormalizePaymentTerms(tooMany), domain.ErrInvalidInput)

	badInterval := &entity.Order{PaymentMethod: entity.PaymentInstallmentSlip, InstallmentCount: 3, InstallmentIntervalDays: 121}
	assert.ErrorIs(t, sales.NormalizePaymentTerms(badInterval), domain.ErrInvalidInput)

	unknown := &entity.Order{PaymentMethod: "CHEQUE"}
	assert.ErrorIs(t, sales.NormalizePaymentTerms(unknown), domain.ErrInvalidInput)
}

// ──────────────────────────────────────────────────────────────────────────────
// Totales, estados y referencias
// ──────────────────────────────────────────────────────────────────────────────

func TestApplyTotals(t *testing.T) {
	lines := []*entity.OrderLine{
		{Quantity: d("2"), UnitPrice: d("100"), Discount: d("0")},
		{Quantity: d("1.5"), UnitPrice: d("10"), Discount: d("5")},
		{Quantity: d("1"), UnitPrice: d("3"), Discount: d("10")}, // descuento mayor que el bruto
	}
	for _, l := range lines {
		sales.NormalizeLine(l)
	}
	assert.Equal(t, "10.00", lines[1].Subtotal.StringFixed(2))
	assert.True(t, lines[2].Subtotal.IsZero())

	o := &entity.Order{Surcharge: d("5")}
	sales.ApplyTotals(o, lines)

	assert.Equal(t, "218.00", o.Subtotal.StringFixed(2))
	assert.Equal(t, "8.00", o.Discount.StringFixed(2))
	assert.Equal(t, "215.00", o.Total.StringFixed(2))
	assert.True(t, o.Total.Equal(o.Subtotal.Sub(o.Discount).Add(o.Surcharge)))
}

func TestCanTransition(t *testing.T) {
	assert.True(t, sales.CanTransition(entity.OrderDraft, entity.OrderConfirmed))
	assert.True(t, sales.CanTransition(entity.OrderConfirmed, entity.OrderBilled))
	assert.True(t, sales.CanTransition(entity.OrderBilled, entity.OrderCompleted))
	assert.True(t, sales.CanTransition(entity.OrderBilled, entity.OrderCancelled))
	assert.True(t, sales.CanTransition(entity.OrderDraft, entity.OrderBilled))
	assert.False(t, sales.CanTransition(entity.OrderCompleted, entity.OrderBilled))
	assert.False(t, sales.CanTransition(entity.OrderCompleted, entity.OrderCancelled))
	assert.False(t, sales.CanTransition(entity.OrderCancelled, entity.OrderDraft))
}

func TestReferences(t *testing.T) {
	assert.Equal(t, "VEN-000042", sales.OrderCode(entity.DocumentOrder, 42))
	assert.Equal(t, "ORC-000042", sales.OrderCode(entity.DocumentQuote, 42))
	assert.Equal(t, "ORDER-42-P03", sales.ReceivableReference(42, 3))
	assert.Equal(t, "VD00000042-03", sales.DocumentNumber(42, 3))
}
