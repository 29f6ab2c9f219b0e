package inventory

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/fulfillment-ledger/internal/domain/entity"
)

// StatisticPlaces decimales de los indicadores (días promedio, giro).
const StatisticPlaces int32 = 2

// WeightedAverageDays días en stock promedio ponderado por la cantidad inicial de cada lote:
// Σ(inicial × días) / Σ inicial. Cero si no hay cantidad.
func WeightedAverageDays(lots []*entity.Lot, today time.Time) decimal.Decimal {
	num, den := decimal.Zero, decimal.Zero
	for _, l := range lots {
		if !l.InitialQty.IsPositive() {
			continue
		}
		days := decimal.NewFromInt(int64(l.DaysInStock(today)))
		num = num.Add(l.InitialQty.Mul(days))
		den = den.Add(l.InitialQty)
	}
	if den.IsZero() {
		return decimal.Zero
	}
	return num.Div(den).RoundBank(StatisticPlaces)
}

// Turnover giro de inventario: cantidad consumida en el período sobre el saldo actual.
// Cero si el saldo no es positivo.
func Turnover(consumed, balance decimal.Decimal) decimal.Decimal {
	if !balance.IsPositive() {
		return decimal.Zero
	}
	return consumed.Div(balance).RoundBank(StatisticPlaces)
}
