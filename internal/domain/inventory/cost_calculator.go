package inventory

import "github.com/shopspring/decimal"

// Precisión de cantidades, dinero y costo unitario.
const (
	QuantityPlaces int32 = 3
	MoneyPlaces    int32 = 2
	CostPlaces     int32 = 4
)

// WeightedAverageCost costo promedio ponderado tras una entrada (servicio de dominio).
// NuevoCosto = ((SaldoActual * CostoActual) + (CantEntrada * CostoEntrada)) / (SaldoActual + CantEntrada)
// Con saldo resultante cero o negativo el costo queda en el de la entrada.
func WeightedAverageCost(currentQty, currentCost, entryQty, entryCost decimal.Decimal) decimal.Decimal {
	sum := currentQty.Add(entryQty)
	if sum.LessThanOrEqual(decimal.Zero) {
		return entryCost.Round(CostPlaces)
	}
	num := currentQty.Mul(currentCost).Add(entryQty.Mul(entryCost))
	return num.Div(sum).Round(CostPlaces)
}

// RoundQty normaliza una cantidad a 3 decimales.
func RoundQty(q decimal.Decimal) decimal.Decimal { return q.Round(QuantityPlaces) }

// RoundMoney normaliza un importe a 2 decimales.
func RoundMoney(m decimal.Decimal) decimal.Decimal { return m.Round(MoneyPlaces) }
