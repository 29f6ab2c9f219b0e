package inventory

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/fulfillment-ledger/internal/domain/entity"
)

// AlertAction acción a aplicar sobre las alertas de un producto.
type AlertAction int

const (
	AlertNone AlertAction = iota
	AlertOpenNew
	AlertRefresh
	AlertResolve
)

// DecideAlert máquina de dos estados: saldo <= mínimo abre (o refresca) la alerta,
// saldo > mínimo resuelve la abierta. open es nil si no hay alerta abierta.
func DecideAlert(balance, minimum decimal.Decimal, open *entity.StockAlert) AlertAction {
	if balance.LessThanOrEqual(minimum) {
		if open == nil {
			return AlertOpenNew
		}
		if open.BalanceSnapshot.Equal(balance) && open.MinimumSnapshot.Equal(minimum) {
			return AlertNone
		}
		return AlertRefresh
	}
	if open != nil {
		return AlertResolve
	}
	return AlertNone
}
