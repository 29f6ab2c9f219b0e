package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// OperationalExitType motivo de una salida que no es venta.
type OperationalExitType string

const (
	OperationalInternalUse OperationalExitType = "INTERNAL_USE" // uso interno
	OperationalLoss        OperationalExitType = "LOSS"         // pérdida, rotura, vencimiento
	OperationalExchange    OperationalExitType = "EXCHANGE"     // cambio en mostrador
	OperationalSample      OperationalExitType = "SAMPLE"       // muestra o regalo
)

// Valid indica si t es un motivo conocido.
func (t OperationalExitType) Valid() bool {
	switch t {
	case OperationalInternalUse, OperationalLoss, OperationalExchange, OperationalSample:
		return true
	}
	return false
}

// OperationalExit registro de una salida operativa por ubicación, ligado a su movimiento EXIT.
// Las salidas de un mismo lote comparten BatchRef.
type OperationalExit struct {
	ID         int64
	BatchRef   string
	ProductID  int64
	Location   string
	Type       OperationalExitType
	Quantity   decimal.Decimal
	Date       time.Time
	Note       string
	UserID     string
	MovementID int64
	CreatedAt  time.Time
}
