package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/fulfillment-ledger/internal/domain/entity"
)

// EntryRequest body para POST /api/inventory/entries.
type EntryRequest struct {
	ProductID int64            `json:"product_id" validate:"required,gt=0"`
	Quantity  decimal.Decimal  `json:"quantity"`
	UnitCost  *decimal.Decimal `json:"unit_cost,omitempty"`
	Date      *time.Time       `json:"date,omitempty"`
	Location  string           `json:"location,omitempty" validate:"max=40"`
	Note      string           `json:"note,omitempty" validate:"max=500"`
}

// ExitRequest body para POST /api/inventory/exits.
type ExitRequest struct {
	ProductID int64           `json:"product_id" validate:"required,gt=0"`
	Quantity  decimal.Decimal `json:"quantity"`
	Date      *time.Time      `json:"date,omitempty"`
	Location  string          `json:"location,omitempty" validate:"max=40"`
	Note      string          `json:"note,omitempty" validate:"max=500"`
}

// AdjustRequest body para POST /api/inventory/adjustments. Delta con signo.
type AdjustRequest struct {
	ProductID int64           `json:"product_id" validate:"required,gt=0"`
	Delta     decimal.Decimal `json:"delta"`
	Date      *time.Time      `json:"date,omitempty"`
	Location  string          `json:"location,omitempty" validate:"max=40"`
	Note      string          `json:"note,omitempty" validate:"max=500"`
}

// TransferRequest body para POST /api/inventory/transfers.
type TransferRequest struct {
	BatchRef  string          `json:"batch_ref,omitempty" validate:"max=40"`
	ProductID int64           `json:"product_id" validate:"required,gt=0"`
	From      string          `json:"from" validate:"required,max=40"`
	To        string          `json:"to" validate:"required,max=40"`
	Quantity  decimal.Decimal `json:"quantity"`
	Date      *time.Time      `json:"date,omitempty"`
	Note      string          `json:"note,omitempty" validate:"max=500"`
}

// TransferItemRequest ítem de un traslado por lote.
type TransferItemRequest struct {
	ProductID int64           `json:"product_id" validate:"required,gt=0"`
	Quantity  decimal.Decimal `json:"quantity"`
}

// BatchTransferRequest body para POST /api/inventory/transfers/batch.
type BatchTransferRequest struct {
	BatchRef string                `json:"batch_ref,omitempty" validate:"max=40"`
	From     string                `json:"from" validate:"required,max=40"`
	To       string                `json:"to" validate:"required,max=40"`
	Date     *time.Time            `json:"date,omitempty"`
	Note     string                `json:"note,omitempty" validate:"max=500"`
	Items    []TransferItemRequest `json:"items" validate:"required,min=1,dive"`
}

// OperationalExitItemRequest cantidad a retirar de un producto.
type OperationalExitItemRequest struct {
	ProductID int64           `json:"product_id" validate:"required,gt=0"`
	Quantity  decimal.Decimal `json:"quantity"`
}

// OperationalExitRequest body para POST /api/inventory/operational-exits.
// Sin location se usa la del token.
type OperationalExitRequest struct {
	BatchRef string                       `json:"batch_ref,omitempty" validate:"max=40"`
	Location string                       `json:"location,omitempty" validate:"max=40"`
	Type     string                       `json:"type" validate:"required,oneof=INTERNAL_USE LOSS EXCHANGE SAMPLE"`
	Date     *time.Time                   `json:"date,omitempty"`
	Note     string                       `json:"note,omitempty" validate:"max=500"`
	Items    []OperationalExitItemRequest `json:"items" validate:"required,min=1,dive"`
}

// CountItemRequest cantidad contada de un producto.
type CountItemRequest struct {
	ProductID int64            `json:"product_id" validate:"required,gt=0"`
	Counted   decimal.Decimal  `json:"counted"`
	UnitCost  *decimal.Decimal `json:"unit_cost,omitempty"`
}

// StockCountRequest body para POST /api/inventory/counts.
type StockCountRequest struct {
	Location string             `json:"location" validate:"required,max=40"`
	Date     *time.Time         `json:"date,omitempty"`
	Note     string             `json:"note,omitempty" validate:"max=500"`
	Items    []CountItemRequest `json:"items" validate:"required,min=1,dive"`
}

// PurchaseLineRequest línea recibida de una compra.
type PurchaseLineRequest struct {
	LineID    int64           `json:"line_id" validate:"required,gt=0"`
	ProductID int64           `json:"product_id" validate:"required,gt=0"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitCost  decimal.Decimal `json:"unit_cost"`
}

// PurchaseReceiptRequest body para POST /api/inventory/purchases.
type PurchaseReceiptRequest struct {
	PurchaseID int64                 `json:"purchase_id" validate:"required,gt=0"`
	Date       *time.Time            `json:"date,omitempty"`
	Location   string                `json:"location,omitempty" validate:"max=40"`
	Lines      []PurchaseLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// ThresholdsRequest body para PUT /api/inventory/products/:id/thresholds.
type ThresholdsRequest struct {
	Minimum decimal.Decimal `json:"minimum"`
	Ideal   decimal.Decimal `json:"ideal"`
	Maximum decimal.Decimal `json:"maximum"`
}

// MovementResponse movimiento del ledger.
type MovementResponse struct {
	ID           int64           `json:"id"`
	ProductID    int64           `json:"product_id"`
	Kind         string          `json:"kind"`
	Direction    int             `json:"direction"`
	Quantity     decimal.Decimal `json:"quantity"`
	Date         time.Time       `json:"date"`
	OriginType   string          `json:"origin_type,omitempty"`
	OriginID     *int64          `json:"origin_id,omitempty"`
	OriginLineID *int64          `json:"origin_line_id,omitempty"`
	LotID        *int64          `json:"lot_id,omitempty"`
	Location     string          `json:"location,omitempty"`
	Note         string          `json:"note,omitempty"`
	CreatedBy    string          `json:"created_by,omitempty"`
}

// BalanceResponse saldo consolidado y por ubicación.
type BalanceResponse struct {
	ProductID   int64                     `json:"product_id"`
	Quantity    decimal.Decimal           `json:"quantity"`
	Minimum     decimal.Decimal           `json:"minimum"`
	Ideal       decimal.Decimal           `json:"ideal"`
	Maximum     decimal.Decimal           `json:"maximum"`
	AverageCost decimal.Decimal           `json:"average_cost"`
	Locations   []LocationBalanceResponse `json:"locations,omitempty"`
}

// LocationBalanceResponse saldo en una ubicación.
type LocationBalanceResponse struct {
	Location string          `json:"location"`
	Quantity decimal.Decimal `json:"quantity"`
}

// LotAllocationResponse consumo de un lote.
type LotAllocationResponse struct {
	LotID          int64           `json:"lot_id"`
	Quantity       decimal.Decimal `json:"quantity"`
	RemainingAfter decimal.Decimal `json:"remaining_after"`
}

// MovementResultResponse movimiento creado con el saldo resultante.
type MovementResultResponse struct {
	Movement MovementResponse        `json:"movement"`
	Balance  BalanceResponse         `json:"balance"`
	LotID    *int64                  `json:"lot_id,omitempty"`
	Consumed []LotAllocationResponse `json:"consumed,omitempty"`
}

// TransferResponse traslado registrado.
type TransferResponse struct {
	ID          int64           `json:"id"`
	BatchRef    string          `json:"batch_ref"`
	ProductID   int64           `json:"product_id"`
	From        string          `json:"from"`
	To          string          `json:"to"`
	Quantity    decimal.Decimal `json:"quantity"`
	Date        time.Time       `json:"date"`
	FromBalance decimal.Decimal `json:"from_balance"`
	ToBalance   decimal.Decimal `json:"to_balance"`
}

// OperationalExitResponse salida operativa registrada.
type OperationalExitResponse struct {
	ID         int64           `json:"id"`
	BatchRef   string          `json:"batch_ref"`
	ProductID  int64           `json:"product_id"`
	Location   string          `json:"location"`
	Type       string          `json:"type"`
	Quantity   decimal.Decimal `json:"quantity"`
	Date       time.Time       `json:"date"`
	Note       string          `json:"note,omitempty"`
	MovementID int64           `json:"movement_id"`
}

// ProductStatisticsResponse permanencia y giro de un producto.
type ProductStatisticsResponse struct {
	ProductID          int64           `json:"product_id"`
	SKU                string          `json:"sku"`
	Name               string          `json:"name"`
	Balance            decimal.Decimal `json:"balance"`
	AverageDaysInStock decimal.Decimal `json:"average_days_in_stock"`
	Turnover           decimal.Decimal `json:"turnover"`
}

// AlertResponse alerta de stock bajo.
type AlertResponse struct {
	ID         int64           `json:"id"`
	ProductID  int64           `json:"product_id"`
	Status     string          `json:"status"`
	Balance    decimal.Decimal `json:"balance"`
	Minimum    decimal.Decimal `json:"minimum"`
	OpenedAt   time.Time       `json:"opened_at"`
	ResolvedAt *time.Time      `json:"resolved_at,omitempty"`
}

// LotAgeResponse lote con remanente y su antigüedad.
type LotAgeResponse struct {
	LotID        int64           `json:"lot_id"`
	EntryDate    time.Time       `json:"entry_date"`
	InitialQty   decimal.Decimal `json:"initial_qty"`
	RemainingQty decimal.Decimal `json:"remaining_qty"`
	DaysInStock  int             `json:"days_in_stock"`
}

// CountResultResponse diferencia aplicada por el conteo.
type CountResultResponse struct {
	ProductID  int64           `json:"product_id"`
	Previous   decimal.Decimal `json:"previous"`
	Counted    decimal.Decimal `json:"counted"`
	Difference decimal.Decimal `json:"difference"`
	MovementID *int64          `json:"movement_id,omitempty"`
}

// ReconciliationResponse saldo en caché contra ledger y lotes.
type ReconciliationResponse struct {
	ProductID     int64           `json:"product_id"`
	Cached        decimal.Decimal `json:"cached"`
	Replayed      decimal.Decimal `json:"replayed"`
	LotsRemaining decimal.Decimal `json:"lots_remaining"`
	Consistent    bool            `json:"consistent"`
}

// ReplenishmentSuggestionDTO sugerencia de reposición para un SKU en o por debajo del mínimo.
type ReplenishmentSuggestionDTO struct {
	ProductID         int64           `json:"product_id"`
	SKU               string          `json:"sku"`
	ProductName       string          `json:"product_name"`
	CurrentStock      decimal.Decimal `json:"current_stock"`
	Minimum           decimal.Decimal `json:"minimum"`
	TargetStock       decimal.Decimal `json:"target_stock"`
	SuggestedOrderQty decimal.Decimal `json:"suggested_order_qty"`
	UnitCost          decimal.Decimal `json:"unit_cost"`
	EstimatedCost     decimal.Decimal `json:"estimated_order_cost"`
	Priority          int             `json:"priority"` // 1 = más urgente
}

// FromMovement mapea el movimiento a su respuesta.
func FromMovement(m *entity.StockMovement) MovementResponse {
	return MovementResponse{
		ID:           m.ID,
		ProductID:    m.ProductID,
		Kind:         string(m.Kind),
		Direction:    m.Direction,
		Quantity:     m.Quantity,
		Date:         m.Date,
		OriginType:   m.OriginType,
		OriginID:     m.OriginID,
		OriginLineID: m.OriginLineID,
		LotID:        m.LotID,
		Location:     m.Location,
		Note:         m.Note,
		CreatedBy:    m.CreatedBy,
	}
}

// FromBalance mapea saldo consolidado y por ubicación.
func FromBalance(b *entity.StockBalance, locs []*entity.LocationBalance) BalanceResponse {
	out := BalanceResponse{
		ProductID:   b.ProductID,
		Quantity:    b.Quantity,
		Minimum:     b.MinimumQty,
		Ideal:       b.IdealQty,
		Maximum:     b.MaximumQty,
		AverageCost: b.AverageCost,
	}
	for _, lb := range locs {
		out.Locations = append(out.Locations, LocationBalanceResponse{Location: lb.Location, Quantity: lb.Quantity})
	}
	return out
}

// FromAlert mapea una alerta.
func FromAlert(a *entity.StockAlert) AlertResponse {
	return AlertResponse{
		ID:         a.ID,
		ProductID:  a.ProductID,
		Status:     string(a.Status),
		Balance:    a.BalanceSnapshot,
		Minimum:    a.MinimumSnapshot,
		OpenedAt:   a.OpenedAt,
		ResolvedAt: a.ResolvedAt,
	}
}

// FromTransfer mapea un traslado con los saldos resultantes de origen y destino.
func FromTransfer(t *entity.Transfer, from, to *entity.LocationBalance) TransferResponse {
	out := TransferResponse{
		ID:        t.ID,
		BatchRef:  t.BatchRef,
		ProductID: t.ProductID,
		From:      t.FromLocation,
		To:        t.ToLocation,
		Quantity:  t.Quantity,
		Date:      t.Date,
	}
	if from != nil {
		out.FromBalance = from.Quantity
	}
	if to != nil {
		out.ToBalance = to.Quantity
	}
	return out
}

// FromOperationalExit mapea una salida operativa.
func FromOperationalExit(e *entity.OperationalExit) OperationalExitResponse {
	return OperationalExitResponse{
		ID:         e.ID,
		BatchRef:   e.BatchRef,
		ProductID:  e.ProductID,
		Location:   e.Location,
		Type:       string(e.Type),
		Quantity:   e.Quantity,
		Date:       e.Date,
		Note:       e.Note,
		MovementID: e.MovementID,
	}
}
