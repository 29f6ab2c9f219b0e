package inventory

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/fulfillment-ledger/internal/domain"
	"github.com/jhoicas/fulfillment-ledger/internal/domain/entity"
)

// LotAllocation cantidad tomada de un lote y el remanente que le queda.
type LotAllocation struct {
	LotID          int64
	Quantity       decimal.Decimal
	RemainingAfter decimal.Decimal
}

// SortFIFO ordena lotes del más antiguo al más nuevo: fecha de entrada y luego id.
func SortFIFO(lots []*entity.Lot) {
	sort.SliceStable(lots, func(i, j int) bool {
		if !lots[i].EntryDate.Equal(lots[j].EntryDate) {
			return lots[i].EntryDate.Before(lots[j].EntryDate)
		}
		return lots[i].ID < lots[j].ID
	})
}

// PlanFIFO calcula qué lotes cubren qty en orden FIFO sin modificarlos.
// Si la suma disponible no alcanza devuelve ErrInsufficientStock y ningún plan.
func PlanFIFO(lots []*entity.Lot, qty decimal.Decimal) ([]LotAllocation, error) {
	if !qty.IsPositive() {
		return nil, fmt.Errorf("%w: cantidad a consumir debe ser positiva", domain.ErrInvalidInput)
	}
	ordered := make([]*entity.Lot, 0, len(lots))
	available := decimal.Zero
	for _, l := range lots {
		if l.Available() {
			ordered = append(ordered, l)
			available = available.Add(l.RemainingQty)
		}
	}
	if available.LessThan(qty) {
		return nil, fmt.Errorf("%w: disponible en lotes %s, solicitado %s",
			domain.ErrInsufficientStock, available.StringFixed(QuantityPlaces), qty.StringFixed(QuantityPlaces))
	}
	SortFIFO(ordered)

	pending := qty
	plan := make([]LotAllocation, 0, len(ordered))
	for _, l := range ordered {
		if !pending.IsPositive() {
			break
		}
		take := decimal.Min(l.RemainingQty, pending)
		plan = append(plan, LotAllocation{
			LotID:          l.ID,
			Quantity:       take,
			RemainingAfter: l.RemainingQty.Sub(take),
		})
		pending = pending.Sub(take)
	}
	return plan, nil
}
