package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/fulfillment-ledger/internal/domain"
	"github.com/jhoicas/fulfillment-ledger/internal/domain/entity"
	"github.com/jhoicas/fulfillment-ledger/internal/domain/inventory"
	"github.com/jhoicas/fulfillment-ledger/internal/domain/repository"
)

// CountItem cantidad contada de un producto; UnitCost opcional reemplaza el costo promedio.
type CountItem struct {
	ProductID int64
	Counted   decimal.Decimal
	UnitCost  *decimal.Decimal
}

// StockCount conteo rápido de una ubicación.
type StockCount struct {
	Location string
	Date     time.Time
	Note     string
	UserID   string
	Items    []CountItem
}

// CountResult diferencia aplicada a un producto.
type CountResult struct {
	ProductID  int64
	Previous   decimal.Decimal
	Counted    decimal.Decimal
	Difference decimal.Decimal
	Movement   *entity.StockMovement
}

// ApplyStockCount lleva el saldo de la ubicación a lo contado. Cada diferencia se registra
// como un ADJUST, de modo que el saldo consolidado se mueve lo mismo que la ubicación.
func (l *StockLedger) ApplyStockCount(ctx context.Context, in StockCount) ([]CountResult, error) {
	if len(in.Items) == 0 {
		return nil, fmt.Errorf("%w: informe al menos un ítem", domain.ErrInvalidInput)
	}
	if !l.locations.Contains(in.Location) {
		return nil, fmt.Errorf("%w: ubicación %q desconocida", domain.ErrInvalidInput, in.Location)
	}
	seen := make(map[int64]bool, len(in.Items))
	for _, it := range in.Items {
		if seen[it.ProductID] {
			return nil, fmt.Errorf("%w: producto %d repetido en el conteo", domain.ErrInvalidInput, it.ProductID)
		}
		seen[it.ProductID] = true
		if it.Counted.IsNegative() {
			return nil, fmt.Errorf("%w: cantidad contada negativa", domain.ErrInvalidInput)
		}
		if it.UnitCost != nil && it.UnitCost.IsNegative() {
			return nil, fmt.Errorf("%w: costo unitario negativo", domain.ErrInvalidInput)
		}
	}

	var out []CountResult
	err := l.tx.Run(ctx, func(repos repository.Repositories) error {
		out = make([]CountResult, 0, len(in.Items))
		for _, it := range in.Items {
			r, err := l.countOne(ctx, repos, in, it)
			if err != nil {
				return err
			}
			out = append(out, r)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (l *StockLedger) countOne(ctx context.Context, repos repository.Repositories, in StockCount, it CountItem) (CountResult, error) {
	counted := inventory.RoundQty(it.Counted)
	p, err := repos.Products().GetByID(ctx, it.ProductID)
	if err != nil {
		return CountResult{}, err
	}
	if p == nil {
		return CountResult{}, fmt.Errorf("%w: producto %d", domain.ErrNotFound, it.ProductID)
	}
	// saldo consolidado primero: mismo orden de bloqueo que el resto del ledger
	if _, err := repos.Balances().GetForUpdate(ctx, it.ProductID); err != nil {
		return CountResult{}, err
	}
	lb, err := repos.LocationBalances().GetForUpdate(ctx, it.ProductID, in.Location)
	if err != nil {
		return CountResult{}, err
	}
	res := CountResult{ProductID: it.ProductID, Previous: lb.Quantity, Counted: counted}
	res.Difference = inventory.RoundQty(counted.Sub(lb.Quantity))

	if !res.Difference.IsZero() {
		note := fmt.Sprintf("Conteo [%s] anterior=%s contado=%s diff=%s", in.Location,
			lb.Quantity.StringFixed(inventory.QuantityPlaces), counted.StringFixed(inventory.QuantityPlaces),
			res.Difference.StringFixed(inventory.QuantityPlaces))
		if in.Note != "" {
			note += " obs=" + in.Note
		}
		spec := movementSpec{
			kind: entity.MovementAdjust, productID: it.ProductID, qty: res.Difference.Abs(), date: in.Date,
			origin: &Origin{Type: entity.OriginCount}, note: note, userID: in.UserID,
		}
		var mr *MovementResult
		if res.Difference.IsPositive() {
			mr, err = l.inbound(ctx, repos, spec)
		} else {
			mr, err = l.outbound(ctx, repos, spec)
		}
		if err != nil {
			return CountResult{}, err
		}
		res.Movement = mr.Movement
	}

	lb.Quantity = counted
	lb.UpdatedAt = l.Now()
	if err := repos.LocationBalances().Upsert(ctx, lb); err != nil {
		return CountResult{}, err
	}
	if it.UnitCost != nil {
		bal, err := repos.Balances().GetForUpdate(ctx, it.ProductID)
		if err != nil {
			return CountResult{}, err
		}
		bal.AverageCost = it.UnitCost.Round(inventory.CostPlaces)
		bal.UpdatedAt = l.Now()
		if err := repos.Balances().Upsert(ctx, bal); err != nil {
			return CountResult{}, err
		}
	}
	return res, nil
}
