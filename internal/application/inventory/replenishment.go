package inventory

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/fulfillment-ledger/internal/domain/inventory"
	"github.com/jhoicas/fulfillment-ledger/internal/domain/repository"
)

// ReplenishmentItem producto en o bajo su mínimo con la cantidad sugerida de reposición.
type ReplenishmentItem struct {
	ProductID     int64
	SKU           string
	Name          string
	Balance       decimal.Decimal
	Minimum       decimal.Decimal
	Target        decimal.Decimal
	SuggestedQty  decimal.Decimal
	AverageCost   decimal.Decimal
	EstimatedCost decimal.Decimal
	Priority      int
}

// Replenishment lista de reposición: productos activos con saldo <= mínimo. El objetivo es
// el ideal, o el máximo si no hay ideal, o el mínimo. Prioridad 1 = mayor déficit.
func (l *StockLedger) Replenishment(ctx context.Context) ([]ReplenishmentItem, error) {
	var out []ReplenishmentItem
	err := l.tx.Run(ctx, func(repos repository.Repositories) error {
		products, err := repos.Products().ListActive(ctx)
		if err != nil {
			return err
		}
		out = make([]ReplenishmentItem, 0)
		for _, p := range products {
			bal, err := repos.Balances().Get(ctx, p.ID)
			if err != nil {
				return err
			}
			if bal.Quantity.GreaterThan(bal.MinimumQty) {
				continue
			}
			target := bal.IdealQty
			if !target.IsPositive() {
				target = bal.MaximumQty
			}
			if !target.IsPositive() {
				target = bal.MinimumQty
			}
			suggested := inventory.RoundQty(target.Sub(bal.Quantity))
			if !suggested.IsPositive() {
				continue
			}
			out = append(out, ReplenishmentItem{
				ProductID:     p.ID,
				SKU:           p.SKU,
				Name:          p.Name,
				Balance:       bal.Quantity,
				Minimum:       bal.MinimumQty,
				Target:        target,
				SuggestedQty:  suggested,
				AverageCost:   bal.AverageCost,
				EstimatedCost: inventory.RoundMoney(suggested.Mul(bal.AverageCost)),
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !a.SuggestedQty.Equal(b.SuggestedQty) {
			return a.SuggestedQty.GreaterThan(b.SuggestedQty)
		}
		return a.ProductID < b.ProductID
	})
	for i := range out {
		out[i].Priority = i + 1
	}
	return out, nil
}
