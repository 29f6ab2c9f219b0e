package inventory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/fulfillment-ledger/internal/domain"
	"github.com/jhoicas/fulfillment-ledger/internal/domain/entity"
	"github.com/jhoicas/fulfillment-ledger/internal/domain/repository"
)

// PurchaseLine ítem recibido de una compra.
type PurchaseLine struct {
	LineID    int64
	ProductID int64
	Quantity  decimal.Decimal
	UnitCost  decimal.Decimal
}

// PurchaseReceipt recepción de una compra completa.
type PurchaseReceipt struct {
	PurchaseID int64
	Date       time.Time
	Location   string
	UserID     string
	Lines      []PurchaseLine
}

// PurchaseResult entradas creadas y líneas ya recibidas antes.
type PurchaseResult struct {
	Created []*MovementResult
	Skipped int
}

// ReceivePurchase da entrada a cada línea de la compra con su costo unitario.
// Las líneas que ya tienen su ENTRY se saltan, así que reintentar es seguro.
func (l *StockLedger) ReceivePurchase(ctx context.Context, in PurchaseReceipt) (*PurchaseResult, error) {
	if in.PurchaseID <= 0 || len(in.Lines) == 0 {
		return nil, fmt.Errorf("%w: compra sin líneas", domain.ErrInvalidInput)
	}
	lines := make([]PurchaseLine, len(in.Lines))
	copy(lines, in.Lines)
	sort.SliceStable(lines, func(i, j int) bool { return lines[i].ProductID < lines[j].ProductID })

	res := &PurchaseResult{}
	err := l.tx.Run(ctx, func(repos repository.Repositories) error {
		res.Created, res.Skipped = nil, 0
		for _, line := range lines {
			// El saldo bloqueado serializa recepciones concurrentes del mismo producto:
			// la segunda ve la ENTRY ya confirmada por la primera.
			if _, err := repos.Balances().GetForUpdate(ctx, line.ProductID); err != nil {
				return err
			}
			done, err := repos.Movements().ExistsByOrigin(ctx, entity.OriginPurchase, in.PurchaseID, line.LineID, entity.MovementEntry)
			if err != nil {
				return err
			}
			if done {
				res.Skipped++
				continue
			}
			cost := line.UnitCost
			mr, err := l.RecordEntryInTx(ctx, repos, EntryInput{
				ProductID: line.ProductID,
				Quantity:  line.Quantity,
				Date:      in.Date,
				UnitCost:  &cost,
				Location:  in.Location,
				Origin:    &Origin{Type: entity.OriginPurchase, ID: in.PurchaseID, LineID: line.LineID},
				Note:      fmt.Sprintf("Entrada por compra #%d", in.PurchaseID),
				UserID:    in.UserID,
			})
			if err != nil {
				return err
			}
			res.Created = append(res.Created, mr)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	l.log.Info().Int64("purchase_id", in.PurchaseID).Int("creados", len(res.Created)).Int("omitidos", res.Skipped).
		Msg("recepción de compra aplicada")
	return res, nil
}
