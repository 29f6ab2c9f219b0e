package inventory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/fulfillment-ledger/internal/domain"
	"github.com/jhoicas/fulfillment-ledger/internal/domain/entity"
	"github.com/jhoicas/fulfillment-ledger/internal/domain/inventory"
	"github.com/jhoicas/fulfillment-ledger/internal/domain/repository"
)

// TransferEngine mueve saldo entre ubicaciones sin tocar el saldo consolidado ni el ledger.
type TransferEngine struct {
	tx        TxRunner
	locations Locations
	log       zerolog.Logger
	Now       func() time.Time
}

// NewTransferEngine construye el motor de traslados.
func NewTransferEngine(tx TxRunner, locations Locations, log zerolog.Logger) *TransferEngine {
	return &TransferEngine{tx: tx, locations: locations, log: log, Now: time.Now}
}

// TransferInput traslado de un producto. BatchRef vacío genera una referencia nueva.
type TransferInput struct {
	BatchRef  string
	ProductID int64
	From      string
	To        string
	Quantity  decimal.Decimal
	Date      time.Time
	Note      string
	UserID    string
}

// TransferItem ítem de un traslado por lote.
type TransferItem struct {
	ProductID int64
	Quantity  decimal.Decimal
}

// BatchTransferInput varios productos entre el mismo par de ubicaciones.
type BatchTransferInput struct {
	BatchRef string
	From     string
	To       string
	Date     time.Time
	Note     string
	UserID   string
	Items    []TransferItem
}

// TransferResult traslado creado y saldos resultantes.
type TransferResult struct {
	Transfer *entity.Transfer
	From     *entity.LocationBalance
	To       *entity.LocationBalance
}

// BatchTransferResult referencia compartida y traslados del lote.
type BatchTransferResult struct {
	BatchRef  string
	Transfers []*TransferResult
}

// NewBatchRef referencia de lote: "L" + 10 hex en mayúsculas.
func NewBatchRef() string {
	hex := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "L" + strings.ToUpper(hex[:10])
}

func batchRefOr(ref string) string {
	if ref = strings.TrimSpace(ref); ref != "" {
		return ref
	}
	return NewBatchRef()
}

// Transfer ejecuta un traslado en su propia transacción.
func (e *TransferEngine) Transfer(ctx context.Context, in TransferInput) (*TransferResult, error) {
	if err := e.validateRoute(in.From, in.To); err != nil {
		return nil, err
	}
	ref := batchRefOr(in.BatchRef)
	var res *TransferResult
	err := e.tx.Run(ctx, func(repos repository.Repositories) error {
		var err error
		res, err = e.TransferInTx(ctx, repos, ref, in)
		return err
	})
	if err != nil {
		return nil, err
	}
	e.log.Info().Str("batch_ref", ref).Int64("product_id", in.ProductID).
		Str("origen", in.From).Str("destino", in.To).Stringer("qty", res.Transfer.Quantity).Msg("traslado registrado")
	return res, nil
}

// TransferBatch todos los ítems se trasladan o ninguno.
func (e *TransferEngine) TransferBatch(ctx context.Context, in BatchTransferInput) (*BatchTransferResult, error) {
	if len(in.Items) == 0 {
		return nil, fmt.Errorf("%w: el lote de traslado no tiene ítems", domain.ErrInvalidInput)
	}
	if err := e.validateRoute(in.From, in.To); err != nil {
		return nil, err
	}
	items := make([]TransferItem, len(in.Items))
	copy(items, in.Items)
	sort.SliceStable(items, func(i, j int) bool { return items[i].ProductID < items[j].ProductID })

	out := &BatchTransferResult{BatchRef: batchRefOr(in.BatchRef)}
	err := e.tx.Run(ctx, func(repos repository.Repositories) error {
		out.Transfers = make([]*TransferResult, 0, len(items))
		for _, it := range items {
			r, err := e.TransferInTx(ctx, repos, out.BatchRef, TransferInput{
				ProductID: it.ProductID,
				From:      in.From,
				To:        in.To,
				Quantity:  it.Quantity,
				Date:      in.Date,
				Note:      in.Note,
				UserID:    in.UserID,
			})
			if err != nil {
				return err
			}
			out.Transfers = append(out.Transfers, r)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	e.log.Info().Str("batch_ref", out.BatchRef).Int("items", len(out.Transfers)).
		Str("origen", in.From).Str("destino", in.To).Msg("traslado por lote registrado")
	return out, nil
}

// TransferInTx traslado dentro de la transacción del caller.
func (e *TransferEngine) TransferInTx(ctx context.Context, repos repository.Repositories, batchRef string, in TransferInput) (*TransferResult, error) {
	if err := e.validateRoute(in.From, in.To); err != nil {
		return nil, err
	}
	qty := inventory.RoundQty(in.Quantity)
	if !qty.IsPositive() {
		return nil, fmt.Errorf("%w: la cantidad a trasladar debe ser positiva", domain.ErrInvalidInput)
	}
	p, err := repos.Products().GetByID(ctx, in.ProductID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("%w: producto %d", domain.ErrNotFound, in.ProductID)
	}

	// bloqueo en orden alfabético para que traslados opuestos no se crucen
	first, second := in.From, in.To
	if second < first {
		first, second = second, first
	}
	locked := make(map[string]*entity.LocationBalance, 2)
	for _, loc := range []string{first, second} {
		lb, err := repos.LocationBalances().GetForUpdate(ctx, in.ProductID, loc)
		if err != nil {
			return nil, err
		}
		locked[loc] = lb
	}
	src, dst := locked[in.From], locked[in.To]
	if src.Quantity.LessThan(qty) {
		return nil, fmt.Errorf("%w: saldo en %s es %s, solicitado %s", domain.ErrInsufficientStock,
			in.From, src.Quantity.StringFixed(inventory.QuantityPlaces), qty.StringFixed(inventory.QuantityPlaces))
	}

	now := e.Now()
	date := in.Date
	if date.IsZero() {
		date = now
	}
	src.Quantity = inventory.RoundQty(src.Quantity.Sub(qty))
	dst.Quantity = inventory.RoundQty(dst.Quantity.Add(qty))
	src.UpdatedAt, dst.UpdatedAt = now, now
	if err := repos.LocationBalances().Upsert(ctx, src); err != nil {
		return nil, err
	}
	if err := repos.LocationBalances().Upsert(ctx, dst); err != nil {
		return nil, err
	}

	t := &entity.Transfer{
		BatchRef:     batchRef,
		ProductID:    in.ProductID,
		FromLocation: in.From,
		ToLocation:   in.To,
		Quantity:     qty,
		Date:         date,
		Note:         in.Note,
		UserID:       in.UserID,
		CreatedAt:    now,
	}
	if err := repos.Transfers().Create(ctx, t); err != nil {
		return nil, err
	}
	return &TransferResult{Transfer: t, From: src, To: dst}, nil
}

func (e *TransferEngine) validateRoute(from, to string) error {
	if from == "" || to == "" {
		return fmt.Errorf("%w: origen y destino son obligatorios", domain.ErrInvalidInput)
	}
	if from == to {
		return fmt.Errorf("%w: origen y destino deben ser diferentes", domain.ErrInvalidState)
	}
	if !e.locations.Contains(from) || !e.locations.Contains(to) {
		return fmt.Errorf("%w: ubicación desconocida", domain.ErrInvalidInput)
	}
	return nil
}
