package inventory_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/fulfillment-ledger/internal/application/inventory"
	"github.com/jhoicas/fulfillment-ledger/internal/domain"
	"github.com/jhoicas/fulfillment-ledger/internal/domain/entity"
	"github.com/jhoicas/fulfillment-ledger/internal/domain/repository"
	"github.com/jhoicas/fulfillment-ledger/internal/testutil"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

var base = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func dp(s string) *decimal.Decimal {
	v := d(s)
	return &v
}

type fixture struct {
	store     *testutil.Store
	lots      *inventory.LotTracker
	alerts    *inventory.AlertEngine
	ledger    *inventory.StockLedger
	transfers *inventory.TransferEngine
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := testutil.NewStore()
	locs := inventory.Locations{entity.LocationStore1, entity.LocationStore2}
	log := zerolog.Nop()
	clock := testutil.FixedClock(base)

	lots := inventory.NewLotTracker(store)
	lots.Now = clock
	alerts := inventory.NewAlertEngine(store, log)
	alerts.Now = clock
	ledger := inventory.NewStockLedger(store, lots, alerts, locs, log)
	ledger.Now = clock
	transfers := inventory.NewTransferEngine(store, locs, log)
	transfers.Now = clock
	return &fixture{store: store, lots: lots, alerts: alerts, ledger: ledger, transfers: transfers}
}

func (f *fixture) entry(t *testing.T, productID int64, qty string, date time.Time, cost *decimal.Decimal, location string) *inventory.MovementResult {
	t.Helper()
	res, err := f.ledger.RecordEntry(context.Background(), inventory.EntryInput{
		ProductID: productID,
		Quantity:  d(qty),
		Date:      date,
		UnitCost:  cost,
		Location:  location,
		Origin:    &inventory.Origin{Type: entity.OriginManual},
		UserID:    "tester",
	})
	require.NoError(t, err)
	return res
}

// ──────────────────────────────────────────────────────────────────────────────
// Entradas y salidas
// ──────────────────────────────────────────────────────────────────────────────

func TestRecordEntry_CreaLoteMovimientoYCostoPromedio(t *testing.T) {
	f := newFixture(t)
	p := f.store.SeedProduct("SKU-1", "Camiseta")

	f.entry(t, p.ID, "10", base, dp("5"), "")
	res := f.entry(t, p.ID, "5", base.AddDate(0, 0, 1), dp("8"), "")

	require.NotNil(t, res.Lot)
	assert.True(t, res.Lot.RemainingQty.Equal(d("5")))
	assert.Equal(t, entity.MovementEntry, res.Movement.Kind)
	assert.Equal(t, entity.DirectionIn, res.Movement.Direction)
	require.NotNil(t, res.Movement.LotID)
	assert.Equal(t, res.Lot.ID, *res.Movement.LotID)

	bal := f.store.Balance(p.ID)
	assert.Equal(t, "15.000", bal.Quantity.StringFixed(3))
	assert.Equal(t, "6.0000", bal.AverageCost.StringFixed(4), "(10*5 + 5*8) / 15")
}

func TestRecordEntry_SinCostoNoAlteraPromedio(t *testing.T) {
	f := newFixture(t)
	p := f.store.SeedProduct("SKU-1", "Camiseta")

	f.entry(t, p.ID, "10", base, dp("5"), "")
	f.entry(t, p.ID, "10", base, nil, "")

	bal := f.store.Balance(p.ID)
	assert.Equal(t, "20.000", bal.Quantity.StringFixed(3))
	assert.Equal(t, "5.0000", bal.AverageCost.StringFixed(4))
}

func TestRecordExit_ConsumeLotesFIFO(t *testing.T) {
	f := newFixture(t)
	p := f.store.SeedProduct("SKU-1", "Camiseta")

	// el lote más nuevo se registra primero: manda la fecha de entrada, no el orden de inserción
	f.entry(t, p.ID, "5", base.AddDate(0, 0, 2), nil, "")
	f.entry(t, p.ID, "10", base, nil, "")

	res, err := f.ledger.RecordExit(context.Background(), inventory.ExitInput{
		ProductID: p.ID,
		Quantity:  d("12"),
		Date:      base.AddDate(0, 0, 3),
	})
	require.NoError(t, err)
	require.Len(t, res.Consumed, 2)
	assert.True(t, res.Consumed[0].Quantity.Equal(d("10")))
	assert.True(t, res.Consumed[1].Quantity.Equal(d("2")))
	assert.Nil(t, res.Movement.LotID, "salida que toca dos lotes no apunta a uno solo")
	assert.Equal(t, entity.DirectionOut, res.Movement.Direction)

	lots := f.store.Lots(p.ID)
	require.Len(t, lots, 2)
	assert.True(t, lots[0].RemainingQty.IsZero())
	assert.True(t, lots[1].RemainingQty.Equal(d("3")))
	assert.Equal(t, "3.000", f.store.Balance(p.ID).Quantity.StringFixed(3))
}

func TestRecordExit_UnSoloLoteQuedaReferenciado(t *testing.T) {
	f := newFixture(t)
	p := f.store.SeedProduct("SKU-1", "Camiseta")
	in := f.entry(t, p.ID, "10", base, nil, "")

	res, err := f.ledger.RecordExit(context.Background(), inventory.ExitInput{ProductID: p.ID, Quantity: d("4")})
	require.NoError(t, err)
	require.NotNil(t, res.Movement.LotID)
	assert.Equal(t, in.Lot.ID, *res.Movement.LotID)
}

func TestRecordExit_StockInsuficienteNoModificaNada(t *testing.T) {
	f := newFixture(t)
	p := f.store.SeedProduct("SKU-1", "Camiseta")
	f.entry(t, p.ID, "5", base, nil, "")

	_, err := f.ledger.RecordExit(context.Background(), inventory.ExitInput{ProductID: p.ID, Quantity: d("6")})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	assert.Equal(t, "5.000", f.store.Balance(p.ID).Quantity.StringFixed(3))
	assert.Len(t, f.store.Movements(p.ID), 1)
	assert.True(t, f.store.Lots(p.ID)[0].RemainingQty.Equal(d("5")))
}

func TestRecordExit_UbicacionSinSaldo(t *testing.T) {
	f := newFixture(t)
	p := f.store.SeedProduct("SKU-1", "Camiseta")
	f.entry(t, p.ID, "5", base, nil, entity.LocationStore1)

	_, err := f.ledger.RecordExit(context.Background(), inventory.ExitInput{
		ProductID: p.ID, Quantity: d("1"), Location: entity.LocationStore2,
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, "5.000", f.store.Balance(p.ID).Quantity.StringFixed(3))
}

func TestLedger_ValidacionesDeEntrada(t *testing.T) {
	f := newFixture(t)
	p := f.store.SeedProduct("SKU-1", "Camiseta")
	ctx := context.Background()

	_, err := f.ledger.RecordEntry(ctx, inventory.EntryInput{ProductID: p.ID, Quantity: d("0")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.ledger.RecordEntry(ctx, inventory.EntryInput{ProductID: p.ID, Quantity: d("1"), UnitCost: dp("-1")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.ledger.RecordEntry(ctx, inventory.EntryInput{ProductID: p.ID, Quantity: d("1"), Location: "DEPOSITO"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.ledger.RecordEntry(ctx, inventory.EntryInput{ProductID: 9999, Quantity: d("1")})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.ledger.RecordExit(ctx, inventory.ExitInput{ProductID: p.ID, Quantity: d("-2")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.ledger.RecordAdjust(ctx, inventory.AdjustInput{ProductID: p.ID, Delta: d("0.0001")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "redondeado a 3 decimales el ajuste es cero")
}

func TestRecordAdjust_PositivoYNegativo(t *testing.T) {
	f := newFixture(t)
	p := f.store.SeedProduct("SKU-1", "Camiseta")
	ctx := context.Background()
	f.entry(t, p.ID, "10", base, dp("2"), "")

	up, err := f.ledger.RecordAdjust(ctx, inventory.AdjustInput{ProductID: p.ID, Delta: d("3")})
	require.NoError(t, err)
	assert.Equal(t, entity.MovementAdjust, up.Movement.Kind)
	assert.Equal(t, entity.DirectionIn, up.Movement.Direction)
	require.NotNil(t, up.Lot)

	down, err := f.ledger.RecordAdjust(ctx, inventory.AdjustInput{ProductID: p.ID, Delta: d("-11")})
	require.NoError(t, err)
	assert.Equal(t, entity.DirectionOut, down.Movement.Direction)
	assert.True(t, down.Movement.Quantity.Equal(d("11")))

	bal := f.store.Balance(p.ID)
	assert.Equal(t, "2.000", bal.Quantity.StringFixed(3))
	assert.Equal(t, "2.0000", bal.AverageCost.StringFixed(4), "el ajuste no cambia el costo")

	_, err = f.ledger.RecordAdjust(ctx, inventory.AdjustInput{ProductID: p.ID, Delta: d("-3")})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
}

func TestLedger_FalloInyectadoHaceRollback(t *testing.T) {
	f := newFixture(t)
	p := f.store.SeedProduct("SKU-1", "Camiseta")
	boom := errors.New("disco lleno")
	f.store.FailOn("Movements.Create", boom)

	_, err := f.ledger.RecordEntry(context.Background(), inventory.EntryInput{ProductID: p.ID, Quantity: d("10")})
	assert.ErrorIs(t, err, boom)

	assert.True(t, f.store.Balance(p.ID).Quantity.IsZero())
	assert.Empty(t, f.store.Lots(p.ID), "el lote creado antes del fallo no se confirma")
	assert.Empty(t, f.store.Movements(p.ID))
}

func TestRecordExit_ConcurrenteNuncaDejaSaldoNegativo(t *testing.T) {
	f := newFixture(t)
	p := f.store.SeedProduct("SKU-1", "Camiseta")
	f.entry(t, p.ID, "10", base, nil, "")

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		ok, fail int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.ledger.RecordExit(context.Background(), inventory.ExitInput{ProductID: p.ID, Quantity: d("1")})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				ok++
			} else if errors.Is(err, domain.ErrInsufficientStock) {
				fail++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, ok)
	assert.Equal(t, 10, fail)
	assert.True(t, f.store.Balance(p.ID).Quantity.IsZero())
}

// ──────────────────────────────────────────────────────────────────────────────
// Ubicaciones, reconciliación e historial
// ──────────────────────────────────────────────────────────────────────────────

func TestLedger_UbicacionSeMueveConElSaldo(t *testing.T) {
	f := newFixture(t)
	p := f.store.SeedProduct("SKU-1", "Camiseta")
	f.entry(t, p.ID, "10", base, nil, entity.LocationStore1)

	_, err := f.ledger.RecordExit(context.Background(), inventory.ExitInput{
		ProductID: p.ID, Quantity: d("4"), Location: entity.LocationStore1,
	})
	require.NoError(t, err)

	bal, locs, err := f.ledger.Balance(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, "6.000", bal.Quantity.StringFixed(3))
	require.Len(t, locs, 1)
	assert.Equal(t, entity.LocationStore1, locs[0].Location)
	assert.Equal(t, "6.000", locs[0].Quantity.StringFixed(3))
}

func TestReconcile_SaldoCoincideConLedger(t *testing.T) {
	f := newFixture(t)
	p := f.store.SeedProduct("SKU-1", "Camiseta")
	ctx := context.Background()
	f.entry(t, p.ID, "10", base, nil, "")
	f.entry(t, p.ID, "2.5", base, nil, "")
	_, err := f.ledger.RecordExit(ctx, inventory.ExitInput{ProductID: p.ID, Quantity: d("7.25")})
	require.NoError(t, err)
	_, err = f.ledger.RecordAdjust(ctx, inventory.AdjustInput{ProductID: p.ID, Delta: d("-0.25")})
	require.NoError(t, err)

	rec, err := f.ledger.Reconcile(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, rec.Consistent)
	assert.Equal(t, "5.000", rec.Cached.StringFixed(3))
	assert.True(t, rec.Replayed.Equal(rec.Cached))
	assert.True(t, rec.LotsRemaining.Equal(rec.Cached))
}

func TestHistory_MasRecientesPrimeroYLimite(t *testing.T) {
	f := newFixture(t)
	p := f.store.SeedProduct("SKU-1", "Camiseta")
	for i := 0; i < 3; i++ {
		f.entry(t, p.ID, "1", base.AddDate(0, 0, i), nil, "")
	}

	all, err := f.ledger.History(context.Background(), repository.MovementFilter{ProductID: p.ID})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.True(t, all[0].Date.After(all[2].Date))

	page, err := f.ledger.History(context.Background(), repository.MovementFilter{ProductID: p.ID, Limit: 2})
	require.NoError(t, err)
	assert.Len(t, page, 2)
}

func TestAging_DiasEnStock(t *testing.T) {
	f := newFixture(t)
	p := f.store.SeedProduct("SKU-1", "Camiseta")
	f.entry(t, p.ID, "3", base.AddDate(0, 0, -10), nil, "")
	f.entry(t, p.ID, "3", base.AddDate(0, 0, -2), nil, "")

	ages, err := f.lots.Aging(context.Background(), p.ID)
	require.NoError(t, err)
	require.Len(t, ages, 2)
	assert.Equal(t, 10, ages[0].DaysInStock)
	assert.Equal(t, 2, ages[1].DaysInStock)
}

// ──────────────────────────────────────────────────────────────────────────────
// Alertas de stock bajo
// ──────────────────────────────────────────────────────────────────────────────

func TestAlertas_AbreResuelveYReabre(t *testing.T) {
	f := newFixture(t)
	p := f.store.SeedProduct("SKU-1", "Camiseta")
	ctx := context.Background()

	_, err := f.ledger.SetThresholds(ctx, p.ID, d("5"), d("20"), d("0"))
	require.NoError(t, err)
	open, err := f.alerts.ListOpen(ctx)
	require.NoError(t, err)
	require.Len(t, open, 1, "saldo 0 <= mínimo 5")

	f.entry(t, p.ID, "10", base, nil, "")
	open, err = f.alerts.ListOpen(ctx)
	require.NoError(t, err)
	assert.Empty(t, open)

	_, err = f.ledger.RecordExit(ctx, inventory.ExitInput{ProductID: p.ID, Quantity: d("6")})
	require.NoError(t, err)

	alerts := f.store.Alerts(p.ID)
	require.Len(t, alerts, 2)
	assert.Equal(t, entity.AlertResolved, alerts[0].Status)
	assert.NotNil(t, alerts[0].ResolvedAt)
	assert.Equal(t, entity.AlertOpen, alerts[1].Status)
	assert.Equal(t, "4.000", alerts[1].BalanceSnapshot.StringFixed(3))
	assert.Equal(t, "5.000", alerts[1].MinimumSnapshot.StringFixed(3))
}

func TestAlertas_CicloDeVida(t *testing.T) {
	f := newFixture(t)
	p := f.store.SeedProduct("SKU-1", "Camiseta")
	ctx := context.Background()
	f.entry(t, p.ID, "10", base, nil, "")
	_, err := f.ledger.SetThresholds(ctx, p.ID, d("5"), d("0"), d("0"))
	require.NoError(t, err)

	steps := []struct {
		name       string
		run        func() error
		alerts     int
		openStatus entity.AlertStatus
	}{
		{"saldo 10 sobre el mínimo", func() error { return nil }, 0, ""},
		{"salida de 6 abre la alerta", func() error {
			_, err := f.ledger.RecordExit(ctx, inventory.ExitInput{ProductID: p.ID, Quantity: d("6")})
			return err
		}, 1, entity.AlertOpen},
		{"entrada de 2 la resuelve", func() error {
			_, err := f.ledger.RecordEntry(ctx, inventory.EntryInput{ProductID: p.ID, Quantity: d("2")})
			return err
		}, 1, entity.AlertResolved},
		{"reevaluar sin cambios no crea otra", func() error {
			_, err := f.alerts.Evaluate(ctx, p.ID)
			return err
		}, 1, entity.AlertResolved},
	}
	for _, st := range steps {
		require.NoError(t, st.run(), st.name)
		alerts := f.store.Alerts(p.ID)
		require.Len(t, alerts, st.alerts, st.name)
		if st.alerts > 0 {
			assert.Equal(t, st.openStatus, alerts[0].Status, st.name)
			assert.Equal(t, "4.000", alerts[0].BalanceSnapshot.StringFixed(3), st.name)
			assert.Equal(t, "5.000", alerts[0].MinimumSnapshot.StringFixed(3), st.name)
		}
	}
	assert.Equal(t, "6.000", f.store.Balance(p.ID).Quantity.StringFixed(3))
}

func TestAlertas_NuncaMasDeUnaAbierta(t *testing.T) {
	f := newFixture(t)
	p := f.store.SeedProduct("SKU-1", "Camiseta")
	ctx := context.Background()
	f.entry(t, p.ID, "10", base, nil, "")
	_, err := f.ledger.SetThresholds(ctx, p.ID, d("8"), d("0"), d("0"))
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err := f.ledger.RecordExit(ctx, inventory.ExitInput{ProductID: p.ID, Quantity: d("1")})
		require.NoError(t, err)
	}

	alerts := f.store.Alerts(p.ID)
	require.Len(t, alerts, 1)
	assert.Equal(t, "7.000", alerts[0].BalanceSnapshot.StringFixed(3), "la alerta abierta se refresca con el último saldo")
}

func TestSetThresholds_Validaciones(t *testing.T) {
	f := newFixture(t)
	p := f.store.SeedProduct("SKU-1", "Camiseta")
	ctx := context.Background()

	_, err := f.ledger.SetThresholds(ctx, p.ID, d("-1"), d("0"), d("0"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = f.ledger.SetThresholds(ctx, p.ID, d("10"), d("5"), d("0"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = f.ledger.SetThresholds(ctx, p.ID, d("1"), d("5"), d("4"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = f.ledger.SetThresholds(ctx, 9999, d("1"), d("5"), d("10"))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestEvaluateAll_BarreProductosConSaldo(t *testing.T) {
	f := newFixture(t)
	a := f.store.SeedProduct("SKU-A", "A")
	b := f.store.SeedProduct("SKU-B", "B")
	ctx := context.Background()
	f.entry(t, a.ID, "10", base, nil, "")
	f.entry(t, b.ID, "1", base, nil, "")
	_, err := f.ledger.SetThresholds(ctx, b.ID, d("2"), d("0"), d("0"))
	require.NoError(t, err)

	res, err := f.alerts.EvaluateAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Evaluated)
	require.Len(t, res.Open, 1)
	assert.Equal(t, b.ID, res.Open[0].ProductID)
}

// ──────────────────────────────────────────────────────────────────────────────
// Compras y conteos
// ──────────────────────────────────────────────────────────────────────────────

func TestReceivePurchase_Idempotente(t *testing.T) {
	f := newFixture(t)
	a := f.store.SeedProduct("SKU-A", "A")
	b := f.store.SeedProduct("SKU-B", "B")
	ctx := context.Background()
	receipt := inventory.PurchaseReceipt{
		PurchaseID: 77,
		Date:       base,
		Location:   entity.LocationStore1,
		Lines: []inventory.PurchaseLine{
			{LineID: 2, ProductID: b.ID, Quantity: d("4"), UnitCost: d("3.5")},
			{LineID: 1, ProductID: a.ID, Quantity: d("10"), UnitCost: d("2")},
		},
	}

	first, err := f.ledger.ReceivePurchase(ctx, receipt)
	require.NoError(t, err)
	assert.Len(t, first.Created, 2)
	assert.Equal(t, 0, first.Skipped)

	second, err := f.ledger.ReceivePurchase(ctx, receipt)
	require.NoError(t, err)
	assert.Empty(t, second.Created)
	assert.Equal(t, 2, second.Skipped)

	assert.Equal(t, "10.000", f.store.Balance(a.ID).Quantity.StringFixed(3))
	assert.Equal(t, "3.5000", f.store.Balance(b.ID).AverageCost.StringFixed(4))
	assert.Equal(t, "4.000", f.store.LocationQty(b.ID, entity.LocationStore1).StringFixed(3))
}

func TestRecordEntry_OrigenDeCompraRepetidoEsDuplicado(t *testing.T) {
	f := newFixture(t)
	p := f.store.SeedProduct("SKU-1", "Camiseta")
	ctx := context.Background()
	in := inventory.EntryInput{
		ProductID: p.ID,
		Quantity:  d("3"),
		Date:      base,
		UnitCost:  dp("2"),
		Origin:    &inventory.Origin{Type: entity.OriginPurchase, ID: 77, LineID: 1},
	}

	_, err := f.ledger.RecordEntry(ctx, in)
	require.NoError(t, err)
	_, err = f.ledger.RecordEntry(ctx, in)
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	assert.Equal(t, "3.000", f.store.Balance(p.ID).Quantity.StringFixed(3))
	assert.Len(t, f.store.Movements(p.ID), 1)
	assert.Len(t, f.store.Lots(p.ID), 1)
}

func TestApplyStockCount_AjustaUbicacionYConsolidado(t *testing.T) {
	f := newFixture(t)
	p := f.store.SeedProduct("SKU-1", "Camiseta")
	ctx := context.Background()
	f.entry(t, p.ID, "10", base, dp("4"), entity.LocationStore1)

	res, err := f.ledger.ApplyStockCount(ctx, inventory.StockCount{
		Location: entity.LocationStore1,
		Items:    []inventory.CountItem{{ProductID: p.ID, Counted: d("7")}},
	})
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, "-3.000", res[0].Difference.StringFixed(3))
	require.NotNil(t, res[0].Movement)
	assert.Equal(t, entity.MovementAdjust, res[0].Movement.Kind)
	assert.Equal(t, entity.OriginCount, res[0].Movement.OriginType)
	assert.Nil(t, res[0].Movement.OriginID)

	res, err = f.ledger.ApplyStockCount(ctx, inventory.StockCount{
		Location: entity.LocationStore2,
		Items:    []inventory.CountItem{{ProductID: p.ID, Counted: d("2"), UnitCost: dp("5")}},
	})
	require.NoError(t, err)
	assert.Equal(t, "2.000", res[0].Difference.StringFixed(3))

	assert.Equal(t, "7.000", f.store.LocationQty(p.ID, entity.LocationStore1).StringFixed(3))
	assert.Equal(t, "2.000", f.store.LocationQty(p.ID, entity.LocationStore2).StringFixed(3))
	bal := f.store.Balance(p.ID)
	assert.Equal(t, "9.000", bal.Quantity.StringFixed(3))
	assert.Equal(t, "5.0000", bal.AverageCost.StringFixed(4))

	rec, err := f.ledger.Reconcile(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, rec.Consistent)
}

func TestApplyStockCount_SinDiferenciaNoCreaMovimiento(t *testing.T) {
	f := newFixture(t)
	p := f.store.SeedProduct("SKU-1", "Camiseta")
	f.entry(t, p.ID, "3", base, nil, entity.LocationStore1)

	res, err := f.ledger.ApplyStockCount(context.Background(), inventory.StockCount{
		Location: entity.LocationStore1,
		Items:    []inventory.CountItem{{ProductID: p.ID, Counted: d("3")}},
	})
	require.NoError(t, err)
	assert.Nil(t, res[0].Movement)
	assert.Len(t, f.store.Movements(p.ID), 1)
}

func TestApplyStockCount_Validaciones(t *testing.T) {
	f := newFixture(t)
	p := f.store.SeedProduct("SKU-1", "Camiseta")
	ctx := context.Background()

	_, err := f.ledger.ApplyStockCount(ctx, inventory.StockCount{Location: entity.LocationStore1})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.ledger.ApplyStockCount(ctx, inventory.StockCount{
		Location: "DEPOSITO",
		Items:    []inventory.CountItem{{ProductID: p.ID, Counted: d("1")}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.ledger.ApplyStockCount(ctx, inventory.StockCount{
		Location: entity.LocationStore1,
		Items: []inventory.CountItem{
			{ProductID: p.ID, Counted: d("1")},
			{ProductID: p.ID, Counted: d("2")},
		},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestReplenishment_SugiereHastaElIdeal(t *testing.T) {
	f := newFixture(t)
	a := f.store.SeedProduct("SKU-A", "A")
	b := f.store.SeedProduct("SKU-B", "B")
	c := f.store.SeedProduct("SKU-C", "C")
	ctx := context.Background()
	f.entry(t, a.ID, "2", base, dp("10"), "")
	f.entry(t, b.ID, "1", base, dp("3"), "")
	f.entry(t, c.ID, "50", base, nil, "")
	_, err := f.ledger.SetThresholds(ctx, a.ID, d("5"), d("12"), d("0"))
	require.NoError(t, err)
	_, err = f.ledger.SetThresholds(ctx, b.ID, d("4"), d("0"), d("0"))
	require.NoError(t, err)
	_, err = f.ledger.SetThresholds(ctx, c.ID, d("5"), d("10"), d("0"))
	require.NoError(t, err)

	items, err := f.ledger.Replenishment(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, a.ID, items[0].ProductID)
	assert.Equal(t, 1, items[0].Priority)
	assert.Equal(t, "10.000", items[0].SuggestedQty.StringFixed(3))
	assert.Equal(t, "100.00", items[0].EstimatedCost.StringFixed(2))

	assert.Equal(t, b.ID, items[1].ProductID)
	assert.Equal(t, "3.000", items[1].SuggestedQty.StringFixed(3), "sin ideal ni máximo repone hasta el mínimo")
}
