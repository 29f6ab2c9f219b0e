package inventory_test

import (
	"context"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/fulfillment-ledger/internal/application/inventory"
	"github.com/jhoicas/fulfillment-ledger/internal/domain"
	"github.com/jhoicas/fulfillment-ledger/internal/domain/entity"
)

var batchRefPattern = regexp.MustCompile(`^L[0-9A-F]{10}$`)

func TestNewBatchRef_Formato(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		ref := inventory.NewBatchRef()
		assert.Regexp(t, batchRefPattern, ref)
		seen[ref] = true
	}
	assert.Len(t, seen, 50)
}

func TestTransfer_MueveSaldoEntreUbicaciones(t *testing.T) {
	f := newFixture(t)
	p := f.store.SeedProduct("SKU-1", "Camiseta")
	f.entry(t, p.ID, "10", base, nil, entity.LocationStore1)

	res, err := f.transfers.Transfer(context.Background(), inventory.TransferInput{
		ProductID: p.ID,
		From:      entity.LocationStore1,
		To:        entity.LocationStore2,
		Quantity:  d("4"),
		UserID:    "bodega",
	})
	require.NoError(t, err)
	assert.Regexp(t, batchRefPattern, res.Transfer.BatchRef)
	assert.Equal(t, "6.000", res.From.Quantity.StringFixed(3))
	assert.Equal(t, "4.000", res.To.Quantity.StringFixed(3))
	assert.Equal(t, base, res.Transfer.Date)

	assert.Equal(t, "6.000", f.store.LocationQty(p.ID, entity.LocationStore1).StringFixed(3))
	assert.Equal(t, "4.000", f.store.LocationQty(p.ID, entity.LocationStore2).StringFixed(3))
	assert.Equal(t, "10.000", f.store.Balance(p.ID).Quantity.StringFixed(3), "el saldo consolidado no cambia")
	assert.Len(t, f.store.Movements(p.ID), 1, "el traslado no escribe en el ledger")
}

func TestTransfer_ReferenciaInformadaSeConserva(t *testing.T) {
	f := newFixture(t)
	p := f.store.SeedProduct("SKU-1", "Camiseta")
	f.entry(t, p.ID, "10", base, nil, entity.LocationStore1)
	ctx := context.Background()

	for _, qty := range []string{"1", "2"} {
		res, err := f.transfers.Transfer(ctx, inventory.TransferInput{
			BatchRef:  " LABCDEF0123 ",
			ProductID: p.ID,
			From:      entity.LocationStore1,
			To:        entity.LocationStore2,
			Quantity:  d(qty),
		})
		require.NoError(t, err)
		assert.Equal(t, "LABCDEF0123", res.Transfer.BatchRef)
	}

	transfers := f.store.Transfers()
	require.Len(t, transfers, 2)
	for _, tr := range transfers {
		assert.Equal(t, "LABCDEF0123", tr.BatchRef)
	}
	assert.Equal(t, "3.000", f.store.LocationQty(p.ID, entity.LocationStore2).StringFixed(3))
}

func TestTransfer_MismaUbicacion(t *testing.T) {
	f := newFixture(t)
	p := f.store.SeedProduct("SKU-1", "Camiseta")

	_, err := f.transfers.Transfer(context.Background(), inventory.TransferInput{
		ProductID: p.ID, From: entity.LocationStore1, To: entity.LocationStore1, Quantity: d("1"),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestTransfer_Validaciones(t *testing.T) {
	f := newFixture(t)
	p := f.store.SeedProduct("SKU-1", "Camiseta")
	ctx := context.Background()

	_, err := f.transfers.Transfer(ctx, inventory.TransferInput{
		ProductID: p.ID, From: entity.LocationStore1, To: "DEPOSITO", Quantity: d("1"),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.transfers.Transfer(ctx, inventory.TransferInput{
		ProductID: p.ID, From: entity.LocationStore1, To: entity.LocationStore2, Quantity: d("0"),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.transfers.Transfer(ctx, inventory.TransferInput{
		ProductID: 9999, From: entity.LocationStore1, To: entity.LocationStore2, Quantity: d("1"),
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTransfer_SaldoInsuficienteEnOrigen(t *testing.T) {
	f := newFixture(t)
	p := f.store.SeedProduct("SKU-1", "Camiseta")
	f.entry(t, p.ID, "3", base, nil, entity.LocationStore1)

	_, err := f.transfers.Transfer(context.Background(), inventory.TransferInput{
		ProductID: p.ID, From: entity.LocationStore1, To: entity.LocationStore2, Quantity: d("3.5"),
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, "3.000", f.store.LocationQty(p.ID, entity.LocationStore1).StringFixed(3))
	assert.Empty(t, f.store.Transfers())
}

func TestTransferBatch_TodoONada(t *testing.T) {
	f := newFixture(t)
	a := f.store.SeedProduct("SKU-A", "A")
	b := f.store.SeedProduct("SKU-B", "B")
	f.entry(t, a.ID, "10", base, nil, entity.LocationStore1)
	f.entry(t, b.ID, "1", base, nil, entity.LocationStore1)

	_, err := f.transfers.TransferBatch(context.Background(), inventory.BatchTransferInput{
		From: entity.LocationStore1,
		To:   entity.LocationStore2,
		Items: []inventory.TransferItem{
			{ProductID: a.ID, Quantity: d("5")},
			{ProductID: b.ID, Quantity: d("3")},
		},
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, "10.000", f.store.LocationQty(a.ID, entity.LocationStore1).StringFixed(3))
	assert.True(t, f.store.LocationQty(a.ID, entity.LocationStore2).IsZero())
	assert.Empty(t, f.store.Transfers())
}

func TestTransferBatch_ComparteReferencia(t *testing.T) {
	f := newFixture(t)
	a := f.store.SeedProduct("SKU-A", "A")
	b := f.store.SeedProduct("SKU-B", "B")
	f.entry(t, a.ID, "10", base, nil, entity.LocationStore2)
	f.entry(t, b.ID, "2", base, nil, entity.LocationStore2)

	res, err := f.transfers.TransferBatch(context.Background(), inventory.BatchTransferInput{
		From: entity.LocationStore2,
		To:   entity.LocationStore1,
		Note: "reposición vitrina",
		Items: []inventory.TransferItem{
			{ProductID: b.ID, Quantity: d("2")},
			{ProductID: a.ID, Quantity: d("1")},
		},
	})
	require.NoError(t, err)
	assert.Regexp(t, batchRefPattern, res.BatchRef)
	require.Len(t, res.Transfers, 2)
	assert.Equal(t, a.ID, res.Transfers[0].Transfer.ProductID, "ítems en orden de producto")
	for _, tr := range res.Transfers {
		assert.Equal(t, res.BatchRef, tr.Transfer.BatchRef)
	}
	assert.Len(t, f.store.Transfers(), 2)
	assert.True(t, f.store.LocationQty(b.ID, entity.LocationStore2).IsZero())
}

func TestTransferBatch_SinItems(t *testing.T) {
	f := newFixture(t)
	_, err := f.transfers.TransferBatch(context.Background(), inventory.BatchTransferInput{
		From: entity.LocationStore1, To: entity.LocationStore2,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestParseLocations(t *testing.T) {
	locs := inventory.ParseLocations(" loja_1, LOJA_2 ,,")
	assert.Equal(t, inventory.Locations{"LOJA_1", "LOJA_2"}, locs)
	assert.True(t, locs.Contains("LOJA_2"))
	assert.False(t, locs.Contains("loja_2"))
	assert.False(t, locs.Contains(""))
	assert.True(t, inventory.Locations(nil).Contains("CUALQUIERA"))
}
