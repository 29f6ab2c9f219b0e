package http_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/fulfillment-ledger/internal/application/dto"
	"github.com/jhoicas/fulfillment-ledger/internal/application/inventory"
	"github.com/jhoicas/fulfillment-ledger/internal/application/sales"
	"github.com/jhoicas/fulfillment-ledger/internal/domain/entity"
	apphttp "github.com/jhoicas/fulfillment-ledger/internal/interfaces/http"
	"github.com/jhoicas/fulfillment-ledger/internal/testutil"
	pkgjwt "github.com/jhoicas/fulfillment-ledger/pkg/jwt"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

type apiFixture struct {
	app   *fiber.App
	store *testutil.Store
}

func newAPI(t *testing.T) *apiFixture {
	t.Helper()
	store := testutil.NewStore()
	log := zerolog.Nop()
	clock := testutil.FixedClock(time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC))
	locs := inventory.Locations{entity.LocationStore1, entity.LocationStore2}

	lots := inventory.NewLotTracker(store)
	lots.Now = clock
	alerts := inventory.NewAlertEngine(store, log)
	alerts.Now = clock
	ledger := inventory.NewStockLedger(store, lots, alerts, locs, log)
	ledger.Now = clock
	transfers := inventory.NewTransferEngine(store, locs, log)
	transfers.Now = clock
	stats := inventory.NewStockStatistics(store)
	stats.Now = clock
	receivables := sales.NewReceivableGenerator()
	receivables.Now = clock
	documents := sales.NewDocumentGenerator()
	documents.Now = clock
	orders := sales.NewOrderLifecycle(store, ledger, receivables, documents, log)
	orders.Now = clock

	app := fiber.New(fiber.Config{ErrorHandler: apphttp.ErrorHandler})
	apphttp.Router(app, apphttp.RouterDeps{
		Ledger:    ledger,
		Transfers: transfers,
		Lots:      lots,
		Alerts:    alerts,
		Stats:     stats,
		Orders:    orders,
		Locations: locs,
		JWTSecret: testJWTSecret,
	})
	return &apiFixture{app: app, store: store}
}

// call lanza la petición con un token del rol indicado (ubicación LOJA_1).
func (f *apiFixture) call(t *testing.T, method, path, role string, body interface{}) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	tok, err := pkgjwt.Generate(testJWTSecret, testUserID, testLocation, role, testIssuer, testExpMin)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+tok)
	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// ──────────────────────────────────────────────────────────────────────────────
// Inventario
// ──────────────────────────────────────────────────────────────────────────────

func TestInventario_EntradaYSalida(t *testing.T) {
	f := newAPI(t)
	p := f.store.SeedProduct("SKU-1", "Camiseta")

	resp := f.call(t, http.MethodPost, "/api/inventory/entries", "bodeguero", fiber.Map{
		"product_id": p.ID, "quantity": "10", "unit_cost": "4.50",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var entry dto.MovementResultResponse
	decode(t, resp, &entry)
	assert.Equal(t, "ENTRY", entry.Movement.Kind)
	assert.Equal(t, entity.LocationStore1, entry.Movement.Location, "sin location en el body se usa la del token")
	assert.True(t, entry.Balance.Quantity.Equal(dec("10")))
	require.NotNil(t, entry.LotID)

	resp = f.call(t, http.MethodPost, "/api/inventory/exits", "bodeguero", fiber.Map{
		"product_id": p.ID, "quantity": "3",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var exit dto.MovementResultResponse
	decode(t, resp, &exit)
	assert.True(t, exit.Balance.Quantity.Equal(dec("7")))
	require.Len(t, exit.Consumed, 1)
	assert.Equal(t, *entry.LotID, exit.Consumed[0].LotID)

	assert.True(t, f.store.LocationQty(p.ID, entity.LocationStore1).Equal(dec("7")))
}

func TestInventario_SalidaSinStock_Retorna409(t *testing.T) {
	f := newAPI(t)
	p := f.store.SeedProduct("SKU-1", "Camiseta")

	resp := f.call(t, http.MethodPost, "/api/inventory/exits", "admin", fiber.Map{
		"product_id": p.ID, "quantity": "1",
	})
	var body dto.ErrorResponse
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	decode(t, resp, &body)
	assert.Equal(t, "INSUFFICIENT_STOCK", body.Code)
	assert.Empty(t, f.store.Movements(p.ID))
}

func TestInventario_BodySinProducto_Retorna400ConDetalle(t *testing.T) {
	f := newAPI(t)

	resp := f.call(t, http.MethodPost, "/api/inventory/entries", "admin", fiber.Map{"quantity": "1"})
	var body dto.ErrorResponse
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	decode(t, resp, &body)
	assert.Equal(t, "VALIDATION", body.Code)
	require.NotEmpty(t, body.Details)
	assert.Equal(t, "product_id", body.Details[0].Field)
}

func TestInventario_ProductoInexistente_Retorna404(t *testing.T) {
	f := newAPI(t)

	resp := f.call(t, http.MethodPost, "/api/inventory/entries", "admin", fiber.Map{
		"product_id": 999, "quantity": "1",
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestInventario_IDInvalido_Retorna400(t *testing.T) {
	f := newAPI(t)

	resp := f.call(t, http.MethodGet, "/api/inventory/products/abc", "admin", nil)
	var body dto.ErrorResponse
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	decode(t, resp, &body)
	assert.Equal(t, "INVALID_PARAM", body.Code)
}

func TestInventario_VendedorNoRegistraEntradas(t *testing.T) {
	f := newAPI(t)
	p := f.store.SeedProduct("SKU-1", "Camiseta")

	resp := f.call(t, http.MethodPost, "/api/inventory/entries", "vendedor", fiber.Map{
		"product_id": p.ID, "quantity": "1",
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Empty(t, f.store.Movements(p.ID))
}

func TestInventario_TrasladoYSaldoPorUbicacion(t *testing.T) {
	f := newAPI(t)
	p := f.store.SeedProduct("SKU-1", "Camiseta")
	resp := f.call(t, http.MethodPost, "/api/inventory/entries", "admin", fiber.Map{"product_id": p.ID, "quantity": "5"})
	resp.Body.Close()

	resp = f.call(t, http.MethodPost, "/api/inventory/transfers", "bodeguero", fiber.Map{
		"product_id": p.ID, "from": "loja_1", "to": "LOJA_2", "quantity": "2",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var tr dto.TransferResponse
	decode(t, resp, &tr)
	assert.True(t, tr.FromBalance.Equal(dec("3")))
	assert.True(t, tr.ToBalance.Equal(dec("2")))

	resp = f.call(t, http.MethodGet, fmt.Sprintf("/api/inventory/products/%d", p.ID), "vendedor", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var bal dto.BalanceResponse
	decode(t, resp, &bal)
	assert.True(t, bal.Quantity.Equal(dec("5")), "el traslado no altera el saldo consolidado")
	assert.Len(t, bal.Locations, 2)
}

func TestInventario_TrasladoUbicacionDesconocida_Retorna400(t *testing.T) {
	f := newAPI(t)
	p := f.store.SeedProduct("SKU-1", "Camiseta")

	resp := f.call(t, http.MethodPost, "/api/inventory/transfers", "admin", fiber.Map{
		"product_id": p.ID, "from": "LOJA_1", "to": "DEPOSITO", "quantity": "1",
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestInventario_UmbralesAbrenAlerta(t *testing.T) {
	f := newAPI(t)
	p := f.store.SeedProduct("SKU-1", "Camiseta")
	resp := f.call(t, http.MethodPost, "/api/inventory/entries", "admin", fiber.Map{"product_id": p.ID, "quantity": "2"})
	resp.Body.Close()

	resp = f.call(t, http.MethodPut, fmt.Sprintf("/api/inventory/products/%d/thresholds", p.ID), "admin", fiber.Map{
		"minimum": "5", "ideal": "10", "maximum": "20",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = f.call(t, http.MethodGet, "/api/inventory/alerts", "vendedor", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var alerts struct {
		Total  int                 `json:"total"`
		Alerts []dto.AlertResponse `json:"alerts"`
	}
	decode(t, resp, &alerts)
	require.Equal(t, 1, alerts.Total)
	assert.Equal(t, p.ID, alerts.Alerts[0].ProductID)

	resp = f.call(t, http.MethodGet, "/api/inventory/replenishment", "bodeguero", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var repl struct {
		Replenishments []dto.ReplenishmentSuggestionDTO `json:"replenishments"`
	}
	decode(t, resp, &repl)
	require.Len(t, repl.Replenishments, 1)
	assert.True(t, repl.Replenishments[0].SuggestedOrderQty.Equal(dec("8")))
}

func TestInventario_SalidasOperativasUsanUbicacionDelToken(t *testing.T) {
	f := newAPI(t)
	p := f.store.SeedProduct("SKU-1", "Camiseta")
	resp := f.call(t, http.MethodPost, "/api/inventory/entries", "admin", fiber.Map{"product_id": p.ID, "quantity": "10"})
	resp.Body.Close()
	resp = f.call(t, http.MethodPost, "/api/inventory/entries", "admin", fiber.Map{
		"product_id": p.ID, "quantity": "5", "location": "LOJA_2",
	})
	resp.Body.Close()

	resp = f.call(t, http.MethodPost, "/api/inventory/operational-exits", "bodeguero", fiber.Map{
		"type": "EXCHANGE", "note": "cambio de talla",
		"items": []fiber.Map{{"product_id": p.ID, "quantity": "2"}},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var out struct {
		BatchRef       string                        `json:"batch_ref"`
		TotalItems     int                           `json:"total_items"`
		ProcessedItems int                           `json:"processed_items"`
		Exits          []dto.OperationalExitResponse `json:"exits"`
	}
	decode(t, resp, &out)
	assert.NotEmpty(t, out.BatchRef)
	assert.Equal(t, 1, out.TotalItems)
	assert.Equal(t, 1, out.ProcessedItems)
	require.Len(t, out.Exits, 1)
	assert.Equal(t, entity.LocationStore1, out.Exits[0].Location)
	assert.Equal(t, "EXCHANGE", out.Exits[0].Type)

	assert.True(t, f.store.Balance(p.ID).Quantity.Equal(dec("13")))
	assert.True(t, f.store.LocationQty(p.ID, entity.LocationStore1).Equal(dec("8")))
	assert.True(t, f.store.LocationQty(p.ID, entity.LocationStore2).Equal(dec("5")))
}

func TestInventario_SalidaOperativaTipoInvalido_Retorna400(t *testing.T) {
	f := newAPI(t)
	p := f.store.SeedProduct("SKU-1", "Camiseta")

	resp := f.call(t, http.MethodPost, "/api/inventory/operational-exits", "admin", fiber.Map{
		"type": "ROBO", "items": []fiber.Map{{"product_id": p.ID, "quantity": "1"}},
	})
	var body dto.ErrorResponse
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	decode(t, resp, &body)
	assert.Equal(t, "VALIDATION", body.Code)
}

func TestInventario_SalidaOperativaVendedor_Retorna403(t *testing.T) {
	f := newAPI(t)
	p := f.store.SeedProduct("SKU-1", "Camiseta")

	resp := f.call(t, http.MethodPost, "/api/inventory/operational-exits", "vendedor", fiber.Map{
		"type": "LOSS", "items": []fiber.Map{{"product_id": p.ID, "quantity": "1"}},
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestInventario_Estadisticas(t *testing.T) {
	f := newAPI(t)
	p := f.store.SeedProduct("SKU-1", "Camiseta")
	f.store.SeedProduct("SKU-2", "Gorra")
	resp := f.call(t, http.MethodPost, "/api/inventory/entries", "admin", fiber.Map{
		"product_id": p.ID, "quantity": "10", "date": "2024-04-30T12:00:00Z",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()
	resp = f.call(t, http.MethodPost, "/api/inventory/exits", "admin", fiber.Map{"product_id": p.ID, "quantity": "5"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = f.call(t, http.MethodGet, "/api/inventory/statistics", "bodeguero", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var report struct {
		Total    int                             `json:"total"`
		Products []dto.ProductStatisticsResponse `json:"products"`
	}
	decode(t, resp, &report)
	require.Equal(t, 2, report.Total)
	assert.Equal(t, p.ID, report.Products[0].ProductID)
	assert.True(t, report.Products[0].AverageDaysInStock.Equal(dec("10")))
	assert.True(t, report.Products[0].Turnover.Equal(dec("1")))
	assert.True(t, report.Products[1].Balance.IsZero())

	resp = f.call(t, http.MethodGet, fmt.Sprintf("/api/inventory/products/%d/statistics?days=5", p.ID), "vendedor", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var one dto.ProductStatisticsResponse
	decode(t, resp, &one)
	assert.Equal(t, "SKU-1", one.SKU)
	assert.True(t, one.AverageDaysInStock.IsZero(), "el lote entró antes de la ventana")
	assert.True(t, one.Balance.Equal(dec("5")))
}

func TestInventario_EstadisticasParametrosInvalidos(t *testing.T) {
	f := newAPI(t)
	p := f.store.SeedProduct("SKU-1", "Camiseta")

	resp := f.call(t, http.MethodGet, "/api/inventory/statistics?months=-1", "admin", nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = f.call(t, http.MethodGet, "/api/inventory/statistics", "vendedor", nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = f.call(t, http.MethodGet, fmt.Sprintf("/api/inventory/products/%d/statistics", p.ID+100), "admin", nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// Pedidos
// ──────────────────────────────────────────────────────────────────────────────

func TestPedidos_CrearFacturarYCancelar(t *testing.T) {
	f := newAPI(t)
	p := f.store.SeedProduct("SKU-1", "Camiseta")
	cust := f.store.SeedCustomer("Ana Souza", "123")
	resp := f.call(t, http.MethodPost, "/api/inventory/entries", "admin", fiber.Map{"product_id": p.ID, "quantity": "10"})
	resp.Body.Close()

	resp = f.call(t, http.MethodPost, "/api/orders", "vendedor", fiber.Map{
		"customer_id":       cust.ID,
		"payment_method":    "INSTALLMENT_SLIP",
		"installment_count": 2,
		"lines": []fiber.Map{
			{"product_id": p.ID, "quantity": "2", "unit_price": "50.00"},
		},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created dto.OrderDetailResponse
	decode(t, resp, &created)
	assert.Equal(t, "DRAFT", created.Order.Status)
	assert.Equal(t, fmt.Sprintf("VEN-%06d", created.Order.ID), created.Order.Code)
	assert.Equal(t, entity.LocationStore1, created.Order.Location)
	assert.True(t, created.Order.Total.Equal(dec("100")))

	billPath := fmt.Sprintf("/api/orders/%d/bill", created.Order.ID)
	resp = f.call(t, http.MethodPost, billPath, "vendedor", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var billed dto.BillingResponse
	decode(t, resp, &billed)
	assert.Equal(t, "BILLED", billed.Order.Status)
	assert.Equal(t, 1, billed.MovementsCreated)
	assert.Equal(t, 2, billed.ReceivablesCreated)
	assert.Equal(t, 2, billed.DocumentsCreated)
	assert.True(t, f.store.Balance(p.ID).Quantity.Equal(dec("8")))

	resp = f.call(t, http.MethodPost, billPath, "vendedor", nil)
	decode(t, resp, &billed)
	assert.True(t, billed.AlreadyProcessed, "facturar de nuevo no crea nada")
	assert.Equal(t, 0, billed.MovementsCreated)

	resp = f.call(t, http.MethodPost, fmt.Sprintf("/api/orders/%d/cancel", created.Order.ID), "admin", fiber.Map{"reason": "cliente desistió"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var cancelled dto.CancellationResponse
	decode(t, resp, &cancelled)
	assert.Equal(t, "CANCELLED", cancelled.Order.Status)
	assert.Equal(t, 1, cancelled.Reversals)
	assert.True(t, f.store.Balance(p.ID).Quantity.Equal(dec("10")))

	resp = f.call(t, http.MethodGet, fmt.Sprintf("/api/orders/%d", created.Order.ID), "bodeguero", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var detail dto.OrderDetailResponse
	decode(t, resp, &detail)
	assert.Equal(t, "CANCELLED", detail.Order.Status)
	assert.NotEmpty(t, detail.Events)
}

func TestPedidos_FormaDePagoInvalida_Retorna400(t *testing.T) {
	f := newAPI(t)
	p := f.store.SeedProduct("SKU-1", "Camiseta")
	cust := f.store.SeedCustomer("Ana Souza", "123")

	resp := f.call(t, http.MethodPost, "/api/orders", "vendedor", fiber.Map{
		"customer_id":    cust.ID,
		"payment_method": "BITCOIN",
		"lines":          []fiber.Map{{"product_id": p.ID, "quantity": "1", "unit_price": "1"}},
	})
	var body dto.ErrorResponse
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	decode(t, resp, &body)
	assert.Equal(t, "VALIDATION", body.Code)
}

func TestPedidos_BodegueroNoFactura(t *testing.T) {
	f := newAPI(t)

	resp := f.call(t, http.MethodPost, "/api/orders/1/bill", "bodeguero", nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestPedidos_Inexistente_Retorna404(t *testing.T) {
	f := newAPI(t)

	resp := f.call(t, http.MethodGet, "/api/orders/42", "admin", nil)
	var body dto.ErrorResponse
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	decode(t, resp, &body)
	assert.Equal(t, "NOT_FOUND", body.Code)
}
