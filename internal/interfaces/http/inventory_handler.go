package http

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/fulfillment-ledger/internal/application/dto"
	"github.com/jhoicas/fulfillment-ledger/internal/application/inventory"
	"github.com/jhoicas/fulfillment-ledger/internal/domain/entity"
	"github.com/jhoicas/fulfillment-ledger/internal/domain/repository"
)

// InventoryHandler maneja las peticiones HTTP del ledger de stock (protegido).
type InventoryHandler struct {
	ledger    *inventory.StockLedger
	transfers *inventory.TransferEngine
	lots      *inventory.LotTracker
	alerts    *inventory.AlertEngine
	stats     *inventory.StockStatistics
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(ledger *inventory.StockLedger, transfers *inventory.TransferEngine, lots *inventory.LotTracker,
	alerts *inventory.AlertEngine, stats *inventory.StockStatistics) *InventoryHandler {
	return &InventoryHandler{ledger: ledger, transfers: transfers, lots: lots, alerts: alerts, stats: stats}
}

// RecordEntry godoc
// @Summary      Registrar entrada de mercadería
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.EntryRequest  true  "product_id, quantity, unit_cost opcional, location opcional"
// @Success      201   {object}  dto.MovementResultResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/inventory/entries [post]
func (h *InventoryHandler) RecordEntry(c *fiber.Ctx) error {
	var in dto.EntryRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	res, err := h.ledger.RecordEntry(c.Context(), inventory.EntryInput{
		ProductID: in.ProductID,
		Quantity:  in.Quantity,
		Date:      dateOf(in.Date),
		UnitCost:  in.UnitCost,
		Location:  locationOr(c, in.Location),
		Note:      in.Note,
		UserID:    GetUserID(c),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(movementResult(res))
}

// RecordExit godoc
// @Summary      Registrar salida de mercadería (consume lotes FIFO)
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ExitRequest  true  "product_id, quantity, location opcional"
// @Success      201   {object}  dto.MovementResultResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/exits [post]
func (h *InventoryHandler) RecordExit(c *fiber.Ctx) error {
	var in dto.ExitRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	res, err := h.ledger.RecordExit(c.Context(), inventory.ExitInput{
		ProductID: in.ProductID,
		Quantity:  in.Quantity,
		Date:      dateOf(in.Date),
		Location:  locationOr(c, in.Location),
		Note:      in.Note,
		UserID:    GetUserID(c),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(movementResult(res))
}

// RecordAdjust ajuste manual con signo.
func (h *InventoryHandler) RecordAdjust(c *fiber.Ctx) error {
	var in dto.AdjustRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	res, err := h.ledger.RecordAdjust(c.Context(), inventory.AdjustInput{
		ProductID: in.ProductID,
		Delta:     in.Delta,
		Date:      dateOf(in.Date),
		Location:  locationOr(c, in.Location),
		Note:      in.Note,
		UserID:    GetUserID(c),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(movementResult(res))
}

// Transfer godoc
// @Summary      Trasladar stock entre ubicaciones
// @Description  No genera movimientos en el ledger: el saldo consolidado no cambia.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.TransferRequest  true  "product_id, from, to, quantity"
// @Success      201   {object}  dto.TransferResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/transfers [post]
func (h *InventoryHandler) Transfer(c *fiber.Ctx) error {
	var in dto.TransferRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	res, err := h.transfers.Transfer(c.Context(), inventory.TransferInput{
		BatchRef:  in.BatchRef,
		ProductID: in.ProductID,
		From:      strings.ToUpper(in.From),
		To:        strings.ToUpper(in.To),
		Quantity:  in.Quantity,
		Date:      dateOf(in.Date),
		Note:      in.Note,
		UserID:    GetUserID(c),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.FromTransfer(res.Transfer, res.From, res.To))
}

// TransferBatch traslada varios productos en una sola transacción con referencia de lote compartida.
func (h *InventoryHandler) TransferBatch(c *fiber.Ctx) error {
	var in dto.BatchTransferRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	items := make([]inventory.TransferItem, 0, len(in.Items))
	for _, it := range in.Items {
		items = append(items, inventory.TransferItem{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	res, err := h.transfers.TransferBatch(c.Context(), inventory.BatchTransferInput{
		BatchRef: in.BatchRef,
		From:     strings.ToUpper(in.From),
		To:       strings.ToUpper(in.To),
		Date:     dateOf(in.Date),
		Note:     in.Note,
		UserID:   GetUserID(c),
		Items:    items,
	})
	if err != nil {
		return writeError(c, err)
	}
	out := make([]dto.TransferResponse, 0, len(res.Transfers))
	for _, t := range res.Transfers {
		out = append(out, dto.FromTransfer(t.Transfer, t.From, t.To))
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"batch_ref": res.BatchRef,
		"transfers": out,
	})
}

// RecordOperationalExits godoc
// @Summary      Registrar salidas operativas (uso interno, pérdida, cambio, muestra)
// @Description  Todos los ítems salen de la misma ubicación en una sola transacción.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.OperationalExitRequest  true  "type, location opcional, items"
// @Success      201   {object}  map[string]interface{}
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/operational-exits [post]
func (h *InventoryHandler) RecordOperationalExits(c *fiber.Ctx) error {
	var in dto.OperationalExitRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	items := make([]inventory.OperationalExitItem, 0, len(in.Items))
	for _, it := range in.Items {
		items = append(items, inventory.OperationalExitItem{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	res, err := h.ledger.RecordOperationalExitBatch(c.Context(), inventory.OperationalExitBatch{
		BatchRef: in.BatchRef,
		Location: locationOr(c, in.Location),
		Type:     entity.OperationalExitType(in.Type),
		Date:     dateOf(in.Date),
		Note:     in.Note,
		UserID:   GetUserID(c),
		Items:    items,
	})
	if err != nil {
		return writeError(c, err)
	}
	out := make([]dto.OperationalExitResponse, 0, len(res.Exits))
	for _, e := range res.Exits {
		out = append(out, dto.FromOperationalExit(e))
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"batch_ref":       res.BatchRef,
		"total_items":     len(in.Items),
		"processed_items": len(out),
		"exits":           out,
	})
}

// ApplyStockCount aplica un conteo físico de una ubicación.
func (h *InventoryHandler) ApplyStockCount(c *fiber.Ctx) error {
	var in dto.StockCountRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	items := make([]inventory.CountItem, 0, len(in.Items))
	for _, it := range in.Items {
		items = append(items, inventory.CountItem{ProductID: it.ProductID, Counted: it.Counted, UnitCost: it.UnitCost})
	}
	results, err := h.ledger.ApplyStockCount(c.Context(), inventory.StockCount{
		Location: strings.ToUpper(in.Location),
		Date:     dateOf(in.Date),
		Note:     in.Note,
		UserID:   GetUserID(c),
		Items:    items,
	})
	if err != nil {
		return writeError(c, err)
	}
	out := make([]dto.CountResultResponse, 0, len(results))
	for _, r := range results {
		row := dto.CountResultResponse{
			ProductID:  r.ProductID,
			Previous:   r.Previous,
			Counted:    r.Counted,
			Difference: r.Difference,
		}
		if r.Movement != nil {
			id := r.Movement.ID
			row.MovementID = &id
		}
		out = append(out, row)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"results": out})
}

// ReceivePurchase da entrada a las líneas de una compra. Reintentar no duplica entradas.
func (h *InventoryHandler) ReceivePurchase(c *fiber.Ctx) error {
	var in dto.PurchaseReceiptRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	lines := make([]inventory.PurchaseLine, 0, len(in.Lines))
	for _, l := range in.Lines {
		lines = append(lines, inventory.PurchaseLine{LineID: l.LineID, ProductID: l.ProductID, Quantity: l.Quantity, UnitCost: l.UnitCost})
	}
	res, err := h.ledger.ReceivePurchase(c.Context(), inventory.PurchaseReceipt{
		PurchaseID: in.PurchaseID,
		Date:       dateOf(in.Date),
		Location:   locationOr(c, in.Location),
		UserID:     GetUserID(c),
		Lines:      lines,
	})
	if err != nil {
		return writeError(c, err)
	}
	created := make([]dto.MovementResultResponse, 0, len(res.Created))
	for _, r := range res.Created {
		created = append(created, movementResult(r))
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"created": created,
		"skipped": res.Skipped,
	})
}

// SetThresholds fija mínimo, ideal y máximo del producto y reevalúa su alerta.
func (h *InventoryHandler) SetThresholds(c *fiber.Ctx) error {
	productID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var in dto.ThresholdsRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	bal, err := h.ledger.SetThresholds(c.Context(), productID, in.Minimum, in.Ideal, in.Maximum)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.FromBalance(bal, nil))
}

// GetBalance godoc
// @Summary      Saldo consolidado y por ubicación
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id   path  int  true  "ID del producto"
// @Success      200  {object}  dto.BalanceResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/products/{id} [get]
func (h *InventoryHandler) GetBalance(c *fiber.Ctx) error {
	productID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	bal, locs, err := h.ledger.Balance(c.Context(), productID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.FromBalance(bal, locs))
}

// ListMovements historial del ledger del producto, más reciente primero.
// Query: from y to (RFC3339), limit y offset.
func (h *InventoryHandler) ListMovements(c *fiber.Ctx) error {
	productID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "parámetros de paginación inválidos")
	}
	page.DefaultPage()
	if page.Limit > 100 {
		page.Limit = 100
	}
	f := repository.MovementFilter{ProductID: productID, Limit: page.Limit, Offset: page.Offset}
	if f.From, err = queryTime(c, "from"); err != nil {
		return err
	}
	if f.To, err = queryTime(c, "to"); err != nil {
		return err
	}
	list, err := h.ledger.History(c.Context(), f)
	if err != nil {
		return writeError(c, err)
	}
	out := make([]dto.MovementResponse, 0, len(list))
	for _, m := range list {
		out = append(out, dto.FromMovement(m))
	}
	return c.JSON(fiber.Map{
		"movements": out,
		"page":      dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	})
}

// Reconcile compara el saldo en caché con la reconstrucción desde el ledger.
func (h *InventoryHandler) Reconcile(c *fiber.Ctx) error {
	productID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	r, err := h.ledger.Reconcile(c.Context(), productID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ReconciliationResponse{
		ProductID:     r.ProductID,
		Cached:        r.Cached,
		Replayed:      r.Replayed,
		LotsRemaining: r.LotsRemaining,
		Consistent:    r.Consistent,
	})
}

// LotAging lotes con remanente y sus días en stock.
func (h *InventoryHandler) LotAging(c *fiber.Ctx) error {
	productID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	ages, err := h.lots.Aging(c.Context(), productID)
	if err != nil {
		return writeError(c, err)
	}
	out := make([]dto.LotAgeResponse, 0, len(ages))
	for _, a := range ages {
		out = append(out, dto.LotAgeResponse{
			LotID:        a.Lot.ID,
			EntryDate:    a.Lot.EntryDate,
			InitialQty:   a.Lot.InitialQty,
			RemainingQty: a.Lot.RemainingQty,
			DaysInStock:  a.DaysInStock,
		})
	}
	return c.JSON(fiber.Map{"lots": out})
}

// ListAlerts alertas abiertas.
func (h *InventoryHandler) ListAlerts(c *fiber.Ctx) error {
	list, err := h.alerts.ListOpen(c.Context())
	if err != nil {
		return writeError(c, err)
	}
	out := make([]dto.AlertResponse, 0, len(list))
	for _, a := range list {
		out = append(out, dto.FromAlert(a))
	}
	return c.JSON(fiber.Map{"total": len(out), "alerts": out})
}

// EvaluateAlerts reevalúa todos los productos y devuelve las alertas abiertas.
func (h *InventoryHandler) EvaluateAlerts(c *fiber.Ctx) error {
	res, err := h.alerts.EvaluateAll(c.Context())
	if err != nil {
		return writeError(c, err)
	}
	out := make([]dto.AlertResponse, 0, len(res.Open))
	for _, a := range res.Open {
		out = append(out, dto.FromAlert(a))
	}
	return c.JSON(fiber.Map{"evaluated": res.Evaluated, "alerts": out})
}

// GetStatistics godoc
// @Summary      Informe de permanencia y giro de inventario
// @Description  days: ventana de entrada de lotes (default 365). months: ventana de salidas en meses de 30 días (default 12).
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        days    query  int  false  "días hacia atrás para la permanencia"
// @Param        months  query  int  false  "meses hacia atrás para el giro"
// @Success      200  {array}   dto.ProductStatisticsResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/inventory/statistics [get]
func (h *InventoryHandler) GetStatistics(c *fiber.Ctx) error {
	w, err := statisticsWindow(c)
	if err != nil {
		return err
	}
	rows, err := h.stats.Report(c.Context(), w)
	if err != nil {
		return writeError(c, err)
	}
	out := make([]dto.ProductStatisticsResponse, 0, len(rows))
	for i := range rows {
		out = append(out, productStatistics(&rows[i]))
	}
	return c.JSON(fiber.Map{"total": len(out), "products": out})
}

// GetProductStatistics permanencia y giro de un producto. Mismos parámetros que GetStatistics.
func (h *InventoryHandler) GetProductStatistics(c *fiber.Ctx) error {
	productID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	w, err := statisticsWindow(c)
	if err != nil {
		return err
	}
	row, err := h.stats.ProductReport(c.Context(), productID, w)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(productStatistics(row))
}

// GetReplenishmentList godoc
// @Summary      Lista de reposición
// @Description  Productos activos con saldo en o por debajo del mínimo, con la cantidad sugerida
//
//	para llegar al ideal. Prioridad 1 = mayor déficit.
//
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Success      200  {array}   dto.ReplenishmentSuggestionDTO
// @Failure      401  {object}  dto.ErrorResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/inventory/replenishment [get]
func (h *InventoryHandler) GetReplenishmentList(c *fiber.Ctx) error {
	list, err := h.ledger.Replenishment(c.Context())
	if err != nil {
		return writeError(c, err)
	}
	out := make([]dto.ReplenishmentSuggestionDTO, 0, len(list))
	for _, it := range list {
		out = append(out, dto.ReplenishmentSuggestionDTO{
			ProductID:         it.ProductID,
			SKU:               it.SKU,
			ProductName:       it.Name,
			CurrentStock:      it.Balance,
			Minimum:           it.Minimum,
			TargetStock:       it.Target,
			SuggestedOrderQty: it.SuggestedQty,
			UnitCost:          it.AverageCost,
			EstimatedCost:     it.EstimatedCost,
			Priority:          it.Priority,
		})
	}
	return c.JSON(fiber.Map{
		"total":          len(out),
		"replenishments": out,
	})
}

func movementResult(r *inventory.MovementResult) dto.MovementResultResponse {
	out := dto.MovementResultResponse{Movement: dto.FromMovement(r.Movement)}
	if r.Balance != nil {
		out.Balance = dto.FromBalance(r.Balance, nil)
	}
	if r.Lot != nil {
		id := r.Lot.ID
		out.LotID = &id
	}
	for _, a := range r.Consumed {
		out.Consumed = append(out.Consumed, dto.LotAllocationResponse{
			LotID:          a.LotID,
			Quantity:       a.Quantity,
			RemainingAfter: a.RemainingAfter,
		})
	}
	return out
}

func productStatistics(r *inventory.ProductStatistics) dto.ProductStatisticsResponse {
	return dto.ProductStatisticsResponse{
		ProductID:          r.ProductID,
		SKU:                r.SKU,
		Name:               r.Name,
		Balance:            r.Balance,
		AverageDaysInStock: r.AverageDaysInStock,
		Turnover:           r.Turnover,
	}
}

// statisticsWindow lee days y months; ausentes usan los defaults del servicio.
func statisticsWindow(c *fiber.Ctx) (inventory.StatisticsWindow, error) {
	var w inventory.StatisticsWindow
	for name, dst := range map[string]*int{"days": &w.Days, "months": &w.Months} {
		raw := c.Query(name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return w, fiber.NewError(fiber.StatusBadRequest, name+" debe ser un entero positivo")
		}
		*dst = n
	}
	return w, nil
}

// paramID lee un id numérico positivo de la ruta.
func paramID(c *fiber.Ctx, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, name+" inválido")
	}
	return id, nil
}

func queryTime(c *fiber.Ctx, name string) (*time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, name+" debe ser RFC3339")
	}
	return &t, nil
}

func dateOf(p *time.Time) time.Time {
	if p == nil {
		return time.Time{}
	}
	return *p
}

// locationOr usa la ubicación del body o, si falta, la del token.
func locationOr(c *fiber.Ctx, loc string) string {
	if loc != "" {
		return strings.ToUpper(loc)
	}
	return GetLocation(c)
}
