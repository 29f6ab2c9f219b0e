package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/fulfillment-ledger/internal/application/dto"
	"github.com/jhoicas/fulfillment-ledger/internal/application/sales"
	"github.com/jhoicas/fulfillment-ledger/internal/domain/entity"
)

// OrderHandler maneja el ciclo de vida de pedidos y cotizaciones (protegido).
type OrderHandler struct {
	orders *sales.OrderLifecycle
}

// NewOrderHandler construye el handler.
func NewOrderHandler(orders *sales.OrderLifecycle) *OrderHandler {
	return &OrderHandler{orders: orders}
}

// Create godoc
// @Summary      Crear pedido o cotización
// @Description  El pedido nace en DRAFT. Sin location en el body se usa la del token.
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateOrderRequest  true  "cliente, forma de pago y líneas"
// @Success      201   {object}  dto.OrderDetailResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/orders [post]
func (h *OrderHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateOrderRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	salesperson := in.SalespersonID
	if salesperson == "" {
		salesperson = GetUserID(c)
	}
	detail, err := h.orders.Create(c.Context(), sales.CreateOrderInput{
		CustomerID:              in.CustomerID,
		SalespersonID:           salesperson,
		Location:                locationOr(c, in.Location),
		OrderDate:               dateOf(in.OrderDate),
		DocumentType:            entity.DocumentType(in.DocumentType),
		PaymentMethod:           entity.PaymentMethod(in.PaymentMethod),
		InstallmentCount:        in.InstallmentCount,
		InstallmentIntervalDays: in.InstallmentIntervalDays,
		FirstDueDate:            in.FirstDueDate,
		Surcharge:               in.Surcharge,
		Notes:                   in.Notes,
		Lines:                   lineInputs(in.Lines),
		Actor:                   GetUserID(c),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.FromOrderDetail(detail.Order, detail.Lines, detail.Events))
}

// Get pedido con líneas e historial.
func (h *OrderHandler) Get(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	detail, err := h.orders.Get(c.Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.FromOrderDetail(detail.Order, detail.Lines, detail.Events))
}

// ReplaceLines reemplaza las líneas de un pedido no facturado.
func (h *OrderHandler) ReplaceLines(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var in dto.ReplaceLinesRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	detail, err := h.orders.ReplaceLines(c.Context(), id, lineInputs(in.Lines), GetUserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.FromOrderDetail(detail.Order, detail.Lines, detail.Events))
}

// Confirm DRAFT → CONFIRMED.
func (h *OrderHandler) Confirm(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	o, err := h.orders.Confirm(c.Context(), id, GetUserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.FromOrder(o))
}

// Convert convierte una cotización en pedido.
func (h *OrderHandler) Convert(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	o, err := h.orders.ConvertToOrder(c.Context(), id, GetUserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.FromOrder(o))
}

// Bill godoc
// @Summary      Facturar pedido
// @Description  Descuenta stock por línea y genera cuentas por cobrar y boletos según la forma de pago.
// @Description  Repetir la llamada sobre un pedido ya facturado no crea nada nuevo.
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        id   path  int  true  "ID del pedido"
// @Success      200  {object}  dto.BillingResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/bill [post]
func (h *OrderHandler) Bill(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	res, err := h.orders.Bill(c.Context(), id, GetUserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.BillingResponse{
		Order:              dto.FromOrder(res.Order),
		MovementsCreated:   res.MovementsCreated,
		ReceivablesCreated: res.ReceivablesCreated,
		DocumentsCreated:   res.DocumentsCreated,
		AlreadyProcessed:   res.AlreadyProcessed,
	})
}

// Complete BILLED → COMPLETED.
func (h *OrderHandler) Complete(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	o, err := h.orders.Complete(c.Context(), id, GetUserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.FromOrder(o))
}

// Cancel godoc
// @Summary      Cancelar pedido
// @Description  Si estaba facturado revierte el stock y cancela cobros y boletos pendientes.
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  int                     true   "ID del pedido"
// @Param        body  body  dto.CancelOrderRequest  false  "motivo"
// @Success      200   {object}  dto.CancellationResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/cancel [post]
func (h *OrderHandler) Cancel(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var in dto.CancelOrderRequest
	if len(c.Body()) > 0 {
		if ok, err := parseBody(c, &in); !ok {
			return err
		}
	}
	res, err := h.orders.Cancel(c.Context(), id, GetUserID(c), strings.TrimSpace(in.Reason))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.CancellationResponse{
		Order:                dto.FromOrder(res.Order),
		Reversals:            res.Reversals,
		ReceivablesCancelled: res.ReceivablesCancelled,
		DocumentsCancelled:   res.DocumentsCancelled,
		AlreadyCancelled:     res.AlreadyCancelled,
	})
}

// AddNote agrega una nota al historial.
func (h *OrderHandler) AddNote(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var in dto.NoteRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	ev, err := h.orders.AddNote(c.Context(), id, GetUserID(c), in.Note)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.OrderEventResponse{
		Type:      string(ev.Type),
		Actor:     ev.Actor,
		Detail:    ev.Detail,
		CreatedAt: ev.CreatedAt,
	})
}

func lineInputs(in []dto.OrderLineRequest) []sales.LineInput {
	out := make([]sales.LineInput, 0, len(in))
	for _, l := range in {
		out = append(out, sales.LineInput{
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			Discount:  l.Discount,
		})
	}
	return out
}
