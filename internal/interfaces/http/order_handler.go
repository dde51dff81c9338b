package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Inventario-sucursales/internal/application/dto"
	"github.com/jhoicas/Inventario-sucursales/internal/application/orders"
	"github.com/jhoicas/Inventario-sucursales/internal/domain/entity"
	"github.com/jhoicas/Inventario-sucursales/internal/domain/repository"
)

// OrderHandler órdenes de venta (SO-) y de servicio (JOB-) (protegido).
type OrderHandler struct {
	orders *orders.Service
}

// NewOrderHandler construye el handler.
func NewOrderHandler(svc *orders.Service) *OrderHandler {
	return &OrderHandler{orders: svc}
}

// Create godoc
// @Summary      Crear orden
// @Description  Crea la orden en draft. Subtotal, impuesto, total, cambio y estado de pago los calcula el servidor.
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.CreateOrderRequest  true  "tipo, sucursal, líneas, impuesto, descuento y pago"
// @Success      201   {object}  dto.OrderResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/orders [post]
func (h *OrderHandler) Create(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return unauthorized(c)
	}
	var in dto.CreateOrderRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	o, err := h.orders.Create(c.Context(), orders.CreateInput{
		Kind:          entity.OrderKind(in.Kind),
		BranchID:      in.BranchID,
		CustomerName:  in.CustomerName,
		Items:         dto.ToLineItems(in.Items),
		TaxRate:       in.TaxRate,
		Discount:      in.Discount,
		PaymentMethod: in.PaymentMethod,
		AmountPaid:    in.AmountPaid,
		Notes:         in.Notes,
		CreatedBy:     userID,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewOrderResponse(o))
}

// List godoc
// @Summary      Listar órdenes
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        branch_id  query  string  false  "Sucursal"
// @Param        kind       query  string  false  "sales | service"
// @Param        status     query  string  false  "draft | completed | cancelled"
// @Param        limit      query  int     false  "Límite (máx 200)"
// @Param        offset     query  int     false  "Desplazamiento"
// @Success      200        {object}  dto.OrderListResponse
// @Router       /api/orders [get]
func (h *OrderHandler) List(c *fiber.Ctx) error {
	limit, offset := pageParams(c)
	list, err := h.orders.List(c.Context(), repository.OrderFilter{
		BranchID: c.Query("branch_id"),
		Kind:     entity.OrderKind(c.Query("kind")),
		Status:   entity.OrderStatus(c.Query("status")),
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		return respondError(c, err)
	}
	out := dto.OrderListResponse{
		Items: make([]dto.OrderResponse, 0, len(list)),
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}
	for _, o := range list {
		out.Items = append(out.Items, dto.NewOrderResponse(o))
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener orden
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID de la orden"
// @Success      200  {object}  dto.OrderResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/orders/{id} [get]
func (h *OrderHandler) GetByID(c *fiber.Ctx) error {
	o, err := h.orders.Get(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.NewOrderResponse(o))
}

// UpdateItems godoc
// @Summary      Reemplazar líneas de una orden en borrador
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path      string                       true  "ID de la orden"
// @Param        body  body      dto.UpdateOrderItemsRequest  true  "líneas, impuesto y descuento"
// @Success      200   {object}  dto.OrderResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/items [put]
func (h *OrderHandler) UpdateItems(c *fiber.Ctx) error {
	var in dto.UpdateOrderItemsRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	o, err := h.orders.UpdateItems(c.Context(), c.Params("id"), dto.ToLineItems(in.Items), in.TaxRate, in.Discount)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.NewOrderResponse(o))
}

// RecordPayment godoc
// @Summary      Registrar abono
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path      string                    true  "ID de la orden"
// @Param        body  body      dto.RecordPaymentRequest  true  "método y monto"
// @Success      200   {object}  dto.OrderResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/payments [post]
func (h *OrderHandler) RecordPayment(c *fiber.Ctx) error {
	var in dto.RecordPaymentRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	o, err := h.orders.RecordPayment(c.Context(), c.Params("id"), in.Method, in.Amount)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.NewOrderResponse(o))
}

// Complete godoc
// @Summary      Completar orden
// @Description  Descuenta el stock de cada línea (sale o service_use). Si una línea no tiene stock no se aplica ninguna.
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID de la orden"
// @Success      200  {object}  dto.OrderResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/complete [post]
func (h *OrderHandler) Complete(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return unauthorized(c)
	}
	o, err := h.orders.Complete(c.Context(), c.Params("id"), userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.NewOrderResponse(o))
}

// Cancel godoc
// @Summary      Cancelar orden
// @Description  Si la orden estaba completada restituye cada línea con sale_cancel.
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID de la orden"
// @Success      200  {object}  dto.OrderResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/cancel [post]
func (h *OrderHandler) Cancel(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return unauthorized(c)
	}
	o, err := h.orders.Cancel(c.Context(), c.Params("id"), userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.NewOrderResponse(o))
}
