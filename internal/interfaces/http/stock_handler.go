package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Inventario-sucursales/internal/application/dto"
	"github.com/jhoicas/Inventario-sucursales/internal/application/inventory"
	"github.com/jhoicas/Inventario-sucursales/internal/domain/entity"
	"github.com/jhoicas/Inventario-sucursales/internal/domain/repository"
)

// StockHandler maneja registros de stock, reservas, movimientos y kardex (protegido).
type StockHandler struct {
	stock         *inventory.StockService
	replenishment *inventory.ReplenishmentUseCase
}

// NewStockHandler construye el handler.
func NewStockHandler(stock *inventory.StockService, replenishment *inventory.ReplenishmentUseCase) *StockHandler {
	return &StockHandler{stock: stock, replenishment: replenishment}
}

// Create godoc
// @Summary      Crear registro de stock
// @Description  Crea el registro (producto, sucursal). Si initial_quantity > 0 deja un movimiento "initial".
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.CreateStockRequest  true  "producto, sucursal, cantidad inicial y precios"
// @Success      201   {object}  dto.StockRecordResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/stock [post]
func (h *StockHandler) Create(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return unauthorized(c)
	}
	var in dto.CreateStockRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	rec, err := h.stock.Create(c.Context(), inventory.CreateStockInput{
		ProductID:       in.ProductID,
		BranchID:        in.BranchID,
		InitialQuantity: in.InitialQuantity,
		CostPrice:       in.CostPrice,
		SellingPrice:    in.SellingPrice,
		ReorderPoint:    in.ReorderPoint,
		ReorderQuantity: in.ReorderQuantity,
		PerformedBy:     userID,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewStockRecordResponse(rec))
}

// GetByID godoc
// @Summary      Obtener registro de stock
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID del registro"
// @Success      200  {object}  dto.StockRecordResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock/{id} [get]
func (h *StockHandler) GetByID(c *fiber.Ctx) error {
	rec, err := h.stock.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.NewStockRecordResponse(rec))
}

// Lookup godoc
// @Summary      Buscar stock por producto y sucursal
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        product_id  query     string  true  "Producto"
// @Param        branch_id   query     string  true  "Sucursal"
// @Success      200         {object}  dto.StockRecordResponse
// @Failure      404         {object}  dto.ErrorResponse
// @Router       /api/stock/lookup [get]
func (h *StockHandler) Lookup(c *fiber.Ctx) error {
	productID, branchID := c.Query("product_id"), c.Query("branch_id")
	if productID == "" || branchID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "product_id y branch_id son obligatorios"})
	}
	rec, err := h.stock.Get(c.Context(), productID, branchID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.NewStockRecordResponse(rec))
}

// ListByBranch godoc
// @Summary      Stock de una sucursal
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        id      path   string  true   "ID de la sucursal"
// @Param        limit   query  int     false  "Límite (máx 200)"
// @Param        offset  query  int     false  "Desplazamiento"
// @Success      200     {array}  dto.StockRecordResponse
// @Router       /api/branches/{id}/stock [get]
func (h *StockHandler) ListByBranch(c *fiber.Ctx) error {
	limit, offset := pageParams(c)
	list, err := h.stock.ListByBranch(c.Context(), c.Params("id"), limit, offset)
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.StockRecordResponse, 0, len(list))
	for _, rec := range list {
		out = append(out, dto.NewStockRecordResponse(rec))
	}
	return c.JSON(fiber.Map{"items": out, "page": dto.PageResponse{Limit: limit, Offset: offset}})
}

// Reserve godoc
// @Summary      Reservar cantidad
// @Description  Retiene unidades disponibles; no genera movimiento.
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path      string               true  "ID del registro"
// @Param        body  body      dto.QuantityRequest  true  "cantidad"
// @Success      200   {object}  dto.StockRecordResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/stock/{id}/reserve [post]
func (h *StockHandler) Reserve(c *fiber.Ctx) error {
	var in dto.QuantityRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	rec, err := h.stock.Reserve(c.Context(), c.Params("id"), in.Quantity)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.NewStockRecordResponse(rec))
}

// Release godoc
// @Summary      Liberar reserva
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path      string               true  "ID del registro"
// @Param        body  body      dto.QuantityRequest  true  "cantidad"
// @Success      200   {object}  dto.StockRecordResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/stock/{id}/release [post]
func (h *StockHandler) Release(c *fiber.Ctx) error {
	var in dto.QuantityRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	rec, err := h.stock.Release(c.Context(), c.Params("id"), in.Quantity)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.NewStockRecordResponse(rec))
}

// Deduct godoc
// @Summary      Descontar stock
// @Description  Resta cantidad, reduce la reserva (sin bajar de 0) y registra el movimiento.
// @Description  Los traslados y las órdenes registradas descuentan por su propio endpoint.
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path      string             true  "ID del registro"
// @Param        body  body      dto.DeductRequest  true  "cantidad, tipo y referencia"
// @Success      201   {object}  dto.StockMovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/stock/{id}/deduct [post]
func (h *StockHandler) Deduct(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return unauthorized(c)
	}
	var in dto.DeductRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	m, err := h.stock.Deduct(c.Context(), c.Params("id"), inventory.MovementInput{
		Quantity:    in.Quantity,
		Type:        entity.MovementType(in.Type),
		Reference:   in.Reference.ToReference(),
		Reason:      in.Reason,
		PerformedBy: userID,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewStockMovementResponse(m))
}

// Add godoc
// @Summary      Ingresar stock
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path      string          true  "ID del registro"
// @Param        body  body      dto.AddRequest  true  "cantidad, tipo, proveedor y costo"
// @Success      201   {object}  dto.StockMovementResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/stock/{id}/add [post]
func (h *StockHandler) Add(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return unauthorized(c)
	}
	var in dto.AddRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	m, err := h.stock.Add(c.Context(), c.Params("id"), inventory.MovementInput{
		Quantity:    in.Quantity,
		Type:        entity.MovementType(in.Type),
		Reference:   in.Reference.ToReference(),
		SupplierID:  in.SupplierID,
		UnitCost:    in.UnitCost,
		Reason:      in.Reason,
		PerformedBy: userID,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewStockMovementResponse(m))
}

// Adjust godoc
// @Summary      Ajuste manual
// @Description  delta positivo = adjustment_add, negativo = adjustment_remove. El motivo es obligatorio.
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path      string             true  "ID del registro"
// @Param        body  body      dto.AdjustRequest  true  "delta y motivo"
// @Success      201   {object}  dto.StockMovementResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/stock/{id}/adjust [post]
func (h *StockHandler) Adjust(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return unauthorized(c)
	}
	var in dto.AdjustRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	m, err := h.stock.Adjust(c.Context(), inventory.AdjustInput{
		StockID:     c.Params("id"),
		Delta:       in.Delta,
		Reason:      in.Reason,
		PerformedBy: userID,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewStockMovementResponse(m))
}

// ListMovements godoc
// @Summary      Kardex de un registro de stock
// @Tags         movements
// @Security     Bearer
// @Produce      json
// @Param        id      path   string  true   "ID del registro"
// @Param        limit   query  int     false  "Límite (máx 200)"
// @Param        offset  query  int     false  "Desplazamiento"
// @Success      200     {array}  dto.StockMovementResponse
// @Router       /api/stock/{id}/movements [get]
func (h *StockHandler) ListMovements(c *fiber.Ctx) error {
	limit, offset := pageParams(c)
	list, err := h.stock.ListMovements(c.Context(), c.Params("id"), limit, offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"items": dto.NewStockMovementList(list), "page": dto.PageResponse{Limit: limit, Offset: offset}})
}

// ListBranchMovements godoc
// @Summary      Kardex de una sucursal
// @Tags         movements
// @Security     Bearer
// @Produce      json
// @Param        id      path   string  true   "ID de la sucursal"
// @Param        from    query  string  false  "Desde (RFC3339)"
// @Param        to      query  string  false  "Hasta (RFC3339)"
// @Param        type    query  string  false  "Tipo de movimiento"
// @Param        limit   query  int     false  "Límite (máx 200)"
// @Param        offset  query  int     false  "Desplazamiento"
// @Success      200     {array}  dto.StockMovementResponse
// @Failure      400     {object}  dto.ErrorResponse
// @Router       /api/branches/{id}/movements [get]
func (h *StockHandler) ListBranchMovements(c *fiber.Ctx) error {
	limit, offset := pageParams(c)
	f := repository.MovementFilter{
		BranchID: c.Params("id"),
		Type:     entity.MovementType(c.Query("type")),
		Limit:    limit,
		Offset:   offset,
	}
	var err error
	if f.From, err = queryTime(c, "from"); err != nil {
		return respondError(c, err)
	}
	if f.To, err = queryTime(c, "to"); err != nil {
		return respondError(c, err)
	}
	list, err := h.stock.ListBranchMovements(c.Context(), f)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"items": dto.NewStockMovementList(list), "page": dto.PageResponse{Limit: limit, Offset: offset}})
}

// GetMovement godoc
// @Summary      Obtener movimiento por consecutivo
// @Tags         movements
// @Security     Bearer
// @Produce      json
// @Param        movementId  path      string  true  "SM-YYYY-NNNNNN"
// @Success      200         {object}  dto.StockMovementResponse
// @Failure      404         {object}  dto.ErrorResponse
// @Router       /api/movements/{movementId} [get]
func (h *StockHandler) GetMovement(c *fiber.Ctx) error {
	m, err := h.stock.GetMovement(c.Context(), c.Params("movementId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.NewStockMovementResponse(m))
}

// MovementsByReference godoc
// @Summary      Movimientos de un documento
// @Tags         movements
// @Security     Bearer
// @Produce      json
// @Param        document_type  query  string  true  "sales_order | service_order | stock_transfer"
// @Param        document_id    query  string  true  "ID del documento"
// @Success      200            {array}  dto.StockMovementResponse
// @Failure      400            {object}  dto.ErrorResponse
// @Router       /api/movements [get]
func (h *StockHandler) MovementsByReference(c *fiber.Ctx) error {
	ref := dto.ReferenceDTO{DocumentType: c.Query("document_type"), DocumentID: c.Query("document_id")}
	if err := validate.Struct(ref); err != nil {
		return respondError(c, err)
	}
	list, err := h.stock.MovementsByReference(c.Context(), *ref.ToReference())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"items": dto.NewStockMovementList(list)})
}

// GetReplenishmentList godoc
// @Summary      Lista de reposición de una sucursal
// @Description  Registros con disponible por debajo del punto de reorden, ordenados por déficit.
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID de la sucursal"
// @Success      200  {array}   dto.ReplenishmentSuggestionDTO
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/branches/{id}/replenishment [get]
func (h *StockHandler) GetReplenishmentList(c *fiber.Ctx) error {
	list, err := h.replenishment.GenerateReplenishmentList(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"total":          len(list),
		"replenishments": list,
	})
}

func queryTime(c *fiber.Ctx, key string) (*time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, invalidQuery(key, raw)
	}
	return &t, nil
}
