package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Inventario-sucursales/internal/application/dto"
	"github.com/jhoicas/Inventario-sucursales/internal/application/inventory"
	"github.com/jhoicas/Inventario-sucursales/internal/domain/entity"
	"github.com/jhoicas/Inventario-sucursales/internal/domain/repository"
)

// TransferHandler maneja los traslados entre sucursales (protegido).
type TransferHandler struct {
	transfers *inventory.TransferService
	document  *inventory.TransferDocumentUseCase
}

// NewTransferHandler construye el handler.
func NewTransferHandler(transfers *inventory.TransferService, document *inventory.TransferDocumentUseCase) *TransferHandler {
	return &TransferHandler{transfers: transfers, document: document}
}

// Create godoc
// @Summary      Crear traslado
// @Description  Registra el traslado en pending con consecutivo TR-. No mueve stock.
// @Tags         transfers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.CreateTransferRequest  true  "producto, origen, destino y cantidad"
// @Success      201   {object}  dto.StockTransferResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/transfers [post]
func (h *TransferHandler) Create(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return unauthorized(c)
	}
	var in dto.CreateTransferRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	t, err := h.transfers.Create(c.Context(), inventory.CreateTransferInput{
		ProductID:    in.ProductID,
		FromBranchID: in.FromBranchID,
		ToBranchID:   in.ToBranchID,
		Quantity:     in.Quantity,
		Notes:        in.Notes,
		InitiatedBy:  userID,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewStockTransferResponse(t))
}

// List godoc
// @Summary      Listar traslados
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        branch_id  query  string  false  "Sucursal origen o destino"
// @Param        status     query  string  false  "pending | in-transit | completed | cancelled"
// @Param        limit      query  int     false  "Límite (máx 200)"
// @Param        offset     query  int     false  "Desplazamiento"
// @Success      200        {object}  dto.TransferListResponse
// @Router       /api/transfers [get]
func (h *TransferHandler) List(c *fiber.Ctx) error {
	limit, offset := pageParams(c)
	list, err := h.transfers.List(c.Context(), repository.TransferFilter{
		BranchID: c.Query("branch_id"),
		Status:   entity.TransferStatus(c.Query("status")),
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		return respondError(c, err)
	}
	out := dto.TransferListResponse{
		Items: make([]dto.StockTransferResponse, 0, len(list)),
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}
	for _, t := range list {
		out.Items = append(out.Items, dto.NewStockTransferResponse(t))
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener traslado
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID del traslado"
// @Success      200  {object}  dto.StockTransferResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/transfers/{id} [get]
func (h *TransferHandler) GetByID(c *fiber.Ctx) error {
	t, err := h.transfers.Get(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.NewStockTransferResponse(t))
}

// Ship godoc
// @Summary      Despachar traslado
// @Description  pending -> in-transit: descuenta la cantidad del origen (transfer_out).
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID del traslado"
// @Success      200  {object}  dto.StockTransferResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/transfers/{id}/ship [post]
func (h *TransferHandler) Ship(c *fiber.Ctx) error {
	return h.transition(c, h.transfers.Ship)
}

// Receive godoc
// @Summary      Recibir traslado
// @Description  in-transit -> completed: ingresa la cantidad al destino (transfer_in), creando el registro si no existe.
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID del traslado"
// @Success      200  {object}  dto.StockTransferResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/transfers/{id}/receive [post]
func (h *TransferHandler) Receive(c *fiber.Ctx) error {
	return h.transition(c, h.transfers.Receive)
}

// Cancel godoc
// @Summary      Cancelar traslado
// @Description  Desde pending no mueve stock; desde in-transit devuelve la cantidad al origen (adjustment_add).
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID del traslado"
// @Success      200  {object}  dto.StockTransferResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/transfers/{id}/cancel [post]
func (h *TransferHandler) Cancel(c *fiber.Ctx) error {
	return h.transition(c, h.transfers.Cancel)
}

func (h *TransferHandler) transition(c *fiber.Ctx, fn transitionFunc) error {
	userID := GetUserID(c)
	if userID == "" {
		return unauthorized(c)
	}
	t, err := fn(c.Context(), c.Params("id"), userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.NewStockTransferResponse(t))
}

// DownloadPDF godoc
// @Summary      Remisión de traslado en PDF
// @Tags         transfers
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  string  true  "ID del traslado"
// @Success      200  {file}  binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/transfers/{id}/pdf [get]
func (h *TransferHandler) DownloadPDF(c *fiber.Ctx) error {
	data, filename, err := h.document.DownloadTransferPDF(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(data)
}

type transitionFunc func(ctx context.Context, id, actor string) (*entity.StockTransfer, error)
