package http

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/taller-stock/internal/application/dto"
	"github.com/jhoicas/taller-stock/internal/application/stock"
	"github.com/jhoicas/taller-stock/pkg/logger"
)

// TransferHandler traslados entre sucursales y ubicaciones (protegido).
type TransferHandler struct {
	uc  *stock.TransferUseCase
	log *logger.Logger
}

// NewTransferHandler construye el handler.
func NewTransferHandler(uc *stock.TransferUseCase, log *logger.Logger) *TransferHandler {
	return &TransferHandler{uc: uc, log: log}
}

// Create godoc
// @Summary      Crear traslado
// @Description  El origen es la sucursal del token. El traslado queda en DRAFT.
// @Tags         transfers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header  string                     false  "Clave de idempotencia"
// @Param        body             body    dto.CreateTransferRequest  true   "from_location_id, to_branch_id, to_location_id, items"
// @Success      201  {object}  dto.TransferResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/transfers [post]
func (h *TransferHandler) Create(c *fiber.Ctx) error {
	userID, branchID := GetUserID(c), GetBranchID(c)
	if userID == "" || branchID == "" {
		return unauthorized(c)
	}
	var in dto.CreateTransferRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	in.IdempotencyKey = idempotencyKey(c)
	out, err := h.uc.Create(c.Context(), userID, branchID, in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Listar traslados
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        direction  query  string  false  "outgoing | incoming (vacío = ambos)"
// @Param        status     query  string  false  "DRAFT, REQUESTED, SHIPPED, RECEIVED, CANCELLED"
// @Param        limit      query  int     false  "Máximo 100"
// @Param        offset     query  int     false  "Desplazamiento"
// @Success      200  {object}  dto.TransferListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/transfers [get]
func (h *TransferHandler) List(c *fiber.Ctx) error {
	branchID := GetBranchID(c)
	if branchID == "" {
		return unauthorized(c)
	}
	page := dto.PageRequest{Limit: c.QueryInt("limit", 20), Offset: c.QueryInt("offset", 0)}
	out, err := h.uc.List(c.Context(), branchID, c.Query("direction"), c.Query("status"), page)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// InTransit godoc
// @Summary      Stock en tránsito
// @Description  Líneas de traslados despachados y no recibidos en los que participa la sucursal.
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.InTransitLine
// @Router       /api/transfers/in-transit [get]
func (h *TransferHandler) InTransit(c *fiber.Ctx) error {
	branchID := GetBranchID(c)
	if branchID == "" {
		return unauthorized(c)
	}
	lines, err := h.uc.InTransit(c.Context(), branchID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(fiber.Map{
		"total": len(lines),
		"items": lines,
	})
}

// GetByID godoc
// @Summary      Obtener traslado
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del traslado"
// @Success      200  {object}  dto.TransferResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/transfers/{id} [get]
func (h *TransferHandler) GetByID(c *fiber.Ctx) error {
	branchID := GetBranchID(c)
	if branchID == "" {
		return unauthorized(c)
	}
	out, err := h.uc.Get(c.Context(), branchID, c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// Manifest godoc
// @Summary      Manifiesto PDF del traslado
// @Tags         transfers
// @Security     Bearer
// @Produce      application/pdf
// @Param        id  path  string  true  "ID del traslado"
// @Success      200  {file}    binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/transfers/{id}/manifest [get]
func (h *TransferHandler) Manifest(c *fiber.Ctx) error {
	branchID := GetBranchID(c)
	if branchID == "" {
		return unauthorized(c)
	}
	pdf, number, err := h.uc.Manifest(c.Context(), branchID, c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="`+number+`.pdf"`)
	return c.Send(pdf)
}

// Request godoc
// @Summary      Solicitar traslado (DRAFT → REQUESTED)
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del traslado"
// @Success      200  {object}  dto.TransferResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/transfers/{id}/request [post]
func (h *TransferHandler) Request(c *fiber.Ctx) error {
	return h.lifecycle(c, h.uc.Request)
}

// Ship godoc
// @Summary      Despachar traslado
// @Description  Descuenta las cantidades en el origen. Falla completo si alguna línea no alcanza.
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del traslado"
// @Success      200  {object}  dto.TransferResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/transfers/{id}/ship [post]
func (h *TransferHandler) Ship(c *fiber.Ctx) error {
	return h.lifecycle(c, h.uc.Ship)
}

// Receive godoc
// @Summary      Recibir traslado en destino
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del traslado"
// @Success      200  {object}  dto.TransferResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/transfers/{id}/receive [post]
func (h *TransferHandler) Receive(c *fiber.Ctx) error {
	return h.lifecycle(c, h.uc.Receive)
}

// Cancel godoc
// @Summary      Cancelar traslado (solo antes de despachar)
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del traslado"
// @Success      200  {object}  dto.TransferResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/transfers/{id}/cancel [post]
func (h *TransferHandler) Cancel(c *fiber.Ctx) error {
	return h.lifecycle(c, h.uc.Cancel)
}

type transferAction func(ctx context.Context, userID, branchID, id string) (*dto.TransferResponse, error)

func (h *TransferHandler) lifecycle(c *fiber.Ctx, action transferAction) error {
	userID, branchID := GetUserID(c), GetBranchID(c)
	if userID == "" || branchID == "" {
		return unauthorized(c)
	}
	out, err := action(c.Context(), userID, branchID, c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}
