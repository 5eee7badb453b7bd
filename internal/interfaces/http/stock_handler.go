package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/taller-stock/internal/application/dto"
	"github.com/jhoicas/taller-stock/internal/application/stock"
	"github.com/jhoicas/taller-stock/pkg/logger"
)

// StockHandler ajustes manuales y consultas de saldos y libro de movimientos (protegido).
type StockHandler struct {
	adjust *stock.AdjustmentUseCase
	query  *stock.QueryUseCase
	log    *logger.Logger
}

// NewStockHandler construye el handler.
func NewStockHandler(adjust *stock.AdjustmentUseCase, query *stock.QueryUseCase, log *logger.Logger) *StockHandler {
	return &StockHandler{adjust: adjust, query: query, log: log}
}

// Adjust godoc
// @Summary      Ajuste manual de stock
// @Description  Suma o resta existencias en una ubicación de la sucursal del token. Nunca deja saldo negativo.
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header  string                  false  "Clave de idempotencia"
// @Param        body             body    dto.AdjustStockRequest  true   "location_id, part_id, quantity_delta, reason"
// @Success      201  {object}  dto.AdjustmentResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/stock/adjustments [post]
func (h *StockHandler) Adjust(c *fiber.Ctx) error {
	userID, branchID := GetUserID(c), GetBranchID(c)
	if userID == "" || branchID == "" {
		return unauthorized(c)
	}
	var in dto.AdjustStockRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	in.IdempotencyKey = idempotencyKey(c)
	out, err := h.adjust.Adjust(c.Context(), userID, branchID, in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetStock godoc
// @Summary      Saldos de stock
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        location_id  query  string  false  "Filtrar por ubicación"
// @Param        part_id      query  string  false  "Filtrar por repuesto"
// @Param        limit        query  int     false  "Máximo 100"
// @Param        offset       query  int     false  "Desplazamiento"
// @Success      200  {object}  dto.StockListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/stock [get]
func (h *StockHandler) GetStock(c *fiber.Ctx) error {
	branchID := GetBranchID(c)
	if branchID == "" {
		return unauthorized(c)
	}
	page := dto.PageRequest{Limit: c.QueryInt("limit", 20), Offset: c.QueryInt("offset", 0)}
	out, err := h.query.GetStock(c.Context(), branchID, c.Query("location_id"), c.Query("part_id"), page)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// GetLedger godoc
// @Summary      Libro de movimientos
// @Description  Asientos de la sucursal, del más reciente al más antiguo.
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        location_id    query  string  false  "Filtrar por ubicación"
// @Param        part_id        query  string  false  "Filtrar por repuesto"
// @Param        movement_type  query  string  false  "PURCHASE, ADJUSTMENT_PLUS, ADJUSTMENT_MINUS, TRANSFER_OUT, TRANSFER_IN, CONSUMPTION"
// @Param        limit          query  int     false  "Máximo 100"
// @Param        offset         query  int     false  "Desplazamiento"
// @Success      200  {object}  dto.LedgerListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/stock/ledger [get]
func (h *StockHandler) GetLedger(c *fiber.Ctx) error {
	branchID := GetBranchID(c)
	if branchID == "" {
		return unauthorized(c)
	}
	q := dto.LedgerQuery{
		LocationID:   c.Query("location_id"),
		PartID:       c.Query("part_id"),
		MovementType: c.Query("movement_type"),
		PageRequest:  dto.PageRequest{Limit: c.QueryInt("limit", 20), Offset: c.QueryInt("offset", 0)},
	}
	out, err := h.query.GetLedger(c.Context(), branchID, q)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// Reconcile godoc
// @Summary      Conciliación saldo vs libro
// @Description  Compara cada saldo con la suma de sus asientos y lista las diferencias.
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.ReconciliationResponse
// @Router       /api/stock/reconciliation [get]
func (h *StockHandler) Reconcile(c *fiber.Ctx) error {
	branchID := GetBranchID(c)
	if branchID == "" {
		return unauthorized(c)
	}
	out, err := h.query.Reconcile(c.Context(), branchID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}
