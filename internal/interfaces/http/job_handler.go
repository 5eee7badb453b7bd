package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/taller-stock/internal/application/dto"
	"github.com/jhoicas/taller-stock/internal/application/stock"
	"github.com/jhoicas/taller-stock/pkg/logger"
)

// JobHandler consumo de repuestos en órdenes de trabajo (protegido).
type JobHandler struct {
	uc  *stock.ConsumptionUseCase
	log *logger.Logger
}

// NewJobHandler construye el handler.
func NewJobHandler(uc *stock.ConsumptionUseCase, log *logger.Logger) *JobHandler {
	return &JobHandler{uc: uc, log: log}
}

// ConsumePart godoc
// @Summary      Consumir repuesto en una orden de trabajo
// @Tags         jobs
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        jobId            path    string                  true   "ID de la orden de trabajo"
// @Param        Idempotency-Key  header  string                  false  "Clave de idempotencia"
// @Param        body             body    dto.ConsumePartRequest  true   "location_id, part_id, qty"
// @Success      201  {object}  dto.PartUsageResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/jobs/{jobId}/parts [post]
func (h *JobHandler) ConsumePart(c *fiber.Ctx) error {
	userID, branchID := GetUserID(c), GetBranchID(c)
	if userID == "" || branchID == "" {
		return unauthorized(c)
	}
	var in dto.ConsumePartRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	in.IdempotencyKey = idempotencyKey(c)
	out, err := h.uc.Consume(c.Context(), userID, branchID, c.Params("jobId"), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ListParts godoc
// @Summary      Repuestos consumidos por una orden de trabajo
// @Tags         jobs
// @Security     Bearer
// @Produce      json
// @Param        jobId  path  string  true  "ID de la orden de trabajo"
// @Success      200  {array}   dto.PartUsageResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/jobs/{jobId}/parts [get]
func (h *JobHandler) ListParts(c *fiber.Ctx) error {
	branchID := GetBranchID(c)
	if branchID == "" {
		return unauthorized(c)
	}
	out, err := h.uc.ListByJob(c.Context(), branchID, c.Params("jobId"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}
