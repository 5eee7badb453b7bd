package stock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/jhoicas/taller-stock/internal/application/dto"
	"github.com/jhoicas/taller-stock/internal/domain"
	"github.com/jhoicas/taller-stock/internal/domain/entity"
	"github.com/jhoicas/taller-stock/internal/domain/repository"
)

// ConsumptionUseCase descarga repuestos usados en una orden de trabajo.
type ConsumptionUseCase struct {
	txRunner TxRunner
	repos    TxRepos
	master   repository.MasterDataRepository
	audit    AuditSink
	now      func() time.Time
}

// NewConsumptionUseCase construye el caso de uso.
func NewConsumptionUseCase(txRunner TxRunner, repos TxRepos, master repository.MasterDataRepository, audit AuditSink) *ConsumptionUseCase {
	return &ConsumptionUseCase{
		txRunner: txRunner,
		repos:    repos,
		master:   master,
		audit:    auditOrNop(audit),
		now:      time.Now,
	}
}

// Consume debita qty de la ubicación con un asiento CONSUMPTION referido a la orden de trabajo
// y guarda el registro de uso que luego lee facturación.
func (uc *ConsumptionUseCase) Consume(ctx context.Context, userID, branchID, jobID string, in dto.ConsumePartRequest) (*dto.PartUsageResponse, error) {
	ctx, span := tracer.Start(ctx, "job.Consume", trace.WithAttributes(
		attribute.String("branch_id", branchID),
		attribute.String("job_id", jobID),
		attribute.String("part_id", in.PartID),
	))
	defer span.End()

	if userID == "" || branchID == "" || jobID == "" || in.LocationID == "" || in.PartID == "" {
		return nil, fmt.Errorf("%w: usuario, sucursal, orden de trabajo, ubicación y repuesto son obligatorios", domain.ErrInvalidInput)
	}
	if !in.Qty.IsPositive() {
		return nil, fmt.Errorf("%w: qty debe ser mayor que cero", domain.ErrInvalidInput)
	}
	if in.UnitPrice != nil && in.UnitPrice.IsNegative() {
		return nil, fmt.Errorf("%w: unit_price no puede ser negativo", domain.ErrInvalidInput)
	}
	if err := requireScale("qty", in.Qty); err != nil {
		return nil, err
	}
	if in.UnitPrice != nil {
		if err := requireScale("unit_price", *in.UnitPrice); err != nil {
			return nil, err
		}
	}
	if _, err := requireLocation(ctx, uc.master, branchID, in.LocationID); err != nil {
		return nil, err
	}
	if _, err := requirePart(ctx, uc.master, in.PartID); err != nil {
		return nil, err
	}
	ok, err := uc.master.JobExists(ctx, branchID, jobID)
	if err != nil {
		return nil, fmt.Errorf("consultar orden de trabajo: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: orden de trabajo %s", domain.ErrNotFound, jobID)
	}

	now := uc.now()
	usage := &entity.PartUsage{
		ID:         uuid.New().String(),
		BranchID:   branchID,
		JobID:      jobID,
		LocationID: in.LocationID,
		PartID:     in.PartID,
		Qty:        in.Qty,
		UnitPrice:  in.UnitPrice,
		Notes:      in.Notes,
		UsedBy:     userID,
		UsedAt:     now,
	}

	var entry *entity.LedgerEntry
	replayed := false
	err = uc.txRunner.Run(ctx, func(repos TxRepos) error {
		prevID, err := reserveKey(ctx, repos, branchID, in.IdempotencyKey, opConsume, usage.ID, now)
		if err != nil {
			return err
		}
		if prevID != "" {
			prev, err := repos.Usages.GetByID(ctx, prevID)
			if err != nil {
				return fmt.Errorf("consultar consumo original: %w", err)
			}
			if prev == nil {
				return fmt.Errorf("%w: consumo %s", domain.ErrNotFound, prevID)
			}
			usage = prev
			replayed = true
			return nil
		}
		entry, err = applyMovement(ctx, repos, movement{
			Key:     entity.StockKey{BranchID: branchID, LocationID: in.LocationID, PartID: in.PartID},
			Type:    entity.MovementConsumption,
			RefType: entity.ReferenceJob,
			RefID:   jobID,
			Delta:   in.Qty.Neg(),
			Notes:   in.Notes,
			Actor:   userID,
			At:      now,
		})
		if err != nil {
			return err
		}
		usage.LedgerEntryID = entry.ID
		if err := repos.Usages.Create(ctx, usage); err != nil {
			return fmt.Errorf("guardar consumo: %w", err)
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if !replayed {
		recordMovements(ctx, entry)
		uc.audit.Record(ctx, AuditEvent{
			Action:     "job.part_consumed",
			EntityType: "part_usage",
			EntityID:   usage.ID,
			BranchID:   branchID,
			ActorID:    userID,
			OccurredAt: now,
			Details: map[string]any{
				"job_id":      jobID,
				"location_id": usage.LocationID,
				"part_id":     usage.PartID,
				"qty":         usage.Qty.String(),
			},
		})
	}
	return toUsageResponse(usage), nil
}

// ListByJob consumos registrados en la orden de trabajo, en orden de registro.
func (uc *ConsumptionUseCase) ListByJob(ctx context.Context, branchID, jobID string) ([]dto.PartUsageResponse, error) {
	if branchID == "" || jobID == "" {
		return nil, fmt.Errorf("%w: sucursal y orden de trabajo son obligatorias", domain.ErrInvalidInput)
	}
	usages, err := uc.repos.Usages.ListByJob(ctx, branchID, jobID)
	if err != nil {
		return nil, fmt.Errorf("listar consumos: %w", err)
	}
	out := make([]dto.PartUsageResponse, 0, len(usages))
	for _, u := range usages {
		out = append(out, *toUsageResponse(u))
	}
	return out, nil
}
