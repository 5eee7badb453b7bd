package stock

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/jhoicas/taller-stock/internal/application/dto"
	"github.com/jhoicas/taller-stock/internal/domain"
	"github.com/jhoicas/taller-stock/internal/domain/entity"
	"github.com/jhoicas/taller-stock/internal/domain/repository"
)

// AdjustmentUseCase corrige saldos por conteo físico, daño o pérdida.
type AdjustmentUseCase struct {
	txRunner TxRunner
	repos    TxRepos
	master   repository.MasterDataRepository
	audit    AuditSink
	now      func() time.Time
}

// NewAdjustmentUseCase construye el caso de uso. repos se usa fuera de transacción (lecturas).
func NewAdjustmentUseCase(txRunner TxRunner, repos TxRepos, master repository.MasterDataRepository, audit AuditSink) *AdjustmentUseCase {
	return &AdjustmentUseCase{
		txRunner: txRunner,
		repos:    repos,
		master:   master,
		audit:    auditOrNop(audit),
		now:      time.Now,
	}
}

// Adjust aplica un delta firmado sobre (sucursal, ubicación, repuesto) y deja el ajuste y su asiento.
// Un delta negativo mayor al saldo devuelve domain.ErrInsufficientStock sin efectos.
func (uc *AdjustmentUseCase) Adjust(ctx context.Context, userID, branchID string, in dto.AdjustStockRequest) (*dto.AdjustmentResponse, error) {
	ctx, span := tracer.Start(ctx, "stock.Adjust", trace.WithAttributes(
		attribute.String("branch_id", branchID),
		attribute.String("part_id", in.PartID),
	))
	defer span.End()

	if userID == "" || branchID == "" || in.LocationID == "" || in.PartID == "" {
		return nil, fmt.Errorf("%w: usuario, sucursal, ubicación y repuesto son obligatorios", domain.ErrInvalidInput)
	}
	if in.QuantityDelta.IsZero() {
		return nil, fmt.Errorf("%w: quantity_delta no puede ser cero", domain.ErrInvalidInput)
	}
	if err := requireScale("quantity_delta", in.QuantityDelta); err != nil {
		return nil, err
	}
	reason := strings.TrimSpace(in.Reason)
	if reason == "" {
		return nil, fmt.Errorf("%w: reason es obligatorio", domain.ErrInvalidInput)
	}
	if _, err := requireLocation(ctx, uc.master, branchID, in.LocationID); err != nil {
		return nil, err
	}
	if _, err := requirePart(ctx, uc.master, in.PartID); err != nil {
		return nil, err
	}

	now := uc.now()
	adj := &entity.StockAdjustment{
		ID:            uuid.New().String(),
		StockKey:      entity.StockKey{BranchID: branchID, LocationID: in.LocationID, PartID: in.PartID},
		QuantityDelta: in.QuantityDelta,
		Reason:        reason,
		CreatedBy:     userID,
		ApprovedBy:    in.ApprovedBy,
		CreatedAt:     now,
	}

	var entry *entity.LedgerEntry
	replayed := false
	err := uc.txRunner.Run(ctx, func(repos TxRepos) error {
		prevID, err := reserveKey(ctx, repos, branchID, in.IdempotencyKey, opAdjust, adj.ID, now)
		if err != nil {
			return err
		}
		if prevID != "" {
			prev, err := repos.Adjustments.GetByID(ctx, prevID)
			if err != nil {
				return fmt.Errorf("consultar ajuste original: %w", err)
			}
			if prev == nil {
				return fmt.Errorf("%w: ajuste %s", domain.ErrNotFound, prevID)
			}
			adj = prev
			replayed = true
			return nil
		}

		entry, err = applyMovement(ctx, repos, movement{
			Key:     adj.StockKey,
			Type:    entity.MovementTypeForAdjustment(adj.QuantityDelta),
			RefType: entity.ReferenceAdjustment,
			RefID:   adj.ID,
			Delta:   adj.QuantityDelta,
			Notes:   reason,
			Actor:   userID,
			At:      now,
		})
		if err != nil {
			return err
		}
		adj.LedgerEntryID = entry.ID
		if err := repos.Adjustments.Create(ctx, adj); err != nil {
			return fmt.Errorf("guardar ajuste: %w", err)
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
			Action:     "stock.adjusted",
			EntityType: "stock_adjustment",
			EntityID:   adj.ID,
			BranchID:   branchID,
			ActorID:    userID,
			OccurredAt: now,
			Details: map[string]any{
				"location_id":    adj.LocationID,
				"part_id":        adj.PartID,
				"quantity_delta": adj.QuantityDelta.String(),
				"reason":         adj.Reason,
			},
		})
	}
	return toAdjustmentResponse(adj), nil
}
