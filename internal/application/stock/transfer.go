package stock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/jhoicas/taller-stock/internal/application/dto"
	"github.com/jhoicas/taller-stock/internal/domain"
	"github.com/jhoicas/taller-stock/internal/domain/entity"
	"github.com/jhoicas/taller-stock/internal/domain/inventory"
	"github.com/jhoicas/taller-stock/internal/domain/repository"
)

const transferSequence = "transfer"

// ErrNoDocumentGenerator el servicio se armó sin generador de PDF.
var ErrNoDocumentGenerator = errors.New("generador de documentos no configurado")

// TransferUseCase traslados de repuestos entre ubicaciones o sucursales.
// Despachar debita el origen; recibir acredita el destino.
type TransferUseCase struct {
	txRunner TxRunner
	repos    TxRepos
	master   repository.MasterDataRepository
	audit    AuditSink
	docs     TransferDocumentGenerator
	now      func() time.Time
}

// NewTransferUseCase construye el caso de uso. docs puede ser nil si no se sirven manifiestos.
func NewTransferUseCase(
	txRunner TxRunner,
	repos TxRepos,
	master repository.MasterDataRepository,
	audit AuditSink,
	docs TransferDocumentGenerator,
) *TransferUseCase {
	return &TransferUseCase{
		txRunner: txRunner,
		repos:    repos,
		master:   master,
		audit:    auditOrNop(audit),
		docs:     docs,
		now:      time.Now,
	}
}

// Create registra el traslado en DRAFT desde la sucursal del usuario.
func (uc *TransferUseCase) Create(ctx context.Context, userID, branchID string, in dto.CreateTransferRequest) (*dto.TransferResponse, error) {
	ctx, span := tracer.Start(ctx, "transfer.Create", trace.WithAttributes(
		attribute.String("from_branch_id", branchID),
		attribute.String("to_branch_id", in.ToBranchID),
	))
	defer span.End()

	if userID == "" || branchID == "" || in.FromLocationID == "" || in.ToBranchID == "" || in.ToLocationID == "" {
		return nil, fmt.Errorf("%w: origen y destino (sucursal y ubicación) son obligatorios", domain.ErrInvalidInput)
	}
	if branchID == in.ToBranchID && in.FromLocationID == in.ToLocationID {
		return nil, fmt.Errorf("%w: origen y destino no pueden ser la misma ubicación", domain.ErrInvalidInput)
	}
	if len(in.Items) == 0 {
		return nil, fmt.Errorf("%w: el traslado debe tener al menos una línea", domain.ErrInvalidInput)
	}
	if _, err := requireLocation(ctx, uc.master, branchID, in.FromLocationID); err != nil {
		return nil, err
	}
	if _, err := requireLocation(ctx, uc.master, in.ToBranchID, in.ToLocationID); err != nil {
		return nil, err
	}

	now := uc.now()
	t := &entity.StockTransfer{
		ID:             uuid.New().String(),
		FromBranchID:   branchID,
		FromLocationID: in.FromLocationID,
		ToBranchID:     in.ToBranchID,
		ToLocationID:   in.ToLocationID,
		Status:         entity.TransferStatusDraft,
		Notes:          in.Notes,
		CreatedBy:      userID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	seen := make(map[string]bool, len(in.Items))
	for _, it := range in.Items {
		if it.PartID == "" {
			return nil, fmt.Errorf("%w: part_id es obligatorio", domain.ErrInvalidInput)
		}
		if !it.Qty.IsPositive() {
			return nil, fmt.Errorf("%w: qty debe ser mayor que cero (repuesto %s)", domain.ErrInvalidInput, it.PartID)
		}
		if err := requireScale("qty", it.Qty); err != nil {
			return nil, err
		}
		if seen[it.PartID] {
			return nil, fmt.Errorf("%w: repuesto %s repetido en el traslado", domain.ErrInvalidInput, it.PartID)
		}
		seen[it.PartID] = true
		if _, err := requirePart(ctx, uc.master, it.PartID); err != nil {
			return nil, err
		}
		t.Items = append(t.Items, &entity.StockTransferItem{
			ID:         uuid.New().String(),
			TransferID: t.ID,
			PartID:     it.PartID,
			Qty:        it.Qty,
		})
	}

	replayed := false
	err := uc.txRunner.Run(ctx, func(repos TxRepos) error {
		prevID, err := reserveKey(ctx, repos, branchID, in.IdempotencyKey, opCreateTransfer, t.ID, now)
		if err != nil {
			return err
		}
		if prevID != "" {
			prev, err := repos.Transfers.GetByID(ctx, prevID)
			if err != nil {
				return fmt.Errorf("consultar traslado original: %w", err)
			}
			if prev == nil {
				return fmt.Errorf("%w: traslado %s", domain.ErrNotFound, prevID)
			}
			t = prev
			replayed = true
			return nil
		}
		seq, err := repos.Sequences.Next(ctx, transferSequence)
		if err != nil {
			return fmt.Errorf("numerar traslado: %w", err)
		}
		t.TransferNumber = fmt.Sprintf("TRF-%06d", seq)
		if err := repos.Transfers.Create(ctx, t); err != nil {
			return fmt.Errorf("guardar traslado: %w", err)
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if !replayed {
		uc.publish(ctx, "transfer.created", t, userID, now, map[string]any{
			"transfer_number": t.TransferNumber,
			"to_branch_id":    t.ToBranchID,
			"items":           len(t.Items),
		})
	}
	return toTransferResponse(t), nil
}

// Request DRAFT -> REQUESTED. Solo la sucursal de origen.
func (uc *TransferUseCase) Request(ctx context.Context, userID, branchID, id string) (*dto.TransferResponse, error) {
	return uc.advance(ctx, userID, branchID, id, inventory.TransferActionRequest)
}

// Ship REQUESTED -> SHIPPED debitando cada línea en el origen. Si alguna línea no tiene
// saldo suficiente no se debita ninguna.
func (uc *TransferUseCase) Ship(ctx context.Context, userID, branchID, id string) (*dto.TransferResponse, error) {
	return uc.advance(ctx, userID, branchID, id, inventory.TransferActionShip)
}

// Receive SHIPPED -> RECEIVED acreditando cada línea en el destino. Solo la sucursal de destino.
func (uc *TransferUseCase) Receive(ctx context.Context, userID, branchID, id string) (*dto.TransferResponse, error) {
	return uc.advance(ctx, userID, branchID, id, inventory.TransferActionReceive)
}

// Cancel DRAFT|REQUESTED -> CANCELLED. Un traslado despachado no se puede anular.
func (uc *TransferUseCase) Cancel(ctx context.Context, userID, branchID, id string) (*dto.TransferResponse, error) {
	return uc.advance(ctx, userID, branchID, id, inventory.TransferActionCancel)
}

func (uc *TransferUseCase) advance(ctx context.Context, userID, branchID, id string, action inventory.TransferAction) (*dto.TransferResponse, error) {
	ctx, span := tracer.Start(ctx, "transfer."+string(action), trace.WithAttributes(
		attribute.String("branch_id", branchID),
		attribute.String("transfer_id", id),
	))
	defer span.End()

	if userID == "" || branchID == "" || id == "" {
		return nil, fmt.Errorf("%w: usuario, sucursal y traslado son obligatorios", domain.ErrInvalidInput)
	}
	now := uc.now()
	var (
		t       *entity.StockTransfer
		entries []*entity.LedgerEntry
	)
	err := uc.txRunner.Run(ctx, func(repos TxRepos) error {
		var err error
		t, err = repos.Transfers.GetForUpdate(ctx, id)
		if err != nil {
			return fmt.Errorf("consultar traslado: %w", err)
		}
		if t == nil || !t.InvolvesBranch(branchID) {
			return fmt.Errorf("%w: traslado %s", domain.ErrNotFound, id)
		}
		actingBranch := t.FromBranchID
		if action == inventory.TransferActionReceive {
			actingBranch = t.ToBranchID
		}
		if branchID != actingBranch {
			return fmt.Errorf("%w: la sucursal %s no puede ejecutar %s sobre el traslado %s",
				domain.ErrForbidden, branchID, action, t.TransferNumber)
		}

		next, err := inventory.NextTransferStatus(t.Status, action)
		if err != nil {
			return err
		}

		items := sortedByPart(t.Items, func(it *entity.StockTransferItem) string { return it.PartID })
		switch action {
		case inventory.TransferActionRequest:
			t.RequestedAt = &now
		case inventory.TransferActionShip:
			for _, it := range items {
				entry, err := applyMovement(ctx, repos, movement{
					Key:     t.Source(it.PartID),
					Type:    entity.MovementTransferOut,
					RefType: entity.ReferenceTransfer,
					RefID:   t.ID,
					Delta:   it.Qty.Neg(),
					Notes:   t.TransferNumber,
					Actor:   userID,
					At:      now,
				})
				if err != nil {
					return err
				}
				entries = append(entries, entry)
			}
			t.ShippedAt = &now
		case inventory.TransferActionReceive:
			for _, it := range items {
				entry, err := applyMovement(ctx, repos, movement{
					Key:     t.Destination(it.PartID),
					Type:    entity.MovementTransferIn,
					RefType: entity.ReferenceTransfer,
					RefID:   t.ID,
					Delta:   it.Qty,
					Notes:   t.TransferNumber,
					Actor:   userID,
					At:      now,
				})
				if err != nil {
					return err
				}
				entries = append(entries, entry)
			}
			t.ReceivedAt = &now
		case inventory.TransferActionCancel:
			t.CancelledAt = &now
		}
		t.Status = next
		t.UpdatedAt = now
		if err := repos.Transfers.Update(ctx, t); err != nil {
			return fmt.Errorf("actualizar traslado: %w", err)
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	recordMovements(ctx, entries...)
	uc.publish(ctx, "transfer."+string(action), t, userID, now, map[string]any{
		"status":    string(t.Status),
		"total_qty": t.TotalQty().String(),
	})
	return toTransferResponse(t), nil
}

// Get devuelve el traslado si la sucursal es origen o destino.
func (uc *TransferUseCase) Get(ctx context.Context, branchID, id string) (*dto.TransferResponse, error) {
	t, err := uc.visible(ctx, branchID, id)
	if err != nil {
		return nil, err
	}
	return toTransferResponse(t), nil
}

func (uc *TransferUseCase) visible(ctx context.Context, branchID, id string) (*entity.StockTransfer, error) {
	t, err := uc.repos.Transfers.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("consultar traslado: %w", err)
	}
	if t == nil || !t.InvolvesBranch(branchID) {
		return nil, fmt.Errorf("%w: traslado %s", domain.ErrNotFound, id)
	}
	return t, nil
}

// List lista traslados de la sucursal: salientes, entrantes o ambos.
func (uc *TransferUseCase) List(ctx context.Context, branchID, direction, status string, page dto.PageRequest) (*dto.TransferListResponse, error) {
	if branchID == "" {
		return nil, fmt.Errorf("%w: sucursal obligatoria", domain.ErrInvalidInput)
	}
	switch direction {
	case "", repository.TransferDirectionOutgoing, repository.TransferDirectionIncoming:
	default:
		return nil, fmt.Errorf("%w: direction debe ser outgoing o incoming", domain.ErrInvalidInput)
	}
	st := entity.TransferStatus(status)
	switch st {
	case "", entity.TransferStatusDraft, entity.TransferStatusRequested, entity.TransferStatusShipped,
		entity.TransferStatusReceived, entity.TransferStatusCancelled:
	default:
		return nil, fmt.Errorf("%w: estado %s", domain.ErrInvalidInput, status)
	}
	limit, offset := pageBounds(page.Limit, page.Offset)
	list, total, err := uc.repos.Transfers.List(ctx, repository.TransferFilter{
		BranchID: branchID, Direction: direction, Status: st, Limit: limit, Offset: offset,
	})
	if err != nil {
		return nil, fmt.Errorf("listar traslados: %w", err)
	}
	out := &dto.TransferListResponse{
		Items: make([]dto.TransferResponse, 0, len(list)),
		Page:  dto.PageResponse{Limit: limit, Offset: offset, Total: total},
	}
	for _, t := range list {
		out.Items = append(out.Items, *toTransferResponse(t))
	}
	return out, nil
}

// InTransit líneas despachadas y aún no recibidas en las que participa la sucursal.
// Es stock que no figura en ningún saldo.
func (uc *TransferUseCase) InTransit(ctx context.Context, branchID string) ([]dto.InTransitLine, error) {
	if branchID == "" {
		return nil, fmt.Errorf("%w: sucursal obligatoria", domain.ErrInvalidInput)
	}
	lines := []dto.InTransitLine{}
	const pageSize = 100
	for offset := 0; ; offset += pageSize {
		list, total, err := uc.repos.Transfers.List(ctx, repository.TransferFilter{
			BranchID: branchID, Status: entity.TransferStatusShipped, Limit: pageSize, Offset: offset,
		})
		if err != nil {
			return nil, fmt.Errorf("listar traslados en tránsito: %w", err)
		}
		for _, t := range list {
			for _, it := range t.Items {
				lines = append(lines, dto.InTransitLine{
					TransferID:     t.ID,
					TransferNumber: t.TransferNumber,
					FromBranchID:   t.FromBranchID,
					ToBranchID:     t.ToBranchID,
					PartID:         it.PartID,
					Qty:            it.Qty,
					ShippedAt:      t.ShippedAt,
				})
			}
		}
		if len(list) == 0 || offset+len(list) >= total {
			break
		}
	}
	return lines, nil
}

// Manifest genera el PDF que acompaña físicamente al traslado. Devuelve el PDF y el número del traslado.
func (uc *TransferUseCase) Manifest(ctx context.Context, branchID, id string) ([]byte, string, error) {
	ctx, span := tracer.Start(ctx, "transfer.Manifest", trace.WithAttributes(attribute.String("transfer_id", id)))
	defer span.End()

	if uc.docs == nil {
		return nil, "", ErrNoDocumentGenerator
	}
	t, err := uc.visible(ctx, branchID, id)
	if err != nil {
		return nil, "", err
	}
	from, err := uc.master.GetLocation(ctx, t.FromLocationID)
	if err != nil {
		return nil, "", fmt.Errorf("consultar ubicación: %w", err)
	}
	to, err := uc.master.GetLocation(ctx, t.ToLocationID)
	if err != nil {
		return nil, "", fmt.Errorf("consultar ubicación: %w", err)
	}
	parts := make(map[string]*entity.Part, len(t.Items))
	for _, it := range t.Items {
		p, err := uc.master.GetPart(ctx, it.PartID)
		if err != nil {
			return nil, "", fmt.Errorf("consultar repuesto: %w", err)
		}
		if p != nil {
			parts[it.PartID] = p
		}
	}
	pdf, err := uc.docs.TransferManifestPDF(ctx, t, from, to, parts)
	if err != nil {
		span.RecordError(err)
		return nil, "", fmt.Errorf("generar manifiesto: %w", err)
	}
	return pdf, t.TransferNumber, nil
}

func (uc *TransferUseCase) publish(ctx context.Context, action string, t *entity.StockTransfer, userID string, at time.Time, details map[string]any) {
	uc.audit.Record(ctx, AuditEvent{
		Action:     action,
		EntityType: "stock_transfer",
		EntityID:   t.ID,
		BranchID:   t.FromBranchID,
		ActorID:    userID,
		OccurredAt: at,
		Details:    details,
	})
}
