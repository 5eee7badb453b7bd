package stock

import (
	"context"
	"time"

	"github.com/jhoicas/taller-stock/internal/domain/entity"
	"github.com/jhoicas/taller-stock/internal/domain/repository"
)

// TxRepos repositorios atados a una misma transacción (o al pool, para lecturas).
type TxRepos struct {
	Balances     repository.StockBalanceRepository
	Ledger       repository.LedgerRepository
	Adjustments  repository.AdjustmentRepository
	Orders       repository.PurchaseOrderRepository
	Transfers    repository.TransferRepository
	Usages       repository.PartUsageRepository
	PartRequests repository.PartRequestRepository
	Sequences    repository.SequenceRepository
	Idempotency  repository.IdempotencyRepository
}

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Si fn devuelve error se hace Rollback y ningún efecto queda visible; si no, Commit.
type TxRunner interface {
	Run(ctx context.Context, fn func(repos TxRepos) error) error
	// RunReadOnly ejecuta fn sobre una instantánea consistente; todas sus lecturas ven el mismo estado.
	RunReadOnly(ctx context.Context, fn func(repos TxRepos) error) error
}

// AuditEvent evento de negocio confirmado (ya hizo Commit).
type AuditEvent struct {
	Action     string         `json:"action"`
	EntityType string         `json:"entity_type"`
	EntityID   string         `json:"entity_id"`
	BranchID   string         `json:"branch_id"`
	ActorID    string         `json:"actor_id"`
	OccurredAt time.Time      `json:"occurred_at"`
	Details    map[string]any `json:"details,omitempty"`
}

// AuditSink recibe los eventos de auditoría. Sus fallas no afectan la operación ya confirmada,
// por eso no devuelve error: cada implementación registra sus propios fallos.
type AuditSink interface {
	Record(ctx context.Context, event AuditEvent)
}

// TransferDocumentGenerator genera el manifiesto imprimible que acompaña un traslado.
type TransferDocumentGenerator interface {
	TransferManifestPDF(
		ctx context.Context,
		transfer *entity.StockTransfer,
		from, to *entity.Location,
		parts map[string]*entity.Part,
	) ([]byte, error)
}

type nopAudit struct{}

func (nopAudit) Record(context.Context, AuditEvent) {}

func auditOrNop(a AuditSink) AuditSink {
	if a == nil {
		return nopAudit{}
	}
	return a
}
