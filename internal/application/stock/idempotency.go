package stock

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/taller-stock/internal/domain"
	"github.com/jhoicas/taller-stock/internal/domain/entity"
)

// Operaciones registradas con la clave de idempotencia.
const (
	opAdjust         = "stock.adjust"
	opCreateOrder    = "purchase_order.create"
	opReceiveOrder   = "purchase_order.receive"
	opCreateTransfer = "transfer.create"
	opConsume        = "job.consume"
)

// reserveKey registra la clave dentro de la transacción. Si la clave ya se usó para la misma
// operación devuelve la referencia original (la llamada es una repetición); si se usó para
// otra operación devuelve domain.ErrDuplicate. Sin clave no hace nada.
func reserveKey(ctx context.Context, repos TxRepos, branchID, key, operation, referenceID string, now time.Time) (string, error) {
	if key == "" {
		return "", nil
	}
	prev, err := repos.Idempotency.Reserve(ctx, &entity.IdempotencyRecord{
		BranchID:    branchID,
		Key:         key,
		Operation:   operation,
		ReferenceID: referenceID,
		CreatedAt:   now,
	})
	if err != nil {
		return "", err
	}
	if prev == nil {
		return "", nil
	}
	if prev.Operation != operation {
		return "", fmt.Errorf("%w: clave de idempotencia ya usada en %s", domain.ErrDuplicate, prev.Operation)
	}
	return prev.ReferenceID, nil
}
