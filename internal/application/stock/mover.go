package stock

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/jhoicas/taller-stock/internal/domain"
	"github.com/jhoicas/taller-stock/internal/domain/entity"
)

const instrumentationName = "github.com/jhoicas/taller-stock/internal/application/stock"

var (
	tracer = otel.Tracer(instrumentationName)
	meter  = otel.Meter(instrumentationName)

	movementCounter, _ = meter.Int64Counter("stock.movements",
		metric.WithDescription("Movimientos de stock confirmados"))
	movementQuantity, _ = meter.Float64Counter("stock.movement.quantity",
		metric.WithDescription("Unidades movidas (valor absoluto) en movimientos confirmados"))
)

// movement describe un cambio de saldo y el asiento que lo respalda.
type movement struct {
	Key      entity.StockKey
	Type     entity.MovementType
	RefType  entity.ReferenceType
	RefID    string
	Delta    decimal.Decimal
	UnitCost *decimal.Decimal
	Notes    string
	Actor    string
	At       time.Time
}

// applyMovement aplica delta al saldo (ApplyMovement bloquea y valida no-negatividad)
// y agrega el asiento con el mismo delta, dentro de la transacción de repos.
// Es la única ruta de escritura de saldos: así la suma del libro por clave siempre es el saldo.
func applyMovement(ctx context.Context, repos TxRepos, m movement) (*entity.LedgerEntry, error) {
	if !m.Type.IsValid() || m.Delta.IsZero() || m.Type.IsIncrease() != m.Delta.IsPositive() {
		return nil, fmt.Errorf("%w: movimiento %s con delta %s", domain.ErrInvalidInput, m.Type, m.Delta)
	}
	if _, err := repos.Balances.ApplyMovement(ctx, m.Key, m.Delta); err != nil {
		if errors.Is(err, domain.ErrInsufficientStock) {
			return nil, fmt.Errorf("%w: repuesto %s en ubicación %s", domain.ErrInsufficientStock, m.Key.PartID, m.Key.LocationID)
		}
		return nil, err
	}
	entry := &entity.LedgerEntry{
		ID:            uuid.New().String(),
		StockKey:      m.Key,
		MovementType:  m.Type,
		ReferenceType: m.RefType,
		ReferenceID:   m.RefID,
		QuantityDelta: m.Delta,
		UnitCost:      m.UnitCost,
		Notes:         m.Notes,
		PerformedBy:   m.Actor,
		PerformedAt:   m.At,
	}
	if err := repos.Ledger.Append(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// recordMovements registra métricas de asientos ya confirmados.
func recordMovements(ctx context.Context, entries ...*entity.LedgerEntry) {
	for _, e := range entries {
		attrs := metric.WithAttributes(attribute.String("movement_type", string(e.MovementType)))
		movementCounter.Add(ctx, 1, attrs)
		movementQuantity.Add(ctx, e.QuantityDelta.Abs().InexactFloat64(), attrs)
	}
}

// sortedByPart ordena claves por repuesto para que transacciones concurrentes
// bloqueen las filas de saldo siempre en el mismo orden.
func sortedByPart[T any](items []T, part func(T) string) []T {
	out := make([]T, len(items))
	copy(out, items)
	sort.SliceStable(out, func(i, j int) bool { return part(out[i]) < part(out[j]) })
	return out
}
