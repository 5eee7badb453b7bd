package inventory

import (
	"fmt"

	"github.com/jhoicas/taller-stock/internal/domain"
	"github.com/jhoicas/taller-stock/internal/domain/entity"
)

// POAction acción del flujo de órdenes de compra.
type POAction string

const (
	POActionSubmit  POAction = "submit"
	POActionReceive POAction = "receive"
	POActionCancel  POAction = "cancel"
)

// NextPurchaseOrderStatus función de transición de la orden de compra.
// Para receive el destino depende de si todas las líneas quedaron completas.
// Cualquier par (estado, acción) no listado devuelve domain.ErrInvalidTransition.
func NextPurchaseOrderStatus(from entity.PurchaseOrderStatus, action POAction, fullyReceived bool) (entity.PurchaseOrderStatus, error) {
	switch action {
	case POActionSubmit:
		if from == entity.POStatusDraft {
			return entity.POStatusOrdered, nil
		}
	case POActionReceive:
		if from == entity.POStatusOrdered || from == entity.POStatusPartiallyReceived {
			if fullyReceived {
				return entity.POStatusReceived, nil
			}
			return entity.POStatusPartiallyReceived, nil
		}
	case POActionCancel:
		if from == entity.POStatusDraft || from == entity.POStatusOrdered {
			return entity.POStatusCancelled, nil
		}
	}
	return from, fmt.Errorf("%w: orden %s no admite %s", domain.ErrInvalidTransition, from, action)
}
