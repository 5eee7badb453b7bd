package inventory

import (
	"fmt"

	"github.com/jhoicas/taller-stock/internal/domain"
	"github.com/jhoicas/taller-stock/internal/domain/entity"
)

// TransferAction acción del flujo de traslados.
type TransferAction string

const (
	TransferActionRequest TransferAction = "request"
	TransferActionShip    TransferAction = "ship"
	TransferActionReceive TransferAction = "receive"
	TransferActionCancel  TransferAction = "cancel"
)

var transferTransitions = map[entity.TransferStatus]map[TransferAction]entity.TransferStatus{
	entity.TransferStatusDraft: {
		TransferActionRequest: entity.TransferStatusRequested,
		TransferActionCancel:  entity.TransferStatusCancelled,
	},
	entity.TransferStatusRequested: {
		TransferActionShip:   entity.TransferStatusShipped,
		TransferActionCancel: entity.TransferStatusCancelled,
	},
	// Un traslado despachado ya debitó el origen: solo puede recibirse.
	entity.TransferStatusShipped: {
		TransferActionReceive: entity.TransferStatusReceived,
	},
}

// NextTransferStatus función de transición del traslado.
func NextTransferStatus(from entity.TransferStatus, action TransferAction) (entity.TransferStatus, error) {
	if to, ok := transferTransitions[from][action]; ok {
		return to, nil
	}
	return from, fmt.Errorf("%w: traslado %s no admite %s", domain.ErrInvalidTransition, from, action)
}
