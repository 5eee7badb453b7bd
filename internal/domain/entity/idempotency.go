package entity

import "time"

// IdempotencyRecord clave enviada por el cliente para no aplicar dos veces la misma operación.
type IdempotencyRecord struct {
	BranchID    string
	Key         string
	Operation   string
	ReferenceID string
	CreatedAt   time.Time
}
