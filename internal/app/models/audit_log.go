package models

import "time"

// AuditLog records a staff action against a case, with a serialized diff of
// the changed fields. Writes are best-effort: a failed audit write is logged
// loudly but never fails the primary operation.
type AuditLog struct {
	ID        int64     `json:"id" db:"id" example:"1"`
	ActorID   int64     `json:"actorId" db:"actor_id" example:"7"`
	CaseID    int64     `json:"caseId" db:"case_id" example:"1"`
	Action    string    `json:"action" db:"action" example:"case_update"`
	Details   []byte    `json:"details" db:"details" swaggertype:"string"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}
