package domain

import "time"

// AuditInfo is embedded in every persisted entity.
type AuditInfo struct {
	CreatedAt  time.Time
	CreatedBy  string
	ModifiedAt *time.Time
	ModifiedBy *string
	IsDeleted  bool
	DeletedAt  *time.Time
	DeletedBy  *string
}

// NewAuditInfo stamps creation metadata.
func NewAuditInfo(actorID string, now time.Time) AuditInfo {
	return AuditInfo{CreatedAt: now, CreatedBy: actorID}
}

// Touch records a modification by actorID.
func (a *AuditInfo) Touch(actorID string, now time.Time) {
	a.ModifiedAt = &now
	a.ModifiedBy = &actorID
}

// MarkDeleted soft-deletes the owning entity.
func (a *AuditInfo) MarkDeleted(actorID string, now time.Time) {
	a.IsDeleted = true
	a.DeletedAt = &now
	a.DeletedBy = &actorID
	a.Touch(actorID, now)
}
