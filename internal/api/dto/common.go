package dto

import "time"

// PagedResult is a page of items plus the total count ignoring paging.
type PagedResult[T any] struct {
	Items      []T `json:"items"`
	TotalCount int `json:"total_count"`
}

// PageQuery carries skip/take paging.
type PageQuery struct {
	Skip int
	Take int
}

// AuditDTO exposes the audit columns of an entity.
type AuditDTO struct {
	CreatedAt  time.Time  `json:"created_at"`
	CreatedBy  string     `json:"created_by"`
	ModifiedAt *time.Time `json:"modified_at,omitempty"`
	ModifiedBy *string    `json:"modified_by,omitempty"`
}
