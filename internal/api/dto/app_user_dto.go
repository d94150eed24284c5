package dto

import "github.com/helpline-io/support-portal/internal/domain"

// AppUserDTO response.
type AppUserDTO struct {
	ID             string          `json:"id"`
	IdentityUserID string          `json:"identity_user_id"`
	DisplayName    string          `json:"display_name"`
	Username       string          `json:"username"`
	Email          string          `json:"email"`
	Phone          string          `json:"phone"`
	UserType       domain.UserType `json:"user_type"`
	Active         bool            `json:"active"`
	AuditDTO
}

// UpdateAppUserRequest payload.
type UpdateAppUserRequest struct {
	DisplayName string          `json:"display_name"`
	Email       string          `json:"email"`
	Phone       string          `json:"phone"`
	UserType    domain.UserType `json:"user_type"`
	Active      bool            `json:"active"`
}

// AppUserListQuery filters.
type AppUserListQuery struct {
	UserTypes []domain.UserType
	Active    *bool
	Search    string
	PageQuery
}
