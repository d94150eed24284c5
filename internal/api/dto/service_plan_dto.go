package dto

import "time"

// ServicePlanDTO response.
type ServicePlanDTO struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	UsageCount  int     `json:"usage_count"`
	AuditDTO
}

// CreateUpdateServicePlanRequest payload for create and update.
type CreateUpdateServicePlanRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
}

// ServicePlanListQuery filters.
type ServicePlanListQuery struct {
	Search   string
	MinPrice *float64
	MaxPrice *float64
	PageQuery
}

// UserServicePlanDTO is one subscription, with the plan name for display.
type UserServicePlanDTO struct {
	ID              string    `json:"id"`
	AppUserID       string    `json:"app_user_id"`
	ServicePlanID   string    `json:"service_plan_id"`
	ServicePlanName string    `json:"service_plan_name"`
	SubscribedAt    time.Time `json:"subscribed_at"`
}
