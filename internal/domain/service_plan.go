package domain

import "time"

// ServicePlan is a subscribable support offering.
type ServicePlan struct {
	ID          string
	Name        string
	Description string
	Price       float64
	UsageCount  int
	AuditInfo
}

// UserServicePlan links an AppUser to a ServicePlan.
type UserServicePlan struct {
	ID            string
	AppUserID     string
	ServicePlanID string
	SubscribedAt  time.Time
	AuditInfo
}
