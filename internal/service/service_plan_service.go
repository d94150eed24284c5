package service

import (
	"context"

	"github.com/helpline-io/support-portal/internal/api/dto"
	"github.com/helpline-io/support-portal/internal/manager"
	"github.com/helpline-io/support-portal/internal/repository"
)

// ServicePlanService is the ServicePlan facade.
type ServicePlanService struct {
	plans    *manager.ServicePlanManager
	users    *manager.AppUserManager
	identity IdentityProvider
}

// NewServicePlanService builds the facade.
func NewServicePlanService(plans *manager.ServicePlanManager, users *manager.AppUserManager, identity IdentityProvider) *ServicePlanService {
	return &ServicePlanService{plans: plans, users: users, identity: identity}
}

// Create adds a plan.
func (s *ServicePlanService) Create(ctx context.Context, req dto.CreateUpdateServicePlanRequest) (*dto.ServicePlanDTO, error) {
	principalID, err := currentPrincipal(ctx, s.identity)
	if err != nil {
		return nil, err
	}
	plan, err := s.plans.Create(ctx, toServicePlanInput(req), principalID)
	if err != nil {
		return nil, err
	}
	out := toServicePlanDTO(plan)
	return &out, nil
}

// Get returns one plan.
func (s *ServicePlanService) Get(ctx context.Context, id string) (*dto.ServicePlanDTO, error) {
	if _, err := currentPrincipal(ctx, s.identity); err != nil {
		return nil, err
	}
	plan, err := s.plans.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	out := toServicePlanDTO(plan)
	return &out, nil
}

// List pages plans, newest first.
func (s *ServicePlanService) List(ctx context.Context, q dto.ServicePlanListQuery) (dto.PagedResult[dto.ServicePlanDTO], error) {
	if _, err := currentPrincipal(ctx, s.identity); err != nil {
		return dto.PagedResult[dto.ServicePlanDTO]{}, err
	}
	page, err := s.plans.ListPaged(ctx, repository.ServicePlanFilter{
		SearchTerm: q.Search,
		MinPrice:   q.MinPrice,
		MaxPrice:   q.MaxPrice,
	}, pageRequest(q.PageQuery))
	if err != nil {
		return dto.PagedResult[dto.ServicePlanDTO]{}, err
	}
	return mapPage(page, toServicePlanDTO), nil
}

// Update edits a plan.
func (s *ServicePlanService) Update(ctx context.Context, id string, req dto.CreateUpdateServicePlanRequest) (*dto.ServicePlanDTO, error) {
	principalID, err := currentPrincipal(ctx, s.identity)
	if err != nil {
		return nil, err
	}
	plan, err := s.plans.Update(ctx, id, toServicePlanInput(req), principalID)
	if err != nil {
		return nil, err
	}
	out := toServicePlanDTO(plan)
	return &out, nil
}

// Delete soft-deletes a plan.
func (s *ServicePlanService) Delete(ctx context.Context, id string) error {
	principalID, err := currentPrincipal(ctx, s.identity)
	if err != nil {
		return err
	}
	return s.plans.Delete(ctx, id, principalID)
}

// Subscribe subscribes the caller to a plan.
func (s *ServicePlanService) Subscribe(ctx context.Context, planID string) (*dto.UserServicePlanDTO, error) {
	user, err := currentAppUser(ctx, s.identity, s.users)
	if err != nil {
		return nil, err
	}
	sub, err := s.plans.Subscribe(ctx, planID, user.ID, user.IdentityUserID)
	if err != nil {
		return nil, err
	}
	plan, err := s.plans.GetByID(ctx, planID)
	if err != nil {
		return nil, err
	}
	out := toUserServicePlanDTO(sub, plan.Name)
	return &out, nil
}

// MySubscriptions lists the caller's subscriptions.
func (s *ServicePlanService) MySubscriptions(ctx context.Context) ([]dto.UserServicePlanDTO, error) {
	user, err := currentAppUser(ctx, s.identity, s.users)
	if err != nil {
		return nil, err
	}
	subs, err := s.plans.ListSubscriptions(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.UserServicePlanDTO, 0, len(subs))
	for i := range subs {
		name := ""
		if plan, err := s.plans.GetByID(ctx, subs[i].ServicePlanID); err == nil {
			name = plan.Name
		}
		out = append(out, toUserServicePlanDTO(&subs[i], name))
	}
	return out, nil
}
