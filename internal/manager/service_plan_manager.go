package manager

import (
	"context"
	"strings"

	"github.com/helpline-io/support-portal/internal/domain"
	"github.com/helpline-io/support-portal/internal/repository"
	apperrors "github.com/helpline-io/support-portal/pkg/util/errorutil"
)

// PlanCache caches service plans by id. Implementations must treat failures as misses.
type PlanCache interface {
	Get(ctx context.Context, id string) (*domain.ServicePlan, bool)
	Set(ctx context.Context, plan *domain.ServicePlan)
	Invalidate(ctx context.Context, id string)
}

// ServicePlanInput carries plan fields for create and update.
type ServicePlanInput struct {
	Name        string  `validate:"required,max=128"`
	Description string  `validate:"max=2000"`
	Price       float64 `validate:"gte=0,lte=9999999999.99,cents"`
}

// ServicePlanManager owns plans and their subscriptions.
type ServicePlanManager struct {
	core
	plans repository.ServicePlanRepository
	users repository.AppUserRepository
	cache PlanCache
}

// NewServicePlanManager constructs the manager. cache may be nil.
func NewServicePlanManager(plans repository.ServicePlanRepository, users repository.AppUserRepository, cache PlanCache, opts ...Option) *ServicePlanManager {
	return &ServicePlanManager{core: newCore(opts), plans: plans, users: users, cache: cache}
}

// Create adds a plan with a unique name.
func (m *ServicePlanManager) Create(ctx context.Context, input ServicePlanInput, actingUserID string) (*domain.ServicePlan, error) {
	if err := requireActor(actingUserID); err != nil {
		return nil, err
	}
	input.Name = strings.TrimSpace(input.Name)
	if err := validateInput(input); err != nil {
		return nil, err
	}
	if err := m.ensureUniqueName(ctx, input.Name, ""); err != nil {
		return nil, err
	}

	plan := &domain.ServicePlan{
		ID:          m.newID(),
		Name:        input.Name,
		Description: strings.TrimSpace(input.Description),
		Price:       input.Price,
		AuditInfo:   domain.NewAuditInfo(actingUserID, m.now()),
	}
	if err := m.plans.Insert(ctx, plan); err != nil {
		return nil, apperrors.FromStore("service plan", plan.ID, err)
	}
	return plan, nil
}

// GetByID fetches a live plan, reading through the cache.
func (m *ServicePlanManager) GetByID(ctx context.Context, id string) (*domain.ServicePlan, error) {
	if m.cache != nil {
		if plan, ok := m.cache.Get(ctx, id); ok {
			return plan, nil
		}
	}
	plan, err := m.plans.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.FromStore("service plan", id, err)
	}
	if m.cache != nil {
		m.cache.Set(ctx, plan)
	}
	return plan, nil
}

// ListPaged returns newest plans first.
func (m *ServicePlanManager) ListPaged(ctx context.Context, filter repository.ServicePlanFilter, page repository.PageRequest) (repository.Page[domain.ServicePlan], error) {
	result, err := m.plans.Query(ctx, filter, page.Normalize())
	if err != nil {
		return repository.Page[domain.ServicePlan]{}, apperrors.FromStore("service plans", "", err)
	}
	return result, nil
}

// Update edits a plan. This is the administrative edit path.
func (m *ServicePlanManager) Update(ctx context.Context, id string, input ServicePlanInput, actingUserID string) (*domain.ServicePlan, error) {
	if err := requireActor(actingUserID); err != nil {
		return nil, err
	}
	input.Name = strings.TrimSpace(input.Name)
	if err := validateInput(input); err != nil {
		return nil, err
	}
	plan, err := m.plans.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.FromStore("service plan", id, err)
	}
	if err := m.ensureUniqueName(ctx, input.Name, id); err != nil {
		return nil, err
	}
	plan.Name = input.Name
	plan.Description = strings.TrimSpace(input.Description)
	plan.Price = input.Price
	plan.Touch(actingUserID, m.now())
	if err := m.plans.Update(ctx, plan); err != nil {
		return nil, apperrors.FromStore("service plan", id, err)
	}
	m.invalidate(ctx, id)
	return plan, nil
}

// Delete soft-deletes a plan.
func (m *ServicePlanManager) Delete(ctx context.Context, id, actingUserID string) error {
	if err := requireActor(actingUserID); err != nil {
		return err
	}
	if err := m.plans.Delete(ctx, id, actingUserID, m.now()); err != nil {
		return apperrors.FromStore("service plan", id, err)
	}
	m.invalidate(ctx, id)
	return nil
}

// Subscribe links appUserID to planID and bumps the plan usage count.
func (m *ServicePlanManager) Subscribe(ctx context.Context, planID, appUserID, actingUserID string) (*domain.UserServicePlan, error) {
	if err := requireActor(actingUserID); err != nil {
		return nil, err
	}
	if _, err := m.plans.GetByID(ctx, planID); err != nil {
		return nil, apperrors.FromStore("service plan", planID, err)
	}
	if _, err := m.users.GetByID(ctx, appUserID); err != nil {
		return nil, apperrors.FromStore("app user", appUserID, err)
	}
	exists, err := m.plans.HasSubscription(ctx, appUserID, planID)
	if err != nil {
		return nil, apperrors.FromStore("subscription", planID, err)
	}
	if exists {
		return nil, apperrors.NewConflict("already subscribed to service plan", map[string]any{
			"service_plan_id": planID,
			"app_user_id":     appUserID,
		})
	}

	now := m.now()
	sub := &domain.UserServicePlan{
		ID:            m.newID(),
		AppUserID:     appUserID,
		ServicePlanID: planID,
		SubscribedAt:  now,
		AuditInfo:     domain.NewAuditInfo(actingUserID, now),
	}
	if err := m.plans.Subscribe(ctx, sub); err != nil {
		return nil, apperrors.FromStore("service plan", planID, err)
	}
	m.invalidate(ctx, planID)
	return sub, nil
}

// ListSubscriptions returns the plans appUserID subscribed to, newest first.
func (m *ServicePlanManager) ListSubscriptions(ctx context.Context, appUserID string) ([]domain.UserServicePlan, error) {
	subs, err := m.plans.ListSubscriptions(ctx, appUserID)
	if err != nil {
		return nil, apperrors.FromStore("subscriptions", appUserID, err)
	}
	return subs, nil
}

func (m *ServicePlanManager) ensureUniqueName(ctx context.Context, name, excludeID string) error {
	exists, err := m.plans.ExistsByName(ctx, name, excludeID)
	if err != nil {
		return apperrors.FromStore("service plan", name, err)
	}
	if exists {
		return apperrors.NewConflict("service plan name already in use", map[string]any{"name": name})
	}
	return nil
}

func (m *ServicePlanManager) invalidate(ctx context.Context, id string) {
	if m.cache != nil {
		m.cache.Invalidate(ctx, id)
	}
}
