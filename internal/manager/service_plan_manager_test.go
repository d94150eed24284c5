package manager

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helpline-io/support-portal/internal/domain"
	"github.com/helpline-io/support-portal/internal/repository"
	apperrors "github.com/helpline-io/support-portal/pkg/util/errorutil"
)

func TestCreateAndGetServicePlan(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	plan, err := f.plans.Create(ctx, ServicePlanInput{Name: "Basic", Price: 9.99}, "admin")
	require.NoError(t, err)

	got, err := f.plans.GetByID(ctx, plan.ID)
	require.NoError(t, err)
	assert.Equal(t, 9.99, got.Price)
	assert.Equal(t, "Basic", got.Name)

	_, err = f.plans.GetByID(ctx, plan.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, f.cache.hits)
}

func TestCreateServicePlanRules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.plans.Create(ctx, ServicePlanInput{Name: "Basic", Price: 1}, "")
	assert.True(t, apperrors.Is(err, apperrors.CodeUnauthenticated))

	_, err = f.plans.Create(ctx, ServicePlanInput{Name: "Basic", Price: -1}, "admin")
	assert.True(t, apperrors.Is(err, apperrors.CodeValidationFailed))

	_, err = f.plans.Create(ctx, ServicePlanInput{Name: "Basic", Price: 1}, "admin")
	require.NoError(t, err)
	_, err = f.plans.Create(ctx, ServicePlanInput{Name: "basic", Price: 2}, "admin")
	assert.True(t, apperrors.Is(err, apperrors.CodeConflict))
}

func TestServicePlanPriceFitsStoredPrecision(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.plans.Create(ctx, ServicePlanInput{Name: "Odd", Price: 9.999}, "admin")
	require.True(t, apperrors.Is(err, apperrors.CodeValidationFailed))
	assert.Equal(t, "cents", apperrors.ToDomainError(err).Details["price"])

	_, err = f.plans.Create(ctx, ServicePlanInput{Name: "Huge", Price: 1e11}, "admin")
	assert.True(t, apperrors.Is(err, apperrors.CodeValidationFailed))

	for _, price := range []float64{0, 9.99, 19.95, 0.1, 1234.5} {
		plan, err := f.plans.Create(ctx, ServicePlanInput{Name: fmt.Sprintf("Plan %.2f", price), Price: price}, "admin")
		require.NoError(t, err, price)
		assert.Equal(t, price, plan.Price)
	}
}

func TestUpdateServicePlanInvalidatesCache(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	plan, err := f.plans.Create(ctx, ServicePlanInput{Name: "Basic", Price: 9.99}, "admin")
	require.NoError(t, err)
	_, err = f.plans.GetByID(ctx, plan.ID)
	require.NoError(t, err)

	_, err = f.plans.Update(ctx, plan.ID, ServicePlanInput{Name: "Basic", Price: 12.5}, "admin")
	require.NoError(t, err)

	got, err := f.plans.GetByID(ctx, plan.ID)
	require.NoError(t, err)
	assert.Equal(t, 12.5, got.Price)
}

func TestSubscribe(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.appUser(t, "alice", domain.UserTypeCustomer)
	plan, err := f.plans.Create(ctx, ServicePlanInput{Name: "Basic", Price: 9.99}, "admin")
	require.NoError(t, err)

	sub, err := f.plans.Subscribe(ctx, plan.ID, user.ID, user.IdentityUserID)
	require.NoError(t, err)
	assert.Equal(t, plan.ID, sub.ServicePlanID)

	got, err := f.plans.GetByID(ctx, plan.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.UsageCount)

	_, err = f.plans.Subscribe(ctx, plan.ID, user.ID, user.IdentityUserID)
	assert.True(t, apperrors.Is(err, apperrors.CodeConflict))

	subs, err := f.plans.ListSubscriptions(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, subs, 1)
}

func TestSubscribeUnauthenticatedLeavesCountUnchanged(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.appUser(t, "alice", domain.UserTypeCustomer)
	plan, err := f.plans.Create(ctx, ServicePlanInput{Name: "Basic", Price: 9.99}, "admin")
	require.NoError(t, err)

	_, err = f.plans.Subscribe(ctx, plan.ID, user.ID, "")
	assert.True(t, apperrors.Is(err, apperrors.CodeUnauthenticated))

	got, err := f.plans.GetByID(ctx, plan.ID)
	require.NoError(t, err)
	assert.Zero(t, got.UsageCount)
}

func TestSubscribeMissingReferences(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.appUser(t, "alice", domain.UserTypeCustomer)
	plan, err := f.plans.Create(ctx, ServicePlanInput{Name: "Basic", Price: 9.99}, "admin")
	require.NoError(t, err)

	_, err = f.plans.Subscribe(ctx, "missing", user.ID, "admin")
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.CodeNotFound))
	assert.Contains(t, err.Error(), "service plan")

	_, err = f.plans.Subscribe(ctx, plan.ID, "missing", "admin")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "app user")
}

func TestDeleteServicePlan(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	plan, err := f.plans.Create(ctx, ServicePlanInput{Name: "Basic", Price: 9.99}, "admin")
	require.NoError(t, err)
	_, err = f.plans.GetByID(ctx, plan.ID)
	require.NoError(t, err)

	require.NoError(t, f.plans.Delete(ctx, plan.ID, "admin"))

	_, err = f.plans.GetByID(ctx, plan.ID)
	assert.True(t, apperrors.Is(err, apperrors.CodeNotFound))

	page, err := f.plans.ListPaged(ctx, repository.ServicePlanFilter{}, repository.PageRequest{})
	require.NoError(t, err)
	assert.Zero(t, page.Total)
}
