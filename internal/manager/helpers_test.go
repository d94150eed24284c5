package manager

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/helpline-io/support-portal/internal/domain"
	"github.com/helpline-io/support-portal/internal/repository/memory"
)

type fixture struct {
	store    *memory.Store
	users    *AppUserManager
	plans    *ServicePlanManager
	tickets  *SupportTicketManager
	comments *TicketCommentManager
	emails   *EmailManager
	reports  *ReportManager
	cache    *mapCache
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	var seq atomic.Int64
	clock := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	opts := []Option{
		WithIDGenerator(func() string { return fmt.Sprintf("id-%03d", seq.Add(1)) }),
		WithClock(func() time.Time { return clock.Add(time.Duration(seq.Load()) * time.Second) }),
	}
	store := memory.NewStore()
	cache := &mapCache{plans: map[string]domain.ServicePlan{}}
	return &fixture{
		store:    store,
		users:    NewAppUserManager(store.AppUsers, store.Identities, opts...),
		plans:    NewServicePlanManager(store.ServicePlans, store.AppUsers, cache, opts...),
		tickets:  NewSupportTicketManager(store.SupportTickets, store.AppUsers, opts...),
		comments: NewTicketCommentManager(store.TicketComments, store.SupportTickets, store.AppUsers, opts...),
		emails:   NewEmailManager(store.Emails, opts...),
		reports:  NewReportManager(store.Reports, store.SupportTickets, opts...),
		cache:    cache,
	}
}

// appUser registers an identity and its AppUser of the given type.
func (f *fixture) appUser(t *testing.T, name string, userType domain.UserType) *domain.AppUser {
	t.Helper()
	ctx := context.Background()
	identity := &domain.IdentityUser{ID: "identity-" + name, Username: name, Email: name + "@example.com", Active: true}
	require.NoError(t, f.store.Identities.Create(ctx, identity))
	user, err := f.users.RegisterAppUser(ctx, RegisterAppUserInput{
		IdentityUserID: identity.ID,
		DisplayName:    name,
		Username:       name,
		Email:          identity.Email,
		UserType:       userType,
	}, identity.ID)
	require.NoError(t, err)
	return user
}

func (f *fixture) ticket(t *testing.T, owner *domain.AppUser) *domain.SupportTicket {
	t.Helper()
	ticket, err := f.tickets.Create(context.Background(), CreateTicketInput{
		Subject:     "Printer offline",
		Description: "The office printer stopped responding.",
	}, owner.ID, owner.IdentityUserID)
	require.NoError(t, err)
	return ticket
}

type mapCache struct {
	plans map[string]domain.ServicePlan
	hits  int
}

func (c *mapCache) Get(_ context.Context, id string) (*domain.ServicePlan, bool) {
	plan, ok := c.plans[id]
	if ok {
		c.hits++
	}
	return &plan, ok
}

func (c *mapCache) Set(_ context.Context, plan *domain.ServicePlan) {
	c.plans[plan.ID] = *plan
}

func (c *mapCache) Invalidate(_ context.Context, id string) {
	delete(c.plans, id)
}
