package memory

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helpline-io/support-portal/internal/domain"
	"github.com/helpline-io/support-portal/internal/repository"
)

var base = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

func TestTicketQueryNewestFirstAndPaged(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	for i, id := range []string{"t1", "t2", "t3"} {
		require.NoError(t, store.SupportTickets.Insert(ctx, &domain.SupportTicket{
			ID:        id,
			OwnerID:   "u1",
			Status:    domain.TicketStatusOpen,
			AuditInfo: domain.NewAuditInfo("u1", base.Add(time.Duration(i)*time.Minute)),
		}))
	}

	page, err := store.SupportTickets.Query(ctx, repository.SupportTicketFilter{}, repository.PageRequest{Skip: 1, Take: 1})
	require.NoError(t, err)
	assert.Equal(t, 3, page.Total)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "t2", page.Items[0].ID)
}

func TestSoftDeletedRowsAreHidden(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	require.NoError(t, store.ServicePlans.Insert(ctx, &domain.ServicePlan{ID: "p1", Name: "Basic", AuditInfo: domain.NewAuditInfo("a", base)}))

	require.NoError(t, store.ServicePlans.Delete(ctx, "p1", "a", base))

	_, err := store.ServicePlans.GetByID(ctx, "p1")
	assert.ErrorIs(t, err, pgx.ErrNoRows)
	assert.ErrorIs(t, store.ServicePlans.Delete(ctx, "p1", "a", base), pgx.ErrNoRows)

	exists, err := store.ServicePlans.ExistsByName(ctx, "basic", "")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestCommentsOldestFirst(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	require.NoError(t, store.TicketComments.Insert(ctx, &domain.TicketComment{ID: "c2", TicketID: "t1", AuditInfo: domain.NewAuditInfo("u", base.Add(time.Minute))}))
	require.NoError(t, store.TicketComments.Insert(ctx, &domain.TicketComment{ID: "c1", TicketID: "t1", AuditInfo: domain.NewAuditInfo("u", base)}))
	require.NoError(t, store.TicketComments.Insert(ctx, &domain.TicketComment{ID: "c3", TicketID: "other", AuditInfo: domain.NewAuditInfo("u", base)}))

	page, err := store.TicketComments.ListByTicket(ctx, "t1", repository.PageRequest{})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "c1", page.Items[0].ID)
	assert.Equal(t, "c2", page.Items[1].ID)
}

func TestSubscribeBumpsUsageCount(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	require.NoError(t, store.ServicePlans.Insert(ctx, &domain.ServicePlan{ID: "p1", Name: "Basic", AuditInfo: domain.NewAuditInfo("a", base)}))

	require.NoError(t, store.ServicePlans.Subscribe(ctx, &domain.UserServicePlan{ID: "s1", AppUserID: "u1", ServicePlanID: "p1", AuditInfo: domain.NewAuditInfo("a", base)}))

	plan, err := store.ServicePlans.GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 1, plan.UsageCount)

	err = store.ServicePlans.Subscribe(ctx, &domain.UserServicePlan{ID: "s2", AppUserID: "u1", ServicePlanID: "missing"})
	assert.ErrorIs(t, err, pgx.ErrNoRows)
}

func TestIdentityLookupIsCaseInsensitive(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	require.NoError(t, store.Identities.Create(ctx, &domain.IdentityUser{ID: "i1", Username: "Alice", Email: "alice@example.com"}))

	user, err := store.Identities.GetByUsernameOrEmail(ctx, "ALICE@example.com")
	require.NoError(t, err)
	assert.Equal(t, "i1", user.ID)

	exists, err := store.Identities.Exists(ctx, "alice", "other@example.com")
	require.NoError(t, err)
	assert.True(t, exists)
}
