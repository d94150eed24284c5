package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helpline-io/support-portal/internal/api/dto"
	"github.com/helpline-io/support-portal/internal/domain"
	"github.com/helpline-io/support-portal/internal/repository"
	apperrors "github.com/helpline-io/support-portal/pkg/util/errorutil"
)

func emailsOfType(t *testing.T, e *env, emailType domain.EmailType) []domain.Email {
	t.Helper()
	page, err := e.emails.ListPaged(context.Background(), repository.EmailFilter{EmailType: &emailType}, repository.PageRequest{Take: 100})
	require.NoError(t, err)
	return page.Items
}

func TestCreateTicketNotifiesOwner(t *testing.T) {
	e := newEnv(t)
	ctx, owner := e.register(t, "olivia", domain.UserTypeCustomer)

	ticket, err := e.ticketSvc.Create(ctx, dto.CreateTicketRequest{Subject: "VPN down", Description: "Cannot connect since this morning."})
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusOpen, ticket.Status)
	assert.Equal(t, owner.ID, ticket.OwnerID)
	assert.Equal(t, owner.IdentityUserID, ticket.CreatedBy)

	sent := emailsOfType(t, e, domain.EmailTypeTicketCreated)
	require.Len(t, sent, 1)
	assert.Equal(t, owner.Email, sent[0].Address)
	assert.Contains(t, sent[0].Subject, "VPN down")
}

func TestTicketEmailSubjectKeepsPunctuation(t *testing.T) {
	e := newEnv(t)
	ctx, _ := e.register(t, "pia", domain.UserTypeCustomer)

	_, err := e.ticketSvc.Create(ctx, dto.CreateTicketRequest{Subject: `Can't log in & "reset" fails`, Description: "Reset link bounces."})
	require.NoError(t, err)

	created := emailsOfType(t, e, domain.EmailTypeTicketCreated)
	require.Len(t, created, 1)
	assert.Equal(t, `Ticket received: Can't log in & "reset" fails`, created[0].Subject)

	e.sender.mu.Lock()
	defer e.sender.mu.Unlock()
	last := e.sender.sent[len(e.sender.sent)-1]
	assert.Equal(t, created[0].Subject, last.Subject)
}

func TestCreateTicketUnauthenticated(t *testing.T) {
	e := newEnv(t)

	_, err := e.ticketSvc.Create(anonymous(), dto.CreateTicketRequest{Subject: "x", Description: "y"})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.CodeUnauthenticated))
	assert.Empty(t, emailsOfType(t, e, domain.EmailTypeTicketCreated))
}

func TestUpdateTicketStatusWithComment(t *testing.T) {
	e := newEnv(t)
	ownerCtx, owner := e.register(t, "paul", domain.UserTypeCustomer)
	agentCtx, agent := e.register(t, "quinn", domain.UserTypeAgent)

	ticket, err := e.ticketSvc.Create(ownerCtx, dto.CreateTicketRequest{Subject: "Invoice wrong", Description: "Charged twice."})
	require.NoError(t, err)

	updated, err := e.ticketSvc.Update(agentCtx, ticket.ID, dto.UpdateTicketRequest{
		Status:  domain.TicketStatusInProgress,
		Comment: "Looking into it",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusInProgress, updated.Status)

	comments, err := e.commentSvc.ListByTicket(ownerCtx, ticket.ID, dto.PageQuery{})
	require.NoError(t, err)
	require.Equal(t, 1, comments.TotalCount)
	assert.Equal(t, "Looking into it", comments.Items[0].Body)
	assert.Equal(t, agent.ID, comments.Items[0].AuthorID)

	sent := emailsOfType(t, e, domain.EmailTypeTicketStatusChanged)
	require.Len(t, sent, 1)
	assert.Equal(t, owner.Email, sent[0].Address)
	assert.Contains(t, sent[0].Body, "Looking into it")
	assert.Equal(t, agent.IdentityUserID, sent[0].CreatedBy)
}

func TestUpdateTicketFullLifecycleAndReopen(t *testing.T) {
	e := newEnv(t)
	ownerCtx, _ := e.register(t, "rita", domain.UserTypeCustomer)
	agentCtx, _ := e.register(t, "sam", domain.UserTypeTechnician)

	ticket, err := e.ticketSvc.Create(ownerCtx, dto.CreateTicketRequest{Subject: "Disk full", Description: "Server disk at 100%."})
	require.NoError(t, err)

	for _, next := range []domain.TicketStatus{domain.TicketStatusInProgress, domain.TicketStatusResolved, domain.TicketStatusClosed} {
		_, err := e.ticketSvc.Update(agentCtx, ticket.ID, dto.UpdateTicketRequest{Status: next})
		require.NoError(t, err, next)
	}
	closed, err := e.ticketSvc.Get(ownerCtx, ticket.ID)
	require.NoError(t, err)
	require.NotNil(t, closed.ClosedAt)

	_, err = e.ticketSvc.Update(ownerCtx, ticket.ID, dto.UpdateTicketRequest{Status: domain.TicketStatusResolved})
	assert.True(t, apperrors.Is(err, apperrors.CodeInvalidStateTransition))

	reopened, err := e.ticketSvc.Update(ownerCtx, ticket.ID, dto.UpdateTicketRequest{Status: domain.TicketStatusOpen, Comment: "Still broken"})
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusOpen, reopened.Status)
	assert.Nil(t, reopened.ClosedAt)
	assert.Len(t, emailsOfType(t, e, domain.EmailTypeTicketStatusChanged), 4)
}

func TestUpdateTicketRejectsStrangers(t *testing.T) {
	e := newEnv(t)
	ownerCtx, _ := e.register(t, "tom", domain.UserTypeCustomer)
	strangerCtx, _ := e.register(t, "uma", domain.UserTypeCustomer)

	ticket, err := e.ticketSvc.Create(ownerCtx, dto.CreateTicketRequest{Subject: "Email bounce", Description: "Mail to partner bounces."})
	require.NoError(t, err)

	_, err = e.ticketSvc.Update(strangerCtx, ticket.ID, dto.UpdateTicketRequest{Status: domain.TicketStatusInProgress})
	assert.True(t, apperrors.Is(err, apperrors.CodeForbidden))
	_, err = e.ticketSvc.Update(strangerCtx, ticket.ID, dto.UpdateTicketRequest{Comment: "me too"})
	assert.True(t, apperrors.Is(err, apperrors.CodeForbidden))
	_, err = e.ticketSvc.Get(strangerCtx, ticket.ID)
	assert.True(t, apperrors.Is(err, apperrors.CodeForbidden))
	_, err = e.ticketSvc.Update(ownerCtx, ticket.ID, dto.UpdateTicketRequest{})
	assert.True(t, apperrors.Is(err, apperrors.CodeValidationFailed))

	_, err = e.ticketSvc.Update(ownerCtx, ticket.ID, dto.UpdateTicketRequest{Comment: "Any update?"})
	require.NoError(t, err)
	assert.Empty(t, emailsOfType(t, e, domain.EmailTypeTicketStatusChanged))
}

func TestListTicketsScopesCustomers(t *testing.T) {
	e := newEnv(t)
	aliceCtx, alice := e.register(t, "vera", domain.UserTypeCustomer)
	bobCtx, _ := e.register(t, "walt", domain.UserTypeCustomer)
	agentCtx, _ := e.register(t, "xena", domain.UserTypeAgent)

	_, err := e.ticketSvc.Create(aliceCtx, dto.CreateTicketRequest{Subject: "A1", Description: "a"})
	require.NoError(t, err)
	_, err = e.ticketSvc.Create(bobCtx, dto.CreateTicketRequest{Subject: "B1", Description: "b"})
	require.NoError(t, err)

	mine, err := e.ticketSvc.List(aliceCtx, dto.TicketListQuery{})
	require.NoError(t, err)
	require.Equal(t, 1, mine.TotalCount)
	assert.Equal(t, alice.ID, mine.Items[0].OwnerID)

	all, err := e.ticketSvc.List(agentCtx, dto.TicketListQuery{})
	require.NoError(t, err)
	assert.Equal(t, 2, all.TotalCount)
	assert.Equal(t, "B1", all.Items[0].Subject)
}

func TestAssignAndDeleteTicket(t *testing.T) {
	e := newEnv(t)
	ownerCtx, owner := e.register(t, "yuri", domain.UserTypeCustomer)
	adminCtx, _ := e.register(t, "zoe", domain.UserTypeAdmin)
	_, tech := e.register(t, "abel", domain.UserTypeTechnician)

	ticket, err := e.ticketSvc.Create(ownerCtx, dto.CreateTicketRequest{Subject: "Laptop", Description: "Broken screen."})
	require.NoError(t, err)

	assigned, err := e.ticketSvc.Assign(adminCtx, ticket.ID, dto.AssignTicketRequest{AssigneeID: tech.ID})
	require.NoError(t, err)
	require.NotNil(t, assigned.AssigneeID)
	assert.Equal(t, tech.ID, *assigned.AssigneeID)

	_, err = e.ticketSvc.Assign(adminCtx, ticket.ID, dto.AssignTicketRequest{AssigneeID: owner.ID})
	assert.True(t, apperrors.Is(err, apperrors.CodeValidationFailed))

	require.NoError(t, e.ticketSvc.Delete(adminCtx, ticket.ID))
	_, err = e.ticketSvc.Get(adminCtx, ticket.ID)
	assert.True(t, apperrors.Is(err, apperrors.CodeNotFound))

	assert.True(t, apperrors.Is(e.ticketSvc.Delete(anonymous(), ticket.ID), apperrors.CodeUnauthenticated))
}

func TestTicketCommentFacade(t *testing.T) {
	e := newEnv(t)
	ownerCtx, _ := e.register(t, "bea", domain.UserTypeCustomer)
	strangerCtx, _ := e.register(t, "cid", domain.UserTypeCustomer)

	ticket, err := e.ticketSvc.Create(ownerCtx, dto.CreateTicketRequest{Subject: "Wifi", Description: "Slow."})
	require.NoError(t, err)
	for _, body := range []string{"first", "second"} {
		_, err := e.ticketSvc.Update(ownerCtx, ticket.ID, dto.UpdateTicketRequest{Comment: body})
		require.NoError(t, err)
	}

	page, err := e.commentSvc.ListByTicket(ownerCtx, ticket.ID, dto.PageQuery{})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "first", page.Items[0].Body)
	assert.Equal(t, "second", page.Items[1].Body)

	got, err := e.commentSvc.Get(ownerCtx, page.Items[0].ID)
	require.NoError(t, err)
	assert.Equal(t, ticket.ID, got.TicketID)

	_, err = e.commentSvc.Get(strangerCtx, page.Items[0].ID)
	assert.True(t, apperrors.Is(err, apperrors.CodeForbidden))
	_, err = e.commentSvc.ListByTicket(anonymous(), ticket.ID, dto.PageQuery{})
	assert.True(t, apperrors.Is(err, apperrors.CodeUnauthenticated))
}
