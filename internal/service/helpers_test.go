package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/helpline-io/support-portal/internal/api/dto"
	"github.com/helpline-io/support-portal/internal/auth"
	"github.com/helpline-io/support-portal/internal/domain"
	"github.com/helpline-io/support-portal/internal/events"
	"github.com/helpline-io/support-portal/internal/manager"
	"github.com/helpline-io/support-portal/internal/observability"
	"github.com/helpline-io/support-portal/internal/repository/memory"
	"github.com/helpline-io/support-portal/internal/templating"
)

type sentMail struct {
	Address string
	Subject string
	Body    string
}

type recordingSender struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (s *recordingSender) Send(_ context.Context, address, subject, body string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, sentMail{Address: address, Subject: subject, Body: body})
	return s.err
}

func (s *recordingSender) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sent)
}

type env struct {
	store    *memory.Store
	users    *manager.AppUserManager
	plans    *manager.ServicePlanManager
	tickets  *manager.SupportTicketManager
	comments *manager.TicketCommentManager
	emails   *manager.EmailManager
	reports  *manager.ReportManager
	sender   *recordingSender
	metrics  *observability.Metrics
	engine   *templating.Engine

	accountSvc *AccountService
	userSvc    *AppUserService
	planSvc    *ServicePlanService
	ticketSvc  *SupportTicketService
	commentSvc *TicketCommentService
	emailSvc   *EmailService
	reportSvc  *ReportService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	engine, err := templating.New()
	require.NoError(t, err)

	store := memory.NewStore()
	identity := auth.ContextIdentityProvider{}
	e := &env{
		store:    store,
		users:    manager.NewAppUserManager(store.AppUsers, store.Identities),
		plans:    manager.NewServicePlanManager(store.ServicePlans, store.AppUsers, nil),
		tickets:  manager.NewSupportTicketManager(store.SupportTickets, store.AppUsers),
		comments: manager.NewTicketCommentManager(store.TicketComments, store.SupportTickets, store.AppUsers),
		emails:   manager.NewEmailManager(store.Emails),
		reports:  manager.NewReportManager(store.Reports, store.SupportTickets),
		sender:   &recordingSender{},
		metrics:  observability.NewMetrics(),
		engine:   engine,
	}

	dispatcher := events.NewInMemoryDispatcher(nil)
	emailDispatcher := NewEmailDispatcher(engine, e.sender, e.emails, e.metrics, nil, "https://portal.example.com/")
	NewNotificationService(dispatcher, emailDispatcher, e.users, e.tickets, nil).RegisterHandlers()

	e.accountSvc = NewAccountService(AccountDependencies{
		Identities: store.Identities,
		Users:      e.users,
		Tokens:     auth.NewTokenManager("test-secret", "support-portal", 15),
		Dispatcher: dispatcher,
		Identity:   identity,
		BcryptCost: 4,
	})
	e.userSvc = NewAppUserService(e.users, identity)
	e.planSvc = NewServicePlanService(e.plans, e.users, identity)
	e.ticketSvc = NewSupportTicketService(SupportTicketDependencies{
		Tickets:    e.tickets,
		Comments:   e.comments,
		Users:      e.users,
		Dispatcher: dispatcher,
		Identity:   identity,
	})
	e.commentSvc = NewTicketCommentService(e.comments, e.tickets, e.users, identity)
	e.emailSvc = NewEmailService(emailDispatcher, e.emails, e.users, identity)
	e.reportSvc = NewReportService(ReportDependencies{
		Reports:  e.reports,
		Tickets:  e.tickets,
		Comments: e.comments,
		Users:    e.users,
		Renderer: engine,
		Metrics:  e.metrics,
		Identity: identity,
	})
	require.NoError(t, e.reports.EnsureTemplates(context.Background(), DefaultReportTemplates()))
	return e
}

// register signs up username and returns a context carrying its principal.
func (e *env) register(t *testing.T, username string, userType domain.UserType) (context.Context, dto.AppUserDTO) {
	t.Helper()
	resp, err := e.accountSvc.Register(context.Background(), dto.RegisterRequest{
		Username: username,
		Email:    username + "@example.com",
		Password: "correct horse battery",
	})
	require.NoError(t, err)
	user := resp.User
	if userType != domain.UserTypeCustomer {
		updated, err := e.users.Update(context.Background(), user.ID, manager.UpdateAppUserInput{
			DisplayName: user.DisplayName,
			Email:       user.Email,
			UserType:    userType,
			Active:      true,
		}, manager.SystemActorID)
		require.NoError(t, err)
		user = toAppUserDTO(updated)
	}
	return principalCtx(user.IdentityUserID), user
}

func principalCtx(identityUserID string) context.Context {
	return auth.WithPrincipal(context.Background(), &auth.Principal{IdentityUserID: identityUserID})
}

func anonymous() context.Context {
	return context.Background()
}
