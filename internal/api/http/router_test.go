package http

import (
	"context"
	"encoding/json"
	"io"
	nethttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/helpline-io/support-portal/internal/api/http/handlers"
	"github.com/helpline-io/support-portal/internal/auth"
	"github.com/helpline-io/support-portal/internal/domain"
	"github.com/helpline-io/support-portal/internal/events"
	"github.com/helpline-io/support-portal/internal/mail"
	"github.com/helpline-io/support-portal/internal/manager"
	"github.com/helpline-io/support-portal/internal/observability"
	"github.com/helpline-io/support-portal/internal/repository/memory"
	"github.com/helpline-io/support-portal/internal/service"
	"github.com/helpline-io/support-portal/internal/templating"
)

type testServer struct {
	app   *fiber.App
	users *manager.AppUserManager
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := zap.NewNop()
	metrics := observability.NewMetrics()
	store := memory.NewStore()
	engine, err := templating.New()
	require.NoError(t, err)

	identity := auth.ContextIdentityProvider{}
	tokens := auth.NewTokenManager("router-test", "support-portal", 30)
	users := manager.NewAppUserManager(store.AppUsers, store.Identities)
	plans := manager.NewServicePlanManager(store.ServicePlans, store.AppUsers, nil)
	tickets := manager.NewSupportTicketManager(store.SupportTickets, store.AppUsers)
	comments := manager.NewTicketCommentManager(store.TicketComments, store.SupportTickets, store.AppUsers)
	emails := manager.NewEmailManager(store.Emails)
	reports := manager.NewReportManager(store.Reports, store.SupportTickets)
	require.NoError(t, reports.EnsureTemplates(context.Background(), service.DefaultReportTemplates()))

	dispatcher := events.NewInMemoryDispatcher(logger)
	emailDispatcher := service.NewEmailDispatcher(engine, mail.NewLogSender(logger), emails, metrics, logger, "http://portal.test")
	service.NewNotificationService(dispatcher, emailDispatcher, users, tickets, logger).RegisterHandlers()

	reportSvc := service.NewReportService(service.ReportDependencies{
		Reports: reports, Tickets: tickets, Comments: comments, Users: users,
		Renderer: engine, Metrics: metrics, Identity: identity,
	})

	app := fiber.New()
	RegisterMiddlewares(app, logger, metrics, 0)
	RegisterRoutes(app, RouteConfig{
		Health: handlers.NewHealthHandler("support-portal", "test", nil, nil),
		Account: handlers.NewAccountHandler(service.NewAccountService(service.AccountDependencies{
			Identities: store.Identities, Users: users, Tokens: tokens,
			Dispatcher: dispatcher, Identity: identity, BcryptCost: 4,
		})),
		AppUsers:     handlers.NewAppUsersHandler(service.NewAppUserService(users, identity)),
		ServicePlans: handlers.NewServicePlansHandler(service.NewServicePlanService(plans, users, identity)),
		SupportTickets: handlers.NewSupportTicketsHandler(
			service.NewSupportTicketService(service.SupportTicketDependencies{
				Tickets: tickets, Comments: comments, Users: users, Dispatcher: dispatcher, Identity: identity,
			}),
			service.NewTicketCommentService(comments, tickets, users, identity),
			reportSvc,
		),
		Emails:         handlers.NewEmailsHandler(service.NewEmailService(emailDispatcher, emails, users, identity)),
		Reports:        handlers.NewReportsHandler(reportSvc),
		AuthMiddleware: auth.NewAuthMiddleware(tokens, store.AppUsers),
		Metrics:        metrics.Handler(),
	})
	return &testServer{app: app, users: users}
}

type response struct {
	Status int
	Body   map[string]any
	Raw    string
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			reader = strings.NewReader(b)
		default:
			raw, err := json.Marshal(b)
			require.NoError(t, err)
			reader = strings.NewReader(string(raw))
		}
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	out := response{Status: resp.StatusCode, Raw: string(raw)}
	if strings.HasPrefix(resp.Header.Get(fiber.HeaderContentType), fiber.MIMEApplicationJSON) && len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out.Body))
	}
	return out
}

func errorCode(r response) string {
	errBody, _ := r.Body["error"].(map[string]any)
	code, _ := errBody["code"].(string)
	return code
}

func dataField(r response, key string) any {
	payload, _ := r.Body["data"].(map[string]any)
	return payload[key]
}

// signup registers username and returns its bearer token and AppUser id.
func (s *testServer) signup(t *testing.T, username string, userType domain.UserType) (string, string) {
	t.Helper()
	r := s.do(t, nethttp.MethodPost, "/account/register", "", map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"password": "correct horse battery",
	})
	require.Equal(t, fiber.StatusCreated, r.Status, r.Raw)
	payload := r.Body["data"].(map[string]any)
	user := payload["user"].(map[string]any)
	id := user["id"].(string)

	if userType != domain.UserTypeCustomer {
		_, err := s.users.Update(context.Background(), id, manager.UpdateAppUserInput{
			DisplayName: username,
			Email:       username + "@example.com",
			UserType:    userType,
			Active:      true,
		}, manager.SystemActorID)
		require.NoError(t, err)
	}

	tok := s.do(t, nethttp.MethodPost, "/connect/token", "", map[string]string{
		"grant_type": "password",
		"username":   username,
		"password":   "correct horse battery",
	})
	require.Equal(t, fiber.StatusOK, tok.Status, tok.Raw)
	return tok.Body["access_token"].(string), id
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t)

	live := s.do(t, nethttp.MethodGet, "/health/live", "", nil)
	assert.Equal(t, fiber.StatusOK, live.Status)
	assert.Equal(t, "alive", live.Body["status"])

	ready := s.do(t, nethttp.MethodGet, "/health/ready", "", nil)
	assert.Equal(t, fiber.StatusOK, ready.Status)

	metrics := s.do(t, nethttp.MethodGet, "/metrics", "", nil)
	assert.Equal(t, fiber.StatusOK, metrics.Status)
	assert.Contains(t, metrics.Raw, "support_portal_http_requests_total")
}

func TestUnknownRouteAndMalformedBody(t *testing.T) {
	s := newTestServer(t)

	missing := s.do(t, nethttp.MethodGet, "/nowhere", "", nil)
	assert.Equal(t, fiber.StatusNotFound, missing.Status)
	assert.Equal(t, "NOT_FOUND", errorCode(missing))

	bad := s.do(t, nethttp.MethodPost, "/account/register", "", "{not json")
	assert.Equal(t, fiber.StatusBadRequest, bad.Status)
	assert.Equal(t, "VALIDATION_FAILED", errorCode(bad))
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	s := newTestServer(t)

	r := s.do(t, nethttp.MethodGet, "/api/app-users/me", "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, r.Status)
	assert.Equal(t, "UNAUTHENTICATED", errorCode(r))

	token, id := s.signup(t, "router-alice", domain.UserTypeCustomer)
	me := s.do(t, nethttp.MethodGet, "/api/app-users/me", token, nil)
	require.Equal(t, fiber.StatusOK, me.Status, me.Raw)
	assert.Equal(t, id, dataField(me, "id"))
	assert.NotEmpty(t, me.Body)

	badLogin := s.do(t, nethttp.MethodPost, "/connect/token", "", map[string]string{
		"grant_type": "password", "username": "router-alice", "password": "nope",
	})
	assert.Equal(t, fiber.StatusUnauthorized, badLogin.Status)
}

func TestRoleGuards(t *testing.T) {
	s := newTestServer(t)
	customer, _ := s.signup(t, "router-bob", domain.UserTypeCustomer)
	admin, _ := s.signup(t, "router-carol", domain.UserTypeAdmin)

	plan := map[string]any{"name": "Gold", "description": "priority", "price": 19.5}
	denied := s.do(t, nethttp.MethodPost, "/api/service-plans", customer, plan)
	assert.Equal(t, fiber.StatusForbidden, denied.Status)
	assert.Equal(t, "FORBIDDEN", errorCode(denied))

	created := s.do(t, nethttp.MethodPost, "/api/service-plans", admin, plan)
	require.Equal(t, fiber.StatusCreated, created.Status, created.Raw)
	planID := dataField(created, "id").(string)

	sub := s.do(t, nethttp.MethodPost, "/api/service-plans/"+planID+"/subscribe", customer, nil)
	require.Equal(t, fiber.StatusCreated, sub.Status, sub.Raw)
	assert.Equal(t, "Gold", dataField(sub, "service_plan_name"))

	mine := s.do(t, nethttp.MethodGet, "/api/service-plans/subscriptions/me", customer, nil)
	require.Equal(t, fiber.StatusOK, mine.Status, mine.Raw)
	assert.Len(t, mine.Body["data"], 1)

	list := s.do(t, nethttp.MethodGet, "/api/app-users", customer, nil)
	assert.Equal(t, fiber.StatusForbidden, list.Status)
}

func TestTicketFlowOverHTTP(t *testing.T) {
	s := newTestServer(t)
	owner, _ := s.signup(t, "router-dan", domain.UserTypeCustomer)
	agent, agentID := s.signup(t, "router-eve", domain.UserTypeAgent)

	created := s.do(t, nethttp.MethodPost, "/api/support-tickets", owner, map[string]string{
		"subject": "Cannot print", "description": "Printer shows error 42.",
	})
	require.Equal(t, fiber.StatusCreated, created.Status, created.Raw)
	ticketID := dataField(created, "id").(string)
	assert.Equal(t, "OPEN", dataField(created, "status"))

	skip := s.do(t, nethttp.MethodPut, "/api/support-tickets/"+ticketID, agent, map[string]string{"status": "CLOSED"})
	assert.Equal(t, fiber.StatusConflict, skip.Status)
	assert.Equal(t, "INVALID_STATE_TRANSITION", errorCode(skip))

	assign := s.do(t, nethttp.MethodPost, "/api/support-tickets/"+ticketID+"/assign", owner, map[string]string{"assignee_id": agentID})
	assert.Equal(t, fiber.StatusForbidden, assign.Status)
	assign = s.do(t, nethttp.MethodPost, "/api/support-tickets/"+ticketID+"/assign", agent, map[string]string{"assignee_id": agentID})
	require.Equal(t, fiber.StatusOK, assign.Status, assign.Raw)

	moved := s.do(t, nethttp.MethodPut, "/api/support-tickets/"+ticketID, agent, map[string]string{
		"status": "IN_PROGRESS", "comment": "On it",
	})
	require.Equal(t, fiber.StatusOK, moved.Status, moved.Raw)
	assert.Equal(t, "IN_PROGRESS", dataField(moved, "status"))

	comments := s.do(t, nethttp.MethodGet, "/api/support-tickets/"+ticketID+"/comments", owner, nil)
	require.Equal(t, fiber.StatusOK, comments.Status, comments.Raw)
	assert.EqualValues(t, 1, dataField(comments, "total_count"))

	report := s.do(t, nethttp.MethodPost, "/api/reports", owner, map[string]string{
		"report_type": "TICKET_ACTIVITY", "ticket_id": ticketID,
	})
	require.Equal(t, fiber.StatusNoContent, report.Status, report.Raw)

	reports := s.do(t, nethttp.MethodGet, "/api/support-tickets/"+ticketID+"/reports", owner, nil)
	require.Equal(t, fiber.StatusOK, reports.Status, reports.Raw)
	items := dataField(reports, "items").([]any)
	require.Len(t, items, 1)
	assert.Contains(t, items[0].(map[string]any)["content"], "On it")

	unknown := s.do(t, nethttp.MethodGet, "/api/support-tickets/does-not-exist", owner, nil)
	assert.Equal(t, fiber.StatusNotFound, unknown.Status)
}

func TestSendTestEmailOverHTTP(t *testing.T) {
	s := newTestServer(t)
	token, _ := s.signup(t, "router-fred", domain.UserTypeAdmin)

	r := s.do(t, nethttp.MethodPost, "/api/emails/test", token, map[string]string{
		"address": "check@example.com", "email_type": "Test",
	})
	require.Equal(t, fiber.StatusOK, r.Status, r.Raw)
	assert.Equal(t, true, dataField(r, "is_success"))

	list := s.do(t, nethttp.MethodGet, "/api/emails?email_type=Test", token, nil)
	require.Equal(t, fiber.StatusOK, list.Status, list.Raw)
	assert.EqualValues(t, 1, dataField(list, "total_count"))
}
