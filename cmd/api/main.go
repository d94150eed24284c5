package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/helpline-io/support-portal/internal/api/http"
	"github.com/helpline-io/support-portal/internal/api/http/handlers"
	"github.com/helpline-io/support-portal/internal/auth"
	"github.com/helpline-io/support-portal/internal/cache"
	"github.com/helpline-io/support-portal/internal/config"
	"github.com/helpline-io/support-portal/internal/events"
	"github.com/helpline-io/support-portal/internal/mail"
	"github.com/helpline-io/support-portal/internal/manager"
	"github.com/helpline-io/support-portal/internal/observability"
	"github.com/helpline-io/support-portal/internal/persistence"
	"github.com/helpline-io/support-portal/internal/repository"
	"github.com/helpline-io/support-portal/internal/repository/memory"
	"github.com/helpline-io/support-portal/internal/service"
	"github.com/helpline-io/support-portal/internal/templating"
	"github.com/helpline-io/support-portal/internal/worker"
)

// stores is the Entity Store chosen at boot: postgres when a DSN is set,
// otherwise the in-memory store.
type stores struct {
	identities repository.IdentityRepository
	appUsers   repository.AppUserRepository
	plans      repository.ServicePlanRepository
	tickets    repository.SupportTicketRepository
	comments   repository.TicketCommentRepository
	emails     repository.EmailRepository
	reports    repository.ReportRepository
}

func newStores(pg *persistence.Postgres, logger *zap.Logger) stores {
	pool := pg.PoolHandle()
	if pool == nil {
		logger.Warn("using in-memory entity store; data is lost on restart")
		mem := memory.NewStore()
		return stores{
			identities: mem.Identities,
			appUsers:   mem.AppUsers,
			plans:      mem.ServicePlans,
			tickets:    mem.SupportTickets,
			comments:   mem.TicketComments,
			emails:     mem.Emails,
			reports:    mem.Reports,
		}
	}
	return stores{
		identities: repository.NewIdentityRepository(pool),
		appUsers:   repository.NewAppUserRepository(pool),
		plans:      repository.NewServicePlanRepository(pool),
		tickets:    repository.NewSupportTicketRepository(pool),
		comments:   repository.NewTicketCommentRepository(pool),
		emails:     repository.NewEmailRepository(pool),
		reports:    repository.NewReportRepository(pool),
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var metrics *observability.Metrics
	if cfg.Metrics.Enabled {
		metrics = observability.NewMetrics()
	}

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, cfg.App.Name, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(cfg.Postgres.DSN, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	var redisClient *persistence.Redis
	var planCache manager.PlanCache
	if cfg.Cache.Enabled {
		redisClient, err = persistence.NewRedis(ctx, cfg.Redis, logger)
		defer redisClient.Close()
		if err != nil {
			logger.Warn("redis unreachable; service plan cache disabled", zap.Error(err))
		} else {
			planCache = cache.NewPlanCache(redisClient.Client, cfg.Cache.PlanTTL(), logger)
		}
	}

	engine, err := templating.New()
	if err != nil {
		logger.Fatal("failed to load templates", zap.Error(err))
	}
	sender, err := mail.New(cfg.Mail, logger)
	if err != nil {
		logger.Fatal("failed to init mail transport", zap.Error(err))
	}

	st := newStores(pg, logger)
	users := manager.NewAppUserManager(st.appUsers, st.identities)
	plans := manager.NewServicePlanManager(st.plans, st.appUsers, planCache)
	tickets := manager.NewSupportTicketManager(st.tickets, st.appUsers)
	comments := manager.NewTicketCommentManager(st.comments, st.tickets, st.appUsers)
	emails := manager.NewEmailManager(st.emails)
	reports := manager.NewReportManager(st.reports, st.tickets)
	if err := reports.EnsureTemplates(ctx, service.DefaultReportTemplates()); err != nil {
		logger.Fatal("failed to seed report templates", zap.Error(err))
	}

	var dispatcher events.Dispatcher = events.NewInMemoryDispatcher(logger)
	var notifications *worker.NotificationWorker
	if cfg.Notify.Async {
		notifications = worker.NewNotificationWorker(dispatcher, cfg.Notify.QueueSize, logger)
		notifications.Start()
		dispatcher = notifications
	}

	identity := auth.ContextIdentityProvider{}
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.AccessTokenTTLMinutes)
	emailDispatcher := service.NewEmailDispatcher(engine, sender, emails, metrics, logger, cfg.Mail.PortalURL)
	worker.StartNotificationWorker(service.NewNotificationService(dispatcher, emailDispatcher, users, tickets, logger))

	accountService := service.NewAccountService(service.AccountDependencies{
		Identities: st.identities,
		Users:      users,
		Tokens:     tokens,
		Dispatcher: dispatcher,
		Identity:   identity,
		BcryptCost: cfg.Auth.BcryptCost,
	})
	ticketService := service.NewSupportTicketService(service.SupportTicketDependencies{
		Tickets:    tickets,
		Comments:   comments,
		Users:      users,
		Dispatcher: dispatcher,
		Identity:   identity,
	})
	reportService := service.NewReportService(service.ReportDependencies{
		Reports:  reports,
		Tickets:  tickets,
		Comments: comments,
		Users:    users,
		Renderer: engine,
		Metrics:  metrics,
		Identity: identity,
	})

	var pgPing, redisPing handlers.Pinger
	if pg.PoolHandle() != nil {
		pgPing = pg
	}
	if redisClient != nil {
		redisPing = redisClient
	}

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	routes := httptransport.RouteConfig{
		Health:       handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pgPing, redisPing),
		Account:      handlers.NewAccountHandler(accountService),
		AppUsers:     handlers.NewAppUsersHandler(service.NewAppUserService(users, identity)),
		ServicePlans: handlers.NewServicePlansHandler(service.NewServicePlanService(plans, users, identity)),
		SupportTickets: handlers.NewSupportTicketsHandler(
			ticketService,
			service.NewTicketCommentService(comments, tickets, users, identity),
			reportService,
		),
		Emails:         handlers.NewEmailsHandler(service.NewEmailService(emailDispatcher, emails, users, identity)),
		Reports:        handlers.NewReportsHandler(reportService),
		AuthMiddleware: auth.NewAuthMiddleware(tokens, st.appUsers),
		MetricsPath:    cfg.Metrics.Path,
	}
	if metrics != nil {
		routes.Metrics = metrics.Handler()
	}
	httptransport.RegisterRoutes(app, routes)

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	if notifications != nil {
		if err := notifications.Stop(shutdownCtx); err != nil {
			logger.Warn("notification worker shutdown", zap.Error(err))
		}
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
