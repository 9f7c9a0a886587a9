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

	httptransport "github.com/spec-kit/helpdesk-service/internal/api/http"
	"github.com/spec-kit/helpdesk-service/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/authz"
	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/observability"
	"github.com/spec-kit/helpdesk-service/internal/persistence"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	"github.com/spec-kit/helpdesk-service/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redisConn, err := persistence.OpenRedis(ctx, cfg.Redis, logger)
	if err != nil {
		logger.Warn("redis unavailable, login limiter keeps counters in memory", zap.Error(err))
	}
	defer redisConn.Close()

	loc, err := cfg.Tickets.Location()
	if err != nil {
		logger.Fatal("invalid ticket time zone", zap.Error(err))
	}

	pool := pg.PoolHandle()
	txManager := persistence.NewTxManager(pool)
	userRepo := repository.NewUserRepository(pool)
	ticketRepo := repository.NewTicketRepository(pool)
	catalogRepo := repository.NewCatalogRepository(pool)
	commentRepo := repository.NewCommentRepository(pool)
	auditRepo := repository.NewAuditRepository(pool)
	dashboardRepo := repository.NewDashboardRepository(pool)

	roleList, err := catalogRepo.ListRoles(ctx)
	if err != nil {
		logger.Fatal("failed to load role catalog", zap.Error(err))
	}
	roles, err := authz.ResolveRoles(roleList, cfg.Roles.AdminNames, cfg.Roles.DefaultNames)
	if err != nil {
		logger.Fatal("failed to resolve roles", zap.Error(err))
	}
	policy, err := authz.NewPolicy()
	if err != nil {
		logger.Fatal("failed to build authorization policy", zap.Error(err))
	}

	clock := service.NewSystemClock(loc)
	states := service.NewStateResolver(catalogRepo, cfg.Tickets.ClosedStateNames, cfg.Tickets.OpenStateNames)
	tokens := auth.NewTokenManager(
		cfg.Auth.JWTSecret,
		time.Duration(cfg.Auth.AccessTokenTTLMinutes)*time.Minute,
		time.Duration(cfg.Auth.RefreshTokenTTLHours)*time.Hour,
	)

	authService := service.NewAuthService(service.AuthDependencies{
		Tx:             txManager,
		UserRepo:       userRepo,
		AuditRepo:      auditRepo,
		Roles:          roles,
		TokenManager:   tokens,
		BcryptCost:     cfg.Auth.BcryptCost,
		MinPasswordLen: cfg.Auth.MinPasswordLength,
		Logger:         logger.Named("auth"),
	})
	ticketService := service.NewTicketService(service.TicketDependencies{
		Tx:              txManager,
		TicketRepo:      ticketRepo,
		AuditRepo:       auditRepo,
		States:          states,
		Policy:          policy,
		Clock:           clock,
		DefaultPageSize: cfg.Tickets.DefaultPageSize,
		MaxPageSize:     cfg.Tickets.MaxPageSize,
	})
	commentService := service.NewCommentService(service.CommentDependencies{
		Tx:          txManager,
		TicketRepo:  ticketRepo,
		CommentRepo: commentRepo,
		AuditRepo:   auditRepo,
		Policy:      policy,
		Clock:       clock,
	})
	userService := service.NewUserService(service.UserDependencies{
		Tx:             txManager,
		UserRepo:       userRepo,
		TicketRepo:     ticketRepo,
		AuditRepo:      auditRepo,
		States:         states,
		Roles:          roles,
		Policy:         policy,
		BcryptCost:     cfg.Auth.BcryptCost,
		MinPasswordLen: cfg.Auth.MinPasswordLength,
	})
	dashboardService := service.NewDashboardService(txManager, dashboardRepo, states, policy)
	catalogService := service.NewCatalogService(catalogRepo, policy)

	metrics := observability.NewMetrics()
	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	var redisPinger handlers.Pinger
	var limiterStorage fiber.Storage
	if redisConn != nil {
		redisPinger = redisConn
		limiterStorage = redisConn.LimiterStorage()
	}

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redisPinger, metrics),
		Auth:           handlers.NewAuthHandler(authService),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		Comments:       handlers.NewCommentsHandler(commentService),
		Catalogs:       handlers.NewCatalogsHandler(catalogService),
		Dashboard:      handlers.NewDashboardHandler(dashboardService),
		Users:          handlers.NewUsersHandler(userService, roles),
		AuthMiddleware: auth.NewAuthMiddleware(authService),
		Policy:         policy,
		LoginLimiter:   httptransport.LoginLimiter(limiterStorage, cfg.RateLimit.LoginMax, cfg.RateLimit.LoginWindow()),
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Warn("graceful shutdown failed", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
