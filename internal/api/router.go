package api

import (
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/staffhub/hr-portal/internal/api/handler"
	"github.com/staffhub/hr-portal/internal/api/middleware"
	"github.com/staffhub/hr-portal/internal/core/domain"
	"github.com/staffhub/hr-portal/internal/core/service"
	"github.com/staffhub/hr-portal/internal/infrastructure/config"
	mongodb "github.com/staffhub/hr-portal/internal/infrastructure/db/mongo"
	redisdb "github.com/staffhub/hr-portal/internal/infrastructure/db/redis"
)

// NewRouter builds and returns the Echo instance with all routes registered.
// The dispatcher is started by the caller; the router only enqueues into it.
func NewRouter(db *mongo.Database, rdb *redis.Client, cfg *config.Config, dispatcher service.DecisionDispatcher, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())

	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Dependencies ---
	credRepo := mongodb.NewCredentialRepository(db)
	sessionRepo := mongodb.NewSessionRepository(db)
	requestRepo := mongodb.NewLeaveRequestRepository(db)
	balanceRepo := mongodb.NewLeaveBalanceRepository(db)
	identityCache := redisdb.NewIdentityCache(rdb, log)

	authService := service.NewAuthService(credRepo, sessionRepo, identityCache, cfg.JWTSecret, cfg.TokenTTL, log)
	employeeService := service.NewEmployeeService(credRepo, sessionRepo, log)
	leaveService := service.NewLeaveService(requestRepo, balanceRepo, dispatcher, log)

	authHandler := handler.NewAuthHandler(authService, cfg.TokenTTL)
	employeeHandler := handler.NewEmployeeHandler(employeeService)
	leaveHandler := handler.NewLeaveHandler(leaveService)

	authed := middleware.Auth(authService)
	adminOnly := middleware.RequireRole(domain.RoleAdmin)
	approvers := middleware.RequireRole(domain.RoleAdmin, domain.RoleHR)

	// --- Auth routes ---
	e.POST("/auth/login", authHandler.Login)
	e.POST("/auth/logout", authHandler.Logout, authed)
	e.GET("/auth/me", authHandler.Me, authed)

	// --- Employee routes ---
	v1 := e.Group("/v1", authed)
	v1.POST("/employees", authHandler.Register, adminOnly)
	v1.GET("/employees", employeeHandler.List, approvers)
	v1.GET("/employees/:id", employeeHandler.Get)
	v1.PATCH("/employees/:id", employeeHandler.Update)
	v1.DELETE("/employees/:id", employeeHandler.Delete, adminOnly)

	// --- Leave routes ---
	v1.POST("/leaves", leaveHandler.Submit)
	v1.GET("/leaves", leaveHandler.ListMine)
	v1.GET("/leaves/pending", leaveHandler.ListPending, approvers)
	v1.POST("/leaves/:id/decision", leaveHandler.Decide, approvers)

	// --- Balance routes ---
	v1.PUT("/balances", leaveHandler.SetBalance, approvers)
	v1.GET("/balances/:employee_id", leaveHandler.Balances)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)           // liveness  – is the process alive?
	e.GET("/health/ready", readinessHandler.Readiness) // readiness – are dependencies up?

	// --- Metrics ---
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	return e
}
