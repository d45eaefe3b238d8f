package api

import (
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/smartcity/complaints-api/internal/api/handler"
	"github.com/smartcity/complaints-api/internal/api/middleware"
	"github.com/smartcity/complaints-api/internal/core/domain"
	"github.com/smartcity/complaints-api/internal/core/ports"
	"github.com/smartcity/complaints-api/internal/infrastructure/http/handlers"
)

// Dependencies are the collaborators the HTTP layer is built from.
type Dependencies struct {
	Auth     ports.AuthService
	Identity ports.IdentityService
	Cases    ports.CaseService

	Tokens      ports.TokenVerifier
	TokenTTL    time.Duration
	Revocations ports.RevocationStore

	// Readiness checks keyed by dependency name, e.g. "mongo" and "redis".
	Readiness map[string]handlers.Check

	Logger zerolog.Logger
	// Registry receives the HTTP request metrics and backs /metrics. Nil
	// uses the process-wide default registry.
	Registry *prometheus.Registry
	// EnableDocs mounts the Swagger UI at /swagger/*.
	EnableDocs bool
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Logger)
	e.Validator = handler.NewValidator()

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(d.Logger))
	e.Use(metricsMiddleware(d.Registry))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(d.Auth, d.TokenTTL)
	userHandler := handler.NewUserHandler(d.Identity)
	caseHandler := handler.NewCaseHandler(d.Cases)
	adminHandler := handler.NewAdminHandler(d.Identity)

	requireAuth := middleware.Auth(d.Tokens, d.Revocations, d.Identity)

	v1 := e.Group("/api/v1")

	// --- Public auth routes ---
	v1.POST("/signup", authHandler.Signup)
	v1.POST("/login", authHandler.Login)

	// --- Self-service ---
	user := v1.Group("/user", requireAuth)
	user.GET("/me", userHandler.Me)
	user.POST("/update", userHandler.Update)
	user.POST("/password", userHandler.ChangePassword)

	// --- Cases ---
	cases := v1.Group("/cases", requireAuth)
	cases.POST("", caseHandler.Create, middleware.RBAC(domain.RoleCitizen))
	cases.GET("", caseHandler.List)
	cases.GET("/:id", caseHandler.Get)
	cases.GET("/:id/history", caseHandler.History)
	cases.PATCH("/:id/status", caseHandler.UpdateStatus, middleware.RBAC(domain.RoleAdmin, domain.RoleEmployee))

	// --- Admin ---
	admin := v1.Group("/admin", requireAuth, middleware.RBAC(domain.RoleAdmin))
	admin.PATCH("/cases/:id/assign", caseHandler.Assign)
	admin.POST("/employees", adminHandler.CreateEmployee)
	admin.GET("/employees", adminHandler.ListEmployees)
	admin.GET("/users", adminHandler.ListUsers)
	admin.PATCH("/users/:id/deactivate", adminHandler.Deactivate)
	admin.DELETE("/users/:id", adminHandler.Delete)

	// --- Health checks (no auth required) ---
	e.GET("/health", handlers.NewHealthHandler().Liveness)
	e.GET("/health/ready", handlers.NewReadinessHandler(d.Readiness).Readiness)

	// --- Observability ---
	e.GET("/metrics", metricsHandler(d.Registry))
	if d.EnableDocs {
		e.GET("/swagger/*", echoSwagger.WrapHandler)
	}

	return e
}

// requestLogger emits one structured line per request through zerolog.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			evt := log.Info()
			if v.Status >= 500 {
				evt = log.Error()
			}
			evt.
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}

func metricsMiddleware(reg *prometheus.Registry) echo.MiddlewareFunc {
	cfg := echoprometheus.MiddlewareConfig{
		Subsystem: "smartcity",
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}
	if reg != nil {
		cfg.Registerer = reg
	}
	return echoprometheus.NewMiddlewareWithConfig(cfg)
}

func metricsHandler(reg *prometheus.Registry) echo.HandlerFunc {
	if reg == nil {
		return echoprometheus.NewHandler()
	}
	return echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: reg})
}
