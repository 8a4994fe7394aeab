package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/rjtc/pms-sync/internal/api/handler"
	"github.com/rjtc/pms-sync/internal/api/middleware"
	"github.com/rjtc/pms-sync/internal/core/domain"
	"github.com/rjtc/pms-sync/internal/core/ports"
	"github.com/rjtc/pms-sync/internal/infrastructure/queue"
)

// Deps carries the wired services the router needs. Construction happens in
// main so tests can assemble a router around stubs.
type Deps struct {
	Reader    ports.TaskReader
	Writer    ports.TaskWriter
	Members   ports.MemberService
	Sessions  ports.SessionService
	Prefetch  *queue.Prefetcher
	Mongo     *mongo.Database
	Redis     *redis.Client
	JWTSecret string
	Log       zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)
	e.Validator = handler.NewValidator()

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echoprometheus.NewMiddleware("pms"))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(d.Sessions)
	sessionHandler := handler.NewSessionHandler(d.Sessions)
	taskHandler := handler.NewTaskHandler(d.Reader, d.Writer, d.Sessions, d.Prefetch)
	memberHandler := handler.NewMemberHandler(d.Members)

	authMW := middleware.Auth(d.JWTSecret)
	managerOnly := middleware.RequireRole(domain.RoleManager)

	// --- Auth routes (public) ---
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)
	e.POST("/auth/oauth", authHandler.LoginOAuth)
	e.POST("/auth/logout", authHandler.Logout, authMW)

	// --- Session ---
	e.GET("/session", sessionHandler.Get, authMW)
	e.PUT("/session/role", sessionHandler.UpdateRole, authMW)

	// --- Tasks ---
	tasks := e.Group("/tasks", authMW)
	tasks.GET("", taskHandler.List)
	tasks.GET("/:id", taskHandler.Get)
	tasks.POST("", taskHandler.Create, managerOnly)
	tasks.POST("/:id/assign", taskHandler.Assign, managerOnly)
	tasks.PUT("/:id/completion", taskHandler.Completion)

	// --- Members ---
	e.GET("/members/:id", memberHandler.Get, authMW)

	// --- Observability ---
	e.GET("/metrics", echoprometheus.NewHandler())

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(d.Mongo, d.Redis)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	return e
}
