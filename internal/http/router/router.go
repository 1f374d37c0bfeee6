package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"

	"github.com/ecopulse/ecopulse-backend/internal/config"
	"github.com/ecopulse/ecopulse-backend/internal/domain/repository"
	"github.com/ecopulse/ecopulse-backend/internal/http/handlers"
	"github.com/ecopulse/ecopulse-backend/internal/http/middleware"
)

// Handlers собирает все HTTP хэндлеры приложения.
type Handlers struct {
	Health    *handlers.HealthHandler
	Auth      *handlers.AuthHandler
	Problem   *handlers.ProblemHandler
	Vote      *handlers.VoteHandler
	Complaint *handlers.ComplaintHandler
	Shop      *handlers.ShopHandler
	User      *handlers.UserHandler
	Sensor    *handlers.SensorHandler
	Analytics *handlers.AnalyticsHandler
	WS        *handlers.WSHandler
}

// Deps - зависимости middleware.
type Deps struct {
	Tokens     middleware.TokenParser
	Users      repository.UserRepository
	LimitStore limiter.Store
	UploadsDir string
}

func SetupRouter(cfg *config.Config, h Handlers, deps Deps) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	r.GET("/health", h.Health.Health)
	r.StaticFS("/uploads", http.Dir(deps.UploadsDir))

	api := r.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware(deps.LimitStore, "auth", 5, cfg.RateLimitPeriod))
	{
		authGroup.POST("/register", h.Auth.Register)
		authGroup.POST("/login", h.Auth.Login)
		authGroup.POST("/refresh", h.Auth.Refresh)
	}

	// Датчики открыты без входа, как карта на главной.
	api.GET("/sensors", middleware.RateLimitMiddleware(deps.LimitStore, "sensors", cfg.RateLimitLimit, cfg.RateLimitPeriod), h.Sensor.Readings)

	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(deps.Tokens))
	{
		protected.GET("/auth/me", h.Auth.Me)
		protected.GET("/ws", h.WS.Handle)

		// Проблемы и задания
		writes := middleware.RateLimitMiddleware(deps.LimitStore, "write", cfg.RateLimitLimit, cfg.RateLimitPeriod)
		protected.GET("/problems", h.Problem.List)
		protected.POST("/problems", writes, h.Problem.Report)
		protected.GET("/problems/:id", middleware.UUIDValidator("id"), h.Problem.Get)
		protected.POST("/problems/:id/take", middleware.UUIDValidator("id"), h.Problem.Claim)
		protected.POST("/problems/:id/release", middleware.UUIDValidator("id"), h.Problem.Release)
		protected.POST("/problems/:id/complete", middleware.UUIDValidator("id"), writes, h.Problem.Complete)
		protected.POST("/problems/:id/comments", middleware.UUIDValidator("id"), writes, h.Problem.AddComment)
		protected.GET("/problems/:id/vote", middleware.UUIDValidator("id"), h.Vote.Status)
		protected.POST("/problems/:id/vote", middleware.UUIDValidator("id"), h.Vote.Vote)

		protected.POST("/complaints", writes, h.Complaint.File)

		// Магазин и баллы
		protected.GET("/shop/items", h.Shop.Items)
		protected.POST("/shop/orders", writes, h.Shop.PlaceOrder)
		protected.GET("/shop/orders", h.Shop.MyOrders)
		protected.GET("/balance", h.Shop.Balance)

		// Пользователи
		protected.GET("/users/me", h.User.Me)
		protected.PATCH("/users/me", h.User.UpdateMe)
		protected.GET("/users/:id", middleware.UUIDValidator("id"), h.User.Get)
		protected.GET("/rating", h.User.Rating)
		protected.GET("/analytics", h.Analytics.Analytics)
	}

	admin := api.Group("/admin")
	admin.Use(middleware.AuthMiddleware(deps.Tokens), middleware.RequireAdmin(deps.Users))
	{
		admin.POST("/problems/:id/reject", middleware.UUIDValidator("id"), h.Problem.Reject)
		admin.DELETE("/problems/:id", middleware.UUIDValidator("id"), h.Problem.Delete)

		admin.GET("/complaints", h.Complaint.Pending)
		admin.POST("/complaints/:id/resolve", middleware.UUIDValidator("id"), h.Complaint.Resolve)

		admin.GET("/orders", h.Shop.AllOrders)
		admin.PATCH("/orders/:id", middleware.UUIDValidator("id"), h.Shop.UpdateStatus)
		admin.POST("/balance", h.Shop.AdjustBalance)

		admin.GET("/users", h.User.List)
		admin.POST("/users/:id/toggle_admin", middleware.UUIDValidator("id"), h.User.ToggleAdmin)
		admin.POST("/users/:id/toggle_worker", middleware.UUIDValidator("id"), h.User.ToggleWorker)
	}

	return r
}
