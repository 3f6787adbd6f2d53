package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/teenlance/teenlance-backend/internal/config"
	"github.com/teenlance/teenlance-backend/internal/http/handlers"
	"github.com/teenlance/teenlance-backend/internal/http/middleware"
	"github.com/teenlance/teenlance-backend/internal/service"
)

// SetupRouter собирает маршруты приложения.
func SetupRouter(
	cfg *config.Config,
	authHandler *handlers.AuthHandler,
	applicationHandler *handlers.ApplicationHandler,
	profileHandler *handlers.ProfileHandler,
	adminHandler *handlers.AdminHandler,
	notificationHandler *handlers.NotificationHandler,
	mediaHandler *handlers.MediaHandler,
	verificationHandler *handlers.VerificationHandler,
	healthHandler *handlers.HealthHandler,
	wsHandler *handlers.WSHandler,
	tokenManager *service.TokenManager,
) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	r.GET("/health", healthHandler.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware(cfg.RateLimitLimit, cfg.RateLimitPeriod))
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/refresh", authHandler.Refresh)
		authGroup.POST("/logout", authHandler.Logout)
	}

	protectedAuth := api.Group("/auth")
	protectedAuth.Use(middleware.AuthMiddleware(tokenManager))
	{
		protectedAuth.GET("/sessions", authHandler.ListSessions)
		protectedAuth.DELETE("/sessions/:id", middleware.UUIDValidator("id"), authHandler.DeleteSession)
	}

	api.GET("/ws", wsHandler.Handle)

	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(tokenManager))
	{
		protected.GET("/profile", profileHandler.GetMe)
		protected.PUT("/profile/parent-mode", profileHandler.SetParentMode)
		protected.PUT("/profile/contact", profileHandler.UpdateContact)

		protected.POST("/applications", applicationHandler.Create)
		protected.GET("/applications/my", applicationHandler.ListMy)
		protected.GET("/applications/:id", middleware.UUIDValidator("id"), applicationHandler.Get)
		protected.POST("/applications/:id/actions", middleware.UUIDValidator("id"), applicationHandler.PerformAction)
		protected.GET("/applications/:id/payments", middleware.UUIDValidator("id"), applicationHandler.ListPayments)

		protected.GET("/notifications", notificationHandler.List)
		protected.GET("/notifications/unread/count", notificationHandler.CountUnread)
		protected.PUT("/notifications/read-all", notificationHandler.MarkAllAsRead)
		protected.PUT("/notifications/:id/read", middleware.UUIDValidator("id"), notificationHandler.MarkAsRead)
		protected.DELETE("/notifications/:id", middleware.UUIDValidator("id"), notificationHandler.Delete)

		protected.POST("/media", mediaHandler.Upload)
		protected.GET("/media/my", mediaHandler.ListMy)
		protected.GET("/media/:id", middleware.UUIDValidator("id"), mediaHandler.Download)

		protected.POST("/verification/phone", verificationHandler.RequestPhoneCode)
		protected.POST("/verification/phone/confirm", verificationHandler.ConfirmPhone)
		protected.POST("/verification/kyc", verificationHandler.SubmitKyc)
	}

	admin := api.Group("/admin")
	admin.Use(middleware.AuthMiddleware(tokenManager), middleware.RequireRole("admin"))
	{
		admin.PUT("/users/:id/status", middleware.UUIDValidator("id"), adminHandler.SetAccountStatus)
		admin.GET("/kyc", adminHandler.ListPendingKyc)
		admin.PUT("/kyc/:id", middleware.UUIDValidator("id"), adminHandler.ResolveKyc)
	}

	return r
}
