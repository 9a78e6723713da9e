package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/bfcb/quizmerit-backend/internal/config"
	"github.com/bfcb/quizmerit-backend/internal/handler"
	"github.com/bfcb/quizmerit-backend/internal/middleware"
	"github.com/bfcb/quizmerit-backend/internal/response"
	"github.com/bfcb/quizmerit-backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth     *handler.AuthHandler
	User     *handler.UserHandler
	Question *handler.QuestionHandler
	Quiz     *handler.QuizHandler
	Admin    *handler.AdminHandler
	Media    *handler.MediaHandler
	Monitor  *handler.MonitorHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Serve uploaded media files statically with aggressive caching (1 year).
	uploadsGroup := router.Group("/uploads")
	uploadsGroup.Use(middleware.CacheControl(365 * 24 * time.Hour))
	{
		uploadsGroup.Static("/", cfg.UploadDir)
	}

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// Rate limiter for the unauthenticated participant routes
	// (30 requests per minute per IP).
	quizLimiter := middleware.NewRateLimiter(30, time.Minute)

	// ─── 1. Auth Group ─────────────────────────────────────────────────
	auth := router.Group("/api/v1/auth")
	{
		auth.POST("/admin/login", handlers.Auth.AdminLogin)
		auth.GET("/admin/me", middleware.RequireAdminJWT(authService), handlers.Auth.GetAdminProfile)
	}

	// ─── 2. Participant Group (Public, Rate Limited) ───────────────────
	public := router.Group("/api/v1")
	public.Use(quizLimiter.Middleware())
	{
		public.POST("/users", handlers.User.Register)
		public.GET("/questions", handlers.Question.ListActive)

		public.POST("/quiz/check-session", handlers.Quiz.CheckSession)
		public.POST("/quiz/start", handlers.Quiz.StartSession)
		public.POST("/quiz/resume", handlers.Quiz.ResumeSession)
		public.POST("/quiz/save-progress", handlers.Quiz.SaveProgress)
		public.POST("/quiz/submit", handlers.Quiz.SubmitQuiz)
	}

	// ─── 3. Admin Group (JWT) ──────────────────────────────────────────
	adminAPI := router.Group("/api/v1/admin")
	adminAPI.Use(middleware.RequireAdminJWT(authService))
	{
		adminAPI.GET("/questions", handlers.Question.ListAll)
		adminAPI.POST("/questions", handlers.Question.Create)
		adminAPI.PUT("/questions/:id", handlers.Question.Update)
		adminAPI.DELETE("/questions/:id", handlers.Question.Delete)

		adminAPI.GET("/responses", handlers.Admin.ListResponses)
		adminAPI.POST("/evaluate", handlers.Admin.Evaluate)

		adminAPI.GET("/merit-list", handlers.Admin.GetMeritList)
		adminAPI.GET("/merit-list/export", handlers.Admin.ExportMeritList)

		adminAPI.GET("/stats", handlers.Admin.GetStats)

		adminAPI.POST("/media/upload", handlers.Media.UploadMedia)
	}

	// ─── 4. WebSocket Group (Admin WS Auth) ────────────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireAdminJWT(authService))
	{
		ws.GET("/admin/monitor", handlers.Monitor.MonitorStream)
	}

	return router
}
