package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/examforge/examforge-backend/internal/config"
	"github.com/examforge/examforge-backend/internal/handler"
	"github.com/examforge/examforge-backend/internal/middleware"
	"github.com/examforge/examforge-backend/internal/model"
	"github.com/examforge/examforge-backend/internal/response"
	"github.com/examforge/examforge-backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth        *handler.AuthHandler
	StudentExam *handler.StudentExamHandler
	Exam        *handler.ExamHandler
	Question    *handler.QuestionHandler
	Result      *handler.ResultHandler
	Session     *handler.SessionHandler
	MonitorWS   *handler.MonitorWSHandler
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

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// Rate limiter for auth routes (30 requests per minute per IP).
	authLimiter := middleware.NewRateLimiter(30, time.Minute)

	// ─── 1. Auth Group (Public, Rate Limited) ──────────────────────────
	auth := router.Group("/api/v1/auth")
	auth.Use(authLimiter.Middleware())
	{
		auth.POST("/register", handlers.Auth.Register)
		auth.POST("/login", handlers.Auth.Login)
		auth.GET("/me",
			middleware.RequireStaffJWT(authService, model.RoleAdmin, model.RoleInvigilator, model.RoleStudent),
			handlers.Auth.Me,
		)
	}

	// ─── 2. Student Group (JWT + Single Device) ────────────────────────
	studentAPI := router.Group("/api/v1/student")
	studentAPI.Use(
		middleware.RequireStudentJWT(authService),
		middleware.CheckSingleDeviceSession(authService),
	)
	{
		studentAPI.GET("/exams", handlers.Exam.ListForStudent)
		studentAPI.POST("/exams/:exam_id/start", handlers.StudentExam.Start)
		studentAPI.GET("/exams/:exam_id/paper", handlers.StudentExam.Paper)
		studentAPI.POST("/exams/:exam_id/answer", handlers.StudentExam.SaveAnswer)
		studentAPI.POST("/exams/:exam_id/answers", handlers.StudentExam.SaveAnswers)
		studentAPI.POST("/exams/:exam_id/submit", handlers.StudentExam.Submit)
		studentAPI.GET("/exams/:exam_id/time", handlers.StudentExam.Time)
		studentAPI.POST("/exams/:exam_id/violation", handlers.StudentExam.Violation)
		studentAPI.GET("/exams/:exam_id/result", handlers.Result.StudentResult)
		studentAPI.GET("/results", handlers.Result.StudentHistory)
	}

	// ─── 3. WebSocket Group (Staff WS Auth) ────────────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireStaffWSAuth(authService, model.RoleAdmin, model.RoleInvigilator))
	{
		ws.GET("/monitor/sessions/:session_id", handlers.MonitorWS.Stream)
	}

	// ─── 4. Admin Group ────────────────────────────────────────────────
	adminAPI := router.Group("/api/v1/admin")
	adminAPI.Use(middleware.RequireStaffJWT(authService, model.RoleAdmin))
	{
		// Question banks
		adminAPI.GET("/qbanks", handlers.Question.ListBanks)
		adminAPI.POST("/qbanks", handlers.Question.CreateBank)
		adminAPI.GET("/qbanks/:bank_id", handlers.Question.GetBank)
		adminAPI.PUT("/qbanks/:bank_id", handlers.Question.UpdateBank)
		adminAPI.DELETE("/qbanks/:bank_id", handlers.Question.DeleteBank)
		adminAPI.GET("/qbanks/:bank_id/questions", handlers.Question.ListQuestions)
		adminAPI.POST("/qbanks/:bank_id/questions", handlers.Question.AddQuestion)

		// Questions
		adminAPI.GET("/questions/:question_id", handlers.Question.GetQuestion)
		adminAPI.PUT("/questions/:question_id", handlers.Question.UpdateQuestion)
		adminAPI.DELETE("/questions/:question_id", handlers.Question.DeleteQuestion)

		// Exams
		adminAPI.GET("/exams", handlers.Exam.List)
		adminAPI.POST("/exams", handlers.Exam.Create)
		adminAPI.GET("/exams/:exam_id", handlers.Exam.Get)
		adminAPI.PUT("/exams/:exam_id", handlers.Exam.Update)
		adminAPI.DELETE("/exams/:exam_id", handlers.Exam.Delete)
		adminAPI.POST("/exams/:exam_id/schedule", handlers.Exam.Schedule)
		adminAPI.POST("/exams/:exam_id/activate", handlers.Exam.Activate)
		adminAPI.POST("/exams/:exam_id/complete", handlers.Exam.Complete)
		adminAPI.POST("/exams/:exam_id/cancel", handlers.Exam.Cancel)
		adminAPI.POST("/exams/:exam_id/assign", handlers.Exam.AssignStudents)

		// Results
		adminAPI.GET("/exams/:exam_id/results", handlers.Result.Leaderboard)
		adminAPI.GET("/exams/:exam_id/summary", handlers.Result.Summary)
	}

	// ─── 5. Session Group (Invigilator or Admin) ───────────────────────
	sessionAPI := router.Group("/api/v1/sessions")
	sessionAPI.Use(middleware.RequireStaffJWT(authService, model.RoleAdmin, model.RoleInvigilator))
	{
		sessionAPI.GET("/active", handlers.Session.ListActive)
		sessionAPI.GET("/:session_id", handlers.Session.Get)
		sessionAPI.GET("/:session_id/students", handlers.Session.StudentProgress)
		sessionAPI.POST("/:session_id/flag", handlers.Session.FlagStudent)
		sessionAPI.GET("/:session_id/flags", handlers.Session.ListFlags)
	}

	return router
}
