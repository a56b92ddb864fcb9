package routes

import (
	"time"

	"classroom-service/internal/api/handlers"
	"classroom-service/internal/api/middleware"
	"classroom-service/internal/config"
	"classroom-service/internal/mailer"
	"classroom-service/internal/repositories/postgres"
	"classroom-service/internal/services"
	"classroom-service/internal/storage"
	"classroom-service/internal/websocket"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type Router struct {
	engine            *gin.Engine
	hub               *websocket.Hub
	authHandler       *handlers.AuthHandler
	courseHandler     *handlers.CourseHandler
	assignmentHandler *handlers.AssignmentHandler
	submissionHandler *handlers.SubmissionHandler
	chatHandler       *handlers.ChatHandler
	adminHandler      *handlers.AdminHandler
	wsHandler         *handlers.WebSocketHandler
	rateLimitMW       *middleware.RateLimitMiddleware
	authMW            *middleware.AuthMiddleware
}

// NewRouter wires repositories, services and handlers together. The hub
// comes in from main so its lifecycle outlives the HTTP layer.
func NewRouter(
	cfg *config.Config,
	db *gorm.DB,
	redisService *services.RedisService,
	store *storage.MinioStorage,
	mail mailer.Mailer,
	hub *websocket.Hub,
	authService *services.AuthService,
) *Router {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(gin.Recovery())
	engine.Use(middleware.CORS())
	engine.Use(middleware.LogAPI())

	userRepo := postgres.NewUserRepository(db)
	courseRepo := postgres.NewCourseRepository(db)
	assignmentRepo := postgres.NewAssignmentRepository(db)
	submissionRepo := postgres.NewSubmissionRepository(db)
	messageRepo := postgres.NewMessageRepository(db)

	courseService := services.NewCourseService(courseRepo, userRepo, assignmentRepo, submissionRepo)
	assignmentService := services.NewAssignmentService(assignmentRepo, submissionRepo, courseService, store)
	submissionService := services.NewSubmissionService(submissionRepo, assignmentService, courseService, userRepo, store)
	chatService := services.NewChatService(messageRepo, assignmentService, courseService, userRepo)
	adminService := services.NewAdminService(userRepo, courseRepo, assignmentRepo)

	return &Router{
		engine:            engine,
		hub:               hub,
		authHandler:       handlers.NewAuthHandler(authService),
		courseHandler:     handlers.NewCourseHandler(courseService, submissionService),
		assignmentHandler: handlers.NewAssignmentHandler(assignmentService, hub),
		submissionHandler: handlers.NewSubmissionHandler(submissionService, hub),
		chatHandler:       handlers.NewChatHandler(chatService, hub),
		adminHandler:      handlers.NewAdminHandler(adminService),
		wsHandler:         handlers.NewWebSocketHandler(hub, authService.VerifyToken),
		rateLimitMW:       middleware.NewRateLimitMiddleware(redisService),
		authMW:            middleware.NewAuthMiddleware(cfg.JWT.Secret, userRepo),
	}
}

func (r *Router) SetupRoutes() {
	r.engine.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := r.engine.Group("/api")

	// WebSocket endpoint; the token is checked during the handshake.
	api.GET("/ws", r.wsHandler.Connect)

	// Public routes
	public := api.Group("/auth")
	public.Use(r.rateLimitMW.RateLimitIP(30, time.Minute))
	{
		public.POST("/register", r.authHandler.Register)
		public.POST("/verify-email", r.authHandler.VerifyEmail)
		public.POST("/resend-code", r.authHandler.ResendCode)
		public.POST("/login", r.authHandler.Login)
	}

	// Authenticated routes
	auth := api.Group("/")
	auth.Use(r.authMW.RequireAuth())
	{
		users := auth.Group("/users")
		users.Use(r.rateLimitMW.RateLimit(100, time.Minute))
		{
			users.GET("/me", r.authHandler.GetProfile)
			users.PATCH("/me", r.authHandler.UpdateProfile)
			users.PUT("/me/password", r.authHandler.UpdatePassword)
		}

		courses := auth.Group("/courses")
		courses.Use(r.rateLimitMW.RateLimit(100, time.Minute))
		{
			courses.GET("", r.courseHandler.ListMine)
			courses.POST("", r.courseHandler.Create)
			courses.POST("/join", r.courseHandler.Join)
			courses.GET("/:id", r.courseHandler.Get)
			courses.PATCH("/:id", r.courseHandler.Update)
			courses.DELETE("/:id", r.courseHandler.Delete)
			courses.POST("/:id/archive", r.courseHandler.Archive)
			courses.POST("/:id/unarchive", r.courseHandler.Unarchive)
			courses.POST("/:id/leave", r.courseHandler.Leave)
			courses.GET("/:id/members", r.courseHandler.ListMembers)
			courses.DELETE("/:id/members/:userId", r.courseHandler.RemoveMember)
			courses.GET("/:id/gradebook", r.courseHandler.Gradebook)
			courses.GET("/:id/ungraded", r.courseHandler.ListUngraded)
		}

		// Assignment creation and listing hang off the owning course;
		// everything else addresses the assignment directly, including
		// its submissions and chat thread.
		courseAssignments := auth.Group("/courses/:id/assignments")
		courseAssignments.Use(r.rateLimitMW.RateLimit(100, time.Minute))
		{
			courseAssignments.GET("", r.assignmentHandler.ListByCourse)
			courseAssignments.POST("", r.assignmentHandler.Create)
		}

		assignments := auth.Group("/assignments")
		assignments.Use(r.rateLimitMW.RateLimit(100, time.Minute))
		{
			assignments.GET("/my", r.assignmentHandler.ListMine)
			assignments.GET("/:id", r.assignmentHandler.Get)
			assignments.PATCH("/:id", r.assignmentHandler.Update)
			assignments.DELETE("/:id", r.assignmentHandler.Delete)
			assignments.POST("/:id/view", r.assignmentHandler.MarkViewed)
			assignments.POST("/:id/files", r.assignmentHandler.UploadFile)
			assignments.GET("/:id/files/:fileId", r.assignmentHandler.DownloadFile)
			assignments.DELETE("/:id/files/:fileId", r.assignmentHandler.DeleteFile)

			assignments.POST("/:id/submissions", r.submissionHandler.Create)
			assignments.GET("/:id/submissions", r.submissionHandler.ListByAssignment)
			assignments.GET("/:id/submissions/my", r.submissionHandler.ListMine)
			assignments.GET("/:id/ungraded", r.submissionHandler.ListUngraded)
			assignments.GET("/:id/attempts", r.submissionHandler.AttemptsInfo)
			assignments.POST("/:id/messages", r.chatHandler.Create)
			assignments.GET("/:id/messages", r.chatHandler.List)
		}

		submissions := auth.Group("/submissions")
		submissions.Use(r.rateLimitMW.RateLimit(100, time.Minute))
		{
			submissions.GET("/:id", r.submissionHandler.Get)
			submissions.DELETE("/:id", r.submissionHandler.Delete)
			submissions.POST("/:id/grade", r.submissionHandler.Grade)
			submissions.POST("/:id/view", r.submissionHandler.MarkViewed)
			submissions.POST("/:id/files", r.submissionHandler.UploadFile)
			submissions.GET("/:id/files/:fileId", r.submissionHandler.DownloadFile)
			submissions.DELETE("/:id/files/:fileId", r.submissionHandler.DeleteFile)
		}

		messages := auth.Group("/messages")
		messages.Use(r.rateLimitMW.RateLimit(200, time.Minute))
		{
			messages.DELETE("/:id", r.chatHandler.Delete)
		}

		admin := auth.Group("/admin")
		admin.Use(r.authMW.RequireAdmin())
		{
			admin.GET("/users", r.adminHandler.ListUsers)
			admin.DELETE("/users/:id", r.adminHandler.DeleteUser)
			admin.PATCH("/users/:id/admin", r.adminHandler.SetAdmin)
			admin.GET("/courses", r.adminHandler.ListCourses)
			admin.DELETE("/courses/:id", r.adminHandler.DeleteCourse)
			admin.GET("/courses/:id/members", r.adminHandler.ListCourseMembers)
			admin.GET("/courses/:id/assignments", r.adminHandler.ListCourseAssignments)
		}
	}
}

func (r *Router) GetEngine() *gin.Engine {
	return r.engine
}
