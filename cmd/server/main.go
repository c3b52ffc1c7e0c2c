package main

import (
	"log"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"

	"github.com/bhanu100141/StudyBuddy/internal/ai"
	"github.com/bhanu100141/StudyBuddy/internal/api/handlers"
	"github.com/bhanu100141/StudyBuddy/internal/api/middleware"
	"github.com/bhanu100141/StudyBuddy/internal/config"
	"github.com/bhanu100141/StudyBuddy/internal/database"
	"github.com/bhanu100141/StudyBuddy/internal/extract"
	"github.com/bhanu100141/StudyBuddy/internal/storage"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	// Initialize database connections
	db := database.InitDB(cfg)
	redisClient := database.InitRedis(cfg)

	// External collaborators
	generator := ai.NewGeminiClient(cfg.GeminiBaseURL, cfg.GeminiAPIKey, cfg.GeminiModel)
	store, err := storage.NewOSSStore(cfg)
	if err != nil {
		log.Fatal("Failed to initialize object storage:", err)
	}
	extractor := extract.NewPDFExtractor()

	r := setupRouter(db, redisClient, cfg, generator, objectStore(store), extractor)

	log.Printf("Server starting on port %s", cfg.ServerPort)
	if err := r.Run(":" + cfg.ServerPort); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}

// objectStore keeps the handler's ObjectStore dependency nil when OSS is not
// configured, instead of a typed nil pointer.
func objectStore(store *storage.OSSStore) storage.ObjectStore {
	if store == nil {
		return nil
	}
	return store
}

func setupRouter(
	db *gorm.DB,
	redisClient *redis.Client,
	cfg *config.Config,
	generator ai.Generator,
	store storage.ObjectStore,
	extractor extract.TextExtractor,
) *gin.Engine {
	r := gin.Default()

	// Configure CORS middleware
	headers := cors.DefaultConfig()
	headers.AllowOrigins = []string{cfg.FrontendURL}
	headers.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	headers.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	headers.ExposeHeaders = []string{"Content-Length"}
	headers.AllowCredentials = true
	r.Use(cors.New(headers))

	// Initialize handlers and middleware with dependencies
	authMiddleware := middleware.NewAuthMiddleware(cfg.JWTSecret)
	handler := handlers.NewHandler(db, redisClient, cfg, authMiddleware, generator, store, extractor)

	// API routes
	api := r.Group("/api")
	{
		// Auth routes
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", handler.RegisterHandler)
			authGroup.POST("/login", handler.LoginHandler)
		}

		// All remaining routes require authentication
		authed := api.Group("", authMiddleware.RequireAuth())

		chats := authed.Group("/chats")
		{
			chats.GET("", handler.ListChats)
			chats.POST("", handler.CreateChat)
			chats.GET("/:chatId", handler.GetChat)
			chats.PATCH("/:chatId", handler.UpdateChat)
			chats.DELETE("/:chatId", handler.DeleteChat)
			chats.POST("/:chatId/messages", handler.SendMessage)
		}

		materials := authed.Group("/materials")
		{
			materials.GET("", handler.ListMaterials)
			materials.POST("", handler.UploadMaterial)
			materials.DELETE("/:materialId", handler.DeleteMaterial)
		}

		courses := authed.Group("/courses")
		{
			courses.GET("", handler.ListCourses)
			courses.POST("", handler.CreateCourse)
			courses.GET("/:courseId", handler.GetCourse)
			courses.PATCH("/:courseId", handler.UpdateCourse)
			courses.DELETE("/:courseId", handler.DeleteCourse)
		}

		schedules := authed.Group("/schedules")
		{
			schedules.GET("", handler.ListSchedules)
			schedules.POST("", handler.CreateSchedule)
			schedules.GET("/:scheduleId", handler.GetSchedule)
			schedules.PATCH("/:scheduleId", handler.UpdateSchedule)
			schedules.DELETE("/:scheduleId", handler.DeleteSchedule)
			schedules.POST("/:scheduleId/toggle", handler.ToggleSchedule)
		}

		authed.GET("/teachers", handler.ListTeachers)

		student := authed.Group("/student")
		{
			student.GET("/doubts", handler.ListStudentDoubts)
			student.POST("/doubts", handler.CreateDoubt)
			student.POST("/doubts/:doubtId/close", handler.CloseDoubt)
			student.GET("/assignments", handler.ListStudentAssignments)
			student.POST("/assignments/:assignmentId/submit", handler.SubmitAssignment)
			student.GET("/meetings", handler.ListStudentMeetings)
			student.POST("/meetings", handler.CreateMeeting)
		}

		teacher := authed.Group("/teacher")
		{
			teacher.GET("/students", handler.ListStudents)
			teacher.GET("/students/:studentId", handler.GetStudentDetails)
			teacher.GET("/stats", handler.TeacherStats)
			teacher.GET("/doubts", handler.ListAllDoubts)
			teacher.POST("/doubts/:doubtId/answer", handler.AnswerDoubt)
			teacher.GET("/assignments", handler.ListTeacherAssignments)
			teacher.POST("/assignments", handler.CreateAssignment)
			teacher.DELETE("/assignments/:assignmentId", handler.DeleteAssignment)
			teacher.POST("/assignments/:assignmentId/grade", handler.GradeAssignment)
			teacher.GET("/meetings", handler.ListAllMeetings)
			teacher.POST("/meetings/:meetingId/schedule", handler.ScheduleMeeting)
		}

		meetings := authed.Group("/meetings")
		{
			meetings.POST("/:meetingId/complete", handler.CompleteMeeting)
			meetings.POST("/:meetingId/cancel", handler.CancelMeeting)
		}
	}

	return r
}
