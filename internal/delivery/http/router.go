package http

import (
	"net/http"
	"time"

	"kursus-backend/config"
	"kursus-backend/internal/domain"
	"kursus-backend/pkg/monitoring"
	"kursus-backend/pkg/security"

	"github.com/gin-gonic/gin"
)

func InitRouter(handler *Handler, cfg *config.Config) *gin.Engine {
	r := gin.New()
	r.Use(
		gin.Recovery(),
		RequestLogger(),
		monitoring.MetricsMiddleware(),
		security.Secure(),
		security.CORS(cfg.CORS.AllowedOrigins),
		security.RateLimiter(cfg.RateLimit.MaxRequests, time.Duration(cfg.RateLimit.WindowMinutes)*time.Minute),
	)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", monitoring.PrometheusHandler())

	// Public Routes
	api := r.Group("/api/v1")
	{
		api.POST("/auth/login", handler.Login)
	}

	// Learner Routes (any authenticated user)
	learner := api.Group("/")
	learner.Use(AuthMiddleware())
	{
		learner.GET("/courses", handler.ListCourses)
		learner.GET("/courses/:identifier", handler.GetCourse)
		learner.POST("/courses/:identifier/enroll", handler.EnrollCourse)
		learner.GET("/enrollments", handler.MyEnrollments)

		learner.GET("/courses/:identifier/progress", handler.GetCourseProgress)
		learner.GET("/courses/:identifier/resume", handler.ResumePoint)
		learner.GET("/courses/:identifier/modules/:moduleId", handler.OpenModule)
		learner.POST("/courses/:identifier/modules/:moduleId/complete", handler.CompleteModule)
		learner.POST("/courses/:identifier/modules/:moduleId/record-score", handler.RecordScore)
		learner.GET("/courses/:identifier/modules/:moduleId/quiz", handler.GetQuiz)
		learner.POST("/courses/:identifier/modules/:moduleId/submit", handler.SubmitTest)

		learner.POST("/courses/:identifier/practical-test/assign", handler.AssignPracticalTest)
		learner.POST("/courses/:identifier/practical-test/submit", handler.SubmitPracticalTest)
		learner.GET("/courses/:identifier/certificate/eligibility", handler.CheckEligibility)
		learner.GET("/courses/:identifier/certificate/download", handler.DownloadCertificate)

		learner.GET("/files/*key", handler.ServeFile)
	}

	// Admin Only
	admin := api.Group("/admin")
	admin.Use(AuthMiddleware(string(domain.RoleAdmin)))
	{
		admin.GET("/dashboard", handler.GetAdminDashboard)
		admin.POST("/users", handler.CreateUser)
		admin.POST("/users/import", handler.ImportUsers)

		admin.GET("/courses", handler.ListCourses)
		admin.POST("/courses", handler.CreateCourse)
		admin.GET("/courses/:identifier", handler.GetCourse)
		admin.PUT("/courses/:identifier", handler.UpdateCourse)
		admin.DELETE("/courses/:identifier", handler.DeleteCourse)
		admin.GET("/courses/:identifier/enrollments", handler.ListEnrollments)

		admin.POST("/courses/:identifier/modules", handler.CreateModule)
		admin.PUT("/courses/:identifier/modules/reorder", handler.ReorderModules)
		admin.PUT("/modules/:moduleId", handler.UpdateModule)
		admin.DELETE("/modules/:moduleId", handler.DeleteModule)
		admin.POST("/modules/:moduleId/file", handler.UploadModuleFile)

		admin.GET("/modules/:moduleId/questions", handler.ListQuestions)
		admin.POST("/modules/:moduleId/questions", handler.CreateQuestion)
		admin.PUT("/questions/:questionId", handler.UpdateQuestion)
		admin.DELETE("/questions/:questionId", handler.DeleteQuestion)

		admin.PATCH("/enrollments/:enrollmentId/practical-test", handler.ReviewPracticalTest)
		admin.POST("/enrollments/:enrollmentId/certificate/approve", handler.ApproveCertificate)
		admin.POST("/enrollments/:enrollmentId/certificate/reject", handler.RejectCertificate)
	}

	return r
}
