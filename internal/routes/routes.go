package routes

import (
	"clinic-app-server/internal/clinic"
	"clinic-app-server/internal/config"
	"clinic-app-server/internal/handlers"
	"clinic-app-server/internal/middleware"
	"clinic-app-server/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SetupRoutes configures the application routes.
func SetupRoutes(router *gin.Engine, db *gorm.DB, cfg *config.Config) {
	// Core services share one unit of work and one audit sink.
	uow := clinic.NewUnitOfWork(db)
	auditSink := clinic.NewDBAuditSink(db)
	scheduler := clinic.NewScheduler(uow, auditSink)
	attendance := clinic.NewAttendanceTracker(uow, auditSink)
	reaccessWorkflow := clinic.NewReaccessWorkflow(uow, auditSink)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(db, cfg)
	userHandler := handlers.NewUserHandler(db)
	appointmentHandler := handlers.NewAppointmentHandler(db, scheduler, attendance)
	reaccessHandler := handlers.NewReaccessHandler(db, reaccessWorkflow)
	consultationHandler := handlers.NewConsultationHandler(db)
	auditHandler := handlers.NewAuditHandler(db)

	// Public routes (no authentication required)
	public := router.Group("/api/v1")
	{
		authRoutes := public.Group("/auth")
		{
			authRoutes.POST("/register", authHandler.Register)
			authRoutes.POST("/login", authHandler.Login)
			authRoutes.POST("/refresh-token", authHandler.RefreshToken)
		}
	}

	// Authenticated routes
	private := router.Group("/api/v1")
	private.Use(middleware.AuthMiddleware(cfg))
	{
		authRoutesPrivate := private.Group("/auth")
		{
			authRoutesPrivate.POST("/logout", authHandler.Logout)
			authRoutesPrivate.GET("/profile", authHandler.GetProfile)
			authRoutesPrivate.PUT("/profile", authHandler.UpdateProfile)
		}

		// User management routes
		userRoutes := private.Group("/users")
		{
			// Accessible by all authenticated users for booking
			userRoutes.GET("/doctors", userHandler.GetDoctors)

			// Accessible by doctors and admins
			userRoutes.GET("/patients", userHandler.GetPatients)

			// Admin-only routes
			adminRoutes := userRoutes.Group("")
			adminRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin))
			{
				adminRoutes.POST("", userHandler.CreateUser)
				adminRoutes.GET("", userHandler.GetUsers)
				adminRoutes.GET("/:id", userHandler.GetUserByID)
				adminRoutes.PUT("/:id", userHandler.UpdateUser)
				adminRoutes.DELETE("/:id", userHandler.DeleteUser)
			}
		}

		// Appointment routes
		appointmentRoutes := private.Group("/appointments")
		{
			// Staff create appointments; restricted patients are refused by the scheduler
			appointmentRoutes.POST("", middleware.RoleAuthMiddleware(models.RoleDoctor, models.RoleAdmin), appointmentHandler.CreateAppointment)

			// All authenticated users see their own appointments
			appointmentRoutes.GET("", appointmentHandler.GetAppointmentsForUser)
			appointmentRoutes.GET("/:id", appointmentHandler.GetAppointmentByID)

			// Rescheduling and attendance are staff operations; authorization inside handler
			appointmentRoutes.PATCH("/:id/reschedule", middleware.RoleAuthMiddleware(models.RoleDoctor, models.RoleAdmin), appointmentHandler.RescheduleAppointment)
			appointmentRoutes.PATCH("/:id/attendance", middleware.RoleAuthMiddleware(models.RoleDoctor, models.RoleAdmin), appointmentHandler.SetAttendance)

			// Patients may cancel their own appointments; staff any of theirs
			appointmentRoutes.PATCH("/:id/cancel", appointmentHandler.CancelAppointment)

			// Hard delete is an admin correction, not a clinical event
			appointmentRoutes.DELETE("/:id", middleware.RoleAuthMiddleware(models.RoleAdmin), appointmentHandler.DeleteAppointment)
		}

		// Re-access (appeal) routes
		reaccessRoutes := private.Group("/reaccess-requests")
		{
			reaccessRoutes.POST("", middleware.RoleAuthMiddleware(models.RolePatient), reaccessHandler.Submit)
			reaccessRoutes.GET("/pending", middleware.RoleAuthMiddleware(models.RolePatient), reaccessHandler.CheckPending)

			adminReaccess := reaccessRoutes.Group("")
			adminReaccess.Use(middleware.RoleAuthMiddleware(models.RoleAdmin))
			{
				adminReaccess.GET("", reaccessHandler.ListRequests)
				adminReaccess.PATCH("/:id/approve", reaccessHandler.Approve)
				adminReaccess.PATCH("/:id/reject", reaccessHandler.Reject)
			}
		}

		// Consultation record routes
		consultationRoutes := private.Group("/consultation-records")
		{
			consultationRoutes.POST("", middleware.RoleAuthMiddleware(models.RoleDoctor, models.RoleAdmin), consultationHandler.CreateConsultation)
			consultationRoutes.GET("/patient/:patientId", consultationHandler.GetConsultationsForPatient)
			consultationRoutes.GET("/:id", consultationHandler.GetConsultationByID)
			consultationRoutes.PUT("/:id", middleware.RoleAuthMiddleware(models.RoleDoctor, models.RoleAdmin), consultationHandler.UpdateConsultation)
			consultationRoutes.DELETE("/:id", middleware.RoleAuthMiddleware(models.RoleDoctor, models.RoleAdmin), consultationHandler.DeleteConsultation)
		}

		// Audit trail (admin only)
		auditRoutes := private.Group("/audit-events")
		auditRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin))
		{
			auditRoutes.GET("", auditHandler.ListEvents)
		}
	}

	// Simple health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "UP"})
	})
}
