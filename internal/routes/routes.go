package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"mediremind-server/internal/config"
	"mediremind-server/internal/handlers"
	"mediremind-server/internal/middleware"
	"mediremind-server/internal/models"
	"mediremind-server/internal/workflow"
)

// SetupRoutes configures the application routes.
func SetupRoutes(router *gin.Engine, db *gorm.DB, cfg *config.Config, engine *workflow.Service) {
	// Initialize handlers
	authHandler := handlers.NewAuthHandler(db, cfg)
	patientHandler := handlers.NewPatientHandler(db)
	staffHandler := handlers.NewStaffHandler(db)
	appointmentHandler := handlers.NewAppointmentHandler(engine)

	// Public routes (no authentication required)
	public := router.Group("/api/v1")
	{
		authRoutes := public.Group("/auth")
		{
			authRoutes.POST("/register", authHandler.Register)
			authRoutes.POST("/login", authHandler.Login)
			authRoutes.POST("/refresh-token", authHandler.RefreshToken)
			authRoutes.POST("/forgot-password", authHandler.ForgotPassword)
		}
	}

	// Authenticated routes
	private := router.Group("/api/v1")
	private.Use(middleware.AuthMiddleware(cfg)) // Apply JWT authentication middleware
	{
		authRoutesPrivate := private.Group("/auth")
		{
			authRoutesPrivate.POST("/logout", authHandler.Logout)
			authRoutesPrivate.GET("/whoami", authHandler.WhoAmI)
		}

		// Patient dashboard and profile
		patientRoutes := private.Group("/patients")
		patientRoutes.Use(middleware.RoleAuthMiddleware(models.RolePatient))
		{
			patientRoutes.GET("/dashboard", patientHandler.Dashboard)
			patientRoutes.GET("/profile", patientHandler.GetProfile)
			patientRoutes.PUT("/profile", patientHandler.UpdateProfile)
		}

		// Staff dashboard and profile
		staffRoutes := private.Group("/staff")
		staffRoutes.Use(middleware.RoleAuthMiddleware(models.RoleDoctor, models.RoleAdmin))
		{
			staffRoutes.GET("/dashboard", staffHandler.Dashboard)
			staffRoutes.GET("/profile", staffHandler.GetProfile)
			staffRoutes.PUT("/profile", staffHandler.UpdateProfile)
		}

		// Appointment workflow
		appointmentRoutes := private.Group("/appointments")
		{
			appointmentRoutes.POST("/request",
				middleware.RoleAuthMiddleware(models.RolePatient),
				appointmentHandler.RequestAppointment)

			appointmentRoutes.POST("/schedule",
				middleware.RoleAuthMiddleware(models.RoleDoctor, models.RoleAdmin),
				appointmentHandler.ScheduleAppointment)

			// All roles; scoping happens in the engine
			appointmentRoutes.GET("", appointmentHandler.ListAppointments)

			// Dispatches to the patient or doctor response path by role
			appointmentRoutes.PUT("/:id/respond", appointmentHandler.RespondToAppointment)
		}
	}

	// Simple health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "UP"})
	})
}
