package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"carexpert-server/internal/config"
	"carexpert-server/internal/handlers"
	"carexpert-server/internal/middleware"
	"carexpert-server/internal/models"
	"carexpert-server/internal/notify"
	"carexpert-server/internal/scheduling"
	"carexpert-server/internal/storage"
)

// SetupRoutes configures the application routes.
func SetupRoutes(router *gin.Engine, db *gorm.DB, cfg *config.Config) {
	// Wire stores and services
	appointmentStore := storage.NewAppointmentStore(db)
	notificationStore := storage.NewNotificationStore(db)
	prescriptionStore := storage.NewPrescriptionStore(db)

	engine := scheduling.NewEngine(appointmentStore)
	query := scheduling.NewQuery(appointmentStore)
	dispatcher := notify.NewDispatcher(notificationStore)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(db, cfg)
	patientHandler := handlers.NewPatientHandler(db, engine, query, prescriptionStore)
	doctorHandler := handlers.NewDoctorHandler(db, engine, query)
	notificationHandler := handlers.NewNotificationHandler(dispatcher)
	adminHandler := handlers.NewAdminHandler(db)

	// Public routes (no authentication required)
	userRoutes := router.Group("/api/user")
	{
		userRoutes.POST("/signup", authHandler.Signup)
		userRoutes.POST("/login", authHandler.Login)
		userRoutes.POST("/refresh-token", authHandler.RefreshToken)
		userRoutes.POST("/logout", authHandler.Logout)
	}

	// Patient routes
	patientRoutes := router.Group("/api/patient")
	patientRoutes.Use(middleware.AuthMiddleware(cfg), middleware.RoleAuthMiddleware(models.RolePatient))
	{
		patientRoutes.GET("/fetchAllDoctors", patientHandler.FetchAllDoctors)
		patientRoutes.POST("/book-direct-appointment", patientHandler.BookDirectAppointment)
		patientRoutes.GET("/all-appointments", patientHandler.AllAppointments)
		patientRoutes.PATCH("/appointments/:id/cancel", patientHandler.CancelAppointment)
		patientRoutes.GET("/view-prescriptions", patientHandler.ViewPrescriptions)
		patientRoutes.GET("/prescription-pdf/:id", patientHandler.PrescriptionPDF)
		patientRoutes.GET("/notifications", notificationHandler.List)
		patientRoutes.PATCH("/notifications/mark-all-read", notificationHandler.MarkAllRead)
		patientRoutes.PATCH("/notifications/:id/read", notificationHandler.MarkRead)
		patientRoutes.GET("/profile", patientHandler.GetProfile)
		patientRoutes.PUT("/profile", patientHandler.UpdateProfile)
	}

	// Doctor routes
	doctorRoutes := router.Group("/api/doctor")
	doctorRoutes.Use(middleware.AuthMiddleware(cfg), middleware.RoleAuthMiddleware(models.RoleDoctor))
	{
		doctorRoutes.GET("/pending-requests", doctorHandler.PendingRequests)
		doctorRoutes.GET("/all-appointments", doctorHandler.AllAppointments)
		doctorRoutes.PATCH("/appointment-requests/:id/respond", doctorHandler.RespondToRequest)
		doctorRoutes.PATCH("/appointments/:id/complete", doctorHandler.CompleteAppointment)
		doctorRoutes.PATCH("/appointments/:id/cancel", doctorHandler.CancelAppointment)
		doctorRoutes.GET("/notifications", notificationHandler.List)
		doctorRoutes.PATCH("/notifications/mark-all-read", notificationHandler.MarkAllRead)
		doctorRoutes.PATCH("/notifications/:id/read", notificationHandler.MarkRead)
		doctorRoutes.GET("/profile", doctorHandler.GetProfile)
		doctorRoutes.PUT("/profile", doctorHandler.UpdateProfile)
	}

	// Admin routes
	adminRoutes := router.Group("/api/admin")
	adminRoutes.Use(middleware.AuthMiddleware(cfg), middleware.RoleAuthMiddleware(models.RoleAdmin))
	{
		adminRoutes.GET("/users", adminHandler.GetUsers)
		adminRoutes.GET("/users/:id", adminHandler.GetUserByID)
		adminRoutes.DELETE("/users/:id", adminHandler.DeleteUser)
		adminRoutes.GET("/appointments", adminHandler.AllAppointments)
	}

	// Simple health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "UP"})
	})
}
