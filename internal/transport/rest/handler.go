package rest

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"medibook/config"
	"medibook/internal/service"
)

type Handler struct {
	services *service.Services
	logger   *zap.Logger
	config   *config.Config
}

func NewHandler(services *service.Services, logger *zap.Logger, config *config.Config) *Handler {
	return &Handler{
		services: services,
		logger:   logger,
		config:   config,
	}
}

func (h *Handler) InitRoutes(router *gin.Engine) {
	router.Use(h.loggerMiddleware())

	router.Use(h.corsMiddleware())

	api := router.Group("/api/v1")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", h.register)
			auth.POST("/login", h.login)
			auth.POST("/refresh", h.refreshTokens)
			auth.POST("/logout", h.logout)
		}

		users := api.Group("/users")
		users.Use(h.authMiddleware())
		{
			users.GET("/me", h.getCurrentUser)
			users.GET("/:id", h.getUserByID)
			users.PUT("/:id", h.updateUser)
			users.PUT("/:id/password", h.updatePassword)

			admin := users.Group("/")
			admin.Use(h.adminMiddleware())
			{
				admin.GET("/", h.getUsers)
				admin.DELETE("/:id", h.deactivateUser)
			}
		}

		doctors := api.Group("/doctors")
		{
			doctors.GET("/", h.getDoctors)
			doctors.GET("/:id", h.getDoctorByID)
			doctors.GET("/:id/availability", h.getDoctorAvailability)

			auth := doctors.Group("/", h.authMiddleware())
			{
				auth.GET("/me", h.getMyDoctorProfile)
				auth.POST("/", h.adminMiddleware(), h.createDoctor)
				auth.PUT("/:id", h.updateDoctor)
				auth.POST("/:id/photo", h.uploadDoctorPhoto)
				auth.DELETE("/:id/photo", h.deleteDoctorPhoto)
			}
		}

		appointments := api.Group("/appointments")
		appointments.Use(h.authMiddleware())
		{
			appointments.POST("/", h.createAppointment)
			appointments.GET("/", h.getAppointments)
			appointments.GET("/:id", h.getAppointmentByID)
			appointments.PUT("/:id/cancel", h.cancelAppointment)
			appointments.PUT("/:id/status", h.doctorMiddleware(), h.updateAppointmentStatus)
		}

		medicines := api.Group("/medicines")
		{
			medicines.GET("/", h.getMedicines)
			medicines.GET("/:id", h.getMedicineByID)

			admin := medicines.Group("/")
			admin.Use(h.authMiddleware(), h.adminMiddleware())
			{
				admin.POST("/", h.createMedicine)
				admin.PUT("/:id", h.updateMedicine)
				admin.PUT("/:id/stock", h.updateMedicineStock)
				admin.DELETE("/:id", h.deleteMedicine)
			}
		}
	}
}
