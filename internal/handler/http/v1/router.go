package v1

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/shenikar/geo_attendance/internal/auth"
)

// RegisterRoutes регистрирует все маршруты API v1
func (h *Handler) RegisterRoutes(api *gin.RouterGroup) {
	apiKey := AdminAuthMiddleware(h.cfg.APIKeys, h.logger)
	student := auth.StudentAuth(h.cfg.JWTSigningKey, h.cfg.JWTIssuer)

	// Маршруты студента, аутентификация по bearer-токену
	attendance := api.Group("/attendance")
	{
		attendance.POST("", student, h.submitAttendance)
		attendance.POST("/face/enroll", student, h.enrollFace)
		attendance.POST("/face/verify", student, h.verifyFace)
		attendance.GET("/me", student, h.myAttendance)

		attendance.GET("", apiKey, h.listAttendance)
		attendance.GET("/stats", apiKey, h.getStats)
	}

	// Маршруты для управления геозонами (CRUD)
	geofences := api.Group("/geofences", apiKey)
	{
		geofences.POST("", h.createGeofence)
		geofences.GET("", h.listGeofences)
		geofences.GET("/:id", h.getGeofence)
		geofences.PUT("/:id", h.updateGeofence)
		geofences.DELETE("/:id", h.deleteGeofence)
	}

	users := api.Group("/users", apiKey)
	{
		users.POST("", h.createUser)
		users.GET("/:id", h.getUser)
		users.POST("/:id/token", h.issueToken)
	}

	// Маршрут Health-check
	api.GET("/system/health", h.healthCheck)
}

// CORSMiddleware разрешает браузерному клиенту обращаться к API; пустой список означает любые origin
func CORSMiddleware(allowedOrigins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", "X-API-Key"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(allowedOrigins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = allowedOrigins
		cfg.AllowCredentials = true
	}
	return cors.New(cfg)
}
