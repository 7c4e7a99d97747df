// Package router wires the HTTP routes and the global middleware stack.
package router

import (
	"net/http"
	"time"

	"crewclock/internal/handler"
	"crewclock/internal/middleware"
	"crewclock/internal/types"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
)

// NewRouter builds the gin engine with the full middleware stack and all
// API routes registered.
func NewRouter(serverHandler *handler.Server, configManager types.ConfigManager) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Register global middleware
	router.Use(middleware.Recovery())
	router.Use(middleware.ErrorHandler())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(configManager.GetLogConfig()))
	router.Use(middleware.CORS(configManager.GetCORSConfig()))
	router.Use(middleware.SecurityHeaders())
	router.Use(gzip.Gzip(gzip.DefaultCompression))
	startTime := time.Now()
	router.Use(func(c *gin.Context) {
		c.Set("serverStartTime", startTime)
		c.Next()
	})

	registerSystemRoutes(router, serverHandler)
	registerAPIRoutes(router, serverHandler, configManager)

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not Found"})
	})
	router.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "Method not allowed"})
	})

	return router
}

// registerSystemRoutes registers system-level routes
func registerSystemRoutes(router *gin.Engine, serverHandler *handler.Server) {
	router.GET("/health", serverHandler.Health)
}

// registerAPIRoutes registers the authenticated API routes
func registerAPIRoutes(router *gin.Engine, serverHandler *handler.Server, configManager types.ConfigManager) {
	api := router.Group("/api")
	api.Use(middleware.Auth(configManager.GetAuthConfig()))

	attendance := api.Group("/attendance")
	{
		attendance.POST("/clock-in", serverHandler.ClockIn)
		attendance.POST("/clock-out", serverHandler.ClockOut)
		attendance.POST("/manual", serverHandler.ManualEntry)
		attendance.PUT("/:id", serverHandler.EditEntry)
		attendance.POST("/:id/approve", serverHandler.ApproveEntry)
		attendance.POST("/:id/reject", serverHandler.RejectEntry)
		attendance.GET("", serverHandler.ListEntries)
	}

	timesheets := api.Group("/timesheets")
	{
		timesheets.POST("/generate", serverHandler.GenerateTimesheet)
		timesheets.POST("/:id/submit", serverHandler.SubmitTimesheet)
		timesheets.POST("/:id/approve", serverHandler.ApproveTimesheet)
		timesheets.POST("/:id/reject", serverHandler.RejectTimesheet)
		timesheets.GET("", serverHandler.ListTimesheets)
	}
}
