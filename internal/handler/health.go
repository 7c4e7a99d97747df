package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Health handles health check requests. It reports the database connectivity
// and the process uptime.
func (s *Server) Health(c *gin.Context) {
	status := "healthy"
	dbStatus := "ok"
	httpStatus := http.StatusOK

	if s.DB != nil {
		sqlDB, err := s.DB.DB()
		if err != nil {
			status = "unhealthy"
			dbStatus = "unavailable"
			httpStatus = http.StatusServiceUnavailable
		} else {
			pingCtx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := sqlDB.PingContext(pingCtx); err != nil {
				status = "unhealthy"
				dbStatus = "unavailable"
				httpStatus = http.StatusServiceUnavailable
			}
		}
	}

	uptime := "unknown"
	if startTime, exists := c.Get("serverStartTime"); exists {
		if start, ok := startTime.(time.Time); ok {
			uptime = time.Since(start).Round(time.Second).String()
		}
	}

	c.JSON(httpStatus, gin.H{
		"status":    status,
		"database":  dbStatus,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"uptime":    uptime,
	})
}
