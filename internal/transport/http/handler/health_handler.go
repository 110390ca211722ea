package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthResponse reports liveness
type HealthResponse struct {
	Status      string    `json:"status"`
	Timestamp   time.Time `json:"timestamp"`
	Uptime      float64   `json:"uptime" description:"seconds since the process started"`
	Environment string    `json:"environment"`
}

// HealthHandler reports process uptime and the configured environment
func HealthHandler(startedAt time.Time, environment string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, HealthResponse{
			Status:      "OK",
			Timestamp:   time.Now().UTC(),
			Uptime:      time.Since(startedAt).Seconds(),
			Environment: environment,
		})
	}
}
