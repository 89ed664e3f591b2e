package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/openpinpoint/analytics-service/internal/handlers"
	"github.com/openpinpoint/analytics-service/internal/middleware"
	"github.com/openpinpoint/analytics-service/internal/pipeline"
	"github.com/openpinpoint/analytics-service/internal/store"
)

// NewRouter wires the emulated API surface: batch ingestion, endpoint
// updates, readiness, and the catch-all liveness reply every other GET
// receives.
func NewRouter(st store.EndpointStore, p *pipeline.Pipeline) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Headers())

	// Readiness: confirms the endpoint store is reachable.
	r.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), time.Second)
		defer cancel()

		if err := st.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	handlers.RegisterBatchRoutes(r, p)
	handlers.RegisterEndpointRoutes(r, st)

	// Liveness: any GET outside the API surface answers 200.
	r.NoRoute(func(c *gin.Context) {
		if c.Request.Method == http.MethodGet {
			c.JSON(http.StatusOK, gin.H{"message": "Service is running"})
			return
		}
		c.Status(http.StatusNotFound)
	})

	return r
}
