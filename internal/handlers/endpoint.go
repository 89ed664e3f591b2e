package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openpinpoint/analytics-service/internal/middleware"
	"github.com/openpinpoint/analytics-service/internal/models"
	"github.com/openpinpoint/analytics-service/internal/store"
)

// RegisterEndpointRoutes registers the endpoint update route.
//
// PUT /v1/apps/:app/endpoints/:endpoint
// - Missing Attributes → 500, no store write
// - Otherwise → 202 even when persistence failed; the store logs the failure
func RegisterEndpointRoutes(r gin.IRoutes, st store.EndpointStore) {
	route := "/v1/apps/:app/endpoints/:endpoint"

	r.OPTIONS(route, func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	r.PUT(route, func(c *gin.Context) {
		var ep models.Endpoint
		if err := c.ShouldBindJSON(&ep); err != nil {
			c.Status(http.StatusInternalServerError)
			return
		}
		if ep.Attributes == nil {
			c.Status(http.StatusInternalServerError)
			return
		}

		ep.ApplicationId = c.Param("app")
		st.Upsert(c.Request.Context(), c.Param("endpoint"), ep)

		c.JSON(http.StatusAccepted, models.EndpointResponse{
			Message:   "Accepted",
			RequestID: middleware.RequestID(c),
		})
	})
}
