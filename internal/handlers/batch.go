package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openpinpoint/analytics-service/internal/models"
	"github.com/openpinpoint/analytics-service/internal/pipeline"
)

// accepted is the only leaf the batch endpoint ever acknowledges with: the
// contract promises syntactic acceptance, not durability.
var accepted = models.ItemResponse{StatusCode: http.StatusAccepted, Message: "Accepted"}

// RegisterBatchRoutes registers the ingestion endpoints.
//
// POST /v1/apps/:app/events (and the legacy alias)
// - Missing BatchItem → 500, nothing is attempted
// - Otherwise → 202 immediately; per-item processing runs after the response
func RegisterBatchRoutes(r gin.IRoutes, p *pipeline.Pipeline) {
	for _, route := range []string{"/v1/apps/:app/events", "/v1/apps/:app/legacy"} {
		r.OPTIONS(route, func(c *gin.Context) {
			c.Status(http.StatusOK)
		})
		r.POST(route, handleBatch(p))
	}
}

func handleBatch(p *pipeline.Pipeline) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.EventsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.Status(http.StatusInternalServerError)
			return
		}
		if req.BatchItem == nil {
			c.Status(http.StatusInternalServerError)
			return
		}

		// Fire-and-forget: the acknowledgment below does not wait for any of
		// the per-item work the dispatch just scheduled.
		p.Dispatch(c.Param("app"), req.BatchItem)

		results := make(map[string]models.BatchItemResult, len(req.BatchItem))
		for cid, item := range req.BatchItem {
			events := make(map[string]models.ItemResponse, len(item.Events))
			for eid := range item.Events {
				events[eid] = accepted
			}
			results[cid] = models.BatchItemResult{
				EndpointItemResponse: accepted,
				EventsItemResponse:   events,
			}
		}
		c.JSON(http.StatusAccepted, models.EventsResponse{Results: results})
	}
}
