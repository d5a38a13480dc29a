package handlers

import (
	"net/http"
	"time"

	"github.com/chemtalent/jobchain/internal/services"
	"github.com/gin-gonic/gin"
)

type JobHandler struct {
	svc services.JobService
}

func NewJobHandler(svc services.JobService) *JobHandler {
	return &JobHandler{svc: svc}
}

// List serves GET /api/jobs?industry=&layer=&node=&q=&limit=
func (h *JobHandler) List(c *gin.Context) {
	q := services.JobQuery{
		Industry: c.Query("industry"),
		Layer:    c.Query("layer"),
		NodeID:   c.Query("node"),
		Keyword:  c.Query("q"),
		Limit:    queryInt(c.Query("limit"), 0),
	}

	rows, err := h.svc.List(c.Request.Context(), q)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items": rows,
		"count": len(rows),
	})
}

func (h *JobHandler) Stats(c *gin.Context) {
	st, err := h.svc.Stats(c.Request.Context(), c.Query("industry"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

func (h *JobHandler) LastUpdate(c *gin.Context) {
	at, err := h.svc.LastUpdate(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	resp := gin.H{"last_update": nil}
	if at != nil {
		resp["last_update"] = at.UTC().Format(time.RFC3339)
	}
	c.JSON(http.StatusOK, resp)
}
