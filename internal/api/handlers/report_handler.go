package handlers

import (
	"net/http"

	"github.com/chemtalent/jobchain/internal/services"
	"github.com/chemtalent/jobchain/internal/utils"
	"github.com/gin-gonic/gin"
)

type ReportHandler struct {
	svc services.ReportService // nil when Mongo is not configured
}

func NewReportHandler(svc services.ReportService) *ReportHandler {
	return &ReportHandler{svc: svc}
}

func (h *ReportHandler) available(c *gin.Context, op string) bool {
	if h.svc == nil {
		writeError(c, utils.E(utils.CodeUnavailable, op, "ingest reports are not enabled", nil))
		return false
	}
	return true
}

func (h *ReportHandler) List(c *gin.Context) {
	if !h.available(c, "ReportHandler.List") {
		return
	}

	rows, err := h.svc.Latest(c.Request.Context(), queryInt(c.Query("limit"), 20))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": rows})
}

func (h *ReportHandler) Get(c *gin.Context) {
	if !h.available(c, "ReportHandler.Get") {
		return
	}

	rep, err := h.svc.Get(c.Request.Context(), c.Param("upload_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rep)
}

type UploadsHandler struct {
	svc services.ArchiveService
}

func NewUploadsHandler(svc services.ArchiveService) *UploadsHandler {
	return &UploadsHandler{svc: svc}
}

// List serves the archive index of received spreadsheets.
func (h *UploadsHandler) List(c *gin.Context) {
	rows, err := h.svc.Recent(c.Request.Context(), queryInt(c.Query("limit"), 20))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": rows})
}
