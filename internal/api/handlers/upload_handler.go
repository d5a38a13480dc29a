package handlers

import (
	"io"
	"net/http"
	"net/url"

	"github.com/chemtalent/jobchain/internal/ingest"
	"github.com/chemtalent/jobchain/internal/services"
	"github.com/chemtalent/jobchain/internal/taxonomy"
	"github.com/chemtalent/jobchain/internal/utils"
	"github.com/gin-gonic/gin"
)

const xlsxMIME = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type UploadHandler struct {
	svc      services.IngestService
	maxBytes int64
}

func NewUploadHandler(svc services.IngestService, maxBytes int64) *UploadHandler {
	if maxBytes <= 0 {
		maxBytes = 10 << 20
	}
	return &UploadHandler{svc: svc, maxBytes: maxBytes}
}

type uploadData struct {
	UploadID       string `json:"uploadId"`
	TotalJobs      int    `json:"totalJobs"`
	PharmaJobs     int    `json:"pharmaJobs"`
	BatteryJobs    int    `json:"batteryJobs"`
	CosmeticsJobs  int    `json:"cosmeticsJobs"`
	PesticidesJobs int    `json:"pesticidesJobs"`
	TotalRows      int    `json:"totalRows"`
	Duplicates     int    `json:"duplicates"`
	BackupLocation string `json:"backupLocation,omitempty"`
}

type uploadResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    *uploadData `json:"data,omitempty"`
	Errors  []string    `json:"errors,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func (h *UploadHandler) Upload(c *gin.Context) {
	const op = "UploadHandler.Upload"

	fh, err := c.FormFile("file")
	if err != nil {
		h.reject(c, utils.E(utils.CodeInvalidArgument, op, "no file uploaded", err))
		return
	}
	// reject oversize uploads before reading them
	if fh.Size > h.maxBytes {
		h.reject(c, utils.E(utils.CodeInvalidArgument, op, "file too large (max "+itoa(h.maxBytes>>20)+"MB)", nil))
		return
	}

	file, err := fh.Open()
	if err != nil {
		h.reject(c, utils.E(utils.CodeInternal, op, "failed to open upload", err))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.maxBytes+1))
	if err != nil {
		h.reject(c, utils.E(utils.CodeInternal, op, "failed to read upload", err))
		return
	}

	rep, err := h.svc.Ingest(c.Request.Context(), services.IngestRequest{
		FileName: fh.Filename,
		Uploader: currentUser(c),
		Data:     data,
	})

	resp := uploadResponse{}
	if rep != nil {
		resp.Message = rep.Message
		for _, e := range rep.RowErrors {
			resp.Errors = append(resp.Errors, e.String())
		}
	}
	if err != nil {
		resp.Success = false
		if resp.Message == "" {
			resp.Message = utils.MessageOf(err, "import failed")
		}
		resp.Error = errorCode(err)
		c.JSON(utils.HTTPStatus(err), resp)
		return
	}

	resp.Success = true
	resp.Data = &uploadData{
		UploadID:       rep.UploadID,
		TotalJobs:      rep.Inserted,
		PharmaJobs:     rep.PerIndustry[taxonomy.Pharma],
		BatteryJobs:    rep.PerIndustry[taxonomy.Battery],
		CosmeticsJobs:  rep.PerIndustry[taxonomy.Cosmetics],
		PesticidesJobs: rep.PerIndustry[taxonomy.Pesticides],
		TotalRows:      rep.TotalRows,
		Duplicates:     rep.Duplicates,
		BackupLocation: rep.BackupLocation,
	}
	c.JSON(http.StatusOK, resp)
}

func (h *UploadHandler) reject(c *gin.Context, err error) {
	c.JSON(utils.HTTPStatus(err), uploadResponse{
		Success: false,
		Message: utils.MessageOf(err, "import failed"),
		Error:   errorCode(err),
	})
}

func (h *UploadHandler) Template(c *gin.Context) {
	b, err := ingest.Template()
	if err != nil {
		writeError(c, utils.E(utils.CodeInternal, "UploadHandler.Template", "failed to build template", err))
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+ingest.TemplateFileName+`"; filename*=UTF-8''`+url.PathEscape("岗位导入模板.xlsx"))
	c.Data(http.StatusOK, xlsxMIME, b)
}
