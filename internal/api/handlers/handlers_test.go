package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/chemtalent/jobchain/internal/ingest"
	"github.com/chemtalent/jobchain/internal/models"
	"github.com/chemtalent/jobchain/internal/services"
	"github.com/chemtalent/jobchain/internal/taxonomy"
	"github.com/chemtalent/jobchain/internal/utils"
	"github.com/gin-gonic/gin"
)

func init() { gin.SetMode(gin.TestMode) }

type stubIngest struct {
	got  services.IngestRequest
	rep  *services.IngestReport
	err  error
	hits int
}

func (s *stubIngest) Ingest(ctx context.Context, req services.IngestRequest) (*services.IngestReport, error) {
	s.hits++
	s.got = req
	return s.rep, s.err
}

type stubJobs struct {
	q    services.JobQuery
	rows []models.JobPosition
	at   *time.Time
	err  error
}

func (s *stubJobs) List(ctx context.Context, q services.JobQuery) ([]models.JobPosition, error) {
	s.q = q
	return s.rows, s.err
}

func (s *stubJobs) Stats(ctx context.Context, industry string) (*services.JobStats, error) {
	return &services.JobStats{Industry: industry, TotalJobs: len(s.rows)}, s.err
}

func (s *stubJobs) LastUpdate(ctx context.Context) (*time.Time, error) { return s.at, s.err }

func (s *stubJobs) Invalidate(ctx context.Context) error { return nil }

func multipartBody(t *testing.T, field, name string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if field != "" {
		fw, err := w.CreateFormFile(field, name)
		if err != nil {
			t.Fatal(err)
		}
		fw.Write(data)
	}
	w.Close()
	return &buf, w.FormDataContentType()
}

func serveUpload(t *testing.T, h *UploadHandler, field, name string, data []byte) (*httptest.ResponseRecorder, uploadResponse) {
	t.Helper()
	r := gin.New()
	r.POST("/upload", func(c *gin.Context) { c.Set("user_id", "admin") }, h.Upload)

	body, ct := multipartBody(t, field, name, data)
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", ct)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp uploadResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return w, resp
}

func TestUploadSuccess(t *testing.T) {
	svc := &stubIngest{rep: &services.IngestReport{
		UploadID:    "u1",
		Success:     true,
		Message:     "imported 3 job positions, 1 rows rejected",
		TotalRows:   4,
		Inserted:    3,
		PerIndustry: map[taxonomy.Industry]int{taxonomy.Pharma: 2, taxonomy.Battery: 1},
		RowErrors:   []ingest.RowError{{Line: 5, Reason: ingest.ErrMissingIdentity}},
	}}
	w, resp := serveUpload(t, NewUploadHandler(svc, 0), "file", "jobs.xlsx", []byte("xlsx-bytes"))

	if w.Code != http.StatusOK || !resp.Success {
		t.Fatalf("status = %d body = %s", w.Code, w.Body.String())
	}
	if svc.got.FileName != "jobs.xlsx" || svc.got.Uploader != "admin" || string(svc.got.Data) != "xlsx-bytes" {
		t.Errorf("request = %+v", svc.got)
	}
	d := resp.Data
	if d == nil || d.TotalJobs != 3 || d.PharmaJobs != 2 || d.BatteryJobs != 1 || d.CosmeticsJobs != 0 || d.TotalRows != 4 {
		t.Errorf("data = %+v", d)
	}
	if len(resp.Errors) != 1 || !strings.HasPrefix(resp.Errors[0], "row 5: ") {
		t.Errorf("errors = %v", resp.Errors)
	}
}

func TestUploadMissingFile(t *testing.T) {
	svc := &stubIngest{}
	w, resp := serveUpload(t, NewUploadHandler(svc, 0), "", "", nil)

	if w.Code != http.StatusBadRequest || resp.Success || resp.Message != "no file uploaded" {
		t.Errorf("status = %d resp = %+v", w.Code, resp)
	}
	if svc.hits != 0 {
		t.Error("service called without a file")
	}
}

func TestUploadTooLarge(t *testing.T) {
	svc := &stubIngest{}
	w, resp := serveUpload(t, NewUploadHandler(svc, 1<<20), "file", "big.xlsx", make([]byte, 1<<20+10))

	if w.Code != http.StatusBadRequest || resp.Message != "file too large (max 1MB)" {
		t.Errorf("status = %d resp = %+v", w.Code, resp)
	}
	if svc.hits != 0 {
		t.Error("service called for oversize upload")
	}
}

func TestUploadServiceRejection(t *testing.T) {
	svc := &stubIngest{
		rep: &services.IngestReport{Stage: services.StageAborted, Message: "no valid data to import",
			RowErrors: []ingest.RowError{{Line: 2, Reason: ingest.ErrMissingIdentity}}},
		err: utils.E(utils.CodeInvalidArgument, "IngestService.Ingest", "no valid data to import", nil),
	}
	w, resp := serveUpload(t, NewUploadHandler(svc, 0), "file", "jobs.xlsx", []byte("x"))

	if w.Code != http.StatusBadRequest || resp.Success || resp.Error != string(utils.CodeInvalidArgument) {
		t.Errorf("status = %d resp = %+v", w.Code, resp)
	}
	if resp.Message != "no valid data to import" || len(resp.Errors) != 1 {
		t.Errorf("resp = %+v", resp)
	}
}

func TestUploadStorageFailure(t *testing.T) {
	svc := &stubIngest{
		rep: &services.IngestReport{Stage: services.StageAborted, Message: "failed to persist job positions"},
		err: utils.E(utils.CodeInternal, "MergeGateway.Persist", "failed to persist job positions", nil),
	}
	w, resp := serveUpload(t, NewUploadHandler(svc, 0), "file", "jobs.xlsx", []byte("x"))
	if w.Code != http.StatusInternalServerError || resp.Success {
		t.Errorf("status = %d resp = %+v", w.Code, resp)
	}
}

func TestTemplateDownload(t *testing.T) {
	r := gin.New()
	r.GET("/tpl", NewUploadHandler(&stubIngest{}, 0).Template)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/tpl", nil))

	if w.Code != http.StatusOK || w.Header().Get("Content-Type") != xlsxMIME {
		t.Fatalf("status = %d ct = %q", w.Code, w.Header().Get("Content-Type"))
	}
	if !strings.Contains(w.Header().Get("Content-Disposition"), ingest.TemplateFileName) {
		t.Errorf("disposition = %q", w.Header().Get("Content-Disposition"))
	}
	if !bytes.HasPrefix(w.Body.Bytes(), []byte("PK")) {
		t.Error("body is not a zip container")
	}
}

func TestJobListPassesQuery(t *testing.T) {
	svc := &stubJobs{rows: []models.JobPosition{{ID: "pharma-1-0"}}}
	r := gin.New()
	r.GET("/jobs", NewJobHandler(svc).List)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/jobs?industry=pharma&layer=discovery&node=molecular-design&q=CADD&limit=5", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	want := services.JobQuery{Industry: "pharma", Layer: "discovery", NodeID: "molecular-design", Keyword: "CADD", Limit: 5}
	if svc.q != want {
		t.Errorf("query = %+v", svc.q)
	}
	if !strings.Contains(w.Body.String(), `"count":1`) {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestJobListInvalidIndustry(t *testing.T) {
	svc := &stubJobs{err: utils.E(utils.CodeInvalidArgument, "JobService.List", "unknown industry", nil)}
	r := gin.New()
	r.GET("/jobs", NewJobHandler(svc).List)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/jobs?industry=textiles", nil))
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d", w.Code)
	}
}

func TestLastUpdate(t *testing.T) {
	svc := &stubJobs{}
	r := gin.New()
	r.GET("/last", NewJobHandler(svc).LastUpdate)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/last", nil))
	if w.Body.String() != `{"last_update":null}` {
		t.Errorf("empty body = %s", w.Body.String())
	}

	at := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	svc.at = &at
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/last", nil))
	if !strings.Contains(w.Body.String(), "2026-03-01T08:00:00Z") {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestReportsDisabled(t *testing.T) {
	r := gin.New()
	r.GET("/reports", NewReportHandler(nil).List)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/reports", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d", w.Code)
	}
}

func TestLogin(t *testing.T) {
	hash, err := utils.HashPassword("pa55")
	if err != nil {
		t.Fatal(err)
	}
	h := NewAuthHandler(services.NewAuthService(services.AuthConfig{Username: "admin", PasswordHash: hash, Secret: "k"}))
	r := gin.New()
	r.POST("/login", h.Login)

	post := func(body string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)
		return w
	}

	w := post(`{"username":"admin","password":"pa55"}`)
	var resp LoginResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil || w.Code != http.StatusOK || resp.Token == "" {
		t.Fatalf("status = %d body = %s", w.Code, w.Body.String())
	}

	if w := post(`{"username":"admin","password":"bad"}`); w.Code != http.StatusUnauthorized {
		t.Errorf("bad password status = %d", w.Code)
	}
	if w := post(`{"username":"admin"}`); w.Code != http.StatusBadRequest {
		t.Errorf("missing password status = %d", w.Code)
	}
}
