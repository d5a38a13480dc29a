package routes

import (
	"net/http"

	"github.com/chemtalent/jobchain/internal/api/handlers"
	"github.com/chemtalent/jobchain/internal/api/middleware"
	"github.com/gin-gonic/gin"
)

type Deps struct {
	Auth    *handlers.AuthHandler
	Upload  *handlers.UploadHandler
	Jobs    *handlers.JobHandler
	Reports *handlers.ReportHandler
	Uploads *handlers.UploadsHandler
	WS      *handlers.WSHandler

	JWTSecret string
	JWTIssuer string
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	// public read side
	api := r.Group("/api")
	api.GET("/jobs", d.Jobs.List)
	api.GET("/jobs/stats", d.Jobs.Stats)
	api.GET("/jobs/last-update", d.Jobs.LastUpdate)

	api.POST("/admin/login", d.Auth.Login)

	admin := api.Group("/admin")
	admin.Use(middleware.JWTAuth(d.JWTSecret, d.JWTIssuer), middleware.RequireAdmin())
	admin.POST("/upload-jobs", d.Upload.Upload)
	admin.GET("/download-template", d.Upload.Template)
	admin.GET("/reports", d.Reports.List)
	admin.GET("/reports/:upload_id", d.Reports.Get)
	admin.GET("/uploads", d.Uploads.List)

	r.GET("/ws/updates", d.WS.Updates)
}
