package postgres

import (
	"github.com/chemtalent/jobchain/internal/models"
	"gorm.io/gorm"
)

// AutoMigrate creates or extends the tables this service writes. It is only
// run when POSTGRES_AUTO_MIGRATE is set.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&models.JobPosition{}, &models.UpdateHistory{}, &models.UploadFile{})
}
