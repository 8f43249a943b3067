package database

import (
	"fmt"

	"github.com/onaries/account-book/internal/models"

	"gorm.io/gorm"
)

// AutoMigrate runs database schema migrations for all models.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.MainCategory{},
		&models.Category{},
		&models.Asset{},
		&models.AssetHistory{},
		&models.Loan{},
		&models.AccountCard{},
		&models.Statement{},
		&models.Memo{},
		&models.AuditLog{},
		&models.Backup{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
