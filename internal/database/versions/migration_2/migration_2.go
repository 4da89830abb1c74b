package migration_2

import (
	"database/sql"
	"fmt"
	"time"

	"gorm.io/gorm"
)

type DatasetMigrationResult struct {
	Id               uint   `gorm:"primaryKey"`
	WorkspaceId      uint   `gorm:"not null;index"`
	Status           string `gorm:"size:20;not null"`
	DatasetsMigrated int
	DatasetsSkipped  int
	RowsMigrated     int
	RowsTruncated    int
	Error            sql.NullString
	StartTime        time.Time
	CompletionTime   time.Time
}

func Migration(db *gorm.DB) error {
	if err := db.AutoMigrate(&DatasetMigrationResult{}); err != nil {
		return fmt.Errorf("error creating dataset_migration_results table: %w", err)
	}
	return nil
}

func Rollback(db *gorm.DB) error {
	if err := db.Migrator().DropTable(&DatasetMigrationResult{}); err != nil {
		return fmt.Errorf("error dropping dataset_migration_results table: %w", err)
	}
	return nil
}
