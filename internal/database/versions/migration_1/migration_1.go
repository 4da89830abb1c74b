package migration_1

import (
	"database/sql"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type DatasetV2 struct {
	Id              uint `gorm:"primaryKey"`
	WorkspaceId     uint `gorm:"not null;index"`
	AuthorId        sql.NullString
	Name            string         `gorm:"not null"`
	Columns         datatypes.JSON `gorm:"type:jsonb;not null"`
	LegacyDatasetId sql.NullInt64  `gorm:"uniqueIndex"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
	DeletedAt       gorm.DeletedAt `gorm:"index"`

	Rows []DatasetRow `gorm:"foreignKey:DatasetId;constraint:OnDelete:CASCADE"`
}

func (DatasetV2) TableName() string {
	return "datasets_v2"
}

type DatasetRow struct {
	Id          uint           `gorm:"primaryKey"`
	WorkspaceId uint           `gorm:"not null;index"`
	DatasetId   uint           `gorm:"not null;index"`
	RowData     datatypes.JSON `gorm:"type:jsonb;not null"`
	CreatedAt   time.Time
}

func Migration(db *gorm.DB) error {
	if err := db.AutoMigrate(&DatasetV2{}, &DatasetRow{}); err != nil {
		return fmt.Errorf("error creating dataset v2 tables: %w", err)
	}
	return nil
}

func Rollback(db *gorm.DB) error {
	if err := db.Migrator().DropTable(&DatasetRow{}, &DatasetV2{}); err != nil {
		return fmt.Errorf("error dropping dataset v2 tables: %w", err)
	}
	return nil
}
