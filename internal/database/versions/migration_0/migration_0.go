package migration_0

import (
	"database/sql"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Workspace struct {
	Id        uint `gorm:"primaryKey"`
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Project struct {
	Id          uint       `gorm:"primaryKey"`
	WorkspaceId uint       `gorm:"not null;index"`
	Workspace   *Workspace `gorm:"foreignKey:WorkspaceId;constraint:OnDelete:CASCADE"`
	Name        string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Commit struct {
	Id        uint     `gorm:"primaryKey"`
	Uuid      string   `gorm:"size:36;uniqueIndex;not null"`
	ProjectId uint     `gorm:"not null;index"`
	Project   *Project `gorm:"foreignKey:ProjectId;constraint:OnDelete:CASCADE"`
	Title     string
	MergedAt  sql.NullTime
	CreatedAt time.Time
	UpdatedAt time.Time
}

type DocumentVersion struct {
	Id           uint    `gorm:"primaryKey"`
	DocumentUuid string  `gorm:"size:36;not null;index"`
	CommitId     uint    `gorm:"not null;index"`
	Commit       *Commit `gorm:"foreignKey:CommitId;constraint:OnDelete:CASCADE"`
	Path         string
	Content      string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    gorm.DeletedAt `gorm:"index"`
}

type EvaluationVersion struct {
	Id             uint   `gorm:"primaryKey"`
	WorkspaceId    uint   `gorm:"not null;index"`
	CommitId       uint   `gorm:"not null;index"`
	EvaluationUuid string `gorm:"size:36;not null;index"`
	DocumentUuid   string `gorm:"size:36;not null;index"`
	Name           string
	Type           string `gorm:"size:32"`
	Metric         string `gorm:"size:64"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
	DeletedAt      gorm.DeletedAt `gorm:"index"`
}

type ProviderLog struct {
	Id              uint   `gorm:"primaryKey"`
	Uuid            string `gorm:"size:36;uniqueIndex;not null"`
	WorkspaceId     uint   `gorm:"not null;index"`
	DocumentLogUuid string `gorm:"size:36;index"`
	Provider        string
	Model           string
	CreatedAt       time.Time
}

type EvaluationResult struct {
	Id              uint   `gorm:"primaryKey"`
	Uuid            string `gorm:"size:36;uniqueIndex;not null"`
	WorkspaceId     uint   `gorm:"not null;index:evaluation_results_v2_workspace_created_at_idx,priority:1;index:evaluation_results_v2_workspace_evaluation_idx,priority:1"`
	CommitId        uint   `gorm:"not null"`
	EvaluationUuid  string `gorm:"size:36;not null;index:evaluation_results_v2_workspace_evaluation_idx,priority:2"`
	EvaluatedLogId  uint   `gorm:"not null;index"`
	Score           sql.NullInt64
	NormalizedScore sql.NullInt64
	Metadata        datatypes.JSON `gorm:"type:jsonb"`
	HasPassed       sql.NullBool
	Error           sql.NullString
	CreatedAt       time.Time `gorm:"index:evaluation_results_v2_workspace_created_at_idx,priority:2"`
	UpdatedAt       time.Time
}

func (EvaluationResult) TableName() string {
	return "evaluation_results_v2"
}

type Dataset struct {
	Id           uint `gorm:"primaryKey"`
	WorkspaceId  uint `gorm:"not null;index"`
	AuthorId     sql.NullString
	Name         string         `gorm:"not null"`
	CsvDelimiter string         `gorm:"size:4;not null;default:','"`
	FileKey      string         `gorm:"not null"`
	FileMetadata datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func Migration(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&Workspace{}, &Project{}, &Commit{}, &DocumentVersion{}, &EvaluationVersion{},
		&ProviderLog{}, &EvaluationResult{}, &Dataset{},
	); err != nil {
		return fmt.Errorf("initial migration failed: %w", err)
	}
	return nil
}
