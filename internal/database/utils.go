package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func ParseDatasetFileMetadata(dataset Dataset) (DatasetFileMetadata, error) {
	var metadata DatasetFileMetadata
	if len(dataset.FileMetadata) == 0 {
		return metadata, nil
	}
	if err := json.Unmarshal(dataset.FileMetadata, &metadata); err != nil {
		return metadata, fmt.Errorf("invalid file metadata for dataset %d: %w", dataset.Id, err)
	}
	return metadata, nil
}

func ParseDatasetColumns(dataset DatasetV2) ([]DatasetColumn, error) {
	var columns []DatasetColumn
	if err := json.Unmarshal(dataset.Columns, &columns); err != nil {
		return nil, fmt.Errorf("invalid columns for dataset %d: %w", dataset.Id, err)
	}
	return columns, nil
}

func EncodeJSON(value any) (datatypes.JSON, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(data), nil
}

func SaveDatasetMigrationResult(ctx context.Context, db *gorm.DB, result *DatasetMigrationResult) error {
	if err := db.WithContext(ctx).Create(result).Error; err != nil {
		slog.Error("error saving dataset migration result", "workspace_id", result.WorkspaceId, "error", err)
		return fmt.Errorf("error saving dataset migration result: %w", err)
	}
	return nil
}

func NullString(value string) sql.NullString {
	return sql.NullString{String: value, Valid: value != ""}
}
