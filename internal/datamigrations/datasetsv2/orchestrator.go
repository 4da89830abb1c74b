package datasetsv2

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"eval-analytics/internal/database"
	"eval-analytics/internal/metrics"
	"eval-analytics/internal/repositories"
	"eval-analytics/internal/storage"

	"gorm.io/gorm"
)

// Recorder persists migration results as they are produced.
type Recorder interface {
	Record(ctx context.Context, result MigrationResult) error
}

type GormRecorder struct {
	db *gorm.DB
}

func NewGormRecorder(db *gorm.DB) *GormRecorder {
	return &GormRecorder{db: db}
}

func (r *GormRecorder) Record(ctx context.Context, result MigrationResult) error {
	return database.SaveDatasetMigrationResult(ctx, r.db, &database.DatasetMigrationResult{
		WorkspaceId:      result.WorkspaceId,
		Status:           result.Status,
		DatasetsMigrated: result.DatasetsMigrated,
		DatasetsSkipped:  result.DatasetsSkipped,
		RowsMigrated:     result.RowsMigrated,
		RowsTruncated:    result.RowsTruncated,
		Error:            database.NullString(result.Error),
		StartTime:        result.StartedAt,
		CompletionTime:   result.CompletedAt,
	})
}

type MigrateOptions struct {
	TargetWorkspaces Targets

	// Store and Bucket locate legacy dataset files for the default migrator.
	Store  storage.ObjectStore
	Bucket string

	// Migrator replaces the default per workspace migrator.
	Migrator Migrator

	Recorder Recorder

	OnResult func(MigrationResult)
}

// MigrateDatasetsV1ToV2 migrates the selected workspaces one at a time, in
// ascending id order, and returns one result per workspace. A workspace whose
// migrator returns an error is recorded as failed and the run moves on. When
// ctx is cancelled the loop stops at the next workspace boundary and returns
// the results gathered so far together with the context error.
func MigrateDatasetsV1ToV2(ctx context.Context, db *gorm.DB, opts MigrateOptions) ([]MigrationResult, error) {
	migrator := opts.Migrator
	if migrator == nil {
		if opts.Store == nil {
			return nil, errors.New("an object store is required to migrate legacy datasets")
		}
		migrator = NewWorkspaceMigrator(db, opts.Store, opts.Bucket).Migrate
	}

	workspaces, err := FindWorkspacesWithLegacyDatasets(ctx, repositories.NewGormStore(db), opts.TargetWorkspaces)
	if err != nil {
		return nil, err
	}

	slog.Info("migrating legacy datasets", "targets", opts.TargetWorkspaces.String(), "workspaces", len(workspaces))

	results := make([]MigrationResult, 0, len(workspaces))
	for _, workspace := range workspaces {
		if err := ctx.Err(); err != nil {
			slog.Warn("dataset migration interrupted", "completed", len(results), "remaining", len(workspaces)-len(results))
			return results, fmt.Errorf("dataset migration interrupted: %w", err)
		}

		result := runMigrator(ctx, migrator, workspace)
		observe(result)

		if opts.Recorder != nil {
			if err := opts.Recorder.Record(ctx, result); err != nil {
				slog.Error("error recording dataset migration result", "workspace_id", workspace.Id, "error", err)
			}
		}
		if opts.OnResult != nil {
			opts.OnResult(result)
		}

		results = append(results, result)
	}

	return results, nil
}

func runMigrator(ctx context.Context, migrator Migrator, workspace database.Workspace) MigrationResult {
	startedAt := time.Now().UTC()

	result, err := migrator(ctx, workspace)
	if err != nil {
		slog.Error("workspace dataset migration failed", "workspace_id", workspace.Id, "error", err)
		return MigrationResult{
			WorkspaceId: workspace.Id,
			Status:      database.MigrationFailed,
			Error:       err.Error(),
			StartedAt:   startedAt,
			CompletedAt: time.Now().UTC(),
		}
	}

	result.WorkspaceId = workspace.Id
	return result
}

func observe(result MigrationResult) {
	metrics.WorkspaceMigrations.WithLabelValues(result.Status).Inc()
	metrics.MigratedDatasets.Add(float64(result.DatasetsMigrated))
	metrics.MigratedRows.Add(float64(result.RowsMigrated))
}
