package datasetsv2

import (
	"context"
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"
	"unicode/utf8"

	"eval-analytics/internal/database"
	"eval-analytics/internal/repositories"
	"eval-analytics/internal/storage"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	DefaultRowBatchSize = 500

	columnIdentifierLength = 7
)

// MigrationResult describes the outcome of migrating one workspace. Counts
// only reflect committed work, so a failed workspace reports zeros.
type MigrationResult struct {
	WorkspaceId      uint
	Status           string
	DatasetsMigrated int
	DatasetsSkipped  int
	RowsMigrated     int
	RowsTruncated    int
	Error            string
	StartedAt        time.Time
	CompletedAt      time.Time
}

func (r MigrationResult) Succeeded() bool {
	return r.Status == database.MigrationSucceeded
}

// Migrator converts the legacy datasets of a single workspace.
type Migrator func(ctx context.Context, workspace database.Workspace) (MigrationResult, error)

type WorkspaceMigrator struct {
	db          *gorm.DB
	objectStore storage.ObjectStore
	bucket      string
	batchSize   int
}

func NewWorkspaceMigrator(db *gorm.DB, objectStore storage.ObjectStore, bucket string) *WorkspaceMigrator {
	return &WorkspaceMigrator{db: db, objectStore: objectStore, bucket: bucket, batchSize: DefaultRowBatchSize}
}

func (m *WorkspaceMigrator) WithBatchSize(size int) *WorkspaceMigrator {
	if size > 0 {
		m.batchSize = size
	}
	return m
}

type migrationStats struct {
	datasetsMigrated int
	datasetsSkipped  int
	rowsMigrated     int
	rowsTruncated    int
}

// Migrate converts every legacy dataset of the workspace inside one
// transaction. Legacy datasets that already have a v2 counterpart are
// skipped, so a workspace can be migrated again after a partial run. Failures
// are reported in the result rather than returned.
func (m *WorkspaceMigrator) Migrate(ctx context.Context, workspace database.Workspace) (MigrationResult, error) {
	result := MigrationResult{WorkspaceId: workspace.Id, StartedAt: time.Now().UTC()}

	var stats migrationStats
	err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		stats = migrationStats{}
		return m.migrateWorkspace(ctx, tx, workspace, &stats)
	})

	result.CompletedAt = time.Now().UTC()
	if err != nil {
		slog.Error("error migrating workspace datasets", "workspace_id", workspace.Id, "error", err)
		result.Status = database.MigrationFailed
		result.Error = err.Error()
		return result, nil
	}

	result.Status = database.MigrationSucceeded
	result.DatasetsMigrated = stats.datasetsMigrated
	result.DatasetsSkipped = stats.datasetsSkipped
	result.RowsMigrated = stats.rowsMigrated
	result.RowsTruncated = stats.rowsTruncated

	slog.Info("migrated workspace datasets", "workspace_id", workspace.Id, "datasets", stats.datasetsMigrated, "skipped", stats.datasetsSkipped, "rows", stats.rowsMigrated)

	return result, nil
}

func (m *WorkspaceMigrator) migrateWorkspace(ctx context.Context, tx *gorm.DB, workspace database.Workspace, stats *migrationStats) error {
	store := repositories.NewGormStore(tx)
	scoped := repositories.NewScoped(workspace.Id)

	var legacy []database.Dataset
	if err := store.Find(ctx, scoped.Query("datasets").OrderBy(repositories.Asc("datasets.id")).Query(), &legacy); err != nil {
		return fmt.Errorf("error listing legacy datasets: %w", err)
	}

	var migrated []database.DatasetV2
	existing := scoped.Query("datasets_v2").
		Select("datasets_v2.id", "datasets_v2.legacy_dataset_id").
		Where(repositories.IsNotNull("datasets_v2.legacy_dataset_id")).
		IncludeDeleted()
	if err := store.Find(ctx, existing.Query(), &migrated); err != nil {
		return fmt.Errorf("error listing migrated datasets: %w", err)
	}

	alreadyMigrated := make(map[int64]bool, len(migrated))
	for _, dataset := range migrated {
		alreadyMigrated[dataset.LegacyDatasetId.Int64] = true
	}

	for _, dataset := range legacy {
		if alreadyMigrated[int64(dataset.Id)] {
			stats.datasetsSkipped++
			continue
		}
		if err := m.migrateDataset(ctx, tx, dataset, stats); err != nil {
			return fmt.Errorf("error migrating dataset %d: %w", dataset.Id, err)
		}
		stats.datasetsMigrated++
	}

	return nil
}

func (m *WorkspaceMigrator) migrateDataset(ctx context.Context, tx *gorm.DB, legacy database.Dataset, stats *migrationStats) error {
	metadata, err := database.ParseDatasetFileMetadata(legacy)
	if err != nil {
		return err
	}

	file, err := m.objectStore.GetObject(ctx, m.bucket, legacy.FileKey)
	if err != nil {
		return fmt.Errorf("error reading dataset file: %w", err)
	}
	defer file.Close()

	reader, err := newCsvReader(file, legacy.CsvDelimiter)
	if err != nil {
		return err
	}

	headers, err := reader.Read()
	if errors.Is(err, io.EOF) {
		headers = metadata.Headers
	} else if err != nil {
		return fmt.Errorf("error reading dataset headers: %w", err)
	}

	columns := buildColumns(legacy.Id, headers)
	encodedColumns, err := database.EncodeJSON(columns)
	if err != nil {
		return fmt.Errorf("error encoding dataset columns: %w", err)
	}

	dataset := database.DatasetV2{
		WorkspaceId:     legacy.WorkspaceId,
		AuthorId:        legacy.AuthorId,
		Name:            legacy.Name,
		Columns:         encodedColumns,
		LegacyDatasetId: sql.NullInt64{Int64: int64(legacy.Id), Valid: true},
		CreatedAt:       legacy.CreatedAt,
	}
	if err := tx.Create(&dataset).Error; err != nil {
		return fmt.Errorf("error creating dataset: %w", err)
	}

	batch := make([]database.DatasetRow, 0, m.batchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := tx.CreateInBatches(&batch, m.batchSize).Error; err != nil {
			return fmt.Errorf("error inserting dataset rows: %w", err)
		}
		stats.rowsMigrated += len(batch)
		batch = batch[:0]
		return nil
	}

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("error reading dataset file: %w", err)
		}

		if len(record) > len(columns) {
			stats.rowsTruncated++
		}

		data, err := database.EncodeJSON(rowData(columns, record))
		if err != nil {
			return fmt.Errorf("error encoding dataset row: %w", err)
		}
		batch = append(batch, database.DatasetRow{WorkspaceId: legacy.WorkspaceId, DatasetId: dataset.Id, RowData: data})

		if len(batch) >= m.batchSize {
			if err := flush(); err != nil {
				return err
			}
		}
	}

	return flush()
}

func newCsvReader(r io.Reader, delimiter string) (*csv.Reader, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	if delimiter != "" {
		comma, size := utf8.DecodeRuneInString(delimiter)
		if comma == utf8.RuneError || size != len(delimiter) {
			return nil, fmt.Errorf("invalid csv delimiter %q", delimiter)
		}
		reader.Comma = comma
	}

	return reader, nil
}

// rowData keys record values by column identifier. Missing trailing values
// become null and values beyond the last column are dropped.
func rowData(columns []database.DatasetColumn, record []string) map[string]any {
	data := make(map[string]any, len(columns))
	for i, column := range columns {
		if i < len(record) {
			data[column.Identifier] = record[i]
		} else {
			data[column.Identifier] = nil
		}
	}
	return data
}

func buildColumns(datasetId uint, headers []string) []database.DatasetColumn {
	columns := make([]database.DatasetColumn, 0, len(headers))
	used := make(map[string]bool, len(headers))
	for i, header := range headers {
		identifier := columnIdentifier(datasetId, i, used)
		used[identifier] = true
		columns = append(columns, database.DatasetColumn{
			Identifier: identifier,
			Name:       header,
			Role:       database.ColumnRoleParameter,
		})
	}
	return columns
}

// columnIdentifier derives a stable short identifier from the dataset and the
// column position, so migrating the same file twice yields the same keys.
func columnIdentifier(datasetId uint, position int, used map[string]bool) string {
	for attempt := 0; ; attempt++ {
		name := fmt.Sprintf("dataset:%d:column:%d:%d", datasetId, position, attempt)
		id := uuid.NewSHA1(uuid.NameSpaceOID, []byte(name)).String()[:columnIdentifierLength]
		if !used[id] {
			return id
		}
	}
}
