package datasetsv2_test

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"eval-analytics/internal/database"
	"eval-analytics/internal/repositories"
	"eval-analytics/internal/storage"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const bucket = "datasets"

func createDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), database.GormConfig())
	require.NoError(t, err)
	require.NoError(t, database.GetMigrator(db).Migrate())
	return db
}

func createObjectStore(t *testing.T) *storage.LocalObjectStore {
	store, err := storage.NewLocalObjectStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.CreateBucket(context.Background(), bucket))
	return store
}

func createWorkspaces(t *testing.T, db *gorm.DB, n int) []database.Workspace {
	workspaces := make([]database.Workspace, 0, n)
	for range n {
		w := database.Workspace{Name: "workspace"}
		require.NoError(t, db.Create(&w).Error)
		workspaces = append(workspaces, w)
	}
	return workspaces
}

func createLegacyDataset(t *testing.T, db *gorm.DB, store storage.ObjectStore, workspace database.Workspace, name, fileKey, csv string, headers ...string) database.Dataset {
	metadata, err := database.EncodeJSON(database.DatasetFileMetadata{Headers: headers, Size: int64(len(csv))})
	require.NoError(t, err)

	dataset := database.Dataset{
		WorkspaceId:  workspace.Id,
		Name:         name,
		CsvDelimiter: ",",
		FileKey:      fileKey,
		FileMetadata: metadata,
	}
	require.NoError(t, db.Create(&dataset).Error)

	if store != nil {
		require.NoError(t, store.PutObject(context.Background(), bucket, fileKey, bytes.NewReader([]byte(csv))))
	}
	return dataset
}

type countingStore struct {
	repositories.Store
	finds int
}

func (s *countingStore) Find(ctx context.Context, q repositories.Query, dest any) error {
	s.finds++
	return s.Store.Find(ctx, q, dest)
}

func workspaceIds(workspaces []database.Workspace) []uint {
	ids := make([]uint, 0, len(workspaces))
	for _, w := range workspaces {
		ids = append(ids, w.Id)
	}
	return ids
}
