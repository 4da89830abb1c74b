package repositories_test

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"eval-analytics/internal/database"
	"eval-analytics/internal/repositories"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var baseTime = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func at(offset time.Duration) time.Time {
	return baseTime.Add(offset)
}

func createDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), database.GormConfig())
	require.NoError(t, err)
	require.NoError(t, database.GetMigrator(db).Migrate())
	return db
}

type countingStore struct {
	repositories.Store
	finds  int
	counts int
}

func (s *countingStore) Find(ctx context.Context, q repositories.Query, dest any) error {
	s.finds++
	return s.Store.Find(ctx, q, dest)
}

func (s *countingStore) Count(ctx context.Context, q repositories.Query) (int64, error) {
	s.counts++
	return s.Store.Count(ctx, q)
}

var errStoreDown = errors.New("connection refused")

type failingStore struct{}

func (failingStore) Find(context.Context, repositories.Query, any) error {
	return errStoreDown
}

func (failingStore) Count(context.Context, repositories.Query) (int64, error) {
	return 0, errStoreDown
}

type fixture struct {
	t  *testing.T
	db *gorm.DB
}

func (f fixture) workspace(name string) database.Workspace {
	w := database.Workspace{Name: name}
	require.NoError(f.t, f.db.Create(&w).Error)
	return w
}

func (f fixture) project(workspace database.Workspace) database.Project {
	p := database.Project{WorkspaceId: workspace.Id, Name: "project"}
	require.NoError(f.t, f.db.Create(&p).Error)
	return p
}

func (f fixture) commit(project database.Project, mergedAt *time.Time) database.Commit {
	c := database.Commit{Uuid: uuid.NewString(), ProjectId: project.Id, Title: "commit"}
	if mergedAt != nil {
		c.MergedAt = sql.NullTime{Time: *mergedAt, Valid: true}
	}
	require.NoError(f.t, f.db.Create(&c).Error)
	return c
}

func (f fixture) document(commit database.Commit, documentUuid, content string) database.DocumentVersion {
	d := database.DocumentVersion{DocumentUuid: documentUuid, CommitId: commit.Id, Path: "prompt", Content: content}
	require.NoError(f.t, f.db.Create(&d).Error)
	return d
}

func (f fixture) evaluation(workspace database.Workspace, commit database.Commit, documentUuid, evaluationUuid string) database.EvaluationVersion {
	e := database.EvaluationVersion{
		WorkspaceId:    workspace.Id,
		CommitId:       commit.Id,
		EvaluationUuid: evaluationUuid,
		DocumentUuid:   documentUuid,
		Name:           "accuracy",
		Type:           "rule",
		Metric:         "exact_match",
	}
	require.NoError(f.t, f.db.Create(&e).Error)
	return e
}

func (f fixture) providerLog(workspace database.Workspace, documentLogUuid string) database.ProviderLog {
	l := database.ProviderLog{Uuid: uuid.NewString(), WorkspaceId: workspace.Id, DocumentLogUuid: documentLogUuid, Provider: "openai", Model: "gpt-4o"}
	require.NoError(f.t, f.db.Create(&l).Error)
	return l
}

func (f fixture) result(workspace database.Workspace, commit database.Commit, evaluationUuid string, log database.ProviderLog, createdAt time.Time, errMsg string) database.EvaluationResult {
	r := database.EvaluationResult{
		Uuid:           uuid.NewString(),
		WorkspaceId:    workspace.Id,
		CommitId:       commit.Id,
		EvaluationUuid: evaluationUuid,
		EvaluatedLogId: log.Id,
		Score:          sql.NullInt64{Int64: 1, Valid: errMsg == ""},
		HasPassed:      sql.NullBool{Bool: true, Valid: errMsg == ""},
		Error:          database.NullString(errMsg),
		CreatedAt:      createdAt,
		UpdatedAt:      createdAt,
	}
	require.NoError(f.t, f.db.Create(&r).Error)
	return r
}

func resultIds(results []database.EvaluationResult) []uint {
	ids := make([]uint, 0, len(results))
	for _, r := range results {
		ids = append(ids, r.Id)
	}
	return ids
}
