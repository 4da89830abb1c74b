package integrationtests

import (
	"database/sql"
	"testing"
	"time"

	backend "eval-analytics/internal/api"
	"eval-analytics/internal/database"
	"eval-analytics/internal/repositories"
	"eval-analytics/internal/usage"
	"eval-analytics/pkg/api"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluationResultsOnPostgres(t *testing.T) {
	db := createDB(t)

	workspace := database.Workspace{Name: "acme"}
	require.NoError(t, db.Create(&workspace).Error)
	project := database.Project{WorkspaceId: workspace.Id, Name: "project"}
	require.NoError(t, db.Create(&project).Error)

	merged := time.Now().UTC().Add(-48 * time.Hour).Truncate(time.Second)
	commit := database.Commit{Uuid: uuid.NewString(), ProjectId: project.Id, MergedAt: sql.NullTime{Time: merged, Valid: true}}
	require.NoError(t, db.Create(&commit).Error)

	documentUuid, evaluationUuid, documentLogUuid := uuid.NewString(), uuid.NewString(), uuid.NewString()
	require.NoError(t, db.Create(&database.DocumentVersion{DocumentUuid: documentUuid, CommitId: commit.Id, Path: "prompt"}).Error)
	require.NoError(t, db.Create(&database.EvaluationVersion{WorkspaceId: workspace.Id, CommitId: commit.Id, EvaluationUuid: evaluationUuid, DocumentUuid: documentUuid}).Error)

	log := database.ProviderLog{Uuid: uuid.NewString(), WorkspaceId: workspace.Id, DocumentLogUuid: documentLogUuid}
	require.NoError(t, db.Create(&log).Error)

	var created []string
	for i := 0; i < 3; i++ {
		createdAt := time.Now().UTC().Add(time.Duration(i-3) * time.Minute).Truncate(time.Second)
		result := database.EvaluationResult{
			Uuid:           uuid.NewString(),
			WorkspaceId:    workspace.Id,
			CommitId:       commit.Id,
			EvaluationUuid: evaluationUuid,
			EvaluatedLogId: log.Id,
			Score:          sql.NullInt64{Int64: int64(i), Valid: true},
			Metadata:       []byte(`{"reason":"ok"}`),
			CreatedAt:      createdAt,
			UpdatedAt:      createdAt,
		}
		require.NoError(t, db.Create(&result).Error)
		created = append(created, result.Uuid)
	}

	store := repositories.NewGormStore(db)
	service := backend.NewBackendService(store, backend.NewHeaderAuthenticator(repositories.NewWorkspacesRepository(store)), usage.NewQuotaVerifier(0))
	router := chi.NewRouter()
	service.AddRoutes(router)

	t.Run("ByEvaluation", func(t *testing.T) {
		var results []api.EvaluationResult
		endpoint := "/projects/" + uintString(project.Id) + "/commits/" + commit.Uuid + "/documents/" + documentUuid + "/evaluations-v2/" + evaluationUuid + "/results"
		require.NoError(t, httpRequest(router, workspace.Id, endpoint, &results))

		require.Len(t, results, 3)
		assert.Equal(t, []string{created[2], created[1], created[0]}, []string{results[0].Uuid, results[1].Uuid, results[2].Uuid})
		assert.JSONEq(t, `{"reason":"ok"}`, string(results[0].Metadata))
	})

	t.Run("ByDocumentLogs", func(t *testing.T) {
		var results map[string][]api.EvaluationResult
		require.NoError(t, httpRequest(router, workspace.Id, "/documentLogs/evaluation-results-v2?documentLogUuids="+documentLogUuid, &results))

		require.Len(t, results[documentLogUuid], 3)
		assert.Equal(t, created[2], results[documentLogUuid][0].Uuid)
	})

	t.Run("Usage", func(t *testing.T) {
		var response api.UsageResponse
		require.NoError(t, httpRequest(router, workspace.Id, "/usage", &response))

		assert.Equal(t, int64(0), response.Limit)
		assert.False(t, response.Exceeded)
		assert.LessOrEqual(t, response.Count, int64(3))
	})
}
