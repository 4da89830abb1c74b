package api

import (
	"log/slog"
	"net/http"

	"eval-analytics/internal/repositories"
	"eval-analytics/internal/usage"
	"eval-analytics/pkg/api"

	"github.com/go-chi/chi/v5"
)

type BackendService struct {
	store repositories.Store
	auth  Authenticator
	quota *usage.QuotaVerifier
}

func NewBackendService(store repositories.Store, auth Authenticator, quota *usage.QuotaVerifier) *BackendService {
	return &BackendService{store: store, auth: auth, quota: quota}
}

func (s *BackendService) AddRoutes(r chi.Router) {
	r.Get("/health", RestHandler(func(r *http.Request) (any, error) { return nil, nil }))

	r.Group(func(r chi.Router) {
		r.Use(RequireWorkspace(s.auth))

		r.Get("/documentLogs/evaluation-results-v2", RestHandler(s.ListResultsByDocumentLogs))
		r.Get("/projects/{projectId}/commits/{commitUuid}/documents/{documentUuid}/evaluations-v2/{evaluationUuid}/results", RestHandler(s.ListResultsByEvaluation))
		r.Get("/usage", RestHandler(s.GetUsage))
	})
}

func (s *BackendService) ListResultsByDocumentLogs(r *http.Request) (any, error) {
	workspace, err := requestWorkspace(r)
	if err != nil {
		return nil, err
	}

	params, err := ParseRequestQueryParams[api.DocumentLogResultsParams](r)
	if err != nil {
		return nil, err
	}

	results := repositories.NewEvaluationResultsRepository(s.store, workspace.Id)
	grouped, err := results.ListByDocumentLogs(r.Context(), splitList(params.DocumentLogUuids))
	if err != nil {
		return nil, repositoryError(err, "list evaluation results")
	}

	return convertResultsByDocumentLog(grouped), nil
}

// ListResultsByEvaluation resolves the commit, then the document and the
// evaluation at that commit, before reading any results.
func (s *BackendService) ListResultsByEvaluation(r *http.Request) (any, error) {
	workspace, err := requestWorkspace(r)
	if err != nil {
		return nil, err
	}

	projectId, err := URLParamId(r, "projectId")
	if err != nil {
		return nil, err
	}
	commitUuid, err := URLParamUUID(r, "commitUuid")
	if err != nil {
		return nil, err
	}
	documentUuid, err := URLParamUUID(r, "documentUuid")
	if err != nil {
		return nil, err
	}
	evaluationUuid, err := URLParamUUID(r, "evaluationUuid")
	if err != nil {
		return nil, err
	}

	ctx := r.Context()

	commit, err := repositories.NewCommitsRepository(s.store, workspace.Id).GetCommitByUuid(ctx, projectId, commitUuid.String())
	if err != nil {
		return nil, repositoryError(err, "get commit")
	}

	document, err := repositories.NewDocumentVersionsRepository(s.store, workspace.Id).GetDocumentAtCommit(ctx, commit, documentUuid.String())
	if err != nil {
		return nil, repositoryError(err, "get document")
	}

	evaluation, err := repositories.NewEvaluationsRepository(s.store, workspace.Id).GetAtCommitByDocument(ctx, commit, document.DocumentUuid, evaluationUuid.String())
	if err != nil {
		return nil, repositoryError(err, "get evaluation")
	}

	results, err := repositories.NewEvaluationResultsRepository(s.store, workspace.Id).ListByEvaluation(ctx, evaluation.EvaluationUuid)
	if err != nil {
		return nil, repositoryError(err, "list evaluation results")
	}

	return convertEvaluationResults(results), nil
}

func (s *BackendService) GetUsage(r *http.Request) (any, error) {
	workspace, err := requestWorkspace(r)
	if err != nil {
		return nil, err
	}

	results := repositories.NewEvaluationResultsRepository(s.store, workspace.Id)
	current, err := s.quota.Usage(r.Context(), results)
	if err != nil {
		slog.Error("error getting usage", "workspace_id", workspace.Id, "error", err)
		return nil, CodedErrorf(http.StatusInternalServerError, "failed to get usage")
	}

	return convertUsage(current), nil
}
