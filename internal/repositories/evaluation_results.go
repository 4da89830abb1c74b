package repositories

import (
	"context"
	"time"

	"eval-analytics/internal/database"
)

const (
	evaluationResultsTable  = "evaluation_results_v2"
	evaluationVersionsTable = "evaluation_versions"
	providerLogsTable       = "provider_logs"
)

type EvaluationResultsRepository struct {
	Scoped
	store Store
}

func NewEvaluationResultsRepository(store Store, workspaceId uint) *EvaluationResultsRepository {
	return &EvaluationResultsRepository{Scoped: NewScoped(workspaceId), store: store}
}

func (r *EvaluationResultsRepository) scope() ScopedQuery {
	return r.Scope(evaluationResultsTable).
		Select(evaluationResultsTable + ".*").
		OrderBy(Desc(evaluationResultsTable + ".id"))
}

// ListByEvaluation returns every result of the evaluation in the workspace,
// most recent first. The evaluation itself is not looked up.
func (r *EvaluationResultsRepository) ListByEvaluation(ctx context.Context, evaluationUuid string) ([]database.EvaluationResult, error) {
	q := r.scope().Where(Eq(evaluationResultsTable+".evaluation_uuid", evaluationUuid))

	results := []database.EvaluationResult{}
	if err := r.store.Find(ctx, q.Query(), &results); err != nil {
		return nil, persistenceError("list evaluation results by evaluation", err)
	}
	return results, nil
}

type documentLogResult struct {
	database.EvaluationResult
	DocumentLogUuid string
}

// ListByDocumentLogs groups the workspace's results by the document log of the
// execution they evaluated. Results of retired evaluations are left out, and
// only the requested document logs appear as keys.
func (r *EvaluationResultsRepository) ListByDocumentLogs(ctx context.Context, documentLogUuids []string) (map[string][]database.EvaluationResult, error) {
	uuids := uniqueNonEmpty(documentLogUuids)
	if len(uuids) == 0 {
		return map[string][]database.EvaluationResult{}, nil
	}

	q := r.scope().
		Select(providerLogsTable+".document_log_uuid").
		Join("JOIN provider_logs ON provider_logs.id = evaluation_results_v2.evaluated_log_id").
		Where(
			Exists(
				"SELECT 1 FROM evaluation_versions"+
					" WHERE evaluation_versions.evaluation_uuid = evaluation_results_v2.evaluation_uuid"+
					" AND evaluation_versions.workspace_id = evaluation_results_v2.workspace_id"+
					" AND evaluation_versions.deleted_at IS NULL",
			),
			In(providerLogsTable+".document_log_uuid", uuids),
		)

	var rows []documentLogResult
	if err := r.store.Find(ctx, q.Query(), &rows); err != nil {
		return nil, persistenceError("list evaluation results by document logs", err)
	}

	resultsByDocumentLog := make(map[string][]database.EvaluationResult)
	for _, row := range rows {
		resultsByDocumentLog[row.DocumentLogUuid] = append(resultsByDocumentLog[row.DocumentLogUuid], row.EvaluationResult)
	}

	return resultsByDocumentLog, nil
}

// CountSinceDate counts error free results created at or after since. The
// bound is normalized to UTC to match stored timestamps.
func (r *EvaluationResultsRepository) CountSinceDate(ctx context.Context, since time.Time) (int64, error) {
	q := r.Query(evaluationResultsTable).Where(
		IsNull(evaluationResultsTable+".error"),
		Gte(evaluationResultsTable+".created_at", since.UTC()),
	)

	count, err := r.store.Count(ctx, q.Query())
	if err != nil {
		return 0, persistenceError("count evaluation results", err)
	}
	return count, nil
}

func uniqueNonEmpty(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	unique := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		unique = append(unique, v)
	}
	return unique
}
