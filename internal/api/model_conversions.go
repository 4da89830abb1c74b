package api

import (
	"encoding/json"

	"eval-analytics/internal/database"
	"eval-analytics/internal/usage"
	"eval-analytics/pkg/api"
)

func convertEvaluationResult(r database.EvaluationResult) api.EvaluationResult {
	result := api.EvaluationResult{
		Id:             r.Id,
		Uuid:           r.Uuid,
		WorkspaceId:    r.WorkspaceId,
		CommitId:       r.CommitId,
		EvaluationUuid: r.EvaluationUuid,
		EvaluatedLogId: r.EvaluatedLogId,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
	if r.Score.Valid {
		result.Score = &r.Score.Int64
	}
	if r.NormalizedScore.Valid {
		result.NormalizedScore = &r.NormalizedScore.Int64
	}
	if r.HasPassed.Valid {
		result.HasPassed = &r.HasPassed.Bool
	}
	if r.Error.Valid {
		result.Error = &r.Error.String
	}
	if len(r.Metadata) > 0 {
		result.Metadata = json.RawMessage(r.Metadata)
	}
	return result
}

func convertEvaluationResults(rs []database.EvaluationResult) []api.EvaluationResult {
	results := make([]api.EvaluationResult, 0, len(rs))
	for _, r := range rs {
		results = append(results, convertEvaluationResult(r))
	}
	return results
}

func convertResultsByDocumentLog(grouped map[string][]database.EvaluationResult) map[string][]api.EvaluationResult {
	results := make(map[string][]api.EvaluationResult, len(grouped))
	for documentLogUuid, rs := range grouped {
		results[documentLogUuid] = convertEvaluationResults(rs)
	}
	return results
}

func convertUsage(u usage.Usage) api.UsageResponse {
	return api.UsageResponse{
		Count:    u.Count,
		Limit:    u.Limit,
		Since:    u.Since,
		Exceeded: u.Exceeded,
	}
}
