package api

import (
	"encoding/json"
	"time"
)

type EvaluationResult struct {
	Id              uint            `json:"id"`
	Uuid            string          `json:"uuid"`
	WorkspaceId     uint            `json:"workspaceId"`
	CommitId        uint            `json:"commitId"`
	EvaluationUuid  string          `json:"evaluationUuid"`
	EvaluatedLogId  uint            `json:"evaluatedLogId"`
	Score           *int64          `json:"score"`
	NormalizedScore *int64          `json:"normalizedScore"`
	Metadata        json.RawMessage `json:"metadata"`
	HasPassed       *bool           `json:"hasPassed"`
	Error           *string         `json:"error"` // set when the evaluation failed to run
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

type DocumentLogResultsParams struct {
	DocumentLogUuids string `schema:"documentLogUuids"`
}

type UsageResponse struct {
	Count    int64     `json:"count"`
	Limit    int64     `json:"limit"`
	Since    time.Time `json:"since"`
	Exceeded bool      `json:"exceeded"`
}
