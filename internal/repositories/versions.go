package repositories

import (
	"context"

	"eval-analytics/internal/database"
)

// atCommit resolves rows of a versioned table as seen from a commit: the row
// written in the commit itself, or else the newest row written by a merged
// commit of the same project that was merged no later than the commit. Drafts
// see every merged commit.
type atCommit struct {
	Scoped
	store Store
}

func (a atCommit) versionsOf(table string) ScopedQuery {
	return a.QueryVia(table, "projects",
		"JOIN commits ON commits.id = "+table+".commit_id",
		joinCommitProjects,
	).
		Select(table+".*").
		IncludeDeleted().
		Paginate(1, 0)
}

// find runs load against the commit's own rows and falls back to the merged
// history when load reports nothing found.
func (a atCommit) find(table string, commit database.Commit, load func(ScopedQuery) (bool, error), filters ...Predicate) error {
	found, err := load(a.versionsOf(table).Where(Eq(table+".commit_id", commit.Id)).Where(filters...))
	if err != nil || found {
		return err
	}

	merged := a.versionsOf(table).
		Where(
			Eq("commits.project_id", commit.ProjectId),
			IsNotNull("commits.merged_at"),
		).
		Where(filters...).
		OrderBy(Desc("commits.merged_at"), Desc(table+".id"))
	if commit.MergedAt.Valid {
		merged = merged.Where(Lte("commits.merged_at", commit.MergedAt.Time))
	}

	_, err = load(merged)
	return err
}

type DocumentVersionsRepository struct {
	atCommit
}

func NewDocumentVersionsRepository(store Store, workspaceId uint) *DocumentVersionsRepository {
	return &DocumentVersionsRepository{atCommit{Scoped: NewScoped(workspaceId), store: store}}
}

// GetDocumentAtCommit returns ErrNotFound when the document does not exist at
// the commit or was deleted there.
func (r *DocumentVersionsRepository) GetDocumentAtCommit(ctx context.Context, commit database.Commit, documentUuid string) (database.DocumentVersion, error) {
	var documents []database.DocumentVersion
	load := func(q ScopedQuery) (bool, error) {
		err := r.store.Find(ctx, q.Query(), &documents)
		return len(documents) > 0, err
	}

	if err := r.find("document_versions", commit, load, Eq("document_versions.document_uuid", documentUuid)); err != nil {
		return database.DocumentVersion{}, persistenceError("get document at commit", err)
	}
	if len(documents) == 0 || documents[0].DeletedAt.Valid {
		return database.DocumentVersion{}, notFoundError("document %s not found at commit %s", documentUuid, commit.Uuid)
	}
	return documents[0], nil
}

type EvaluationsRepository struct {
	atCommit
}

func NewEvaluationsRepository(store Store, workspaceId uint) *EvaluationsRepository {
	return &EvaluationsRepository{atCommit{Scoped: NewScoped(workspaceId), store: store}}
}

func (r *EvaluationsRepository) GetAtCommitByDocument(ctx context.Context, commit database.Commit, documentUuid, evaluationUuid string) (database.EvaluationVersion, error) {
	var evaluations []database.EvaluationVersion
	load := func(q ScopedQuery) (bool, error) {
		err := r.store.Find(ctx, q.Query(), &evaluations)
		return len(evaluations) > 0, err
	}

	err := r.find(evaluationVersionsTable, commit, load,
		r.ScopeFilter(evaluationVersionsTable),
		Eq("evaluation_versions.document_uuid", documentUuid),
		Eq("evaluation_versions.evaluation_uuid", evaluationUuid),
	)
	if err != nil {
		return database.EvaluationVersion{}, persistenceError("get evaluation at commit", err)
	}
	if len(evaluations) == 0 || evaluations[0].DeletedAt.Valid {
		return database.EvaluationVersion{}, notFoundError("evaluation %s not found for document %s at commit %s", evaluationUuid, documentUuid, commit.Uuid)
	}
	return evaluations[0], nil
}
