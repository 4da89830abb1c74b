package repositories

import (
	"context"

	"eval-analytics/internal/database"
)

const joinCommitProjects = "JOIN projects ON projects.id = commits.project_id"

type CommitsRepository struct {
	Scoped
	store Store
}

func NewCommitsRepository(store Store, workspaceId uint) *CommitsRepository {
	return &CommitsRepository{Scoped: NewScoped(workspaceId), store: store}
}

func (r *CommitsRepository) GetCommitByUuid(ctx context.Context, projectId uint, uuid string) (database.Commit, error) {
	q := r.QueryVia("commits", "projects", joinCommitProjects).
		Select("commits.*").
		Where(Eq("commits.project_id", projectId), Eq("commits.uuid", uuid)).
		Paginate(1, 0)

	var commits []database.Commit
	if err := r.store.Find(ctx, q.Query(), &commits); err != nil {
		return database.Commit{}, persistenceError("get commit", err)
	}
	if len(commits) == 0 {
		return database.Commit{}, notFoundError("commit %s not found in project %d", uuid, projectId)
	}
	return commits[0], nil
}
