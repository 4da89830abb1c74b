package repositories

import (
	"context"

	"eval-analytics/internal/database"
)

// WorkspacesRepository is not scoped: it is what turns credentials into a
// workspace in the first place.
type WorkspacesRepository struct {
	store Store
}

func NewWorkspacesRepository(store Store) *WorkspacesRepository {
	return &WorkspacesRepository{store: store}
}

func (r *WorkspacesRepository) Find(ctx context.Context, id uint) (database.Workspace, error) {
	var workspaces []database.Workspace
	if err := r.store.Find(ctx, From("workspaces").Where(Eq("workspaces.id", id)).Paginate(1, 0), &workspaces); err != nil {
		return database.Workspace{}, persistenceError("get workspace", err)
	}
	if len(workspaces) == 0 {
		return database.Workspace{}, notFoundError("workspace %d not found", id)
	}
	return workspaces[0], nil
}
