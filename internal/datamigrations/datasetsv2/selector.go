package datasetsv2

import (
	"context"
	"fmt"

	"eval-analytics/internal/database"
	"eval-analytics/internal/repositories"
)

// FindWorkspacesWithLegacyDatasets lists, by ascending id, each workspace
// owning at least one legacy dataset. Explicit targets narrow the result;
// targeted ids without legacy datasets are simply absent.
func FindWorkspacesWithLegacyDatasets(ctx context.Context, store repositories.Store, targets Targets) ([]database.Workspace, error) {
	q := repositories.From("workspaces").
		Select("workspaces.*").
		Join("JOIN datasets ON datasets.workspace_id = workspaces.id").
		GroupBy("workspaces.id").
		OrderBy(repositories.Asc("workspaces.id"))

	if !targets.All() {
		ids := targets.Ids()
		if len(ids) == 0 {
			return []database.Workspace{}, nil
		}
		q = q.Where(repositories.In("workspaces.id", ids))
	}

	workspaces := []database.Workspace{}
	if err := store.Find(ctx, q, &workspaces); err != nil {
		return nil, fmt.Errorf("error finding workspaces with legacy datasets: %w", err)
	}
	return workspaces, nil
}
