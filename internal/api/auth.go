package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"eval-analytics/internal/database"
	"eval-analytics/internal/repositories"
)

const WorkspaceHeader = "X-Workspace-Id"

var ErrUnauthenticated = errors.New("unauthenticated")

// Authenticator resolves the workspace a request acts on behalf of.
type Authenticator interface {
	Authenticate(r *http.Request) (database.Workspace, error)
}

// HeaderAuthenticator trusts the workspace id sent in the X-Workspace-Id
// header. It is meant for internal deployments sitting behind a gateway that
// has already authenticated the caller.
type HeaderAuthenticator struct {
	workspaces *repositories.WorkspacesRepository
}

func NewHeaderAuthenticator(workspaces *repositories.WorkspacesRepository) *HeaderAuthenticator {
	return &HeaderAuthenticator{workspaces: workspaces}
}

func (a *HeaderAuthenticator) Authenticate(r *http.Request) (database.Workspace, error) {
	header := r.Header.Get(WorkspaceHeader)
	if header == "" {
		return database.Workspace{}, ErrUnauthenticated
	}

	id, err := strconv.ParseUint(header, 10, 64)
	if err != nil || id == 0 {
		return database.Workspace{}, ErrUnauthenticated
	}

	workspace, err := a.workspaces.Find(r.Context(), uint(id))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return database.Workspace{}, ErrUnauthenticated
		}
		return database.Workspace{}, err
	}
	return workspace, nil
}

type workspaceKey struct{}

func WorkspaceFromContext(ctx context.Context) (database.Workspace, bool) {
	workspace, ok := ctx.Value(workspaceKey{}).(database.Workspace)
	return workspace, ok
}

// RequireWorkspace rejects requests that do not authenticate to a workspace
// and stores the workspace on the request context.
func RequireWorkspace(auth Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			workspace, err := auth.Authenticate(r)
			if err != nil {
				if errors.Is(err, ErrUnauthenticated) {
					http.Error(w, "unauthorized", http.StatusUnauthorized)
					return
				}
				slog.Error("error authenticating request", "error", err)
				http.Error(w, "failed to authenticate request", http.StatusInternalServerError)
				return
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), workspaceKey{}, workspace)))
		})
	}
}

func requestWorkspace(r *http.Request) (database.Workspace, error) {
	workspace, ok := WorkspaceFromContext(r.Context())
	if !ok {
		return database.Workspace{}, CodedErrorf(http.StatusUnauthorized, "unauthorized")
	}
	return workspace, nil
}
