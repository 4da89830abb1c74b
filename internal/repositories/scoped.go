package repositories

// Scoped binds a repository to a single workspace. Every query it hands out
// already carries the workspace filter and can only be narrowed further.
type Scoped struct {
	workspaceId uint
}

func NewScoped(workspaceId uint) Scoped {
	if workspaceId == 0 {
		panic("repositories: scoped repository requires a workspace id")
	}
	return Scoped{workspaceId: workspaceId}
}

func (s Scoped) WorkspaceId() uint {
	if s.workspaceId == 0 {
		panic("repositories: scoped repository used without a workspace id")
	}
	return s.workspaceId
}

// ScopeFilter is the workspace equality predicate on table.workspace_id.
func (s Scoped) ScopeFilter(table string) Predicate {
	return Eq(table+".workspace_id", s.WorkspaceId())
}

// Scope selects from table, filtered to the workspace, most recent first.
func (s Scoped) Scope(table string) ScopedQuery {
	return s.Query(table).OrderBy(Desc(table + ".created_at"))
}

// Query selects from table filtered to the workspace, without ordering.
func (s Scoped) Query(table string) ScopedQuery {
	return ScopedQuery{q: From(table).Where(s.ScopeFilter(table))}
}

// QueryVia selects from table where ownership is recorded on ownerTable,
// reachable through the given joins.
func (s Scoped) QueryVia(table, ownerTable string, joins ...string) ScopedQuery {
	q := From(table)
	for _, join := range joins {
		q = q.Join(join)
	}
	return ScopedQuery{q: q.Where(s.ScopeFilter(ownerTable))}
}

// ScopedQuery wraps a Query whose workspace predicate cannot be dropped: it
// only exposes operations that add to the statement.
type ScopedQuery struct {
	q Query
}

func (sq ScopedQuery) Select(columns ...string) ScopedQuery {
	return ScopedQuery{q: sq.q.Select(columns...)}
}

func (sq ScopedQuery) Join(clause string) ScopedQuery {
	return ScopedQuery{q: sq.q.Join(clause)}
}

func (sq ScopedQuery) Where(predicates ...Predicate) ScopedQuery {
	return ScopedQuery{q: sq.q.Where(predicates...)}
}

func (sq ScopedQuery) OrderBy(orders ...Order) ScopedQuery {
	return ScopedQuery{q: sq.q.OrderBy(orders...)}
}

func (sq ScopedQuery) Paginate(limit, offset int) ScopedQuery {
	return ScopedQuery{q: sq.q.Paginate(limit, offset)}
}

func (sq ScopedQuery) IncludeDeleted() ScopedQuery {
	return ScopedQuery{q: sq.q.IncludeDeleted()}
}

func (sq ScopedQuery) Query() Query {
	return sq.q
}
