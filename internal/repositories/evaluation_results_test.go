package repositories_test

import (
	"context"
	"testing"
	"time"

	"eval-analytics/internal/database"
	"eval-analytics/internal/repositories"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListByEvaluation(t *testing.T) {
	db := createDB(t)
	f := fixture{t: t, db: db}

	ws1, ws2 := f.workspace("one"), f.workspace("two")
	commit1 := f.commit(f.project(ws1), nil)
	commit2 := f.commit(f.project(ws2), nil)
	log1, log2 := f.providerLog(ws1, uuid.NewString()), f.providerLog(ws2, uuid.NewString())

	evaluationUuid := uuid.NewString()
	older := f.result(ws1, commit1, evaluationUuid, log1, at(0), "")
	newer := f.result(ws1, commit1, evaluationUuid, log1, at(time.Hour), "")
	tied := f.result(ws1, commit1, evaluationUuid, log1, at(time.Hour), "")
	f.result(ws1, commit1, uuid.NewString(), log1, at(2*time.Hour), "")
	f.result(ws2, commit2, evaluationUuid, log2, at(3*time.Hour), "")

	repo := repositories.NewEvaluationResultsRepository(repositories.NewGormStore(db), ws1.Id)

	results, err := repo.ListByEvaluation(context.Background(), evaluationUuid)
	require.NoError(t, err)
	assert.Equal(t, []uint{tied.Id, newer.Id, older.Id}, resultIds(results))
	for _, r := range results {
		assert.Equal(t, ws1.Id, r.WorkspaceId)
	}

	results, err = repo.ListByEvaluation(context.Background(), uuid.NewString())
	require.NoError(t, err)
	assert.NotNil(t, results)
	assert.Empty(t, results)
}

func TestListByDocumentLogs(t *testing.T) {
	db := createDB(t)
	f := fixture{t: t, db: db}

	ws1, ws2 := f.workspace("one"), f.workspace("two")
	commit1 := f.commit(f.project(ws1), nil)
	commit2 := f.commit(f.project(ws2), nil)

	documentUuid := uuid.NewString()
	live := uuid.NewString()
	retired := uuid.NewString()
	f.evaluation(ws1, commit1, documentUuid, live)
	// A second version of the same evaluation must not duplicate its results.
	f.evaluation(ws1, f.commit(f.project(ws1), nil), documentUuid, live)
	retiredVersion := f.evaluation(ws1, commit1, documentUuid, retired)
	require.NoError(t, db.Delete(&retiredVersion).Error)
	f.evaluation(ws2, commit2, documentUuid, live)

	docA, docB, docC := uuid.NewString(), uuid.NewString(), uuid.NewString()
	logA, logB, logC := f.providerLog(ws1, docA), f.providerLog(ws1, docB), f.providerLog(ws1, docC)
	otherWsLog := f.providerLog(ws2, docA)

	a1 := f.result(ws1, commit1, live, logA, at(0), "")
	a2 := f.result(ws1, commit1, live, logA, at(time.Minute), "failed to parse")
	b1 := f.result(ws1, commit1, live, logB, at(2*time.Minute), "")
	retiredResult := f.result(ws1, commit1, retired, logA, at(3*time.Minute), "")
	f.result(ws1, commit1, live, logC, at(4*time.Minute), "")
	f.result(ws2, commit2, live, otherWsLog, at(5*time.Minute), "")

	repo := repositories.NewEvaluationResultsRepository(repositories.NewGormStore(db), ws1.Id)

	grouped, err := repo.ListByDocumentLogs(context.Background(), []string{docA, docB, docA, "", uuid.NewString()})
	require.NoError(t, err)

	assert.Len(t, grouped, 2)
	assert.Equal(t, []uint{a2.Id, a1.Id}, resultIds(grouped[docA]))
	assert.Equal(t, []uint{b1.Id}, resultIds(grouped[docB]))
	assert.NotContains(t, grouped, docC)

	assert.Equal(t, "failed to parse", grouped[docA][0].Error.String)

	// Retired evaluations still list their results directly.
	byEvaluation, err := repo.ListByEvaluation(context.Background(), retired)
	require.NoError(t, err)
	assert.Equal(t, []uint{retiredResult.Id}, resultIds(byEvaluation))
}

func TestListByDocumentLogsEmptyInput(t *testing.T) {
	db := createDB(t)
	f := fixture{t: t, db: db}
	ws := f.workspace("one")

	store := &countingStore{Store: repositories.NewGormStore(db)}
	repo := repositories.NewEvaluationResultsRepository(store, ws.Id)

	for _, input := range [][]string{nil, {}, {"", ""}} {
		grouped, err := repo.ListByDocumentLogs(context.Background(), input)
		require.NoError(t, err)
		assert.NotNil(t, grouped)
		assert.Empty(t, grouped)
	}
	assert.Equal(t, 0, store.finds)
}

func TestCountSinceDate(t *testing.T) {
	db := createDB(t)
	f := fixture{t: t, db: db}

	ws1, ws2 := f.workspace("one"), f.workspace("two")
	commit1 := f.commit(f.project(ws1), nil)
	commit2 := f.commit(f.project(ws2), nil)
	log1, log2 := f.providerLog(ws1, uuid.NewString()), f.providerLog(ws2, uuid.NewString())
	evaluationUuid := uuid.NewString()

	since := at(0)
	f.result(ws1, commit1, evaluationUuid, log1, since.Add(-time.Second), "")
	f.result(ws1, commit1, evaluationUuid, log1, since, "")
	f.result(ws1, commit1, evaluationUuid, log1, since.Add(time.Hour), "")
	f.result(ws1, commit1, evaluationUuid, log1, since.Add(time.Hour), "provider timeout")
	f.result(ws2, commit2, evaluationUuid, log2, since.Add(time.Hour), "")

	store := &countingStore{Store: repositories.NewGormStore(db)}
	repo := repositories.NewEvaluationResultsRepository(store, ws1.Id)

	count, err := repo.CountSinceDate(context.Background(), since)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
	assert.Equal(t, 1, store.counts)
	assert.Equal(t, 0, store.finds)

	count, err = repo.CountSinceDate(context.Background(), since.Add(24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestCountSinceDateIgnoresBoundZone(t *testing.T) {
	db := createDB(t)
	f := fixture{t: t, db: db}

	ws := f.workspace("one")
	commit := f.commit(f.project(ws), nil)
	log := f.providerLog(ws, uuid.NewString())
	f.result(ws, commit, uuid.NewString(), log, at(0), "")

	repo := repositories.NewEvaluationResultsRepository(repositories.NewGormStore(db), ws.Id)

	for _, zone := range []*time.Location{time.UTC, time.FixedZone("east", 2*60*60), time.FixedZone("west", -5*60*60)} {
		count, err := repo.CountSinceDate(context.Background(), at(0).In(zone))
		require.NoError(t, err)
		assert.Equal(t, int64(1), count, zone.String())

		count, err = repo.CountSinceDate(context.Background(), at(time.Second).In(zone))
		require.NoError(t, err)
		assert.Equal(t, int64(0), count, zone.String())
	}
}

func TestEvaluationResultsStoreTimestampsInUTC(t *testing.T) {
	db := createDB(t)
	f := fixture{t: t, db: db}

	ws := f.workspace("one")
	commit := f.commit(f.project(ws), nil)
	log := f.providerLog(ws, uuid.NewString())

	result := database.EvaluationResult{
		Uuid:           uuid.NewString(),
		WorkspaceId:    ws.Id,
		CommitId:       commit.Id,
		EvaluationUuid: uuid.NewString(),
		EvaluatedLogId: log.Id,
	}
	require.NoError(t, db.Create(&result).Error)
	assert.Equal(t, time.UTC, result.CreatedAt.Location())
}

func TestEvaluationResultsPersistenceFailure(t *testing.T) {
	repo := repositories.NewEvaluationResultsRepository(failingStore{}, 1)

	results, err := repo.ListByEvaluation(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, repositories.ErrPersistence)
	assert.ErrorIs(t, err, errStoreDown)
	assert.Nil(t, results)

	grouped, err := repo.ListByDocumentLogs(context.Background(), []string{uuid.NewString()})
	assert.ErrorIs(t, err, repositories.ErrPersistence)
	assert.Nil(t, grouped)

	count, err := repo.CountSinceDate(context.Background(), time.Now())
	assert.ErrorIs(t, err, repositories.ErrPersistence)
	assert.Zero(t, count)
}

func TestScopedRequiresWorkspace(t *testing.T) {
	assert.Panics(t, func() {
		repositories.NewEvaluationResultsRepository(repositories.NewGormStore(nil), 0)
	})
	assert.Panics(t, func() {
		var scoped repositories.Scoped
		scoped.Query("evaluation_results_v2")
	})

	scoped := repositories.NewScoped(7)
	q := scoped.Query("evaluation_results_v2").Where(repositories.Eq("evaluation_results_v2.uuid", "x")).Query()
	assert.Equal(t, []repositories.Predicate{
		repositories.Eq("evaluation_results_v2.workspace_id", uint(7)),
		repositories.Eq("evaluation_results_v2.uuid", "x"),
	}, q.Predicates())
}

func TestQueryIsImmutable(t *testing.T) {
	base := repositories.From("evaluation_results_v2").Where(repositories.Eq("workspace_id", 1))
	narrowed := base.Where(repositories.IsNull("error"))
	other := base.Where(repositories.Gte("created_at", 5))

	assert.Len(t, base.Predicates(), 1)
	assert.Equal(t, []repositories.Predicate{repositories.Eq("workspace_id", 1), repositories.IsNull("error")}, narrowed.Predicates())
	assert.Equal(t, []repositories.Predicate{repositories.Eq("workspace_id", 1), repositories.Gte("created_at", 5)}, other.Predicates())

	preds := base.Predicates()
	preds[0] = repositories.IsNull("tampered")
	assert.Equal(t, repositories.Eq("workspace_id", 1), base.Predicates()[0])

	assert.Equal(t, "evaluation_results_v2", narrowed.Table())
}
