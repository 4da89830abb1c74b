package usage_test

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"eval-analytics/internal/database"
	"eval-analytics/internal/repositories"
	"eval-analytics/internal/usage"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestPeriodStart(t *testing.T) {
	assert.Equal(t,
		time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		usage.PeriodStart(time.Date(2025, 3, 17, 15, 4, 5, 0, time.UTC)),
	)
	assert.Equal(t,
		time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		usage.PeriodStart(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)),
	)
}

func TestQuotaVerifier(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), database.GormConfig())
	require.NoError(t, err)
	require.NoError(t, database.GetMigrator(db).Migrate())

	workspace := database.Workspace{Name: "workspace"}
	require.NoError(t, db.Create(&workspace).Error)

	now := time.Date(2025, 3, 17, 12, 0, 0, 0, time.UTC)
	verifier := usage.NewQuotaVerifier(3).WithClock(func() time.Time { return now })
	results := repositories.NewEvaluationResultsRepository(repositories.NewGormStore(db), workspace.Id)

	createResult := func(createdAt time.Time, errMsg string) {
		require.NoError(t, db.Create(&database.EvaluationResult{
			Uuid:           uuid.NewString(),
			WorkspaceId:    workspace.Id,
			EvaluationUuid: uuid.NewString(),
			Error:          database.NullString(errMsg),
			HasPassed:      sql.NullBool{Bool: true, Valid: errMsg == ""},
			CreatedAt:      createdAt,
		}).Error)
	}

	empty, err := verifier.Usage(context.Background(), results)
	require.NoError(t, err)
	assert.Equal(t, int64(0), empty.Count)

	createResult(time.Date(2025, 2, 28, 23, 59, 59, 0, time.UTC), "")
	createResult(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), "")
	createResult(time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), "")
	createResult(time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC), "rate limited")

	current, err := verifier.Usage(context.Background(), results)
	require.NoError(t, err)
	assert.Equal(t, int64(2), current.Count)
	assert.Equal(t, int64(3), current.Limit)
	assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), current.Since)
	assert.False(t, current.Exceeded)

	createResult(time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC), "")

	current, err = verifier.Usage(context.Background(), results)
	require.NoError(t, err)
	assert.Equal(t, int64(3), current.Count)
	assert.True(t, current.Exceeded)

	unlimited := usage.NewQuotaVerifier(0).WithClock(func() time.Time { return now })
	current, err = unlimited.Usage(context.Background(), results)
	require.NoError(t, err)
	assert.False(t, current.Exceeded)
}

type brokenCounter struct{}

func (brokenCounter) CountSinceDate(context.Context, time.Time) (int64, error) {
	return 0, errors.New("database unavailable")
}

func TestQuotaVerifierCounterFailure(t *testing.T) {
	_, err := usage.NewQuotaVerifier(10).Usage(context.Background(), brokenCounter{})
	assert.ErrorIs(t, err, usage.ErrQuotaVerificationFailed)
}
