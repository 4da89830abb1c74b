package messaging_test

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"eval-analytics/internal/database"
	"eval-analytics/internal/messaging"
	"eval-analytics/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type recordingTask struct {
	queue    string
	payload  []byte
	acked    bool
	nacked   bool
	rejected bool
}

func (t *recordingTask) Type() string    { return t.queue }
func (t *recordingTask) Payload() []byte { return t.payload }
func (t *recordingTask) Ack() error      { t.acked = true; return nil }
func (t *recordingTask) Nack() error     { t.nacked = true; return nil }
func (t *recordingTask) Reject() error   { t.rejected = true; return nil }

func setupWorker(t *testing.T) (*gorm.DB, *storage.LocalObjectStore, *messaging.InMemoryQueue, *messaging.Worker) {
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), database.GormConfig())
	require.NoError(t, err)
	require.NoError(t, database.GetMigrator(db).Migrate())

	store, err := storage.NewLocalObjectStore(t.TempDir())
	require.NoError(t, err)

	queue := messaging.NewInMemoryQueue()
	return db, store, queue, messaging.NewWorker(db, store, "datasets", queue)
}

func createLegacyDataset(t *testing.T, db *gorm.DB, store storage.ObjectStore, key, csv string) database.Workspace {
	workspace := database.Workspace{Name: "workspace"}
	require.NoError(t, db.Create(&workspace).Error)

	require.NoError(t, db.Create(&database.Dataset{WorkspaceId: workspace.Id, Name: "dataset", CsvDelimiter: ",", FileKey: key}).Error)
	require.NoError(t, store.PutObject(context.Background(), "datasets", key, bytes.NewReader([]byte(csv))))
	return workspace
}

func TestWorkerProcessesMigrationTask(t *testing.T) {
	db, store, queue, worker := setupWorker(t)
	workspace := createLegacyDataset(t, db, store, "1/a.csv", "a,b\n1,2\n3,4\n")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		worker.Start(ctx)
		close(done)
	}()

	require.NoError(t, queue.PublishDatasetMigrationTask(ctx, messaging.DatasetMigrationPayload{Workspaces: []uint{workspace.Id}}))

	assert.Eventually(t, func() bool {
		var count int64
		db.Model(&database.DatasetMigrationResult{}).Count(&count)
		return count == 1
	}, 5*time.Second, 20*time.Millisecond)

	queue.Close()
	<-done

	var recorded database.DatasetMigrationResult
	require.NoError(t, db.First(&recorded).Error)
	assert.Equal(t, workspace.Id, recorded.WorkspaceId)
	assert.Equal(t, database.MigrationSucceeded, recorded.Status)
	assert.Equal(t, 2, recorded.RowsMigrated)

	var rows int64
	require.NoError(t, db.Model(&database.DatasetRow{}).Count(&rows).Error)
	assert.Equal(t, int64(2), rows)
}

func TestWorkerTaskAcknowledgement(t *testing.T) {
	db, store, _, worker := setupWorker(t)
	createLegacyDataset(t, db, store, "1/a.csv", "a\n1\n")

	ok := &recordingTask{queue: messaging.DatasetMigrationQueue, payload: []byte(`{"all":true}`)}
	worker.ProcessTask(context.Background(), ok)
	assert.True(t, ok.acked)
	assert.False(t, ok.nacked)

	malformed := &recordingTask{queue: messaging.DatasetMigrationQueue, payload: []byte(`{"all":`)}
	worker.ProcessTask(context.Background(), malformed)
	assert.True(t, malformed.rejected)
	assert.False(t, malformed.acked)

	unknown := &recordingTask{queue: "inference_queue", payload: []byte(`{}`)}
	worker.ProcessTask(context.Background(), unknown)
	assert.True(t, unknown.rejected)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	interrupted := &recordingTask{queue: messaging.DatasetMigrationQueue, payload: []byte(`{"all":true}`)}
	worker.ProcessTask(ctx, interrupted)
	assert.True(t, interrupted.nacked)
	assert.False(t, interrupted.acked)
}
