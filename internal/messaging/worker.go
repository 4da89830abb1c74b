package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"eval-analytics/internal/datamigrations/datasetsv2"
	"eval-analytics/internal/storage"

	"gorm.io/gorm"
)

// Worker consumes dataset migration tasks and runs them one at a time.
type Worker struct {
	db       *gorm.DB
	storage  storage.ObjectStore
	bucket   string
	reciever Reciever
	recorder datasetsv2.Recorder

	// migrator overrides the default per workspace migrator, for tests.
	migrator datasetsv2.Migrator
}

func NewWorker(db *gorm.DB, storage storage.ObjectStore, bucket string, reciever Reciever) *Worker {
	return &Worker{
		db:       db,
		storage:  storage,
		bucket:   bucket,
		reciever: reciever,
		recorder: datasetsv2.NewGormRecorder(db),
	}
}

func (w *Worker) WithMigrator(migrator datasetsv2.Migrator) *Worker {
	w.migrator = migrator
	return w
}

// Start processes tasks until ctx is done or the reciever is closed.
func (w *Worker) Start(ctx context.Context) {
	slog.Info("starting dataset migration worker")

	for {
		select {
		case <-ctx.Done():
			slog.Info("stopping dataset migration worker")
			return
		case task, ok := <-w.reciever.Tasks():
			if !ok {
				slog.Info("task queue closed, stopping dataset migration worker")
				return
			}
			w.ProcessTask(ctx, task)
		}
	}
}

func (w *Worker) Stop() {
	w.reciever.Close()
}

func (w *Worker) ProcessTask(ctx context.Context, task Task) {
	if task.Type() != DatasetMigrationQueue {
		slog.Error("received unknown task type", "queue", task.Type())
		if err := task.Reject(); err != nil {
			slog.Error("error rejecting message from queue", "error", err)
		}
		return
	}

	var payload DatasetMigrationPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		slog.Error("error unmarshalling dataset migration task", "error", err)
		if err := task.Reject(); err != nil {
			slog.Error("error rejecting message from queue", "error", err)
		}
		return
	}

	if err := w.processDatasetMigrationTask(ctx, payload); err != nil {
		slog.Error("error processing task", "queue", task.Type(), "error", err)
		if err := task.Nack(); err != nil {
			slog.Error("error reporting processing failure on message from queue", "error", err)
		}
		return
	}

	slog.Info("successfully processed task", "queue", task.Type())
	if err := task.Ack(); err != nil {
		slog.Error("error acknowledging message from queue", "error", err)
	}
}

func (w *Worker) processDatasetMigrationTask(ctx context.Context, payload DatasetMigrationPayload) error {
	targets := datasetsv2.Workspaces(payload.Workspaces...)
	if payload.All {
		targets = datasetsv2.AllWorkspaces()
	}

	results, err := datasetsv2.MigrateDatasetsV1ToV2(ctx, w.db, datasetsv2.MigrateOptions{
		TargetWorkspaces: targets,
		Store:            w.storage,
		Bucket:           w.bucket,
		Migrator:         w.migrator,
		Recorder:         w.recorder,
	})
	if err != nil {
		return fmt.Errorf("error migrating datasets: %w", err)
	}

	failed := 0
	for _, result := range results {
		if !result.Succeeded() {
			failed++
		}
	}
	slog.Info("dataset migration finished", "targets", targets.String(), "workspaces", len(results), "failed", failed)

	return nil
}
