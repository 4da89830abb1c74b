package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"eval-analytics/cmd"
	"eval-analytics/internal/config"
	"eval-analytics/internal/datamigrations/datasetsv2"
	"eval-analytics/internal/messaging"

	"github.com/schollz/progressbar/v3"
)

var (
	workspacesFlag = flag.String("workspaces", "", "workspaces to migrate: 'all' or a comma separated list of ids")
	targetsFile    = flag.String("targets-file", "", "yaml file listing the workspaces to migrate")
	enqueue        = flag.Bool("enqueue", false, "publish the migration to the worker queue instead of running it here")
	noRecord       = flag.Bool("no-record", false, "do not persist migration results")
)

func loadTargets() datasetsv2.Targets {
	switch {
	case *workspacesFlag != "" && *targetsFile != "":
		log.Fatalf("-workspaces and -targets-file are mutually exclusive")
	case *targetsFile != "":
		targets, err := datasetsv2.LoadTargetsFile(*targetsFile)
		if err != nil {
			log.Fatalf("%v", err)
		}
		return targets
	case *workspacesFlag != "":
		targets, err := datasetsv2.ParseTargets(*workspacesFlag)
		if err != nil {
			log.Fatalf("invalid -workspaces: %v", err)
		}
		return targets
	}
	log.Fatalf("one of -workspaces or -targets-file is required")
	return datasetsv2.Targets{}
}

func publish(ctx context.Context, rabbitMQURL string, targets datasetsv2.Targets) {
	if rabbitMQURL == "" {
		log.Fatalf("RABBITMQ_URL must be set to enqueue a migration")
	}

	publisher, err := messaging.NewRabbitMQPublisher(rabbitMQURL)
	if err != nil {
		log.Fatalf("failed to connect to rabbitmq: %v", err)
	}
	defer publisher.Close()

	payload := messaging.DatasetMigrationPayload{
		All:         targets.All(),
		Workspaces:  targets.Ids(),
		RequestedAt: time.Now().UTC(),
	}
	if err := publisher.PublishDatasetMigrationTask(ctx, payload); err != nil {
		log.Fatalf("failed to enqueue dataset migration: %v", err)
	}

	slog.Info("dataset migration enqueued", "targets", targets.String())
}

func main() {
	cfg, db, shutdownLogger := cmd.Bootstrap(func(c config.MigrateConfig) string { return c.DatabaseURL })
	defer shutdownLogger() //nolint:errcheck

	targets := loadTargets()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *enqueue {
		publish(ctx, cfg.RabbitMQURL, targets)
		return
	}

	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetDescription("migrating workspaces"),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)

	opts := datasetsv2.MigrateOptions{
		TargetWorkspaces: targets,
		Store:            cmd.CreateObjectStore(cfg.StorageConfig),
		Bucket:           cfg.DatasetsBucket,
		OnResult: func(result datasetsv2.MigrationResult) {
			bar.Describe(fmt.Sprintf("workspace %d %s", result.WorkspaceId, result.Status))
			_ = bar.Add(1)
		},
	}
	if !*noRecord {
		opts.Recorder = datasetsv2.NewGormRecorder(db)
	}

	results, err := datasetsv2.MigrateDatasetsV1ToV2(ctx, db, opts)
	_ = bar.Finish()

	failed := 0
	for _, result := range results {
		if !result.Succeeded() {
			failed++
			fmt.Fprintf(os.Stderr, "workspace %d failed: %s\n", result.WorkspaceId, result.Error)
			continue
		}
		fmt.Printf("workspace %d: %d datasets migrated, %d skipped, %d rows (%d truncated)\n",
			result.WorkspaceId, result.DatasetsMigrated, result.DatasetsSkipped, result.RowsMigrated, result.RowsTruncated)
	}
	fmt.Printf("%d workspaces processed, %d failed\n", len(results), failed)

	if err != nil {
		log.Fatalf("dataset migration stopped: %v", err)
	}
	if failed > 0 {
		os.Exit(1)
	}
}
