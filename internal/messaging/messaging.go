package messaging

import (
	"context"
	"time"
)

const (
	DatasetMigrationQueue = "dataset_migration_queue"
	RetryDelay            = 5 * time.Second
	MaxConnectRetry       = 5
)

type Task interface {
	Type() string

	Payload() []byte

	Ack() error

	Nack() error

	Reject() error
}

// DatasetMigrationPayload asks a worker to migrate legacy datasets. When All
// is set Workspaces is ignored.
type DatasetMigrationPayload struct {
	All         bool      `json:"all"`
	Workspaces  []uint    `json:"workspaces"`
	RequestedAt time.Time `json:"requestedAt"`
}

type Publisher interface {
	PublishDatasetMigrationTask(ctx context.Context, payload DatasetMigrationPayload) error

	Close()
}

type Reciever interface {
	Tasks() <-chan Task

	Close()
}
