package config

import (
	"fmt"

	"eval-analytics/internal/storage"

	"github.com/caarlos0/env/v11"
)

type DatabaseConfig struct {
	DatabaseURL string `env:"DATABASE_URL" envDefault:"sqlite://./data/eval-analytics.db"`
}

type StorageConfig struct {
	StorageType       string `env:"STORAGE_TYPE" envDefault:"local"`
	StorageRoot       string `env:"STORAGE_ROOT" envDefault:"./data/storage"`
	DatasetsBucket    string `env:"DATASETS_BUCKET" envDefault:"datasets"`
	S3EndpointURL     string `env:"S3_ENDPOINT_URL"`
	S3AccessKeyID     string `env:"S3_ACCESS_KEY_ID"`
	S3SecretAccessKey string `env:"S3_SECRET_ACCESS_KEY"`
	S3Region          string `env:"S3_REGION" envDefault:"us-east-1"`
}

func (c StorageConfig) NewObjectStore() (storage.ObjectStore, error) {
	return storage.NewObjectStore(c.StorageType, c.StorageRoot, storage.S3ClientConfig{
		Endpoint:        c.S3EndpointURL,
		Region:          c.S3Region,
		AccessKeyID:     c.S3AccessKeyID,
		SecretAccessKey: c.S3SecretAccessKey,
	})
}

type APIConfig struct {
	DatabaseConfig
	Port            int   `env:"API_PORT" envDefault:"8001"`
	UsageMaxResults int64 `env:"USAGE_MAX_RESULTS" envDefault:"50000"`
}

type WorkerConfig struct {
	DatabaseConfig
	StorageConfig
	RabbitMQURL string `env:"RABBITMQ_URL,required"`
}

type MigrateConfig struct {
	DatabaseConfig
	StorageConfig
	// Only needed with -enqueue.
	RabbitMQURL string `env:"RABBITMQ_URL"`
}

func Load[T any]() (T, error) {
	var cfg T
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("error parsing config: %w", err)
	}
	return cfg, nil
}
